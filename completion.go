// go-inventory
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-inventory.
//
// go-inventory is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-inventory is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-inventory; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package inventory

import "strconv"

// CompletionCode is the result reported by the transport when inventory stops.
// Codes are surfaced to observers, never returned as errors.
type CompletionCode int

// Completion codes reported with a stop notification
const (
	// CompletedOK means inventory completed normally
	CompletedOK CompletionCode = 0
	// CompletedSPINotWorking is a reader fault
	CompletedSPINotWorking CompletionCode = 1
	// CompletedEnablePinNotWorking is a reader fault
	CompletedEnablePinNotWorking CompletionCode = 2
	// CompletedInterruptPinNotWorking is a reader fault
	CompletedInterruptPinNotWorking CompletionCode = 3
	// CompletedWrongChipVersion is a reader fault
	CompletedWrongChipVersion CompletionCode = 4
	// CompletedCrystalNotStable is a reader fault
	CompletedCrystalNotStable CompletionCode = 5
	// CompletedPLLNotLocked is a reader fault
	CompletedPLLNotLocked CompletionCode = 6
	// CompletedBatteryTooLow means the reader battery is too low to scan
	CompletedBatteryTooLow CompletionCode = 7
	// CompletedTemperatureTooHigh means the reader is too hot to scan
	CompletedTemperatureTooHigh CompletionCode = 8
	// CompletedNotProvisioned is a reader fault
	CompletedNotProvisioned CompletionCode = 9
	// CompletedRegionNotSet means the region must be configured before scanning
	CompletedRegionNotSet CompletionCode = 10
	// CompletedErrorSending means the inventory command could not be sent to the reader
	CompletedErrorSending CompletionCode = 98
	// CompletedLostConnection means the connection to the reader was lost.
	// Session state is kept so inventory can resume when the reader comes back.
	CompletedLostConnection CompletionCode = 99
)

var completionNames = map[CompletionCode]string{
	CompletedOK:                     "ok",
	CompletedSPINotWorking:          "spi not working",
	CompletedEnablePinNotWorking:    "enable pin not working",
	CompletedInterruptPinNotWorking: "interrupt pin not working",
	CompletedWrongChipVersion:       "wrong chip version",
	CompletedCrystalNotStable:       "crystal not stable",
	CompletedPLLNotLocked:           "pll not locked",
	CompletedBatteryTooLow:          "battery too low",
	CompletedTemperatureTooHigh:     "temperature too high",
	CompletedNotProvisioned:         "not provisioned",
	CompletedRegionNotSet:           "region not set",
	CompletedErrorSending:           "error sending",
	CompletedLostConnection:         "lost connection",
}

func (c CompletionCode) String() string {
	if name, ok := completionNames[c]; ok {
		return name
	}
	return "completion(" + strconv.Itoa(int(c)) + ")"
}

// Known reports whether c is one of the documented completion codes
func (c CompletionCode) Known() bool {
	_, ok := completionNames[c]
	return ok
}

// IsTransportError reports whether the code describes a failure rather than a normal stop
func (c CompletionCode) IsTransportError() bool {
	return c != CompletedOK
}

// RetainsState reports whether a stop with this code keeps the session's tags
func (c CompletionCode) RetainsState() bool {
	return c == CompletedLostConnection
}
