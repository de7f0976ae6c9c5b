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

package bridge

import "fmt"

// CallbackKind is the "_cb" discriminator of a transport message
type CallbackKind int

// Callback kinds
const (
	// CallbackDidStart reports that the reader started (or restarted) scanning
	CallbackDidStart CallbackKind = iota + 1
	// CallbackDidStop reports that the reader stopped, with a completion code
	CallbackDidStop
	// CallbackTagRead carries one raw tag read
	CallbackTagRead
	// CallbackTagFound is a raw read sent by readers that classify on their side
	CallbackTagFound
	// CallbackTagSubsequentFinds is a raw read sent by readers that classify on their side
	CallbackTagSubsequentFinds
	// CallbackTagChanged is a reader-side visibility change. Sessions derive
	// visibility themselves, so these are accepted and ignored.
	CallbackTagChanged
	// CallbackHistoryInterval is a reader-driven history interval tick
	CallbackHistoryInterval
)

var callbackNames = map[CallbackKind]string{
	CallbackDidStart:           "didStart",
	CallbackDidStop:            "didStop",
	CallbackTagRead:            "tagRead",
	CallbackTagFound:           "tagFound",
	CallbackTagSubsequentFinds: "tagSubsequentFinds",
	CallbackTagChanged:         "tagChanged",
	CallbackHistoryInterval:    "historyInterval",
}

func (k CallbackKind) String() string {
	if name, ok := callbackNames[k]; ok {
		return name
	}
	return fmt.Sprintf("callback(%d)", int(k))
}

// ParseCallbackKind parses a "_cb" value
func ParseCallbackKind(s string) (CallbackKind, error) {
	for k, name := range callbackNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown callback %q", s)
}

// carriesTag reports whether messages of this kind must describe a tag
func (k CallbackKind) carriesTag() bool {
	switch k {
	case CallbackTagRead, CallbackTagFound, CallbackTagSubsequentFinds, CallbackTagChanged:
		return true
	default:
		return false
	}
}
