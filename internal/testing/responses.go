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

package testing

import (
	"fmt"
	"io"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/ZaparooProject/go-inventory/bridge"
)

// BuildDidStartMessage creates a didStart callback
func BuildDidStartMessage(sessionID string) bridge.Message {
	return bridge.Message{Kind: bridge.CallbackDidStart, SessionID: sessionID}
}

// BuildDidStopMessage creates a didStop callback with a completion code
func BuildDidStopMessage(sessionID string, code inventory.CompletionCode) bridge.Message {
	return bridge.Message{Kind: bridge.CallbackDidStop, SessionID: sessionID, Result: code}
}

// BuildTagReadMessage creates a tagRead callback for one read of epc
func BuildTagReadMessage(sessionID, epc string, at time.Time) bridge.Message {
	return bridge.Message{
		Kind:      bridge.CallbackTagRead,
		SessionID: sessionID,
		Event:     inventory.RawEvent{EPC: epc, Timestamp: at},
	}
}

// BuildHistoryIntervalMessage creates a reader-driven interval tick
func BuildHistoryIntervalMessage(sessionID string) bridge.Message {
	return bridge.Message{Kind: bridge.CallbackHistoryInterval, SessionID: sessionID}
}

// WriteReplay writes msgs as a replay file, one JSON line each
func WriteReplay(w io.Writer, msgs ...bridge.Message) error {
	for i, m := range msgs {
		line, err := bridge.Encode(m)
		if err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("write replay: %w", err)
		}
	}
	return nil
}
