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

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	inventory "github.com/ZaparooProject/go-inventory"
)

// Command actions understood by the reader transport
const (
	ActionStartInventory  = "startInventory"
	ActionStopInventory   = "stopInventory"
	ActionPauseInventory  = "pauseInventory"
	ActionResumeInventory = "resumeInventory"
	ActionReadTag         = "readTag"
	ActionWriteTag        = "writeTag"
	ActionProgramTag      = "programTag"
	ActionLockUnlockTag   = "lockUnlockTag"
	ActionChangePower     = "changePower"
)

// Command is a control request sent to the reader transport.
// Args[0] is always the session ID.
type Command struct {
	Action string `json:"action"`
	Args   []any  `json:"args"`
}

// SessionID returns the session the command addresses
func (c Command) SessionID() string {
	if len(c.Args) == 0 {
		return ""
	}
	id, _ := c.Args[0].(string)
	return id
}

// Encode renders the command as a single JSON line
func (c Command) Encode() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Action, err)
	}
	return append(data, '\n'), nil
}

// DecodeCommand parses a command line, as a simulated reader would
func DecodeCommand(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	if c.Action == "" {
		return Command{}, fmt.Errorf("decode command: missing action")
	}
	return c, nil
}

// StartInventory asks the reader to start scanning with cfg. epcs is nil when
// the reader should not filter; EPCs are sent lowercase like the tag commands.
// caps are the observer capability flags.
func StartInventory(sessionID string, cfg inventory.Configuration, epcs []string, ignoreList bool, caps inventory.Capabilities) Command {
	var epcArg any
	if epcs != nil {
		lower := make([]string, len(epcs))
		for i, epc := range epcs {
			lower[i] = strings.ToLower(epc)
		}
		epcArg = lower
	}
	args := []any{sessionID, cfg.Values(), epcArg, ignoreList}
	for _, f := range caps.Flags() {
		args = append(args, f)
	}
	return Command{Action: ActionStartInventory, Args: args}
}

// StartInventoryFor builds the start command for s. The EPC filter is only
// sent when it is small enough for the reader to apply.
func StartInventoryFor(s *inventory.Session) Command {
	var epcs []string
	filter, ignoreList := s.FilterEPCs()
	if s.ReaderSideFilter() {
		epcs = filter
	}
	return StartInventory(s.ID(), s.Configuration(), epcs, ignoreList, s.Observer().Capabilities())
}

// StopInventory asks the reader to stop scanning
func StopInventory(sessionID string) Command {
	return Command{Action: ActionStopInventory, Args: []any{sessionID}}
}

// PauseInventory asks the reader to pause scanning
func PauseInventory(sessionID string) Command {
	return Command{Action: ActionPauseInventory, Args: []any{sessionID}}
}

// ResumeInventory asks the reader to resume a paused inventory
func ResumeInventory(sessionID string) Command {
	return Command{Action: ActionResumeInventory, Args: []any{sessionID}}
}

// ReadTag reads between minBytes and maxBytes from bank starting at word offset
func ReadTag(sessionID, epc string, bank inventory.MemoryBank, offset, minBytes, maxBytes int) Command {
	return Command{
		Action: ActionReadTag,
		Args:   []any{sessionID, strings.ToLower(epc), int(bank), offset, minBytes, maxBytes},
	}
}

// WriteTag writes data to bank at word offset. previous is the expected
// current content, or nil to skip the check.
func WriteTag(sessionID, epc string, bank inventory.MemoryBank, offset int, data, previous []byte, password int) Command {
	return Command{
		Action: ActionWriteTag,
		Args: []any{
			sessionID, strings.ToLower(epc), int(bank), offset,
			hex.EncodeToString(data), hex.EncodeToString(previous), password,
		},
	}
}

// ProgramTag replaces a tag's EPC
func ProgramTag(sessionID, oldEPC, newEPC string, password int) Command {
	return Command{
		Action: ActionProgramTag,
		Args:   []any{sessionID, strings.ToLower(oldEPC), strings.ToLower(newEPC), password},
	}
}

// LockUnlockTag applies a lock mask and action built with inventory.LockMaskAndAction
func LockUnlockTag(sessionID, epc string, maskAndAction, password int) Command {
	return Command{
		Action: ActionLockUnlockTag,
		Args:   []any{sessionID, strings.ToLower(epc), maskAndAction, password},
	}
}

// ChangePower changes the power levels of a running inventory
func ChangePower(sessionID string, initial, minLevel, maxLevel float64) Command {
	return Command{Action: ActionChangePower, Args: []any{sessionID, initial, minLevel, maxLevel}}
}
