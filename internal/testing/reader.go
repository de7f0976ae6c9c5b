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
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/ZaparooProject/go-inventory/bridge"
)

// Reader errors
var (
	ErrUnknownAction = errors.New("unknown action")
	ErrWrongSession  = errors.New("command for another session")
	ErrNotRunning    = errors.New("inventory not running")
	ErrBadArgs       = errors.New("bad command arguments")
)

// Access records the outcome of the last tag access command
type Access struct {
	Action string
	EPC    string
	Data   []byte
	Result inventory.TagAccessResult
}

// Reader simulates an RFID reader driven by bridge commands. It answers
// start and stop with callbacks, and produces one tagRead per present tag
// per Round.
type Reader struct {
	now        func() time.Time
	filter     map[string]bool
	session    string
	commands   []bridge.Command
	tags       []*VirtualTag
	lastAccess Access
	config     inventory.Configuration
	mu         sync.Mutex
	ignoreList bool
	running    bool
	paused     bool
}

// NewReader creates a reader with tags in its field
func NewReader(tags ...*VirtualTag) *Reader {
	return &Reader{now: time.Now, tags: tags}
}

// SetClock replaces time.Now for read timestamps
func (r *Reader) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// AddTag puts a tag in the field
func (r *Reader) AddTag(tag *VirtualTag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tag)
}

// Tag returns the tag with epc, or nil
func (r *Reader) Tag(epc string) *VirtualTag {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findTag(epc)
}

func (r *Reader) findTag(epc string) *VirtualTag {
	epc = strings.ToUpper(epc)
	for _, tag := range r.tags {
		if tag.EPC == epc {
			return tag
		}
	}
	return nil
}

// SetPresent moves the tag with epc in or out of the field
func (r *Reader) SetPresent(epc string, present bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag := r.findTag(epc)
	if tag == nil {
		return false
	}
	tag.Present = present
	return true
}

// Running reports whether an inventory is active
func (r *Reader) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Paused reports whether the inventory is paused
func (r *Reader) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// SessionID returns the session of the current or last inventory
func (r *Reader) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Configuration returns the configuration sent with the last start command
func (r *Reader) Configuration() inventory.Configuration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config
}

// FilterEPCs returns the reader-side filter of the running inventory
func (r *Reader) FilterEPCs() (epcs []string, ignoreList bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for epc := range r.filter {
		epcs = append(epcs, epc)
	}
	return epcs, r.ignoreList
}

// Commands returns every command executed so far
func (r *Reader) Commands() []bridge.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bridge.Command(nil), r.commands...)
}

// LastAccess returns the outcome of the last tag access command
func (r *Reader) LastAccess() Access {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastAccess
}

// Execute applies cmd and returns the callbacks the reader sends in reply
func (r *Reader) Execute(cmd bridge.Command) ([]bridge.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)

	if cmd.Action == bridge.ActionStartInventory {
		return r.start(cmd.Args)
	}
	if !r.running {
		return nil, fmt.Errorf("%s: %w", cmd.Action, ErrNotRunning)
	}
	if id := cmd.SessionID(); id != r.session {
		return nil, fmt.Errorf("%s for %q: %w", cmd.Action, id, ErrWrongSession)
	}

	switch cmd.Action {
	case bridge.ActionStopInventory:
		r.running, r.paused = false, false
		return []bridge.Message{BuildDidStopMessage(r.session, inventory.CompletedOK)}, nil
	case bridge.ActionPauseInventory:
		r.paused = true
		return nil, nil
	case bridge.ActionResumeInventory:
		r.paused = false
		return nil, nil
	case bridge.ActionReadTag:
		return nil, r.readTag(cmd.Args)
	case bridge.ActionWriteTag:
		return nil, r.writeTag(cmd.Args)
	case bridge.ActionProgramTag:
		return nil, r.programTag(cmd.Args)
	case bridge.ActionLockUnlockTag:
		return nil, r.lockTag(cmd.Args)
	case bridge.ActionChangePower:
		return nil, r.changePower(cmd.Args)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
}

func (r *Reader) start(args []any) ([]bridge.Message, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("startInventory: %w: %d args", ErrBadArgs, len(args))
	}
	id, ok := args[0].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("startInventory: %w: session ID", ErrBadArgs)
	}
	values, ok := args[1].([]any)
	if !ok {
		return nil, fmt.Errorf("startInventory: %w: configuration values", ErrBadArgs)
	}
	cfg, err := inventory.ConfigurationFromValues(values)
	if err != nil {
		return nil, fmt.Errorf("startInventory: %w", err)
	}
	epcs, err := stringList(args[2])
	if err != nil {
		return nil, fmt.Errorf("startInventory: %w", err)
	}
	ignore, _ := args[3].(bool)

	r.session, r.config, r.ignoreList = id, cfg, ignore
	r.filter = nil
	if epcs != nil {
		r.filter = make(map[string]bool, len(epcs))
		for _, epc := range epcs {
			r.filter[strings.ToUpper(epc)] = true
		}
	}
	r.running, r.paused = true, false
	return []bridge.Message{BuildDidStartMessage(id)}, nil
}

// stringList accepts nil, []string and JSON-decoded []any
func stringList(v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: EPC %d is %T", ErrBadArgs, i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: EPC list is %T", ErrBadArgs, v)
	}
}

// argInt reads args[i] as an int, accepting JSON-decoded float64
func argInt(args []any, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrBadArgs, i)
	}
	switch n := args[i].(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: argument %d is %T", ErrBadArgs, i, args[i])
	}
}

func argString(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%w: missing argument %d", ErrBadArgs, i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %d is %T", ErrBadArgs, i, args[i])
	}
	return s, nil
}

// accessTarget resolves the tag named by args[1] and records a not-found
// access when it is missing or out of the field
func (r *Reader) accessTarget(action string, args []any) (*VirtualTag, error) {
	epc, err := argString(args, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	r.lastAccess = Access{Action: action, EPC: strings.ToUpper(epc)}
	tag := r.findTag(epc)
	if tag == nil || !tag.Present {
		r.lastAccess.Result = inventory.TagAccessTagNotFound
		return nil, nil
	}
	return tag, nil
}

func accessResult(err error) inventory.TagAccessResult {
	switch {
	case err == nil:
		return inventory.TagAccessOK
	case errors.Is(err, ErrMemoryOverrun):
		return inventory.TagAccessMemoryOverrun
	case errors.Is(err, ErrWrongPassword):
		return inventory.TagAccessWrongPassword
	case errors.Is(err, ErrTagNotPresent):
		return inventory.TagAccessTagNotFound
	default:
		return inventory.TagAccessGeneralError
	}
}

func (r *Reader) readTag(args []any) error {
	tag, err := r.accessTarget(bridge.ActionReadTag, args)
	if err != nil || tag == nil {
		return err
	}
	var nums [4]int
	for i := range nums {
		if nums[i], err = argInt(args, i+2); err != nil {
			return fmt.Errorf("readTag: %w", err)
		}
	}
	bank, offset, maxBytes := inventory.MemoryBank(nums[0]), nums[1], nums[3]
	data, err := tag.ReadBank(bank, offset, maxBytes)
	r.lastAccess.Data, r.lastAccess.Result = data, accessResult(err)
	return nil
}

func (r *Reader) writeTag(args []any) error {
	tag, err := r.accessTarget(bridge.ActionWriteTag, args)
	if err != nil || tag == nil {
		return err
	}
	bankNum, err := argInt(args, 2)
	if err != nil {
		return fmt.Errorf("writeTag: %w", err)
	}
	offset, err := argInt(args, 3)
	if err != nil {
		return fmt.Errorf("writeTag: %w", err)
	}
	var hexArgs [2][]byte
	for i := range hexArgs {
		s, err := argString(args, 4+i)
		if err != nil {
			return fmt.Errorf("writeTag: %w", err)
		}
		if hexArgs[i], err = hex.DecodeString(s); err != nil {
			return fmt.Errorf("writeTag: %w: %w", ErrBadArgs, err)
		}
	}
	password, err := argInt(args, 6)
	if err != nil {
		return fmt.Errorf("writeTag: %w", err)
	}

	data, previous, bank := hexArgs[0], hexArgs[1], inventory.MemoryBank(bankNum)
	if password != tag.Password {
		r.lastAccess.Result = inventory.TagAccessWrongPassword
		return nil
	}
	if len(previous) > 0 {
		current, err := tag.ReadBank(bank, offset, len(previous))
		if err != nil || hex.EncodeToString(current) != hex.EncodeToString(previous) {
			r.lastAccess.Result = inventory.TagAccessGeneralError
			return nil
		}
	}
	r.lastAccess.Data = data
	r.lastAccess.Result = accessResult(tag.WriteBank(bank, offset, data))
	return nil
}

func (r *Reader) programTag(args []any) error {
	tag, err := r.accessTarget(bridge.ActionProgramTag, args)
	if err != nil || tag == nil {
		return err
	}
	newEPC, err := argString(args, 2)
	if err != nil {
		return fmt.Errorf("programTag: %w", err)
	}
	epc, err := inventory.NormalizeEPC(newEPC)
	if err != nil {
		return fmt.Errorf("programTag: %w", err)
	}
	password, err := argInt(args, 3)
	if err != nil {
		return fmt.Errorf("programTag: %w", err)
	}
	if password != tag.Password {
		r.lastAccess.Result = inventory.TagAccessWrongPassword
		return nil
	}
	tag.EPC = epc
	r.lastAccess.Result = inventory.TagAccessOK
	return nil
}

func (r *Reader) lockTag(args []any) error {
	tag, err := r.accessTarget(bridge.ActionLockUnlockTag, args)
	if err != nil || tag == nil {
		return err
	}
	maskAndAction, err := argInt(args, 2)
	if err != nil {
		return fmt.Errorf("lockUnlockTag: %w", err)
	}
	password, err := argInt(args, 3)
	if err != nil {
		return fmt.Errorf("lockUnlockTag: %w", err)
	}
	if password == inventory.NoPassword {
		r.lastAccess.Result = inventory.TagAccessPasswordRequired
		return nil
	}
	if password != tag.Password {
		r.lastAccess.Result = inventory.TagAccessWrongPassword
		return nil
	}

	userMask := (maskAndAction >> inventory.LockUserMaskBitOffset) & 0x3
	userAction := (maskAndAction >> inventory.LockUserActionBitOffset) & 0x3
	if userMask != inventory.LockMaskChangeNone {
		tag.userLocked = userAction == inventory.LockActionWriteRestricted ||
			userAction == inventory.LockActionPermanentlyNotWritable
	}
	r.lastAccess.Result = inventory.TagAccessOK
	return nil
}

func (r *Reader) changePower(args []any) error {
	var levels [3]float64
	for i := range levels {
		if i+1 >= len(args) {
			return fmt.Errorf("changePower: %w: missing argument %d", ErrBadArgs, i+1)
		}
		switch v := args[i+1].(type) {
		case float64:
			levels[i] = v
		case int:
			levels[i] = float64(v)
		default:
			return fmt.Errorf("changePower: %w: argument %d is %T", ErrBadArgs, i+1, v)
		}
	}
	if levels[1] > levels[0] || levels[0] > levels[2] {
		return fmt.Errorf("changePower: %w: need min <= initial <= max", ErrBadArgs)
	}
	r.config.InitialPowerLevel, r.config.MinPowerLevel, r.config.MaxPowerLevel = levels[0], levels[1], levels[2]
	return nil
}

// Round returns one tagRead for every present tag that passes the reader
// filter. It returns nothing unless an inventory is running and not paused.
func (r *Reader) Round() []bridge.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running || r.paused {
		return nil
	}
	at := r.now()
	var msgs []bridge.Message
	for _, tag := range r.tags {
		if !tag.Present {
			continue
		}
		if r.filter != nil && r.filter[tag.EPC] == r.ignoreList {
			continue
		}
		msgs = append(msgs, bridge.Message{
			Kind:      bridge.CallbackTagRead,
			SessionID: r.session,
			Event:     tag.Read(at, r.config),
		})
	}
	return msgs
}

// Tick returns a reader-driven history interval while running
func (r *Reader) Tick() []bridge.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return nil
	}
	return []bridge.Message{BuildHistoryIntervalMessage(r.session)}
}

// Disconnect simulates losing the reader mid-inventory
func (r *Reader) Disconnect() []bridge.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return nil
	}
	r.running, r.paused = false, false
	return []bridge.Message{BuildDidStopMessage(r.session, inventory.CompletedLostConnection)}
}
