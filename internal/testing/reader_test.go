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
	"bytes"
	"testing"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/ZaparooProject/go-inventory/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func startedReader(t *testing.T, cfg inventory.Configuration, epcs []string, ignore bool, tags ...*VirtualTag) *Reader {
	t.Helper()
	r := NewReader(tags...)
	r.SetClock(func() time.Time { return testTime })
	msgs, err := r.Execute(bridge.StartInventory("sim", cfg, epcs, ignore, inventory.Capabilities{}))
	require.NoError(t, err)
	require.Equal(t, []bridge.Message{BuildDidStartMessage("sim")}, msgs)
	return r
}

// overWire sends cmd through its JSON encoding, as a serial reader sees it
func overWire(t *testing.T, cmd bridge.Command) bridge.Command {
	t.Helper()
	line, err := cmd.Encode()
	require.NoError(t, err)
	decoded, err := bridge.DecodeCommand(line)
	require.NoError(t, err)
	return decoded
}

func epcsOf(msgs []bridge.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Event.EPC
	}
	return out
}

func TestReader_StartAndRound(t *testing.T) {
	t.Parallel()

	cfg := inventory.DefaultConfiguration()
	cfg.ReportRssi = true
	cfg.MaxTidBytes = 5
	aa, bb := NewVirtualTag("e200aa"), NewVirtualTag("E200BB")
	r := startedReader(t, cfg, nil, false, aa, bb)

	assert.True(t, r.Running())
	assert.Equal(t, "sim", r.SessionID())
	assert.Equal(t, cfg, r.Configuration())

	msgs := r.Round()
	require.Equal(t, []string{"E200AA", "E200BB"}, epcsOf(msgs))
	ev := msgs[0].Event
	assert.Equal(t, testTime, ev.Timestamp)
	assert.Equal(t, aa.RSSI, ev.RSSI)
	assert.Equal(t, aa.TID[:4], ev.Memory.TID)
	assert.Nil(t, ev.Memory.User)

	bb.Remove()
	assert.Equal(t, []string{"E200AA"}, epcsOf(r.Round()))
	assert.True(t, r.SetPresent("E200BB", true))
	assert.False(t, r.SetPresent("FFFF", true))
	assert.Len(t, r.Round(), 2)

	assert.Equal(t, []bridge.Message{BuildHistoryIntervalMessage("sim")}, r.Tick())
}

func TestReader_Filter(t *testing.T) {
	t.Parallel()

	tags := func() []*VirtualTag {
		return []*VirtualTag{NewVirtualTag("AA"), NewVirtualTag("BB"), NewVirtualTag("CC")}
	}

	t.Run("Include", func(t *testing.T) {
		t.Parallel()
		r := startedReader(t, inventory.DefaultConfiguration(), []string{"aa", "CC"}, false, tags()...)
		assert.Equal(t, []string{"AA", "CC"}, epcsOf(r.Round()))
	})

	t.Run("Ignore", func(t *testing.T) {
		t.Parallel()
		r := startedReader(t, inventory.DefaultConfiguration(), []string{"BB"}, true, tags()...)
		assert.Equal(t, []string{"AA", "CC"}, epcsOf(r.Round()))
		epcs, ignore := r.FilterEPCs()
		assert.Equal(t, []string{"BB"}, epcs)
		assert.True(t, ignore)
	})

	t.Run("OverWire", func(t *testing.T) {
		t.Parallel()
		r := NewReader(tags()...)
		cmd := bridge.StartInventory("sim", inventory.DefaultConfiguration(), []string{"BB"}, false,
			inventory.Capabilities{TagFound: true})
		_, err := r.Execute(overWire(t, cmd))
		require.NoError(t, err)
		assert.Equal(t, []string{"BB"}, epcsOf(r.Round()))
		assert.Equal(t, inventory.DefaultConfiguration(), r.Configuration())
	})
}

func TestReader_Lifecycle(t *testing.T) {
	t.Parallel()

	r := startedReader(t, inventory.DefaultConfiguration(), nil, false, NewVirtualTag("AA"))

	_, err := r.Execute(bridge.PauseInventory("sim"))
	require.NoError(t, err)
	assert.True(t, r.Paused())
	assert.Empty(t, r.Round())

	_, err = r.Execute(bridge.ResumeInventory("other"))
	require.ErrorIs(t, err, ErrWrongSession)

	_, err = r.Execute(bridge.ResumeInventory("sim"))
	require.NoError(t, err)
	assert.Len(t, r.Round(), 1)

	msgs, err := r.Execute(bridge.StopInventory("sim"))
	require.NoError(t, err)
	assert.Equal(t, []bridge.Message{BuildDidStopMessage("sim", inventory.CompletedOK)}, msgs)
	assert.False(t, r.Running())
	assert.Empty(t, r.Round())
	assert.Empty(t, r.Tick())
	assert.Empty(t, r.Disconnect())

	_, err = r.Execute(bridge.StopInventory("sim"))
	require.ErrorIs(t, err, ErrNotRunning)
	assert.Len(t, r.Commands(), 6)
}

func TestReader_Disconnect(t *testing.T) {
	t.Parallel()

	r := startedReader(t, inventory.DefaultConfiguration(), nil, false)
	assert.Equal(t, []bridge.Message{BuildDidStopMessage("sim", inventory.CompletedLostConnection)}, r.Disconnect())
	assert.False(t, r.Running())
}

func TestReader_TagAccess(t *testing.T) {
	t.Parallel()

	tag := NewVirtualTag("AA")
	tag.Password = 0x1234
	r := startedReader(t, inventory.DefaultConfiguration(), nil, false, tag)

	exec := func(cmd bridge.Command) Access {
		t.Helper()
		_, err := r.Execute(overWire(t, cmd))
		require.NoError(t, err)
		return r.LastAccess()
	}

	t.Run("WriteRead", func(t *testing.T) {
		acc := exec(bridge.WriteTag("sim", "aa", inventory.MemoryBankUser, 2, []byte{1, 2, 3, 4}, nil, 0x1234))
		assert.Equal(t, inventory.TagAccessOK, acc.Result)
		acc = exec(bridge.ReadTag("sim", "AA", inventory.MemoryBankUser, 2, 4, 4))
		assert.Equal(t, inventory.TagAccessOK, acc.Result)
		assert.Equal(t, []byte{1, 2, 3, 4}, acc.Data)
	})

	t.Run("WritePreviousMismatch", func(t *testing.T) {
		acc := exec(bridge.WriteTag("sim", "AA", inventory.MemoryBankUser, 2, []byte{9, 9}, []byte{7, 7}, 0x1234))
		assert.Equal(t, inventory.TagAccessGeneralError, acc.Result)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		acc := exec(bridge.WriteTag("sim", "AA", inventory.MemoryBankUser, 0, []byte{1, 1}, nil, 1))
		assert.Equal(t, inventory.TagAccessWrongPassword, acc.Result)
	})

	t.Run("Overrun", func(t *testing.T) {
		acc := exec(bridge.ReadTag("sim", "AA", inventory.MemoryBankUser, 40, 4, 4))
		assert.Equal(t, inventory.TagAccessMemoryOverrun, acc.Result)
	})

	t.Run("NotFound", func(t *testing.T) {
		acc := exec(bridge.ReadTag("sim", "FFFF", inventory.MemoryBankTID, 0, 4, 4))
		assert.Equal(t, inventory.TagAccessTagNotFound, acc.Result)
		assert.Equal(t, "FFFF", acc.EPC)
	})

	t.Run("Lock", func(t *testing.T) {
		lock := inventory.LockMaskAndAction(inventory.LockUserMaskBitOffset, inventory.LockMaskChangeWritable,
			inventory.LockUserActionBitOffset, inventory.LockActionWriteRestricted)
		acc := exec(bridge.LockUnlockTag("sim", "AA", lock, inventory.NoPassword))
		assert.Equal(t, inventory.TagAccessPasswordRequired, acc.Result)
		acc = exec(bridge.LockUnlockTag("sim", "AA", lock, 0x1234))
		assert.Equal(t, inventory.TagAccessOK, acc.Result)
		acc = exec(bridge.WriteTag("sim", "AA", inventory.MemoryBankUser, 0, []byte{1, 1}, nil, 0x1234))
		assert.Equal(t, inventory.TagAccessGeneralError, acc.Result)
	})

	t.Run("Program", func(t *testing.T) {
		acc := exec(bridge.ProgramTag("sim", "AA", "e200cc", 0x1234))
		assert.Equal(t, inventory.TagAccessOK, acc.Result)
		assert.Equal(t, []string{"E200CC"}, epcsOf(r.Round()))
		assert.NotNil(t, r.Tag("e200cc"))
	})
}

func TestReader_ChangePower(t *testing.T) {
	t.Parallel()

	r := startedReader(t, inventory.DefaultConfiguration(), nil, false)
	_, err := r.Execute(overWire(t, bridge.ChangePower("sim", 20, 10, 30)))
	require.NoError(t, err)
	cfg := r.Configuration()
	assert.InDelta(t, 20.0, cfg.InitialPowerLevel, 0)
	assert.InDelta(t, 10.0, cfg.MinPowerLevel, 0)
	assert.InDelta(t, 30.0, cfg.MaxPowerLevel, 0)

	_, err = r.Execute(bridge.ChangePower("sim", 5, 10, 30))
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestReader_BadCommands(t *testing.T) {
	t.Parallel()

	r := NewReader()
	_, err := r.Execute(bridge.Command{Action: bridge.ActionStartInventory, Args: []any{"sim"}})
	require.ErrorIs(t, err, ErrBadArgs)
	_, err = r.Execute(bridge.Command{Action: bridge.ActionStartInventory, Args: []any{"sim", []any{1}, nil, false}})
	require.Error(t, err)

	r = startedReader(t, inventory.DefaultConfiguration(), nil, false, NewVirtualTag("AA"))
	_, err = r.Execute(bridge.Command{Action: "selfDestruct", Args: []any{"sim"}})
	require.ErrorIs(t, err, ErrUnknownAction)
	_, err = r.Execute(bridge.Command{Action: bridge.ActionReadTag, Args: []any{"sim", "AA", "bank"}})
	require.ErrorIs(t, err, ErrBadArgs)
}

func TestVirtualTag(t *testing.T) {
	t.Parallel()

	tag := NewVirtualTag("E200AA")
	require.NoError(t, tag.SetUserNDEFText("hello"))

	cfg := inventory.DefaultConfiguration()
	cfg.MaxUserBytes = 200
	cfg.DetailedPerReadData = true
	ev := tag.Read(testTime, cfg)
	assert.Len(t, ev.Memory.User, DefaultUserBytes)
	assert.Equal(t, inventory.RSSI{}, ev.RSSI)
	require.Len(t, ev.Details, 1)
	assert.Equal(t, testTime, ev.Details[0].Timestamp)

	normalized, err := ev.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "E200AA", normalized.EPC)

	tag.Remove()
	_, err = tag.ReadBank(inventory.MemoryBankUser, 0, 2)
	require.ErrorIs(t, err, ErrTagNotPresent)
	require.ErrorIs(t, tag.WriteBank(inventory.MemoryBankUser, 0, []byte{1, 2}), ErrTagNotPresent)
	tag.Insert()
	_, err = tag.ReadBank(inventory.MemoryBankEPC, 0, 2)
	require.Error(t, err)

	assert.Nil(t, truncateBank([]byte{1, 2, 3}, 1))
	assert.Equal(t, []byte{1, 2}, truncateBank([]byte{1, 2, 3}, 3))
}

func TestWriteReplay(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteReplay(&buf,
		BuildDidStartMessage("sim"),
		BuildTagReadMessage("sim", "AA", testTime),
		BuildHistoryIntervalMessage("sim"),
		BuildDidStopMessage("sim", inventory.CompletedOK),
	))
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)

	msg, err := bridge.Decode(lines[1])
	require.NoError(t, err)
	assert.Equal(t, bridge.CallbackTagRead, msg.Kind)
	assert.Equal(t, "AA", msg.Event.EPC)
	assert.True(t, testTime.Equal(msg.Event.Timestamp))

	require.Error(t, WriteReplay(&buf, bridge.Message{}))
}
