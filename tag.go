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

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	ndef "github.com/hsanjuan/go-ndef"
)

// TagMemory holds the memory banks read from a tag. Nil slices mean the
// bank has not been read.
type TagMemory struct {
	TID      []byte
	User     []byte
	Reserved []byte
}

func (m *TagMemory) merge(other TagMemory) *TagMemory {
	merged := TagMemory{}
	if m != nil {
		merged = *m
	}
	if other.TID != nil {
		merged.TID = other.TID
	}
	if other.User != nil {
		merged.User = other.User
	}
	if other.Reserved != nil {
		merged.Reserved = other.Reserved
	}
	return &merged
}

func (m TagMemory) empty() bool {
	return m.TID == nil && m.User == nil && m.Reserved == nil
}

// Tag is an RFID tag seen during an inventory session.
// Tags are owned by their session and safe to read from observer callbacks.
type Tag struct {
	firstRead time.Time
	memory    atomic.Pointer[TagMemory]
	state     atomic.Pointer[ReadState]
	epc       string
}

func newTag(epc string, firstRead time.Time) *Tag {
	return &Tag{epc: epc, firstRead: firstRead}
}

// EPC returns the tag's EPC as uppercase hex
func (t *Tag) EPC() string {
	return t.epc
}

// EPCBytes returns the decoded EPC
func (t *Tag) EPCBytes() []byte {
	b, _ := hex.DecodeString(t.epc)
	return b
}

// FirstRead returns when the tag was first read in this session
func (t *Tag) FirstRead() time.Time {
	return t.firstRead
}

// ReadState returns the tag's most recent read state
func (t *Tag) ReadState() *ReadState {
	return t.state.Load()
}

// Memory returns a copy of the cached memory banks
func (t *Tag) Memory() TagMemory {
	m := t.memory.Load()
	if m == nil {
		return TagMemory{}
	}
	return TagMemory{
		TID:      cloneBytes(m.TID),
		User:     cloneBytes(m.User),
		Reserved: cloneBytes(m.Reserved),
	}
}

// TIDMemory returns the cached TID bank, or nil if it has not been read
func (t *Tag) TIDMemory() []byte {
	return t.Memory().TID
}

// UserMemory returns the cached USER bank, or nil if it has not been read
func (t *Tag) UserMemory() []byte {
	return t.Memory().User
}

// ReservedMemory returns the cached RESERVED bank, or nil if it has not been read
func (t *Tag) ReservedMemory() []byte {
	return t.Memory().Reserved
}

// UserMemoryNDEF decodes the cached USER bank as an NDEF message
func (t *Tag) UserMemoryNDEF() (*ndef.Message, error) {
	user := t.UserMemory()
	if len(user) == 0 {
		return nil, ErrNoUserMemory
	}
	msg := &ndef.Message{}
	if _, err := msg.Unmarshal(user); err != nil {
		return nil, fmt.Errorf("decode USER memory as NDEF: %w", err)
	}
	return msg, nil
}

func (t *Tag) updateMemory(m TagMemory) {
	if m.empty() {
		return
	}
	t.memory.Store(t.memory.Load().merge(m))
}

func (t *Tag) String() string {
	var sb strings.Builder
	_, _ = sb.WriteString("Tag: ")
	_, _ = sb.WriteString(t.epc)
	m := t.memory.Load()
	if m != nil {
		if m.TID != nil {
			_, _ = fmt.Fprintf(&sb, ", TID: %X", m.TID)
		}
		if m.User != nil {
			_, _ = fmt.Fprintf(&sb, ", USER: %X", m.User)
		}
		if m.Reserved != nil {
			_, _ = fmt.Fprintf(&sb, ", RESERVED: %X", m.Reserved)
		}
	}
	return sb.String()
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// RSSI is a signal strength pair from the reader's I and Q channels
type RSSI struct {
	I int `json:"i"`
	Q int `json:"q"`
}

// PerReadDetail is reported for each read when detailed per-read data is enabled
type PerReadDetail struct {
	Timestamp time.Time `json:"timestamp"`
	Frequency int       `json:"frequency"`
	RSSII     int       `json:"rssiI"`
	RSSIQ     int       `json:"rssiQ"`
	ReadData1 int       `json:"readData1"`
	ReadData2 int       `json:"readData2"`
}

func (d PerReadDetail) String() string {
	return fmt.Sprintf("[%s, %d Hz, %d/%d]", d.Timestamp.Format(time.RFC3339Nano), d.Frequency, d.RSSII, d.RSSIQ)
}
