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
	"errors"
	"fmt"
	"strings"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/hsanjuan/go-ndef"
)

// Virtual tag errors
var (
	ErrTagNotPresent  = errors.New("tag not present")
	ErrMemoryOverrun  = errors.New("memory overrun")
	ErrWriteProtected = errors.New("bank is write protected")
	ErrWrongPassword  = errors.New("wrong password")
)

// Default bank sizes of a virtual tag
const (
	DefaultTIDBytes      = 12
	DefaultUserBytes     = 64
	DefaultReservedBytes = 8
)

// VirtualTag represents a simulated UHF Gen2 tag for testing
type VirtualTag struct {
	EPC      string
	TID      []byte
	User     []byte
	Reserved []byte
	RSSI     inventory.RSSI
	Password int
	Present  bool
	// userLocked is set by a lock command that restricts user memory writes
	userLocked bool
}

// NewVirtualTag creates a present tag with zeroed user memory and a TID
// derived from the EPC
func NewVirtualTag(epc string) *VirtualTag {
	epc = strings.ToUpper(epc)
	tid := make([]byte, DefaultTIDBytes)
	copy(tid, []byte{0xE2, 0x80, 0x11, 0x05})
	for i := 0; i < len(epc); i++ {
		tid[4+i%(DefaultTIDBytes-4)] ^= epc[i]
	}
	return &VirtualTag{
		EPC:      epc,
		TID:      tid,
		User:     make([]byte, DefaultUserBytes),
		Reserved: make([]byte, DefaultReservedBytes),
		RSSI:     inventory.RSSI{I: -50, Q: -50},
		Present:  true,
	}
}

func (v *VirtualTag) bank(b inventory.MemoryBank) (*[]byte, error) {
	switch b {
	case inventory.MemoryBankReserved:
		return &v.Reserved, nil
	case inventory.MemoryBankTID:
		return &v.TID, nil
	case inventory.MemoryBankUser:
		return &v.User, nil
	default:
		return nil, fmt.Errorf("bank %s is not byte addressable here", b)
	}
}

// ReadBank reads n bytes from bank at word offset. n of zero reads to the
// end of the bank.
func (v *VirtualTag) ReadBank(b inventory.MemoryBank, wordOffset, n int) ([]byte, error) {
	if !v.Present {
		return nil, ErrTagNotPresent
	}
	mem, err := v.bank(b)
	if err != nil {
		return nil, err
	}
	start := wordOffset * 2
	if n == 0 {
		n = len(*mem) - start
	}
	if start < 0 || n < 0 || start+n > len(*mem) {
		return nil, fmt.Errorf("%w: %s[%d:%d] of %d bytes", ErrMemoryOverrun, b, start, start+n, len(*mem))
	}
	return append([]byte(nil), (*mem)[start:start+n]...), nil
}

// WriteBank writes data to bank at word offset
func (v *VirtualTag) WriteBank(b inventory.MemoryBank, wordOffset int, data []byte) error {
	if !v.Present {
		return ErrTagNotPresent
	}
	if b == inventory.MemoryBankUser && v.userLocked {
		return ErrWriteProtected
	}
	mem, err := v.bank(b)
	if err != nil {
		return err
	}
	start := wordOffset * 2
	if start < 0 || start+len(data) > len(*mem) {
		return fmt.Errorf("%w: %s[%d:%d] of %d bytes", ErrMemoryOverrun, b, start, start+len(data), len(*mem))
	}
	copy((*mem)[start:], data)
	return nil
}

// SetUserNDEFText stores a text NDEF message at the start of user memory,
// padded to a whole number of words
func (v *VirtualTag) SetUserNDEFText(text string) error {
	data, err := ndef.NewTextMessage(text, "en").Marshal()
	if err != nil {
		return fmt.Errorf("marshal NDEF: %w", err)
	}
	if len(data)%2 != 0 {
		data = append(data, 0)
	}
	if len(data) > inventory.MaxMemoryBankBytes {
		return fmt.Errorf("%w: NDEF message is %d bytes", ErrMemoryOverrun, len(data))
	}
	if len(data) > len(v.User) {
		v.User = make([]byte, len(data))
	}
	return v.WriteBank(inventory.MemoryBankUser, 0, data)
}

// Remove takes the tag out of the field
func (v *VirtualTag) Remove() {
	v.Present = false
}

// Insert puts the tag back in the field
func (v *VirtualTag) Insert() {
	v.Present = true
}

// Read returns the raw event the reader reports for one read of v, with the
// memory banks cfg asks for
func (v *VirtualTag) Read(at time.Time, cfg inventory.Configuration) inventory.RawEvent {
	ev := inventory.RawEvent{Timestamp: at, EPC: v.EPC}
	if cfg.ReportRssi {
		ev.RSSI = v.RSSI
	}
	ev.Memory.TID = truncateBank(v.TID, cfg.MaxTidBytes)
	ev.Memory.User = truncateBank(v.User, cfg.MaxUserBytes)
	ev.Memory.Reserved = truncateBank(v.Reserved, cfg.MaxReservedBytes)
	if cfg.DetailedPerReadData {
		ev.Details = []inventory.PerReadDetail{{
			Timestamp: at,
			Frequency: 915250,
			RSSII:     v.RSSI.I,
			RSSIQ:     v.RSSI.Q,
		}}
	}
	return ev
}

// truncateBank returns at most limit bytes of mem, rounded down to whole
// words. A limit of zero means the bank is not reported.
func truncateBank(mem []byte, limit int) []byte {
	if limit <= 0 || len(mem) == 0 {
		return nil
	}
	limit = min(limit, len(mem), inventory.MaxMemoryBankBytes)
	limit -= limit % 2
	if limit == 0 {
		return nil
	}
	return append([]byte(nil), mem[:limit]...)
}
