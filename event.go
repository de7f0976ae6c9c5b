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
	"time"
)

// RawEvent is one tag read reported by the reader transport
type RawEvent struct {
	Timestamp time.Time
	EPC       string
	Memory    TagMemory
	Details   []PerReadDetail
	RSSI      RSSI
	// Count is the number of reads the event reports. Zero means one.
	Count int
}

// NormalizeEPC returns the canonical uppercase hex form of an EPC.
// The EPC must be a non-empty, even-length hex string.
func NormalizeEPC(epc string) (string, error) {
	epc = strings.TrimSpace(epc)
	if epc == "" {
		return "", NewMalformedEventError("empty EPC", nil)
	}
	if len(epc)%2 != 0 {
		return "", NewMalformedEventError(fmt.Sprintf("odd-length EPC %q", epc), nil)
	}
	if _, err := hex.DecodeString(epc); err != nil {
		return "", NewMalformedEventError(fmt.Sprintf("EPC %q is not hex", epc), err)
	}
	return strings.ToUpper(epc), nil
}

// Normalize validates the event and returns a copy with a canonical EPC.
// The returned error is always a *MalformedEventError.
func (e RawEvent) Normalize() (RawEvent, error) {
	epc, err := NormalizeEPC(e.EPC)
	if err != nil {
		return RawEvent{}, err
	}
	banks := []struct {
		data []byte
		bank MemoryBank
	}{
		{e.Memory.TID, MemoryBankTID},
		{e.Memory.User, MemoryBankUser},
		{e.Memory.Reserved, MemoryBankReserved},
	}
	for _, b := range banks {
		if err := checkBankLength(b.bank, b.data); err != nil {
			return RawEvent{}, err
		}
	}
	if e.Count < 0 {
		return RawEvent{}, NewMalformedEventError(fmt.Sprintf("negative read count %d", e.Count), nil)
	}
	e.EPC = epc
	return e, nil
}

// Reads returns the number of reads the event stands for
func (e RawEvent) Reads() int {
	if e.Count < 1 {
		return 1
	}
	return e.Count
}

func checkBankLength(bank MemoryBank, data []byte) error {
	if len(data) > MaxMemoryBankBytes {
		return NewMalformedEventError(
			fmt.Sprintf("%s memory is %d bytes, limit is %d", bank, len(data), MaxMemoryBankBytes), nil)
	}
	if len(data)%2 != 0 {
		return NewMalformedEventError(fmt.Sprintf("%s memory is not word aligned (%d bytes)", bank, len(data)), nil)
	}
	return nil
}
