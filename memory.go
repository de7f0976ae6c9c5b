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

// MemoryBank identifies one of the four Gen2 tag memory banks
type MemoryBank int

// Memory banks
const (
	MemoryBankReserved MemoryBank = 0
	MemoryBankEPC      MemoryBank = 1
	MemoryBankTID      MemoryBank = 2
	MemoryBankUser     MemoryBank = 3
)

func (b MemoryBank) String() string {
	switch b {
	case MemoryBankReserved:
		return "RESERVED"
	case MemoryBankEPC:
		return "EPC"
	case MemoryBankTID:
		return "TID"
	case MemoryBankUser:
		return "USER"
	default:
		return "bank(" + strconv.Itoa(int(b)) + ")"
	}
}

// Valid reports whether b is a known memory bank
func (b MemoryBank) Valid() bool {
	return b >= MemoryBankReserved && b <= MemoryBankUser
}

// MaxMemoryBankBytes is the largest memory bank read the reader supports
const MaxMemoryBankBytes = 208

// SoundType selects the reader sounds played while scanning
type SoundType int

// Sound types
const (
	SoundNone             SoundType = 0
	SoundGeigerCounter    SoundType = 1
	SoundFirstFind        SoundType = 2
	SoundFirstFindAndLast SoundType = 6
)

func (s SoundType) String() string {
	switch s {
	case SoundNone:
		return "none"
	case SoundGeigerCounter:
		return "geiger counter"
	case SoundFirstFind:
		return "first find"
	case SoundFirstFindAndLast:
		return "first find and last"
	default:
		return "sound(" + strconv.Itoa(int(s)) + ")"
	}
}

// Valid reports whether s is a known sound type
func (s SoundType) Valid() bool {
	switch s {
	case SoundNone, SoundGeigerCounter, SoundFirstFind, SoundFirstFindAndLast:
		return true
	default:
		return false
	}
}

// TagAccessResult is returned by tag read/write/lock/program operations
type TagAccessResult int

// Tag access results
const (
	TagAccessOK               TagAccessResult = 0
	TagAccessWrongPassword    TagAccessResult = 1
	TagAccessPasswordRequired TagAccessResult = 2
	TagAccessMemoryOverrun    TagAccessResult = 3
	TagAccessTagNotFound      TagAccessResult = 4
	TagAccessGeneralError     TagAccessResult = 5
)

// NoPassword is passed to tag access operations on tags without a password
const NoPassword = 0

// Lock/unlock mask and action bit offsets, combined into the maskAndAction
// argument of a lock/unlock command.
const (
	LockKillPasswordMaskBitOffset   = 18
	LockAccessPasswordMaskBitOffset = 16
	LockEPCMaskBitOffset            = 14
	LockTIDMaskBitOffset            = 12
	LockUserMaskBitOffset           = 10

	LockKillPasswordActionBitOffset   = 8
	LockAccessPasswordActionBitOffset = 6
	LockEPCActionBitOffset            = 4
	LockTIDActionBitOffset            = 2
	LockUserActionBitOffset           = 0
)

// Lock mask values
const (
	LockMaskChangeNone                 = 0
	LockMaskChangePermalock            = 1
	LockMaskChangeWritable             = 2
	LockMaskChangeWritableAndPermalock = 3
	LockActionWritable                 = 0
	LockActionPermanentlyWritable      = 1
	LockActionWriteRestricted          = 2
	LockActionPermanentlyNotWritable   = 3
)

// LockMaskAndAction combines a mask and action for one memory area.
// maskOffset and actionOffset are one of the Lock*BitOffset pairs.
func LockMaskAndAction(maskOffset, mask, actionOffset, action int) int {
	return (mask&0x3)<<maskOffset | (action&0x3)<<actionOffset
}
