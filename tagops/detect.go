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

package tagops

import (
	"errors"
	"fmt"
	"strings"

	inventory "github.com/ZaparooProject/go-inventory"
)

// Gen2 TID class identifier (ISO/IEC 15963 allocation class for EPCglobal)
const gen2ClassID = 0xE2

const unknownManufacturer = "Unknown"

// Errors returned when decoding tag memory
var (
	ErrNoTag       = errors.New("no tag")
	ErrShortTID    = errors.New("TID memory shorter than the class header")
	ErrNotGen2TID  = errors.New("TID is not an EPCglobal Gen2 TID")
	ErrNoNDEFTexts = errors.New("USER memory holds no NDEF records")
)

// manufacturers maps 9-bit mask designer IDs to chip vendors
var manufacturers = map[uint16]string{
	0x001: "Impinj",
	0x002: "Texas Instruments",
	0x003: "Alien Technology",
	0x004: "Intelleflex",
	0x005: "Atmel",
	0x006: "NXP Semiconductors",
	0x007: "STMicroelectronics",
	0x008: "EP Microelectronics",
	0x009: "Motorola",
	0x00A: "Sentech",
	0x00B: "EM Microelectronic",
	0x00C: "Renesas",
	0x00D: "Mstar",
	0x00E: "Tyco International",
	0x00F: "Quanray Electronics",
	0x010: "Fujitsu",
}

// TID is the decoded class header of a Gen2 TID bank
type TID struct {
	Manufacturer string
	// Serial holds the bytes after the 4 byte class header
	Serial   []byte
	MDID     uint16
	Model    uint16
	Extended bool
}

// String returns vendor and model, e.g. "Impinj model 0x105"
func (t TID) String() string {
	return fmt.Sprintf("%s model 0x%03X", t.Manufacturer, t.Model)
}

// DecodeTID decodes the class header of a TID memory bank
func DecodeTID(tid []byte) (TID, error) {
	if len(tid) < 4 {
		return TID{}, ErrShortTID
	}
	if tid[0] != gen2ClassID {
		return TID{}, fmt.Errorf("%w: class 0x%02X", ErrNotGen2TID, tid[0])
	}

	// bit 8 flags an extended TID, bits 11-19 are the mask designer ID and
	// bits 20-31 the model number
	mdid := (uint16(tid[1])<<8 | uint16(tid[2])) >> 4 & 0x1FF
	info := TID{
		MDID:         mdid,
		Model:        uint16(tid[2]&0x0F)<<8 | uint16(tid[3]),
		Extended:     tid[1]&0x80 != 0,
		Manufacturer: unknownManufacturer,
	}
	if name, ok := manufacturers[mdid]; ok {
		info.Manufacturer = name
	}
	if len(tid) > 4 {
		info.Serial = append([]byte(nil), tid[4:]...)
	}
	return info, nil
}

// TagInfo contains what could be decoded from a tag's cached memory
type TagInfo struct {
	// TID is nil when the TID bank was not read or is not a Gen2 TID
	TID *TID
	EPC string
	// Texts holds the payloads of the NDEF records in USER memory
	Texts []string
}

// Chip returns the chip description, or "-" when the TID is unknown
func (i *TagInfo) Chip() string {
	if i.TID == nil {
		return "-"
	}
	return i.TID.String()
}

// Text returns the NDEF record payloads joined by "; ", or "-"
func (i *TagInfo) Text() string {
	if len(i.Texts) == 0 {
		return "-"
	}
	return strings.Join(i.Texts, "; ")
}

// Describe decodes the memory cached on tag. Banks that were not read or do
// not decode are left empty.
func Describe(tag *inventory.Tag) (*TagInfo, error) {
	if tag == nil {
		return nil, ErrNoTag
	}
	info := &TagInfo{EPC: tag.EPC()}
	if tid, err := DecodeTID(tag.TIDMemory()); err == nil {
		info.TID = &tid
	}
	if texts, err := NDEFTexts(tag); err == nil {
		info.Texts = texts
	}
	return info, nil
}

// NDEFTexts returns the payload of every record of the NDEF message in the
// tag's USER memory
func NDEFTexts(tag *inventory.Tag) ([]string, error) {
	msg, err := tag.UserMemoryNDEF()
	if err != nil {
		return nil, err
	}
	var texts []string
	for _, rec := range msg.Records {
		payload, err := rec.Payload()
		if err != nil {
			continue
		}
		texts = append(texts, payload.String())
	}
	if len(texts) == 0 {
		return nil, ErrNoNDEFTexts
	}
	return texts, nil
}
