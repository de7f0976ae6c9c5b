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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEPC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		epc     string
		want    string
		wantErr bool
	}{
		{name: "Uppercase", epc: "E2801160", want: "E2801160"},
		{name: "Lowercase", epc: "e2801160", want: "E2801160"},
		{name: "Whitespace", epc: " e280 ", want: "E280"},
		{name: "Empty", epc: "", wantErr: true},
		{name: "OddLength", epc: "E28", wantErr: true},
		{name: "NotHex", epc: "ZZ11", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeEPC(tt.epc)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsMalformed(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRawEvent_Normalize(t *testing.T) {
	t.Parallel()

	ev, err := RawEvent{EPC: "abcd", Memory: TagMemory{TID: []byte{1, 2}}}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "ABCD", ev.EPC)
	assert.Equal(t, []byte{1, 2}, ev.Memory.TID)

	_, err = RawEvent{EPC: "ABCD", Memory: TagMemory{User: bytes.Repeat([]byte{0}, MaxMemoryBankBytes+2)}}.Normalize()
	require.ErrorIs(t, err, ErrMalformedEvent)

	_, err = RawEvent{EPC: "ABCD", Memory: TagMemory{Reserved: []byte{1, 2, 3}}}.Normalize()
	require.ErrorIs(t, err, ErrMalformedEvent)

	_, err = RawEvent{EPC: "ABCD", Count: -1}.Normalize()
	require.ErrorIs(t, err, ErrMalformedEvent)
}

func TestRawEvent_Reads(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, RawEvent{}.Reads())
	assert.Equal(t, 1, RawEvent{Count: 1}.Reads())
	assert.Equal(t, 7, RawEvent{Count: 7}.Reads())
}
