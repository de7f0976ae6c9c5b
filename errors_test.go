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
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidConfigError(t *testing.T) {
	t.Parallel()

	err := NewInvalidConfigError("historyDepth", 0, "must be positive")
	assert.Equal(t, "invalid configuration: historyDepth=0: must be positive", err.Error())
	require.ErrorIs(t, err, ErrInvalidConfig)

	wrapped := errors.Join(errors.New("start"), err)
	var cfgErr *InvalidConfigError
	require.ErrorAs(t, wrapped, &cfgErr)
	assert.Equal(t, "historyDepth", cfgErr.Field)
	assert.Equal(t, 0, cfgErr.Value)
}

func TestMalformedEventError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err     *MalformedEventError
		cause   error
		name    string
		message string
	}{
		{
			name:    "WithoutCause",
			err:     NewMalformedEventError("empty EPC", nil),
			message: "malformed event: empty EPC",
		},
		{
			name:    "WithCause",
			err:     NewMalformedEventError("truncated line", io.ErrUnexpectedEOF),
			cause:   io.ErrUnexpectedEOF,
			message: "malformed event: truncated line: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.message, tt.err.Error())
			assert.True(t, IsMalformed(tt.err))
			require.ErrorIs(t, tt.err, ErrMalformedEvent)
			if tt.cause != nil {
				require.ErrorIs(t, tt.err, tt.cause)
			}
		})
	}

	assert.False(t, IsMalformed(io.EOF))
	assert.False(t, IsMalformed(nil))
}

func TestCompletionCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ok", CompletedOK.String())
	assert.Equal(t, "lost connection", CompletedLostConnection.String())
	assert.False(t, CompletedOK.IsTransportError())
	assert.True(t, CompletedErrorSending.IsTransportError())
	assert.True(t, CompletedLostConnection.RetainsState())
	assert.False(t, CompletedErrorSending.RetainsState())
	assert.True(t, CompletedRegionNotSet.Known())
	assert.False(t, CompletionCode(50).Known())
}

func TestMemoryEnums(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "TID", MemoryBankTID.String())
	assert.True(t, MemoryBankUser.Valid())
	assert.False(t, MemoryBank(4).Valid())
	assert.True(t, SoundFirstFindAndLast.Valid())
	assert.False(t, SoundType(3).Valid())
	assert.Equal(t, 0x3<<LockUserMaskBitOffset|0x2<<LockUserActionBitOffset,
		LockMaskAndAction(LockUserMaskBitOffset, LockMaskChangeWritableAndPermalock,
			LockUserActionBitOffset, LockActionWriteRestricted))
}
