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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistory_ShiftAndRead(t *testing.T) {
	t.Parallel()

	h := newHistory(3)
	assert.False(t, h.visible())

	h = h.withReads(1).withReads(1)
	assert.Equal(t, history{2, 0, 0}, h)
	assert.True(t, h.visible())

	h = h.shifted()
	assert.Equal(t, history{0, 2, 0}, h)
	h = h.withReads(1).shifted()
	assert.Equal(t, history{0, 1, 2}, h)
	h = h.shifted().shifted()
	assert.Equal(t, history{0, 0, 0}, h)
	assert.False(t, h.visible())
}

func TestHistory_Immutable(t *testing.T) {
	t.Parallel()

	h := newHistory(2).withReads(1)
	next := h.withReads(1)
	shifted := h.shifted()
	assert.Equal(t, history{1, 0}, h)
	assert.Equal(t, history{2, 0}, next)
	assert.Equal(t, history{0, 1}, shifted)
}

func TestReadState_Derivation(t *testing.T) {
	t.Parallel()

	tag := newTag("E200", time.Unix(100, 0))
	s := initialReadState(tag, 4)
	assert.False(t, s.Visible())
	assert.Equal(t, 4, s.HistoryDepth())
	assert.Equal(t, "Not visible", s.HistoryString())

	at := time.Unix(101, 0)
	s1 := s.afterRead(at, RSSI{I: -40, Q: -42})
	assert.True(t, s1.Visible())
	assert.Equal(t, 1, s1.TotalReads())
	assert.Equal(t, at, s1.MostRecentRead())
	assert.Equal(t, RSSI{I: -40, Q: -42}, s1.MostRecentRSSI())
	assert.Same(t, tag, s1.Tag())
	assert.Equal(t, 0, s.TotalReads(), "previous snapshot must not change")

	s2 := s1.afterInterval()
	assert.Equal(t, []int{0, 1, 0, 0}, s2.History())
	assert.Equal(t, []int{0, 0, 1, 0}, s2.HistoryOldestFirst())
	assert.Equal(t, 1, s2.TotalReads())
	assert.Equal(t, at, s2.MostRecentRead())
	assert.Equal(t, ".1..", s2.HistoryString())
	assert.Contains(t, s2.String(), "E200")
}

func TestReadState_HistoryString(t *testing.T) {
	t.Parallel()

	tag := newTag("E200", time.Time{})
	s := initialReadState(tag, 3)
	for range 12 {
		s = s.afterRead(time.Time{}, RSSI{})
	}
	s = s.afterInterval()
	for range 3 {
		s = s.afterRead(time.Time{}, RSSI{})
	}
	assert.Equal(t, "3*.", s.HistoryString())
}

func TestReadState_AfterReadsCountsBatch(t *testing.T) {
	t.Parallel()

	tag := newTag("E200", time.Time{})
	s := initialReadState(tag, 3).afterReads(time.Time{}, RSSI{}, 4)
	assert.Equal(t, 4, s.TotalReads())
	assert.Equal(t, []int{4, 0, 0}, s.History())
	assert.True(t, s.Visible())
}
