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
	"fmt"
	"strings"
	"time"
)

// history is the per-interval read counts of one tag, newest interval first.
// Values are never modified after construction; every change builds a new slice.
type history []int

func newHistory(depth int) history {
	return make(history, depth)
}

// withReads counts n reads in the current interval
func (h history) withReads(n int) history {
	next := make(history, len(h))
	copy(next, h)
	next[0] += n
	return next
}

// shifted starts a new interval: the oldest count drops off and the current
// interval starts at zero.
func (h history) shifted() history {
	next := make(history, len(h))
	copy(next[1:], h[:len(h)-1])
	return next
}

func (h history) visible() bool {
	for _, n := range h {
		if n != 0 {
			return true
		}
	}
	return false
}

func (h history) String() string {
	var sb strings.Builder
	for _, n := range h {
		switch {
		case n == 0:
			_ = sb.WriteByte('.')
		case n < 10:
			_ = sb.WriteByte(byte('0' + n))
		default:
			_ = sb.WriteByte('*')
		}
	}
	return sb.String()
}

// ReadState is a snapshot of a tag's read statistics. A new ReadState
// replaces the previous one on every read and every interval boundary, so a
// snapshot handed to an observer never changes underneath it.
type ReadState struct {
	mostRecentRead time.Time
	tag            *Tag
	history        history
	rssi           RSSI
	totalReads     int
	visible        bool
}

// Tag returns the tag this state belongs to
func (s *ReadState) Tag() *Tag {
	return s.tag
}

// TotalReads returns the number of reads since inventory started
func (s *ReadState) TotalReads() int {
	return s.totalReads
}

// MostRecentRead returns the time of the most recent read
func (s *ReadState) MostRecentRead() time.Time {
	return s.mostRecentRead
}

// MostRecentRSSI returns the signal strength of the most recent read
func (s *ReadState) MostRecentRSSI() RSSI {
	return s.rssi
}

// Visible reports whether the tag was read within the history window
func (s *ReadState) Visible() bool {
	return s.visible
}

// HistoryDepth returns the number of intervals in the history window
func (s *ReadState) HistoryDepth() int {
	return len(s.history)
}

// History returns the read count of each interval, current interval first
func (s *ReadState) History() []int {
	return append([]int(nil), s.history...)
}

// HistoryOldestFirst returns the read count of each interval, oldest interval first
func (s *ReadState) HistoryOldestFirst() []int {
	out := make([]int, len(s.history))
	for i, n := range s.history {
		out[len(out)-1-i] = n
	}
	return out
}

// HistoryString renders the history for debugging: '.' for no reads, a
// digit for 1-9 reads and '*' for more.
func (s *ReadState) HistoryString() string {
	if !s.visible {
		return "Not visible"
	}
	return s.history.String()
}

func (s *ReadState) String() string {
	return fmt.Sprintf("ReadState: %s: %d total reads, rssi: %d/%d, history: %s",
		s.tag.EPC(), s.totalReads, s.rssi.I, s.rssi.Q, s.HistoryString())
}

// afterRead derives the state following one read of the tag
func (s *ReadState) afterRead(at time.Time, rssi RSSI) *ReadState {
	return s.afterReads(at, rssi, 1)
}

// afterReads derives the state following n reads reported together
func (s *ReadState) afterReads(at time.Time, rssi RSSI, n int) *ReadState {
	h := s.history.withReads(n)
	return &ReadState{
		tag:            s.tag,
		totalReads:     s.totalReads + n,
		mostRecentRead: at,
		rssi:           rssi,
		history:        h,
		visible:        true,
	}
}

// afterInterval derives the state at the start of a new history interval
func (s *ReadState) afterInterval() *ReadState {
	h := s.history.shifted()
	return &ReadState{
		tag:            s.tag,
		totalReads:     s.totalReads,
		mostRecentRead: s.mostRecentRead,
		rssi:           s.rssi,
		history:        h,
		visible:        h.visible(),
	}
}

func initialReadState(tag *Tag, depth int) *ReadState {
	return &ReadState{tag: tag, history: newHistory(depth)}
}
