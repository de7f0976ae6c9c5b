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

import "sync/atomic"

// Diagnostics is a snapshot of a session's counters
type Diagnostics struct {
	RawEvents       int64 // Raw events received
	ProcessedReads  int64 // Reads that updated a tag
	FilteredEvents  int64 // Reads rejected by the EPC filter
	IgnoredEvents   int64 // Reads dropped while not scanning or paused
	MalformedEvents int64 // Events dropped as malformed
	IntervalTicks   int64 // History intervals that shifted tag history
	IgnoredTicks    int64 // Ticks dropped because nothing needed shifting
	ObserverPanics  int64 // Observer callbacks that panicked
	Notifications   int64 // Notifications delivered
}

type diagnostics struct {
	rawEvents       atomic.Int64
	processedReads  atomic.Int64
	filteredEvents  atomic.Int64
	ignoredEvents   atomic.Int64
	malformedEvents atomic.Int64
	intervalTicks   atomic.Int64
	ignoredTicks    atomic.Int64
	observerPanics  atomic.Int64
	notifications   atomic.Int64
}

func (d *diagnostics) snapshot() Diagnostics {
	return Diagnostics{
		RawEvents:       d.rawEvents.Load(),
		ProcessedReads:  d.processedReads.Load(),
		FilteredEvents:  d.filteredEvents.Load(),
		IgnoredEvents:   d.ignoredEvents.Load(),
		MalformedEvents: d.malformedEvents.Load(),
		IntervalTicks:   d.intervalTicks.Load(),
		IgnoredTicks:    d.ignoredTicks.Load(),
		ObserverPanics:  d.observerPanics.Load(),
		Notifications:   d.notifications.Load(),
	}
}
