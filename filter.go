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

import "sort"

// DefaultMaxEpcsSentToReader is the largest filter the reader can apply itself
const DefaultMaxEpcsSentToReader = 32

// epcFilter decides which EPCs a session tracks.
// An empty filter accepts everything.
type epcFilter struct {
	set    map[string]struct{}
	ignore bool
}

// newEPCFilter normalizes the EPCs. Entries that are not valid EPCs can never
// match a normalized read, so they are returned separately for logging.
func newEPCFilter(epcs []string, ignore bool) (epcFilter, []string) {
	f := epcFilter{ignore: ignore}
	if len(epcs) == 0 {
		return f, nil
	}
	var invalid []string
	f.set = make(map[string]struct{}, len(epcs))
	for _, epc := range epcs {
		normalized, err := NormalizeEPC(epc)
		if err != nil {
			invalid = append(invalid, epc)
			continue
		}
		f.set[normalized] = struct{}{}
	}
	return f, invalid
}

func (f epcFilter) empty() bool {
	return len(f.set) == 0
}

// accepts reports whether a normalized EPC passes the filter
func (f epcFilter) accepts(epc string) bool {
	if f.set == nil {
		return true
	}
	_, listed := f.set[epc]
	return listed != f.ignore
}

// epcs returns the filter contents in sorted order
func (f epcFilter) epcs() []string {
	out := make([]string, 0, len(f.set))
	for epc := range f.set {
		out = append(out, epc)
	}
	sort.Strings(out)
	return out
}
