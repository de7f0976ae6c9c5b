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

package main

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/ZaparooProject/go-inventory/tagops"
)

// printer writes human-readable session events
type printer struct {
	out     io.Writer
	mu      sync.Mutex
	verbose bool
}

func (p *printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// observer returns callbacks that print session events. Subsequent finds
// are only printed in verbose mode.
func (p *printer) observer() inventory.Observer {
	obs := inventory.Observer{
		OnStarted: func() {
			p.printf("inventory started\n")
		},
		OnStopped: func(code inventory.CompletionCode) {
			p.printf("inventory stopped: %s\n", code)
		},
		OnTagChanged: func(tag *inventory.Tag, state *inventory.ReadState, firstFind bool) {
			switch {
			case firstFind:
				p.printf("+ %s  found\n", tag.EPC())
			case state.Visible():
				p.printf("+ %s  back\n", tag.EPC())
			default:
				p.printf("- %s  lost after %d reads\n", tag.EPC(), state.TotalReads())
			}
		},
	}
	if p.verbose {
		obs.OnTagSubsequentFinds = func(tag *inventory.Tag, state *inventory.ReadState, _ int, _ []inventory.PerReadDetail) {
			p.printf("  %s  %s\n", tag.EPC(), state.HistoryString())
		}
	}
	return obs
}

// printSummary writes one row per tag
func printSummary(out io.Writer, s *inventory.Session) {
	tags := s.Tags()
	_, _ = fmt.Fprintf(out, "\n%d tags, %d visible\n", len(tags), s.VisibleCount())
	if len(tags) == 0 {
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "EPC\tREADS\tVISIBLE\tHISTORY\tCHIP\tTEXT")
	for _, tag := range tags {
		st := tag.ReadState()
		info, err := tagops.Describe(tag)
		if err != nil {
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%t\t%s\t%s\t%s\n", tag.EPC(), st.TotalReads(), st.Visible(),
			st.HistoryString(), info.Chip(), info.Text())
	}
	_ = tw.Flush()
}

// printDiagnostics writes the session counters
func printDiagnostics(out io.Writer, d inventory.Diagnostics) {
	_, _ = fmt.Fprintf(out, "reads: %d processed, %d filtered, %d ignored, %d malformed\n",
		d.ProcessedReads, d.FilteredEvents, d.IgnoredEvents, d.MalformedEvents)
}
