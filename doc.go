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

/*
Package inventory tracks RFID tag visibility during UHF reader inventory runs.

A Session consumes raw tag reads from a reader transport and keeps, for each
tag, a fixed-depth history of per-interval read counts. A tag is visible while
any interval in its history has a read. Each read is classified as a first
find, a reappearance or a subsequent find, and tags that age out of the
history window are reported as forgotten.

Features:
  - Per-tag read history windows with immutable ReadState snapshots
  - First-find, subsequent-find and forgotten-tag classification
  - EPC allow lists and ignore lists
  - Five predefined reader configurations plus manual configuration
  - Lost-connection handling that keeps tag state across reconnects
  - Ordered, panic-safe observer delivery

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-inventory"
	    "github.com/ZaparooProject/go-inventory/polling"
	)

	cfg, err := inventory.ConfigurationWithInventoryType(inventory.InventoryDistance)
	if err != nil {
	    log.Fatal(err)
	}

	session, err := inventory.Start(cfg, nil, false, inventory.Observer{
	    OnTagFound: func(tag *inventory.Tag, _ *inventory.ReadState, _ []inventory.PerReadDetail) {
	        fmt.Printf("found %s\n", tag.EPC())
	    },
	    OnTagChanged: func(tag *inventory.Tag, state *inventory.ReadState, firstFind bool) {
	        if !state.Visible() {
	            fmt.Printf("lost %s\n", tag.EPC())
	        }
	    },
	})
	if err != nil {
	    log.Fatal(err)
	}

	// Drive the history window
	clock := polling.NewIntervalClock(session)
	clock.Start(ctx)
	defer clock.Stop()

	// Feed reads from the transport
	session.OnRawEvent(inventory.RawEvent{EPC: "E2801160600002084C6B2F04"})

Concurrency:

Session methods are safe for concurrent use. Observer callbacks run outside
the session's state lock, in the order the state changes happened, and must
not call Start, Stop, Pause, Resume, DidStart, OnRawEvent or
OnIntervalElapsed.

Error Handling:

Configuration problems are reported when a session starts:

	if errors.Is(err, inventory.ErrInvalidConfig) {
	    // Fix the configuration
	}

Malformed events never fail a session; they are counted in Diagnostics.
*/
package inventory
