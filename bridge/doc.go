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
Package bridge is the wire codec between inventory sessions and a reader
transport.

Readers report events as JSON objects discriminated by a "_cb" field:

	{"_cb":"didStart","session":"5f0c..."}
	{"_cb":"tagRead","session":"5f0c...","tag_epc":"e2801160600002084c6b2f04",
	 "tag_mostRecentRead":1700000000000,"tag_mostRecentRssiI":-52,"tag_mostRecentRssiQ":-49}
	{"_cb":"historyInterval","session":"5f0c..."}
	{"_cb":"didStop","session":"5f0c...","result":0}

Memory banks travel as hex strings (tag_tidMemory, tag_userMemory,
tag_reservedMemory) and detailed per-read data as parallel perread_* arrays.

Control requests go the other way as Commands: {"action":...,"args":[...]}
with the session ID as the first argument.
*/
package bridge
