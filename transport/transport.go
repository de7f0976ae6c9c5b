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

// Package transport connects inventory sessions to reader transports that
// speak the bridge message format.
package transport

import (
	"context"
	"errors"

	"github.com/ZaparooProject/go-inventory/bridge"
)

// Source delivers decoded reader callbacks
type Source interface {
	// Receive blocks until the next message, ctx is done or the source ends.
	// Malformed messages return an error satisfying inventory.IsMalformed;
	// the source stays usable after them. io.EOF marks the end of the stream.
	Receive(ctx context.Context) (bridge.Message, error)

	// Close releases the source and unblocks pending Receive calls
	Close() error
}

// Controller sends control commands to the reader
type Controller interface {
	Send(ctx context.Context, cmd bridge.Command) error
}

// Type identifies a transport implementation
type Type string

const (
	// TypeUART is a reader on a serial port
	TypeUART Type = "uart"
	// TypeReplay replays a recorded message stream
	TypeReplay Type = "replay"
	// TypeSimulated is an in-process simulated reader
	TypeSimulated Type = "simulated"
)

// ErrClosed is returned by operations on a closed transport
var ErrClosed = errors.New("transport closed")
