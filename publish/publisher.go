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

package publish

import (
	"errors"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/rs/zerolog"
)

// ErrPublisherClosed is returned when publishing after Close
var ErrPublisherClosed = errors.New("publisher closed")

// Publisher forwards notifications somewhere outside the process
type Publisher interface {
	Publish(n inventory.Notification) error
	Close() error
}

// Hook adapts p to Observer.OnNotification. Publish errors are logged; the
// session never sees them.
func Hook(p Publisher, logger zerolog.Logger) func(inventory.Notification) {
	return func(n inventory.Notification) {
		if err := p.Publish(n); err != nil {
			logger.Warn().Err(err).Stringer("notification", n).Msg("publish failed")
		}
	}
}

// Fanout publishes to several publishers
type Fanout []Publisher

// Publish sends n to every publisher and joins their errors
func (f Fanout) Publish(n inventory.Notification) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher and joins their errors
func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
