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
	"time"

	"github.com/rs/zerolog"
)

// Option is a functional option for configuring a Session
type Option func(*Session) error

// WithLogger sets the logger used for dropped events and observer failures
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) error {
		s.log = logger
		return nil
	}
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Session) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}
		s.now = now
		return nil
	}
}

// WithMaxEpcsSentToReader sets the largest filter reported as reader-side
func WithMaxEpcsSentToReader(n int) Option {
	return func(s *Session) error {
		if n < 0 {
			return NewInvalidConfigError("maxEpcsSentToReader", n, "must not be negative")
		}
		s.maxEpcsSentToReader = n
		return nil
	}
}

// WithSessionID overrides the generated session ID
func WithSessionID(id string) Option {
	return func(s *Session) error {
		if id == "" {
			return errors.New("session ID must not be empty")
		}
		s.id = id
		return nil
	}
}
