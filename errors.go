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
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig is returned when a Configuration cannot be used to start a session
	ErrInvalidConfig = errors.New("invalid inventory configuration")

	// ErrMalformedEvent marks raw events that were dropped because they could not be processed
	ErrMalformedEvent = errors.New("malformed raw event")

	// ErrUnknownInventoryType is returned for preset lookups outside the five known types
	ErrUnknownInventoryType = errors.New("unknown inventory type")

	// ErrSessionNotFound is returned when a message is routed to a session ID that is not registered
	ErrSessionNotFound = errors.New("inventory session not found")

	// ErrSessionExists is returned when registering a session ID twice
	ErrSessionExists = errors.New("inventory session already registered")

	// ErrNoUserMemory is returned when a tag's USER bank has not been read
	ErrNoUserMemory = errors.New("tag USER memory not read")
)

// InvalidConfigError describes the configuration field that failed validation
type InvalidConfigError struct {
	Value  any
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidConfig)
func (*InvalidConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// NewInvalidConfigError creates an InvalidConfigError
func NewInvalidConfigError(field string, value any, reason string) *InvalidConfigError {
	return &InvalidConfigError{Field: field, Value: value, Reason: reason}
}

// MalformedEventError describes why a raw event or bridge message was dropped.
// These errors are never propagated out of a session; they are counted and logged.
type MalformedEventError struct {
	Err    error
	Reason string
}

func (e *MalformedEventError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed event: %s: %v", e.Reason, e.Err)
	}
	return "malformed event: " + e.Reason
}

// Unwrap returns ErrMalformedEvent together with the underlying cause
func (e *MalformedEventError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedEvent, e.Err}
	}
	return []error{ErrMalformedEvent}
}

// NewMalformedEventError creates a MalformedEventError
func NewMalformedEventError(reason string, err error) *MalformedEventError {
	return &MalformedEventError{Reason: reason, Err: err}
}

// IsMalformed reports whether err describes a dropped malformed event
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedEvent)
}
