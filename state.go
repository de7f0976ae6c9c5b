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

// SessionState is the lifecycle state of a Session
type SessionState int

const (
	// StateScanning means raw events and interval ticks are processed
	StateScanning SessionState = iota
	// StatePaused means the session keeps its tags but ignores reads and ticks
	StatePaused
	// StateSuspended means the reader stopped with a lost connection; tags are
	// kept and scanning resumes when the transport restarts
	StateSuspended
	// StateStopped means the reader stopped and the session's tags were released
	StateStopped
)

func (s SessionState) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StatePaused:
		return "paused"
	case StateSuspended:
		return "suspended"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// lifecycle tracks the flags that make up a SessionState
type lifecycle struct {
	scanning bool
	paused   bool
	released bool
}

func (l lifecycle) state() SessionState {
	switch {
	case l.paused:
		return StatePaused
	case l.scanning:
		return StateScanning
	case l.released:
		return StateStopped
	default:
		return StateSuspended
	}
}

// active reports whether reads and ticks should be processed
func (l lifecycle) active() bool {
	return l.scanning && !l.paused
}

// transitionToStopped records a stop, reporting whether tags must be released.
// Tags survive a lost connection and a stop while paused.
func (l *lifecycle) transitionToStopped(code CompletionCode) bool {
	l.scanning = false
	release := !code.RetainsState() && !l.paused
	if release {
		l.released = true
	}
	return release
}

// transitionToScanning records the transport (re)starting inventory
func (l *lifecycle) transitionToScanning() {
	l.scanning = true
	l.released = false
}
