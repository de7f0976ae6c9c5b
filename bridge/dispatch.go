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

package bridge

import (
	"fmt"

	inventory "github.com/ZaparooProject/go-inventory"
)

// Dispatch applies a decoded message to s
func Dispatch(s *inventory.Session, m Message) error {
	switch m.Kind {
	case CallbackDidStart:
		s.DidStart()
	case CallbackDidStop:
		s.Stop(m.Result)
	case CallbackTagRead, CallbackTagFound, CallbackTagSubsequentFinds:
		s.OnRawEvent(m.Event)
	case CallbackTagChanged:
		// visibility is tracked by the session
	case CallbackHistoryInterval:
		s.OnIntervalElapsed()
	default:
		return fmt.Errorf("dispatch: unknown callback kind %d", int(m.Kind))
	}
	return nil
}

// Route dispatches m to the session it names. A session whose state was
// released by a stop is removed from the registry.
func Route(r *inventory.Registry, m Message) error {
	s, err := r.Get(m.SessionID)
	if err != nil {
		return err
	}
	if err := Dispatch(s, m); err != nil {
		return err
	}
	if m.Kind == CallbackDidStop && s.State() == inventory.StateStopped {
		r.Remove(s.ID())
	}
	return nil
}
