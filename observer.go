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
	"fmt"
)

// Observer receives session notifications. Every slot is optional; nil slots
// are skipped. Callbacks run outside the session's state lock, one at a time,
// and may call any Session method. Notifications caused by a call made from a
// callback are delivered after the current callback returns.
type Observer struct {
	OnStarted            func()
	OnStopped            func(code CompletionCode)
	OnTagFound           func(tag *Tag, state *ReadState, details []PerReadDetail)
	OnTagChanged         func(tag *Tag, state *ReadState, firstFind bool)
	OnTagSubsequentFinds func(tag *Tag, state *ReadState, count int, details []PerReadDetail)
	OnIntervalElapsed    func()
	// OnNotification receives every notification after the typed slot, for
	// publishers that forward events elsewhere.
	OnNotification func(n Notification)
}

// Capabilities reports which callbacks are set.
// The transport sends these to the reader with the start command.
type Capabilities struct {
	TagFound        bool
	TagChanged      bool
	SubsequentFinds bool
	TagForgotten    bool
	IntervalElapsed bool
}

// Capabilities returns the set callback slots. OnNotification counts for all
// of them since it sees every notification. Forgotten tags are reported
// through OnTagChanged.
func (o Observer) Capabilities() Capabilities {
	all := o.OnNotification != nil
	return Capabilities{
		TagFound:        all || o.OnTagFound != nil,
		TagChanged:      all || o.OnTagChanged != nil,
		SubsequentFinds: all || o.OnTagSubsequentFinds != nil,
		TagForgotten:    all || o.OnTagChanged != nil,
		IntervalElapsed: all || o.OnIntervalElapsed != nil,
	}
}

// Flags returns the capabilities in start command order
func (c Capabilities) Flags() []bool {
	return []bool{c.TagChanged, c.TagFound, c.SubsequentFinds, c.TagForgotten, c.IntervalElapsed}
}

// deliver invokes the slots for n. A first find goes to OnTagFound and then
// to OnTagChanged with firstFind set. A panicking callback is recovered and
// returned as an error so the caller can count it.
func (o Observer) deliver(n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic on %s: %v", n.Kind, r)
		}
	}()

	switch n.Kind {
	case NotificationStarted:
		if o.OnStarted != nil {
			o.OnStarted()
		}
	case NotificationStopped:
		if o.OnStopped != nil {
			o.OnStopped(n.Code)
		}
	case NotificationTagFound:
		if o.OnTagFound != nil {
			o.OnTagFound(n.Tag, n.State, n.Details)
		}
		if n.FirstFind && o.OnTagChanged != nil {
			o.OnTagChanged(n.Tag, n.State, true)
		}
	case NotificationTagChanged:
		if o.OnTagChanged != nil {
			o.OnTagChanged(n.Tag, n.State, n.FirstFind)
		}
	case NotificationSubsequentFinds:
		if o.OnTagSubsequentFinds != nil {
			o.OnTagSubsequentFinds(n.Tag, n.State, n.Count, n.Details)
		}
	case NotificationIntervalElapsed:
		if o.OnIntervalElapsed != nil {
			o.OnIntervalElapsed()
		}
	default:
		return fmt.Errorf("unknown notification kind %d", int(n.Kind))
	}

	if o.OnNotification != nil {
		o.OnNotification(n)
	}
	return nil
}
