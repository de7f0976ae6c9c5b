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
	"strconv"
)

// NotificationKind identifies the event a Notification reports
type NotificationKind int

// Notification kinds
const (
	NotificationStarted NotificationKind = iota + 1
	NotificationStopped
	NotificationTagFound
	NotificationTagChanged
	NotificationSubsequentFinds
	NotificationIntervalElapsed
)

func (k NotificationKind) String() string {
	switch k {
	case NotificationStarted:
		return "started"
	case NotificationStopped:
		return "stopped"
	case NotificationTagFound:
		return "tagFound"
	case NotificationTagChanged:
		return "tagChanged"
	case NotificationSubsequentFinds:
		return "subsequentFinds"
	case NotificationIntervalElapsed:
		return "intervalElapsed"
	default:
		return "notification(" + strconv.Itoa(int(k)) + ")"
	}
}

// Notification is a classified session event. Which fields are set depends on Kind:
//
//   - Started, IntervalElapsed: no payload
//   - Stopped: Code
//   - TagFound: Tag, State, Details, FirstFind (set for a first find)
//   - TagChanged: Tag, State
//   - SubsequentFinds: Tag, State, Count, Details
type Notification struct {
	Tag       *Tag
	State     *ReadState
	Details   []PerReadDetail
	SessionID string
	Kind      NotificationKind
	Count     int
	Code      CompletionCode
	FirstFind bool
}

func (n Notification) String() string {
	switch n.Kind {
	case NotificationStopped:
		return fmt.Sprintf("%s(%s)", n.Kind, n.Code)
	case NotificationTagFound:
		return fmt.Sprintf("%s(%s, firstFind=%t)", n.Kind, n.Tag.EPC(), n.FirstFind)
	case NotificationTagChanged:
		return fmt.Sprintf("%s(%s)", n.Kind, n.Tag.EPC())
	case NotificationSubsequentFinds:
		return fmt.Sprintf("%s(%s, %d)", n.Kind, n.Tag.EPC(), n.Count)
	default:
		return n.Kind.String()
	}
}
