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
	"encoding/json"
	"strings"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/google/uuid"
)

// Event is the JSON form of a session notification
type Event struct {
	Timestamp time.Time                 `json:"timestamp"`
	Tag       *TagSnapshot              `json:"tag,omitempty"`
	Code      *int                      `json:"code,omitempty"`
	ID        string                    `json:"id"`
	Session   string                    `json:"session"`
	Kind      string                    `json:"kind"`
	CodeName  string                    `json:"codeName,omitempty"`
	Details   []inventory.PerReadDetail `json:"details,omitempty"`
	Count     int                       `json:"count,omitempty"`
	FirstFind bool                      `json:"firstFind,omitempty"`
}

// TagSnapshot is a tag and its read state at the time of a notification
type TagSnapshot struct {
	FirstRead      time.Time      `json:"firstRead"`
	MostRecentRead time.Time      `json:"mostRecentRead"`
	EPC            string         `json:"epc"`
	History        string         `json:"history"`
	RSSI           inventory.RSSI `json:"rssi"`
	TotalReads     int            `json:"totalReads"`
	Visible        bool           `json:"visible"`
}

// NewEvent converts n into an Event stamped at
func NewEvent(n inventory.Notification, at time.Time) Event {
	ev := Event{
		ID:        uuid.NewString(),
		Session:   n.SessionID,
		Kind:      n.Kind.String(),
		Timestamp: at.UTC(),
		Details:   n.Details,
		Count:     n.Count,
		FirstFind: n.FirstFind,
	}
	if n.Kind == inventory.NotificationStopped {
		code := int(n.Code)
		ev.Code = &code
		ev.CodeName = n.Code.String()
	}
	if n.Tag != nil {
		snap := newTagSnapshot(n.Tag, n.State)
		ev.Tag = &snap
	}
	return ev
}

func newTagSnapshot(tag *inventory.Tag, st *inventory.ReadState) TagSnapshot {
	snap := TagSnapshot{EPC: tag.EPC(), FirstRead: tag.FirstRead()}
	if st != nil {
		snap.MostRecentRead = st.MostRecentRead()
		snap.RSSI = st.MostRecentRSSI()
		snap.TotalReads = st.TotalReads()
		snap.Visible = st.Visible()
		snap.History = st.HistoryString()
	}
	return snap
}

// SessionSnapshot is the full tag list of a session
type SessionSnapshot struct {
	StartTime time.Time     `json:"startTime"`
	Session   string        `json:"session"`
	State     string        `json:"state"`
	Tags      []TagSnapshot `json:"tags"`
	Visible   int           `json:"visible"`
}

// Snapshot captures s's tags in EPC order
func Snapshot(s *inventory.Session) SessionSnapshot {
	tags := s.Tags()
	snap := SessionSnapshot{
		Session:   s.ID(),
		State:     s.State().String(),
		StartTime: s.StartTime().UTC(),
		Tags:      make([]TagSnapshot, 0, len(tags)),
	}
	for _, tag := range tags {
		ts := newTagSnapshot(tag, tag.ReadState())
		if ts.Visible {
			snap.Visible++
		}
		snap.Tags = append(snap.Tags, ts)
	}
	return snap
}

// Encode marshals n as an Event stamped at
func Encode(n inventory.Notification, at time.Time) ([]byte, error) {
	return json.Marshal(NewEvent(n, at))
}

var (
	subjectEscaper = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")
	topicEscaper   = strings.NewReplacer("/", "_", "+", "_", "#", "_")
)

// Subject returns the NATS subject for n: <prefix>.<session>.<kind>
func Subject(prefix string, n inventory.Notification) string {
	return prefix + "." + subjectEscaper.Replace(n.SessionID) + "." + n.Kind.String()
}

// Topic returns the MQTT topic for n: <prefix>/<session>/<kind>
func Topic(prefix string, n inventory.Notification) string {
	return prefix + "/" + topicEscaper.Replace(n.SessionID) + "/" + n.Kind.String()
}
