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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
)

// Message is a decoded transport callback
type Message struct {
	Event     inventory.RawEvent
	SessionID string
	Kind      CallbackKind
	Result    inventory.CompletionCode
	// Visible is the reader's visibility flag on tagChanged messages
	Visible bool
}

// wireMessage is the JSON layout of a callback
type wireMessage struct {
	Result         *int    `json:"result,omitempty"`
	Count          *int    `json:"count,omitempty"`
	MostRecentRead *int64  `json:"tag_mostRecentRead,omitempty"`
	IsVisible      *bool   `json:"tag_isVisible,omitempty"`
	TIDMemory      *string `json:"tag_tidMemory,omitempty"`
	UserMemory     *string `json:"tag_userMemory,omitempty"`
	ReservedMemory *string `json:"tag_reservedMemory,omitempty"`
	Callback       string  `json:"_cb"`
	Session        string  `json:"session,omitempty"`
	EPC            string  `json:"tag_epc,omitempty"`
	PerReadTime    []int64 `json:"perread_timestamp,omitempty"`
	PerReadFreq    []int   `json:"perread_frequency,omitempty"`
	PerReadRSSII   []int   `json:"perread_rssiI,omitempty"`
	PerReadRSSIQ   []int   `json:"perread_rssiQ,omitempty"`
	PerReadData1   []int   `json:"perread_readData1,omitempty"`
	PerReadData2   []int   `json:"perread_readData2,omitempty"`
	RSSII          int     `json:"tag_mostRecentRssiI,omitempty"`
	RSSIQ          int     `json:"tag_mostRecentRssiQ,omitempty"`
}

// Decode parses one JSON callback. Every error it returns is a
// *inventory.MalformedEventError.
func Decode(data []byte) (Message, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return Message{}, inventory.NewMalformedEventError("invalid JSON", err)
	}
	kind, err := ParseCallbackKind(w.Callback)
	if err != nil {
		return Message{}, inventory.NewMalformedEventError("bad _cb", err)
	}

	msg := Message{Kind: kind, SessionID: w.Session}
	switch {
	case kind == CallbackDidStop:
		if w.Result == nil {
			return Message{}, inventory.NewMalformedEventError("didStop without result", nil)
		}
		msg.Result = inventory.CompletionCode(*w.Result)
	case kind.carriesTag():
		ev, err := w.rawEvent(kind)
		if err != nil {
			return Message{}, err
		}
		msg.Event = ev
		msg.Visible = w.IsVisible == nil || *w.IsVisible
	}
	return msg, nil
}

func (w *wireMessage) rawEvent(kind CallbackKind) (inventory.RawEvent, error) {
	ev := inventory.RawEvent{
		EPC:  w.EPC,
		RSSI: inventory.RSSI{I: w.RSSII, Q: w.RSSIQ},
	}
	if kind == CallbackTagSubsequentFinds && w.Count != nil {
		if *w.Count < 1 {
			return ev, inventory.NewMalformedEventError(fmt.Sprintf("tagSubsequentFinds count %d", *w.Count), nil)
		}
		ev.Count = *w.Count
	}
	if w.MostRecentRead != nil {
		ev.Timestamp = fromMillis(*w.MostRecentRead)
	}

	var err error
	if ev.Memory.TID, err = decodeMemory("tag_tidMemory", w.TIDMemory); err != nil {
		return ev, err
	}
	if ev.Memory.User, err = decodeMemory("tag_userMemory", w.UserMemory); err != nil {
		return ev, err
	}
	if ev.Memory.Reserved, err = decodeMemory("tag_reservedMemory", w.ReservedMemory); err != nil {
		return ev, err
	}
	if ev.Details, err = w.perReadDetails(); err != nil {
		return ev, err
	}
	return ev.Normalize()
}

func decodeMemory(field string, s *string) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	b, err := hex.DecodeString(*s)
	if err != nil {
		return nil, inventory.NewMalformedEventError(field+" is not hex", err)
	}
	return b, nil
}

func (w *wireMessage) perReadDetails() ([]inventory.PerReadDetail, error) {
	n := len(w.PerReadTime)
	for _, l := range []int{
		len(w.PerReadFreq), len(w.PerReadRSSII), len(w.PerReadRSSIQ), len(w.PerReadData1), len(w.PerReadData2),
	} {
		if l != n {
			return nil, inventory.NewMalformedEventError(
				fmt.Sprintf("per-read arrays differ in length (%d and %d)", n, l), nil)
		}
	}
	if n == 0 {
		return nil, nil
	}
	details := make([]inventory.PerReadDetail, n)
	for i := range details {
		details[i] = inventory.PerReadDetail{
			Timestamp: fromMillis(w.PerReadTime[i]),
			Frequency: w.PerReadFreq[i],
			RSSII:     w.PerReadRSSII[i],
			RSSIQ:     w.PerReadRSSIQ[i],
			ReadData1: w.PerReadData1[i],
			ReadData2: w.PerReadData2[i],
		}
	}
	return details, nil
}

// Encode renders m as a single JSON line, the inverse of Decode
func Encode(m Message) ([]byte, error) {
	if _, ok := callbackNames[m.Kind]; !ok {
		return nil, fmt.Errorf("encode: unknown callback kind %d", int(m.Kind))
	}
	w := wireMessage{Callback: m.Kind.String(), Session: m.SessionID}
	switch {
	case m.Kind == CallbackDidStop:
		result := int(m.Result)
		w.Result = &result
	case m.Kind.carriesTag():
		ev := m.Event
		w.EPC = ev.EPC
		w.RSSII, w.RSSIQ = ev.RSSI.I, ev.RSSI.Q
		if !ev.Timestamp.IsZero() {
			ms := ev.Timestamp.UnixMilli()
			w.MostRecentRead = &ms
		}
		if m.Kind == CallbackTagChanged {
			visible := m.Visible
			w.IsVisible = &visible
		}
		if m.Kind == CallbackTagSubsequentFinds && ev.Count > 0 {
			count := ev.Count
			w.Count = &count
		}
		w.TIDMemory = encodeMemory(ev.Memory.TID)
		w.UserMemory = encodeMemory(ev.Memory.User)
		w.ReservedMemory = encodeMemory(ev.Memory.Reserved)
		for _, d := range ev.Details {
			w.PerReadTime = append(w.PerReadTime, d.Timestamp.UnixMilli())
			w.PerReadFreq = append(w.PerReadFreq, d.Frequency)
			w.PerReadRSSII = append(w.PerReadRSSII, d.RSSII)
			w.PerReadRSSIQ = append(w.PerReadRSSIQ, d.RSSIQ)
			w.PerReadData1 = append(w.PerReadData1, d.ReadData1)
			w.PerReadData2 = append(w.PerReadData2, d.ReadData2)
		}
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Kind, err)
	}
	return append(data, '\n'), nil
}

func encodeMemory(b []byte) *string {
	if b == nil {
		return nil
	}
	s := hex.EncodeToString(b)
	return &s
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
