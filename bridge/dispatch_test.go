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
	"testing"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, id string, obs inventory.Observer) *inventory.Session {
	t.Helper()
	cfg := inventory.DefaultConfiguration()
	cfg.HistoryDepth = 2
	s, err := inventory.Start(cfg, nil, false, obs, inventory.WithSessionID(id))
	require.NoError(t, err)
	return s
}

func decodeAll(t *testing.T, lines ...string) []Message {
	t.Helper()
	msgs := make([]Message, len(lines))
	for i, line := range lines {
		m, err := Decode([]byte(line))
		require.NoError(t, err)
		msgs[i] = m
	}
	return msgs
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	var kinds []inventory.NotificationKind
	s := newSession(t, "s1", inventory.Observer{
		OnNotification: func(n inventory.Notification) { kinds = append(kinds, n.Kind) },
	})
	kinds = nil

	msgs := decodeAll(t,
		`{"_cb":"tagRead","session":"s1","tag_epc":"AB12"}`,
		`{"_cb":"tagChanged","session":"s1","tag_epc":"AB12","tag_isVisible":true}`,
		`{"_cb":"tagSubsequentFinds","session":"s1","tag_epc":"AB12","count":3}`,
		`{"_cb":"historyInterval","session":"s1"}`,
		`{"_cb":"historyInterval","session":"s1"}`,
		`{"_cb":"didStop","session":"s1","result":99}`,
		`{"_cb":"didStart","session":"s1"}`,
	)
	for _, m := range msgs {
		require.NoError(t, Dispatch(s, m))
	}

	assert.Equal(t, []inventory.NotificationKind{
		inventory.NotificationTagFound,
		inventory.NotificationSubsequentFinds,
		inventory.NotificationIntervalElapsed,
		inventory.NotificationTagChanged,
		inventory.NotificationStopped,
		inventory.NotificationStarted,
	}, kinds)
	assert.Equal(t, 4, s.Tag("AB12").ReadState().TotalReads())
	assert.Equal(t, inventory.StateScanning, s.State())

	require.Error(t, Dispatch(s, Message{Kind: CallbackKind(0)}))
}

func TestRoute(t *testing.T) {
	t.Parallel()

	r := inventory.NewRegistry()
	a := newSession(t, "a", inventory.Observer{})
	b := newSession(t, "b", inventory.Observer{})
	require.NoError(t, r.Add(a))
	require.NoError(t, r.Add(b))

	for _, m := range decodeAll(t,
		`{"_cb":"tagRead","session":"a","tag_epc":"AB12"}`,
		`{"_cb":"tagRead","session":"b","tag_epc":"CD34"}`,
	) {
		require.NoError(t, Route(r, m))
	}
	assert.NotNil(t, a.Tag("AB12"))
	assert.Nil(t, a.Tag("CD34"))
	assert.NotNil(t, b.Tag("CD34"))

	err := Route(r, Message{Kind: CallbackDidStart, SessionID: "zz"})
	require.ErrorIs(t, err, inventory.ErrSessionNotFound)

	// Lost connection keeps the session routable
	require.NoError(t, Route(r, Message{Kind: CallbackDidStop, SessionID: "a", Result: inventory.CompletedLostConnection}))
	assert.Equal(t, 2, r.Len())

	// A normal stop releases it
	require.NoError(t, Route(r, Message{Kind: CallbackDidStop, SessionID: "b", Result: inventory.CompletedOK}))
	assert.Equal(t, 1, r.Len())
	_, err = r.Get("b")
	require.ErrorIs(t, err, inventory.ErrSessionNotFound)
}
