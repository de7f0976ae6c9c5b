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

package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/ZaparooProject/go-inventory/publish"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type received struct {
	Payload json.RawMessage `json:"payload"`
	Type    MessageType     `json:"type"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestBroadcaster_StreamsSession(t *testing.T) {
	t.Parallel()

	var s *inventory.Session
	b, err := NewBroadcaster(WithSnapshot(func() any { return publish.Snapshot(s) }))
	require.NoError(t, err)

	s, err = inventory.Start(inventory.DefaultConfiguration(), nil, false,
		inventory.Observer{OnNotification: publish.Hook(b, zerolog.Nop())},
		inventory.WithSessionID("ws"))
	require.NoError(t, err)
	s.OnRawEvent(inventory.RawEvent{EPC: "AA"})

	srv := httptest.NewServer(b)
	defer srv.Close()
	conn := dial(t, srv)
	defer func() { _ = conn.Close() }()

	msg := readMessage(t, conn)
	require.Equal(t, MsgSnapshot, msg.Type)
	var snap publish.SessionSnapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	assert.Equal(t, "ws", snap.Session)
	require.Len(t, snap.Tags, 1)
	assert.Equal(t, "AA", snap.Tags[0].EPC)

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, time.Millisecond)
	s.OnRawEvent(inventory.RawEvent{EPC: "BB"})

	msg = readMessage(t, conn)
	require.Equal(t, MsgEvent, msg.Type)
	var ev publish.Event
	require.NoError(t, json.Unmarshal(msg.Payload, &ev))
	assert.Equal(t, "tagFound", ev.Kind)
	assert.True(t, ev.FirstFind)
	assert.Equal(t, "BB", ev.Tag.EPC)
	assert.Equal(t, int64(1), b.Sent())

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.Zero(t, b.ClientCount())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
	assert.ErrorIs(t, b.Publish(inventory.Notification{Kind: inventory.NotificationStarted}), ErrBroadcasterClosed)
}

func TestBroadcaster_SnapshotPrecedesEvents(t *testing.T) {
	t.Parallel()

	b, err := NewBroadcaster(
		WithBufferSize(4096),
		WithSnapshot(func() any { return map[string]string{"session": "ws"} }),
	)
	require.NoError(t, err)
	srv := httptest.NewServer(b)
	defer srv.Close()

	stop := make(chan struct{})
	publishing := make(chan struct{})
	go func() {
		defer close(publishing)
		for {
			select {
			case <-stop:
				return
			default:
			}
			_ = b.Publish(inventory.Notification{SessionID: "ws", Kind: inventory.NotificationIntervalElapsed})
			time.Sleep(50 * time.Microsecond)
		}
	}()

	for range 10 {
		conn := dial(t, srv)
		msg := readMessage(t, conn)
		assert.Equal(t, MsgSnapshot, msg.Type)
		_ = conn.Close()
	}
	close(stop)
	<-publishing
	require.NoError(t, b.Close())
}

func TestBroadcaster_ClientDisconnect(t *testing.T) {
	t.Parallel()

	b, err := NewBroadcaster()
	require.NoError(t, err)
	srv := httptest.NewServer(b)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return b.ClientCount() == 0 }, time.Second, time.Millisecond)
	require.NoError(t, b.Close())
}

func TestBroadcaster_MaxConnections(t *testing.T) {
	t.Parallel()

	b, err := NewBroadcaster(WithMaxConnections(1))
	require.NoError(t, err)
	srv := httptest.NewServer(b)
	defer srv.Close()

	conn := dial(t, srv)
	defer func() { _ = conn.Close() }()
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	require.NoError(t, b.Close())
}

func TestBroadcaster_DropsSlowClient(t *testing.T) {
	t.Parallel()

	b, err := NewBroadcaster(WithBufferSize(1))
	require.NoError(t, err)

	// no write pump, so the buffer is never drained
	slow := &client{send: make(chan []byte, 1), remote: "slow"}
	b.clients[slow] = struct{}{}

	n := inventory.Notification{SessionID: "s1", Kind: inventory.NotificationIntervalElapsed}
	require.NoError(t, b.Publish(n))
	assert.Equal(t, 1, b.ClientCount())
	require.NoError(t, b.Publish(n))
	assert.Zero(t, b.ClientCount())
	assert.Equal(t, int64(1), b.Dropped())
	assert.Equal(t, int64(1), b.Sent())
}

func TestNewBroadcaster_InvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := NewBroadcaster(WithBufferSize(0))
	require.Error(t, err)
	_, err = NewBroadcaster(WithMaxConnections(-1))
	require.Error(t, err)
}
