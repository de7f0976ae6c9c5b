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
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/ZaparooProject/go-inventory/publish"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Defaults for a Broadcaster
const (
	DefaultBufferSize   = 64
	DefaultWriteTimeout = 5 * time.Second
)

// Broadcaster errors
var (
	ErrTooManyConnections = errors.New("too many websocket connections")
	ErrBroadcasterClosed  = errors.New("broadcaster closed")
)

// MessageType identifies a websocket message
type MessageType string

// Message types
const (
	MsgSnapshot MessageType = "snapshot"
	MsgEvent    MessageType = "event"
)

// Message is the envelope of everything written to clients
type Message struct {
	Payload any         `json:"payload"`
	Type    MessageType `json:"type"`
}

// Option is a functional option for configuring a Broadcaster
type Option func(*Broadcaster) error

// WithBufferSize sets how many messages may queue for one client before it
// is dropped as too slow
func WithBufferSize(n int) Option {
	return func(b *Broadcaster) error {
		if n <= 0 {
			return errors.New("buffer size must be positive")
		}
		b.bufferSize = n
		return nil
	}
}

// WithMaxConnections limits concurrent clients. Zero means unlimited.
func WithMaxConnections(n int) Option {
	return func(b *Broadcaster) error {
		if n < 0 {
			return errors.New("max connections must not be negative")
		}
		b.maxConns = n
		return nil
	}
}

// WithSnapshot sets the function whose result is sent to each new client
func WithSnapshot(fn func() any) Option {
	return func(b *Broadcaster) error {
		b.snapshot = fn
		return nil
	}
}

// WithCheckOrigin overrides the upgrader's origin check
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(b *Broadcaster) error {
		b.upgrader.CheckOrigin = fn
		return nil
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Broadcaster) error {
		b.log = logger
		return nil
	}
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

func (c *client) writePump(timeout time.Duration) {
	defer func() { _ = c.conn.Close() }()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(timeout))
}

// Broadcaster fans session notifications out to websocket clients. It is an
// http.Handler and a publish.Publisher.
type Broadcaster struct {
	log          zerolog.Logger
	snapshot     func() any
	clients      map[*client]struct{}
	now          func() time.Time
	upgrader     websocket.Upgrader
	pumps        sync.WaitGroup
	bufferSize   int
	maxConns     int
	writeTimeout time.Duration
	sent         atomic.Int64
	dropped      atomic.Int64
	mu           sync.RWMutex
	closed       bool
}

// NewBroadcaster creates a broadcaster
func NewBroadcaster(opts ...Option) (*Broadcaster, error) {
	b := &Broadcaster{
		log:          zerolog.Nop(),
		clients:      make(map[*client]struct{}),
		now:          time.Now,
		bufferSize:   DefaultBufferSize,
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// ServeHTTP upgrades the request and streams messages until the client
// disconnects or is dropped
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.RLock()
	full := b.maxConns > 0 && len(b.clients) >= b.maxConns
	closed := b.closed
	b.mu.RUnlock()
	switch {
	case closed:
		http.Error(w, ErrBroadcasterClosed.Error(), http.StatusServiceUnavailable)
		return
	case full:
		http.Error(w, ErrTooManyConnections.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	c, err := b.addClient(conn)
	if err != nil {
		b.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket client rejected")
		_ = conn.Close()
		return
	}
	b.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	defer func() {
		b.removeClient(c)
		b.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client disconnected")
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *Broadcaster) addClient(conn *websocket.Conn) (*client, error) {
	c := &client{conn: conn, send: make(chan []byte, b.bufferSize), remote: conn.RemoteAddr().String()}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBroadcasterClosed
	}
	if b.maxConns > 0 && len(b.clients) >= b.maxConns {
		b.mu.Unlock()
		return nil, ErrTooManyConnections
	}
	// The snapshot is queued before the client joins so no event can reach it first
	if b.snapshot != nil {
		if data, err := json.Marshal(Message{Type: MsgSnapshot, Payload: b.snapshot()}); err == nil {
			c.send <- data
		} else {
			b.log.Error().Err(err).Msg("snapshot marshal failed")
		}
	}
	b.clients[c] = struct{}{}
	b.pumps.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.pumps.Done()
		c.writePump(b.writeTimeout)
	}()
	return c, nil
}

func (b *Broadcaster) removeClient(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
}

// Publish sends n to every client. Clients whose buffer is full are
// disconnected.
func (b *Broadcaster) Publish(n inventory.Notification) error {
	data, err := json.Marshal(Message{Type: MsgEvent, Payload: publish.NewEvent(n, b.now())})
	if err != nil {
		return err
	}
	return b.broadcast(data)
}

func (b *Broadcaster) broadcast(data []byte) error {
	var slow []*client
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBroadcasterClosed
	}
	for c := range b.clients {
		select {
		case c.send <- data:
			b.sent.Add(1)
		default:
			slow = append(slow, c)
		}
	}
	b.mu.RUnlock()

	for _, c := range slow {
		b.dropped.Add(1)
		b.log.Warn().Str("remote", c.remote).Msg("websocket client too slow, disconnecting")
		b.removeClient(c)
	}
	return nil
}

// ClientCount returns the number of connected clients
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Sent returns the number of messages queued to clients
func (b *Broadcaster) Sent() int64 {
	return b.sent.Load()
}

// Dropped returns the number of clients disconnected for being too slow
func (b *Broadcaster) Dropped() int64 {
	return b.dropped.Load()
}

// Close disconnects every client and waits for their write pumps to exit.
// Later connections are refused.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for c := range b.clients {
		delete(b.clients, c)
		close(c.send)
	}
	b.mu.Unlock()

	b.pumps.Wait()
	return nil
}
