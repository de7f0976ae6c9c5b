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
	"fmt"
	"sync/atomic"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// DefaultSubjectPrefix is the subject prefix used when none is configured
const DefaultSubjectPrefix = "inventory"

// NATSConfig holds NATS connection settings
type NATSConfig struct {
	URL           string        `yaml:"url"`
	Name          string        `yaml:"name"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	SubjectPrefix string        `yaml:"subject_prefix"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
	MaxReconnects int           `yaml:"max_reconnects"`
}

// natsConn is the part of *nats.Conn the publisher uses
type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes notifications as JSON events on
// <prefix>.<session>.<kind>
type NATSPublisher struct {
	conn      natsConn
	log       zerolog.Logger
	now       func() time.Time
	prefix    string
	published atomic.Int64
	closed    atomic.Bool
}

// ConnectNATS connects to the server in cfg
func ConnectNATS(cfg NATSConfig, logger zerolog.Logger) (*NATSPublisher, error) {
	name := cfg.Name
	if name == "" {
		name = "go-inventory"
	}
	opts := []nats.Option{
		nats.Name(name),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}
	if cfg.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(cfg.ReconnectWait))
	}
	if cfg.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(cfg.MaxReconnects))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}
	logger.Info().Str("url", cfg.URL).Msg("connected to NATS")
	return newNATSPublisher(nc, cfg.SubjectPrefix, logger), nil
}

func newNATSPublisher(conn natsConn, prefix string, logger zerolog.Logger) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{conn: conn, prefix: prefix, log: logger, now: time.Now}
}

// Publish sends n. The NATS client buffers outgoing messages, so this does
// not wait for the server.
func (p *NATSPublisher) Publish(n inventory.Notification) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}
	data, err := Encode(n, p.now())
	if err != nil {
		return fmt.Errorf("encode %s: %w", n.Kind, err)
	}
	subject := Subject(p.prefix, n)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	p.published.Add(1)
	p.log.Debug().Str("subject", subject).Msg("published notification")
	return nil
}

// Published returns the number of notifications sent
func (p *NATSPublisher) Published() int64 {
	return p.published.Load()
}

// Close drains the connection. Calling Close twice is a no-op.
func (p *NATSPublisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.conn.Drain()
}
