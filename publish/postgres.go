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
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// Postgres defaults
const (
	DefaultEventTable   = "inventory_events"
	DefaultQueueSize    = 256
	DefaultWriteTimeout = 5 * time.Second
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresConfig holds the event log database settings
type PostgresConfig struct {
	DSN          string        `yaml:"dsn"`
	Table        string        `yaml:"table"`
	QueueSize    int           `yaml:"queue_size"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Validate checks the table name, which is interpolated into SQL
func (c PostgresConfig) Validate() error {
	if !tableName.MatchString(c.Table) {
		return fmt.Errorf("postgres: invalid table name %q", c.Table)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("postgres: queue size must be positive, got %d", c.QueueSize)
	}
	return nil
}

// execer is the part of *sql.DB the publisher uses
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PostgresPublisher appends every notification to an event log table. Rows
// are written by one goroutine from a bounded queue. Events are dropped
// when the queue is full.
type PostgresPublisher struct {
	db      execer
	closer  io.Closer
	log     zerolog.Logger
	now     func() time.Time
	queue   chan Event
	done    chan struct{}
	insert  string
	timeout time.Duration
	written atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
	mu      sync.Mutex
	closed  bool
}

// ConnectPostgres opens the database in cfg, creates the event table if
// needed and starts the writer
func ConnectPostgres(ctx context.Context, cfg PostgresConfig, logger zerolog.Logger) (*PostgresPublisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := EnsureEventTable(ctx, db, cfg.Table); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info().Str("table", cfg.Table).Msg("writing events to postgres")
	return newPostgresPublisher(db, db, cfg, logger), nil
}

// EnsureEventTable creates the event log table and its session index
func EnsureEventTable(ctx context.Context, db execer, table string) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("postgres: invalid table name %q", table)
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			session TEXT NOT NULL,
			kind TEXT NOT NULL,
			epc TEXT,
			code INTEGER,
			payload JSONB NOT NULL
		)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_session_idx ON %s (session, created_at)`, table, table),
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create event table: %w", err)
		}
	}
	return nil
}

func newPostgresPublisher(db execer, closer io.Closer, cfg PostgresConfig, logger zerolog.Logger) *PostgresPublisher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	p := &PostgresPublisher{
		db:     db,
		closer: closer,
		log:    logger,
		now:    time.Now,
		queue:  make(chan Event, cfg.QueueSize),
		done:   make(chan struct{}),
		insert: fmt.Sprintf(`INSERT INTO %s (id, created_at, session, kind, epc, code, payload)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`, cfg.Table),
		timeout: cfg.WriteTimeout,
	}
	go p.writeLoop()
	return p
}

// Publish queues n for writing
func (p *PostgresPublisher) Publish(n inventory.Notification) error {
	ev := NewEvent(n, p.now())

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- ev:
	default:
		p.dropped.Add(1)
		p.log.Warn().Str("kind", ev.Kind).Msg("event log queue full, dropping event")
	}
	return nil
}

func (p *PostgresPublisher) writeLoop() {
	defer close(p.done)
	for ev := range p.queue {
		if err := p.write(ev); err != nil {
			p.failed.Add(1)
			p.log.Error().Err(err).Str("kind", ev.Kind).Msg("writing event")
			continue
		}
		p.written.Add(1)
	}
}

func (p *PostgresPublisher) write(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	var epc sql.NullString
	if ev.Tag != nil {
		epc = sql.NullString{String: ev.Tag.EPC, Valid: true}
	}
	var code sql.NullInt32
	if ev.Code != nil {
		code = sql.NullInt32{Int32: int32(*ev.Code), Valid: true}
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	_, err = p.db.ExecContext(ctx, p.insert, ev.ID, ev.Timestamp, ev.Session, ev.Kind, epc, code, string(payload))
	return err
}

// Written returns the number of rows inserted
func (p *PostgresPublisher) Written() int64 {
	return p.written.Load()
}

// Failed returns the number of inserts that failed
func (p *PostgresPublisher) Failed() int64 {
	return p.failed.Load()
}

// Dropped returns the number of events dropped on a full queue
func (p *PostgresPublisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close writes the queued events and closes the database
func (p *PostgresPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
