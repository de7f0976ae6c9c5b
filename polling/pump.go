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

package polling

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/ZaparooProject/go-inventory/bridge"
	"github.com/ZaparooProject/go-inventory/transport"
	"github.com/rs/zerolog"
)

// Handler applies one decoded message
type Handler func(bridge.Message) error

// SessionHandler dispatches every message to s, regardless of session ID
func SessionHandler(s *inventory.Session) Handler {
	return func(m bridge.Message) error {
		return bridge.Dispatch(s, m)
	}
}

// RegistryHandler routes messages by session ID
func RegistryHandler(r *inventory.Registry) Handler {
	return func(m bridge.Message) error {
		return bridge.Route(r, m)
	}
}

// PumpCallbacks defines callback functions for pump events
type PumpCallbacks struct {
	// OnMalformed receives messages dropped as malformed
	OnMalformed func(err error)
	// OnHandlerError receives errors returned by the handler, such as
	// messages for unknown sessions
	OnHandlerError func(msg bridge.Message, err error)
}

// PumpMetrics tracks operational metrics for Pump
type PumpMetrics struct {
	Messages      int64 // Messages handed to the handler
	Malformed     int64 // Messages dropped as malformed
	HandlerErrors int64 // Handler failures
}

// Pump errors
var (
	ErrPumpRunning    = errors.New("pump is already running")
	ErrPumpNotStarted = errors.New("pump was not started")
)

// Pump reads messages from a transport source and hands them to a handler
// until the source ends or the pump is stopped.
type Pump struct {
	source     transport.Source
	handler    Handler
	callbacks  PumpCallbacks
	log        zerolog.Logger
	err        error
	cancelFunc context.CancelFunc
	done       chan struct{}
	messages   atomic.Int64
	malformed  atomic.Int64
	handlerErr atomic.Int64
	stopMutex  sync.Mutex
	running    atomic.Bool
}

// NewPump creates a pump. Malformed messages and handler errors are logged
// and counted; callbacks see them too.
func NewPump(source transport.Source, handler Handler, callbacks PumpCallbacks, logger zerolog.Logger) *Pump {
	return &Pump{source: source, handler: handler, callbacks: callbacks, log: logger}
}

// NewSessionPump creates a pump feeding one session. Malformed messages are
// counted in the session's diagnostics.
func NewSessionPump(source transport.Source, s *inventory.Session, logger zerolog.Logger) *Pump {
	return NewPump(source, SessionHandler(s), PumpCallbacks{OnMalformed: s.RecordMalformed}, logger)
}

// Start begins pumping (non-blocking)
func (p *Pump) Start(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrPumpRunning
	}

	pumpCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.stopMutex.Lock()
	p.cancelFunc = cancel
	p.done = done
	p.err = nil
	p.stopMutex.Unlock()

	go func() {
		err := p.pumpLoop(pumpCtx)
		cancel()
		p.stopMutex.Lock()
		p.err = err
		p.stopMutex.Unlock()
		p.running.Store(false)
		close(done)
	}()
	return nil
}

// pumpLoop returns nil when the source ends or ctx is cancelled
func (p *Pump) pumpLoop(ctx context.Context) error {
	for {
		msg, err := p.source.Receive(ctx)
		switch {
		case err == nil:
		case inventory.IsMalformed(err):
			p.malformed.Add(1)
			if p.callbacks.OnMalformed != nil {
				p.callbacks.OnMalformed(err)
			} else {
				p.log.Warn().Err(err).Msg("dropping malformed message")
			}
			continue
		case errors.Is(err, io.EOF), errors.Is(err, transport.ErrClosed),
			errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			p.log.Debug().Err(err).Msg("pump finished")
			return nil
		default:
			return err
		}

		p.messages.Add(1)
		if err := p.handler(msg); err != nil {
			p.handlerErr.Add(1)
			p.log.Warn().Err(err).Stringer("callback", msg.Kind).Str("session", msg.SessionID).
				Msg("message not handled")
			if p.callbacks.OnHandlerError != nil {
				p.callbacks.OnHandlerError(msg, err)
			}
		}
	}
}

// Stop stops the pump and waits for it to exit
func (p *Pump) Stop() error {
	p.stopMutex.Lock()
	cancel, done := p.cancelFunc, p.done
	p.stopMutex.Unlock()

	if cancel == nil {
		return ErrPumpNotStarted
	}
	cancel()
	<-done
	return p.Err()
}

// Wait blocks until the pump exits and returns its terminal error, which
// is nil when the source ended normally or the pump was stopped.
func (p *Pump) Wait() error {
	p.stopMutex.Lock()
	done := p.done
	p.stopMutex.Unlock()
	if done == nil {
		return ErrPumpNotStarted
	}
	<-done
	return p.Err()
}

// Err returns the error that ended the last run
func (p *Pump) Err() error {
	p.stopMutex.Lock()
	defer p.stopMutex.Unlock()
	return p.err
}

// IsRunning returns whether the pump is active
func (p *Pump) IsRunning() bool {
	return p.running.Load()
}

// GetMetrics returns current operational metrics
func (p *Pump) GetMetrics() PumpMetrics {
	return PumpMetrics{
		Messages:      p.messages.Load(),
		Malformed:     p.malformed.Load(),
		HandlerErrors: p.handlerErr.Load(),
	}
}
