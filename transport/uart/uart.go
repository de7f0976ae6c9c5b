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

// Package uart provides a reader transport over a serial port
package uart

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ZaparooProject/go-inventory/transport"
	"github.com/rs/zerolog"
	"go.bug.st/serial"
)

// DefaultBaudRate is the reader's factory serial speed
const DefaultBaudRate = 115200

// Transport is a reader connected over a serial port. It receives bridge
// messages as JSON lines and sends commands the same way.
type Transport struct {
	*transport.LineSource
	*transport.LineController
	port     io.ReadWriteCloser
	portName string
}

type options struct {
	log   zerolog.Logger
	retry transport.RetryConfig
	baud  int
}

// Option configures Open
type Option func(*options) error

// WithBaudRate sets the serial speed
func WithBaudRate(baud int) Option {
	return func(o *options) error {
		if baud <= 0 {
			return fmt.Errorf("invalid baud rate %d", baud)
		}
		o.baud = baud
		return nil
	}
}

// WithRetryConfig sets how opening a busy or missing port is retried
func WithRetryConfig(config transport.RetryConfig) Option {
	return func(o *options) error {
		o.retry = config
		return nil
	}
}

// WithLogger sets the logger used for open retries
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) error {
		o.log = logger
		return nil
	}
}

// Open opens portName, retrying while the port is busy or not yet present
func Open(ctx context.Context, portName string, opts ...Option) (*Transport, error) {
	o := options{
		baud:  DefaultBaudRate,
		retry: transport.DefaultRetryConfig("open " + portName),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if o.retry.OnRetry == nil {
		o.retry.OnRetry = func(attempt int, err error) {
			o.log.Debug().Err(err).Int("attempt", attempt).Str("port", portName).Msg("retrying serial open")
		}
	}

	mode := &serial.Mode{
		BaudRate: o.baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := transport.WithRetry(ctx, o.retry, func(context.Context) (serial.Port, bool, error) {
		p, err := serial.Open(portName, mode)
		if err != nil {
			return nil, isTransient(err), fmt.Errorf("open serial port %s: %w", portName, err)
		}
		return p, false, nil
	})
	if err != nil {
		return nil, err
	}
	return newTransport(port, portName), nil
}

func newTransport(port io.ReadWriteCloser, portName string) *Transport {
	return &Transport{
		LineSource:     transport.NewLineSource(port, transport.TypeUART),
		LineController: transport.NewLineController(port),
		port:           port,
		portName:       portName,
	}
}

// PortName returns the serial device path
func (t *Transport) PortName() string {
	return t.portName
}

// isTransient reports whether an open error may clear up on its own
func isTransient(err error) bool {
	var portErr *serial.PortError
	if !errors.As(err, &portErr) {
		return false
	}
	switch portErr.Code() {
	case serial.PortBusy, serial.PortNotFound:
		return true
	default:
		return false
	}
}
