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

package testing

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ZaparooProject/go-inventory/bridge"
	"github.com/ZaparooProject/go-inventory/transport"
)

// Conn is an in-memory transport to a simulated Reader. Commands sent
// through it are executed by the reader and the replies come back through
// Receive, as they would over a serial line.
type Conn struct {
	*transport.LineSource
	*transport.LineController
	reader   *Reader
	cmdW     *io.PipeWriter
	msgW     *io.PipeWriter
	done     chan struct{}
	errs     []error
	errMu    sync.Mutex
	writeMu  sync.Mutex
	closeErr error
	once     sync.Once
}

// Connect starts serving r over a new Conn
func (r *Reader) Connect() *Conn {
	cmdR, cmdW := io.Pipe()
	msgR, msgW := io.Pipe()
	c := &Conn{
		LineSource:     transport.NewLineSource(msgR, transport.TypeSimulated),
		LineController: transport.NewLineController(cmdW),
		reader:         r,
		cmdW:           cmdW,
		msgW:           msgW,
		done:           make(chan struct{}),
	}
	go c.serve(cmdR)
	return c
}

func (c *Conn) serve(cmds io.Reader) {
	defer close(c.done)
	scanner := bufio.NewScanner(cmds)
	scanner.Buffer(make([]byte, 0, 4096), transport.MaxLineBytes)
	for scanner.Scan() {
		cmd, err := bridge.DecodeCommand(scanner.Bytes())
		if err != nil {
			c.recordErr(err)
			continue
		}
		replies, err := c.reader.Execute(cmd)
		if err != nil {
			c.recordErr(err)
			continue
		}
		if err := c.Emit(replies...); err != nil && !errors.Is(err, transport.ErrClosed) {
			c.recordErr(err)
		}
	}
}

func (c *Conn) recordErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	c.errs = append(c.errs, err)
}

// Errors returns the command errors the reader reported
func (c *Conn) Errors() []error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return append([]error(nil), c.errs...)
}

// Emit writes msgs toward the receiving side. It blocks until they are read.
func (c *Conn) Emit(msgs ...bridge.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	for _, m := range msgs {
		line, err := bridge.Encode(m)
		if err != nil {
			return err
		}
		if _, err := c.msgW.Write(line); err != nil {
			if errors.Is(err, io.ErrClosedPipe) {
				return transport.ErrClosed
			}
			return fmt.Errorf("emit %s: %w", m.Kind, err)
		}
	}
	return nil
}

// Round emits one read of every tag the reader currently sees
func (c *Conn) Round() error {
	return c.Emit(c.reader.Round()...)
}

// Tick emits a reader-driven history interval
func (c *Conn) Tick() error {
	return c.Emit(c.reader.Tick()...)
}

// Disconnect emits a lost-connection stop
func (c *Conn) Disconnect() error {
	return c.Emit(c.reader.Disconnect()...)
}

// Close shuts both directions and waits for the reader to stop serving
func (c *Conn) Close() error {
	c.once.Do(func() {
		c.closeErr = c.LineSource.Close()
		_ = c.cmdW.Close()
		_ = c.msgW.Close()
		<-c.done
	})
	return c.closeErr
}
