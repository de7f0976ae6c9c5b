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

package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/ZaparooProject/go-inventory/bridge"
)

// MaxLineBytes bounds one message line. Messages with full memory banks and
// per-read data stay well under this.
const MaxLineBytes = 64 * 1024

type lineResult struct {
	err  error
	line []byte
}

// LineSource reads newline-delimited bridge messages from an io.Reader.
// Blank lines are skipped. A line longer than MaxLineBytes is dropped and
// reported as a malformed event. If the reader is also an io.Closer, Close closes it.
type LineSource struct {
	r      io.Reader
	lines  chan lineResult
	done   chan struct{}
	once   sync.Once
	closed sync.Once
	typ    Type
}

// NewLineSource creates a source reading from r
func NewLineSource(r io.Reader, typ Type) *LineSource {
	return &LineSource{
		r:     r,
		typ:   typ,
		lines: make(chan lineResult),
		done:  make(chan struct{}),
	}
}

// Type returns the transport type given at construction
func (s *LineSource) Type() Type {
	return s.typ
}

func (s *LineSource) start() {
	s.once.Do(func() {
		go s.readLoop()
	})
}

func (s *LineSource) readLoop() {
	defer close(s.lines)

	br := bufio.NewReaderSize(s.r, MaxLineBytes)
	for {
		line, err := readLine(br)
		switch {
		case errors.Is(err, errLineTooLong):
			malformed := inventory.NewMalformedEventError(
				fmt.Sprintf("line longer than %d bytes", MaxLineBytes), nil)
			if !s.send(lineResult{err: malformed}) {
				return
			}
			continue
		case err != nil && !errors.Is(err, io.EOF):
			s.send(lineResult{err: fmt.Errorf("read line: %w", err)})
			return
		}

		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			if !s.send(lineResult{line: append([]byte(nil), trimmed...)}) {
				return
			}
		}
		if err != nil {
			s.send(lineResult{err: io.EOF})
			return
		}
	}
}

// send hands res to Receive. It returns false once the source is closed.
func (s *LineSource) send(res lineResult) bool {
	select {
	case s.lines <- res:
		return true
	case <-s.done:
		return false
	}
}

var errLineTooLong = errors.New("line too long")

// readLine returns the next line including its newline. A line that does not
// fit in the reader's buffer is discarded through its newline and reported as
// errLineTooLong.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadSlice('\n')
	if !errors.Is(err, bufio.ErrBufferFull) {
		return line, err
	}
	for errors.Is(err, bufio.ErrBufferFull) {
		_, err = br.ReadSlice('\n')
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return nil, errLineTooLong
}

// Receive returns the next message
func (s *LineSource) Receive(ctx context.Context) (bridge.Message, error) {
	s.start()
	select {
	case <-ctx.Done():
		return bridge.Message{}, ctx.Err()
	case <-s.done:
		return bridge.Message{}, ErrClosed
	case res, ok := <-s.lines:
		if !ok {
			return bridge.Message{}, io.EOF
		}
		if res.err != nil {
			return bridge.Message{}, res.err
		}
		return bridge.Decode(res.line)
	}
}

// Close stops the source
func (s *LineSource) Close() error {
	var err error
	s.closed.Do(func() {
		close(s.done)
		if c, ok := s.r.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil {
				err = fmt.Errorf("close %s source: %w", s.typ, cerr)
			}
		}
	})
	return err
}

// LineController writes commands as JSON lines to an io.Writer
type LineController struct {
	w  io.Writer
	mu sync.Mutex
}

// NewLineController creates a controller writing to w
func NewLineController(w io.Writer) *LineController {
	return &LineController{w: w}
}

// Send writes cmd. The write itself is not interruptible; ctx is checked
// before writing.
func (c *LineController) Send(ctx context.Context, cmd bridge.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := cmd.Encode()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.Write(line); err != nil {
		if errors.Is(err, io.ErrClosedPipe) {
			return ErrClosed
		}
		return fmt.Errorf("send %s: %w", cmd.Action, err)
	}
	return nil
}
