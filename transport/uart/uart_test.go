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

package uart

import (
	"bufio"
	"context"
	"io"
	"testing"

	"github.com/ZaparooProject/go-inventory/bridge"
	"github.com/ZaparooProject/go-inventory/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// pipePort is an in-memory serial port: the test plays the reader on the
// other end of two pipes.
type pipePort struct {
	fromReader *io.PipeReader
	toReader   *io.PipeWriter
}

func (p *pipePort) Read(b []byte) (int, error)  { return p.fromReader.Read(b) }
func (p *pipePort) Write(b []byte) (int, error) { return p.toReader.Write(b) }

func (p *pipePort) Close() error {
	_ = p.toReader.Close()
	return p.fromReader.Close()
}

// newPipeTransport returns the transport plus the reader's write and read ends
func newPipeTransport(t *testing.T) (*Transport, *io.PipeWriter, *io.PipeReader) {
	t.Helper()
	fromReader, readerOut := io.Pipe()
	readerIn, toReader := io.Pipe()
	tr := newTransport(&pipePort{fromReader: fromReader, toReader: toReader}, "/dev/ttyUSB0")
	return tr, readerOut, readerIn
}

func TestTransport_ReceiveAndSend(t *testing.T) {
	t.Parallel()

	tr, readerOut, readerIn := newPipeTransport(t)
	assert.Equal(t, "/dev/ttyUSB0", tr.PortName())
	assert.Equal(t, transport.TypeUART, tr.Type())

	var _ transport.Source = tr
	var _ transport.Controller = tr

	go func() {
		_, _ = readerOut.Write([]byte(`{"_cb":"didStart","session":"s1"}` + "\n"))
	}()
	msg, err := tr.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bridge.CallbackDidStart, msg.Kind)

	lines := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(readerIn)
		if scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()
	require.NoError(t, tr.Send(context.Background(), bridge.StopInventory("s1")))
	cmd, err := bridge.DecodeCommand([]byte(<-lines))
	require.NoError(t, err)
	assert.Equal(t, bridge.ActionStopInventory, cmd.Action)

	require.NoError(t, tr.Close())
	_ = readerOut.Close()
	_ = readerIn.Close()
}

func TestOpen_InvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "/dev/null", WithBaudRate(0))
	require.Error(t, err)
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	assert.False(t, isTransient(io.EOF))
}
