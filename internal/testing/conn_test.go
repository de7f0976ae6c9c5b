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
	"context"
	"testing"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/ZaparooProject/go-inventory/bridge"
	"github.com/ZaparooProject/go-inventory/polling"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestConn_DrivesSession(t *testing.T) {
	t.Parallel()

	reader := NewReader(NewVirtualTag("E200AA"), NewVirtualTag("E200BB"))
	conn := reader.Connect()
	defer func() { _ = conn.Close() }()

	cfg := inventory.DefaultConfiguration()
	cfg.HistoryDepth = 2
	s, err := inventory.Start(cfg, nil, false, inventory.Observer{}, inventory.WithSessionID("sim"))
	require.NoError(t, err)

	ctx := context.Background()
	pump := polling.NewSessionPump(conn, s, zerolog.Nop())
	require.NoError(t, pump.Start(ctx))
	defer func() { _ = pump.Stop() }()

	require.NoError(t, conn.Send(ctx, bridge.StartInventoryFor(s)))
	require.Eventually(t, reader.Running, time.Second, time.Millisecond)

	require.NoError(t, conn.Round())
	require.Eventually(t, func() bool { return s.VisibleCount() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, conn.Tick())
	reader.SetPresent("E200BB", false)
	require.NoError(t, conn.Round())
	require.NoError(t, conn.Tick())
	require.Eventually(t, func() bool { return s.VisibleCount() == 1 }, time.Second, time.Millisecond)
	assert.True(t, s.Tag("E200AA").ReadState().Visible())
	assert.False(t, s.Tag("E200BB").ReadState().Visible())

	require.NoError(t, conn.Disconnect())
	require.Eventually(t, func() bool { return s.State() == inventory.StateSuspended }, time.Second, time.Millisecond)
	assert.Equal(t, 2, s.TagCount())
	assert.Empty(t, conn.Errors())
}

func TestConn_CommandErrors(t *testing.T) {
	t.Parallel()

	reader := NewReader()
	conn := reader.Connect()
	defer func() { _ = conn.Close() }()

	ctx := context.Background()
	require.NoError(t, conn.Send(ctx, bridge.StopInventory("nobody")))
	require.Eventually(t, func() bool { return len(conn.Errors()) == 1 }, time.Second, time.Millisecond)
	assert.ErrorIs(t, conn.Errors()[0], ErrNotRunning)
}

func TestConn_Close(t *testing.T) {
	t.Parallel()

	conn := NewReader().Connect()
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())

	_, err := conn.Receive(context.Background())
	require.Error(t, err)
	require.Error(t, conn.Send(context.Background(), bridge.StopInventory("sim")))
	require.Error(t, conn.Emit(BuildDidStartMessage("sim")))
}
