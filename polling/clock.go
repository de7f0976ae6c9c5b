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
	"sync"
	"sync/atomic"
	"time"
)

// IntervalTarget is what an IntervalClock drives. *inventory.Session implements it.
type IntervalTarget interface {
	HistoryInterval() time.Duration
	HasVisibleTags() bool
	OnIntervalElapsed()
}

// ClockMetrics tracks operational metrics for IntervalClock
type ClockMetrics struct {
	Ticks     int64 // Total number of ticker firings
	Delivered int64 // Ticks passed to the target
	Skipped   int64 // Ticks dropped because the target had nothing visible
}

// ErrClockRunning is returned when starting a clock twice
var ErrClockRunning = errors.New("interval clock is already running")

// IntervalClock calls OnIntervalElapsed once per history interval while the
// target has visible tags.
type IntervalClock struct {
	target     IntervalTarget
	cancelFunc context.CancelFunc
	done       chan struct{}
	interval   time.Duration
	ticks      atomic.Int64
	delivered  atomic.Int64
	skipped    atomic.Int64
	stopMutex  sync.Mutex
	running    atomic.Bool
}

// NewIntervalClock creates a clock ticking at the target's history interval
func NewIntervalClock(target IntervalTarget) *IntervalClock {
	return &IntervalClock{target: target, interval: target.HistoryInterval()}
}

// NewIntervalClockWithInterval creates a clock with an explicit interval
func NewIntervalClockWithInterval(target IntervalTarget, interval time.Duration) *IntervalClock {
	return &IntervalClock{target: target, interval: interval}
}

// Start begins ticking (non-blocking)
func (c *IntervalClock) Start(ctx context.Context) error {
	if c.interval <= 0 {
		return errors.New("interval clock: interval must be positive")
	}
	if !c.running.CompareAndSwap(false, true) {
		return ErrClockRunning
	}

	tickCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.stopMutex.Lock()
	c.cancelFunc = cancel
	c.done = done
	c.stopMutex.Unlock()

	go func() {
		defer func() {
			c.running.Store(false)
			close(done)
		}()
		c.tickLoop(tickCtx)
	}()
	return nil
}

func (c *IntervalClock) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick processes one interval boundary. The ticker loop calls it; tests and
// reader-driven clocks may call it directly.
func (c *IntervalClock) Tick() {
	c.ticks.Add(1)
	if !c.target.HasVisibleTags() {
		c.skipped.Add(1)
		return
	}
	c.target.OnIntervalElapsed()
	c.delivered.Add(1)
}

// Stop stops ticking and waits for the loop to exit
func (c *IntervalClock) Stop() {
	c.stopMutex.Lock()
	cancel, done := c.cancelFunc, c.done
	c.cancelFunc = nil
	c.stopMutex.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// IsRunning returns whether the clock is ticking
func (c *IntervalClock) IsRunning() bool {
	return c.running.Load()
}

// Interval returns the tick interval
func (c *IntervalClock) Interval() time.Duration {
	return c.interval
}

// GetMetrics returns current operational metrics
func (c *IntervalClock) GetMetrics() ClockMetrics {
	return ClockMetrics{
		Ticks:     c.ticks.Load(),
		Delivered: c.delivered.Load(),
		Skipped:   c.skipped.Load(),
	}
}
