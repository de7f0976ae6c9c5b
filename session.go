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

package inventory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session tracks the tags seen during one inventory run.
//
// All state changes are serialized by one mutex. Notifications produced by a
// change are queued under that mutex and delivered after it is released by a
// single draining goroutine, so observers see notifications in the order the
// changes happened and may call back into the session.
type Session struct {
	startTime           time.Time
	log                 zerolog.Logger
	now                 func() time.Time
	tags                map[string]*Tag
	observer            Observer
	filter              epcFilter
	id                  string
	config              Configuration
	diag                diagnostics
	maxEpcsSentToReader int
	visible             int
	pending             []Notification
	mu                  sync.Mutex
	lifecycle           lifecycle
	draining            bool
}

// Start validates the configuration and starts a session in the scanning
// state. A non-empty filter restricts the session to the listed EPCs, or
// excludes them when ignoreList is true. The Started notification is
// delivered before Start returns.
func Start(config Configuration, filter []string, ignoreList bool, obs Observer, opts ...Option) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		config:              config,
		log:                 zerolog.Nop(),
		now:                 time.Now,
		tags:                make(map[string]*Tag),
		observer:            obs,
		maxEpcsSentToReader: DefaultMaxEpcsSentToReader,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.log = s.log.With().Str("session", s.id).Logger()

	if !config.ReportSubsequentFinds {
		s.observer.OnTagSubsequentFinds = nil
	}

	var invalid []string
	s.filter, invalid = newEPCFilter(filter, ignoreList)
	if len(invalid) > 0 {
		s.log.Warn().Strs("epcs", invalid).Msg("ignoring invalid EPCs in filter")
	}

	s.mu.Lock()
	s.lifecycle.transitionToScanning()
	s.startTime = s.now()
	s.log.Debug().
		Int("historyDepth", config.HistoryDepth).
		Int("historyIntervalMSec", config.HistoryIntervalMSec).
		Int("filterSize", len(s.filter.set)).
		Bool("ignoreList", ignoreList).
		Msg("inventory started")
	s.unlockAndDeliver([]Notification{{Kind: NotificationStarted}})
	return s, nil
}

// Stop records the reader stopping with code. Unless the connection was lost
// or the session is paused, the session's tags are released.
func (s *Session) Stop(code CompletionCode) {
	s.mu.Lock()
	released := s.lifecycle.transitionToStopped(code)
	if released {
		s.tags = make(map[string]*Tag)
		s.visible = 0
	}
	s.log.Debug().Stringer("code", code).Bool("released", released).Msg("inventory stopped")
	s.unlockAndDeliver([]Notification{{Kind: NotificationStopped, Code: code}})
}

// Pause stops processing reads and ticks without releasing tags
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lifecycle.paused = true
}

// Resume undoes Pause
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lifecycle.paused = false
}

// DidStart records the transport (re)starting inventory, which resumes
// scanning after a stop or a lost connection.
func (s *Session) DidStart() {
	s.mu.Lock()
	if s.lifecycle.released {
		s.startTime = s.now()
	}
	s.lifecycle.transitionToScanning()
	s.unlockAndDeliver([]Notification{{Kind: NotificationStarted}})
}

// OnRawEvent processes one tag read. Malformed events are counted and dropped.
func (s *Session) OnRawEvent(ev RawEvent) {
	s.diag.rawEvents.Add(1)
	ev, err := ev.Normalize()
	if err != nil {
		s.RecordMalformed(err)
		return
	}

	s.mu.Lock()
	if !s.lifecycle.active() {
		s.diag.ignoredEvents.Add(1)
		s.mu.Unlock()
		return
	}
	if !s.filter.accepts(ev.EPC) {
		s.diag.filteredEvents.Add(1)
		s.mu.Unlock()
		return
	}

	at := ev.Timestamp
	if at.IsZero() {
		at = s.now()
	}

	tag, known := s.tags[ev.EPC]
	if !known {
		tag = newTag(ev.EPC, at)
		tag.state.Store(initialReadState(tag, s.config.HistoryDepth))
		s.tags[ev.EPC] = tag
	}
	tag.updateMemory(ev.Memory)

	prev := tag.ReadState()
	reads := ev.Reads()
	next := prev.afterReads(at, ev.RSSI, reads)
	tag.state.Store(next)
	s.diag.processedReads.Add(1)

	var notes []Notification
	switch {
	case !known:
		s.visible++
		notes = []Notification{
			{Kind: NotificationTagFound, Tag: tag, State: next, Details: ev.Details, FirstFind: true},
		}
	case !prev.Visible():
		s.visible++
		notes = []Notification{{Kind: NotificationTagChanged, Tag: tag, State: next}}
	default:
		notes = []Notification{
			{Kind: NotificationSubsequentFinds, Tag: tag, State: next, Count: reads, Details: ev.Details},
		}
	}
	s.unlockAndDeliver(notes)
}

// OnIntervalElapsed starts a new history interval. It does nothing unless the
// session is scanning with at least one visible tag.
func (s *Session) OnIntervalElapsed() {
	s.mu.Lock()
	if !s.lifecycle.active() || s.visible == 0 {
		s.diag.ignoredTicks.Add(1)
		s.mu.Unlock()
		return
	}
	s.diag.intervalTicks.Add(1)

	var notes []Notification
	for _, tag := range s.sortedTags() {
		prev := tag.ReadState()
		if !prev.Visible() {
			continue
		}
		next := prev.afterInterval()
		tag.state.Store(next)
		if !next.Visible() {
			s.visible--
			notes = append(notes, Notification{Kind: NotificationTagChanged, Tag: tag, State: next})
		}
	}
	if s.visible > 0 {
		notes = append(notes, Notification{Kind: NotificationIntervalElapsed})
	}
	s.unlockAndDeliver(notes)
}

// RecordMalformed counts and logs an event dropped before it reached the session
func (s *Session) RecordMalformed(err error) {
	s.diag.malformedEvents.Add(1)
	s.log.Warn().Err(err).Msg("dropping malformed event")
}

// unlockAndDeliver queues notes, releases s.mu and delivers the queue unless
// another goroutine is already draining it. Must be called with s.mu held.
// A producer that finds a drainer returns without waiting for its notes.
func (s *Session) unlockAndDeliver(notes []Notification) {
	for i := range notes {
		notes[i].SessionID = s.id
	}
	s.pending = append(s.pending, notes...)
	if s.draining || len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	s.draining = true

	for {
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()

		for i := range batch {
			if err := s.observer.deliver(batch[i]); err != nil {
				s.diag.observerPanics.Add(1)
				s.log.Error().Err(err).Msg("observer failed")
				continue
			}
			s.diag.notifications.Add(1)
		}

		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
	}
}

// sortedTags returns the tags in EPC order. Must be called with s.mu held.
func (s *Session) sortedTags() []*Tag {
	tags := make([]*Tag, 0, len(s.tags))
	for _, tag := range s.tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].epc < tags[j].epc })
	return tags
}

// ID returns the session ID used to route transport messages
func (s *Session) ID() string {
	return s.id
}

// Tag returns the tag with the given EPC, or nil if it has not been seen
func (s *Session) Tag(epc string) *Tag {
	normalized, err := NormalizeEPC(epc)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags[normalized]
}

// Tags returns all tracked tags, visible or not, in EPC order
func (s *Session) Tags() []*Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedTags()
}

// TagCount returns the number of tracked tags
func (s *Session) TagCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tags)
}

// VisibleCount returns the number of visible tags
func (s *Session) VisibleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// IsScanning reports whether the reader is scanning
func (s *Session) IsScanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle.scanning
}

// IsPaused reports whether the session is paused
func (s *Session) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle.paused
}

// Active reports whether reads and interval ticks are being processed
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle.active()
}

// HasVisibleTags reports whether an interval tick would have any effect
func (s *Session) HasVisibleTags() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle.active() && s.visible > 0
}

// State returns the lifecycle state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle.state()
}

// StartTime returns when scanning started
func (s *Session) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

// Configuration returns the session's configuration
func (s *Session) Configuration() Configuration {
	return s.config
}

// HistoryInterval returns the interval the clock should tick at
func (s *Session) HistoryInterval() time.Duration {
	return s.config.HistoryInterval()
}

// Observer returns the observer notifications are delivered to
func (s *Session) Observer() Observer {
	return s.observer
}

// FilterEPCs returns the normalized EPC filter and whether it is an ignore list
func (s *Session) FilterEPCs() (epcs []string, ignoreList bool) {
	return s.filter.epcs(), s.filter.ignore
}

// ReaderSideFilter reports whether the filter is small enough to send to the
// reader. The session applies the filter itself either way.
func (s *Session) ReaderSideFilter() bool {
	return !s.filter.empty() && len(s.filter.set) <= s.maxEpcsSentToReader
}

// Diagnostics returns a snapshot of the session counters
func (s *Session) Diagnostics() Diagnostics {
	return s.diag.snapshot()
}
