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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/ZaparooProject/go-inventory/bridge"
	"github.com/ZaparooProject/go-inventory/internal/config"
	simulator "github.com/ZaparooProject/go-inventory/internal/testing"
	"github.com/ZaparooProject/go-inventory/polling"
	"github.com/ZaparooProject/go-inventory/publish"
	"github.com/ZaparooProject/go-inventory/stream"
	"github.com/ZaparooProject/go-inventory/transport"
	"github.com/ZaparooProject/go-inventory/transport/uart"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

type scanOptions struct {
	root          *rootOptions
	device        string
	replay        string
	preset        string
	filter        []string
	simulate      []string
	duration      time.Duration
	roundInterval time.Duration
	ignore        bool
	verbose       bool
}

func newScanCmd(root *rootOptions) *cobra.Command {
	opts := &scanOptions{root: root}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run an inventory session until interrupted or the source ends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.device, "device", "d", "", "Serial device path; empty auto-detects")
	f.StringVar(&opts.replay, "replay", "", "Replay reader messages from a JSON lines file")
	f.StringSliceVar(&opts.simulate, "simulate", nil, "Simulate a reader with these tag EPCs")
	f.StringVarP(&opts.preset, "preset", "p", "", "Inventory preset (see 'inventory presets')")
	f.StringSliceVar(&opts.filter, "filter", nil, "Only report these EPCs")
	f.BoolVar(&opts.ignore, "ignore", false, "Treat --filter as a list of EPCs to ignore")
	f.DurationVar(&opts.duration, "duration", 0, "Stop after this long; zero runs until interrupted")
	f.DurationVar(&opts.roundInterval, "round-interval", 100*time.Millisecond, "Read round interval of the simulated reader")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Print every read")
	cmd.MarkFlagsMutuallyExclusive("device", "replay", "simulate")
	return cmd
}

// apply merges the flags into cfg
func (o *scanOptions) apply(cfg *config.Config) error {
	if o.device != "" {
		cfg.Reader.Device, cfg.Reader.Replay = o.device, ""
	}
	if o.replay != "" {
		cfg.Reader.Device, cfg.Reader.Replay = "", o.replay
	}
	if o.preset != "" {
		cfg.Inventory.Preset = o.preset
	}
	if len(o.filter) > 0 {
		cfg.Inventory.Filter = o.filter
		cfg.Inventory.IgnoreList = o.ignore
	}
	return cfg.Validate()
}

// reader is where a scan gets its messages. controller is nil for sources
// that cannot be commanded, such as replays.
type reader struct {
	source     transport.Source
	controller transport.Controller
	run        func(ctx context.Context)
	live       bool
}

func openReader(ctx context.Context, o *scanOptions, cfg *config.Config, log zerolog.Logger) (*reader, error) {
	switch {
	case len(o.simulate) > 0:
		tags := make([]*simulator.VirtualTag, len(o.simulate))
		for i, epc := range o.simulate {
			tags[i] = simulator.NewVirtualTag(epc)
		}
		conn := simulator.NewReader(tags...).Connect()
		return &reader{
			source:     conn,
			controller: conn,
			live:       true,
			run:        func(ctx context.Context) { driveSimulation(ctx, conn, o.roundInterval, log) },
		}, nil

	case cfg.Reader.Replay != "":
		f, err := os.Open(cfg.Reader.Replay)
		if err != nil {
			return nil, fmt.Errorf("open replay: %w", err)
		}
		return &reader{source: transport.NewLineSource(f, transport.TypeReplay)}, nil

	default:
		device := cfg.Reader.Device
		if device == "" {
			ports, err := uart.Ports(cfg.PortFilter())
			if err != nil {
				return nil, err
			}
			if len(ports) == 0 {
				return nil, errors.New("no serial reader found; pass --device or --replay")
			}
			device = ports[0].Path
			log.Info().Str("device", device).Msg("auto-detected serial reader")
		}
		t, err := uart.Open(ctx, device, cfg.UARTOptions(log)...)
		if err != nil {
			return nil, err
		}
		return &reader{source: t, controller: t, live: true}, nil
	}
}

// driveSimulation reads the simulated field once per interval
func driveSimulation(ctx context.Context, conn *simulator.Conn, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.Round(); err != nil {
				if !errors.Is(err, transport.ErrClosed) {
					log.Warn().Err(err).Msg("simulated round failed")
				}
				return
			}
		}
	}
}

// sinks are the configured notification publishers
type sinks struct {
	fanout publish.Fanout
	server *http.Server
}

func openSinks(ctx context.Context, cfg *config.Config, log zerolog.Logger, snapshot func() any) (*sinks, error) {
	s := &sinks{}
	if nc := cfg.Publish.NATS; nc.URL != "" {
		pub, err := publish.ConnectNATS(nc, log.With().Str("sink", "nats").Logger())
		if err != nil {
			return nil, err
		}
		s.fanout = append(s.fanout, pub)
	}
	if mc := cfg.Publish.MQTT; mc.BrokerURL != "" {
		pub, err := publish.ConnectMQTT(mc, log.With().Str("sink", "mqtt").Logger())
		if err != nil {
			_ = s.close()
			return nil, err
		}
		s.fanout = append(s.fanout, pub)
	}
	if pg := cfg.Publish.Postgres; pg.DSN != "" {
		pub, err := publish.ConnectPostgres(ctx, pg, log.With().Str("sink", "postgres").Logger())
		if err != nil {
			_ = s.close()
			return nil, err
		}
		s.fanout = append(s.fanout, pub)
	}
	if ws := cfg.Publish.WebSocket; ws.Listen != "" {
		b, err := stream.NewBroadcaster(
			stream.WithBufferSize(ws.BufferSize),
			stream.WithMaxConnections(ws.MaxConnections),
			stream.WithSnapshot(snapshot),
			stream.WithLogger(log.With().Str("sink", "websocket").Logger()),
		)
		if err != nil {
			_ = s.close()
			return nil, err
		}
		s.server = &http.Server{
			Addr:              ws.Listen,
			Handler:           stream.NewRouter(b, ws.Path, ws.CORSOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}
		s.fanout = append(s.fanout, b)
	}
	return s, nil
}

func (s *sinks) serve(log zerolog.Logger) {
	if s.server == nil {
		return
	}
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("serving websocket notifications")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("websocket server failed")
		}
	}()
}

func (s *sinks) close() error {
	var errs []error
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, s.fanout.Close())
	return errors.Join(errs...)
}

func runScan(ctx context.Context, o *scanOptions, out, errOut io.Writer) error {
	cfg, err := o.root.load()
	if err != nil {
		return err
	}
	if err := o.apply(cfg); err != nil {
		return err
	}
	log := newLogger(cfg, errOut)

	invCfg, err := cfg.InventoryConfiguration()
	if err != nil {
		return err
	}

	var session *inventory.Session
	sk, err := openSinks(ctx, cfg, log, func() any { return publish.Snapshot(session) })
	if err != nil {
		return err
	}
	defer func() {
		if err := sk.close(); err != nil {
			log.Warn().Err(err).Msg("closing publishers")
		}
	}()

	p := &printer{out: out, verbose: o.verbose}
	obs := p.observer()
	if len(sk.fanout) > 0 {
		obs.OnNotification = publish.Hook(sk.fanout, log)
	}

	rd, err := openReader(ctx, o, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = rd.source.Close() }()

	opts := append(cfg.SessionOptions(), inventory.WithLogger(log))
	session, err = inventory.Start(invCfg, cfg.Inventory.Filter, cfg.Inventory.IgnoreList, obs, opts...)
	if err != nil {
		return err
	}
	sk.serve(log)

	if o.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.duration)
		defer cancel()
	}

	if err := scan(ctx, session, rd, log); err != nil {
		return err
	}

	printSummary(out, session)
	printDiagnostics(out, session.Diagnostics())
	stopReader(session, rd, log)
	return nil
}

// scan pumps reader messages into s until the source ends or ctx is done
func scan(ctx context.Context, s *inventory.Session, rd *reader, log zerolog.Logger) error {
	pump := polling.NewSessionPump(rd.source, s, log)
	if err := pump.Start(ctx); err != nil {
		return err
	}

	if rd.controller != nil {
		if err := rd.controller.Send(ctx, bridge.StartInventoryFor(s)); err != nil {
			_ = pump.Stop()
			return fmt.Errorf("start inventory: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if rd.live {
		clock := polling.NewIntervalClock(s)
		if err := clock.Start(runCtx); err != nil {
			_ = pump.Stop()
			return err
		}
		defer clock.Stop()
	}
	var runDone chan struct{}
	if rd.run != nil {
		runDone = make(chan struct{})
		go func() {
			defer close(runDone)
			rd.run(runCtx)
		}()
	}

	select {
	case <-ctx.Done():
	case <-waitChan(pump):
	}
	cancel()
	err := pump.Stop()

	if runDone != nil {
		// the driver may be blocked writing to a source nobody reads any more
		_ = rd.source.Close()
		<-runDone
	}
	return err
}

// stopReader asks the reader to stop and ends the session
func stopReader(s *inventory.Session, rd *reader, log zerolog.Logger) {
	if rd.controller != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := rd.controller.Send(ctx, bridge.StopInventory(s.ID())); err != nil &&
			!errors.Is(err, transport.ErrClosed) {
			log.Warn().Err(err).Msg("stop inventory")
		}
	}
	if s.State() != inventory.StateStopped {
		s.Stop(inventory.CompletedOK)
	}
}

// waitChan closes when the pump exits
func waitChan(p *polling.Pump) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		_ = p.Wait()
		close(ch)
	}()
	return ch
}
