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

// Package config loads the YAML configuration of the inventory command.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/ZaparooProject/go-inventory/publish"
	"github.com/ZaparooProject/go-inventory/transport"
	"github.com/ZaparooProject/go-inventory/transport/uart"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// PresetManual selects DefaultConfiguration instead of a preset
const PresetManual = "manual"

// Config is the top level configuration
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Reader    ReaderConfig    `yaml:"reader"`
	Inventory InventoryConfig `yaml:"inventory"`
	Publish   PublishConfig   `yaml:"publish"`
}

// LogConfig controls zerolog output
type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// ReaderConfig selects where reader messages come from
type ReaderConfig struct {
	Device      string        `yaml:"device"`
	Replay      string        `yaml:"replay"`
	IgnorePaths []string      `yaml:"ignore_paths"`
	Blocklist   []string      `yaml:"blocklist"`
	BaudRate    int           `yaml:"baud_rate"`
	OpenRetries int           `yaml:"open_retries"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	USBOnly     bool          `yaml:"usb_only"`
}

// InventoryConfig describes the session to start
type InventoryConfig struct {
	// Overrides is decoded over the preset, so only the listed fields change
	Overrides           yaml.Node `yaml:"overrides"`
	Preset              string    `yaml:"preset"`
	SessionID           string    `yaml:"session_id"`
	Filter              []string  `yaml:"filter"`
	MaxEpcsSentToReader int       `yaml:"max_epcs_sent_to_reader"`
	IgnoreList          bool      `yaml:"ignore_list"`
}

// PublishConfig lists the optional notification sinks. A sink is enabled
// when its address is set.
type PublishConfig struct {
	NATS      publish.NATSConfig     `yaml:"nats"`
	MQTT      publish.MQTTConfig     `yaml:"mqtt"`
	Postgres  publish.PostgresConfig `yaml:"postgres"`
	WebSocket WebSocketConfig        `yaml:"websocket"`
}

// WebSocketConfig configures the live notification stream
type WebSocketConfig struct {
	Listen         string   `yaml:"listen"`
	Path           string   `yaml:"path"`
	CORSOrigins    []string `yaml:"cors_origins"`
	BufferSize     int      `yaml:"buffer_size"`
	MaxConnections int      `yaml:"max_connections"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Console: true},
		Reader: ReaderConfig{
			BaudRate:    uart.DefaultBaudRate,
			OpenRetries: 3,
			RetryDelay:  250 * time.Millisecond,
		},
		Inventory: InventoryConfig{
			Preset:              inventory.InventoryShortRange.String(),
			MaxEpcsSentToReader: inventory.DefaultMaxEpcsSentToReader,
		},
		Publish: PublishConfig{
			NATS: publish.NATSConfig{
				SubjectPrefix: publish.DefaultSubjectPrefix,
				ReconnectWait: 2 * time.Second,
				MaxReconnects: 60,
			},
			MQTT: publish.MQTTConfig{
				TopicPrefix:    publish.DefaultTopicPrefix,
				ConnectTimeout: 10 * time.Second,
				PublishTimeout: 5 * time.Second,
			},
			Postgres: publish.PostgresConfig{
				Table:        publish.DefaultEventTable,
				QueueSize:    publish.DefaultQueueSize,
				WriteTimeout: publish.DefaultWriteTimeout,
			},
			WebSocket: WebSocketConfig{Path: "/ws", BufferSize: 64},
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parts that cannot be checked by decoding alone
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Reader.Device != "" && c.Reader.Replay != "" {
		errs = append(errs, errors.New("reader: device and replay are mutually exclusive"))
	}
	if c.Reader.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("reader: invalid baud rate %d", c.Reader.BaudRate))
	}
	if c.Inventory.MaxEpcsSentToReader < 0 {
		errs = append(errs, errors.New("inventory: max_epcs_sent_to_reader must not be negative"))
	}
	if _, err := c.InventoryConfiguration(); err != nil {
		errs = append(errs, err)
	}
	if ws := c.Publish.WebSocket; ws.Listen != "" && !strings.HasPrefix(ws.Path, "/") {
		errs = append(errs, fmt.Errorf("publish.websocket: path %q must start with /", ws.Path))
	}
	if q := c.Publish.MQTT.QoS; q > 2 {
		errs = append(errs, fmt.Errorf("publish.mqtt: invalid qos %d", q))
	}
	if pg := c.Publish.Postgres; pg.DSN != "" {
		if err := pg.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogLevel parses the configured level
func (c *Config) LogLevel() (zerolog.Level, error) {
	if c.Log.Level == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log: %w", err)
	}
	return level, nil
}

// InventoryConfiguration resolves the preset and applies the overrides
func (c *Config) InventoryConfiguration() (inventory.Configuration, error) {
	var cfg inventory.Configuration
	switch c.Inventory.Preset {
	case "", PresetManual:
		cfg = inventory.DefaultConfiguration()
	default:
		t, err := inventory.ParseInventoryType(c.Inventory.Preset)
		if err != nil {
			return cfg, fmt.Errorf("inventory: %w", err)
		}
		if cfg, err = inventory.ConfigurationWithInventoryType(t); err != nil {
			return cfg, fmt.Errorf("inventory: %w", err)
		}
	}

	if !c.Inventory.Overrides.IsZero() {
		if err := c.Inventory.Overrides.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("inventory overrides: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("inventory: %w", err)
	}
	return cfg, nil
}

// SessionOptions returns the session options implied by the configuration
func (c *Config) SessionOptions() []inventory.Option {
	opts := []inventory.Option{inventory.WithMaxEpcsSentToReader(c.Inventory.MaxEpcsSentToReader)}
	if c.Inventory.SessionID != "" {
		opts = append(opts, inventory.WithSessionID(c.Inventory.SessionID))
	}
	return opts
}

// PortFilter returns the serial port filter for auto-detection
func (c *Config) PortFilter() uart.PortFilter {
	return uart.PortFilter{
		IgnorePaths: c.Reader.IgnorePaths,
		Blocklist:   c.Reader.Blocklist,
		USBOnly:     c.Reader.USBOnly,
	}
}

// UARTOptions returns the serial options for the reader
func (c *Config) UARTOptions(logger zerolog.Logger) []uart.Option {
	retry := transport.DefaultRetryConfig("open serial port")
	retry.MaxRetries = c.Reader.OpenRetries
	if c.Reader.RetryDelay > 0 {
		retry.RetryDelay = c.Reader.RetryDelay
	}
	return []uart.Option{
		uart.WithBaudRate(c.Reader.BaudRate),
		uart.WithRetryConfig(retry),
		uart.WithLogger(logger),
	}
}
