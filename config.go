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
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"
)

// ConfigurationFieldCount is the number of values in a flat configuration array
const ConfigurationFieldCount = 37

// Default history window used by the reader firmware: 20 intervals of 500ms.
const (
	DefaultHistoryIntervalMSec = 500
	DefaultHistoryDepth        = 20
)

// Configuration holds the RFID parameters used for one inventory session.
//
// The field order matches the flat value array exchanged with the reader
// transport; Values and ConfigurationFromValues are both driven by the same
// ordered field table, so the two representations cannot drift apart.
type Configuration struct {
	SelectMask                  string     `yaml:"select_mask"`
	InitialPowerLevel           float64    `yaml:"initial_power_level"`
	MinPowerLevel               float64    `yaml:"min_power_level"`
	MaxPowerLevel               float64    `yaml:"max_power_level"`
	PowerLevelWrite             float64    `yaml:"power_level_write"`
	Volume                      float64    `yaml:"volume"`
	InitialQValue               int        `yaml:"initial_q_value"`
	MinQValue                   int        `yaml:"min_q_value"`
	MaxQValue                   int        `yaml:"max_q_value"`
	Session                     int        `yaml:"session"`
	RoundsWithNoFindsToToggleAB int        `yaml:"rounds_with_no_finds_to_toggle_ab"`
	Sensitivity                 int        `yaml:"sensitivity"`
	SensitivityWrite            int        `yaml:"sensitivity_write"`
	MaxRoundsPerSecond          int        `yaml:"max_rounds_per_second"`
	MinTidBytes                 int        `yaml:"min_tid_bytes"`
	MaxTidBytes                 int        `yaml:"max_tid_bytes"`
	MinUserBytes                int        `yaml:"min_user_bytes"`
	MaxUserBytes                int        `yaml:"max_user_bytes"`
	MinReservedBytes            int        `yaml:"min_reserved_bytes"`
	MaxReservedBytes            int        `yaml:"max_reserved_bytes"`
	SoundType                   SoundType  `yaml:"sound_type"`
	HistoryIntervalMSec         int        `yaml:"history_interval_msec"`
	HistoryDepth                int        `yaml:"history_depth"`
	SelectMaskBitLength         int        `yaml:"select_mask_bit_length"`
	SelectOffset                int        `yaml:"select_offset"`
	SelectBank                  MemoryBank `yaml:"select_bank"`
	DetailedPerReadNumReads     int        `yaml:"detailed_per_read_num_reads"`
	DetailedPerReadMemoryBank1  MemoryBank `yaml:"detailed_per_read_memory_bank1"`
	DetailedPerReadWordOffset1  int        `yaml:"detailed_per_read_word_offset1"`
	DetailedPerReadMemoryBank2  MemoryBank `yaml:"detailed_per_read_memory_bank2"`
	DetailedPerReadWordOffset2  int        `yaml:"detailed_per_read_word_offset2"`
	SetListenBeforeTalk         bool       `yaml:"set_listen_before_talk"`
	ListenBeforeTalk            bool       `yaml:"listen_before_talk"`
	Continual                   bool       `yaml:"continual"`
	ReportRssi                  bool       `yaml:"report_rssi"`
	DetailedPerReadData         bool       `yaml:"detailed_per_read_data"`
	ReportSubsequentFinds       bool       `yaml:"report_subsequent_finds"`
}

// DefaultConfiguration returns a manually-configured baseline: continual
// scanning with the default history window and everything else left to the
// reader's defaults (zero).
func DefaultConfiguration() Configuration {
	return Configuration{
		Continual:                  true,
		HistoryIntervalMSec:        DefaultHistoryIntervalMSec,
		HistoryDepth:               DefaultHistoryDepth,
		SelectBank:                 MemoryBankEPC,
		DetailedPerReadMemoryBank1: MemoryBankEPC,
		DetailedPerReadMemoryBank2: MemoryBankEPC,
	}
}

// configField binds one position of the flat value array to a struct field
type configField struct {
	get  func(*Configuration) any
	set  func(*Configuration, any) error
	name string
}

func floatField(name string, ptr func(*Configuration) *float64) configField {
	return configField{
		name: name,
		get:  func(c *Configuration) any { return *ptr(c) },
		set: func(c *Configuration, v any) error {
			switch f := v.(type) {
			case float64:
				*ptr(c) = f
			case int:
				*ptr(c) = float64(f)
			default:
				return fmt.Errorf("%s: expected number, got %T", name, v)
			}
			return nil
		},
	}
}

func intField(name string, ptr func(*Configuration) *int) configField {
	return configField{
		name: name,
		get:  func(c *Configuration) any { return *ptr(c) },
		set: func(c *Configuration, v any) error {
			n, err := toInt(name, v)
			if err != nil {
				return err
			}
			*ptr(c) = n
			return nil
		},
	}
}

func boolField(name string, ptr func(*Configuration) *bool) configField {
	return configField{
		name: name,
		get:  func(c *Configuration) any { return *ptr(c) },
		set: func(c *Configuration, v any) error {
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("%s: expected bool, got %T", name, v)
			}
			*ptr(c) = b
			return nil
		},
	}
}

func stringField(name string, ptr func(*Configuration) *string) configField {
	return configField{
		name: name,
		get:  func(c *Configuration) any { return *ptr(c) },
		set: func(c *Configuration, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%s: expected string, got %T", name, v)
			}
			*ptr(c) = s
			return nil
		},
	}
}

func bankField(name string, ptr func(*Configuration) *MemoryBank) configField {
	return configField{
		name: name,
		get:  func(c *Configuration) any { return int(*ptr(c)) },
		set: func(c *Configuration, v any) error {
			n, err := toInt(name, v)
			if err != nil {
				return err
			}
			*ptr(c) = MemoryBank(n)
			return nil
		},
	}
}

func soundField(name string, ptr func(*Configuration) *SoundType) configField {
	return configField{
		name: name,
		get:  func(c *Configuration) any { return int(*ptr(c)) },
		set: func(c *Configuration, v any) error {
			n, err := toInt(name, v)
			if err != nil {
				return err
			}
			*ptr(c) = SoundType(n)
			return nil
		},
	}
}

// toInt accepts Go ints and whole JSON numbers
func toInt(name string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%s: expected integer, got %v", name, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%s: expected integer, got %T", name, v)
	}
}

var configFields = [ConfigurationFieldCount]configField{
	floatField("initialPowerLevel", func(c *Configuration) *float64 { return &c.InitialPowerLevel }),
	floatField("minPowerLevel", func(c *Configuration) *float64 { return &c.MinPowerLevel }),
	floatField("maxPowerLevel", func(c *Configuration) *float64 { return &c.MaxPowerLevel }),
	intField("initialQValue", func(c *Configuration) *int { return &c.InitialQValue }),
	intField("minQValue", func(c *Configuration) *int { return &c.MinQValue }),
	intField("maxQValue", func(c *Configuration) *int { return &c.MaxQValue }),
	intField("session", func(c *Configuration) *int { return &c.Session }),
	intField("roundsWithNoFindsToToggleAB", func(c *Configuration) *int { return &c.RoundsWithNoFindsToToggleAB }),
	intField("sensitivity", func(c *Configuration) *int { return &c.Sensitivity }),
	floatField("powerLevelWrite", func(c *Configuration) *float64 { return &c.PowerLevelWrite }),
	intField("sensitivityWrite", func(c *Configuration) *int { return &c.SensitivityWrite }),
	boolField("setListenBeforeTalk", func(c *Configuration) *bool { return &c.SetListenBeforeTalk }),
	boolField("listenBeforeTalk", func(c *Configuration) *bool { return &c.ListenBeforeTalk }),
	intField("maxRoundsPerSecond", func(c *Configuration) *int { return &c.MaxRoundsPerSecond }),
	intField("minTidBytes", func(c *Configuration) *int { return &c.MinTidBytes }),
	intField("maxTidBytes", func(c *Configuration) *int { return &c.MaxTidBytes }),
	intField("minUserBytes", func(c *Configuration) *int { return &c.MinUserBytes }),
	intField("maxUserBytes", func(c *Configuration) *int { return &c.MaxUserBytes }),
	intField("minReservedBytes", func(c *Configuration) *int { return &c.MinReservedBytes }),
	intField("maxReservedBytes", func(c *Configuration) *int { return &c.MaxReservedBytes }),
	boolField("continual", func(c *Configuration) *bool { return &c.Continual }),
	boolField("reportRssi", func(c *Configuration) *bool { return &c.ReportRssi }),
	boolField("detailedPerReadData", func(c *Configuration) *bool { return &c.DetailedPerReadData }),
	boolField("reportSubsequentFinds", func(c *Configuration) *bool { return &c.ReportSubsequentFinds }),
	soundField("soundType", func(c *Configuration) *SoundType { return &c.SoundType }),
	floatField("volume", func(c *Configuration) *float64 { return &c.Volume }),
	intField("historyIntervalMSec", func(c *Configuration) *int { return &c.HistoryIntervalMSec }),
	intField("historyDepth", func(c *Configuration) *int { return &c.HistoryDepth }),
	stringField("selectMask", func(c *Configuration) *string { return &c.SelectMask }),
	intField("selectMaskBitLength", func(c *Configuration) *int { return &c.SelectMaskBitLength }),
	intField("selectOffset", func(c *Configuration) *int { return &c.SelectOffset }),
	bankField("selectBank", func(c *Configuration) *MemoryBank { return &c.SelectBank }),
	intField("detailedPerReadNumReads", func(c *Configuration) *int { return &c.DetailedPerReadNumReads }),
	bankField("detailedPerReadMemoryBank1", func(c *Configuration) *MemoryBank { return &c.DetailedPerReadMemoryBank1 }),
	intField("detailedPerReadWordOffset1", func(c *Configuration) *int { return &c.DetailedPerReadWordOffset1 }),
	bankField("detailedPerReadMemoryBank2", func(c *Configuration) *MemoryBank { return &c.DetailedPerReadMemoryBank2 }),
	intField("detailedPerReadWordOffset2", func(c *Configuration) *int { return &c.DetailedPerReadWordOffset2 }),
}

// ConfigurationFieldNames returns the field names in flat array order
func ConfigurationFieldNames() []string {
	names := make([]string, len(configFields))
	for i, f := range configFields {
		names[i] = f.name
	}
	return names
}

// Values returns the configuration as a flat array in transport order.
// Enum fields are returned as plain ints.
func (c Configuration) Values() []any {
	values := make([]any, len(configFields))
	for i, f := range configFields {
		values[i] = f.get(&c)
	}
	return values
}

// ConfigurationFromValues rebuilds a Configuration from a flat value array.
// Integer fields accept whole float64 values so arrays decoded from JSON work.
func ConfigurationFromValues(values []any) (Configuration, error) {
	var c Configuration
	if len(values) != ConfigurationFieldCount {
		return c, fmt.Errorf("configuration values: expected %d values, got %d",
			ConfigurationFieldCount, len(values))
	}
	for i, f := range configFields {
		if err := f.set(&c, values[i]); err != nil {
			return Configuration{}, fmt.Errorf("configuration value %d: %w", i, err)
		}
	}
	return c, nil
}

// HistoryInterval returns the history interval as a duration
func (c Configuration) HistoryInterval() time.Duration {
	return time.Duration(c.HistoryIntervalMSec) * time.Millisecond
}

// HistoryWindow returns the time a tag stays visible after its last read
func (c Configuration) HistoryWindow() time.Duration {
	return c.HistoryInterval() * time.Duration(c.HistoryDepth)
}

// SelectMaskBytes decodes the hex SELECT mask. An empty mask means no SELECT.
func (c Configuration) SelectMaskBytes() ([]byte, error) {
	if c.SelectMask == "" {
		return nil, nil
	}
	mask, err := hex.DecodeString(c.SelectMask)
	if err != nil {
		return nil, fmt.Errorf("select mask: %w", err)
	}
	return mask, nil
}

// EffectiveSelectMaskBitLength returns the SELECT mask length in bits,
// defaulting to the full mask when SelectMaskBitLength is zero.
func (c Configuration) EffectiveSelectMaskBitLength() int {
	if c.SelectMask == "" {
		return 0
	}
	if c.SelectMaskBitLength != 0 {
		return c.SelectMaskBitLength
	}
	return len(c.SelectMask) / 2 * 8
}

// Validate checks the fields the session depends on.
// History parameters must be positive; the remaining checks catch values the
// reader would reject.
func (c Configuration) Validate() error {
	if c.HistoryDepth <= 0 {
		return NewInvalidConfigError("historyDepth", c.HistoryDepth, "must be positive")
	}
	if c.HistoryIntervalMSec <= 0 {
		return NewInvalidConfigError("historyIntervalMSec", c.HistoryIntervalMSec, "must be positive")
	}
	if c.Volume < 0 || c.Volume > 1 {
		return NewInvalidConfigError("volume", c.Volume, "must be between 0 and 1")
	}
	if c.DetailedPerReadNumReads < 0 || c.DetailedPerReadNumReads > 2 {
		return NewInvalidConfigError("detailedPerReadNumReads", c.DetailedPerReadNumReads, "must be 0, 1 or 2")
	}
	banks := []struct {
		name string
		bank MemoryBank
	}{
		{"selectBank", c.SelectBank},
		{"detailedPerReadMemoryBank1", c.DetailedPerReadMemoryBank1},
		{"detailedPerReadMemoryBank2", c.DetailedPerReadMemoryBank2},
	}
	for _, b := range banks {
		if !b.bank.Valid() {
			return NewInvalidConfigError(b.name, int(b.bank), "unknown memory bank")
		}
	}
	if !c.SoundType.Valid() {
		return NewInvalidConfigError("soundType", int(c.SoundType), "unknown sound type")
	}
	if _, err := c.SelectMaskBytes(); err != nil {
		return NewInvalidConfigError("selectMask", c.SelectMask, err.Error())
	}
	return nil
}

func (c Configuration) String() string {
	var sb strings.Builder
	_, _ = sb.WriteString("Configuration: ")
	values := c.Values()
	for i, f := range configFields {
		if i > 0 {
			_, _ = sb.WriteString(", ")
		}
		_, _ = fmt.Fprintf(&sb, "%s = %v", f.name, values[i])
	}
	return sb.String()
}
