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
	"fmt"
	"strconv"
)

// InventoryType selects one of the predefined configurations
type InventoryType int

// Inventory types
const (
	// LocateDistance locates a tag at a distance
	LocateDistance InventoryType = 1
	// InventoryShortRange counts a large number of tags relatively close
	InventoryShortRange InventoryType = 2
	// InventoryDistance counts tags at a distance
	InventoryDistance InventoryType = 3
	// LocateShortRange locates a tag at short range
	LocateShortRange InventoryType = 4
	// LocateVeryShortRange locates a tag at very short range
	LocateVeryShortRange InventoryType = 5
)

// NumInventoryTypes is the number of predefined configurations
const NumInventoryTypes = 5

// InventoryTypes lists the predefined inventory types in table order
func InventoryTypes() []InventoryType {
	return []InventoryType{
		LocateDistance, InventoryShortRange, InventoryDistance, LocateShortRange, LocateVeryShortRange,
	}
}

func (t InventoryType) String() string {
	switch t {
	case LocateDistance:
		return "locate-distance"
	case InventoryShortRange:
		return "inventory-short-range"
	case InventoryDistance:
		return "inventory-distance"
	case LocateShortRange:
		return "locate-short-range"
	case LocateVeryShortRange:
		return "locate-very-short-range"
	default:
		return "inventory-type(" + strconv.Itoa(int(t)) + ")"
	}
}

// ParseInventoryType parses the String form of an inventory type
func ParseInventoryType(s string) (InventoryType, error) {
	for _, t := range InventoryTypes() {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInventoryType, s)
}

// PresetTable is the flat preset data supplied by the configuration source:
// NumInventoryTypes consecutive runs of ConfigurationFieldCount values and
// one human-readable name per inventory type.
type PresetTable struct {
	Values []any
	Names  []string
}

// NewPresetTable builds a table from configurations listed in inventory type order
func NewPresetTable(configs []Configuration, names []string) (*PresetTable, error) {
	if len(configs) != NumInventoryTypes || len(names) != NumInventoryTypes {
		return nil, fmt.Errorf("preset table: need %d configurations and names, got %d and %d",
			NumInventoryTypes, len(configs), len(names))
	}
	values := make([]any, 0, NumInventoryTypes*ConfigurationFieldCount)
	for _, c := range configs {
		values = append(values, c.Values()...)
	}
	return &PresetTable{Values: values, Names: append([]string(nil), names...)}, nil
}

// Validate checks the table dimensions
func (p *PresetTable) Validate() error {
	if len(p.Values) != NumInventoryTypes*ConfigurationFieldCount {
		return fmt.Errorf("preset table: expected %d values, got %d",
			NumInventoryTypes*ConfigurationFieldCount, len(p.Values))
	}
	if len(p.Names) != NumInventoryTypes {
		return fmt.Errorf("preset table: expected %d names, got %d", NumInventoryTypes, len(p.Names))
	}
	return nil
}

func (*PresetTable) index(t InventoryType) (int, error) {
	if t < LocateDistance || t > LocateVeryShortRange {
		return 0, fmt.Errorf("%w: %d", ErrUnknownInventoryType, int(t))
	}
	return int(t) - 1, nil
}

// Configuration returns the preset configuration for t
func (p *PresetTable) Configuration(t InventoryType) (Configuration, error) {
	i, err := p.index(t)
	if err != nil {
		return Configuration{}, err
	}
	if err := p.Validate(); err != nil {
		return Configuration{}, err
	}
	start := i * ConfigurationFieldCount
	c, err := ConfigurationFromValues(p.Values[start : start+ConfigurationFieldCount])
	if err != nil {
		return Configuration{}, fmt.Errorf("preset %s: %w", t, err)
	}
	return c, nil
}

// Name returns the display name for t
func (p *PresetTable) Name(t InventoryType) (string, error) {
	i, err := p.index(t)
	if err != nil {
		return "", err
	}
	if i >= len(p.Names) {
		return "", fmt.Errorf("preset table: no name for %s", t)
	}
	return p.Names[i], nil
}

// DefaultPresets returns the built-in preset table
func DefaultPresets() *PresetTable {
	table, err := NewPresetTable(defaultPresetConfigurations(), []string{
		"Locate (distance)",
		"Inventory (short range)",
		"Inventory (distance)",
		"Locate (short range)",
		"Locate (very short range)",
	})
	if err != nil {
		panic(err)
	}
	return table
}

// ConfigurationWithInventoryType returns the built-in preset for t
func ConfigurationWithInventoryType(t InventoryType) (Configuration, error) {
	return DefaultPresets().Configuration(t)
}

func defaultPresetConfigurations() []Configuration {
	locate := func(power, minPower float64, sensitivity int) Configuration {
		c := DefaultConfiguration()
		c.InitialPowerLevel = power
		c.MinPowerLevel = minPower
		c.MaxPowerLevel = power
		c.InitialQValue = 2
		c.MinQValue = 0
		c.MaxQValue = 4
		c.Session = 0
		c.Sensitivity = sensitivity
		c.ReportRssi = true
		c.ReportSubsequentFinds = true
		c.SoundType = SoundGeigerCounter
		c.Volume = 1
		c.HistoryIntervalMSec = 250
		c.HistoryDepth = 8
		return c
	}
	count := func(power float64, q int, sensitivity int) Configuration {
		c := DefaultConfiguration()
		c.InitialPowerLevel = power
		c.MinPowerLevel = power - 10
		c.MaxPowerLevel = power
		c.InitialQValue = q
		c.MinQValue = 2
		c.MaxQValue = 12
		c.Session = 2
		c.RoundsWithNoFindsToToggleAB = 4
		c.Sensitivity = sensitivity
		c.SoundType = SoundFirstFind
		c.Volume = 0.5
		return c
	}
	return []Configuration{
		locate(30, 20, -80),
		count(22, 6, -70),
		count(30, 8, -80),
		locate(22, 10, -70),
		locate(15, 5, -60),
	}
}
