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
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullConfiguration() Configuration {
	return Configuration{
		InitialPowerLevel:           29.5,
		MinPowerLevel:               20,
		MaxPowerLevel:               30,
		InitialQValue:               4,
		MinQValue:                   1,
		MaxQValue:                   10,
		Session:                     2,
		RoundsWithNoFindsToToggleAB: 4,
		Sensitivity:                 -80,
		PowerLevelWrite:             25,
		SensitivityWrite:            -70,
		SetListenBeforeTalk:         true,
		ListenBeforeTalk:            true,
		MaxRoundsPerSecond:          50,
		MinTidBytes:                 4,
		MaxTidBytes:                 12,
		MinUserBytes:                2,
		MaxUserBytes:                64,
		MinReservedBytes:            0,
		MaxReservedBytes:            8,
		Continual:                   true,
		ReportRssi:                  true,
		DetailedPerReadData:         true,
		ReportSubsequentFinds:       true,
		SoundType:                   SoundFirstFindAndLast,
		Volume:                      0.75,
		HistoryIntervalMSec:         250,
		HistoryDepth:                8,
		SelectMask:                  "E280",
		SelectMaskBitLength:         12,
		SelectOffset:                32,
		SelectBank:                  MemoryBankTID,
		DetailedPerReadNumReads:     2,
		DetailedPerReadMemoryBank1:  MemoryBankUser,
		DetailedPerReadWordOffset1:  3,
		DetailedPerReadMemoryBank2:  MemoryBankReserved,
		DetailedPerReadWordOffset2:  1,
	}
}

func TestConfiguration_ValuesOrder(t *testing.T) {
	t.Parallel()

	c := fullConfiguration()
	values := c.Values()
	require.Len(t, values, ConfigurationFieldCount)
	require.Len(t, ConfigurationFieldNames(), ConfigurationFieldCount)

	assert.Equal(t, "initialPowerLevel", ConfigurationFieldNames()[0])
	assert.Equal(t, "detailedPerReadWordOffset2", ConfigurationFieldNames()[36])
	assert.InDelta(t, 29.5, values[0], 0)
	assert.Equal(t, 4, values[7])
	assert.Equal(t, true, values[11])
	assert.Equal(t, int(SoundFirstFindAndLast), values[24])
	assert.Equal(t, 8, values[27])
	assert.Equal(t, "E280", values[28])
	assert.Equal(t, int(MemoryBankTID), values[31])
	assert.Equal(t, 1, values[36])
}

func TestConfiguration_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range []Configuration{DefaultConfiguration(), fullConfiguration()} {
		data, err := json.Marshal(c.Values())
		require.NoError(t, err)

		var decoded []any
		require.NoError(t, json.Unmarshal(data, &decoded))

		got, err := ConfigurationFromValues(decoded)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestConfigurationFromValues_Errors(t *testing.T) {
	t.Parallel()

	t.Run("WrongCount", func(t *testing.T) {
		t.Parallel()
		_, err := ConfigurationFromValues(make([]any, ConfigurationFieldCount-1))
		require.Error(t, err)
	})

	t.Run("WrongType", func(t *testing.T) {
		t.Parallel()
		values := DefaultConfiguration().Values()
		values[20] = "yes"
		_, err := ConfigurationFromValues(values)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "continual")
	})

	t.Run("FractionalInteger", func(t *testing.T) {
		t.Parallel()
		values := DefaultConfiguration().Values()
		values[27] = 2.5
		_, err := ConfigurationFromValues(values)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "historyDepth")
	})
}

func TestConfiguration_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		modify func(*Configuration)
		name   string
		field  string
	}{
		{name: "ZeroDepth", field: "historyDepth", modify: func(c *Configuration) { c.HistoryDepth = 0 }},
		{name: "NegativeInterval", field: "historyIntervalMSec", modify: func(c *Configuration) { c.HistoryIntervalMSec = -1 }},
		{name: "LoudVolume", field: "volume", modify: func(c *Configuration) { c.Volume = 1.5 }},
		{name: "TooManyReads", field: "detailedPerReadNumReads", modify: func(c *Configuration) { c.DetailedPerReadNumReads = 3 }},
		{name: "BadBank", field: "selectBank", modify: func(c *Configuration) { c.SelectBank = 7 }},
		{name: "BadSound", field: "soundType", modify: func(c *Configuration) { c.SoundType = 3 }},
		{name: "BadMask", field: "selectMask", modify: func(c *Configuration) { c.SelectMask = "XYZ" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := DefaultConfiguration()
			tt.modify(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var cfgErr *InvalidConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	require.NoError(t, DefaultConfiguration().Validate())
	require.NoError(t, fullConfiguration().Validate())
}

func TestConfiguration_SelectMask(t *testing.T) {
	t.Parallel()

	c := DefaultConfiguration()
	assert.Equal(t, 0, c.EffectiveSelectMaskBitLength())
	mask, err := c.SelectMaskBytes()
	require.NoError(t, err)
	assert.Nil(t, mask)

	c.SelectMask = "E2801160"
	assert.Equal(t, 32, c.EffectiveSelectMaskBitLength())
	mask, err = c.SelectMaskBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xE2, 0x80, 0x11, 0x60}, mask)

	c.SelectMaskBitLength = 20
	assert.Equal(t, 20, c.EffectiveSelectMaskBitLength())
}

func TestConfiguration_HistoryWindow(t *testing.T) {
	t.Parallel()

	c := DefaultConfiguration()
	assert.Equal(t, "500ms", c.HistoryInterval().String())
	assert.Equal(t, "10s", c.HistoryWindow().String())
	assert.Contains(t, c.String(), "historyDepth = 20")
}
