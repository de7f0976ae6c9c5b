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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		devicePath  string
		ignorePaths []string
		expected    bool
	}{
		{name: "EmptyIgnoreList", devicePath: "/dev/ttyUSB0", expected: false},
		{name: "EmptyDevicePath", devicePath: "", ignorePaths: []string{"/dev/ttyUSB0"}, expected: false},
		{name: "ExactUnix", devicePath: "/dev/ttyUSB0", ignorePaths: []string{"/dev/ttyUSB0"}, expected: true},
		{name: "WindowsCase", devicePath: "COM3", ignorePaths: []string{"com3"}, expected: true},
		{name: "Uncleaned", devicePath: "/dev/./ttyACM0", ignorePaths: []string{"/dev/ttyACM0"}, expected: true},
		{name: "Different", devicePath: "/dev/ttyUSB1", ignorePaths: []string{"", "/dev/ttyUSB0"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsPathIgnored(tt.devicePath, tt.ignorePaths))
		})
	}
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	blocklist := []string{" 1a86:7523 ", "10C4:EA60"}
	assert.True(t, IsBlocked("1A86:7523", blocklist))
	assert.True(t, IsBlocked("10c4:ea60", blocklist))
	assert.False(t, IsBlocked("0403:6001", blocklist))
	assert.False(t, IsBlocked("", []string{""}))
}

func TestPortFilter_Apply(t *testing.T) {
	t.Parallel()

	ports := []PortInfo{
		{Path: "/dev/ttyS0"},
		{Path: "/dev/ttyUSB0", IsUSB: true, VIDPID: "1A86:7523"},
		{Path: "/dev/ttyUSB1", IsUSB: true, VIDPID: "0403:6001"},
		{Path: "/dev/ttyACM0", IsUSB: true, VIDPID: "2341:0043"},
	}

	f := PortFilter{
		IgnorePaths: []string{"/dev/ttyACM0"},
		Blocklist:   []string{"1a86:7523"},
	}
	got := f.apply(ports)
	assert.Equal(t, []PortInfo{ports[0], ports[2]}, got)

	f.USBOnly = true
	assert.Equal(t, []PortInfo{ports[2]}, f.apply(ports))
}
