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
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// PortInfo describes a candidate reader port
type PortInfo struct {
	Path         string
	VIDPID       string
	Product      string
	SerialNumber string
	IsUSB        bool
}

// PortFilter excludes ports from Ports
type PortFilter struct {
	// IgnorePaths are device paths never returned, compared case-insensitively
	IgnorePaths []string
	// Blocklist holds USB VID:PID pairs in hex
	Blocklist []string
	// USBOnly drops ports that are not USB serial adapters
	USBOnly bool
}

// Ports lists serial ports a reader could be attached to, USB ports first
func Ports(filter PortFilter) ([]PortInfo, error) {
	all, err := listPorts()
	if err != nil {
		return nil, err
	}
	ports := filter.apply(all)
	sort.SliceStable(ports, func(i, j int) bool {
		if ports[i].IsUSB != ports[j].IsUSB {
			return ports[i].IsUSB
		}
		return ports[i].Path < ports[j].Path
	})
	return ports, nil
}

func listPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		ports := make([]PortInfo, 0, len(details))
		for _, d := range details {
			p := PortInfo{Path: d.Name, IsUSB: d.IsUSB, Product: d.Product, SerialNumber: d.SerialNumber}
			if d.IsUSB {
				p.VIDPID = strings.ToUpper(d.VID + ":" + d.PID)
			}
			ports = append(ports, p)
		}
		return ports, nil
	}

	// Enumeration without USB metadata
	names, listErr := serial.GetPortsList()
	if listErr != nil {
		return nil, fmt.Errorf("list serial ports: %w", listErr)
	}
	ports := make([]PortInfo, 0, len(names))
	for _, name := range names {
		ports = append(ports, PortInfo{Path: name})
	}
	return ports, nil
}

func (f PortFilter) apply(ports []PortInfo) []PortInfo {
	var out []PortInfo
	for _, p := range ports {
		if f.USBOnly && !p.IsUSB {
			continue
		}
		if IsPathIgnored(p.Path, f.IgnorePaths) || IsBlocked(p.VIDPID, f.Blocklist) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// IsBlocked checks if a USB VID:PID is in the blocklist
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	if vidpid == "" {
		return false
	}
	for _, blocked := range blocklist {
		if vidpid == strings.ToUpper(strings.TrimSpace(blocked)) {
			return true
		}
	}
	return false
}

// IsPathIgnored checks if a device path is in ignorePaths
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	device := normalizedPath(devicePath)
	for _, ignore := range ignorePaths {
		if ignore != "" && device == normalizedPath(ignore) {
			return true
		}
	}
	return false
}

// normalizedPath cleans a path and lowercases it for Windows COM names
func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
