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

// Package publish forwards inventory notifications to message brokers and
// an event log.
//
// Each notification becomes a JSON Event. NATSPublisher sends it on the
// subject <prefix>.<session>.<kind>; MQTTPublisher sends it on the topic
// <prefix>/<session>/<kind>. PostgresPublisher appends it to a table.
// Hook adapts any Publisher to a session
// observer:
//
//	pub, err := publish.ConnectNATS(cfg, logger)
//	if err != nil {
//		return err
//	}
//	defer pub.Close()
//	s, err := inventory.Start(config, nil, false, inventory.Observer{
//		OnNotification: publish.Hook(pub, logger),
//	})
package publish
