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
	"fmt"
	"text/tabwriter"

	"github.com/ZaparooProject/go-inventory/transport/uart"
	"github.com/spf13/cobra"
)

func newPortsCmd(root *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List serial ports that may have a reader attached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			filter := cfg.PortFilter()
			if all {
				filter = uart.PortFilter{}
			}
			ports, err := uart.Ports(filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(ports) == 0 {
				_, _ = fmt.Fprintln(out, "no serial ports found")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "PATH\tUSB\tVID:PID\tPRODUCT\tSERIAL")
			for _, p := range ports {
				_, _ = fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\n", p.Path, p.IsUSB, p.VIDPID, p.Product, p.SerialNumber)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Ignore the configured blocklist and ignore paths")
	return cmd
}
