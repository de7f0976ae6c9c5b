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
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	inventory "github.com/ZaparooProject/go-inventory"
	"github.com/spf13/cobra"
)

func newPresetsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "List the inventory presets, or show one preset's values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showPreset(cmd.OutOrStdout(), args[0], asJSON)
			}
			return listPresets(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the preset as a JSON value array")
	return cmd
}

func listPresets(out io.Writer) error {
	presets := inventory.DefaultPresets()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TYPE\tNAME\tDESCRIPTION\tHISTORY")
	for _, t := range inventory.InventoryTypes() {
		name, err := presets.Name(t)
		if err != nil {
			return err
		}
		cfg, err := presets.Configuration(t)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d x %s\n", int(t), t, name, cfg.HistoryDepth, cfg.HistoryInterval())
	}
	return tw.Flush()
}

func showPreset(out io.Writer, name string, asJSON bool) error {
	t, err := inventory.ParseInventoryType(name)
	if err != nil {
		return err
	}
	cfg, err := inventory.ConfigurationWithInventoryType(t)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(out)
		return enc.Encode(cfg.Values())
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, field := range inventory.ConfigurationFieldNames() {
		_, _ = fmt.Fprintf(tw, "%s\t%v\n", field, cfg.Values()[i])
	}
	return tw.Flush()
}
