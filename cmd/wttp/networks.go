// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/nickjuntilla/wttp-bridge/cmd/wttp/cli"
	"github.com/nickjuntilla/wttp-bridge/lib/chain"
)

func networksCommand() *cli.Command {
	var networksFile string

	return &cli.Command{
		Name:    "networks",
		Summary: "List the known networks",
		Description: `List the network table: name, chain id, name service support, and
the RPC endpoints tried in order. The root network is the fallback
for name resolution and the default for every command's --network.`,
		Usage: "wttp networks [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("networks", pflag.ContinueOnError)
			flags.StringVar(&networksFile, "networks", "", "YAML file overlaying the built-in network table")
			return flags
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("networks takes no arguments, got %q", args[0])
			}
			table := chain.BuiltinTable()
			if networksFile != "" {
				loaded, err := chain.LoadOverrides(networksFile, table)
				if err != nil {
					return err
				}
				table = loaded
			}
			return writeNetworks(os.Stdout, table)
		},
		Examples: []cli.Example{
			{
				Description: "List the built-in networks",
				Command:     "wttp networks",
			},
			{
				Description: "Check what a table overlay adds",
				Command:     "wttp networks --networks ./testnets.yaml",
			},
		},
	}
}

func writeNetworks(w io.Writer, table *chain.Table) error {
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCHAIN ID\tENS\tRPC")
	for _, network := range table.All() {
		name := network.Name
		if network.Root {
			name += " (root)"
		}
		ens := "-"
		if network.SupportsENS() {
			ens = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", name, network.ChainID, ens, strings.Join(network.RPC, " "))
	}
	return tw.Flush()
}
