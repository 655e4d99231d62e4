// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/nickjuntilla/wttp-bridge/cmd/wttp/cli"
	"github.com/nickjuntilla/wttp-bridge/lib/version"
)

// rootCommand builds the complete wttp command tree.
func rootCommand() *cli.Command {
	return &cli.Command{
		Name: "wttp",
		Description: `wttp: client for web resources served by on-chain sites.

Resolve a site by contract address or registered name, follow its
redirects and directory fallbacks the way a browser would, and
reassemble the resource's data points into bytes.`,
		Subcommands: []*cli.Command{
			fetchCommand(),
			headCommand(),
			resolveCommand(),
			networksCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("wttp %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Fetch a page from a named site",
				Command:     "wttp fetch example.eth /index.html",
			},
			{
				Description: "Fetch from a contract address on another network",
				Command:     "wttp fetch --network sepolia 0x36A0b7...c5B0 /data.json",
			},
			{
				Description: "Inspect metadata without downloading content",
				Command:     "wttp head example.eth /large-video.mp4",
			},
			{
				Description: "Resolve a name to its contract address",
				Command:     "wttp resolve example.eth",
			},
			{
				Description: "List the known networks",
				Command:     "wttp networks",
			},
		},
	}
}
