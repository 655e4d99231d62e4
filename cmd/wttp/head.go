// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/pflag"

	"github.com/nickjuntilla/wttp-bridge/cmd/wttp/cli"
)

func headCommand() *cli.Command {
	var opts requestFlags

	return &cli.Command{
		Name:    "head",
		Summary: "Fetch resource metadata without content",
		Description: `Print a resource's response summary without downloading content.

Redirects and directory index fallbacks are followed the same way
fetch follows them, so the summary describes the resource a fetch
would actually return. No data points are read.`,
		Usage: "wttp head [flags] <site> [path]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("head", pflag.ContinueOnError)
			opts.client.bind(flags)
			opts.bindConditional(flags)
			return flags
		},
		Run: func(args []string) error {
			opts.headOnly = true
			return runRequest(&opts, args)
		},
		Examples: []cli.Example{
			{
				Description: "Check a resource's size and etag before fetching",
				Command:     "wttp head example.eth /large-video.mp4",
			},
			{
				Description: "See where a path redirects",
				Command:     "wttp head example.eth /old-page --max-redirects -1",
			},
		},
	}
}
