// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

// Wttp is a command-line client for web resources served by on-chain
// sites. It resolves a site (contract address or registered name) and
// a path, walks the site's metadata and redirect surface, and
// reassembles the resource's data points into bytes on stdout.
// Subcommands: fetch, head, resolve, networks, version.
package main
