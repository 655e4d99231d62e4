// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/nickjuntilla/wttp-bridge/lib/chain"
	"github.com/nickjuntilla/wttp-bridge/lib/ens"
	"github.com/nickjuntilla/wttp-bridge/lib/wttp"
)

// clientOptions are the flags shared by every command that talks to a
// network: which network to query, where the network table comes from,
// and the local cache and logging knobs.
type clientOptions struct {
	network      string
	networksFile string
	cacheDir     string
	verify       bool
	verbose      bool
}

func (o *clientOptions) bind(flags *pflag.FlagSet) {
	flags.StringVar(&o.network, "network", "", "network to query (default: the table's root network)")
	flags.StringVar(&o.networksFile, "networks", "", "YAML file overlaying the built-in network table")
	flags.StringVar(&o.cacheDir, "cache-dir", "", "directory for the on-disk data point cache")
	flags.BoolVar(&o.verify, "verify", false, "re-derive each data point's content address and warn on mismatch")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")
}

// logger builds the stderr logger. Summaries and content are the
// primary output, so the default level only surfaces warnings;
// --verbose opens up the client's per-request diagnostics.
func (o *clientOptions) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (o *clientOptions) table() (*chain.Table, error) {
	if o.networksFile == "" {
		return chain.BuiltinTable(), nil
	}
	return chain.LoadOverrides(o.networksFile, chain.BuiltinTable())
}

func (o *clientOptions) registry(logger *slog.Logger) (*chain.Registry, error) {
	table, err := o.table()
	if err != nil {
		return nil, err
	}
	return chain.NewRegistry(chain.RegistryConfig{Table: table, Logger: logger}), nil
}

func (o *clientOptions) newClient(logger *slog.Logger) (*wttp.Client, error) {
	registry, err := o.registry(logger)
	if err != nil {
		return nil, err
	}
	resolver := ens.NewResolver(ens.ResolverConfig{Registry: registry, Logger: logger})
	return wttp.NewClient(wttp.ClientConfig{
		Registry:        registry,
		Resolver:        resolver,
		Network:         o.network,
		CacheDir:        o.cacheDir,
		VerifyAddresses: o.verify,
		Logger:          logger,
	})
}
