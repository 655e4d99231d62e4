// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"github.com/nickjuntilla/wttp-bridge/cmd/wttp/cli"
	"github.com/nickjuntilla/wttp-bridge/lib/chain"
	"github.com/nickjuntilla/wttp-bridge/lib/ens"
)

func resolveCommand() *cli.Command {
	var opts clientOptions
	var noFallback bool

	return &cli.Command{
		Name:    "resolve",
		Summary: "Resolve a site name to its contract address",
		Description: `Resolve a registered name to the address a fetch would talk to.

The lookup runs on the selected network. When that network has no
record for the name, the root network is consulted, matching what
fetch does; --no-fallback restricts the lookup to the selected
network. An address argument is checksummed and printed back.`,
		Usage: "wttp resolve [flags] <name>",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
			opts.bind(flags)
			flags.BoolVar(&noFallback, "no-fallback", false, "do not retry the lookup on the root network")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("want exactly one name, got %d arguments", len(args))
			}

			logger := opts.logger()
			registry, err := opts.registry(logger)
			if err != nil {
				return err
			}
			resolver := ens.NewResolver(ens.ResolverConfig{Registry: registry, Logger: logger})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			address, err := resolveName(ctx, registry, resolver, networkSelector(registry, opts.network), args[0], ens.ResolveOptions{NoFallback: noFallback})
			if err != nil {
				return err
			}
			fmt.Println(address.Hex())
			return nil
		},
		Examples: []cli.Example{
			{
				Description: "Resolve a name on the root network",
				Command:     "wttp resolve example.eth",
			},
			{
				Description: "Resolve only against a specific network",
				Command:     "wttp resolve --network sepolia --no-fallback example.eth",
			},
		},
	}
}

// networkSelector fills an empty --network with the table's root
// network name.
func networkSelector(registry *chain.Registry, network string) string {
	if network != "" {
		return network
	}
	return registry.Table().Root().Name
}

// resolveName turns a site identifier into an address: hex literals
// pass through checksummed, names go through the resolver on the
// selected network's endpoint.
func resolveName(ctx context.Context, registry *chain.Registry, resolver *ens.Resolver, network, name string, opts ens.ResolveOptions) (common.Address, error) {
	if common.IsHexAddress(name) {
		return common.HexToAddress(name), nil
	}
	endpoint, err := registry.Endpoint(ctx, network)
	if err != nil {
		return common.Address{}, err
	}
	return resolver.Resolve(ctx, endpoint, name, opts)
}
