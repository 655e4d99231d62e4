// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package ens

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nickjuntilla/wttp-bridge/lib/chain"
)

// Namer is the naming backend surface for one network: the registry
// and resolver queries of the two-hop protocol. Implemented over ABI
// calls by this package; tests substitute fakes.
type Namer interface {
	// ResolverAddress returns the resolver contract registered for a
	// node, or the zero address when none is set.
	ResolverAddress(ctx context.Context, node common.Hash) (common.Address, error)

	// Addr returns the address a resolver binds to a node, or the zero
	// address when none is bound.
	Addr(ctx context.Context, resolver common.Address, node common.Hash) (common.Address, error)

	// Owner returns the owner record of a node, or the zero address
	// when the node has no owner.
	Owner(ctx context.Context, node common.Hash) (common.Address, error)
}

// ResolveOptions adjust one resolution. The zero value gives the
// defaults: cache reads enabled, root fallback enabled.
type ResolveOptions struct {
	// NoFallback disables retrying a failed resolution on the root
	// network.
	NoFallback bool

	// NoCache bypasses the resolution cache for this lookup. The
	// result is still stored.
	NoCache bool
}

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	// Registry supplies endpoints, including the root-network endpoint
	// for fallback. Required.
	Registry *chain.Registry

	// NewNamer constructs the naming backend for an endpoint. Nil
	// means the ABI-backed implementation. Tests substitute fakes.
	NewNamer func(endpoint *chain.Endpoint) (Namer, error)

	// Logger receives resolution diagnostics. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Resolver resolves names to addresses with a process-lifetime cache.
// Safe for concurrent use.
type Resolver struct {
	registry *chain.Registry
	newNamer func(endpoint *chain.Endpoint) (Namer, error)
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]common.Address
}

// NewResolver returns a Resolver with an empty cache.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.NewNamer == nil {
		cfg.NewNamer = newEthNamer
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Resolver{
		registry: cfg.Registry,
		newNamer: cfg.NewNamer,
		logger:   cfg.Logger,
		cache:    make(map[string]common.Address),
	}
}

// Resolve returns the address bound to a name. The name is normalized
// first; cached results are returned without a backend query. On a
// miss, the two-hop lookup runs against the given endpoint; if it
// fails and the endpoint is not the root network, the same lookup runs
// once against the root network. Successful resolutions are cached.
//
// A name with no resolver or a zero binding fails with
// NameNotRegisteredError. Other failures (including a failed fallback)
// return a ResolutionError wrapping the underlying errors. Failures
// are never cached.
func (r *Resolver) Resolve(ctx context.Context, endpoint *chain.Endpoint, name string, opts ResolveOptions) (common.Address, error) {
	normalized := Normalize(name)

	if !opts.NoCache {
		r.mu.Lock()
		cached, ok := r.cache[normalized]
		r.mu.Unlock()
		if ok {
			return cached, nil
		}
	}

	node := Namehash(normalized)

	address, err := r.resolveOn(ctx, endpoint, normalized, node)
	if err == nil {
		r.store(normalized, address)
		return address, nil
	}

	root := r.registry.Table().Root()
	if !opts.NoFallback && endpoint.ChainID() != root.ChainID {
		address, rootErr := r.resolveOnRoot(ctx, normalized, node)
		if rootErr == nil {
			r.logger.Debug("name resolved via root fallback",
				"name", normalized, "network", endpoint.Key(), "root", root.Name)
			r.store(normalized, address)
			return address, nil
		}
		return common.Address{}, &ResolutionError{Name: normalized, NetworkErr: err, RootErr: rootErr}
	}

	if IsNameNotRegistered(err) {
		return common.Address{}, err
	}
	return common.Address{}, &ResolutionError{Name: normalized, NetworkErr: err}
}

// Exists reports whether a name has an owner record on the endpoint's
// network. Best effort: any failure reads as false.
func (r *Resolver) Exists(ctx context.Context, endpoint *chain.Endpoint, name string) bool {
	namer, err := r.newNamer(endpoint)
	if err != nil {
		return false
	}
	owner, err := namer.Owner(ctx, Namehash(name))
	if err != nil {
		return false
	}
	return owner != (common.Address{})
}

// Clear empties the resolution cache. Tests use it; production keeps
// resolutions for the process lifetime.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]common.Address)
}

func (r *Resolver) store(name string, address common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[name] = address
}

func (r *Resolver) resolveOn(ctx context.Context, endpoint *chain.Endpoint, name string, node common.Hash) (common.Address, error) {
	namer, err := r.newNamer(endpoint)
	if err != nil {
		return common.Address{}, err
	}

	resolver, err := namer.ResolverAddress(ctx, node)
	if err != nil {
		return common.Address{}, err
	}
	if resolver == (common.Address{}) {
		return common.Address{}, &NameNotRegisteredError{Name: name}
	}

	address, err := namer.Addr(ctx, resolver, node)
	if err != nil {
		return common.Address{}, err
	}
	if address == (common.Address{}) {
		return common.Address{}, &NameNotRegisteredError{Name: name}
	}
	return address, nil
}

func (r *Resolver) resolveOnRoot(ctx context.Context, name string, node common.Hash) (common.Address, error) {
	rootEndpoint, err := r.registry.Endpoint(ctx, r.registry.Table().Root().Name)
	if err != nil {
		return common.Address{}, err
	}
	return r.resolveOn(ctx, rootEndpoint, name, node)
}
