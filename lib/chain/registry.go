// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package chain maps network selectors to live RPC endpoints.
//
// A selector is a symbolic network name ("mainnet"), a chain id ("1",
// 11155111), or a literal endpoint URL. The registry normalizes the
// selector against its network table, dials the endpoint on first use,
// probes its chain id once, and caches both the endpoint and the
// probed identity for the life of the process. Endpoints are shared:
// every request for the same normalized selector gets the same
// connection.
package chain

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
)

// DialTimeout bounds the initial connection to an RPC endpoint.
const DialTimeout = 10 * time.Second

// IdentityTimeout bounds the chain id probe issued once per endpoint
// construction attempt.
const IdentityTimeout = 10 * time.Second

// Client is the subset of an RPC client the registry manages. It is
// satisfied by *ethclient.Client; tests substitute fakes.
type Client interface {
	// ChainID returns the EIP-155 chain id the endpoint serves.
	ChainID(ctx context.Context) (*big.Int, error)

	// CallContract executes a read-only contract call.
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)

	// Close tears down the underlying connection.
	Close()
}

// DialFunc opens a Client for an endpoint URL.
type DialFunc func(ctx context.Context, url string) (Client, error)

func defaultDial(ctx context.Context, url string) (Client, error) {
	return ethclient.DialContext(ctx, url)
}

// Endpoint is a live connection to one network, plus the identity
// probed at construction. Read-only after construction and shared
// across requests.
type Endpoint struct {
	key     string
	url     string
	chainID uint64
	network *Network
	client  Client
}

// Key returns the registry cache key (network name or literal URL).
func (e *Endpoint) Key() string { return e.key }

// URL returns the endpoint URL the connection was dialed against.
func (e *Endpoint) URL() string { return e.url }

// ChainID returns the chain id probed at construction.
func (e *Endpoint) ChainID() uint64 { return e.chainID }

// Network returns the matched network table row, or nil when the
// endpoint was constructed from a literal URL selector.
func (e *Endpoint) Network() *Network { return e.network }

// Client returns the shared RPC client.
func (e *Endpoint) Client() Client { return e.client }

// RegistryConfig configures a Registry. The zero value is usable: the
// built-in network table, real RPC dialing, and the default logger.
type RegistryConfig struct {
	// Table is the network table. Nil means BuiltinTable().
	Table *Table

	// Dial opens RPC connections. Nil means ethclient dialing. Tests
	// substitute fakes here.
	Dial DialFunc

	// Logger receives dial and identity-probe diagnostics. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Registry constructs and caches endpoints per normalized selector.
// Safe for concurrent use.
type Registry struct {
	table  *Table
	dial   DialFunc
	logger *slog.Logger

	mu         sync.Mutex
	endpoints  map[string]*Endpoint
	identities map[string]uint64
}

// NewRegistry returns a Registry with empty caches.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Table == nil {
		cfg.Table = BuiltinTable()
	}
	if cfg.Dial == nil {
		cfg.Dial = defaultDial
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Registry{
		table:      cfg.Table,
		dial:       cfg.Dial,
		logger:     cfg.Logger,
		endpoints:  make(map[string]*Endpoint),
		identities: make(map[string]uint64),
	}
}

// Table returns the registry's network table.
func (r *Registry) Table() *Table {
	return r.table
}

// Endpoint returns the cached endpoint for a selector, constructing it
// on first use. Construction dials each candidate URL in order and
// probes its chain id; a network with a single URL gets one retry.
// When every attempt fails the selector is unreachable and an
// EndpointUnreachableError is returned. Unknown selectors return
// UnsupportedNetworkError.
//
// Construction happens outside the cache lock, so two concurrent first
// requests may both dial; the loser's connection is closed and
// discarded.
func (r *Registry) Endpoint(ctx context.Context, selector string) (*Endpoint, error) {
	target, err := r.table.Resolve(selector)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if endpoint, ok := r.endpoints[target.Key]; ok {
		r.mu.Unlock()
		return endpoint, nil
	}
	r.mu.Unlock()

	candidates := target.URLs
	if len(candidates) == 1 {
		candidates = []string{candidates[0], candidates[0]}
	}

	var endpoint *Endpoint
	var lastErr error
	var lastURL string
	for _, url := range candidates {
		endpoint, lastErr = r.connect(ctx, target, url)
		if lastErr == nil {
			break
		}
		lastURL = url
		r.logger.Warn("endpoint attempt failed",
			"network", target.Key, "url", url, "error", lastErr)
		if ctx.Err() != nil {
			break
		}
	}
	if endpoint == nil {
		return nil, &EndpointUnreachableError{
			Selector: selector,
			Attempts: len(candidates),
			LastURL:  lastURL,
			Err:      lastErr,
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.endpoints[target.Key]; ok {
		endpoint.client.Close()
		return existing, nil
	}
	r.endpoints[target.Key] = endpoint
	r.identities[target.Key] = endpoint.chainID

	r.logger.Debug("endpoint ready",
		"network", target.Key, "url", endpoint.url, "chain_id", endpoint.chainID)
	return endpoint, nil
}

func (r *Registry) connect(ctx context.Context, target Target, url string) (*Endpoint, error) {
	dialCtx, cancelDial := context.WithTimeout(ctx, DialTimeout)
	defer cancelDial()
	client, err := r.dial(dialCtx, url)
	if err != nil {
		return nil, err
	}

	probeCtx, cancelProbe := context.WithTimeout(ctx, IdentityTimeout)
	defer cancelProbe()
	chainID, err := client.ChainID(probeCtx)
	if err != nil {
		client.Close()
		return nil, err
	}

	probed := chainID.Uint64()
	if target.Network != nil && probed != target.Network.ChainID {
		r.logger.Warn("endpoint chain id differs from table",
			"network", target.Network.Name, "url", url,
			"table_chain_id", target.Network.ChainID, "probed_chain_id", probed)
	}

	return &Endpoint{
		key:     target.Key,
		url:     url,
		chainID: probed,
		network: target.Network,
		client:  client,
	}, nil
}

// NetworkIdentity returns the cached chain id for a selector key, if
// an endpoint has been constructed for it.
func (r *Registry) NetworkIdentity(key string) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.identities[key]
	return id, ok
}

// Clear closes every cached endpoint and empties the endpoint and
// identity caches. Tests use it to force reconstruction; production
// processes keep endpoints for their lifetime.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, endpoint := range r.endpoints {
		endpoint.client.Close()
	}
	r.endpoints = make(map[string]*Endpoint)
	r.identities = make(map[string]uint64)
}
