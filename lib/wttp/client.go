// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package wttp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nickjuntilla/wttp-bridge/lib/chain"
	"github.com/nickjuntilla/wttp-bridge/lib/datapoint"
	"github.com/nickjuntilla/wttp-bridge/lib/ens"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// Registry supplies RPC endpoints by network selector. Required.
	Registry *chain.Registry

	// Resolver turns site names into addresses. Nil means only 0x
	// address literals are accepted.
	Resolver *ens.Resolver

	// Network selects the chain the client queries. Empty means the
	// table's root network. Callers needing several networks make
	// several clients over one shared registry.
	Network string

	// NewBackend constructs the site backend for an endpoint and site
	// address. Nil means the on-chain ABI backend.
	NewBackend func(endpoint *chain.Endpoint, site common.Address) SiteBackend

	// NewStore constructs the data-point reader for an endpoint and
	// storage contract. Nil means the on-chain ABI store, wrapped in
	// the disk cache when CacheDir is set.
	NewStore func(endpoint *chain.Endpoint, storage common.Address) datapoint.Store

	// CacheDir enables the on-disk data-point cache. Empty disables.
	CacheDir string

	// VerifyAddresses re-derives each fetched data point's content
	// address and warns on mismatch.
	VerifyAddresses bool

	// Logger receives request diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Client drives the retrieval protocol against one network: site
// resolution, the HEAD/redirect/fallback state machine, LOCATE, and
// data-point reassembly. Safe for concurrent use.
type Client struct {
	registry   *chain.Registry
	resolver   *ens.Resolver
	network    string
	newBackend func(*chain.Endpoint, common.Address) SiteBackend
	newStore   func(*chain.Endpoint, common.Address) datapoint.Store
	cache      *datapoint.Cache
	verify     bool
	logger     *slog.Logger
}

// NewClient validates the configuration and returns a ready Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("endpoint registry is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Network == "" {
		cfg.Network = cfg.Registry.Table().Root().Name
	}

	c := &Client{
		registry:   cfg.Registry,
		resolver:   cfg.Resolver,
		network:    cfg.Network,
		newBackend: cfg.NewBackend,
		newStore:   cfg.NewStore,
		verify:     cfg.VerifyAddresses,
		logger:     cfg.Logger,
	}

	if cfg.CacheDir != "" {
		cache, err := datapoint.NewCache(datapoint.CacheConfig{Dir: cfg.CacheDir, Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("opening data point cache: %w", err)
		}
		c.cache = cache
	}
	if c.newBackend == nil {
		c.newBackend = func(endpoint *chain.Endpoint, site common.Address) SiteBackend {
			return NewEthBackend(endpoint.Client(), site)
		}
	}
	if c.newStore == nil {
		c.newStore = func(endpoint *chain.Endpoint, storage common.Address) datapoint.Store {
			return datapoint.NewCachingStore(datapoint.CachingStoreConfig{
				Store:           datapoint.NewEthStore(endpoint.Client(), storage),
				Cache:           c.cache,
				VerifyAddresses: c.verify,
				Logger:          c.logger,
			})
		}
	}
	return c, nil
}

// Fetch retrieves the resource at site + path. Not-found and
// exhausted-redirect outcomes come back as statuses on the result;
// errors are reserved for unusable requests (unsupported network,
// invalid path, unresolvable name) and failed chunk reads.
func (c *Client) Fetch(ctx context.Context, site, path string, opts RequestOptions) (*FetchResult, error) {
	path = NormalizePath(path)
	if err := validatePath(path); err != nil {
		return nil, err
	}

	endpoint, siteAddr, err := c.resolveSite(ctx, site)
	if err != nil {
		return nil, err
	}
	backend := c.newBackend(endpoint, siteAddr)

	location, finalPath := c.locateResource(ctx, backend, path, opts)
	c.logger.Debug("resource located",
		"site", site,
		"path", finalPath,
		"network", endpoint.Key(),
		"status", location.Head.Status,
		"chunk_count", len(location.ChunkIdentifiers),
		"total_chunks", location.TotalChunks)

	result := &FetchResult{Location: location}
	if opts.HeadOnly || opts.ChunkIdentifiersOnly {
		return result, nil
	}
	if !IsSuccess(location.Head.Status) || len(location.ChunkIdentifiers) == 0 {
		return result, nil
	}

	storage, err := backend.StorageAddress(ctx)
	if err != nil {
		return nil, fmt.Errorf("locating storage contract for %s: %w", site, err)
	}
	data, err := datapoint.Reassemble(ctx, c.newStore(endpoint, storage), location.ChunkIdentifiers)
	if err != nil {
		return nil, err
	}
	result.Content = data
	return result, nil
}

// Head retrieves resource metadata only: the state machine runs
// through redirects and index fallback but never issues LOCATE.
func (c *Client) Head(ctx context.Context, site, path string, opts RequestOptions) (ResponseHead, error) {
	opts.HeadOnly = true
	result, err := c.Fetch(ctx, site, path, opts)
	if err != nil {
		return ResponseHead{}, err
	}
	return result.Location.Head, nil
}

// resolveSite turns a site identifier into a dialed endpoint and a
// contract address. Hex literals skip name resolution.
func (c *Client) resolveSite(ctx context.Context, site string) (*chain.Endpoint, common.Address, error) {
	endpoint, err := c.registry.Endpoint(ctx, c.network)
	if err != nil {
		return nil, common.Address{}, err
	}
	if common.IsHexAddress(site) {
		return endpoint, common.HexToAddress(site), nil
	}
	if c.resolver == nil {
		return nil, common.Address{}, fmt.Errorf("site %q is not an address and no name resolver is configured", site)
	}
	addr, err := c.resolver.Resolve(ctx, endpoint, site, ens.ResolveOptions{})
	if err != nil {
		return nil, common.Address{}, err
	}
	return endpoint, addr, nil
}

// locateResource runs the per-request state machine:
// HEAD → redirects → index fallback → LOCATE → undercount repair.
// It never fails: transport problems fold into a 404 result.
func (c *Client) locateResource(ctx context.Context, backend SiteBackend, path string, opts RequestOptions) (ResourceLocation, string) {
	cond := opts.conditions()
	head := c.head(ctx, backend, path, cond)

	redirectsLeft := opts.redirectBudget()
	for IsRedirect(head.Status) && head.RedirectLocation != "" && redirectsLeft > 0 {
		target := ResolveRedirect(path, head.RedirectLocation)
		c.logger.Debug("following redirect",
			"from", path, "to", target, "status", head.Status, "remaining", redirectsLeft-1)
		path = target
		redirectsLeft--
		head = c.head(ctx, backend, path, cond)
	}

	if head.Status == StatusNotFound && directoryLike(path) {
		for _, candidate := range indexCandidates(path) {
			probe := c.head(ctx, backend, candidate, cond)
			if IsSuccess(probe.Status) {
				c.logger.Debug("index fallback hit", "path", path, "index", candidate)
				head = probe
				path = candidate
				break
			}
		}
	}

	if opts.HeadOnly {
		return ResourceLocation{Head: head}, path
	}

	switch {
	case IsSuccess(head.Status):
		location, ok := c.tryLocate(ctx, backend, path, cond, opts.Range)
		if !ok {
			return ResourceLocation{Head: ResponseHead{Status: StatusNotFound}}, path
		}
		return c.repairUndercount(ctx, backend, path, cond, opts.Range, location), path

	case IsRedirect(head.Status) || head.Status == StatusNotModified:
		// Exhausted redirects and conditional hits are terminal;
		// surfaced as-is with no further attempts.
		return ResourceLocation{Head: head}, path

	default:
		// Some sites restrict HEAD but still answer LOCATE; one
		// direct attempt before giving up.
		location, ok := c.tryLocate(ctx, backend, path, cond, opts.Range)
		if ok && IsSuccess(location.Head.Status) {
			return c.repairUndercount(ctx, backend, path, cond, opts.Range, location), path
		}
		return ResourceLocation{Head: head}, path
	}
}

// head issues one metadata query, folding any failure into a 404 so
// the state machine proceeds uniformly.
func (c *Client) head(ctx context.Context, backend SiteBackend, path string, cond Conditions) ResponseHead {
	head, err := backend.Head(ctx, path, cond)
	if err != nil {
		c.logger.Debug("head failed, treating as not found", "path", path, "error", err)
		return ResponseHead{Status: StatusNotFound}
	}
	return head
}

// tryLocate issues LOCATE with one full-range retry on failure.
func (c *Client) tryLocate(ctx context.Context, backend SiteBackend, path string, cond Conditions, rng Range) (ResourceLocation, bool) {
	location, err := backend.Locate(ctx, path, cond, rng)
	if err == nil {
		return location, true
	}
	c.logger.Debug("locate failed, retrying with full range", "path", path, "error", err)
	location, err = backend.Locate(ctx, path, cond, Range{})
	if err == nil {
		return location, true
	}
	c.logger.Debug("locate retry failed", "path", path, "error", err)
	return ResourceLocation{}, false
}

// repairUndercount reconciles a location that lists fewer data points
// than it declares. A full-range refetch is adopted only when it
// yields strictly more identifiers. A location with no identifiers at
// all gets a first-chunk probe instead: it confirms the resource is
// non-empty without refetching the whole list, at the cost of a
// partial result.
func (c *Client) repairUndercount(ctx context.Context, backend SiteBackend, path string, cond Conditions, rng Range, location ResourceLocation) ResourceLocation {
	if !rng.IsFull() {
		return location
	}
	total := location.TotalChunks
	if total <= 0 || len(location.ChunkIdentifiers) >= total {
		return location
	}

	if len(location.ChunkIdentifiers) == 0 {
		c.logger.Warn("location lists no data points, probing first chunk",
			"path", path, "total_chunks", total)
		probe, err := backend.Locate(ctx, path, cond, Range{Start: 0, End: 1})
		if err == nil && len(probe.ChunkIdentifiers) > 0 {
			return probe
		}
		return location
	}

	c.logger.Warn("data point undercount, refetching full range",
		"path", path, "listed", len(location.ChunkIdentifiers), "total_chunks", total)
	repaired, err := backend.Locate(ctx, path, cond, Range{})
	if err == nil && len(repaired.ChunkIdentifiers) > len(location.ChunkIdentifiers) {
		return repaired
	}
	return location
}
