// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package datapoint

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
)

// CachingStoreConfig configures a read-through caching store.
type CachingStoreConfig struct {
	// Store is the authoritative source. Required.
	Store Store

	// Cache persists fetched data points. Nil disables persistence
	// and the store degrades to a plain pass-through.
	Cache *Cache

	// VerifyAddresses re-derives each fetched data point's content
	// address and logs a warning on mismatch. Off by default: some
	// storage deployments salt their address derivation, and the
	// contract already enforces addressing at write time.
	VerifyAddresses bool

	// Logger receives cache and verification diagnostics. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// CachingStore is a Store that serves reads from a local disk cache
// and falls through to the authoritative store on miss. Fetched data
// points are persisted for future reads; persistence failures are
// logged, never surfaced, because the backend remains authoritative.
type CachingStore struct {
	store  Store
	cache  *Cache
	verify bool
	logger *slog.Logger
}

// NewCachingStore wraps cfg.Store with read-through caching.
func NewCachingStore(cfg CachingStoreConfig) *CachingStore {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &CachingStore{
		store:  cfg.Store,
		cache:  cfg.Cache,
		verify: cfg.VerifyAddresses,
		logger: cfg.Logger,
	}
}

func (s *CachingStore) ReadDataPoint(ctx context.Context, id common.Hash) ([]byte, error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(id); ok {
			return data, nil
		}
	}

	data, err := s.store.ReadDataPoint(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.verify {
		if derived := Address(data); derived != id {
			s.logger.Warn("data point content address mismatch",
				"data_point", id, "derived", derived, "size", len(data))
		}
	}

	if s.cache != nil {
		if err := s.cache.Put(id, data); err != nil {
			s.logger.Warn("caching data point failed", "data_point", id, "error", err)
		}
	}
	return data, nil
}
