// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package wttp

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// SiteBackend is the protocol's view of one site contract. The eth
// implementation in this package speaks the on-chain ABI; tests
// implement it directly.
type SiteBackend interface {
	// Head returns resource metadata for a path. Errors mean the call
	// itself failed (transport, missing contract); a missing resource
	// is a 404 status, not an error.
	Head(ctx context.Context, path string, cond Conditions) (ResponseHead, error)

	// Locate returns metadata plus the ordered data-point identifiers
	// covering the requested chunk range.
	Locate(ctx context.Context, path string, cond Conditions, rng Range) (ResourceLocation, error)

	// StorageAddress returns the DataPointStorage contract the site
	// stores its data points in.
	StorageAddress(ctx context.Context) (common.Address, error)
}
