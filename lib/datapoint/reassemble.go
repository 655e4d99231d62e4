// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package datapoint

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Reassemble fetches every data point in ids, in order, and
// concatenates them into one buffer. Chunks are positional: the final
// buffer holds chunk i's bytes immediately after chunks 0..i-1,
// regardless of identifier values. Fetches are sequential, which
// bounds backend load and stops immediately on the first failure.
//
// An empty ids list returns ErrNoDataPoints. Any read failure aborts
// with a ChunkReadError; no partial buffer is ever returned.
func Reassemble(ctx context.Context, store Store, ids []common.Hash) ([]byte, error) {
	if len(ids) == 0 {
		return nil, ErrNoDataPoints
	}

	chunks := make([][]byte, 0, len(ids))
	total := 0
	for i, id := range ids {
		chunk, err := store.ReadDataPoint(ctx, id)
		if err != nil {
			return nil, &ChunkReadError{Index: i, Total: len(ids), ID: id, Cause: err}
		}
		chunks = append(chunks, chunk)
		total += len(chunk)
	}

	buffer := make([]byte, total)
	offset := 0
	for _, chunk := range chunks {
		offset += copy(buffer[offset:], chunk)
	}
	return buffer, nil
}
