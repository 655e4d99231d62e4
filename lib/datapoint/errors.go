// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package datapoint

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNoDataPoints is returned by Reassemble when the identifier list
// is empty.
var ErrNoDataPoints = errors.New("no data point identifiers")

// ChunkReadError reports a failed chunk read during reassembly. The
// whole reassembly aborts; partial buffers are never returned.
type ChunkReadError struct {
	// Index is the zero-based position of the failed chunk in the
	// identifier list.
	Index int

	// Total is the length of the identifier list.
	Total int

	// ID is the data point identifier that failed to read.
	ID common.Hash

	// Cause is the underlying read failure.
	Cause error
}

func (e *ChunkReadError) Error() string {
	return fmt.Sprintf("reading chunk %d of %d (%s): %v", e.Index+1, e.Total, e.ID, e.Cause)
}

func (e *ChunkReadError) Unwrap() error {
	return e.Cause
}

// IsChunkReadFailed reports whether err is a ChunkReadError.
func IsChunkReadFailed(err error) bool {
	var chunkErr *ChunkReadError
	return errors.As(err, &chunkErr)
}
