// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"errors"
	"fmt"
	"strings"
)

// UnsupportedNetworkError is returned when a selector is neither a
// known symbolic name, a known chain id, nor a literal endpoint URL.
type UnsupportedNetworkError struct {
	// Selector is the selector as supplied by the caller.
	Selector string

	// Supported lists the symbolic names the table knows, sorted.
	Supported []string
}

func (e *UnsupportedNetworkError) Error() string {
	return fmt.Sprintf("unsupported network %q (supported: %s, a chain id, or an rpc URL)",
		e.Selector, strings.Join(e.Supported, ", "))
}

// IsUnsupportedNetwork reports whether err is an
// UnsupportedNetworkError.
func IsUnsupportedNetwork(err error) bool {
	var unsupported *UnsupportedNetworkError
	return errors.As(err, &unsupported)
}

// EndpointUnreachableError is returned when every candidate URL for a
// network failed to dial or answer the identity probe.
type EndpointUnreachableError struct {
	// Selector is the selector as supplied by the caller.
	Selector string

	// Attempts is the number of dial attempts made.
	Attempts int

	// LastURL is the URL of the final attempt.
	LastURL string

	// Err is the final attempt's error.
	Err error
}

func (e *EndpointUnreachableError) Error() string {
	return fmt.Sprintf("rpc endpoint for %q unreachable after %d attempts (last %s): %v",
		e.Selector, e.Attempts, e.LastURL, e.Err)
}

func (e *EndpointUnreachableError) Unwrap() error {
	return e.Err
}

// IsEndpointUnreachable reports whether err is an
// EndpointUnreachableError.
func IsEndpointUnreachable(err error) bool {
	var unreachable *EndpointUnreachableError
	return errors.As(err, &unreachable)
}
