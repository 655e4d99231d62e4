// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package ens

import (
	"errors"
	"fmt"
)

// NameNotRegisteredError is returned when a name has no resolver set
// or the resolver binds it to the zero address.
type NameNotRegisteredError struct {
	// Name is the normalized name that failed to resolve.
	Name string
}

func (e *NameNotRegisteredError) Error() string {
	return fmt.Sprintf("name %q is not registered", e.Name)
}

// IsNameNotRegistered reports whether err is (or wraps) a
// NameNotRegisteredError. It sees through ResolutionError, so a name
// that was unregistered on both the requested and root networks still
// matches.
func IsNameNotRegistered(err error) bool {
	var notRegistered *NameNotRegisteredError
	return errors.As(err, &notRegistered)
}

// ResolutionError is returned when a name could not be resolved. When
// the root-network fallback ran, it carries both failures.
type ResolutionError struct {
	// Name is the normalized name that failed to resolve.
	Name string

	// NetworkErr is the failure on the requested network.
	NetworkErr error

	// RootErr is the failure of the root-network fallback, nil when
	// the fallback did not run.
	RootErr error
}

func (e *ResolutionError) Error() string {
	if e.RootErr != nil {
		return fmt.Sprintf("resolving %q failed on the requested network (%v) and on the root network (%v)",
			e.Name, e.NetworkErr, e.RootErr)
	}
	return fmt.Sprintf("resolving %q: %v", e.Name, e.NetworkErr)
}

func (e *ResolutionError) Unwrap() []error {
	if e.RootErr != nil {
		return []error{e.NetworkErr, e.RootErr}
	}
	return []error{e.NetworkErr}
}

// IsResolutionFailed reports whether err is a ResolutionError.
func IsResolutionFailed(err error) bool {
	var resolution *ResolutionError
	return errors.As(err, &resolution)
}
