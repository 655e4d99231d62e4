// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command tree for the wttp binary: nested
// commands with pflag flag sets, structured help output, typo
// suggestions for unknown commands and flags, and an ExitError type
// for commands whose non-zero exit is an outcome rather than a
// failure.
package cli
