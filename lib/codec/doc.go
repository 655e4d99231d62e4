// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the bridge's standard CBOR encoding
// configuration.
//
// The bridge uses two serialization formats with a clear boundary:
//
//   - JSON (and JSONC) for external interfaces: the embedded network
//     table, YAML/JSON configuration files, and CLI output.
//   - CBOR for internal binary formats: the on-disk data-point cache
//     frame headers.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which keeps cache frames stable under rewrite.
//
// For buffer-oriented operations (cache files):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is ONLY ever serialized as CBOR. It will
//     never be marshaled to JSON or appear in CLI output. Example: the
//     cache frame header.
//   - `json` tag: this type may be serialized as BOTH JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor` tags
//     are absent, so a single `json` tag controls field naming and
//     omitempty for both formats. Example: network table rows.
//
// Never use both `cbor` and `json` tags on the same field.
package codec
