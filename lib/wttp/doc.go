// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package wttp fetches resources from WTTP sites: contracts that answer
// HTTP-shaped queries over raw contract calls. A site contract exposes
// two read operations — HEAD (metadata only) and LOCATE (metadata plus
// an ordered list of data-point identifiers) — and the package drives
// them through the full retrieval protocol: redirects, conditional
// requests, chunk ranges, directory-index fallback, and reassembly of
// the located data points into the resource's bytes.
//
// The package is organized in layers, each usable independently:
//
//   - Paths: NormalizePath canonicalizes request paths (always
//     root-relative, leading-dot segments resolved), ResolveRedirect
//     resolves a redirect target against the path it was served from.
//     Pure string work, no I/O.
//
//   - Site backend: the SiteBackend interface is the protocol's view
//     of one site — Head, Locate, and the address of the site's
//     storage contract. NewEthBackend speaks the on-chain ABI through
//     a minimal ContractBackend (one CallContract method, satisfied by
//     chain.Client). Fakes implement SiteBackend directly.
//
//   - Client: the request state machine. Resolves the site identifier
//     (hex address literal, or a name via lib/ens), issues HEAD,
//     follows redirects up to the configured bound, probes directory
//     index candidates on 404, and finally LOCATEs the resource and
//     hands its data-point list to lib/datapoint for reassembly.
//
// Statuses follow HTTP numeric conventions (200, 206, 301/302/307/308,
// 304, 404). Not-found and exhausted-redirect outcomes are statuses on
// the result, never errors; errors are reserved for unusable inputs
// (unsupported network, invalid path, unresolvable name) and for
// failures that would otherwise corrupt output (chunk reads). Transport
// failures on HEAD and LOCATE fold into a 404 result: an unreachable
// resource and an absent one are deliberately indistinguishable, the
// way a browser's failed fetch looks the same either way.
package wttp
