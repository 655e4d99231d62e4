// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package ens resolves human-readable names to site addresses through
// the ENS two-hop protocol: the registry maps a name's node hash to a
// resolver contract, the resolver maps the node hash to the bound
// address. Successful resolutions are cached for the life of the
// resolver; failed resolutions on non-root networks fall back to the
// root network.
package ens

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Normalize canonicalizes a name for hashing and cache keys:
// lowercased, surrounding whitespace and trailing dots removed.
//
// TODO: full ENSIP-15 normalization for unicode names; ASCII names
// are unaffected.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimRight(name, ".")
}

// Namehash computes the EIP-137 node hash of a name: starting from the
// zero node, each label from the outermost (rightmost) to the
// innermost is folded in as keccak256(node || keccak256(label)). The
// empty name is the zero node. The name is normalized first.
func Namehash(name string) common.Hash {
	var node common.Hash
	name = Normalize(name)
	if name == "" {
		return node
	}

	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := keccak256([]byte(labels[i]))
		node = keccak256(node[:], labelHash[:])
	}
	return node
}

func keccak256(data ...[]byte) common.Hash {
	hash := sha3.NewLegacyKeccak256()
	for _, part := range data {
		hash.Write(part)
	}
	var out common.Hash
	hash.Sum(out[:0])
	return out
}
