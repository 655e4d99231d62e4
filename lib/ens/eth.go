// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package ens

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/nickjuntilla/wttp-bridge/lib/chain"
)

// LookupTimeout bounds each registry/resolver query.
const LookupTimeout = 15 * time.Second

// ContractBackend is the single RPC capability the ABI namer needs.
// chain.Client (and *ethclient.Client) satisfy it.
type ContractBackend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ABI fragments for the calls this package issues. Read-only dispatch
// does not need the full contract ABIs.
const (
	registryABIJSON = `[
		{"type":"function","name":"resolver","stateMutability":"view",
		 "inputs":[{"name":"node","type":"bytes32"}],
		 "outputs":[{"name":"","type":"address"}]},
		{"type":"function","name":"owner","stateMutability":"view",
		 "inputs":[{"name":"node","type":"bytes32"}],
		 "outputs":[{"name":"","type":"address"}]}
	]`
	resolverABIJSON = `[
		{"type":"function","name":"addr","stateMutability":"view",
		 "inputs":[{"name":"node","type":"bytes32"}],
		 "outputs":[{"name":"","type":"address"}]}
	]`
)

var (
	registryABI abi.ABI
	resolverABI abi.ABI
)

func init() {
	var err error
	registryABI, err = abi.JSON(strings.NewReader(registryABIJSON))
	if err != nil {
		panic("ens: registry ABI invalid: " + err.Error())
	}
	resolverABI, err = abi.JSON(strings.NewReader(resolverABIJSON))
	if err != nil {
		panic("ens: resolver ABI invalid: " + err.Error())
	}
}

// ethNamer speaks the two-hop protocol over ABI-encoded contract
// calls.
type ethNamer struct {
	backend  ContractBackend
	registry common.Address
}

// newEthNamer is the default Namer constructor. It needs the
// endpoint's network row for the registry address, so names cannot
// resolve directly on literal-URL endpoints or networks without an
// ENS deployment; the root fallback still applies to both.
func newEthNamer(endpoint *chain.Endpoint) (Namer, error) {
	network := endpoint.Network()
	if network == nil {
		return nil, fmt.Errorf("endpoint %q has no network table row, ENS registry unknown", endpoint.Key())
	}
	if !network.SupportsENS() {
		return nil, fmt.Errorf("network %q has no ENS registry", network.Name)
	}
	return &ethNamer{backend: endpoint.Client(), registry: network.ENSRegistry}, nil
}

func (n *ethNamer) ResolverAddress(ctx context.Context, node common.Hash) (common.Address, error) {
	return n.callForAddress(ctx, registryABI, n.registry, "resolver", node)
}

func (n *ethNamer) Owner(ctx context.Context, node common.Hash) (common.Address, error) {
	return n.callForAddress(ctx, registryABI, n.registry, "owner", node)
}

func (n *ethNamer) Addr(ctx context.Context, resolver common.Address, node common.Hash) (common.Address, error) {
	return n.callForAddress(ctx, resolverABI, resolver, "addr", node)
}

// callForAddress packs a single-bytes32-argument call, executes it,
// and unpacks a single address result. An empty return (a call to an
// address with no code) reads as the zero address, i.e. an unset
// record.
func (n *ethNamer) callForAddress(ctx context.Context, contractABI abi.ABI, to common.Address, method string, node common.Hash) (common.Address, error) {
	data, err := contractABI.Pack(method, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("packing %s call: %w", method, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, LookupTimeout)
	defer cancel()
	raw, err := n.backend.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s(%s): %w", method, node, err)
	}
	if len(raw) == 0 {
		return common.Address{}, nil
	}

	results, err := contractABI.Unpack(method, raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpacking %s result: %w", method, err)
	}
	address, ok := results[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s result is %T, want address", method, results[0])
	}
	return address, nil
}
