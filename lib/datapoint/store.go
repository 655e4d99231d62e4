// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package datapoint reads content-addressed chunks (data points) from
// storage contracts and reassembles them into resource bodies. A
// resource's bytes live as a sequence of data points in a
// DataPointStorage contract; the site contract orders them, this
// package fetches and concatenates them. An optional disk cache keeps
// fetched data points locally — they are immutable, so cached entries
// never expire.
package datapoint

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ReadTimeout bounds each data point read.
const ReadTimeout = 30 * time.Second

// Store reads raw data-point bytes by identifier.
type Store interface {
	ReadDataPoint(ctx context.Context, id common.Hash) ([]byte, error)
}

// ContractBackend is the single RPC capability the ABI store needs.
// chain.Client (and *ethclient.Client) satisfy it.
type ContractBackend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ABI fragment for the storage contract read this package issues.
const storageABIJSON = `[
	{"type":"function","name":"readDataPoint","stateMutability":"view",
	 "inputs":[{"name":"_dataPointAddress","type":"bytes32"}],
	 "outputs":[{"name":"","type":"bytes"}]}
]`

var storageABI abi.ABI

func init() {
	var err error
	storageABI, err = abi.JSON(strings.NewReader(storageABIJSON))
	if err != nil {
		panic("datapoint: storage ABI invalid: " + err.Error())
	}
}

// ethStore reads data points from a DataPointStorage contract over
// ABI-encoded calls.
type ethStore struct {
	backend  ContractBackend
	contract common.Address
}

// NewEthStore returns a Store reading from the DataPointStorage
// contract at the given address.
func NewEthStore(backend ContractBackend, contract common.Address) Store {
	return &ethStore{backend: backend, contract: contract}
}

func (s *ethStore) ReadDataPoint(ctx context.Context, id common.Hash) ([]byte, error) {
	data, err := storageABI.Pack("readDataPoint", id)
	if err != nil {
		return nil, fmt.Errorf("packing readDataPoint call: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, ReadTimeout)
	defer cancel()
	raw, err := s.backend.CallContract(callCtx, ethereum.CallMsg{To: &s.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("readDataPoint(%s): %w", id, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("readDataPoint(%s): no return data, storage contract %s has no code", id, s.contract)
	}

	results, err := storageABI.Unpack("readDataPoint", raw)
	if err != nil {
		return nil, fmt.Errorf("unpacking readDataPoint result: %w", err)
	}
	chunk, ok := results[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("readDataPoint result is %T, want bytes", results[0])
	}
	if len(chunk) == 0 {
		return nil, fmt.Errorf("data point %s not found", id)
	}
	return chunk, nil
}

// Address computes the content address of a data point: keccak256 of
// its bytes.
func Address(data []byte) common.Hash {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(data)
	var out common.Hash
	hash.Sum(out[:0])
	return out
}
