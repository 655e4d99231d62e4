// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package datapoint

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// fakeBackend answers contract calls with a scripted return and
// records the last call message for inspection.
type fakeBackend struct {
	ret  []byte
	err  error
	last ethereum.CallMsg
}

func (b *fakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	b.last = msg
	return b.ret, b.err
}

func packChunkReturn(t *testing.T, chunk []byte) []byte {
	t.Helper()
	raw, err := storageABI.Methods["readDataPoint"].Outputs.Pack(chunk)
	if err != nil {
		t.Fatalf("packing return: %v", err)
	}
	return raw
}

func TestEthStoreReadDataPoint(t *testing.T) {
	chunk := []byte("stored chunk bytes")
	backend := &fakeBackend{ret: packChunkReturn(t, chunk)}
	contract := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	store := NewEthStore(backend, contract)
	id := Address(chunk)

	got, err := store.ReadDataPoint(context.Background(), id)
	if err != nil {
		t.Fatalf("ReadDataPoint: %v", err)
	}
	if !bytes.Equal(got, chunk) {
		t.Errorf("got %q, want %q", got, chunk)
	}

	if backend.last.To == nil || *backend.last.To != contract {
		t.Errorf("call sent to %v, want %s", backend.last.To, contract)
	}
	selector := storageABI.Methods["readDataPoint"].ID
	if !bytes.HasPrefix(backend.last.Data, selector) {
		t.Error("call data missing readDataPoint selector")
	}
	if !bytes.Equal(backend.last.Data[4:36], id[:]) {
		t.Error("call data missing the data point identifier")
	}
}

func TestEthStoreNoCode(t *testing.T) {
	backend := &fakeBackend{ret: nil}
	store := NewEthStore(backend, common.HexToAddress("0xbb"))

	_, err := store.ReadDataPoint(context.Background(), Address([]byte("x")))
	if err == nil || !strings.Contains(err.Error(), "no code") {
		t.Errorf("got %v, want no-code error", err)
	}
}

func TestEthStoreEmptyChunk(t *testing.T) {
	backend := &fakeBackend{ret: packChunkReturn(t, []byte{})}
	store := NewEthStore(backend, common.HexToAddress("0xcc"))

	_, err := store.ReadDataPoint(context.Background(), Address([]byte("x")))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("got %v, want not-found error", err)
	}
}

func TestEthStoreBackendError(t *testing.T) {
	cause := errors.New("connection refused")
	backend := &fakeBackend{err: cause}
	store := NewEthStore(backend, common.HexToAddress("0xdd"))

	_, err := store.ReadDataPoint(context.Background(), Address([]byte("x")))
	if !errors.Is(err, cause) {
		t.Errorf("got %v, want wrapped cause", err)
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		data []byte
		want string
	}{
		{nil, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{[]byte("hello"), "0x1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8"},
	}
	for _, tt := range tests {
		if got := Address(tt.data); got != common.HexToHash(tt.want) {
			t.Errorf("Address(%q) = %s, want %s", tt.data, got, tt.want)
		}
	}
}
