// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package wttp

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/nickjuntilla/wttp-bridge/lib/content"
)

// CallTimeout bounds each HEAD and LOCATE contract call.
const CallTimeout = 30 * time.Second

// ContractBackend is the single RPC capability the ABI site backend
// needs. chain.Client (and *ethclient.Client) satisfy it.
type ContractBackend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ABI fragments for the site contract surface. Chunk ranges are signed
// on the wire: an end of zero or below means "through the final
// chunk".
const siteABIJSON = `[
	{"type":"function","name":"HEAD","stateMutability":"view",
	 "inputs":[
	  {"name":"request","type":"tuple","components":[
	   {"name":"path","type":"string"},
	   {"name":"conditions","type":"tuple","components":[
	    {"name":"ifModifiedSince","type":"uint256"},
	    {"name":"ifNoneMatch","type":"bytes32"}]}]}],
	 "outputs":[
	  {"name":"head","type":"tuple","components":[
	   {"name":"status","type":"uint16"},
	   {"name":"headerInfo","type":"tuple","components":[
	    {"name":"cache","type":"tuple","components":[
	     {"name":"maxAge","type":"uint256"},
	     {"name":"noStore","type":"bool"},
	     {"name":"immutableFlag","type":"bool"}]},
	    {"name":"redirect","type":"tuple","components":[
	     {"name":"code","type":"uint16"},
	     {"name":"location","type":"string"}]},
	    {"name":"cors","type":"string"}]},
	   {"name":"metadata","type":"tuple","components":[
	    {"name":"mimeType","type":"bytes2"},
	    {"name":"charset","type":"bytes2"},
	    {"name":"encoding","type":"bytes2"},
	    {"name":"language","type":"bytes2"},
	    {"name":"size","type":"uint256"},
	    {"name":"version","type":"uint256"},
	    {"name":"lastModified","type":"uint256"}]},
	   {"name":"etag","type":"bytes32"}]}]},
	{"type":"function","name":"LOCATE","stateMutability":"view",
	 "inputs":[
	  {"name":"request","type":"tuple","components":[
	   {"name":"path","type":"string"},
	   {"name":"conditions","type":"tuple","components":[
	    {"name":"ifModifiedSince","type":"uint256"},
	    {"name":"ifNoneMatch","type":"bytes32"}]}]},
	  {"name":"rangeChunks","type":"tuple","components":[
	   {"name":"start","type":"int256"},
	   {"name":"end","type":"int256"}]}],
	 "outputs":[
	  {"name":"located","type":"tuple","components":[
	   {"name":"head","type":"tuple","components":[
	    {"name":"status","type":"uint16"},
	    {"name":"headerInfo","type":"tuple","components":[
	     {"name":"cache","type":"tuple","components":[
	      {"name":"maxAge","type":"uint256"},
	      {"name":"noStore","type":"bool"},
	      {"name":"immutableFlag","type":"bool"}]},
	     {"name":"redirect","type":"tuple","components":[
	      {"name":"code","type":"uint16"},
	      {"name":"location","type":"string"}]},
	     {"name":"cors","type":"string"}]},
	    {"name":"metadata","type":"tuple","components":[
	     {"name":"mimeType","type":"bytes2"},
	     {"name":"charset","type":"bytes2"},
	     {"name":"encoding","type":"bytes2"},
	     {"name":"language","type":"bytes2"},
	     {"name":"size","type":"uint256"},
	     {"name":"version","type":"uint256"},
	     {"name":"lastModified","type":"uint256"}]},
	    {"name":"etag","type":"bytes32"}]},
	   {"name":"resource","type":"tuple","components":[
	    {"name":"dataPoints","type":"bytes32[]"},
	    {"name":"totalChunks","type":"uint256"}]}]}]},
	{"type":"function","name":"DPS","stateMutability":"view",
	 "inputs":[],
	 "outputs":[{"name":"","type":"address"}]}
]`

var siteABI abi.ABI

func init() {
	var err error
	siteABI, err = abi.JSON(strings.NewReader(siteABIJSON))
	if err != nil {
		panic("wttp: site ABI invalid: " + err.Error())
	}
}

// Wire tuples. Field order and names mirror the ABI components;
// abi.ConvertType maps the unpacked anonymous structs onto them.
type requestTuple struct {
	Path       string
	Conditions conditionsTuple
}

type conditionsTuple struct {
	IfModifiedSince *big.Int
	IfNoneMatch     [32]byte
}

type rangeTuple struct {
	Start *big.Int
	End   *big.Int
}

type headTuple struct {
	Status     uint16
	HeaderInfo headerInfoTuple
	Metadata   metadataTuple
	Etag       [32]byte
}

type headerInfoTuple struct {
	Cache    cacheTuple
	Redirect redirectTuple
	Cors     string
}

type cacheTuple struct {
	MaxAge        *big.Int
	NoStore       bool
	ImmutableFlag bool
}

type redirectTuple struct {
	Code     uint16
	Location string
}

type metadataTuple struct {
	MimeType     [2]byte
	Charset      [2]byte
	Encoding     [2]byte
	Language     [2]byte
	Size         *big.Int
	Version      *big.Int
	LastModified *big.Int
}

type locateTuple struct {
	Head     headTuple
	Resource resourceTuple
}

type resourceTuple struct {
	DataPoints  [][32]byte
	TotalChunks *big.Int
}

func newRequestTuple(path string, cond Conditions) requestTuple {
	return requestTuple{
		Path: path,
		Conditions: conditionsTuple{
			IfModifiedSince: big.NewInt(cond.IfModifiedSince),
			IfNoneMatch:     cond.IfNoneMatch,
		},
	}
}

func newRangeTuple(rng Range) rangeTuple {
	return rangeTuple{Start: big.NewInt(rng.Start), End: big.NewInt(rng.End)}
}

func (t headTuple) responseHead() ResponseHead {
	return ResponseHead{
		Status:           t.Status,
		RedirectLocation: t.HeaderInfo.Redirect.Location,
		Cache: CachePolicy{
			MaxAge:    t.HeaderInfo.Cache.MaxAge.Int64(),
			NoStore:   t.HeaderInfo.Cache.NoStore,
			Immutable: t.HeaderInfo.Cache.ImmutableFlag,
		},
		CORS:         t.HeaderInfo.Cors,
		MimeType:     content.Code(t.Metadata.MimeType),
		Charset:      content.Code(t.Metadata.Charset),
		Encoding:     content.Code(t.Metadata.Encoding),
		Language:     content.Code(t.Metadata.Language),
		Size:         t.Metadata.Size.Int64(),
		Version:      t.Metadata.Version.Uint64(),
		LastModified: t.Metadata.LastModified.Int64(),
		ETag:         common.Hash(t.Etag),
	}
}

func (t locateTuple) resourceLocation() ResourceLocation {
	ids := make([]common.Hash, len(t.Resource.DataPoints))
	for i, dp := range t.Resource.DataPoints {
		ids[i] = common.Hash(dp)
	}
	return ResourceLocation{
		Head:             t.Head.responseHead(),
		ChunkIdentifiers: ids,
		TotalChunks:      int(t.Resource.TotalChunks.Uint64()),
	}
}

// ethSite speaks the site contract ABI over a ContractBackend.
type ethSite struct {
	backend  ContractBackend
	contract common.Address
}

// NewEthBackend returns a SiteBackend calling the site contract at the
// given address.
func NewEthBackend(backend ContractBackend, site common.Address) SiteBackend {
	return &ethSite{backend: backend, contract: site}
}

func (s *ethSite) Head(ctx context.Context, path string, cond Conditions) (ResponseHead, error) {
	data, err := siteABI.Pack("HEAD", newRequestTuple(path, cond))
	if err != nil {
		return ResponseHead{}, fmt.Errorf("packing HEAD call: %w", err)
	}
	raw, err := s.call(ctx, data)
	if err != nil {
		return ResponseHead{}, fmt.Errorf("HEAD %s: %w", path, err)
	}
	out, err := siteABI.Unpack("HEAD", raw)
	if err != nil {
		return ResponseHead{}, fmt.Errorf("unpacking HEAD result: %w", err)
	}
	head := *abi.ConvertType(out[0], new(headTuple)).(*headTuple)
	return head.responseHead(), nil
}

func (s *ethSite) Locate(ctx context.Context, path string, cond Conditions, rng Range) (ResourceLocation, error) {
	data, err := siteABI.Pack("LOCATE", newRequestTuple(path, cond), newRangeTuple(rng))
	if err != nil {
		return ResourceLocation{}, fmt.Errorf("packing LOCATE call: %w", err)
	}
	raw, err := s.call(ctx, data)
	if err != nil {
		return ResourceLocation{}, fmt.Errorf("LOCATE %s: %w", path, err)
	}
	out, err := siteABI.Unpack("LOCATE", raw)
	if err != nil {
		return ResourceLocation{}, fmt.Errorf("unpacking LOCATE result: %w", err)
	}
	located := *abi.ConvertType(out[0], new(locateTuple)).(*locateTuple)
	return located.resourceLocation(), nil
}

func (s *ethSite) StorageAddress(ctx context.Context) (common.Address, error) {
	data, err := siteABI.Pack("DPS")
	if err != nil {
		return common.Address{}, fmt.Errorf("packing DPS call: %w", err)
	}
	raw, err := s.call(ctx, data)
	if err != nil {
		return common.Address{}, fmt.Errorf("DPS: %w", err)
	}
	out, err := siteABI.Unpack("DPS", raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpacking DPS result: %w", err)
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (s *ethSite) call(ctx context.Context, data []byte) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, CallTimeout)
	defer cancel()
	raw, err := s.backend.CallContract(callCtx, ethereum.CallMsg{To: &s.contract, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no return data, site contract %s has no code", s.contract)
	}
	return raw, nil
}
