// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package wttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/nickjuntilla/wttp-bridge/lib/chain"
	"github.com/nickjuntilla/wttp-bridge/lib/datapoint"
	"github.com/nickjuntilla/wttp-bridge/lib/ens"
)

var (
	testSiteAddress    = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testStorageAddress = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubChainClient satisfies chain.Client without a network.
type stubChainClient struct{ chainID uint64 }

func (c *stubChainClient) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).SetUint64(c.chainID), nil
}

func (c *stubChainClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return nil, errors.New("stub client answers no contract calls")
}

func (c *stubChainClient) Close() {}

type headResult struct {
	head ResponseHead
	err  error
}

type locateResult struct {
	location ResourceLocation
	err      error
}

type locateCall struct {
	path string
	rng  Range
}

// fakeSite scripts HEAD and LOCATE responses per path and records
// every call. LOCATE responses queue up and pop per call; an exhausted
// queue (or an unknown path) answers 404.
type fakeSite struct {
	mu          sync.Mutex
	heads       map[string]headResult
	locates     map[string][]locateResult
	storage     common.Address
	storageErr  error
	boundTo     common.Address
	headCalls   []string
	locateCalls []locateCall
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		heads:   make(map[string]headResult),
		locates: make(map[string][]locateResult),
		storage: testStorageAddress,
	}
}

func (s *fakeSite) setHead(path string, head ResponseHead) {
	s.heads[path] = headResult{head: head}
}

func (s *fakeSite) setHeadError(path string, err error) {
	s.heads[path] = headResult{err: err}
}

func (s *fakeSite) pushLocate(path string, location ResourceLocation) {
	s.locates[path] = append(s.locates[path], locateResult{location: location})
}

func (s *fakeSite) pushLocateError(path string, err error) {
	s.locates[path] = append(s.locates[path], locateResult{err: err})
}

func (s *fakeSite) Head(ctx context.Context, path string, cond Conditions) (ResponseHead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headCalls = append(s.headCalls, path)
	if res, ok := s.heads[path]; ok {
		return res.head, res.err
	}
	return ResponseHead{Status: StatusNotFound}, nil
}

func (s *fakeSite) Locate(ctx context.Context, path string, cond Conditions, rng Range) (ResourceLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locateCalls = append(s.locateCalls, locateCall{path: path, rng: rng})
	queue := s.locates[path]
	if len(queue) == 0 {
		return ResourceLocation{Head: ResponseHead{Status: StatusNotFound}}, nil
	}
	res := queue[0]
	s.locates[path] = queue[1:]
	return res.location, res.err
}

func (s *fakeSite) StorageAddress(ctx context.Context) (common.Address, error) {
	if s.storageErr != nil {
		return common.Address{}, s.storageErr
	}
	return s.storage, nil
}

func (s *fakeSite) headCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.headCalls)
}

func (s *fakeSite) locateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locateCalls)
}

// chunkStore serves data points from memory, standing in for the
// storage contract during reassembly.
type chunkStore struct {
	mu          sync.Mutex
	data        map[common.Hash][]byte
	reads       int
	constructed common.Address
}

func newChunkStore() *chunkStore {
	return &chunkStore{data: make(map[common.Hash][]byte)}
}

func (s *chunkStore) ReadDataPoint(ctx context.Context, id common.Hash) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	data, ok := s.data[id]
	if !ok {
		return nil, fmt.Errorf("data point %s not stored", id)
	}
	return data, nil
}

func (s *chunkStore) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// resourceOf stores chunks and returns the ResourceLocation listing
// them in order.
func resourceOf(store *chunkStore, chunks ...[]byte) ResourceLocation {
	ids := make([]common.Hash, len(chunks))
	for i, chunk := range chunks {
		ids[i] = datapoint.Address(chunk)
		store.data[ids[i]] = chunk
	}
	return ResourceLocation{
		Head:             ResponseHead{Status: StatusOK},
		ChunkIdentifiers: ids,
		TotalChunks:      len(ids),
	}
}

func testRegistry(t *testing.T) *chain.Registry {
	t.Helper()
	table, err := chain.NewTable([]chain.Network{{
		Name:    "testnet",
		ChainID: 42,
		RPC:     []string{"http://testnet.invalid"},
		Root:    true,
	}})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return chain.NewRegistry(chain.RegistryConfig{
		Table: table,
		Dial: func(ctx context.Context, url string) (chain.Client, error) {
			return &stubChainClient{chainID: 42}, nil
		},
		Logger: quietLogger(),
	})
}

func testClient(t *testing.T, site *fakeSite, store *chunkStore) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		Registry: testRegistry(t),
		Network:  "testnet",
		NewBackend: func(_ *chain.Endpoint, addr common.Address) SiteBackend {
			site.boundTo = addr
			return site
		},
		NewStore: func(_ *chain.Endpoint, storage common.Address) datapoint.Store {
			store.constructed = storage
			return store
		},
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestFetchWholeResource(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	chunks := [][]byte{[]byte("<html>"), []byte("body"), []byte("</html>")}
	site.setHead("/page.html", ResponseHead{Status: StatusOK})
	site.pushLocate("/page.html", resourceOf(store, chunks...))
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/page.html", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if result.Location.Head.Status != StatusOK {
		t.Errorf("status: got %d", result.Location.Head.Status)
	}
	if want := []byte("<html>body</html>"); !bytes.Equal(result.Content, want) {
		t.Errorf("content: got %q, want %q", result.Content, want)
	}
	if result.Location.TotalChunks != 3 {
		t.Errorf("total chunks: got %d", result.Location.TotalChunks)
	}
	if store.readCount() != 3 {
		t.Errorf("store reads: got %d, want 3", store.readCount())
	}
	if site.boundTo != testSiteAddress {
		t.Errorf("backend bound to %s, want %s", site.boundTo, testSiteAddress)
	}
	if store.constructed != testStorageAddress {
		t.Errorf("store constructed for %s, want %s", store.constructed, testStorageAddress)
	}
	if site.locateCount() != 1 {
		t.Errorf("locate calls: got %d, want 1", site.locateCount())
	}
}

func TestFetchHeadOnly(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/page.html", ResponseHead{Status: StatusOK, Size: 99})
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/page.html", RequestOptions{HeadOnly: true})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Content != nil {
		t.Error("HeadOnly returned content")
	}
	if result.Location.Head.Size != 99 {
		t.Errorf("head size: got %d", result.Location.Head.Size)
	}
	if site.locateCount() != 0 {
		t.Errorf("locate calls: got %d, want 0", site.locateCount())
	}
	if store.readCount() != 0 {
		t.Errorf("store reads: got %d, want 0", store.readCount())
	}
}

func TestHeadMethod(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/page.html", ResponseHead{Status: StatusOK, Version: 7})
	client := testClient(t, site, store)

	head, err := client.Head(context.Background(), testSiteAddress.Hex(), "page.html", RequestOptions{})
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head.Status != StatusOK || head.Version != 7 {
		t.Errorf("got status=%d version=%d", head.Status, head.Version)
	}
}

func TestFetchChunkIdentifiersOnly(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/data.bin", ResponseHead{Status: StatusOK})
	site.pushLocate("/data.bin", resourceOf(store, []byte("chunk a"), []byte("chunk b")))
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/data.bin", RequestOptions{ChunkIdentifiersOnly: true})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Content != nil {
		t.Error("ChunkIdentifiersOnly returned content")
	}
	if len(result.Location.ChunkIdentifiers) != 2 {
		t.Errorf("chunk identifiers: got %d, want 2", len(result.Location.ChunkIdentifiers))
	}
	if store.readCount() != 0 {
		t.Errorf("store reads: got %d, want 0", store.readCount())
	}
}

func TestFetchFollowsRedirects(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/old", ResponseHead{Status: StatusMovedPermanently, RedirectLocation: "/new.html"})
	site.setHead("/new.html", ResponseHead{Status: StatusOK})
	site.pushLocate("/new.html", resourceOf(store, []byte("moved content")))
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/old", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(result.Content) != "moved content" {
		t.Errorf("content: got %q", result.Content)
	}
	if site.headCalls[0] != "/old" || site.headCalls[1] != "/new.html" {
		t.Errorf("head calls: %v", site.headCalls)
	}
}

func TestFetchRelativeRedirect(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/a/b/c", ResponseHead{Status: StatusFound, RedirectLocation: "../d"})
	site.setHead("/a/d", ResponseHead{Status: StatusOK})
	site.pushLocate("/a/d", resourceOf(store, []byte("relative target")))
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/a/b/c", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(result.Content) != "relative target" {
		t.Errorf("content: got %q", result.Content)
	}
	if site.headCalls[1] != "/a/d" {
		t.Errorf("redirect resolved to %q, want /a/d", site.headCalls[1])
	}
}

func TestFetchRedirectCycleTerminates(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/a", ResponseHead{Status: StatusMovedPermanently, RedirectLocation: "/b"})
	site.setHead("/b", ResponseHead{Status: StatusMovedPermanently, RedirectLocation: "/a"})
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/a", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Location.Head.Status != StatusMovedPermanently {
		t.Errorf("status: got %d, want 301", result.Location.Head.Status)
	}
	if result.Content != nil {
		t.Error("redirect result carried content")
	}
	// Initial head plus DefaultMaxRedirects hops, then stop.
	if got := site.headCount(); got != 1+DefaultMaxRedirects {
		t.Errorf("head calls: got %d, want %d", got, 1+DefaultMaxRedirects)
	}
	if site.locateCount() != 0 {
		t.Errorf("locate calls after exhausted redirects: got %d, want 0", site.locateCount())
	}
}

func TestFetchRedirectsDisabled(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/a", ResponseHead{Status: StatusTemporaryRedirect, RedirectLocation: "/b"})
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/a", RequestOptions{MaxRedirects: -1})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Location.Head.Status != StatusTemporaryRedirect {
		t.Errorf("status: got %d, want 307", result.Location.Head.Status)
	}
	if got := site.headCount(); got != 1 {
		t.Errorf("head calls: got %d, want 1", got)
	}
}

func TestFetchIndexFallback(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/docs/index.html", ResponseHead{Status: StatusOK})
	site.pushLocate("/docs/index.html", resourceOf(store, []byte("<h1>docs</h1>")))
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/docs/", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Location.Head.Status != StatusOK {
		t.Errorf("status: got %d, want 200", result.Location.Head.Status)
	}
	if string(result.Content) != "<h1>docs</h1>" {
		t.Errorf("content: got %q", result.Content)
	}
	// The first successful candidate stops the probing.
	want := []string{"/docs/", "/docs/index.html"}
	if len(site.headCalls) != len(want) {
		t.Fatalf("head calls: %v", site.headCalls)
	}
	for i := range want {
		if site.headCalls[i] != want[i] {
			t.Errorf("head call %d: got %q, want %q", i, site.headCalls[i], want[i])
		}
	}
}

func TestFetchIndexFallbackProbesInOrder(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/docs/index.md", ResponseHead{Status: StatusOK})
	site.pushLocate("/docs/index.md", resourceOf(store, []byte("# docs")))
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/docs", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(result.Content) != "# docs" {
		t.Errorf("content: got %q", result.Content)
	}
	want := []string{"/docs", "/docs/index.html", "/docs/index.htm", "/docs/index.md"}
	if len(site.headCalls) != len(want) {
		t.Fatalf("head calls: %v", site.headCalls)
	}
}

func TestFetchPlainNotFound(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/missing.png", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Location.Head.Status != StatusNotFound {
		t.Errorf("status: got %d, want 404", result.Location.Head.Status)
	}
	if result.Content != nil {
		t.Error("not-found result carried content")
	}
	// Extension paths skip index probing; the rescue locate still runs.
	if got := site.headCount(); got != 1 {
		t.Errorf("head calls: got %d, want 1", got)
	}
	if got := site.locateCount(); got != 1 {
		t.Errorf("locate calls: got %d, want 1", got)
	}
}

func TestFetchRescueLocate(t *testing.T) {
	// A site that rejects HEAD can still answer LOCATE.
	site := newFakeSite()
	store := newChunkStore()
	site.setHeadError("/app.bin", errors.New("head reverted"))
	site.pushLocate("/app.bin", resourceOf(store, []byte("binary payload")))
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/app.bin", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Location.Head.Status != StatusOK {
		t.Errorf("status: got %d, want 200", result.Location.Head.Status)
	}
	if string(result.Content) != "binary payload" {
		t.Errorf("content: got %q", result.Content)
	}
}

func TestFetchNotModified(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/page.html", ResponseHead{Status: StatusNotModified})
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/page.html", RequestOptions{
		IfModifiedSince: 1700000000,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Location.Head.Status != StatusNotModified {
		t.Errorf("status: got %d, want 304", result.Location.Head.Status)
	}
	if result.Content != nil {
		t.Error("304 result carried content")
	}
	if site.locateCount() != 0 {
		t.Errorf("locate calls: got %d, want 0", site.locateCount())
	}
}

func TestFetchUndercountRepairAdopts(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	full := resourceOf(store, []byte("one"), []byte("two"), []byte("three"))

	short := full
	short.ChunkIdentifiers = full.ChunkIdentifiers[:2]

	site.setHead("/big", ResponseHead{Status: StatusOK})
	site.pushLocate("/big", short)
	site.pushLocate("/big", full)
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/big", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(result.Location.ChunkIdentifiers) != 3 {
		t.Errorf("chunk identifiers: got %d, want 3 after repair", len(result.Location.ChunkIdentifiers))
	}
	if string(result.Content) != "onetwothree" {
		t.Errorf("content: got %q", result.Content)
	}
	if got := site.locateCount(); got != 2 {
		t.Errorf("locate calls: got %d, want 2", got)
	}
	// The repair query asks for the full range.
	if rng := site.locateCalls[1].rng; !rng.IsFull() {
		t.Errorf("repair range: got %+v, want full", rng)
	}
}

func TestFetchUndercountRepairKeepsPartial(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	full := resourceOf(store, []byte("one"), []byte("two"), []byte("three"))

	short := full
	short.ChunkIdentifiers = full.ChunkIdentifiers[:2]

	site.setHead("/big", ResponseHead{Status: StatusOK})
	site.pushLocate("/big", short)
	site.pushLocate("/big", short)
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/big", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(result.Location.ChunkIdentifiers) != 2 {
		t.Errorf("chunk identifiers: got %d, want the 2-chunk partial kept", len(result.Location.ChunkIdentifiers))
	}
	if string(result.Content) != "onetwo" {
		t.Errorf("content: got %q", result.Content)
	}
}

func TestFetchZeroIdentifiersProbesFirstChunk(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	first := resourceOf(store, []byte("first chunk"))
	first.TotalChunks = 3

	empty := ResourceLocation{Head: ResponseHead{Status: StatusOK}, TotalChunks: 3}

	site.setHead("/sparse", ResponseHead{Status: StatusOK})
	site.pushLocate("/sparse", empty)
	site.pushLocate("/sparse", first)
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/sparse", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(result.Location.ChunkIdentifiers) != 1 {
		t.Fatalf("chunk identifiers: got %d, want 1", len(result.Location.ChunkIdentifiers))
	}
	if string(result.Content) != "first chunk" {
		t.Errorf("content: got %q", result.Content)
	}
	probe := site.locateCalls[1].rng
	if probe.Start != 0 || probe.End != 1 {
		t.Errorf("probe range: got %+v, want {0 1}", probe)
	}
}

func TestFetchSubrangeSkipsRepair(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	window := resourceOf(store, []byte("chunk1"), []byte("chunk2"))
	window.Head.Status = StatusPartialContent
	window.TotalChunks = 10

	site.setHead("/big", ResponseHead{Status: StatusOK})
	site.pushLocate("/big", window)
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/big", RequestOptions{
		Range: Range{Start: 1, End: 3},
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(result.Content) != "chunk1chunk2" {
		t.Errorf("content: got %q", result.Content)
	}
	if got := site.locateCount(); got != 1 {
		t.Errorf("locate calls: got %d, want 1 (no repair for explicit sub-range)", got)
	}
	if rng := site.locateCalls[0].rng; rng.Start != 1 || rng.End != 3 {
		t.Errorf("range on the wire: got %+v", rng)
	}
}

func TestFetchLocateRetriesFullRange(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/flaky", ResponseHead{Status: StatusOK})
	site.pushLocateError("/flaky", errors.New("rpc timeout"))
	site.pushLocate("/flaky", resourceOf(store, []byte("recovered")))
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/flaky", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(result.Content) != "recovered" {
		t.Errorf("content: got %q", result.Content)
	}
	if got := site.locateCount(); got != 2 {
		t.Fatalf("locate calls: got %d, want 2", got)
	}
	if rng := site.locateCalls[1].rng; !rng.IsFull() {
		t.Errorf("retry range: got %+v, want full", rng)
	}
}

func TestFetchLocateFailureFoldsTo404(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/gone", ResponseHead{Status: StatusOK})
	site.pushLocateError("/gone", errors.New("rpc down"))
	site.pushLocateError("/gone", errors.New("rpc down"))
	client := testClient(t, site, store)

	result, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/gone", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Location.Head.Status != StatusNotFound {
		t.Errorf("status: got %d, want synthetic 404", result.Location.Head.Status)
	}
	if result.Content != nil {
		t.Error("folded failure carried content")
	}
}

func TestFetchInvalidPath(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	client := testClient(t, site, store)

	for _, path := range []string{"/bad\x00path", "wttp://site.eth/page.html"} {
		_, err := client.Fetch(context.Background(), testSiteAddress.Hex(), path, RequestOptions{})
		if !IsInvalidPath(err) {
			t.Errorf("Fetch(%q): got %v, want InvalidPathError", path, err)
		}
	}
	if site.headCount() != 0 {
		t.Error("invalid paths reached the site")
	}
}

func TestFetchUnsupportedNetwork(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	client, err := NewClient(ClientConfig{
		Registry: testRegistry(t),
		Network:  "bogusnet",
		NewBackend: func(_ *chain.Endpoint, _ common.Address) SiteBackend {
			return site
		},
		NewStore: func(_ *chain.Endpoint, _ common.Address) datapoint.Store {
			return store
		},
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Fetch(context.Background(), testSiteAddress.Hex(), "/", RequestOptions{})
	if !chain.IsUnsupportedNetwork(err) {
		t.Errorf("got %v, want UnsupportedNetworkError", err)
	}
}

func TestFetchResolvesNames(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/index.html", ResponseHead{Status: StatusOK})
	site.pushLocate("/index.html", resourceOf(store, []byte("named site")))
	site.pushLocate("/index.html", resourceOf(store, []byte("named site")))

	namer := &countingNamer{
		resolver: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		address:  testSiteAddress,
	}
	registry := testRegistry(t)
	resolver := ens.NewResolver(ens.ResolverConfig{
		Registry: registry,
		NewNamer: func(_ *chain.Endpoint) (ens.Namer, error) { return namer, nil },
		Logger:   quietLogger(),
	})
	client, err := NewClient(ClientConfig{
		Registry: registry,
		Resolver: resolver,
		Network:  "testnet",
		NewBackend: func(_ *chain.Endpoint, addr common.Address) SiteBackend {
			site.boundTo = addr
			return site
		},
		NewStore: func(_ *chain.Endpoint, _ common.Address) datapoint.Store {
			return store
		},
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	result, err := client.Fetch(context.Background(), "Example.ETH", "/index.html", RequestOptions{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(result.Content) != "named site" {
		t.Errorf("content: got %q", result.Content)
	}
	if site.boundTo != testSiteAddress {
		t.Errorf("backend bound to %s, want resolved %s", site.boundTo, testSiteAddress)
	}

	// A second fetch hits the resolution cache.
	if _, err := client.Fetch(context.Background(), "example.eth", "/index.html", RequestOptions{}); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if got := namer.lookupCount(); got != 1 {
		t.Errorf("naming lookups: got %d, want 1", got)
	}
}

func TestFetchNameWithoutResolver(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	client := testClient(t, site, store)

	_, err := client.Fetch(context.Background(), "example.eth", "/", RequestOptions{})
	if err == nil {
		t.Fatal("expected an error for a name without a resolver")
	}
}

func TestFetchStorageAddressError(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	site.setHead("/page.html", ResponseHead{Status: StatusOK})
	site.pushLocate("/page.html", resourceOf(store, []byte("x")))
	site.storageErr = errors.New("DPS reverted")
	client := testClient(t, site, store)

	_, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/page.html", RequestOptions{})
	if err == nil || !errors.Is(err, site.storageErr) {
		t.Errorf("got %v, want wrapped storage error", err)
	}
}

func TestFetchChunkReadFailure(t *testing.T) {
	site := newFakeSite()
	store := newChunkStore()
	location := resourceOf(store, []byte("a"), []byte("b"))
	// Drop the second chunk from the store.
	delete(store.data, location.ChunkIdentifiers[1])

	site.setHead("/torn", ResponseHead{Status: StatusOK})
	site.pushLocate("/torn", location)
	client := testClient(t, site, store)

	_, err := client.Fetch(context.Background(), testSiteAddress.Hex(), "/torn", RequestOptions{})
	if !datapoint.IsChunkReadFailed(err) {
		t.Errorf("got %v, want chunk read failure", err)
	}
}

// countingNamer resolves every name to one fixed address and counts
// lookups.
type countingNamer struct {
	mu       sync.Mutex
	lookups  int
	resolver common.Address
	address  common.Address
}

func (n *countingNamer) ResolverAddress(ctx context.Context, node common.Hash) (common.Address, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lookups++
	return n.resolver, nil
}

func (n *countingNamer) Addr(ctx context.Context, resolver common.Address, node common.Hash) (common.Address, error) {
	return n.address, nil
}

func (n *countingNamer) Owner(ctx context.Context, node common.Hash) (common.Address, error) {
	return n.address, nil
}

func (n *countingNamer) lookupCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lookups
}
