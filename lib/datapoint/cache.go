// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package datapoint

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zeebo/blake3"

	"github.com/nickjuntilla/wttp-bridge/lib/codec"
)

// cacheFrameVersion is the on-disk cache format version. Entries with
// another version read as misses and are rewritten.
const cacheFrameVersion = 1

// cacheFrame is the CBOR header preceding the stored payload in every
// cache file. The checksum covers the stored (compressed) payload, so
// disk corruption is caught before decompression.
type cacheFrame struct {
	Version     uint8  `cbor:"version"`
	ID          []byte `cbor:"id"`
	Compression uint8  `cbor:"compression"`
	RawSize     uint64 `cbor:"raw_size"`
	Checksum    []byte `cbor:"checksum"`
}

// CacheConfig configures a data point disk cache.
type CacheConfig struct {
	// Dir is the cache root directory, created if it does not exist.
	Dir string

	// Logger receives corrupt-entry diagnostics. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Cache is a content-addressed disk cache for data points. Data points
// are immutable, so entries never expire; corrupt or unreadable
// entries are dropped and treated as misses. Payloads are stored
// compressed (smallest of none/lz4/zstd) behind a CBOR frame header
// with a blake3 checksum.
//
// Safe for concurrent use: reads are lock-free, writes are serialized
// and atomic (temp file + rename).
type Cache struct {
	dir    string
	logger *slog.Logger

	// writeMu serializes writes.
	writeMu sync.Mutex

	statsMu sync.Mutex
	stats   CacheStats
}

// CacheStats holds cache effectiveness counters.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Writes  uint64
	Corrupt uint64
}

// NewCache opens (or creates) a cache rooted at cfg.Dir.
func NewCache(cfg CacheConfig) (*Cache, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{dir: cfg.Dir, logger: cfg.Logger}, nil
}

// Get returns the cached bytes for a data point, or ok=false on a
// miss. Entries that fail the version, identifier, checksum, or size
// checks are removed and read as misses.
func (c *Cache) Get(id common.Hash) ([]byte, bool) {
	file, err := os.Open(c.entryPath(id))
	if err != nil {
		c.count(func(s *CacheStats) { s.Misses++ })
		return nil, false
	}
	defer file.Close()

	data, err := c.readFrame(id, file)
	if err != nil {
		c.logger.Warn("dropping corrupt cache entry", "data_point", id, "error", err)
		os.Remove(c.entryPath(id))
		c.count(func(s *CacheStats) { s.Corrupt++; s.Misses++ })
		return nil, false
	}

	c.count(func(s *CacheStats) { s.Hits++ })
	return data, true
}

func (c *Cache) readFrame(id common.Hash, file *os.File) ([]byte, error) {
	var frame cacheFrame
	if err := codec.NewDecoder(file).Decode(&frame); err != nil {
		return nil, fmt.Errorf("decoding frame header: %w", err)
	}
	if frame.Version != cacheFrameVersion {
		return nil, fmt.Errorf("frame version %d, want %d", frame.Version, cacheFrameVersion)
	}
	if !bytes.Equal(frame.ID, id[:]) {
		return nil, fmt.Errorf("frame identifier mismatch: %x", frame.ID)
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}

	checksum := blake3.Sum256(payload)
	if !bytes.Equal(frame.Checksum, checksum[:]) {
		return nil, fmt.Errorf("payload checksum mismatch")
	}

	data, err := Decompress(payload, CompressionTag(frame.Compression), int(frame.RawSize))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Put stores a data point. The payload is compressed with whichever of
// none/lz4/zstd is smallest and written atomically. Failures are
// returned but a caller may treat them as non-fatal: the cache is an
// optimization, the backend stays authoritative.
func (c *Cache) Put(id common.Hash, data []byte) error {
	payload, tag, err := CompressAuto(data)
	if err != nil {
		return fmt.Errorf("compressing data point %s: %w", id, err)
	}

	checksum := blake3.Sum256(payload)
	header, err := codec.Marshal(cacheFrame{
		Version:     cacheFrameVersion,
		ID:          id[:],
		Compression: uint8(tag),
		RawSize:     uint64(len(data)),
		Checksum:    checksum[:],
	})
	if err != nil {
		return fmt.Errorf("encoding frame header: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	finalPath := c.entryPath(id)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return fmt.Errorf("creating cache shard directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(c.dir, "dp-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(header); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing frame header: %w", err)
	}
	if _, err := tmpFile.Write(payload); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing payload: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming cache file: %w", err)
	}

	success = true
	c.count(func(s *CacheStats) { s.Writes++ })
	return nil
}

// Contains reports whether an entry exists for the data point, without
// validating it.
func (c *Cache) Contains(id common.Hash) bool {
	_, err := os.Stat(c.entryPath(id))
	return err == nil
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

func (c *Cache) count(update func(*CacheStats)) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	update(&c.stats)
}

// entryPath returns the sharded filesystem path for a data point:
// <dir>/<hex[:2]>/<hex[2:4]>/<hex>
func (c *Cache) entryPath(id common.Hash) string {
	h := hex.EncodeToString(id[:])
	return filepath.Join(c.dir, h[:2], h[2:4], h)
}
