package lzx

import (
	"context"
	"encoding/binary"
	"log/slog"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
)

// BlockCache memoizes decompressed block bytes across distinct *Archive
// values opened from the same underlying bytes, keyed by a content hash of
// the block's decompressed size and its compressed payload. This is independent of (and sits outside) the
// sync.Once single-shot guarantee every Block already provides within one
// Archive — see block.go's decompress and SPEC_FULL.md §3.3. Adapted from
// internal/decompressioncache/decompressioncache.go's bigcache-backed
// memoization shape, re-keyed by xxhash content identity instead of a
// per-instance monotonic counter, since the point here is reuse across
// independent Open calls over identical bytes.
type BlockCache struct {
	bc *bigcache.BigCache
}

// NewBlockCache creates a BlockCache whose entries expire after ttl if
// unused. Config shape matches internal/decompressioncache's package-level
// bigcache.Config, sized down since this cache holds whole decompressed
// blocks rather than arbitrary read-sized ranges.
func NewBlockCache(ttl time.Duration) (*BlockCache, error) {
	bc, err := bigcache.New(context.Background(), bigcache.Config{
		Shards:             256,
		LifeWindow:         ttl,
		CleanWindow:        time.Minute,
		HardMaxCacheSize:   256, // MB
		MaxEntrySize:       500,
		MaxEntriesInWindow: 1000 * 10 * 60,
	})
	if err != nil {
		return nil, err
	}
	return &BlockCache{bc: bc}, nil
}

func cacheKey(payload []byte, totalSize int) string {
	h := xxhash.New()
	_ = binary.Write(h, binary.LittleEndian, uint64(totalSize))
	h.Write(payload)
	sum := h.Sum(nil)
	return string(sum)
}

// getOrCompute returns the cached decompression of payload if present,
// otherwise runs compute, stores the result on success, and returns it. A
// failed or missed read falls through to compute without logging; a failed
// write is logged at debug level. Neither prevents decompression.
func (c *BlockCache) getOrCompute(payload []byte, totalSize int, compute func() ([]byte, error)) ([]byte, error) {
	key := cacheKey(payload, totalSize)

	if cached, err := c.bc.Get(key); err == nil {
		out := make([]byte, len(cached))
		copy(out, cached)
		return out, nil
	}

	data, err := compute()
	if err != nil {
		return nil, err
	}
	if err := c.bc.Set(key, data); err != nil {
		slog.Debug("lzx: block cache write failed", "err", err)
	}
	return data, nil
}
