package lzx

import (
	"fmt"
	"sync"
)

// Segment is an immutable (block, offset, length) view into a Block's
// decompressed bytes, belonging to exactly one Entry (spec.md §3).
type Segment struct {
	block  *Block
	offset int
	length int
}

func (s Segment) Length() int { return s.length }

// Bytes returns this segment's slice of its block's decompressed buffer,
// decompressing the block on first demand.
func (s Segment) Bytes() ([]byte, error) {
	data, err := s.block.decompress()
	if err != nil {
		return nil, err
	}
	return data[s.offset : s.offset+s.length], nil
}

// Block is one independently decompressible payload, shared by every entry
// in its merge run. Decompression is memoized exactly once via sync.Once,
// with the resulting error cached too — the sole concurrency contract
// spec.md §5 requires of the core.
type Block struct {
	payload   []byte
	mode      CompressionMode
	totalSize int
	cache     *BlockCache

	once sync.Once
	data []byte
	err  error
}

func newBlock(payload []byte, mode CompressionMode, totalSize int, cache *BlockCache) *Block {
	return &Block{payload: payload, mode: mode, totalSize: totalSize, cache: cache}
}

// decompress runs the block's decompression exactly once and caches the
// result (success or failure) for every subsequent call. This sync.Once
// guarantee holds regardless of whether a cross-Archive BlockCache is
// wired in: the cache, when present, is consulted/populated inside the
// once-guarded computation, never bypassing it.
func (b *Block) decompress() ([]byte, error) {
	b.once.Do(func() {
		if b.cache != nil && b.mode == CompressionNormal {
			b.data, b.err = b.cache.getOrCompute(b.payload, b.totalSize, b.decompressOnce)
			return
		}
		b.data, b.err = b.decompressOnce()
	})
	return b.data, b.err
}

func (b *Block) decompressOnce() ([]byte, error) {
	switch b.mode {
	case CompressionNone:
		n := len(b.payload)
		if n > b.totalSize {
			n = b.totalSize
		}
		out := make([]byte, b.totalSize)
		copy(out, b.payload[:n])
		return out, nil

	case CompressionNormal:
		out := make([]byte, b.totalSize+maxMatchLength)
		r := newBitReader(b.payload)
		dec := newLZXDecoder()
		if err := dec.decodeBlock(r, out, b.totalSize); err != nil {
			if r.isEOF() {
				return nil, fmt.Errorf("%w: block truncated", ErrUnexpectedEOF)
			}
			return nil, err
		}
		return out[:b.totalSize], nil

	default:
		return nil, fmt.Errorf("%w: block mode %d", ErrUnknownCompression, b.mode)
	}
}

// mergeScheduler accumulates a run of merged entries between leaders and
// turns each closed run into one shared Block with one Segment per member,
// following the pending-merges bookkeeping of
// original_source/src/unlzx.cc's Unlzx::list_archive.
type mergeScheduler struct {
	pending []*Entry
	cache   *BlockCache
}

// add processes one freshly parsed entry against the bit stream r
// (positioned immediately after the entry's header/filename/comment). When
// the entry is a block leader, its block is built and the entry (and every
// entry merged with it) gets its segment before add returns; a non-nil error
// reports a malformed run or a truncated payload.
func (m *mergeScheduler) add(entry *Entry, r *bitReader) error {
	m.pending = append(m.pending, entry)

	if entry.merged && entry.packSize == 0 {
		// Joins the run but doesn't close it; its payload contributes no
		// bytes of its own (skip is a no-op: pack_size is 0).
		return nil
	}

	// This entry is a block leader: either non-merged (its own block) or
	// the last of a merge run (pack_size > 0 covers the whole run).
	if !entry.merged && len(m.pending) != 1 {
		// A non-merged leader cannot appear mid-run: a run only ever
		// accumulates merged entries, so a non-merged leader is valid
		// only as the sole pending member, and this path rejects it when
		// merged entries are still waiting for their leader.
		return fmt.Errorf("%w: non-merged entry following an open merge run", ErrUnexpectedEOF)
	}

	payload, err := r.readSpan(int(entry.packSize))
	if err != nil {
		return fmt.Errorf("block payload: %w", err)
	}

	totalSize := 0
	for _, e := range m.pending {
		totalSize += int(e.unpackSize)
	}

	block := newBlock(payload, entry.compressionMode, totalSize, m.cache)

	offset := 0
	for _, e := range m.pending {
		length := int(e.unpackSize)
		e.segments = append(e.segments, Segment{block: block, offset: offset, length: length})
		if e.merged && e.packSize == 0 {
			if totalSize > 0 {
				ratio := float64(length) / float64(totalSize)
				e.estimatedPackSize = uint64(ratio * float64(entry.packSize))
			}
			e.hasEstimatedPackSize = true
		}
		offset += length
	}

	m.pending = nil
	return nil
}

// finish reports an ill-formed archive if a merge run never closed: a run
// of merged entries that reaches EOF without a leader is UnexpectedEof
// per spec.md §9.
func (m *mergeScheduler) finish() error {
	if len(m.pending) > 0 {
		return fmt.Errorf("%w: merge run without a leader", ErrUnexpectedEOF)
	}
	return nil
}
