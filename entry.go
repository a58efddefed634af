package lzx

import (
	"encoding/binary"
	"fmt"
)

const entryHeaderSize = 31

// ProtectionBits are the 8 Amiga-style protection flags carried on every
// entry, packed into the attributes byte at bit layout d,e,w,r,a,p,s,h from
// the LSB (spec.md §3; kept exactly as specified even though the original
// C++ union lays the same bits out in a different field order).
type ProtectionBits uint8

const (
	ProtectionDeletable ProtectionBits = 1 << iota
	ProtectionExecutable
	ProtectionWritable
	ProtectionReadable
	ProtectionArchived
	ProtectionPure
	ProtectionScript
	ProtectionHidden
)

// String renders the protection bits the way `list -l` shows them:
// h s p a r w e d, dash for an unset flag. Grounded on the original's
// attributes_str()-equivalent rendering (lzx_handle.hh), generalized to Go.
func (p ProtectionBits) String() string {
	letters := []struct {
		bit ProtectionBits
		ch  byte
	}{
		{ProtectionHidden, 'h'},
		{ProtectionScript, 's'},
		{ProtectionPure, 'p'},
		{ProtectionArchived, 'a'},
		{ProtectionReadable, 'r'},
		{ProtectionWritable, 'w'},
		{ProtectionExecutable, 'e'},
		{ProtectionDeletable, 'd'},
	}
	out := make([]byte, len(letters))
	for i, l := range letters {
		if p&l.bit != 0 {
			out[i] = l.ch
		} else {
			out[i] = '-'
		}
	}
	return string(out)
}

// CompressionMode is the per-entry payload compression scheme, distinct
// from the in-stream block-header mode (1/2/3) the decoder reads off the
// bit stream — see spec.md §9's note on the two mode namespaces.
type CompressionMode uint8

const (
	CompressionNone   CompressionMode = 0
	CompressionNormal CompressionMode = 2
)

func (m CompressionMode) String() string {
	switch m {
	case CompressionNone:
		return "store"
	case CompressionNormal:
		return "normal"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// DateStamp is the packed Amiga-style archive timestamp: year in
// [1970,2033], month in [1,12], day in [1,31], plus hour/minute/second.
type DateStamp struct {
	Year, Month, Day    int
	Hour, Minute, Second int
}

// parseDateStamp unpacks the big-endian 32-bit field per spec.md §3:
// seconds(6)@0, minutes(6)@6, hours(5)@12, year(6)@17 (+1970), month(4)@23,
// day(5)@27, each @offset counted from the least-significant bit of the
// big-endian field.
func parseDateStamp(packed uint32) DateStamp {
	bits := func(shift, width uint) int {
		return int((packed >> shift) & ((1 << width) - 1))
	}
	return DateStamp{
		Second: bits(0, 6),
		Minute: bits(6, 6),
		Hour:   bits(12, 5),
		Year:   1970 + bits(17, 6),
		Month:  bits(23, 4),
		Day:    bits(27, 5),
	}
}

// rawEntryHeader is the 31-byte packed archive structure described in
// spec.md §4.5, read field-by-field rather than via a Go struct tag trick,
// per the §9 design note against relying on toolchain-specific layout.
type rawEntryHeader struct {
	Attributes       uint8
	UnpackSize       uint32
	PackSize         uint32
	MachineType      uint8
	CompressionInfo  uint8
	Flags            uint8
	CommentLength    uint8
	ExtractVersion   uint8
	Date             uint32
	DataCRC          uint32
	HeaderCRC        uint32
	FilenameLength   uint8
}

func parseRawEntryHeader(buf []byte) rawEntryHeader {
	return rawEntryHeader{
		Attributes:      buf[0],
		UnpackSize:      binary.LittleEndian.Uint32(buf[2:6]),
		PackSize:        binary.LittleEndian.Uint32(buf[6:10]),
		MachineType:     buf[10],
		CompressionInfo: buf[11],
		Flags:           buf[12],
		CommentLength:   buf[14],
		ExtractVersion:  buf[15],
		Date:            binary.BigEndian.Uint32(buf[18:22]),
		DataCRC:         binary.LittleEndian.Uint32(buf[22:26]),
		HeaderCRC:       binary.LittleEndian.Uint32(buf[26:30]),
		FilenameLength:  buf[30],
	}
}

const mergedFlag = 1

// Entry is one named file within the archive, built during directory parse
// and immutable thereafter (spec.md §3).
type Entry struct {
	name    string
	comment string

	attributes      ProtectionBits
	machineType     uint8
	compressionMode CompressionMode
	merged          bool
	unpackSize      uint64
	packSize        uint64
	extractVersion  uint8
	date            DateStamp
	dataCRC         uint32
	headerCRC       uint32

	segments []Segment

	// estimatedPackSize is set only for merged entries without a directly
	// declared nonzero pack size (spec.md §3.1 of SPEC_FULL.md).
	estimatedPackSize    uint64
	hasEstimatedPackSize bool
}

func (e *Entry) Name() string                { return e.name }
func (e *Entry) Comment() string             { return e.comment }
func (e *Entry) Attributes() ProtectionBits  { return e.attributes }
func (e *Entry) MachineType() uint8          { return e.machineType }
func (e *Entry) CompressionMode() CompressionMode { return e.compressionMode }
func (e *Entry) Merged() bool                { return e.merged }
func (e *Entry) UnpackSize() uint64          { return e.unpackSize }
func (e *Entry) Date() DateStamp             { return e.date }
func (e *Entry) DataCRC() uint32             { return e.dataCRC }
func (e *Entry) Segments() []Segment         { return e.segments }

// PackSize returns the declared pack size and true, or (0, false) if this
// is a merged entry whose own declared size is 0 (no exact size known —
// see EstimatedPackSize).
func (e *Entry) PackSize() (uint64, bool) {
	if e.packSize == 0 && e.merged {
		return 0, false
	}
	return e.packSize, true
}

// EstimatedPackSize returns a size for a merged entry prorated from its
// block's total packed size by its share of the block's decompressed
// bytes, and true, or (0, false) when the entry already has an exact size.
// Grounded on original_source/src/lzx_entry.cc's LzxEntry::pack_size().
func (e *Entry) EstimatedPackSize() (uint64, bool) {
	if _, exact := e.PackSize(); exact {
		return 0, false
	}
	return e.estimatedPackSize, e.hasEstimatedPackSize
}

// parseEntry reads one entry header, its filename and comment, and
// validates the header CRC per spec.md §4.5. Returns (nil, nil) at a clean
// end of directory (no header left to read).
func parseEntry(r *bitReader) (*Entry, error) {
	if r.isEOF() {
		return nil, nil
	}

	buf, err := r.readSpan(entryHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("entry header: %w", err)
	}
	scratch := append([]byte(nil), buf...)
	raw := parseRawEntryHeader(scratch)
	declaredCRC := raw.HeaderCRC
	scratch[26], scratch[27], scratch[28], scratch[29] = 0, 0, 0, 0

	filenameBytes, err := r.readSpan(int(raw.FilenameLength))
	if err != nil {
		return nil, fmt.Errorf("entry filename: %w", err)
	}
	commentBytes, err := r.readSpan(int(raw.CommentLength))
	if err != nil {
		return nil, fmt.Errorf("entry comment: %w", err)
	}

	got := crc32Multi(scratch, filenameBytes, commentBytes)
	if got != declaredCRC {
		return nil, fmt.Errorf("%w: entry %q header", ErrChecksumInvalid, string(filenameBytes))
	}

	// compression_info's mode is validated lazily, at block-decompression
	// time, using the block leader's value (spec.md §4.6) — a non-leader
	// merged entry's own copy of the field is never consulted.
	mode := CompressionMode(raw.CompressionInfo & 0x1f)

	return &Entry{
		name:            string(filenameBytes),
		comment:         string(commentBytes),
		attributes:      ProtectionBits(raw.Attributes),
		machineType:     raw.MachineType,
		compressionMode: mode,
		merged:          raw.Flags&mergedFlag != 0,
		unpackSize:      uint64(raw.UnpackSize),
		packSize:        uint64(raw.PackSize),
		extractVersion:  raw.ExtractVersion,
		date:            parseDateStamp(raw.Date),
		dataCRC:         raw.DataCRC,
		headerCRC:       raw.HeaderCRC,
	}, nil
}
