package lzx

import "encoding/binary"

// fabEntry describes one entry for buildArchive to encode. payload is
// always store-mode (CompressionNone) content: hand-crafting a real LZX
// compressed bitstream is out of scope for a fixture, and store mode
// exercises the same header/CRC/merge-scheduling machinery.
type fabEntry struct {
	name     string
	comment  string
	merged   bool
	payload  []byte // this entry's own decompressed content
	packSize uint32 // 0 for a merged non-leader; else len(blockBytes)
	blockBytes []byte // the whole run's store-mode bytes, written once at the leader
}

// buildArchive assembles a minimal valid LZX byte stream: the 10-byte info
// header followed by each entry's 31-byte header, name, comment, and (for
// entries with a nonzero packSize) payload bytes, in order. CRCs are
// computed with the package's own crc32 helpers rather than hand-derived,
// matching how parseEntry validates them.
func buildArchive(entries []fabEntry) []byte {
	out := append([]byte(nil), 'L', 'Z', 'X', 0, 0, 0, 0, 0, 0, 0)

	for _, e := range entries {
		header := make([]byte, entryHeaderSize)
		header[0] = byte(ProtectionReadable)
		binary.LittleEndian.PutUint32(header[2:6], uint32(len(e.payload)))
		binary.LittleEndian.PutUint32(header[6:10], e.packSize)
		header[10] = 0 // machine type
		header[11] = byte(CompressionNone)
		if e.merged {
			header[12] = mergedFlag
		}
		header[14] = byte(len(e.comment))
		header[15] = 0 // extract version
		binary.BigEndian.PutUint32(header[18:22], 0)
		binary.LittleEndian.PutUint32(header[22:26], calcCRC32(e.payload))
		// header[26:30] (header CRC) filled in below, after zeroing.
		header[30] = byte(len(e.name))

		nameBytes := []byte(e.name)
		commentBytes := []byte(e.comment)
		headerCRC := crc32Multi(header, nameBytes, commentBytes)
		binary.LittleEndian.PutUint32(header[26:30], headerCRC)

		out = append(out, header...)
		out = append(out, nameBytes...)
		out = append(out, commentBytes...)
		if e.packSize > 0 {
			out = append(out, e.blockBytes...)
		}
	}
	return out
}
