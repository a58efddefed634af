package lzx

// Reflected CRC-32: polynomial 0x04C11DB7, reversed 0xEDB88320; initial
// value 0; final value is XORed with 0xFFFFFFFF. Table-driven, built once
// at package init, matching the shape of the teacher package's crc16
// table (internal/sit/crc16.go) generalized to 32 bits.

const crc32Poly = 0xEDB88320

var crc32Table [256]uint32

func init() {
	for i := range uint32(256) {
		k := i
		for range 8 {
			if k&1 != 0 {
				k = (k >> 1) ^ crc32Poly
			} else {
				k >>= 1
			}
		}
		crc32Table[i] = k
	}
}

// crc32Init is the working register's starting value. The CRC is "0 before
// the first byte and 0xFFFFFFFF after" is achieved by carrying the register
// inverted between init and finalize, which is the usual presentation of
// this exact algorithm (same register discipline as zlib's/PKZIP's CRC-32).
func crc32Init() uint32 { return 0xFFFFFFFF }

// updateCRC32 folds buffer into the running, non-finalized working register.
func updateCRC32(reg uint32, buffer []byte) uint32 {
	for _, b := range buffer {
		reg = crc32Table[byte(reg)^b] ^ (reg >> 8)
	}
	return reg
}

// finalizeCRC32 turns a working register into the externally visible CRC.
func finalizeCRC32(reg uint32) uint32 { return reg ^ 0xFFFFFFFF }

// calcCRC32 computes the finalized CRC-32 of buffer in one call.
func calcCRC32(buffer []byte) uint32 {
	return finalizeCRC32(updateCRC32(crc32Init(), buffer))
}

// crc32Multi finalizes the CRC-32 over several buffers concatenated in
// order, without actually concatenating them.
func crc32Multi(buffers ...[]byte) uint32 {
	reg := crc32Init()
	for _, b := range buffers {
		reg = updateCRC32(reg, b)
	}
	return finalizeCRC32(reg)
}
