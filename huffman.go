package lzx

import "fmt"

// huffmanTable is a two-level canonical Huffman decode structure: a fast
// prefix table of width tableBits holding codes no longer than that, and a
// trie of overflow nodes appended after it for longer codes. Ported from
// HuffmanTable::reset_table in original_source/src/huffman_table.cc.
type huffmanTable struct {
	tableBits   uint
	codeLengths []uint8
	decode      []uint32
}

// newHuffmanTable builds a decode table from codeLengths. decodeCapacity is
// the fixed size of the backing array (fast table plus trie-node storage);
// the three tables the decoder uses size it as 7/8/128 (offsets), 6/20/96
// (pretree), and 12/768/5120 (literals).
func newHuffmanTable(tableBits uint, decodeCapacity int, codeLengths []uint8) (*huffmanTable, error) {
	t := &huffmanTable{
		tableBits:   tableBits,
		codeLengths: codeLengths,
		decode:      make([]uint32, decodeCapacity),
	}
	if !t.resetTable() {
		return nil, fmt.Errorf("%w: incomplete or overrun code", ErrHuffmanTable)
	}
	return t, nil
}

// resetTable runs the two-pass canonical construction and the final Kraft-
// equality completeness check.
func (t *huffmanTable) resetTable() bool {
	numSymbols := len(t.codeLengths)
	tableMask := uint32(1) << t.tableBits
	bitMask := tableMask >> 1
	position := uint32(0)

	currentBitLength := uint8(1)

	// First pass: lengths <= tableBits fill the fast table directly.
	for currentBitLength <= uint8(t.tableBits) {
		for symbol := 0; symbol < numSymbols; symbol++ {
			if t.codeLengths[symbol] != currentBitLength {
				continue
			}

			leaf := reverseBits(position, t.tableBits)

			position += bitMask
			if position > tableMask {
				return false
			}

			next := uint32(1) << currentBitLength
			for fill := bitMask; fill != 0; fill-- {
				t.decode[leaf] = uint32(symbol)
				leaf += next
			}
		}
		bitMask >>= 1
		currentBitLength++
	}

	if position == tableMask {
		return true
	}

	// Second pass: codes longer than tableBits descend through a trie
	// built from nodes appended after the fast table. Unreached fast-table
	// slots are cleared so the trie-allocation sentinel (0) is unambiguous.
	for symbol := position; symbol < tableMask; symbol++ {
		t.decode[reverseBits(symbol, t.tableBits)] = 0
	}

	nextNode := tableMask >> 1
	position <<= 16
	wideTableMask := tableMask << 16
	bitMask = 1 << 15

	for currentBitLength <= 16 {
		for symbol := 0; symbol < numSymbols; symbol++ {
			if t.codeLengths[symbol] != currentBitLength {
				continue
			}

			leaf := reverseBits(position>>16, t.tableBits)

			for fill := uint8(0); fill < currentBitLength-uint8(t.tableBits); fill++ {
				if t.decode[leaf] == 0 {
					t.decode[nextNode<<1] = 0
					t.decode[(nextNode<<1)+1] = 0
					t.decode[leaf] = nextNode
					nextNode++
				}
				bit := (position >> (15 - fill)) & 1
				leaf = (t.decode[leaf] << 1) | bit
			}

			t.decode[leaf] = uint32(symbol)
			position += bitMask
			if position > wideTableMask {
				return false
			}
		}
		bitMask >>= 1
		currentBitLength++
	}

	return position == wideTableMask
}

// reverseBits reverses the low width bits of v.
func reverseBits(v uint32, width uint) uint32 {
	var r uint32
	for i := uint(0); i < width; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}

// decodeSymbol reads one Huffman-coded symbol from r. A fast-table slot
// holds either a real symbol (< numSymbols) or a trie-node index (>=
// tableMask>>1, assigned by resetTable's second pass); comparing against
// numSymbols to tell them apart only works because every table this package
// builds keeps its first trie node above its symbol count (offsets: 64 >=
// 8; pretree: 32 >= 20; literals: 2048 >= 768), the same property
// huffman_decoder.cc relies on at its three decode sites (symbol >=
// kSymbolLongerThanSixBits, symbol >= 768).
func (t *huffmanTable) decodeSymbol(r *bitReader) (int, error) {
	numSymbols := len(t.codeLengths)

	code, err := r.peekBits(t.tableBits)
	if err != nil {
		return 0, err
	}
	symbol := t.decode[code]

	if int(symbol) < numSymbols {
		if _, err := r.readBits(uint(t.codeLengths[symbol])); err != nil {
			return 0, err
		}
		return int(symbol), nil
	}

	if _, err := r.readBits(t.tableBits); err != nil {
		return 0, err
	}
	for int(symbol) >= numSymbols {
		bit, err := r.readBits(1)
		if err != nil {
			return 0, err
		}
		symbol = t.decode[(symbol<<1)|uint32(bit)]
	}
	return int(symbol), nil
}
