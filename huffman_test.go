package lzx

import "testing"

// TestHuffmanFastTableLayout checks the canonical construction against a
// hand-derived placement for a code entirely within the fast table (no
// trie): lengths {1,2,3,4,5,6,7,7} satisfy the Kraft equality and the
// longest code equals the table width, so every symbol lands in the
// prefix region.
func TestHuffmanFastTableLayout(t *testing.T) {
	lengths := []uint8{1, 2, 3, 4, 5, 6, 7, 7}
	tbl, err := newHuffmanTable(7, 128, lengths)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := map[int]uint32{
		0: 0, 2: 0, 4: 0, 126: 0,
		1: 1, 5: 1, 125: 1,
		3: 2, 11: 2, 123: 2,
		7: 3, 119: 3,
		15: 4, 111: 4,
		31: 5, 95: 5,
		63: 6,
		127: 7,
	}
	for idx, symbol := range want {
		if got := tbl.decode[idx]; got != symbol {
			t.Errorf("decode[%d] = %d, want %d", idx, got, symbol)
		}
	}
}

func TestHuffmanIncompleteCodeRejected(t *testing.T) {
	// Only one symbol of length 1: Kraft sum is 1/2, not 1.
	_, err := newHuffmanTable(7, 128, []uint8{1, 0, 0, 0, 0, 0, 0, 0})
	if err == nil {
		t.Fatal("expected HuffmanTableError for incomplete code")
	}
}

func TestHuffmanOverfullCodeRejected(t *testing.T) {
	// Two symbols of length 1 already sums to 1; a third of length 1
	// overruns the code space.
	_, err := newHuffmanTable(7, 128, []uint8{1, 1, 1, 0, 0, 0, 0, 0})
	if err == nil {
		t.Fatal("expected HuffmanTableError for overfull code")
	}
}

// TestHuffmanTrieDescent exercises decodeSymbol's overflow path: codes
// longer than tableBits spill into the trie appended after the fast table
// (huffman.go:147-157). The table shape matches the real pretree alphabet
// (6 bits, 20 symbols, capacity 96); symbols 0-5 take lengths 1-6 (fast
// table only) and symbols 6-7 both take length 7, so they share the
// all-ones 6-bit fast-table prefix and diverge on the trie's one extra bit.
func TestHuffmanTrieDescent(t *testing.T) {
	lengths := []uint8{1, 2, 3, 4, 5, 6, 7, 7}
	lengths = append(lengths, make([]uint8, 20-len(lengths))...)
	tbl, err := newHuffmanTable(6, 96, lengths)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	w := &testBitWriter{}
	w.writeBits(6, 0x3F) // shared fast-table prefix, all ones
	w.writeBits(1, 0)    // trie bit selecting symbol 6
	w.writeBits(6, 0x3F)
	w.writeBits(1, 1) // trie bit selecting symbol 7
	r := newBitReader(w.bytes())

	got, err := tbl.decodeSymbol(r)
	if err != nil {
		t.Fatalf("decodeSymbol: %v", err)
	}
	if got != 6 {
		t.Fatalf("first symbol = %d, want 6", got)
	}

	got, err = tbl.decodeSymbol(r)
	if err != nil {
		t.Fatalf("decodeSymbol: %v", err)
	}
	if got != 7 {
		t.Fatalf("second symbol = %d, want 7", got)
	}
}

func TestMod17WrapsEvery17(t *testing.T) {
	for a := 0; a <= 16; a++ {
		if mod17(a) != mod17(a+17) {
			t.Errorf("mod17(%d)=%d != mod17(%d)=%d", a, mod17(a), a+17, mod17(a+17))
		}
	}
}
