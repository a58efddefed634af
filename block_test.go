package lzx

import (
	"errors"
	"testing"
)

func TestBlockStoreModeTruncatesAndZeroPads(t *testing.T) {
	b := newBlock([]byte{1, 2, 3, 4, 5}, CompressionNone, 3, nil)
	data, err := b.decompress()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string([]byte{1, 2, 3}) {
		t.Fatalf("decompress() = %v, want [1 2 3]", data)
	}

	short := newBlock([]byte{1, 2}, CompressionNone, 5, nil)
	data, err = short.decompress()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string([]byte{1, 2, 0, 0, 0}) {
		t.Fatalf("decompress() = %v, want [1 2 0 0 0]", data)
	}
}

func TestBlockDecompressMemoizedOnce(t *testing.T) {
	b := newBlock([]byte{9, 9, 9}, CompressionNone, 3, nil)
	first, err := b.decompress()
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.decompress()
	if err != nil {
		t.Fatal(err)
	}
	if &first[0] != &second[0] {
		t.Fatal("decompress() did not return the memoized slice on a second call")
	}
}

func TestBlockUnknownModeErrors(t *testing.T) {
	b := newBlock(nil, CompressionMode(99), 0, nil)
	_, err := b.decompress()
	if !errors.Is(err, ErrUnknownCompression) {
		t.Fatalf("got %v, want ErrUnknownCompression", err)
	}
}

func TestMergeSchedulerRejectsLeaderMidRun(t *testing.T) {
	m := &mergeScheduler{}
	merged := &Entry{name: "a", merged: true, packSize: 0, unpackSize: 1}
	r := newBitReader([]byte{0})
	if err := m.add(merged, r); err != nil {
		t.Fatal(err)
	}

	leader := &Entry{name: "b", merged: false, packSize: 0, unpackSize: 0}
	r2 := newBitReader(nil)
	err := m.add(leader, r2)
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("got %v, want ErrUnexpectedEOF", err)
	}
}

func TestMergeSchedulerFinishRejectsOpenRun(t *testing.T) {
	m := &mergeScheduler{pending: []*Entry{{name: "a"}}}
	if err := m.finish(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("got %v, want ErrUnexpectedEOF", err)
	}
}

func TestMergeSchedulerFinishAcceptsEmptyRun(t *testing.T) {
	m := &mergeScheduler{}
	if err := m.finish(); err != nil {
		t.Fatalf("got %v, want nil", err)
	}
}
