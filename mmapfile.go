//go:build unix

package lzx

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MappedFile is a read-only memory-mapped view of a file on disk, for
// callers that want to avoid reading a whole archive into a heap buffer
// before calling Open. It is not used by the core (spec.md §1 keeps
// memory-mapping an external-collaborator concern); grounded on
// original_source/src/mmap_buffer.cc's MmapInputBuffer.
type MappedFile struct {
	data []byte
}

// OpenMapped mmaps path read-only and returns a MappedFile whose Bytes are
// suitable for passing to Open or OpenWithCache.
func OpenMapped(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileOpen, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileOpen, err)
	}
	size := info.Size()
	if size == 0 {
		return &MappedFile{data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileMap, err)
	}
	return &MappedFile{data: data}, nil
}

// Bytes returns the mapped region. Valid until Close.
func (m *MappedFile) Bytes() []byte { return m.data }

// Close unmaps the region.
func (m *MappedFile) Close() error {
	if m.data == nil {
		return nil
	}
	if err := unix.Munmap(m.data); err != nil {
		return fmt.Errorf("%w: %v", ErrFileMap, err)
	}
	m.data = nil
	return nil
}
