package lzx

import "fmt"

const infoHeaderSize = 10

// Info-header flags byte (offset 3), recorded but never acted on per
// spec.md's Non-goals ("no legacy encryption/damage-protection handling
// beyond recording it"). Grounded on original_source/src/lzx_handle.cc's
// INFO_DAMAGE_PROTECT/INFO_FLAG_LOCKED constants.
const (
	infoFlagDamageProtected = 1
	infoFlagLocked          = 2
)

// Archive is an opened LZX byte slice with its directory parsed. It is
// built once by Open and read-only thereafter (spec.md §3).
type Archive struct {
	data []byte

	damageProtected bool
	locked          bool

	order   []string
	entries map[string]*Entry
}

// Open validates the 10-byte info header and parses every entry header in
// the archive, building blocks and segment lists as it goes. It fails fast
// on the first parse error (spec.md §4.7).
func Open(data []byte) (*Archive, error) {
	return open(data, nil)
}

// OpenWithCache behaves like Open but wires a BlockCache (SPEC_FULL.md §3.3)
// so that blocks whose compressed bytes have already been decompressed by
// a prior Archive sharing the same cache skip re-decompression.
func OpenWithCache(data []byte, cache *BlockCache) (*Archive, error) {
	return open(data, cache)
}

func open(data []byte, cache *BlockCache) (*Archive, error) {
	if len(data) < infoHeaderSize {
		return nil, fmt.Errorf("%w: file shorter than info header", ErrNotLzxFile)
	}
	if string(data[0:3]) != "LZX" {
		return nil, fmt.Errorf("%w: bad magic", ErrNotLzxFile)
	}
	flags := data[3]

	a := &Archive{
		data:            data,
		damageProtected: flags&infoFlagDamageProtected != 0,
		locked:          flags&infoFlagLocked != 0,
		entries:         make(map[string]*Entry),
	}

	r := newBitReader(data)
	if _, err := r.skip(infoHeaderSize); err != nil {
		return nil, fmt.Errorf("%w: info header", ErrNotLzxFile)
	}

	sched := mergeScheduler{cache: cache}
	for {
		entry, err := parseEntry(r)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}
		if err := sched.add(entry, r); err != nil {
			return nil, err
		}
		if existing, exists := a.entries[entry.name]; exists {
			// Repeat of a name already seen: accumulate this entry's
			// segments under the first occurrence's key instead of
			// keeping a second, independent Entry (spec.md §4.7;
			// unlzx.cc's list_archive keeps one builders.at(filename)
			// per name and calls add_segment on it every time the name
			// recurs, regardless of repeats).
			existing.segments = append(existing.segments, entry.segments...)
		} else {
			a.entries[entry.name] = entry
			a.order = append(a.order, entry.name)
		}
	}
	if err := sched.finish(); err != nil {
		return nil, err
	}

	return a, nil
}

// DamageProtected reports the info header's damage-protection flag.
func (a *Archive) DamageProtected() bool { return a.damageProtected }

// Locked reports the info header's locked flag.
func (a *Archive) Locked() bool { return a.locked }

// Entries returns every entry in archive declaration order. A name that
// recurs keeps its first occurrence's header metadata, with every later
// occurrence's segments appended onto it (spec.md §4.7).
func (a *Archive) Entries() []*Entry {
	out := make([]*Entry, len(a.order))
	for i, name := range a.order {
		out[i] = a.entries[name]
	}
	return out
}

// Entry looks up one entry by name.
func (a *Archive) Entry(name string) (*Entry, bool) {
	e, ok := a.entries[name]
	return e, ok
}

// Bytes returns the contiguous decompressed bytes of e, concatenating its
// segments in declaration order and triggering block decompression as
// needed (spec.md §4.7).
func (e *Entry) Bytes() ([]byte, error) {
	if len(e.segments) == 1 {
		return e.segments[0].Bytes()
	}
	out := make([]byte, 0, e.unpackSize)
	for _, seg := range e.segments {
		b, err := seg.Bytes()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}
