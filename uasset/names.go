package uasset

import (
	"fmt"

	"uasset-go/memory"
	"uasset-go/ue"
)

// NameEntry is one interned string plus an optional case-preservation hash
// that newer containers store per entry. The hash is carried, never computed
// or checked.
type NameEntry struct {
	Name string
	Hash uint32
}

// NameTable is the container's deduplicated, order-preserving string table.
// Indices are positional, so entries are never removed or reordered.
type NameTable struct {
	entries []NameEntry
	lookup  map[string]int32
}

func NewNameTable() *NameTable {
	return &NameTable{lookup: map[string]int32{}}
}

// Intern returns the index of s, appending it if not yet present.
func (t *NameTable) Intern(s string) int32 {
	if idx, ok := t.lookup[s]; ok {
		return idx
	}
	idx := int32(len(t.entries))
	t.entries = append(t.entries, NameEntry{Name: s})
	t.lookup[s] = idx
	return idx
}

// Resolve returns the string at idx.
func (t *NameTable) Resolve(idx int32) (string, error) {
	if idx < 0 || int(idx) >= len(t.entries) {
		return "", fmt.Errorf("name index %d of %d: %w", idx, len(t.entries), ErrNameIndexOutOfRange)
	}
	return t.entries[idx].Name, nil
}

func (t *NameTable) Len() int {
	return len(t.entries)
}

// Entries returns the table in index order.
func (t *NameTable) Entries() []NameEntry {
	return t.entries
}

// SetHash attaches a preserved hash to an existing entry.
func (t *NameTable) SetHash(idx int32, hash uint32) error {
	if idx < 0 || int(idx) >= len(t.entries) {
		return fmt.Errorf("name index %d of %d: %w", idx, len(t.entries), ErrNameIndexOutOfRange)
	}
	t.entries[idx].Hash = hash
	return nil
}

func (t *NameTable) read(c *memory.Cursor, count int32, versions *ue.CustomVersionContainer) error {
	withHashes := versions.HasNameHashes()
	for i := int32(0); i < count; i++ {
		s, err := ue.ReadFString(c)
		if err != nil {
			return err
		}
		// a duplicate interns to an earlier slot than this position
		idx := t.Intern(s)
		if int(idx) != int(i) {
			return fmt.Errorf("duplicate name table entry %q: %w", s, ErrMalformedContainer)
		}
		if withHashes {
			hash, err := memory.Read[uint32](c)
			if err != nil {
				return err
			}
			t.entries[idx].Hash = hash
		}
	}
	return nil
}

func (t *NameTable) write(w *memory.Writer, versions *ue.CustomVersionContainer) error {
	withHashes := versions.HasNameHashes()
	for _, e := range t.entries {
		if err := ue.WriteFString(w, e.Name); err != nil {
			return err
		}
		if withHashes {
			memory.Write(w, e.Hash)
		}
	}
	return nil
}

// NameRef identifies a name occurrence: the interned string plus the numeric
// instance suffix the source format attaches per use (Foo_1 is {Foo, 1}).
// On the wire it is a table index and the number; in memory the string is
// resolved eagerly so edits and the textual mirror work on names, not slots.
type NameRef struct {
	Name   string
	Number int32
}

func (n NameRef) String() string {
	if n.Number == 0 {
		return n.Name
	}
	return fmt.Sprintf("%s_%d", n.Name, n.Number)
}

func readNameRef(c *memory.Cursor, t *NameTable) (NameRef, error) {
	idx, err := memory.Read[int32](c)
	if err != nil {
		return NameRef{}, err
	}
	number, err := memory.Read[int32](c)
	if err != nil {
		return NameRef{}, err
	}
	name, err := t.Resolve(idx)
	if err != nil {
		return NameRef{}, err
	}
	return NameRef{Name: name, Number: number}, nil
}

func writeNameRef(w *memory.Writer, t *NameTable, n NameRef) {
	memory.Write(w, t.Intern(n.Name))
	memory.Write(w, n.Number)
}
