package uasset

import "fmt"

// ReferenceIndex encodes an object reference as a single signed integer:
// zero is null, positive is a one-based slot in the export table, negative is
// a one-based slot in the import table (negated). Raw index values are kept
// as read and only dereferenced at the point of use, because directory
// entries may reference slots that are not materialized yet during the
// directory read.
type ReferenceIndex int32

const NullReference ReferenceIndex = 0

// ExportRef encodes a zero-based export slot.
func ExportRef(slot int) ReferenceIndex {
	return ReferenceIndex(slot + 1)
}

// ImportRef encodes a zero-based import slot.
func ImportRef(slot int) ReferenceIndex {
	return ReferenceIndex(-(slot + 1))
}

func (r ReferenceIndex) IsNull() bool   { return r == 0 }
func (r ReferenceIndex) IsExport() bool { return r > 0 }
func (r ReferenceIndex) IsImport() bool { return r < 0 }

// ResolvedObject is the identity a ReferenceIndex dereferences to.
type ResolvedObject struct {
	Import *Import
	Export *Export
}

func (o ResolvedObject) ObjectName() NameRef {
	switch {
	case o.Import != nil:
		return o.Import.ObjectName
	case o.Export != nil:
		return o.Export.ObjectName
	default:
		return NameRef{}
	}
}

// Resolve dereferences r against the given tables. O(1), no caching, total
// for every index a valid container actually stores.
func (r ReferenceIndex) Resolve(imports []Import, exports []Export) (ResolvedObject, error) {
	switch {
	case r == 0:
		return ResolvedObject{}, nil
	case r > 0:
		slot := int(r) - 1
		if slot >= len(exports) {
			return ResolvedObject{}, fmt.Errorf("export index %d of %d: %w", r, len(exports), ErrInvalidReferenceIndex)
		}
		return ResolvedObject{Export: &exports[slot]}, nil
	default:
		slot := int(-r) - 1
		if slot >= len(imports) {
			return ResolvedObject{}, fmt.Errorf("import index %d of %d: %w", r, len(imports), ErrInvalidReferenceIndex)
		}
		return ResolvedObject{Import: &imports[slot]}, nil
	}
}
