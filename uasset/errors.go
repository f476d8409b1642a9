package uasset

import "errors"

var (
	// ErrMalformedContainer means the header or directory tables are
	// structurally invalid. Fatal for the read.
	ErrMalformedContainer = errors.New("malformed container")
	// ErrInvalidReferenceIndex means a package index points outside the
	// import or export table. Never clamped.
	ErrInvalidReferenceIndex = errors.New("invalid reference index")
	// ErrNameIndexOutOfRange means a name index points outside the name
	// table. Never clamped.
	ErrNameIndexOutOfRange = errors.New("name index out of range")
	// ErrSchemaMismatch means unversioned resolution needed a struct or
	// enum the catalog does not define.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrMissingSchema means the container declares unversioned properties
	// but no schema catalog was supplied.
	ErrMissingSchema = errors.New("missing schema catalog")
	// ErrUnknownPropertyKind marks a tag kind the codec does not decode.
	// The value is preserved as an opaque blob; this is recorded, not fatal.
	ErrUnknownPropertyKind = errors.New("unknown property kind")
)
