package uasset

import (
	"bytes"
	"fmt"
	"reflect"

	"uasset-go/memory"
	"uasset-go/ue"
)

const (
	// PackageFileTag is the container magic.
	PackageFileTag = uint32(0x9E2A83C1)
	// SupportedFileVersion is the container format revision this codec
	// speaks. Layout differences within it are gated by custom versions,
	// never by this number.
	SupportedFileVersion = int32(1)
)

// Package flags.
const (
	// PkgUnversionedProperties marks a container whose property layout
	// comes from an external schema catalog instead of in-file tags.
	PkgUnversionedProperties uint32 = 0x2000
)

// Asset is one container: its name table, custom versions, directory tables
// and exported objects. One Asset is owned by a single task end to end; it is
// not safe for concurrent mutation. The schema catalog is non-owned, shared
// and read-only.
type Asset struct {
	FolderName   string
	PackageFlags uint32

	Names    *NameTable
	Versions *ue.CustomVersionContainer
	Imports  []Import
	Exports  []Export

	// Schema must be supplied before reading or writing payloads when
	// PkgUnversionedProperties is set.
	Schema *SchemaCatalog

	// Warnings collects recoverable conditions, like unknown property
	// kinds that were preserved as opaque blobs.
	Warnings []error

	source        []byte
	sourcePayload []byte
}

func NewAsset() *Asset {
	return &Asset{
		Names:    NewNameTable(),
		Versions: ue.NewCustomVersionContainer(),
	}
}

func (a *Asset) Unversioned() bool {
	return a.PackageFlags&PkgUnversionedProperties != 0
}

// Source returns the bytes the container was read from, if any.
func (a *Asset) Source() []byte {
	return a.source
}

// Read parses a single-file container. The schema may be nil unless the
// container declares unversioned properties; that precondition is checked
// before any payload is touched.
func Read(data []byte, schema *SchemaCatalog) (*Asset, error) {
	return readContainer(data, nil, schema)
}

// ReadSplit parses the split-payload layout: directory tables in one buffer,
// the payload region in a second. Export serial offsets are relative to the
// payload buffer. The logical model is identical to the single-file form.
func ReadSplit(directory, payload []byte, schema *SchemaCatalog) (*Asset, error) {
	if payload == nil {
		payload = []byte{}
	}
	return readContainer(directory, payload, schema)
}

func readContainer(directory, payload []byte, schema *SchemaCatalog) (*Asset, error) {
	split := payload != nil
	a := NewAsset()
	a.Schema = schema
	c := memory.NewCursor(directory)

	magic, err := memory.Read[uint32](c)
	if err != nil {
		return nil, err
	}
	if magic != PackageFileTag {
		return nil, fmt.Errorf("magic %#x: %w", magic, ErrMalformedContainer)
	}
	version, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}
	if version != SupportedFileVersion {
		return nil, fmt.Errorf("file version %d: %w", version, ErrMalformedContainer)
	}
	if err := a.Versions.Read(c); err != nil {
		return nil, fmt.Errorf("custom versions: %w", err)
	}
	if a.FolderName, err = ue.ReadFString(c); err != nil {
		return nil, err
	}
	if a.PackageFlags, err = memory.Read[uint32](c); err != nil {
		return nil, err
	}

	var counts [6]int32
	for i := range counts {
		if counts[i], err = memory.Read[int32](c); err != nil {
			return nil, err
		}
		if counts[i] < 0 {
			return nil, fmt.Errorf("negative header field %d: %w", counts[i], ErrMalformedContainer)
		}
	}
	nameCount, nameOffset := counts[0], counts[1]
	importCount, importOffset := counts[2], counts[3]
	exportCount, exportOffset := counts[4], counts[5]
	if _, err = memory.Read[int32](c); err != nil { // headerSize, informational
		return nil, err
	}

	// mandatory precondition, checked before any payload is read
	if a.Unversioned() && a.Schema == nil {
		return nil, fmt.Errorf("container declares unversioned properties: %w", ErrMissingSchema)
	}

	if err = c.Seek(int(nameOffset)); err != nil {
		return nil, err
	}
	if err = a.Names.read(c, nameCount, a.Versions); err != nil {
		return nil, err
	}

	if err = c.Seek(int(importOffset)); err != nil {
		return nil, err
	}
	if importCount > 0 {
		a.Imports = make([]Import, importCount)
	}
	for i := range a.Imports {
		if a.Imports[i], err = a.readImport(c); err != nil {
			return nil, err
		}
	}

	if err = c.Seek(int(exportOffset)); err != nil {
		return nil, err
	}
	if exportCount > 0 {
		a.Exports = make([]Export, exportCount)
	}
	for i := range a.Exports {
		if a.Exports[i], err = a.readExportRecord(c); err != nil {
			return nil, err
		}
	}

	// payload boundaries were captured during the directory read, so spans
	// can be parsed independently of directory order
	region := directory
	if split {
		region = payload
	}
	for i := range a.Exports {
		e := &a.Exports[i]
		off, size := e.SerialOffset, e.SerialSize
		// subtract instead of adding: off+size can overflow int64
		if off < 0 || size < 0 || size > int64(len(region)) || off > int64(len(region))-size {
			return nil, fmt.Errorf("export %s span %d+%d of %d: %w",
				e.ObjectName, off, size, len(region), ErrMalformedContainer)
		}
		span := memory.NewCursor(region[off : off+size])
		if err = a.readExportPayload(span, e); err != nil {
			return nil, fmt.Errorf("export %s: %w", e.ObjectName, err)
		}
	}

	a.source = directory
	if split {
		a.sourcePayload = payload
	}
	return a, nil
}

// Write serializes the container to the single-file layout.
func (a *Asset) Write() ([]byte, error) {
	out, _, err := a.write(false)
	return out, err
}

// WriteSplit serializes the directory and payload regions separately.
func (a *Asset) WriteSplit() (directory, payload []byte, err error) {
	return a.write(true)
}

// write emits payloads and directory blocks to scratch writers first, so
// every name they intern lands in the table before the name block is
// serialized, then assembles the blocks and backpatches offsets.
func (a *Asset) write(split bool) (directory, payload []byte, err error) {
	if a.Unversioned() && a.Schema == nil {
		return nil, nil, fmt.Errorf("container declares unversioned properties: %w", ErrMissingSchema)
	}

	pw := memory.NewWriter()
	for i := range a.Exports {
		e := &a.Exports[i]
		start := pw.Pos()
		if err := a.writeExportPayload(pw, e); err != nil {
			return nil, nil, fmt.Errorf("export %s: %w", e.ObjectName, err)
		}
		e.SerialOffset = int64(start)
		e.SerialSize = int64(pw.Pos() - start)
	}

	iw := memory.NewWriter()
	for i := range a.Imports {
		a.writeImport(iw, &a.Imports[i])
	}

	ew := memory.NewWriter()
	offsetPositions := make([]int, len(a.Exports))
	for i := range a.Exports {
		_, offsetPos := a.writeExportRecord(ew, &a.Exports[i])
		offsetPositions[i] = offsetPos
	}

	// the name table is final only after the scratch passes above
	nw := memory.NewWriter()
	if err := a.Names.write(nw, a.Versions); err != nil {
		return nil, nil, err
	}

	hw := memory.NewWriter()
	memory.Write(hw, PackageFileTag)
	memory.Write(hw, SupportedFileVersion)
	a.Versions.Write(hw)
	if err := ue.WriteFString(hw, a.FolderName); err != nil {
		return nil, nil, err
	}
	memory.Write(hw, a.PackageFlags)

	nameOffset := 0 // patched below
	memory.Write(hw, int32(a.Names.Len()))
	nameOffsetPos := hw.Pos()
	memory.Write(hw, int32(0))
	memory.Write(hw, int32(len(a.Imports)))
	importOffsetPos := hw.Pos()
	memory.Write(hw, int32(0))
	memory.Write(hw, int32(len(a.Exports)))
	exportOffsetPos := hw.Pos()
	memory.Write(hw, int32(0))
	headerSizePos := hw.Pos()
	memory.Write(hw, int32(0))

	nameOffset = hw.Pos()
	importOffset := nameOffset + nw.Pos()
	exportOffset := importOffset + iw.Pos()
	headerSize := exportOffset + ew.Pos()
	if err := memory.PatchAt(hw, nameOffsetPos, int32(nameOffset)); err != nil {
		return nil, nil, err
	}
	if err := memory.PatchAt(hw, importOffsetPos, int32(importOffset)); err != nil {
		return nil, nil, err
	}
	if err := memory.PatchAt(hw, exportOffsetPos, int32(exportOffset)); err != nil {
		return nil, nil, err
	}
	if err := memory.PatchAt(hw, headerSizePos, int32(headerSize)); err != nil {
		return nil, nil, err
	}

	payloadBase := int64(headerSize)
	if split {
		payloadBase = 0
	}
	for i := range a.Exports {
		e := &a.Exports[i]
		e.SerialOffset += payloadBase
		if err := memory.PatchAt(ew, offsetPositions[i], e.SerialOffset); err != nil {
			return nil, nil, err
		}
	}

	out := memory.NewWriter()
	out.WriteBytes(hw.Bytes())
	out.WriteBytes(nw.Bytes())
	out.WriteBytes(iw.Bytes())
	out.WriteBytes(ew.Bytes())
	if split {
		return out.Bytes(), pw.Bytes(), nil
	}
	out.WriteBytes(pw.Bytes())
	return out.Bytes(), nil, nil
}

// VerifyRoundTrip rewrites the container and compares against the bytes it
// was read from. A correctness oracle for unedited containers, not a runtime
// guarantee after edits.
func (a *Asset) VerifyRoundTrip() (bool, error) {
	if a.source == nil {
		return false, fmt.Errorf("container was not read from bytes")
	}
	if a.sourcePayload != nil {
		directory, payload, err := a.WriteSplit()
		if err != nil {
			return false, err
		}
		return bytes.Equal(directory, a.source) && bytes.Equal(payload, a.sourcePayload), nil
	}
	out, err := a.Write()
	if err != nil {
		return false, err
	}
	return bytes.Equal(out, a.source), nil
}

// Equal reports structural equality of the object graphs: same name table,
// versions, directory tables and property values, byte for byte on opaque
// blobs. Captured source bytes and schema references are not compared.
func (a *Asset) Equal(b *Asset) bool {
	return a.FolderName == b.FolderName &&
		a.PackageFlags == b.PackageFlags &&
		reflect.DeepEqual(a.Names.Entries(), b.Names.Entries()) &&
		reflect.DeepEqual(a.Versions.All(), b.Versions.All()) &&
		reflect.DeepEqual(a.Imports, b.Imports) &&
		reflect.DeepEqual(a.Exports, b.Exports)
}
