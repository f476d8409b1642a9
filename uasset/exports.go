package uasset

import (
	"fmt"

	"golang.org/x/exp/slices"

	"uasset-go/memory"
)

// Export flags.
const (
	ExportFlagAssetPackage    uint32 = 1 << 0
	ExportFlagNotAlwaysLoaded uint32 = 1 << 1
)

// Export is one object defined in the container: the fixed directory record
// plus a variant payload whose structural kind is fixed at read time from the
// export's resolved class.
type Export struct {
	Class      ReferenceIndex
	Super      ReferenceIndex
	Template   ReferenceIndex
	Outer      ReferenceIndex
	ObjectName NameRef

	ObjectFlags  uint32
	SerialSize   int64
	SerialOffset int64
	ExportFlags  uint32

	Payload ExportPayload
}

// ExportPayload is the closed set of export structural variants.
type ExportPayload interface {
	VariantKind() string
}

// DataPayload is a plain property bag. Extras preserves any bytes between
// the last parsed field and the declared serial size, verbatim.
type DataPayload struct {
	Properties []Property
	Extras     []byte
}

func (DataPayload) VariantKind() string { return "Data" }

// LoadedProperty is one per-export property schema entry.
type LoadedProperty struct {
	Name     NameRef
	Type     NameRef
	ArrayDim int32
}

// Bytecode is the opaque script blob of a struct-bearing export. It is
// carried, never decoded; MemorySize is the declared in-memory size, which
// need not equal len(Data).
type Bytecode struct {
	MemorySize int32
	Data       []byte
}

// StructPayload is a struct-bearing export: field definitions plus script.
type StructPayload struct {
	Data             DataPayload
	SuperStruct      ReferenceIndex
	Children         []ReferenceIndex
	LoadedProperties []LoadedProperty
	Bytecode         Bytecode
}

func (StructPayload) VariantKind() string { return "Struct" }

// ClassPayload is a class definition export.
type ClassPayload struct {
	Struct     StructPayload
	ClassFlags uint32
	Within     ReferenceIndex
	ConfigName NameRef
}

func (ClassPayload) VariantKind() string { return "Class" }

type EnumMember struct {
	Name  NameRef
	Value int64
}

// EnumPayload is an enum definition export.
type EnumPayload struct {
	Data    DataPayload
	Members []EnumMember
}

func (EnumPayload) VariantKind() string { return "Enum" }

type exportCodec struct {
	read  func(a *Asset, c *memory.Cursor, e *Export) (ExportPayload, error)
	write func(a *Asset, w *memory.Writer, e *Export) error
}

// exportCodecs maps a variant discriminator to its codec pair. New variants
// are added here, never by subtyping.
var exportCodecs = map[string]exportCodec{
	"Data":   {readDataPayload, writeDataPayload},
	"Struct": {readStructPayload, writeStructPayload},
	"Class":  {readClassPayload, writeClassPayload},
	"Enum":   {readEnumPayload, writeEnumPayload},
}

var structClassNames = []string{"Function", "ScriptStruct", "UserDefinedStruct"}
var enumClassNames = []string{"Enum", "UserDefinedEnum"}

// exportVariant picks the structural variant from the export's resolved
// class. The choice is fixed at read time and reused verbatim on write.
func (a *Asset) exportVariant(e *Export) (string, error) {
	obj, err := e.Class.Resolve(a.Imports, a.Exports)
	if err != nil {
		return "", err
	}
	className := obj.ObjectName().Name
	switch {
	case className == "Class":
		return "Class", nil
	case slices.Contains(enumClassNames, className):
		return "Enum", nil
	case slices.Contains(structClassNames, className):
		return "Struct", nil
	default:
		return "Data", nil
	}
}

// readExportRecord reads one fixed-size directory entry. Raw reference
// indices are stored as read; nothing is dereferenced until the payload pass.
func (a *Asset) readExportRecord(c *memory.Cursor) (Export, error) {
	var e Export
	read := func(dst *ReferenceIndex) error {
		v, err := memory.Read[int32](c)
		*dst = ReferenceIndex(v)
		return err
	}
	if err := read(&e.Class); err != nil {
		return e, err
	}
	if err := read(&e.Super); err != nil {
		return e, err
	}
	if err := read(&e.Template); err != nil {
		return e, err
	}
	if err := read(&e.Outer); err != nil {
		return e, err
	}
	var err error
	if e.ObjectName, err = readNameRef(c, a.Names); err != nil {
		return e, err
	}
	if e.ObjectFlags, err = memory.Read[uint32](c); err != nil {
		return e, err
	}
	if e.SerialSize, err = memory.Read[int64](c); err != nil {
		return e, err
	}
	if e.SerialOffset, err = memory.Read[int64](c); err != nil {
		return e, err
	}
	if e.ExportFlags, err = memory.Read[uint32](c); err != nil {
		return e, err
	}
	return e, nil
}

func (a *Asset) writeExportRecord(w *memory.Writer, e *Export) (sizePos, offsetPos int) {
	memory.Write(w, int32(e.Class))
	memory.Write(w, int32(e.Super))
	memory.Write(w, int32(e.Template))
	memory.Write(w, int32(e.Outer))
	writeNameRef(w, a.Names, e.ObjectName)
	memory.Write(w, e.ObjectFlags)
	sizePos = w.Pos()
	memory.Write(w, e.SerialSize)
	offsetPos = w.Pos()
	memory.Write(w, e.SerialOffset)
	memory.Write(w, e.ExportFlags)
	return sizePos, offsetPos
}

// readExportPayload parses the payload span of one export. The cursor covers
// exactly the serial span; leftover bytes are preserved as Extras.
func (a *Asset) readExportPayload(c *memory.Cursor, e *Export) error {
	variant, err := a.exportVariant(e)
	if err != nil {
		return err
	}
	payload, err := exportCodecs[variant].read(a, c, e)
	if err != nil {
		return err
	}
	e.Payload = payload
	return nil
}

func (a *Asset) writeExportPayload(w *memory.Writer, e *Export) error {
	variant, err := a.exportVariant(e)
	if err != nil {
		return err
	}
	if e.Payload == nil || e.Payload.VariantKind() != variant {
		return fmt.Errorf("export %s payload is %T, class dictates %s variant: %w",
			e.ObjectName, e.Payload, variant, ErrMalformedContainer)
	}
	return exportCodecs[variant].write(a, w, e)
}

// readPropertyBag selects the container-wide property path once: tagged when
// the container is versioned, schema-positional otherwise.
func (a *Asset) readPropertyBag(c *memory.Cursor, e *Export) ([]Property, error) {
	if a.Unversioned() {
		obj, err := e.Class.Resolve(a.Imports, a.Exports)
		if err != nil {
			return nil, err
		}
		return a.readUnversionedProperties(c, obj.ObjectName().Name)
	}
	return a.readTaggedProperties(c)
}

func (a *Asset) writePropertyBag(w *memory.Writer, e *Export, props []Property) error {
	if a.Unversioned() {
		obj, err := e.Class.Resolve(a.Imports, a.Exports)
		if err != nil {
			return err
		}
		return a.writeUnversionedProperties(w, obj.ObjectName().Name, props)
	}
	return a.writeTaggedProperties(w, props)
}

func readDataPayload(a *Asset, c *memory.Cursor, e *Export) (ExportPayload, error) {
	props, err := a.readPropertyBag(c, e)
	if err != nil {
		return nil, err
	}
	extras, err := c.ReadBytes(c.Remaining())
	if err != nil {
		return nil, err
	}
	return DataPayload{Properties: props, Extras: extras}, nil
}

func writeDataPayload(a *Asset, w *memory.Writer, e *Export) error {
	p := e.Payload.(DataPayload)
	if err := a.writePropertyBag(w, e, p.Properties); err != nil {
		return err
	}
	w.WriteBytes(p.Extras)
	return nil
}

func readStructPayload(a *Asset, c *memory.Cursor, e *Export) (ExportPayload, error) {
	p, err := a.readStructPart(c, e)
	if err != nil {
		return nil, err
	}
	if p.Data.Extras, err = c.ReadBytes(c.Remaining()); err != nil {
		return nil, err
	}
	return *p, nil
}

// readStructPart reads the struct-bearing body shared by struct and class
// exports, honoring the child-field and loaded-property gates.
func (a *Asset) readStructPart(c *memory.Cursor, e *Export) (*StructPayload, error) {
	var p StructPayload
	props, err := a.readPropertyBag(c, e)
	if err != nil {
		return nil, err
	}
	p.Data.Properties = props

	super, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}
	p.SuperStruct = ReferenceIndex(super)

	if a.Versions.HasCountedChildFields() {
		count, err := memory.Read[int32](c)
		if err != nil {
			return nil, err
		}
		if count < 0 {
			return nil, fmt.Errorf("child field count %d: %w", count, ErrMalformedContainer)
		}
		if count > 0 {
			p.Children = make([]ReferenceIndex, count)
		}
		for i := range p.Children {
			v, err := memory.Read[int32](c)
			if err != nil {
				return nil, err
			}
			p.Children[i] = ReferenceIndex(v)
		}
	} else {
		// oldest layout: a single optional head reference
		head, err := memory.Read[int32](c)
		if err != nil {
			return nil, err
		}
		if head != 0 {
			p.Children = []ReferenceIndex{ReferenceIndex(head)}
		}
	}

	if a.Versions.HasLoadedProperties() {
		count, err := memory.Read[int32](c)
		if err != nil {
			return nil, err
		}
		if count < 0 {
			return nil, fmt.Errorf("loaded property count %d: %w", count, ErrMalformedContainer)
		}
		if count > 0 {
			p.LoadedProperties = make([]LoadedProperty, count)
		}
		for i := range p.LoadedProperties {
			lp := &p.LoadedProperties[i]
			if lp.Name, err = readNameRef(c, a.Names); err != nil {
				return nil, err
			}
			if lp.Type, err = readNameRef(c, a.Names); err != nil {
				return nil, err
			}
			if lp.ArrayDim, err = memory.Read[int32](c); err != nil {
				return nil, err
			}
		}
	}

	if p.Bytecode.MemorySize, err = memory.Read[int32](c); err != nil {
		return nil, err
	}
	length, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("bytecode length %d: %w", length, ErrMalformedContainer)
	}
	if p.Bytecode.Data, err = c.ReadBytes(int(length)); err != nil {
		return nil, err
	}
	return &p, nil
}

func writeStructPayload(a *Asset, w *memory.Writer, e *Export) error {
	p := e.Payload.(StructPayload)
	if err := a.writeStructPart(w, e, &p); err != nil {
		return err
	}
	w.WriteBytes(p.Data.Extras)
	return nil
}

// writeStructPart re-derives the gated forms from the version registry, never
// from which form happened to be in memory, so a container read under an old
// revision rewrites internally consistent.
func (a *Asset) writeStructPart(w *memory.Writer, e *Export, p *StructPayload) error {
	if err := a.writePropertyBag(w, e, p.Data.Properties); err != nil {
		return err
	}
	memory.Write(w, int32(p.SuperStruct))

	if a.Versions.HasCountedChildFields() {
		memory.Write(w, int32(len(p.Children)))
		for _, child := range p.Children {
			memory.Write(w, int32(child))
		}
	} else {
		switch len(p.Children) {
		case 0:
			memory.Write(w, int32(0))
		case 1:
			memory.Write(w, int32(p.Children[0]))
		default:
			return fmt.Errorf("%d child fields need the counted layout: %w", len(p.Children), ErrMalformedContainer)
		}
	}

	if a.Versions.HasLoadedProperties() {
		memory.Write(w, int32(len(p.LoadedProperties)))
		for _, lp := range p.LoadedProperties {
			writeNameRef(w, a.Names, lp.Name)
			writeNameRef(w, a.Names, lp.Type)
			memory.Write(w, lp.ArrayDim)
		}
	} else if len(p.LoadedProperties) > 0 {
		return fmt.Errorf("loaded properties present below their feature revision: %w", ErrMalformedContainer)
	}

	memory.Write(w, p.Bytecode.MemorySize)
	memory.Write(w, int32(len(p.Bytecode.Data)))
	w.WriteBytes(p.Bytecode.Data)
	return nil
}

func readClassPayload(a *Asset, c *memory.Cursor, e *Export) (ExportPayload, error) {
	part, err := a.readStructPart(c, e)
	if err != nil {
		return nil, err
	}
	p := ClassPayload{Struct: *part}
	if p.ClassFlags, err = memory.Read[uint32](c); err != nil {
		return nil, err
	}
	within, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}
	p.Within = ReferenceIndex(within)
	if p.ConfigName, err = readNameRef(c, a.Names); err != nil {
		return nil, err
	}
	if p.Struct.Data.Extras, err = c.ReadBytes(c.Remaining()); err != nil {
		return nil, err
	}
	return p, nil
}

func writeClassPayload(a *Asset, w *memory.Writer, e *Export) error {
	p := e.Payload.(ClassPayload)
	if err := a.writeStructPart(w, e, &p.Struct); err != nil {
		return err
	}
	memory.Write(w, p.ClassFlags)
	memory.Write(w, int32(p.Within))
	writeNameRef(w, a.Names, p.ConfigName)
	w.WriteBytes(p.Struct.Data.Extras)
	return nil
}

func readEnumPayload(a *Asset, c *memory.Cursor, e *Export) (ExportPayload, error) {
	var p EnumPayload
	props, err := a.readPropertyBag(c, e)
	if err != nil {
		return nil, err
	}
	p.Data.Properties = props
	count, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("enum member count %d: %w", count, ErrMalformedContainer)
	}
	if count > 0 {
		p.Members = make([]EnumMember, count)
	}
	for i := range p.Members {
		if p.Members[i].Name, err = readNameRef(c, a.Names); err != nil {
			return nil, err
		}
		if p.Members[i].Value, err = memory.Read[int64](c); err != nil {
			return nil, err
		}
	}
	if p.Data.Extras, err = c.ReadBytes(c.Remaining()); err != nil {
		return nil, err
	}
	return p, nil
}

func writeEnumPayload(a *Asset, w *memory.Writer, e *Export) error {
	p := e.Payload.(EnumPayload)
	if err := a.writePropertyBag(w, e, p.Data.Properties); err != nil {
		return err
	}
	memory.Write(w, int32(len(p.Members)))
	for _, member := range p.Members {
		writeNameRef(w, a.Names, member.Name)
		memory.Write(w, member.Value)
	}
	w.WriteBytes(p.Data.Extras)
	return nil
}
