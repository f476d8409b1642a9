package uasset

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"uasset-go/memory"
	"uasset-go/ue"
)

// FieldKind is the wire discriminator for a schema field descriptor.
type FieldKind uint8

const (
	KindBool FieldKind = iota
	KindInt8
	KindInt16
	KindInt
	KindInt64
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat
	KindDouble
	KindStr
	KindName
	KindObject
	KindSoftObject
	KindByte
	KindEnum
	KindArray
	KindSet
	KindMap
	KindStruct
)

// kindNames maps a FieldKind to the property type name used by the tagged
// path, so both paths produce values with identical discriminators.
var kindNames = map[FieldKind]string{
	KindBool:       "BoolProperty",
	KindInt8:       "Int8Property",
	KindInt16:      "Int16Property",
	KindInt:        "IntProperty",
	KindInt64:      "Int64Property",
	KindUInt16:     "UInt16Property",
	KindUInt32:     "UInt32Property",
	KindUInt64:     "UInt64Property",
	KindFloat:      "FloatProperty",
	KindDouble:     "DoubleProperty",
	KindStr:        "StrProperty",
	KindName:       "NameProperty",
	KindObject:     "ObjectProperty",
	KindSoftObject: "SoftObjectProperty",
	KindByte:       "ByteProperty",
	KindEnum:       "EnumProperty",
	KindArray:      "ArrayProperty",
	KindSet:        "SetProperty",
	KindMap:        "MapProperty",
	KindStruct:     "StructProperty",
}

func (k FieldKind) TypeName() string {
	return kindNames[k]
}

// FieldSchema describes one serialized field of a struct or class.
// ArrayDim greater than one means the value is a fixed-size repetition, not a
// length-prefixed array. Inner describes array/set elements and map keys;
// ValueInner describes map values.
type FieldSchema struct {
	Name       string
	Kind       FieldKind
	ArrayDim   int32
	StructName string
	EnumName   string
	Inner      *FieldSchema
	ValueInner *FieldSchema
}

// StructSchema is the ordered field layout of one struct or class.
type StructSchema struct {
	Name   string
	Super  string
	Fields []FieldSchema
}

// SchemaCatalog holds externally supplied struct and enum layouts. It is
// immutable after load and safe to share read-only across workers.
type SchemaCatalog struct {
	enums   map[string][]string
	structs map[string]*StructSchema
}

func NewSchemaCatalog() *SchemaCatalog {
	return &SchemaCatalog{
		enums:   map[string][]string{},
		structs: map[string]*StructSchema{},
	}
}

func (s *SchemaCatalog) AddEnum(name string, members []string) {
	s.enums[name] = members
}

func (s *SchemaCatalog) AddStruct(def *StructSchema) {
	s.structs[def.Name] = def
}

// Enum returns the ordered member names of an enum.
func (s *SchemaCatalog) Enum(name string) ([]string, error) {
	members, ok := s.enums[name]
	if !ok {
		return nil, fmt.Errorf("enum %q not in catalog: %w", name, ErrSchemaMismatch)
	}
	return members, nil
}

// Struct returns the layout of one struct.
func (s *SchemaCatalog) Struct(name string) (*StructSchema, error) {
	def, ok := s.structs[name]
	if !ok {
		return nil, fmt.Errorf("struct %q not in catalog: %w", name, ErrSchemaMismatch)
	}
	return def, nil
}

// Chain walks super references starting at name and returns the layouts from
// most derived to base. Serialization order follows this chain: the derived
// struct's fields come first. The result depends only on the catalog and the
// name, never on input bytes.
func (s *SchemaCatalog) Chain(name string) ([]*StructSchema, error) {
	var chain []*StructSchema
	for name != "" {
		def, err := s.Struct(name)
		if err != nil {
			return nil, err
		}
		chain = append(chain, def)
		if len(chain) > len(s.structs) {
			return nil, fmt.Errorf("super cycle at %q: %w", name, ErrSchemaMismatch)
		}
		name = def.Super
	}
	return chain, nil
}

const (
	schemaMagic   = uint16(0x30C4)
	schemaVersion = uint8(1)
)

// LoadSchemaCatalog parses a catalog file: header, name block, enum table,
// struct table. Everything else in the codec treats the result as read-only.
func LoadSchemaCatalog(data []byte) (*SchemaCatalog, error) {
	c := memory.NewCursor(data)

	magic, err := memory.Read[uint16](c)
	if err != nil {
		return nil, err
	}
	if magic != schemaMagic {
		return nil, fmt.Errorf("schema magic %#x: %w", magic, ErrMalformedContainer)
	}
	version, err := memory.Read[uint8](c)
	if err != nil {
		return nil, err
	}
	if version != schemaVersion {
		return nil, fmt.Errorf("schema version %d: %w", version, ErrMalformedContainer)
	}

	nameCount, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}
	if nameCount < 0 {
		return nil, fmt.Errorf("schema name count %d: %w", nameCount, ErrMalformedContainer)
	}
	names := make([]string, nameCount)
	for i := range names {
		if names[i], err = ue.ReadFString(c); err != nil {
			return nil, err
		}
	}
	resolve := func(idx int32) (string, error) {
		if idx < 0 || int(idx) >= len(names) {
			return "", fmt.Errorf("schema name index %d of %d: %w", idx, len(names), ErrNameIndexOutOfRange)
		}
		return names[idx], nil
	}

	catalog := NewSchemaCatalog()

	enumCount, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < enumCount; i++ {
		nameIdx, err := memory.Read[int32](c)
		if err != nil {
			return nil, err
		}
		name, err := resolve(nameIdx)
		if err != nil {
			return nil, err
		}
		memberCount, err := memory.Read[int32](c)
		if err != nil {
			return nil, err
		}
		var members []string
		if memberCount > 0 {
			members = make([]string, memberCount)
		}
		for j := range members {
			memberIdx, err := memory.Read[int32](c)
			if err != nil {
				return nil, err
			}
			if members[j], err = resolve(memberIdx); err != nil {
				return nil, err
			}
		}
		catalog.AddEnum(name, members)
	}

	structCount, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < structCount; i++ {
		def := &StructSchema{}
		nameIdx, err := memory.Read[int32](c)
		if err != nil {
			return nil, err
		}
		if def.Name, err = resolve(nameIdx); err != nil {
			return nil, err
		}
		superIdx, err := memory.Read[int32](c)
		if err != nil {
			return nil, err
		}
		if superIdx >= 0 {
			if def.Super, err = resolve(superIdx); err != nil {
				return nil, err
			}
		}
		fieldCount, err := memory.Read[int32](c)
		if err != nil {
			return nil, err
		}
		if fieldCount > 0 {
			def.Fields = make([]FieldSchema, fieldCount)
		}
		for j := range def.Fields {
			field, err := readFieldSchema(c, resolve)
			if err != nil {
				return nil, err
			}
			def.Fields[j] = *field
		}
		catalog.AddStruct(def)
	}

	return catalog, nil
}

func readFieldSchema(c *memory.Cursor, resolve func(int32) (string, error)) (*FieldSchema, error) {
	f := &FieldSchema{}
	nameIdx, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}
	if nameIdx >= 0 {
		if f.Name, err = resolve(nameIdx); err != nil {
			return nil, err
		}
	}
	kind, err := memory.Read[uint8](c)
	if err != nil {
		return nil, err
	}
	f.Kind = FieldKind(kind)
	if _, ok := kindNames[f.Kind]; !ok {
		return nil, fmt.Errorf("schema field kind %d: %w", kind, ErrMalformedContainer)
	}
	if f.ArrayDim, err = memory.Read[int32](c); err != nil {
		return nil, err
	}
	switch f.Kind {
	case KindStruct:
		idx, err := memory.Read[int32](c)
		if err != nil {
			return nil, err
		}
		if f.StructName, err = resolve(idx); err != nil {
			return nil, err
		}
	case KindByte, KindEnum:
		idx, err := memory.Read[int32](c)
		if err != nil {
			return nil, err
		}
		if idx >= 0 {
			if f.EnumName, err = resolve(idx); err != nil {
				return nil, err
			}
		}
	case KindArray, KindSet:
		if f.Inner, err = readFieldSchema(c, resolve); err != nil {
			return nil, err
		}
	case KindMap:
		if f.Inner, err = readFieldSchema(c, resolve); err != nil {
			return nil, err
		}
		if f.ValueInner, err = readFieldSchema(c, resolve); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// SaveSchemaCatalog serializes a catalog. Enums and structs are emitted in
// sorted name order so the output is deterministic.
func SaveSchemaCatalog(s *SchemaCatalog) ([]byte, error) {
	w := memory.NewWriter()
	memory.Write(w, schemaMagic)
	memory.Write(w, schemaVersion)

	var names []string
	lookup := map[string]int32{}
	intern := func(name string) int32 {
		if idx, ok := lookup[name]; ok {
			return idx
		}
		idx := int32(len(names))
		names = append(names, name)
		lookup[name] = idx
		return idx
	}

	enumNames := maps.Keys(s.enums)
	slices.Sort(enumNames)
	structNames := maps.Keys(s.structs)
	slices.Sort(structNames)

	for _, name := range enumNames {
		intern(name)
		for _, member := range s.enums[name] {
			intern(member)
		}
	}
	var internFields func(fields []FieldSchema)
	internFields = func(fields []FieldSchema) {
		for _, f := range fields {
			if f.Name != "" {
				intern(f.Name)
			}
			if f.StructName != "" {
				intern(f.StructName)
			}
			if f.EnumName != "" {
				intern(f.EnumName)
			}
			if f.Inner != nil {
				internFields([]FieldSchema{*f.Inner})
			}
			if f.ValueInner != nil {
				internFields([]FieldSchema{*f.ValueInner})
			}
		}
	}
	for _, name := range structNames {
		def := s.structs[name]
		intern(def.Name)
		if def.Super != "" {
			intern(def.Super)
		}
		internFields(def.Fields)
	}

	memory.Write(w, int32(len(names)))
	for _, name := range names {
		if err := ue.WriteFString(w, name); err != nil {
			return nil, err
		}
	}

	memory.Write(w, int32(len(enumNames)))
	for _, name := range enumNames {
		memory.Write(w, lookup[name])
		members := s.enums[name]
		memory.Write(w, int32(len(members)))
		for _, member := range members {
			memory.Write(w, lookup[member])
		}
	}

	var writeField func(f *FieldSchema)
	writeField = func(f *FieldSchema) {
		if f.Name == "" {
			memory.Write(w, int32(-1))
		} else {
			memory.Write(w, lookup[f.Name])
		}
		memory.Write(w, uint8(f.Kind))
		memory.Write(w, f.ArrayDim)
		switch f.Kind {
		case KindStruct:
			memory.Write(w, lookup[f.StructName])
		case KindByte, KindEnum:
			if f.EnumName == "" {
				memory.Write(w, int32(-1))
			} else {
				memory.Write(w, lookup[f.EnumName])
			}
		case KindArray, KindSet:
			writeField(f.Inner)
		case KindMap:
			writeField(f.Inner)
			writeField(f.ValueInner)
		}
	}

	memory.Write(w, int32(len(structNames)))
	for _, name := range structNames {
		def := s.structs[name]
		memory.Write(w, lookup[def.Name])
		if def.Super == "" {
			memory.Write(w, int32(-1))
		} else {
			memory.Write(w, lookup[def.Super])
		}
		memory.Write(w, int32(len(def.Fields)))
		for i := range def.Fields {
			writeField(&def.Fields[i])
		}
	}

	return w.Bytes(), nil
}
