package uasset

import (
	"fmt"

	"golang.org/x/exp/slices"

	"uasset-go/memory"
	"uasset-go/ue"
)

// The unversioned path stores no tags: value bytes are interpreted
// positionally from the schema chain of the export's class, most derived
// struct first. Field order and count must match the chain exactly.

func (a *Asset) readUnversionedProperties(c *memory.Cursor, className string) ([]Property, error) {
	chain, err := a.Schema.Chain(className)
	if err != nil {
		return nil, err
	}
	var props []Property
	for _, def := range chain {
		for i := range def.Fields {
			f := &def.Fields[i]
			value, err := a.readUnversionedField(c, f)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", def.Name, f.Name, err)
			}
			props = append(props, Property{
				Name:  NameRef{Name: f.Name},
				Type:  NameRef{Name: f.Kind.TypeName()},
				Value: value,
			})
		}
	}
	return props, nil
}

func (a *Asset) writeUnversionedProperties(w *memory.Writer, className string, props []Property) error {
	chain, err := a.Schema.Chain(className)
	if err != nil {
		return err
	}
	next := 0
	for _, def := range chain {
		for i := range def.Fields {
			f := &def.Fields[i]
			if next >= len(props) {
				return fmt.Errorf("%d properties for schema chain of %q needing more: %w",
					len(props), className, ErrSchemaMismatch)
			}
			p := &props[next]
			next++
			if err := a.writeUnversionedField(w, f, p.Value); err != nil {
				return fmt.Errorf("field %s.%s: %w", def.Name, f.Name, err)
			}
		}
	}
	if next != len(props) {
		return fmt.Errorf("%d properties for schema chain of %q needing %d: %w",
			len(props), className, next, ErrSchemaMismatch)
	}
	return nil
}

// readUnversionedField applies the fixed-repetition rule: arrayDim above one
// reads that many values back to back, with no length prefix.
func (a *Asset) readUnversionedField(c *memory.Cursor, f *FieldSchema) (PropertyValue, error) {
	if f.ArrayDim > 1 {
		av := ArrayValue{
			InnerType: NameRef{Name: f.Kind.TypeName()},
			Fixed:     true,
			Elements:  make([]PropertyValue, f.ArrayDim),
		}
		for i := range av.Elements {
			var err error
			if av.Elements[i], err = a.readUnversionedScalar(c, f); err != nil {
				return nil, err
			}
		}
		return av, nil
	}
	return a.readUnversionedScalar(c, f)
}

func (a *Asset) writeUnversionedField(w *memory.Writer, f *FieldSchema, v PropertyValue) error {
	if f.ArrayDim > 1 {
		av, err := valueType[ArrayValue](v)
		if err != nil {
			return err
		}
		if !av.Fixed || int32(len(av.Elements)) != f.ArrayDim {
			return fmt.Errorf("fixed array of %d holds %d elements: %w", f.ArrayDim, len(av.Elements), ErrSchemaMismatch)
		}
		for _, elem := range av.Elements {
			if err := a.writeUnversionedScalar(w, f, elem); err != nil {
				return err
			}
		}
		return nil
	}
	return a.writeUnversionedScalar(w, f, v)
}

func (a *Asset) readUnversionedScalar(c *memory.Cursor, f *FieldSchema) (PropertyValue, error) {
	switch f.Kind {
	case KindBool:
		b, err := memory.Read[uint8](c)
		return BoolValue(b != 0), err
	case KindInt8:
		v, err := memory.Read[int8](c)
		return Int8Value(v), err
	case KindInt16:
		v, err := memory.Read[int16](c)
		return Int16Value(v), err
	case KindInt:
		v, err := memory.Read[int32](c)
		return IntValue(v), err
	case KindInt64:
		v, err := memory.Read[int64](c)
		return Int64Value(v), err
	case KindUInt16:
		v, err := memory.Read[uint16](c)
		return UInt16Value(v), err
	case KindUInt32:
		v, err := memory.Read[uint32](c)
		return UInt32Value(v), err
	case KindUInt64:
		v, err := memory.Read[uint64](c)
		return UInt64Value(v), err
	case KindFloat:
		v, err := memory.Read[float32](c)
		return FloatValue(v), err
	case KindDouble:
		v, err := memory.Read[float64](c)
		return DoubleValue(v), err
	case KindStr:
		s, err := ue.ReadFString(c)
		return StrValue(s), err
	case KindName:
		n, err := readNameRef(c, a.Names)
		return NameValue(n), err
	case KindObject:
		idx, err := memory.Read[int32](c)
		return ObjectValue(idx), err
	case KindSoftObject:
		return readRawSoftObject(a, c, rawContext{})
	case KindByte:
		b, err := memory.Read[uint8](c)
		if err != nil {
			return nil, err
		}
		if f.EnumName == "" {
			return ByteValue{EnumType: NameRef{Name: noneName}, Plain: true, Value: b}, nil
		}
		member, err := a.enumMember(f.EnumName, b)
		if err != nil {
			return nil, err
		}
		return ByteValue{EnumType: NameRef{Name: f.EnumName}, Member: NameRef{Name: member}}, nil
	case KindEnum:
		b, err := memory.Read[uint8](c)
		if err != nil {
			return nil, err
		}
		member, err := a.enumMember(f.EnumName, b)
		if err != nil {
			return nil, err
		}
		return EnumValue{EnumType: NameRef{Name: f.EnumName}, Member: NameRef{Name: member}}, nil
	case KindArray:
		count, err := memory.Read[uint32](c)
		if err != nil {
			return nil, err
		}
		av := ArrayValue{InnerType: NameRef{Name: f.Inner.Kind.TypeName()}}
		if count > 0 {
			av.Elements = make([]PropertyValue, count)
		}
		if f.Inner.Kind == KindStruct {
			av.StructElemType = NameRef{Name: f.Inner.StructName}
		}
		for i := range av.Elements {
			if av.Elements[i], err = a.readUnversionedScalar(c, f.Inner); err != nil {
				return nil, err
			}
		}
		return av, nil
	case KindSet:
		removed, err := memory.Read[int32](c)
		if err != nil {
			return nil, err
		}
		count, err := memory.Read[uint32](c)
		if err != nil {
			return nil, err
		}
		sv := SetValue{InnerType: NameRef{Name: f.Inner.Kind.TypeName()}, RemovedCount: removed}
		if count > 0 {
			sv.Elements = make([]PropertyValue, count)
		}
		for i := range sv.Elements {
			if sv.Elements[i], err = a.readUnversionedScalar(c, f.Inner); err != nil {
				return nil, err
			}
		}
		return sv, nil
	case KindMap:
		removed, err := memory.Read[int32](c)
		if err != nil {
			return nil, err
		}
		count, err := memory.Read[uint32](c)
		if err != nil {
			return nil, err
		}
		mv := MapValue{
			KeyType:      NameRef{Name: f.Inner.Kind.TypeName()},
			ValueType:    NameRef{Name: f.ValueInner.Kind.TypeName()},
			RemovedCount: removed,
		}
		if count > 0 {
			mv.Pairs = make([]MapPair, count)
		}
		for i := range mv.Pairs {
			if mv.Pairs[i].Key, err = a.readUnversionedScalar(c, f.Inner); err != nil {
				return nil, err
			}
			if mv.Pairs[i].Value, err = a.readUnversionedScalar(c, f.ValueInner); err != nil {
				return nil, err
			}
		}
		return mv, nil
	case KindStruct:
		switch f.StructName {
		case "Guid", "Vector", "DateTime", "Timespan", "SoftObjectPath", "SoftClassPath":
			body, err := a.readStructBody(c, NameRef{Name: f.StructName})
			if err != nil {
				return nil, err
			}
			return StructValue{StructType: NameRef{Name: f.StructName}, Leaf: body.Leaf}, nil
		}
		fields, err := a.readUnversionedProperties(c, f.StructName)
		if err != nil {
			return nil, err
		}
		return StructValue{StructType: NameRef{Name: f.StructName}, Fields: fields}, nil
	default:
		return nil, fmt.Errorf("schema field kind %d: %w", f.Kind, ErrSchemaMismatch)
	}
}

func (a *Asset) writeUnversionedScalar(w *memory.Writer, f *FieldSchema, v PropertyValue) error {
	switch f.Kind {
	case KindBool, KindInt8, KindInt16, KindInt, KindInt64,
		KindUInt16, KindUInt32, KindUInt64, KindFloat, KindDouble,
		KindStr, KindName, KindObject, KindSoftObject:
		return writeRawValue(a, w, f.Kind.TypeName(), rawContext{}, v)
	case KindByte:
		b, err := valueType[ByteValue](v)
		if err != nil {
			return err
		}
		if f.EnumName == "" {
			if !b.Plain {
				return fmt.Errorf("byte field without enum holds member %s: %w", b.Member, ErrSchemaMismatch)
			}
			memory.Write(w, b.Value)
			return nil
		}
		idx, err := a.enumIndex(f.EnumName, b.Member.Name)
		if err != nil {
			return err
		}
		memory.Write(w, idx)
		return nil
	case KindEnum:
		e, err := valueType[EnumValue](v)
		if err != nil {
			return err
		}
		idx, err := a.enumIndex(f.EnumName, e.Member.Name)
		if err != nil {
			return err
		}
		memory.Write(w, idx)
		return nil
	case KindArray:
		av, err := valueType[ArrayValue](v)
		if err != nil {
			return err
		}
		memory.Write(w, uint32(len(av.Elements)))
		for _, elem := range av.Elements {
			if err := a.writeUnversionedScalar(w, f.Inner, elem); err != nil {
				return err
			}
		}
		return nil
	case KindSet:
		sv, err := valueType[SetValue](v)
		if err != nil {
			return err
		}
		memory.Write(w, sv.RemovedCount)
		memory.Write(w, uint32(len(sv.Elements)))
		for _, elem := range sv.Elements {
			if err := a.writeUnversionedScalar(w, f.Inner, elem); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		mv, err := valueType[MapValue](v)
		if err != nil {
			return err
		}
		memory.Write(w, mv.RemovedCount)
		memory.Write(w, uint32(len(mv.Pairs)))
		for _, pair := range mv.Pairs {
			if err := a.writeUnversionedScalar(w, f.Inner, pair.Key); err != nil {
				return err
			}
			if err := a.writeUnversionedScalar(w, f.ValueInner, pair.Value); err != nil {
				return err
			}
		}
		return nil
	case KindStruct:
		sv, err := valueType[StructValue](v)
		if err != nil {
			return err
		}
		if sv.Leaf != nil {
			return a.writeStructBody(w, sv)
		}
		return a.writeUnversionedProperties(w, f.StructName, sv.Fields)
	default:
		return fmt.Errorf("schema field kind %d: %w", f.Kind, ErrSchemaMismatch)
	}
}

func (a *Asset) enumMember(enumName string, idx uint8) (string, error) {
	members, err := a.Schema.Enum(enumName)
	if err != nil {
		return "", err
	}
	if int(idx) >= len(members) {
		return "", fmt.Errorf("enum %q member %d of %d: %w", enumName, idx, len(members), ErrSchemaMismatch)
	}
	return members[idx], nil
}

func (a *Asset) enumIndex(enumName, member string) (uint8, error) {
	members, err := a.Schema.Enum(enumName)
	if err != nil {
		return 0, err
	}
	idx := slices.Index(members, member)
	if idx < 0 {
		return 0, fmt.Errorf("enum %q has no member %q: %w", enumName, member, ErrSchemaMismatch)
	}
	return uint8(idx), nil
}
