package uasset

import (
	"fmt"

	"uasset-go/memory"
	"uasset-go/ue"
)

// rawContext carries the per-kind tag header data a raw value codec needs.
// Raw codecs handle header-less value bytes: tagged payloads, container
// elements and leaf struct layouts.
type rawContext struct {
	propName   NameRef
	enumType   NameRef
	structType NameRef
	structGuid ue.FGuid
	innerType  NameRef
	keyType    NameRef
	valueType  NameRef
}

type rawCodec struct {
	read  func(a *Asset, c *memory.Cursor, ctx rawContext) (PropertyValue, error)
	write func(a *Asset, w *memory.Writer, ctx rawContext, v PropertyValue) error
}

// rawValueCodecs maps a kind discriminator to its codec pair. Populated in
// init to break the recursion through struct and container values.
var rawValueCodecs map[string]rawCodec

func init() {
	rawValueCodecs = map[string]rawCodec{
		"BoolProperty":       {readRawBool, writeRawBool},
		"Int8Property":       {readRawInt8, writeRawInt8},
		"Int16Property":      {readRawInt16, writeRawInt16},
		"IntProperty":        {readRawInt, writeRawInt},
		"Int64Property":      {readRawInt64, writeRawInt64},
		"UInt16Property":     {readRawUInt16, writeRawUInt16},
		"UInt32Property":     {readRawUInt32, writeRawUInt32},
		"UInt64Property":     {readRawUInt64, writeRawUInt64},
		"FloatProperty":      {readRawFloat, writeRawFloat},
		"DoubleProperty":     {readRawDouble, writeRawDouble},
		"StrProperty":        {readRawStr, writeRawStr},
		"NameProperty":       {readRawName, writeRawName},
		"ObjectProperty":     {readRawObject, writeRawObject},
		"SoftObjectProperty": {readRawSoftObject, writeRawSoftObject},
		"ByteProperty":       {readRawByte, writeRawByte},
		"EnumProperty":       {readRawEnum, writeRawEnum},
		"ArrayProperty":      {readRawArray, writeRawArray},
		"SetProperty":        {readRawSet, writeRawSet},
		"MapProperty":        {readRawMap, writeRawMap},
		"StructProperty":     {readRawStruct, writeRawStruct},
	}
}

func valueType[T PropertyValue](v PropertyValue) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("property value is %T, want %T", v, zero)
	}
	return t, nil
}

// readTaggedProperties reads a self-describing property list terminated by
// the "None" sentinel name.
func (a *Asset) readTaggedProperties(c *memory.Cursor) ([]Property, error) {
	var props []Property
	for {
		p, err := a.readTaggedProperty(c)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return props, nil
		}
		props = append(props, *p)
	}
}

// readTaggedProperty reads one tag (name, kind, payload size, array index,
// kind-specific header) and its payload. An unrecognized kind is preserved
// as an opaque blob using the declared size to skip and recover.
func (a *Asset) readTaggedProperty(c *memory.Cursor) (*Property, error) {
	name, err := readNameRef(c, a.Names)
	if err != nil {
		return nil, err
	}
	if name.Name == noneName {
		return nil, nil
	}
	typ, err := readNameRef(c, a.Names)
	if err != nil {
		return nil, err
	}
	size, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("property %s payload size %d: %w", name, size, ErrMalformedContainer)
	}
	arrayIndex, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}

	ctx := rawContext{propName: name}
	switch typ.Name {
	case "BoolProperty":
		// booleans live in the tag itself; the payload is empty
		b, err := memory.Read[uint8](c)
		if err != nil {
			return nil, err
		}
		if err := readGuidFlag(c); err != nil {
			return nil, err
		}
		return &Property{Name: name, Type: typ, ArrayIndex: arrayIndex, Value: BoolValue(b != 0)}, nil
	case "ByteProperty", "EnumProperty":
		if ctx.enumType, err = readNameRef(c, a.Names); err != nil {
			return nil, err
		}
	case "ArrayProperty", "SetProperty":
		if ctx.innerType, err = readNameRef(c, a.Names); err != nil {
			return nil, err
		}
	case "MapProperty":
		if ctx.keyType, err = readNameRef(c, a.Names); err != nil {
			return nil, err
		}
		if ctx.valueType, err = readNameRef(c, a.Names); err != nil {
			return nil, err
		}
	case "StructProperty":
		if ctx.structType, err = readNameRef(c, a.Names); err != nil {
			return nil, err
		}
		if ctx.structGuid, err = ue.ReadGuid(c); err != nil {
			return nil, err
		}
	}
	if err := readGuidFlag(c); err != nil {
		return nil, err
	}

	start := c.Pos()
	var value PropertyValue
	if codec, ok := rawValueCodecs[typ.Name]; ok {
		if value, err = codec.read(a, c, ctx); err != nil {
			return nil, err
		}
		if c.Pos() != start+int(size) {
			return nil, fmt.Errorf("property %s consumed %d of %d payload bytes: %w",
				name, c.Pos()-start, size, ErrMalformedContainer)
		}
	} else {
		data, err := c.ReadBytes(int(size))
		if err != nil {
			return nil, err
		}
		value = UnknownValue{Data: data}
		a.Warnings = append(a.Warnings, fmt.Errorf("property %s kind %q: %w", name, typ.Name, ErrUnknownPropertyKind))
	}
	return &Property{Name: name, Type: typ, ArrayIndex: arrayIndex, Value: value}, nil
}

const noneName = "None"

func readGuidFlag(c *memory.Cursor) error {
	flag, err := memory.Read[uint8](c)
	if err != nil {
		return err
	}
	if flag != 0 {
		return fmt.Errorf("per-property guid flag %d: %w", flag, ErrMalformedContainer)
	}
	return nil
}

func (a *Asset) writeTaggedProperties(w *memory.Writer, props []Property) error {
	for i := range props {
		if err := a.writeTaggedProperty(w, &props[i]); err != nil {
			return err
		}
	}
	writeNameRef(w, a.Names, NameRef{Name: noneName})
	return nil
}

func (a *Asset) writeTaggedProperty(w *memory.Writer, p *Property) error {
	writeNameRef(w, a.Names, p.Name)
	writeNameRef(w, a.Names, p.Type)
	sizePos := w.Pos()
	memory.Write[int32](w, 0)
	memory.Write(w, p.ArrayIndex)

	ctx := rawContext{propName: p.Name}
	switch p.Type.Name {
	case "BoolProperty":
		b, err := valueType[BoolValue](p.Value)
		if err != nil {
			return err
		}
		var bits uint8
		if b {
			bits = 1
		}
		memory.Write(w, bits)
		memory.Write(w, uint8(0))
		return nil
	case "ByteProperty":
		b, err := valueType[ByteValue](p.Value)
		if err != nil {
			return err
		}
		ctx.enumType = b.EnumType
		writeNameRef(w, a.Names, b.EnumType)
	case "EnumProperty":
		e, err := valueType[EnumValue](p.Value)
		if err != nil {
			return err
		}
		ctx.enumType = e.EnumType
		writeNameRef(w, a.Names, e.EnumType)
	case "ArrayProperty":
		av, err := valueType[ArrayValue](p.Value)
		if err != nil {
			return err
		}
		ctx.innerType = av.InnerType
		writeNameRef(w, a.Names, av.InnerType)
	case "SetProperty":
		sv, err := valueType[SetValue](p.Value)
		if err != nil {
			return err
		}
		ctx.innerType = sv.InnerType
		writeNameRef(w, a.Names, sv.InnerType)
	case "MapProperty":
		mv, err := valueType[MapValue](p.Value)
		if err != nil {
			return err
		}
		ctx.keyType, ctx.valueType = mv.KeyType, mv.ValueType
		writeNameRef(w, a.Names, mv.KeyType)
		writeNameRef(w, a.Names, mv.ValueType)
	case "StructProperty":
		sv, err := valueType[StructValue](p.Value)
		if err != nil {
			return err
		}
		ctx.structType, ctx.structGuid = sv.StructType, sv.Guid
		writeNameRef(w, a.Names, sv.StructType)
		ue.WriteGuid(w, sv.Guid)
	}
	memory.Write(w, uint8(0))

	start := w.Pos()
	if unk, ok := p.Value.(UnknownValue); ok {
		w.WriteBytes(unk.Data)
	} else if codec, ok := rawValueCodecs[p.Type.Name]; ok {
		if err := codec.write(a, w, ctx, p.Value); err != nil {
			return err
		}
	} else {
		return fmt.Errorf("property %s kind %q has no codec and no opaque payload: %w",
			p.Name, p.Type.Name, ErrUnknownPropertyKind)
	}
	return memory.PatchAt(w, sizePos, int32(w.Pos()-start))
}

// -- scalar raw codecs

func readRawBool(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	b, err := memory.Read[uint8](c)
	if err != nil {
		return nil, err
	}
	return BoolValue(b != 0), nil
}

func writeRawBool(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	b, err := valueType[BoolValue](v)
	if err != nil {
		return err
	}
	var bits uint8
	if b {
		bits = 1
	}
	memory.Write(w, bits)
	return nil
}

func readRawInt8(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	v, err := memory.Read[int8](c)
	return Int8Value(v), err
}

func writeRawInt8(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	n, err := valueType[Int8Value](v)
	if err != nil {
		return err
	}
	memory.Write(w, int8(n))
	return nil
}

func readRawInt16(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	v, err := memory.Read[int16](c)
	return Int16Value(v), err
}

func writeRawInt16(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	n, err := valueType[Int16Value](v)
	if err != nil {
		return err
	}
	memory.Write(w, int16(n))
	return nil
}

func readRawInt(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	v, err := memory.Read[int32](c)
	return IntValue(v), err
}

func writeRawInt(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	n, err := valueType[IntValue](v)
	if err != nil {
		return err
	}
	memory.Write(w, int32(n))
	return nil
}

func readRawInt64(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	v, err := memory.Read[int64](c)
	return Int64Value(v), err
}

func writeRawInt64(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	n, err := valueType[Int64Value](v)
	if err != nil {
		return err
	}
	memory.Write(w, int64(n))
	return nil
}

func readRawUInt16(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	v, err := memory.Read[uint16](c)
	return UInt16Value(v), err
}

func writeRawUInt16(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	n, err := valueType[UInt16Value](v)
	if err != nil {
		return err
	}
	memory.Write(w, uint16(n))
	return nil
}

func readRawUInt32(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	v, err := memory.Read[uint32](c)
	return UInt32Value(v), err
}

func writeRawUInt32(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	n, err := valueType[UInt32Value](v)
	if err != nil {
		return err
	}
	memory.Write(w, uint32(n))
	return nil
}

func readRawUInt64(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	v, err := memory.Read[uint64](c)
	return UInt64Value(v), err
}

func writeRawUInt64(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	n, err := valueType[UInt64Value](v)
	if err != nil {
		return err
	}
	memory.Write(w, uint64(n))
	return nil
}

func readRawFloat(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	v, err := memory.Read[float32](c)
	return FloatValue(v), err
}

func writeRawFloat(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	n, err := valueType[FloatValue](v)
	if err != nil {
		return err
	}
	memory.Write(w, float32(n))
	return nil
}

func readRawDouble(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	v, err := memory.Read[float64](c)
	return DoubleValue(v), err
}

func writeRawDouble(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	n, err := valueType[DoubleValue](v)
	if err != nil {
		return err
	}
	memory.Write(w, float64(n))
	return nil
}

func readRawStr(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	s, err := ue.ReadFString(c)
	return StrValue(s), err
}

func writeRawStr(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	s, err := valueType[StrValue](v)
	if err != nil {
		return err
	}
	return ue.WriteFString(w, string(s))
}

func readRawName(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	n, err := readNameRef(c, a.Names)
	return NameValue(n), err
}

func writeRawName(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	n, err := valueType[NameValue](v)
	if err != nil {
		return err
	}
	writeNameRef(w, a.Names, NameRef(n))
	return nil
}

func readRawObject(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	idx, err := memory.Read[int32](c)
	return ObjectValue(idx), err
}

func writeRawObject(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	o, err := valueType[ObjectValue](v)
	if err != nil {
		return err
	}
	memory.Write(w, int32(o))
	return nil
}

func readRawSoftObject(a *Asset, c *memory.Cursor, _ rawContext) (PropertyValue, error) {
	path, err := ue.ReadFString(c)
	if err != nil {
		return nil, err
	}
	idx, err := memory.Read[uint32](c)
	if err != nil {
		return nil, err
	}
	return SoftObjectValue{Path: path, Index: idx}, nil
}

func writeRawSoftObject(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	so, err := valueType[SoftObjectValue](v)
	if err != nil {
		return err
	}
	if err := ue.WriteFString(w, so.Path); err != nil {
		return err
	}
	memory.Write(w, so.Index)
	return nil
}

func readRawByte(a *Asset, c *memory.Cursor, ctx rawContext) (PropertyValue, error) {
	if ctx.enumType.Name == "" || ctx.enumType.Name == noneName {
		b, err := memory.Read[uint8](c)
		if err != nil {
			return nil, err
		}
		return ByteValue{EnumType: NameRef{Name: noneName}, Plain: true, Value: b}, nil
	}
	member, err := readNameRef(c, a.Names)
	if err != nil {
		return nil, err
	}
	return ByteValue{EnumType: ctx.enumType, Member: member}, nil
}

func writeRawByte(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	b, err := valueType[ByteValue](v)
	if err != nil {
		return err
	}
	if b.Plain {
		memory.Write(w, b.Value)
		return nil
	}
	writeNameRef(w, a.Names, b.Member)
	return nil
}

func readRawEnum(a *Asset, c *memory.Cursor, ctx rawContext) (PropertyValue, error) {
	member, err := readNameRef(c, a.Names)
	if err != nil {
		return nil, err
	}
	return EnumValue{EnumType: ctx.enumType, Member: member}, nil
}

func writeRawEnum(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	e, err := valueType[EnumValue](v)
	if err != nil {
		return err
	}
	writeNameRef(w, a.Names, e.Member)
	return nil
}

// -- container raw codecs

func readRawArray(a *Asset, c *memory.Cursor, ctx rawContext) (PropertyValue, error) {
	count, err := memory.Read[uint32](c)
	if err != nil {
		return nil, err
	}
	av := ArrayValue{InnerType: ctx.innerType}

	if ctx.innerType.Name == "StructProperty" {
		// arrays of structs repeat a full inner tag header before the bodies
		if _, err = readNameRef(c, a.Names); err != nil { // property name again
			return nil, err
		}
		if _, err = readNameRef(c, a.Names); err != nil { // "StructProperty"
			return nil, err
		}
		if _, err = memory.Read[int32](c); err != nil { // bodies byte size
			return nil, err
		}
		if _, err = memory.Read[int32](c); err != nil { // array index
			return nil, err
		}
		if av.StructElemType, err = readNameRef(c, a.Names); err != nil {
			return nil, err
		}
		if av.StructGuid, err = ue.ReadGuid(c); err != nil {
			return nil, err
		}
		if err = readGuidFlag(c); err != nil {
			return nil, err
		}
		if count > 0 {
			av.Elements = make([]PropertyValue, count)
		}
		for i := range av.Elements {
			body, err := a.readStructBody(c, av.StructElemType)
			if err != nil {
				return nil, err
			}
			av.Elements[i] = StructValue{StructType: av.StructElemType, Guid: av.StructGuid, Leaf: body.Leaf, Fields: body.Fields}
		}
		return av, nil
	}

	if count > 0 {
		av.Elements = make([]PropertyValue, count)
	}
	for i := range av.Elements {
		if av.Elements[i], err = readRawValue(a, c, ctx.innerType.Name, rawContext{}); err != nil {
			return nil, err
		}
	}
	return av, nil
}

func writeRawArray(a *Asset, w *memory.Writer, ctx rawContext, v PropertyValue) error {
	av, err := valueType[ArrayValue](v)
	if err != nil {
		return err
	}
	memory.Write(w, uint32(len(av.Elements)))

	if av.InnerType.Name == "StructProperty" {
		writeNameRef(w, a.Names, ctx.propName)
		writeNameRef(w, a.Names, av.InnerType)
		sizePos := w.Pos()
		memory.Write[int32](w, 0)
		memory.Write[int32](w, 0)
		writeNameRef(w, a.Names, av.StructElemType)
		ue.WriteGuid(w, av.StructGuid)
		memory.Write(w, uint8(0))
		start := w.Pos()
		for _, elem := range av.Elements {
			sv, err := valueType[StructValue](elem)
			if err != nil {
				return err
			}
			if err := a.writeStructBody(w, sv); err != nil {
				return err
			}
		}
		return memory.PatchAt(w, sizePos, int32(w.Pos()-start))
	}

	for _, elem := range av.Elements {
		if err := writeRawValue(a, w, av.InnerType.Name, rawContext{}, elem); err != nil {
			return err
		}
	}
	return nil
}

func readRawSet(a *Asset, c *memory.Cursor, ctx rawContext) (PropertyValue, error) {
	removed, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}
	count, err := memory.Read[uint32](c)
	if err != nil {
		return nil, err
	}
	sv := SetValue{InnerType: ctx.innerType, RemovedCount: removed}
	if count > 0 {
		sv.Elements = make([]PropertyValue, count)
	}
	for i := range sv.Elements {
		if sv.Elements[i], err = readRawValue(a, c, ctx.innerType.Name, rawContext{}); err != nil {
			return nil, err
		}
	}
	return sv, nil
}

func writeRawSet(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	sv, err := valueType[SetValue](v)
	if err != nil {
		return err
	}
	memory.Write(w, sv.RemovedCount)
	memory.Write(w, uint32(len(sv.Elements)))
	for _, elem := range sv.Elements {
		if err := writeRawValue(a, w, sv.InnerType.Name, rawContext{}, elem); err != nil {
			return err
		}
	}
	return nil
}

func readRawMap(a *Asset, c *memory.Cursor, ctx rawContext) (PropertyValue, error) {
	removed, err := memory.Read[int32](c)
	if err != nil {
		return nil, err
	}
	count, err := memory.Read[uint32](c)
	if err != nil {
		return nil, err
	}
	mv := MapValue{KeyType: ctx.keyType, ValueType: ctx.valueType, RemovedCount: removed}
	if count > 0 {
		mv.Pairs = make([]MapPair, count)
	}
	for i := range mv.Pairs {
		if mv.Pairs[i].Key, err = readRawValue(a, c, ctx.keyType.Name, rawContext{}); err != nil {
			return nil, err
		}
		if mv.Pairs[i].Value, err = readRawValue(a, c, ctx.valueType.Name, rawContext{}); err != nil {
			return nil, err
		}
	}
	return mv, nil
}

func writeRawMap(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	mv, err := valueType[MapValue](v)
	if err != nil {
		return err
	}
	memory.Write(w, mv.RemovedCount)
	memory.Write(w, uint32(len(mv.Pairs)))
	for _, pair := range mv.Pairs {
		if err := writeRawValue(a, w, mv.KeyType.Name, rawContext{}, pair.Key); err != nil {
			return err
		}
		if err := writeRawValue(a, w, mv.ValueType.Name, rawContext{}, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

func readRawStruct(a *Asset, c *memory.Cursor, ctx rawContext) (PropertyValue, error) {
	body, err := a.readStructBody(c, ctx.structType)
	if err != nil {
		return nil, err
	}
	return StructValue{StructType: ctx.structType, Guid: ctx.structGuid, Leaf: body.Leaf, Fields: body.Fields}, nil
}

func writeRawStruct(a *Asset, w *memory.Writer, _ rawContext, v PropertyValue) error {
	sv, err := valueType[StructValue](v)
	if err != nil {
		return err
	}
	return a.writeStructBody(w, sv)
}

func readRawValue(a *Asset, c *memory.Cursor, typ string, ctx rawContext) (PropertyValue, error) {
	codec, ok := rawValueCodecs[typ]
	if !ok {
		return nil, fmt.Errorf("raw value kind %q: %w", typ, ErrUnknownPropertyKind)
	}
	return codec.read(a, c, ctx)
}

func writeRawValue(a *Asset, w *memory.Writer, typ string, ctx rawContext, v PropertyValue) error {
	codec, ok := rawValueCodecs[typ]
	if !ok {
		return fmt.Errorf("raw value kind %q: %w", typ, ErrUnknownPropertyKind)
	}
	return codec.write(a, w, ctx, v)
}

// readStructBody reads a struct payload without its surrounding tag: a known
// leaf layout when the struct name declares one, otherwise a nested tagged
// property list terminated by "None".
func (a *Asset) readStructBody(c *memory.Cursor, structType NameRef) (StructValue, error) {
	switch structType.Name {
	case "Guid":
		g, err := ue.ReadGuid(c)
		return StructValue{Leaf: GuidValue(g)}, err
	case "Vector":
		v, err := ue.ReadFVector(c)
		return StructValue{Leaf: VectorValue(v)}, err
	case "DateTime":
		ticks, err := memory.Read[int64](c)
		return StructValue{Leaf: DateTimeValue(ticks)}, err
	case "Timespan":
		ticks, err := memory.Read[int64](c)
		return StructValue{Leaf: TimespanValue(ticks)}, err
	case "SoftObjectPath", "SoftClassPath":
		leaf, err := readRawSoftObject(a, c, rawContext{})
		if err != nil {
			return StructValue{}, err
		}
		return StructValue{Leaf: leaf}, nil
	default:
		fields, err := a.readTaggedProperties(c)
		return StructValue{Fields: fields}, err
	}
}

func (a *Asset) writeStructBody(w *memory.Writer, sv StructValue) error {
	if sv.Leaf == nil {
		return a.writeTaggedProperties(w, sv.Fields)
	}
	switch leaf := sv.Leaf.(type) {
	case GuidValue:
		ue.WriteGuid(w, ue.FGuid(leaf))
	case VectorValue:
		ue.WriteFVector(w, ue.FVector(leaf))
	case DateTimeValue:
		memory.Write(w, int64(leaf))
	case TimespanValue:
		memory.Write(w, int64(leaf))
	case SoftObjectValue:
		return writeRawSoftObject(a, w, rawContext{}, leaf)
	default:
		return fmt.Errorf("struct %s has unsupported leaf %T", sv.StructType, sv.Leaf)
	}
	return nil
}
