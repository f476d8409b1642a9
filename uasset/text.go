package uasset

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"uasset-go/ue"
)

// The textual mirror is a fully self-describing JSON document over the
// in-memory object graph. Every property value and export variant carries an
// explicit discriminator, and opaque blobs (unknown kinds, bytecode, extras)
// are base64-encoded verbatim, so fromText(toText(c)) is structurally equal
// to c. The mirror is independent of binary layout concerns: it never looks
// at offsets, sizes or version gates.

type assetDoc struct {
	FolderName     string             `json:"folderName"`
	PackageFlags   uint32             `json:"packageFlags"`
	CustomVersions []customVersionDoc `json:"customVersions"`
	Names          []nameEntryDoc     `json:"names"`
	Imports        []importDoc        `json:"imports"`
	Exports        []exportDoc        `json:"exports"`
}

type customVersionDoc struct {
	Key     string `json:"key"`
	Version int32  `json:"version"`
}

type nameEntryDoc struct {
	Name string `json:"name"`
	Hash uint32 `json:"hash,omitempty"`
}

type nameRefDoc struct {
	Name   string `json:"name"`
	Number int32  `json:"number,omitempty"`
}

type importDoc struct {
	ClassPackage nameRefDoc `json:"classPackage"`
	ClassName    nameRefDoc `json:"className"`
	Outer        int32      `json:"outer"`
	ObjectName   nameRefDoc `json:"objectName"`
	PackageName  nameRefDoc `json:"packageName"`
}

type exportDoc struct {
	Class        int32      `json:"class"`
	Super        int32      `json:"super"`
	Template     int32      `json:"template"`
	Outer        int32      `json:"outer"`
	ObjectName   nameRefDoc `json:"objectName"`
	ObjectFlags  uint32     `json:"objectFlags"`
	SerialSize   int64      `json:"serialSize"`
	SerialOffset int64      `json:"serialOffset"`
	ExportFlags  uint32     `json:"exportFlags"`

	Variant    string         `json:"$variant"`
	Properties []propertyDoc  `json:"properties"`
	Extras     []byte         `json:"extras"`
	Struct     *structPartDoc `json:"struct,omitempty"`
	ClassDef   *classPartDoc  `json:"classDef,omitempty"`
	Enum       *enumPartDoc   `json:"enum,omitempty"`
}

type structPartDoc struct {
	SuperStruct        int32               `json:"superStruct"`
	Children           []int32             `json:"children"`
	LoadedProperties   []loadedPropertyDoc `json:"loadedProperties"`
	BytecodeMemorySize int32               `json:"bytecodeMemorySize"`
	Bytecode           []byte              `json:"bytecode"`
}

type loadedPropertyDoc struct {
	Name     nameRefDoc `json:"name"`
	Type     nameRefDoc `json:"type"`
	ArrayDim int32      `json:"arrayDim"`
}

type classPartDoc struct {
	ClassFlags uint32     `json:"classFlags"`
	Within     int32      `json:"within"`
	ConfigName nameRefDoc `json:"configName"`
}

type enumPartDoc struct {
	Members []enumMemberDoc `json:"members"`
}

type enumMemberDoc struct {
	Name  nameRefDoc `json:"name"`
	Value int64      `json:"value"`
}

type propertyDoc struct {
	Name       nameRefDoc `json:"name"`
	Type       nameRefDoc `json:"type"`
	ArrayIndex int32      `json:"arrayIndex,omitempty"`
	Value      valueDoc   `json:"value"`
}

type pairDoc struct {
	Key   valueDoc `json:"key"`
	Value valueDoc `json:"value"`
}

// valueDoc is the explicit-discriminator form of every PropertyValue
// variant. Exactly the fields that the $type dictates are present.
type valueDoc struct {
	Kind string `json:"$type"`

	Bool  *bool       `json:"bool,omitempty"`
	Int   *int64      `json:"int,omitempty"`
	UInt  *uint64     `json:"uint,omitempty"`
	Float *float64    `json:"float,omitempty"`
	Str   *string     `json:"str,omitempty"`
	Name  *nameRefDoc `json:"name,omitempty"`

	Object    *int32  `json:"object,omitempty"`
	SoftPath  *string `json:"softPath,omitempty"`
	SoftIndex *uint32 `json:"softIndex,omitempty"`

	EnumType  *nameRefDoc `json:"enumType,omitempty"`
	Member    *nameRefDoc `json:"member,omitempty"`
	BytePlain *uint8      `json:"byte,omitempty"`

	InnerType      *nameRefDoc `json:"innerType,omitempty"`
	KeyType        *nameRefDoc `json:"keyType,omitempty"`
	ValueType      *nameRefDoc `json:"valueType,omitempty"`
	StructElemType *nameRefDoc `json:"structElemType,omitempty"`
	StructGuid     *string     `json:"structGuid,omitempty"`
	Fixed          bool        `json:"fixed,omitempty"`
	Removed        *int32      `json:"removed,omitempty"`
	Elements       []valueDoc  `json:"elements,omitempty"`
	Pairs          []pairDoc   `json:"pairs,omitempty"`

	StructType *nameRefDoc   `json:"structType,omitempty"`
	Guid       *string       `json:"guid,omitempty"`
	Fields     []propertyDoc `json:"fields,omitempty"`
	Leaf       *valueDoc     `json:"leaf,omitempty"`

	Vector *[3]float32 `json:"vector,omitempty"`
	Ticks  *int64      `json:"ticks,omitempty"`
	Raw    []byte      `json:"raw,omitempty"`
}

// ToText renders the container as its textual mirror.
func ToText(a *Asset) ([]byte, error) {
	doc := assetDoc{
		FolderName:   a.FolderName,
		PackageFlags: a.PackageFlags,
	}
	for _, v := range a.Versions.All() {
		doc.CustomVersions = append(doc.CustomVersions, customVersionDoc{Key: v.Key.String(), Version: v.Version})
	}
	for _, e := range a.Names.Entries() {
		doc.Names = append(doc.Names, nameEntryDoc{Name: e.Name, Hash: e.Hash})
	}
	for _, imp := range a.Imports {
		doc.Imports = append(doc.Imports, importDoc{
			ClassPackage: nameRefDoc(imp.ClassPackage),
			ClassName:    nameRefDoc(imp.ClassName),
			Outer:        int32(imp.Outer),
			ObjectName:   nameRefDoc(imp.ObjectName),
			PackageName:  nameRefDoc(imp.PackageName),
		})
	}
	for i := range a.Exports {
		ed, err := exportToDoc(&a.Exports[i])
		if err != nil {
			return nil, err
		}
		doc.Exports = append(doc.Exports, *ed)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FromText reconstructs a container from its textual mirror. The result
// carries no schema catalog reference; an unversioned container must be
// given one before Write.
func FromText(data []byte) (*Asset, error) {
	var doc assetDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse text document: %w", err)
	}
	a := NewAsset()
	a.FolderName = doc.FolderName
	a.PackageFlags = doc.PackageFlags
	for _, v := range doc.CustomVersions {
		key, err := uuid.Parse(v.Key)
		if err != nil {
			return nil, fmt.Errorf("custom version key %q: %w", v.Key, err)
		}
		a.Versions.Set(key, v.Version)
	}
	for i, e := range doc.Names {
		idx := a.Names.Intern(e.Name)
		if int(idx) != i {
			return nil, fmt.Errorf("duplicate name table entry %q: %w", e.Name, ErrMalformedContainer)
		}
		if err := a.Names.SetHash(idx, e.Hash); err != nil {
			return nil, err
		}
	}
	if doc.Imports != nil {
		a.Imports = make([]Import, len(doc.Imports))
		for i, d := range doc.Imports {
			a.Imports[i] = Import{
				ClassPackage: NameRef(d.ClassPackage),
				ClassName:    NameRef(d.ClassName),
				Outer:        ReferenceIndex(d.Outer),
				ObjectName:   NameRef(d.ObjectName),
				PackageName:  NameRef(d.PackageName),
			}
		}
	}
	if doc.Exports != nil {
		a.Exports = make([]Export, len(doc.Exports))
		for i := range doc.Exports {
			e, err := exportFromDoc(&doc.Exports[i])
			if err != nil {
				return nil, err
			}
			a.Exports[i] = *e
		}
	}
	return a, nil
}

func exportToDoc(e *Export) (*exportDoc, error) {
	d := &exportDoc{
		Class:        int32(e.Class),
		Super:        int32(e.Super),
		Template:     int32(e.Template),
		Outer:        int32(e.Outer),
		ObjectName:   nameRefDoc(e.ObjectName),
		ObjectFlags:  e.ObjectFlags,
		SerialSize:   e.SerialSize,
		SerialOffset: e.SerialOffset,
		ExportFlags:  e.ExportFlags,
	}
	var data *DataPayload
	switch p := e.Payload.(type) {
	case DataPayload:
		d.Variant = p.VariantKind()
		data = &p
	case StructPayload:
		d.Variant = p.VariantKind()
		data = &p.Data
		sd, err := structPartToDoc(&p)
		if err != nil {
			return nil, err
		}
		d.Struct = sd
	case ClassPayload:
		d.Variant = p.VariantKind()
		data = &p.Struct.Data
		sd, err := structPartToDoc(&p.Struct)
		if err != nil {
			return nil, err
		}
		d.Struct = sd
		d.ClassDef = &classPartDoc{
			ClassFlags: p.ClassFlags,
			Within:     int32(p.Within),
			ConfigName: nameRefDoc(p.ConfigName),
		}
	case EnumPayload:
		d.Variant = p.VariantKind()
		data = &p.Data
		ed := &enumPartDoc{}
		for _, m := range p.Members {
			ed.Members = append(ed.Members, enumMemberDoc{Name: nameRefDoc(m.Name), Value: m.Value})
		}
		d.Enum = ed
	default:
		return nil, fmt.Errorf("export %s has unsupported payload %T", e.ObjectName, e.Payload)
	}
	props, err := propertiesToDocs(data.Properties)
	if err != nil {
		return nil, err
	}
	d.Properties = props
	d.Extras = data.Extras
	return d, nil
}

func structPartToDoc(p *StructPayload) (*structPartDoc, error) {
	d := &structPartDoc{
		SuperStruct:        int32(p.SuperStruct),
		BytecodeMemorySize: p.Bytecode.MemorySize,
		Bytecode:           p.Bytecode.Data,
	}
	for _, child := range p.Children {
		d.Children = append(d.Children, int32(child))
	}
	for _, lp := range p.LoadedProperties {
		d.LoadedProperties = append(d.LoadedProperties, loadedPropertyDoc{
			Name:     nameRefDoc(lp.Name),
			Type:     nameRefDoc(lp.Type),
			ArrayDim: lp.ArrayDim,
		})
	}
	return d, nil
}

func exportFromDoc(d *exportDoc) (*Export, error) {
	e := &Export{
		Class:        ReferenceIndex(d.Class),
		Super:        ReferenceIndex(d.Super),
		Template:     ReferenceIndex(d.Template),
		Outer:        ReferenceIndex(d.Outer),
		ObjectName:   NameRef(d.ObjectName),
		ObjectFlags:  d.ObjectFlags,
		SerialSize:   d.SerialSize,
		SerialOffset: d.SerialOffset,
		ExportFlags:  d.ExportFlags,
	}
	props, err := propertiesFromDocs(d.Properties)
	if err != nil {
		return nil, err
	}
	data := DataPayload{Properties: props, Extras: d.Extras}

	switch d.Variant {
	case "Data":
		e.Payload = data
	case "Struct":
		if d.Struct == nil {
			return nil, fmt.Errorf("export %s: struct variant without struct part", e.ObjectName)
		}
		p := structPartFromDoc(d.Struct)
		p.Data = data
		e.Payload = *p
	case "Class":
		if d.Struct == nil || d.ClassDef == nil {
			return nil, fmt.Errorf("export %s: class variant without struct and class parts", e.ObjectName)
		}
		p := structPartFromDoc(d.Struct)
		p.Data = data
		e.Payload = ClassPayload{
			Struct:     *p,
			ClassFlags: d.ClassDef.ClassFlags,
			Within:     ReferenceIndex(d.ClassDef.Within),
			ConfigName: NameRef(d.ClassDef.ConfigName),
		}
	case "Enum":
		if d.Enum == nil {
			return nil, fmt.Errorf("export %s: enum variant without enum part", e.ObjectName)
		}
		p := EnumPayload{Data: data}
		for _, m := range d.Enum.Members {
			p.Members = append(p.Members, EnumMember{Name: NameRef(m.Name), Value: m.Value})
		}
		e.Payload = p
	default:
		return nil, fmt.Errorf("export %s: unsupported variant %q", e.ObjectName, d.Variant)
	}
	return e, nil
}

func structPartFromDoc(d *structPartDoc) *StructPayload {
	p := &StructPayload{
		SuperStruct: ReferenceIndex(d.SuperStruct),
		Bytecode:    Bytecode{MemorySize: d.BytecodeMemorySize, Data: d.Bytecode},
	}
	for _, child := range d.Children {
		p.Children = append(p.Children, ReferenceIndex(child))
	}
	for _, lp := range d.LoadedProperties {
		p.LoadedProperties = append(p.LoadedProperties, LoadedProperty{
			Name:     NameRef(lp.Name),
			Type:     NameRef(lp.Type),
			ArrayDim: lp.ArrayDim,
		})
	}
	return p
}

func propertiesToDocs(props []Property) ([]propertyDoc, error) {
	if props == nil {
		return nil, nil
	}
	docs := make([]propertyDoc, len(props))
	for i := range props {
		p := &props[i]
		vd, err := valueToDoc(p.Value)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Name, err)
		}
		docs[i] = propertyDoc{
			Name:       nameRefDoc(p.Name),
			Type:       nameRefDoc(p.Type),
			ArrayIndex: p.ArrayIndex,
			Value:      *vd,
		}
	}
	return docs, nil
}

func propertiesFromDocs(docs []propertyDoc) ([]Property, error) {
	if docs == nil {
		return nil, nil
	}
	props := make([]Property, len(docs))
	for i := range docs {
		d := &docs[i]
		value, err := valueFromDoc(&d.Value)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", d.Name.Name, err)
		}
		props[i] = Property{
			Name:       NameRef(d.Name),
			Type:       NameRef(d.Type),
			ArrayIndex: d.ArrayIndex,
			Value:      value,
		}
	}
	return props, nil
}

func ptr[T any](v T) *T { return &v }

func nameRefPtr(n NameRef) *nameRefDoc {
	d := nameRefDoc(n)
	return &d
}

func valueToDoc(v PropertyValue) (*valueDoc, error) {
	d := &valueDoc{Kind: v.Kind()}
	switch t := v.(type) {
	case BoolValue:
		d.Bool = ptr(bool(t))
	case Int8Value:
		d.Int = ptr(int64(t))
	case Int16Value:
		d.Int = ptr(int64(t))
	case IntValue:
		d.Int = ptr(int64(t))
	case Int64Value:
		d.Int = ptr(int64(t))
	case UInt16Value:
		d.UInt = ptr(uint64(t))
	case UInt32Value:
		d.UInt = ptr(uint64(t))
	case UInt64Value:
		d.UInt = ptr(uint64(t))
	case FloatValue:
		d.Float = ptr(float64(t))
	case DoubleValue:
		d.Float = ptr(float64(t))
	case StrValue:
		d.Str = ptr(string(t))
	case NameValue:
		d.Name = nameRefPtr(NameRef(t))
	case ObjectValue:
		d.Object = ptr(int32(t))
	case SoftObjectValue:
		d.SoftPath = ptr(t.Path)
		d.SoftIndex = ptr(t.Index)
	case ByteValue:
		d.EnumType = nameRefPtr(t.EnumType)
		if t.Plain {
			d.BytePlain = ptr(t.Value)
		} else {
			d.Member = nameRefPtr(t.Member)
		}
	case EnumValue:
		d.EnumType = nameRefPtr(t.EnumType)
		d.Member = nameRefPtr(t.Member)
	case ArrayValue:
		d.InnerType = nameRefPtr(t.InnerType)
		d.Fixed = t.Fixed
		if t.InnerType.Name == "StructProperty" {
			d.StructElemType = nameRefPtr(t.StructElemType)
			d.StructGuid = ptr(uuid.UUID(t.StructGuid).String())
		}
		elems, err := elementsToDocs(t.Elements)
		if err != nil {
			return nil, err
		}
		d.Elements = elems
	case SetValue:
		d.InnerType = nameRefPtr(t.InnerType)
		d.Removed = ptr(t.RemovedCount)
		elems, err := elementsToDocs(t.Elements)
		if err != nil {
			return nil, err
		}
		d.Elements = elems
	case MapValue:
		d.KeyType = nameRefPtr(t.KeyType)
		d.ValueType = nameRefPtr(t.ValueType)
		d.Removed = ptr(t.RemovedCount)
		for _, pair := range t.Pairs {
			kd, err := valueToDoc(pair.Key)
			if err != nil {
				return nil, err
			}
			vd, err := valueToDoc(pair.Value)
			if err != nil {
				return nil, err
			}
			d.Pairs = append(d.Pairs, pairDoc{Key: *kd, Value: *vd})
		}
	case StructValue:
		d.StructType = nameRefPtr(t.StructType)
		d.Guid = ptr(uuid.UUID(t.Guid).String())
		if t.Leaf != nil {
			leaf, err := valueToDoc(t.Leaf)
			if err != nil {
				return nil, err
			}
			d.Leaf = leaf
		} else {
			fields, err := propertiesToDocs(t.Fields)
			if err != nil {
				return nil, err
			}
			d.Fields = fields
		}
	case GuidValue:
		d.Guid = ptr(uuid.UUID(t).String())
	case VectorValue:
		d.Vector = &[3]float32{t.X, t.Y, t.Z}
	case DateTimeValue:
		d.Ticks = ptr(int64(t))
	case TimespanValue:
		d.Ticks = ptr(int64(t))
	case UnknownValue:
		d.Raw = t.Data
	default:
		return nil, fmt.Errorf("unsupported property value %T", v)
	}
	return d, nil
}

func elementsToDocs(elems []PropertyValue) ([]valueDoc, error) {
	if elems == nil {
		return nil, nil
	}
	docs := make([]valueDoc, len(elems))
	for i, elem := range elems {
		ed, err := valueToDoc(elem)
		if err != nil {
			return nil, err
		}
		docs[i] = *ed
	}
	return docs, nil
}

func elementsFromDocs(docs []valueDoc) ([]PropertyValue, error) {
	if docs == nil {
		return nil, nil
	}
	elems := make([]PropertyValue, len(docs))
	for i := range docs {
		elem, err := valueFromDoc(&docs[i])
		if err != nil {
			return nil, err
		}
		elems[i] = elem
	}
	return elems, nil
}

func nameRefFrom(d *nameRefDoc) NameRef {
	if d == nil {
		return NameRef{}
	}
	return NameRef(*d)
}

func parseGuid(s *string) (ue.FGuid, error) {
	if s == nil {
		return ue.FGuid{}, nil
	}
	g, err := uuid.Parse(*s)
	if err != nil {
		return ue.FGuid{}, fmt.Errorf("guid %q: %w", *s, err)
	}
	return g, nil
}

func valueFromDoc(d *valueDoc) (PropertyValue, error) {
	switch d.Kind {
	case "BoolProperty":
		if d.Bool == nil {
			return nil, fmt.Errorf("bool value without bool field")
		}
		return BoolValue(*d.Bool), nil
	case "Int8Property":
		return Int8Value(docInt(d)), nil
	case "Int16Property":
		return Int16Value(docInt(d)), nil
	case "IntProperty":
		return IntValue(docInt(d)), nil
	case "Int64Property":
		return Int64Value(docInt(d)), nil
	case "UInt16Property":
		return UInt16Value(docUInt(d)), nil
	case "UInt32Property":
		return UInt32Value(docUInt(d)), nil
	case "UInt64Property":
		return UInt64Value(docUInt(d)), nil
	case "FloatProperty":
		return FloatValue(docFloat(d)), nil
	case "DoubleProperty":
		return DoubleValue(docFloat(d)), nil
	case "StrProperty":
		if d.Str == nil {
			return StrValue(""), nil
		}
		return StrValue(*d.Str), nil
	case "NameProperty":
		return NameValue(nameRefFrom(d.Name)), nil
	case "ObjectProperty":
		if d.Object == nil {
			return ObjectValue(0), nil
		}
		return ObjectValue(*d.Object), nil
	case "SoftObjectProperty":
		v := SoftObjectValue{}
		if d.SoftPath != nil {
			v.Path = *d.SoftPath
		}
		if d.SoftIndex != nil {
			v.Index = *d.SoftIndex
		}
		return v, nil
	case "ByteProperty":
		v := ByteValue{EnumType: nameRefFrom(d.EnumType)}
		if d.BytePlain != nil {
			v.Plain = true
			v.Value = *d.BytePlain
		} else {
			v.Member = nameRefFrom(d.Member)
		}
		return v, nil
	case "EnumProperty":
		return EnumValue{EnumType: nameRefFrom(d.EnumType), Member: nameRefFrom(d.Member)}, nil
	case "ArrayProperty":
		guid, err := parseGuid(d.StructGuid)
		if err != nil {
			return nil, err
		}
		elems, err := elementsFromDocs(d.Elements)
		if err != nil {
			return nil, err
		}
		return ArrayValue{
			InnerType:      nameRefFrom(d.InnerType),
			StructElemType: nameRefFrom(d.StructElemType),
			StructGuid:     guid,
			Fixed:          d.Fixed,
			Elements:       elems,
		}, nil
	case "SetProperty":
		elems, err := elementsFromDocs(d.Elements)
		if err != nil {
			return nil, err
		}
		v := SetValue{InnerType: nameRefFrom(d.InnerType), Elements: elems}
		if d.Removed != nil {
			v.RemovedCount = *d.Removed
		}
		return v, nil
	case "MapProperty":
		v := MapValue{KeyType: nameRefFrom(d.KeyType), ValueType: nameRefFrom(d.ValueType)}
		if d.Removed != nil {
			v.RemovedCount = *d.Removed
		}
		for i := range d.Pairs {
			key, err := valueFromDoc(&d.Pairs[i].Key)
			if err != nil {
				return nil, err
			}
			value, err := valueFromDoc(&d.Pairs[i].Value)
			if err != nil {
				return nil, err
			}
			v.Pairs = append(v.Pairs, MapPair{Key: key, Value: value})
		}
		return v, nil
	case "StructProperty":
		guid, err := parseGuid(d.Guid)
		if err != nil {
			return nil, err
		}
		v := StructValue{StructType: nameRefFrom(d.StructType), Guid: guid}
		if d.Leaf != nil {
			if v.Leaf, err = valueFromDoc(d.Leaf); err != nil {
				return nil, err
			}
			return v, nil
		}
		if v.Fields, err = propertiesFromDocs(d.Fields); err != nil {
			return nil, err
		}
		return v, nil
	case "Guid":
		guid, err := parseGuid(d.Guid)
		if err != nil {
			return nil, err
		}
		return GuidValue(guid), nil
	case "Vector":
		if d.Vector == nil {
			return VectorValue{}, nil
		}
		return VectorValue{X: d.Vector[0], Y: d.Vector[1], Z: d.Vector[2]}, nil
	case "DateTime":
		return DateTimeValue(docTicks(d)), nil
	case "Timespan":
		return TimespanValue(docTicks(d)), nil
	case "Unknown":
		return UnknownValue{Data: d.Raw}, nil
	default:
		return nil, fmt.Errorf("value kind %q: %w", d.Kind, ErrUnknownPropertyKind)
	}
}

func docInt(d *valueDoc) int64 {
	if d.Int == nil {
		return 0
	}
	return *d.Int
}

func docUInt(d *valueDoc) uint64 {
	if d.UInt == nil {
		return 0
	}
	return *d.UInt
}

func docFloat(d *valueDoc) float64 {
	if d.Float == nil {
		return 0
	}
	return *d.Float
}

func docTicks(d *valueDoc) int64 {
	if d.Ticks == nil {
		return 0
	}
	return *d.Ticks
}
