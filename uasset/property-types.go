package uasset

import "uasset-go/ue"

// Property is one named value in an export's property bag. Type is the kind
// discriminator ("IntProperty", "StructProperty", ...). Both the tagged and
// the unversioned path materialize into this same shape, so everything
// downstream of the codec is path-agnostic.
type Property struct {
	Name       NameRef
	Type       NameRef
	ArrayIndex int32
	Value      PropertyValue
}

// PropertyValue is the closed variant set over supported property kinds. New
// kinds are added as new cases plus a registry entry, never by subtyping.
type PropertyValue interface {
	Kind() string
}

type BoolValue bool

type Int8Value int8

type Int16Value int16

type IntValue int32

type Int64Value int64

type UInt16Value uint16

type UInt32Value uint32

type UInt64Value uint64

type FloatValue float32

type DoubleValue float64

type StrValue string

type NameValue NameRef

type ObjectValue ReferenceIndex

type SoftObjectValue struct {
	Path  string
	Index uint32
}

// ByteValue is either a plain byte or an enum member, depending on whether
// the tag declared an enum type.
type ByteValue struct {
	EnumType NameRef
	Plain    bool
	Value    uint8
	Member   NameRef
}

type EnumValue struct {
	EnumType NameRef
	Member   NameRef
}

// ArrayValue holds array elements. Fixed marks a schema arrayDim repetition
// (no length prefix on the wire). StructElemType and StructGuid carry the
// inner header of a tagged array of structs.
type ArrayValue struct {
	InnerType      NameRef
	StructElemType NameRef
	StructGuid     ue.FGuid
	Fixed          bool
	Elements       []PropertyValue
}

type SetValue struct {
	InnerType    NameRef
	RemovedCount int32
	Elements     []PropertyValue
}

type MapPair struct {
	Key   PropertyValue
	Value PropertyValue
}

type MapValue struct {
	KeyType      NameRef
	ValueType    NameRef
	RemovedCount int32
	Pairs        []MapPair
}

// StructValue is either a known leaf layout (Leaf set, Fields nil) or a
// nested property bag (Fields set, Leaf nil).
type StructValue struct {
	StructType NameRef
	Guid       ue.FGuid
	Leaf       PropertyValue
	Fields     []Property
}

type GuidValue ue.FGuid

type VectorValue ue.FVector

type DateTimeValue int64

type TimespanValue int64

// UnknownValue preserves the payload of a kind the codec does not decode, so
// unknown kinds still round-trip byte for byte.
type UnknownValue struct {
	Data []byte
}

func (BoolValue) Kind() string       { return "BoolProperty" }
func (Int8Value) Kind() string       { return "Int8Property" }
func (Int16Value) Kind() string      { return "Int16Property" }
func (IntValue) Kind() string        { return "IntProperty" }
func (Int64Value) Kind() string      { return "Int64Property" }
func (UInt16Value) Kind() string     { return "UInt16Property" }
func (UInt32Value) Kind() string     { return "UInt32Property" }
func (UInt64Value) Kind() string     { return "UInt64Property" }
func (FloatValue) Kind() string      { return "FloatProperty" }
func (DoubleValue) Kind() string     { return "DoubleProperty" }
func (StrValue) Kind() string        { return "StrProperty" }
func (NameValue) Kind() string       { return "NameProperty" }
func (ObjectValue) Kind() string     { return "ObjectProperty" }
func (SoftObjectValue) Kind() string { return "SoftObjectProperty" }
func (ByteValue) Kind() string       { return "ByteProperty" }
func (EnumValue) Kind() string       { return "EnumProperty" }
func (ArrayValue) Kind() string      { return "ArrayProperty" }
func (SetValue) Kind() string        { return "SetProperty" }
func (MapValue) Kind() string        { return "MapProperty" }
func (StructValue) Kind() string     { return "StructProperty" }
func (GuidValue) Kind() string       { return "Guid" }
func (VectorValue) Kind() string     { return "Vector" }
func (DateTimeValue) Kind() string   { return "DateTime" }
func (TimespanValue) Kind() string   { return "Timespan" }
func (UnknownValue) Kind() string    { return "Unknown" }
