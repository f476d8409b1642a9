package uasset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"uasset-go/ue"
)

// newDefinitionAsset builds a container with one export of each structural
// variant: a struct, the class it belongs to, an enum and a plain data object.
func newDefinitionAsset() *Asset {
	a := newVersionedAsset()
	a.Imports = []Import{
		classImport("ScriptStruct"),
		classImport("Class"),
		classImport("Enum"),
		classImport("Actor"),
	}
	a.Exports = []Export{
		{
			Class:      ImportRef(0),
			ObjectName: NameRef{Name: "MyStruct"},
			Payload: StructPayload{
				SuperStruct: ImportRef(3),
				Children:    []ReferenceIndex{ExportRef(1)},
				LoadedProperties: []LoadedProperty{
					{Name: NameRef{Name: "Value"}, Type: NameRef{Name: "IntProperty"}, ArrayDim: 1},
				},
				Bytecode: Bytecode{MemorySize: 32, Data: []byte{0x04, 0x16, 0x53}},
			},
		},
		{
			Class:      ImportRef(1),
			ObjectName: NameRef{Name: "MyClass"},
			Payload: ClassPayload{
				Struct: StructPayload{
					SuperStruct: ImportRef(3),
					Bytecode:    Bytecode{MemorySize: 8},
				},
				ClassFlags: 0x20,
				Within:     ImportRef(3),
				ConfigName: NameRef{Name: "Engine"},
			},
		},
		{
			Class:      ImportRef(2),
			ObjectName: NameRef{Name: "EColor"},
			Payload: EnumPayload{
				Members: []EnumMember{
					{Name: NameRef{Name: "EColor::Red"}, Value: 0},
					{Name: NameRef{Name: "EColor::Blue"}, Value: 5},
				},
			},
		},
		{
			Class:      ImportRef(3),
			ObjectName: NameRef{Name: "Hero"},
			Payload: DataPayload{
				Properties: []Property{
					{Name: NameRef{Name: "Health"}, Type: NameRef{Name: "IntProperty"}, Value: IntValue(90)},
				},
			},
		},
	}
	return a
}

func TestExportVariantsRoundTrip(t *testing.T) {
	a := newDefinitionAsset()

	data, err := a.Write()
	require.NoError(t, err)

	b, err := Read(data, nil)
	require.NoError(t, err)
	require.True(t, a.Equal(b))

	require.IsType(t, StructPayload{}, b.Exports[0].Payload)
	require.IsType(t, ClassPayload{}, b.Exports[1].Payload)
	require.IsType(t, EnumPayload{}, b.Exports[2].Payload)
	require.IsType(t, DataPayload{}, b.Exports[3].Payload)

	ok, err := b.VerifyRoundTrip()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPayloadMustMatchClassVariant(t *testing.T) {
	a := newDefinitionAsset()
	a.Exports[0].Payload = DataPayload{}

	_, err := a.Write()
	require.ErrorIs(t, err, ErrMalformedContainer)
}

func TestExtrasPreserved(t *testing.T) {
	a := newDefinitionAsset()
	p := a.Exports[0].Payload.(StructPayload)
	p.Data.Extras = []byte{0xca, 0xfe, 0xba, 0xbe}
	a.Exports[0].Payload = p

	data, err := a.Write()
	require.NoError(t, err)
	b, err := Read(data, nil)
	require.NoError(t, err)

	got := b.Exports[0].Payload.(StructPayload)
	require.Equal(t, []byte{0xca, 0xfe, 0xba, 0xbe}, got.Data.Extras)

	ok, err := b.VerifyRoundTrip()
	require.NoError(t, err)
	require.True(t, ok)
}

// Below FeatureStructExports revision 2 the child fields are a single
// optional head reference on the wire.
func TestStructExportOldChildLayout(t *testing.T) {
	a := newDefinitionAsset()
	a.Versions.Set(ue.FeatureStructExports, 1)
	p := a.Exports[0].Payload.(StructPayload)
	p.LoadedProperties = nil // not on the wire below revision 3
	a.Exports[0].Payload = p

	data, err := a.Write()
	require.NoError(t, err)
	b, err := Read(data, nil)
	require.NoError(t, err)
	require.True(t, a.Equal(b))
}

func TestStructExportOldLayoutNoChildren(t *testing.T) {
	a := newDefinitionAsset()
	a.Versions.Set(ue.FeatureStructExports, 1)
	p := a.Exports[0].Payload.(StructPayload)
	p.Children = nil
	p.LoadedProperties = nil
	a.Exports[0].Payload = p

	data, err := a.Write()
	require.NoError(t, err)
	b, err := Read(data, nil)
	require.NoError(t, err)
	require.Nil(t, b.Exports[0].Payload.(StructPayload).Children)
}

func TestStructExportOldLayoutRejectsMultipleChildren(t *testing.T) {
	a := newDefinitionAsset()
	a.Versions.Set(ue.FeatureStructExports, 1)
	p := a.Exports[0].Payload.(StructPayload)
	p.Children = []ReferenceIndex{ExportRef(1), ExportRef(2)}
	p.LoadedProperties = nil
	a.Exports[0].Payload = p

	_, err := a.Write()
	require.ErrorIs(t, err, ErrMalformedContainer)
}

func TestLoadedPropertiesNeedTheirRevision(t *testing.T) {
	a := newDefinitionAsset()
	a.Versions.Set(ue.FeatureStructExports, 2)

	_, err := a.Write()
	require.ErrorIs(t, err, ErrMalformedContainer)
}

func TestCountedChildrenAtRevisionTwo(t *testing.T) {
	a := newDefinitionAsset()
	a.Versions.Set(ue.FeatureStructExports, 2)
	p := a.Exports[0].Payload.(StructPayload)
	p.Children = []ReferenceIndex{ExportRef(1), ExportRef(2)}
	p.LoadedProperties = nil
	a.Exports[0].Payload = p

	data, err := a.Write()
	require.NoError(t, err)
	b, err := Read(data, nil)
	require.NoError(t, err)
	require.Equal(t, p.Children, b.Exports[0].Payload.(StructPayload).Children)
}
