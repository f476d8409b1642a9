package uasset

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"uasset-go/memory"
	"uasset-go/ue"
)

func classImport(object string) Import {
	return Import{
		ClassPackage: NameRef{Name: "/Script/CoreUObject"},
		ClassName:    NameRef{Name: "Class"},
		ObjectName:   NameRef{Name: object},
		PackageName:  NameRef{Name: "/Script/CoreUObject"},
	}
}

func newVersionedAsset() *Asset {
	a := NewAsset()
	a.FolderName = "Game"
	a.Versions.Set(ue.FeatureNames, 1)
	a.Versions.Set(ue.FeatureStructExports, 3)
	a.Versions.Set(ue.FeatureImports, 1)
	return a
}

// sampleProperties covers every decoded property kind in its tagged form.
func sampleProperties() []Property {
	structGuid := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	return []Property{
		{Name: NameRef{Name: "Health"}, Type: NameRef{Name: "IntProperty"}, Value: IntValue(90)},
		{Name: NameRef{Name: "Alive"}, Type: NameRef{Name: "BoolProperty"}, Value: BoolValue(true)},
		{Name: NameRef{Name: "Scale"}, Type: NameRef{Name: "FloatProperty"}, Value: FloatValue(1.5)},
		{Name: NameRef{Name: "Mass"}, Type: NameRef{Name: "DoubleProperty"}, Value: DoubleValue(0.25)},
		{Name: NameRef{Name: "Title"}, Type: NameRef{Name: "StrProperty"}, Value: StrValue("Hero")},
		{Name: NameRef{Name: "Tag"}, Type: NameRef{Name: "NameProperty"}, Value: NameValue(NameRef{Name: "Pawn", Number: 2})},
		{Name: NameRef{Name: "Owner"}, Type: NameRef{Name: "ObjectProperty"}, Value: ObjectValue(ImportRef(0))},
		{Name: NameRef{Name: "Level"}, Type: NameRef{Name: "SoftObjectProperty"}, Value: SoftObjectValue{Path: "/Game/Maps/Start", Index: 0}},
		{Name: NameRef{Name: "Flags"}, Type: NameRef{Name: "ByteProperty"}, Value: ByteValue{EnumType: NameRef{Name: "None"}, Plain: true, Value: 7}},
		{Name: NameRef{Name: "Mood"}, Type: NameRef{Name: "ByteProperty"}, Value: ByteValue{EnumType: NameRef{Name: "EMood"}, Member: NameRef{Name: "EMood::Calm"}}},
		{Name: NameRef{Name: "Color"}, Type: NameRef{Name: "EnumProperty"}, Value: EnumValue{EnumType: NameRef{Name: "EColor"}, Member: NameRef{Name: "EColor::Red"}}},
		{Name: NameRef{Name: "Scores"}, Type: NameRef{Name: "ArrayProperty"}, Value: ArrayValue{
			InnerType: NameRef{Name: "IntProperty"},
			Elements:  []PropertyValue{IntValue(1), IntValue(2), IntValue(3)},
		}},
		{Name: NameRef{Name: "Waypoints"}, Type: NameRef{Name: "ArrayProperty"}, Value: ArrayValue{
			InnerType:      NameRef{Name: "StructProperty"},
			StructElemType: NameRef{Name: "Vector"},
			StructGuid:     structGuid,
			Elements: []PropertyValue{
				StructValue{StructType: NameRef{Name: "Vector"}, Guid: structGuid, Leaf: VectorValue{X: 1, Y: 2, Z: 3}},
				StructValue{StructType: NameRef{Name: "Vector"}, Guid: structGuid, Leaf: VectorValue{X: 4, Y: 5, Z: 6}},
			},
		}},
		{Name: NameRef{Name: "Seen"}, Type: NameRef{Name: "SetProperty"}, Value: SetValue{
			InnerType: NameRef{Name: "NameProperty"},
			Elements:  []PropertyValue{NameValue(NameRef{Name: "Cave"})},
		}},
		{Name: NameRef{Name: "Stats"}, Type: NameRef{Name: "MapProperty"}, Value: MapValue{
			KeyType:   NameRef{Name: "NameProperty"},
			ValueType: NameRef{Name: "IntProperty"},
			Pairs: []MapPair{
				{Key: NameValue(NameRef{Name: "Strength"}), Value: IntValue(10)},
				{Key: NameValue(NameRef{Name: "Agility"}), Value: IntValue(12)},
			},
		}},
		{Name: NameRef{Name: "Spawn"}, Type: NameRef{Name: "StructProperty"}, Value: StructValue{
			StructType: NameRef{Name: "Transform"},
			Fields: []Property{
				{Name: NameRef{Name: "Location"}, Type: NameRef{Name: "StructProperty"}, Value: StructValue{
					StructType: NameRef{Name: "Vector"}, Leaf: VectorValue{X: 7, Y: 8, Z: 9},
				}},
				{Name: NameRef{Name: "Yaw"}, Type: NameRef{Name: "FloatProperty"}, Value: FloatValue(90)},
			},
		}},
		{Name: NameRef{Name: "Id"}, Type: NameRef{Name: "StructProperty"}, Value: StructValue{
			StructType: NameRef{Name: "Guid"},
			Leaf:       GuidValue(uuid.MustParse("9e107d9d-372b-4f1c-a1a4-26e180f4b2a1")),
		}},
		{Name: NameRef{Name: "Created"}, Type: NameRef{Name: "StructProperty"}, Value: StructValue{
			StructType: NameRef{Name: "DateTime"},
			Leaf:       DateTimeValue(638000000000000000),
		}},
	}
}

func newDataAsset() *Asset {
	a := newVersionedAsset()
	a.Imports = []Import{classImport("Actor")}
	a.Exports = []Export{{
		Class:       ImportRef(0),
		ObjectName:  NameRef{Name: "Hero"},
		ObjectFlags: 0x11,
		ExportFlags: ExportFlagAssetPackage,
		Payload:     DataPayload{Properties: sampleProperties(), Extras: []byte{0xde, 0xad}},
	}}
	return a
}

func TestContainerRoundTrip(t *testing.T) {
	a := newDataAsset()

	data, err := a.Write()
	require.NoError(t, err)

	b, err := Read(data, nil)
	require.NoError(t, err)
	require.Empty(t, b.Warnings)
	require.True(t, a.Equal(b))

	ok, err := b.VerifyRoundTrip()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestContainerWriteDeterministic(t *testing.T) {
	a := newDataAsset()
	first, err := a.Write()
	require.NoError(t, err)
	second, err := a.Write()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestContainerSplitRoundTrip(t *testing.T) {
	a := newDataAsset()

	directory, payload, err := a.WriteSplit()
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	b, err := ReadSplit(directory, payload, nil)
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	// split serial offsets are relative to the payload region
	require.Equal(t, int64(0), b.Exports[0].SerialOffset)

	ok, err := b.VerifyRoundTrip()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestContainerSingleAndSplitSameModel(t *testing.T) {
	a := newDataAsset()
	single, err := a.Write()
	require.NoError(t, err)
	directory, payload, err := a.WriteSplit()
	require.NoError(t, err)

	fromSingle, err := Read(single, nil)
	require.NoError(t, err)
	fromSplit, err := ReadSplit(directory, payload, nil)
	require.NoError(t, err)

	// serial offsets differ between layouts, everything else matches
	fromSplit.Exports[0].SerialOffset = fromSingle.Exports[0].SerialOffset
	require.True(t, fromSingle.Equal(fromSplit))
}

func TestContainerRejectsBadMagic(t *testing.T) {
	a := newDataAsset()
	data, err := a.Write()
	require.NoError(t, err)
	data[0] ^= 0xff

	_, err = Read(data, nil)
	require.ErrorIs(t, err, ErrMalformedContainer)
}

func TestContainerRejectsBadFileVersion(t *testing.T) {
	a := newDataAsset()
	data, err := a.Write()
	require.NoError(t, err)
	data[4] = 99

	_, err = Read(data, nil)
	require.ErrorIs(t, err, ErrMalformedContainer)
}

func TestContainerRejectsTruncated(t *testing.T) {
	a := newDataAsset()
	data, err := a.Write()
	require.NoError(t, err)

	_, err = Read(data[:len(data)-10], nil)
	require.Error(t, err)
}

// A serial span near the int64 limit must fail the bounds check, not wrap
// around it.
func TestContainerRejectsHugeExportSpan(t *testing.T) {
	a := newDataAsset()
	data, err := a.Write()
	require.NoError(t, err)
	b, err := Read(data, nil)
	require.NoError(t, err)

	// locate the size+offset pair of the export record and blow it up
	pat := memory.NewWriter()
	memory.Write(pat, b.Exports[0].SerialSize)
	memory.Write(pat, b.Exports[0].SerialOffset)
	pos := bytes.Index(data, pat.Bytes())
	require.GreaterOrEqual(t, pos, 0)

	huge := memory.NewWriter()
	memory.Write(huge, int64(1)<<62)
	memory.Write(huge, int64(1)<<62)
	copy(data[pos:], huge.Bytes())

	_, err = Read(data, nil)
	require.ErrorIs(t, err, ErrMalformedContainer)
}

func TestUnversionedRequiresSchemaEagerly(t *testing.T) {
	a := newDataAsset()
	a.PackageFlags |= PkgUnversionedProperties
	a.Exports[0].Payload = DataPayload{Properties: unversionedProperties()}
	a.Schema = testCatalog()
	data, err := a.Write()
	require.NoError(t, err)

	_, err = Read(data, nil)
	require.ErrorIs(t, err, ErrMissingSchema)

	a.Schema = nil
	_, err = a.Write()
	require.ErrorIs(t, err, ErrMissingSchema)
}

func TestVerifyRoundTripNeedsSource(t *testing.T) {
	a := newDataAsset()
	_, err := a.VerifyRoundTrip()
	require.Error(t, err)
}

func TestEqualDetectsDifference(t *testing.T) {
	a := newDataAsset()
	data, err := a.Write()
	require.NoError(t, err)
	b, err := Read(data, nil)
	require.NoError(t, err)

	b.Exports[0].ObjectFlags ^= 1
	require.False(t, a.Equal(b))
}
