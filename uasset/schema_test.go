package uasset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func nestedCatalog() *SchemaCatalog {
	cat := testCatalog()
	cat.AddEnum("ERank", []string{"ERank::Bronze", "ERank::Silver"})
	cat.AddStruct(&StructSchema{Name: "Inventory", Fields: []FieldSchema{
		{Name: "Items", Kind: KindArray, Inner: &FieldSchema{Kind: KindStruct, StructName: "Vitals"}},
		{Name: "Counts", Kind: KindMap,
			Inner:      &FieldSchema{Kind: KindName},
			ValueInner: &FieldSchema{Kind: KindInt}},
		{Name: "Rank", Kind: KindByte, EnumName: "ERank"},
		{Name: "Loose", Kind: KindByte},
	}})
	return cat
}

func TestSchemaCatalogSaveLoad(t *testing.T) {
	cat := nestedCatalog()

	data, err := SaveSchemaCatalog(cat)
	require.NoError(t, err)

	got, err := LoadSchemaCatalog(data)
	require.NoError(t, err)
	require.Equal(t, cat, got)

	// deterministic output
	again, err := SaveSchemaCatalog(got)
	require.NoError(t, err)
	require.Equal(t, data, again)
}

func TestSchemaCatalogRejectsBadHeader(t *testing.T) {
	data, err := SaveSchemaCatalog(testCatalog())
	require.NoError(t, err)

	bad := append([]byte{}, data...)
	bad[0] ^= 0xff
	_, err = LoadSchemaCatalog(bad)
	require.ErrorIs(t, err, ErrMalformedContainer)

	bad = append([]byte{}, data...)
	bad[2] = 9
	_, err = LoadSchemaCatalog(bad)
	require.ErrorIs(t, err, ErrMalformedContainer)
}

func TestChainDerivedFirst(t *testing.T) {
	cat := testCatalog()
	chain, err := cat.Chain("Actor")
	require.NoError(t, err)
	require.Len(t, chain, 2)
	require.Equal(t, "Actor", chain[0].Name)
	require.Equal(t, "Base", chain[1].Name)
}

func TestChainUnknownStruct(t *testing.T) {
	_, err := testCatalog().Chain("Ghost")
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestChainDetectsCycle(t *testing.T) {
	cat := NewSchemaCatalog()
	cat.AddStruct(&StructSchema{Name: "A", Super: "B"})
	cat.AddStruct(&StructSchema{Name: "B", Super: "A"})

	_, err := cat.Chain("A")
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestEnumLookup(t *testing.T) {
	cat := testCatalog()
	members, err := cat.Enum("EColor")
	require.NoError(t, err)
	require.Equal(t, []string{"EColor::Red", "EColor::Green", "EColor::Blue"}, members)

	_, err = cat.Enum("EGhost")
	require.ErrorIs(t, err, ErrSchemaMismatch)
}
