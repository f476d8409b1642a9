package ue

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"uasset-go/memory"
)

func TestFStringASCII(t *testing.T) {
	w := memory.NewWriter()
	require.NoError(t, WriteFString(w, "Actor"))

	// positive prefix counts bytes including the terminator
	c := memory.NewCursor(w.Bytes())
	size, err := memory.Read[int32](c)
	require.NoError(t, err)
	require.Equal(t, int32(6), size)

	c = memory.NewCursor(w.Bytes())
	s, err := ReadFString(c)
	require.NoError(t, err)
	require.Equal(t, "Actor", s)
	require.Equal(t, 0, c.Remaining())
}

func TestFStringUTF16(t *testing.T) {
	w := memory.NewWriter()
	require.NoError(t, WriteFString(w, "héllo"))

	c := memory.NewCursor(w.Bytes())
	size, err := memory.Read[int32](c)
	require.NoError(t, err)
	require.Less(t, size, int32(0))

	c = memory.NewCursor(w.Bytes())
	s, err := ReadFString(c)
	require.NoError(t, err)
	require.Equal(t, "héllo", s)
	require.Equal(t, 0, c.Remaining())
}

func TestFStringEmpty(t *testing.T) {
	w := memory.NewWriter()
	require.NoError(t, WriteFString(w, ""))
	require.Equal(t, []byte{0, 0, 0, 0}, w.Bytes())

	s, err := ReadFString(memory.NewCursor(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, "", s)
}

func TestFStringTruncated(t *testing.T) {
	w := memory.NewWriter()
	memory.Write(w, int32(10))
	w.WriteBytes([]byte("abc"))
	_, err := ReadFString(memory.NewCursor(w.Bytes()))
	require.ErrorIs(t, err, memory.ErrUnexpectedEOF)
}

func TestGuidRoundTrip(t *testing.T) {
	g := uuid.MustParse("8e3b1a42-5c7d-4f19-9b60-2d84a11c03e7")
	w := memory.NewWriter()
	WriteGuid(w, g)
	require.Len(t, w.Bytes(), 16)

	got, err := ReadGuid(memory.NewCursor(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, g, got)
}

func TestFVectorRoundTrip(t *testing.T) {
	v := FVector{X: 1.5, Y: -2, Z: 0.25}
	w := memory.NewWriter()
	WriteFVector(w, v)

	got, err := ReadFVector(memory.NewCursor(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestCustomVersionContainerSetReplaces(t *testing.T) {
	c := NewCustomVersionContainer()
	c.Set(FeatureNames, 1)
	c.Set(FeatureImports, 1)
	c.Set(FeatureNames, 2)

	v, ok := c.Get(FeatureNames)
	require.True(t, ok)
	require.Equal(t, int32(2), v)
	require.Len(t, c.All(), 2)

	_, ok = c.Get(FeatureStructExports)
	require.False(t, ok)
}

func TestCustomVersionContainerRoundTrip(t *testing.T) {
	c := NewCustomVersionContainer()
	c.Set(FeatureNames, 1)
	c.Set(FeatureStructExports, 3)

	w := memory.NewWriter()
	c.Write(w)

	got := NewCustomVersionContainer()
	require.NoError(t, got.Read(memory.NewCursor(w.Bytes())))
	require.Equal(t, c.All(), got.All())
}

// An empty entry list reads back as nil, so graphs built in memory and graphs
// read from the wire compare equal.
func TestCustomVersionContainerEmptyReadsNil(t *testing.T) {
	w := memory.NewWriter()
	NewCustomVersionContainer().Write(w)

	got := NewCustomVersionContainer()
	require.NoError(t, got.Read(memory.NewCursor(w.Bytes())))
	require.Nil(t, got.All())
}

// A missing feature key selects the oldest layout, never an error.
func TestVersionGates(t *testing.T) {
	c := NewCustomVersionContainer()
	require.False(t, c.HasNameHashes())
	require.False(t, c.HasCountedChildFields())
	require.False(t, c.HasLoadedProperties())
	require.False(t, c.HasImportPackageName())

	c.Set(FeatureNames, 1)
	require.True(t, c.HasNameHashes())

	c.Set(FeatureStructExports, 1)
	require.False(t, c.HasCountedChildFields())
	c.Set(FeatureStructExports, 2)
	require.True(t, c.HasCountedChildFields())
	require.False(t, c.HasLoadedProperties())
	c.Set(FeatureStructExports, 3)
	require.True(t, c.HasLoadedProperties())

	c.Set(FeatureImports, 1)
	require.True(t, c.HasImportPackageName())
}
