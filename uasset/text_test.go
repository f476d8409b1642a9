package uasset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextMirrorRoundTrip(t *testing.T) {
	a := newDataAsset()
	data, err := a.Write()
	require.NoError(t, err)
	b, err := Read(data, nil)
	require.NoError(t, err)

	text, err := ToText(b)
	require.NoError(t, err)

	c, err := FromText(text)
	require.NoError(t, err)
	require.True(t, b.Equal(c))

	// the reconstructed graph serializes to the same bytes
	out, err := c.Write()
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestTextMirrorAllVariants(t *testing.T) {
	a := newDefinitionAsset()
	data, err := a.Write()
	require.NoError(t, err)
	b, err := Read(data, nil)
	require.NoError(t, err)

	text, err := ToText(b)
	require.NoError(t, err)
	c, err := FromText(text)
	require.NoError(t, err)
	require.True(t, b.Equal(c))
}

func TestTextMirrorUnknownValue(t *testing.T) {
	a := newDataAsset()
	p := a.Exports[0].Payload.(DataPayload)
	p.Properties = append(p.Properties, Property{
		Name:  NameRef{Name: "Mystery"},
		Type:  NameRef{Name: "FancyProperty"},
		Value: UnknownValue{Data: []byte{9, 8, 7}},
	})
	a.Exports[0].Payload = p

	data, err := a.Write()
	require.NoError(t, err)
	b, err := Read(data, nil)
	require.NoError(t, err)

	text, err := ToText(b)
	require.NoError(t, err)
	c, err := FromText(text)
	require.NoError(t, err)
	require.True(t, b.Equal(c))
}

// FromText never carries a schema reference; an unversioned container must be
// handed one before it can serialize again.
func TestTextMirrorDropsSchema(t *testing.T) {
	a := newUnversionedAsset()
	data, err := a.Write()
	require.NoError(t, err)
	b, err := Read(data, testCatalog())
	require.NoError(t, err)

	text, err := ToText(b)
	require.NoError(t, err)
	c, err := FromText(text)
	require.NoError(t, err)
	require.Nil(t, c.Schema)

	_, err = c.Write()
	require.ErrorIs(t, err, ErrMissingSchema)

	c.Schema = testCatalog()
	out, err := c.Write()
	require.NoError(t, err)
	require.Equal(t, data, out)
}

// A container with no custom version entries must survive the mirror: the
// binary reader and the document reader agree on an absent version set.
func TestTextMirrorNoCustomVersions(t *testing.T) {
	a := NewAsset()
	a.FolderName = "Game"
	a.Exports = []Export{{
		ObjectName: NameRef{Name: "Hero"},
		Payload:    DataPayload{},
	}}
	data, err := a.Write()
	require.NoError(t, err)
	b, err := Read(data, nil)
	require.NoError(t, err)
	require.Nil(t, b.Versions.All())

	text, err := ToText(b)
	require.NoError(t, err)
	c, err := FromText(text)
	require.NoError(t, err)
	require.True(t, b.Equal(c))
}

func TestFromTextRejectsDuplicateNames(t *testing.T) {
	doc := []byte(`{
		"folderName": "Game",
		"packageFlags": 0,
		"customVersions": null,
		"names": [{"name": "Actor"}, {"name": "Actor"}],
		"imports": null,
		"exports": null
	}`)
	_, err := FromText(doc)
	require.ErrorIs(t, err, ErrMalformedContainer)
}

func TestFromTextRejectsGarbage(t *testing.T) {
	_, err := FromText([]byte("{"))
	require.Error(t, err)
}

func TestFromTextRejectsUnknownValueKind(t *testing.T) {
	doc := []byte(`{
		"folderName": "Game",
		"packageFlags": 0,
		"customVersions": null,
		"names": null,
		"imports": null,
		"exports": [{
			"class": 0, "super": 0, "template": 0, "outer": 0,
			"objectName": {"name": "Hero"},
			"objectFlags": 0, "serialSize": 0, "serialOffset": 0, "exportFlags": 0,
			"$variant": "Data",
			"properties": [{
				"name": {"name": "X"},
				"type": {"name": "IntProperty"},
				"value": {"$type": "WeirdProperty"}
			}],
			"extras": null
		}]
	}`)
	_, err := FromText(doc)
	require.ErrorIs(t, err, ErrUnknownPropertyKind)
}

func TestFromTextRejectsUnknownVariant(t *testing.T) {
	doc := []byte(`{
		"folderName": "Game",
		"packageFlags": 0,
		"customVersions": null,
		"names": null,
		"imports": null,
		"exports": [{
			"class": 0, "super": 0, "template": 0, "outer": 0,
			"objectName": {"name": "Hero"},
			"objectFlags": 0, "serialSize": 0, "serialOffset": 0, "exportFlags": 0,
			"$variant": "Blob",
			"properties": null,
			"extras": null
		}]
	}`)
	_, err := FromText(doc)
	require.Error(t, err)
}
