package ue

import (
	"fmt"

	"github.com/google/uuid"

	"uasset-go/memory"
)

// CustomVersion is one (feature key, revision) pair from the container
// header. Every version-gated layout decision in the codec is a lookup
// against the set of these pairs, never a comparison against a monolithic
// engine version.
type CustomVersion struct {
	Key     uuid.UUID
	Version int32
}

// CustomVersionContainer holds at most one revision per feature key,
// preserving the order the entries were read in.
type CustomVersionContainer struct {
	versions []CustomVersion
}

func NewCustomVersionContainer() *CustomVersionContainer {
	return &CustomVersionContainer{}
}

// Get returns the recorded revision for key. A missing key reports (0, false)
// and callers must treat it as "below the oldest known revision", selecting
// the oldest layout rather than failing.
func (c *CustomVersionContainer) Get(key uuid.UUID) (int32, bool) {
	for _, v := range c.versions {
		if v.Key == key {
			return v.Version, true
		}
	}
	return 0, false
}

// Set records a revision, replacing any previous entry for the same key.
func (c *CustomVersionContainer) Set(key uuid.UUID, version int32) {
	for i := range c.versions {
		if c.versions[i].Key == key {
			c.versions[i].Version = version
			return
		}
	}
	c.versions = append(c.versions, CustomVersion{Key: key, Version: version})
}

// All returns the entries in read order.
func (c *CustomVersionContainer) All() []CustomVersion {
	return c.versions
}

func (c *CustomVersionContainer) Read(cur *memory.Cursor) error {
	count, err := memory.Read[int32](cur)
	if err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("negative custom version count %d", count)
	}
	c.versions = nil
	if count > 0 {
		c.versions = make([]CustomVersion, 0, count)
	}
	for i := int32(0); i < count; i++ {
		key, err := ReadGuid(cur)
		if err != nil {
			return err
		}
		version, err := memory.Read[int32](cur)
		if err != nil {
			return err
		}
		c.Set(key, version)
	}
	return nil
}

func (c *CustomVersionContainer) Write(w *memory.Writer) {
	memory.Write(w, int32(len(c.versions)))
	for _, v := range c.versions {
		WriteGuid(w, v.Key)
		memory.Write(w, v.Version)
	}
}

// Feature keys for the version gates the codec tests. Each gate documents its
// exact threshold once, here; call sites use the named query only.
var (
	// FeatureNames controls the name-table entry layout.
	FeatureNames = uuid.MustParse("8e3b1a42-5c7d-4f19-9b60-2d84a11c03e7")
	// FeatureStructExports controls the struct-bearing export layout.
	FeatureStructExports = uuid.MustParse("4f6ddab6-9f3e-4c70-8a15-7be20c55d2a1")
	// FeatureImports controls the import record layout.
	FeatureImports = uuid.MustParse("c2a89d31-0b64-4e8f-b7c5-55e01d9a6f08")
)

// HasNameHashes reports whether name-table entries carry a trailing uint32
// hash field. True at FeatureNames revision 1 and above.
func (c *CustomVersionContainer) HasNameHashes() bool {
	v, _ := c.Get(FeatureNames)
	return v >= 1
}

// HasCountedChildFields reports whether a struct-bearing export stores its
// child-field references as an explicit count followed by that many entries.
// True at FeatureStructExports revision 2 and above; below that the record
// holds a single optional head reference.
func (c *CustomVersionContainer) HasCountedChildFields() bool {
	v, _ := c.Get(FeatureStructExports)
	return v >= 2
}

// HasLoadedProperties reports whether a struct-bearing export carries a
// count-prefixed loaded-property descriptor list. True at
// FeatureStructExports revision 3 and above.
func (c *CustomVersionContainer) HasLoadedProperties() bool {
	v, _ := c.Get(FeatureStructExports)
	return v >= 3
}

// HasImportPackageName reports whether import records end with a package
// name. True at FeatureImports revision 1 and above.
func (c *CustomVersionContainer) HasImportPackageName() bool {
	v, _ := c.Get(FeatureImports)
	return v >= 1
}
