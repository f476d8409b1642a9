package uasset

import (
	"uasset-go/memory"
)

// Import identifies an object defined in another container. Immutable once
// read.
type Import struct {
	ClassPackage NameRef
	ClassName    NameRef
	Outer        ReferenceIndex
	ObjectName   NameRef
	// PackageName is only on the wire when the import feature gate says so.
	PackageName NameRef
}

func (a *Asset) readImport(c *memory.Cursor) (Import, error) {
	var imp Import
	var err error
	if imp.ClassPackage, err = readNameRef(c, a.Names); err != nil {
		return imp, err
	}
	if imp.ClassName, err = readNameRef(c, a.Names); err != nil {
		return imp, err
	}
	outer, err := memory.Read[int32](c)
	if err != nil {
		return imp, err
	}
	imp.Outer = ReferenceIndex(outer)
	if imp.ObjectName, err = readNameRef(c, a.Names); err != nil {
		return imp, err
	}
	if a.Versions.HasImportPackageName() {
		if imp.PackageName, err = readNameRef(c, a.Names); err != nil {
			return imp, err
		}
	}
	return imp, nil
}

func (a *Asset) writeImport(w *memory.Writer, imp *Import) {
	writeNameRef(w, a.Names, imp.ClassPackage)
	writeNameRef(w, a.Names, imp.ClassName)
	memory.Write(w, int32(imp.Outer))
	writeNameRef(w, a.Names, imp.ObjectName)
	if a.Versions.HasImportPackageName() {
		writeNameRef(w, a.Names, imp.PackageName)
	}
}
