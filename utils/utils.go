package utils

import (
	"errors"
	"os"
	"path"

	"github.com/goccy/go-json"

	"uasset-go/config"
)

func createIfNotExist(name string) error {
	_, err := os.Stat(name)
	if errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(name, os.ModePerm)
	}
	return err
}

// DumpJSON writes an indented JSON snapshot of data to
// debug/json/<folder>/<name>.json when DEBUG_DUMP_JSON is set. Used to
// inspect intermediate object graphs without touching batch outputs.
func DumpJSON(folder string, name string, data interface{}) error {
	if !config.DEBUG_DUMP_JSON {
		return nil
	}
	dir := path.Join("debug", "json", folder)
	if err := createIfNotExist(dir); err != nil {
		return err
	}
	blob, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(dir, name+".json"), blob, 0644)
}

// DumpBinary writes data to debug/binary/<folder>/<name>.bin when
// DEBUG_DUMP_BINARY is set.
func DumpBinary(folder string, name string, data []byte) error {
	if !config.DEBUG_DUMP_BINARY {
		return nil
	}
	dir := path.Join("debug", "binary", folder)
	if err := createIfNotExist(dir); err != nil {
		return err
	}
	return os.WriteFile(path.Join(dir, name+".bin"), data, 0644)
}
