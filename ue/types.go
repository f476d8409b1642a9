package ue

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"

	"uasset-go/memory"
)

// FGuid is 16 raw bytes on the wire, in RFC byte order.
type FGuid = uuid.UUID

// ReadFString reads a length-prefixed string. The sign of the prefix selects
// the encoding: positive means 8-bit bytes, negative means UTF-16 code units
// (the magnitude counts units). Both forms include a NUL terminator that is
// stripped here. A zero prefix is the empty string.
func ReadFString(c *memory.Cursor) (string, error) {
	size, err := memory.Read[int32](c)
	if err != nil {
		return "", err
	}
	if size == 0 {
		return "", nil
	}
	if size > 0 {
		data, err := c.ReadBytes(int(size))
		if err != nil {
			return "", err
		}
		return string(data[:size-1]), nil
	}
	units := int(-size)
	data, err := c.ReadBytes(units * 2)
	if err != nil {
		return "", err
	}
	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data[:len(data)-2])
	if err != nil {
		return "", fmt.Errorf("utf-16 string: %w", err)
	}
	return string(decoded), nil
}

// WriteFString writes s in the 8-bit form when it is plain ASCII, otherwise
// in the UTF-16 form with a negated length prefix.
func WriteFString(w *memory.Writer, s string) error {
	if s == "" {
		memory.Write[int32](w, 0)
		return nil
	}
	if isASCII(s) {
		memory.Write[int32](w, int32(len(s)+1))
		w.WriteBytes([]byte(s))
		w.WriteBytes([]byte{0})
		return nil
	}
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		return fmt.Errorf("utf-16 string: %w", err)
	}
	units := len(encoded)/2 + 1
	memory.Write[int32](w, int32(-units))
	w.WriteBytes(encoded)
	w.WriteBytes([]byte{0, 0})
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func ReadGuid(c *memory.Cursor) (FGuid, error) {
	data, err := c.ReadBytes(16)
	if err != nil {
		return FGuid{}, err
	}
	var g FGuid
	copy(g[:], data)
	return g, nil
}

func WriteGuid(w *memory.Writer, g FGuid) {
	w.WriteBytes(g[:])
}

type FVector struct {
	X float32
	Y float32
	Z float32
}

func ReadFVector(c *memory.Cursor) (FVector, error) {
	var v FVector
	var err error
	if v.X, err = memory.Read[float32](c); err != nil {
		return v, err
	}
	if v.Y, err = memory.Read[float32](c); err != nil {
		return v, err
	}
	if v.Z, err = memory.Read[float32](c); err != nil {
		return v, err
	}
	return v, nil
}

func WriteFVector(w *memory.Writer, v FVector) {
	memory.Write(w, v.X)
	memory.Write(w, v.Y)
	memory.Write(w, v.Z)
}
