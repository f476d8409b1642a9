package memory

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrUnexpectedEOF is returned when a read runs past the end of the buffer.
var ErrUnexpectedEOF = errors.New("unexpected end of data")

type Int interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64
}

type Value interface {
	Int | float32 | float64
}

// ReadInt reads a little-endian value from any reader. Kept for callers that
// work on plain io.Reader streams; cursor-based code should use Read instead.
func ReadInt[T Int](r io.Reader) (T, error) {
	var value T
	err := binary.Read(r, binary.LittleEndian, &value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Cursor is a positioned little-endian reader over a fully-buffered byte
// source. It never seeks implicitly; callers that need to revisit a record
// capture Pos and Seek back explicitly.
type Cursor struct {
	data []byte
	pos  int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

func (c *Cursor) Pos() int {
	return c.pos
}

func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.data) {
		return fmt.Errorf("seek to %d outside buffer of %d bytes: %w", pos, len(c.data), ErrUnexpectedEOF)
	}
	c.pos = pos
	return nil
}

// ReadBytes returns a copy of the next n bytes, nil when n is zero.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.data) {
		return nil, fmt.Errorf("read of %d bytes at %d: %w", n, c.pos, ErrUnexpectedEOF)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]byte, n)
	copy(out, c.data[c.pos:c.pos+n])
	c.pos += n
	return out, nil
}

// Read reads one little-endian fixed-width value at the current position.
func Read[T Value](c *Cursor) (T, error) {
	var value T
	size := binary.Size(value)
	if c.pos+size > len(c.data) {
		return value, fmt.Errorf("read of %d bytes at %d: %w", size, c.pos, ErrUnexpectedEOF)
	}
	err := binary.Read(bytes.NewReader(c.data[c.pos:c.pos+size]), binary.LittleEndian, &value)
	if err != nil {
		return value, err
	}
	c.pos += size
	return value, nil
}

// Writer is an append-oriented little-endian writer over a growable buffer.
// Backpatching (size fields written before their payload is known) goes
// through PatchAt with a position captured via Pos.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Pos() int {
	return len(w.buf)
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Write appends one little-endian fixed-width value.
func Write[T Value](w *Writer, value T) {
	var scratch bytes.Buffer
	// cannot fail for fixed-width values on a bytes.Buffer
	_ = binary.Write(&scratch, binary.LittleEndian, value)
	w.buf = append(w.buf, scratch.Bytes()...)
}

// PatchAt overwrites a previously written fixed-width value at pos.
func PatchAt[T Value](w *Writer, pos int, value T) error {
	var scratch bytes.Buffer
	_ = binary.Write(&scratch, binary.LittleEndian, value)
	b := scratch.Bytes()
	if pos < 0 || pos+len(b) > len(w.buf) {
		return fmt.Errorf("patch of %d bytes at %d outside buffer of %d bytes: %w", len(b), pos, len(w.buf), ErrUnexpectedEOF)
	}
	copy(w.buf[pos:], b)
	return nil
}
