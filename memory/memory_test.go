package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorReadsLittleEndian(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x00, 0x00, 0x00, 0x02, 0x01, 0xff})

	i, err := Read[int32](c)
	require.NoError(t, err)
	require.Equal(t, int32(1), i)

	u, err := Read[uint16](c)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0102), u)

	b, err := Read[uint8](c)
	require.NoError(t, err)
	require.Equal(t, uint8(0xff), b)
	require.Equal(t, 0, c.Remaining())
}

func TestCursorReadPastEnd(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02})
	_, err := Read[int32](c)
	require.ErrorIs(t, err, ErrUnexpectedEOF)
	// position must be unchanged after a failed read
	require.Equal(t, 0, c.Pos())
}

func TestCursorSeek(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3, 4})
	require.NoError(t, c.Seek(2))
	b, err := Read[uint8](c)
	require.NoError(t, err)
	require.Equal(t, uint8(3), b)

	require.NoError(t, c.Seek(4))
	require.ErrorIs(t, c.Seek(5), ErrUnexpectedEOF)
	require.ErrorIs(t, c.Seek(-1), ErrUnexpectedEOF)
}

func TestCursorReadBytes(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3})

	empty, err := c.ReadBytes(0)
	require.NoError(t, err)
	require.Nil(t, empty)

	b, err := c.ReadBytes(2)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, b)

	_, err = c.ReadBytes(2)
	require.ErrorIs(t, err, ErrUnexpectedEOF)
	_, err = c.ReadBytes(-1)
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	Write(w, int32(-7))
	Write(w, float32(1.5))
	Write(w, uint64(1<<40))
	w.WriteBytes([]byte{9, 9})

	c := NewCursor(w.Bytes())
	i, err := Read[int32](c)
	require.NoError(t, err)
	require.Equal(t, int32(-7), i)
	f, err := Read[float32](c)
	require.NoError(t, err)
	require.Equal(t, float32(1.5), f)
	u, err := Read[uint64](c)
	require.NoError(t, err)
	require.Equal(t, uint64(1<<40), u)
	b, err := c.ReadBytes(2)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 9}, b)
}

func TestWriterPatchAt(t *testing.T) {
	w := NewWriter()
	pos := w.Pos()
	Write(w, int32(0))
	Write(w, uint8(0xaa))
	require.NoError(t, PatchAt(w, pos, int32(42)))

	c := NewCursor(w.Bytes())
	i, err := Read[int32](c)
	require.NoError(t, err)
	require.Equal(t, int32(42), i)

	require.ErrorIs(t, PatchAt(w, w.Pos()-2, int32(1)), ErrUnexpectedEOF)
}
