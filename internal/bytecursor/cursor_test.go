package bytecursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_ReadWriteScalarsLittleEndian(t *testing.T) {
	buf := make([]byte, 32)
	c := New(buf, true)

	off, err := c.WriteU16(0, 0x0102)
	require.NoError(t, err)
	assert.Equal(t, 2, off)

	v, err := c.ReadU16(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), v)
	assert.Equal(t, byte(0x02), buf[0], "little endian stores the low byte first")

	off, err = c.WriteU32(2, 0xDEADBEEF)
	require.NoError(t, err)
	assert.Equal(t, 6, off)
	u32, err := c.ReadU32(2)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	off, err = c.WriteF32(6, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 10, off)
	f32, err := c.ReadF32(6)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f32)

	off, err = c.WriteF64(10, -3.25)
	require.NoError(t, err)
	assert.Equal(t, 18, off)
	f64, err := c.ReadF64(10)
	require.NoError(t, err)
	assert.Equal(t, -3.25, f64)
}

func TestCursor_ReadWriteScalarsBigEndian(t *testing.T) {
	buf := make([]byte, 8)
	c := New(buf, false)

	_, err := c.WriteU16(0, 0x0102)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), buf[0], "big endian stores the high byte first")

	v, err := c.ReadU16(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), v)
}

func TestCursor_WriteBytesAndString(t *testing.T) {
	buf := make([]byte, 16)
	c := New(buf, true)

	off, err := c.WriteString(0, "DICM")
	require.NoError(t, err)
	assert.Equal(t, 4, off)

	s, err := c.ReadString(0, 4)
	require.NoError(t, err)
	assert.Equal(t, "DICM", s)

	off, err = c.WriteBytes(4, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 7, off)

	b, err := c.ReadBytes(4, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)
}

func TestCursor_WriteU8AndI8(t *testing.T) {
	buf := make([]byte, 2)
	c := New(buf, true)

	off, err := c.WriteU8(0, 0xFF)
	require.NoError(t, err)
	assert.Equal(t, 1, off)

	v, err := c.ReadU8(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xFF), v)

	i, err := c.ReadI8(0)
	require.NoError(t, err)
	assert.Equal(t, int8(-1), i)
}

func TestCursor_ReadHex16(t *testing.T) {
	buf := []byte{0x12, 0x34}
	c := New(buf, false)
	s, err := c.ReadHex16(0)
	require.NoError(t, err)
	assert.Equal(t, "0x1234", s)
}

func TestCursor_U16ArrayAlignedAndUnaligned(t *testing.T) {
	buf := make([]byte, 16)
	c := New(buf, true)
	for i, v := range []uint16{1, 2, 3, 4} {
		_, err := c.WriteU16(i*2, v)
		require.NoError(t, err)
	}

	aligned, err := c.ReadU16Array(0, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2, 3, 4}, aligned)

	unaligned, err := c.ReadU16Array(1, 4)
	require.NoError(t, err)
	assert.Len(t, unaligned, 2)
}

func TestCursor_U16ArrayFlipsOnEndianMismatch(t *testing.T) {
	buf := make([]byte, 4)
	be := New(buf, false)
	_, err := be.WriteU16(0, 0x0102)
	require.NoError(t, err)

	le := New(buf, true)
	arr, err := le.ReadU16Array(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0201}, arr, "reading big-endian bytes through a little-endian cursor must byte-swap")
}

func TestCursor_U32ArrayAligned(t *testing.T) {
	buf := make([]byte, 8)
	c := New(buf, true)
	_, _ = c.WriteU32(0, 0x11223344)
	_, _ = c.WriteU32(4, 0x55667788)

	arr, err := c.ReadU32Array(0, 8)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x11223344, 0x55667788}, arr)
}

func TestCursor_F32ArrayAndF64Array(t *testing.T) {
	buf := make([]byte, 16)
	c := New(buf, true)
	_, _ = c.WriteF32(0, 1.5)
	_, _ = c.WriteF32(4, -2.5)

	f32s, err := c.ReadF32Array(0, 8)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2.5}, f32s)

	buf2 := make([]byte, 16)
	c2 := New(buf2, true)
	_, _ = c2.WriteF64(0, 3.5)
	_, _ = c2.WriteF64(8, -4.5)
	f64s, err := c2.ReadF64Array(0, 16)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.5, -4.5}, f64s)
}

func TestCursor_OutOfBoundsErrors(t *testing.T) {
	c := New(make([]byte, 4), true)
	_, err := c.ReadU32(2)
	assert.Error(t, err)

	_, err = c.WriteU16(3, 1)
	assert.Error(t, err)

	_, err = c.ReadBytes(0, 10)
	assert.Error(t, err)
}

func TestCursor_LenAndBytes(t *testing.T) {
	buf := []byte{1, 2, 3}
	c := New(buf, true)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, buf, c.Bytes())
}
