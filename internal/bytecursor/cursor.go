// Package bytecursor provides endian-aware typed reads and writes over a
// shared byte buffer. It is the lowest-level building block
// the Parser and Writer sit on, generalizing the raw binary.Read/Write calls
// the original engine made directly against its io.Reader/io.Writer.
package bytecursor

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/dicomkit/dicomkit/internal/dcmerr"
)

// nativeLittleEndian reports this process's native byte order, detected
// once at package init.
var nativeLittleEndian = func() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// Cursor wraps a byte buffer and a configured endianness.
type Cursor struct {
	buf          []byte
	littleEndian bool
	order        binary.ByteOrder
}

// New wraps buf for reading/writing with the given endianness. buf is
// borrowed, not copied: ReadBytes and the aligned typed-array reads return
// views into it.
func New(buf []byte, littleEndian bool) *Cursor {
	c := &Cursor{buf: buf, littleEndian: littleEndian}
	if littleEndian {
		c.order = binary.LittleEndian
	} else {
		c.order = binary.BigEndian
	}
	return c
}

// Len returns the length of the backing buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Bytes returns the backing buffer (not a copy).
func (c *Cursor) Bytes() []byte { return c.buf }

func oob(offset, n, buflen int) error {
	return dcmerr.Newf(dcmerr.OutOfBounds, "range [%d,%d) exceeds buffer length %d", offset, offset+n, buflen)
}

func (c *Cursor) check(offset, n int) error {
	if offset < 0 || n < 0 || offset+n > len(c.buf) {
		return oob(offset, n, len(c.buf))
	}
	return nil
}

// ReadU8 reads a single unsigned byte at offset.
func (c *Cursor) ReadU8(offset int) (uint8, error) {
	if err := c.check(offset, 1); err != nil {
		return 0, err
	}
	return c.buf[offset], nil
}

// ReadI8 reads a single signed byte at offset.
func (c *Cursor) ReadI8(offset int) (int8, error) {
	v, err := c.ReadU8(offset)
	return int8(v), err
}

// ReadU16 reads a 16-bit unsigned value at offset in the cursor's endianness.
func (c *Cursor) ReadU16(offset int) (uint16, error) {
	if err := c.check(offset, 2); err != nil {
		return 0, err
	}
	return c.order.Uint16(c.buf[offset:]), nil
}

// ReadI16 reads a 16-bit signed value at offset.
func (c *Cursor) ReadI16(offset int) (int16, error) {
	v, err := c.ReadU16(offset)
	return int16(v), err
}

// ReadU32 reads a 32-bit unsigned value at offset.
func (c *Cursor) ReadU32(offset int) (uint32, error) {
	if err := c.check(offset, 4); err != nil {
		return 0, err
	}
	return c.order.Uint32(c.buf[offset:]), nil
}

// ReadI32 reads a 32-bit signed value at offset.
func (c *Cursor) ReadI32(offset int) (int32, error) {
	v, err := c.ReadU32(offset)
	return int32(v), err
}

// ReadF32 reads an IEEE-754 single-precision float at offset.
func (c *Cursor) ReadF32(offset int) (float32, error) {
	v, err := c.ReadU32(offset)
	return math.Float32frombits(v), err
}

// ReadF64 reads an IEEE-754 double-precision float at offset.
func (c *Cursor) ReadF64(offset int) (float64, error) {
	if err := c.check(offset, 8); err != nil {
		return 0, err
	}
	return math.Float64frombits(c.order.Uint64(c.buf[offset:])), nil
}

// ReadString reads n raw bytes at offset as a 1-byte-per-char ASCII string,
// with no charset decoding applied.
func (c *Cursor) ReadString(offset, n int) (string, error) {
	if err := c.check(offset, n); err != nil {
		return "", err
	}
	return string(c.buf[offset : offset+n]), nil
}

// ReadBytes returns a view of n raw bytes at offset. Callers that need the
// data to outlive the cursor's buffer must copy it explicitly.
func (c *Cursor) ReadBytes(offset, n int) ([]byte, error) {
	if err := c.check(offset, n); err != nil {
		return nil, err
	}
	return c.buf[offset : offset+n], nil
}

// ReadHex16 reads a 16-bit value and renders it as "0xXXXX" (uppercase,
// zero-padded), used for AT-VR tag-pair formatting.
func (c *Cursor) ReadHex16(offset int) (string, error) {
	v, err := c.ReadU16(offset)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0x%04X", v), nil
}

// readTypedAligned returns a zero-copy []T view of count elements at offset,
// flipping byte order in place if the cursor's endianness differs from
// native. It must only be called when offset is aligned to sizeof(T).
func readTypedAligned[T ~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~float32 | ~float64](c *Cursor, offset, count int, flip func([]T)) ([]T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if err := c.check(offset, count*size); err != nil {
		return nil, err
	}
	out := unsafe.Slice((*T)(unsafe.Pointer(&c.buf[offset])), count)
	needsFlip := size > 1 && (c.littleEndian != nativeLittleEndian)
	if needsFlip {
		flip(out)
	}
	return out, nil
}

// ReadU16Array reads byteLen/2 uint16 values starting at offset. When offset
// is 2-byte aligned this is a zero-copy view (flipped in place if the
// cursor's endianness differs from native); otherwise it falls back to an
// element-wise read.
func (c *Cursor) ReadU16Array(offset, byteLen int) ([]uint16, error) {
	n := byteLen / 2
	if offset%2 == 0 {
		return readTypedAligned[uint16](c, offset, n, flipU16)
	}
	out := make([]uint16, n)
	for i := range out {
		v, err := c.ReadU16(offset + i*2)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadI16Array is the signed counterpart of ReadU16Array.
func (c *Cursor) ReadI16Array(offset, byteLen int) ([]int16, error) {
	u, err := c.ReadU16Array(offset, byteLen)
	if err != nil {
		return nil, err
	}
	out := make([]int16, len(u))
	for i, v := range u {
		out[i] = int16(v)
	}
	return out, nil
}

// ReadU32Array reads byteLen/4 uint32 values, with the same alignment
// policy as ReadU16Array.
func (c *Cursor) ReadU32Array(offset, byteLen int) ([]uint32, error) {
	n := byteLen / 4
	if offset%4 == 0 {
		return readTypedAligned[uint32](c, offset, n, flipU32)
	}
	out := make([]uint32, n)
	for i := range out {
		v, err := c.ReadU32(offset + i*4)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadI32Array is the signed counterpart of ReadU32Array.
func (c *Cursor) ReadI32Array(offset, byteLen int) ([]int32, error) {
	u, err := c.ReadU32Array(offset, byteLen)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(u))
	for i, v := range u {
		out[i] = int32(v)
	}
	return out, nil
}

// ReadF32Array reads byteLen/4 float32 values.
func (c *Cursor) ReadF32Array(offset, byteLen int) ([]float32, error) {
	n := byteLen / 4
	out := make([]float32, n)
	for i := range out {
		v, err := c.ReadF32(offset + i*4)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadF64Array reads byteLen/8 float64 values.
func (c *Cursor) ReadF64Array(offset, byteLen int) ([]float64, error) {
	n := byteLen / 8
	out := make([]float64, n)
	for i := range out {
		v, err := c.ReadF64(offset + i*8)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func flipU16(s []uint16) {
	for i, v := range s {
		s[i] = v<<8 | v>>8
	}
}

func flipU32(s []uint32) {
	for i, v := range s {
		s[i] = (v<<24)&0xff000000 | (v<<8)&0x00ff0000 | (v>>8)&0x0000ff00 | (v >> 24)
	}
}

// --- writes ---

// WriteU8 writes b at offset and returns the advanced offset.
func (c *Cursor) WriteU8(offset int, b uint8) (int, error) {
	if err := c.check(offset, 1); err != nil {
		return offset, err
	}
	c.buf[offset] = b
	return offset + 1, nil
}

// WriteU16 writes v at offset in the cursor's endianness and returns the
// advanced offset.
func (c *Cursor) WriteU16(offset int, v uint16) (int, error) {
	if err := c.check(offset, 2); err != nil {
		return offset, err
	}
	c.order.PutUint16(c.buf[offset:], v)
	return offset + 2, nil
}

// WriteU32 writes v at offset and returns the advanced offset.
func (c *Cursor) WriteU32(offset int, v uint32) (int, error) {
	if err := c.check(offset, 4); err != nil {
		return offset, err
	}
	c.order.PutUint32(c.buf[offset:], v)
	return offset + 4, nil
}

// WriteF32 writes v at offset and returns the advanced offset.
func (c *Cursor) WriteF32(offset int, v float32) (int, error) {
	return c.WriteU32(offset, math.Float32bits(v))
}

// WriteF64 writes v at offset and returns the advanced offset.
func (c *Cursor) WriteF64(offset int, v float64) (int, error) {
	if err := c.check(offset, 8); err != nil {
		return offset, err
	}
	c.order.PutUint64(c.buf[offset:], math.Float64bits(v))
	return offset + 8, nil
}

// WriteBytes copies b into the buffer at offset and returns the advanced
// offset.
func (c *Cursor) WriteBytes(offset int, b []byte) (int, error) {
	if err := c.check(offset, len(b)); err != nil {
		return offset, err
	}
	copy(c.buf[offset:], b)
	return offset + len(b), nil
}

// WriteString writes s as raw ASCII bytes at offset and returns the
// advanced offset.
func (c *Cursor) WriteString(offset int, s string) (int, error) {
	return c.WriteBytes(offset, []byte(s))
}
