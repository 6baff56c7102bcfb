package dicom

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Cursor is a positioned reader over a random-access byte source. Every read
// starts at the current position and advances it; the byte order can be
// switched at any point of the stream.
type Cursor struct {
	r     io.ReaderAt
	size  int64
	pos   int64
	order binary.ByteOrder
}

// NewCursor creates a little-endian cursor over size bytes of r
func NewCursor(r io.ReaderAt, size int64) *Cursor {
	return &Cursor{r: r, size: size, order: binary.LittleEndian}
}

// Position returns the current offset
func (c *Cursor) Position() int64 { return c.pos }

// Size returns the length of the underlying source
func (c *Cursor) Size() int64 { return c.size }

// Seek moves to an absolute offset
func (c *Cursor) Seek(offset int64) error {
	if offset < 0 || offset > c.size {
		return fmt.Errorf("seek to %d outside [0, %d]: %w", offset, c.size, io.ErrUnexpectedEOF)
	}
	c.pos = offset
	return nil
}

// ByteOrder returns the current byte order
func (c *Cursor) ByteOrder() binary.ByteOrder { return c.order }

// SetByteOrder switches the byte order for subsequent reads
func (c *Cursor) SetByteOrder(order binary.ByteOrder) { c.order = order }

// BigEndian reports whether reads are big-endian
func (c *Cursor) BigEndian() bool { return c.order == binary.BigEndian }

// Skip advances n bytes without reading them
func (c *Cursor) Skip(n int64) error {
	if n < 0 || c.pos+n > c.size {
		return fmt.Errorf("skip %d bytes at %d: %w", n, c.pos, io.ErrUnexpectedEOF)
	}
	c.pos += n
	return nil
}

// Bytes reads exactly n bytes
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || c.pos+int64(n) > c.size {
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, c.pos, io.ErrUnexpectedEOF)
	}
	b := make([]byte, n)
	if n == 0 {
		return b, nil
	}
	got, err := c.r.ReadAt(b, c.pos)
	if got != n {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, c.pos, err)
	}
	c.pos += int64(n)
	return b, nil
}

// Byte reads one byte
func (c *Cursor) Byte() (byte, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads a 16-bit unsigned integer
func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return c.order.Uint16(b), nil
}

// Uint32 reads a 32-bit unsigned integer
func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(b), nil
}

// Int32 reads a 32-bit two's complement integer
func (c *Cursor) Int32() (int32, error) {
	v, err := c.Uint32()
	return int32(v), err
}

// Float32 reads an IEEE-754 single
func (c *Cursor) Float32() (float32, error) {
	v, err := c.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Float64 reads an IEEE-754 double
func (c *Cursor) Float64() (float64, error) {
	b, err := c.Bytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(c.order.Uint64(b)), nil
}

// String reads n bytes of text. The bytes are returned verbatim, padding
// included.
func (c *Cursor) String(n int) (string, error) {
	b, err := c.Bytes(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LUT reads a palette lookup table of length bytes, keeping the high byte of
// every 16-bit entry. Tables with an odd length are skipped and nil is
// returned.
func (c *Cursor) LUT(length int) ([]byte, error) {
	if length&1 != 0 {
		return nil, c.Skip(int64(length))
	}
	lut := make([]byte, length/2)
	for i := range lut {
		v, err := c.Uint16()
		if err != nil {
			return nil, err
		}
		lut[i] = byte(v >> 8)
	}
	return lut, nil
}
