package dicom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestCursorByteOrder(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	c := NewCursor(bytes.NewReader(data), int64(len(data)))

	v, err := c.Uint16()
	if err != nil || v != 0x0201 {
		t.Fatalf("little-endian Uint16() = %#x, %v", v, err)
	}
	c.SetByteOrder(binary.BigEndian)
	if !c.BigEndian() {
		t.Error("BigEndian() = false after switch")
	}
	v, err = c.Uint16()
	if err != nil || v != 0x0304 {
		t.Fatalf("big-endian Uint16() = %#x, %v", v, err)
	}
	if c.Position() != 4 {
		t.Errorf("Position() = %d, want 4", c.Position())
	}
}

func TestCursorReadPastEnd(t *testing.T) {
	data := []byte{1, 2, 3}
	c := NewCursor(bytes.NewReader(data), int64(len(data)))
	if _, err := c.Uint32(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Uint32() => %v, want io.ErrUnexpectedEOF", err)
	}
	if c.Position() != 0 {
		t.Errorf("failed read moved position to %d", c.Position())
	}
	if err := c.Skip(4); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Skip() => %v", err)
	}
	if err := c.Seek(4); err == nil {
		t.Error("Seek() beyond size succeeded")
	}
}

func TestCursorLUT(t *testing.T) {
	t.Run("keeps high bytes", func(t *testing.T) {
		data := []byte{0x11, 0xAA, 0x22, 0xBB}
		c := NewCursor(bytes.NewReader(data), int64(len(data)))
		lut, err := c.LUT(4)
		if err != nil {
			t.Fatalf("LUT() => %v", err)
		}
		if !bytes.Equal(lut, []byte{0xAA, 0xBB}) {
			t.Errorf("LUT() = %x", lut)
		}
	})
	t.Run("odd length skipped", func(t *testing.T) {
		data := []byte{1, 2, 3}
		c := NewCursor(bytes.NewReader(data), int64(len(data)))
		lut, err := c.LUT(3)
		if err != nil || lut != nil {
			t.Fatalf("LUT() = %v, %v", lut, err)
		}
		if c.Position() != 3 {
			t.Errorf("Position() = %d, want 3", c.Position())
		}
	})
}

func TestCursorFloats(t *testing.T) {
	b := &fileBuilder{order: binary.LittleEndian}
	b.u32(0x3FC00000)
	data := b.bytes()
	c := NewCursor(bytes.NewReader(data), int64(len(data)))
	f, err := c.Float32()
	if err != nil || f != 1.5 {
		t.Errorf("Float32() = %v, %v", f, err)
	}
}
