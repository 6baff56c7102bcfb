package dicom

import (
	"bytes"
	"encoding/binary"
)

// fileBuilder assembles tag streams for tests.
type fileBuilder struct {
	buf   bytes.Buffer
	order binary.ByteOrder
}

func newModernFile() *fileBuilder {
	b := &fileBuilder{order: binary.LittleEndian}
	b.buf.Write(make([]byte, preambleLength))
	b.buf.WriteString(magic)
	return b
}

func newLegacyFile() *fileBuilder {
	return &fileBuilder{order: binary.LittleEndian}
}

func (b *fileBuilder) tag(tag uint32) {
	b.u16(uint16(tag >> 16))
	b.u16(uint16(tag))
}

func (b *fileBuilder) u16(v uint16) {
	p := make([]byte, 2)
	b.order.PutUint16(p, v)
	b.buf.Write(p)
}

func (b *fileBuilder) u32(v uint32) {
	p := make([]byte, 4)
	b.order.PutUint32(p, v)
	b.buf.Write(p)
}

// explicit writes an explicit VR element
func (b *fileBuilder) explicit(tag uint32, vr string, value []byte) *fileBuilder {
	b.tag(tag)
	b.buf.WriteString(vr)
	if ParseVR(vr).isLongForm() {
		b.buf.Write([]byte{0, 0})
		b.u32(uint32(len(value)))
	} else {
		b.u16(uint16(len(value)))
	}
	b.buf.Write(value)
	return b
}

// implicit writes an implicit VR element
func (b *fileBuilder) implicit(tag uint32, value []byte) *fileBuilder {
	b.tag(tag)
	b.u32(uint32(len(value)))
	b.buf.Write(value)
	return b
}

// undefined opens an explicit sequence of undefined length
func (b *fileBuilder) undefined(tag uint32) *fileBuilder {
	b.tag(tag)
	b.buf.WriteString("SQ")
	b.buf.Write([]byte{0, 0})
	b.u32(0xFFFFFFFF)
	return b
}

// delimiter writes an item or sequence delimiter
func (b *fileBuilder) delimiter(tag uint32) *fileBuilder {
	b.tag(tag)
	b.u32(0)
	return b
}

func (b *fileBuilder) text(tag uint32, vr, s string) *fileBuilder {
	return b.explicit(tag, vr, padded(s))
}

func (b *fileBuilder) us(tag uint32, v uint16) *fileBuilder {
	return b.explicit(tag, "US", b.shorts(v))
}

func (b *fileBuilder) shorts(values ...uint16) []byte {
	p := make([]byte, len(values)*2)
	for i, v := range values {
		b.order.PutUint16(p[i*2:], v)
	}
	return p
}

// grey16 writes the geometry tags and the pixel data for a 16-bit image
func (b *fileBuilder) grey16(rows, cols uint16, samples ...uint16) *fileBuilder {
	b.us(TagSamplesPerPixel, 1)
	b.us(TagRows, rows)
	b.us(TagColumns, cols)
	b.us(TagBitsAllocated, 16)
	return b.explicit(TagPixelData, "OW", b.shorts(samples...))
}

func (b *fileBuilder) bytes() []byte {
	return b.buf.Bytes()
}

func (b *fileBuilder) reader() (*bytes.Reader, int64) {
	data := b.buf.Bytes()
	return bytes.NewReader(data), int64(len(data))
}

func padded(s string) []byte {
	if len(s)%2 != 0 {
		s += " "
	}
	return []byte(s)
}

// writerAtBuffer is an in-memory io.WriterAt
type writerAtBuffer struct {
	data []byte
}

func (w *writerAtBuffer) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(w.data) {
		grown := make([]byte, end)
		copy(grown, w.data)
		w.data = grown
	}
	copy(w.data[off:], p)
	return len(p), nil
}
