package dicom

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// PixelFormat selects the populated variant of a PixelBuffer
type PixelFormat int

const (
	FormatGrey8 PixelFormat = iota + 1
	FormatGrey16
	FormatRGB24
)

func (f PixelFormat) String() string {
	switch f {
	case FormatGrey8:
		return "grey8"
	case FormatGrey16:
		return "grey16"
	case FormatRGB24:
		return "rgb24"
	default:
		return "unknown"
	}
}

// PixelBuffer holds decoded samples. Exactly one of Grey8, Grey16 or RGB24 is
// populated, as named by Format.
type PixelBuffer struct {
	Format PixelFormat

	// Grey8 is rows*columns samples.
	Grey8 []byte

	// Grey16 is one slice of rows*columns samples per frame.
	Grey16 [][]uint16

	// RGB24 is rows*columns*3 channel-interleaved bytes.
	RGB24 []byte

	// Signed is set when a 16-bit frame held negative values after rescale
	// and was shifted into the unsigned range.
	Signed bool
}

// NewGrey16Buffer wraps frames as a 16-bit buffer
func NewGrey16Buffer(frames [][]uint16, signed bool) *PixelBuffer {
	return &PixelBuffer{Format: FormatGrey16, Grey16: frames, Signed: signed}
}

// NewRGB24Buffer wraps interleaved bytes as a colour buffer
func NewRGB24Buffer(pixels []byte) *PixelBuffer {
	return &PixelBuffer{Format: FormatRGB24, RGB24: pixels}
}

// NewGrey8Buffer wraps bytes as an 8-bit buffer
func NewGrey8Buffer(pixels []byte) *PixelBuffer {
	return &PixelBuffer{Format: FormatGrey8, Grey8: pixels}
}

// PlaceholderBuffer returns the constant grey image shown for unrecognised sources
func PlaceholderBuffer() *PixelBuffer {
	px := make([]byte, PlaceholderColumns*PlaceholderRows)
	for i := range px {
		px[i] = PlaceholderValue
	}
	return NewGrey8Buffer(px)
}

// Frames returns the number of frames held
func (b *PixelBuffer) Frames() int {
	if b.Format == FormatGrey16 {
		return len(b.Grey16)
	}
	return 1
}

// Clone deep-copies the buffer
func (b *PixelBuffer) Clone() *PixelBuffer {
	if b == nil {
		return nil
	}
	c := &PixelBuffer{
		Format: b.Format,
		Grey8:  cloneBytes(b.Grey8),
		RGB24:  cloneBytes(b.RGB24),
		Signed: b.Signed,
	}
	if b.Grey16 != nil {
		c.Grey16 = make([][]uint16, len(b.Grey16))
		for i, f := range b.Grey16 {
			c.Grey16[i] = append([]uint16(nil), f...)
		}
	}
	return c
}

// DecodePixels materialises the pixel data described by md from r. Sources
// whose kind is not decodable yield the placeholder buffer; callers pair it
// with md.WithPlaceholder().
func DecodePixels(r io.ReaderAt, size int64, md Metadata) (*PixelBuffer, error) {
	if !md.Kind.Decodable() {
		return PlaceholderBuffer(), nil
	}

	format, ok := md.Format()
	if !ok {
		return nil, fmt.Errorf("%w: samples=%d bits=%d", ErrUnsupportedPixelFormat, md.SamplesPerPixel, md.BitsAllocated)
	}

	cur := NewCursor(r, size)

	switch format {
	case FormatGrey8:
		return decodeGrey8(cur, md)
	case FormatGrey16:
		return decodeGrey16(cur, md)
	default:
		return decodeRGB24(cur, md)
	}
}

func decodeGrey8(cur *Cursor, md Metadata) (*PixelBuffer, error) {
	raw, err := readRegion(cur, md.PixelDataOffset, md.Pixels())
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(raw))
	for i, s := range raw {
		v := int(float64(s)*md.RescaleSlope + md.RescaleIntercept)
		if md.Inverted() {
			v = math.MaxUint8 - v
		}
		out[i] = byte(v)
	}
	return NewGrey8Buffer(out), nil
}

func decodeGrey16(cur *Cursor, md Metadata) (*PixelBuffer, error) {
	frames := md.Frames
	if frames < 1 {
		frames = 1
	}
	n := md.Pixels()
	if need := int64(frames) * int64(n) * 2; need > cur.Size()-md.PixelDataOffset {
		return nil, fmt.Errorf("%w: %d frames of %d pixels exceed the pixel data", ErrFileAccess, frames, n)
	}
	buf := &PixelBuffer{Format: FormatGrey16, Grey16: make([][]uint16, frames)}
	for f := 0; f < frames; f++ {
		raw, err := readRegion(cur, md.PixelDataOffset+int64(f)*int64(n)*2, n*2)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", f, err)
		}
		frame, signed := decodeFrame16(raw, md)
		buf.Grey16[f] = frame
		buf.Signed = buf.Signed || signed
	}
	return buf, nil
}

// decodeFrame16 applies rescale and inversion to one frame. Samples are
// little-endian whatever the header byte order. A frame with any negative
// result is shifted by -MinInt16 as a whole and reported signed.
func decodeFrame16(raw []byte, md Metadata) ([]uint16, bool) {
	n := len(raw) / 2
	values := make([]int, n)
	lowest := math.MaxInt
	for i := 0; i < n; i++ {
		u := binary.LittleEndian.Uint16(raw[i*2:])
		var v int
		if md.PixelRepresentation == 0 {
			v = int(float64(u)*md.RescaleSlope + md.RescaleIntercept)
		} else {
			v = int(float64(int16(u))*md.RescaleSlope + md.RescaleIntercept)
		}
		if md.Inverted() {
			v = math.MaxUint16 - v
		}
		values[i] = v
		if v < lowest {
			lowest = v
		}
	}

	signed := n > 0 && lowest < 0
	out := make([]uint16, n)
	for i, v := range values {
		if signed {
			out[i] = uint16(v - math.MinInt16)
		} else {
			out[i] = uint16(v)
		}
	}
	return out, signed
}

func decodeRGB24(cur *Cursor, md Metadata) (*PixelBuffer, error) {
	raw, err := readRegion(cur, md.PixelDataOffset, md.Pixels()*3)
	if err != nil {
		return nil, err
	}
	return NewRGB24Buffer(raw), nil
}

func readRegion(cur *Cursor, offset int64, n int) ([]byte, error) {
	if err := cur.Seek(offset); err != nil {
		return nil, fmt.Errorf("%w: pixel data: %v", ErrFileAccess, err)
	}
	b, err := cur.Bytes(n)
	if err != nil {
		return nil, fmt.Errorf("%w: pixel data: %v", ErrFileAccess, err)
	}
	return b, nil
}
