package dicom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func grey16Metadata(rows, cols, frames int) Metadata {
	md := DefaultMetadata()
	md.Kind = KindModern
	md.Rows, md.Columns = rows, cols
	md.Frames = frames
	md.RowsFound, md.ColumnsFound, md.PixelDataFound = true, true, true
	md.PixelDataOffset = 4
	return md
}

func withPrefix(payload []byte) *bytes.Reader {
	return bytes.NewReader(append([]byte{0xde, 0xad, 0xbe, 0xef}, payload...))
}

func TestDecodePixelsGrey16(t *testing.T) {
	le := &fileBuilder{order: binary.LittleEndian}
	testCases := []struct {
		name   string
		md     func() Metadata
		raw    []byte
		want   [][]uint16
		signed bool
	}{
		{
			name: "unsigned passthrough",
			md:   func() Metadata { return grey16Metadata(1, 3, 1) },
			raw:  le.shorts(0, 1000, 65535),
			want: [][]uint16{{0, 1000, 65535}},
		},
		{
			name: "signed negative shifts the frame",
			md: func() Metadata {
				md := grey16Metadata(1, 2, 1)
				md.PixelRepresentation = 1
				return md
			},
			raw:    le.shorts(uint16(0xFF9C), 100),
			want:   [][]uint16{{32668, 32868}},
			signed: true,
		},
		{
			name: "rescale applied before storing",
			md: func() Metadata {
				md := grey16Metadata(1, 2, 1)
				md.RescaleSlope = 2
				md.RescaleIntercept = 10
				return md
			},
			raw:  le.shorts(5, 100),
			want: [][]uint16{{20, 210}},
		},
		{
			name: "monochrome1 inverts",
			md: func() Metadata {
				md := grey16Metadata(1, 2, 1)
				md.PhotometricInterpretation = Monochrome1
				return md
			},
			raw:  le.shorts(0, 65535),
			want: [][]uint16{{65535, 0}},
		},
		{
			name: "multi-frame with one signed frame",
			md: func() Metadata {
				md := grey16Metadata(1, 2, 2)
				md.PixelRepresentation = 1
				return md
			},
			raw:    le.shorts(1, 2, uint16(0xFFFF), 3),
			want:   [][]uint16{{1, 2}, {32767, 32771}},
			signed: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := withPrefix(tc.raw)
			buf, err := DecodePixels(r, r.Size(), tc.md())
			if err != nil {
				t.Fatalf("DecodePixels() => %v", err)
			}
			if buf.Format != FormatGrey16 {
				t.Fatalf("Format = %v, want grey16", buf.Format)
			}
			if buf.Signed != tc.signed {
				t.Errorf("Signed = %v, want %v", buf.Signed, tc.signed)
			}
			if len(buf.Grey16) != len(tc.want) {
				t.Fatalf("frames = %d, want %d", len(buf.Grey16), len(tc.want))
			}
			for f := range tc.want {
				for i, v := range tc.want[f] {
					if buf.Grey16[f][i] != v {
						t.Errorf("frame %d sample %d = %d, want %d", f, i, buf.Grey16[f][i], v)
					}
				}
			}
		})
	}
}

func TestDecodePixelsGrey8(t *testing.T) {
	md := grey16Metadata(1, 3, 1)
	md.BitsAllocated = 8
	md.PhotometricInterpretation = Monochrome1
	r := withPrefix([]byte{10, 0, 255})

	buf, err := DecodePixels(r, r.Size(), md)
	if err != nil {
		t.Fatalf("DecodePixels() => %v", err)
	}
	if want := []byte{245, 255, 0}; !bytes.Equal(buf.Grey8, want) {
		t.Errorf("Grey8 = %v, want %v", buf.Grey8, want)
	}
}

func TestDecodePixelsRGB(t *testing.T) {
	md := grey16Metadata(1, 2, 1)
	md.BitsAllocated = 8
	md.SamplesPerPixel = 3
	raw := []byte{1, 2, 3, 4, 5, 6}
	r := withPrefix(raw)

	buf, err := DecodePixels(r, r.Size(), md)
	if err != nil {
		t.Fatalf("DecodePixels() => %v", err)
	}
	if buf.Format != FormatRGB24 || !bytes.Equal(buf.RGB24, raw) {
		t.Errorf("RGB24 = %v (%v), want %v", buf.RGB24, buf.Format, raw)
	}
}

func TestDecodePixelsBigEndianStreamKeepsLittleEndianSamples(t *testing.T) {
	md := grey16Metadata(1, 2, 1)
	md.BigEndian = true
	r := withPrefix([]byte{0x01, 0x02, 0x03, 0x04})

	buf, err := DecodePixels(r, r.Size(), md)
	if err != nil {
		t.Fatalf("DecodePixels() => %v", err)
	}
	if buf.Grey16[0][0] != 0x0201 || buf.Grey16[0][1] != 0x0403 {
		t.Errorf("Grey16 = %#04x", buf.Grey16[0])
	}

	data, err := EncodePixels(md, buf)
	if err != nil {
		t.Fatalf("EncodePixels() => %v", err)
	}
	if !bytes.Equal(data, []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Errorf("EncodePixels() = % x, want the source bytes", data)
	}
}

func TestDecodePixelsErrors(t *testing.T) {
	t.Run("unsupported layout", func(t *testing.T) {
		md := grey16Metadata(1, 1, 1)
		md.SamplesPerPixel = 3
		r := withPrefix(make([]byte, 6))
		if _, err := DecodePixels(r, r.Size(), md); !errors.Is(err, ErrUnsupportedPixelFormat) {
			t.Errorf("DecodePixels() => %v, want ErrUnsupportedPixelFormat", err)
		}
	})
	t.Run("frame count beyond pixel data", func(t *testing.T) {
		md := grey16Metadata(1, 1, math.MaxInt32)
		r := withPrefix(make([]byte, 2))
		if _, err := DecodePixels(r, r.Size(), md); !errors.Is(err, ErrFileAccess) {
			t.Errorf("DecodePixels() => %v, want ErrFileAccess", err)
		}
	})
	t.Run("truncated pixel data", func(t *testing.T) {
		md := grey16Metadata(2, 2, 1)
		r := withPrefix(make([]byte, 6))
		if _, err := DecodePixels(r, r.Size(), md); !errors.Is(err, ErrFileAccess) {
			t.Errorf("DecodePixels() => %v, want ErrFileAccess", err)
		}
	})
}

func TestDecodePixelsPlaceholder(t *testing.T) {
	md := DefaultMetadata()
	md.Kind = KindUnsupportedTransferSyntax
	buf, err := DecodePixels(bytes.NewReader(nil), 0, md)
	if err != nil {
		t.Fatalf("DecodePixels() => %v", err)
	}
	if buf.Format != FormatGrey8 || len(buf.Grey8) != PlaceholderColumns*PlaceholderRows {
		t.Fatalf("placeholder = %v with %d samples", buf.Format, len(buf.Grey8))
	}
	for i, v := range buf.Grey8 {
		if v != PlaceholderValue {
			t.Fatalf("sample %d = %d, want %d", i, v, PlaceholderValue)
		}
	}

	wl := ComputeWindowLevel(buf, md.WithPlaceholder())
	if wl.Width != PlaceholderWindowWidth || wl.Center != PlaceholderWindowCenter {
		t.Errorf("window = %v/%v", wl.Center, wl.Width)
	}
}

func TestPixelBufferClone(t *testing.T) {
	orig := NewGrey16Buffer([][]uint16{{1, 2}}, true)
	c := orig.Clone()
	c.Grey16[0][0] = 99
	if orig.Grey16[0][0] != 1 {
		t.Error("Clone() shares frame storage")
	}
	if !c.Signed || c.Frames() != 1 {
		t.Errorf("Clone() = %+v", c)
	}
}
