package dicom

import (
	"encoding/binary"
	"fmt"
	"io"
)

// EncodePixels serialises buf in the layout md describes. 16-bit samples are
// written little-endian, the order DecodePixels reads them in.
func EncodePixels(md Metadata, buf *PixelBuffer) ([]byte, error) {
	if buf == nil {
		return nil, fmt.Errorf("%w: no pixels", ErrUnsupportedPixelFormat)
	}

	switch buf.Format {
	case FormatGrey8:
		return cloneBytes(buf.Grey8), nil
	case FormatRGB24:
		return cloneBytes(buf.RGB24), nil
	case FormatGrey16:
		n := md.Pixels()
		out := make([]byte, 0, len(buf.Grey16)*n*2)
		for f, frame := range buf.Grey16 {
			if len(frame) > n {
				return nil, fmt.Errorf("%w: frame %d holds %d samples, image has %d", ErrUnsupportedPixelFormat, f, len(frame), n)
			}
			region := make([]byte, n*2)
			for i, v := range frame {
				binary.LittleEndian.PutUint16(region[i*2:], v)
			}
			out = append(out, region...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPixelFormat, buf.Format)
	}
}

// OverwritePixels writes buf over the pixel region of an existing, valid
// file. Nothing outside the region is touched.
func OverwritePixels(w io.WriterAt, md Metadata, buf *PixelBuffer) error {
	if !md.Valid() || md.PixelDataOffset <= 0 {
		return fmt.Errorf("%w: pixel data offset unknown", ErrInvalidContainer)
	}
	data, err := EncodePixels(md, buf)
	if err != nil {
		return err
	}
	if _, err := w.WriteAt(data, md.PixelDataOffset); err != nil {
		return fmt.Errorf("%w: write pixel data: %v", ErrFileAccess, err)
	}
	return nil
}
