// Package thumbnail renders scaled PNG previews of study images
package thumbnail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"time"

	"github.com/otcheredev/ris-dicom-imaging/internal/imaging"
	"github.com/otcheredev/ris-dicom-imaging/internal/storage"
	"github.com/otcheredev/ris-dicom-imaging/pkg/dicom"
	"golang.org/x/image/draw"
)

// Renderer reads source PNGs from storage and renders thumbnails
type Renderer struct {
	store   storage.Storage
	timeout time.Duration
}

// NewRenderer creates a renderer reading from store
func NewRenderer(store storage.Storage, timeout time.Duration) *Renderer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Renderer{store: store, timeout: timeout}
}

// Thumbnail loads the PNG at path and returns it scaled to width x height as
// base64 encoded PNG.
func (r *Renderer) Thumbnail(path string, width, height int) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	data, err := r.store.Get(ctx, path)
	if err != nil {
		return "", err
	}
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	out, err := EncodePNG(Scale(src, width, height))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// Scale resizes img to exactly width x height
func Scale(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Rect, img, img.Bounds(), draw.Over, nil)
	return dst
}

// ScaleToWidth resizes img to width keeping its aspect ratio
func ScaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 {
		return img
	}
	h := int(float32(b.Dy()) / float32(b.Dx()) * float32(width))
	return Scale(img, width, max(h, 1))
}

// EncodePNG encodes img as PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Render converts one frame of img to a displayable image. 16-bit samples
// are mapped through the image's window.
func Render(img *imaging.Image, frame int) (image.Image, error) {
	buf, err := img.Pixels()
	if err != nil {
		return nil, err
	}
	w, h := img.Width(), img.Height()

	switch buf.Format {
	case dicom.FormatGrey8:
		if len(buf.Grey8) < w*h {
			return nil, fmt.Errorf("%w: %d samples for %dx%d", imaging.ErrInvalidPixelOperation, len(buf.Grey8), w, h)
		}
		out := image.NewGray(image.Rect(0, 0, w, h))
		copy(out.Pix, buf.Grey8[:w*h])
		return out, nil

	case dicom.FormatGrey16:
		if frame < 0 || frame >= len(buf.Grey16) {
			return nil, fmt.Errorf("%w: frame %d of %d", imaging.ErrInvalidPixelOperation, frame, len(buf.Grey16))
		}
		samples := buf.Grey16[frame]
		if len(samples) < w*h {
			return nil, fmt.Errorf("%w: %d samples for %dx%d", imaging.ErrInvalidPixelOperation, len(samples), w, h)
		}
		wl, err := img.Window()
		if err != nil {
			return nil, err
		}
		out := image.NewGray(image.Rect(0, 0, w, h))
		for i := 0; i < w*h; i++ {
			out.Pix[i] = applyWindow(float64(samples[i]), wl)
		}
		return out, nil

	case dicom.FormatRGB24:
		if len(buf.RGB24) < w*h*3 {
			return nil, fmt.Errorf("%w: %d bytes for %dx%d", imaging.ErrInvalidPixelOperation, len(buf.RGB24), w, h)
		}
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		for i := 0; i < w*h; i++ {
			out.Set(i%w, i/w, color.RGBA{buf.RGB24[i*3], buf.RGB24[i*3+1], buf.RGB24[i*3+2], 0xff})
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %s", dicom.ErrUnsupportedPixelFormat, buf.Format)
}

// RenderPNG renders frame of img scaled to size pixels wide. A non-positive
// size keeps the native resolution.
func RenderPNG(img *imaging.Image, frame, size int) ([]byte, error) {
	out, err := Render(img, frame)
	if err != nil {
		return nil, err
	}
	if size > 0 {
		out = ScaleToWidth(out, size)
	}
	return EncodePNG(out)
}

// applyWindow maps v linearly from [center-width/2, center+width/2] to 0..255
func applyWindow(v float64, wl dicom.WindowLevel) uint8 {
	width := wl.Width
	if width < 1 {
		width = 1
	}
	lo := wl.Center - width/2
	scaled := (v - lo) / width * 255
	return uint8(math.Max(0, math.Min(255, math.Round(scaled))))
}
