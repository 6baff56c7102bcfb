package imaging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/otcheredev/ris-dicom-imaging/pkg/dicom"
	"github.com/rs/zerolog/log"
)

// State is the pixel lifecycle of an image
type State int

const (
	// StateHeaderOnly means the header was parsed and pixels were not read yet
	StateHeaderOnly State = iota
	// StatePixelsLoaded means the pixel buffer and window are available
	StatePixelsLoaded
	// StateFailed means materialising the pixels failed; the error is kept
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateHeaderOnly:
		return "header_only"
	case StatePixelsLoaded:
		return "pixels_loaded"
	default:
		return "failed"
	}
}

// Channel selects one component of a colour pixel
type Channel int

const (
	ChannelRed Channel = iota
	ChannelGreen
	ChannelBlue
)

// ClinicalInfo holds the clinical strings read from the header
type ClinicalInfo struct {
	StudyDate              string      `json:"study_date"`
	PrivateStudyDate       string      `json:"private_study_date"`
	StudyTime              string      `json:"study_time"`
	SeriesDescription      string      `json:"series_description"`
	StudyDescription       string      `json:"study_description"`
	SensorBoardTemperature string      `json:"sensor_board_temperature"`
	LEDBoardTemperature    string      `json:"led_board_temperature"`
	Patient                PatientInfo `json:"patient"`
}

// LoadOption configures how an image is loaded
type LoadOption func(*loadOptions)

type loadOptions struct {
	lazy bool
	dict *dicom.Dictionary
}

// WithLazyLoad defers pixel decoding until the pixels are first needed
func WithLazyLoad(lazy bool) LoadOption {
	return func(o *loadOptions) { o.lazy = lazy }
}

// WithDictionary sets the tag dictionary used while parsing the header
func WithDictionary(d *dicom.Dictionary) LoadOption {
	return func(o *loadOptions) { o.dict = d }
}

// Image is one decoded file: its metadata, clinical fields and pixels. An
// Image is not safe for concurrent mutation; use Clone to hand an isolated
// copy to another stage.
type Image struct {
	source   Source
	fileName string
	md       dicom.Metadata
	entries  []dicom.HeaderEntry

	state    State
	pixels   *dicom.PixelBuffer
	window   dicom.WindowLevel
	loadErr  error
	reopened bool

	imageType ImageType

	Clinical ClinicalInfo
}

// LoadFile parses the file at path
func LoadFile(path string, opts ...LoadOption) (*Image, error) {
	return Load(FileSource(path), opts...)
}

// LoadBytes parses an in-memory file registered under name
func LoadBytes(name string, data []byte, opts ...LoadOption) (*Image, error) {
	return Load(NewBytesSource(name, data), opts...)
}

// Load parses the header of src and, unless lazy loading is requested,
// decodes the pixels. When the source opens but is not a decodable container
// the returned image is non-nil, classified by its Kind and renders as the
// placeholder; the error says why.
func Load(src Source, opts ...LoadOption) (*Image, error) {
	o := loadOptions{lazy: true}
	for _, opt := range opts {
		opt(&o)
	}

	r, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", dicom.ErrFileAccess, src.Name(), err)
	}
	h, parseErr := dicom.ParseHeader(r, r.Size(), dicom.WithDictionary(o.dict))
	r.Close()

	img := &Image{
		source:   src,
		fileName: src.Name(),
		md:       h.Metadata,
		entries:  h.Entries,
	}
	img.initialize()

	if parseErr != nil {
		log.Debug().Err(parseErr).Str("file", img.fileName).Str("kind", img.md.Kind.String()).Msg("header not decodable")
		return img, parseErr
	}
	if !o.lazy {
		if err := img.ensurePixels(); err != nil {
			return img, err
		}
	}
	return img, nil
}

func (img *Image) initialize() {
	find := func(key string) string {
		v, _ := img.FindTag(key)
		return v
	}

	c := ClinicalInfo{
		StudyDate:              find("00080020"),
		PrivateStudyDate:       find("0008002A"),
		StudyTime:              find("00080030"),
		SeriesDescription:      find("0008103E"),
		StudyDescription:       find("00081030"),
		SensorBoardTemperature: find("00187001"),
		LEDBoardTemperature:    find("00187002"),
		Patient:                patientFromTags(find),
	}
	// An unset study date is written as zeros by the capture software; the
	// acquisition date-time carries the real date then.
	if strings.Contains(c.StudyDate, "0000000") {
		private := strings.TrimSpace(c.PrivateStudyDate)
		if len(private) > 8 {
			private = private[:8]
		}
		c.StudyDate = private
	}
	img.Clinical = c
	img.imageType = img.DetermineImageType()
}

// FindTag returns the trimmed header value for an 8 hex digit key
func (img *Image) FindTag(key string) (string, bool) {
	h := dicom.Header{Entries: img.entries}
	return h.FindTag(key)
}

// HeaderLines returns the rendered header listing
func (img *Image) HeaderLines() []string {
	h := dicom.Header{Entries: img.entries}
	return h.Lines()
}

// Metadata returns a copy of the parsed metadata
func (img *Image) Metadata() dicom.Metadata { return img.md.Clone() }

// State returns the pixel lifecycle state
func (img *Image) State() State { return img.state }

// Kind returns the container classification
func (img *Image) Kind() dicom.Kind { return img.md.Kind }

// FileName returns the name of the file the image was loaded from or saved to
func (img *Image) FileName() string { return img.fileName }

// Type returns the image type
func (img *Image) Type() ImageType { return img.imageType }

// SetType overrides the image type
func (img *Image) SetType(t ImageType) { img.imageType = t }

// Width returns the number of columns
func (img *Image) Width() int { return img.md.Columns }

// Height returns the number of rows
func (img *Image) Height() int { return img.md.Rows }

// BitsAllocated returns 8 or 16
func (img *Image) BitsAllocated() int { return img.md.BitsAllocated }

// SamplesPerPixel returns 1 or 3
func (img *Image) SamplesPerPixel() int { return img.md.SamplesPerPixel }

// Frames returns the number of frames
func (img *Image) Frames() int {
	if img.state == StatePixelsLoaded {
		return img.pixels.Frames()
	}
	return img.md.Frames
}

// Pixels materialises and returns the pixel buffer. The buffer is owned by the
// image; callers that need to modify it should Clone first.
func (img *Image) Pixels() (*dicom.PixelBuffer, error) {
	if err := img.ensurePixels(); err != nil {
		return nil, err
	}
	return img.pixels, nil
}

// Frame returns a copy of one 16-bit frame
func (img *Image) Frame(n int) ([]uint16, error) {
	if err := img.ensurePixels(); err != nil {
		return nil, err
	}
	if img.pixels.Format != dicom.FormatGrey16 {
		return nil, fmt.Errorf("%w: image is %s", ErrInvalidPixelOperation, img.pixels.Format)
	}
	if n < 0 || n >= len(img.pixels.Grey16) {
		return nil, fmt.Errorf("%w: frame %d of %d", ErrInvalidPixelOperation, n, len(img.pixels.Grey16))
	}
	return append([]uint16(nil), img.pixels.Grey16[n]...), nil
}

// Window materialises the pixels and returns the display window
func (img *Image) Window() (dicom.WindowLevel, error) {
	if err := img.ensurePixels(); err != nil {
		return dicom.WindowLevel{}, err
	}
	return img.window, nil
}

// Signed reports whether decoding shifted negative samples into range
func (img *Image) Signed() bool {
	if err := img.ensurePixels(); err != nil {
		return false
	}
	return img.pixels.Signed
}

// ensurePixels performs the deferred decode. It reopens the source at most
// once; later calls return the cached buffer or the cached failure.
func (img *Image) ensurePixels() error {
	switch img.state {
	case StatePixelsLoaded:
		return nil
	case StateFailed:
		return img.loadErr
	}

	if !img.md.Kind.Decodable() {
		img.md = img.md.WithPlaceholder()
		img.setPixels(dicom.PlaceholderBuffer())
		return nil
	}
	if img.source == nil || img.reopened {
		return img.fail(fmt.Errorf("%w: no source to read pixels from", ErrPixelsUnavailable))
	}

	img.reopened = true
	r, err := img.source.Open()
	if err != nil {
		return img.fail(fmt.Errorf("%w: reopen %s: %v", dicom.ErrFileAccess, img.fileName, err))
	}
	buf, err := dicom.DecodePixels(r, r.Size(), img.md)
	r.Close()
	if err != nil {
		return img.fail(fmt.Errorf("failed to decode pixels of %s: %w", img.fileName, err))
	}
	img.setPixels(buf)
	return nil
}

func (img *Image) fail(err error) error {
	img.state = StateFailed
	img.loadErr = err
	log.Debug().Err(err).Str("file", img.fileName).Msg("pixel decode failed")
	return err
}

func (img *Image) setPixels(buf *dicom.PixelBuffer) {
	img.pixels = buf
	img.window = dicom.ComputeWindowLevel(buf, img.md)
	img.state = StatePixelsLoaded
	img.loadErr = nil
}

func (img *Image) isGrey16() bool {
	return img.md.BitsAllocated == 16 && img.md.SamplesPerPixel == 1
}

func (img *Image) isRGB24() bool {
	return img.md.BitsAllocated == 8 && img.md.SamplesPerPixel == 3
}

// shallowCopy duplicates everything but the pixel state
func (img *Image) shallowCopy() *Image {
	return &Image{
		source:    img.source,
		fileName:  img.fileName,
		md:        img.md.Clone(),
		entries:   append([]dicom.HeaderEntry(nil), img.entries...),
		reopened:  true,
		imageType: img.imageType,
		Clinical:  img.Clinical,
	}
}

// Clone returns an isolated copy. With replacement frames the copy carries
// them instead of the source pixels; that is only allowed for 16-bit
// single-sample images.
func (img *Image) Clone(replacement [][]uint16) (*Image, error) {
	if replacement != nil {
		if err := img.checkFrames(replacement); err != nil {
			return nil, err
		}
		c := img.shallowCopy()
		c.md.Frames = len(replacement)
		c.setPixels(dicom.NewGrey16Buffer(copyFrames(replacement), false))
		return c, nil
	}

	if err := img.ensurePixels(); err != nil {
		return nil, err
	}
	c := img.shallowCopy()
	c.setPixels(img.pixels.Clone())
	return c, nil
}

// CloneColor is Clone for 8-bit three-sample images. replacement, when not
// nil, holds rows*columns interleaved R, G, B bytes.
func (img *Image) CloneColor(replacement []byte) (*Image, error) {
	if replacement != nil {
		if !img.isRGB24() {
			return nil, fmt.Errorf("%w: expected 8 bits and 3 samples per pixel, image has %d and %d",
				ErrInvalidPixelOperation, img.md.BitsAllocated, img.md.SamplesPerPixel)
		}
		if want := img.md.Pixels() * 3; len(replacement) != want {
			return nil, fmt.Errorf("%w: %d colour bytes, image needs %d", ErrInvalidPixelOperation, len(replacement), want)
		}
		c := img.shallowCopy()
		c.setPixels(dicom.NewRGB24Buffer(append([]byte(nil), replacement...)))
		return c, nil
	}
	return img.Clone(nil)
}

// ReplacePixels substitutes the frames of a 16-bit single-sample image in
// place. On error the image is unchanged.
func (img *Image) ReplacePixels(frames [][]uint16) error {
	if err := img.checkFrames(frames); err != nil {
		return err
	}
	img.md.Frames = len(frames)
	img.setPixels(dicom.NewGrey16Buffer(copyFrames(frames), false))
	return nil
}

func (img *Image) checkFrames(frames [][]uint16) error {
	if !img.isGrey16() {
		return fmt.Errorf("%w: expected 16 bits and 1 sample per pixel, image has %d and %d",
			ErrInvalidPixelOperation, img.md.BitsAllocated, img.md.SamplesPerPixel)
	}
	if len(frames) == 0 {
		return fmt.Errorf("%w: no frames", ErrInvalidPixelOperation)
	}
	for i, f := range frames {
		if len(f) != img.md.Pixels() {
			return fmt.Errorf("%w: frame %d holds %d samples, image needs %d", ErrInvalidPixelOperation, i, len(f), img.md.Pixels())
		}
	}
	return nil
}

func copyFrames(frames [][]uint16) [][]uint16 {
	out := make([][]uint16, len(frames))
	for i, f := range frames {
		out[i] = append([]uint16(nil), f...)
	}
	return out
}

// SetColorPixel writes one pixel of an 8-bit three-sample image. Coordinates
// outside the image are ignored.
func (img *Image) SetColorPixel(row, col int, r, g, b byte) error {
	if !img.isRGB24() {
		return fmt.Errorf("%w: expected 8 bits and 3 samples per pixel, image has %d and %d",
			ErrInvalidPixelOperation, img.md.BitsAllocated, img.md.SamplesPerPixel)
	}
	if err := img.ensurePixels(); err != nil {
		return err
	}
	if row < 0 || col < 0 || col >= img.md.Columns {
		return nil
	}
	idx := row*img.md.Columns*3 + col*3
	px := img.pixels.RGB24
	if idx+2 >= len(px) {
		return nil
	}
	px[idx], px[idx+1], px[idx+2] = r, g, b
	return nil
}

// PixelValue returns the stored sample at row, col. For colour images frame
// selects the channel. Any query outside the image returns -1.
func (img *Image) PixelValue(row, col, frame int) int {
	if err := img.ensurePixels(); err != nil {
		return -1
	}
	w := img.md.Columns
	if row < 0 || col < 0 || col >= w {
		return -1
	}
	idx := row*w + col

	switch img.pixels.Format {
	case dicom.FormatGrey8:
		if idx >= len(img.pixels.Grey8) {
			return -1
		}
		return int(img.pixels.Grey8[idx])
	case dicom.FormatGrey16:
		if frame < 0 || frame >= len(img.pixels.Grey16) {
			return -1
		}
		samples := img.pixels.Grey16[frame]
		if idx >= len(samples) {
			return -1
		}
		return int(samples[idx])
	case dicom.FormatRGB24:
		return int(img.ColorChannelValue(row, col, Channel(frame)))
	}
	return -1
}

// ColorChannelValue returns one colour component at row, col, or 0 when the
// query is outside the image.
//
// 16-bit single-sample images are read as packed colour: the pixel at index
// row*width*2 + col*2 of the first frame holds red, index+3 green and index+1
// blue, each scaled from 12 bits to 8.
func (img *Image) ColorChannelValue(row, col int, ch Channel) byte {
	if ch < ChannelRed || ch > ChannelBlue {
		return 0
	}
	if err := img.ensurePixels(); err != nil {
		return 0
	}
	w, h := img.md.Columns, img.md.Rows
	if row < 0 || col < 0 {
		return 0
	}

	switch img.pixels.Format {
	case dicom.FormatRGB24:
		if col >= w {
			return 0
		}
		idx := row*w*3 + col*3 + int(ch)
		if idx >= len(img.pixels.RGB24) {
			return 0
		}
		return img.pixels.RGB24[idx]
	case dicom.FormatGrey16:
		idx := row*w*2 + col*2
		if idx >= h*w || len(img.pixels.Grey16) == 0 {
			return 0
		}
		s := img.pixels.Grey16[0]
		if idx+3 >= len(s) {
			return 0
		}
		var v uint16
		switch ch {
		case ChannelRed:
			v = s[idx]
		case ChannelGreen:
			v = s[idx+3]
		default:
			v = s[idx+1]
		}
		return byte(float64(v) / MaxSample * 255)
	}
	log.Debug().Str("file", img.fileName).Str("format", img.pixels.Format.String()).Msg("colour query on unsupported format")
	return 0
}

// DetermineImageType classifies the image by the trailing character of its
// file name.
func (img *Image) DetermineImageType() ImageType {
	return ImageTypeFromFileName(img.fileName)
}

// OutputFileName is the file name with its trailing character replaced by the
// image type ordinal.
func (img *Image) OutputFileName() string {
	return OutputFileName(img.fileName, img.imageType)
}

// CloneAndReplace clones with replacement frames and retypes the copy unless t
// is Undefined.
func (img *Image) CloneAndReplace(frames [][]uint16, t ImageType) (*Image, error) {
	c, err := img.Clone(frames)
	if err != nil {
		return nil, err
	}
	if t != Undefined {
		c.SetType(t)
	}
	return c, nil
}

// CloneAndReplaceColor clones with replacement colour bytes and retypes the
// copy unless t is Undefined.
func (img *Image) CloneAndReplaceColor(pixels []byte, t ImageType) (*Image, error) {
	c, err := img.CloneColor(pixels)
	if err != nil {
		return nil, err
	}
	if t != Undefined {
		c.SetType(t)
	}
	return c, nil
}

// Encode returns the bytes of the source file with its pixel region
// overwritten by the current pixels.
func (img *Image) Encode() ([]byte, error) {
	if err := img.ensurePixels(); err != nil {
		return nil, err
	}
	if img.source == nil {
		return nil, fmt.Errorf("%w: image has no source file", dicom.ErrFileAccess)
	}
	data, err := readAll(img.source)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", dicom.ErrFileAccess, img.source.Name(), err)
	}
	w := &memWriterAt{data: data}
	if err := dicom.OverwritePixels(w, img.md, img.pixels); err != nil {
		return nil, err
	}
	return w.data, nil
}

// SaveAs writes the image to path and makes path its file name
func (img *Image) SaveAs(path string) error {
	data, err := img.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", dicom.ErrFileAccess, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", dicom.ErrFileAccess, err)
	}
	img.Rename(path, NewBytesSource(path, data))
	return nil
}

// Save writes the image under OutputFileName
func (img *Image) Save() error {
	name := img.OutputFileName()
	if name == "" {
		return errors.New("image has no file name")
	}
	return img.SaveAs(name)
}

// Rename points the image at a new file name and source, typically after
// the encoded bytes were stored elsewhere.
func (img *Image) Rename(name string, src Source) {
	img.fileName = name
	if src != nil {
		img.source = src
	}
}

// memWriterAt is an in-memory io.WriterAt over a fixed buffer
type memWriterAt struct {
	data []byte
}

func (w *memWriterAt) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(w.data)) {
		return 0, fmt.Errorf("write of %d bytes at %d exceeds %d", len(p), off, len(w.data))
	}
	copy(w.data[off:], p)
	return len(p), nil
}
