package dicom

// Kind classifies a parsed source
type Kind int

const (
	KindNotRecognized Kind = iota
	KindModern
	KindLegacy
	KindUnsupportedTransferSyntax
)

func (k Kind) String() string {
	switch k {
	case KindModern:
		return "modern"
	case KindLegacy:
		return "legacy"
	case KindUnsupportedTransferSyntax:
		return "unsupported_transfer_syntax"
	default:
		return "not_recognized"
	}
}

// Decodable reports whether pixel data can be read for this kind
func (k Kind) Decodable() bool {
	return k == KindModern || k == KindLegacy
}

// Photometric interpretation whose sample 0 is white
const Monochrome1 = "MONOCHROME1"

// Placeholder geometry used when a source is not recognised
const (
	PlaceholderColumns      = 480
	PlaceholderRows         = 750
	PlaceholderValue        = 240
	PlaceholderWindowWidth  = 256
	PlaceholderWindowCenter = 127
)

// Metadata is everything the header parser extracts. It is a value type:
// each image holds its own copy and never shares it.
type Metadata struct {
	Rows                      int     `json:"rows"`
	Columns                   int     `json:"columns"`
	BitsAllocated             int     `json:"bits_allocated"`
	SamplesPerPixel           int     `json:"samples_per_pixel"`
	PhotometricInterpretation string  `json:"photometric_interpretation"`
	Frames                    int     `json:"frames"`
	RescaleSlope              float64 `json:"rescale_slope"`
	RescaleIntercept          float64 `json:"rescale_intercept"`
	WindowCenter              float64 `json:"window_center"`
	WindowWidth               float64 `json:"window_width"`
	PixelRepresentation       int     `json:"pixel_representation"`
	PixelDataOffset           int64   `json:"pixel_data_offset"`
	DICMFound                 bool    `json:"dicm_found"`
	PixelWidth                float64 `json:"pixel_width"`
	PixelHeight               float64 `json:"pixel_height"`
	PixelDepth                float64 `json:"pixel_depth"`
	Unit                      string  `json:"unit"`
	Modality                  string  `json:"modality"`
	PlanarConfiguration       int     `json:"planar_configuration"`
	TransferSyntaxUID         string  `json:"transfer_syntax_uid"`
	BigEndian                 bool    `json:"big_endian"`
	Kind                      Kind    `json:"kind"`

	RowsFound      bool `json:"-"`
	ColumnsFound   bool `json:"-"`
	PixelDataFound bool `json:"-"`

	RedLUT   []byte `json:"-"`
	GreenLUT []byte `json:"-"`
	BlueLUT  []byte `json:"-"`
}

// DefaultMetadata returns the values in effect before any tag is read
func DefaultMetadata() Metadata {
	return Metadata{
		BitsAllocated:   16,
		SamplesPerPixel: 1,
		Frames:          1,
		RescaleSlope:    1.0,
		PixelWidth:      1.0,
		PixelHeight:     1.0,
		PixelDepth:      1.0,
		Unit:            "mm",
	}
}

// Valid reports whether the required tags were all located
func (m Metadata) Valid() bool {
	return m.RowsFound && m.ColumnsFound && m.PixelDataFound
}

// Pixels returns rows*columns
func (m Metadata) Pixels() int {
	return m.Rows * m.Columns
}

// Inverted reports a photometric interpretation that maps 0 to white
func (m Metadata) Inverted() bool {
	return m.PhotometricInterpretation == Monochrome1
}

// Format returns the pixel layout selected by samples and bits
func (m Metadata) Format() (PixelFormat, bool) {
	switch {
	case m.SamplesPerPixel == 1 && m.BitsAllocated == 8:
		return FormatGrey8, true
	case m.SamplesPerPixel == 1 && m.BitsAllocated == 16:
		return FormatGrey16, true
	case m.SamplesPerPixel == 3 && m.BitsAllocated == 8:
		return FormatRGB24, true
	}
	return 0, false
}

// Clone returns a copy that shares no slices with m
func (m Metadata) Clone() Metadata {
	c := m
	c.RedLUT = cloneBytes(m.RedLUT)
	c.GreenLUT = cloneBytes(m.GreenLUT)
	c.BlueLUT = cloneBytes(m.BlueLUT)
	return c
}

// WithPlaceholder returns m reshaped to the fixed grey placeholder shown for
// sources that could not be recognised.
func (m Metadata) WithPlaceholder() Metadata {
	c := m.Clone()
	c.SamplesPerPixel = 1
	c.BitsAllocated = 8
	c.Frames = 1
	c.Columns = PlaceholderColumns
	c.Rows = PlaceholderRows
	c.WindowWidth = PlaceholderWindowWidth
	c.WindowCenter = PlaceholderWindowCenter
	return c
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
