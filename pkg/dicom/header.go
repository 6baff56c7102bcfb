package dicom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding"
)

// Well-known tags
const (
	TagTransferSyntaxUID         uint32 = 0x00020010
	TagSpecificCharacterSet      uint32 = 0x00080005
	TagStudyDate                 uint32 = 0x00080020
	TagAcquisitionDateTime       uint32 = 0x0008002A
	TagStudyTime                 uint32 = 0x00080030
	TagAccessionNumber           uint32 = 0x00080050
	TagModality                  uint32 = 0x00080060
	TagReferringPhysician        uint32 = 0x00080090
	TagStudyDescription          uint32 = 0x00081030
	TagSeriesDescription         uint32 = 0x0008103E
	TagPatientName               uint32 = 0x00100010
	TagPatientID                 uint32 = 0x00100020
	TagPatientBirthDate          uint32 = 0x00100030
	TagPatientSex                uint32 = 0x00100040
	TagSliceThickness            uint32 = 0x00180050
	TagSliceSpacing              uint32 = 0x00180088
	TagSensorBoardTemperature    uint32 = 0x00187001
	TagLEDBoardTemperature       uint32 = 0x00187002
	TagSamplesPerPixel           uint32 = 0x00280002
	TagPhotometricInterpretation uint32 = 0x00280004
	TagPlanarConfiguration       uint32 = 0x00280006
	TagNumberOfFrames            uint32 = 0x00280008
	TagRows                      uint32 = 0x00280010
	TagColumns                   uint32 = 0x00280011
	TagPixelSpacing              uint32 = 0x00280030
	TagBitsAllocated             uint32 = 0x00280100
	TagPixelRepresentation       uint32 = 0x00280103
	TagWindowCenter              uint32 = 0x00281050
	TagWindowWidth               uint32 = 0x00281051
	TagRescaleIntercept          uint32 = 0x00281052
	TagRescaleSlope              uint32 = 0x00281053
	TagRedPalette                uint32 = 0x00281201
	TagGreenPalette              uint32 = 0x00281202
	TagBluePalette               uint32 = 0x00281203
	TagIconImageSequence         uint32 = 0x00880200
	TagPixelData                 uint32 = 0x7FE00010

	TagItem                 uint32 = 0xFFFEE000
	TagItemDelimitation     uint32 = 0xFFFEE00D
	TagSequenceDelimitation uint32 = 0xFFFEE0DD
)

const (
	// maxFrames bounds NumberOfFrames; DecodePixels checks the real size
	maxFrames = math.MaxInt32

	preambleLength = 128
	magic          = "DICM"

	// Implicit values longer than this are not kept in the header listing.
	maxImplicitValueLength = 44

	bigEndianTransferSyntax = "1.2.840.10008.1.2.2"
)

var unsupportedTransferSyntaxes = []string{"1.2.4", "1.2.5"}

// HeaderEntry is one recorded tag of the header listing
type HeaderEntry struct {
	Tag        uint32 `json:"tag"`
	Name       string `json:"name"`
	Value      string `json:"value"`
	InSequence bool   `json:"in_sequence,omitempty"`
}

// String renders the entry as "GGGGEEEE//Name: value", with ">" before the
// name for entries nested in a sequence.
func (e HeaderEntry) String() string {
	prefix := ""
	if e.InSequence {
		prefix = ">"
	}
	return TagKey(e.Tag) + "//" + prefix + e.Name + ": " + e.Value
}

// Header is the result of walking the tag stream up to the pixel data
type Header struct {
	Metadata Metadata
	Entries  []HeaderEntry
}

// FindTag returns the trimmed value of the first entry for an 8 hex digit key
func (h *Header) FindTag(key string) (string, bool) {
	tag, err := ParseTagKey(key)
	if err != nil {
		return "", false
	}
	return h.Value(tag)
}

// Value returns the trimmed value of the first entry for tag
func (h *Header) Value(tag uint32) (string, bool) {
	if h == nil {
		return "", false
	}
	for _, e := range h.Entries {
		if e.Tag == tag {
			return trimValue(e.Value), true
		}
	}
	return "", false
}

// Lines returns the rendered header listing
func (h *Header) Lines() []string {
	lines := make([]string, 0, len(h.Entries))
	for _, e := range h.Entries {
		lines = append(lines, e.String())
	}
	return lines
}

// ParseOption configures ParseHeader
type ParseOption func(*headerReader)

// WithDictionary overrides the dictionary used for implicit VR lookups
func WithDictionary(d *Dictionary) ParseOption {
	return func(hr *headerReader) {
		if d != nil {
			hr.dict = d
		}
	}
}

// ParseHeader walks the tag stream of size bytes from r and stops at the
// pixel data. The returned header is never nil; on failure its Metadata.Kind
// carries the classification and the error wraps one of ErrInvalidContainer,
// ErrUnsupportedTransferSyntax or ErrMalformedHeader.
func ParseHeader(r io.ReaderAt, size int64, opts ...ParseOption) (*Header, error) {
	hr := &headerReader{
		cur:  NewCursor(r, size),
		dict: StandardDictionary(),
		md:   DefaultMetadata(),
	}
	for _, opt := range opts {
		opt(hr)
	}

	err := hr.parse()
	header := &Header{Metadata: hr.md, Entries: hr.entries}

	switch {
	case errors.Is(err, ErrUnsupportedTransferSyntax):
		header.Metadata.Kind = KindUnsupportedTransferSyntax
		return header, err
	case err != nil:
		header.Metadata.Kind = KindNotRecognized
		return header, err
	case !header.Metadata.Valid():
		header.Metadata.Kind = KindNotRecognized
		return header, fmt.Errorf("%w: rows=%t columns=%t pixel data=%t", ErrInvalidContainer,
			header.Metadata.RowsFound, header.Metadata.ColumnsFound, header.Metadata.PixelDataFound)
	}

	if header.Metadata.DICMFound {
		header.Metadata.Kind = KindModern
	} else {
		header.Metadata.Kind = KindLegacy
	}
	return header, nil
}

type headerReader struct {
	cur     *Cursor
	dict    *Dictionary
	md      Metadata
	entries []HeaderEntry

	vr                 VR
	text               *encoding.Decoder
	inSequence         bool
	oddLocations       bool
	bigEndianRequested bool
}

func (hr *headerReader) parse() error {
	hr.md.DICMFound = hr.detectMagic()
	if !hr.md.DICMFound {
		// legacy files carry no preamble
		if err := hr.cur.Seek(0); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
	}

	for {
		if hr.cur.Position() == hr.cur.Size() {
			return fmt.Errorf("%w: end of stream before pixel data", ErrInvalidContainer)
		}

		tag, length, err := hr.nextTag()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedHeader, err)
		}
		if hr.cur.Position()&1 != 0 {
			hr.oddLocations = true
		}

		done, err := hr.dispatch(tag, length)
		if err != nil {
			if errors.Is(err, ErrUnsupportedTransferSyntax) {
				return err
			}
			return fmt.Errorf("%w: tag %s: %v", ErrMalformedHeader, TagKey(tag), err)
		}
		if done {
			return nil
		}
	}
}

func (hr *headerReader) detectMagic() bool {
	if hr.cur.Size() < preambleLength+int64(len(magic)) {
		return false
	}
	if err := hr.cur.Seek(preambleLength); err != nil {
		return false
	}
	s, err := hr.cur.String(len(magic))
	return err == nil && s == magic
}

func (hr *headerReader) nextTag() (uint32, int64, error) {
	group, err := hr.cur.Uint16()
	if err != nil {
		return 0, 0, err
	}
	// The switch to big endian happens at the first group 0x0008 tag after
	// the transfer syntax asked for it; the group word then reads byte-swapped.
	if group == 0x0800 && hr.bigEndianRequested {
		hr.cur.SetByteOrder(binary.BigEndian)
		hr.md.BigEndian = true
		group = 0x0008
	}
	element, err := hr.cur.Uint16()
	if err != nil {
		return 0, 0, err
	}
	tag := uint32(group)<<16 | uint32(element)

	length, err := hr.readLength()
	if err != nil {
		return 0, 0, err
	}

	// Compatibility quirk kept on purpose: some GE files declare 13 for a
	// 10 byte value. Only applied while every tag so far sat on an even offset.
	if length == 13 && !hr.oddLocations {
		length = 10
	}

	// Undefined length opens a sequence that runs until a delimiter.
	if length == -1 {
		length = 0
		hr.inSequence = true
	}
	if length < 0 {
		return 0, 0, fmt.Errorf("negative length %d for tag %s", length, TagKey(tag))
	}
	return tag, length, nil
}

// readLength decides between explicit and implicit encoding from the two
// bytes that would hold the VR. The code is packed big-endian regardless of
// the stream byte order.
func (hr *headerReader) readLength() (int64, error) {
	b, err := hr.cur.Bytes(4)
	if err != nil {
		return 0, err
	}
	order := hr.cur.ByteOrder()
	hr.vr = VR(uint16(b[0])<<8 | uint16(b[1]))

	switch {
	case hr.vr.isLongForm():
		if b[2] == 0 && b[3] == 0 {
			v, err := hr.cur.Int32()
			return int64(v), err
		}
		hr.vr = VRImplicit
		return int64(int32(order.Uint32(b))), nil
	case hr.vr.isShortForm():
		return int64(order.Uint16(b[2:])), nil
	default:
		hr.vr = VRImplicit
		return int64(int32(order.Uint32(b))), nil
	}
}

func (hr *headerReader) dispatch(tag uint32, length int64) (bool, error) {
	if hr.inSequence {
		return false, hr.addInfo(tag, length, nil)
	}

	switch tag {
	case TagTransferSyntaxUID:
		s, err := hr.cur.String(int(length))
		if err != nil {
			return false, err
		}
		hr.md.TransferSyntaxUID = trimValue(s)
		if err := hr.addValue(tag, length, s); err != nil {
			return false, err
		}
		for _, uid := range unsupportedTransferSyntaxes {
			if strings.Contains(s, uid) {
				log.Debug().Str("transfer_syntax", hr.md.TransferSyntaxUID).Msg("Unsupported transfer syntax")
				return false, fmt.Errorf("%w: %s", ErrUnsupportedTransferSyntax, hr.md.TransferSyntaxUID)
			}
		}
		if strings.Contains(s, bigEndianTransferSyntax) {
			hr.bigEndianRequested = true
		}

	case TagModality:
		s, err := hr.cur.String(int(length))
		if err != nil {
			return false, err
		}
		hr.md.Modality = trimValue(s)
		return false, hr.addValue(tag, length, s)

	case TagNumberOfFrames:
		s, err := hr.cur.String(int(length))
		if err != nil {
			return false, err
		}
		if err := hr.addValue(tag, length, s); err != nil {
			return false, err
		}
		frames, ok, err := parseDecimal(s)
		if err != nil {
			return false, err
		}
		if ok && frames > 1.0 {
			hr.md.Frames = int(min(frames, maxFrames))
		}

	case TagSamplesPerPixel:
		v, err := hr.readShort(length)
		if err != nil {
			return false, err
		}
		hr.md.SamplesPerPixel = v
		return false, hr.addValue(tag, length, strconv.Itoa(v))

	case TagPhotometricInterpretation:
		s, err := hr.cur.String(int(length))
		if err != nil {
			return false, err
		}
		hr.md.PhotometricInterpretation = trimValue(s)
		return false, hr.addValue(tag, length, hr.md.PhotometricInterpretation)

	case TagPlanarConfiguration:
		v, err := hr.readShort(length)
		if err != nil {
			return false, err
		}
		hr.md.PlanarConfiguration = v
		return false, hr.addValue(tag, length, strconv.Itoa(v))

	case TagRows:
		v, err := hr.readShort(length)
		if err != nil {
			return false, err
		}
		hr.md.Rows = v
		hr.md.RowsFound = true
		return false, hr.addValue(tag, length, strconv.Itoa(v))

	case TagColumns:
		v, err := hr.readShort(length)
		if err != nil {
			return false, err
		}
		hr.md.Columns = v
		hr.md.ColumnsFound = true
		return false, hr.addValue(tag, length, strconv.Itoa(v))

	case TagPixelSpacing:
		s, err := hr.cur.String(int(length))
		if err != nil {
			return false, err
		}
		hr.spatialScale(s)
		return false, hr.addValue(tag, length, s)

	case TagSliceThickness, TagSliceSpacing:
		s, err := hr.cur.String(int(length))
		if err != nil {
			return false, err
		}
		depth, ok, err := parseDecimal(s)
		if err != nil {
			return false, err
		}
		if ok {
			hr.md.PixelDepth = depth
		}
		return false, hr.addValue(tag, length, s)

	case TagBitsAllocated:
		v, err := hr.readShort(length)
		if err != nil {
			return false, err
		}
		hr.md.BitsAllocated = v
		return false, hr.addValue(tag, length, strconv.Itoa(v))

	case TagPixelRepresentation:
		v, err := hr.readShort(length)
		if err != nil {
			return false, err
		}
		hr.md.PixelRepresentation = v
		return false, hr.addValue(tag, length, strconv.Itoa(v))

	case TagWindowCenter, TagWindowWidth, TagRescaleIntercept, TagRescaleSlope:
		s, err := hr.cur.String(int(length))
		if err != nil {
			return false, err
		}
		s = lastValue(s)
		v, ok, err := parseDecimal(s)
		if err != nil {
			return false, err
		}
		if ok {
			switch tag {
			case TagWindowCenter:
				hr.md.WindowCenter = v
			case TagWindowWidth:
				hr.md.WindowWidth = v
			case TagRescaleIntercept:
				hr.md.RescaleIntercept = v
			case TagRescaleSlope:
				hr.md.RescaleSlope = v
			}
		}
		return false, hr.addValue(tag, length, s)

	case TagRedPalette, TagGreenPalette, TagBluePalette:
		lut, err := hr.cur.LUT(int(length))
		if err != nil {
			return false, err
		}
		switch tag {
		case TagRedPalette:
			hr.md.RedLUT = lut
		case TagGreenPalette:
			hr.md.GreenLUT = lut
		case TagBluePalette:
			hr.md.BlueLUT = lut
		}
		return false, hr.addValue(tag, length, strconv.FormatInt(length/2, 10))

	case TagPixelData:
		hr.md.PixelDataFound = true
		if length != 0 {
			hr.md.PixelDataOffset = hr.cur.Position()
			return true, hr.addValue(tag, length, strconv.FormatInt(hr.md.PixelDataOffset, 10))
		}
		return false, hr.addInfo(tag, length, nil)

	default:
		return false, hr.addInfo(tag, length, nil)
	}
	return false, nil
}

// readShort reads a US value and steps over any remaining multiplicity.
func (hr *headerReader) readShort(length int64) (int, error) {
	if length < 2 {
		return 0, fmt.Errorf("US value of length %d", length)
	}
	v, err := hr.cur.Uint16()
	if err != nil {
		return 0, err
	}
	if err := hr.cur.Skip(length - 2); err != nil {
		return 0, err
	}
	return int(v), nil
}

func (hr *headerReader) spatialScale(s string) {
	parts := strings.Split(trimValue(s), "\\")
	if len(parts) != 2 {
		return
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return
	}
	if x != 0 && y != 0 {
		hr.md.PixelWidth = x
		hr.md.PixelHeight = y
		hr.md.Unit = "mm"
	}
}

func (hr *headerReader) addValue(tag uint32, length int64, value string) error {
	return hr.addInfo(tag, length, &value)
}

// addInfo records a header entry. When value is nil the field is consumed
// here according to its VR.
func (hr *headerReader) addInfo(tag uint32, length int64, value *string) error {
	name, v, ok, err := hr.headerInfo(tag, length, value)
	if err != nil || !ok || tag == TagItem {
		return err
	}
	hr.entries = append(hr.entries, HeaderEntry{
		Tag:        tag,
		Name:       name,
		Value:      v,
		InSequence: hr.inSequence && hr.vr != VRSQ,
	})
	return nil
}

func (hr *headerReader) headerInfo(tag uint32, length int64, value *string) (string, string, bool, error) {
	if tag == TagItemDelimitation || tag == TagSequenceDelimitation {
		hr.inSequence = false
		return "", "", false, nil
	}

	entry, known := hr.dict.Lookup(tag)
	if known && hr.vr == VRImplicit {
		hr.vr = entry.VR
	}
	if tag == TagItem {
		return entry.Name, "", known, nil
	}
	if value != nil {
		return entry.Name, *value, true, nil
	}

	var (
		v        string
		hasValue = true
		err      error
	)
	switch {
	case hr.vr == VRFD || hr.vr == VRFL:
		err = hr.cur.Skip(length)
	case hr.vr.isText():
		v, err = hr.cur.String(int(length))
		if tag == TagSpecificCharacterSet {
			hr.text = lookupCharacterSet(v)
		} else {
			v = decodeText(hr.text, v)
		}
	case hr.vr == VRUS:
		v, err = hr.readShorts(length)
	case hr.vr == VRImplicit:
		v, err = hr.cur.String(int(length))
		if length > maxImplicitValueLength {
			v, hasValue = "", false
		}
	case hr.vr == VRSQ:
		// Sequences are walked into, except the icon sequence and private
		// ones which are skipped whole.
		private := (tag>>16)&1 != 0
		if tag == TagIconImageSequence || private {
			err = hr.cur.Skip(length)
		}
	default:
		err = hr.cur.Skip(length)
	}
	if err != nil {
		return "", "", false, err
	}

	switch {
	case !known && hasValue && v != "":
		return "Private Tag", v, true, nil
	case !known:
		return "", "", false, nil
	default:
		return entry.Name, v, true, nil
	}
}

func (hr *headerReader) readShorts(length int64) (string, error) {
	if length == 2 {
		v, err := hr.cur.Uint16()
		return strconv.Itoa(int(v)), err
	}
	values := make([]string, 0, length/2)
	for i := int64(0); i < length/2; i++ {
		v, err := hr.cur.Uint16()
		if err != nil {
			return "", err
		}
		values = append(values, strconv.Itoa(int(v)))
	}
	if err := hr.cur.Skip(length % 2); err != nil {
		return "", err
	}
	return strings.Join(values, " "), nil
}

func trimValue(s string) string {
	return strings.Trim(s, " \x00")
}

// lastValue returns the text after the last backslash of a multi-valued field
func lastValue(s string) string {
	if i := strings.LastIndex(s, "\\"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// parseDecimal parses a DS/IS value. Empty text reports ok=false.
func parseDecimal(s string) (float64, bool, error) {
	s = trimValue(s)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return v, true, nil
}
