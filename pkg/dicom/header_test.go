package dicom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func TestParseHeaderContainerKinds(t *testing.T) {
	testCases := []struct {
		name    string
		build   func() []byte
		kind    Kind
		dicm    bool
		wantErr error
	}{
		{
			"modern explicit little endian",
			func() []byte {
				b := newModernFile()
				b.text(TagTransferSyntaxUID, "UI", "1.2.840.10008.1.2.1")
				b.text(TagStudyDate, "DA", "20230102")
				return b.grey16(1, 2, 7, 9).bytes()
			},
			KindModern, true, nil,
		},
		{
			"legacy implicit without preamble",
			func() []byte {
				b := newLegacyFile()
				b.implicit(TagRows, b.shorts(1))
				b.implicit(TagColumns, b.shorts(2))
				b.implicit(TagBitsAllocated, b.shorts(16))
				b.implicit(TagPixelData, b.shorts(7, 9))
				return b.bytes()
			},
			KindLegacy, false, nil,
		},
		{
			"missing rows",
			func() []byte {
				b := newModernFile()
				b.us(TagColumns, 2)
				return b.explicit(TagPixelData, "OW", b.shorts(1, 2)).bytes()
			},
			KindNotRecognized, true, ErrInvalidContainer,
		},
		{
			"no pixel data before end of stream",
			func() []byte {
				b := newModernFile()
				b.us(TagRows, 1)
				return b.us(TagColumns, 1).bytes()
			},
			KindNotRecognized, true, ErrInvalidContainer,
		},
		{
			"compressed transfer syntax",
			func() []byte {
				b := newModernFile()
				b.text(TagTransferSyntaxUID, "UI", "1.2.840.10008.1.2.4.50")
				return b.grey16(1, 1, 0).bytes()
			},
			KindUnsupportedTransferSyntax, true, ErrUnsupportedTransferSyntax,
		},
		{
			"rle transfer syntax",
			func() []byte {
				b := newModernFile()
				b.text(TagTransferSyntaxUID, "UI", "1.2.840.10008.1.2.5")
				return b.grey16(1, 1, 0).bytes()
			},
			KindUnsupportedTransferSyntax, true, ErrUnsupportedTransferSyntax,
		},
		{
			"value runs past end of stream",
			func() []byte {
				b := newModernFile()
				b.us(TagRows, 1)
				data := b.text(TagStudyDate, "DA", "20230102").bytes()
				return data[:len(data)-3]
			},
			KindNotRecognized, true, ErrMalformedHeader,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.build()
			h, err := ParseHeader(bytes.NewReader(data), int64(len(data)))
			if tc.wantErr == nil && err != nil {
				t.Fatalf("ParseHeader() => unexpected error %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("ParseHeader() => error %v, want %v", err, tc.wantErr)
			}
			if h == nil {
				t.Fatal("ParseHeader() => nil header")
			}
			if h.Metadata.Kind != tc.kind {
				t.Errorf("Kind = %v, want %v", h.Metadata.Kind, tc.kind)
			}
			if h.Metadata.DICMFound != tc.dicm {
				t.Errorf("DICMFound = %v, want %v", h.Metadata.DICMFound, tc.dicm)
			}
		})
	}
}

func TestParseHeaderMetadata(t *testing.T) {
	b := newModernFile()
	b.text(TagTransferSyntaxUID, "UI", "1.2.840.10008.1.2.1")
	b.text(TagModality, "CS", "OT")
	b.text(TagPatientName, "PN", "Doe^Jane^Q")
	b.text(TagPhotometricInterpretation, "CS", "MONOCHROME2 ")
	b.text(TagNumberOfFrames, "IS", "3")
	b.text(TagPixelSpacing, "DS", "0.5\\0.25")
	b.text(TagSliceThickness, "DS", "2.5")
	b.text(TagWindowCenter, "DS", "40\\50")
	b.text(TagWindowWidth, "DS", "350\\400")
	b.text(TagRescaleIntercept, "DS", "-10")
	b.text(TagRescaleSlope, "DS", "1\\2")
	b.us(TagPixelRepresentation, 1)
	b.us(TagPlanarConfiguration, 0)
	data := b.grey16(2, 3, make([]uint16, 18)...).bytes()

	h, err := ParseHeader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ParseHeader() => %v", err)
	}
	md := h.Metadata

	if md.Rows != 2 || md.Columns != 3 {
		t.Errorf("geometry = %dx%d, want 2x3", md.Rows, md.Columns)
	}
	if md.Frames != 3 {
		t.Errorf("Frames = %d, want 3", md.Frames)
	}
	if md.PhotometricInterpretation != "MONOCHROME2" {
		t.Errorf("PhotometricInterpretation = %q", md.PhotometricInterpretation)
	}
	if md.PixelHeight != 0.5 || md.PixelWidth != 0.25 {
		t.Errorf("pixel spacing = %v\\%v, want 0.5\\0.25", md.PixelHeight, md.PixelWidth)
	}
	if md.PixelDepth != 2.5 {
		t.Errorf("PixelDepth = %v, want 2.5", md.PixelDepth)
	}
	if md.WindowCenter != 50 || md.WindowWidth != 400 {
		t.Errorf("window = %v/%v, want 50/400", md.WindowCenter, md.WindowWidth)
	}
	if md.RescaleIntercept != -10 || md.RescaleSlope != 2 {
		t.Errorf("rescale = %v/%v, want 2/-10", md.RescaleSlope, md.RescaleIntercept)
	}
	if md.PixelRepresentation != 1 {
		t.Errorf("PixelRepresentation = %d, want 1", md.PixelRepresentation)
	}
	if md.Modality != "OT" {
		t.Errorf("Modality = %q", md.Modality)
	}
	if want := int64(len(data) - 36); md.PixelDataOffset != want {
		t.Errorf("PixelDataOffset = %d, want %d", md.PixelDataOffset, want)
	}

	name, ok := h.FindTag("00100010")
	if !ok || name != "Doe^Jane^Q" {
		t.Errorf("FindTag(00100010) = %q, %v", name, ok)
	}
	if _, ok := h.FindTag("00081030"); ok {
		t.Error("FindTag(00081030) found an absent tag")
	}
}

func TestParseHeaderMalformedPixelSpacingIgnored(t *testing.T) {
	for _, spacing := range []string{"abc", "0.5", "0.5\\x", "1\\2\\3"} {
		t.Run(spacing, func(t *testing.T) {
			b := newModernFile()
			b.text(TagPixelSpacing, "DS", spacing)
			data := b.grey16(1, 1, 0).bytes()
			h, err := ParseHeader(bytes.NewReader(data), int64(len(data)))
			if err != nil {
				t.Fatalf("ParseHeader() => %v", err)
			}
			if h.Metadata.PixelWidth != 1.0 || h.Metadata.PixelHeight != 1.0 {
				t.Errorf("pixel spacing = %v\\%v, want defaults", h.Metadata.PixelHeight, h.Metadata.PixelWidth)
			}
		})
	}
}

func TestParseHeaderSequenceEntries(t *testing.T) {
	b := newModernFile()
	b.undefined(0x00081140)
	b.implicit(TagItem, nil)
	b.text(0x00081150, "UI", "1.2.3")
	b.delimiter(TagItemDelimitation)
	b.delimiter(TagSequenceDelimitation)
	b.text(TagStudyDescription, "LO", "Forearm")
	data := b.grey16(1, 1, 0).bytes()

	h, err := ParseHeader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ParseHeader() => %v", err)
	}
	lines := strings.Join(h.Lines(), "\n")
	for _, want := range []string{
		"00081140//Referenced Image Sequence: ",
		"00081150//>Referenced SOP Class UID: 1.2.3",
		"00081030//Study Description: Forearm",
	} {
		if !strings.Contains(lines, want) {
			t.Errorf("header listing missing %q:\n%s", want, lines)
		}
	}
	if strings.Contains(lines, "FFFEE000") {
		t.Errorf("header listing contains item tag:\n%s", lines)
	}
}

func TestParseHeaderPrivateTags(t *testing.T) {
	b := newModernFile()
	b.text(0x00291010, "LO", "vendor")
	b.explicit(0x00291020, "SQ", []byte{1, 2, 3, 4})
	data := b.grey16(1, 1, 0).bytes()

	h, err := ParseHeader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ParseHeader() => %v", err)
	}
	v, ok := h.FindTag("00291010")
	if !ok || v != "vendor" {
		t.Fatalf("FindTag(00291010) = %q, %v", v, ok)
	}
	if got := h.Entries[0].String(); got != "00291010//Private Tag: vendor" {
		t.Errorf("entry = %q", got)
	}
}

func TestParseHeaderImplicitLongValuesDropped(t *testing.T) {
	b := newLegacyFile()
	b.implicit(0x00091001, []byte(strings.Repeat("x", 46)))
	b.implicit(0x00091002, []byte("short!"))
	b.implicit(TagRows, b.shorts(1))
	b.implicit(TagColumns, b.shorts(1))
	data := b.implicit(TagPixelData, b.shorts(0)).bytes()

	h, err := ParseHeader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ParseHeader() => %v", err)
	}
	if _, ok := h.FindTag("00091001"); ok {
		t.Error("implicit value longer than 44 bytes was recorded")
	}
	if v, ok := h.FindTag("00091002"); !ok || v != "short!" {
		t.Errorf("FindTag(00091002) = %q, %v", v, ok)
	}
}

func TestParseHeaderLength13Quirk(t *testing.T) {
	t.Run("even offsets force 13 to 10", func(t *testing.T) {
		b := newLegacyFile()
		b.tag(TagPatientName)
		b.u32(13)
		b.buf.WriteString("DOE^JOHN^A")
		b.implicit(TagRows, b.shorts(1))
		b.implicit(TagColumns, b.shorts(1))
		data := b.implicit(TagPixelData, b.shorts(5)).bytes()

		h, err := ParseHeader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			t.Fatalf("ParseHeader() => %v", err)
		}
		if v, _ := h.FindTag("00100010"); v != "DOE^JOHN^A" {
			t.Errorf("patient name = %q", v)
		}
	})

	t.Run("odd offset keeps 13", func(t *testing.T) {
		b := newLegacyFile()
		b.implicit(0x00091001, []byte("abc"))
		b.implicit(0x00091002, []byte("de"))
		b.implicit(TagPatientName, []byte("DOE^JOHN^ABCD"))
		b.implicit(TagRows, b.shorts(1))
		b.implicit(TagColumns, b.shorts(1))
		data := b.implicit(TagPixelData, b.shorts(5)).bytes()

		h, err := ParseHeader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			t.Fatalf("ParseHeader() => %v", err)
		}
		if v, _ := h.FindTag("00100010"); v != "DOE^JOHN^ABCD" {
			t.Errorf("patient name = %q", v)
		}
	})
}

func TestParseHeaderBigEndianSwitch(t *testing.T) {
	b := newModernFile()
	b.text(TagTransferSyntaxUID, "UI", "1.2.840.10008.1.2.2")
	b.order = binary.BigEndian
	b.text(TagStudyDate, "DA", "20230102")
	data := b.grey16(1, 2, 0x0102, 0x0304).bytes()

	h, err := ParseHeader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ParseHeader() => %v", err)
	}
	if !h.Metadata.BigEndian {
		t.Error("BigEndian not set after group 0008")
	}
	if v, _ := h.FindTag("00080020"); v != "20230102" {
		t.Errorf("study date = %q", v)
	}
	if h.Metadata.Rows != 1 || h.Metadata.Columns != 2 {
		t.Errorf("geometry = %dx%d, want 1x2", h.Metadata.Rows, h.Metadata.Columns)
	}

	buf, err := DecodePixels(bytes.NewReader(data), int64(len(data)), h.Metadata)
	if err != nil {
		t.Fatalf("DecodePixels() => %v", err)
	}
	if buf.Grey16[0][0] != 0x0102 || buf.Grey16[0][1] != 0x0304 {
		t.Errorf("pixels = %#v", buf.Grey16[0])
	}
}

func TestParseHeaderUSMultiplicity(t *testing.T) {
	b := newModernFile()
	b.explicit(0x00281101, "US", b.shorts(256, 0, 16))
	data := b.grey16(1, 1, 0).bytes()

	h, err := ParseHeader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ParseHeader() => %v", err)
	}
	if v, _ := h.FindTag("00281101"); v != "256 0 16" {
		t.Errorf("descriptor = %q, want %q", v, "256 0 16")
	}
}

func TestParseHeaderClampsFrameCount(t *testing.T) {
	b := newModernFile()
	b.text(TagTransferSyntaxUID, "UI", "1.2.840.10008.1.2.1")
	b.text(TagNumberOfFrames, "IS", "1000000000000000")
	data := b.grey16(1, 1, 7).bytes()

	h, err := ParseHeader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("ParseHeader() => %v", err)
	}
	if h.Metadata.Frames != maxFrames {
		t.Errorf("Frames = %d, want %d", h.Metadata.Frames, maxFrames)
	}
	if _, err := DecodePixels(bytes.NewReader(data), int64(len(data)), h.Metadata); !errors.Is(err, ErrFileAccess) {
		t.Errorf("DecodePixels() => %v, want ErrFileAccess", err)
	}
}
