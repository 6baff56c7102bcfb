package dicom

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// characterSets maps Specific Character Set defined terms to single-byte
// encodings. Unlisted terms, including ISO_IR 192 (UTF-8), leave text values
// as read.
var characterSets = map[string]encoding.Encoding{
	"ISO_IR 100":      charmap.ISO8859_1,
	"ISO_IR 101":      charmap.ISO8859_2,
	"ISO_IR 109":      charmap.ISO8859_3,
	"ISO_IR 110":      charmap.ISO8859_4,
	"ISO_IR 144":      charmap.ISO8859_5,
	"ISO_IR 127":      charmap.ISO8859_6,
	"ISO_IR 126":      charmap.ISO8859_7,
	"ISO_IR 138":      charmap.ISO8859_8,
	"ISO_IR 148":      charmap.ISO8859_9,
	"ISO_IR 166":      charmap.Windows874,
	"ISO 2022 IR 100": charmap.ISO8859_1,
	"ISO 2022 IR 101": charmap.ISO8859_2,
	"ISO 2022 IR 109": charmap.ISO8859_3,
	"ISO 2022 IR 110": charmap.ISO8859_4,
	"ISO 2022 IR 144": charmap.ISO8859_5,
	"ISO 2022 IR 127": charmap.ISO8859_6,
	"ISO 2022 IR 126": charmap.ISO8859_7,
	"ISO 2022 IR 138": charmap.ISO8859_8,
	"ISO 2022 IR 148": charmap.ISO8859_9,
	"ISO 2022 IR 166": charmap.Windows874,
}

// lookupCharacterSet returns a decoder for the first term of a Specific
// Character Set value, or nil when the term is unknown.
func lookupCharacterSet(value string) *encoding.Decoder {
	term, _, _ := strings.Cut(trimValue(value), "\\")
	enc, ok := characterSets[strings.TrimSpace(term)]
	if !ok {
		return nil
	}
	return enc.NewDecoder()
}

// decodeText converts s to UTF-8. Pure ASCII, or any value when dec is nil,
// is returned unchanged.
func decodeText(dec *encoding.Decoder, s string) string {
	if dec == nil || isASCII(s) {
		return s
	}
	out, err := dec.String(s)
	if err != nil {
		return s
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
