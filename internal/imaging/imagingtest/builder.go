// Package imagingtest builds small explicit little-endian image files for
// tests.
package imagingtest

import (
	"bytes"
	"encoding/binary"
	"strconv"
)

// File assembles a file element by element after the preamble and magic
type File struct {
	buf bytes.Buffer
}

// New starts a file with a zero preamble and the DICM magic
func New() *File {
	f := &File{}
	f.buf.Write(make([]byte, 128))
	f.buf.WriteString("DICM")
	return f
}

// Element appends one explicit VR element
func (f *File) Element(tag uint32, vr string, value []byte) *File {
	binary.Write(&f.buf, binary.LittleEndian, uint16(tag>>16))
	binary.Write(&f.buf, binary.LittleEndian, uint16(tag))
	f.buf.WriteString(vr)
	switch vr {
	case "OB", "OW", "SQ", "UN", "UT":
		f.buf.Write([]byte{0, 0})
		binary.Write(&f.buf, binary.LittleEndian, uint32(len(value)))
	default:
		binary.Write(&f.buf, binary.LittleEndian, uint16(len(value)))
	}
	f.buf.Write(value)
	return f
}

// Text appends a string element padded to even length
func (f *File) Text(tag uint32, vr, s string) *File {
	if len(s)%2 != 0 {
		s += " "
	}
	return f.Element(tag, vr, []byte(s))
}

// US appends an unsigned short element
func (f *File) US(tag uint32, v uint16) *File {
	return f.Element(tag, "US", LE16(v))
}

// Grey16 finishes the file with a 16-bit image of the given samples
func (f *File) Grey16(rows, cols, frames uint16, samples ...uint16) []byte {
	f.US(0x00280002, 1)
	f.Text(0x00280008, "IS", strconv.Itoa(int(frames)))
	f.US(0x00280010, rows)
	f.US(0x00280011, cols)
	f.US(0x00280100, 16)
	f.Element(0x7FE00010, "OW", LE16(samples...))
	return f.buf.Bytes()
}

// Grey8 finishes the file with an 8-bit image
func (f *File) Grey8(rows, cols uint16, photometric string, samples ...byte) []byte {
	f.US(0x00280002, 1)
	f.Text(0x00280004, "CS", photometric)
	f.US(0x00280010, rows)
	f.US(0x00280011, cols)
	f.US(0x00280100, 8)
	f.Element(0x7FE00010, "OB", padEven(samples))
	return f.buf.Bytes()
}

// RGB finishes the file with an 8-bit colour image
func (f *File) RGB(rows, cols uint16, pixels ...byte) []byte {
	f.US(0x00280002, 3)
	f.US(0x00280010, rows)
	f.US(0x00280011, cols)
	f.US(0x00280100, 8)
	f.Element(0x7FE00010, "OB", padEven(pixels))
	return f.buf.Bytes()
}

// Bytes returns the file assembled so far
func (f *File) Bytes() []byte {
	return f.buf.Bytes()
}

// LE16 encodes values little-endian
func LE16(values ...uint16) []byte {
	p := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(p[i*2:], v)
	}
	return p
}

func padEven(b []byte) []byte {
	if len(b)%2 != 0 {
		return append(append([]byte(nil), b...), 0)
	}
	return b
}

// Clinical starts a file carrying a full set of patient and study tags:
// patient Doe^Jane^Q (MRN-7, born 19800215, F), referrer House^Gregory,
// accession ACC42, study 20230102 at 093000, acquisition 20230102093000,
// series "Left heel", study "Wound check", temperatures 36.5 and 41.
func Clinical() *File {
	f := New()
	f.Text(0x00020010, "UI", "1.2.840.10008.1.2.1")
	f.Text(0x00080020, "DA", "20230102")
	f.Text(0x0008002A, "DT", "20230102093000")
	f.Text(0x00080030, "TM", "093000")
	f.Text(0x00080050, "SH", "ACC42")
	f.Text(0x00080090, "PN", "House^Gregory")
	f.Text(0x00081030, "LO", "Wound check")
	f.Text(0x0008103E, "LO", "Left heel")
	f.Text(0x00100010, "PN", "Doe^Jane^Q")
	f.Text(0x00100020, "LO", "MRN-7")
	f.Text(0x00100030, "DA", "19800215")
	f.Text(0x00100040, "CS", "F")
	f.Text(0x00187001, "DS", "36.5")
	f.Text(0x00187002, "DS", "41")
	return f
}
