package dicom

import (
	"fmt"
	"strconv"
)

// Entry is one data dictionary record
type Entry struct {
	VR   VR
	Name string
}

// Dictionary maps a 32-bit (group<<16 | element) tag to its entry. A
// Dictionary is read-only once constructed and safe to share.
type Dictionary struct {
	entries map[uint32]Entry
}

// NewDictionary builds a dictionary from a copy of entries
func NewDictionary(entries map[uint32]Entry) *Dictionary {
	d := &Dictionary{entries: make(map[uint32]Entry, len(entries))}
	for k, v := range entries {
		d.entries[k] = v
	}
	return d
}

// Lookup returns the entry for tag
func (d *Dictionary) Lookup(tag uint32) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	e, ok := d.entries[tag]
	return e, ok
}

// LookupKey resolves an 8 hex digit key such as "00280010"
func (d *Dictionary) LookupKey(key string) (Entry, bool) {
	tag, err := ParseTagKey(key)
	if err != nil {
		return Entry{}, false
	}
	return d.Lookup(tag)
}

// Len returns the number of entries
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// TagKey renders a tag as 8 upper-case hex digits
func TagKey(tag uint32) string {
	return fmt.Sprintf("%08X", tag)
}

// ParseTagKey parses an 8 hex digit key
func ParseTagKey(key string) (uint32, error) {
	if len(key) != 8 {
		return 0, fmt.Errorf("invalid tag key %q", key)
	}
	v, err := strconv.ParseUint(key, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid tag key %q: %w", key, err)
	}
	return uint32(v), nil
}

var standardDictionary = NewDictionary(map[uint32]Entry{
	// File meta information
	0x00020002: {VRUI, "Media Storage SOP Class UID"},
	0x00020003: {VRUI, "Media Storage SOP Instance UID"},
	0x00020010: {VRUI, "Transfer Syntax UID"},
	0x00020012: {VRUI, "Implementation Class UID"},
	0x00020013: {VRSH, "Implementation Version Name"},
	0x00020016: {VRAE, "Source Application Entity Title"},

	// Identification
	0x00080005: {VRCS, "Specific Character Set"},
	0x00080008: {VRCS, "Image Type"},
	0x00080012: {VRDA, "Instance Creation Date"},
	0x00080013: {VRTM, "Instance Creation Time"},
	0x00080016: {VRUI, "SOP Class UID"},
	0x00080018: {VRUI, "SOP Instance UID"},
	0x00080020: {VRDA, "Study Date"},
	0x00080021: {VRDA, "Series Date"},
	0x00080022: {VRDA, "Acquisition Date"},
	0x00080023: {VRDA, "Content Date"},
	0x0008002A: {VRDT, "Acquisition DateTime"},
	0x00080030: {VRTM, "Study Time"},
	0x00080031: {VRTM, "Series Time"},
	0x00080032: {VRTM, "Acquisition Time"},
	0x00080033: {VRTM, "Content Time"},
	0x00080050: {VRSH, "Accession Number"},
	0x00080060: {VRCS, "Modality"},
	0x00080064: {VRCS, "Conversion Type"},
	0x00080070: {VRLO, "Manufacturer"},
	0x00080080: {VRLO, "Institution Name"},
	0x00080081: {VRST, "Institution Address"},
	0x00080090: {VRPN, "Referring Physician's Name"},
	0x00081010: {VRSH, "Station Name"},
	0x00081030: {VRLO, "Study Description"},
	0x0008103E: {VRLO, "Series Description"},
	0x00081040: {VRLO, "Institutional Department Name"},
	0x00081050: {VRPN, "Performing Physician's Name"},
	0x00081070: {VRPN, "Operators' Name"},
	0x00081090: {VRLO, "Manufacturer's Model Name"},
	0x00081140: {VRSQ, "Referenced Image Sequence"},
	0x00081150: {VRUI, "Referenced SOP Class UID"},
	0x00081155: {VRUI, "Referenced SOP Instance UID"},
	0x00082111: {VRST, "Derivation Description"},

	// Patient
	0x00100010: {VRPN, "Patient's Name"},
	0x00100020: {VRLO, "Patient ID"},
	0x00100030: {VRDA, "Patient's Birth Date"},
	0x00100032: {VRTM, "Patient's Birth Time"},
	0x00100040: {VRCS, "Patient's Sex"},
	0x00101010: {VRAS, "Patient's Age"},
	0x00101020: {VRDS, "Patient's Size"},
	0x00101030: {VRDS, "Patient's Weight"},
	0x00104000: {VRLT, "Patient Comments"},

	// Acquisition
	0x00180015: {VRCS, "Body Part Examined"},
	0x00180050: {VRDS, "Slice Thickness"},
	0x00180088: {VRDS, "Spacing Between Slices"},
	0x00181000: {VRLO, "Device Serial Number"},
	0x00181020: {VRLO, "Software Versions"},
	0x00181030: {VRLO, "Protocol Name"},
	0x00181150: {VRIS, "Exposure Time"},
	0x00181164: {VRDS, "Imager Pixel Spacing"},
	0x00185101: {VRCS, "View Position"},
	0x00187001: {VRDS, "Detector Temperature"},
	0x00187004: {VRCS, "Detector Type"},
	0x00187005: {VRCS, "Detector Configuration"},
	0x00189527: {VRCS, "Image Processing Algorithm"},
	0x00189528: {VRLO, "Algorithm Version"},

	// Relationship
	0x0020000D: {VRUI, "Study Instance UID"},
	0x0020000E: {VRUI, "Series Instance UID"},
	0x00200010: {VRSH, "Study ID"},
	0x00200011: {VRIS, "Series Number"},
	0x00200012: {VRIS, "Acquisition Number"},
	0x00200013: {VRIS, "Instance Number"},
	0x00200020: {VRCS, "Patient Orientation"},
	0x00200032: {VRDS, "Image Position (Patient)"},
	0x00200037: {VRDS, "Image Orientation (Patient)"},
	0x00200052: {VRUI, "Frame of Reference UID"},
	0x00201041: {VRDS, "Slice Location"},
	0x00204000: {VRLT, "Image Comments"},

	// Image pixel
	0x00280002: {VRUS, "Samples per Pixel"},
	0x00280004: {VRCS, "Photometric Interpretation"},
	0x00280006: {VRUS, "Planar Configuration"},
	0x00280008: {VRIS, "Number of Frames"},
	0x00280009: {VRAT, "Frame Increment Pointer"},
	0x00280010: {VRUS, "Rows"},
	0x00280011: {VRUS, "Columns"},
	0x00280030: {VRDS, "Pixel Spacing"},
	0x00280034: {VRIS, "Pixel Aspect Ratio"},
	0x00280100: {VRUS, "Bits Allocated"},
	0x00280101: {VRUS, "Bits Stored"},
	0x00280102: {VRUS, "High Bit"},
	0x00280103: {VRUS, "Pixel Representation"},
	0x00280106: {VRUS, "Smallest Image Pixel Value"},
	0x00280107: {VRUS, "Largest Image Pixel Value"},
	0x00281050: {VRDS, "Window Center"},
	0x00281051: {VRDS, "Window Width"},
	0x00281052: {VRDS, "Rescale Intercept"},
	0x00281053: {VRDS, "Rescale Slope"},
	0x00281054: {VRLO, "Rescale Type"},
	0x00281055: {VRLO, "Window Center & Width Explanation"},
	0x00281101: {VRUS, "Red Palette Color Lookup Table Descriptor"},
	0x00281102: {VRUS, "Green Palette Color Lookup Table Descriptor"},
	0x00281103: {VRUS, "Blue Palette Color Lookup Table Descriptor"},
	0x00281201: {VROW, "Red Palette Color Lookup Table Data"},
	0x00281202: {VROW, "Green Palette Color Lookup Table Data"},
	0x00281203: {VROW, "Blue Palette Color Lookup Table Data"},
	0x00282110: {VRCS, "Lossy Image Compression"},

	// Study / procedure
	0x00321032: {VRPN, "Requesting Physician"},
	0x00321060: {VRLO, "Requested Procedure Description"},
	0x00400244: {VRDA, "Performed Procedure Step Start Date"},
	0x00400245: {VRTM, "Performed Procedure Step Start Time"},
	0x00400253: {VRSH, "Performed Procedure Step ID"},
	0x00400254: {VRLO, "Performed Procedure Step Description"},

	0x00880200: {VRSQ, "Icon Image Sequence"},

	0x7FE00010: {VROW, "Pixel Data"},

	// Delimiters
	0xFFFEE000: {VRImplicit, "Item"},
	0xFFFEE00D: {VRImplicit, "Item Delimitation Item"},
	0xFFFEE0DD: {VRImplicit, "Sequence Delimitation Item"},
})

// StandardDictionary returns the built-in dictionary
func StandardDictionary() *Dictionary {
	return standardDictionary
}
