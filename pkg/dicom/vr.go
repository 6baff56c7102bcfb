package dicom

// VR is a two-character value representation code packed big-endian into
// 16 bits, e.g. 'U','S' -> 0x5553. The packing does not depend on the byte
// order of the stream.
type VR uint16

// Value representation codes recognised by the parser
const (
	VRAE VR = 0x4145
	VRAS VR = 0x4153
	VRAT VR = 0x4154
	VRCS VR = 0x4353
	VRDA VR = 0x4441
	VRDS VR = 0x4453
	VRDT VR = 0x4454
	VRFD VR = 0x4644
	VRFL VR = 0x464C
	VRIS VR = 0x4953
	VRLO VR = 0x4C4F
	VRLT VR = 0x4C54
	VRPN VR = 0x504E
	VRSH VR = 0x5348
	VRSL VR = 0x534C
	VRSS VR = 0x5353
	VRST VR = 0x5354
	VRTM VR = 0x544D
	VRUI VR = 0x5549
	VRUL VR = 0x554C
	VRUS VR = 0x5553
	VRUT VR = 0x5554
	VROB VR = 0x4F42
	VROW VR = 0x4F57
	VRSQ VR = 0x5351
	VRUN VR = 0x554E
	VRQQ VR = 0x3F3F
	VRRT VR = 0x5254

	// VRImplicit marks a field whose type has to come from the dictionary.
	VRImplicit VR = 0x2D2D
)

// ParseVR packs a two-character code
func ParseVR(code string) VR {
	if len(code) != 2 {
		return VRImplicit
	}
	return VR(uint16(code[0])<<8 | uint16(code[1]))
}

func (v VR) String() string {
	return string([]byte{byte(v >> 8), byte(v)})
}

// isLongForm reports VRs whose explicit encoding carries two reserved bytes
// followed by a 32-bit length.
func (v VR) isLongForm() bool {
	switch v {
	case VROB, VROW, VRSQ, VRUN, VRUT:
		return true
	}
	return false
}

// isShortForm reports VRs whose explicit encoding carries a 16-bit length.
func (v VR) isShortForm() bool {
	switch v {
	case VRAE, VRAS, VRAT, VRCS, VRDA, VRDS, VRDT, VRFD, VRFL, VRIS, VRLO, VRLT,
		VRPN, VRSH, VRSL, VRSS, VRST, VRTM, VRUI, VRUL, VRUS, VRQQ, VRRT:
		return true
	}
	return false
}

// isText reports VRs whose value is read as fixed-length text.
func (v VR) isText() bool {
	switch v {
	case VRAE, VRAS, VRAT, VRCS, VRDA, VRDS, VRDT, VRIS, VRLO, VRLT, VRPN, VRSH,
		VRST, VRTM, VRUI:
		return true
	}
	return false
}
