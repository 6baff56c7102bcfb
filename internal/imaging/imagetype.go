package imaging

import (
	"fmt"
	"strconv"
	"strings"
)

// ImageType identifies what an image in a series holds. The ordinal is also
// the trailing digit of the file name the image is stored under.
type ImageType int

const (
	NIR ImageType = iota
	ST02
	PNGImage
	WhiteRefs
	MelaninCorrectedSt02
	HbDeoxy
	HbOxy
	TotalHbOxy
	EFuzzyRGB
	FuzzyStO2
	ColonStO2
	EColonRGB
	Undefined
)

// SlotCount is the number of image slots in a series
const SlotCount = int(Undefined)

var imageTypeNames = [...]string{
	NIR:                  "NIR",
	ST02:                 "ST02",
	PNGImage:             "PNGImage",
	WhiteRefs:            "WhiteRefs",
	MelaninCorrectedSt02: "MelaninCorrectedSt02",
	HbDeoxy:              "HbDeoxy",
	HbOxy:                "HbOxy",
	TotalHbOxy:           "TotalHbOxy",
	EFuzzyRGB:            "eFuzzyRGB",
	FuzzyStO2:            "FuzzyStO2",
	ColonStO2:            "ColonStO2",
	EColonRGB:            "eColonRGB",
	Undefined:            "Undefined",
}

func (t ImageType) String() string {
	if t < 0 || int(t) >= len(imageTypeNames) {
		return "ImageType(" + strconv.Itoa(int(t)) + ")"
	}
	return imageTypeNames[t]
}

// Valid reports whether t names a series slot
func (t ImageType) Valid() bool {
	return t >= NIR && t < Undefined
}

// ParseImageType accepts either a type name (case-insensitive) or its ordinal
func ParseImageType(s string) (ImageType, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if t := ImageType(n); t.Valid() {
			return t, nil
		}
		return Undefined, fmt.Errorf("unknown image type %q", s)
	}
	for i, name := range imageTypeNames[:SlotCount] {
		if strings.EqualFold(name, s) {
			return ImageType(i), nil
		}
	}
	return Undefined, fmt.Errorf("unknown image type %q", s)
}

// ImageTypeFromFileName classifies a file by its trailing character.
func ImageTypeFromFileName(name string) ImageType {
	if name == "" {
		return Undefined
	}
	last := name[len(name)-1]
	// "3" is matched on its own even though the direct cast below yields the
	// same ordinal. Older acquisition software relied on the explicit case.
	if last == '3' {
		return WhiteRefs
	}
	if last < '0' || last > '9' {
		return Undefined
	}
	return ImageType(last - '0')
}

// OutputFileName replaces the trailing character of name with the ordinal of t
func OutputFileName(name string, t ImageType) string {
	if name == "" {
		return ""
	}
	return name[:len(name)-1] + strconv.Itoa(int(t))
}
