package imaging

import (
	"strconv"
	"testing"
)

func TestImageTypeFromFileName(t *testing.T) {
	for d := 0; d <= 9; d++ {
		name := "study/series_" + strconv.Itoa(d)
		if got := ImageTypeFromFileName(name); got != ImageType(d) {
			t.Errorf("ImageTypeFromFileName(%q) = %v, want %v", name, got, ImageType(d))
		}
	}
	if got := ImageTypeFromFileName("white3"); got != WhiteRefs {
		t.Errorf("trailing 3 = %v, want WhiteRefs", got)
	}
	if got := ImageTypeFromFileName("nir0"); got != NIR {
		t.Errorf("trailing 0 = %v, want NIR", got)
	}
	for _, name := range []string{"", "scan.dcm", "scanX"} {
		if got := ImageTypeFromFileName(name); got != Undefined {
			t.Errorf("ImageTypeFromFileName(%q) = %v, want Undefined", name, got)
		}
	}
}

func TestOutputFileNameAllOrdinals(t *testing.T) {
	for i := 0; i < SlotCount; i++ {
		want := "series_" + strconv.Itoa(i)
		if got := OutputFileName("series_0", ImageType(i)); got != want {
			t.Errorf("OutputFileName(%v) = %q, want %q", ImageType(i), got, want)
		}
	}
	if OutputFileName("", ST02) != "" {
		t.Error("OutputFileName of empty name is not empty")
	}
}

func TestParseImageType(t *testing.T) {
	testCases := []struct {
		in      string
		want    ImageType
		wantErr bool
	}{
		{"NIR", NIR, false},
		{"st02", ST02, false},
		{"eColonRGB", EColonRGB, false},
		{"10", ColonStO2, false},
		{"12", Undefined, true},
		{"Undefined", Undefined, true},
		{"bogus", Undefined, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseImageType(tc.in)
			if (err != nil) != tc.wantErr || got != tc.want {
				t.Errorf("ParseImageType(%q) = %v, %v", tc.in, got, err)
			}
		})
	}
}
