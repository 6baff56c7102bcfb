package dicom

import "testing"

func TestDictionaryLookup(t *testing.T) {
	d := StandardDictionary()
	testCases := []struct {
		key  string
		vr   VR
		name string
		ok   bool
	}{
		{"00280010", VRUS, "Rows", true},
		{"7FE00010", VROW, "Pixel Data", true},
		{"00081140", VRSQ, "Referenced Image Sequence", true},
		{"FFFEE000", VRImplicit, "Item", true},
		{"00291010", 0, "", false},
		{"bogus", 0, "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.key, func(t *testing.T) {
			e, ok := d.LookupKey(tc.key)
			if ok != tc.ok || e.VR != tc.vr || e.Name != tc.name {
				t.Errorf("LookupKey(%q) = %+v, %v", tc.key, e, ok)
			}
		})
	}
}

func TestNewDictionaryCopiesInput(t *testing.T) {
	src := map[uint32]Entry{0x00090010: {VRLO, "Vendor Creator"}}
	d := NewDictionary(src)
	delete(src, 0x00090010)
	if _, ok := d.Lookup(0x00090010); !ok || d.Len() != 1 {
		t.Error("NewDictionary() aliases its input")
	}
	var nilDict *Dictionary
	if _, ok := nilDict.Lookup(0x00280010); ok {
		t.Error("nil dictionary resolved a tag")
	}
}

func TestTagKeyRoundTrip(t *testing.T) {
	if got := TagKey(0x0008103E); got != "0008103E" {
		t.Errorf("TagKey() = %q", got)
	}
	tag, err := ParseTagKey("0008103E")
	if err != nil || tag != 0x0008103E {
		t.Errorf("ParseTagKey() = %#x, %v", tag, err)
	}
}
