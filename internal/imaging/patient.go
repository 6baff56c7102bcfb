package imaging

import (
	"fmt"
	"strings"
)

// Gender as recorded in the patient module
type Gender int

// The zero value is GenderNotSpecified.
const (
	GenderNotSpecified Gender = iota
	GenderMale
	GenderFemale
	GenderOther
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	case GenderOther:
		return "other"
	default:
		return "not_specified"
	}
}

// MarshalText implements encoding.TextMarshaler
func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (g *Gender) UnmarshalText(b []byte) error {
	switch string(b) {
	case "male":
		*g = GenderMale
	case "female":
		*g = GenderFemale
	case "other":
		*g = GenderOther
	default:
		*g = GenderNotSpecified
	}
	return nil
}

// ParseGender maps a patient's sex value by its first letter
func ParseGender(s string) Gender {
	switch {
	case strings.HasPrefix(s, "F"):
		return GenderFemale
	case strings.HasPrefix(s, "M"):
		return GenderMale
	case strings.HasPrefix(s, "O"):
		return GenderOther
	default:
		return GenderNotSpecified
	}
}

// PatientInfo is the patient and referral data carried by an image. It is a
// plain value; assigning it copies it.
type PatientInfo struct {
	LastName           string `json:"last_name"`
	FirstName          string `json:"first_name"`
	MiddleName         string `json:"middle_name"`
	MRN                string `json:"mrn"`
	DOBDay             string `json:"dob_day"`
	DOBMonth           string `json:"dob_month"`
	DOBYear            string `json:"dob_year"`
	AccessionNumber    string `json:"accession_number"`
	Gender             Gender `json:"gender"`
	ReferringLastName  string `json:"referring_last_name"`
	ReferringFirstName string `json:"referring_first_name"`
}

// FullName renders "Last, First Middle"
func (p PatientInfo) FullName() string {
	return fmt.Sprintf("%s, %s %s", p.LastName, p.FirstName, p.MiddleName)
}

// PersonName renders the caret-separated form stored in headers
func (p PatientInfo) PersonName() string {
	return p.LastName + "^" + p.FirstName + "^" + p.MiddleName
}

// ReferringFullName renders "Last, First" for the referring physician
func (p PatientInfo) ReferringFullName() string {
	return fmt.Sprintf("%s, %s", p.ReferringLastName, p.ReferringFirstName)
}

// DateOfBirth renders month/day/year
func (p PatientInfo) DateOfBirth() string {
	return p.DOBMonth + "/" + p.DOBDay + "/" + p.DOBYear
}

// SamePatient compares names case-insensitively plus birth date and gender
func (p PatientInfo) SamePatient(o PatientInfo) bool {
	return strings.EqualFold(p.LastName, o.LastName) &&
		strings.EqualFold(p.FirstName, o.FirstName) &&
		strings.EqualFold(p.MiddleName, o.MiddleName) &&
		p.DateOfBirth() == o.DateOfBirth() &&
		p.Gender == o.Gender
}

// patientFromTags fills a PatientInfo from header values
func patientFromTags(find func(key string) string) PatientInfo {
	p := PatientInfo{
		AccessionNumber: find("00080050"),
		Gender:          ParseGender(find("00100040")),
		MRN:             find("00100020"),
	}

	if dob := strings.TrimSpace(find("00100030")); len(dob) >= 8 {
		p.DOBYear = dob[0:4]
		p.DOBMonth = dob[4:6]
		p.DOBDay = dob[6:8]
	}

	name := strings.Split(find("00100010"), "^")
	p.LastName = name[0]
	if len(name) > 1 {
		p.FirstName = name[1]
	}
	if len(name) > 2 {
		p.MiddleName = name[2]
	}

	ref := strings.Split(find("00080090"), "^")
	p.ReferringLastName = ref[0]
	if len(ref) > 1 {
		p.ReferringFirstName = ref[1]
	}
	return p
}
