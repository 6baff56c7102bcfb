package imaging

import (
	"slices"
	"strings"
	"time"

	"github.com/otcheredev/ris-dicom-imaging/internal/models"
)

// Study is an ordered collection of series plus the study description. The
// description mirrors the description of every series added through AddSeries.
type Study struct {
	Description models.StudyDescription

	series []*Series
}

// NewStudy creates an empty study rooted at directory
func NewStudy(directory, studyID string) *Study {
	return &Study{Description: models.StudyDescription{
		StudyID:        studyID,
		StudyDirectory: directory,
		Series:         []*models.SeriesDescription{},
	}}
}

// NewStudyFromDescription rebuilds a study and image-less series from a
// stored description.
func NewStudyFromDescription(desc models.StudyDescription) *Study {
	st := &Study{Description: desc}
	st.Description.Series = nil
	for _, sd := range desc.Series {
		if sd == nil {
			continue
		}
		s := NewSeriesFromDescription(*sd)
		st.AddSeries(s)
	}
	return st
}

// ID returns the study identifier
func (st *Study) ID() string { return st.Description.StudyID }

// Directory returns the directory the study was read from
func (st *Study) Directory() string { return st.Description.StudyDirectory }

// AddSeries appends s and mirrors its description into the study description
func (st *Study) AddSeries(s *Series) {
	if s == nil {
		return
	}
	s.parent = st
	st.series = append(st.series, s)
	st.Description.Series = append(st.Description.Series, &s.Description)
}

// Add appends s without touching the study description
func (st *Study) Add(s *Series) {
	if s == nil {
		return
	}
	st.series = append(st.series, s)
}

// Series returns the series in their current order
func (st *Study) Series() []*Series {
	return slices.Clone(st.series)
}

// FindSeries returns the series with the given id, or nil
func (st *Study) FindSeries(id string) *Series {
	for _, s := range st.series {
		if s.ID() == id {
			return s
		}
	}
	return nil
}

// StudyDateLongForm renders the study date in long form
func (st *Study) StudyDateLongForm() string {
	return longDate(st.Description.StudyDate)
}

// longDate renders an eight digit date as "Monday, January 2, 2006" and
// returns anything else unchanged.
func longDate(s string) string {
	t, err := time.Parse("20060102", strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("Monday, January 2, 2006")
}

// CompareSeries orders series newest first: descending date, then descending
// time. Dates and times compare as plain text. Series without a date go last.
func CompareSeries(a, b *Series) int {
	return compareDateTime(a.Description.SeriesDate, a.Description.SeriesTime,
		b.Description.SeriesDate, b.Description.SeriesTime)
}

// CompareStudies orders studies the same way as CompareSeries
func CompareStudies(a, b *Study) int {
	return compareDateTime(a.Description.StudyDate, a.Description.StudyTime,
		b.Description.StudyDate, b.Description.StudyTime)
}

func compareDateTime(aDate, aTime, bDate, bTime string) int {
	switch {
	case aDate == "" && bDate == "":
		return 0
	case aDate == "":
		return 1
	case bDate == "":
		return -1
	case aDate != bDate:
		return strings.Compare(bDate, aDate)
	}
	return strings.Compare(bTime, aTime)
}

// SortSeries sorts list in place with CompareSeries
func SortSeries(list []*Series) {
	slices.SortStableFunc(list, CompareSeries)
}

// SortStudies sorts list in place with CompareStudies and, when sortSeries is
// set, the series of every study too.
func SortStudies(list []*Study, sortSeries bool) {
	slices.SortStableFunc(list, CompareStudies)
	if !sortSeries {
		return
	}
	for _, st := range list {
		SortSeries(st.series)
	}
}
