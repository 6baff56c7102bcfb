package imaging

import (
	"encoding/json"
	"testing"

	"github.com/otcheredev/ris-dicom-imaging/internal/models"
)

func seriesDesc(stem, date, tm string) models.SeriesDescription {
	return models.SeriesDescription{SeriesID: stem, SeriesFileName: stem, SeriesDate: date, SeriesTime: tm}
}

func ids(list []*Series) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID()
	}
	return out
}

func TestSortSeriesDescending(t *testing.T) {
	list := []*Series{
		NewSeriesFromDescription(seriesDesc("a", "20230101", "120000")),
		NewSeriesFromDescription(seriesDesc("b", "", "235959")),
		NewSeriesFromDescription(seriesDesc("c", "20230102", "080000")),
		NewSeriesFromDescription(seriesDesc("d", "20230101", "130000")),
		NewSeriesFromDescription(seriesDesc("e", "20230102", "090000")),
	}
	SortSeries(list)

	want := []string{"e", "c", "d", "a", "b"}
	got := ids(list)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestCompareSeriesEmptyDates(t *testing.T) {
	empty := NewSeriesFromDescription(seriesDesc("x", "", ""))
	dated := NewSeriesFromDescription(seriesDesc("y", "20200101", ""))
	if CompareSeries(empty, dated) <= 0 || CompareSeries(dated, empty) >= 0 {
		t.Error("series without a date does not sort last")
	}
	if CompareSeries(empty, empty) != 0 {
		t.Error("two undated series are not equal")
	}
}

func TestSortStudies(t *testing.T) {
	older := NewStudy("/old", "old")
	older.Description.StudyDate = "20220101"
	newer := NewStudy("/new", "new")
	newer.Description.StudyDate = "20230101"
	newer.Description.StudyTime = "080000"
	newest := NewStudy("/newest", "newest")
	newest.Description.StudyDate = "20230101"
	newest.Description.StudyTime = "090000"

	newer.AddSeries(NewSeriesFromDescription(seriesDesc("s1", "20230101", "1")))
	newer.AddSeries(NewSeriesFromDescription(seriesDesc("s2", "20230101", "2")))

	list := []*Study{older, newer, newest}
	SortStudies(list, false)
	if list[0] != newest || list[1] != newer || list[2] != older {
		t.Errorf("order = %s, %s, %s", list[0].ID(), list[1].ID(), list[2].ID())
	}
	if ids(newer.Series())[0] != "s1" {
		t.Error("series sorted without sortSeries")
	}

	SortStudies(list, true)
	if got := ids(newer.Series()); got[0] != "s2" || got[1] != "s1" {
		t.Errorf("series order = %v", got)
	}
}

func TestStudyAddSeriesMirrorsDescription(t *testing.T) {
	st := NewStudy("/data/p1", "st-9")
	s := NewSeriesFromDescription(seriesDesc("a_", "20230101", "1"))
	st.AddSeries(s)
	st.Add(NewSeriesFromDescription(seriesDesc("b_", "20230101", "1")))
	st.Add(nil)
	st.AddSeries(nil)

	if len(st.Series()) != 2 {
		t.Fatalf("len(Series()) = %d, want 2", len(st.Series()))
	}
	if len(st.Description.Series) != 1 {
		t.Fatalf("mirrored descriptions = %d, want 1", len(st.Description.Series))
	}
	if s.Parent() != st {
		t.Error("AddSeries() did not set the parent")
	}

	s.Description.SeriesDescription = "updated later"
	if st.Description.Series[0].SeriesDescription != "updated later" {
		t.Error("study description does not track the series description")
	}
	if st.FindSeries("b_") == nil || st.FindSeries("zz") != nil {
		t.Error("FindSeries() mismatch")
	}
}

func TestStudyDescriptionRoundTrip(t *testing.T) {
	st := NewStudy("/data/p1", "st-1")
	st.Description.StudyDate = "20230102"
	st.AddSeries(NewSeriesFromDescription(seriesDesc("a_", "20230102", "1")))

	data, err := json.Marshal(st.Description)
	if err != nil {
		t.Fatalf("json.Marshal() => %v", err)
	}
	var desc models.StudyDescription
	if err := json.Unmarshal(data, &desc); err != nil {
		t.Fatalf("json.Unmarshal() => %v", err)
	}
	rebuilt := NewStudyFromDescription(desc)
	if rebuilt.ID() != "st-1" || rebuilt.Directory() != "/data/p1" || len(rebuilt.Series()) != 1 {
		t.Errorf("rebuilt study = %+v", rebuilt.Description)
	}
	if rebuilt.Series()[0].Parent() != rebuilt {
		t.Error("rebuilt series has no parent")
	}
}

func TestStudyDateLongForm(t *testing.T) {
	st := NewStudy("", "")
	st.Description.StudyDate = "20230102"
	if got := st.StudyDateLongForm(); got != "Monday, January 2, 2023" {
		t.Errorf("StudyDateLongForm() = %q", got)
	}
	st.Description.StudyDate = "2023-01"
	if got := st.StudyDateLongForm(); got != "2023-01" {
		t.Errorf("StudyDateLongForm() = %q, want raw value", got)
	}
}
