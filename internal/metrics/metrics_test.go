package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveScan(t *testing.T) {
	okBefore := testutil.ToFloat64(StudyScans.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(StudyScans.WithLabelValues("error"))

	ObserveScan(nil)
	ObserveScan(errors.New("boom"))
	ObserveScan(nil)

	if got := testutil.ToFloat64(StudyScans.WithLabelValues("ok")) - okBefore; got != 2 {
		t.Errorf("ok scans = %v, want 2", got)
	}
	if got := testutil.ToFloat64(StudyScans.WithLabelValues("error")) - errBefore; got != 1 {
		t.Errorf("error scans = %v, want 1", got)
	}
}

func TestObserveImageLoad(t *testing.T) {
	before := testutil.ToFloat64(ImagesLoaded.WithLabelValues("legacy"))
	ObserveImageLoad("legacy", time.Now())
	if got := testutil.ToFloat64(ImagesLoaded.WithLabelValues("legacy")) - before; got != 1 {
		t.Errorf("legacy loads = %v, want 1", got)
	}
}

func TestObserveCache(t *testing.T) {
	before := testutil.ToFloat64(CacheRequests.WithLabelValues("study", "hit"))
	ObserveCache("study", true)
	ObserveCache("study", false)
	if got := testutil.ToFloat64(CacheRequests.WithLabelValues("study", "hit")) - before; got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
}
