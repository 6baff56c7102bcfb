// Package metrics holds the Prometheus collectors of the imaging service
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "imaging"

var (
	ImagesLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_loaded_total",
		Help:      "Images whose header was parsed, by source kind.",
	}, []string{"kind"})

	ImageLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_load_duration_seconds",
		Help:      "Time spent reading and parsing one image.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"kind"})

	StudyScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "study_scans_total",
		Help:      "Study directory scans, by outcome.",
	}, []string{"outcome"})

	SeriesIndexed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "series_indexed",
		Help:      "Series currently held by the catalog.",
	})

	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Cache lookups, by item and result.",
	}, []string{"item", "result"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_response_time_seconds",
		Help:      "Duration of HTTP requests.",
	}, []string{"route", "method", "status"})
)

// ObserveImageLoad records one parsed image
func ObserveImageLoad(kind string, start time.Time) {
	ImagesLoaded.WithLabelValues(kind).Inc()
	ImageLoadDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// ObserveScan records the outcome of a study scan
func ObserveScan(err error) {
	if err != nil {
		StudyScans.WithLabelValues("error").Inc()
		return
	}
	StudyScans.WithLabelValues("ok").Inc()
}

// ObserveCache records a cache hit or miss for item
func ObserveCache(item string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequests.WithLabelValues(item, result).Inc()
}
