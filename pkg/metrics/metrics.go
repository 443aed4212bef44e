package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ImportsTotal        *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec
	ExtractDegraded     prometheus.Counter

	initOnce sync.Once
)

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		ImportsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_imports_total",
				Help: "Total number of recipe import attempts.",
			},
			[]string{"outcome"}, // success, degraded, invalid_url, forbidden_host, upstream, network
		)

		FetchDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recipe_fetch_duration_seconds",
				Help:    "Duration of upstream page fetches.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"host"},
		)

		ExtractDegraded = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "recipe_extract_degraded_total",
				Help: "Number of extractions that fell back to the placeholder record.",
			},
		)
	})
}
