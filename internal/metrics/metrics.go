package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Domain metrics
	UploadsTotal       prometheus.CounterVec
	UploadDuration     prometheus.HistogramVec
	FeedPagesTotal     prometheus.CounterVec
	SearchQueriesTotal prometheus.CounterVec
	LikeTogglesTotal   prometheus.CounterVec

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),
			UploadsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "uploads_total",
					Help: "Total number of image uploads",
				},
				[]string{"kind", "status"},
			),
			UploadDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "upload_duration_seconds",
					Help:    "Image upload latency in seconds",
					Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
				},
				[]string{"kind"},
			),
			FeedPagesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_pages_total",
					Help: "Total number of feed pages served",
				},
				[]string{"post_type"},
			),
			SearchQueriesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "search_queries_total",
					Help: "Total number of discover searches",
				},
				[]string{"sort"},
			),
			LikeTogglesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "like_toggles_total",
					Help: "Total number of like toggles",
				},
				[]string{"target_type", "action"},
			),
			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of application errors",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the singleton metrics instance, initializing if needed
func Get() *Metrics {
	return Initialize()
}
