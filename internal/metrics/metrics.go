package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytmanifest_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ytmanifest_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Extraction Metrics
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytmanifest_extractions_total",
			Help: "Total number of extraction engine runs",
		},
		[]string{"status"},
	)

	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ytmanifest_extraction_duration_seconds",
			Help:    "Extraction engine run time in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to 32s
		},
	)

	// Manifest Metrics
	VideosResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytmanifest_videos_resolved_total",
			Help: "Total number of resolved videos by manifest type",
		},
		[]string{"manifest_type", "passthrough"},
	)

	StreamsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytmanifest_streams_emitted_total",
			Help: "Total number of stream descriptors emitted",
		},
		[]string{"mode", "content_type"},
	)

	StreamsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytmanifest_streams_dropped_total",
			Help: "Total number of format records dropped",
		},
		[]string{"mode", "reason"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ytmanifest_render_duration_seconds",
			Help:    "Manifest rendering and storing time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"manifest_type"},
	)

	// Settings Metrics
	SettingsReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytmanifest_settings_reloads_total",
			Help: "Total number of settings reloads",
		},
		[]string{"status"},
	)

	// Cache Metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytmanifest_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytmanifest_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Queue Metrics
	EventQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ytmanifest_event_queue_depth",
			Help: "Number of video events waiting in the queue",
		},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytmanifest_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordExtraction records one extraction engine run
func RecordExtraction(status string, duration float64) {
	ExtractionsTotal.WithLabelValues(status).Inc()
	ExtractionDuration.Observe(duration)
}

// RecordVideoResolved records a resolved video
func RecordVideoResolved(manifestType string, passthrough bool) {
	p := "false"
	if passthrough {
		p = "true"
	}
	VideosResolvedTotal.WithLabelValues(manifestType, p).Inc()
}

// RecordAssembly records the per content type and per drop reason counts
// of one assembly pass
func RecordAssembly[C, R ~string](mode string, emitted map[C]int, dropped map[R]int) {
	for ct, n := range emitted {
		StreamsEmittedTotal.WithLabelValues(mode, string(ct)).Add(float64(n))
	}
	for reason, n := range dropped {
		StreamsDroppedTotal.WithLabelValues(mode, string(reason)).Add(float64(n))
	}
}

// RecordRender records manifest rendering time
func RecordRender(manifestType string, duration float64) {
	RenderDuration.WithLabelValues(manifestType).Observe(duration)
}

// RecordSettingsReload records a settings reload outcome
func RecordSettingsReload(status string) {
	SettingsReloadsTotal.WithLabelValues(status).Inc()
}

// RecordCacheAccess records cache hit or miss
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues(cacheType).Inc()
	} else {
		CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
