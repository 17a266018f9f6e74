// Package metrics provides Prometheus metrics for the StudyShelf server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyshelf_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyshelf_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Structure cache metrics
	structureTreeSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studyshelf_structure_tree_size",
			Help: "Number of folders/files in the cached drive tree",
		},
	)

	structureRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studyshelf_structure_rebuild_duration_seconds",
			Help:    "Time to rebuild the drive tree from a full listing",
			Buckets: prometheus.DefBuckets,
		},
	)

	structureCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyshelf_structure_cache_requests_total",
			Help: "Structure cache lookups by result",
		},
		[]string{"result"},
	)

	// Content cache metrics
	contentCacheBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studyshelf_content_cache_bytes",
			Help: "Current byte size of the exported document cache",
		},
	)

	contentCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studyshelf_content_cache_entries",
			Help: "Number of documents in the exported document cache",
		},
	)

	contentCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyshelf_content_cache_requests_total",
			Help: "Content cache lookups by result",
		},
		[]string{"result"},
	)

	contentCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studyshelf_content_cache_evictions_total",
			Help: "Total documents evicted from the content cache",
		},
	)

	// Drive API metrics
	driveCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyshelf_drive_calls_total",
			Help: "Total Google Drive API calls",
		},
		[]string{"operation", "status"},
	)

	driveCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyshelf_drive_call_duration_seconds",
			Help:    "Google Drive API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyshelf_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	dbConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studyshelf_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	// Food query cache metrics
	foodCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyshelf_food_cache_requests_total",
			Help: "Food query cache lookups by result",
		},
		[]string{"result"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetStructureTreeSize sets the current cached tree size.
func SetStructureTreeSize(size int64) {
	structureTreeSize.Set(float64(size))
}

// RecordStructureRebuild records a full tree rebuild duration.
func RecordStructureRebuild(duration time.Duration) {
	structureRebuildDuration.Observe(duration.Seconds())
}

// RecordStructureCacheHit records a structure cache lookup served from memory.
func RecordStructureCacheHit() {
	structureCacheRequests.WithLabelValues("hit").Inc()
}

// RecordStructureCacheMiss records a structure cache lookup that rebuilt.
func RecordStructureCacheMiss() {
	structureCacheRequests.WithLabelValues("miss").Inc()
}

// SetContentCacheSize sets the content cache gauges.
func SetContentCacheSize(bytes int64, entries int) {
	contentCacheBytes.Set(float64(bytes))
	contentCacheEntries.Set(float64(entries))
}

// RecordContentCacheHit records a document served from cache.
func RecordContentCacheHit() {
	contentCacheRequests.WithLabelValues("hit").Inc()
}

// RecordContentCacheMiss records a document that had to be exported.
func RecordContentCacheMiss() {
	contentCacheRequests.WithLabelValues("miss").Inc()
}

// RecordContentCacheEviction records an evicted document.
func RecordContentCacheEviction() {
	contentCacheEvictions.Inc()
}

// RecordDriveCall records a Google Drive API call.
func RecordDriveCall(operation string, duration time.Duration, success bool) {
	driveCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
	status := "success"
	if !success {
		status = "error"
	}
	driveCallsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDBQuery records a database query duration.
func RecordDBQuery(query string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
}

// SetDBConnectionsOpen sets the number of open database connections.
func SetDBConnectionsOpen(count int) {
	dbConnectionsOpen.Set(float64(count))
}

// RecordFoodCacheHit records a food query served from cache.
func RecordFoodCacheHit() {
	foodCacheRequests.WithLabelValues("hit").Inc()
}

// RecordFoodCacheMiss records a food query that hit the database.
func RecordFoodCacheMiss() {
	foodCacheRequests.WithLabelValues("miss").Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		RecordHTTPRequest(r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
