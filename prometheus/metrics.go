package prometheus

import (
	"time"

	"tourdesk/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Entity operation metrics
	TourOperationsCounter     prometheus.CounterVec
	SupplierOperationsCounter prometheus.CounterVec

	// Upload metrics
	UploadsCounter          prometheus.CounterVec
	UploadRejectionsCounter prometheus.CounterVec

	// Autocomplete metrics
	SuggestionFetchesCounter prometheus.Counter
	SuggestionErrorsCounter  prometheus.Counter

	// Entity count gauges, refreshed on a schedule
	ToursGauge     prometheus.Gauge
	SuppliersGauge prometheus.Gauge
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	TourOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_tour_operations_total",
			Help: "Total number of tour operations",
		},
		[]string{"operation"},
	)

	SupplierOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_supplier_operations_total",
			Help: "Total number of supplier operations",
		},
		[]string{"operation"},
	)

	UploadsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_uploads_total",
			Help: "Total number of accepted file uploads",
		},
		[]string{"owner_kind", "category"},
	)

	UploadRejectionsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_upload_rejections_total",
			Help: "Total number of rejected file uploads by reason",
		},
		[]string{"reason"},
	)

	SuggestionFetchesCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_suggestion_fetches_total",
			Help: "Total number of autocomplete suggestion fetches",
		},
	)

	SuggestionErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_suggestion_errors_total",
			Help: "Total number of swallowed autocomplete fetch errors",
		},
	)

	ToursGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_tours",
			Help: "Number of tours in the database",
		},
	)

	SuppliersGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_suppliers",
			Help: "Number of suppliers in the database",
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordTourOperation increments the counter for tour operations
func RecordTourOperation(operation string) {
	TourOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordSupplierOperation increments the counter for supplier operations
func RecordSupplierOperation(operation string) {
	SupplierOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordUpload increments the counter for accepted uploads
func RecordUpload(ownerKind, category string) {
	UploadsCounter.WithLabelValues(ownerKind, category).Inc()
}

// RecordUploadRejection increments the counter for rejected uploads
func RecordUploadRejection(reason string) {
	UploadRejectionsCounter.WithLabelValues(reason).Inc()
}

// UpdateEntityCounts refreshes the tour and supplier gauges
func UpdateEntityCounts(tours, suppliers int64) {
	ToursGauge.Set(float64(tours))
	SuppliersGauge.Set(float64(suppliers))
}
