// Package metrics exposes Prometheus counters for decoding, storage and the
// HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Recorder receives decode events. Decoders accept a nil Recorder.
type Recorder interface {
	RecordDecoded(format, recordType string)
	RecordWarning(format, reason string)
	RecordSamples(format, table string, n int)
}

// Nop discards every event
type Nop struct{}

func (Nop) RecordDecoded(string, string)      {}
func (Nop) RecordWarning(string, string)      {}
func (Nop) RecordSamples(string, string, int) {}

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	// Decode metrics
	recordsTotal  *prometheus.CounterVec
	warningsTotal *prometheus.CounterVec
	samplesTotal  *prometheus.CounterVec
	decodesTotal  *prometheus.CounterVec
	decodeSeconds *prometheus.HistogramVec

	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Result store metrics
	storeOperationsTotal *prometheus.CounterVec
	storeResults         prometheus.Gauge

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them with reg. A nil reg
// uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actfast_records_total",
				Help: "Total number of decoded records or pages",
			},
			[]string{"format", "record_type"},
		),

		warningsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actfast_decode_warnings_total",
				Help: "Total number of non-fatal decode anomalies",
			},
			[]string{"format", "reason"},
		),

		samplesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actfast_samples_total",
				Help: "Total number of emitted table rows",
			},
			[]string{"format", "table"},
		),

		decodesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actfast_decodes_total",
				Help: "Total number of decoded files",
			},
			[]string{"format", "status"},
		),

		decodeSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "actfast_decode_duration_seconds",
				Help:    "File decode duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actfast_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "actfast_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "actfast_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		storeOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actfast_store_operations_total",
				Help: "Total number of result store operations",
			},
			[]string{"operation", "status"},
		),

		storeResults: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "actfast_store_results",
				Help: "Number of results held in the store",
			},
		),

		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actfast_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),
	}
}

func statusLabel(success bool) string {
	if success {
		return statusSuccess
	}
	return statusError
}

// RecordDecoded counts one record or page of the given type
func (m *Metrics) RecordDecoded(format, recordType string) {
	m.recordsTotal.WithLabelValues(format, recordType).Inc()
}

// RecordWarning counts a non-fatal anomaly such as an invalid separator
func (m *Metrics) RecordWarning(format, reason string) {
	m.warningsTotal.WithLabelValues(format, reason).Inc()
}

// RecordSamples counts emitted rows
func (m *Metrics) RecordSamples(format, table string, n int) {
	m.samplesTotal.WithLabelValues(format, table).Add(float64(n))
}

// RecordDecode records one whole-file decode
func (m *Metrics) RecordDecode(format string, success bool, duration time.Duration) {
	m.decodesTotal.WithLabelValues(format, statusLabel(success)).Inc()
	m.decodeSeconds.WithLabelValues(format).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordStoreOperation records a result store operation
func (m *Metrics) RecordStoreOperation(operation string, success bool) {
	m.storeOperationsTotal.WithLabelValues(operation, statusLabel(success)).Inc()
}

// SetStoredResults updates the stored result gauge
func (m *Metrics) SetStoredResults(n int) {
	m.storeResults.Set(float64(n))
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	m.authRequestsTotal.WithLabelValues(statusLabel(success)).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// InstrumentAuthMiddleware instruments the authentication middleware
func (m *Metrics) InstrumentAuthMiddleware(next func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasAPIKey := r.Header.Get("X-API-Key") != ""

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next(h).ServeHTTP(rw, r)

			if hasAPIKey {
				m.RecordAuthRequest(rw.statusCode != http.StatusUnauthorized)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

var _ Recorder = (*Metrics)(nil)
var _ Recorder = Nop{}
