package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Auth metrics
	AuthRejectionsTotal *prometheus.CounterVec
	SigninsTotal        *prometheus.CounterVec

	// File store metrics
	FilesStoredTotal *prometheus.CounterVec
	FileBytesStored  prometheus.Counter

	// Membership cache metrics
	MembershipCacheTotal *prometheus.CounterVec

	// Database metrics
	DBConnectionsOpen  prometheus.GaugeFunc
	DBConnectionsInUse prometheus.GaugeFunc
}

// NewMetrics creates and registers all Prometheus metrics.
// db may be nil, in which case the pool gauges report zero.
func NewMetrics(registry *prometheus.Registry, db *sql.DB) *Metrics {
	stats := func() sql.DBStats {
		if db == nil {
			return sql.DBStats{}
		}
		return db.Stats()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatterbox_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatterbox_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatterbox_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),
		AuthRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatterbox_auth_rejections_total",
				Help: "Requests rejected by the authentication or membership gates",
			},
			[]string{"reason"},
		),
		SigninsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatterbox_signins_total",
				Help: "Signin attempts by result",
			},
			[]string{"result"},
		),
		FilesStoredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatterbox_files_stored_total",
				Help: "Uploaded files by outcome",
			},
			[]string{"result"},
		),
		FileBytesStored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "chatterbox_file_bytes_stored_total",
				Help: "Bytes written to the file store",
			},
		),
		MembershipCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatterbox_membership_cache_total",
				Help: "Membership cache lookups by result",
			},
			[]string{"result"},
		),
		DBConnectionsOpen: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "chatterbox_db_connections_open",
				Help: "Open database connections",
			},
			func() float64 { return float64(stats().OpenConnections) },
		),
		DBConnectionsInUse: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "chatterbox_db_connections_in_use",
				Help: "Database connections currently in use",
			},
			func() float64 { return float64(stats().InUse) },
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.AuthRejectionsTotal,
		m.SigninsTotal,
		m.FilesStoredTotal,
		m.FileBytesStored,
		m.MembershipCacheTotal,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
	)

	return m
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// routeLabel returns the mux path template so ids do not explode label cardinality.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			path := routeLabel(r)
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, path).Observe(float64(rw.bytesWritten))
		})
	}
}

// MetricsHandler serves the registry in the Prometheus text format
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
