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
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation", "collection"},
	)

	// Aggregation build metrics (C4/C5).
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregation_builds_total",
			Help: "Total number of aggregation builds by resource type and terminal state",
		},
		[]string{"resource_type", "state"},
	)

	BuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aggregation_build_duration_seconds",
			Help:    "Duration of a full build (existence probe through reconciliation)",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"resource_type"},
	)

	ReconcileOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregation_reconcile_operations_total",
			Help: "Total number of peer add/remove operations emitted by the reconciler",
		},
		[]string{"neighbour_type", "op"},
	)

	ReconcilePartialTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregation_reconcile_partial_total",
			Help: "Total number of reconciliations that completed with a partial bulk-write failure",
		},
	)

	// Traversal query metrics (C6/C7).
	TraversalQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traversal_queries_total",
			Help: "Total number of list-traversal queries by root type",
		},
		[]string{"root_type"},
	)

	TraversalOverflowTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "traversal_overflow_total",
			Help: "Total number of ids reported as overflow, by target type",
		},
		[]string{"target_type"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count/duration/in-flight for every route except /metrics itself.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		start := time.Now()
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(wrapped.statusCode)
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

func normalizePath(path string) string {
	if len(path) > 50 {
		return path[:50]
	}
	return path
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordDBOperation(operation, collection string, duration time.Duration) {
	DatabaseOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
}

func RecordBuild(resourceType, state string, duration time.Duration) {
	BuildsTotal.WithLabelValues(resourceType, state).Inc()
	BuildDuration.WithLabelValues(resourceType).Observe(duration.Seconds())
}

func RecordReconcileOp(neighbourType, op string) {
	ReconcileOperationsTotal.WithLabelValues(neighbourType, op).Inc()
}

func RecordReconcilePartial() {
	ReconcilePartialTotal.Inc()
}

func RecordTraversalQuery(rootType string) {
	TraversalQueriesTotal.WithLabelValues(rootType).Inc()
}

func RecordTraversalOverflow(targetType string, count int) {
	if count <= 0 {
		return
	}
	TraversalOverflowTotal.WithLabelValues(targetType).Add(float64(count))
}
