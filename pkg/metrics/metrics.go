// Package metrics provides Prometheus instrumentation for the bistro server.
//
// Wire it up once at server boot:
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration tracks how long each HTTP request takes,
	// broken down by method, route path, and status code.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bistro",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts all HTTP requests.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bistro",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestInFlight tracks how many requests are currently being served.
	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "bistro",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	// PaymentsInitiated counts payment sessions opened, by gateway.
	PaymentsInitiated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bistro",
			Subsystem: "payment",
			Name:      "initiated_total",
			Help:      "Total payment sessions initiated.",
		},
		[]string{"gateway"}, // "sslcommerz" | "stripe"
	)

	// PaymentsConfirmed counts transactions that reached success.
	PaymentsConfirmed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bistro",
		Subsystem: "payment",
		Name:      "confirmed_total",
		Help:      "Total transactions committed to success.",
	})

	// PaymentsRejected counts callbacks the gateway validator refused.
	PaymentsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bistro",
		Subsystem: "payment",
		Name:      "rejected_total",
		Help:      "Total payment callbacks rejected by gateway validation.",
	})

	// QueueJobsProcessed counts processed queue jobs by status.
	QueueJobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bistro",
			Subsystem: "queue",
			Name:      "jobs_processed_total",
			Help:      "Total queue jobs processed.",
		},
		[]string{"status"}, // "success" | "failed"
	)
)

// DefaultRegistry is the Prometheus registry used by the server.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		PaymentsInitiated,
		PaymentsConfirmed,
		PaymentsRejected,
		QueueJobsProcessed,
	)
}

// Handler returns the /metrics scrape endpoint.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{})
	return func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}
}

// statusRecorder captures the written status code for labelling.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware instruments every request with duration, count, and in-flight
// gauges.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			// Label by the matched route pattern, not the raw path:
			// /dishes/{id} is one series, not one per dish.
			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}

			status := strconv.Itoa(rec.status)
			RequestDuration.WithLabelValues(r.Method, path, status).
				Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}
