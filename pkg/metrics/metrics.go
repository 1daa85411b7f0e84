// Package metrics provides Prometheus instrumentation.
//
// It pre-defines the HTTP metrics plus the domain metrics worth watching:
// lifecycle transitions, real-time events published, and generation job
// outcomes. Scrape /metrics from Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestDuration tracks how long each HTTP request takes, broken down
	// by method, route path, and status code.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adforge",
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
			Namespace: "adforge",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestInFlight tracks how many requests are currently being served.
	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "adforge",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	// Transitions counts product lifecycle transitions by edge.
	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adforge",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Total product status transitions.",
		},
		[]string{"from", "to"},
	)

	// EventsPublished counts real-time events published per event type.
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adforge",
			Subsystem: "realtime",
			Name:      "events_published_total",
			Help:      "Total real-time events published to user rooms.",
		},
		[]string{"type"},
	)

	// GenerationJobs counts image-generation jobs by outcome.
	GenerationJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adforge",
			Subsystem: "generation",
			Name:      "jobs_total",
			Help:      "Total image-generation jobs processed.",
		},
		[]string{"outcome"}, // "enriched" | "failed"
	)

	// ConnectedClients tracks live WebSocket connections.
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "adforge",
		Subsystem: "realtime",
		Name:      "connected_clients",
		Help:      "Number of connected WebSocket clients.",
	})
)

// DefaultRegistry is the Prometheus registry used by the application.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		Transitions,
		EventsPublished,
		GenerationJobs,
		ConnectedClients,
	)
}

// Handler returns the /metrics endpoint handler.
func Handler() http.HandlerFunc {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{}).ServeHTTP
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

// Middleware instruments every request with duration, count and in-flight
// metrics. Mount it outermost for accurate total latency.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			status := strconv.Itoa(rec.status)
			RequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		})
	}
}
