package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vitrine",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vitrine",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Query cache lookups by result (hit, stale, shared, miss).",
		},
		[]string{"result"},
	)

	gatewayResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "gateway",
			Name:      "results_total",
			Help:      "Gateway lookups by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	pipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "storefront",
			Name:      "loads_total",
			Help:      "Storefront loads by terminal state.",
		},
		[]string{"state"},
	)

	pipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vitrine",
			Subsystem: "storefront",
			Name:      "load_duration_seconds",
			Help:      "Time from tenant resolution to a terminal state.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	logoEncodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitrine",
			Subsystem: "meta",
			Name:      "logo_encodes_total",
			Help:      "Logo re-encodings by outcome (embedded, fallback, cached).",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		cacheLookups,
		gatewayResults,
		pipelineRuns,
		pipelineDuration,
		logoEncodes,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordCacheLookup counts a query cache lookup.
func RecordCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

// RecordGatewayResult counts a gateway lookup outcome.
func RecordGatewayResult(operation, outcome string) {
	gatewayResults.WithLabelValues(operation, outcome).Inc()
}

// RecordStorefrontLoad records a storefront load reaching a terminal state.
func RecordStorefrontLoad(state string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Microsecond
	}
	pipelineRuns.WithLabelValues(state).Inc()
	pipelineDuration.Observe(duration.Seconds())
}

// RecordLogoEncode counts a logo re-encoding outcome.
func RecordLogoEncode(outcome string) {
	logoEncodes.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// known routes keep their path; everything else is the storefront catch-all.
var knownPaths = map[string]bool{
	"/healthz":                  true,
	"/theme.css":                true,
	"/manifest.webmanifest":     true,
	"/preferences/color-scheme": true,
}

func canonicalPath(raw string) string {
	if knownPaths[raw] {
		return raw
	}
	return "/"
}
