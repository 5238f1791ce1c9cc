package telemetry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// FlagEvaluations counts flag lookups per project/flag with an ok/error
	// outcome label. Errors include cold caches and unknown projects.
	FlagEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flag_evaluations_total",
			Help: "Total feature flag evaluations",
		},
		[]string{"project", "flag", "outcome"},
	)

	// WarmupFailures counts flag cache warmups that exhausted their retry
	// budget at startup. The service still starts; evaluations default.
	WarmupFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flag_cache_warmup_failures_total",
			Help: "Flag cache warmups that exhausted their retry budget",
		},
		[]string{"project"},
	)
)

func Init() {
	prometheus.MustRegister(httpReqs, httpDur, FlagEvaluations, WarmupFailures)
}

// MetricsHandler serves the prometheus registry, mounted on the metrics listener.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// get route pattern if available
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
