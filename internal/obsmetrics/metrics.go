// Package obsmetrics implements the Prometheus instrumentation carried by
// the gateway and every backend. Each process registers its own private
// registry rather than using the global default.
package obsmetrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chrislyons-dev/bond-math/internal/middleware"
)

// Registry bundles the metrics a single service registers and exposes.
type Registry struct {
	reg *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RateLimited     *prometheus.CounterVec
}

// New builds a private registry with the standard request-duration
// histogram and rate-limit-rejection counter, labeled by service so a
// shared Grafana board can distinguish the gateway from its backends.
func New(service string) *Registry {
	reg := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "bond_math_request_duration_seconds",
		Help: "HTTP request duration in seconds.",
		ConstLabels: prometheus.Labels{
			"service": service,
		},
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	rateLimited := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bond_math_rate_limited_total",
		Help: "Requests rejected by the fixed-window rate limiter.",
		ConstLabels: prometheus.Labels{
			"service": service,
		},
	}, []string{"principal"})

	reg.MustRegister(requestDuration, rateLimited)

	return &Registry{reg: reg, RequestDuration: requestDuration, RateLimited: rateLimited}
}

// Handler returns the /metrics HTTP handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Server builds the dedicated metrics listener. Metrics are served on
// their own address rather than multiplexed onto the public router, so a
// misconfigured CORS or rate-limit rule on the main listener never affects
// scrape traffic.
func (r *Registry) Server(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &http.Server{
		Addr:    addr,
		Handler: mux,
	}
}

// Middleware observes request duration for every request passing through
// it, labeled by method, raw request path, and status class (2xx, 3xx,
// 4xx, 5xx).
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		sw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			r.RequestDuration.WithLabelValues(req.Method, req.URL.Path, statusText(sw.status)).Observe(v)
		}))
		defer timer.ObserveDuration()

		next.ServeHTTP(sw, req)

		if sw.status == http.StatusTooManyRequests {
			principal, _ := middleware.Principal(req.Context())
			r.RateLimited.WithLabelValues(principal).Inc()
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func statusText(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
