package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/chrislyons-dev/bond-math/internal/config"
	"github.com/chrislyons-dev/bond-math/internal/extoken"
	mw "github.com/chrislyons-dev/bond-math/internal/middleware"
	"github.com/chrislyons-dev/bond-math/internal/obsmetrics"
	"github.com/chrislyons-dev/bond-math/internal/problemdetails"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// BuildTable derives the dispatch table from gateway configuration. Order
// matters only in that every prefix here must be disjoint; Table.Match
// resolves the longest match regardless of slice order.
func BuildTable(cfg config.Gateway) Table {
	const defaultTimeout = 30 * time.Second
	const defaultMaxBody = 1 << 20 // 1 MiB request bodies into the analytics backends

	return Table{
		{
			Name:         "daycount",
			PathPrefix:   "/api/daycount",
			Audience:     "svc-daycount",
			TargetURL:    cfg.BackendDaycountURL,
			MaxBodyBytes: 100 * 1024, // day-count bodies are small fixed-shape pair lists
			Timeout:      defaultTimeout,
		},
		{
			Name:         "valuation",
			PathPrefix:   "/api/valuation",
			Audience:     "svc-valuation",
			TargetURL:    cfg.BackendValuationURL,
			MaxBodyBytes: defaultMaxBody,
			Timeout:      defaultTimeout,
		},
		{
			Name:         "metrics",
			PathPrefix:   "/api/metrics",
			Audience:     "svc-metrics",
			TargetURL:    cfg.BackendMetricsURL,
			MaxBodyBytes: defaultMaxBody,
			Timeout:      defaultTimeout,
		},
		{
			Name:         "pricing",
			PathPrefix:   "/api/pricing",
			Audience:     "svc-pricing",
			TargetURL:    cfg.BackendPricingURL,
			MaxBodyBytes: defaultMaxBody,
			Timeout:      defaultTimeout,
		},
	}
}

// New assembles the gateway's chi router: the fixed middleware chain, an
// unauthenticated /health, and path-dispatched, token-minting forwarding
// for every configured backend.
func New(cfg config.Gateway, verifier *extoken.Verifier, table Table, metrics *obsmetrics.Registry, version string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Timing)
	r.Use(mw.Logging("gateway"))
	r.Use(metrics.Middleware)
	r.Use(mw.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(healthResponse{Status: "healthy", Service: "gateway", Version: version})
	})

	rateLimit := mw.RateLimit(time.Duration(cfg.RateLimitWindowMS)*time.Millisecond, cfg.RateLimitMax)
	ttl := time.Duration(cfg.InternalJWTTTL) * time.Second

	dispatch := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, ok := table.Match(r.URL.Path)
		if !ok {
			problemdetails.WriteKind(w, problemdetails.KindUnknownRoute, "no backend registered for this path")
			return
		}
		forwardHandler(route, cfg.InternalJWTSecret, ttl).ServeHTTP(w, r)
	})

	// A single wildcard mount under auth+rate-limit: dispatch itself returns
	// UnknownRoute for any /api/* path that matches no configured service,
	// so an unrecognized service name still gets the full middleware chain
	// (a valid bearer is authenticated before the 404 is produced) without
	// ever reaching a backend or minting a token.
	r.Group(func(r chi.Router) {
		r.Use(ExternalAuth(verifier))
		r.Use(rateLimit)
		r.Handle("/api/*", dispatch)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		problemdetails.WriteKind(w, problemdetails.KindUnknownRoute, "no route registered for this path")
	})

	return r
}
