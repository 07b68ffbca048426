package backendauth

import (
	"net/http"
	"strings"

	"github.com/chrislyons-dev/bond-math/internal/problemdetails"
)

// Reserved scope vocabulary. Every backend currently enforces only its
// write scope; the read counterparts are declared now so a future
// read-only endpoint can adopt RequireAny without a follow-up migration.
const (
	DaycountWrite = "daycount:write"
	DaycountRead  = "daycount:read"

	ValuationWrite = "valuation:write"
	ValuationRead  = "valuation:read"

	MetricsWrite = "metrics:write"
	MetricsRead  = "metrics:read"

	PricingWrite = "pricing:write"
	PricingRead  = "pricing:read"
)

// RequireScope returns middleware that rejects the request unless the
// delegated actor carries every scope listed. The scope source is
// exclusively actor.permissions from the verified internal token; nothing
// else is consulted.
func RequireScope(scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				problemdetails.WriteKind(w, problemdetails.KindMissingActor, "no delegated actor on request")
				return
			}

			for _, want := range scopes {
				if !hasScope(actor.Permissions, want) {
					problemdetails.WriteKind(w, problemdetails.KindInsufficientScope, "missing required scope: "+want)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny returns middleware that rejects the request unless the
// delegated actor carries at least one of the scopes listed.
func RequireAny(scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				problemdetails.WriteKind(w, problemdetails.KindMissingActor, "no delegated actor on request")
				return
			}

			for _, want := range scopes {
				if hasScope(actor.Permissions, want) {
					next.ServeHTTP(w, r)
					return
				}
			}

			problemdetails.WriteKind(w, problemdetails.KindInsufficientScope, "missing required scope: one of "+strings.Join(scopes, ", "))
		})
	}
}

func hasScope(granted []string, want string) bool {
	for _, g := range granted {
		if g == want {
			return true
		}
	}
	return false
}
