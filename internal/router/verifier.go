package router

import (
	"net/http"
	"strings"

	"github.com/chrislyons-dev/bond-math/internal/extoken"
	"github.com/chrislyons-dev/bond-math/internal/middleware"
	"github.com/chrislyons-dev/bond-math/internal/problemdetails"
	"github.com/rs/zerolog/log"
)

// ExternalAuth authenticates every dispatched request against the
// external OIDC issuer, attaches the verified claims to the request
// context, and sets the rate-limit principal to the token subject.
func ExternalAuth(verifier *extoken.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			if header == "" {
				problemdetails.WriteKind(w, problemdetails.KindMissingAuthentication, "missing Authorization header")
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				problemdetails.WriteKind(w, problemdetails.KindInvalidTokenFormat, "expected Bearer token")
				return
			}

			claims, err := verifier.Verify(ctx, token)
			if err != nil {
				kind := problemdetails.KindInvalidTokenFormat
				if ve, ok := err.(*extoken.VerifyError); ok {
					kind = ve.Kind
				}
				log.Ctx(ctx).Warn().Err(err).Str("kind", string(kind)).Msg("external token rejected")
				problemdetails.WriteKind(w, kind, "token verification failed")
				return
			}

			ctx = withClaims(ctx, claims)
			ctx = middleware.SetPrincipal(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
