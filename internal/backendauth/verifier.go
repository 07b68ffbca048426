package backendauth

import (
	"net/http"
	"strings"

	"github.com/chrislyons-dev/bond-math/internal/inttoken"
	"github.com/chrislyons-dev/bond-math/internal/problemdetails"
	"github.com/rs/zerolog/log"
)

// Verifier independently authenticates the internal delegation token on
// every inbound request: a backend never trusts that the gateway already
// checked this, since the network between them is not assumed trusted.
type Verifier struct {
	Secret   string
	Audience string
	Issuer   string
}

// Middleware extracts the bearer token, verifies it against this backend's
// own audience and secret, and attaches the delegated actor to context.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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

		claims, err := inttoken.Verify(token, v.Secret, v.Audience, v.Issuer)
		if err != nil {
			kind := problemdetails.KindInvalidTokenFormat
			if ve, ok := err.(*inttoken.VerifyError); ok {
				kind = ve.Kind
			}
			log.Ctx(r.Context()).Warn().Err(err).Str("kind", string(kind)).Msg("internal token rejected")
			problemdetails.WriteKind(w, kind, "token verification failed")
			return
		}

		ctx := withActor(r.Context(), claims.Actor, claims.RequestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
