package router

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/chrislyons-dev/bond-math/internal/inttoken"
	"github.com/chrislyons-dev/bond-math/internal/middleware"
	"github.com/chrislyons-dev/bond-math/internal/problemdetails"
	"github.com/rs/zerolog/log"
)

// internalMinter mints the short-lived delegation token forwarded to a
// backend, isolated behind an interface so routing can be unit tested
// without a real secret.
type internalMinter interface {
	Mint(in inttoken.MintInput, audience, secret string, ttl time.Duration) (string, error)
}

type mintFunc func(in inttoken.MintInput, audience, secret string, ttl time.Duration) (string, error)

func (f mintFunc) Mint(in inttoken.MintInput, audience, secret string, ttl time.Duration) (string, error) {
	return f(in, audience, secret, ttl)
}

var defaultMinter internalMinter = mintFunc(inttoken.Mint)

// forwardHandler mints an internal token scoped to route.Audience from the
// request's verified external claims, then reverse-proxies the request to
// route.TargetURL carrying that token instead of the external one.
func forwardHandler(route ServiceRoute, secret string, ttl time.Duration) http.Handler {
	target, err := url.Parse(route.TargetURL)
	if err != nil {
		log.Fatal().Err(err).Str("route", route.Name).Msg("invalid backend target url")
	}

	proxy := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.Host = target.Host
			// Path is forwarded unchanged: the route prefix is preserved so
			// each backend sees the same path the client sent, and mounts
			// its own routes under that prefix.
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := ClaimsFromContext(ctx)
		if !ok {
			problemdetails.WriteKind(w, problemdetails.KindMissingAuthentication, "no verified principal for this request")
			return
		}

		if route.MaxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, route.MaxBodyBytes)
		}

		requestID := middleware.RequestIDFromContext(ctx)

		token, err := defaultMinter.Mint(inttoken.MintInput{
			Issuer:         inttoken.GatewayIssuer,
			Subject:        claims.Subject,
			Role:           claims.Role,
			Permissions:    claims.Permissions,
			Organization:   claims.OrgID,
			InternalUserID: claims.UserID,
		}, route.Audience, secret, ttl)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("route", route.Name).Msg("failed to mint internal token")
			problemdetails.WriteKind(w, problemdetails.KindInternalError, "failed to authorize request to backend")
			return
		}

		r.Header.Set("Authorization", "Bearer "+token)
		r.Header.Set("X-Request-ID", requestID)

		proxyCtx := ctx
		if route.Timeout > 0 {
			var cancel context.CancelFunc
			proxyCtx, cancel = context.WithTimeout(ctx, route.Timeout)
			defer cancel()
		}

		proxy.ServeHTTP(w, r.WithContext(proxyCtx))
	})
}
