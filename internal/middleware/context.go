// Package middleware implements the gateway's fixed middleware chain:
// request-id, security headers, timing, structured logging, CORS, and
// per-principal rate limiting, applied in that exact order to every
// request.
package middleware

import "context"

type contextKey string

const (
	requestIDKey contextKey = "requestId"
	principalKey contextKey = "principal"
)

// RequestIDFromContext returns the request-id assigned by the RequestID middleware.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// Principal returns the rate-limit principal key for the current request:
// the authenticated subject once the External Token Verifier has run.
func Principal(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(principalKey).(string)
	return v, ok
}

// SetPrincipal stashes the authenticated subject once verification
// succeeds, so the rate limiter can key by subject.
func SetPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}
