package router

import (
	"context"

	"github.com/chrislyons-dev/bond-math/internal/extoken"
)

type ctxKey string

const claimsKey ctxKey = "externalClaims"

func withClaims(ctx context.Context, claims extoken.ExternalClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the verified external claims attached by the
// gateway's token verifier middleware.
func ClaimsFromContext(ctx context.Context) (extoken.ExternalClaims, bool) {
	v, ok := ctx.Value(claimsKey).(extoken.ExternalClaims)
	return v, ok
}
