// Package backendauth implements the Backend Verifier and Scope Guard:
// independent verification of the gateway-minted internal token and
// enforcement of the actor's permissions against each route's required
// scopes. Every backend runs this verifier itself rather than trusting the
// gateway's decision.
package backendauth

import (
	"context"

	"github.com/chrislyons-dev/bond-math/internal/inttoken"
)

type ctxKey string

const actorKey ctxKey = "actor"
const requestIDKey ctxKey = "requestId"

func withActor(ctx context.Context, actor inttoken.Actor, requestID string) context.Context {
	ctx = context.WithValue(ctx, actorKey, actor)
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ActorFromContext returns the delegated principal a backend is acting on
// behalf of, as verified independently by this backend's own Verifier.
func ActorFromContext(ctx context.Context) (inttoken.Actor, bool) {
	v, ok := ctx.Value(actorKey).(inttoken.Actor)
	return v, ok
}

// RequestIDFromContext returns the request-id carried in the internal
// token, so backend logs can be correlated with the gateway's own log line
// for the same request.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}
