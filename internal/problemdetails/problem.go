// Package problemdetails implements the RFC 7807 error envelope used
// uniformly across the gateway and every backend.
package problemdetails

import (
	"encoding/json"
	"net/http"
)

// Kind is the fixed taxonomy of failures the trust boundary can produce;
// there is no larger set.
type Kind string

const (
	KindMissingAuthentication Kind = "missing_authentication"
	KindInvalidTokenFormat    Kind = "invalid_token_format"
	KindInvalidSignature      Kind = "invalid_signature"
	KindExpired               Kind = "expired"
	KindInvalidIssuer         Kind = "invalid_issuer"
	KindInvalidAudience       Kind = "invalid_audience"
	KindMissingActor          Kind = "missing_actor"
	KindInsufficientScope     Kind = "insufficient_scope"
	KindUnknownRoute          Kind = "unknown_route"
	KindPayloadTooLarge       Kind = "payload_too_large"
	KindRateLimited           Kind = "rate_limited"
	KindValidationError       Kind = "validation_error"
	KindTransientAuthFailure  Kind = "transient_auth_failure"
	KindInternalError         Kind = "internal_error"
)

// statuses maps each Kind to its HTTP status and a stable title. The
// "type" URI is a documentation anchor, not resolved at runtime.
var statuses = map[Kind]struct {
	status int
	title  string
}{
	KindMissingAuthentication: {http.StatusUnauthorized, "Missing Authentication"},
	KindInvalidTokenFormat:    {http.StatusUnauthorized, "Invalid Token Format"},
	KindInvalidSignature:      {http.StatusUnauthorized, "Invalid Signature"},
	KindExpired:               {http.StatusUnauthorized, "Expired"},
	KindInvalidIssuer:         {http.StatusForbidden, "Invalid Issuer"},
	KindInvalidAudience:       {http.StatusForbidden, "Invalid Audience"},
	KindMissingActor:          {http.StatusUnauthorized, "Missing Actor"},
	KindInsufficientScope:     {http.StatusForbidden, "Insufficient Scope"},
	KindUnknownRoute:          {http.StatusNotFound, "Unknown Route"},
	KindPayloadTooLarge:       {http.StatusRequestEntityTooLarge, "Payload Too Large"},
	KindRateLimited:           {http.StatusTooManyRequests, "Rate Limited"},
	KindValidationError:       {http.StatusBadRequest, "Validation Error"},
	KindTransientAuthFailure:  {http.StatusServiceUnavailable, "Transient Auth Failure"},
	KindInternalError:         {http.StatusInternalServerError, "Internal Error"},
}

const typeBaseURI = "https://bond-math.internal/errors/"

// FieldError is one entry in a Problem's "errors" array.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Problem is the RFC 7807 envelope. Content-Type is always
// application/problem+json.
type Problem struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	Status int          `json:"status"`
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors,omitempty"`
}

// New builds a Problem for kind with the given human-readable detail.
// detail must never contain raw claims or stack traces.
func New(kind Kind, detail string) Problem {
	meta, ok := statuses[kind]
	if !ok {
		meta = statuses[KindInternalError]
		kind = KindInternalError
	}

	return Problem{
		Type:   typeBaseURI + string(kind),
		Title:  meta.title,
		Status: meta.status,
		Detail: detail,
	}
}

// WithErrors attaches field-level validation errors.
func (p Problem) WithErrors(errs []FieldError) Problem {
	p.Errors = errs
	return p
}

// Status returns the kind's HTTP status, for middleware that needs the
// status before it serializes a body.
func Status(kind Kind) int {
	meta, ok := statuses[kind]
	if !ok {
		return http.StatusInternalServerError
	}
	return meta.status
}

// Write serializes the problem to w with the correct content type and
// status code. It does not set any other header; callers own the rest of
// the response headers (request-id, rate-limit, and timing headers must
// still be attached on error paths).
func Write(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// WriteKind is a convenience wrapper around New + Write.
func WriteKind(w http.ResponseWriter, kind Kind, detail string) {
	Write(w, New(kind, detail))
}
