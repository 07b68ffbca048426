// Package extoken verifies upstream OIDC access tokens: RS256 signature
// checks backed by JWKS key discovery and caching.
package extoken

import "github.com/chrislyons-dev/bond-math/internal/problemdetails"

// ExternalClaims is the decoded, verified external token. It is a
// per-request value; never logged in raw form, never cached.
type ExternalClaims struct {
	Issuer      string
	Subject     string
	Audience    []string
	ExpiresAt   int64
	IssuedAt    int64
	Permissions []string

	Role           string
	UserID         string
	OrgID          string
}

// HasAudience reports whether aud is one of the token's audiences.
func (c ExternalClaims) HasAudience(aud string) bool {
	for _, a := range c.Audience {
		if a == aud {
			return true
		}
	}
	return false
}

// VerifyError carries the taxonomy Kind a failed verification maps to, so
// callers can render the exact RFC 7807 status without re-deriving it from
// a generic error string.
type VerifyError struct {
	Kind problemdetails.Kind
	Msg  string
}

func (e *VerifyError) Error() string { return e.Msg }

func errKind(kind problemdetails.Kind, msg string) *VerifyError {
	return &VerifyError{Kind: kind, Msg: msg}
}
