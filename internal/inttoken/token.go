// Package inttoken mints and verifies short-TTL HS256 delegation tokens
// that carry the upstream principal as a nested actor claim.
package inttoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chrislyons-dev/bond-math/internal/problemdetails"
)

// MaxTTL is the hard ceiling on internal token lifetime.
const MaxTTL = 90 * time.Second

// minSecretLen is the minimum shared-secret length a valid token requires.
const minSecretLen = 32

// tokenVersion is the fixed version tag carried in the header.
const tokenVersion = "1"

// GatewayIssuer and GatewaySubject are the fixed identifiers on every
// internal token; the gateway is always both issuer and subject of the
// tokens it mints.
const (
	GatewayIssuer  = "bond-math-gateway"
	GatewaySubject = "bond-math-gateway"
)

// Actor carries the upstream principal identity into the backend via a
// nested claim. actor.permissions is the sole authorization source
// downstream; backends must not consult any other field for scope checks.
type Actor struct {
	Issuer         string   `json:"issuer"`
	Subject        string   `json:"subject"`
	Role           string   `json:"role,omitempty"`
	Permissions    []string `json:"permissions"`
	Organization   string   `json:"organization,omitempty"`
	InternalUserID string   `json:"internalUserId,omitempty"`
}

// InternalClaims is the minted, gateway-to-backend delegation token.
type InternalClaims struct {
	Issuer    string `json:"iss"`
	Subject   string `json:"sub"`
	Audience  string `json:"aud"`
	ExpiresAt int64  `json:"exp"`
	RequestID string `json:"requestId"`
	Actor     Actor  `json:"actor"`
}

type internalHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
	Ver string `json:"ver"`
}

// MintInput is the subset of ExternalClaims the mint step needs, kept
// decoupled from the extoken package so inttoken has no import-time
// dependency on it. The actor copy is verbatim, so nothing beyond these
// fields is ever read.
type MintInput struct {
	Issuer         string
	Subject        string
	Role           string
	Permissions    []string
	Organization   string
	InternalUserID string
}

// Mint builds a compact HS256 token for audience, valid for ttl (capped at
// MaxTTL), carrying actor exactly as given. The gateway never adds,
// removes, or renames scopes on the way through.
func Mint(in MintInput, audience, secret string, ttl time.Duration) (string, error) {
	if len(secret) < minSecretLen {
		return "", fmt.Errorf("internal token secret too short")
	}
	if ttl <= 0 || ttl > MaxTTL {
		ttl = MaxTTL
	}

	now := time.Now()
	claims := InternalClaims{
		Issuer:    GatewayIssuer,
		Subject:   GatewaySubject,
		Audience:  audience,
		ExpiresAt: now.Add(ttl).Unix(),
		RequestID: uuid.New().String(),
		Actor: Actor{
			Issuer:         in.Issuer,
			Subject:        in.Subject,
			Role:           in.Role,
			Permissions:    append([]string(nil), in.Permissions...),
			Organization:   in.Organization,
			InternalUserID: in.InternalUserID,
		},
	}

	header := internalHeader{Alg: "HS256", Typ: "JWT", Ver: tokenVersion}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("marshal header: %w", err)
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(payloadJSON)

	mac := hmacSign(signingInput, secret)

	return signingInput + "." + mac, nil
}

// VerifyError carries the taxonomy Kind a failed internal-token
// verification maps to.
type VerifyError struct {
	Kind problemdetails.Kind
	Msg  string
}

func (e *VerifyError) Error() string { return e.Msg }

func errKind(kind problemdetails.Kind, msg string) *VerifyError {
	return &VerifyError{Kind: kind, Msg: msg}
}

// Verify decodes, checks the signature, and validates the issuer, audience,
// and expiry of a token minted by Mint.
func Verify(token, secret, expectedAudience, expectedIssuer string) (InternalClaims, error) {
	if len(secret) < minSecretLen {
		// Configuration error: never leak which check failed to the caller.
		return InternalClaims{}, errKind(problemdetails.KindInternalError, "server misconfiguration")
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return InternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "token is not three non-empty segments")
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return InternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "malformed header encoding")
	}
	var header internalHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil || header.Alg != "HS256" {
		return InternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "unsupported algorithm")
	}

	signingInput := parts[0] + "." + parts[1]
	expectedMAC := hmacSign(signingInput, secret)
	if subtle.ConstantTimeCompare([]byte(expectedMAC), []byte(parts[2])) != 1 {
		return InternalClaims{}, errKind(problemdetails.KindInvalidSignature, "signature mismatch")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return InternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "malformed payload encoding")
	}
	var claims InternalClaims
	if err := json.Unmarshal(payloadBytes, &claims); err != nil {
		return InternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "malformed payload json")
	}

	if claims.Issuer != expectedIssuer {
		return InternalClaims{}, errKind(problemdetails.KindInvalidIssuer, "issuer does not match expected gateway identifier")
	}
	if claims.Audience != expectedAudience {
		return InternalClaims{}, errKind(problemdetails.KindInvalidAudience, "audience does not match this backend")
	}
	if time.Unix(claims.ExpiresAt, 0).Before(time.Now()) {
		return InternalClaims{}, errKind(problemdetails.KindExpired, "internal token expired")
	}
	if claims.Actor.Subject == "" {
		return InternalClaims{}, errKind(problemdetails.KindMissingActor, "actor.subject is absent")
	}

	return claims, nil
}

func hmacSign(signingInput, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signingInput))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
