package extoken

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chrislyons-dev/bond-math/internal/problemdetails"
)

// expClockSkew tolerates a token whose exp is slightly in the past, to
// absorb clock drift between the issuer and this service.
const expClockSkew = 60 * time.Second

// nbfClockSkew grants the same tolerance to nbf.
const nbfClockSkew = 60 * time.Second

// Verifier verifies external (upstream OIDC) bearer tokens.
type Verifier struct {
	ExpectedIssuer       string
	ExpectedAudience     string
	PermissionsNamespace string
	Cache                *JWKSCache
}

type joseHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
	Kid string `json:"kid"`
}

// Verify decodes the token, checks its header, claims, and signature, and
// resolves its permission set.
func (v *Verifier) Verify(ctx context.Context, token string) (ExternalClaims, error) {
	if token == "" {
		return ExternalClaims{}, errKind(problemdetails.KindMissingAuthentication, "no bearer token presented")
	}

	// Step 1: split and decode.
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "token is not three non-empty segments")
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "malformed header encoding")
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "malformed payload encoding")
	}

	// Step 2: header checks. No algorithm substitution permitted.
	var header joseHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "malformed header json")
	}
	if header.Alg != "RS256" {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "unsupported algorithm")
	}
	if header.Typ != "" && !strings.EqualFold(header.Typ, "JWT") {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "unsupported token type")
	}
	if header.Kid == "" {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "missing kid")
	}

	// Step 3: decode payload (not yet trusted) and check claims.
	var raw map[string]any
	if err := json.Unmarshal(payloadBytes, &raw); err != nil {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "malformed payload json")
	}

	issuer, _ := raw["iss"].(string)
	if issuer != v.ExpectedIssuer {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidIssuer, "issuer does not match configured value")
	}

	audience := decodeAudience(raw["aud"])
	if !containsString(audience, v.ExpectedAudience) {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidAudience, "audience does not contain configured api identifier")
	}

	expFloat, ok := raw["exp"].(float64)
	if !ok {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "missing exp claim")
	}
	exp := int64(expFloat)
	now := time.Now()
	if time.Unix(exp, 0).Before(now.Add(-expClockSkew)) {
		return ExternalClaims{}, errKind(problemdetails.KindExpired, "token is expired")
	}

	if nbfFloat, ok := raw["nbf"].(float64); ok {
		nbf := time.Unix(int64(nbfFloat), 0)
		if nbf.After(now.Add(nbfClockSkew)) {
			return ExternalClaims{}, errKind(problemdetails.KindExpired, "token not yet valid")
		}
	}

	var iat int64
	if iatFloat, ok := raw["iat"].(float64); ok {
		iat = int64(iatFloat)
	}

	// Step 4: resolve signing key, refreshing the JWKS cache on miss.
	pubKey, ok := v.Cache.Lookup(header.Kid)
	if !ok {
		if !v.Cache.allowForcedRefresh() {
			return ExternalClaims{}, errKind(problemdetails.KindInvalidSignature, "unknown signing key")
		}
		if err := v.Cache.Refresh(ctx); err != nil {
			return ExternalClaims{}, errKind(problemdetails.KindTransientAuthFailure, fmt.Sprintf("jwks unreachable: %v", err))
		}
		pubKey, ok = v.Cache.Lookup(header.Kid)
		if !ok {
			return ExternalClaims{}, errKind(problemdetails.KindInvalidSignature, "unknown signing key after refresh")
		}
	}

	// Step 5: verify the RS256 signature over the literal header.payload bytes.
	signingInput := parts[0] + "." + parts[1]
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "malformed signature encoding")
	}
	if err := jwt.SigningMethodRS256.Verify(signingInput, sig, pubKey); err != nil {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidSignature, "signature verification failed")
	}

	// Step 6: extract permissions with the precedence rule below.
	permissions := resolvePermissions(raw, v.PermissionsNamespace)

	claims := ExternalClaims{
		Issuer:      issuer,
		Subject:     stringClaim(raw, "sub"),
		Audience:    audience,
		ExpiresAt:   exp,
		IssuedAt:    iat,
		Permissions: permissions,
		Role:        stringClaim(raw, v.PermissionsNamespace+"role"),
		UserID:      stringClaim(raw, v.PermissionsNamespace+"user_id"),
		OrgID:       stringClaim(raw, v.PermissionsNamespace+"org_id"),
	}
	if claims.Subject == "" {
		return ExternalClaims{}, errKind(problemdetails.KindInvalidTokenFormat, "missing sub claim")
	}

	return claims, nil
}

// resolvePermissions implements the precedence order: namespaced custom claim
// > top-level permissions array > whitespace-split scope string > empty set.
func resolvePermissions(raw map[string]any, namespace string) []string {
	if v, ok := raw[namespace+"permissions"]; ok {
		if perms := decodeStringSlice(v); len(perms) > 0 {
			return perms
		}
	}
	if v, ok := raw["permissions"]; ok {
		if perms := decodeStringSlice(v); len(perms) > 0 {
			return perms
		}
	}
	if scope, ok := raw["scope"].(string); ok && strings.TrimSpace(scope) != "" {
		return strings.Fields(scope)
	}
	return []string{}
}

func decodeStringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func decodeAudience(v any) []string {
	switch aud := v.(type) {
	case string:
		return []string{aud}
	case []any:
		return decodeStringSlice(aud)
	default:
		return nil
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func stringClaim(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}
