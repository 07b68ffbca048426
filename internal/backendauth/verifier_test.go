package backendauth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chrislyons-dev/bond-math/internal/inttoken"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestVerifier_Middleware_HappyPath(t *testing.T) {
	token, err := inttoken.Mint(inttoken.MintInput{
		Issuer:      inttoken.GatewayIssuer,
		Subject:     "user-1",
		Permissions: []string{"daycount:write"},
	}, "svc-daycount", testSecret, 0)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	v := &Verifier{Secret: testSecret, Audience: "svc-daycount", Issuer: inttoken.GatewayIssuer}

	var gotActor inttoken.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			t.Fatal("expected actor in context")
		}
		gotActor = actor
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/count", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	v.Middleware(next).ServeHTTP(rec, req)

	if gotActor.Subject != "user-1" {
		t.Errorf("actor.Subject = %q, want user-1", gotActor.Subject)
	}
}

func TestVerifier_Middleware_MissingHeader(t *testing.T) {
	v := &Verifier{Secret: testSecret, Audience: "svc-daycount", Issuer: inttoken.GatewayIssuer}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/count", nil)
	rec := httptest.NewRecorder()

	v.Middleware(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestVerifier_Middleware_WrongAudience(t *testing.T) {
	token, err := inttoken.Mint(inttoken.MintInput{
		Issuer:      inttoken.GatewayIssuer,
		Subject:     "user-1",
		Permissions: []string{"daycount:write"},
	}, "svc-valuation", testSecret, 0)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	v := &Verifier{Secret: testSecret, Audience: "svc-daycount", Issuer: inttoken.GatewayIssuer}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/count", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	v.Middleware(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
