package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chrislyons-dev/bond-math/internal/extoken"
)

func TestExternalAuth_RejectsMissingHeader(t *testing.T) {
	verifier := &extoken.Verifier{Cache: extoken.NewJWKSCache("http://unused.example.com")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/daycount/v1/count", nil)
	rec := httptest.NewRecorder()

	ExternalAuth(verifier)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestExternalAuth_RejectsMalformedScheme(t *testing.T) {
	verifier := &extoken.Verifier{Cache: extoken.NewJWKSCache("http://unused.example.com")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/daycount/v1/count", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	ExternalAuth(verifier)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestExternalAuth_RejectsMalformedToken(t *testing.T) {
	verifier := &extoken.Verifier{Cache: extoken.NewJWKSCache("http://unused.example.com")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/daycount/v1/count", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()

	ExternalAuth(verifier)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
