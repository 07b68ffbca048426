package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chrislyons-dev/bond-math/internal/extoken"
	"github.com/chrislyons-dev/bond-math/internal/inttoken"
)

func TestForwardHandler_MintsAndForwards(t *testing.T) {
	var gotAuth, gotPath string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	prevMinter := defaultMinter
	defer func() { defaultMinter = prevMinter }()
	defaultMinter = mintFunc(func(in inttoken.MintInput, audience, secret string, ttl time.Duration) (string, error) {
		return "minted-token", nil
	})

	route := ServiceRoute{
		Name:       "daycount",
		PathPrefix: "/api/daycount",
		Audience:   "svc-daycount",
		TargetURL:  backend.URL,
		Timeout:    5 * time.Second,
	}

	handler := forwardHandler(route, "0123456789abcdef0123456789abcdef", 90*time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/daycount/v1/count", nil)
	req = req.WithContext(withClaims(req.Context(), extoken.ExternalClaims{Subject: "user-1"}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotAuth != "Bearer minted-token" {
		t.Errorf("backend Authorization = %q, want Bearer minted-token", gotAuth)
	}
	if gotPath != "/api/daycount/v1/count" {
		t.Errorf("backend path = %q, want /api/daycount/v1/count (prefix preserved)", gotPath)
	}
}

func TestForwardHandler_RejectsMissingClaims(t *testing.T) {
	route := ServiceRoute{Name: "daycount", PathPrefix: "/api/daycount", Audience: "svc-daycount", TargetURL: "http://example.com"}
	handler := forwardHandler(route, "0123456789abcdef0123456789abcdef", 90*time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/daycount/v1/count", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
