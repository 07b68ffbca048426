package backendauth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chrislyons-dev/bond-math/internal/inttoken"
)

func withActorCtx(req *http.Request, actor inttoken.Actor) *http.Request {
	ctx := withActor(req.Context(), actor, "req-1")
	return req.WithContext(ctx)
}

func TestRequireScope_Allows(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	guard := RequireScope("daycount:write")(next)

	req := httptest.NewRequest(http.MethodPost, "/v1/count", nil)
	req = withActorCtx(req, inttoken.Actor{Subject: "user-1", Permissions: []string{"daycount:write"}})
	rec := httptest.NewRecorder()

	guard.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected next handler to be called")
	}
}

func TestRequireScope_RejectsMissingScope(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
	guard := RequireScope("daycount:write")(next)

	req := httptest.NewRequest(http.MethodPost, "/v1/count", nil)
	req = withActorCtx(req, inttoken.Actor{Subject: "user-1", Permissions: []string{"daycount:read"}})
	rec := httptest.NewRecorder()

	guard.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRequireScope_RejectsNoActor(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
	guard := RequireScope("daycount:write")(next)

	req := httptest.NewRequest(http.MethodPost, "/v1/count", nil)
	rec := httptest.NewRecorder()

	guard.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAny_AllowsIfAnyScopePresent(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	guard := RequireAny("daycount:read", "daycount:write")(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/count", nil)
	req = withActorCtx(req, inttoken.Actor{Subject: "user-1", Permissions: []string{"daycount:write"}})
	rec := httptest.NewRecorder()

	guard.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected next handler to be called")
	}
}

func TestRequireAny_RejectsIfNoneMatch(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
	guard := RequireAny("daycount:read", "daycount:write")(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/count", nil)
	req = withActorCtx(req, inttoken.Actor{Subject: "user-1", Permissions: []string{"valuation:write"}})
	rec := httptest.NewRecorder()

	guard.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRequireAny_RejectsNoActor(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
	guard := RequireAny("daycount:read", "daycount:write")(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/count", nil)
	rec := httptest.NewRecorder()

	guard.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
