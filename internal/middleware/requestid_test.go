package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestID_HonorsConformingHeader(t *testing.T) {
	var gotCtxID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCtxID = RequestIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abcd1234-request")
	rec := httptest.NewRecorder()

	RequestID(next).ServeHTTP(rec, req)

	if gotCtxID != "abcd1234-request" {
		t.Errorf("context request id = %q, want abcd1234-request", gotCtxID)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "abcd1234-request" {
		t.Errorf("response header = %q, want abcd1234-request", got)
	}
}

func TestRequestID_RejectsMalformedHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "short")
	rec := httptest.NewRecorder()

	RequestID(next).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got == "short" || got == "" {
		t.Errorf("expected a generated id replacing the malformed one, got %q", got)
	}
}

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	RequestID(next).ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}
}
