package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// requestIDPattern is the format an inbound X-Request-ID must match to be
// honored verbatim.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{8,128}$`)

// RequestID is the first middleware in the chain: it honors a conforming
// inbound X-Request-ID, otherwise assigns a fresh UUID, and always echoes
// it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if !requestIDPattern.MatchString(id) {
			id = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(withRequestID(r.Context(), id))
		next.ServeHTTP(w, r)
	})
}
