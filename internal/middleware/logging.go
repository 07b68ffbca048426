package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// statusWriter records the status code written so the exit log line can
// report it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Logging emits one structured JSON record at request entry and one at
// exit, both carrying requestId and service.
func Logging(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := RequestIDFromContext(r.Context())
			logger := log.With().Str("requestId", requestID).Str("service", service).Logger()
			ctx := logger.WithContext(r.Context())
			r = r.WithContext(ctx)

			logger.Info().Str("method", r.Method).Str("path", r.URL.Path).Msg("request started")

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Dur("dur_ms", time.Since(start)).
				Msg("request completed")
		})
	}
}
