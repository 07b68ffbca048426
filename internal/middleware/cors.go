package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS wraps go-chi/cors with the gateway's fixed policy: configured
// origins, GET/POST/OPTIONS, and the Content-Type/Authorization headers
// callers actually send.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
