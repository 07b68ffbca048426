// Package config loads gateway and backend configuration from the
// environment.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Gateway holds every environment-driven setting the gateway needs.
type Gateway struct {
	Env string `env:"ENV" envDefault:""`

	ExternalIssuer   string `env:"EXTERNAL_ISSUER,required"`
	ExternalAudience string `env:"EXTERNAL_AUDIENCE,required"`
	JWKSURL          string `env:"JWKS_URL"`

	PermissionsNamespace string `env:"PERMISSIONS_NAMESPACE" envDefault:"https://bond-math.internal/"`

	InternalJWTSecret string `env:"INTERNAL_JWT_SECRET,required"`
	InternalJWTTTL    int    `env:"INTERNAL_JWT_TTL" envDefault:"90"`

	RateLimitWindowMS int `env:"RATE_LIMIT_WINDOW_MS" envDefault:"60000"`
	RateLimitMax      int `env:"RATE_LIMIT_MAX" envDefault:"100"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	BackendDaycountURL  string `env:"BACKEND_DAYCOUNT_URL"`
	BackendValuationURL string `env:"BACKEND_VALUATION_URL"`
	BackendMetricsURL   string `env:"BACKEND_METRICS_URL"`
	BackendPricingURL   string `env:"BACKEND_PRICING_URL"`
}

// IsDevMode reports whether ENV is explicitly "dev". Any other value
// (including unset) keeps the process in its secure default.
func (g Gateway) IsDevMode() bool {
	return g.Env == "dev"
}

// LoadGateway reads .env (if present, dev convenience only) then binds the
// process environment onto a Gateway struct, failing fast on missing
// required variables.
func LoadGateway() (Gateway, error) {
	loadDotEnvIfPresent()

	var cfg Gateway
	if err := env.Parse(&cfg); err != nil {
		return Gateway{}, fmt.Errorf("load gateway config: %w", err)
	}

	if cfg.JWKSURL == "" {
		cfg.JWKSURL = cfg.ExternalIssuer + "/.well-known/jwks.json"
	}

	if len(cfg.InternalJWTSecret) < 32 {
		return Gateway{}, fmt.Errorf("INTERNAL_JWT_SECRET must be at least 32 bytes")
	}

	if cfg.InternalJWTTTL <= 0 || cfg.InternalJWTTTL > 90 {
		return Gateway{}, fmt.Errorf("INTERNAL_JWT_TTL must be in (0, 90] seconds")
	}

	return cfg, nil
}

// Backend holds the environment-driven settings each backend service needs.
type Backend struct {
	Env string `env:"ENV" envDefault:""`

	ServiceName string `env:"SERVICE_NAME,required"`
	Audience    string `env:"SERVICE_AUDIENCE,required"`

	InternalJWTSecret string `env:"INTERNAL_JWT_SECRET,required"`
	GatewayIssuer     string `env:"GATEWAY_ISSUER" envDefault:"bond-math-gateway"`

	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8081"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9091"`

	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"102400"`
}

func (b Backend) IsDevMode() bool {
	return b.Env == "dev"
}

// LoadBackend mirrors LoadGateway for the four backend binaries.
func LoadBackend() (Backend, error) {
	loadDotEnvIfPresent()

	var cfg Backend
	if err := env.Parse(&cfg); err != nil {
		return Backend{}, fmt.Errorf("load backend config: %w", err)
	}

	if len(cfg.InternalJWTSecret) < 32 {
		return Backend{}, fmt.Errorf("INTERNAL_JWT_SECRET must be at least 32 bytes")
	}

	return cfg, nil
}

// loadDotEnvIfPresent loads a .env file when one exists in the working
// directory. Absence is not an error; this is a local-dev convenience
// only, mirroring how godotenv is used across the example pack.
func loadDotEnvIfPresent() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("failed to load .env file")
	}
}
