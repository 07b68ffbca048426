package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chrislyons-dev/bond-math/internal/backendauth"
	"github.com/chrislyons-dev/bond-math/internal/config"
	mw "github.com/chrislyons-dev/bond-math/internal/middleware"
	"github.com/chrislyons-dev/bond-math/internal/obsmetrics"
	"github.com/chrislyons-dev/bond-math/internal/riskmetrics"
)

var version = "dev"

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = log.With().Str("service", "svc-metrics").Logger()

	cfg, err := config.LoadBackend()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load backend configuration")
	}
	if cfg.IsDevMode() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	verifier := &backendauth.Verifier{Secret: cfg.InternalJWTSecret, Audience: cfg.Audience, Issuer: cfg.GatewayIssuer}
	metrics := obsmetrics.New(cfg.ServiceName)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Timing)
	r.Use(mw.Logging(cfg.ServiceName))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(healthResponse{Status: "healthy", Service: cfg.ServiceName, Version: version})
	})

	handler := &riskmetrics.Handler{Version: version}

	r.Route("/api/metrics", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(verifier.Middleware)
			r.Use(backendauth.RequireScope(backendauth.MetricsWrite))
			r.Post("/v1/metrics", handler.ServeHTTP)
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	metricsServer := metrics.Server(cfg.MetricsAddr)

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("starting risk-metrics HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("risk-metrics HTTP server failed")
		}
	}()

	go func() {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("starting risk-metrics metrics server")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("risk-metrics HTTP server shutdown error")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics server shutdown error")
	}

	log.Info().Msg("risk-metrics stopped")
}
