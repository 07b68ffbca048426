package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chrislyons-dev/bond-math/internal/config"
	"github.com/chrislyons-dev/bond-math/internal/extoken"
	"github.com/chrislyons-dev/bond-math/internal/healthprobe"
	"github.com/chrislyons-dev/bond-math/internal/obsmetrics"
	"github.com/chrislyons-dev/bond-math/internal/router"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = log.With().Str("service", "bond-math-gateway").Logger()

	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load gateway configuration")
	}

	if cfg.IsDevMode() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	table := router.BuildTable(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	probeTargets := make([]healthprobe.Target, 0, len(table))
	for _, route := range table {
		probeTargets = append(probeTargets, healthprobe.Target{Name: route.Name, URL: route.TargetURL})
	}
	if err := healthprobe.ProbeAll(ctx, probeTargets, 30*time.Second); err != nil {
		log.Fatal().Err(err).Msg("backend unreachable at startup")
	}

	verifier := &extoken.Verifier{
		ExpectedIssuer:       cfg.ExternalIssuer,
		ExpectedAudience:     cfg.ExternalAudience,
		PermissionsNamespace: cfg.PermissionsNamespace,
		Cache:                extoken.NewJWKSCache(cfg.JWKSURL),
	}

	if err := verifier.Cache.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to pre-fetch JWKS (will retry on first request)")
	}

	metrics := obsmetrics.New("gateway")

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router.New(cfg, verifier, table, metrics, version),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	metricsServer := metrics.Server(cfg.MetricsAddr)

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("starting gateway HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("gateway HTTP server failed")
		}
	}()

	go func() {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("starting gateway metrics server")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("gateway HTTP server shutdown error")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics server shutdown error")
	}

	log.Info().Msg("gateway stopped")
}
