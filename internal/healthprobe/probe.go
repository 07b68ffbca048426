// Package healthprobe implements the gateway's startup reachability check
// against each configured backend, retrying with backoff before the
// process gives up and exits.
package healthprobe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Target is one backend to probe before the gateway starts serving.
type Target struct {
	Name string
	URL  string
}

// Probe GETs target.URL + "/health" with bounded exponential backoff,
// returning an error once the budget is exhausted without a 200.
func Probe(ctx context.Context, target Target, maxElapsed time.Duration) error {
	if target.URL == "" {
		return fmt.Errorf("probe %s: no backend url configured", target.Name)
	}

	client := &http.Client{Timeout: 5 * time.Second}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL+"/health", nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s health check returned status %d", target.Name, resp.StatusCode)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxElapsed

	err := backoff.RetryNotify(op, bo, func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("backend", target.Name).Dur("retryIn", wait).Msg("backend not yet reachable")
	})
	if err != nil {
		return fmt.Errorf("probe %s: %w", target.Name, err)
	}

	log.Info().Str("backend", target.Name).Msg("backend reachable")
	return nil
}

// ProbeAll probes every target, returning the first error encountered.
func ProbeAll(ctx context.Context, targets []Target, maxElapsed time.Duration) error {
	for _, t := range targets {
		if err := Probe(ctx, t, maxElapsed); err != nil {
			return err
		}
	}
	return nil
}
