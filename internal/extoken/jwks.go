package extoken

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// jwksFetchTimeout bounds the JWKS HTTP fetch.
const jwksFetchTimeout = 5 * time.Second

// minForcedRefreshInterval bounds how often an unknown-kid miss may trigger
// a forced refresh, so a client presenting garbage kids can't be used to
// hammer the JWKS endpoint.
const minForcedRefreshInterval = 60 * time.Second

// defaultRefreshInterval is the cache age after which
// ShouldBackgroundRefresh reports the keys as stale. Nothing in this
// package refreshes on a timer: keys are refetched only when Refresh is
// called (the gateway's startup pre-fetch, or an unknown-kid miss in
// Verify).
const defaultRefreshInterval = 10 * time.Minute

// fetchCall represents one in-flight JWKS fetch. Concurrent Refresh() calls
// observe an existing call and wait on it instead of issuing their own
// request, so two concurrent cache misses for the same kid collapse into
// exactly one outbound fetch regardless of how many goroutines ask at once.
type fetchCall struct {
	wg  sync.WaitGroup
	err error
}

// JWKSCache caches RSA signing keys fetched from an OIDC provider's JWKS
// endpoint, indexed by kid.
type JWKSCache struct {
	url        string
	httpClient *http.Client

	mu               sync.RWMutex
	keysByKid        map[string]*rsa.PublicKey
	fetchedAt        time.Time
	lastForcedRefresh time.Time
	inFlight         *fetchCall
}

// NewJWKSCache constructs an empty cache for the given JWKS URL. The cache
// is populated lazily on first Lookup miss.
func NewJWKSCache(url string) *JWKSCache {
	return &JWKSCache{
		url:        url,
		httpClient: &http.Client{Timeout: jwksFetchTimeout},
		keysByKid:  make(map[string]*rsa.PublicKey),
	}
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Lookup returns the cached public key for kid, if present.
func (c *JWKSCache) Lookup(kid string) (*rsa.PublicKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.keysByKid[kid]
	return key, ok
}

// Refresh fetches the JWKS document and repopulates the cache. Concurrent
// callers collapse into the single in-flight request.
func (c *JWKSCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight != nil {
		call := c.inFlight
		c.mu.Unlock()
		call.wg.Wait()
		return call.err
	}

	call := &fetchCall{}
	call.wg.Add(1)
	c.inFlight = call
	c.mu.Unlock()

	err := c.doFetch(ctx)

	c.mu.Lock()
	c.inFlight = nil
	c.mu.Unlock()

	call.err = err
	call.wg.Done()
	return err
}

// ShouldBackgroundRefresh reports whether the cached keys are older than
// defaultRefreshInterval. It does not trigger a refresh itself.
func (c *JWKSCache) ShouldBackgroundRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.fetchedAt) > defaultRefreshInterval
}

// allowForcedRefresh reports whether an unknown-kid-triggered refresh is
// permitted right now, bounded by minForcedRefreshInterval.
func (c *JWKSCache) allowForcedRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastForcedRefresh) < minForcedRefreshInterval {
		return false
	}
	c.lastForcedRefresh = time.Now()
	return true
}

func (c *JWKSCache) doFetch(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, jwksFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("build jwks request: %w", err)
	}
	req.Header.Set("User-Agent", "bond-math-gateway/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read jwks response: %w", err)
	}

	var doc jwksDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("parse jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Use != "sig" || k.Kid == "" {
			continue
		}

		pubKey, err := rsaPublicKeyFromJWK(k)
		if err != nil {
			log.Warn().Err(err).Str("kid", k.Kid).Msg("skipping malformed jwks key")
			continue
		}
		keys[k.Kid] = pubKey
	}

	if len(keys) == 0 {
		return errors.New("no valid RSA signing keys found in jwks document")
	}

	c.mu.Lock()
	c.keysByKid = keys
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	log.Info().Int("key_count", len(keys)).Str("url", c.url).Msg("refreshed jwks cache")
	return nil
}

func rsaPublicKeyFromJWK(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	var eInt int
	for _, b := range eBytes {
		eInt = eInt<<8 | int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: eInt,
	}, nil
}
