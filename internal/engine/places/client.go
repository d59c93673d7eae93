// Package places talks to the places nearby-search and details web APIs.
package places

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL        = "https://maps.googleapis.com/maps/api/place"
	DefaultPageTokenDelay = 2 * time.Second
	MaxPages              = 3

	defaultHTTPTimeout = 15 * time.Second
	maxRetries         = 3
	baseBackoff        = 2 * time.Second
	maxBackoff         = 30 * time.Second
	jitterFactor       = 0.5
)

// DetailCache stores raw detail payloads between runs.
type DetailCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type Client struct {
	apiKey         string
	baseURL        string
	http           *http.Client
	pageTokenDelay time.Duration
	backoff        time.Duration
	cache          DetailCache
	log            zerolog.Logger

	requests   atomic.Int64
	rateLimits atomic.Int64
}

type Option func(*Client) error

// WithBaseURL overrides the API root (used for tests).
func WithBaseURL(u string) Option {
	return func(c *Client) error {
		c.baseURL = strings.TrimRight(u, "/")
		return nil
	}
}

// WithPageTokenDelay sets the wait before a next_page_token is reused.
func WithPageTokenDelay(d time.Duration) Option {
	return func(c *Client) error {
		c.pageTokenDelay = d
		return nil
	}
}

// WithBackoff sets the base delay between rate-limited retries.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) error {
		c.backoff = d
		return nil
	}
}

func WithDetailCache(cache DetailCache) Option {
	return func(c *Client) error {
		c.cache = cache
		return nil
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l.With().Str("component", "places").Logger()
		return nil
	}
}

// WithChromeTransport sends requests with a browser TLS fingerprint,
// optionally through a proxy.
func WithChromeTransport(proxyURL string) Option {
	return func(c *Client) error {
		tr, err := newChromeTransport(proxyURL)
		if err != nil {
			return err
		}
		c.http = &http.Client{Transport: tr, Timeout: defaultHTTPTimeout}
		return nil
	}
}

// NewClient builds a client for one run. A blank key yields ErrCredentialMissing.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrCredentialMissing
	}
	c := &Client{
		apiKey:         apiKey,
		baseURL:        DefaultBaseURL,
		http:           &http.Client{Timeout: defaultHTTPTimeout},
		pageTokenDelay: DefaultPageTokenDelay,
		backoff:        baseBackoff,
		log:            zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("configuring places client: %w", err)
		}
	}
	return c, nil
}

// Requests returns how many HTTP requests were sent, retries included.
func (c *Client) Requests() int64 { return c.requests.Load() }

// RateLimits returns how many throttled responses were seen.
func (c *Client) RateLimits() int64 { return c.rateLimits.Load() }

// getJSON fetches <base>/<endpoint>/json and decodes it into out, retrying
// throttled responses with exponential backoff and jitter.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + "/" + endpoint + "/json?" + params.Encode()

	var lastErr error
	for attempt := range maxRetries {
		body, err := c.doRequest(ctx, reqURL)
		if err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return &TransportError{Op: endpoint + " decode", Err: err}
			}
			return nil
		}
		lastErr = err

		var rl *RateLimitError
		if !errors.As(err, &rl) {
			return &TransportError{Op: endpoint, Err: err}
		}
		c.rateLimits.Add(1)
		if attempt == maxRetries-1 {
			break
		}

		backoff := c.backoff * time.Duration(1<<uint(attempt))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		jitter := time.Duration(float64(backoff) * jitterFactor * rand.Float64())
		c.log.Warn().Int("status", rl.StatusCode).Int("attempt", attempt+1).
			Dur("backoff", backoff+jitter).Msg("RATE_LIMIT")
		if err := sleep(ctx, backoff+jitter); err != nil {
			return &TransportError{Op: endpoint, Err: err}
		}
	}
	return &TransportError{Op: endpoint, Err: lastErr}
}

func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.requests.Add(1)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusServiceUnavailable:
		io.Copy(io.Discard, resp.Body)
		return nil, &RateLimitError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// DetailCacheKey is the cache key for one place in one language and field mask.
func DetailCacheKey(language string, fields []string, placeID string) string {
	sum := sha256.Sum256([]byte(strings.Join(fields, ",")))
	return "places:detail:v1:" + language + ":" + hex.EncodeToString(sum[:8]) + ":" + placeID
}
