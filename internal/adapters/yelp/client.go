// internal/adapters/yelp/client.go
package yelp

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"dineline_reviews/internal/adapters/observability"
	"dineline_reviews/internal/domain"
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

// GetReviews returns the raw review objects Yelp publishes for a business.
func (c *Client) GetReviews(ctx context.Context, businessID string) ([]map[string]any, error) {
	u := fmt.Sprintf("%s/businesses/%s/reviews", c.base, url.PathEscape(businessID))
	var out struct {
		Reviews []map[string]any `json:"reviews"`
	}
	if err := c.get(ctx, "reviews", u, &out); err != nil {
		return nil, err
	}
	if out.Reviews == nil {
		return []map[string]any{}, nil
	}
	return out.Reviews, nil
}

// ---- Internals ----

var (
	ErrNotFound     = fmt.Errorf("yelp: %w", domain.ErrNotFound)
	ErrUnauthorized = fmt.Errorf("yelp: %w", domain.ErrUnauthorized)
	ErrForbidden    = fmt.Errorf("yelp: %w", domain.ErrForbidden)
)

const maxAttempts = 4

// APIError is the error body Yelp Fusion sends with non-2xx answers.
type APIError struct {
	Status      int
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("yelp: status %d", e.Status)
	}
	return fmt.Sprintf("yelp: status %d: %s: %s", e.Status, e.Code, e.Description)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// get waits on the rate limiter, then tries up to maxAttempts times. 429 and
// transient 5xx are retried after Retry-After or an exponential backoff.
func (c *Client) get(ctx context.Context, endpoint, rawURL string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		wait, err := c.attempt(ctx, endpoint, rawURL, out)
		if err == nil {
			return nil
		}
		if wait < 0 {
			return err
		}
		lastErr = err
		if i == maxAttempts-1 {
			break
		}
		if wait == 0 {
			wait = backoff(i)
		}
		if !sleepCtx(ctx, wait) {
			return ctx.Err()
		}
	}
	if lastErr == nil {
		lastErr = errors.New("yelp: retries exhausted")
	}
	return lastErr
}

// attempt does one round-trip. A negative wait means the error is final.
func (c *Client) attempt(ctx context.Context, endpoint, rawURL string, out any) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return -1, err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dineline-reviews/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("yelp", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		return 0, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("yelp", endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return -1, fmt.Errorf("yelp: decode %s: %w", endpoint, err)
		}
		return 0, nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error *APIError `json:"error"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(b, &body) == nil && body.Error != nil {
		apiErr.Code, apiErr.Description = body.Error.Code, body.Error.Description
	}
	if retryable(resp.StatusCode) {
		return retryAfter(resp), apiErr
	}
	return -1, apiErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
