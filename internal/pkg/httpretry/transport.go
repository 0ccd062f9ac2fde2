// Package httpretry provides an http.RoundTripper that retries transient
// failures with exponential backoff and full jitter. It is meant for
// idempotent calls such as OAuth token refreshes, never for mail sends.
package httpretry

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/ignite/massmail/internal/pkg/logger"
)

// Transport retries on 429, 5xx gateway errors and network errors.
type Transport struct {
	base       http.RoundTripper
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewTransport wraps base (http.DefaultTransport when nil). maxRetries is
// the number of attempts after the first (default 3); baseDelay defaults to
// one second.
func NewTransport(base http.RoundTripper, maxRetries int, baseDelay time.Duration) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &Transport{
		base:       base,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   30 * time.Second,
	}
}

// Client returns an http.Client using t with the given timeout.
func (t *Transport) Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: t, Timeout: timeout}
}

// RoundTrip sends req, retrying while the body can be replayed. Retries go
// out on clones so req itself is never modified. The last response is
// returned as-is so callers can read the error body.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		out := req
		if attempt > 0 {
			if req.Body != nil && req.GetBody == nil {
				return nil, lastErr
			}
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: reset body: %w", err)
				}
				out = req.Clone(req.Context())
				out.Body = body
			}

			delay := t.delay(attempt)
			logger.Warn("httpretry: retrying",
				"attempt", attempt, "max", t.maxRetries, "host", req.URL.Host, "path", req.URL.Path, "wait", delay)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			}
		}

		resp, err := t.base.RoundTrip(out)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}
		if !isRetryableStatus(resp.StatusCode) || attempt == t.maxRetries {
			return resp, nil
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: retryable status %d", resp.StatusCode)
	}
	return nil, lastErr
}

// delay is random(0, min(maxDelay, baseDelay*2^(attempt-1))), at least a
// tenth of baseDelay.
func (t *Transport) delay(attempt int) time.Duration {
	exp := float64(t.baseDelay) * math.Pow(2, float64(attempt-1))
	if exp > float64(t.maxDelay) {
		exp = float64(t.maxDelay)
	}
	d := time.Duration(rand.Float64() * exp)
	if floor := t.baseDelay / 10; d < floor {
		d = floor
	}
	return d
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
