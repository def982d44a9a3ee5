// Package transport is the rate-limited HTTP plumbing shared by the store and
// classifier clients.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"app_analyser/internal/adapters/observability"
)

var (
	ErrNotFound     = errors.New("remote: not found")
	ErrUnauthorized = errors.New("remote: unauthorized")
	ErrForbidden    = errors.New("remote: forbidden")
	ErrRateLimited  = errors.New("remote: rate limited")
)

const maxBody = 32 << 20

type Client struct {
	service string
	hc      *http.Client
	rl      *rate.Limiter
}

// New returns a client for service allowing rps requests per second (default 5).
func New(service string, rps int, timeout time.Duration) *Client {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		service: service,
		hc:      &http.Client{Timeout: timeout},
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// HTTPClient exposes the underlying client, e.g. for test transports.
func (c *Client) HTTPClient() *http.Client { return c.hc }

// Do sends req once the limiter admits it and returns the body of a 2xx response.
// endpoint labels the call in metrics. There are no retries; the caller aborts on error.
func (c *Client) Do(ctx context.Context, endpoint string, req *http.Request) ([]byte, error) {
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) app-analyser/1.0")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(c.service, endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s %s: %w", c.service, endpoint, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal(c.service, endpoint, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, fmt.Errorf("%s %s: read body: %w", c.service, endpoint, err)
		}
		return b, nil

	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound

	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized

	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrForbidden

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited

	default:
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s %s: bad status %d: %s", c.service, endpoint, resp.StatusCode, strings.TrimSpace(string(b)))
	}
}
