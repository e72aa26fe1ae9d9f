// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/coauthor-graph/internal/observability"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// maxErrorBody bounds how much of a non-200 body is quoted in errors.
const maxErrorBody = 512

// Client issues rate-limited GET requests with 429 retry.
type Client struct {
	HTTP       *http.Client
	Limiter    *RateLimiter
	MaxRetries int
	UserAgent  string

	// Source labels request metrics (e.g. "openalex", "dblp").
	Source  string
	Metrics *observability.Metrics
}

// NewClient builds a Client from shared HTTP settings.
func NewClient(source string, cfg types.HTTPConfig, metrics *observability.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		HTTP:       &http.Client{Timeout: timeout},
		Limiter:    NewRateLimiter(cfg.RateLimit, 1),
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
		Source:     source,
		Metrics:    metrics,
	}
}

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Get fetches url and returns the response body. Any status other than 200
// yields a *StatusError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	c.Metrics.ObserveRequest(c.Source, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}
	return body, nil
}
