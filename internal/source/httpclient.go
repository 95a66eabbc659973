package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	dErrors "mandata/pkg/domain-errors"
	"mandata/pkg/platform/retry"
)

const defaultUserAgent = "mandata-sync/1.0"

// Client is the shared HTTP fetcher for source adapters. It enforces a
// minimum inter-request delay per external service and retries transient
// responses (429, 503, other 5xx, network errors) with exponential backoff.
type Client struct {
	httpClient *http.Client
	policy     retry.Policy
	userAgent  string

	mu          sync.Mutex
	minInterval time.Duration
	lastRequest time.Time
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithMinInterval sets the minimum delay between two requests.
func WithMinInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.minInterval = d }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p retry.Policy) ClientOption {
	return func(c *Client) { c.policy = p }
}

// WithHTTPClient injects the underlying http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a rate-limited, retrying HTTP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		policy:     retry.DefaultPolicy(),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches url and returns the body. Transient failures are retried; a
// non-transient HTTP status comes back as CodeUnavailable without retrying.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.policy.Do(ctx, func() error {
		var ferr error
		body, ferr = c.fetch(ctx, http.MethodGet, url)
		return ferr
	}, isPermanent)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return body, nil
}

// Head checks url reachability, used to validate photo URLs before accepting
// them from low-priority sources.
func (c *Client) Head(ctx context.Context, url string) error {
	err := c.policy.Do(ctx, func() error {
		_, ferr := c.fetch(ctx, http.MethodHead, url)
		return ferr
	}, isPermanent)
	if err != nil {
		return fmt.Errorf("head %s: %w", url, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, method, url string) ([]byte, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if method == http.MethodHead {
			return nil, nil
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		// Transient: the retry policy decides whether to try again.
		return nil, fmt.Errorf("transient status %d", resp.StatusCode)
	default:
		return nil, dErrors.Newf(dErrors.CodeUnavailable, "status %d", resp.StatusCode)
	}
}

// throttle blocks until the minimum inter-request delay has elapsed.
func (c *Client) throttle(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}
	c.mu.Lock()
	wait := c.minInterval - time.Since(c.lastRequest)
	c.lastRequest = time.Now().Add(wait)
	c.mu.Unlock()
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isPermanent treats coded domain errors as non-retryable; plain wrapped
// network/status errors stay transient.
func isPermanent(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeUnavailable) ||
		dErrors.HasCode(err, dErrors.CodeInvalidInput)
}
