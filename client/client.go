// Package client provides the HTTP client used to query version feeds and
// the builder for documentation archive URLs.
package client

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenk/backoff"
)

const defaultUserAgent = "docsproxy"

// RateLimiter paces outgoing requests. Wait blocks until a request may be
// sent or ctx is done.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Client is an HTTP client with retry logic for feed APIs.
type Client struct {
	http        *http.Client
	userAgent   string
	maxRetries  uint64
	baseDelay   time.Duration
	rateLimiter RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.maxRetries = uint64(n)
	}
}

// WithBaseDelay sets the initial retry interval.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = d
	}
}

// WithRateLimiter makes every request wait on rl first.
func WithRateLimiter(rl RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = rl
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		userAgent:  defaultUserAgent,
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultClient returns a Client with default settings.
func DefaultClient() *Client {
	return NewClient()
}

// WithUserAgent returns a copy of c sending ua as User-Agent.
func (c *Client) WithUserAgent(ua string) *Client {
	cp := *c
	cp.userAgent = ua
	return &cp
}

// backOff returns the retry policy of one request. Zero retries runs the
// request once: backoff.WithMaxRetries treats zero as unlimited.
func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	if c.maxRetries == 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)
}

// do performs a request, retrying on transport errors, 429 and 5xx.
// Other non-2xx statuses fail immediately with an *HTTPError.
func (c *Client) do(ctx context.Context, method, url, accept string) ([]byte, int, error) {
	var (
		body   []byte
		status int
	)
	op := func() error {
		if c.rateLimiter != nil {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		if accept != "" {
			req.Header.Set("Accept", accept)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		status = resp.StatusCode
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body = data
			return nil
		}

		httpErr := &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: truncate(string(data), 512)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return httpErr
		}
		return backoff.Permanent(httpErr)
	}

	if err := backoff.Retry(op, c.backOff(ctx)); err != nil {
		return nil, status, err
	}
	return body, status, nil
}

// GetBody fetches url and returns the response body.
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	body, _, err := c.do(ctx, http.MethodGet, url, "")
	return body, err
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, _, err := c.do(ctx, http.MethodGet, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

// GetXML fetches url and decodes the XML body into v.
func (c *Client) GetXML(ctx context.Context, url string, v any) error {
	body, _, err := c.do(ctx, http.MethodGet, url, "application/xml")
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

// Head issues a HEAD request and returns the status code. A non-2xx status
// is not an error.
func (c *Client) Head(ctx context.Context, url string) (int, error) {
	_, status, err := c.do(ctx, http.MethodHead, url, "")
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, nil
	}
	return status, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
