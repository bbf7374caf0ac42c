// Package fetch streams documentation archive entries from the upstream
// repositories, with retries, per-host circuit breaking and resolution of
// documentation requests to archive URLs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"

	"github.com/reactor/docsproxy/client"
)

var (
	ErrNotFound     = client.ErrNotFound
	ErrRateLimited  = errors.New("rate limited by upstream")
	ErrUpstreamDown = errors.New("upstream repository unavailable")
)

// Artifact is an upstream response being streamed back.
type Artifact struct {
	Body        io.ReadCloser
	Size        int64 // -1 if unknown
	ContentType string
	ETag        string
	// Header holds every upstream response header.
	Header http.Header
}

// FetcherInterface defines the interface for archive fetchers.
type FetcherInterface interface {
	Fetch(ctx context.Context, url string) (*Artifact, error)
	FetchWithHeader(ctx context.Context, url string, header http.Header) (*Artifact, error)
	Head(ctx context.Context, url string) (size int64, contentType string, err error)
	Status(ctx context.Context, url string) (int, error)
}

// Fetcher downloads archive entries from upstream repositories.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
	authFn     func(url string) (headerName, headerValue string)
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxRetries sets the maximum retry attempts.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.baseDelay = d
	}
}

// WithAuthFunc sets a function that returns auth headers for a given URL.
// Return empty strings to skip authentication for that URL.
func WithAuthFunc(fn func(url string) (headerName, headerValue string)) Option {
	return func(f *Fetcher) {
		f.authFn = fn
	}
}

// NewFetcher creates a Fetcher dialing upstream hosts through a cached
// DNS resolver.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: cachedTransport(&dnscache.Resolver{}, 5*time.Minute),
		},
		userAgent:  "docsproxy/1.0",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// cachedTransport returns a transport resolving hosts through res, which
// is refreshed every interval. Every resolved address is tried in turn.
func cachedTransport(res *dnscache.Resolver, interval time.Duration) *http.Transport {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for range t.C {
			res.Refresh(true)
		}
	}()

	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		addrs, err := res.LookupHost(ctx, host)
		if err != nil {
			return nil, err
		}
		var lastErr error
		for _, a := range addrs {
			conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(a, port))
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
		return nil, fmt.Errorf("dialing %s: %w", host, lastErr)
	}

	return &http.Transport{
		DialContext:           dial,
		MaxIdleConnsPerHost:   20,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}

// Fetch downloads the entry at url.
// The caller must close the returned Artifact.Body when done.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Artifact, error) {
	return f.FetchWithHeader(ctx, url, nil)
}

// FetchWithHeader downloads the entry at url, forwarding header. The
// fetcher's User-Agent and auth header take precedence. Rate limiting and
// 5xx answers are retried with exponential backoff.
func (f *Fetcher) FetchWithHeader(ctx context.Context, url string, header http.Header) (*Artifact, error) {
	var artifact *Artifact
	op := func() error {
		a, err := f.doFetch(ctx, url, header)
		switch {
		case err == nil:
			artifact = a
			return nil
		case errors.Is(err, ErrRateLimited), errors.Is(err, ErrUpstreamDown):
			return err
		default:
			return backoff.Permanent(err)
		}
	}
	if err := backoff.Retry(op, f.backOff(ctx)); err != nil {
		return nil, err
	}
	return artifact, nil
}

func (f *Fetcher) backOff(ctx context.Context) backoff.BackOff {
	if f.maxRetries <= 0 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.baseDelay
	b.RandomizationFactor = 0.1
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.maxRetries)), ctx)
}

func (f *Fetcher) newRequest(ctx context.Context, method, url string, header http.Header) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for name, values := range header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "*/*")
	}
	req.Header.Set("User-Agent", f.userAgent)

	if f.authFn != nil {
		if name, value := f.authFn(url); name != "" && value != "" {
			req.Header.Set(name, value)
		}
	}
	return req, nil
}

func (f *Fetcher) doFetch(ctx context.Context, url string, header http.Header) (*Artifact, error) {
	req, err := f.newRequest(ctx, http.MethodGet, url, header)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return &Artifact{
			Body:        resp.Body,
			Size:        contentLength(resp.Header),
			ContentType: resp.Header.Get("Content-Type"),
			ETag:        resp.Header.Get("ETag"),
			Header:      resp.Header,
		}, nil

	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)

	case resp.StatusCode == http.StatusTooManyRequests:
		_ = resp.Body.Close()
		return nil, ErrRateLimited

	case resp.StatusCode >= 500:
		_ = resp.Body.Close()
		return nil, ErrUpstreamDown

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, &client.HTTPError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
	}
}

// Head checks if an entry exists and returns its metadata without
// downloading it.
func (f *Fetcher) Head(ctx context.Context, url string) (size int64, contentType string, err error) {
	req, err := f.newRequest(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("head request: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return contentLength(resp.Header), resp.Header.Get("Content-Type"), nil
}

// Status returns the status code of a HEAD request to url. Any status is
// a valid answer; only transport failures are errors. It is not retried.
func (f *Fetcher) Status(ctx context.Context, url string) (int, error) {
	req, err := f.newRequest(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("head request: %w", err)
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func contentLength(h http.Header) int64 {
	if cl := h.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			return n
		}
	}
	return -1
}
