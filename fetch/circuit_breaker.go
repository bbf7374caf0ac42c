package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// CircuitBreakerFetcher wraps a Fetcher with one circuit breaker per
// upstream host. Missing entries do not count as failures.
type CircuitBreakerFetcher struct {
	fetcher  *Fetcher
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

// NewCircuitBreakerFetcher creates a new circuit breaker wrapper for a fetcher.
func NewCircuitBreakerFetcher(f *Fetcher) *CircuitBreakerFetcher {
	return &CircuitBreakerFetcher{
		fetcher:  f,
		breakers: make(map[string]*circuit.Breaker),
	}
}

// getBreaker returns or creates the circuit breaker for host.
func (cbf *CircuitBreakerFetcher) getBreaker(host string) *circuit.Breaker {
	cbf.mu.RLock()
	breaker, exists := cbf.breakers[host]
	cbf.mu.RUnlock()

	if exists {
		return breaker
	}

	cbf.mu.Lock()
	defer cbf.mu.Unlock()

	if breaker, exists := cbf.breakers[host]; exists {
		return breaker
	}

	// trips after 5 consecutive failures
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	opts := &circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	}
	breaker = circuit.NewBreakerWithOptions(opts)

	cbf.breakers[host] = breaker
	return breaker
}

// call runs fn through the breaker of rawURL's host. Not found answers
// are returned to the caller but recorded as successes.
func (cbf *CircuitBreakerFetcher) call(rawURL string, fn func() error) error {
	host := extractHost(rawURL)
	breaker := cbf.getBreaker(host)

	if !breaker.Ready() {
		return fmt.Errorf("circuit breaker open for %s: %w", host, ErrUpstreamDown)
	}

	var notFound error
	err := breaker.Call(func() error {
		err := fn()
		if errors.Is(err, ErrNotFound) {
			notFound = err
			return nil
		}
		return err
	}, 0)
	if err != nil {
		return err
	}
	return notFound
}

// Fetch wraps the underlying fetcher's Fetch with circuit breaker logic.
func (cbf *CircuitBreakerFetcher) Fetch(ctx context.Context, fetchURL string) (*Artifact, error) {
	return cbf.FetchWithHeader(ctx, fetchURL, nil)
}

// FetchWithHeader wraps the underlying fetcher's FetchWithHeader with
// circuit breaker logic.
func (cbf *CircuitBreakerFetcher) FetchWithHeader(ctx context.Context, fetchURL string, header http.Header) (*Artifact, error) {
	var artifact *Artifact
	err := cbf.call(fetchURL, func() error {
		var fetchErr error
		artifact, fetchErr = cbf.fetcher.FetchWithHeader(ctx, fetchURL, header)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// Head wraps the underlying fetcher's Head with circuit breaker logic.
func (cbf *CircuitBreakerFetcher) Head(ctx context.Context, headURL string) (size int64, contentType string, err error) {
	err = cbf.call(headURL, func() error {
		var headErr error
		size, contentType, headErr = cbf.fetcher.Head(ctx, headURL)
		return headErr
	})
	return size, contentType, err
}

// Status wraps the underlying fetcher's Status with circuit breaker
// logic. Server errors count as failures.
func (cbf *CircuitBreakerFetcher) Status(ctx context.Context, statusURL string) (int, error) {
	var status int
	err := cbf.call(statusURL, func() error {
		var statusErr error
		status, statusErr = cbf.fetcher.Status(ctx, statusURL)
		if statusErr == nil && status >= 500 {
			return ErrUpstreamDown
		}
		return statusErr
	})
	if errors.Is(err, ErrUpstreamDown) && status >= 500 {
		return status, nil
	}
	return status, err
}

// extractHost extracts the upstream host from a URL for circuit breaker
// grouping.
func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}

// GetBreakerState returns the current state of circuit breakers (for health checks).
func (cbf *CircuitBreakerFetcher) GetBreakerState() map[string]string {
	cbf.mu.RLock()
	defer cbf.mu.RUnlock()

	states := make(map[string]string)
	for host, breaker := range cbf.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}
