package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Feed is a remote source listing the published versions of an artifact.
type Feed interface {
	// Name returns the name the feed is registered under.
	Name() string

	// FetchVersions returns the raw version literals published for the
	// artifact, in no particular order.
	FetchVersions(ctx context.Context, groupID, artifactID string) ([]string, error)
}

// Factory creates a feed for a given base URL.
type Factory func(baseURL string, client *Client) Feed

var (
	factories = make(map[string]Factory)
	defaults  = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a feed factory under name with its default base URL.
func Register(name string, defaultURL string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
	defaults[name] = defaultURL
}

// NewFeed creates the feed registered under name.
// If baseURL is empty, the default URL is used.
func NewFeed(name string, baseURL string, client *Client) (Feed, error) {
	mu.RLock()
	factory, ok := factories[name]
	defaultURL := defaults[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown feed: %s", name)
	}

	if baseURL == "" {
		baseURL = defaultURL
	}

	if client == nil {
		client = DefaultClient()
	}

	return factory(baseURL, client), nil
}

// SupportedFeeds returns all registered feed names, sorted.
func SupportedFeeds() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultURL returns the default base URL of a feed.
func DefaultURL(name string) string {
	mu.RLock()
	defer mu.RUnlock()
	return defaults[name]
}
