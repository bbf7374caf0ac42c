// Package refresh periodically replaces module version lists with the
// versions published on their feeds.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/reactor/docsproxy/internal/core"
	"github.com/reactor/docsproxy/internal/metrics"
)

// Refresher refreshes every module of a registry that names a feed.
type Refresher struct {
	registry    *core.Registry
	feeds       map[string]core.Feed
	concurrency int
	logger      *log.Logger
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithConcurrency bounds the number of feeds queried at once.
func WithConcurrency(n int) Option {
	return func(r *Refresher) {
		r.concurrency = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Refresher) {
		r.logger = l
	}
}

// New creates a Refresher using feeds, keyed by feed name.
func New(reg *core.Registry, feeds map[string]core.Feed, opts ...Option) *Refresher {
	r := &Refresher{
		registry:    reg,
		feeds:       feeds,
		concurrency: 4,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FeedsFor instantiates every feed named by a module of reg. baseURL
// returns the configured base URL of a feed, or "" for its default.
func FeedsFor(reg *core.Registry, baseURL func(name string) string, client *core.Client) (map[string]core.Feed, error) {
	feeds := make(map[string]core.Feed)
	for _, m := range reg.Modules() {
		if m.Feed == "" || feeds[m.Feed] != nil {
			continue
		}
		f, err := core.NewFeed(m.Feed, baseURL(m.Feed), client)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", m.Name, err)
		}
		feeds[m.Feed] = f
	}
	return feeds, nil
}

// Result summarises one refresh round.
type Result struct {
	Updated map[string]int
	Failed  map[string]error
}

// RefreshAll fetches the versions of every module with a feed and replaces
// its version list. A failed or empty fetch keeps the current list.
func (r *Refresher) RefreshAll(ctx context.Context) Result {
	res := Result{
		Updated: make(map[string]int),
		Failed:  make(map[string]error),
	}

	fetched := core.BulkFetchVersionsWithConcurrency(ctx, r.registry.Modules(), r.feeds, r.concurrency)
	for name, fr := range fetched {
		err := fr.Err
		if err == nil && len(fr.Versions) == 0 {
			err = fmt.Errorf("feed %s returned no versions", fr.Feed)
		}
		if err != nil {
			r.logger.Warn("couldn't refresh versions", "module", name, "feed", fr.Feed, "err", err)
			res.Failed[name] = err
			metrics.ObserveRefresh(name, 0, err)
			continue
		}

		kept, err := r.registry.ReplaceVersions(name, fr.Versions)
		if err != nil {
			res.Failed[name] = err
			metrics.ObserveRefresh(name, 0, err)
			continue
		}
		r.logger.Debug("refreshed versions", "module", name, "feed", fr.Feed, "fetched", len(fr.Versions), "kept", kept)
		res.Updated[name] = kept
		metrics.ObserveRefresh(name, kept, nil)
	}

	r.logger.Info("refreshed module versions", "updated", len(res.Updated), "failed", len(res.Failed))
	return res
}

// Run refreshes immediately and then every interval until ctx is done.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", interval)
	}

	r.RefreshAll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.RefreshAll(ctx)
		}
	}
}
