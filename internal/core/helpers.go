package core

import (
	"context"
	"sync"
)

const defaultConcurrency = 15

// FetchResult is the outcome of fetching one module's versions.
type FetchResult struct {
	Feed     string
	Versions []string
	Err      error
}

// BulkFetchVersions fetches the raw versions of every module that names a
// feed present in feeds. Modules without a usable feed are omitted.
// Returns a map of module name to result.
func BulkFetchVersions(ctx context.Context, modules []*Module, feeds map[string]Feed) map[string]FetchResult {
	return BulkFetchVersionsWithConcurrency(ctx, modules, feeds, defaultConcurrency)
}

// BulkFetchVersionsWithConcurrency fetches versions with a custom concurrency limit.
func BulkFetchVersionsWithConcurrency(ctx context.Context, modules []*Module, feeds map[string]Feed, concurrency int) map[string]FetchResult {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	results := make(map[string]FetchResult)
	var mu sync.Mutex
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, m := range modules {
		feed, ok := feeds[m.Feed]
		if m.Feed == "" || !ok {
			continue
		}

		wg.Add(1)
		go func(m *Module, feed Feed) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				results[m.Name] = FetchResult{Feed: feed.Name(), Err: ctx.Err()}
				mu.Unlock()
				return
			}

			versions, err := feed.FetchVersions(ctx, m.GroupID, m.ArtifactID)
			mu.Lock()
			results[m.Name] = FetchResult{Feed: feed.Name(), Versions: versions, Err: err}
			mu.Unlock()
		}(m, feed)
	}

	wg.Wait()
	return results
}
