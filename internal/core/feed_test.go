package core

import (
	"context"
	"slices"
	"testing"
)

type staticFeed struct {
	name     string
	baseURL  string
	versions []string
	err      error
}

func (f *staticFeed) Name() string { return f.name }

func (f *staticFeed) FetchVersions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	return f.versions, f.err
}

func TestRegisterAndNewFeed(t *testing.T) {
	Register("static-test", "https://feed.example", func(baseURL string, client *Client) Feed {
		return &staticFeed{name: "static-test", baseURL: baseURL}
	})

	if !slices.Contains(SupportedFeeds(), "static-test") {
		t.Errorf("SupportedFeeds() = %v, missing static-test", SupportedFeeds())
	}
	if got := DefaultURL("static-test"); got != "https://feed.example" {
		t.Errorf("DefaultURL = %q", got)
	}

	f, err := NewFeed("static-test", "", nil)
	if err != nil {
		t.Fatalf("NewFeed failed: %v", err)
	}
	if got := f.(*staticFeed).baseURL; got != "https://feed.example" {
		t.Errorf("baseURL = %q, want default", got)
	}

	f, _ = NewFeed("static-test", "http://localhost:1234", nil)
	if got := f.(*staticFeed).baseURL; got != "http://localhost:1234" {
		t.Errorf("baseURL = %q, want override", got)
	}

	if _, err := NewFeed("nonexistent", "", nil); err == nil {
		t.Error("expected error for unknown feed")
	}
}
