// Package artifactory provides a version feed backed by the Artifactory
// version search API.
package artifactory

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/reactor/docsproxy/internal/core"
)

const (
	DefaultURL = "https://repo.spring.io"
	name       = "artifactory"
)

// Repositories searched for versions.
const Repositories = "snapshot,milestone,release"

func init() {
	core.Register(name, DefaultURL, func(baseURL string, client *core.Client) core.Feed {
		return New(baseURL, client)
	})
}

type Feed struct {
	baseURL string
	client  *core.Client
}

func New(baseURL string, client *core.Client) *Feed {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if client == nil {
		client = core.DefaultClient()
	}
	return &Feed{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (f *Feed) Name() string {
	return name
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Version     string `json:"version"`
	Integration bool   `json:"integration"`
}

// SearchURL returns the version search URL for an artifact.
func (f *Feed) SearchURL(groupID, artifactID string) string {
	q := url.Values{}
	q.Set("g", groupID)
	q.Set("a", artifactID)
	q.Set("repos", Repositories)
	return f.baseURL + "/api/search/versions?" + q.Encode()
}

func (f *Feed) FetchVersions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	var resp searchResponse
	if err := f.client.GetJSON(ctx, f.SearchURL(groupID, artifactID), &resp); err != nil {
		var httpErr *core.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Module: groupID + ":" + artifactID}
		}
		return nil, err
	}

	versions := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Version != "" {
			versions = append(versions, r.Version)
		}
	}
	return versions, nil
}
