// Package sonatype provides a version feed backed by the Sonatype Nexus
// lucene search API.
package sonatype

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/reactor/docsproxy/internal/core"
)

const (
	DefaultURL = "https://s01.oss.sonatype.org"
	name       = "sonatype"
)

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
	TotalCount int           `json:"totalCount"`
	Data       []searchEntry `json:"data"`
}

type searchEntry struct {
	GroupID       string `json:"groupId"`
	ArtifactID    string `json:"artifactId"`
	Version       string `json:"version"`
	LatestRelease string `json:"latestRelease"`
}

// SearchURL returns the lucene search URL for an artifact.
func (f *Feed) SearchURL(groupID, artifactID string) string {
	q := url.Values{}
	q.Set("g", groupID)
	q.Set("a", artifactID)
	return f.baseURL + "/service/local/lucene/search?" + q.Encode()
}

// FetchVersions returns the versions of every search hit. Nexus may return
// hits for neighbouring coordinates; those are ignored.
func (f *Feed) FetchVersions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	var resp searchResponse
	if err := f.client.GetJSON(ctx, f.SearchURL(groupID, artifactID), &resp); err != nil {
		var httpErr *core.HTTPError
		if errors.As(err, &httpErr) && httpErr.IsNotFound() {
			return nil, &core.NotFoundError{Module: groupID + ":" + artifactID}
		}
		return nil, err
	}

	versions := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.Version == "" {
			continue
		}
		if (d.GroupID != "" && d.GroupID != groupID) || (d.ArtifactID != "" && d.ArtifactID != artifactID) {
			continue
		}
		versions = append(versions, d.Version)
	}
	return versions, nil
}
