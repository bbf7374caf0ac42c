package fetch

import (
	"strings"

	"github.com/reactor/docsproxy/client"
	"github.com/reactor/docsproxy/internal/core"
	"github.com/reactor/docsproxy/internal/resolve"
	"github.com/reactor/docsproxy/version"
)

// Resolver determines the upstream URL of documentation requests.
type Resolver struct {
	registry *core.Registry
	urls     client.URLBuilder
}

// NewResolver creates a resolver reading reg. A nil urls uses DocURLs for
// the default hosts.
func NewResolver(reg *core.Registry, urls client.URLBuilder) *Resolver {
	if urls == nil {
		urls = client.NewDocURLs(client.DefaultHosts())
	}
	return &Resolver{registry: reg, urls: urls}
}

// ArtifactInfo describes the archive entry serving a request.
type ArtifactInfo struct {
	URL        string
	Filename   string
	Module     *core.Module
	Version    version.Version
	Repository string
	Category   client.Category
}

// Resolve returns the archive entry for a request path naming module and
// spec as typed. It returns an error matching ErrNotFound when nothing
// matches, or a *client.KDocUnavailableError when Kotlin docs were never
// published for the resolved version.
func (r *Resolver) Resolve(moduleName, spec, path string) (*ArtifactInfo, error) {
	m, v, err := resolve.Resolve(r.registry, moduleName, spec)
	if err != nil {
		return nil, err
	}

	req := client.Request{
		Path:       path,
		Repository: resolve.Repository(m, spec),
		Module:     moduleName,
		Version:    spec,
	}
	a := client.Artifact{Module: m.Name, GroupID: m.GroupID, ArtifactID: m.ArtifactID}
	url, err := r.urls.Build(req, a, v)
	if err != nil {
		return nil, err
	}

	return &ArtifactInfo{
		URL:        url,
		Filename:   filenameFromURL(client.ArchiveRoot(url)),
		Module:     m,
		Version:    v,
		Repository: req.Repository,
		Category:   client.CategoryOf(client.NormalizePath(path)),
	}, nil
}

func filenameFromURL(url string) string {
	if idx := strings.LastIndex(url, "/"); idx >= 0 {
		return url[idx+1:]
	}
	return url
}
