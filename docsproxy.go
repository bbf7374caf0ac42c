// Package docsproxy locates the documentation archives of Reactor modules.
//
// Documentation requests name a module and a version, either exact
// ("3.1.0.RELEASE") or symbolic ("release", "milestone", "snapshot"). They
// are resolved against a registry of known module versions, falling back
// to the module's archive entry, and turned into the URL of the archive
// entry on the upstream repositories.
//
// Basic usage:
//
//	import (
//		"github.com/reactor/docsproxy"
//		_ "github.com/reactor/docsproxy/all"
//	)
//
//	entries, err := docsproxy.LoadModules("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	reg, err := docsproxy.Load(entries)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	info, err := docsproxy.Locate(reg, nil, "core", "release", "/docs/core/release/api/")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(info.Version, info.URL)
//
// Version lists are refreshed from remote feeds registered by the all
// subpackage.
package docsproxy

import (
	"context"

	"github.com/reactor/docsproxy/client"
	"github.com/reactor/docsproxy/fetch"
	"github.com/reactor/docsproxy/internal/admission"
	"github.com/reactor/docsproxy/internal/config"
	"github.com/reactor/docsproxy/internal/core"
	"github.com/reactor/docsproxy/version"
)

// Re-export types from internal/core
type (
	// Registry holds every documented module by name.
	Registry = core.Registry

	// Module is a documented artifact and its known versions.
	Module = core.Module

	// ModuleEntry is the bootstrap description of a module.
	ModuleEntry = core.ModuleEntry

	// Feed is the interface implemented by remote version feeds.
	Feed = core.Feed

	// FetchResult is the outcome of fetching the versions of one module.
	FetchResult = core.FetchResult
)

// Re-export types from client and fetch
type (
	// Client is an HTTP client with retry logic for feed APIs.
	Client = client.Client

	// URLBuilder constructs documentation archive URLs.
	URLBuilder = client.URLBuilder

	// Hosts are the upstream repositories archives are served from.
	Hosts = client.Hosts

	// Version is a parsed module version.
	Version = version.Version

	// ArtifactInfo describes the archive entry serving a request.
	ArtifactInfo = fetch.ArtifactInfo

	// Outcome is the result of an admission request.
	Outcome = admission.Outcome

	// RemoteCheck returns the HTTP status of an archive URL.
	RemoteCheck = admission.RemoteCheck
)

// Admission outcomes.
const (
	BadRequest = admission.BadRequest
	NoContent  = admission.NoContent
	Created    = admission.Created
	Forbidden  = admission.Forbidden
)

// Re-export errors
var (
	ErrNotFound = client.ErrNotFound
	ErrNoKDoc   = client.ErrNoKDoc
)

// Error types
type (
	HTTPError            = client.HTTPError
	NotFoundError        = core.NotFoundError
	KDocUnavailableError = client.KDocUnavailableError
	ParseError           = version.ParseError
)

// ParseVersion parses a version literal in any supported scheme.
func ParseVersion(s string) (Version, error) {
	return version.Parse(s)
}

// LoadModules reads module entries from a multi-document YAML file. An
// empty path loads the built-in modules.
func LoadModules(path string) ([]ModuleEntry, error) {
	return config.LoadModules(path)
}

// Load builds a registry from bootstrap entries.
func Load(entries []ModuleEntry) (*Registry, error) {
	return core.Load(entries)
}

// NewDocURLs returns the default URLBuilder for hosts. Empty fields fall
// back to DefaultHosts.
func NewDocURLs(h Hosts) URLBuilder {
	return client.NewDocURLs(h)
}

// DefaultHosts returns the public upstream repositories.
func DefaultHosts() Hosts {
	return client.DefaultHosts()
}

// Locate resolves a documentation request for module at spec and returns
// the archive entry serving path. A nil urls uses the default hosts.
//
// It returns an error matching ErrNotFound when no version matches, and
// one matching ErrNoKDoc when Kotlin docs were never published for the
// resolved version.
func Locate(reg *Registry, urls URLBuilder, module, spec, path string) (*ArtifactInfo, error) {
	return fetch.NewResolver(reg, urls).Resolve(module, spec, path)
}

// LocatePURL is like Locate for the module and version named by a Maven
// Package URL. A PURL without version locates the latest release.
func LocatePURL(reg *Registry, urls URLBuilder, purl, path string) (*ArtifactInfo, error) {
	m, spec, err := reg.LookupPURL(purl)
	if err != nil {
		return nil, err
	}
	return Locate(reg, urls, m.Name, spec, path)
}

// Admit adds literal to module once check confirms its javadoc archive is
// published.
func Admit(ctx context.Context, reg *Registry, urls URLBuilder, module, literal string, check RemoteCheck) Outcome {
	if urls == nil {
		urls = client.NewDocURLs(client.DefaultHosts())
	}
	return admission.Admit(ctx, reg, urls, module, literal, check)
}

// BuildURLs returns the URL of every documentation category available for
// a version, keyed by "api", "reference" and "kdoc-api".
func BuildURLs(urls URLBuilder, repository string, m *Module, v Version) map[string]string {
	a := client.Artifact{Module: m.Name, GroupID: m.GroupID, ArtifactID: m.ArtifactID}
	return client.BuildURLs(urls, repository, a, v)
}

// DefaultClient returns a client with a 30s timeout and 3 retries with
// exponential backoff on 429 and 5xx responses.
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...Option) *Client {
	return client.NewClient(opts...)
}

// Option configures a Client.
type Option = client.Option

// WithTimeout sets the HTTP client timeout.
var WithTimeout = client.WithTimeout

// WithMaxRetries sets the maximum number of retries.
var WithMaxRetries = client.WithMaxRetries

// NewFeed creates the version feed registered under name.
// If baseURL is empty, the feed's default URL is used.
// If c is nil, DefaultClient() is used.
func NewFeed(name, baseURL string, c *Client) (Feed, error) {
	return core.NewFeed(name, baseURL, c)
}

// SupportedFeeds returns all registered feed names.
// Note: feeds must be imported to be registered.
func SupportedFeeds() []string {
	return core.SupportedFeeds()
}

// DefaultURL returns the default base URL of a feed.
func DefaultURL(feed string) string {
	return core.DefaultURL(feed)
}

// BulkFetchVersions fetches the versions of every module with a feed in
// parallel. feeds is keyed by feed name.
func BulkFetchVersions(ctx context.Context, modules []*Module, feeds map[string]Feed) map[string]FetchResult {
	return core.BulkFetchVersions(ctx, modules, feeds)
}
