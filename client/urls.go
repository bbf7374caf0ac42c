package client

import (
	"fmt"
	"strings"

	"github.com/reactor/docsproxy/version"
)

// Repository classifications served from the mutable repository host.
const (
	RepositoryRelease   = "release"
	RepositoryMilestone = "milestone"
	RepositorySnapshot  = "snapshot"
)

const (
	mutableSeparator = "!/"
	archiveSeparator = "/!/"
)

// Category is the kind of documentation a request path addresses.
type Category int

const (
	Javadoc Category = iota
	KDoc
	ReferenceGuide
)

func (c Category) String() string {
	switch c {
	case Javadoc:
		return "api"
	case KDoc:
		return "kdoc-api"
	default:
		return "reference"
	}
}

// layout describes where a category's archive lives and how its entries are
// addressed. offset is the length of the fixed parts of
// /docs/<module>/<version>/<category>/.
type layout struct {
	offset      int
	defaultFile string
	extension   string
	rootDir     string
}

var layouts = map[Category]layout{
	Javadoc:        {offset: 12, defaultFile: "index.html", extension: "-javadoc.jar"},
	KDoc:           {offset: 17, extension: "-kdoc.zip"},
	ReferenceGuide: {offset: 18, defaultFile: "index.html", extension: "-docs.zip", rootDir: "docs/"},
}

// Artifact identifies the Maven coordinates of a documented module. Module
// is the registry name that selects historical exceptions.
type Artifact struct {
	Module     string
	GroupID    string
	ArtifactID string
}

// Request is an inbound documentation request. Module and Version are the
// tokens as typed in the path, used only to locate the sub-path.
type Request struct {
	Path       string
	Repository string
	Module     string
	Version    string
}

// URLBuilder constructs documentation archive URLs.
type URLBuilder interface {
	Build(req Request, a Artifact, v version.Version) (string, error)
}

// Hosts are the two upstream repositories documentation archives are
// served from.
type Hosts struct {
	// Mutable hosts one repository per classification, e.g.
	// https://repo.spring.io/release.
	Mutable string
	// Archive is the permanent archive used for any other classification.
	Archive string
}

// DefaultHosts returns the public upstream hosts.
func DefaultHosts() Hosts {
	return Hosts{
		Mutable: "https://repo.spring.io",
		Archive: "https://s01.oss.sonatype.org/service/local/repositories/releases/archive",
	}
}

// DocURLs is the default URLBuilder.
type DocURLs struct {
	hosts Hosts
}

// NewDocURLs creates a DocURLs for the given hosts. Empty fields fall back
// to DefaultHosts.
func NewDocURLs(h Hosts) *DocURLs {
	def := DefaultHosts()
	if h.Mutable == "" {
		h.Mutable = def.Mutable
	}
	if h.Archive == "" {
		h.Archive = def.Archive
	}
	h.Mutable = strings.TrimSuffix(h.Mutable, "/")
	h.Archive = strings.TrimSuffix(h.Archive, "/")
	return &DocURLs{hosts: h}
}

// NormalizePath appends a slash to a path ending exactly at a category root.
func NormalizePath(path string) string {
	if strings.HasSuffix(path, "/api") ||
		strings.HasSuffix(path, "/reference") ||
		strings.HasSuffix(path, "/kdoc-api") {
		return path + "/"
	}
	return path
}

// CategoryOf returns the documentation category of a normalized path.
func CategoryOf(path string) Category {
	switch {
	case strings.Contains(path, "/api/"):
		return Javadoc
	case strings.Contains(path, "/kdoc-api/"):
		return KDoc
	default:
		return ReferenceGuide
	}
}

// Base returns the repository base URL and the archive-entry separator for
// a repository classification.
func (b *DocURLs) Base(repository string) (base, separator string) {
	switch repository {
	case RepositoryRelease, RepositoryMilestone, RepositorySnapshot:
		return b.hosts.Mutable + "/" + repository, mutableSeparator
	default:
		return b.hosts.Archive, archiveSeparator
	}
}

// Build returns the URL of the archive entry addressed by req.
//
// It returns a *KDocUnavailableError when Kotlin docs were never published
// for the resolved version, and an error wrapping ErrNotFound when the path
// is too short to carry a sub-path.
func (b *DocURLs) Build(req Request, a Artifact, v version.Version) (string, error) {
	path := NormalizePath(req.Path)
	category := CategoryOf(path)
	l := layouts[category]

	if category == KDoc && KDocUnavailable(a.Module, v) {
		return "", &KDocUnavailableError{ArtifactID: a.ArtifactID, Version: v.String()}
	}

	start := l.offset + len(req.Module) + len(req.Version)
	if start > len(path) {
		return "", fmt.Errorf("path %q: %w", req.Path, ErrNotFound)
	}
	file := path[start:]

	switch category {
	case KDoc:
		// kdoc archives nest everything but the stylesheet under the artifact id
		if file == "" {
			file = a.ArtifactID + "/index.html"
		} else if file != "style.css" {
			file = a.ArtifactID + "/" + file
		}
	default:
		if file == "" {
			file = l.defaultFile
		}
	}

	dirSuffix := coordinateSuffix(a.Module, v, category)
	fileSuffix := dirSuffix
	extension := l.extension
	if category == ReferenceGuide && OldReferenceFormat(a.Module, v) {
		extension = ".zip"
		if fileSuffix == "" {
			fileSuffix = "-docs"
		}
	}

	base, sep := b.Base(req.Repository)
	var sb strings.Builder
	sb.WriteString(b.archivePath(base, a, v, dirSuffix, fileSuffix, extension))
	sb.WriteString(sep)
	sb.WriteString(l.rootDir)
	sb.WriteString(file)
	return sb.String(), nil
}

func (b *DocURLs) archivePath(base string, a Artifact, v version.Version, dirSuffix, fileSuffix, extension string) string {
	return base +
		"/" + strings.ReplaceAll(a.GroupID, ".", "/") +
		"/" + a.ArtifactID + dirSuffix +
		"/" + v.String() +
		"/" + a.ArtifactID + fileSuffix + "-" + v.String() + extension
}

// ArchiveRoot strips the archive-entry part of a URL built by DocURLs,
// leaving the URL of the archive itself.
func ArchiveRoot(url string) string {
	if i := strings.Index(url, archiveSeparator); i >= 0 {
		return url[:i]
	}
	if i := strings.Index(url, mutableSeparator); i >= 0 {
		return url[:i]
	}
	return url
}

// BuildURLs returns the URL of every documentation category available for
// a version, keyed by Category.String(). Categories that fail to build are
// omitted.
func BuildURLs(urls URLBuilder, repository string, a Artifact, v version.Version) map[string]string {
	result := make(map[string]string)
	for _, c := range []Category{Javadoc, ReferenceGuide, KDoc} {
		req := Request{
			Path:       "/docs/" + a.Module + "/" + v.String() + "/" + c.String(),
			Repository: repository,
			Module:     a.Module,
			Version:    v.String(),
		}
		if u, err := urls.Build(req, a, v); err == nil {
			result[c.String()] = u
		}
	}
	return result
}
