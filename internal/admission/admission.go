// Package admission implements the publish notification workflow that adds
// a newly released version to a module once its documentation archive
// exists upstream.
package admission

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/reactor/docsproxy/client"
	"github.com/reactor/docsproxy/internal/core"
	"github.com/reactor/docsproxy/internal/resolve"
	"github.com/reactor/docsproxy/version"
)

// Outcome is the result of an admission request.
type Outcome int

const (
	// BadRequest: unknown module or invalid version literal.
	BadRequest Outcome = iota
	// NoContent: the version is already known.
	NoContent
	// Created: the version was verified upstream and added.
	Created
	// Forbidden: the archive could not be verified upstream.
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case NoContent:
		return "no_content"
	case Created:
		return "created"
	case Forbidden:
		return "forbidden"
	default:
		return "bad_request"
	}
}

// StatusCode returns the HTTP status reported for the outcome.
func (o Outcome) StatusCode() int {
	switch o {
	case NoContent:
		return http.StatusNoContent
	case Created:
		return http.StatusCreated
	case Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// RemoteCheck returns the HTTP status of url. An error means the check
// could not be completed.
type RemoteCheck func(ctx context.Context, url string) (int, error)

// Admitter runs admissions against a registry.
type Admitter struct {
	registry *core.Registry
	urls     client.URLBuilder
	check    RemoteCheck
	logger   *log.Logger
}

// Option configures an Admitter.
type Option func(*Admitter)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Admitter) {
		a.logger = l
	}
}

// New creates an Admitter verifying archives with check.
func New(reg *core.Registry, urls client.URLBuilder, check RemoteCheck, opts ...Option) *Admitter {
	a := &Admitter{
		registry: reg,
		urls:     urls,
		check:    check,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Admit adds literal to the named module if its javadoc archive is
// reachable upstream. Invalid requests never reach the network.
func (a *Admitter) Admit(ctx context.Context, moduleName, literal string) Outcome {
	m, ok := a.registry.Get(moduleName)
	if !ok || literal == "" {
		return BadRequest
	}
	v, err := version.Parse(literal)
	if err != nil {
		a.logger.Warn("rejecting unparseable version", "module", moduleName, "version", literal, "err", err)
		return BadRequest
	}
	if m.HasVersion(literal) {
		return NoContent
	}

	url, err := ArchiveURL(a.urls, m, v)
	if err != nil {
		a.logger.Warn("cannot build archive url", "module", moduleName, "version", literal, "err", err)
		return Forbidden
	}

	status, err := a.check(ctx, url)
	if err != nil {
		a.logger.Warn("archive check failed", "module", moduleName, "version", literal, "url", url, "err", err)
		return Forbidden
	}
	if status != http.StatusOK {
		a.logger.Info("archive not available yet", "module", moduleName, "version", literal, "url", url, "status", status)
		return Forbidden
	}

	if !m.AddVersion(literal) {
		// a concurrent admission got there first
		return NoContent
	}
	a.logger.Info("admitted version", "module", moduleName, "version", literal)
	return Created
}

// ArchiveURL returns the URL of the javadoc archive of v for module m.
func ArchiveURL(urls client.URLBuilder, m *core.Module, v version.Version) (string, error) {
	req := client.Request{
		Path:       "/docs/" + m.Name + "/" + v.String() + "/api/",
		Repository: resolve.Repository(m, v.String()),
		Module:     m.Name,
		Version:    v.String(),
	}
	a := client.Artifact{Module: m.Name, GroupID: m.GroupID, ArtifactID: m.ArtifactID}
	u, err := urls.Build(req, a, v)
	if err != nil {
		return "", err
	}
	return client.ArchiveRoot(u), nil
}

// Admit is a convenience wrapper creating a one-off Admitter.
func Admit(ctx context.Context, reg *core.Registry, urls client.URLBuilder, moduleName, literal string, check RemoteCheck) Outcome {
	return New(reg, urls, check).Admit(ctx, moduleName, literal)
}
