// Package resolve turns a requested module and version specifier into the
// concrete module and version to serve.
package resolve

import (
	"regexp"
	"strings"

	"github.com/reactor/docsproxy/client"
	"github.com/reactor/docsproxy/internal/core"
	"github.com/reactor/docsproxy/version"
)

// Symbolic version specifiers.
const (
	SpecRelease   = "RELEASE"
	SpecMilestone = "MILESTONE"
	SpecSnapshot  = "SNAPSHOT"
)

var (
	milestoneSuffix = regexp.MustCompile(`^.*[.-]M[0-9]+$`)
	rcSuffix        = regexp.MustCompile(`^.*[.-]RC[0-9]+$`)
	bareRelease     = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+$`)
)

// Resolve returns the newest version of module matching spec, trying
// module first and then its archive module. It returns a
// *core.NotFoundError when neither has a match.
func Resolve(reg *core.Registry, module, spec string) (*core.Module, version.Version, error) {
	for _, m := range reg.Lookup(module) {
		if v, ok := Find(m, spec); ok {
			return m, v, nil
		}
	}
	return nil, version.Version{}, &core.NotFoundError{Module: module, Version: spec}
}

// Find returns the first version of m, newest first, matching spec.
func Find(m *core.Module, spec string) (version.Version, bool) {
	upper := strings.ToUpper(spec)
	for _, v := range m.Versions() {
		if Matches(v.String(), upper) {
			return v, true
		}
	}
	return version.Version{}, false
}

// Matches reports whether the version literal satisfies spec. Both are
// compared case-insensitively. Release candidates count as milestones.
func Matches(literal, spec string) bool {
	literal = strings.ToUpper(literal)
	spec = strings.ToUpper(spec)

	switch spec {
	case SpecMilestone:
		return milestoneSuffix.MatchString(literal) || rcSuffix.MatchString(literal)
	case SpecSnapshot:
		return strings.HasSuffix(literal, "-SNAPSHOT")
	case SpecRelease:
		return strings.HasSuffix(literal, ".RELEASE") || bareRelease.MatchString(literal)
	default:
		return literal == spec
	}
}

// ClassifyRepository returns the repository classification a version or
// symbolic specifier is published under. Anything unrecognised is a
// release.
func ClassifyRepository(spec string) string {
	v := strings.ToUpper(spec)
	switch {
	case strings.HasSuffix(v, SpecRelease):
		return client.RepositoryRelease
	case strings.HasSuffix(v, SpecSnapshot):
		return client.RepositorySnapshot
	case v == SpecMilestone || milestoneSuffix.MatchString(v):
		return client.RepositoryMilestone
	case rcSuffix.MatchString(v):
		return client.RepositoryMilestone
	default:
		return client.RepositoryRelease
	}
}

// Repository returns the repository classification to build URLs for a
// request of spec against module m. A repository pinned on the module wins.
func Repository(m *core.Module, spec string) string {
	if m.Repository != "" {
		return m.Repository
	}
	return ClassifyRepository(spec)
}
