package core

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/reactor/docsproxy/version"
)

// Module is a documented artifact and its known versions.
//
// The version list is an immutable snapshot replaced atomically, so readers
// never lock. Writers serialise on a per-module mutex and always publish a
// sorted, deduplicated list.
type Module struct {
	Name       string
	GroupID    string
	ArtifactID string
	Feed       string
	Repository string

	floor       *semver.Constraints
	floorRaw    string
	badVersions map[string]struct{}
	badOrdered  []string

	mu       sync.Mutex
	versions atomic.Pointer[[]version.Version]
	logger   *log.Logger
}

// NewModule creates a module without versions from a bootstrap entry.
// Its Versions are not loaded; see Registry.Add.
func NewModule(entry ModuleEntry, logger *log.Logger) (*Module, error) {
	if entry.Name == "" {
		return nil, fmt.Errorf("module entry without name")
	}
	m := &Module{
		Name:       entry.Name,
		GroupID:    entry.GroupID,
		ArtifactID: entry.ArtifactID,
		Feed:       entry.Feed,
		Repository: entry.Repository,
		logger:     logger,
	}
	if entry.VersionFloor != "" {
		c, err := semver.NewConstraint(entry.VersionFloor)
		if err != nil {
			return nil, fmt.Errorf("module %s: invalid version floor %q: %w", entry.Name, entry.VersionFloor, err)
		}
		m.floor = c
		m.floorRaw = entry.VersionFloor
	}
	m.setBadVersions(entry.BadVersions)
	empty := []version.Version{}
	m.versions.Store(&empty)
	return m, nil
}

func (m *Module) log() *log.Logger {
	if m.logger == nil {
		return log.Default()
	}
	return m.logger
}

// setBadVersions deduplicates and reverse-sorts the bad versions.
func (m *Module) setBadVersions(bad []string) {
	m.badVersions = make(map[string]struct{}, len(bad))
	for _, b := range bad {
		m.badVersions[b] = struct{}{}
	}
	m.badOrdered = make([]string, 0, len(m.badVersions))
	for b := range m.badVersions {
		m.badOrdered = append(m.badOrdered, b)
	}
	slices.Sort(m.badOrdered)
	slices.Reverse(m.badOrdered)
}

// BadVersions returns the excluded literals, reverse sorted.
func (m *Module) BadVersions() []string {
	return slices.Clone(m.badOrdered)
}

// IsBadVersion reports whether literal is explicitly excluded.
func (m *Module) IsBadVersion(literal string) bool {
	_, ok := m.badVersions[literal]
	return ok
}

// VersionFloor returns the generation floor constraint, or "".
func (m *Module) VersionFloor() string {
	return m.floorRaw
}

// AboveFloor reports whether v satisfies the module's generation floor.
// Modules without a floor accept every version.
func (m *Module) AboveFloor(v version.Version) bool {
	if m.floor == nil {
		return true
	}
	sv := semver.New(uint64(v.Major), uint64(v.Minor), uint64(v.Patch), "", "")
	return m.floor.Check(sv)
}

// Versions returns the current snapshot, newest first. Callers must not
// modify it.
func (m *Module) Versions() []version.Version {
	return *m.versions.Load()
}

// VersionStrings returns the literals of the current snapshot.
func (m *Module) VersionStrings() []string {
	vs := m.Versions()
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

// HasVersion reports whether literal is in the current snapshot.
func (m *Module) HasVersion(literal string) bool {
	return slices.ContainsFunc(m.Versions(), func(v version.Version) bool {
		return v.String() == literal
	})
}

// Update applies fn to a copy of the version list and publishes the result
// sorted and deduplicated. Concurrent updates of the same module are
// serialised.
func (m *Module) Update(fn func(l *VersionList)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.newList(slices.Clone(m.Versions()))
	fn(l)
	l.SortAndDeduplicate()
	published := l.items
	m.versions.Store(&published)
}

// AddVersion parses literal and adds it to the module. Unparseable literals
// are logged and skipped. It reports whether the version list changed.
func (m *Module) AddVersion(literal string) bool {
	added := false
	m.Update(func(l *VersionList) {
		if l.Contains(literal) {
			return
		}
		before := l.Len()
		l.AddVersion(literal)
		added = l.Len() > before
	})
	return added
}

// ReplaceVersions replaces the whole version list with raw, applying
// TryAddVersion to every literal. It returns the number of versions kept.
func (m *Module) ReplaceVersions(raw []string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.newList(make([]version.Version, 0, len(raw)))
	for _, literal := range raw {
		TryAddVersion(m, l, literal)
	}
	l.SortAndDeduplicate()
	published := l.items
	m.versions.Store(&published)
	return len(published)
}

func (m *Module) newList(items []version.Version) *VersionList {
	return &VersionList{items: items, module: m.Name, logger: m.log()}
}

func (m *Module) String() string {
	return fmt.Sprintf("Module{name=%s, groupId=%s, artifactId=%s, versions=%v}",
		m.Name, m.GroupID, m.ArtifactID, m.VersionStrings())
}

// TryAddVersion adds literal to l unless the module excludes it: bad
// versions, unparseable literals, versions below the generation floor and
// versions carrying a custom qualifier are skipped.
func TryAddVersion(m *Module, l *VersionList, literal string) bool {
	if m.IsBadVersion(literal) {
		return false
	}
	v, err := version.Parse(literal)
	if err != nil {
		m.log().Warn("unable to parse version", "module", m.Name, "version", literal, "err", err)
		return false
	}
	if !m.AboveFloor(v) || v.CustomQualifier != "" {
		return false
	}
	l.Add(v)
	return true
}

// VersionList is an unsynchronised list used to stage changes to a
// module's versions.
type VersionList struct {
	items  []version.Version
	module string
	logger *log.Logger
}

// NewVersionList creates an empty list. logger may be nil.
func NewVersionList(module string, logger *log.Logger) *VersionList {
	if logger == nil {
		logger = log.Default()
	}
	return &VersionList{module: module, logger: logger}
}

// AddVersion parses and appends literal. Parse failures are logged and
// skipped.
func (l *VersionList) AddVersion(literal string) *VersionList {
	v, err := version.Parse(literal)
	if err != nil {
		l.logger.Warn("unable to parse version", "module", l.module, "version", literal, "err", err)
		return l
	}
	l.items = append(l.items, v)
	return l
}

// Add appends an already parsed version.
func (l *VersionList) Add(v version.Version) *VersionList {
	l.items = append(l.items, v)
	return l
}

// Sort orders the list newest first. Duplicates are kept.
func (l *VersionList) Sort() *VersionList {
	slices.SortStableFunc(l.items, func(a, b version.Version) int {
		return version.Compare(b, a)
	})
	return l
}

// SortAndDeduplicate orders the list newest first and drops repeated
// literals. Distinct literals that compare equal are both kept.
func (l *VersionList) SortAndDeduplicate() *VersionList {
	l.Sort()
	seen := make(map[string]struct{}, len(l.items))
	out := l.items[:0]
	for _, v := range l.items {
		if _, dup := seen[v.String()]; dup {
			continue
		}
		seen[v.String()] = struct{}{}
		out = append(out, v)
	}
	l.items = out
	return l
}

// Contains reports whether literal is in the list.
func (l *VersionList) Contains(literal string) bool {
	return slices.ContainsFunc(l.items, func(v version.Version) bool {
		return v.String() == literal
	})
}

// Len returns the number of entries.
func (l *VersionList) Len() int {
	return len(l.items)
}

// Versions returns the entries. The slice is shared with the list.
func (l *VersionList) Versions() []version.Version {
	return l.items
}

// Strings returns the literals of the entries.
func (l *VersionList) Strings() []string {
	out := make([]string, len(l.items))
	for i, v := range l.items {
		out[i] = v.String()
	}
	return out
}
