package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// Registry holds every documented module by name. It is safe for
// concurrent use; module version lists are swapped per module without
// locking the registry.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
	logger  *log.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for skipped versions.
func WithLogger(l *log.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		modules: make(map[string]*Module),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load builds a registry from bootstrap entries. Unparseable version
// literals are logged and skipped; an invalid entry fails the load.
func Load(entries []ModuleEntry, opts ...RegistryOption) (*Registry, error) {
	r := NewRegistry(opts...)
	for _, e := range entries {
		if _, err := r.Add(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a module from entry, replacing any module with the same
// name. The entry's versions are loaded as-is, only unparseable literals
// are skipped.
func (r *Registry) Add(entry ModuleEntry) (*Module, error) {
	m, err := NewModule(entry, r.logger)
	if err != nil {
		return nil, err
	}
	m.Update(func(l *VersionList) {
		for _, literal := range entry.Versions {
			l.AddVersion(literal)
		}
	})

	r.mu.Lock()
	r.modules[m.Name] = m
	r.mu.Unlock()
	return m, nil
}

// Get returns the module registered under name.
func (r *Registry) Get(name string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// Names returns the registered module names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Modules returns the registered modules sorted by name.
func (r *Registry) Modules() []*Module {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Module, 0, len(names))
	for _, name := range names {
		if m, ok := r.modules[name]; ok {
			out = append(out, m)
		}
	}
	return out
}

// ReplaceVersions bulk replaces the versions of the named module, applying
// the module's exclusion rules. It returns the number of versions kept.
func (r *Registry) ReplaceVersions(name string, raw []string) (int, error) {
	m, ok := r.Get(name)
	if !ok {
		return 0, &NotFoundError{Module: name}
	}
	return m.ReplaceVersions(raw), nil
}

// Lookup returns the module for name, falling back to its archive module.
func (r *Registry) Lookup(name string) []*Module {
	var out []*Module
	for _, n := range []string{name, name + ArchiveSuffix} {
		if m, ok := r.Get(n); ok {
			out = append(out, m)
		}
	}
	return out
}

// FindByCoordinates returns the first module, by name, with the given
// Maven coordinates.
func (r *Registry) FindByCoordinates(groupID, artifactID string) (*Module, error) {
	for _, m := range r.Modules() {
		if m.GroupID == groupID && m.ArtifactID == artifactID {
			return m, nil
		}
	}
	return nil, &NotFoundError{Module: fmt.Sprintf("%s:%s", groupID, artifactID)}
}
