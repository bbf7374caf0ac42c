// Package core holds the module version registry and the registration of
// remote version feeds.
package core

// ModuleEntry is the bootstrap description of a module, as found in
// modules.yml.
type ModuleEntry struct {
	Name       string `yaml:"name"`
	GroupID    string `yaml:"groupId"`
	ArtifactID string `yaml:"artifactId"`

	// Feed names the remote version feed refreshing this module. Empty
	// means the version list only changes through admission.
	Feed string `yaml:"feed,omitempty"`

	// VersionFloor is a constraint such as ">= 3.0.0". Versions from a
	// feed that do not satisfy it are ignored.
	VersionFloor string `yaml:"versionFloor,omitempty"`

	// Repository pins the repository classification used to build URLs,
	// for modules whose archives only exist in one place.
	Repository string `yaml:"repository,omitempty"`

	Versions    []string `yaml:"versions,omitempty"`
	BadVersions []string `yaml:"badVersions,omitempty"`
}

// ArchiveSuffix is appended to a module name to find the module holding
// its older versions.
const ArchiveSuffix = "Archive"
