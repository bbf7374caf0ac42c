package core

import (
	"fmt"

	packageurl "github.com/package-url/packageurl-go"
)

// PURL wraps packageurl.PackageURL with module helpers.
type PURL struct {
	packageurl.PackageURL
}

// Coordinates returns the Maven group and artifact ids.
func (p PURL) Coordinates() (groupID, artifactID string) {
	return p.Namespace, p.Name
}

// ParsePURL parses a Maven Package URL, with or without version.
func ParsePURL(purl string) (*PURL, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return nil, err
	}
	if p.Type != packageurl.TypeMaven {
		return nil, fmt.Errorf("unsupported package type %q: only maven is documented", p.Type)
	}
	return &PURL{p}, nil
}

// PURL returns the Package URL of the module, with version if not empty.
// The repository classification, if pinned, is kept as a qualifier.
func (m *Module) PURL(version string) string {
	var qualifiers packageurl.Qualifiers
	if m.Repository != "" {
		qualifiers = packageurl.QualifiersFromMap(map[string]string{"repository": m.Repository})
	}
	return packageurl.NewPackageURL(packageurl.TypeMaven, m.GroupID, m.ArtifactID, version, qualifiers, "").ToString()
}

// LookupPURL finds the module matching a Maven Package URL. The returned
// spec is the PURL version, or "release" when it has none.
func (r *Registry) LookupPURL(purl string) (*Module, string, error) {
	p, err := ParsePURL(purl)
	if err != nil {
		return nil, "", err
	}
	m, err := r.FindByCoordinates(p.Coordinates())
	if err != nil {
		return nil, "", err
	}
	spec := p.Version
	if spec == "" {
		spec = "release"
	}
	return m, spec, nil
}
