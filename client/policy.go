package client

import (
	"github.com/reactor/docsproxy/version"
)

// versionPredicate selects a range of historical versions.
type versionPredicate func(v version.Version) bool

// kdocPublished matches the core/extra/test lines that shipped Kotlin docs
// inside the main artifacts (3.0 to 3.2, before the Dysprosium train).
func kdocPublished(v version.Version) bool {
	return v.InMajorMinor(3, 0) || v.InMajorMinor(3, 1) || v.InMajorMinor(3, 2)
}

func firstKotlinRelease(v version.Version) bool {
	return v.String() == "1.0.0.RELEASE"
}

func not(p versionPredicate) versionPredicate {
	return func(v version.Version) bool { return !p(v) }
}

// noKDoc lists, per module, the versions for which Kotlin docs were never
// published.
var noKDoc = map[string]versionPredicate{
	"core":   not(kdocPublished),
	"extra":  not(kdocPublished),
	"test":   not(kdocPublished),
	"kotlin": firstKotlinRelease,
}

// withKDoc lists, per module, the versions advertised as having Kotlin docs.
var withKDoc = map[string]versionPredicate{
	"core":   kdocPublished,
	"extra":  kdocPublished,
	"test":   kdocPublished,
	"kotlin": not(firstKotlinRelease),
}

// oldReferenceFormat lists, per module, the versions whose reference guide
// was published as <artifactId>-docs-<version>.zip.
var oldReferenceFormat = map[string]versionPredicate{
	"core": func(v version.Version) bool {
		return v.InMajorMinor(3, 0) ||
			v.InMajorMinor(3, 1) ||
			(v.InMajorMinor(3, 2) && v.Patch <= 12) ||
			(v.InMajorMinor(3, 3) && v.Patch == 0)
	},
	"netty": func(v version.Version) bool {
		return (v.InMajorMinor(0, 8) && v.Patch <= 9) ||
			(v.InMajorMinor(0, 9) && v.Patch < 2)
	},
	"kafka": func(v version.Version) bool {
		return v.InMajorMinor(1, 0) ||
			(v.InMajorMinor(1, 1) && v.Patch <= 1) ||
			(v.InMajorMinor(1, 2) && v.Patch == 0)
	},
	"rabbitmq": func(v version.Version) bool {
		return v.InMajorMinor(1, 0) ||
			v.InMajorMinor(1, 1) ||
			v.InMajorMinor(1, 2) ||
			v.InMajorMinor(1, 3) ||
			(v.InMajorMinor(1, 4) && v.IsBefore(1, 4, 0, version.Release))
	},
}

// KDocUnavailable reports whether module never published Kotlin docs for v.
func KDocUnavailable(module string, v version.Version) bool {
	p, ok := noKDoc[module]
	return ok && p(v)
}

// HasKDoc reports whether Kotlin docs should be advertised for module v.
// Modules without an entry have none.
func HasKDoc(module string, v version.Version) bool {
	p, ok := withKDoc[module]
	return ok && p(v)
}

// OldReferenceFormat reports whether the reference guide of module v uses
// the old archive naming.
func OldReferenceFormat(module string, v version.Version) bool {
	p, ok := oldReferenceFormat[module]
	return ok && p(v)
}

// RefDocPath returns the site path of the reference guide for module v, or
// "" when the module has no reference guide of its own.
func RefDocPath(module string, v version.Version) string {
	switch module {
	case "core", "kafka", "rabbitmq":
		return "/docs/" + module + "/" + v.String() + "/reference"
	case "test":
		// the testing chapter lives in the core guide
		return "/docs/core/" + v.String() + "/reference/index.html#testing"
	case "netty":
		if v.IsAfter(0, 9, 0, version.Snapshot) {
			return "/docs/netty/" + v.String() + "/reference"
		}
	}
	return ""
}

// coordinateSuffix is appended to the artifact id in the coordinate
// directory and the file name. kafka 1.0.0.M1 published its guide under a
// separate "-docs" artifact.
func coordinateSuffix(module string, v version.Version, c Category) string {
	if c == ReferenceGuide && module == "kafka" && v.String() == "1.0.0.M1" {
		return "-docs"
	}
	return ""
}
