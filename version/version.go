// Package version parses and orders the version literals published for
// documented modules over the years.
//
// Three schemes are recognized, tried in this order:
//
//   - codename release trains, e.g. "Aluminium-SR1" or "Dysprosium-BUILD-SNAPSHOT"
//   - Maven/Gradle style, e.g. "3.4.0", "3.4.0-M2", "3.4.0-SNAPSHOT"
//   - OSGi compatible style, e.g. "3.1.0.RELEASE", "3.2.0.BUILD-SNAPSHOT"
//
// A parsed Version keeps the literal it was parsed from. Ordering is
// "released more recently is greater".
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Qualifier is the level of availability of a version. The declaration
// order is the comparison order.
type Qualifier int

const (
	// Placeholder sorts below every real qualifier. Parse never produces it.
	Placeholder Qualifier = iota
	Milestone
	ReleaseCandidate
	Snapshot
	Release
)

func (q Qualifier) String() string {
	switch q {
	case Milestone:
		return "MILESTONE"
	case ReleaseCandidate:
		return "RELEASE_CANDIDATE"
	case Snapshot:
		return "SNAPSHOT"
	case Release:
		return "RELEASE"
	default:
		return "PLACEHOLDER"
	}
}

// Style identifies which scheme a literal was written in.
type Style int

const (
	// OldCodenameTrain covers release trains up to Dysprosium.
	OldCodenameTrain Style = iota
	// OldOSGiCompatible covers literals up to core 3.3.x.
	OldOSGiCompatible
	// MavenGradle is the scheme in use since core 3.4.x.
	MavenGradle
)

func (s Style) String() string {
	switch s {
	case OldCodenameTrain:
		return "OLD_CODENAME_TRAIN"
	case OldOSGiCompatible:
		return "OLD_OSGI_COMPATIBLE"
	default:
		return "MAVEN_GRADLE"
	}
}

// Version is an immutable parsed version literal.
type Version struct {
	Major           int
	Minor           int
	Patch           int
	Qualifier       Qualifier
	QualifierNumber int
	// CustomQualifier is empty when the literal carries none.
	CustomQualifier string
	Style           Style

	raw string
}

// ParseError is returned when a literal cannot be parsed.
type ParseError struct {
	Version string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bad version %q: %s", e.Version, e.Message)
}

var (
	trainPattern = regexp.MustCompile(`^([A-D][a-zA-Z]+)-([a-zA-Z0-9-]*)$`)
	mavenPattern = regexp.MustCompile(`^([0-9]+)\.([0-9]+)\.([0-9]+)(-[a-zA-Z0-9]*)?(-[a-zA-Z0-9]*)?$`)
	osgiPattern  = regexp.MustCompile(`^([0-9]+)\.([0-9]+)\.([0-9]+)(\.[a-zA-Z0-9]*)?(\.[a-zA-Z0-9_-]*)$`)
)

// scheme tries to parse a literal. ok is false when the literal is not
// written in that scheme at all, in which case the next scheme is tried.
type scheme struct {
	style Style
	parse func(s string) (v Version, ok bool, err error)
}

// schemes is evaluated in order, first match wins. Maven/Gradle must come
// before OSGi: a bare "3.1.0" is a Maven/Gradle release.
var schemes = []scheme{
	{OldCodenameTrain, parseTrain},
	{MavenGradle, parseMaven},
	{OldOSGiCompatible, parseOSGi},
}

// Parse parses s using the first scheme that recognizes it.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, &ParseError{Version: s, Message: "version string is empty"}
	}
	for _, sc := range schemes {
		v, ok, err := sc.parse(s)
		if err != nil {
			return Version{}, err
		}
		if ok {
			v.Style = sc.style
			v.raw = s
			return v, nil
		}
	}
	return Version{}, &ParseError{Version: s, Message: "cannot recognize versioning scheme"}
}

// MustParse is like Parse but panics on error. Intended for tests and
// static tables.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseTrain(s string) (Version, bool, error) {
	if s[0] < 'A' || s[0] > 'Z' {
		return Version{}, false, nil
	}
	m := trainPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, true, &ParseError{Version: s, Message: "unparseable codename version"}
	}

	// Trains are all 3.x; the codename initial keeps them in release order.
	v := Version{Major: 3, Minor: int(m[1][0])}
	q := m[2]
	var err error
	switch {
	case strings.EqualFold(q, "RELEASE"):
		v.Qualifier = Release
	case strings.HasPrefix(q, "SR"):
		v.Qualifier = Release
		v.Patch, err = number(s, q[2:])
	case strings.HasPrefix(q, "M"):
		v.Qualifier = Milestone
		v.QualifierNumber, err = number(s, q[1:])
	case strings.HasPrefix(q, "RC"):
		v.Qualifier = ReleaseCandidate
		v.QualifierNumber, err = number(s, q[2:])
	case strings.EqualFold(q, "BUILD-SNAPSHOT"):
		// One snapshot per train, after every service release.
		v.Qualifier = Snapshot
		v.Patch = 999
	default:
		return Version{}, true, &ParseError{Version: s, Message: fmt.Sprintf("unparseable codename qualifier %q", q)}
	}
	if err != nil {
		return Version{}, true, err
	}
	return v, true, nil
}

func parseMaven(s string) (Version, bool, error) {
	m := mavenPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false, nil
	}
	v, err := coreNumbers(s, m)
	if err != nil {
		return Version{}, true, err
	}

	q := m[4]
	switch {
	case q == "":
		v.Qualifier = Release
	case strings.EqualFold(q, "-SNAPSHOT"):
		v.Qualifier = Snapshot
	case strings.HasPrefix(q, "-M"):
		v.Qualifier = Milestone
		v.QualifierNumber, err = number(s, q[2:])
	case strings.HasPrefix(q, "-RC"):
		v.Qualifier = ReleaseCandidate
		v.QualifierNumber, err = number(s, q[3:])
	default:
		return Version{}, true, &ParseError{Version: s, Message: fmt.Sprintf("unrecognized qualifier %q", q)}
	}
	if err != nil {
		return Version{}, true, err
	}
	if m[5] != "" {
		v.CustomQualifier = m[5][1:]
	}
	return v, true, nil
}

func parseOSGi(s string) (Version, bool, error) {
	m := osgiPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, false, nil
	}
	v, err := coreNumbers(s, m)
	if err != nil {
		return Version{}, true, err
	}

	if m[4] != "" {
		v.CustomQualifier = m[4][1:]
	}
	q := m[5]
	switch {
	case strings.EqualFold(q, ".RELEASE"):
		v.Qualifier = Release
	case strings.EqualFold(q, ".BUILD-SNAPSHOT"):
		v.Qualifier = Snapshot
	case strings.HasPrefix(q, ".M"):
		v.Qualifier = Milestone
		v.QualifierNumber, err = number(s, q[2:])
	case strings.HasPrefix(q, ".RC"):
		v.Qualifier = ReleaseCandidate
		v.QualifierNumber, err = number(s, q[3:])
	default:
		return Version{}, true, &ParseError{Version: s, Message: fmt.Sprintf("unrecognized qualifier %q", q)}
	}
	if err != nil {
		return Version{}, true, err
	}
	return v, true, nil
}

func coreNumbers(s string, m []string) (Version, error) {
	var v Version
	var err error
	if v.Major, err = number(s, m[1]); err != nil {
		return v, err
	}
	if v.Minor, err = number(s, m[2]); err != nil {
		return v, err
	}
	v.Patch, err = number(s, m[3])
	return v, err
}

func number(literal, digits string) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, &ParseError{Version: literal, Message: fmt.Sprintf("invalid number %q", digits)}
	}
	return n, nil
}

// String returns the literal the version was parsed from.
func (v Version) String() string {
	return v.raw
}

// Compare returns -1, 0 or 1 depending on whether a was released before,
// at the same time as, or after b.
func Compare(a, b Version) int {
	if c := compareInt(a.Major, b.Major); c != 0 {
		return c
	}
	if c := compareInt(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := compareInt(a.Patch, b.Patch); c != 0 {
		return c
	}
	if c := compareInt(int(a.Qualifier), int(b.Qualifier)); c != 0 {
		return c
	}
	if c := compareInt(a.QualifierNumber, b.QualifierNumber); c != 0 {
		return c
	}
	switch {
	case a.CustomQualifier == "" && b.CustomQualifier != "":
		return 1
	case a.CustomQualifier != "" && b.CustomQualifier == "":
		return -1
	}
	return compareInt(strings.Compare(strings.ToLower(a.CustomQualifier), strings.ToLower(b.CustomQualifier)), 0)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Compare is shorthand for Compare(v, o).
func (v Version) Compare(o Version) int {
	return Compare(v, o)
}

// Less reports whether v was released before o.
func (v Version) Less(o Version) bool {
	return Compare(v, o) < 0
}

// Equal reports whether v and o denote the same release. The qualifier
// number and the literal are not considered.
func (v Version) Equal(o Version) bool {
	return v.Major == o.Major && v.Minor == o.Minor && v.Patch == o.Patch &&
		v.Qualifier == o.Qualifier && v.CustomQualifier == o.CustomQualifier
}

// InMajorMinor reports whether v belongs to the major.minor line, any patch
// and any qualifier.
func (v Version) InMajorMinor(major, minor int) bool {
	return v.Major == major && v.Minor == minor
}

// IsAfter reports whether v was released strictly after
// major.minor.patch with the given qualifier, whatever its number.
// Codename trains are always after.
func (v Version) IsAfter(major, minor, patch int, q Qualifier) bool {
	return v.IsAfterNumbered(major, minor, patch, q, 999)
}

// IsAfterNumbered is IsAfter with an explicit qualifier number.
func (v Version) IsAfterNumbered(major, minor, patch int, q Qualifier, qn int) bool {
	if v.Style == OldCodenameTrain {
		return true
	}
	return v.compareComponents(major, minor, patch, q, qn) > 0
}

// IsBefore reports whether v was released strictly before
// major.minor.patch with the given qualifier, whatever its number.
// Codename trains are never before.
func (v Version) IsBefore(major, minor, patch int, q Qualifier) bool {
	return v.IsBeforeNumbered(major, minor, patch, q, 0)
}

// IsBeforeNumbered is IsBefore with an explicit qualifier number.
func (v Version) IsBeforeNumbered(major, minor, patch int, q Qualifier, qn int) bool {
	if v.Style == OldCodenameTrain {
		return false
	}
	return v.compareComponents(major, minor, patch, q, qn) < 0
}

func (v Version) compareComponents(major, minor, patch int, q Qualifier, qn int) int {
	if c := compareInt(v.Major, major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, patch); c != 0 {
		return c
	}
	if c := compareInt(int(v.Qualifier), int(q)); c != 0 {
		return c
	}
	return compareInt(v.QualifierNumber, qn)
}
