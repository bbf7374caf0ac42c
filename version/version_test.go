package version

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func parseAll(t *testing.T, literals ...string) []Version {
	t.Helper()
	out := make([]Version, 0, len(literals))
	for _, l := range literals {
		v, err := Parse(l)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", l, err)
		}
		out = append(out, v)
	}
	return out
}

func literals(vs []Version) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		in        string
		major     int
		minor     int
		patch     int
		qualifier Qualifier
		number    int
		custom    string
		style     Style
	}{
		{"1.2.3.RELEASE", 1, 2, 3, Release, 0, "", OldOSGiCompatible},
		{"1.2.3", 1, 2, 3, Release, 0, "", MavenGradle},
		{"2020.0.1", 2020, 0, 1, Release, 0, "", MavenGradle},
		{"Californium-RELEASE", 3, 'C', 0, Release, 0, "", OldCodenameTrain},
		{"Californium-SR2", 3, 'C', 2, Release, 0, "", OldCodenameTrain},
		{"Californium-RC11", 3, 'C', 0, ReleaseCandidate, 11, "", OldCodenameTrain},
		{"Californium-M23", 3, 'C', 0, Milestone, 23, "", OldCodenameTrain},
		{"Californium-BUILD-SNAPSHOT", 3, 'C', 999, Snapshot, 0, "", OldCodenameTrain},
		{"1.2.3.RC11", 1, 2, 3, ReleaseCandidate, 11, "", OldOSGiCompatible},
		{"1.2.3-RC11", 1, 2, 3, ReleaseCandidate, 11, "", MavenGradle},
		{"2020.0.0-RC11", 2020, 0, 0, ReleaseCandidate, 11, "", MavenGradle},
		{"1.2.3.M23", 1, 2, 3, Milestone, 23, "", OldOSGiCompatible},
		{"1.2.3-M23", 1, 2, 3, Milestone, 23, "", MavenGradle},
		{"1.2.3.BUILD-SNAPSHOT", 1, 2, 3, Snapshot, 0, "", OldOSGiCompatible},
		{"1.2.3-SNAPSHOT", 1, 2, 3, Snapshot, 0, "", MavenGradle},
		{"1.2.3.0cusTom0.BUILD-SNAPSHOT", 1, 2, 3, Snapshot, 0, "0cusTom0", OldOSGiCompatible},
		{"1.2.3-SNAPSHOT-0cusTom0", 1, 2, 3, Snapshot, 0, "0cusTom0", MavenGradle},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if v.Major != tt.major || v.Minor != tt.minor || v.Patch != tt.patch {
				t.Errorf("core = %d.%d.%d, want %d.%d.%d", v.Major, v.Minor, v.Patch, tt.major, tt.minor, tt.patch)
			}
			if v.Qualifier != tt.qualifier {
				t.Errorf("Qualifier = %v, want %v", v.Qualifier, tt.qualifier)
			}
			if v.QualifierNumber != tt.number {
				t.Errorf("QualifierNumber = %d, want %d", v.QualifierNumber, tt.number)
			}
			if v.CustomQualifier != tt.custom {
				t.Errorf("CustomQualifier = %q, want %q", v.CustomQualifier, tt.custom)
			}
			if v.Style != tt.style {
				t.Errorf("Style = %v, want %v", v.Style, tt.style)
			}
			if v.String() != tt.in {
				t.Errorf("String() = %q, want %q", v.String(), tt.in)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in      string
		message string
	}{
		{"", "version string is empty"},
		{"A", "unparseable codename version"},
		{"FakeName-RELEASE", "unparseable codename version"},
		{"DefinitelyInRange-TOBEREJECTED", `unparseable codename qualifier "TOBEREJECTED"`},
		{"Bismuth-SRx", "invalid number"},
		{"1.2.3.0-1.RELEASE", "cannot recognize versioning scheme"},
		{"1.2.3.cus-Tom.RELEASE", "cannot recognize versioning scheme"},
		{"1.2.3-SNAPSHOT-0-1", "cannot recognize versioning scheme"},
		{"1.2.3-SNAPSHOT-cus-Tom", "cannot recognize versioning scheme"},
		{"1.2.3-BETA", `unrecognized qualifier "-BETA"`},
		{"1.2.3.FINAL", `unrecognized qualifier ".FINAL"`},
		{"not-a-version", "cannot recognize versioning scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.in)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %T, want *ParseError", err)
			}
			if pe.Version != tt.in {
				t.Errorf("ParseError.Version = %q, want %q", pe.Version, tt.in)
			}
			if !strings.Contains(pe.Message, tt.message) {
				t.Errorf("ParseError.Message = %q, want it to contain %q", pe.Message, tt.message)
			}
		})
	}
}

func TestCompareOrdering(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string // oldest first
	}{
		{
			"mixed schemes",
			[]string{"1.2.4-SNAPSHOT", "1.2.5.BUILD-SNAPSHOT", "1.2.4", "1.2.3.RELEASE"},
			[]string{"1.2.3.RELEASE", "1.2.4-SNAPSHOT", "1.2.4", "1.2.5.BUILD-SNAPSHOT"},
		},
		{
			"qualifiers",
			[]string{"1.2.3.BUILD-SNAPSHOT", "1.2.3.M3", "1.2.3.RC1", "1.2.3.RELEASE"},
			[]string{"1.2.3.M3", "1.2.3.RC1", "1.2.3.BUILD-SNAPSHOT", "1.2.3.RELEASE"},
		},
		{
			"patches",
			[]string{"1.2.0.RELEASE", "1.2.3", "1.2.1.RELEASE", "1.2.2.RELEASE"},
			[]string{"1.2.0.RELEASE", "1.2.1.RELEASE", "1.2.2.RELEASE", "1.2.3"},
		},
		{
			"minors",
			[]string{"1.2.0.RELEASE", "1.3.0.RELEASE", "1.4.0", "1.1.0.RELEASE"},
			[]string{"1.1.0.RELEASE", "1.2.0.RELEASE", "1.3.0.RELEASE", "1.4.0"},
		},
		{
			"majors",
			[]string{"1.2.0.RELEASE", "2.2.0.RELEASE", "4.0.1", "3.2.0.RELEASE"},
			[]string{"1.2.0.RELEASE", "2.2.0.RELEASE", "3.2.0.RELEASE", "4.0.1"},
		},
		{
			"pre-releases",
			[]string{"1.2.3-M2", "1.2.3.RC3", "1.2.3-RC1", "1.2.3.M1"},
			[]string{"1.2.3.M1", "1.2.3-M2", "1.2.3-RC1", "1.2.3.RC3"},
		},
		{
			"custom qualifier old scheme",
			[]string{"1.2.3.customVersionA.BUILD-SNAPSHOT", "1.2.3.BUILD-SNAPSHOT", "1.2.3.customVersionB.BUILD-SNAPSHOT"},
			[]string{"1.2.3.customVersionA.BUILD-SNAPSHOT", "1.2.3.customVersionB.BUILD-SNAPSHOT", "1.2.3.BUILD-SNAPSHOT"},
		},
		{
			"custom qualifier new scheme",
			[]string{"1.2.3-SNAPSHOT-customVersionA", "1.2.3-SNAPSHOT", "1.2.3-SNAPSHOT-customVersionB"},
			[]string{"1.2.3-SNAPSHOT-customVersionA", "1.2.3-SNAPSHOT-customVersionB", "1.2.3-SNAPSHOT"},
		},
		{
			"trains",
			[]string{"Dysprosium-RELEASE", "Bismuth-SR10", "Californium-BUILD-SNAPSHOT", "Bismuth-M1"},
			[]string{"Bismuth-M1", "Bismuth-SR10", "Californium-BUILD-SNAPSHOT", "Dysprosium-RELEASE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := parseAll(t, tt.in...)
			slices.SortFunc(vs, Compare)
			if got := literals(vs); !slices.Equal(got, tt.want) {
				t.Errorf("ascending = %v, want %v", got, tt.want)
			}

			slices.SortFunc(vs, func(a, b Version) int { return Compare(b, a) })
			want := slices.Clone(tt.want)
			slices.Reverse(want)
			if got := literals(vs); !slices.Equal(got, want) {
				t.Errorf("descending = %v, want %v", got, want)
			}
		})
	}
}

func TestCompareIsTotalOrder(t *testing.T) {
	vs := parseAll(t,
		"1.2.3.RELEASE", "1.2.3", "1.2.3-SNAPSHOT-a", "1.2.3-SNAPSHOT-B",
		"1.2.3.BUILD-SNAPSHOT", "1.2.3.M1", "1.2.3-RC2", "Aluminium-SR3",
		"Californium-M1", "3.4.0", "2020.0.0-M1",
	)
	for _, a := range vs {
		if Compare(a, a) != 0 {
			t.Errorf("Compare(%s, %s) = %d, want 0", a, a, Compare(a, a))
		}
		for _, b := range vs {
			if Compare(a, b) != -Compare(b, a) {
				t.Errorf("Compare(%s, %s) is not antisymmetric", a, b)
			}
			for _, c := range vs {
				if Compare(a, b) < 0 && Compare(b, c) < 0 && Compare(a, c) >= 0 {
					t.Errorf("Compare not transitive for %s < %s < %s", a, b, c)
				}
			}
		}
	}
}

func TestCompareCustomQualifierIgnoresCase(t *testing.T) {
	a := MustParse("1.2.3-SNAPSHOT-custom")
	b := MustParse("1.2.3-SNAPSHOT-CUSTOM")
	if Compare(a, b) != 0 {
		t.Errorf("Compare(%s, %s) = %d, want 0", a, b, Compare(a, b))
	}
}

func TestEqualIgnoresQualifierNumber(t *testing.T) {
	if !MustParse("1.2.3-M1").Equal(MustParse("1.2.3.M2")) {
		t.Error("1.2.3-M1 should equal 1.2.3.M2")
	}
	if MustParse("1.2.3-M1").Equal(MustParse("1.2.3-RC1")) {
		t.Error("1.2.3-M1 should not equal 1.2.3-RC1")
	}
}

func TestInMajorMinor(t *testing.T) {
	v := MustParse("1.2.3.0cusTom0.BUILD-SNAPSHOT")
	if !v.InMajorMinor(1, 2) {
		t.Error("InMajorMinor(1, 2) = false, want true")
	}
	if v.InMajorMinor(1, 3) {
		t.Error("InMajorMinor(1, 3) = true, want false")
	}
}

func TestIsBeforeIsExclusive(t *testing.T) {
	v := MustParse("1.2.3-M3")

	if v.IsBeforeNumbered(1, 2, 3, Milestone, 3) {
		t.Error("IsBeforeNumbered(1.2.3 M3) = true, want false")
	}
	if v.IsBefore(1, 2, 3, Milestone) {
		t.Error("IsBefore(1.2.3 M) = true, want false")
	}
	if !v.IsBeforeNumbered(1, 2, 3, Milestone, 4) {
		t.Error("IsBeforeNumbered(1.2.3 M4) = false, want true")
	}
	if !v.IsBefore(1, 2, 3, Release) {
		t.Error("IsBefore(1.2.3 RELEASE) = false, want true")
	}
}

func TestIsAfterIsExclusive(t *testing.T) {
	v := MustParse("1.2.3-M3")

	if v.IsAfterNumbered(1, 2, 3, Milestone, 3) {
		t.Error("IsAfterNumbered(1.2.3 M3) = true, want false")
	}
	if v.IsAfter(1, 2, 3, Milestone) {
		t.Error("IsAfter(1.2.3 M) = true, want false")
	}
	if !v.IsAfterNumbered(1, 2, 3, Milestone, 2) {
		t.Error("IsAfterNumbered(1.2.3 M2) = false, want true")
	}
	if !v.IsAfter(1, 2, 2, Release) {
		t.Error("IsAfter(1.2.2 RELEASE) = false, want true")
	}
}

func TestTrainsAreAlwaysAfter(t *testing.T) {
	v := MustParse("Aluminium-SR1")
	if !v.IsAfter(99, 0, 0, Release) {
		t.Error("train IsAfter = false, want true")
	}
	if v.IsBefore(99, 0, 0, Release) {
		t.Error("train IsBefore = true, want false")
	}
}

func TestQualifierOrder(t *testing.T) {
	order := []Qualifier{Placeholder, Milestone, ReleaseCandidate, Snapshot, Release}
	if !slices.IsSorted(order) {
		t.Errorf("qualifiers out of order: %v", order)
	}
}

func BenchmarkParse(b *testing.B) {
	inputs := []string{"3.4.0-M2", "3.1.0.RELEASE", "Dysprosium-SR5", "1.2.3.custom.BUILD-SNAPSHOT"}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Parse(inputs[i%len(inputs)])
	}
}
