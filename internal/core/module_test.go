package core

import (
	"io"
	"slices"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/reactor/docsproxy/version"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestModule(t *testing.T, entry ModuleEntry) *Module {
	t.Helper()
	m, err := NewModule(entry, quietLogger())
	if err != nil {
		t.Fatalf("NewModule failed: %v", err)
	}
	return m
}

func TestVersionListAddVersion(t *testing.T) {
	l := NewVersionList("test", quietLogger())
	l.AddVersion("3.2.1.RELEASE").AddVersion("not a version").AddVersion("3.4.0")

	got := l.Strings()
	want := []string{"3.2.1.RELEASE", "3.4.0"}
	if !slices.Equal(got, want) {
		t.Errorf("Strings() = %v, want %v", got, want)
	}
}

func TestVersionListEmpty(t *testing.T) {
	l := NewVersionList("test", nil)
	l.Sort()
	l.SortAndDeduplicate()
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
	if got := l.Strings(); len(got) != 0 {
		t.Errorf("Strings() = %v, want empty", got)
	}
}

func TestVersionListSortKeepsDuplicates(t *testing.T) {
	l := NewVersionList("test", quietLogger())
	l.AddVersion("3.2.1.RELEASE").
		AddVersion("3.2.1.RELEASE").
		AddVersion("3.2.1.BUILD-SNAPSHOT").
		AddVersion("3.3.1.RELEASE")
	l.Sort()

	want := []string{"3.3.1.RELEASE", "3.2.1.RELEASE", "3.2.1.RELEASE", "3.2.1.BUILD-SNAPSHOT"}
	if got := l.Strings(); !slices.Equal(got, want) {
		t.Errorf("after Sort = %v, want %v", got, want)
	}
}

func TestVersionListSortAndDeduplicate(t *testing.T) {
	l := NewVersionList("test", quietLogger())
	l.AddVersion("3.2.1.RELEASE").
		AddVersion("3.2.1.RELEASE").
		AddVersion("3.2.1.BUILD-SNAPSHOT").
		AddVersion("3.3.1.RELEASE")
	if l.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", l.Len())
	}
	l.SortAndDeduplicate()

	want := []string{"3.3.1.RELEASE", "3.2.1.RELEASE", "3.2.1.BUILD-SNAPSHOT"}
	if got := l.Strings(); !slices.Equal(got, want) {
		t.Errorf("after SortAndDeduplicate = %v, want %v", got, want)
	}
}

func TestVersionListDeduplicateKeepsEqualDistinctLiterals(t *testing.T) {
	l := NewVersionList("test", quietLogger())
	l.AddVersion("3.2.1").AddVersion("3.2.1.RELEASE").AddVersion("3.2.1")
	l.SortAndDeduplicate()

	got := l.Strings()
	if len(got) != 2 {
		t.Fatalf("Strings() = %v, want two entries", got)
	}
	if !slices.Contains(got, "3.2.1") || !slices.Contains(got, "3.2.1.RELEASE") {
		t.Errorf("Strings() = %v, want both 3.2.1 and 3.2.1.RELEASE", got)
	}
}

func TestModuleBadVersionsDeduplicatedAndReverseSorted(t *testing.T) {
	m := newTestModule(t, ModuleEntry{
		Name:        "core",
		BadVersions: []string{"Aluminum-SR3", "Dysprosium-SR25", "Bismuth-SR17", "Dysprosium-SR25", "Californium-SR23"},
	})

	want := []string{"Dysprosium-SR25", "Californium-SR23", "Bismuth-SR17", "Aluminum-SR3"}
	if got := m.BadVersions(); !slices.Equal(got, want) {
		t.Errorf("BadVersions() = %v, want %v", got, want)
	}
}

func TestModuleIsBadVersion(t *testing.T) {
	m := newTestModule(t, ModuleEntry{Name: "core", BadVersions: []string{"A", "C"}})

	tests := []struct {
		in   string
		want bool
	}{
		{"A", true},
		{"B", false},
		{"C", true},
	}
	for _, tt := range tests {
		if got := m.IsBadVersion(tt.in); got != tt.want {
			t.Errorf("IsBadVersion(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewModuleInvalidFloor(t *testing.T) {
	_, err := NewModule(ModuleEntry{Name: "core", VersionFloor: "not a constraint"}, quietLogger())
	if err == nil {
		t.Error("expected error for invalid floor")
	}
	_, err = NewModule(ModuleEntry{}, quietLogger())
	if err == nil {
		t.Error("expected error for missing name")
	}
}

func TestModuleAddVersion(t *testing.T) {
	m := newTestModule(t, ModuleEntry{Name: "core"})

	if !m.AddVersion("3.4.0") {
		t.Error("AddVersion(3.4.0) = false, want true")
	}
	if m.AddVersion("3.4.0") {
		t.Error("second AddVersion(3.4.0) = true, want false")
	}
	if m.AddVersion("garbage") {
		t.Error("AddVersion(garbage) = true, want false")
	}
	m.AddVersion("3.5.0-M1")
	m.AddVersion("3.3.0.RELEASE")

	want := []string{"3.5.0-M1", "3.4.0", "3.3.0.RELEASE"}
	if got := m.VersionStrings(); !slices.Equal(got, want) {
		t.Errorf("VersionStrings() = %v, want %v", got, want)
	}
	if !m.HasVersion("3.4.0") || m.HasVersion("3.6.0") {
		t.Error("HasVersion mismatch")
	}
}

func TestModuleReplaceVersions(t *testing.T) {
	m := newTestModule(t, ModuleEntry{
		Name:         "core",
		VersionFloor: ">= 3.0.0",
		BadVersions:  []string{"3.4.1"},
	})
	m.AddVersion("3.0.0.RELEASE")

	// bad, below floor, custom qualifier and unparseable entries are dropped
	kept := m.ReplaceVersions([]string{
		"3.4.0",
		"3.4.1",
		"2.0.8.RELEASE",
		"3.4.0-SNAPSHOT-custom",
		"nope",
		"3.5.0-M1",
		"3.4.0",
		"Dysprosium-SR3",
	})

	want := []string{"Dysprosium-SR3", "3.5.0-M1", "3.4.0"}
	if got := m.VersionStrings(); !slices.Equal(got, want) {
		t.Errorf("VersionStrings() = %v, want %v", got, want)
	}
	if kept != len(want) {
		t.Errorf("kept = %d, want %d", kept, len(want))
	}
}

func TestModuleSnapshotIsImmutable(t *testing.T) {
	m := newTestModule(t, ModuleEntry{Name: "core"})
	m.AddVersion("3.4.0")
	before := m.Versions()

	m.AddVersion("3.5.0")

	if len(before) != 1 || before[0].String() != "3.4.0" {
		t.Errorf("earlier snapshot changed: %v", before)
	}
}

func TestModuleConcurrentUpdates(t *testing.T) {
	m := newTestModule(t, ModuleEntry{Name: "core"})
	literals := []string{"3.4.0", "3.4.1", "3.4.2", "3.5.0-M1", "3.5.0-RC1", "3.5.0"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for _, l := range literals {
				m.AddVersion(l)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				vs := m.Versions()
				for k := 1; k < len(vs); k++ {
					if version.Compare(vs[k-1], vs[k]) < 0 {
						t.Errorf("observed unsorted snapshot: %v", vs)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	if got := m.VersionStrings(); len(got) != len(literals) {
		t.Errorf("VersionStrings() = %v, want %d entries", got, len(literals))
	}
}

func TestModuleAboveFloor(t *testing.T) {
	m := newTestModule(t, ModuleEntry{Name: "core", VersionFloor: ">= 3.0.0"})
	tests := []struct {
		in   string
		want bool
	}{
		{"3.0.0.RELEASE", true},
		{"2.9.9.RELEASE", false},
		{"Aluminium-SR1", true},
		{"2020.0.0", true},
	}
	for _, tt := range tests {
		if got := m.AboveFloor(version.MustParse(tt.in)); got != tt.want {
			t.Errorf("AboveFloor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	open := newTestModule(t, ModuleEntry{Name: "netty"})
	if !open.AboveFloor(version.MustParse("0.1.0.RELEASE")) {
		t.Error("module without floor should accept every version")
	}
}
