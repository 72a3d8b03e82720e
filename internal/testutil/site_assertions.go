package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SiteAssertions checks the state of a generated versions tree rooted at baseDir.
type SiteAssertions struct {
	t       *testing.T
	baseDir string
}

// NewSiteAssertions creates assertions relative to baseDir.
func NewSiteAssertions(t *testing.T, baseDir string) *SiteAssertions {
	return &SiteAssertions{t: t, baseDir: baseDir}
}

// HasFile fails the test when rel does not exist as a regular file.
func (a *SiteAssertions) HasFile(rel string) *SiteAssertions {
	a.t.Helper()
	full := filepath.Join(a.baseDir, rel)
	info, err := os.Stat(full)
	switch {
	case err != nil:
		a.t.Errorf("expected file %s: %v", full, err)
	case info.IsDir():
		a.t.Errorf("expected %s to be a file, found a directory", full)
	}
	return a
}

// HasDir fails the test when rel does not exist as a directory.
func (a *SiteAssertions) HasDir(rel string) *SiteAssertions {
	a.t.Helper()
	full := filepath.Join(a.baseDir, rel)
	info, err := os.Stat(full)
	switch {
	case err != nil:
		a.t.Errorf("expected directory %s: %v", full, err)
	case !info.IsDir():
		a.t.Errorf("expected %s to be a directory, found a file", full)
	}
	return a
}

// Missing fails the test when rel exists.
func (a *SiteAssertions) Missing(rel string) *SiteAssertions {
	a.t.Helper()
	full := filepath.Join(a.baseDir, rel)
	if _, err := os.Stat(full); err == nil {
		a.t.Errorf("expected %s to be absent", full)
	}
	return a
}

// FileContains fails the test when rel does not contain want.
func (a *SiteAssertions) FileContains(rel, want string) *SiteAssertions {
	a.t.Helper()
	full := filepath.Join(a.baseDir, rel)
	data, err := os.ReadFile(full)
	if err != nil {
		a.t.Errorf("failed to read %s: %v", full, err)
		return a
	}
	if !strings.Contains(string(data), want) {
		a.t.Errorf("%s does not contain %q", full, want)
	}
	return a
}

// Versions fails the test unless the direct subdirectories of baseDir are exactly labels.
func (a *SiteAssertions) Versions(labels ...string) *SiteAssertions {
	a.t.Helper()
	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		a.t.Errorf("failed to list %s: %v", a.baseDir, err)
		return a
	}
	got := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			got[e.Name()] = true
		}
	}
	for _, l := range labels {
		if !got[l] {
			a.t.Errorf("missing version directory %q in %s", l, a.baseDir)
		}
		delete(got, l)
	}
	for name := range got {
		a.t.Errorf("unexpected version directory %q in %s", name, a.baseDir)
	}
	return a
}

// Snapshot maps every file and symlink under dir to its content or link target,
// keyed by slash-separated relative path.
func Snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	snap := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		switch {
		case d.Type()&os.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			snap[rel] = "-> " + target
		case d.Type().IsRegular():
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			snap[rel] = string(data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot %s: %v", dir, err)
	}
	return snap
}
