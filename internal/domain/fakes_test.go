package domain

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	m "testament.dev/pkg/testament/internal/model"
)

// fakeDotnet scripts toolchain behavior per project path.
type fakeDotnet struct {
	listOutput    map[string]string
	listExitCode  map[string]int
	listErr       map[string]error
	qualified     []string
	qualifiedErr  error
	qualifiedHits int

	runLines    []string
	runExitCode int
	runErr      error
	trxContent  string
	runFilters  []string

	buildLines    []string
	buildExitCode int
}

func (f *fakeDotnet) ListTests(_ context.Context, project m.Path) (string, int, error) {
	if err := f.listErr[string(project)]; err != nil {
		return "", 0, err
	}

	return f.listOutput[string(project)], f.listExitCode[string(project)], nil
}

func (f *fakeDotnet) ListQualified(_ context.Context, _ m.Path) ([]string, error) {
	f.qualifiedHits++

	return f.qualified, f.qualifiedErr
}

func (f *fakeDotnet) RunTests(_ context.Context, _ m.Path, filter string, trxPath m.Path, onLine func(string)) (int, error) {
	f.runFilters = append(f.runFilters, filter)

	if f.runErr != nil {
		return 0, f.runErr
	}

	for _, line := range f.runLines {
		onLine(line)
	}

	if f.trxContent != "" {
		if err := os.WriteFile(string(trxPath), []byte(f.trxContent), 0o644); err != nil {
			return 0, err
		}
	}

	return f.runExitCode, nil
}

func (f *fakeDotnet) Build(_ context.Context, _ m.Path, onLine func(string)) (int, error) {
	for _, line := range f.buildLines {
		onLine(line)
	}

	return f.buildExitCode, nil
}

// fakeCache is an in-memory EnumerationCache.
type fakeCache struct {
	entries map[string][]string
	saves   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]string{}}
}

func (c *fakeCache) Load(project m.Path) ([]string, bool) {
	names, ok := c.entries[string(project)]

	return names, ok
}

func (c *fakeCache) Save(project m.Path, names []string) error {
	c.entries[string(project)] = names
	c.saves++

	return nil
}

// fakeFS serves an in-memory file tree keyed by slash-separated paths.
type fakeFS struct {
	files     map[string]string
	artifacts map[string]string
}

func newFakeFS() *fakeFS {
	return &fakeFS{files: map[string]string{}, artifacts: map[string]string{}}
}

func (f *fakeFS) ReadFile(path m.Path) ([]byte, error) {
	content, ok := f.files[string(path)]
	if !ok {
		return nil, os.ErrNotExist
	}

	return []byte(content), nil
}

func (f *fakeFS) Exists(path m.Path) bool {
	if _, ok := f.files[string(path)]; ok {
		return true
	}

	prefix := string(path) + "/"
	for name := range f.files {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}

func (f *fakeFS) DirEntries(dir m.Path) ([]string, error) {
	seen := map[string]bool{}

	var entries []string

	prefix := string(dir) + "/"
	for name := range f.files {
		if !strings.HasPrefix(name, prefix) {
			continue
		}

		entry := strings.SplitN(strings.TrimPrefix(name, prefix), "/", 2)[0]
		if !seen[entry] {
			seen[entry] = true
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func (f *fakeFS) WalkSources(root m.Path, ext string, fn func(path m.Path, content []byte)) {
	prefix := string(root) + "/"
	for name, content := range f.files {
		if strings.HasPrefix(name, prefix) && filepath.Ext(name) == ext {
			fn(m.Path(name), []byte(content))
		}
	}
}

func (f *fakeFS) NewestArtifact(projectDir m.Path, fileName string) (m.Path, bool) {
	path, ok := f.artifacts[string(projectDir)+"/"+fileName]

	return m.Path(path), ok
}

func (f *fakeFS) FindProjectFile(start m.Path, ext string) (m.Path, bool) {
	dir := filepath.Dir(string(start))

	for {
		for name := range f.files {
			if filepath.Dir(name) == dir && filepath.Ext(name) == ext {
				return m.Path(name), true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}

		dir = parent
	}
}
