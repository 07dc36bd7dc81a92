// Package adapter contains process, filesystem, and network adapters for the
// testament CLI.
package adapter

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	m "testament.dev/pkg/testament/internal/model"
)

// SourceFSAdapter abstracts the filesystem operations the domain layer relies
// on when locating solutions and scanning source trees. It hides direct `os`
// access so discovery logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// Exists reports whether path refers to an existing file or directory.
	Exists(path m.Path) bool

	// DirEntries returns the names of the entries directly under dir.
	DirEntries(dir m.Path) ([]string, error)

	// WalkSources visits every source file with the given extension under
	// root, skipping build-output and hidden directories. Files that cannot
	// be read are skipped silently.
	WalkSources(root m.Path, ext string, fn func(path m.Path, content []byte))

	// NewestArtifact returns the most recently modified file with the given
	// name under the project's build-output directory.
	NewestArtifact(projectDir m.Path, fileName string) (m.Path, bool)

	// FindProjectFile searches upward from start for a file with the given
	// extension, returning the first hit.
	FindProjectFile(start m.Path, ext string) (m.Path, bool)
}

// LocalSourceFSAdapter is the os-backed implementation of SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// Exists reports whether the path exists.
func (a *LocalSourceFSAdapter) Exists(path m.Path) bool {
	_, err := os.Stat(string(path))

	return err == nil
}

// DirEntries returns the names of the entries directly under dir.
func (a *LocalSourceFSAdapter) DirEntries(dir m.Path) ([]string, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names, nil
}

// skippedDir reports directories excluded from source walks: build output and
// hidden directories.
func skippedDir(name string) bool {
	return name == "bin" || name == "obj" || strings.HasPrefix(name, ".")
}

// WalkSources visits source files under root. Unreadable files and
// directories degrade to being skipped rather than failing the walk.
func (a *LocalSourceFSAdapter) WalkSources(root m.Path, ext string, fn func(path m.Path, content []byte)) {
	_ = filepath.WalkDir(string(root), func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if entry.IsDir() {
			if path != string(root) && skippedDir(entry.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != ext {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}

		fn(m.Path(path), content)

		return nil
	})
}

// NewestArtifact returns the newest file named fileName under projectDir/bin.
func (a *LocalSourceFSAdapter) NewestArtifact(projectDir m.Path, fileName string) (m.Path, bool) {
	outputDir := filepath.Join(string(projectDir), "bin")

	var newest string

	var newestTime time.Time

	_ = filepath.WalkDir(outputDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}

		if entry.Name() != fileName {
			return nil
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			return nil
		}

		if info.ModTime().After(newestTime) {
			newest = path
			newestTime = info.ModTime()
		}

		return nil
	})

	if newest == "" {
		return "", false
	}

	return m.Path(newest), true
}

// FindProjectFile walks up from start looking for a file with the given
// extension in each directory.
func (a *LocalSourceFSAdapter) FindProjectFile(start m.Path, ext string) (m.Path, bool) {
	dir := filepath.Dir(string(start))

	for {
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, entry := range entries {
				if !entry.IsDir() && filepath.Ext(entry.Name()) == ext {
					return m.Path(filepath.Join(dir, entry.Name())), true
				}
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}

		dir = parent
	}
}
