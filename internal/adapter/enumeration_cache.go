package adapter

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	m "testament.dev/pkg/testament/internal/model"
)

// EnumerationCache persists a project's last known raw test-name list across
// invocations, keyed by a modification-time fingerprint. A stale fingerprint,
// a missing entry, or a corrupt entry all read as a miss; Load never errors.
type EnumerationCache interface {
	Load(project m.Path) ([]string, bool)
	Save(project m.Path, names []string) error
}

type cacheEntry struct {
	Fingerprint int64    `yaml:"fingerprint"`
	Names       []string `yaml:"names"`
}

// NullEnumerationCache never hits and never stores. It backs the no-cache
// mode.
type NullEnumerationCache struct{}

func (NullEnumerationCache) Load(_ m.Path) ([]string, bool) { return nil, false }

func (NullEnumerationCache) Save(_ m.Path, _ []string) error { return nil }

// FileEnumerationCache stores one YAML entry per project path under the
// user's cache directory.
type FileEnumerationCache struct {
	dir string
}

// NewEnumerationCache constructs a cache rooted in the XDG cache home.
func NewEnumerationCache() *FileEnumerationCache {
	return NewEnumerationCacheAt(filepath.Join(xdg.CacheHome, "testament"))
}

// NewEnumerationCacheAt constructs a cache rooted at dir. Tests point this at
// a temporary directory.
func NewEnumerationCacheAt(dir string) *FileEnumerationCache {
	return &FileEnumerationCache{dir: dir}
}

// Load returns the cached name list for project when the stored fingerprint
// still matches the one computed from disk.
func (c *FileEnumerationCache) Load(project m.Path) ([]string, bool) {
	content, err := os.ReadFile(c.entryPath(project))
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := yaml.Unmarshal(content, &entry); err != nil {
		slog.Debug("Discarding unreadable cache entry", "project", project, "error", err)
		return nil, false
	}

	if entry.Fingerprint != fingerprint(project) {
		return nil, false
	}

	return entry.Names, true
}

// Save writes the name list along with the current fingerprint.
func (c *FileEnumerationCache) Save(project m.Path, names []string) error {
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	content, err := yaml.Marshal(cacheEntry{
		Fingerprint: fingerprint(project),
		Names:       names,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	return os.WriteFile(c.entryPath(project), content, 0o600)
}

func (c *FileEnumerationCache) entryPath(project m.Path) string {
	abs, err := filepath.Abs(string(project))
	if err != nil {
		abs = string(project)
	}

	sum := sha256.Sum256([]byte(abs))

	return filepath.Join(c.dir, fmt.Sprintf("%x.yaml", sum[:8]))
}

// fingerprint derives a staleness marker from the descriptor's modified time
// and the newest artifact under the project's build-output directory, so a
// rebuild invalidates the cache even when the descriptor is untouched.
func fingerprint(project m.Path) int64 {
	var newest time.Time

	if info, err := os.Stat(string(project)); err == nil {
		newest = info.ModTime()
	}

	outputDir := filepath.Join(filepath.Dir(string(project)), "bin")

	_ = filepath.WalkDir(outputDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}

		if info, infoErr := entry.Info(); infoErr == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}

		return nil
	})

	return newest.UnixNano()
}
