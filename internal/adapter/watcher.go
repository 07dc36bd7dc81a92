package adapter

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"

	m "testament.dev/pkg/testament/internal/model"
)

// FileWatcher reports a debounced pulse whenever a source or project file
// under the watched root is created or modified. It carries no detail about
// what changed; consumers react by re-running whatever they were asked to
// watch.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	pulse   chan struct{}
	done    chan struct{}
}

// watchedFile reports file kinds that should trigger a pulse.
func watchedFile(path string) bool {
	switch filepath.Ext(path) {
	case ".cs", ".csproj":
		return true
	default:
		return false
	}
}

// NewFileWatcher watches root recursively. interval is the debounce window
// collapsing bursts of filesystem events into a single pulse.
func NewFileWatcher(root m.Path, interval time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// fsnotify watches single directories; register the whole tree, and new
	// directories as they appear.
	addTree := func(dir string) {
		_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil || !entry.IsDir() {
				return nil
			}

			if path != dir && skippedDir(entry.Name()) {
				return filepath.SkipDir
			}

			if addErr := watcher.Add(path); addErr != nil {
				slog.Debug("Failed to watch directory", "dir", path, "error", addErr)
			}

			return nil
		})
	}

	addTree(string(root))

	fw := &FileWatcher{
		watcher: watcher,
		pulse:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	debounced := debounce.New(interval)

	go func() {
		for {
			select {
			case <-fw.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op.Has(fsnotify.Create) {
					if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
						addTree(event.Name)
						continue
					}
				}

				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}

				if !watchedFile(event.Name) {
					continue
				}

				debounced(func() {
					select {
					case fw.pulse <- struct{}{}:
					default:
					}
				})
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}

				slog.Debug("Watcher error", "error", watchErr)
			}
		}
	}()

	return fw, nil
}

// Pulse returns the channel delivering debounced change notifications.
func (fw *FileWatcher) Pulse() <-chan struct{} {
	return fw.pulse
}

// Close stops watching. The pulse channel stops delivering afterwards.
func (fw *FileWatcher) Close() error {
	close(fw.done)

	return fw.watcher.Close()
}
