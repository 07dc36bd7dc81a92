package domain

import (
	"context"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"testament.dev/pkg/testament/internal/adapter"
	m "testament.dev/pkg/testament/internal/model"
)

// Discoverer enumerates the tests of every project concurrently, emitting a
// per-project event as each finishes so callers can render results as they
// arrive.
type Discoverer struct {
	enum *Enumerator
	fs   adapter.SourceFSAdapter
}

func NewDiscoverer(enum *Enumerator, fs adapter.SourceFSAdapter) *Discoverer {
	return &Discoverer{enum: enum, fs: fs}
}

// Discover returns one placeholder project per path, in the given order, plus
// an event channel that yields exactly one ProjectDiscovered or ProjectFailed
// per project followed by a DiscoveryComplete before closing. One project
// failing never stops its siblings.
func (d *Discoverer) Discover(ctx context.Context, paths []m.Path) ([]m.Project, <-chan m.DiscoveryEvent) {
	projects := make([]m.Project, 0, len(paths))
	for _, path := range paths {
		projects = append(projects, m.NewProject(m.ProjectNameFromPath(path), path))
	}

	events := make(chan m.DiscoveryEvent, len(paths)+1)

	go func() {
		defer close(events)

		var group errgroup.Group

		for i, path := range paths {
			group.Go(func() error {
				names, err := d.enum.List(ctx, path)
				if err != nil {
					slog.Debug("project discovery failed", "project", path, "error", err)
					events <- m.ProjectFailed{Index: i, Message: err.Error()}

					return nil
				}

				var index *SourceIndex
				if !MostlyQualified(names) {
					index = BuildSourceIndex(d.fs, m.Path(filepath.Dir(path.String())))
				}

				events <- m.ProjectDiscovered{Index: i, Classes: Resolve(names, index)}

				return nil
			})
		}

		_ = group.Wait()

		events <- m.DiscoveryComplete{}
	}()

	return projects, events
}
