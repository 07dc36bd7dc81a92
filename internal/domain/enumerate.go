package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"testament.dev/pkg/testament/internal/adapter"
	m "testament.dev/pkg/testament/internal/model"
)

const testListBanner = "The following Tests are available:"

// Enumerator lists the tests of a project by asking the toolchain, caching
// the result keyed on project artifacts so unchanged projects skip the
// (slow) listing entirely.
type Enumerator struct {
	dotnet adapter.DotnetAdapter
	cache  adapter.EnumerationCache
	fs     adapter.SourceFSAdapter
}

func NewEnumerator(
	dotnet adapter.DotnetAdapter,
	cache adapter.EnumerationCache,
	fs adapter.SourceFSAdapter,
) *Enumerator {
	return &Enumerator{dotnet: dotnet, cache: cache, fs: fs}
}

// List returns the test names of a project. Names come fully qualified when
// the toolchain provides qualification; otherwise they are the display names
// the listing prints, upgraded to qualified names from the built test
// assembly when one is available.
func (e *Enumerator) List(ctx context.Context, project m.Path) ([]string, error) {
	if names, ok := e.cache.Load(project); ok {
		return names, nil
	}

	output, exitCode, err := e.dotnet.ListTests(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("listing tests for %s: %w", project, err)
	}

	if exitCode != 0 {
		return nil, listingFailure(output, exitCode)
	}

	names := e.upgradeToQualified(ctx, project, parseTestListing(output))

	if err := e.cache.Save(project, names); err != nil {
		slog.Debug("enumeration cache write failed", "project", project, "error", err)
	}

	return names, nil
}

// upgradeToQualified asks the built test assembly for fully qualified names
// after every successful listing. The substitution only holds when both
// listings agree on the test count.
func (e *Enumerator) upgradeToQualified(ctx context.Context, project m.Path, names []string) []string {
	projectDir := m.Path(filepath.Dir(project.String()))

	artifact, ok := e.fs.NewestArtifact(projectDir, adapter.ArtifactName(project))
	if !ok {
		return names
	}

	qualified, err := e.dotnet.ListQualified(ctx, artifact)
	if err != nil {
		slog.Debug("qualified listing failed", "artifact", artifact, "error", err)

		return names
	}

	if len(qualified) != len(names) {
		return names
	}

	return qualified
}

// parseTestListing extracts test names from dotnet test --list-tests output:
// every non-empty line after the availability banner, trimmed.
func parseTestListing(output string) []string {
	var (
		names  []string
		inList bool
	)

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, testListBanner) {
			inList = true

			continue
		}

		if inList && trimmed != "" {
			names = append(names, trimmed)
		}
	}

	return names
}

// listingFailure builds an error from a failed listing, preferring the
// output's diagnostic lines over the bare exit code.
func listingFailure(output string, exitCode int) error {
	var diagnostics []string

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isEnumerationNoise(trimmed) {
			continue
		}

		diagnostics = append(diagnostics, trimmed)
	}

	if len(diagnostics) > 0 {
		return fmt.Errorf("test listing failed: %s", strings.Join(diagnostics, "\n"))
	}

	return fmt.Errorf("test listing failed: exit code %d", exitCode)
}

// isEnumerationNoise reports toolchain banner lines that carry no diagnostic
// value.
func isEnumerationNoise(line string) bool {
	for _, prefix := range []string{
		"Determining projects to restore",
		"Restored ",
		"All projects are up-to-date",
		"Microsoft (R)",
		"Copyright (C)",
		"Test run for ",
		"A total of ",
	} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}

	return false
}
