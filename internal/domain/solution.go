// Package domain implements test discovery, identity resolution, execution,
// and result correlation for .NET test projects.
package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"testament.dev/pkg/testament/internal/adapter"
	m "testament.dev/pkg/testament/internal/model"
)

// ErrNoSolution is returned when no solution file exists anywhere above the
// starting path.
var ErrNoSolution = errors.New("no solution file found")

// FindSolution searches upward from start for a .sln file. A start path that
// already names a solution file is returned as-is.
func FindSolution(fs adapter.SourceFSAdapter, start m.Path) (m.Path, error) {
	if strings.EqualFold(filepath.Ext(string(start)), ".sln") && fs.Exists(start) {
		return start, nil
	}

	dir := string(start)

	for {
		entries, err := fs.DirEntries(m.Path(dir))
		if err != nil {
			return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
		}

		for _, name := range entries {
			if strings.EqualFold(filepath.Ext(name), ".sln") {
				return m.Path(filepath.Join(dir, name)), nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoSolution
		}

		dir = parent
	}
}

// isTestProjectName reports whether a solution project entry looks like a
// test project by naming convention.
func isTestProjectName(name string) bool {
	return strings.HasSuffix(name, "Tests") || strings.HasSuffix(name, "Test") ||
		strings.HasSuffix(name, ".Tests") || strings.HasSuffix(name, ".Test")
}

// ParseSolution extracts candidate test-project descriptor paths from a
// solution file. Solution project lines have the shape
//
//	Project("{GUID}") = "Name", "rel\path\Name.csproj", "{GUID}"
//
// and only entries whose name matches the test naming convention, whose path
// is a .csproj, and whose file exists are kept.
func ParseSolution(fs adapter.SourceFSAdapter, slnPath m.Path) ([]m.Path, error) {
	content, err := fs.ReadFile(slnPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read solution file: %w", err)
	}

	slnDir := filepath.Dir(string(slnPath))

	var projects []m.Path

	for _, line := range strings.Split(string(content), "\n") {
		if !strings.HasPrefix(line, "Project(") {
			continue
		}

		parts := strings.Split(line, "\"")
		if len(parts) < 6 {
			continue
		}

		name := parts[3]
		relPath := parts[5]

		if !isTestProjectName(name) || !strings.HasSuffix(relPath, ".csproj") {
			continue
		}

		fullPath := m.Path(filepath.Join(slnDir, strings.ReplaceAll(relPath, `\`, "/")))
		if fs.Exists(fullPath) {
			projects = append(projects, fullPath)
		}
	}

	return projects, nil
}
