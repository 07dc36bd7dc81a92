package adapter

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	m "testament.dev/pkg/testament/internal/model"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestLocalSourceFSAdapter_WalkSourcesSkipsBuildOutput(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Tests/MathTests.cs":            "class MathTests {}",
		"Tests/Inner/StringTests.cs":    "class StringTests {}",
		"Tests/bin/Debug/Generated.cs":  "class Generated {}",
		"Tests/obj/Debug/Generated.cs":  "class Generated {}",
		"Tests/.hidden/Hidden.cs":       "class Hidden {}",
		"Tests/readme.md":               "docs",
	})

	adapter := NewLocalSourceFSAdapter()

	var visited []string

	adapter.WalkSources(m.Path(root), ".cs", func(path m.Path, content []byte) {
		rel, err := filepath.Rel(root, path.String())
		require.NoError(t, err)

		visited = append(visited, rel)
		require.NotEmpty(t, content)
	})

	sort.Strings(visited)
	require.Equal(t, []string{
		filepath.Join("Tests", "Inner", "StringTests.cs"),
		filepath.Join("Tests", "MathTests.cs"),
	}, visited)
}

func TestLocalSourceFSAdapter_NewestArtifact(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"bin/Debug/net8.0/Sample.dll":   "old",
		"bin/Release/net8.0/Sample.dll": "new",
		"bin/Debug/net8.0/Other.dll":    "other",
	})

	older := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "bin/Debug/net8.0/Sample.dll"), older, older))

	adapter := NewLocalSourceFSAdapter()

	artifact, ok := adapter.NewestArtifact(m.Path(root), "Sample.dll")
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "bin/Release/net8.0/Sample.dll"), artifact.String())
}

func TestLocalSourceFSAdapter_NewestArtifactMissing(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	_, ok := adapter.NewestArtifact(m.Path(t.TempDir()), "Sample.dll")
	require.False(t, ok)
}

func TestLocalSourceFSAdapter_FindProjectFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Sample.Tests/Sample.Tests.csproj": "<Project />",
		"Sample.Tests/Deep/Nested/File.cs": "class C {}",
	})

	adapter := NewLocalSourceFSAdapter()

	found, ok := adapter.FindProjectFile(m.Path(filepath.Join(root, "Sample.Tests/Deep/Nested/File.cs")), ".csproj")
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "Sample.Tests/Sample.Tests.csproj"), found.String())
}

func TestLocalSourceFSAdapter_DirEntries(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"App.sln":     "solution",
		"src/App.cs":  "class App {}",
	})

	adapter := NewLocalSourceFSAdapter()

	entries, err := adapter.DirEntries(m.Path(root))
	require.NoError(t, err)

	sort.Strings(entries)
	require.Equal(t, []string{"App.sln", "src"}, entries)
}

func TestLocalSourceFSAdapter_Exists(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"App.sln": "solution"})

	adapter := NewLocalSourceFSAdapter()
	require.True(t, adapter.Exists(m.Path(filepath.Join(root, "App.sln"))))
	require.False(t, adapter.Exists(m.Path(filepath.Join(root, "Missing.sln"))))
}
