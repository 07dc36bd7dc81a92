package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "testament.dev/pkg/testament/internal/model"
)

func writeProjectFile(t *testing.T, dir, rel string) string {
	t.Helper()

	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("<Project Sdk=\"Microsoft.NET.Sdk\" />\n"), 0o644))

	return full
}

func TestResolveProjects_DirectProjectFile(t *testing.T) {
	dir := t.TempDir()
	project := writeProjectFile(t, dir, "App.Tests/App.Tests.csproj")

	paths, solutionDir, label, err := resolveProjects(project)

	require.NoError(t, err)
	assert.Equal(t, []m.Path{m.Path(project)}, paths)
	assert.Equal(t, m.Path(filepath.Dir(project)), solutionDir)
	assert.Equal(t, "App.Tests.csproj", label)
}

func TestResolveProjects_MissingProjectFile(t *testing.T) {
	dir := t.TempDir()

	_, _, _, err := resolveProjects(filepath.Join(dir, "Gone.Tests.csproj"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "project file not found")
}

func TestResolveProjects_SolutionSearch(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "App.Tests/App.Tests.csproj")
	writeProjectFile(t, dir, "App/App.csproj")

	sln := `Microsoft Visual Studio Solution File, Format Version 12.00
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "App", "App\App.csproj", "{AAAA}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "App.Tests", "App.Tests\App.Tests.csproj", "{BBBB}"
EndProject
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "App.sln"), []byte(sln), 0o644))

	paths, solutionDir, label, err := resolveProjects(dir)

	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, m.Path(filepath.Join(dir, "App.Tests/App.Tests.csproj")), paths[0])
	assert.Equal(t, m.Path(dir), solutionDir)
	assert.Equal(t, "App.sln", label)
}

func TestResolveProjects_NoTestProjects(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "App/App.csproj")

	sln := `Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "App", "App\App.csproj", "{AAAA}"
EndProject
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "App.sln"), []byte(sln), 0o644))

	_, _, _, err := resolveProjects(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no test projects found")
}

func TestFindSolutionFrom_DirectSolutionPath(t *testing.T) {
	dir := t.TempDir()
	sln := filepath.Join(dir, "App.sln")
	require.NoError(t, os.WriteFile(sln, []byte(""), 0o644))

	found, err := findSolutionFrom(sln)

	require.NoError(t, err)
	assert.Equal(t, m.Path(sln), found)
}
