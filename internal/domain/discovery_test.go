package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	m "testament.dev/pkg/testament/internal/model"
)

func collectDiscovery(t *testing.T, events <-chan m.DiscoveryEvent) []m.DiscoveryEvent {
	t.Helper()

	var all []m.DiscoveryEvent
	for event := range events {
		all = append(all, event)
	}

	return all
}

func TestDiscoverer_PlaceholdersReturnedImmediately(t *testing.T) {
	dotnet := &fakeDotnet{
		listOutput: map[string]string{
			"A/A.csproj": listingOutput("NS.A.T1"),
			"B/B.csproj": listingOutput("NS.B.T2"),
		},
		listExitCode: map[string]int{"A/A.csproj": 0, "B/B.csproj": 0},
	}

	d := NewDiscoverer(NewEnumerator(dotnet, newFakeCache(), newFakeFS()), newFakeFS())

	projects, events := d.Discover(context.Background(), []m.Path{"A/A.csproj", "B/B.csproj"})

	require.Len(t, projects, 2)
	require.Equal(t, "A", projects[0].Name)
	require.Equal(t, "B", projects[1].Name)
	require.Zero(t, projects[0].TestCount())

	collectDiscovery(t, events)
}

func TestDiscoverer_EmitsPerProjectThenComplete(t *testing.T) {
	dotnet := &fakeDotnet{
		listOutput: map[string]string{
			"A/A.csproj": listingOutput("NS.MathTests.Adds", "NS.MathTests.Subtracts"),
		},
		listExitCode: map[string]int{"A/A.csproj": 0},
	}

	d := NewDiscoverer(NewEnumerator(dotnet, newFakeCache(), newFakeFS()), newFakeFS())

	_, events := d.Discover(context.Background(), []m.Path{"A/A.csproj"})

	all := collectDiscovery(t, events)
	require.Len(t, all, 2)

	discovered, ok := all[0].(m.ProjectDiscovered)
	require.True(t, ok)
	require.Zero(t, discovered.Index)
	require.Len(t, discovered.Classes, 1)
	require.Len(t, discovered.Classes[0].Tests, 2)

	_, ok = all[1].(m.DiscoveryComplete)
	require.True(t, ok)
}

func TestDiscoverer_FailureDoesNotStopSiblings(t *testing.T) {
	dotnet := &fakeDotnet{
		listOutput:   map[string]string{"B/B.csproj": listingOutput("NS.B.T2")},
		listExitCode: map[string]int{"B/B.csproj": 0},
		listErr:      map[string]error{"A/A.csproj": errors.New("broken project")},
	}

	d := NewDiscoverer(NewEnumerator(dotnet, newFakeCache(), newFakeFS()), newFakeFS())

	_, events := d.Discover(context.Background(), []m.Path{"A/A.csproj", "B/B.csproj"})

	all := collectDiscovery(t, events)
	require.Len(t, all, 3)

	var (
		failed     *m.ProjectFailed
		discovered *m.ProjectDiscovered
	)

	for _, event := range all[:2] {
		switch e := event.(type) {
		case m.ProjectFailed:
			failed = &e
		case m.ProjectDiscovered:
			discovered = &e
		}
	}

	require.NotNil(t, failed)
	require.Zero(t, failed.Index)
	require.Contains(t, failed.Message, "broken project")

	require.NotNil(t, discovered)
	require.Equal(t, 1, discovered.Index)

	_, ok := all[2].(m.DiscoveryComplete)
	require.True(t, ok)
}

func TestDiscoverer_BareNamesResolvedThroughSources(t *testing.T) {
	dotnet := &fakeDotnet{
		listOutput:   map[string]string{"A/A.csproj": listingOutput("Adds")},
		listExitCode: map[string]int{"A/A.csproj": 0},
	}

	fs := newFakeFS()
	fs.files["A/MathTests.cs"] = `
namespace NS
{
    public class MathTests
    {
        [Fact]
        public void Adds() { }
    }
}
`

	d := NewDiscoverer(NewEnumerator(dotnet, newFakeCache(), fs), fs)

	_, events := d.Discover(context.Background(), []m.Path{"A/A.csproj"})

	all := collectDiscovery(t, events)
	require.Len(t, all, 2)

	discovered, ok := all[0].(m.ProjectDiscovered)
	require.True(t, ok)
	require.Len(t, discovered.Classes, 1)
	require.Equal(t, "NS.MathTests", discovered.Classes[0].FullName())
	require.Equal(t, "NS.MathTests.Adds", discovered.Classes[0].Tests[0].FullName)
}
