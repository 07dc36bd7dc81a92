package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"testament.dev/pkg/testament/internal/controller"
	"testament.dev/pkg/testament/internal/domain"
	m "testament.dev/pkg/testament/internal/model"
)

func findSolutionFrom(start string) (m.Path, error) {
	return domain.FindSolution(fsAdapter, m.Path(start))
}

func parseSolutionProjects(solution m.Path) ([]m.Path, error) {
	return domain.ParseSolution(fsAdapter, solution)
}

// watchFlag starts the session with file watching enabled.
var watchFlag bool

func init() {
	rootCmd.Args = cobra.MaximumNArgs(1)
	rootCmd.Flags().BoolVarP(&watchFlag, watchFlagName, "w", false, "re-run the last selection when sources change")
	bindFlagToConfig(rootCmd.Flags().Lookup(watchFlagName), watchFlagName)
}

// resolveProjects turns the optional path argument into the set of test
// project descriptors: a .csproj is taken directly, anything else resolves
// through the nearest solution file.
func resolveProjects(start string) ([]m.Path, m.Path, string, error) {
	if start == "" {
		start = "."
	}

	if strings.EqualFold(filepath.Ext(start), ".csproj") {
		if !fsAdapter.Exists(m.Path(start)) {
			return nil, "", "", fmt.Errorf("project file not found: %s", start)
		}

		return []m.Path{m.Path(start)}, m.Path(filepath.Dir(start)), filepath.Base(start), nil
	}

	solution, err := findSolutionFrom(start)
	if err != nil {
		return nil, "", "", err
	}

	projects, err := parseSolutionProjects(solution)
	if err != nil {
		return nil, "", "", err
	}

	if len(projects) == 0 {
		return nil, "", "", fmt.Errorf("no test projects found in %s", solution)
	}

	return projects, m.Path(filepath.Dir(solution.String())), filepath.Base(solution.String()), nil
}

func runSession(cmd *cobra.Command, args []string) error {
	start := ""
	if len(args) > 0 {
		start = args[0]
	}

	projectPaths, solutionDir, label, err := resolveProjects(start)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	projects, events := discoverer.Discover(ctx, projectPaths)

	return selectUI(cmd).Run(ctx, controller.SessionParams{
		Projects:      projects,
		Discovery:     events,
		SolutionDir:   solutionDir,
		Label:         label,
		Watch:         watchFlag,
		WatchDebounce: viper.GetInt(watchDebounceKey),
	})
}
