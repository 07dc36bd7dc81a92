package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"testament.dev/pkg/testament/internal/controller"
	"testament.dev/pkg/testament/internal/domain"
	m "testament.dev/pkg/testament/internal/model"
)

var prPathFlag string

// prCmd represents the pr command.
var prCmd = newPRCmd()

func newPRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pr <pull-request-url>",
		Short: "Run the tests a pull request touches",
		Long: `Fetch the diff of a GitHub pull request, extract the test methods it adds
or modifies, and open a session narrowed to those tests and the projects that
own them. Without a terminal (or with --no-tui) the narrowed tests are run
directly and the results printed.

Authentication uses GITHUB_TOKEN when set, falling back to the gh CLI.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPRSession(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&prPathFlag, pathFlagName, "", "repository checkout root (default: working directory)")

	return cmd
}

func init() {
	rootCmd.AddCommand(prCmd)
}

func runPRSession(cmd *cobra.Command, url string) error {
	info, err := domain.ParsePRURL(url)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	diff, err := githubAdapter.FetchDiff(ctx, info.Owner, info.Repo, info.Number, githubAdapter.Token())
	if err != nil {
		return err
	}

	changed := domain.ExtractChangedTests(diff)
	if len(changed) == 0 {
		return fmt.Errorf("no changed tests found in %s", url)
	}

	// The session covers only the projects owning the changed files, not the
	// whole solution.
	root := prPathFlag
	if root == "" {
		root = "."
	}

	projectPaths := domain.ProjectsForChangedTests(fsAdapter, m.Path(root), changed)
	if len(projectPaths) == 0 {
		return fmt.Errorf("no projects found for the files changed in %s", url)
	}

	solutionDir := m.Path(filepath.Dir(projectPaths[0].String()))

	projects, events := discoverer.Discover(ctx, projectPaths)

	var ui controller.UI = controller.NewSimpleRunUI(cmd, executor)
	if controller.IsTTY() && !noTUIFlag {
		ui = controller.NewTUI(executor)
	}

	return ui.Run(ctx, controller.SessionParams{
		Projects:      projects,
		Discovery:     events,
		SolutionDir:   solutionDir,
		Label:         fmt.Sprintf("%s/%s#%d", info.Owner, info.Repo, info.Number),
		Preselected:   changed,
		WatchDebounce: viper.GetInt(watchDebounceKey),
	})
}
