package cmd

import (
	"github.com/spf13/cobra"

	"testament.dev/pkg/testament/internal/controller"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [path]",
		Short: "List discovered test projects and their tests",
		Long: `Discover every test project and print the full test tree as a table,
without running anything.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			return controller.NewSimpleUI(cmd).Run(ctx, controller.SessionParams{
				Projects:    projects,
				Discovery:   events,
				SolutionDir: solutionDir,
				Label:       label,
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
