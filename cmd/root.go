// Package cmd provides the root command and CLI setup for testament.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"testament.dev/pkg/testament/internal/adapter"
	"testament.dev/pkg/testament/internal/controller"
	"testament.dev/pkg/testament/internal/domain"
	m "testament.dev/pkg/testament/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var dotnetAdapter adapter.DotnetAdapter
var githubAdapter adapter.GitHubAdapter
var enumerator *domain.Enumerator
var discoverer *domain.Discoverer
var executor *domain.Executor

// noCacheFlag disables the enumeration cache when set.
var noCacheFlag bool

// noTUIFlag forces plain text output even on a terminal.
var noTUIFlag bool

// verboseFlag switches file logging to debug level.
var verboseFlag bool

// logFileFlag overrides the log file location.
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	dotnetAdapter = adapter.NewLocalDotnetAdapter(viper.GetStringSlice(runExtraArgsKey))
	githubAdapter = adapter.NewGitHubAdapter()
	executor = domain.NewExecutor(dotnetAdapter)
}

// buildDiscoverer wires the enumerator and discoverer after flags are parsed,
// so no-cache can swap the cache out.
func buildDiscoverer() {
	var cache adapter.EnumerationCache = adapter.NewEnumerationCache()
	if viper.GetBool(noCacheFlagName) {
		cache = adapter.NullEnumerationCache{}
	}

	enumerator = domain.NewEnumerator(dotnetAdapter, cache, fsAdapter)
	discoverer = domain.NewDiscoverer(enumerator, fsAdapter)
}

const rootLongDescription = `Testament discovers the test projects of a .NET solution, lets you browse
and select their tests in an interactive terminal UI, and runs selections
through dotnet test, correlating the results back onto the tree.

Point it at a solution file, a directory containing one, or a single
.csproj. Without arguments it searches upward from the working directory.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "testament",
		Short: ".NET test runner for the terminal",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag || viper.GetBool(logVerboseKey))
			buildDiscoverer()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, args)
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&noCacheFlag, noCacheFlagName, viper.GetBool(noCacheFlagName), "disable the test enumeration cache")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noCacheFlagName), noCacheFlagName)

	cmd.PersistentFlags().BoolVar(&noTUIFlag, noTUIFlagName, false, "print plain output instead of the interactive UI")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", defaultLogVerbose, "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFlagName, "", "log file location (default "+defaultLogFilename+")")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// selectUI picks the interactive UI on a terminal, plain output otherwise.
func selectUI(cmd *cobra.Command) controller.UI {
	if controller.IsTTY() && !noTUIFlag {
		return controller.NewTUI(executor)
	}

	return controller.NewSimpleUI(cmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
