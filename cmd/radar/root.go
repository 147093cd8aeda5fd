package main

import (
	"radar/internal/version"

	"github.com/spf13/cobra"
)

var (
	// verbosity is the number of -v flags
	verbosity int
	quiet     bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Radar - find code that is both hard to read and often changed",
	Long: `Radar ranks the most frequently changed files of a repository and scores
every function in them by cognitive complexity, a readability metric that
penalizes nesting more than flat sequences of decisions.

Change counts come from the GitHub API or from a local git clone.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("radar version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: human or json (default from config)")
}
