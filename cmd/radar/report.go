package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"radar/internal/auth"
	gitbackend "radar/internal/backends/git"
	githubbackend "radar/internal/backends/github"
	"radar/internal/complexity"
	"radar/internal/config"
	radarerrors "radar/internal/errors"
	"radar/internal/hotspots"
	"radar/internal/logging"
	"radar/internal/report"
)

var (
	reportOwner         string
	reportRepo          string
	reportLimit         int
	reportToken         string
	reportSource        string
	reportFormat        string
	reportNoHeader      bool
	reportFunctions     bool
	reportSave          bool
	reportSupportedOnly bool
	reportNoCrates      bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List the most changed files with their function complexity",
	Long: `List the most frequently changed files of a repository, most changed first,
and score every function in them by cognitive complexity.

Change counts are commits per file over the last year. With --source=github
the GitHub API is queried and needs a token (--token, GITHUB_TOKEN, or the
OS keyring). With --source=git the local clone's history is read.

Examples:
  radar report -u rust-lang -r cargo
  radar report -u rust-lang -r cargo -n 10 --functions
  radar report --source=git --format=tsv --no-header
  radar report --source=git --save`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOwner, "user", "u", "", "Repository owner (GitHub user or organization)")
	reportCmd.Flags().StringVarP(&reportRepo, "repo", "r", "", "Repository name")
	reportCmd.Flags().IntVarP(&reportLimit, "number", "n", 5, "Number of files to report")
	reportCmd.Flags().StringVarP(&reportToken, "token", "t", "", "GitHub personal access token")
	reportCmd.Flags().StringVar(&reportSource, "source", "", "Change source: github or git (default from config)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "", "Output format: human, plain, tsv, json, yaml")
	reportCmd.Flags().BoolVar(&reportNoHeader, "no-header", false, "Print rows only")
	reportCmd.Flags().BoolVar(&reportFunctions, "functions", false, "List per-function scores under each file")
	reportCmd.Flags().BoolVar(&reportSave, "save", false, "Store the report in the history database")
	reportCmd.Flags().BoolVar(&reportSupportedOnly, "supported-only", false, "Skip files no evaluator can score before applying -n")
	reportCmd.Flags().BoolVar(&reportNoCrates, "no-crates", false, "Skip Cargo.toml crate attribution")
	reportCmd.Flags().SetNormalizeFunc(reportFlagAliases)
	rootCmd.AddCommand(reportCmd)
}

// reportFlagAliases accepts the long flag names of earlier releases.
func reportFlagAliases(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "github-user":
		name = "user"
	case "github-repo":
		name = "repo"
	case "num-rows":
		name = "number"
	}
	return pflag.NormalizedName(name)
}

func runReport(cmd *cobra.Command, args []string) error {
	start := time.Now()
	repoRoot := mustGetRepoRoot()

	cfg, logger, err := loadEnvironment(repoRoot)
	if err != nil {
		return err
	}
	applyReportFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return configError(err)
	}

	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}

	ctx, cancel := newContext()
	defer cancel()

	source, repository, err := buildSource(repoRoot, cfg, logger)
	if err != nil {
		return err
	}

	analyzer := complexity.NewAnalyzer(logger)
	analyzer.SetThresholds(cfg.Analysis.Risk)
	scanner := hotspots.NewScanner(source, analyzer, logger)

	rep, err := scanner.Scan(ctx, hotspots.ScanOptions{
		Repository:    repository,
		SourceName:    cfg.Source.Kind,
		Limit:         cfg.Source.Limit,
		SupportedOnly: cfg.Analysis.SupportedOnly,
		Workers:       cfg.Analysis.Workers,
		ResolveCrates: !reportNoCrates,
	})
	if err != nil {
		return err
	}

	err = report.WriteReport(os.Stdout, rep, report.Options{
		Format:    format,
		Header:    cfg.Report.Header,
		Functions: reportFunctions,
	})
	if err != nil {
		return err
	}

	if reportSave || cfg.History.Enabled {
		if err := saveReport(ctx, cfg.HistoryPath(repoRoot), rep, logger); err != nil {
			return err
		}
	}

	logger.Info("Report completed", map[string]interface{}{
		"runId":      rep.RunID,
		"repository": repository,
		"analyzed":   rep.Analyzed,
		"skipped":    rep.Skipped,
		"failed":     rep.Failed,
		"duration":   time.Since(start).Milliseconds(),
	})
	return nil
}

// applyReportFlags copies explicitly set flags over the loaded config.
func applyReportFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("user") {
		cfg.GitHub.Owner = reportOwner
	}
	if flags.Changed("repo") {
		cfg.GitHub.Repo = reportRepo
	}
	if flags.Changed("number") {
		cfg.Source.Limit = reportLimit
	}
	if flags.Changed("source") {
		cfg.Source.Kind = reportSource
	}
	if flags.Changed("format") {
		cfg.Report.Format = reportFormat
	}
	if flags.Changed("no-header") {
		cfg.Report.Header = !reportNoHeader
	}
	if flags.Changed("supported-only") {
		cfg.Analysis.SupportedOnly = reportSupportedOnly
	}
}

// buildSource returns the configured change source and a label for the
// repository it reads.
func buildSource(repoRoot string, cfg *config.Config, logger *logging.Logger) (hotspots.Source, string, error) {
	switch cfg.Source.Kind {
	case gitbackend.BackendID:
		adapter, err := gitbackend.NewGitAdapter(repoRoot, cfg, logger)
		if err != nil {
			return nil, "", err
		}
		return adapter, filepath.Base(adapter.Root()), nil

	case githubbackend.BackendID:
		if cfg.GitHub.Owner == "" || cfg.GitHub.Repo == "" {
			return nil, "", radarerrors.NewRadarError(
				radarerrors.ConfigInvalid,
				"the github source needs a repository: pass -u <owner> -r <repo>",
				nil,
				[]radarerrors.FixAction{{
					Type:        radarerrors.RunCommand,
					Command:     "radar report --source=git",
					Safe:        true,
					Description: "Read the local clone instead",
				}},
			)
		}
		resolver := auth.NewResolver(auth.NewKeyring(logger), logger)
		token, err := resolver.Resolve(reportToken)
		if err != nil {
			return nil, "", err
		}
		client, err := githubbackend.NewClient(githubbackend.OptionsFromConfig(cfg, token.Value), logger)
		if err != nil {
			return nil, "", err
		}
		return client, client.Repository(), nil

	default:
		return nil, "", radarerrors.NewRadarError(
			radarerrors.ConfigInvalid,
			fmt.Sprintf("unknown source %q", cfg.Source.Kind),
			nil,
			nil,
		)
	}
}

func saveReport(ctx context.Context, path string, rep *hotspots.Report, logger *logging.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	store, err := hotspots.OpenStore(path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveReport(rep); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved run %s to %s\n", rep.RunID, path)
	return nil
}
