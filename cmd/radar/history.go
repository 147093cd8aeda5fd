package main

import (
	"os"

	"github.com/spf13/cobra"

	"radar/internal/hotspots"
	"radar/internal/report"
)

var (
	historyFile   string
	historyRun    string
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored radar runs or a file's trend",
	Long: `Show reports saved with 'radar report --save'.

Without flags the most recent runs are listed. --run prints a stored report
again, and --file fits a trend to one file's score across runs.

Examples:
  radar history
  radar history --run 5f0c...
  radar history --file src/parser.rs --format=json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFile, "file", "", "Show the trend of one file")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Print a stored report by run id")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
	historyCmd.Flags().StringVar(&historyFormat, "format", "", "Output format: human, plain, tsv, json, yaml")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()
	cfg, logger, err := loadEnvironment(repoRoot)
	if err != nil {
		return err
	}

	formatName := cfg.Report.Format
	if historyFormat != "" {
		formatName = historyFormat
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}
	opts := report.Options{Format: format, Header: cfg.Report.Header}

	store, err := hotspots.OpenStore(cfg.HistoryPath(repoRoot), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	switch {
	case historyRun != "":
		rep, err := store.LoadReport(historyRun)
		if err != nil {
			return err
		}
		opts.Functions = true
		return report.WriteReport(os.Stdout, rep, opts)

	case historyFile != "":
		trend, snapshots, err := store.FileTrend(historyFile)
		if err != nil {
			return err
		}
		return report.WriteTrend(os.Stdout, report.TrendView{
			Path:      historyFile,
			Trend:     trend,
			Snapshots: snapshots,
		}, opts)

	default:
		runs, err := store.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		return report.WriteRuns(os.Stdout, runs, opts)
	}
}
