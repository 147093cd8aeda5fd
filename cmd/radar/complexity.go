package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"radar/internal/complexity"
	radarerrors "radar/internal/errors"
	"radar/internal/report"
)

var (
	complexityFormat   string
	complexitySortBy   string
	complexityLimit    int
	complexityNoHeader bool
)

var complexityCmd = &cobra.Command{
	Use:   "complexity <file>",
	Short: "Score the functions of a local source file",
	Long: `Score every top-level function of a source file by cognitive complexity
using tree-sitter parsing. Rust is supported.

Examples:
  radar complexity src/main.rs
  radar complexity --sort=cognitive --limit=10 src/lib.rs
  radar complexity --format=json src/parser.rs`,
	Args: cobra.ExactArgs(1),
	RunE: runComplexity,
}

func init() {
	complexityCmd.Flags().StringVar(&complexityFormat, "format", "", "Output format: human, plain, tsv, json, yaml")
	complexityCmd.Flags().StringVar(&complexitySortBy, "sort", "line", "Sort by: cognitive, name, or line")
	complexityCmd.Flags().IntVar(&complexityLimit, "limit", 0, "Limit number of functions shown (0 for all)")
	complexityCmd.Flags().BoolVar(&complexityNoHeader, "no-header", false, "Print function rows only")
	rootCmd.AddCommand(complexityCmd)
}

func runComplexity(cmd *cobra.Command, args []string) error {
	start := time.Now()
	filePath := args[0]
	repoRoot := mustGetRepoRoot()

	cfg, logger, err := loadEnvironment(repoRoot)
	if err != nil {
		return err
	}

	formatName := cfg.Report.Format
	if complexityFormat != "" {
		formatName = complexityFormat
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	if !complexity.IsAvailable() {
		return radarerrors.NewRadarError(
			radarerrors.InternalError,
			"complexity analysis requires CGO (tree-sitter); this binary was built without it",
			nil,
			nil,
		)
	}

	absPath := filePath
	if !filepath.IsAbs(filePath) {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		absPath = filepath.Join(cwd, filePath)
	}

	ctx, cancel := newContext()
	defer cancel()

	analyzer := complexity.NewAnalyzer(logger)
	analyzer.SetThresholds(cfg.Analysis.Risk)

	fc, err := analyzer.AnalyzeFile(ctx, absPath)
	if err != nil {
		return err
	}
	fc.Path = filePath

	if err := sortFunctions(fc.Functions, complexitySortBy); err != nil {
		return err
	}
	if complexityLimit > 0 && len(fc.Functions) > complexityLimit {
		fc.Functions = fc.Functions[:complexityLimit]
	}

	err = report.WriteFileComplexity(os.Stdout, fc, report.Options{
		Format: format,
		Header: cfg.Report.Header && !complexityNoHeader,
	})
	if err != nil {
		return err
	}

	logger.Debug("Complexity analysis completed", map[string]interface{}{
		"file":          filePath,
		"functionCount": fc.FunctionCount,
		"maxCognitive":  fc.Max,
		"duration":      time.Since(start).Milliseconds(),
	})
	return nil
}

// sortFunctions orders scores in place. "line" keeps declaration order.
func sortFunctions(fns []complexity.FunctionComplexity, by string) error {
	switch by {
	case "", "line":
		sort.SliceStable(fns, func(i, j int) bool {
			return fns[i].StartLine < fns[j].StartLine
		})
	case "cognitive":
		sort.SliceStable(fns, func(i, j int) bool {
			return fns[i].Value > fns[j].Value
		})
	case "name":
		sort.SliceStable(fns, func(i, j int) bool {
			return fns[i].Function < fns[j].Function
		})
	default:
		return fmt.Errorf("unknown sort key %q (want cognitive, name, or line)", by)
	}
	return nil
}
