package hotspots

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"radar/internal/complexity"
	radarerrors "radar/internal/errors"
	"radar/internal/logging"
)

// Row status values
const (
	StatusAnalyzed = "analyzed"
	StatusSkipped  = "skipped" // no evaluator for the file's language
	StatusFailed   = "failed"  // read or parse failure
)

// Row is one changed file in a radar report.
type Row struct {
	Path         string                          `json:"path" yaml:"path"`
	Crate        string                          `json:"crate,omitempty" yaml:"crate,omitempty"`
	Changes      int                             `json:"changes" yaml:"changes"`
	Additions    int                             `json:"additions,omitempty" yaml:"additions,omitempty"`
	Deletions    int                             `json:"deletions,omitempty" yaml:"deletions,omitempty"`
	Authors      int                             `json:"authors,omitempty" yaml:"authors,omitempty"`
	LastModified time.Time                       `json:"lastModified,omitempty" yaml:"lastModified,omitempty"`
	Language     complexity.Language             `json:"language,omitempty" yaml:"language,omitempty"`
	Status       string                          `json:"status" yaml:"status"`
	Functions    []complexity.FunctionComplexity `json:"functions,omitempty" yaml:"functions,omitempty"`
	MaxCognitive int                             `json:"maxCognitive" yaml:"maxCognitive"`
	Total        int                             `json:"totalCognitive" yaml:"totalCognitive"`
	Hotness      int                             `json:"hotness" yaml:"hotness"`
	Score        float64                         `json:"score" yaml:"score"`
	Error        string                          `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorCode    string                          `json:"errorCode,omitempty" yaml:"errorCode,omitempty"`
}

// Report is the result of one scan.
type Report struct {
	RunID       string    `json:"runId" yaml:"runId"`
	Repository  string    `json:"repository" yaml:"repository"`
	Source      string    `json:"source" yaml:"source"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
	Rows        []Row     `json:"rows" yaml:"rows"`
	Analyzed    int       `json:"analyzed" yaml:"analyzed"`
	Skipped     int       `json:"skipped" yaml:"skipped"`
	Failed      int       `json:"failed" yaml:"failed"`
}

// ScanOptions controls a scan.
type ScanOptions struct {
	// Repository labels the report, e.g. "owner/repo" or a local path
	Repository string
	// SourceName labels where change counts came from ("github", "git")
	SourceName string
	// Limit is the number of files to report
	Limit int
	// SupportedOnly drops files no evaluator can score before applying Limit
	SupportedOnly bool
	// Workers bounds concurrent file reads and analysis
	Workers int
	// ResolveCrates attributes each file to its nearest Cargo.toml package
	ResolveCrates bool
}

// Scanner joins change frequency with cognitive complexity.
type Scanner struct {
	source   Source
	analyzer *complexity.Analyzer
	logger   *logging.Logger
	now      func() time.Time
}

// NewScanner creates a scanner. A nil logger discards output.
func NewScanner(source Source, analyzer *complexity.Analyzer, logger *logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if analyzer == nil {
		analyzer = complexity.NewAnalyzer(logger)
	}
	return &Scanner{
		source:   source,
		analyzer: analyzer,
		logger:   logger.With(map[string]interface{}{"component": "scanner"}),
		now:      time.Now,
	}
}

// Scan builds a report for the most changed files. Rows keep the source's
// change-frequency order. Per-file failures are recorded on the row; the
// returned error is reserved for source failures and cancellation.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) (*Report, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	fetch := opts.Limit
	if opts.SupportedOnly {
		fetch = 0
	}
	changes, err := s.source.TopChangedFiles(ctx, fetch)
	if err != nil {
		return nil, err
	}
	if opts.SupportedOnly {
		changes = filterSupported(changes)
	}
	changes = RankChanges(changes, opts.Limit)

	report := &Report{
		RunID:       uuid.New().String(),
		Repository:  opts.Repository,
		Source:      opts.SourceName,
		GeneratedAt: s.now().UTC(),
		Rows:        make([]Row, len(changes)),
	}

	var crates *crateResolver
	if opts.ResolveCrates {
		crates = newCrateResolver(s.source, s.logger)
	}

	// Read phase: fetch sources of analyzable files and attribute crates.
	inputs := make([]complexity.Input, 0, len(changes))
	inputRow := make([]int, 0, len(changes))
	sources := make([][]byte, len(changes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, fc := range changes {
		row := &report.Rows[i]
		*row = Row{
			Path:         fc.Path,
			Changes:      fc.Changes,
			Additions:    fc.Additions,
			Deletions:    fc.Deletions,
			Authors:      fc.Authors,
			LastModified: fc.LastModified,
		}

		lang, ok := complexity.LanguageFromExtension(strings.ToLower(filepath.Ext(fc.Path)))
		row.Language = lang
		if !ok || !complexity.IsImplemented(lang) {
			row.Status = StatusSkipped
			continue
		}

		g.Go(func() error {
			data, err := s.source.ReadFile(gctx, fc.Path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				fail(row, err)
				s.logger.Warn("Could not read file", map[string]interface{}{
					"path":  fc.Path,
					"error": err.Error(),
				})
				return nil
			}
			sources[i] = data
			if crates != nil {
				row.Crate = crates.resolve(gctx, fc.Path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range report.Rows {
		if sources[i] != nil && report.Rows[i].Status == "" {
			inputs = append(inputs, complexity.Input{Path: report.Rows[i].Path, Source: sources[i]})
			inputRow = append(inputRow, i)
		}
	}

	// Analysis phase.
	results, err := s.analyzer.AnalyzeMany(ctx, inputs, opts.Workers)
	if err != nil {
		return nil, err
	}
	for k, res := range results {
		row := &report.Rows[inputRow[k]]
		if res.Err != nil {
			fail(row, res.Err)
			s.logger.Warn("Could not analyze file", map[string]interface{}{
				"path":  row.Path,
				"error": res.Err.Error(),
			})
			continue
		}
		row.Status = StatusAnalyzed
		row.Functions = res.File.Functions
		row.MaxCognitive = res.File.Max
		row.Total = res.File.Total
	}

	for i := range report.Rows {
		row := &report.Rows[i]
		row.Hotness = Hotness(row.Changes, row.MaxCognitive)
		row.Score = ComputeCompositeScore(
			NormalizeChurnScore(row.Changes, row.Authors),
			NormalizeComplexityScore(row.MaxCognitive, row.Total),
		)
		switch row.Status {
		case StatusAnalyzed:
			report.Analyzed++
		case StatusSkipped:
			report.Skipped++
		case StatusFailed:
			report.Failed++
		}
	}

	s.logger.Info("Scan complete", map[string]interface{}{
		"runId":    report.RunID,
		"files":    len(report.Rows),
		"analyzed": report.Analyzed,
		"failed":   report.Failed,
	})
	return report, nil
}

func fail(row *Row, err error) {
	row.Status = StatusFailed
	row.Error = err.Error()
	row.ErrorCode = string(radarerrors.CodeOf(err))
}

func filterSupported(changes []FileChange) []FileChange {
	out := changes[:0:0]
	for _, fc := range changes {
		lang, ok := complexity.LanguageFromExtension(strings.ToLower(filepath.Ext(fc.Path)))
		if ok && complexity.IsImplemented(lang) {
			out = append(out, fc)
		}
	}
	return out
}
