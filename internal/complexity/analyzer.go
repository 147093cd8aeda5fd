package complexity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	radarerrors "radar/internal/errors"
	"radar/internal/logging"
	"radar/internal/syntax"
)

// Analyzer computes complexity metrics for source files.
// It is safe for concurrent use.
type Analyzer struct {
	rust       *syntax.Parser
	thresholds RiskThresholds
	logger     *logging.Logger
}

// NewAnalyzer creates a new complexity analyzer. A nil logger discards output.
func NewAnalyzer(logger *logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Analyzer{
		rust:       syntax.NewParser(),
		thresholds: DefaultRiskThresholds(),
		logger:     logger,
	}
}

// SetThresholds overrides the risk thresholds used to label functions.
func (a *Analyzer) SetThresholds(t RiskThresholds) {
	a.thresholds = t
}

// AnalyzeFile reads and analyzes a source file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*FileComplexity, error) {
	lang, err := languageForPath(path)
	if err != nil {
		return nil, err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, radarerrors.NewRadarError(
			radarerrors.SourceUnreadable,
			"failed to read file",
			err,
			nil,
		).WithPath(path)
	}

	return a.AnalyzeSource(ctx, path, source, lang)
}

// AnalyzeSource parses source with the grammar for lang and scores every
// top-level function. path is used for labeling only.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, source []byte, lang Language) (*FileComplexity, error) {
	start := time.Now()

	tree, err := a.parse(ctx, path, source, lang)
	if err != nil {
		return nil, err
	}

	fc := &FileComplexity{
		Path:      path,
		Language:  lang,
		Functions: Evaluate(tree),
	}
	for i := range fc.Functions {
		fc.Functions[i].Risk = ClassifyRisk(fc.Functions[i].Value, a.thresholds)
	}
	fc.Aggregate()

	a.logger.Debug("Scored file", map[string]interface{}{
		"path":      path,
		"functions": fc.FunctionCount,
		"max":       fc.Max,
		"duration":  time.Since(start).Milliseconds(),
	})
	return fc, nil
}

// parse selects the front-end for lang. Only Rust has one; the other
// grammars are known but fail fast.
func (a *Analyzer) parse(ctx context.Context, path string, source []byte, lang Language) (*syntax.Tree, error) {
	switch lang {
	case LangRust:
		tree, err := a.rust.Parse(ctx, path, source)
		if err == nil {
			return tree, nil
		}
		if errors.Is(err, syntax.ErrNoCGO) {
			return nil, radarerrors.NewRadarError(radarerrors.UnsupportedGrammar, "parser unavailable", err, nil).WithPath(path)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, radarerrors.NewRadarError(radarerrors.ParseFailed, "invalid syntax", err, nil).WithPath(path)

	case LangGo, LangPython:
		return nil, radarerrors.NewRadarError(
			radarerrors.UnsupportedGrammar,
			fmt.Sprintf("grammar %s is not implemented yet", lang),
			nil,
			nil,
		).WithPath(path)

	default:
		return nil, radarerrors.NewRadarError(
			radarerrors.UnsupportedGrammar,
			fmt.Sprintf("unknown grammar %q", lang),
			nil,
			nil,
		).WithPath(path)
	}
}

// Input is one file handed to AnalyzeMany.
type Input struct {
	Path   string
	Source []byte
}

// Result pairs an input with its analysis. Err is set instead of File when
// the file could not be analyzed.
type Result struct {
	Path string
	File *FileComplexity
	Err  error
}

// AnalyzeMany analyzes inputs on up to workers goroutines. Results are
// returned in input order and per-file failures are kept on the result.
// The returned error is non-nil only when ctx is cancelled.
func (a *Analyzer) AnalyzeMany(ctx context.Context, inputs []Input, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i].Path = in.Path

			lang, err := languageForPath(in.Path)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].File, results[i].Err = a.AnalyzeSource(gctx, in.Path, in.Source, lang)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// ComputeCognitiveIndex scores a fragment of function-body code as if it
// were the body of a single function.
func (a *Analyzer) ComputeCognitiveIndex(ctx context.Context, lang Language, block string) (int, error) {
	var source string
	switch lang {
	case LangRust:
		source = "fn __fragment() {\n" + block + "\n}\n"
	default:
		source = block
	}

	fc, err := a.AnalyzeSource(ctx, "<fragment>", []byte(source), lang)
	if err != nil {
		return 0, err
	}
	return fc.Total, nil
}

// IsAvailable returns whether source parsing is available in this build.
func IsAvailable() bool {
	return syntax.IsAvailable()
}

func languageForPath(path string) (Language, error) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := LanguageFromExtension(ext)
	if !ok {
		return "", radarerrors.NewRadarError(
			radarerrors.UnsupportedGrammar,
			"unsupported file extension: "+ext,
			nil,
			nil,
		).WithPath(path)
	}
	return lang, nil
}
