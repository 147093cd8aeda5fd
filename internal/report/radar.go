package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"radar/internal/hotspots"
)

// ruleWidth is the width of the dashed rule around the header
const ruleWidth = 80

// columnTitle is the header line printed between the rules
const columnTitle = "File\t\tNumber of changes"

// tsvColumns are the column names of the tsv format
var tsvColumns = []string{"path", "crate", "changes", "max_cognitive", "total_cognitive", "hotness", "score", "status"}

// WriteReport renders a radar report.
func WriteReport(w io.Writer, r *hotspots.Report, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatYAML:
		return writeYAML(w, r)
	case FormatTSV:
		return writeReportTSV(w, r, opts)
	case FormatHuman, FormatPlain, "":
		return writeReportText(w, r, opts)
	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

// writeReportText prints the ruled header followed by one
// "path<TAB>changes" line per file.
func writeReportText(w io.Writer, r *hotspots.Report, opts Options) error {
	bw := bufio.NewWriter(w)
	p := newPalette(w, opts.Format == FormatHuman)

	if opts.Header {
		rule := p.rule.Render(strings.Repeat("-", ruleWidth))
		fmt.Fprintln(bw, rule)
		fmt.Fprintln(bw, p.header.Render(columnTitle))
		fmt.Fprintln(bw, rule)
	}

	for _, row := range r.Rows {
		fmt.Fprintf(bw, "%s\t%d\n", p.path.Render(row.Path), row.Changes)
		if !opts.Functions {
			continue
		}
		switch row.Status {
		case hotspots.StatusAnalyzed:
			for _, fn := range row.Functions {
				fmt.Fprintf(bw, "    %s\t%s\n", fn.Function, p.risk(fn.Risk).Render(fmt.Sprint(fn.Value)))
			}
		case hotspots.StatusFailed:
			fmt.Fprintf(bw, "    %s\n", p.failed.Render("error: "+row.Error))
		}
	}

	if opts.Header && opts.Functions && r.Failed > 0 {
		fmt.Fprintln(bw, p.muted.Render(fmt.Sprintf("%d file(s) could not be analyzed", r.Failed)))
	}
	return bw.Flush()
}

func writeReportTSV(w io.Writer, r *hotspots.Report, opts Options) error {
	bw := bufio.NewWriter(w)
	if opts.Header {
		fmt.Fprintln(bw, strings.Join(tsvColumns, "\t"))
	}
	for _, row := range r.Rows {
		fmt.Fprintf(bw, "%s\t%s\t%d\t%d\t%d\t%d\t%.4f\t%s\n",
			row.Path, row.Crate, row.Changes, row.MaxCognitive, row.Total, row.Hotness, row.Score, row.Status)
	}
	return bw.Flush()
}

// WriteRuns renders a list of stored runs.
func WriteRuns(w io.Writer, runs []hotspots.RunSummary, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, runs)
	case FormatYAML:
		return writeYAML(w, runs)
	}

	bw := bufio.NewWriter(w)
	if len(runs) == 0 {
		fmt.Fprintln(bw, "No stored runs. Use 'radar report --save' to record one.")
		return bw.Flush()
	}
	if opts.Header {
		fmt.Fprintln(bw, "run_id\tgenerated_at\trepository\tsource\tfiles\tfailed")
	}
	for _, run := range runs {
		fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			run.RunID, run.GeneratedAt.Format("2006-01-02 15:04:05"), run.Repository, run.Source, run.Files, run.Failed)
	}
	return bw.Flush()
}

// TrendView is a file's trend together with the snapshots it was fit to.
type TrendView struct {
	Path      string              `json:"path" yaml:"path"`
	Trend     *hotspots.Trend     `json:"trend" yaml:"trend"`
	Snapshots []hotspots.Snapshot `json:"snapshots" yaml:"snapshots"`
}

// WriteTrend renders a file's history.
func WriteTrend(w io.Writer, v TrendView, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, v)
	case FormatYAML:
		return writeYAML(w, v)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s: %s (velocity %.4f/day, %d runs, 30d projection %.2f)\n",
		v.Path, v.Trend.Direction, v.Trend.Velocity, v.Trend.DataPoints, v.Trend.Projection30d)
	for _, s := range v.Snapshots {
		fmt.Fprintf(bw, "  %s\tchanges=%d\tmax=%d\thotness=%d\tscore=%.3f\n",
			s.Date.Format("2006-01-02"), s.Changes, s.MaxCognitive, s.Hotness, s.Score)
	}
	return bw.Flush()
}
