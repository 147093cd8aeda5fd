package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"radar/internal/complexity"
)

// WriteFileComplexity renders the per-function scores of one file.
func WriteFileComplexity(w io.Writer, fc *complexity.FileComplexity, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, fc)
	case FormatYAML:
		return writeYAML(w, fc)
	case FormatTSV:
		bw := bufio.NewWriter(w)
		if opts.Header {
			fmt.Fprintln(bw, "function\tcognitive\tstart_line\tend_line\trisk")
		}
		for _, fn := range fc.Functions {
			fmt.Fprintf(bw, "%s\t%d\t%d\t%d\t%s\n", fn.Function, fn.Value, fn.StartLine, fn.EndLine, fn.Risk)
		}
		return bw.Flush()
	}

	bw := bufio.NewWriter(w)
	p := newPalette(w, opts.Format == FormatHuman)
	if opts.Header {
		fmt.Fprintln(bw, p.header.Render(fc.Path))
		fmt.Fprintln(bw, p.rule.Render(strings.Repeat("-", ruleWidth)))
	}
	if len(fc.Functions) == 0 {
		fmt.Fprintln(bw, p.muted.Render("no functions"))
		return bw.Flush()
	}
	for _, fn := range fc.Functions {
		fmt.Fprintf(bw, "%s\t%s\tL%d-%d\n", fn.Function, p.risk(fn.Risk).Render(fmt.Sprint(fn.Value)), fn.StartLine, fn.EndLine)
	}
	if opts.Header {
		fmt.Fprintln(bw, p.muted.Render(fmt.Sprintf("%d functions, total %d, max %d, average %.1f",
			fc.FunctionCount, fc.Total, fc.Max, fc.Average)))
	}
	return bw.Flush()
}
