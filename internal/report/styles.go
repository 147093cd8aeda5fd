package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles for one output stream. Styles render plain text
// when the writer is not a color terminal.
type palette struct {
	header lipgloss.Style
	rule   lipgloss.Style
	path   lipgloss.Style
	low    lipgloss.Style
	medium lipgloss.Style
	high   lipgloss.Style
	muted  lipgloss.Style
	failed lipgloss.Style
}

func newPalette(w io.Writer, styled bool) palette {
	// Columns are tab separated, so tabs must survive rendering.
	base := lipgloss.NewRenderer(w).NewStyle().TabWidth(lipgloss.NoTabConversion)
	if !styled {
		return palette{base, base, base, base, base, base, base, base}
	}
	return palette{
		header: base.Bold(true).Foreground(lipgloss.Color("#3B82F6")),
		rule:   base.Foreground(lipgloss.Color("#64748B")),
		path:   base.Bold(true),
		low:    base.Foreground(lipgloss.Color("#10B981")),
		medium: base.Foreground(lipgloss.Color("#FBBF24")),
		high:   base.Foreground(lipgloss.Color("#F87171")).Bold(true),
		muted:  base.Foreground(lipgloss.Color("#64748B")).Italic(true),
		failed: base.Foreground(lipgloss.Color("#F87171")),
	}
}

func (p palette) risk(level string) lipgloss.Style {
	switch level {
	case "high":
		return p.high
	case "medium":
		return p.medium
	default:
		return p.low
	}
}
