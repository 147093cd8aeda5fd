package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	radarerrors "radar/internal/errors"
	"radar/internal/hotspots"
)

const commitMarker = "commit:"

// TopChangedFiles returns the files touched by the most commits within the
// adapter's window. Each commit counts once per file regardless of how many
// lines it changed.
func (g *GitAdapter) TopChangedFiles(ctx context.Context, limit int) ([]hotspots.FileChange, error) {
	g.logger.Debug("Getting top changed files", map[string]interface{}{
		"limit":      limit,
		"windowDays": g.windowDays,
	})

	// Single git log call: a marker line per commit followed by its numstat rows.
	// quotePath off keeps non-ASCII paths verbatim instead of C-quoted.
	args := []string{
		"-c", "core.quotePath=false",
		"log",
		"--no-merges",
		"--no-renames",
		"--format=" + commitMarker + "%H|%an|%aI",
		"--numstat",
		fmt.Sprintf("--since=%d.days.ago", g.windowDays),
		"HEAD",
	}

	lines, err := g.executeGitCommandLines(ctx, args...)
	if err != nil {
		return nil, err
	}

	counter := parseNumstatLog(lines)
	g.logger.Debug("Counted file changes", map[string]interface{}{
		"files": counter.Len(),
	})
	return counter.Top(limit), nil
}

// parseNumstatLog folds `git log --numstat` output into a change counter.
func parseNumstatLog(lines []string) *hotspots.ChangeCounter {
	counter := hotspots.NewChangeCounter()

	var author string
	var when time.Time
	for _, line := range lines {
		if strings.HasPrefix(line, commitMarker) {
			parts := strings.SplitN(strings.TrimPrefix(line, commitMarker), "|", 3)
			author, when = "", time.Time{}
			if len(parts) == 3 {
				author = parts[1]
				when, _ = time.Parse(time.RFC3339, parts[2])
			}
			counter.StartCommit()
			continue
		}

		// numstat row: added<TAB>deleted<TAB>path, "-" for binary files
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			continue
		}
		added, _ := strconv.Atoi(parts[0])
		deleted, _ := strconv.Atoi(parts[1])
		counter.Add(parts[2], author, when, added, deleted)
	}
	return counter
}

// ReadFile reads a repository-relative path from the working tree.
func (g *GitAdapter) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, radarerrors.NewRadarError(
			radarerrors.SourceUnreadable,
			"path escapes the repository",
			nil,
			nil,
		).WithPath(path)
	}

	data, err := os.ReadFile(filepath.Join(g.repoRoot, clean))
	if err != nil {
		return nil, radarerrors.NewRadarError(radarerrors.SourceUnreadable, "failed to read file", err, nil).WithPath(path)
	}
	return data, nil
}
