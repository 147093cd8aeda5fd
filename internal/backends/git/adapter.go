package git

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"radar/internal/config"
	radarerrors "radar/internal/errors"
	"radar/internal/logging"
)

const (
	// BackendID is the unique identifier for the Git backend
	BackendID = "git"

	// DefaultQueryTimeout is the default timeout for git operations
	DefaultQueryTimeout = 30 * time.Second

	// DefaultWindowDays is how far back commits are counted
	DefaultWindowDays = 365
)

// GitAdapter reads change frequencies from a local clone.
type GitAdapter struct {
	repoRoot     string
	queryTimeout time.Duration
	windowDays   int
	logger       *logging.Logger
}

// NewGitAdapter creates a new Git backend adapter rooted at repoRoot.
func NewGitAdapter(repoRoot string, cfg *config.Config, logger *logging.Logger) (*GitAdapter, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	timeout := DefaultQueryTimeout
	window := DefaultWindowDays
	if cfg != nil {
		if cfg.Git.TimeoutMs > 0 {
			timeout = time.Duration(cfg.Git.TimeoutMs) * time.Millisecond
		}
		if cfg.Source.WindowDays > 0 {
			window = cfg.Source.WindowDays
		}
	}

	adapter := &GitAdapter{
		repoRoot:     repoRoot,
		queryTimeout: timeout,
		windowDays:   window,
		logger:       logger,
	}

	if !adapter.IsAvailable() {
		return nil, radarerrors.NewRadarError(
			radarerrors.BackendUnavailable,
			"Git is not available in this repository",
			nil,
			append(radarerrors.GetSuggestedFixes(radarerrors.BackendUnavailable), radarerrors.FixAction{
				Type:        radarerrors.RunCommand,
				Command:     "radar report --source=github",
				Safe:        true,
				Description: "Read change history from the GitHub API instead",
			}),
		).WithPath(repoRoot)
	}

	// git log paths are relative to the top of the work tree, which may sit
	// above the directory radar was started from.
	top, err := adapter.executeGitCommand(context.Background(), "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}
	adapter.repoRoot = top

	logger.Debug("Git adapter initialized", map[string]interface{}{
		"backend":    BackendID,
		"repoRoot":   top,
		"timeout":    timeout.String(),
		"windowDays": window,
	})

	return adapter, nil
}

// ID returns the backend identifier
func (g *GitAdapter) ID() string {
	return BackendID
}

// Root returns the top level of the work tree.
func (g *GitAdapter) Root() string {
	return g.repoRoot
}

// IsAvailable checks if git is installed and repoRoot is inside a work tree.
func (g *GitAdapter) IsAvailable() bool {
	if _, err := exec.LookPath("git"); err != nil {
		return false
	}
	out, err := g.executeGitCommand(context.Background(), "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// executeGitCommand runs a git command with timeout and returns the output
func (g *GitAdapter) executeGitCommand(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.queryTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.repoRoot

	g.logger.Debug("Executing git command", map[string]interface{}{
		"args":    args,
		"timeout": g.queryTimeout.String(),
	})

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", radarerrors.NewRadarError(radarerrors.Timeout, "Git command timed out", err, nil)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", radarerrors.NewRadarError(
				radarerrors.BackendUnavailable,
				"Git command failed",
				err,
				nil,
			).WithDetails(map[string]interface{}{
				"args":   args,
				"stderr": strings.TrimSpace(string(exitErr.Stderr)),
			})
		}

		return "", radarerrors.NewRadarError(radarerrors.BackendUnavailable, "Failed to execute git command", err, nil)
	}

	return strings.TrimSpace(string(output)), nil
}

// executeGitCommandLines runs a git command and returns non-empty output lines
func (g *GitAdapter) executeGitCommandLines(ctx context.Context, args ...string) ([]string, error) {
	output, err := g.executeGitCommand(ctx, args...)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}

	lines := strings.Split(output, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result, nil
}
