package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"radar/internal/config"
	radarerrors "radar/internal/errors"
	"radar/internal/logging"
)

// findRepoRoot walks up from dir to the nearest directory holding .radar or
// .git. It falls back to dir itself.
func findRepoRoot(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	for cur := abs; ; {
		for _, marker := range []string{config.Dir, ".git"} {
			if _, err := os.Stat(filepath.Join(cur, marker)); err == nil {
				return cur
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs
		}
		cur = parent
	}
}

// mustGetRepoRoot returns the repository root or exits on error.
func mustGetRepoRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return findRepoRoot(cwd)
}

// loadEnvironment loads .env, the config file and a logger for repoRoot.
func loadEnvironment(repoRoot string) (*config.Config, *logging.Logger, error) {
	envPath, envErr := config.LoadDotEnv(repoRoot)

	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		return nil, nil, configError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, configError(err)
	}

	logger := newLogger(cfg)
	if envErr != nil {
		logger.Warn("Failed to load .env file", map[string]interface{}{
			"error": envErr.Error(),
		})
	} else if envPath != "" {
		logger.Debug("Loaded environment file", map[string]interface{}{
			"path": envPath,
		})
	}
	return cfg, logger, nil
}

// newLogger builds the CLI logger. -v and -q win over the configured level.
func newLogger(cfg *config.Config) *logging.Logger {
	level := logging.ParseLevel(cfg.Logging.Level)
	if verbosity > 0 || quiet {
		level = logging.LevelFromVerbosity(verbosity, quiet)
	}

	format := logging.Format(cfg.Logging.Format)
	if logFormat != "" {
		format = logging.Format(logFormat)
	}
	if format != logging.JSONFormat {
		format = logging.HumanFormat
	}

	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  level,
	})
}

func configError(err error) error {
	re := radarerrors.NewRadarError(
		radarerrors.ConfigInvalid,
		"invalid configuration",
		err,
		radarerrors.GetSuggestedFixes(radarerrors.ConfigInvalid),
	)
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		re = re.WithDetails(map[string]interface{}{"field": cfgErr.Field})
	}
	return re.WithPath(filepath.Join(config.Dir, "config.toml"))
}

// newContext returns a context cancelled on interrupt.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// printError writes err and any suggested fixes.
func printError(w io.Writer, err error) {
	var re *radarerrors.RadarError
	if !errors.As(err, &re) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Error [%s]: %s\n", re.Code, re.Message)
	if re.Path != "" {
		fmt.Fprintf(w, "  path: %s\n", re.Path)
	}
	if cause := errors.Unwrap(re); cause != nil {
		fmt.Fprintf(w, "  cause: %v\n", cause)
	}
	if len(re.SuggestedFixes) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSuggested fixes:")
	for _, fix := range re.SuggestedFixes {
		switch fix.Type {
		case radarerrors.RunCommand:
			fmt.Fprintf(w, "  - %s: %s\n", fix.Description, fix.Command)
		case radarerrors.SetEnv:
			fmt.Fprintf(w, "  - %s: export %s=...\n", fix.Description, fix.Variable)
		case radarerrors.OpenDocs:
			fmt.Fprintf(w, "  - %s: %s\n", fix.Description, fix.URL)
		default:
			fmt.Fprintf(w, "  - %s\n", fix.Description)
		}
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch radarerrors.CodeOf(err) {
	case radarerrors.ConfigInvalid, radarerrors.TokenMissing:
		return 2
	default:
		return 1
	}
}
