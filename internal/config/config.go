package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"radar/internal/complexity"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 1

// Dir is the per-repository state directory.
const Dir = ".radar"

// Config represents the complete radar configuration
type Config struct {
	Version  int            `json:"version" mapstructure:"version" toml:"version"`
	RepoRoot string         `json:"repoRoot" mapstructure:"repoRoot" toml:"repoRoot"`
	Source   SourceConfig   `json:"source" mapstructure:"source" toml:"source"`
	GitHub   GitHubConfig   `json:"github" mapstructure:"github" toml:"github"`
	Git      GitConfig      `json:"git" mapstructure:"git" toml:"git"`
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" toml:"analysis"`
	Report   ReportConfig   `json:"report" mapstructure:"report" toml:"report"`
	History  HistoryConfig  `json:"history" mapstructure:"history" toml:"history"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging" toml:"logging"`
}

// SourceConfig selects where change frequencies come from.
type SourceConfig struct {
	Kind       string `json:"kind" mapstructure:"kind" toml:"kind"` // "github" or "git"
	Limit      int    `json:"limit" mapstructure:"limit" toml:"limit"`
	WindowDays int    `json:"windowDays" mapstructure:"windowDays" toml:"windowDays"`
}

// GitHubConfig contains GitHub API settings
type GitHubConfig struct {
	Owner          string  `json:"owner" mapstructure:"owner" toml:"owner"`
	Repo           string  `json:"repo" mapstructure:"repo" toml:"repo"`
	RequestsPerSec float64 `json:"requestsPerSec" mapstructure:"requestsPerSec" toml:"requestsPerSec"`
	Burst          int     `json:"burst" mapstructure:"burst" toml:"burst"`
	Workers        int     `json:"workers" mapstructure:"workers" toml:"workers"`
	MaxCommits     int     `json:"maxCommits" mapstructure:"maxCommits" toml:"maxCommits"`
}

// GitConfig contains local git settings
type GitConfig struct {
	TimeoutMs int `json:"timeoutMs" mapstructure:"timeoutMs" toml:"timeoutMs"`
}

// AnalysisConfig controls complexity scoring
type AnalysisConfig struct {
	Workers       int                       `json:"workers" mapstructure:"workers" toml:"workers"`
	SupportedOnly bool                      `json:"supportedOnly" mapstructure:"supportedOnly" toml:"supportedOnly"`
	Risk          complexity.RiskThresholds `json:"risk" mapstructure:"risk" toml:"risk"`
}

// ReportConfig controls report rendering
type ReportConfig struct {
	Format string `json:"format" mapstructure:"format" toml:"format"`
	Header bool   `json:"header" mapstructure:"header" toml:"header"`
}

// HistoryConfig controls the run history store
type HistoryConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled" toml:"enabled"`
	Path    string `json:"path" mapstructure:"path" toml:"path"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level" toml:"level"`
	Format string `json:"format" mapstructure:"format" toml:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentVersion,
		RepoRoot: ".",
		Source: SourceConfig{
			Kind:       "github",
			Limit:      5,
			WindowDays: 365,
		},
		GitHub: GitHubConfig{
			RequestsPerSec: 10,
			Burst:          5,
			Workers:        8,
			MaxCommits:     1000,
		},
		Git: GitConfig{
			TimeoutMs: 30000,
		},
		Analysis: AnalysisConfig{
			Workers:       4,
			SupportedOnly: false,
			Risk:          complexity.DefaultRiskThresholds(),
		},
		Report: ReportConfig{
			Format: "human",
			Header: true,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    filepath.Join(Dir, "radar.db"),
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "human",
		},
	}
}

// ConfigPath returns the location of the config file for a repository.
func ConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, Dir, "config.toml")
}

// LoadConfig loads configuration from .radar/config.toml. Every key can be
// overridden by a RADAR_ environment variable, e.g. RADAR_SOURCE_LIMIT.
// A missing config file yields the defaults.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(filepath.Join(repoRoot, Dir))

	v.SetEnvPrefix("RADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &ConfigError{Field: "file", Message: err.Error()}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Field: "file", Message: err.Error()}
	}
	return &cfg, nil
}

// setDefaults registers every key with viper so env overrides apply even
// when the config file omits them.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("repoRoot", d.RepoRoot)

	v.SetDefault("source.kind", d.Source.Kind)
	v.SetDefault("source.limit", d.Source.Limit)
	v.SetDefault("source.windowDays", d.Source.WindowDays)

	v.SetDefault("github.owner", d.GitHub.Owner)
	v.SetDefault("github.repo", d.GitHub.Repo)
	v.SetDefault("github.requestsPerSec", d.GitHub.RequestsPerSec)
	v.SetDefault("github.burst", d.GitHub.Burst)
	v.SetDefault("github.workers", d.GitHub.Workers)
	v.SetDefault("github.maxCommits", d.GitHub.MaxCommits)

	v.SetDefault("git.timeoutMs", d.Git.TimeoutMs)

	v.SetDefault("analysis.workers", d.Analysis.Workers)
	v.SetDefault("analysis.supportedOnly", d.Analysis.SupportedOnly)
	v.SetDefault("analysis.risk.medium", d.Analysis.Risk.Medium)
	v.SetDefault("analysis.risk.high", d.Analysis.Risk.High)

	v.SetDefault("report.format", d.Report.Format)
	v.SetDefault("report.header", d.Report.Header)

	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Save writes the configuration to .radar/config.toml
func (c *Config) Save(repoRoot string) error {
	path := ConfigPath(repoRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

var (
	validSources = map[string]bool{"github": true, "git": true}
	validFormats = map[string]bool{"human": true, "plain": true, "tsv": true, "json": true, "yaml": true}
)

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if !validSources[c.Source.Kind] {
		return &ConfigError{Field: "source.kind", Message: fmt.Sprintf("unknown source %q (want github or git)", c.Source.Kind)}
	}
	if c.Source.Limit <= 0 {
		return &ConfigError{Field: "source.limit", Message: "must be positive"}
	}
	if c.Source.WindowDays <= 0 {
		return &ConfigError{Field: "source.windowDays", Message: "must be positive"}
	}
	if c.GitHub.RequestsPerSec <= 0 || c.GitHub.Burst <= 0 {
		return &ConfigError{Field: "github.requestsPerSec", Message: "rate limit must be positive"}
	}
	if c.GitHub.Workers <= 0 || c.Analysis.Workers <= 0 {
		return &ConfigError{Field: "workers", Message: "worker counts must be positive"}
	}
	if c.Analysis.Risk.Medium > c.Analysis.Risk.High {
		return &ConfigError{Field: "analysis.risk", Message: "medium threshold exceeds high threshold"}
	}
	if !validFormats[c.Report.Format] {
		return &ConfigError{Field: "report.format", Message: fmt.Sprintf("unknown format %q", c.Report.Format)}
	}
	if c.History.Enabled && c.History.Path == "" {
		return &ConfigError{Field: "history.path", Message: "required when history is enabled"}
	}
	return nil
}

// HistoryPath resolves the history database path against repoRoot.
func (c *Config) HistoryPath(repoRoot string) string {
	if filepath.IsAbs(c.History.Path) {
		return c.History.Path
	}
	return filepath.Join(repoRoot, c.History.Path)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
