package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// SourceUnreadable indicates a source file could not be opened or read
	SourceUnreadable ErrorCode = "SOURCE_UNREADABLE"
	// ParseFailed indicates source text is not valid for the grammar
	ParseFailed ErrorCode = "PARSE_FAILED"
	// UnsupportedGrammar indicates no evaluator exists for the language
	UnsupportedGrammar ErrorCode = "UNSUPPORTED_GRAMMAR"
	// TokenMissing indicates no GitHub token could be resolved
	TokenMissing ErrorCode = "TOKEN_MISSING"
	// BackendUnavailable indicates a change-frequency source is not reachable
	BackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	// RateLimited indicates the remote API refused the request due to rate limits
	RateLimited ErrorCode = "RATE_LIMITED"
	// Timeout indicates an operation timed out
	Timeout ErrorCode = "TIMEOUT"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// SetEnv suggests setting an environment variable
	SetEnv FixActionType = "set-env"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Variable    string        `json:"variable,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// RadarError represents an error with code, message, and suggestions
type RadarError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Path           string      `json:"path,omitempty"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// NewRadarError creates a new RadarError
func NewRadarError(code ErrorCode, message string, cause error, suggestedFixes []FixAction) *RadarError {
	return &RadarError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
	}
}

// Error implements the error interface
func (e *RadarError) Error() string {
	prefix := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		prefix = fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.cause)
	}
	return prefix
}

// Unwrap returns the underlying error
func (e *RadarError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a RadarError with the same code.
func (e *RadarError) Is(target error) bool {
	t, ok := target.(*RadarError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// WithPath attaches the file the error refers to
func (e *RadarError) WithPath(path string) *RadarError {
	e.Path = path
	return e
}

// WithDetails adds details to the error
func (e *RadarError) WithDetails(details interface{}) *RadarError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first RadarError in err's chain,
// or InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var re *RadarError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return InternalError
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// Sentinels for errors.Is comparisons by code.
var (
	ErrSourceUnreadable   = &RadarError{Code: SourceUnreadable}
	ErrParseFailed        = &RadarError{Code: ParseFailed}
	ErrUnsupportedGrammar = &RadarError{Code: UnsupportedGrammar}
	ErrTokenMissing       = &RadarError{Code: TokenMissing}
)

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	TokenMissing: {
		{
			Type:        SetEnv,
			Variable:    "GITHUB_TOKEN",
			Description: "Export a GitHub personal access token",
		},
		{
			Type:        RunCommand,
			Command:     "radar init --store-token",
			Safe:        true,
			Description: "Store a token in the OS keyring",
		},
	},
	RateLimited: {
		{
			Type:        RunCommand,
			Command:     "radar report --source=git",
			Safe:        true,
			Description: "Use the local git history instead of the GitHub API",
		},
	},
	BackendUnavailable: {
		{
			Type:        RunCommand,
			Command:     "git status",
			Safe:        true,
			Description: "Verify you're in a git repository",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "radar init --force",
			Safe:        false,
			Description: "Rewrite .radar/config.toml with defaults",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
