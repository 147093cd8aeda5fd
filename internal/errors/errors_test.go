package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewRadarError(t *testing.T) {
	cause := errors.New("underlying error")
	fixes := []FixAction{{Type: RunCommand, Command: "radar init"}}

	err := NewRadarError(ParseFailed, "invalid syntax", cause, fixes)

	if err.Code != ParseFailed {
		t.Errorf("Code = %v, want %v", err.Code, ParseFailed)
	}
	if err.Message != "invalid syntax" {
		t.Errorf("Message = %q, want %q", err.Message, "invalid syntax")
	}
	if len(err.SuggestedFixes) != 1 {
		t.Errorf("len(SuggestedFixes) = %d, want 1", len(err.SuggestedFixes))
	}
}

func TestRadarError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		path      string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      SourceUnreadable,
			message:   "failed to read file",
			cause:     errors.New("permission denied"),
			wantParts: []string{"SOURCE_UNREADABLE", "failed to read file", "permission denied"},
		},
		{
			name:      "with path",
			code:      ParseFailed,
			message:   "invalid syntax",
			path:      "src/lib.rs",
			wantParts: []string{"PARSE_FAILED", "src/lib.rs", "invalid syntax"},
		},
		{
			name:      "without cause",
			code:      UnsupportedGrammar,
			message:   "grammar python is not implemented",
			wantParts: []string{"UNSUPPORTED_GRAMMAR", "python"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRadarError(tt.code, tt.message, tt.cause, nil).WithPath(tt.path)
			got := err.Error()

			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestRadarError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewRadarError(InternalError, "something went wrong", cause, nil)

	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}

	errNoCause := NewRadarError(Timeout, "request timed out", nil, nil)
	if errNoCause.Unwrap() != nil {
		t.Errorf("Unwrap() on error without cause should return nil")
	}
}

func TestRadarError_IsSentinel(t *testing.T) {
	err := fmt.Errorf("scan main.rs: %w", NewRadarError(ParseFailed, "invalid syntax", nil, nil))

	if !errors.Is(err, ErrParseFailed) {
		t.Error("expected wrapped error to match ErrParseFailed")
	}
	if errors.Is(err, ErrSourceUnreadable) {
		t.Error("did not expect wrapped error to match ErrSourceUnreadable")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}

	wrapped := fmt.Errorf("outer: %w", NewRadarError(TokenMissing, "no token", nil, nil))
	if got := CodeOf(wrapped); got != TokenMissing {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, TokenMissing)
	}
	if !HasCode(wrapped, TokenMissing) {
		t.Error("HasCode(wrapped, TokenMissing) = false")
	}
	if HasCode(nil, InternalError) {
		t.Error("HasCode(nil) should be false")
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	fixes := GetSuggestedFixes(TokenMissing)
	if len(fixes) == 0 {
		t.Fatal("expected fixes for TokenMissing")
	}
	if fixes[0].Variable != "GITHUB_TOKEN" {
		t.Errorf("first fix variable = %q, want GITHUB_TOKEN", fixes[0].Variable)
	}

	if got := GetSuggestedFixes(ParseFailed); got != nil {
		t.Errorf("expected no fixes for ParseFailed, got %v", got)
	}
}
