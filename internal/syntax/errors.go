package syntax

import (
	"errors"
	"fmt"
)

// ErrNoCGO is returned when parsing is unavailable due to missing CGO.
var ErrNoCGO = errors.New("source parsing requires CGO (tree-sitter)")

// ParseError reports source text that is not valid for the grammar.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Kind   string // "error" or "missing"
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: invalid syntax", e.Path)
	}
	return fmt.Sprintf("%s:%d:%d: invalid syntax (%s node)", e.Path, e.Line, e.Column, e.Kind)
}
