//go:build cgo

package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// Parser turns Rust source text into a Tree.
// A Parser is safe for concurrent use; each call gets its own tree-sitter parser.
type Parser struct {
	language *sitter.Language
}

// NewParser creates a new Rust parser.
func NewParser() *Parser {
	return &Parser{
		language: rust.GetLanguage(),
	}
}

// Parse parses source and lowers it into a Tree.
// Source with error or missing nodes is rejected with a *ParseError.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*Tree, error) {
	ts := sitter.NewParser()
	defer ts.Close()
	ts.SetLanguage(p.language)

	tree, err := ts.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		perr := &ParseError{Path: path}
		if bad := firstErrorNode(root); bad != nil {
			perr.Line = int(bad.StartPoint().Row) + 1
			perr.Column = int(bad.StartPoint().Column) + 1
			perr.Kind = "error"
			if bad.IsMissing() {
				perr.Kind = "missing"
			}
		}
		return nil, perr
	}

	l := &lowerer{source: source}
	return l.file(path, root), nil
}

// IsAvailable returns true when CGO is enabled.
func IsAvailable() bool {
	return true
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstErrorNode(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}
