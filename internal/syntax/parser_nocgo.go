//go:build !cgo

package syntax

import "context"

// Parser is a stub for non-CGO builds.
type Parser struct{}

// NewParser returns a stub parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse always fails with ErrNoCGO.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*Tree, error) {
	return nil, ErrNoCGO
}

// IsAvailable returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}
