// Package syntax defines the parsed source tree consumed by the complexity
// engine and the tree-sitter front-end that produces it.
package syntax

// Tree is the parsed representation of one source file.
type Tree struct {
	// Path identifies the file; used for labeling only
	Path string

	// Items are the top-level declarations in source order
	Items []Item
}

// Item is a top-level or block-level declaration.
// The set of implementations is closed: *FunctionItem and *OpaqueItem.
type Item interface {
	item()
}

// FunctionItem is a named function with a body.
type FunctionItem struct {
	Name      string
	Body      *Block
	StartLine int
	EndLine   int
}

// OpaqueItem is any declaration the engine does not look into
// (structs, impls, uses, modules...).
type OpaqueItem struct {
	Kind string
}

func (*FunctionItem) item() {}
func (*OpaqueItem) item()   {}

// Block is an ordered sequence of statements.
type Block struct {
	Stmts []Stmt
}

// Stmt is a statement inside a block.
// The set of implementations is closed: *ExprStmt, *LetStmt and *ItemStmt.
type Stmt interface {
	stmt()
}

// ExprStmt is an expression used as a statement, with or without a
// trailing semicolon.
type ExprStmt struct {
	X Expr
}

// LetStmt is a variable binding. Init is nil for `let x;`.
type LetStmt struct {
	Init Expr
}

// ItemStmt is a declaration nested inside a block.
type ItemStmt struct {
	Item Item
}

func (*ExprStmt) stmt() {}
func (*LetStmt) stmt()  {}
func (*ItemStmt) stmt() {}

// Expr is an expression node.
// The set of implementations is closed; see the types below.
type Expr interface {
	expr()
}

// IfExpr is `if cond { then } else else`. Else is nil, a *BlockExpr for a
// plain else, or another *IfExpr for an else-if chain.
type IfExpr struct {
	Cond Expr
	Then *Block
	Else Expr
}

// MatchExpr is a match with its arms.
type MatchExpr struct {
	Scrutinee Expr
	Arms      []MatchArm
}

// MatchArm is one arm of a match. Guards are not scored.
type MatchArm struct {
	Body Expr
}

// ForExpr is `for pat in iter { body }`.
type ForExpr struct {
	Iter Expr
	Body *Block
}

// WhileExpr is `while cond { body }`.
type WhileExpr struct {
	Cond Expr
	Body *Block
}

// MethodCallExpr is `receiver.method(args...)`.
type MethodCallExpr struct {
	Receiver Expr
	Method   string
	Args     []Expr
}

// ClosureExpr is `|params| body`.
type ClosureExpr struct {
	Body Expr
}

// BlockExpr is a block used in expression position.
type BlockExpr struct {
	Block *Block
}

// LetExpr is the `let pat = value` part of an `if let` / `while let`.
type LetExpr struct {
	Value Expr
}

// OtherExpr is every expression kind that does not take part in scoring.
// Kind holds the grammar's node type for diagnostics.
type OtherExpr struct {
	Kind string
}

func (*IfExpr) expr()         {}
func (*MatchExpr) expr()      {}
func (*ForExpr) expr()        {}
func (*WhileExpr) expr()      {}
func (*MethodCallExpr) expr() {}
func (*ClosureExpr) expr()    {}
func (*BlockExpr) expr()      {}
func (*LetExpr) expr()        {}
func (*OtherExpr) expr()      {}
