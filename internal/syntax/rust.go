//go:build cgo

package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// declarationKinds are tree-sitter-rust nodes that declare something rather
// than compute a value. Inside a block they become ItemStmt.
var declarationKinds = map[string]bool{
	"attribute_item":           true,
	"inner_attribute_item":     true,
	"const_item":               true,
	"static_item":              true,
	"struct_item":              true,
	"union_item":               true,
	"enum_item":                true,
	"type_item":                true,
	"impl_item":                true,
	"trait_item":               true,
	"mod_item":                 true,
	"foreign_mod_item":         true,
	"function_item":            true,
	"function_signature_item":  true,
	"macro_definition":         true,
	"use_declaration":          true,
	"extern_crate_declaration": true,
	"associated_type":          true,
	"empty_statement":          true,
	"shebang":                  true,
}

// lowerer converts tree-sitter-rust nodes into the closed syntax variants.
type lowerer struct {
	source []byte
}

func (l *lowerer) file(path string, root *sitter.Node) *Tree {
	t := &Tree{
		Path:  path,
		Items: make([]Item, 0, root.NamedChildCount()),
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if isComment(n) {
			continue
		}
		t.Items = append(t.Items, l.item(n))
	}
	return t
}

func (l *lowerer) item(n *sitter.Node) Item {
	if n.Type() == "function_item" {
		return l.function(n)
	}
	return &OpaqueItem{Kind: n.Type()}
}

func (l *lowerer) function(n *sitter.Node) *FunctionItem {
	fn := &FunctionItem{
		Name:      "<anonymous>",
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = name.Content(l.source)
	}
	fn.Body = l.block(n.ChildByFieldName("body"))
	return fn
}

func (l *lowerer) block(n *sitter.Node) *Block {
	b := &Block{}
	if n == nil {
		return b
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if isComment(c) || c.Type() == "label" {
			continue
		}
		if s := l.stmt(c); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
	}
	return b
}

func (l *lowerer) stmt(n *sitter.Node) Stmt {
	switch n.Type() {
	case "expression_statement":
		if n.NamedChildCount() == 0 {
			return nil
		}
		return &ExprStmt{X: l.expr(n.NamedChild(0))}
	case "let_declaration":
		return &LetStmt{Init: l.expr(n.ChildByFieldName("value"))}
	case "empty_statement":
		return nil
	}
	if declarationKinds[n.Type()] {
		return &ItemStmt{Item: l.item(n)}
	}
	// Tail expression of a block.
	return &ExprStmt{X: l.expr(n)}
}

func (l *lowerer) expr(n *sitter.Node) Expr {
	if n == nil {
		return nil
	}

	switch n.Type() {
	case "if_expression":
		return &IfExpr{
			Cond: l.expr(n.ChildByFieldName("condition")),
			Then: l.block(n.ChildByFieldName("consequence")),
			Else: l.elseArm(n.ChildByFieldName("alternative")),
		}

	case "if_let_expression":
		return &IfExpr{
			Cond: &LetExpr{Value: l.expr(n.ChildByFieldName("value"))},
			Then: l.block(n.ChildByFieldName("consequence")),
			Else: l.elseArm(n.ChildByFieldName("alternative")),
		}

	case "let_condition":
		return &LetExpr{Value: l.expr(n.ChildByFieldName("value"))}

	case "match_expression":
		m := &MatchExpr{Scrutinee: l.expr(n.ChildByFieldName("value"))}
		if body := n.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				arm := body.NamedChild(i)
				if arm.Type() != "match_arm" {
					continue
				}
				m.Arms = append(m.Arms, MatchArm{Body: l.expr(arm.ChildByFieldName("value"))})
			}
		}
		return m

	case "for_expression":
		return &ForExpr{
			Iter: l.expr(n.ChildByFieldName("value")),
			Body: l.block(n.ChildByFieldName("body")),
		}

	case "while_expression":
		return &WhileExpr{
			Cond: l.expr(n.ChildByFieldName("condition")),
			Body: l.block(n.ChildByFieldName("body")),
		}

	case "while_let_expression":
		return &WhileExpr{
			Cond: &LetExpr{Value: l.expr(n.ChildByFieldName("value"))},
			Body: l.block(n.ChildByFieldName("body")),
		}

	case "call_expression":
		return l.call(n)

	case "closure_expression":
		return &ClosureExpr{Body: l.expr(n.ChildByFieldName("body"))}

	case "block":
		return &BlockExpr{Block: l.block(n)}
	}

	// loop, unsafe, async and const blocks are not scoring constructs.

	return &OtherExpr{Kind: n.Type()}
}

// call lowers method calls; plain function calls are not scored.
func (l *lowerer) call(n *sitter.Node) Expr {
	fn := n.ChildByFieldName("function")
	if fn != nil && fn.Type() == "generic_function" {
		fn = fn.ChildByFieldName("function")
	}
	if fn == nil || fn.Type() != "field_expression" {
		return &OtherExpr{Kind: n.Type()}
	}

	mc := &MethodCallExpr{
		Receiver: l.expr(fn.ChildByFieldName("value")),
	}
	if field := fn.ChildByFieldName("field"); field != nil {
		mc.Method = field.Content(l.source)
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			a := args.NamedChild(i)
			if isComment(a) || a.Type() == "attribute_item" {
				continue
			}
			mc.Args = append(mc.Args, l.expr(a))
		}
	}
	return mc
}

func (l *lowerer) elseArm(n *sitter.Node) Expr {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if isComment(c) {
			continue
		}
		if c.Type() == "block" {
			return &BlockExpr{Block: l.block(c)}
		}
		return l.expr(c)
	}
	return nil
}

func isComment(n *sitter.Node) bool {
	switch n.Type() {
	case "line_comment", "block_comment":
		return true
	}
	return false
}
