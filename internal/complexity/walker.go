package complexity

import "radar/internal/syntax"

// Cognitive returns the cognitive complexity of fn.
//
// Scoring rules:
//   - if, match, for and while add 1 and evaluate their branches one level deeper
//   - closures add no base score but evaluate their body one level deeper
//   - method calls, block expressions and let bindings pass through at the same level
//   - any expression whose own score is nonzero adds the current nesting level once
//
// Everything else, including && and || chains, scores 0.
func Cognitive(fn *syntax.FunctionItem) int {
	if fn == nil {
		return 0
	}
	return scoreBlock(fn.Body, 0)
}

// Evaluate scores every top-level function of tree, in declaration order.
func Evaluate(tree *syntax.Tree) []FunctionComplexity {
	fns := ExtractFunctions(tree)
	out := make([]FunctionComplexity, 0, len(fns))
	for _, fn := range fns {
		out = append(out, FunctionComplexity{
			Function:  fn.Name,
			Value:     Cognitive(fn),
			StartLine: fn.StartLine,
			EndLine:   fn.EndLine,
		})
	}
	return out
}

func scoreBlock(b *syntax.Block, nesting int) int {
	if b == nil {
		return 0
	}
	total := 0
	for _, s := range b.Stmts {
		total += scoreStmt(s, nesting)
	}
	return total
}

func scoreStmt(s syntax.Stmt, nesting int) int {
	switch s := s.(type) {
	case *syntax.ExprStmt:
		return scoreExpr(s.X, nesting)
	case *syntax.LetStmt:
		return scoreExpr(s.Init, nesting)
	case *syntax.ItemStmt:
		// Nested fn bodies count toward the enclosing function.
		if fn, ok := s.Item.(*syntax.FunctionItem); ok {
			return scoreBlock(fn.Body, nesting)
		}
		return 0
	default:
		return 0
	}
}

func scoreExpr(e syntax.Expr, nesting int) int {
	var raw int

	switch e := e.(type) {
	case *syntax.IfExpr:
		raw = 1 +
			scoreExpr(e.Cond, nesting+1) +
			scoreBlock(e.Then, nesting+1) +
			scoreExpr(e.Else, nesting+1)

	case *syntax.MatchExpr:
		raw = 1
		for _, arm := range e.Arms {
			raw += scoreExpr(arm.Body, nesting+1)
		}

	case *syntax.ForExpr:
		raw = 1 + scoreBlock(e.Body, nesting+1)

	case *syntax.WhileExpr:
		raw = 1 + scoreBlock(e.Body, nesting+1)

	case *syntax.ClosureExpr:
		raw = scoreExpr(e.Body, nesting+1)

	case *syntax.MethodCallExpr:
		raw = scoreExpr(e.Receiver, nesting)
		for _, arg := range e.Args {
			raw += scoreExpr(arg, nesting)
		}

	case *syntax.BlockExpr:
		raw = scoreBlock(e.Block, nesting)

	case *syntax.LetExpr:
		raw = scoreExpr(e.Value, nesting)

	default:
		// *syntax.OtherExpr and absent expressions
		return 0
	}

	if raw == 0 {
		return 0
	}
	return raw + nesting
}
