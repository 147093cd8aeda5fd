package complexity

import "radar/internal/syntax"

// ExtractFunctions returns the top-level function declarations of tree in
// source order. Functions nested inside bodies are not returned; they are
// scored as part of the function that contains them.
func ExtractFunctions(tree *syntax.Tree) []*syntax.FunctionItem {
	if tree == nil {
		return nil
	}
	fns := make([]*syntax.FunctionItem, 0, len(tree.Items))
	for _, item := range tree.Items {
		if fn, ok := item.(*syntax.FunctionItem); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}
