package nodes

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// innerScopeParents are the parents a restricted closest-call search may
// climb into. Anything else (argument lists, statements, declarators)
// belongs to an unrelated outer expression.
var innerScopeParents = map[string]bool{
	"call_expression":          true,
	"member_expression":        true,
	"non_null_expression":      true,
	"parenthesized_expression": true,
}

// FindClosestCallExpression returns n itself when it is a call, otherwise
// its closest call ancestor. With restrictInnerScope the walk stops as soon
// as the next parent is not a call-composable node.
func FindClosestCallExpression(n *sitter.Node, restrictInnerScope bool) *sitter.Node {
	for depth := 0; n != nil && depth < MaxAncestorDepth; depth++ {
		if IsCallExpression(n) {
			return n
		}
		parent := n.Parent()
		if parent == nil {
			return nil
		}
		if restrictInnerScope && !innerScopeParents[parent.Type()] {
			return nil
		}
		n = parent
	}
	return nil
}

// FindClosestCallNode returns the closest call, n included, whose callee
// is the plain identifier name.
func FindClosestCallNode(n *sitter.Node, src []byte, name string) *sitter.Node {
	for depth := 0; n != nil && depth < MaxAncestorDepth; depth++ {
		if IsCallExpression(n) && HasName(Callee(n), src, name) {
			return n
		}
		n = n.Parent()
	}
	return nil
}

// FindClosestFunction returns n or its closest function ancestor.
func FindClosestFunction(n *sitter.Node) *sitter.Node {
	for depth := 0; n != nil && depth < MaxAncestorDepth; depth++ {
		if IsFunction(n) {
			return n
		}
		n = n.Parent()
	}
	return nil
}

// FindClosestVariableDeclarator returns n or its closest declarator ancestor.
func FindClosestVariableDeclarator(n *sitter.Node) *sitter.Node {
	for depth := 0; n != nil && depth < MaxAncestorDepth; depth++ {
		if IsVariableDeclarator(n) {
			return n
		}
		n = n.Parent()
	}
	return nil
}

// FindClosestStatement returns the closest ancestor, n included, that sits
// directly inside a block or the program.
func FindClosestStatement(n *sitter.Node) *sitter.Node {
	for depth := 0; n != nil && depth < MaxAncestorDepth; depth++ {
		parent := n.Parent()
		if parent == nil {
			return nil
		}
		if IsStatementContainer(parent) {
			return n
		}
		n = parent
	}
	return nil
}

// FindAncestor returns the closest strict ancestor for which match is true.
func FindAncestor(n *sitter.Node, match func(*sitter.Node) bool) *sitter.Node {
	if n == nil {
		return nil
	}
	n = n.Parent()
	for depth := 0; n != nil && depth < MaxAncestorDepth; depth++ {
		if match(n) {
			return n
		}
		n = n.Parent()
	}
	return nil
}

// IsDescendant reports whether n lies within ancestor (or is ancestor).
func IsDescendant(n, ancestor *sitter.Node) bool {
	if n == nil || ancestor == nil {
		return false
	}
	return n.StartByte() >= ancestor.StartByte() && n.EndByte() <= ancestor.EndByte()
}

// InnermostFunctionScope returns the function whose scope is the innermost
// scope of n. It returns nil when a block, loop, switch, catch or class
// scope lies between n and that function.
func InnermostFunctionScope(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	cur := n.Parent()
	for depth := 0; cur != nil && depth < MaxAncestorDepth; depth++ {
		switch {
		case IsFunction(cur):
			return cur
		case IsBlockStatement(cur):
			if !IsFunction(cur.Parent()) {
				return nil
			}
		case is(cur, "for_statement", "for_in_statement", "switch_statement", "catch_clause", "class_body"):
			return nil
		case is(cur, "program"):
			return nil
		}
		cur = cur.Parent()
	}
	return nil
}
