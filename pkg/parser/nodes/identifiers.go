package nodes

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// GetDeepestIdentifier descends to the rightmost concrete identifier:
// screen.findByText('x') and await findByText('x') both yield findByText.
func GetDeepestIdentifier(n *sitter.Node) *sitter.Node {
	for depth := 0; n != nil && depth < MaxAncestorDepth; depth++ {
		switch {
		case IsIdentifier(n):
			return n
		case IsMemberExpression(n):
			prop := MemberProperty(n)
			if IsIdentifier(prop) {
				return prop
			}
			return nil
		case IsCallExpression(n):
			n = Callee(n)
		case IsAwaitExpression(n):
			n = Inner(n)
		default:
			return nil
		}
	}
	return nil
}

// GetReferenceNode climbs while n is the callee or object of its parent,
// returning the outermost call/member chain that starts at n.
func GetReferenceNode(n *sitter.Node) *sitter.Node {
	for depth := 0; n != nil && depth < MaxAncestorDepth; depth++ {
		parent := n.Parent()
		if !IsMemberExpression(parent) && !IsCallExpression(parent) {
			return n
		}
		n = parent
	}
	return n
}

// GetPropertyIdentifier descends to the root object of a chain:
// screen.findByText('x') yields screen, fireEvent.click(b) yields fireEvent.
func GetPropertyIdentifier(n *sitter.Node) *sitter.Node {
	for depth := 0; n != nil && depth < MaxAncestorDepth; depth++ {
		switch {
		case IsIdentifier(n):
			return n
		case IsMemberExpression(n):
			n = MemberObject(n)
		case IsCallExpression(n):
			n = Callee(n)
		case IsExpressionStatement(n), IsAwaitExpression(n):
			n = Inner(n)
		default:
			return nil
		}
	}
	return nil
}

// RootIdentifier returns the root identifier of the chain n belongs to.
func RootIdentifier(n *sitter.Node) *sitter.Node {
	return GetPropertyIdentifier(GetReferenceNode(n))
}
