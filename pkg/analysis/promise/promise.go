// Package promise decides whether the promise produced by a call is
// handled: awaited, returned, chained with then/catch/finally, settled by
// a resolves/rejects matcher, or collected by an awaited Promise.all.
package promise

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/vocab"
)

// Checker evaluates promise handling within one file.
type Checker struct {
	src []byte
}

// NewChecker returns a Checker over the source of one parsed file.
func NewChecker(src []byte) *Checker {
	return &Checker{src: src}
}

// IsHandled reports whether the promise around identifier is consumed.
// Both the identifier and the closest call in its own expression are checked.
func (c *Checker) IsHandled(identifier *sitter.Node) bool {
	if identifier == nil {
		return false
	}
	suspicious := []*sitter.Node{identifier}
	if call := nodes.FindClosestCallExpression(identifier, true); call != nil && !nodes.Same(call, identifier) {
		suspicious = append(suspicious, call)
	}

	for _, n := range suspicious {
		root := RootExpression(n)
		parent := root.Parent()
		if parent == nil {
			continue
		}
		switch {
		case nodes.IsAwaitExpression(parent), nodes.IsReturnStatement(parent):
			return true
		case nodes.IsArrowFunction(parent) && nodes.Same(parent.ChildByFieldName("body"), root):
			return true
		}
		if c.hasClosestExpectResolvesRejects(n) || c.hasChainedThen(root) || c.isPromisesArrayResolved(root) {
			return true
		}
	}
	return false
}

// RootExpression climbs from n to the expression whose value is n's value:
// through conditionals, ||, ?? and parentheses always, through && only from
// the right operand, and through sequences only from the last element.
func RootExpression(n *sitter.Node) *sitter.Node {
	for depth := 0; depth < nodes.MaxAncestorDepth; depth++ {
		parent := n.Parent()
		if parent == nil {
			return n
		}
		switch {
		case nodes.IsConditional(parent):
			if nodes.Same(parent.ChildByFieldName("condition"), n) {
				return n
			}
		case nodes.IsLogical(parent):
			if nodes.LogicalOperator(parent) == "&&" && !nodes.Same(parent.ChildByFieldName("right"), n) {
				return n
			}
		case nodes.IsSequence(parent):
			if !isLastInSequence(parent, n) {
				return n
			}
		case nodes.IsParenthesized(parent), parent.Type() == "non_null_expression", parent.Type() == "as_expression", parent.Type() == "satisfies_expression":
		default:
			return n
		}
		n = parent
	}
	return n
}

// isLastInSequence handles both nested (a, (b, c)) and flat sequence shapes.
func isLastInSequence(seq, n *sitter.Node) bool {
	count := int(seq.NamedChildCount())
	for i := count - 1; i >= 0; i-- {
		child := seq.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		return nodes.Same(child, n)
	}
	return false
}

// hasClosestExpectResolvesRejects reports whether n sits inside an
// expect(...) whose matcher settles the promise.
func (c *Checker) hasClosestExpectResolvesRejects(n *sitter.Node) bool {
	for depth := 0; n != nil && depth < nodes.MaxAncestorDepth; depth++ {
		parent := n.Parent()
		if parent == nil {
			return false
		}
		if nodes.IsExpectCall(n, c.src) && nodes.IsMemberExpression(parent) {
			return vocab.Contains(vocab.PromiseMatchers, nodes.PropertyName(parent, c.src))
		}
		n = parent
	}
	return false
}

func (c *Checker) hasThenProperty(n *sitter.Node) bool {
	return nodes.IsMemberExpression(n) && vocab.Contains(vocab.PromiseChainMethods, nodes.PropertyName(n, c.src))
}

// hasChainedThen matches promise.then(...) and util(...).then(...).
func (c *Checker) hasChainedThen(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	if nodes.IsCallExpression(parent) && parent.Parent() != nil {
		return c.hasThenProperty(parent.Parent())
	}
	return c.hasThenProperty(parent) && nodes.Same(nodes.MemberObject(parent), n)
}

// isPromisesArrayResolved matches calls listed in the array passed to a
// Promise combinator that is handled itself.
func (c *Checker) isPromisesArrayResolved(n *sitter.Node) bool {
	call := nodes.FindClosestCallExpression(n, true)
	if call == nil {
		return false
	}
	array := RootExpression(call).Parent()
	if !nodes.IsArray(array) {
		return false
	}
	combinator := nodes.EnclosingCall(array)
	if !c.isPromiseCombinator(combinator) || !nodes.Same(nodes.FirstArgument(combinator), array) {
		return false
	}
	return c.IsHandled(combinator)
}

func (c *Checker) isPromiseCombinator(call *sitter.Node) bool {
	callee := nodes.Callee(call)
	return nodes.IsMemberExpression(callee) &&
		nodes.HasName(nodes.MemberObject(callee), c.src, vocab.PromiseName) &&
		vocab.Contains(vocab.PromiseCombinators, nodes.PropertyName(callee, c.src))
}

// Result is the outcome of Check.
type Result struct {
	Handled bool
	// Reference is the first unhandled read of the variable the promise was
	// stored in. Nil when the promise is not stored.
	Reference *sitter.Node
	// Unhandled lists every unhandled read, Reference first.
	Unhandled []*sitter.Node
	// Stored is set when the promise is assigned to a variable that is read.
	Stored bool
}

// Check applies IsHandled to the call around identifier, or to every read
// of the variable the call is assigned to. A stored promise is handled only
// when all of its reads are.
func (c *Checker) Check(ctx *engine.Context, identifier *sitter.Node) Result {
	call := nodes.FindClosestCallExpression(identifier, true)
	if call == nil || call.Parent() == nil {
		return Result{Handled: true}
	}

	refs := variableReferences(ctx, call.Parent())
	if len(refs) == 0 {
		return Result{Handled: c.IsHandled(identifier)}
	}
	res := Result{Stored: true}
	for _, ref := range refs {
		if !c.IsHandled(ref) {
			res.Unhandled = append(res.Unhandled, ref)
		}
	}
	if len(res.Unhandled) == 0 {
		res.Handled = true
		return res
	}
	res.Reference = res.Unhandled[0]
	return res
}

func variableReferences(ctx *engine.Context, n *sitter.Node) []*sitter.Node {
	if !nodes.IsVariableDeclarator(n) {
		return nil
	}
	var refs []*sitter.Node
	for _, ref := range ctx.References(n) {
		if ref.Type() == "identifier" {
			refs = append(refs, ref)
		}
	}
	return refs
}
