// Package waitfor classifies the statements of a wait utility callback
// and builds the fixes that move statements out of it.
package waitfor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/vocab"
)

// Role is what a callback statement does.
type Role int

const (
	RoleOther Role = iota
	RoleAssertion
	RoleSideEffect
)

func (r Role) String() string {
	switch r {
	case RoleAssertion:
		return "assertion"
	case RoleSideEffect:
		return "side-effect"
	default:
		return "other"
	}
}

// Statement is a classified top-level statement of a callback body.
type Statement struct {
	Node *sitter.Node
	Role Role
}

const rerenderName = "rerender"

// WaitIdentifier returns the identifier naming the util called by call,
// so waitFor(cb) and screen.waitFor(cb) both yield waitFor. Calls chained
// off a promise with then, catch or finally yield nil: their callbacks run
// after the wait and may have side effects.
func WaitIdentifier(call *sitter.Node, src []byte) *sitter.Node {
	callee := nodes.Callee(call)
	if callee == nil {
		return nil
	}
	if nodes.IsMemberExpression(callee) && vocab.Contains(vocab.PromiseChainMethods, nodes.PropertyName(callee, src)) {
		return nil
	}
	return nodes.GetDeepestIdentifier(callee)
}

// Callback returns the function passed as first argument to the wait
// call, or nil.
func Callback(call *sitter.Node) *sitter.Node {
	first := nodes.FirstArgument(call)
	if nodes.IsArrowFunction(first) || nodes.IsFunctionExpression(first) {
		return first
	}
	return nil
}

// Body returns the statement block of callback, or nil for concise arrows.
func Body(callback *sitter.Node) *sitter.Node {
	body := nodes.FunctionBody(callback)
	if !nodes.IsBlockStatement(body) {
		return nil
	}
	return body
}

// IsEmptyCallback matches functions with no statements and the bare
// identifier noop.
func IsEmptyCallback(callback *sitter.Node, src []byte) bool {
	if nodes.IsIdentifier(callback) {
		return nodes.Name(callback, src) == vocab.NoopName
	}
	body := nodes.FunctionBody(callback)
	return nodes.IsBlockStatement(body) && len(nodes.Statements(body)) == 0
}

// Classify assigns a role to every top-level statement of block. sessions
// are the local names of userEvent.setup() instances.
func Classify(h *detection.Helpers, block *sitter.Node, sessions ...string) []Statement {
	c := classifier{h: h, sessions: sessions, src: h.State().Source()}
	stmts := nodes.Statements(block)
	out := make([]Statement, 0, len(stmts))
	for _, stmt := range stmts {
		role := RoleOther
		switch {
		case c.isAssertion(stmt):
			role = RoleAssertion
		case c.isSideEffectStatement(stmt):
			role = RoleSideEffect
		}
		out = append(out, Statement{Node: stmt, Role: role})
	}
	return out
}

// IsSideEffect reports whether expr, typically a concise arrow body, is a
// call that fires events or renders.
func IsSideEffect(h *detection.Helpers, expr *sitter.Node, sessions ...string) bool {
	c := classifier{h: h, sessions: sessions, src: h.State().Source()}
	return c.isSideEffectExpression(expr)
}

type classifier struct {
	h        *detection.Helpers
	sessions []string
	src      []byte
}

func (c classifier) isAssertion(stmt *sitter.Node) bool {
	return nodes.IsExpressionStatement(stmt) && nodes.HasName(nodes.GetPropertyIdentifier(stmt), c.src, vocab.ExpectName)
}

func (c classifier) isSideEffectStatement(stmt *sitter.Node) bool {
	switch {
	case nodes.IsExpressionStatement(stmt):
		return c.isSideEffectExpression(nodes.Inner(stmt))
	case nodes.IsVariableDeclaration(stmt):
		for _, declarator := range nodes.Declarators(stmt) {
			if c.isSideEffectExpression(declarator.ChildByFieldName("value")) {
				return true
			}
		}
	}
	return false
}

func (c classifier) isSideEffectExpression(expr *sitter.Node) bool {
	expr = nodes.Unparen(expr)
	if nodes.IsAwaitExpression(expr) {
		expr = nodes.Unparen(nodes.Inner(expr))
	}
	if nodes.IsAssignment(expr) {
		return c.isSideEffectExpression(expr.ChildByFieldName("right"))
	}
	if !nodes.IsCallExpression(expr) {
		return false
	}

	root := nodes.GetPropertyIdentifier(expr)
	if root == nil {
		return false
	}
	name := nodes.Name(root, c.src)
	switch {
	case c.h.IsFireEventUtil(root), c.h.IsUserEventUtil(root), c.h.IsRenderUtil(root):
		return true
	case c.h.IsUserEventSession(name), vocab.Contains(c.sessions, name):
		return true
	}
	return c.isRerender(expr, root, name)
}

// isRerender matches rerender(...) destructured from a render result and
// view.rerender(...) on one.
func (c classifier) isRerender(call, root *sitter.Node, name string) bool {
	if key, ok := c.h.RenderDestructuredKey(name); ok {
		return key == rerenderName && nodes.Same(nodes.Callee(call), root)
	}
	callee := nodes.Callee(call)
	return c.h.IsRenderResult(name) && nodes.Same(nodes.MemberObject(callee), root) && nodes.PropertyName(callee, c.src) == rerenderName
}

// Group is a set of assertions on the same subject, in source order.
type Group struct {
	Statements []*sitter.Node
	Subject    string
}

// GroupAssertions groups assertion statements by the exact source text of
// the first argument of their expect call. Groups are ordered by their
// first statement.
func GroupAssertions(src []byte, stmts []Statement) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, stmt := range stmts {
		if stmt.Role != RoleAssertion {
			continue
		}
		subject, ok := expectSubject(stmt.Node, src)
		if !ok {
			continue
		}
		i, seen := index[subject]
		if !seen {
			index[subject] = len(groups)
			groups = append(groups, Group{Subject: subject})
			i = len(groups) - 1
		}
		groups[i].Statements = append(groups[i].Statements, stmt.Node)
	}
	return groups
}

// expectSubject returns the text of the first argument of the expect call
// at the root of stmt.
func expectSubject(stmt *sitter.Node, src []byte) (string, bool) {
	n := nodes.Inner(stmt)
	for depth := 0; n != nil && depth < nodes.MaxAncestorDepth; depth++ {
		switch {
		case nodes.IsExpectCall(n, src):
			arg := nodes.FirstArgument(n)
			if arg == nil {
				return "", false
			}
			return parser.GetNodeText(arg, src), true
		case nodes.IsCallExpression(n):
			n = nodes.Callee(n)
		case nodes.IsMemberExpression(n):
			n = nodes.MemberObject(n)
		case nodes.IsAwaitExpression(n), nodes.IsParenthesized(n):
			n = nodes.Inner(n)
		default:
			return "", false
		}
	}
	return "", false
}

// WaitStatement returns the statement holding the wait call when it is an
// expression statement or a declaration directly inside a block or the
// program, and nil otherwise.
func WaitStatement(waitCall *sitter.Node) *sitter.Node {
	n := waitCall
	for depth := 0; n != nil && depth < nodes.MaxAncestorDepth; depth++ {
		parent := n.Parent()
		switch {
		case parent == nil:
			return nil
		case nodes.IsAwaitExpression(parent), nodes.IsParenthesized(parent), nodes.IsVariableDeclarator(parent):
			n = parent
		case nodes.IsExpressionStatement(parent), nodes.IsVariableDeclaration(parent):
			if nodes.IsStatementContainer(parent.Parent()) {
				return parent
			}
			return nil
		default:
			return nil
		}
	}
	return nil
}

// HoistFix moves stmt out of the callback to right before the statement of
// the wait call. The wait call itself is kept, even when its callback
// ends up empty.
func HoistFix(f *engine.Fixer, waitCall, stmt *sitter.Node) []domain.TextEdit {
	waitStmt := WaitStatement(waitCall)
	if waitStmt == nil {
		return nil
	}
	src := f.Source()
	text := parser.GetNodeText(stmt, src) + "\n" + nodes.LineIndent(src, waitStmt)
	return []domain.TextEdit{
		f.InsertBefore(waitStmt, text),
		removeStatement(f, stmt),
	}
}

// DuplicateFix moves stmt out of the callback to a new line right after
// the statement of the wait call, indented like it.
func DuplicateFix(f *engine.Fixer, waitCall, stmt *sitter.Node) []domain.TextEdit {
	waitStmt := WaitStatement(waitCall)
	if waitStmt == nil {
		return nil
	}
	src := f.Source()
	text := "\n" + nodes.LineIndent(src, waitStmt) + parser.GetNodeText(stmt, src)
	return []domain.TextEdit{
		removeStatement(f, stmt),
		f.InsertAfter(waitStmt, text),
	}
}

// removeStatement deletes stmt with the whitespace separating it from its
// previous sibling, or from its next sibling when it comes first. A lone
// statement on its own line takes the line with it.
func removeStatement(f *engine.Fixer, stmt *sitter.Node) domain.TextEdit {
	if prev := stmt.PrevNamedSibling(); prev != nil {
		return f.RemoveRange(int(prev.EndByte()), int(stmt.EndByte()))
	}
	if next := stmt.NextNamedSibling(); next != nil {
		return f.RemoveRange(int(stmt.StartByte()), int(next.StartByte()))
	}
	if start, ok := lineStart(f.Source(), int(stmt.StartByte())); ok {
		return f.RemoveRange(start, int(stmt.EndByte()))
	}
	return f.Remove(stmt)
}

// lineStart returns the offset of the newline ending the line before pos
// when only spaces or tabs separate the two.
func lineStart(src []byte, pos int) (int, bool) {
	for i := pos - 1; i >= 0; i-- {
		switch src[i] {
		case ' ', '\t':
			continue
		case '\n':
			if i > 0 && src[i-1] == '\r' {
				return i - 1, true
			}
			return i, true
		default:
			return 0, false
		}
	}
	return 0, false
}
