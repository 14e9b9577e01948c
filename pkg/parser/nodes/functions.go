package nodes

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/parser"
)

// FunctionBody returns the body of a function: a statement block or,
// for concise arrows, the returned expression.
func FunctionBody(fn *sitter.Node) *sitter.Node {
	if !IsFunction(fn) {
		return nil
	}
	return fn.ChildByFieldName("body")
}

// IsAsyncFunction reports whether fn carries the async keyword.
func IsAsyncFunction(fn *sitter.Node) bool {
	if !IsFunction(fn) {
		return false
	}
	for i := 0; i < int(fn.ChildCount()); i++ {
		child := fn.Child(i)
		if child.Type() == "async" {
			return true
		}
		if child.IsNamed() && child.Type() != "comment" && child.Type() != "decorator" && child.Type() != "accessibility_modifier" {
			break
		}
	}
	return false
}

// AsyncInsertionPoint is the byte offset where "async " must be inserted
// to make fn async.
func AsyncInsertionPoint(fn *sitter.Node) uint32 {
	if IsMethodDefinition(fn) {
		if name := fn.ChildByFieldName("name"); name != nil {
			return name.StartByte()
		}
	}
	return fn.StartByte()
}

// FunctionName returns the declared name of fn, or the name of the
// variable it is assigned to, or "".
func FunctionName(fn *sitter.Node, src []byte) string {
	if !IsFunction(fn) {
		return ""
	}
	if name := fn.ChildByFieldName("name"); name != nil {
		return parser.GetNodeText(name, src)
	}
	parent := fn.Parent()
	if IsVariableDeclarator(parent) {
		return Name(parent.ChildByFieldName("name"), src)
	}
	return ""
}

// FunctionReturnValue returns the expression a function returns: the
// argument of the first top-level return statement, or the concise body.
func FunctionReturnValue(fn *sitter.Node) *sitter.Node {
	body := FunctionBody(fn)
	if body == nil {
		return nil
	}
	if !IsBlockStatement(body) {
		return body
	}
	for _, stmt := range Statements(body) {
		if IsReturnStatement(stmt) {
			return Inner(stmt)
		}
	}
	return nil
}

// IsCallbackOf reports whether fn is passed directly as an argument of call.
func IsCallbackOf(fn, call *sitter.Node) bool {
	args := fn.Parent()
	return IsArguments(args) && Same(args.Parent(), call)
}

// EnclosingCall returns the call that receives n as a direct argument.
func EnclosingCall(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	args := n.Parent()
	if !IsArguments(args) {
		return nil
	}
	call := args.Parent()
	if !IsCallExpression(call) && !IsNewExpression(call) {
		return nil
	}
	return call
}

// LineIndent returns the leading whitespace of the line on which n starts.
func LineIndent(src []byte, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	start := int(n.StartByte())
	if start > len(src) {
		return ""
	}
	lineStart := start
	for lineStart > 0 && src[lineStart-1] != '\n' {
		lineStart--
	}
	end := lineStart
	for end < start && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[lineStart:end])
}
