// Package nodes classifies tree-sitter JavaScript/TypeScript nodes and
// answers structural questions about them: closest enclosing call,
// function or declarator, identifier chains, import bindings.
//
// Every predicate is nil-safe and every upward walk is bounded by
// MaxAncestorDepth, returning nil instead of panicking at the root.
package nodes

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/parser"
	"github.com/specvital/testinglint/pkg/parser/tspool"
)

// MaxAncestorDepth bounds every upward parent walk.
const MaxAncestorDepth = tspool.MaxTreeDepth

// Key identifies a node within one tree.
type Key struct {
	Start uint32
	End   uint32
	Type  string
}

// KeyOf returns the identity key of n. The zero Key for nil.
func KeyOf(n *sitter.Node) Key {
	if n == nil {
		return Key{}
	}
	return Key{Start: n.StartByte(), End: n.EndByte(), Type: n.Type()}
}

// Same reports whether a and b denote the same node.
func Same(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return KeyOf(a) == KeyOf(b)
}

func is(n *sitter.Node, types ...string) bool {
	if n == nil {
		return false
	}
	t := n.Type()
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}

func IsCallExpression(n *sitter.Node) bool   { return is(n, "call_expression") }
func IsMemberExpression(n *sitter.Node) bool { return is(n, "member_expression") }
func IsAwaitExpression(n *sitter.Node) bool  { return is(n, "await_expression") }
func IsArrowFunction(n *sitter.Node) bool    { return is(n, "arrow_function") }
func IsNewExpression(n *sitter.Node) bool    { return is(n, "new_expression") }

// IsFunctionExpression matches anonymous or named function expressions.
// Older grammars call them "function".
func IsFunctionExpression(n *sitter.Node) bool {
	return is(n, "function_expression", "function", "generator_function")
}

func IsFunctionDeclaration(n *sitter.Node) bool {
	return is(n, "function_declaration", "generator_function_declaration")
}

func IsMethodDefinition(n *sitter.Node) bool { return is(n, "method_definition") }

// IsFunction matches every node that introduces a function scope.
func IsFunction(n *sitter.Node) bool {
	return IsArrowFunction(n) || IsFunctionExpression(n) || IsFunctionDeclaration(n) || IsMethodDefinition(n)
}

// IsIdentifier matches every identifier-like token: plain identifiers,
// member properties and shorthand properties.
func IsIdentifier(n *sitter.Node) bool {
	return is(n, "identifier", "property_identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern")
}

func IsString(n *sitter.Node) bool              { return is(n, "string") }
func IsTemplateString(n *sitter.Node) bool      { return is(n, "template_string") }
func IsRegex(n *sitter.Node) bool               { return is(n, "regex") }
func IsArray(n *sitter.Node) bool               { return is(n, "array") }
func IsObject(n *sitter.Node) bool              { return is(n, "object") }
func IsObjectPattern(n *sitter.Node) bool       { return is(n, "object_pattern") }
func IsVariableDeclarator(n *sitter.Node) bool  { return is(n, "variable_declarator") }
func IsVariableDeclaration(n *sitter.Node) bool { return is(n, "lexical_declaration", "variable_declaration") }
func IsExpressionStatement(n *sitter.Node) bool { return is(n, "expression_statement") }
func IsReturnStatement(n *sitter.Node) bool     { return is(n, "return_statement") }
func IsBlockStatement(n *sitter.Node) bool      { return is(n, "statement_block") }
func IsProgram(n *sitter.Node) bool             { return is(n, "program") }
func IsImportStatement(n *sitter.Node) bool     { return is(n, "import_statement") }
func IsConditional(n *sitter.Node) bool         { return is(n, "ternary_expression") }
func IsSequence(n *sitter.Node) bool            { return is(n, "sequence_expression") }
func IsParenthesized(n *sitter.Node) bool       { return is(n, "parenthesized_expression") }
func IsArguments(n *sitter.Node) bool           { return is(n, "arguments") }

func IsAssignment(n *sitter.Node) bool {
	return is(n, "assignment_expression", "augmented_assignment_expression")
}

func IsJSXAttribute(n *sitter.Node) bool { return is(n, "jsx_attribute") }

// IsJSXElementOpening matches element openers that carry attributes.
func IsJSXElementOpening(n *sitter.Node) bool {
	return is(n, "jsx_opening_element", "jsx_self_closing_element")
}

// LogicalOperator returns "&&", "||" or "??" for logical binary
// expressions, and "" for anything else.
func LogicalOperator(n *sitter.Node) string {
	if !is(n, "binary_expression") {
		return ""
	}
	op := n.ChildByFieldName("operator")
	if op == nil {
		return ""
	}
	switch op.Type() {
	case "&&", "||", "??":
		return op.Type()
	}
	return ""
}

// IsLogical matches &&, || and ?? expressions.
func IsLogical(n *sitter.Node) bool { return LogicalOperator(n) != "" }

// IsStatementContainer matches nodes whose named children are statements.
func IsStatementContainer(n *sitter.Node) bool {
	return IsBlockStatement(n) || IsProgram(n)
}

// Name returns the text of an identifier-like node, or "".
func Name(n *sitter.Node, src []byte) string {
	if !IsIdentifier(n) {
		return ""
	}
	return parser.GetNodeText(n, src)
}

// HasName reports whether n is an identifier-like node with one of names.
func HasName(n *sitter.Node, src []byte, names ...string) bool {
	name := Name(n, src)
	if name == "" {
		return false
	}
	for _, want := range names {
		if name == want {
			return true
		}
	}
	return false
}

// Callee returns the function of a call expression.
func Callee(call *sitter.Node) *sitter.Node {
	if !IsCallExpression(call) {
		return nil
	}
	return call.ChildByFieldName("function")
}

// Arguments returns the argument expressions of a call or new expression,
// skipping punctuation and comments.
func Arguments(call *sitter.Node) []*sitter.Node {
	if !IsCallExpression(call) && !IsNewExpression(call) {
		return nil
	}
	args := call.ChildByFieldName("arguments")
	if !IsArguments(args) {
		return nil
	}
	var out []*sitter.Node
	for _, child := range parser.NamedChildren(args) {
		if child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// FirstArgument returns the first argument of a call, or nil.
func FirstArgument(call *sitter.Node) *sitter.Node {
	args := Arguments(call)
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

// MemberObject returns the object of a member expression.
func MemberObject(member *sitter.Node) *sitter.Node {
	if !IsMemberExpression(member) {
		return nil
	}
	return member.ChildByFieldName("object")
}

// MemberProperty returns the property of a member expression.
func MemberProperty(member *sitter.Node) *sitter.Node {
	if !IsMemberExpression(member) {
		return nil
	}
	return member.ChildByFieldName("property")
}

// PropertyName returns the property name of a member expression, or "".
func PropertyName(member *sitter.Node, src []byte) string {
	return Name(MemberProperty(member), src)
}

// Inner returns the single wrapped expression of await, parenthesized,
// expression statement, non-null and return nodes.
func Inner(n *sitter.Node) *sitter.Node {
	if !is(n, "await_expression", "parenthesized_expression", "expression_statement", "non_null_expression", "return_statement") {
		return nil
	}
	for _, child := range parser.NamedChildren(n) {
		if child.Type() != "comment" {
			return child
		}
	}
	return nil
}

// Unparen strips parentheses and TS non-null assertions.
func Unparen(n *sitter.Node) *sitter.Node {
	for depth := 0; depth < MaxAncestorDepth && is(n, "parenthesized_expression", "non_null_expression"); depth++ {
		n = Inner(n)
	}
	return n
}

// Statements returns the statements of a block or program.
func Statements(block *sitter.Node) []*sitter.Node {
	if !IsStatementContainer(block) {
		return nil
	}
	var out []*sitter.Node
	for _, child := range parser.NamedChildren(block) {
		if child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// Declarators returns the variable declarators of a declaration.
func Declarators(decl *sitter.Node) []*sitter.Node {
	if !IsVariableDeclaration(decl) {
		return nil
	}
	var out []*sitter.Node
	for _, child := range parser.NamedChildren(decl) {
		if IsVariableDeclarator(child) {
			out = append(out, child)
		}
	}
	return out
}

// IsExpectCall reports whether n is a call of the plain identifier expect.
func IsExpectCall(n *sitter.Node, src []byte) bool {
	return IsCallExpression(n) && HasName(Callee(n), src, "expect")
}
