package nodes_test

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/testinglint/pkg/parser"
	"github.com/specvital/testinglint/pkg/parser/nodes"
)

func parse(t *testing.T, code string) (*parser.File, []byte) {
	t.Helper()
	src := []byte(code)
	file, err := parser.ParseFile(context.Background(), "a.test.tsx", src)
	require.NoError(t, err)
	t.Cleanup(file.Close)
	return file, src
}

// find returns the first node of the given type whose text equals text.
func find(t *testing.T, file *parser.File, nodeType, text string) *sitter.Node {
	t.Helper()
	var found *sitter.Node
	parser.WalkTree(file.Root(), func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == nodeType && parser.GetNodeText(n, file.Source) == text {
			found = n
			return false
		}
		return true
	})
	require.NotNil(t, found, "no %s %q", nodeType, text)
	return found
}

func TestPredicates_NilSafe(t *testing.T) {
	t.Parallel()

	preds := []func(*sitter.Node) bool{
		nodes.IsCallExpression, nodes.IsMemberExpression, nodes.IsAwaitExpression,
		nodes.IsArrowFunction, nodes.IsFunctionExpression, nodes.IsFunction,
		nodes.IsIdentifier, nodes.IsVariableDeclarator, nodes.IsLogical,
		nodes.IsExpressionStatement, nodes.IsBlockStatement, nodes.IsImportStatement,
	}
	for _, pred := range preds {
		assert.False(t, pred(nil))
	}
	assert.Nil(t, nodes.FindClosestCallExpression(nil, true))
	assert.Nil(t, nodes.GetDeepestIdentifier(nil))
	assert.Nil(t, nodes.GetPropertyIdentifier(nil))
	assert.Nil(t, nodes.FindClosestFunction(nil))
}

func TestLogicalOperator(t *testing.T) {
	t.Parallel()

	file, src := parse(t, "a && b; c || d; e ?? f; g + h;")
	_ = src
	assert.Equal(t, "&&", nodes.LogicalOperator(find(t, file, "binary_expression", "a && b")))
	assert.Equal(t, "||", nodes.LogicalOperator(find(t, file, "binary_expression", "c || d")))
	assert.Equal(t, "??", nodes.LogicalOperator(find(t, file, "binary_expression", "e ?? f")))
	assert.Equal(t, "", nodes.LogicalOperator(find(t, file, "binary_expression", "g + h")))
}

func TestFindClosestCallExpression(t *testing.T) {
	t.Parallel()

	file, src := parse(t, "expect(screen.findByText('x')).resolves; foo(bar);")

	t.Run("should climb through member expressions to the call", func(t *testing.T) {
		t.Parallel()

		prop := find(t, file, "property_identifier", "findByText")
		call := nodes.FindClosestCallExpression(prop, true)
		require.NotNil(t, call)
		assert.Equal(t, "screen.findByText('x')", parser.GetNodeText(call, src))
	})

	t.Run("should not cross into an outer call when restricted", func(t *testing.T) {
		t.Parallel()

		arg := find(t, file, "identifier", "bar")
		assert.Nil(t, nodes.FindClosestCallExpression(arg, true))

		outer := nodes.FindClosestCallExpression(arg, false)
		require.NotNil(t, outer)
		assert.Equal(t, "foo(bar)", parser.GetNodeText(outer, src))
	})

	t.Run("should return the node itself for calls", func(t *testing.T) {
		t.Parallel()

		call := find(t, file, "call_expression", "foo(bar)")
		assert.True(t, nodes.Same(call, nodes.FindClosestCallExpression(call, true)))
	})
}

func TestIdentifierChains(t *testing.T) {
	t.Parallel()

	file, src := parse(t, "async () => { await screen.findByText('x'); rtl.fireEvent.click(b); getByRole('button'); }")

	tests := []struct {
		name         string
		nodeType     string
		text         string
		wantDeepest  string
		wantProperty string
	}{
		{name: "member call", nodeType: "call_expression", text: "screen.findByText('x')", wantDeepest: "findByText", wantProperty: "screen"},
		{name: "await", nodeType: "await_expression", text: "await screen.findByText('x')", wantDeepest: "findByText", wantProperty: "screen"},
		{name: "namespaced member", nodeType: "call_expression", text: "rtl.fireEvent.click(b)", wantDeepest: "click", wantProperty: "rtl"},
		{name: "plain call", nodeType: "call_expression", text: "getByRole('button')", wantDeepest: "getByRole", wantProperty: "getByRole"},
		{name: "string", nodeType: "string", text: "'button'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := find(t, file, tt.nodeType, tt.text)
			assert.Equal(t, tt.wantDeepest, parser.GetNodeText(nodes.GetDeepestIdentifier(n), src))
			assert.Equal(t, tt.wantProperty, parser.GetNodeText(nodes.GetPropertyIdentifier(n), src))
		})
	}

	t.Run("should find the reference node and its root", func(t *testing.T) {
		t.Parallel()

		click := find(t, file, "property_identifier", "click")
		ref := nodes.GetReferenceNode(click)
		assert.Equal(t, "rtl.fireEvent.click(b)", parser.GetNodeText(ref, src))
		assert.Equal(t, "rtl", parser.GetNodeText(nodes.RootIdentifier(click), src))
	})
}

func TestFunctions(t *testing.T) {
	t.Parallel()

	file, src := parse(t, `
const waitForButton = () => waitFor(() => {});
async function findIt() {
  return screen.findByText('x');
}
function plain() {
  if (x) { return waitFor(cb); }
}
`)

	t.Run("should name arrow functions by their declarator", func(t *testing.T) {
		t.Parallel()

		arrow := find(t, file, "arrow_function", "() => waitFor(() => {})")
		assert.Equal(t, "waitForButton", nodes.FunctionName(arrow, src))
		assert.False(t, nodes.IsAsyncFunction(arrow))
		assert.Equal(t, "waitFor(() => {})", parser.GetNodeText(nodes.FunctionReturnValue(arrow), src))
	})

	t.Run("should read declarations", func(t *testing.T) {
		t.Parallel()

		fn := find(t, file, "function_declaration", "async function findIt() {\n  return screen.findByText('x');\n}")
		assert.Equal(t, "findIt", nodes.FunctionName(fn, src))
		assert.True(t, nodes.IsAsyncFunction(fn))
		assert.Equal(t, "screen.findByText('x')", parser.GetNodeText(nodes.FunctionReturnValue(fn), src))
	})

	t.Run("should stop the function scope at nested blocks", func(t *testing.T) {
		t.Parallel()

		inIf := find(t, file, "identifier", "cb")
		assert.Nil(t, nodes.InnermostFunctionScope(inIf))

		prop := find(t, file, "property_identifier", "findByText")
		scope := nodes.InnermostFunctionScope(prop)
		require.NotNil(t, scope)
		assert.Equal(t, "findIt", nodes.FunctionName(scope, src))
	})
}

func TestImports(t *testing.T) {
	t.Parallel()

	file, src := parse(t, `
import userEvent, { render as r, screen } from '@testing-library/react';
import * as rtl from "@testing-library/dom";
const { fireEvent, waitFor: wf } = require('test-utils');
const lib = require('other');
`)

	t.Run("should list ES import bindings", func(t *testing.T) {
		t.Parallel()

		stmt := find(t, file, "import_statement", "import userEvent, { render as r, screen } from '@testing-library/react';")
		source, ok := nodes.ImportSource(stmt, src)
		require.True(t, ok)
		assert.Equal(t, "@testing-library/react", source)

		bindings := nodes.ImportBindings(stmt, src)
		require.Len(t, bindings, 3)
		assert.Equal(t, nodes.BindingDefault, bindings[0].Kind)
		assert.Equal(t, "userEvent", bindings[0].Local)
		assert.Equal(t, "render", bindings[1].Imported)
		assert.Equal(t, "r", bindings[1].Local)
		assert.Equal(t, "screen", bindings[2].Local)
	})

	t.Run("should list namespace imports", func(t *testing.T) {
		t.Parallel()

		stmt := find(t, file, "import_statement", `import * as rtl from "@testing-library/dom";`)
		bindings := nodes.ImportBindings(stmt, src)
		require.Len(t, bindings, 1)
		assert.Equal(t, nodes.BindingNamespace, bindings[0].Kind)
		assert.Equal(t, "rtl", bindings[0].Local)
	})

	t.Run("should list require bindings", func(t *testing.T) {
		t.Parallel()

		call := find(t, file, "call_expression", "require('test-utils')")
		source, ok := nodes.RequireSource(call, src)
		require.True(t, ok)
		assert.Equal(t, "test-utils", source)

		bindings := nodes.RequireBindings(call, src)
		require.Len(t, bindings, 2)
		assert.Equal(t, "fireEvent", bindings[0].Local)
		assert.Equal(t, "waitFor", bindings[1].Imported)
		assert.Equal(t, "wf", bindings[1].Local)

		ns := nodes.RequireBindings(find(t, file, "call_expression", "require('other')"), src)
		require.Len(t, ns, 1)
		assert.Equal(t, nodes.BindingNamespace, ns[0].Kind)
		assert.Equal(t, "lib", ns[0].Local)
	})
}

func TestUnquoteString(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		`'foo'`:      "foo",
		`"bar"`:      "bar",
		"`baz`":      "baz",
		`'it\'s'`:    "it's",
		`'say "hi"'`: `say "hi"`,
		`x`:          "x",
	}
	for in, want := range tests {
		assert.Equal(t, want, nodes.UnquoteString(in), in)
	}
}

func TestLineIndent(t *testing.T) {
	t.Parallel()

	file, src := parse(t, "test('x', async () => {\n    await waitFor(cb);\n});")
	await := find(t, file, "await_expression", "await waitFor(cb)")
	assert.Equal(t, "    ", nodes.LineIndent(src, await))
	assert.Equal(t, "", nodes.LineIndent(src, file.Root()))
}
