package promise_test

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/testinglint/pkg/analysis/promise"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser"
)

func parse(t *testing.T, code string) *parser.File {
	t.Helper()
	file, err := parser.ParseFile(context.Background(), "a.test.ts", []byte(code))
	require.NoError(t, err)
	t.Cleanup(file.Close)
	return file
}

// identifiers returns every identifier-like node named name, in source order.
func identifiers(file *parser.File, name string) []*sitter.Node {
	var out []*sitter.Node
	parser.WalkTree(file.Root(), func(n *sitter.Node) bool {
		if (n.Type() == "identifier" || n.Type() == "property_identifier") && parser.GetNodeText(n, file.Source) == name {
			out = append(out, n)
		}
		return true
	})
	return out
}

func first(t *testing.T, file *parser.File, name string) *sitter.Node {
	t.Helper()
	found := identifiers(file, name)
	require.NotEmpty(t, found, "no identifier %q", name)
	return found[0]
}

func TestIsHandled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		code   string
		target string
		want   bool
	}{
		{name: "awaited", code: "async () => { await waitFor(cb); };", target: "waitFor", want: true},
		{name: "awaited member query", code: "async () => { await screen.findByText('x'); };", target: "findByText", want: true},
		{name: "arrow body", code: "const f = () => waitFor(cb);", target: "waitFor", want: true},
		{name: "returned", code: "function f() { return waitFor(cb); }", target: "waitFor", want: true},
		{name: "then chained", code: "waitFor(cb).then(() => {});", target: "waitFor", want: true},
		{name: "catch chained on member call", code: "screen.findByText('x').catch(fail);", target: "findByText", want: true},
		{name: "finally chained", code: "findByText('x').finally(done);", target: "findByText", want: true},
		{name: "resolves", code: "expect(findByText('x')).resolves.toBeTruthy();", target: "findByText", want: true},
		{name: "rejects", code: "expect(screen.findByText('x')).rejects.toThrow();", target: "findByText", want: true},
		{name: "toResolve", code: "expect(waitFor(cb)).toResolve();", target: "waitFor", want: true},
		{name: "awaited Promise.all", code: "async () => { await Promise.all([waitFor(a), findByText('b')]); };", target: "findByText", want: true},
		{name: "chained Promise.allSettled", code: "Promise.allSettled([waitFor(a)]).then(done);", target: "waitFor", want: true},
		{name: "conditional branch", code: "async () => { await (cond ? other() : waitFor(a)); };", target: "waitFor", want: true},
		{name: "or operand", code: "async () => { await (waitFor(a) || x); };", target: "waitFor", want: true},
		{name: "nullish operand", code: "async () => { await (x ?? waitFor(a)); };", target: "waitFor", want: true},
		{name: "and right operand", code: "async () => { await (x && waitFor(a)); };", target: "waitFor", want: true},
		{name: "last in sequence", code: "async () => { await (x, waitFor(a)); };", target: "waitFor", want: true},
		{name: "bare statement", code: "() => { waitFor(cb); };", target: "waitFor"},
		{name: "unhandled Promise.all", code: "Promise.all([waitFor(a)]);", target: "waitFor"},
		{name: "second argument of Promise.all", code: "async () => { await Promise.all(list, [waitFor(a)]); };", target: "waitFor"},
		{name: "and left operand", code: "async () => { await (waitFor(a) && x); };", target: "waitFor"},
		{name: "first in sequence", code: "async () => { await (waitFor(a), x); };", target: "waitFor"},
		{name: "assigned", code: "const p = waitFor(a);", target: "waitFor"},
		{name: "passed as argument", code: "foo(waitFor(a));", target: "waitFor"},
		{name: "other matcher", code: "expect(waitFor(a)).toBe(x);", target: "waitFor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			file := parse(t, tt.code)
			checker := promise.NewChecker(file.Source)
			assert.Equal(t, tt.want, checker.IsHandled(first(t, file, tt.target)))
		})
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		code        string
		wantHandled bool
		wantRef     string
	}{
		{name: "should accept an awaited variable", code: "async () => { const p = waitFor(a); await p; };", wantHandled: true},
		{name: "should require every read to be handled", code: "async () => { const p = waitFor(a); await p; log(p); };", wantRef: "log(p)"},
		{name: "should check the call when the variable is never read", code: "async () => { const p = waitFor(a); };"},
		{name: "should check the call when not stored", code: "async () => { waitFor(a); };"},
		{name: "should accept returned variables", code: "function f() { const p = waitFor(a); return p; }", wantHandled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			file := parse(t, tt.code)
			ctx := engine.NewContext(file, engine.RuleConfig{Rule: &engine.Rule{Name: "test-rule"}, Severity: domain.SeverityError}, engine.Settings{})
			result := promise.NewChecker(file.Source).Check(ctx, first(t, file, "waitFor"))

			assert.Equal(t, tt.wantHandled, result.Handled)
			if tt.wantRef == "" {
				assert.Nil(t, result.Reference)
				assert.Empty(t, result.Unhandled)
				return
			}
			require.NotNil(t, result.Reference)
			assert.True(t, result.Stored)
			assert.Len(t, result.Unhandled, 1)
			assert.Equal(t, tt.wantRef, parser.GetNodeText(result.Reference.Parent().Parent(), file.Source))
		})
	}
}

func TestWrappers(t *testing.T) {
	t.Parallel()

	file := parse(t, `
function waitForButton() { return waitFor(cb); }
const alias = waitForButton;
const { waitForButton: renamed } = helpers;
const waitForModal = () => screen.findByText('modal');
function notWrapper() { if (x) { return waitFor(cb); } }
`)
	wrappers := promise.NewWrappers(file.Source)
	for _, name := range []string{"waitFor", "findByText"} {
		for _, id := range identifiers(file, name) {
			wrappers.Detect(id)
		}
	}
	parser.WalkTree(file.Root(), func(n *sitter.Node) bool {
		if n.Type() == "variable_declarator" {
			wrappers.TrackDeclarator(n)
		}
		return true
	})

	for _, name := range []string{"waitForButton", "alias", "renamed", "waitForModal"} {
		assert.True(t, wrappers.Has(name), name)
	}
	assert.False(t, wrappers.Has("notWrapper"))
	assert.False(t, wrappers.Has(""))
}

func TestAwaitFix(t *testing.T) {
	t.Parallel()

	file := parse(t, "test('x', () => { waitFor(a); screen.findByText(b); });\nasync function f() { waitFor(c); }")
	calls := identifiers(file, "waitFor")
	query := first(t, file, "findByText")
	arrow := calls[0].Parent().Parent().Parent().Parent()
	require.Equal(t, "arrow_function", arrow.Type())

	marker := promise.NewAsyncMarker()
	fixer := engine.NewFixer(file.Source)

	edits := promise.AwaitFix(fixer, promise.AwaitTarget(calls[0]), marker)
	assert.Equal(t, []domain.TextEdit{
		{Start: int(calls[0].StartByte()), End: int(calls[0].StartByte()), Text: "await "},
		{Start: int(arrow.StartByte()), End: int(arrow.StartByte()), Text: "async "},
	}, edits)
	assert.True(t, marker.IsMarked(arrow))

	target := promise.AwaitTarget(query)
	assert.Equal(t, "screen.findByText", parser.GetNodeText(target, file.Source))
	edits = promise.AwaitFix(fixer, target, marker)
	assert.Equal(t, []domain.TextEdit{{Start: int(target.StartByte()), End: int(target.StartByte()), Text: "await "}}, edits, "async is inserted once per function")

	edits = promise.AwaitFix(fixer, calls[1], marker)
	assert.Len(t, edits, 1, "already async")

	assert.Len(t, promise.AwaitFix(fixer, calls[1], nil), 1)
}
