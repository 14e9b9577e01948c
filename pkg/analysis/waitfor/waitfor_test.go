package waitfor_test

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/testinglint/pkg/analysis/waitfor"
	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/fixer"
	"github.com/specvital/testinglint/pkg/parser"
)

// parseWithHelpers parses code and returns the helpers of a rule that saw the whole file.
func parseWithHelpers(t *testing.T, code string) (*parser.File, *detection.Helpers) {
	t.Helper()

	file, err := parser.ParseFile(context.Background(), "a.test.js", []byte(code))
	require.NoError(t, err)
	t.Cleanup(file.Close)

	var helpers *detection.Helpers
	rule := detection.CreateRule(detection.Definition[struct{}]{
		Name:      "capture-helpers",
		Detection: detection.Options{SkipRuleReportingCheck: true},
		Create: func(_ *engine.Context, _ struct{}, h *detection.Helpers) engine.Handlers {
			return engine.Handlers{"program:exit": func(*sitter.Node) { helpers = h }}
		},
	})
	_, err = engine.Run(file, []engine.RuleConfig{{Rule: rule, Severity: domain.SeverityError}}, engine.Settings{})
	require.NoError(t, err)
	require.NotNil(t, helpers)
	return file, helpers
}

// waitCalls returns the calls whose callee is the text name, in source order.
func waitCalls(file *parser.File, name string) []*sitter.Node {
	var out []*sitter.Node
	parser.WalkTree(file.Root(), func(n *sitter.Node) bool {
		if n.Type() == "call_expression" && parser.GetNodeText(n.ChildByFieldName("function"), file.Source) == name {
			out = append(out, n)
		}
		return true
	})
	return out
}

func apply(t *testing.T, src []byte, edits []domain.TextEdit) string {
	t.Helper()
	require.NotEmpty(t, edits)
	out, applied := fixer.Apply(src, []domain.Finding{{Fix: &domain.Fix{Edits: edits}}})
	require.Equal(t, 1, applied)
	return string(out)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	file, h := parseWithHelpers(t, `const { rerender } = render(App);
test('t', async () => {
  await waitFor(() => {
    fireEvent.click(button);
    const view = render(App);
    user.type(input, 'x');
    expect(a).toBe(1);
    doSomething();
    rerender(App);
    await expect(b).resolves.toBe(2);
    label = renderLabel(x);
  });
});
`)
	call := waitCalls(file, "waitFor")[0]
	block := waitfor.Body(waitfor.Callback(call))
	require.NotNil(t, block)

	var roles []waitfor.Role
	for _, stmt := range waitfor.Classify(h, block, "user") {
		roles = append(roles, stmt.Role)
	}
	assert.Equal(t, []waitfor.Role{
		waitfor.RoleSideEffect,
		waitfor.RoleSideEffect,
		waitfor.RoleSideEffect,
		waitfor.RoleAssertion,
		waitfor.RoleOther,
		waitfor.RoleSideEffect,
		waitfor.RoleAssertion,
		waitfor.RoleSideEffect,
	}, roles)

	t.Run("should not treat unknown sessions as side effects", func(t *testing.T) {
		t.Parallel()

		stmts := waitfor.Classify(h, block)
		assert.Equal(t, waitfor.RoleOther, stmts[2].Role)
	})
}

func TestWaitIdentifier(t *testing.T) {
	t.Parallel()

	file, _ := parseWithHelpers(t, "waitFor(cb).then(() => {}); screen.waitFor(cb);")

	then := waitCalls(file, "waitFor(cb).then")
	require.Len(t, then, 1)
	assert.Nil(t, waitfor.WaitIdentifier(then[0], file.Source))

	member := waitCalls(file, "screen.waitFor")
	require.Len(t, member, 1)
	assert.Equal(t, "waitFor", parser.GetNodeText(waitfor.WaitIdentifier(member[0], file.Source), file.Source))
}

func TestIsEmptyCallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "should match empty arrow", code: "waitFor(() => {});", want: true},
		{name: "should match empty function", code: "waitFor(function () {});", want: true},
		{name: "should match noop", code: "waitFor(noop);", want: true},
		{name: "should not match arrow with statements", code: "waitFor(() => { screen.getByText(/x/) });"},
		{name: "should not match concise arrow", code: "waitFor(() => undefined);"},
		{name: "should not match other identifiers", code: "waitFor(check);"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			file, _ := parseWithHelpers(t, tt.code)
			call := waitCalls(file, "waitFor")[0]
			callback := waitfor.Callback(call)
			if callback == nil {
				callback = call.ChildByFieldName("arguments").NamedChild(0)
			}
			assert.Equal(t, tt.want, waitfor.IsEmptyCallback(callback, file.Source))
		})
	}
}

func TestGroupAssertions(t *testing.T) {
	t.Parallel()

	file, h := parseWithHelpers(t, `waitFor(() => {
  expect(a).toBe(1);
  expect(b).toBe(2);
  expect(a).not.toBe(3);
  expect(a.b).toBe(4);
  fireEvent.click(a);
  expect(b).toBeTruthy();
});`)
	block := waitfor.Body(waitfor.Callback(waitCalls(file, "waitFor")[0]))
	groups := waitfor.GroupAssertions(file.Source, waitfor.Classify(h, block))

	require.Len(t, groups, 3)
	assert.Equal(t, "a", groups[0].Subject)
	assert.Len(t, groups[0].Statements, 2)
	assert.Equal(t, "b", groups[1].Subject)
	assert.Len(t, groups[1].Statements, 2)
	assert.Equal(t, "a.b", groups[2].Subject)
	assert.Len(t, groups[2].Statements, 1)
}

func TestHoistFix(t *testing.T) {
	t.Parallel()

	t.Run("should move the side effect before the wait statement", func(t *testing.T) {
		t.Parallel()

		file, h := parseWithHelpers(t, "async () => {\n  await waitFor(() => { fireEvent.click(btn); expect(b).toEqual('b'); });\n};")
		call := waitCalls(file, "waitFor")[0]
		stmts := waitfor.Classify(h, waitfor.Body(waitfor.Callback(call)))
		require.Equal(t, waitfor.RoleSideEffect, stmts[0].Role)

		edits := waitfor.HoistFix(engine.NewFixer(file.Source), call, stmts[0].Node)
		assert.Equal(t, "async () => {\n  fireEvent.click(btn);\n  await waitFor(() => { expect(b).toEqual('b'); });\n};", apply(t, file.Source, edits))
	})

	t.Run("should keep the wait call when the callback becomes empty", func(t *testing.T) {
		t.Parallel()

		file, h := parseWithHelpers(t, "await waitFor(() => { fireEvent.click(btn); });")
		call := waitCalls(file, "waitFor")[0]
		stmts := waitfor.Classify(h, waitfor.Body(waitfor.Callback(call)))

		edits := waitfor.HoistFix(engine.NewFixer(file.Source), call, stmts[0].Node)
		assert.Equal(t, "fireEvent.click(btn);\nawait waitFor(() => {  });", apply(t, file.Source, edits))
	})

	t.Run("should drop the emptied line of a multi-line callback", func(t *testing.T) {
		t.Parallel()

		file, h := parseWithHelpers(t, "async () => {\n  await waitFor(() => {\n    fireEvent.click(a);\n  });\n};")
		call := waitCalls(file, "waitFor")[0]
		stmts := waitfor.Classify(h, waitfor.Body(waitfor.Callback(call)))
		require.Len(t, stmts, 1)

		edits := waitfor.HoistFix(engine.NewFixer(file.Source), call, stmts[0].Node)
		assert.Equal(t, "async () => {\n  fireEvent.click(a);\n  await waitFor(() => {\n  });\n};", apply(t, file.Source, edits))
	})

	t.Run("should not fix waits outside a statement list", func(t *testing.T) {
		t.Parallel()

		file, h := parseWithHelpers(t, "it('x', () => waitFor(() => { fireEvent.click(btn); }));")
		call := waitCalls(file, "waitFor")[0]
		stmts := waitfor.Classify(h, waitfor.Body(waitfor.Callback(call)))

		assert.Nil(t, waitfor.WaitStatement(call))
		assert.Nil(t, waitfor.HoistFix(engine.NewFixer(file.Source), call, stmts[0].Node))
	})
}

func TestDuplicateFix(t *testing.T) {
	t.Parallel()

	file, h := parseWithHelpers(t, "test('t', async () => {\n  await waitFor(() => {\n    expect(a).toEqual('a');\n    expect(a).toEqual('a');\n  });\n});")
	call := waitCalls(file, "waitFor")[0]
	groups := waitfor.GroupAssertions(file.Source, waitfor.Classify(h, waitfor.Body(waitfor.Callback(call))))
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Statements, 2)

	edits := waitfor.DuplicateFix(engine.NewFixer(file.Source), call, groups[0].Statements[1])
	assert.Equal(t, "test('t', async () => {\n  await waitFor(() => {\n    expect(a).toEqual('a');\n  });\n  expect(a).toEqual('a');\n});", apply(t, file.Source, edits))
}
