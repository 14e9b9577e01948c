package awaitasyncevents_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/testinglint/pkg/rules/awaitasyncevents"
	"github.com/specvital/testinglint/pkg/rules/ruletest"
)

const userEventImport = "import userEvent from '@testing-library/user-event';\n"

func TestRule(t *testing.T) {
	t.Parallel()

	ruletest.Run(t, awaitasyncevents.Rule, ruletest.Cases{
		Valid: []ruletest.Valid{
			{Name: "should accept awaited userEvent", Code: userEventImport + "test('t', async () => { await userEvent.click(btn); });"},
			{Name: "should accept returned userEvent", Code: userEventImport + "test('t', () => { return userEvent.type(input, 'x'); });"},
			{Name: "should accept then chain", Code: userEventImport + "test('t', () => { userEvent.click(btn).then(done); });"},
			{Name: "should ignore setup calls", Code: userEventImport + "test('t', () => { const user = userEvent.setup(); });"},
			{Name: "should accept awaited session calls", Code: userEventImport + "test('t', async () => { const user = userEvent.setup(); await user.type(input, 'x'); });"},
			{
				Name: "should ignore fireEvent by default",
				Code: "import { fireEvent } from '@testing-library/react';\ntest('t', () => { fireEvent.click(btn); });",
			},
			{
				Name:    "should ignore userEvent when only fireEvent is checked",
				Code:    userEventImport + "test('t', () => { userEvent.click(btn); });",
				Options: map[string]any{"eventModule": "fireEvent"},
			},
		},
		Invalid: []ruletest.Invalid{
			{
				Name: "should await userEvent and make the test async",
				Code: userEventImport + "test('t', () => {\n  userEvent.click(btn);\n});",
				Errors: []ruletest.Error{{
					MessageID: awaitasyncevents.MessageAwaitAsyncEvent,
					Line:      3,
					Column:    3,
					Data:      map[string]string{"name": "click"},
				}},
				Output: userEventImport + "test('t', async () => {\n  await userEvent.click(btn);\n});",
			},
			{
				Name:   "should report session calls",
				Code:   userEventImport + "test('t', async () => {\n  const user = userEvent.setup();\n  user.type(input, 'x');\n});",
				Errors: []ruletest.Error{{MessageID: awaitasyncevents.MessageAwaitAsyncEvent, Line: 4}},
				Output: userEventImport + "test('t', async () => {\n  const user = userEvent.setup();\n  await user.type(input, 'x');\n});",
			},
			{
				Name:    "should report fireEvent when configured",
				Code:    "import { fireEvent } from '@testing-library/vue';\ntest('t', async () => {\n  fireEvent.click(btn);\n});",
				Options: map[string]any{"eventModule": []any{"fireEvent", "userEvent"}},
				Errors:  []ruletest.Error{{MessageID: awaitasyncevents.MessageAwaitAsyncEvent, Line: 3}},
				Output:  "import { fireEvent } from '@testing-library/vue';\ntest('t', async () => {\n  await fireEvent.click(btn);\n});",
			},
			{
				Name:   "should await each unhandled reference",
				Code:   userEventImport + "test('t', async () => {\n  const p = userEvent.type(input, 'x');\n  track(p);\n  log(p);\n});",
				Errors: []ruletest.Error{{MessageID: awaitasyncevents.MessageAwaitAsyncEvent, Line: 4}, {MessageID: awaitasyncevents.MessageAwaitAsyncEvent, Line: 5}},
				Output: userEventImport + "test('t', async () => {\n  const p = userEvent.type(input, 'x');\n  track(await p);\n  log(await p);\n});",
			},
			{
				Name: "should report wrapper calls",
				Code: userEventImport + `function triggerClick() {
  return userEvent.click(btn);
}
test('t', () => {
  triggerClick();
});`,
				Errors: []ruletest.Error{{
					MessageID: awaitasyncevents.MessageAwaitAsyncEventWrapper,
					Line:      6,
					Data:      map[string]string{"name": "triggerClick"},
				}},
				Output: userEventImport + `function triggerClick() {
  return userEvent.click(btn);
}
test('t', async () => {
  await triggerClick();
});`,
			},
		},
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NotNil(t, awaitasyncevents.Rule.ValidateOptions)
	assert.NoError(t, awaitasyncevents.Rule.ValidateOptions(map[string]any{"eventModule": []any{"fireEvent"}}))
	assert.Error(t, awaitasyncevents.Rule.ValidateOptions(map[string]any{"eventModule": "mouseEvent"}))
}
