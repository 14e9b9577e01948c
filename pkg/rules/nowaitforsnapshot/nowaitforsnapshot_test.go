package nowaitforsnapshot_test

import (
	"testing"

	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/rules/nowaitforsnapshot"
	"github.com/specvital/testinglint/pkg/rules/ruletest"
)

func TestRule(t *testing.T) {
	t.Parallel()

	ruletest.Run(t, nowaitforsnapshot.Rule, ruletest.Cases{
		Valid: []ruletest.Valid{
			{Name: "should accept snapshots outside wait utils", Code: "test('t', async () => {\n  await waitFor(() => expect(a).toBe(1));\n  expect(container).toMatchSnapshot();\n});"},
			{Name: "should accept snapshots in other callbacks", Code: "act(() => { expect(container).toMatchInlineSnapshot(); });"},
			{
				Name:     "should ignore wait utils from other modules",
				Code:     "import { waitFor } from 'other';\nimport { render } from 'test-utils';\nwaitFor(() => expect(a).toMatchSnapshot());",
				Settings: engine.Settings{UtilsModule: "test-utils"},
			},
		},
		Invalid: []ruletest.Invalid{
			{
				Name: "should report snapshot in waitFor",
				Code: "await waitFor(() => expect(container).toMatchSnapshot());",
				Errors: []ruletest.Error{{
					MessageID: nowaitforsnapshot.MessageNoWaitForSnapshot,
					Line:      1,
					Column:    39,
					Data:      map[string]string{"name": "waitFor"},
				}},
			},
			{
				Name: "should report inline snapshot in nested block",
				Code: "await screen.waitForElementToBeRemoved(() => {\n  if (x) {\n    expect(el).toMatchInlineSnapshot();\n  }\n});",
				Errors: []ruletest.Error{{
					MessageID: nowaitforsnapshot.MessageNoWaitForSnapshot,
					Line:      3,
					Data:      map[string]string{"name": "waitForElementToBeRemoved"},
				}},
			},
		},
	})
}
