package nowaitforemptycallback_test

import (
	"testing"

	"github.com/specvital/testinglint/pkg/rules/nowaitforemptycallback"
	"github.com/specvital/testinglint/pkg/rules/ruletest"
)

func TestRule(t *testing.T) {
	t.Parallel()

	ruletest.Run(t, nowaitforemptycallback.Rule, ruletest.Cases{
		Valid: []ruletest.Valid{
			{Name: "should accept callbacks with statements", Code: "waitFor(() => { screen.getByText(/x/) });"},
			{Name: "should accept concise callbacks", Code: "waitFor(() => expect(a).toBe(1));"},
			{Name: "should accept named callbacks", Code: "waitForElementToBeRemoved(check);"},
			{Name: "should ignore other functions", Code: "act(() => {}); run(noop);"},
			{Name: "should ignore then callbacks", Code: "waitFor(() => expect(a)).then(() => {});"},
		},
		Invalid: []ruletest.Invalid{
			{
				Name: "should report empty arrow",
				Code: "waitFor(() => {});",
				Errors: []ruletest.Error{{
					MessageID: nowaitforemptycallback.MessageNoWaitForEmptyCallback,
					Line:      1,
					Column:    15,
					Data:      map[string]string{"methodName": "waitFor"},
				}},
			},
			{
				Name:   "should report noop",
				Code:   "waitFor(noop);",
				Errors: []ruletest.Error{{MessageID: nowaitforemptycallback.MessageNoWaitForEmptyCallback, Column: 9}},
			},
			{
				Name: "should report empty function expression",
				Code: "await screen.waitForElementToBeRemoved(function () {});",
				Errors: []ruletest.Error{{
					MessageID: nowaitforemptycallback.MessageNoWaitForEmptyCallback,
					Data:      map[string]string{"methodName": "waitForElementToBeRemoved"},
				}},
			},
		},
	})
}
