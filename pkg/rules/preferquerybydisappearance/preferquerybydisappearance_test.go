package preferquerybydisappearance_test

import (
	"testing"

	"github.com/specvital/testinglint/pkg/rules/preferquerybydisappearance"
	"github.com/specvital/testinglint/pkg/rules/ruletest"
)

func TestRule(t *testing.T) {
	t.Parallel()

	ruletest.Run(t, preferquerybydisappearance.Rule, ruletest.Cases{
		Valid: []ruletest.Valid{
			{Name: "should accept queryBy callbacks", Code: "await waitForElementToBeRemoved(() => screen.queryByText('x'));"},
			{Name: "should accept queryBy results", Code: "await waitForElementToBeRemoved(queryByText('x'));"},
			{Name: "should accept returned queryBy", Code: "await waitForElementToBeRemoved(function () { return queryAllByRole('row'); });"},
			{Name: "should accept elements", Code: "await waitForElementToBeRemoved(el);"},
			{Name: "should ignore other utils", Code: "await waitFor(() => screen.getByText('x'));"},
		},
		Invalid: []ruletest.Invalid{
			{
				Name:   "should report getBy in an implicit return",
				Code:   "await waitForElementToBeRemoved(() => screen.getByText('x'));",
				Errors: []ruletest.Error{{MessageID: preferquerybydisappearance.MessagePreferQueryByDisappearance, Line: 1, Column: 33}},
			},
			{
				Name:   "should report findBy results",
				Code:   "await waitForElementToBeRemoved(screen.findByText('x'));",
				Errors: []ruletest.Error{{MessageID: preferquerybydisappearance.MessagePreferQueryByDisappearance, Line: 1, Column: 33}},
			},
			{
				Name:   "should report returned getBy in function expressions",
				Code:   "await waitForElementToBeRemoved(function () {\n  return getByText('x');\n});",
				Errors: []ruletest.Error{{MessageID: preferquerybydisappearance.MessagePreferQueryByDisappearance, Line: 1}},
			},
			{
				Name:   "should report getBy statements in block callbacks",
				Code:   "await waitForElementToBeRemoved(() => {\n  screen.getAllByRole('row');\n});",
				Errors: []ruletest.Error{{MessageID: preferquerybydisappearance.MessagePreferQueryByDisappearance, Line: 1}},
			},
		},
	})
}
