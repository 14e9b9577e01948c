package preferpresencequeries_test

import (
	"testing"

	"github.com/specvital/testinglint/pkg/rules/preferpresencequeries"
	"github.com/specvital/testinglint/pkg/rules/ruletest"
)

func TestRule(t *testing.T) {
	t.Parallel()

	ruletest.Run(t, preferpresencequeries.Rule, ruletest.Cases{
		Valid: []ruletest.Valid{
			{Name: "should accept getBy for presence", Code: "expect(getByRole('button')).toBeInTheDocument();"},
			{Name: "should accept queryBy for absence", Code: "expect(screen.queryByRole('button')).not.toBeInTheDocument();"},
			{Name: "should accept queryBy with absence matcher", Code: "expect(queryAllByText('x')).toBeNull();"},
			{Name: "should accept negated absence matcher with getBy", Code: "expect(getByText('x')).not.toBeNull();"},
			{Name: "should ignore other matchers", Code: "expect(queryByRole('button')).toHaveClass('x');"},
			{Name: "should ignore async queries", Code: "expect(await findByRole('button')).toBeInTheDocument();"},
			{Name: "should ignore queries outside expect", Code: "const el = queryByRole('button');"},
			{Name: "should accept within with getBy", Code: "expect(within(getByRole('list')).queryByText('x')).toBeNull();"},
			{
				Name:    "should skip presence when disabled",
				Code:    "expect(queryByRole('button')).toBeInTheDocument();",
				Options: map[string]any{"presence": false},
			},
			{
				Name:    "should skip absence when disabled",
				Code:    "expect(getByRole('button')).not.toBeInTheDocument();",
				Options: map[string]any{"absence": false},
			},
		},
		Invalid: []ruletest.Invalid{
			{
				Name:   "should report queryBy used for presence",
				Code:   "expect(queryByRole('button')).toBeInTheDocument();",
				Errors: []ruletest.Error{{MessageID: preferpresencequeries.MessageWrongPresenceQuery, Line: 1, Column: 8}},
			},
			{
				Name:   "should report getBy used for absence",
				Code:   "expect(getByRole('button')).not.toBeInTheDocument();",
				Errors: []ruletest.Error{{MessageID: preferpresencequeries.MessageWrongAbsenceQuery, Line: 1, Column: 8}},
			},
			{
				Name:   "should report screen getBy with absence matcher",
				Code:   "expect(screen.getAllByText('x')).toBeFalsy();",
				Errors: []ruletest.Error{{MessageID: preferpresencequeries.MessageWrongAbsenceQuery, Column: 15}},
			},
			{
				Name:   "should report queryBy inside within",
				Code:   "expect(within(queryByRole('list')).queryByText('x')).toBeNull();",
				Errors: []ruletest.Error{{MessageID: preferpresencequeries.MessageWrongPresenceQuery, Column: 15}},
			},
		},
	})
}
