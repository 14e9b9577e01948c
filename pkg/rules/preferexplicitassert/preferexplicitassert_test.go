package preferexplicitassert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/specvital/testinglint/pkg/rules/preferexplicitassert"
	"github.com/specvital/testinglint/pkg/rules/ruletest"
)

func TestRule(t *testing.T) {
	t.Parallel()

	withAssertion := map[string]any{"assertion": "toBeInTheDocument"}

	ruletest.Run(t, preferexplicitassert.Rule, ruletest.Cases{
		Valid: []ruletest.Valid{
			{Name: "should accept asserted queries", Code: "expect(getByText('x')).toBeInTheDocument();"},
			{Name: "should accept stored queries", Code: "const el = getByText('x');\nconst other = await screen.findByText('y');"},
			{Name: "should accept bare findBy when disabled", Code: "await findByText('x');", Options: map[string]any{"includeFindQueries": false}},
			{Name: "should ignore queryBy", Code: "queryByText('x');"},
			{Name: "should accept the configured matcher", Code: "expect(getByText('x')).toBeInTheDocument();", Options: withAssertion},
			{Name: "should not enforce unrelated matchers", Code: "expect(getByText('x')).toHaveClass('a');", Options: withAssertion},
		},
		Invalid: []ruletest.Invalid{
			{
				Name: "should report bare getBy calls",
				Code: "getByText('x');\nscreen.getByRole('button');",
				Errors: []ruletest.Error{
					{MessageID: preferexplicitassert.MessagePreferExplicitAssert, Line: 1, Column: 1, Data: map[string]string{"queryType": "getBy*"}},
					{MessageID: preferexplicitassert.MessagePreferExplicitAssert, Line: 2, Column: 8},
				},
			},
			{
				Name:   "should report awaited bare findBy calls",
				Code:   "await screen.findByText('x');",
				Errors: []ruletest.Error{{MessageID: preferexplicitassert.MessagePreferExplicitAssert, Column: 14, Data: map[string]string{"queryType": "findBy*"}}},
			},
			{
				Name:    "should report other presence matchers",
				Code:    "expect(getByText('x')).toBeTruthy();",
				Options: withAssertion,
				Errors: []ruletest.Error{{
					MessageID: preferexplicitassert.MessagePreferExplicitAssertAssertion,
					Column:    24,
					Data:      map[string]string{"assertion": "toBeInTheDocument"},
				}},
			},
			{
				Name:    "should report negated absence matchers",
				Code:    "expect(getByText('x')).not.toBeNull();",
				Options: withAssertion,
				Errors:  []ruletest.Error{{MessageID: preferexplicitassert.MessagePreferExplicitAssertAssertion, Column: 28}},
			},
		},
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, preferexplicitassert.Rule.ValidateOptions(map[string]any{"assertion": "toBeNull"}))
	assert.Error(t, preferexplicitassert.Rule.ValidateOptions(map[string]any{"assertion": "toBeAwesome"}))
}
