package nonodeaccess_test

import (
	"testing"

	"github.com/specvital/testinglint/pkg/rules/nonodeaccess"
	"github.com/specvital/testinglint/pkg/rules/ruletest"
)

const reactImport = "import { render, screen } from '@testing-library/react';\n"

func TestRule(t *testing.T) {
	t.Parallel()

	ruletest.Run(t, nonodeaccess.Rule, ruletest.Cases{
		Valid: []ruletest.Valid{
			{Name: "should ignore files without the library", Code: "const el = screen.getByText('x').firstChild;"},
			{Name: "should accept assertions", Code: reactImport + "const button = screen.getByRole('button');\nexpect(button).toHaveTextContent('x');"},
			{
				Name:    "should allow container first child when enabled",
				Code:    reactImport + "const { container } = render(<C />);\nconst first = container.firstChild;",
				Options: map[string]any{"allowContainerFirstChild": true},
			},
			{Name: "should ignore component props", Code: reactImport + "const child = props.children;"},
			{
				Name: "should accept user-event calls",
				Code: "import userEvent from '@testing-library/user-event';\n" + reactImport +
					"const user = userEvent.setup();\nawait user.click(screen.getByRole('button'));\nuserEvent.click(el);",
			},
		},
		Invalid: []ruletest.Invalid{
			{
				Name:   "should report traversal methods on query results",
				Code:   reactImport + "const el = screen.getByText('x').closest('div');",
				Errors: []ruletest.Error{{MessageID: nonodeaccess.MessageNoNodeAccess, Line: 2, Column: 34}},
			},
			{
				Name: "should report each access of a chain",
				Code: reactImport + "const { container } = render(<C />);\ncontainer.firstChild.querySelector('a');",
				Errors: []ruletest.Error{
					{MessageID: nonodeaccess.MessageNoNodeAccess, Line: 3, Column: 11},
					{MessageID: nonodeaccess.MessageNoNodeAccess, Line: 3, Column: 22},
				},
			},
			{
				Name:   "should report event methods on nodes",
				Code:   reactImport + "const button = screen.getByRole('button');\nbutton.click();",
				Errors: []ruletest.Error{{MessageID: nonodeaccess.MessageNoNodeAccess, Line: 3, Column: 8}},
			},
			{
				Name:   "should report access nested in test callbacks once",
				Code:   reactImport + "it('x', () => {\n  const parent = screen.getByText('x').parentElement;\n});",
				Errors: []ruletest.Error{{MessageID: nonodeaccess.MessageNoNodeAccess, Line: 3}},
			},
		},
	})
}
