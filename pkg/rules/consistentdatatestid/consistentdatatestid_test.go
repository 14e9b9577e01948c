package consistentdatatestid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/specvital/testinglint/pkg/rules/consistentdatatestid"
	"github.com/specvital/testinglint/pkg/rules/ruletest"
)

func TestFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "plain file", path: "src/Button.test.tsx", want: "Button"},
		{name: "index file uses the directory", path: "src/components/Modal/index.tsx", want: "Modal"},
		{name: "dynamic route", path: "pages/[id].tsx", want: ""},
		{name: "bare name", path: "Card.jsx", want: "Card"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, consistentdatatestid.FileName(tt.path))
		})
	}
}

func TestRule(t *testing.T) {
	t.Parallel()

	pattern := map[string]any{"testIdPattern": "^{fileName}(__([A-Z]+[a-z]*?)+)*$"}

	ruletest.Run(t, consistentdatatestid.Rule, ruletest.Cases{
		Valid: []ruletest.Valid{
			{Name: "should not report without a pattern", Code: "const a = <div data-testid=\"anything\" />;"},
			{Name: "should not report with an invalid pattern", Code: "const a = <div data-testid=\"x\" />;", Options: map[string]any{"testIdPattern": "(["}},
			{Name: "should accept matching values", Code: "const a = <div data-testid=\"Awesome__CoolStuff\" />;", Filename: "src/Awesome.tsx", Options: pattern},
			{Name: "should ignore other attributes", Code: "const a = <div className=\"x\" />;", Options: pattern},
			{Name: "should ignore expression values", Code: "const a = <div data-testid={id} />;", Options: pattern},
			{
				Name:     "should use the directory of index files",
				Code:     "const a = <div data-testid=\"Modal__Body\" />;",
				Filename: "src/Modal/index.tsx",
				Options:  pattern,
			},
		},
		Invalid: []ruletest.Invalid{
			{
				Name:     "should report values not matching the pattern",
				Code:     "const a = <div data-testid=\"Nope\" />;",
				Filename: "src/Awesome.tsx",
				Options:  pattern,
				Errors: []ruletest.Error{{
					MessageID: consistentdatatestid.MessageConsistentDataTestID,
					Line:      1,
					Column:    16,
					Data: map[string]string{
						"attr":  "data-testid",
						"regex": "/^Awesome(__([A-Z]+[a-z]*?)+)*$/",
						"value": "Nope",
					},
				}},
			},
			{
				Name: "should check every configured attribute",
				Code: "const a = <div data-test-id=\"one\" data-testid=\"two\" />;",
				Options: map[string]any{
					"testIdAttribute": []any{"data-test-id", "data-testid"},
					"testIdPattern":   "^[A-Z]",
				},
				Errors: []ruletest.Error{
					{MessageID: consistentdatatestid.MessageConsistentDataTestID, Column: 16},
					{MessageID: consistentdatatestid.MessageConsistentDataTestID, Column: 35},
				},
			},
			{
				Name:    "should use the custom message",
				Code:    "const a = <div data-testid=\"bad\" />;",
				Options: map[string]any{"testIdPattern": "^good$", "customMessage": "use kebab ids"},
				Errors: []ruletest.Error{{
					MessageID: consistentdatatestid.MessageConsistentDataTestIDCustomMessage,
					Data:      map[string]string{"message": "use kebab ids"},
				}},
			},
		},
	})
}
