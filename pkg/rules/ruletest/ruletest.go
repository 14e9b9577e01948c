// Package ruletest runs a rule against valid and invalid code samples.
package ruletest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/fixer"
	"github.com/specvital/testinglint/pkg/parser"
)

// DefaultFilename is used when a case names no file. The TSX grammar
// accepts both type annotations and JSX.
const DefaultFilename = "component.test.tsx"

// Valid is code the rule must not report.
type Valid struct {
	Code     string
	Filename string
	Name     string
	Options  any
	Settings engine.Settings
}

// Error is one expected finding. Zero Line and Column are not checked;
// Column is 1-based.
type Error struct {
	Column    int
	Data      map[string]string
	Line      int
	MessageID string
}

// Invalid is code the rule must report exactly Errors for.
type Invalid struct {
	Code     string
	Errors   []Error
	Filename string
	Name     string
	Options  any
	// Output is the code after fixes are applied until none applies. Empty
	// means the code must stay unchanged.
	Output   string
	Settings engine.Settings
}

// Cases groups the samples of one rule.
type Cases struct {
	Invalid []Invalid
	Valid   []Valid
}

// Lint runs rule on code and returns its findings.
func Lint(t *testing.T, rule *engine.Rule, filename, code string, options any, settings engine.Settings) []domain.Finding {
	t.Helper()
	findings, err := lint(rule, filename, []byte(code), options, settings)
	require.NoError(t, err)
	return findings
}

func lint(rule *engine.Rule, filename string, code []byte, options any, settings engine.Settings) ([]domain.Finding, error) {
	if filename == "" {
		filename = DefaultFilename
	}
	file, err := parser.ParseFile(context.Background(), filename, code)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := engine.RuleConfig{Options: options, Rule: rule, Severity: domain.SeverityError}
	return engine.Run(file, []engine.RuleConfig{cfg}, settings)
}

// Run checks every case as a parallel subtest.
func Run(t *testing.T, rule *engine.Rule, cases Cases) {
	t.Helper()

	for i, tc := range cases.Valid {
		name := tc.Name
		if name == "" {
			name = fmt.Sprintf("valid #%d", i)
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			findings := Lint(t, rule, tc.Filename, tc.Code, tc.Options, tc.Settings)
			assert.Empty(t, findings, "code:\n%s", tc.Code)
		})
	}

	for i, tc := range cases.Invalid {
		name := tc.Name
		if name == "" {
			name = fmt.Sprintf("invalid #%d", i)
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			findings := Lint(t, rule, tc.Filename, tc.Code, tc.Options, tc.Settings)
			require.Len(t, findings, len(tc.Errors), "code:\n%s\nfindings: %+v", tc.Code, findings)
			for j, want := range tc.Errors {
				got := findings[j]
				assert.Equal(t, want.MessageID, got.MessageID, "error #%d", j)
				if want.Line != 0 {
					assert.Equal(t, want.Line, got.Location.StartLine, "error #%d line", j)
				}
				if want.Column != 0 {
					assert.Equal(t, want.Column, got.Location.StartCol+1, "error #%d column", j)
				}
				if want.Data != nil {
					expected := formatExpected(rule, want)
					assert.Equal(t, expected, got.Message, "error #%d message", j)
				}
			}

			output := tc.Output
			if output == "" {
				output = tc.Code
			}
			res, err := fixer.Fix([]byte(tc.Code), func(src []byte) ([]domain.Finding, error) {
				return lint(rule, tc.Filename, src, tc.Options, tc.Settings)
			})
			require.NoError(t, err)
			assert.Equal(t, output, string(res.Output))
		})
	}
}

// formatExpected renders the message of want through a throwaway report,
// so placeholder handling stays in one place.
func formatExpected(rule *engine.Rule, want Error) string {
	file, err := parser.ParseSource(context.Background(), DefaultFilename, domain.LanguageTSX, []byte("x"))
	if err != nil {
		return ""
	}
	defer file.Close()

	ctx := engine.NewContext(file, engine.RuleConfig{Rule: rule, Severity: domain.SeverityError}, engine.Settings{})
	ctx.Report(engine.Descriptor{Node: file.Root(), MessageID: want.MessageID, Data: want.Data})
	return ctx.Findings()[0].Message
}
