package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		want   Language
		wantOK bool
	}{
		{name: "javascript", path: "src/a.test.js", want: LanguageJavaScript, wantOK: true},
		{name: "jsx uses javascript grammar", path: "a.spec.jsx", want: LanguageJavaScript, wantOK: true},
		{name: "module javascript", path: "a.mjs", want: LanguageJavaScript, wantOK: true},
		{name: "typescript", path: "a.test.ts", want: LanguageTypeScript, wantOK: true},
		{name: "tsx", path: "Button.test.TSX", want: LanguageTSX, wantOK: true},
		{name: "unsupported", path: "main.go", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := LanguageFromPath(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]Severity{
		"off":     SeverityOff,
		"0":       SeverityOff,
		"warn":    SeverityWarn,
		"warning": SeverityWarn,
		"1":       SeverityWarn,
		"ERROR":   SeverityError,
		" 2 ":     SeverityError,
	} {
		got, err := ParseSeverity(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseSeverity("fatal")
	assert.Error(t, err)
}

func TestSeverity_TextRoundTrip(t *testing.T) {
	t.Parallel()

	text, err := SeverityWarn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warn", string(text))

	var s Severity
	require.NoError(t, s.UnmarshalText([]byte("error")))
	assert.Equal(t, SeverityError, s)
}

func TestFix_Range(t *testing.T) {
	t.Parallel()

	fix := &Fix{Edits: []TextEdit{
		{Start: 10, End: 10, Text: "await "},
		{Start: 2, End: 2, Text: "async "},
		{Start: 30, End: 40},
	}}

	start, end := fix.Range()
	assert.Equal(t, 2, start)
	assert.Equal(t, 40, end)

	var nilFix *Fix
	start, end = nilFix.Range()
	assert.Zero(t, start)
	assert.Zero(t, end)
}

func TestReport_Count(t *testing.T) {
	t.Parallel()

	report := Report{Files: []FileReport{
		{Path: "a.test.js", Findings: []Finding{{Severity: SeverityError}, {Severity: SeverityWarn}}},
		{Path: "b.test.js"},
		{Path: "c.test.js", Findings: []Finding{{Severity: SeverityError}}},
	}}

	assert.Equal(t, 2, report.Count(SeverityError))
	assert.Equal(t, 1, report.Count(SeverityWarn))
	assert.Len(t, report.FilesWithFindings(), 2)
}

func TestFileReport_SortFindings(t *testing.T) {
	t.Parallel()

	f := FileReport{Findings: []Finding{
		{Rule: "b", Location: Location{StartLine: 2, StartCol: 0}},
		{Rule: "z", Location: Location{StartLine: 1, StartCol: 4}},
		{Rule: "a", Location: Location{StartLine: 1, StartCol: 4}},
	}}
	f.SortFindings()

	assert.Equal(t, "a", f.Findings[0].Rule)
	assert.Equal(t, "z", f.Findings[1].Rule)
	assert.Equal(t, "b", f.Findings[2].Rule)
}
