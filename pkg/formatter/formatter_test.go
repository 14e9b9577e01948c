package formatter_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/formatter"
)

func sampleReport() domain.Report {
	return domain.Report{
		RootPath: "/repo",
		Files: []domain.FileReport{
			{Path: "src/clean.test.ts"},
			{
				Path: "src/button.test.tsx",
				Findings: []domain.Finding{
					{
						Fix:       &domain.Fix{Edits: []domain.TextEdit{{Start: 10, End: 10, Text: "await "}}},
						Location:  domain.Location{File: "src/button.test.tsx", StartLine: 2, StartCol: 24, EndLine: 2, EndCol: 34},
						Message:   "findByRole query not handled",
						MessageID: "awaitAsyncQuery",
						Rule:      "await-async-queries",
						Severity:  domain.SeverityError,
					},
					{
						Location:  domain.Location{File: "src/button.test.tsx", StartLine: 12, StartCol: 2, EndLine: 12, EndCol: 9},
						Message:   "Unexpected debug statement",
						MessageID: "noDebug",
						Rule:      "no-debugging-utils",
						Severity:  domain.SeverityWarn,
					},
				},
			},
		},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, name := range formatter.Names() {
		f, err := formatter.New(name, formatter.Options{})
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := formatter.New("checkstyle", formatter.Options{})
	assert.ErrorIs(t, err, formatter.ErrUnknownFormat)
}

func TestStylish(t *testing.T) {
	t.Parallel()

	t.Run("should align findings and summarize", func(t *testing.T) {
		t.Parallel()

		f, err := formatter.New("stylish", formatter.Options{})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, f.Format(&buf, sampleReport()))

		expected := strings.Join([]string{
			"src/button.test.tsx",
			"  2:25  error  findByRole query not handled  await-async-queries",
			"  12:3  warn   Unexpected debug statement    no-debugging-utils",
			"",
			"✖ 2 problems (1 error, 1 warning)",
			"  1 error and 0 warnings potentially fixable with the `--fix` option.",
			"",
		}, "\n")
		assert.Equal(t, expected, buf.String())
	})

	t.Run("should print nothing for clean reports", func(t *testing.T) {
		t.Parallel()

		f, err := formatter.New("stylish", formatter.Options{Color: true})
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, f.Format(&buf, domain.Report{Files: []domain.FileReport{{Path: "a.test.ts"}}}))
		assert.Empty(t, buf.String())
	})
}

func TestCompact(t *testing.T) {
	t.Parallel()

	f, err := formatter.New("compact", formatter.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleReport()))
	assert.Equal(t,
		"src/button.test.tsx:2:25: error findByRole query not handled (await-async-queries)\n"+
			"src/button.test.tsx:12:3: warn Unexpected debug statement (no-debugging-utils)\n",
		buf.String())
}

func TestJSON(t *testing.T) {
	t.Parallel()

	f, err := formatter.New("json", formatter.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleReport()))

	var files []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &files))
	require.Len(t, files, 2)

	assert.Equal(t, "src/clean.test.ts", files[0]["filePath"])
	assert.Empty(t, files[0]["messages"])

	button := files[1]
	assert.EqualValues(t, 1, button["errorCount"])
	assert.EqualValues(t, 1, button["warningCount"])
	assert.EqualValues(t, 1, button["fixableErrorCount"])
	assert.NotContains(t, button, "output")

	messages := button["messages"].([]any)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "await-async-queries", first["ruleId"])
	assert.EqualValues(t, 2, first["severity"])
	assert.EqualValues(t, 25, first["column"])
	assert.Contains(t, first, "fix")
}

func TestUnifiedDiff(t *testing.T) {
	t.Parallel()

	t.Run("should render a unified diff", func(t *testing.T) {
		t.Parallel()

		diff, err := formatter.UnifiedDiff("a.test.ts", []byte("one\ntwo\n"), []byte("one\n2\n"))
		require.NoError(t, err)
		assert.Equal(t, "--- a/a.test.ts\n+++ b/a.test.ts\n@@ -1,2 +1,2 @@\n one\n-two\n+2\n", diff)
	})

	t.Run("should mark a missing final newline", func(t *testing.T) {
		t.Parallel()

		diff, err := formatter.UnifiedDiff("a.test.ts", []byte("one\ntwo"), []byte("one\n2"))
		require.NoError(t, err)
		assert.Equal(t, "--- a/a.test.ts\n+++ b/a.test.ts\n@@ -1,2 +1,2 @@\n one\n"+
			"-two\n\\ No newline at end of file\n"+
			"+2\n\\ No newline at end of file\n", diff)
	})

	t.Run("should show an added final newline", func(t *testing.T) {
		t.Parallel()

		diff, err := formatter.UnifiedDiff("a.test.ts", []byte("one"), []byte("one\n"))
		require.NoError(t, err)
		assert.Equal(t, "--- a/a.test.ts\n+++ b/a.test.ts\n@@ -1 +1 @@\n"+
			"-one\n\\ No newline at end of file\n+one\n", diff)
	})

	t.Run("should return nothing for identical sources", func(t *testing.T) {
		t.Parallel()

		diff, err := formatter.UnifiedDiff("a.test.ts", []byte("same\n"), []byte("same\n"))
		require.NoError(t, err)
		assert.Empty(t, diff)
	})
}

func TestWriteDiffs(t *testing.T) {
	t.Parallel()

	report := domain.Report{Files: []domain.FileReport{
		{Path: "a.test.ts", Source: []byte("x\n")},
		{Path: "b.test.ts", Source: []byte("findByRole()\n"), Fixed: []byte("await findByRole()\n")},
	}}

	var buf bytes.Buffer
	require.NoError(t, formatter.WriteDiffs(&buf, report, formatter.Options{}))

	out := buf.String()
	assert.NotContains(t, out, "a.test.ts")
	assert.Contains(t, out, "-findByRole()\n+await findByRole()\n")
}
