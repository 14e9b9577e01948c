package linter_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/specvital/testinglint/pkg/config"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/linter"
	"github.com/specvital/testinglint/pkg/rules"
	_ "github.com/specvital/testinglint/pkg/rules/all"
	"github.com/specvital/testinglint/pkg/source"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const unawaitedQuery = `import { screen } from '@testing-library/react';
test('t', async () => { screen.findByRole('button'); });
`

const awaitedQuery = `import { screen } from '@testing-library/react';
test('t', async () => { await screen.findByRole('button'); });
`

func onlyAsyncQueries() *config.Config {
	return &config.Config{Rules: map[string]config.RuleSetting{
		"await-async-queries": {Severity: domain.SeverityError},
	}}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newSource(t *testing.T, root string) *source.LocalSource {
	t.Helper()
	src, err := source.NewLocalSource(root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func TestLint(t *testing.T) {
	t.Parallel()

	t.Run("should return empty report for empty directory", func(t *testing.T) {
		t.Parallel()

		src := newSource(t, t.TempDir())
		result, err := linter.Lint(context.Background(), src, linter.WithConfig(onlyAsyncQueries()))
		require.NoError(t, err)

		assert.Empty(t, result.Report.Files)
		assert.Empty(t, result.Errors)
		assert.Zero(t, result.Stats.FilesDiscovered)
	})

	t.Run("should lint test files and skip other sources", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "src", "button.test.ts"), unawaitedQuery)
		writeFile(t, filepath.Join(root, "src", "__tests__", "form.ts"), awaitedQuery)
		writeFile(t, filepath.Join(root, "src", "button.ts"), unawaitedQuery)
		writeFile(t, filepath.Join(root, "README.md"), "# readme")

		result, err := linter.Lint(context.Background(), newSource(t, root), linter.WithConfig(onlyAsyncQueries()))
		require.NoError(t, err)

		require.Len(t, result.Report.Files, 2)
		assert.Equal(t, filepath.Join("src", "__tests__", "form.ts"), result.Report.Files[0].Path)
		assert.Empty(t, result.Report.Files[0].Findings)

		button := result.Report.Files[1]
		assert.Equal(t, filepath.Join("src", "button.test.ts"), button.Path)
		assert.Equal(t, domain.LanguageTypeScript, button.Language)
		require.Len(t, button.Findings, 1)
		assert.Equal(t, "await-async-queries", button.Findings[0].Rule)
		assert.Equal(t, 2, button.Findings[0].Location.StartLine)
		assert.NotNil(t, button.Findings[0].Fix)

		assert.Equal(t, 3, result.Stats.FilesDiscovered)
		assert.Equal(t, 2, result.Stats.FilesLinted)
		assert.Equal(t, 1, result.Stats.FilesSkipped)
		assert.Equal(t, 1, result.Report.Count(domain.SeverityError))
	})

	t.Run("should respect exclude patterns", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "custom_exclude", "a.test.ts"), unawaitedQuery)
		writeFile(t, filepath.Join(root, "node_modules", "lib", "b.test.ts"), unawaitedQuery)

		result, err := linter.Lint(context.Background(), newSource(t, root),
			linter.WithConfig(onlyAsyncQueries()),
			linter.WithExcludePatterns([]string{"custom_exclude"}),
		)
		require.NoError(t, err)
		assert.Zero(t, result.Stats.FilesDiscovered)
	})

	t.Run("should filter by glob patterns", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "web", "a.test.ts"), unawaitedQuery)
		writeFile(t, filepath.Join(root, "api", "b.test.ts"), unawaitedQuery)

		result, err := linter.Lint(context.Background(), newSource(t, root),
			linter.WithConfig(onlyAsyncQueries()),
			linter.WithPatterns([]string{"web/**"}),
			linter.WithWorkers(2),
		)
		require.NoError(t, err)
		require.Len(t, result.Report.Files, 1)
		assert.Equal(t, filepath.Join("web", "a.test.ts"), result.Report.Files[0].Path)
	})

	t.Run("should resolve the nearest config file", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "package.json"), "{}")
		writeFile(t, filepath.Join(root, ".testinglintrc.yaml"), "rules:\n  await-async-queries: warn\n")
		writeFile(t, filepath.Join(root, "legacy", ".testinglintrc.json"), `{"rules": {"await-async-queries": "off"}}`)
		writeFile(t, filepath.Join(root, "a.test.ts"), unawaitedQuery)
		writeFile(t, filepath.Join(root, "legacy", "b.test.ts"), unawaitedQuery)

		result, err := linter.Lint(context.Background(), newSource(t, root))
		require.NoError(t, err)

		require.Len(t, result.Report.Files, 2)
		require.Len(t, result.Report.Files[0].Findings, 1)
		assert.Equal(t, domain.SeverityWarn, result.Report.Files[0].Findings[0].Severity)
		assert.Empty(t, result.Report.Files[1].Findings)
	})

	t.Run("should apply include patterns relative to the config file", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "package.json"), "{}")
		writeFile(t, filepath.Join(root, "app", ".testinglintrc.yaml"), "include: ['specs/**/*.ts']\nrules:\n  await-async-queries: error\n")
		writeFile(t, filepath.Join(root, "app", "specs", "login.ts"), unawaitedQuery)
		writeFile(t, filepath.Join(root, "app", "other.test.ts"), unawaitedQuery)

		result, err := linter.Lint(context.Background(), newSource(t, root))
		require.NoError(t, err)

		require.Len(t, result.Report.Files, 1)
		assert.Equal(t, filepath.Join("app", "specs", "login.ts"), result.Report.Files[0].Path)
		assert.Equal(t, 1, result.Stats.FilesSkipped)
	})

	t.Run("should collect config errors per file", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "package.json"), "{}")
		writeFile(t, filepath.Join(root, ".testinglintrc.yaml"), "rules:\n  no-such-rule: error\n")
		writeFile(t, filepath.Join(root, "a.test.ts"), unawaitedQuery)

		result, err := linter.Lint(context.Background(), newSource(t, root))
		require.NoError(t, err)

		require.Len(t, result.Errors, 1)
		assert.Equal(t, linter.PhaseConfig, result.Errors[0].Phase)
		assert.Equal(t, "a.test.ts", result.Errors[0].Path)
		assert.ErrorIs(t, result.Errors[0], config.ErrUnknownRule)
		assert.Equal(t, 1, result.Stats.FilesFailed)
	})

	t.Run("should return ErrLintCancelled for cancelled context", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		writeFile(t, filepath.Join(root, "a.test.ts"), unawaitedQuery)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := linter.Lint(ctx, newSource(t, root), linter.WithConfig(onlyAsyncQueries()))
		assert.ErrorIs(t, err, linter.ErrLintCancelled)
	})
}

func TestLint_Fix(t *testing.T) {
	t.Parallel()

	t.Run("should write fixes back in write mode", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		path := filepath.Join(root, "a.test.ts")
		writeFile(t, path, unawaitedQuery)

		result, err := linter.Lint(context.Background(), newSource(t, root),
			linter.WithConfig(onlyAsyncQueries()),
			linter.WithFix(linter.FixWrite),
		)
		require.NoError(t, err)

		require.Len(t, result.Report.Files, 1)
		assert.Empty(t, result.Report.Files[0].Findings)
		assert.Equal(t, 1, result.Stats.FilesFixed)
		assert.Equal(t, 1, result.Stats.FixesApplied)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, awaitedQuery, string(data))
	})

	t.Run("should leave files untouched in dry run mode", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		path := filepath.Join(root, "a.test.ts")
		writeFile(t, path, unawaitedQuery)

		result, err := linter.Lint(context.Background(), newSource(t, root),
			linter.WithConfig(onlyAsyncQueries()),
			linter.WithFix(linter.FixDryRun),
		)
		require.NoError(t, err)

		require.Len(t, result.Report.Files, 1)
		assert.Equal(t, awaitedQuery, string(result.Report.Files[0].Fixed))
		assert.Equal(t, unawaitedQuery, string(result.Report.Files[0].Source))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, unawaitedQuery, string(data))
	})
}

func TestLintFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "helpers.ts"), unawaitedQuery)

	result, err := linter.New(linter.WithConfig(onlyAsyncQueries())).
		LintFiles(context.Background(), newSource(t, root), []string{"helpers.ts", "missing.test.ts"})
	require.NoError(t, err)

	require.Len(t, result.Report.Files, 1)
	assert.Len(t, result.Report.Files[0].Findings, 1)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, linter.PhaseRead, result.Errors[0].Phase)
	assert.True(t, errors.Is(result.Errors[0], os.ErrNotExist))
}

func TestLintSource(t *testing.T) {
	t.Parallel()

	l := linter.New(linter.WithConfig(onlyAsyncQueries()), linter.WithFix(linter.FixDryRun))

	report, err := l.LintSource(context.Background(), "stdin.test.ts", []byte(unawaitedQuery))
	require.NoError(t, err)
	assert.Empty(t, report.Findings)
	assert.Equal(t, awaitedQuery, string(report.Fixed))

	_, err = l.LintSource(context.Background(), "notes.txt", []byte("x"))
	var fileErr linter.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, linter.PhaseParse, fileErr.Phase)
}

func TestLint_RulePanic(t *testing.T) {
	t.Parallel()

	reg := rules.NewRegistry()
	reg.Register(&engine.Rule{
		Name:     "explodes",
		Messages: map[string]string{"boom": "boom"},
		Meta:     engine.Meta{Description: "panics on every program"},
		Create: func(*engine.Context) engine.Handlers {
			return engine.Handlers{"program": func(*sitter.Node) { panic("boom") }}
		},
	})

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.test.ts"), awaitedQuery)
	writeFile(t, filepath.Join(root, "b.test.ts"), awaitedQuery)

	result, err := linter.Lint(context.Background(), newSource(t, root),
		linter.WithRegistry(reg),
		linter.WithConfig(&config.Config{Extends: []string{config.PresetAll}}),
	)
	require.NoError(t, err)

	require.Len(t, result.Errors, 2)
	for _, fileErr := range result.Errors {
		assert.Equal(t, linter.PhaseLint, fileErr.Phase)
		assert.ErrorIs(t, fileErr, engine.ErrRulePanic)
	}
}

func TestIsTestFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{path: "src/button.test.tsx", want: true},
		{path: "src/button.spec.js", want: true},
		{path: "cypress/e2e/login.cy.ts", want: true},
		{path: "src/__tests__/form.ts", want: true},
		{path: "__tests__/form.js", want: true},
		{path: "src/__tests__/__fixtures__/data.ts", want: false},
		{path: "src/__mocks__/api.ts", want: false},
		{path: "src/button.tsx", want: false},
		{path: "src/button.test.py", want: false},
	}

	for _, tt := range tests {
		t.Run("should classify "+tt.path, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, linter.IsTestFile(tt.path))
		})
	}
}
