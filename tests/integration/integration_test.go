//go:build integration

package integration

import (
	"context"
	"errors"
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/linter"
	_ "github.com/specvital/testinglint/pkg/rules/all"
	"github.com/specvital/testinglint/pkg/source"
)

const lintTimeout = 10 * time.Minute

var update = flag.Bool("update", false, "rewrite golden snapshots")

func TestRepositories(t *testing.T) {
	repos, err := LoadRepos()
	require.NoError(t, err, "load repos.yaml")

	for _, repo := range repos.Repositories {
		t.Run(repo.Name, func(t *testing.T) {
			t.Parallel()

			clone, err := CloneRepo(repo)
			require.NoError(t, err)
			t.Logf("repository at %s (cached: %v)", clone.Path, clone.FromCache)

			src, err := source.NewLocalSource(clone.Path)
			require.NoError(t, err)
			defer src.Close()

			ctx, cancel := context.WithTimeout(context.Background(), lintTimeout)
			defer cancel()

			result, err := linter.Lint(ctx, src, linter.WithConfig(repo.Config()))
			require.NoError(t, err)
			t.Logf("lint stats: discovered=%d, linted=%d, failed=%d, duration=%v",
				result.Stats.FilesDiscovered, result.Stats.FilesLinted, result.Stats.FilesFailed, result.Stats.Duration)

			for _, fileErr := range result.Errors {
				assert.False(t, errors.Is(fileErr, engine.ErrRulePanic), "rule panicked: %v", fileErr)
			}
			assert.NotZero(t, result.Stats.FilesLinted, "expected test files in %s", repo.Name)

			actual := SnapshotFromResult(repo, result)
			if *update {
				require.NoError(t, SaveSnapshot(actual))
				return
			}
			expected, err := LoadSnapshot(repo.Name, repo.Ref)
			require.NoError(t, err)
			if diff := CompareSnapshots(expected, actual); !diff.IsEmpty() {
				t.Errorf("snapshot mismatch for %s:\n%s", repo.Name, diff)
			}
		})
	}
}
