//go:build integration

package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareSnapshots(t *testing.T) {
	t.Parallel()

	base := &Snapshot{FilesLinted: 10, RuleCounts: map[string]int{"await-async-queries": 2}}

	tests := []struct {
		name   string
		actual *Snapshot
		want   map[string]CountDiff
		empty  bool
	}{
		{
			name:   "should be empty for equal snapshots",
			actual: &Snapshot{FilesLinted: 10, RuleCounts: map[string]int{"await-async-queries": 2}},
			want:   map[string]CountDiff{},
			empty:  true,
		},
		{
			name:   "should report changed rule counts",
			actual: &Snapshot{FilesLinted: 10, RuleCounts: map[string]int{"await-async-queries": 3}},
			want:   map[string]CountDiff{"await-async-queries": {Actual: 3, Expected: 2}},
		},
		{
			name:   "should report new and vanished rules",
			actual: &Snapshot{FilesLinted: 10, RuleCounts: map[string]int{"no-node-access": 1}},
			want: map[string]CountDiff{
				"await-async-queries": {Expected: 2},
				"no-node-access":      {Actual: 1},
			},
		},
		{
			name:   "should report file count changes",
			actual: &Snapshot{FilesLinted: 11, RuleCounts: map[string]int{"await-async-queries": 2}},
			want:   map[string]CountDiff{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			diff := CompareSnapshots(base, tt.actual)
			assert.Equal(t, tt.want, diff.Rules)
			assert.Equal(t, tt.empty, diff.IsEmpty())
			if tt.empty {
				assert.Equal(t, "no differences", diff.String())
			}
		})
	}
}

func TestSnapshotDiff_String(t *testing.T) {
	t.Parallel()

	diff := &SnapshotDiff{
		FilesLinted: CountDiff{Actual: 4, Expected: 3},
		Rules: map[string]CountDiff{
			"prefer-screen-queries": {Actual: 1},
			"await-async-queries":   {Actual: 2, Expected: 5},
		},
	}

	want := "  files linted: expected 3, got 4\n" +
		"  await-async-queries: expected 5, got 2\n" +
		"  prefer-screen-queries: expected 0, got 1\n"
	assert.Equal(t, want, diff.String())
}
