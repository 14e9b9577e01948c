//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specvital/testinglint/pkg/linter"
)

const maxSampleFiles = 20

// Snapshot is the golden summary of linting one repository.
type Snapshot struct {
	FilesLinted int            `json:"filesLinted"`
	Framework   string         `json:"framework"`
	Ref         string         `json:"ref"`
	Repository  string         `json:"repository"`
	RuleCounts  map[string]int `json:"ruleCounts"`
	SampleFiles []SnapshotFile `json:"sampleFiles"`
}

// SnapshotFile is the finding count of one file with findings.
type SnapshotFile struct {
	Findings int    `json:"findings"`
	Path     string `json:"path"`
}

// SnapshotFromResult summarizes a lint result.
func SnapshotFromResult(repo Repository, result *linter.Result) *Snapshot {
	snapshot := &Snapshot{
		FilesLinted: result.Stats.FilesLinted,
		Framework:   repo.Framework,
		Ref:         repo.Ref,
		Repository:  repo.Name,
		RuleCounts:  make(map[string]int),
	}
	for _, file := range result.Report.Files {
		for _, f := range file.Findings {
			snapshot.RuleCounts[f.Rule]++
		}
		if len(file.Findings) > 0 && len(snapshot.SampleFiles) < maxSampleFiles {
			snapshot.SampleFiles = append(snapshot.SampleFiles, SnapshotFile{Findings: len(file.Findings), Path: file.Path})
		}
	}
	return snapshot
}

// SaveSnapshot writes snapshot to testdata/golden.
func SaveSnapshot(snapshot *Snapshot) error {
	path, err := snapshotPath(snapshot.Repository, snapshot.Ref)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create golden dir: %w", err)
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the golden snapshot of a repository.
func LoadSnapshot(repoName, ref string) (*Snapshot, error) {
	path, err := snapshotPath(repoName, ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot not found: %s (run with -update to create)", path)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

// CountDiff is an expected and an actual count.
type CountDiff struct {
	Actual   int
	Expected int
}

// SnapshotDiff lists what changed between two snapshots.
type SnapshotDiff struct {
	FilesLinted CountDiff
	Rules       map[string]CountDiff
}

// IsEmpty reports whether the snapshots agree.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.FilesLinted.Actual == d.FilesLinted.Expected && len(d.Rules) == 0
}

func (d *SnapshotDiff) String() string {
	if d.IsEmpty() {
		return "no differences"
	}

	var sb strings.Builder
	if d.FilesLinted.Actual != d.FilesLinted.Expected {
		fmt.Fprintf(&sb, "  files linted: expected %d, got %d\n", d.FilesLinted.Expected, d.FilesLinted.Actual)
	}
	rules := make([]string, 0, len(d.Rules))
	for rule := range d.Rules {
		rules = append(rules, rule)
	}
	sort.Strings(rules)
	for _, rule := range rules {
		fmt.Fprintf(&sb, "  %s: expected %d, got %d\n", rule, d.Rules[rule].Expected, d.Rules[rule].Actual)
	}
	return sb.String()
}

// CompareSnapshots diffs the file and per-rule finding counts.
func CompareSnapshots(expected, actual *Snapshot) *SnapshotDiff {
	diff := &SnapshotDiff{
		FilesLinted: CountDiff{Actual: actual.FilesLinted, Expected: expected.FilesLinted},
		Rules:       make(map[string]CountDiff),
	}
	for rule, want := range expected.RuleCounts {
		if got := actual.RuleCounts[rule]; got != want {
			diff.Rules[rule] = CountDiff{Actual: got, Expected: want}
		}
	}
	for rule, got := range actual.RuleCounts {
		if _, ok := expected.RuleCounts[rule]; !ok {
			diff.Rules[rule] = CountDiff{Actual: got}
		}
	}
	return diff
}

func snapshotPath(repoName, ref string) (string, error) {
	dataDir, err := testDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "golden", safeName(repoName, ref)+".json"), nil
}
