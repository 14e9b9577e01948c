//go:build integration

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
)

const cloneCompleteMarker = ".clone_complete"

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// CloneResult is where a repository was checked out.
type CloneResult struct {
	FromCache bool
	Path      string
}

// CloneRepo shallow-clones repo into testdata/cache, reusing a previous
// complete clone.
func CloneRepo(repo Repository) (*CloneResult, error) {
	dataDir, err := testDataDir()
	if err != nil {
		return nil, err
	}
	cacheDir := filepath.Join(dataDir, "cache")
	repoDir := filepath.Join(cacheDir, safeName(repo.Name, repo.Ref))
	marker := filepath.Join(repoDir, cloneCompleteMarker)

	if _, err := os.Stat(marker); err == nil {
		return &CloneResult{FromCache: true, Path: repoDir}, nil
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	_ = os.RemoveAll(repoDir)
	cmd := exec.Command("git", "clone", "--depth=1", "--branch="+repo.Ref, "--single-branch", repo.URL, repoDir)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if output, err := cmd.CombinedOutput(); err != nil {
		_ = os.RemoveAll(repoDir)
		return nil, fmt.Errorf("git clone %s: %w (output: %s)", repo.Name, err, output)
	}

	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		return nil, fmt.Errorf("create completion marker: %w", err)
	}
	return &CloneResult{Path: repoDir}, nil
}

func safeName(name, ref string) string {
	return unsafePathChars.ReplaceAllString(name, "_") + "-" + unsafePathChars.ReplaceAllString(ref, "_")
}
