//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/specvital/testinglint/pkg/linter"
	"github.com/specvital/testinglint/pkg/source"

	_ "github.com/specvital/testinglint/pkg/rules/all"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/lint.go <path>\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	src, err := source.NewLocalSource(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "source error: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	result, err := linter.Lint(ctx, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lint error: %v\n", err)
		os.Exit(1)
	}

	output := map[string]any{
		"filesDiscovered": result.Stats.FilesDiscovered,
		"filesLinted":     result.Stats.FilesLinted,
		"filesFailed":     result.Stats.FilesFailed,
		"duration":        result.Stats.Duration.String(),
		"rules":           countRules(result),
	}
	json.NewEncoder(os.Stdout).Encode(output)
}

func countRules(result *linter.Result) map[string]int {
	counts := make(map[string]int)
	for _, file := range result.Report.Files {
		for _, f := range file.Findings {
			counts[f.Rule]++
		}
	}
	return counts
}
