package linter_test

import (
	"context"
	"fmt"
	"time"

	"github.com/specvital/testinglint/pkg/linter"
	"github.com/specvital/testinglint/pkg/source"

	// Import rules to register them with the default registry.
	_ "github.com/specvital/testinglint/pkg/rules/all"
)

func Example() {
	ctx := context.Background()

	// Create a source for the project directory
	src, err := source.NewLocalSource("/path/to/project")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer src.Close()

	// Lint every test file with the nearest .testinglintrc of each file
	result, err := linter.Lint(ctx, src)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	for _, file := range result.Report.FilesWithFindings() {
		for _, f := range file.Findings {
			fmt.Printf("%s:%d %s (%s)\n", file.Path, f.Location.StartLine, f.Message, f.Rule)
		}
	}

	// Check for non-fatal errors
	for _, fileErr := range result.Errors {
		fmt.Printf("Warning: %v\n", fileErr)
	}
}

func Example_withOptions() {
	ctx := context.Background()

	src, err := source.NewLocalSource("/path/to/project")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer src.Close()

	metrics := linter.NewMetrics()
	result, err := linter.Lint(ctx, src,
		linter.WithWorkers(4),
		linter.WithTimeout(2*time.Minute),
		linter.WithExcludePatterns([]string{"e2e"}),
		linter.WithFix(linter.FixWrite),
		linter.WithMetrics(metrics),
	)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Linted %d files, fixed %d\n", result.Stats.FilesLinted, result.Stats.FilesFixed)
	if err := metrics.WriteFile("/tmp/testinglint.prom"); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}
