package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specvital/testinglint/pkg/config"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/formatter"
	"github.com/specvital/testinglint/pkg/linter"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/source"
)

func newLintCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint test files below the given directories or the files themselves",
		Example: `  testinglint lint
  testinglint lint src --fix
  testinglint lint --format json --max-warnings 0 packages/ui
  cat button.test.tsx | testinglint lint --stdin-filename button.test.tsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLint(cmd.Context(), args)
		},
	}

	f := cmd.Flags()
	f.StringP("config", "c", "", "use this config file for every file instead of the nearest .testinglintrc")
	f.String("framework", "", "framework of the recommended preset when no config file applies")
	f.StringP("format", "f", "stylish", "output format: "+strings.Join(formatter.Names(), ", "))
	f.String("color", "auto", "colorize output: auto, always or never")
	f.Bool("fix", false, "write fixes back to the files")
	f.Bool("fix-dry-run", false, "print the fixes as a diff without writing them")
	f.Bool("quiet", false, "report errors only")
	f.Int("max-warnings", -1, "exit with 1 when there are more warnings than this; negative disables the check")
	f.Bool("watch", false, "re-lint changed files until interrupted")
	f.String("metrics-file", "", "write Prometheus metrics in text format to this file")
	f.Int("workers", linter.DefaultWorkers, "number of files linted concurrently; 0 uses GOMAXPROCS")
	f.Duration("timeout", linter.DefaultTimeout, "maximum duration of one lint run")
	f.StringSlice("exclude", nil, "directory names to skip besides the defaults")
	f.StringSlice("pattern", nil, "only lint files matching these doublestar globs")
	f.String("stdin-filename", "", "lint standard input as if it were this file")
	cmd.MarkFlagsMutuallyExclusive("fix", "fix-dry-run")
	cmd.MarkFlagsMutuallyExclusive("watch", "stdin-filename")
	return cmd
}

func (a *app) runLint(ctx context.Context, args []string) error {
	opts, metrics, err := a.linterOptions()
	if err != nil {
		return failure(err)
	}
	l := linter.New(opts...)

	out, err := a.output()
	if err != nil {
		return failure(err)
	}

	if name := a.v.GetString("stdin-filename"); name != "" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return failure(fmt.Errorf("read stdin: %w", err))
		}
		file, err := l.LintSource(ctx, name, data)
		if err != nil {
			return failure(err)
		}
		report := domain.Report{Files: []domain.FileReport{file}}
		return a.finish(out, report, nil, metrics)
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	if a.v.GetBool("watch") {
		return a.watch(ctx, l, out, args)
	}

	report := domain.Report{Files: []domain.FileReport{}}
	var fileErrs []linter.FileError
	for _, path := range args {
		res, err := lintPath(ctx, l, path)
		if err != nil {
			return failure(err)
		}
		report.Files = append(report.Files, res.Report.Files...)
		fileErrs = append(fileErrs, res.Errors...)
		a.logger.Debug("linted", "path", path, "files", res.Stats.FilesLinted, "skipped", res.Stats.FilesSkipped, "duration", res.Stats.Duration)
	}
	return a.finish(out, report, fileErrs, metrics)
}

func (a *app) linterOptions() ([]linter.Option, *linter.Metrics, error) {
	opts := []linter.Option{
		linter.WithLogger(a.logger),
		linter.WithWorkers(a.v.GetInt("workers")),
		linter.WithTimeout(a.v.GetDuration("timeout")),
		linter.WithExcludePatterns(a.v.GetStringSlice("exclude")),
		linter.WithPatterns(a.v.GetStringSlice("pattern")),
	}

	switch {
	case a.v.GetBool("fix-dry-run"):
		opts = append(opts, linter.WithFix(linter.FixDryRun))
	case a.v.GetBool("fix"):
		opts = append(opts, linter.WithFix(linter.FixWrite))
	}

	if path := a.v.GetString("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, nil, err
		}
		for _, warning := range cfg.ValidateOptions(rules.DefaultRegistry()) {
			a.logger.Warn("invalid rule options", "config", path, "err", warning)
		}
		opts = append(opts, linter.WithConfig(cfg))
	} else {
		fallback := config.Default()
		if name := a.v.GetString("framework"); name != "" {
			fw, err := config.ParseFramework(name)
			if err != nil {
				return nil, nil, err
			}
			fallback.Framework = fw
		}
		resolver, err := config.NewResolver(config.DefaultCacheSize, 0, fallback)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, linter.WithResolver(resolver))
	}

	var metrics *linter.Metrics
	if a.v.GetString("metrics-file") != "" {
		metrics = linter.NewMetrics()
		opts = append(opts, linter.WithMetrics(metrics))
	}
	return opts, metrics, nil
}

// lintPath lints a directory, or a single file through a source rooted at
// its directory. Report paths are made relative to the working directory.
func lintPath(ctx context.Context, l *linter.Linter, path string) (*linter.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	root, files := path, []string(nil)
	if !info.IsDir() {
		root, files = filepath.Dir(path), []string{filepath.Base(path)}
	}
	src, err := source.NewLocalSource(root)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var res *linter.Result
	if files == nil {
		res, err = l.Lint(ctx, src)
	} else {
		res, err = l.LintFiles(ctx, src, files)
	}
	if err != nil {
		return nil, err
	}
	prefixPaths(res, root)
	return res, nil
}

func prefixPaths(res *linter.Result, root string) {
	if root == "." || root == "" {
		return
	}
	for i := range res.Report.Files {
		file := &res.Report.Files[i]
		file.Path = filepath.Join(root, file.Path)
		for j := range file.Findings {
			file.Findings[j].Location.File = file.Path
		}
	}
	for i := range res.Errors {
		if res.Errors[i].Path != "" {
			res.Errors[i].Path = filepath.Join(root, res.Errors[i].Path)
		}
	}
}

type output struct {
	fmt  formatter.Formatter
	opts formatter.Options
}

func (a *app) output() (output, error) {
	var color bool
	switch mode := a.v.GetString("color"); mode {
	case "always":
		color = true
	case "never":
	case "auto", "":
		color = isTerminal(a.stdout)
	default:
		return output{}, fmt.Errorf("unknown color mode %q", mode)
	}
	opts := formatter.Options{Color: color}
	f, err := formatter.New(a.v.GetString("format"), opts)
	if err != nil {
		return output{}, err
	}
	return output{fmt: f, opts: opts}, nil
}

// finish prints the report and maps it to an exit code: file failures
// give 2, error findings or too many warnings give 1.
func (a *app) finish(out output, report domain.Report, fileErrs []linter.FileError, metrics *linter.Metrics) error {
	if a.v.GetBool("quiet") {
		report = errorsOnly(report)
	}
	if err := out.fmt.Format(a.stdout, report); err != nil {
		return failure(err)
	}
	if a.v.GetBool("fix-dry-run") {
		if err := formatter.WriteDiffs(a.stdout, report, out.opts); err != nil {
			return failure(err)
		}
	}

	if path := a.v.GetString("metrics-file"); path != "" && metrics != nil {
		if err := metrics.WriteFile(path); err != nil {
			return failure(fmt.Errorf("write metrics: %w", err))
		}
	}

	for _, fileErr := range fileErrs {
		a.logger.Error("lint failed", "file", fileErr.Path, "phase", fileErr.Phase, "err", fileErr.Err)
	}
	if len(fileErrs) > 0 {
		return failure(fmt.Errorf("%d file(s) could not be linted", len(fileErrs)))
	}

	if report.Count(domain.SeverityError) > 0 {
		return &ExitError{Code: exitFindings}
	}
	if maxWarnings := a.v.GetInt("max-warnings"); maxWarnings >= 0 && report.Count(domain.SeverityWarn) > maxWarnings {
		a.logger.Warn("too many warnings", "count", report.Count(domain.SeverityWarn), "max", maxWarnings)
		return &ExitError{Code: exitFindings}
	}
	return nil
}

func (a *app) watch(ctx context.Context, l *linter.Linter, out output, args []string) error {
	if len(args) != 1 {
		return failure(errors.New("--watch takes a single directory"))
	}
	src, err := source.NewLocalSource(args[0])
	if err != nil {
		return failure(err)
	}
	defer src.Close()

	a.logger.Info("watching", "root", src.Root())
	err = l.Watch(ctx, src, func(res *linter.Result, err error, full bool) {
		if err != nil {
			a.logger.Error("lint run failed", "err", err)
		}
		if res == nil {
			return
		}
		report := res.Report
		if a.v.GetBool("quiet") {
			report = errorsOnly(report)
		}
		if err := out.fmt.Format(a.stdout, report); err != nil {
			a.logger.Error("format report", "err", err)
		}
		for _, fileErr := range res.Errors {
			a.logger.Error("lint failed", "file", fileErr.Path, "phase", fileErr.Phase, "err", fileErr.Err)
		}
		a.logger.Info("lint round done", "files", res.Stats.FilesLinted, "full", full)
	})
	if err != nil {
		return failure(err)
	}
	return nil
}

func errorsOnly(report domain.Report) domain.Report {
	out := domain.Report{RootPath: report.RootPath, Files: make([]domain.FileReport, 0, len(report.Files))}
	for _, file := range report.Files {
		kept := file
		kept.Findings = nil
		for _, f := range file.Findings {
			if f.Severity == domain.SeverityError {
				kept.Findings = append(kept.Findings, f)
			}
		}
		out.Files = append(out.Files, kept)
	}
	return out
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
