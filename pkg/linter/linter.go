// Package linter discovers JavaScript and TypeScript test files below a
// source root and lints them in parallel with the configured rules.
package linter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/specvital/testinglint/pkg/config"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/fixer"
	"github.com/specvital/testinglint/pkg/parser"
	"github.com/specvital/testinglint/pkg/source"
)

const (
	// DefaultWorkers indicates that the linter should use GOMAXPROCS as the worker count.
	DefaultWorkers = 0
	// DefaultTimeout is the default lint timeout duration.
	DefaultTimeout = 5 * time.Minute
	// MaxWorkers is the maximum number of concurrent workers allowed.
	MaxWorkers = 1024
	// DefaultMaxFileSize is the default maximum file size for linting (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024
	// DefaultDebounce is the default watch mode quiet period.
	DefaultDebounce = 300 * time.Millisecond
)

// DefaultSkipPatterns contains directory names that are skipped by default during discovery.
var DefaultSkipPatterns = []string{
	"node_modules",
	".git",
	"dist",
	"build",
	".next",
	"coverage",
	".cache",
}

var (
	// ErrLintCancelled is returned when linting is cancelled via context.
	ErrLintCancelled = errors.New("linter: lint cancelled")
	// ErrLintTimeout is returned when linting exceeds the timeout duration.
	ErrLintTimeout = errors.New("linter: lint timeout")
)

// Phases reported in FileError.
const (
	PhaseDiscovery = "discovery"
	PhaseRead      = "read"
	PhaseConfig    = "config"
	PhaseParse     = "parse"
	PhaseLint      = "lint"
	PhaseFix       = "fix"
	PhaseWrite     = "write"
)

// Linter runs rules over the files of a source.
type Linter struct {
	options  *Options
	resolver *config.Resolver
	tracer   trace.Tracer
}

// Result contains the outcome of a lint operation.
type Result struct {
	// Errors contains non-fatal errors encountered while linting.
	Errors []FileError

	Report domain.Report

	Stats Stats
}

// FileError represents an error that occurred during a specific phase of linting.
type FileError struct {
	// Err is the underlying error.
	Err error

	// Path is the file path where the error occurred (may be empty for non-file errors).
	Path string

	Phase string
}

// Error implements the error interface.
func (e FileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Phase, e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Stats provides statistics about the lint operation.
type Stats struct {
	// FilesDiscovered is the number of JavaScript and TypeScript files considered.
	FilesDiscovered int

	// FilesLinted is the number of files that were linted successfully.
	FilesLinted int

	FilesFailed int

	// FilesSkipped counts files excluded by their config's include and exclude.
	FilesSkipped int

	// FilesFixed counts files whose fixed output differs from the original.
	FilesFixed int

	FixesApplied int

	Duration time.Duration
}

// New creates a new linter with the given options.
func New(opts ...Option) *Linter {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	applyDefaults(options)

	resolver := options.Resolver
	if resolver == nil && options.Config == nil {
		// NewResolver only fails for non-positive sizes.
		resolver, _ = config.NewResolver(config.DefaultCacheSize, 0, nil)
	}

	return &Linter{
		options:  options,
		resolver: resolver,
		tracer:   options.TracerProvider.Tracer(tracerName),
	}
}

// Lint performs the complete lint process:
//  1. Discover JavaScript and TypeScript files
//  2. Resolve the config of each file and drop files it excludes
//  3. Lint, and fix when enabled, the files in parallel
//
// The caller is responsible for calling src.Close() when done.
func (l *Linter) Lint(ctx context.Context, src source.Source) (*Result, error) {
	startTime := time.Now()

	ctx, span := l.tracer.Start(ctx, "linter.Lint", trace.WithAttributes(attribute.String("root", src.Root())))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, l.options.Timeout)
	defer cancel()

	files, errs := l.discoverFiles(ctx, src)
	result := newResult(src.Root())
	for _, err := range errs {
		result.Errors = append(result.Errors, FileError{Err: err, Phase: PhaseDiscovery})
	}
	l.options.Logger.Debug("discovered files", "root", src.Root(), "count", len(files))

	l.lintFilesParallel(ctx, src, files, false, result)
	return l.finish(ctx, span, result, startTime)
}

// LintFiles lints specific files, given relative to the source root.
// Discovery and config include/exclude filtering are bypassed.
//
// The caller is responsible for calling src.Close() when done.
func (l *Linter) LintFiles(ctx context.Context, src source.Source, files []string) (*Result, error) {
	return l.lintFiles(ctx, src, files, true)
}

func (l *Linter) lintFiles(ctx context.Context, src source.Source, files []string, explicit bool) (*Result, error) {
	startTime := time.Now()

	ctx, span := l.tracer.Start(ctx, "linter.LintFiles", trace.WithAttributes(
		attribute.String("root", src.Root()),
		attribute.Int("files", len(files)),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, l.options.Timeout)
	defer cancel()

	result := newResult(src.Root())
	l.lintFilesParallel(ctx, src, files, explicit, result)
	return l.finish(ctx, span, result, startTime)
}

// LintSource lints content as if it were the file at path, without
// touching the filesystem. Fixes are computed in FixDryRun and FixWrite
// mode and returned in the report's Fixed field.
func (l *Linter) LintSource(ctx context.Context, path string, content []byte) (domain.FileReport, error) {
	cfg := l.options.Config
	if cfg == nil {
		var err error
		if cfg, err = l.resolver.ForFile(path); err != nil {
			return domain.FileReport{Path: path}, FileError{Err: err, Path: path, Phase: PhaseConfig}
		}
	}
	report, _, ferr := l.lintContent(ctx, cfg, path, content)
	if ferr != nil {
		return report, *ferr
	}
	return report, nil
}

func newResult(root string) *Result {
	return &Result{
		Errors: []FileError{},
		Report: domain.Report{RootPath: root, Files: []domain.FileReport{}},
	}
}

func (l *Linter) finish(ctx context.Context, span trace.Span, result *Result, startTime time.Time) (*Result, error) {
	result.Stats.Duration = time.Since(startTime)

	span.SetAttributes(
		attribute.Int("files.linted", result.Stats.FilesLinted),
		attribute.Int("files.failed", result.Stats.FilesFailed),
		attribute.Int("findings.error", result.Report.Count(domain.SeverityError)),
		attribute.Int("findings.warn", result.Report.Count(domain.SeverityWarn)),
	)

	// Check for timeout or cancellation
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, context.DeadlineExceeded) {
			return result, ErrLintTimeout
		}
		if errors.Is(err, context.Canceled) {
			return result, ErrLintCancelled
		}
	}
	return result, nil
}

// discoverFiles walks the source root to find lintable files.
// Returns relative paths from the source root for consistent Source.Open() usage.
func (l *Linter) discoverFiles(ctx context.Context, src source.Source) ([]string, []error) {
	rootPath := src.Root()
	skipSet := buildSkipSet(append(DefaultSkipPatterns, l.options.ExcludePatterns...))

	var (
		files []string
		errs  []error
	)

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if walkErr != nil {
			errs = append(errs, fmt.Errorf("access error at %s: %w", path, walkErr))
			return nil
		}

		if d.IsDir() {
			if shouldSkipDir(path, rootPath, skipSet) {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := domain.LanguageFromPath(path); !ok {
			return nil
		}

		if len(l.options.Patterns) > 0 && !matchesAnyPattern(path, rootPath, l.options.Patterns) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get file info for %s: %w", path, err))
			return nil
		}
		if info.Size() > l.options.MaxFileSize {
			l.options.Logger.Debug("skipping large file", "file", path, "size", info.Size())
			return nil
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("compute relative path for %s: %w", path, err))
			return nil
		}
		files = append(files, relPath)
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		errs = append(errs, err)
	}
	return files, errs
}

func (l *Linter) lintFilesParallel(ctx context.Context, src source.Source, files []string, explicit bool, result *Result) {
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return
	}

	workers := l.options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	for _, file := range files {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			outcome := l.lintFile(gCtx, src, file, explicit)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case outcome.err != nil:
				result.Stats.FilesFailed++
				result.Errors = append(result.Errors, *outcome.err)
			case outcome.skipped:
				result.Stats.FilesSkipped++
			default:
				result.Stats.FilesLinted++
				result.Stats.FixesApplied += outcome.fixes
				if outcome.report.Fixed != nil {
					result.Stats.FilesFixed++
				}
				result.Report.Files = append(result.Report.Files, outcome.report)
			}
			return nil
		})
	}

	_ = g.Wait()

	// Sort by path for deterministic output order.
	sort.Slice(result.Report.Files, func(i, j int) bool {
		return result.Report.Files[i].Path < result.Report.Files[j].Path
	})
	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].Path < result.Errors[j].Path
	})
}

type fileOutcome struct {
	err     *FileError
	fixes   int
	report  domain.FileReport
	skipped bool
}

func (l *Linter) lintFile(ctx context.Context, src source.Source, path string, explicit bool) fileOutcome {
	startTime := time.Now()
	ctx, span := l.tracer.Start(ctx, "linter.lintFile", trace.WithAttributes(attribute.String("file", path)))
	defer span.End()

	outcome := l.lintFileTraced(ctx, src, path, explicit)
	switch {
	case outcome.err != nil:
		span.RecordError(outcome.err.Err)
		span.SetStatus(codes.Error, outcome.err.Phase)
		l.options.Logger.Warn("lint failed", "file", path, "phase", outcome.err.Phase, "err", outcome.err.Err)
		l.options.Metrics.recordFile(resultFailed, time.Since(startTime).Seconds())
	case outcome.skipped:
		l.options.Metrics.recordFile(resultSkipped, 0)
	default:
		span.SetAttributes(attribute.Int("findings", len(outcome.report.Findings)), attribute.Int("fixes", outcome.fixes))
		l.options.Metrics.recordFile(resultOK, time.Since(startTime).Seconds())
		l.options.Metrics.recordFindings(outcome.report.Findings)
		l.options.Metrics.recordFixes(outcome.fixes)
	}
	return outcome
}

func (l *Linter) lintFileTraced(ctx context.Context, src source.Source, path string, explicit bool) fileOutcome {
	fail := func(phase string, err error) fileOutcome {
		return fileOutcome{err: &FileError{Err: err, Path: path, Phase: phase}}
	}

	if err := ctx.Err(); err != nil {
		return fail(PhaseRead, err)
	}

	absPath := filepath.Join(src.Root(), path)
	cfg := l.options.Config
	if cfg == nil {
		var err error
		if cfg, err = l.resolver.ForFile(absPath); err != nil {
			return fail(PhaseConfig, err)
		}
	}
	if !explicit && !cfg.Matches(relativeTo(cfg, src.Root(), absPath), IsTestFile) {
		return fileOutcome{skipped: true}
	}

	content, err := readFileFromSource(ctx, src, path)
	if err != nil {
		return fail(PhaseRead, err)
	}

	report, fixes, ferr := l.lintContent(ctx, cfg, path, content)
	if ferr != nil {
		return fileOutcome{err: ferr}
	}

	if l.options.Fix == FixWrite && report.Fixed != nil {
		writer, ok := src.(source.Writer)
		if !ok {
			return fail(PhaseWrite, fmt.Errorf("source %T is read-only", src))
		}
		if err := writer.WriteFile(ctx, path, report.Fixed); err != nil {
			return fail(PhaseWrite, err)
		}
		l.options.Logger.Info("fixed", "file", path, "fixes", fixes)
	}
	return fileOutcome{fixes: fixes, report: report}
}

// lintContent runs the rules of cfg over content, applying fix passes
// when fixing is enabled.
func (l *Linter) lintContent(ctx context.Context, cfg *config.Config, path string, content []byte) (domain.FileReport, int, *FileError) {
	report := domain.FileReport{Path: path, Source: content}
	lang, ok := domain.LanguageFromPath(path)
	if !ok {
		return report, 0, &FileError{Err: fmt.Errorf("unsupported file type"), Path: path, Phase: PhaseParse}
	}
	report.Language = lang

	ruleConfigs, err := cfg.RuleConfigs(l.options.Registry)
	if err != nil {
		return report, 0, &FileError{Err: err, Path: path, Phase: PhaseConfig}
	}

	phase := PhaseParse
	lint := func(code []byte) ([]domain.Finding, error) {
		phase = PhaseParse
		file, err := parser.ParseSource(ctx, path, lang, code)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		phase = PhaseLint
		return engine.Run(file, ruleConfigs, cfg.Settings)
	}

	if l.options.Fix == FixOff {
		findings, err := lint(content)
		if err != nil {
			return report, 0, &FileError{Err: err, Path: path, Phase: phase}
		}
		report.Findings = findings
		return report, 0, nil
	}

	res, err := fixer.Fix(content, lint)
	if err != nil {
		if res.Passes > 0 {
			phase = PhaseFix
		}
		return report, 0, &FileError{Err: err, Path: path, Phase: phase}
	}
	report.Findings = res.Remaining
	if res.Changed() {
		report.Fixed = res.Output
	}
	return report, res.Applied, nil
}

// relativeTo returns absPath relative to the directory of cfg, or to root
// for configs not loaded from a file.
func relativeTo(cfg *config.Config, root, absPath string) string {
	base := cfg.Dir()
	if base == "" {
		base = root
	}
	rel, err := filepath.Rel(base, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}

// readFileFromSource reads a file from source using relative path.
// The relPath must be relative to src.Root().
func readFileFromSource(ctx context.Context, src source.Source, relPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := src.Open(ctx, relPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", relPath, err)
	}
	return content, nil
}

func buildSkipSet(patterns []string) map[string]bool {
	skipSet := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		skipSet[p] = true
	}
	return skipSet
}

func shouldSkipDir(path, rootPath string, skipSet map[string]bool) bool {
	if path == rootPath {
		return false
	}
	return skipSet[filepath.Base(path)]
}

// IsTestFile reports whether a slash-separated path follows the usual
// test file conventions: *.test.*, *.spec.*, Cypress *.cy.* files and
// files below __tests__, excluding fixture and mock directories.
func IsTestFile(path string) bool {
	if _, ok := domain.LanguageFromPath(path); !ok {
		return false
	}
	lowerBase := strings.ToLower(filepath.Base(path))
	if strings.Contains(lowerBase, ".test.") || strings.Contains(lowerBase, ".spec.") || strings.Contains(lowerBase, ".cy.") {
		return true
	}

	normalizedPath := filepath.ToSlash(path)

	// Exclude fixture and mock directories (not actual test files)
	if strings.Contains(normalizedPath, "/__fixtures__/") || strings.HasPrefix(normalizedPath, "__fixtures__/") ||
		strings.Contains(normalizedPath, "/__mocks__/") || strings.HasPrefix(normalizedPath, "__mocks__/") {
		return false
	}

	return strings.Contains(normalizedPath, "/__tests__/") || strings.HasPrefix(normalizedPath, "__tests__/")
}

func matchesAnyPattern(path, rootPath string, patterns []string) bool {
	relPath, err := filepath.Rel(rootPath, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, relPath)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// Lint creates a linter with opts and lints src.
func Lint(ctx context.Context, src source.Source, opts ...Option) (*Result, error) {
	return New(opts...).Lint(ctx, src)
}
