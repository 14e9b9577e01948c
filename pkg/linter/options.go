package linter

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/specvital/testinglint/pkg/config"
	"github.com/specvital/testinglint/pkg/rules"
)

// FixMode selects what happens to fixable findings.
type FixMode int

const (
	// FixOff reports findings without computing fixes.
	FixOff FixMode = iota
	// FixDryRun computes the fixed output but leaves files untouched.
	FixDryRun
	// FixWrite writes fixed output back through the source.
	FixWrite
)

const tracerName = "github.com/specvital/testinglint/pkg/linter"

// Options configures linter behavior.
type Options struct {
	// Config is applied to every file. When nil, Resolver picks the
	// nearest config file per file.
	Config *config.Config

	// Debounce is the quiet period watch mode waits for before re-linting.
	Debounce time.Duration

	// ExcludePatterns specifies directory names to skip during file discovery.
	// These are combined with DefaultSkipPatterns.
	ExcludePatterns []string

	Fix FixMode

	Logger *log.Logger

	// MaxFileSize is the maximum file size in bytes to process.
	// Files larger than this are skipped.
	MaxFileSize int64

	// Metrics receives counters and histograms. Nil disables metrics.
	Metrics *Metrics

	// Patterns are doublestar globs relative to the source root that
	// discovered files must match. Empty means all candidates.
	Patterns []string

	// Registry holds the rules configs are resolved against.
	// If nil, uses rules.DefaultRegistry().
	Registry *rules.Registry

	// Resolver finds per-file configs when Config is nil. If nil, a
	// resolver with DefaultCacheSize entries is created.
	Resolver *config.Resolver

	// Timeout is the maximum duration for the entire lint operation.
	// Zero or negative values use DefaultTimeout.
	Timeout time.Duration

	TracerProvider trace.TracerProvider

	// Workers specifies the number of concurrent file linters.
	// Zero or negative values use runtime.GOMAXPROCS(0).
	Workers int
}

// Option is a functional option for configuring Linter.
type Option func(*Options)

// WithWorkers sets the number of concurrent file linters.
// Negative values are ignored.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.Workers = n
		}
	}
}

// WithTimeout sets the lint timeout duration.
// Negative values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d >= 0 {
			o.Timeout = d
		}
	}
}

// WithExcludePatterns adds directory names to skip during file discovery.
func WithExcludePatterns(patterns []string) Option {
	return func(o *Options) {
		o.ExcludePatterns = patterns
	}
}

// WithMaxFileSize sets the maximum file size to process.
func WithMaxFileSize(size int64) Option {
	return func(o *Options) {
		if size >= 0 {
			o.MaxFileSize = size
		}
	}
}

// WithPatterns sets glob patterns to filter discovered files.
func WithPatterns(patterns []string) Option {
	return func(o *Options) {
		o.Patterns = patterns
	}
}

// WithRegistry sets the rule registry to use.
func WithRegistry(registry *rules.Registry) Option {
	return func(o *Options) {
		o.Registry = registry
	}
}

// WithConfig applies cfg to every file instead of resolving config files.
func WithConfig(cfg *config.Config) Option {
	return func(o *Options) {
		o.Config = cfg
	}
}

// WithResolver sets the per-file config resolver.
func WithResolver(r *config.Resolver) Option {
	return func(o *Options) {
		o.Resolver = r
	}
}

func WithFix(mode FixMode) Option {
	return func(o *Options) {
		o.Fix = mode
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) {
		o.TracerProvider = tp
	}
}

// WithDebounce sets the watch mode quiet period. Non-positive values are
// ignored.
func WithDebounce(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.Debounce = d
		}
	}
}

func applyDefaults(opts *Options) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Registry == nil {
		opts.Registry = rules.DefaultRegistry()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}
}
