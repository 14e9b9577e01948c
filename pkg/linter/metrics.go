package linter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/specvital/testinglint/pkg/domain"
)

const metricsNamespace = "testinglint"

// File results recorded by files_linted_total.
const (
	resultOK      = "ok"
	resultFailed  = "failed"
	resultSkipped = "skipped"
)

// Metrics holds the Prometheus collectors of a linter. Each instance owns
// its registry, so several linters in one process do not collide.
type Metrics struct {
	fileDuration  prometheus.Histogram
	filesLinted   *prometheus.CounterVec
	findingsTotal *prometheus.CounterVec
	fixesApplied  prometheus.Counter
	registry      *prometheus.Registry
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,

		// filesLinted counts processed files.
		// Labels: result (ok, failed, skipped)
		filesLinted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "files_linted_total",
			Help:      "Files processed by result",
		}, []string{"result"}),

		// findingsTotal counts reported findings.
		// Labels: rule, severity (warn, error)
		findingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "findings_total",
			Help:      "Findings by rule and severity",
		}, []string{"rule", "severity"}),

		fileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "file_lint_duration_seconds",
			Help:      "Time spent linting one file, fixes included",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		fixesApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fixes_applied_total",
			Help:      "Fixes applied across all passes",
		}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteFile writes the text exposition of every metric to path.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) recordFile(result string, seconds float64) {
	if m == nil {
		return
	}
	m.filesLinted.WithLabelValues(result).Inc()
	if result != resultSkipped {
		m.fileDuration.Observe(seconds)
	}
}

func (m *Metrics) recordFindings(findings []domain.Finding) {
	if m == nil {
		return
	}
	for _, f := range findings {
		m.findingsTotal.WithLabelValues(f.Rule, f.Severity.String()).Inc()
	}
}

func (m *Metrics) recordFixes(n int) {
	if m == nil || n == 0 {
		return
	}
	m.fixesApplied.Add(float64(n))
}
