// Package formatter renders lint reports for terminals and tools.
package formatter

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/specvital/testinglint/pkg/domain"
)

// ErrUnknownFormat is returned by New for unregistered format names.
var ErrUnknownFormat = errors.New("formatter: unknown format")

// Formatter writes a report.
type Formatter interface {
	Format(w io.Writer, report domain.Report) error
}

// Options tunes the built-in formatters.
type Options struct {
	// Color enables ANSI styling in the text formatters.
	Color bool
}

var builtins = map[string]func(Options) Formatter{
	"stylish": func(o Options) Formatter { return newStylish(o) },
	"compact": func(o Options) Formatter { return compact{} },
	"json":    func(o Options) Formatter { return jsonFormatter{} },
}

// New returns the formatter registered under name.
func New(name string, opts Options) (Formatter, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return build(opts), nil
}

// Names lists the built-in formats.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type compact struct{}

// Format writes one line per finding: path:line:col: severity message (rule).
func (compact) Format(w io.Writer, report domain.Report) error {
	for _, file := range report.FilesWithFindings() {
		for _, f := range file.Findings {
			_, err := fmt.Fprintf(w, "%s:%d:%d: %s %s (%s)\n",
				file.Path, f.Location.StartLine, f.Location.StartCol+1, f.Severity, f.Message, f.Rule)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// summary counts findings the way the footers of the text formats do.
type summary struct {
	errors        int
	fixableErrors int
	fixableWarns  int
	warnings      int
}

func summarize(report domain.Report) summary {
	var s summary
	for _, file := range report.Files {
		for _, f := range file.Findings {
			switch f.Severity {
			case domain.SeverityError:
				s.errors++
				if f.Fix != nil {
					s.fixableErrors++
				}
			case domain.SeverityWarn:
				s.warnings++
				if f.Fix != nil {
					s.fixableWarns++
				}
			}
		}
	}
	return s
}

func (s summary) total() int { return s.errors + s.warnings }

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
