package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/specvital/testinglint/pkg/domain"
)

// Color palette for the stylish output.
const (
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorMuted   = lipgloss.Color("#6B7280")
	colorAdded   = lipgloss.Color("#10B981")
)

type palette struct {
	added   lipgloss.Style
	color   bool
	errorS  lipgloss.Style
	muted   lipgloss.Style
	path    lipgloss.Style
	summary lipgloss.Style
	warnS   lipgloss.Style
}

func (p palette) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// stylish groups findings by file with aligned position, severity and
// rule columns and closes with a problem summary.
type stylish struct {
	p palette
}

func newStylish(opts Options) stylish {
	return stylish{p: palette{
		added:   lipgloss.NewStyle().Foreground(colorAdded),
		color:   opts.Color,
		errorS:  lipgloss.NewStyle().Foreground(colorError),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
		path:    lipgloss.NewStyle().Underline(true),
		summary: lipgloss.NewStyle().Bold(true),
		warnS:   lipgloss.NewStyle().Foreground(colorWarning),
	}}
}

func (s stylish) Format(w io.Writer, report domain.Report) error {
	var b strings.Builder
	files := report.FilesWithFindings()
	for _, file := range files {
		s.writeFile(&b, file)
	}

	sum := summarize(report)
	if sum.total() > 0 {
		style := s.p.warnS
		if sum.errors > 0 {
			style = s.p.errorS
		}
		line := fmt.Sprintf("✖ %s (%s, %s)", plural(sum.total(), "problem"), plural(sum.errors, "error"), plural(sum.warnings, "warning"))
		b.WriteString(s.p.render(style.Bold(true), line))
		b.WriteString("\n")
		if sum.fixableErrors+sum.fixableWarns > 0 {
			fixable := fmt.Sprintf("  %s and %s potentially fixable with the `--fix` option.",
				plural(sum.fixableErrors, "error"), plural(sum.fixableWarns, "warning"))
			b.WriteString(s.p.render(style, fixable))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (s stylish) writeFile(b *strings.Builder, file domain.FileReport) {
	type row struct {
		message  string
		pos      string
		rule     string
		severity domain.Severity
	}
	rows := make([]row, 0, len(file.Findings))
	posWidth, msgWidth := 0, 0
	for _, f := range file.Findings {
		r := row{
			message:  f.Message,
			pos:      fmt.Sprintf("%d:%d", f.Location.StartLine, f.Location.StartCol+1),
			rule:     f.Rule,
			severity: f.Severity,
		}
		posWidth = max(posWidth, len(r.pos))
		msgWidth = max(msgWidth, lipgloss.Width(r.message))
		rows = append(rows, r)
	}

	b.WriteString(s.p.render(s.p.path, file.Path))
	b.WriteString("\n")
	for _, r := range rows {
		sev := r.severity.String()
		sevStyle := s.p.warnS
		if r.severity == domain.SeverityError {
			sevStyle = s.p.errorS
		}
		pos := r.pos + strings.Repeat(" ", posWidth-len(r.pos))
		msg := r.message + strings.Repeat(" ", msgWidth-lipgloss.Width(r.message))
		fmt.Fprintf(b, "  %s  %s  %s  %s\n",
			s.p.render(s.p.muted, pos),
			s.p.render(sevStyle, fmt.Sprintf("%-5s", sev)),
			msg,
			s.p.render(s.p.muted, r.rule),
		)
	}
	b.WriteString("\n")
}
