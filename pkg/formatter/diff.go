package formatter

import (
	"bufio"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/specvital/testinglint/pkg/domain"
)

// DiffContext is the number of unchanged lines around each hunk.
const DiffContext = 3

// UnifiedDiff renders the change from before to after as a unified diff
// with a/ and b/ prefixed paths. It returns "" when nothing changed.
func UnifiedDiff(path string, before, after []byte) (string, error) {
	if string(before) == string(after) {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        diffLines(before),
		B:        diffLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  DiffContext,
	})
}

// diffLines splits src after each newline. A last line without one is
// terminated and marked the way git marks it.
func diffLines(src []byte) []string {
	lines := strings.SplitAfter(string(src), "\n")
	if last := len(lines) - 1; lines[last] == "" {
		lines = lines[:last]
	} else {
		lines[last] += "\n" + noNewlineMarker + "\n"
	}
	return lines
}

const noNewlineMarker = `\ No newline at end of file`

// WriteDiffs writes the diff of every fixed file in report, for dry runs.
// With color, added and removed lines are highlighted.
func WriteDiffs(w io.Writer, report domain.Report, opts Options) error {
	p := newStylish(opts).p
	for _, file := range report.Files {
		if file.Fixed == nil {
			continue
		}
		diff, err := UnifiedDiff(file.Path, file.Source, file.Fixed)
		if err != nil {
			return err
		}
		scanner := bufio.NewScanner(strings.NewReader(diff))
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
				line = p.render(p.summary, line)
			case strings.HasPrefix(line, "+"):
				line = p.render(p.added, line)
			case strings.HasPrefix(line, "-"):
				line = p.render(p.errorS, line)
			case strings.HasPrefix(line, "@@"):
				line = p.render(p.muted, line)
			}
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
	}
	return nil
}
