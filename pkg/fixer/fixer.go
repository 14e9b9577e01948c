// Package fixer applies the fixes attached to findings.
//
// One round applies every fix that does not overlap a fix applied before
// it in the same round; the rest wait for the next pass. Fix runs rounds
// and re-lints in between until nothing applies or MaxPasses is reached.
package fixer

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/specvital/testinglint/pkg/domain"
)

// MaxPasses bounds the fix loop.
const MaxPasses = 10

// LintFunc lints the given source and returns its findings.
type LintFunc func(src []byte) ([]domain.Finding, error)

// Result is the outcome of Fix.
type Result struct {
	Applied int
	Output  []byte
	Passes  int
	// Remaining are the findings of the final output.
	Remaining []domain.Finding
}

// Changed reports whether any fix was applied.
func (r Result) Changed() bool {
	return r.Applied > 0
}

// Apply applies one round of fixes to src and returns the output together
// with the number of fixes applied.
func Apply(src []byte, findings []domain.Finding) ([]byte, int) {
	fixes := make([]*domain.Fix, 0, len(findings))
	for i := range findings {
		if fix := findings[i].Fix; fix != nil && len(fix.Edits) > 0 {
			fixes = append(fixes, fix)
		}
	}
	if len(fixes) == 0 {
		return src, 0
	}

	sort.SliceStable(fixes, func(i, j int) bool {
		si, ei := fixes[i].Range()
		sj, ej := fixes[j].Range()
		if si != sj {
			return si < sj
		}
		return ei < ej
	})

	var edits []domain.TextEdit
	applied := 0
	lastEnd := -1
	for _, fix := range fixes {
		start, end := fix.Range()
		if start <= lastEnd || start < 0 || end > len(src) {
			continue
		}
		edits = append(edits, fix.Edits...)
		lastEnd = end
		applied++
	}
	if applied == 0 {
		return src, 0
	}

	sort.SliceStable(edits, func(i, j int) bool { return edits[i].Start < edits[j].Start })

	var out bytes.Buffer
	out.Grow(len(src))
	cursor := 0
	for _, e := range edits {
		if e.Start < cursor {
			continue
		}
		out.Write(src[cursor:e.Start])
		out.WriteString(e.Text)
		cursor = e.End
	}
	out.Write(src[cursor:])
	return out.Bytes(), applied
}

// Fix lints src, applies a round of fixes and repeats on the output until
// no fix applies or MaxPasses rounds have run.
func Fix(src []byte, lint LintFunc) (Result, error) {
	res := Result{Output: src}
	for {
		findings, err := lint(res.Output)
		if err != nil {
			return res, fmt.Errorf("fix pass %d: %w", res.Passes+1, err)
		}
		res.Remaining = findings
		if res.Passes == MaxPasses {
			return res, nil
		}

		out, n := Apply(res.Output, findings)
		if n == 0 {
			return res, nil
		}
		res.Output = out
		res.Applied += n
		res.Passes++
	}
}
