package domain

import "sort"

// Location is a source range. Lines are 1-based, columns are 0-based bytes.
type Location struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	StartCol  int    `json:"startCol"`
	EndCol    int    `json:"endCol"`
}

// TextEdit replaces the byte range [Start, End) with Text.
// Start == End is an insertion, an empty Text is a removal.
type TextEdit struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Fix is a group of edits applied atomically.
type Fix struct {
	Edits []TextEdit `json:"edits"`
}

// Range returns the smallest byte range covering every edit.
func (f *Fix) Range() (start, end int) {
	if f == nil || len(f.Edits) == 0 {
		return 0, 0
	}
	start, end = f.Edits[0].Start, f.Edits[0].End
	for _, e := range f.Edits[1:] {
		if e.Start < start {
			start = e.Start
		}
		if e.End > end {
			end = e.End
		}
	}
	return start, end
}

// Finding is a single rule violation.
type Finding struct {
	// Fix is nil when the finding cannot be fixed safely.
	Fix       *Fix     `json:"fix,omitempty"`
	Location  Location `json:"location"`
	Message   string   `json:"message"`
	MessageID string   `json:"messageId"`
	Rule      string   `json:"rule"`
	Severity  Severity `json:"severity"`
}

// FileReport holds the findings of one file.
type FileReport struct {
	Findings []Finding `json:"findings"`
	// Fixed is set when fixes were applied; it holds the rewritten source.
	Fixed    []byte   `json:"-"`
	Language Language `json:"language"`
	Path     string   `json:"path"`
	// Source is the original file content.
	Source []byte `json:"-"`
}

// Count returns the number of findings at the given severity.
func (f *FileReport) Count(sev Severity) int {
	count := 0
	for _, finding := range f.Findings {
		if finding.Severity == sev {
			count++
		}
	}
	return count
}

// SortFindings orders findings by position, then rule name.
func (f *FileReport) SortFindings() {
	sort.SliceStable(f.Findings, func(i, j int) bool {
		a, b := f.Findings[i].Location, f.Findings[j].Location
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		if a.StartCol != b.StartCol {
			return a.StartCol < b.StartCol
		}
		return f.Findings[i].Rule < f.Findings[j].Rule
	})
}

// Report is the result of linting a set of files.
type Report struct {
	// Files contains one entry per linted file, including files without findings.
	Files []FileReport `json:"files"`
	// RootPath is the root directory that was linted.
	RootPath string `json:"rootPath"`
}

// Count returns the number of findings at the given severity across all files.
func (r Report) Count(sev Severity) int {
	count := 0
	for i := range r.Files {
		count += r.Files[i].Count(sev)
	}
	return count
}

// FilesWithFindings returns the files that have at least one finding.
func (r Report) FilesWithFindings() []FileReport {
	var files []FileReport
	for _, f := range r.Files {
		if len(f.Findings) > 0 {
			files = append(files, f)
		}
	}
	return files
}
