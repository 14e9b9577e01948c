package engine

import (
	"strings"

	"github.com/specvital/testinglint/pkg/parser"
	"github.com/specvital/testinglint/pkg/parser/tspool"
)

const (
	directivePrefix = "testinglint-"
	// legacyRulePrefix lets existing eslint-style rule names be reused in
	// directives.
	legacyRulePrefix = "testing-library/"
)

const commentQuery = `(comment) @comment`

type disabledRange struct {
	// end is the last disabled line, or 0 until the end of file.
	end   int
	rules []string
	start int
}

// directives are the inline disable comments of one file.
type directives struct {
	lines  map[int][]string
	ranges []disabledRange
}

func parseDirectives(file *parser.File) directives {
	d := directives{lines: make(map[int][]string)}

	captures, err := tspool.Captures(file.Root(), file.Source, file.Language, commentQuery)
	if err != nil {
		return d
	}

	var open []disabledRange
	for _, c := range captures {
		kind, rules, ok := parseComment(parser.GetNodeText(c.Node, file.Source))
		if !ok {
			continue
		}
		startLine := int(c.Node.StartPoint().Row) + 1
		endLine := int(c.Node.EndPoint().Row) + 1

		switch kind {
		case "disable-next-line":
			d.lines[endLine+1] = append(d.lines[endLine+1], orAll(rules)...)
		case "disable-line":
			d.lines[startLine] = append(d.lines[startLine], orAll(rules)...)
		case "disable":
			open = append(open, disabledRange{start: startLine, rules: rules})
		case "enable":
			open = closeRanges(&d, open, rules, startLine)
		}
	}
	d.ranges = append(d.ranges, open...)
	return d
}

// closeRanges ends the open ranges matching rules. An enable without rules
// ends every open range.
func closeRanges(d *directives, open []disabledRange, rules []string, line int) []disabledRange {
	kept := open[:0]
	for _, r := range open {
		if len(rules) == 0 || sameRules(r.rules, rules) {
			r.end = line
			d.ranges = append(d.ranges, r)
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func parseComment(text string) (kind string, rules []string, ok bool) {
	switch {
	case strings.HasPrefix(text, "//"):
		text = text[2:]
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(text[2:], "*/")
	}
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, directivePrefix) {
		return "", nil, false
	}
	text = text[len(directivePrefix):]

	// A "--" starts a free-form description.
	if i := strings.Index(text, "--"); i >= 0 {
		text = text[:i]
	}

	kind, rest, _ := strings.Cut(text, " ")
	switch kind {
	case "disable", "enable", "disable-line", "disable-next-line":
	default:
		return "", nil, false
	}

	for _, name := range strings.Split(rest, ",") {
		name = strings.TrimPrefix(strings.TrimSpace(name), legacyRulePrefix)
		if name != "" {
			rules = append(rules, name)
		}
	}
	return kind, rules, true
}

const allRules = "*"

func orAll(rules []string) []string {
	if len(rules) == 0 {
		return []string{allRules}
	}
	return rules
}

func sameRules(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func covers(rules []string, rule string) bool {
	if len(rules) == 0 {
		return true
	}
	for _, r := range rules {
		if r == allRules || r == rule {
			return true
		}
	}
	return false
}

// suppressed reports whether rule is disabled on line.
func (d directives) suppressed(rule string, line int) bool {
	if covers(d.lines[line], rule) && len(d.lines[line]) > 0 {
		return true
	}
	for _, r := range d.ranges {
		if line < r.start || (r.end != 0 && line > r.end) {
			continue
		}
		if covers(r.rules, rule) {
			return true
		}
	}
	return false
}
