package engine

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/parser/nodes"
)

const (
	exitSuffix = ":exit"
	wildcard   = "*"
)

type step struct {
	// child is true when this step must be a direct child of the previous one.
	child bool
	types []string
}

type selector struct {
	exit  bool
	raw   string
	steps []step
}

// parseSelector splits raw into its comma-separated alternatives.
func parseSelector(raw string) ([]selector, error) {
	var out []selector
	for _, alt := range strings.Split(raw, ",") {
		sel, err := parseCompound(strings.TrimSpace(alt))
		if err != nil {
			return nil, fmt.Errorf("selector %q: %w", raw, err)
		}
		sel.raw = raw
		out = append(out, sel)
	}
	return out, nil
}

func parseCompound(text string) (selector, error) {
	var sel selector
	if strings.HasSuffix(text, exitSuffix) {
		sel.exit = true
		text = strings.TrimSpace(strings.TrimSuffix(text, exitSuffix))
	}
	if text == "" {
		return sel, fmt.Errorf("empty selector")
	}

	child := false
	for _, token := range strings.Fields(text) {
		if token == ">" {
			if child || len(sel.steps) == 0 {
				return sel, fmt.Errorf("misplaced child combinator")
			}
			child = true
			continue
		}
		sel.steps = append(sel.steps, step{child: child, types: strings.Split(token, "|")})
		child = false
	}
	if child {
		return sel, fmt.Errorf("trailing child combinator")
	}
	return sel, nil
}

func (s step) matches(n *sitter.Node) bool {
	t := n.Type()
	for _, want := range s.types {
		if want == wildcard || want == t {
			return true
		}
	}
	return false
}

// subjectTypes returns the node types the selector can fire on, or nil
// for a wildcard subject.
func (s selector) subjectTypes() []string {
	last := s.steps[len(s.steps)-1]
	for _, t := range last.types {
		if t == wildcard {
			return nil
		}
	}
	return last.types
}

func (s selector) matches(n *sitter.Node) bool {
	last := len(s.steps) - 1
	if !s.steps[last].matches(n) {
		return false
	}
	return s.matchAncestors(n, last)
}

// matchAncestors checks steps[:i] against the ancestors of n, where n
// already matched steps[i].
func (s selector) matchAncestors(n *sitter.Node, i int) bool {
	if i == 0 {
		return true
	}
	prev := s.steps[i-1]
	if s.steps[i].child {
		parent := n.Parent()
		return parent != nil && prev.matches(parent) && s.matchAncestors(parent, i-1)
	}
	ancestor := n.Parent()
	for depth := 0; ancestor != nil && depth < nodes.MaxAncestorDepth; depth++ {
		if prev.matches(ancestor) && s.matchAncestors(ancestor, i-1) {
			return true
		}
		ancestor = ancestor.Parent()
	}
	return false
}

// specificity orders handlers for the same node: fewer steps first.
func (s selector) specificity() int {
	return len(s.steps)
}
