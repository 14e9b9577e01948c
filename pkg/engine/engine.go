package engine

import (
	"errors"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/parser"
)

var (
	// ErrInvalidSelector is returned when a rule registers a malformed selector.
	ErrInvalidSelector = errors.New("invalid selector")
	// ErrRulePanic wraps a panic raised by a rule handler. Only the current
	// file's analysis is aborted.
	ErrRulePanic = errors.New("rule panicked")
)

type entry struct {
	handler  Handler
	order    int
	selector selector
}

type dispatch struct {
	enter    map[string][]entry
	enterAll []entry
	exit     map[string][]entry
	exitAll  []entry
}

func (d *dispatch) add(e entry) {
	types := e.selector.subjectTypes()
	if e.selector.exit {
		if types == nil {
			d.exitAll = append(d.exitAll, e)
		}
		for _, t := range types {
			d.exit[t] = append(d.exit[t], e)
		}
		return
	}
	if types == nil {
		d.enterAll = append(d.enterAll, e)
	}
	for _, t := range types {
		d.enter[t] = append(d.enter[t], e)
	}
}

func (d *dispatch) sort() {
	less := func(list []entry) {
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i], list[j]
			if a.selector.specificity() != b.selector.specificity() {
				return a.selector.specificity() < b.selector.specificity()
			}
			return a.order < b.order
		})
	}
	for _, list := range d.enter {
		less(list)
	}
	for _, list := range d.exit {
		less(list)
	}
	less(d.enterAll)
	less(d.exitAll)
}

func fire(n *sitter.Node, typed, all []entry) {
	for _, list := range [][]entry{typed, all} {
		for _, e := range list {
			if e.selector.matches(n) {
				e.handler(n)
			}
		}
	}
}

// Run lints file with the given rules and returns the findings that are
// not suppressed by inline directives, sorted by position.
func Run(file *parser.File, rules []RuleConfig, settings Settings) (findings []domain.Finding, err error) {
	current := ""
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = fmt.Errorf("%w: %s in %s: %v", ErrRulePanic, current, file.Path, r)
		}
	}()

	scope := newScopeIndex(file)
	d := &dispatch{enter: map[string][]entry{}, exit: map[string][]entry{}}
	var contexts []*Context

	order := 0
	for _, cfg := range rules {
		if cfg.Rule == nil || cfg.Severity == domain.SeverityOff {
			continue
		}
		current = cfg.Rule.Name
		ctx := newContext(file, cfg, settings, scope)
		contexts = append(contexts, ctx)

		handlers := cfg.Rule.Create(ctx)
		keys := make([]string, 0, len(handlers))
		for key := range handlers {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			sels, err := parseSelector(key)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %s: %w", ErrInvalidSelector, cfg.Rule.Name, err)
			}
			for _, sel := range sels {
				d.add(entry{handler: wrapHandler(&current, ctx, handlers[key]), order: order, selector: sel})
			}
			order++
		}
	}
	d.sort()

	parser.Traverse(file.Root(), func(n *sitter.Node) bool {
		if n.IsNamed() {
			fire(n, d.enter[n.Type()], d.enterAll)
		}
		return true
	}, func(n *sitter.Node) {
		if n.IsNamed() {
			fire(n, d.exit[n.Type()], d.exitAll)
		}
	})

	dirs := parseDirectives(file)
	for _, ctx := range contexts {
		for _, f := range ctx.findings {
			if dirs.suppressed(f.Rule, f.Location.StartLine) {
				continue
			}
			findings = append(findings, f)
		}
	}

	report := domain.FileReport{Findings: findings}
	report.SortFindings()
	return report.Findings, nil
}

func wrapHandler(current *string, ctx *Context, h Handler) Handler {
	return func(n *sitter.Node) {
		*current = ctx.rule.Name
		h(n)
	}
}
