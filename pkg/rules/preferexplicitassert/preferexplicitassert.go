// Package preferexplicitassert reports getBy* and findBy* queries used as
// bare statements instead of being wrapped in expect.
package preferexplicitassert

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "prefer-explicit-assert"

	MessagePreferExplicitAssert          = "preferExplicitAssert"
	MessagePreferExplicitAssertAssertion = "preferExplicitAssertAssertion"
)

type Options struct {
	// Assertion, when set, is the matcher getBy* presence checks must use.
	Assertion          string `yaml:"assertion"`
	IncludeFindQueries bool   `yaml:"includeFindQueries"`
}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Suggest using explicit assertions rather than standalone queries",
		Type:        engine.RuleTypeSuggestion,
	},
	Messages: map[string]string{
		MessagePreferExplicitAssert:          "Wrap stand-alone `{{queryType}}` query with `expect` function for better explicit assertion",
		MessagePreferExplicitAssertAssertion: "`getBy*` queries must be asserted with `{{assertion}}`",
	},
	DefaultOptions: Options{IncludeFindQueries: true},
	Validate:       validate,
	Create:         create,
})

func init() {
	rules.Register(Rule)
}

func validate(opts Options) error {
	if opts.Assertion == "" {
		return nil
	}
	if !vocab.Contains(vocab.PresenceMatchers, opts.Assertion) && !vocab.Contains(vocab.AbsenceMatchers, opts.Assertion) {
		return fmt.Errorf("assertion: unknown matcher %q", opts.Assertion)
	}
	return nil
}

// isAtTopLevel matches q() and await q() as whole expression statements,
// where n is the callee of q.
func isAtTopLevel(n *sitter.Node) bool {
	call := n.Parent()
	if !nodes.IsCallExpression(call) || call.Parent() == nil {
		return false
	}
	parent := call.Parent()
	if nodes.IsAwaitExpression(parent) {
		parent = parent.Parent()
	}
	return nodes.IsExpressionStatement(parent)
}

func create(ctx *engine.Context, opts Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()
	var getQueries, findQueries []*sitter.Node

	// calleeOf returns the member expression of screen.q or q itself.
	calleeOf := func(id *sitter.Node) *sitter.Node {
		if parent := id.Parent(); nodes.IsMemberExpression(parent) {
			return parent
		}
		return id
	}

	checkAssertion := func(callee *sitter.Node) {
		expectCall := nodes.FindClosestCallNode(callee, src, vocab.ExpectName)
		if expectCall == nil {
			return
		}
		assertion := expectCall.Parent()
		info, ok := h.GetAssertNodeInfo(assertion)
		if !ok {
			return
		}
		property := nodes.MemberProperty(assertion)
		enforced := !info.Negated && vocab.Contains(vocab.PresenceMatchers, info.Matcher)
		if info.Negated {
			property = nodes.MemberProperty(assertion.Parent())
			enforced = vocab.Contains(vocab.AbsenceMatchers, info.Matcher)
		}
		if enforced && info.Matcher != opts.Assertion {
			ctx.Report(engine.Descriptor{
				Node:      property,
				MessageID: MessagePreferExplicitAssertAssertion,
				Data:      map[string]string{"assertion": opts.Assertion},
			})
		}
	}

	return engine.Handlers{
		"call_expression identifier, call_expression property_identifier": func(n *sitter.Node) {
			switch {
			case h.IsGetQueryVariant(n):
				getQueries = append(getQueries, n)
			case h.IsFindQueryVariant(n):
				findQueries = append(findQueries, n)
			}
		},
		"program:exit": func(*sitter.Node) {
			if opts.IncludeFindQueries {
				for _, q := range findQueries {
					if isAtTopLevel(calleeOf(q)) {
						ctx.Report(engine.Descriptor{
							Node:      q,
							MessageID: MessagePreferExplicitAssert,
							Data:      map[string]string{"queryType": "findBy*"},
						})
					}
				}
			}
			for _, q := range getQueries {
				callee := calleeOf(q)
				if isAtTopLevel(callee) {
					ctx.Report(engine.Descriptor{
						Node:      q,
						MessageID: MessagePreferExplicitAssert,
						Data:      map[string]string{"queryType": "getBy*"},
					})
				}
				if opts.Assertion != "" {
					checkAssertion(callee)
				}
			}
		},
	}
}
