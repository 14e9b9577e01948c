// Package nopromiseinfireevent reports promises passed as the element of
// a fireEvent call.
package nopromiseinfireevent

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "no-promise-in-fire-event"

	MessageNoPromiseInFireEvent = "noPromiseInFireEvent"
)

// maxAliasDepth bounds the resolution of const a = b chains.
const maxAliasDepth = 8

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow the use of promises passed to a `fireEvent` method",
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageNoPromiseInFireEvent: "A promise shouldn't be passed to a `fireEvent` method, instead pass the DOM element",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()
	// initializers holds the value each declared name was initialized with.
	initializers := make(map[string]*sitter.Node)

	var check func(n, reported *sitter.Node, depth int)
	check = func(n, reported *sitter.Node, depth int) {
		if n == nil || depth > maxAliasDepth {
			return
		}
		if reported == nil {
			reported = n
		}
		switch {
		case nodes.IsAwaitExpression(n):
		case nodes.IsNewExpression(n):
			if nodes.HasName(n.ChildByFieldName("constructor"), src, vocab.PromiseName) {
				ctx.Report(engine.Descriptor{Node: reported, MessageID: MessageNoPromiseInFireEvent})
			}
		case nodes.IsCallExpression(n):
			id := nodes.GetDeepestIdentifier(n)
			if id != nil && (h.IsAsyncQuery(id) || nodes.HasName(id, src, vocab.PromiseName)) {
				ctx.Report(engine.Descriptor{Node: reported, MessageID: MessageNoPromiseInFireEvent})
			}
		case nodes.IsIdentifier(n):
			check(initializers[ctx.Text(n)], reported, depth+1)
		}
	}

	return engine.Handlers{
		"variable_declarator": func(n *sitter.Node) {
			target := n.ChildByFieldName("name")
			if value := n.ChildByFieldName("value"); value != nil && nodes.IsIdentifier(target) {
				initializers[ctx.Text(target)] = value
			}
		},
		"call_expression identifier, call_expression property_identifier": func(n *sitter.Node) {
			if !h.IsFireEventMethod(n) {
				return
			}
			call := nodes.FindClosestCallExpression(n, true)
			check(nodes.FirstArgument(call), nil, 0)
		},
	}
}
