// Package nowaitforsideeffects reports events and renders performed inside
// a waitFor callback, which would run again on every retry.
package nowaitforsideeffects

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/analysis/waitfor"
	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "no-wait-for-side-effects"

	MessageNoSideEffectsWaitFor = "noSideEffectsWaitFor"
)

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow the use of side effects in `waitFor`",
		Fixable:     true,
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeSuggestion,
	},
	Messages: map[string]string{
		MessageNoSideEffectsWaitFor: "Avoid using side effects within `waitFor` callback",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()

	return engine.Handlers{
		"call_expression": func(call *sitter.Node) {
			if !h.IsAsyncUtil(waitfor.WaitIdentifier(call, src), vocab.WaitForName) {
				return
			}
			callback := waitfor.Callback(call)
			if callback == nil {
				return
			}

			block := waitfor.Body(callback)
			if block == nil {
				reportImplicitReturn(ctx, h, nodes.FunctionBody(callback))
				return
			}
			for _, stmt := range waitfor.Classify(h, block) {
				if stmt.Role != waitfor.RoleSideEffect {
					continue
				}
				sideEffect := stmt.Node
				ctx.Report(engine.Descriptor{
					Node:      sideEffect,
					MessageID: MessageNoSideEffectsWaitFor,
					Fix: func(f *engine.Fixer) []domain.TextEdit {
						return waitfor.HoistFix(f, call, sideEffect)
					},
				})
			}
		},
	}
}

// reportImplicitReturn handles concise arrow bodies. There is no statement
// to hoist, so these findings carry no fix.
func reportImplicitReturn(ctx *engine.Context, h *detection.Helpers, body *sitter.Node) {
	body = nodes.Unparen(body)
	candidates := []*sitter.Node{body}
	if nodes.IsSequence(body) {
		candidates = parser.NamedChildren(body)
	}
	for _, expr := range candidates {
		if waitfor.IsSideEffect(h, expr) {
			ctx.Report(engine.Descriptor{Node: body, MessageID: MessageNoSideEffectsWaitFor})
			return
		}
	}
}
