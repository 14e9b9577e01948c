// Package renderresultnamingconvention enforces that render results are
// destructured or named view or utils.
package renderresultnamingconvention

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/analysis/promise"
	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "render-result-naming-convention"

	MessageRenderResultNamingConvention = "renderResultNamingConvention"
)

var allowedNames = []string{"view", "utils"}

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Enforce a valid naming for return value from `render`",
		Recommended: rules.AllButDOM(domain.SeverityError),
		Type:        engine.RuleTypeSuggestion,
	},
	Messages: map[string]string{
		MessageRenderResultNamingConvention: "`{{renderResultName}}` is not a recommended name for `render` returned value. " +
			"Instead, you should destructure it, or name it using one of: `view`, or `utils`",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()
	renderWrappers := make(map[string]bool)

	return engine.Handlers{
		"call_expression": func(n *sitter.Node) {
			id := nodes.GetDeepestIdentifier(n)
			if id == nil || !h.IsRenderUtil(id) {
				return
			}
			if fn := promise.InnermostReturningFunction(id, src); fn != nil {
				if name := nodes.FunctionName(fn, src); name != "" {
					renderWrappers[name] = true
				}
			}
		},
		"variable_declarator": func(n *sitter.Node) {
			init := nodes.GetDeepestIdentifier(n.ChildByFieldName("value"))
			if init == nil {
				return
			}
			if !h.IsRenderVariableDeclarator(n) && !renderWrappers[ctx.Text(init)] {
				return
			}
			target := n.ChildByFieldName("name")
			if !nodes.IsIdentifier(target) {
				return
			}
			name := ctx.Text(target)
			if vocab.Contains(allowedNames, name) {
				return
			}
			ctx.Report(engine.Descriptor{
				Node:      n,
				MessageID: MessageRenderResultNamingConvention,
				Data:      map[string]string{"renderResultName": name},
			})
		},
	}
}
