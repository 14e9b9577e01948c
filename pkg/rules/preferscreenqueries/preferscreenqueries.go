// Package preferscreenqueries suggests screen.* queries over queries taken
// from a render result.
package preferscreenqueries

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "prefer-screen-queries"

	MessagePreferScreenQueries = "preferScreenQueries"
)

// renderOptionsForDestructuring are the render options that bind queries
// to a custom root, which screen cannot replace.
var renderOptionsForDestructuring = []string{"container", "baseElement"}

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Suggest using `screen` while querying",
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeSuggestion,
	},
	Messages: map[string]string{
		MessagePreferScreenQueries: "Avoid destructuring queries from `render` result, use `screen.{{name}}` instead",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()
	// safeQueries are query names destructured from something other than a
	// plain render call.
	safeQueries := make(map[string]bool)
	// allowedObjects may be queried directly.
	allowedObjects := map[string]bool{vocab.ScreenName: true}

	usesRenderOptions := func(call *sitter.Node) bool {
		args := nodes.Arguments(call)
		if len(args) < 2 || !nodes.IsObject(args[1]) {
			return false
		}
		for _, prop := range parser.NamedChildren(args[1]) {
			var key *sitter.Node
			switch prop.Type() {
			case "pair":
				key = prop.ChildByFieldName("key")
			case "shorthand_property_identifier":
				key = prop
			}
			if key != nil && vocab.Contains(renderOptionsForDestructuring, parser.GetNodeText(key, src)) {
				return true
			}
		}
		return false
	}

	saveDestructuredQueries := func(pattern *sitter.Node) {
		for key := range nodes.DestructuredNames(pattern, src) {
			if vocab.IsBuiltInQuery(key) {
				safeQueries[key] = true
			}
		}
	}

	report := func(id *sitter.Node) {
		ctx.Report(engine.Descriptor{
			Node:      id,
			MessageID: MessagePreferScreenQueries,
			Data:      map[string]string{"name": ctx.Text(id)},
		})
	}

	return engine.Handlers{
		"variable_declarator": func(n *sitter.Node) {
			value := n.ChildByFieldName("value")
			callee := nodes.Callee(value)
			if !nodes.IsIdentifier(callee) {
				return
			}
			target := n.ChildByFieldName("name")
			isRender := h.IsRenderUtil(callee)
			if !isRender {
				saveDestructuredQueries(target)
			}

			isWithin := ctx.Text(callee) == vocab.WithinName
			if !isWithin && !(isRender && usesRenderOptions(value)) {
				return
			}
			switch {
			case nodes.IsObjectPattern(target):
				saveDestructuredQueries(target)
			case nodes.IsIdentifier(target):
				allowedObjects[ctx.Text(target)] = true
			}
		},
		"call_expression": func(n *sitter.Node) {
			id := nodes.GetDeepestIdentifier(n)
			if id == nil || !h.IsBuiltInQuery(id) {
				return
			}

			member := id.Parent()
			if !nodes.IsMemberExpression(member) {
				if !safeQueries[ctx.Text(id)] {
					report(id)
				}
				return
			}

			object := nodes.MemberObject(member)
			if nodes.IsCallExpression(object) {
				callee := nodes.Callee(object)
				if nodes.IsIdentifier(callee) && ctx.Text(callee) != vocab.WithinName && h.IsRenderUtil(callee) && !usesRenderOptions(object) {
					report(id)
				}
				return
			}
			if nodes.IsIdentifier(object) && !allowedObjects[ctx.Text(object)] {
				report(id)
			}
		},
	}
}
