// Package nowaitforemptycallback reports wait utilities called with an
// empty callback or noop.
package nowaitforemptycallback

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/analysis/waitfor"
	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "no-wait-for-empty-callback"

	MessageNoWaitForEmptyCallback = "noWaitForEmptyCallback"
)

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow empty callbacks for `waitFor` and `waitForElementToBeRemoved`",
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeSuggestion,
	},
	Messages: map[string]string{
		MessageNoWaitForEmptyCallback: "Avoid passing empty callback to `{{methodName}}`. Insert an assertion instead.",
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
			id := waitfor.WaitIdentifier(call, src)
			if !h.IsAsyncUtil(id, vocab.WaitForName, vocab.WaitForRemovedName) {
				return
			}
			arg := nodes.FirstArgument(call)
			if arg == nil || !waitfor.IsEmptyCallback(arg, src) {
				return
			}
			node := arg
			if body := nodes.FunctionBody(arg); body != nil {
				node = body
			}
			ctx.Report(engine.Descriptor{
				Node:      node,
				MessageID: MessageNoWaitForEmptyCallback,
				Data:      map[string]string{"methodName": ctx.Text(id)},
			})
		},
	}
}
