// Package nowaitformultipleassertions reports repeated assertions on the
// same subject inside a waitFor callback.
package nowaitformultipleassertions

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/analysis/waitfor"
	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "no-wait-for-multiple-assertions"

	MessageNoWaitForMultipleAssertion = "noWaitForMultipleAssertion"
)

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow the use of multiple `expect` calls inside `waitFor`",
		Fixable:     true,
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeSuggestion,
	},
	Messages: map[string]string{
		MessageNoWaitForMultipleAssertion: "Avoid using multiple assertions within `waitFor` callback",
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
			block := waitfor.Body(waitfor.Callback(call))
			if block == nil {
				return
			}
			for _, group := range waitfor.GroupAssertions(src, waitfor.Classify(h, block)) {
				for _, stmt := range group.Statements[1:] {
					duplicate := stmt
					ctx.Report(engine.Descriptor{
						Node:      duplicate,
						MessageID: MessageNoWaitForMultipleAssertion,
						Fix: func(f *engine.Fixer) []domain.TextEdit {
							return waitfor.DuplicateFix(f, call, duplicate)
						},
					})
				}
			}
		},
	}
}
