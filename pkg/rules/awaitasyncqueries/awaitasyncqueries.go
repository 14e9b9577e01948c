// Package awaitasyncqueries reports findBy* queries whose promise is not
// handled, including calls of functions wrapping them.
package awaitasyncqueries

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/analysis/promise"
	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
)

const (
	Name = "await-async-queries"

	MessageAwaitAsyncQuery   = "awaitAsyncQuery"
	MessageAsyncQueryWrapper = "asyncQueryWrapper"
)

// Options is empty; the rule takes no options.
type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Enforce promises from async queries to be handled",
		Fixable:     true,
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageAwaitAsyncQuery:   "promise returned from `{{name}}` query must be handled",
		MessageAsyncQueryWrapper: "promise returned from `{{name}}` wrapper over async query must be handled",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()
	checker := promise.NewChecker(src)
	wrappers := promise.NewWrappers(src)
	marker := promise.NewAsyncMarker()

	return engine.Handlers{
		"call_expression": func(n *sitter.Node) {
			id := nodes.GetDeepestIdentifier(n)
			if id == nil {
				return
			}
			name := ctx.Text(id)
			data := map[string]string{"name": name}

			if h.IsAsyncQuery(id) {
				wrappers.Detect(id)
				res := checker.Check(ctx, id)
				if res.Handled {
					return
				}
				if !res.Stored {
					ctx.Report(engine.Descriptor{
						Node:      id,
						MessageID: MessageAwaitAsyncQuery,
						Data:      data,
						Fix: func(f *engine.Fixer) []domain.TextEdit {
							return promise.AwaitFix(f, promise.AwaitTarget(id), nil)
						},
					})
					return
				}
				ctx.Report(engine.Descriptor{
					Node:      id,
					MessageID: MessageAwaitAsyncQuery,
					Data:      data,
					Fix: func(f *engine.Fixer) []domain.TextEdit {
						edits := make([]domain.TextEdit, 0, len(res.Unhandled))
						for _, ref := range res.Unhandled {
							edits = append(edits, f.InsertBefore(ref, "await "))
						}
						return edits
					},
				})
				return
			}

			if wrappers.Has(name) && !checker.IsHandled(id) {
				ctx.Report(engine.Descriptor{
					Node:      id,
					MessageID: MessageAsyncQueryWrapper,
					Data:      data,
					Fix: func(f *engine.Fixer) []domain.TextEdit {
						return promise.AwaitFix(f, promise.AwaitTarget(id), marker)
					},
				})
			}
		},
	}
}
