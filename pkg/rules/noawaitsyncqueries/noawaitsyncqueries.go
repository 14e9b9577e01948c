// Package noawaitsyncqueries reports awaited getBy* and queryBy* queries.
package noawaitsyncqueries

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
)

const (
	Name = "no-await-sync-queries"

	MessageNoAwaitSyncQuery = "noAwaitSyncQuery"
)

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow unnecessary `await` for sync queries",
		Fixable:     true,
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageNoAwaitSyncQuery: "`{{name}}` query is sync so it does not need to be awaited",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	return engine.Handlers{
		"await_expression > call_expression": func(n *sitter.Node) {
			id := nodes.GetDeepestIdentifier(n)
			if id == nil || !h.IsSyncQuery(id) {
				return
			}
			await := n.Parent()
			ctx.Report(engine.Descriptor{
				Node:      id,
				MessageID: MessageNoAwaitSyncQuery,
				Data:      map[string]string{"name": ctx.Text(id)},
				Fix: func(f *engine.Fixer) []domain.TextEdit {
					return []domain.TextEdit{f.RemoveRange(int(await.StartByte()), int(n.StartByte()))}
				},
			})
		},
	}
}
