// Package nowaitforsnapshot reports snapshot matchers used inside wait
// utilities.
package nowaitforsnapshot

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
	Name = "no-wait-for-snapshot"

	MessageNoWaitForSnapshot = "noWaitForSnapshot"
)

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Ensures no snapshot is generated inside of a `waitFor` call",
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageNoWaitForSnapshot: "A snapshot can't be generated inside of a `{{name}}` call",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()

	// closestAsyncUtil climbs the enclosing calls of n and returns the
	// identifier of the first one calling an async util.
	closestAsyncUtil := func(n *sitter.Node) *sitter.Node {
		call := nodes.FindClosestCallExpression(n, false)
		for depth := 0; call != nil && depth < nodes.MaxAncestorDepth; depth++ {
			callee := nodes.Callee(call)
			if nodes.IsMemberExpression(callee) {
				callee = nodes.MemberProperty(callee)
			}
			if nodes.IsIdentifier(callee) && h.IsAsyncUtil(callee) {
				return callee
			}
			call = nodes.FindClosestCallExpression(call.Parent(), false)
		}
		return nil
	}

	return engine.Handlers{
		"property_identifier": func(n *sitter.Node) {
			if !vocab.Contains(vocab.SnapshotMatchers, nodes.Name(n, src)) {
				return
			}
			util := closestAsyncUtil(n)
			if util == nil {
				return
			}
			ctx.Report(engine.Descriptor{
				Node:      n,
				MessageID: MessageNoWaitForSnapshot,
				Data:      map[string]string{"name": ctx.Text(util)},
			})
		},
	}
}
