// Package notestidqueries reports *ByTestId queries.
package notestidqueries

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "no-test-id-queries"

	MessageNoTestIDQueries = "noTestIdQueries"
)

var testIDQuery = regexp.MustCompile(`^(` + strings.Join(vocab.AllQueryVariants, "|") + `)TestId$`)

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Ensure no `data-testid` queries are used",
		Type:        engine.RuleTypeSuggestion,
	},
	Messages: map[string]string{
		MessageNoTestIDQueries: "Using `{{queryName}}` is not recommended. Use a more descriptive query instead.",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, _ Options, _ *detection.Helpers) engine.Handlers {
	return engine.Handlers{
		"call_expression": func(n *sitter.Node) {
			callee := nodes.Callee(n)
			var id *sitter.Node
			switch {
			case nodes.IsIdentifier(callee):
				id = callee
			case nodes.IsMemberExpression(callee):
				id = nodes.MemberProperty(callee)
			default:
				return
			}
			name := ctx.Text(id)
			if !testIDQuery.MatchString(name) {
				return
			}
			ctx.Report(engine.Descriptor{
				Node:      n,
				MessageID: MessageNoTestIDQueries,
				Data:      map[string]string{"queryName": name},
			})
		},
	}
}
