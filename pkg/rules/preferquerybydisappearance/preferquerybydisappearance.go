// Package preferquerybydisappearance reports getBy* and findBy* queries
// passed to waitForElementToBeRemoved, which throw instead of resolving.
package preferquerybydisappearance

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
	Name = "prefer-query-by-disappearance"

	MessagePreferQueryByDisappearance = "preferQueryByDisappearance"
)

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Suggest using `queryBy*` queries when waiting for disappearance",
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessagePreferQueryByDisappearance: "Prefer using queryBy* when waiting for disappearance",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	// throwingQuery reports whether expr calls a getBy* or findBy* query
	// directly or as a method.
	throwingQuery := func(expr *sitter.Node) bool {
		if !nodes.IsCallExpression(expr) {
			return false
		}
		callee := nodes.Callee(expr)
		var id *sitter.Node
		if nodes.IsMemberExpression(callee) {
			id = nodes.MemberProperty(callee)
		} else {
			id = nodes.GetPropertyIdentifier(callee)
		}
		return id != nil && (h.IsGetQueryVariant(id) || h.IsFindQueryVariant(id))
	}

	statementQueries := func(stmt *sitter.Node) bool {
		switch {
		case nodes.IsReturnStatement(stmt), nodes.IsExpressionStatement(stmt):
			return throwingQuery(nodes.Inner(stmt))
		}
		return false
	}

	callbackQueries := func(arg *sitter.Node) bool {
		if !nodes.IsFunction(arg) || nodes.IsFunctionDeclaration(arg) {
			return false
		}
		body := nodes.FunctionBody(arg)
		if !nodes.IsBlockStatement(body) {
			return nodes.IsArrowFunction(arg) && throwingQuery(body)
		}
		for _, stmt := range nodes.Statements(body) {
			if statementQueries(stmt) {
				return true
			}
		}
		return false
	}

	return engine.Handlers{
		"call_expression": func(n *sitter.Node) {
			id := nodes.GetDeepestIdentifier(nodes.Callee(n))
			if !h.IsAsyncUtil(id, vocab.WaitForRemovedName) {
				return
			}
			arg := nodes.FirstArgument(n)
			if arg == nil || !(throwingQuery(arg) || callbackQueries(arg)) {
				return
			}
			ctx.Report(engine.Descriptor{Node: arg, MessageID: MessagePreferQueryByDisappearance})
		},
	}
}
