// Package preferfindby suggests findBy* queries over waiting for a sync
// query to succeed.
package preferfindby

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
)

const (
	Name = "prefer-find-by"

	MessagePreferFindBy = "preferFindBy"
)

var (
	waitMethods = []string{"waitFor", "waitForElement", "wait"}

	destructuringEnd = regexp.MustCompile(`(\s*})$`)
)

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Suggest using `find(All)By*` query instead of `waitFor` + `get(All)By*` to wait for elements",
		Fixable:     true,
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeSuggestion,
	},
	Messages: map[string]string{
		MessagePreferFindBy: "Prefer `{{queryVariant}}{{queryMethod}}` query over using `{{waitForMethodName}}` + `{{prevQuery}}`",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

// waitedQuery is the sync query a wait callback polls for.
type waitedQuery struct {
	call *sitter.Node
	id   *sitter.Node
	// caller is the object the query is called on, empty for bare queries.
	caller string
}

// FindByVariant returns the findBy prefix matching the arity of query.
func FindByVariant(query string) string {
	if strings.Contains(query, "All") {
		return "findAllBy"
	}
	return "findBy"
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()

	// queryFrom matches q(...), obj.q(...) and the same calls asserted for
	// presence through expect(...).
	var queryFrom func(call *sitter.Node) (waitedQuery, bool)
	queryFrom = func(call *sitter.Node) (waitedQuery, bool) {
		callee := nodes.Callee(call)
		switch {
		case nodes.IsIdentifier(callee):
			return waitedQuery{call: call, id: callee}, h.IsSyncQuery(callee)
		case !nodes.IsMemberExpression(callee):
			return waitedQuery{}, false
		}

		object := nodes.MemberObject(callee)
		if nodes.IsIdentifier(object) {
			prop := nodes.MemberProperty(callee)
			return waitedQuery{call: call, id: prop, caller: ctx.Text(object)}, h.IsSyncQuery(prop)
		}

		assertion := callee
		if nodes.IsMemberExpression(object) {
			assertion = object
		}
		if !h.IsPresenceAssert(assertion) {
			return waitedQuery{}, false
		}
		inner := nodes.FirstArgument(nodes.MemberObject(assertion))
		if !nodes.IsCallExpression(inner) {
			return waitedQuery{}, false
		}
		return queryFrom(inner)
	}

	// destructuringOf returns the object pattern declaring local in a scope
	// visible from n.
	destructuringOf := func(n *sitter.Node, local string) *sitter.Node {
		var found *sitter.Node
		parser.WalkTree(ctx.Root(), func(d *sitter.Node) bool {
			if d.StartByte() > n.StartByte() {
				return false
			}
			if !nodes.IsVariableDeclarator(d) {
				return true
			}
			pattern := d.ChildByFieldName("name")
			names := nodes.DestructuredNames(pattern, src)
			for _, v := range names {
				if v != local {
					continue
				}
				scope := nodes.InnermostFunctionScope(d)
				if scope == nil || nodes.IsDescendant(n, scope) {
					found = pattern
				}
			}
			return true
		})
		return found
	}

	return engine.Handlers{
		"await_expression > call_expression": func(n *sitter.Node) {
			callee := nodes.Callee(n)
			if !nodes.IsIdentifier(callee) || !h.IsAsyncUtil(callee, waitMethods...) {
				return
			}
			callback := nodes.FirstArgument(n)
			if !nodes.IsArrowFunction(callback) {
				return
			}
			body := callback.ChildByFieldName("body")
			if !nodes.IsCallExpression(body) {
				return
			}
			q, ok := queryFrom(body)
			if !ok {
				return
			}

			prevQuery := ctx.Text(q.id)
			_, queryMethod, found := strings.Cut(prevQuery, "By")
			if !found || queryMethod == "" {
				return
			}
			variant := FindByVariant(prevQuery)
			findBy := variant + queryMethod

			ctx.Report(engine.Descriptor{
				Node:      n,
				MessageID: MessagePreferFindBy,
				Data: map[string]string{
					"prevQuery":         prevQuery,
					"queryMethod":       queryMethod,
					"queryVariant":      variant,
					"waitForMethodName": ctx.Text(callee),
				},
				Fix: func(f *engine.Fixer) []domain.TextEdit {
					if h.IsCustomQuery(q.id) {
						return nil
					}
					var args []string
					for _, arg := range nodes.Arguments(q.call) {
						args = append(args, ctx.Text(arg))
					}
					if waitArgs := nodes.Arguments(n); len(waitArgs) > 1 && nodes.IsObject(waitArgs[1]) {
						args = append(args, ctx.Text(waitArgs[1]))
					}
					replacement := findBy + "(" + strings.Join(args, ", ") + ")"
					if q.caller != "" {
						return []domain.TextEdit{f.Replace(n, q.caller+"."+replacement)}
					}

					edits := []domain.TextEdit{f.Replace(n, replacement)}
					pattern := destructuringOf(n, prevQuery)
					if pattern == nil {
						return edits
					}
					if _, declared := nodes.DestructuredNames(pattern, src)[findBy]; declared {
						return edits
					}
					text := destructuringEnd.ReplaceAllString(ctx.Text(pattern), ", "+findBy+"$1")
					return append(edits, f.Replace(pattern, text))
				},
			})
		},
	}
}
