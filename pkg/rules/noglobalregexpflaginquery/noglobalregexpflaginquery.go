// Package noglobalregexpflaginquery reports regular expressions with the
// g flag passed to queries, whose lastIndex state breaks repeated matching.
package noglobalregexpflaginquery

import (
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
	Name = "no-global-regexp-flag-in-query"

	MessageNoGlobalRegExpFlagInQuery = "noGlobalRegExpFlagInQuery"
)

const nameOption = "name"

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow the use of the global RegExp flag (/g) in queries",
		Fixable:     true,
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeSuggestion,
	},
	Messages: map[string]string{
		MessageNoGlobalRegExpFlagInQuery: "Avoid using the global RegExp flag (/g) in queries",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func hasGlobalFlag(n *sitter.Node, src []byte) bool {
	if !nodes.IsRegex(n) {
		return false
	}
	return strings.Contains(parser.GetNodeText(n.ChildByFieldName("flags"), src), "g")
}

// WithoutGlobalFlag drops the first g from the flags of a regex literal.
func WithoutGlobalFlag(raw string) string {
	i := strings.LastIndex(raw, "/")
	if i < 0 {
		return raw
	}
	return raw[:i+1] + strings.Replace(raw[i+1:], "g", "", 1)
}

func queryArguments(id *sitter.Node) []*sitter.Node {
	parent := id.Parent()
	if nodes.IsCallExpression(parent) {
		return nodes.Arguments(parent)
	}
	if nodes.IsMemberExpression(parent) && nodes.IsCallExpression(parent.Parent()) {
		return nodes.Arguments(parent.Parent())
	}
	return nil
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()
	globalRegexps := make(map[string]*sitter.Node)

	report := func(n *sitter.Node) bool {
		if !hasGlobalFlag(n, src) {
			return false
		}
		ctx.Report(engine.Descriptor{
			Node:      n,
			MessageID: MessageNoGlobalRegExpFlagInQuery,
			Fix: func(f *engine.Fixer) []domain.TextEdit {
				return []domain.TextEdit{f.Replace(n, WithoutGlobalFlag(ctx.Text(n)))}
			},
		})
		return true
	}

	nameOf := func(options *sitter.Node) *sitter.Node {
		for _, prop := range parser.NamedChildren(options) {
			if prop.Type() == "pair" && nodes.HasName(prop.ChildByFieldName("key"), src, nameOption) {
				return prop.ChildByFieldName("value")
			}
		}
		return nil
	}

	return engine.Handlers{
		"variable_declarator": func(n *sitter.Node) {
			target := n.ChildByFieldName("name")
			if value := n.ChildByFieldName("value"); nodes.IsIdentifier(target) && hasGlobalFlag(value, src) {
				globalRegexps[ctx.Text(target)] = value
			}
		},
		"call_expression": func(n *sitter.Node) {
			id := nodes.GetDeepestIdentifier(n)
			if id == nil || !h.IsQuery(id) {
				return
			}
			args := queryArguments(id)
			if len(args) == 0 || report(args[0]) {
				return
			}
			if nodes.IsIdentifier(args[0]) {
				if literal, ok := globalRegexps[ctx.Text(args[0])]; ok {
					report(literal)
				}
			}
			if len(args) > 1 && nodes.IsObject(args[1]) {
				if value := nameOf(args[1]); value != nil {
					report(value)
				}
			}
		},
	}
}
