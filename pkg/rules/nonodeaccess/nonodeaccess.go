// Package nonodeaccess reports direct DOM traversal and event methods
// called on nodes, in files that import Testing Library.
package nonodeaccess

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
	Name = "no-node-access"

	MessageNoNodeAccess = "noNodeAccess"
)

const (
	firstChildProperty = "firstChild"
	propsName          = "props"
)

var returningNodes = append(append([]string{}, vocab.PropertiesReturningNodes...), vocab.MethodsReturningNodes...)

type Options struct {
	AllowContainerFirstChild bool `yaml:"allowContainerFirstChild"`
}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow direct Node access",
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageNoNodeAccess: "Avoid direct Node access. Prefer using the methods from Testing Library.",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func inStatementOrDeclarator(n *sitter.Node) bool {
	return nodes.FindAncestor(n, func(a *sitter.Node) bool {
		return nodes.IsExpressionStatement(a) || nodes.IsVariableDeclarator(a)
	}) != nil
}

func create(ctx *engine.Context, opts Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()

	report := func(property *sitter.Node) {
		ctx.Report(engine.Descriptor{Node: property, MessageID: MessageNoNodeAccess})
	}

	// isLibraryObject matches userEvent, fireEvent, setup instances and
	// other bindings imported from the library.
	isLibraryObject := func(object *sitter.Node) bool {
		if !nodes.IsIdentifier(object) {
			return false
		}
		if h.IsUserEventUtil(object) || h.IsFireEventUtil(object) || h.IsUserEventSession(ctx.Text(object)) {
			return true
		}
		_, ok := h.FindImportedUtilSpecifier(object)
		return ok
	}

	return engine.Handlers{
		"member_expression": func(n *sitter.Node) {
			if !h.IsTestingLibraryImported(true) || !inStatementOrDeclarator(n) {
				return
			}
			property := nodes.MemberProperty(n)
			name := nodes.Name(property, src)
			if !vocab.Contains(returningNodes, name) {
				return
			}
			if opts.AllowContainerFirstChild && name == firstChildProperty {
				return
			}
			if nodes.HasName(nodes.MemberObject(n), src, propsName) {
				return
			}
			report(property)
		},
		"call_expression": func(n *sitter.Node) {
			if !h.IsTestingLibraryImported(true) {
				return
			}
			callee := nodes.Callee(n)
			if !nodes.IsMemberExpression(callee) || !vocab.Contains(vocab.EventHandlerMethods, nodes.PropertyName(callee, src)) {
				return
			}
			if isLibraryObject(nodes.MemberObject(callee)) {
				return
			}
			report(nodes.MemberProperty(callee))
		},
	}
}
