// Package nocontainer reports DOM queries through the container returned
// by render.
package nocontainer

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/analysis/promise"
	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "no-container"

	MessageNoContainer = "noContainer"
)

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow the use of `container` methods",
		Recommended: rules.AllButDOM(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageNoContainer: "Avoid using container methods. Prefer using the methods from the 'screen' object",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

type tracker struct {
	ctx *engine.Context
	h   *detection.Helpers
	src []byte

	renderWrappers map[string]bool
	// containerMethods are container properties destructured into locals.
	containerMethods map[string]bool
	containerName    string
	renderResultName string
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	t := &tracker{
		ctx:              ctx,
		h:                h,
		src:              ctx.Source(),
		renderWrappers:   make(map[string]bool),
		containerMethods: make(map[string]bool),
	}
	return engine.Handlers{
		"call_expression":     t.onCall,
		"variable_declarator": t.onDeclarator,
	}
}

func (t *tracker) report(n *sitter.Node) {
	t.ctx.Report(engine.Descriptor{Node: n, MessageID: MessageNoContainer})
}

func (t *tracker) onCall(n *sitter.Node) {
	id := nodes.GetDeepestIdentifier(n)
	if id == nil {
		return
	}
	if t.h.IsRenderUtil(id) {
		if fn := promise.InnermostReturningFunction(id, t.src); fn != nil {
			if name := nodes.FunctionName(fn, t.src); name != "" {
				t.renderWrappers[name] = true
			}
		}
	}

	callee := nodes.Callee(n)
	switch {
	case nodes.IsMemberExpression(callee):
		t.checkChain(callee)
	case nodes.IsIdentifier(callee) && t.containerMethods[t.ctx.Text(callee)]:
		t.report(n)
	}
}

// checkChain walks the objects of member down to its root, reporting
// access through the container binding or through result.container.
func (t *tracker) checkChain(member *sitter.Node) {
	for depth := 0; nodes.IsMemberExpression(member) && depth < nodes.MaxAncestorDepth; depth++ {
		object := nodes.MemberObject(member)
		if nodes.IsIdentifier(object) {
			name := t.ctx.Text(object)
			if t.containerName != "" && name == t.containerName {
				t.report(member)
				return
			}
			if t.renderResultName != "" && name == t.renderResultName && nodes.PropertyName(member, t.src) == vocab.ContainerProperty {
				t.report(nodes.MemberProperty(member))
			}
		}
		member = object
	}
}

func (t *tracker) onDeclarator(n *sitter.Node) {
	init := nodes.GetDeepestIdentifier(n.ChildByFieldName("value"))
	if init == nil {
		return
	}
	if !t.h.IsRenderVariableDeclarator(n) && !t.renderWrappers[t.ctx.Text(init)] {
		return
	}

	target := n.ChildByFieldName("name")
	if nodes.IsIdentifier(target) {
		t.renderResultName = t.ctx.Text(target)
		return
	}
	for _, prop := range parser.NamedChildren(target) {
		switch prop.Type() {
		case "shorthand_property_identifier_pattern":
			if t.ctx.Text(prop) == vocab.ContainerProperty {
				t.containerName = vocab.ContainerProperty
			}
		case "pair_pattern":
			if t.ctx.Text(prop.ChildByFieldName("key")) != vocab.ContainerProperty {
				continue
			}
			value := prop.ChildByFieldName("value")
			switch {
			case nodes.IsIdentifier(value):
				t.containerName = t.ctx.Text(value)
			case nodes.IsObjectPattern(value):
				for key := range nodes.DestructuredNames(value, t.src) {
					t.containerMethods[key] = true
				}
			}
		}
	}
}
