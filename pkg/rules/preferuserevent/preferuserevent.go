// Package preferuserevent suggests userEvent over fireEvent for the events
// userEvent simulates more realistically.
package preferuserevent

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "prefer-user-event"

	MessagePreferUserEvent = "preferUserEvent"
)

// Options lists fireEvent methods that are allowed anyway.
type Options struct {
	AllowedMethods []string `yaml:"allowedMethods"`
}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Suggest using `userEvent` over `fireEvent` for simulating user interactions",
		Type:        engine.RuleTypeSuggestion,
	},
	Messages: map[string]string{
		MessagePreferUserEvent: "Prefer using {{userEventMethods}} over fireEvent.{{fireEventMethod}}()",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

// userEventMethods renders the alternatives of a fireEvent method as
// "userEvent.a, userEvent.b, or userEvent.c".
func userEventMethods(fireEventMethod string) string {
	methods := vocab.UserEventEquivalents[fireEventMethod]
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = vocab.UserEventName + "." + m
	}
	if len(names) < 2 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}

func create(ctx *engine.Context, opts Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()
	// createEventVariables maps variables holding createEvent results to
	// the event they create.
	createEventVariables := make(map[string]string)

	isAllowed := func(method string) bool {
		_, mapped := vocab.UserEventEquivalents[method]
		return !mapped || vocab.Contains(opts.AllowedMethods, method)
	}

	// createdEvent returns the event type of createEvent('click', el) or
	// createEvent.click(el).
	createdEvent := func(call *sitter.Node) string {
		callee := nodes.Callee(call)
		if nodes.IsMemberExpression(callee) {
			return nodes.PropertyName(callee, src)
		}
		value, _ := nodes.StringValue(nodes.FirstArgument(call), src)
		return value
	}

	eventName := func(call, id *sitter.Node) string {
		if nodes.IsMemberExpression(nodes.Callee(call)) && !nodes.HasName(id, src, vocab.FireEventName) {
			return ctx.Text(id)
		}
		args := nodes.Arguments(call)
		if len(args) < 2 {
			return ctx.Text(id)
		}
		second := args[1]
		if event, ok := createEventVariables[nodes.Name(second, src)]; ok && nodes.IsIdentifier(second) {
			return event
		}
		if !nodes.IsCallExpression(second) || !h.IsCreateEventUtil(second) {
			return ctx.Text(id)
		}
		return createdEvent(second)
	}

	return engine.Handlers{
		"call_expression identifier, call_expression property_identifier": func(n *sitter.Node) {
			if !h.IsFireEventMethod(n) {
				return
			}
			call := nodes.FindClosestCallExpression(n, true)
			if call == nil {
				return
			}
			method := eventName(call, n)
			if method == "" || isAllowed(method) {
				return
			}
			ctx.Report(engine.Descriptor{
				Node:      nodes.Callee(call),
				MessageID: MessagePreferUserEvent,
				Data: map[string]string{
					"fireEventMethod":  method,
					"userEventMethods": userEventMethods(method),
				},
			})
		},
		"variable_declarator": func(n *sitter.Node) {
			value := n.ChildByFieldName("value")
			target := n.ChildByFieldName("name")
			if !nodes.IsCallExpression(value) || !h.IsCreateEventUtil(value) || !nodes.IsIdentifier(target) {
				return
			}
			if event := createdEvent(value); !isAllowed(event) {
				createEventVariables[nodes.Name(target, src)] = event
			}
		},
	}
}
