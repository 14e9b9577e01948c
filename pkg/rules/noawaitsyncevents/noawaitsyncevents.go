// Package noawaitsyncevents reports awaited event methods that are
// synchronous.
package noawaitsyncevents

import (
	"fmt"
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "no-await-sync-events"

	MessageNoAwaitSyncEvents = "noAwaitSyncEvents"

	FireEventModule = "fire-event"
	UserEventModule = "user-event"

	delayName = "delay"
)

// Options lists the event modules whose methods are treated as sync.
type Options struct {
	EventModules []string `yaml:"eventModules"`
}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow unnecessary `await` for sync events",
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageNoAwaitSyncEvents: "`{{name}}` is sync and does not need to be awaited",
	},
	DefaultOptions: Options{EventModules: []string{FireEventModule}},
	Validate:       validate,
	Create:         create,
})

func init() {
	rules.Register(Rule)
}

func validate(opts Options) error {
	for _, module := range opts.EventModules {
		if module != FireEventModule && module != UserEventModule {
			return fmt.Errorf("eventModules: unknown event module %q", module)
		}
	}
	return nil
}

func create(ctx *engine.Context, opts Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()
	// delayPositive tracks the last literal assigned to a variable named delay.
	delayPositive := false

	return engine.Handlers{
		"lexical_declaration|variable_declaration": func(n *sitter.Node) {
			for _, declarator := range nodes.Declarators(n) {
				if nodes.HasName(declarator.ChildByFieldName("name"), src, delayName) {
					delayPositive = isPositiveNumber(declarator.ChildByFieldName("value"), src)
				}
			}
		},
		"assignment_expression": func(n *sitter.Node) {
			right := n.ChildByFieldName("right")
			if nodes.HasName(n.ChildByFieldName("left"), src, delayName) && right != nil && right.Type() == "number" {
				delayPositive = isPositiveNumber(right, src)
			}
		},
		"await_expression > call_expression": func(n *sitter.Node) {
			id := nodes.GetDeepestIdentifier(n)
			if id == nil {
				return
			}
			isUserEvent := h.IsUserEventMethod(id)
			isFireEvent := h.IsFireEventMethod(id)
			switch {
			case !isUserEvent && !isFireEvent:
				return
			case isFireEvent && !vocab.Contains(opts.EventModules, FireEventModule):
				return
			case isUserEvent && !vocab.Contains(opts.EventModules, UserEventModule):
				return
			}
			if isUserEvent && hasPositiveDelay(n, src, delayPositive) {
				return
			}

			name := ctx.Text(id)
			if root := nodes.GetPropertyIdentifier(n); root != nil && !nodes.Same(root, id) {
				name = ctx.Text(root) + "." + name
			}
			ctx.Report(engine.Descriptor{
				Node:      id,
				MessageID: MessageNoAwaitSyncEvents,
				Data:      map[string]string{"name": name},
			})
		},
	}
}

// hasPositiveDelay matches a trailing options object whose delay is a
// positive literal, or the delay variable when it holds one.
func hasPositiveDelay(call *sitter.Node, src []byte, delayVariablePositive bool) bool {
	args := nodes.Arguments(call)
	if len(args) == 0 || !nodes.IsObject(args[len(args)-1]) {
		return false
	}
	for _, prop := range parser.NamedChildren(args[len(args)-1]) {
		switch prop.Type() {
		case "pair":
			if parser.GetNodeText(prop.ChildByFieldName("key"), src) != delayName {
				continue
			}
			value := prop.ChildByFieldName("value")
			if nodes.HasName(value, src, delayName) {
				return delayVariablePositive
			}
			return isPositiveNumber(value, src)
		case "shorthand_property_identifier":
			if parser.GetNodeText(prop, src) == delayName {
				return delayVariablePositive
			}
		}
	}
	return false
}

func isPositiveNumber(n *sitter.Node, src []byte) bool {
	if n == nil || n.Type() != "number" {
		return false
	}
	v, err := strconv.ParseFloat(parser.GetNodeText(n, src), 64)
	return err == nil && v > 0
}
