// Package awaitasyncevents reports fireEvent and userEvent method calls
// whose promise is left unhandled.
package awaitasyncevents

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/analysis/promise"
	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "await-async-events"

	MessageAwaitAsyncEvent        = "awaitAsyncEvent"
	MessageAwaitAsyncEventWrapper = "awaitAsyncEventWrapper"
)

// Options selects which event modules are treated as async.
type Options struct {
	EventModule detection.StringOrList `yaml:"eventModule"`
}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Enforce promises from async event methods are handled",
		Fixable:     true,
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageAwaitAsyncEvent:        "Promise returned from async event method `{{name}}` must be handled",
		MessageAwaitAsyncEventWrapper: "Promise returned from `{{name}}` wrapper over async event method must be handled",
	},
	DefaultOptions: Options{EventModule: detection.StringOrList{vocab.UserEventName}},
	Validate:       validate,
	Create:         create,
})

func init() {
	rules.Register(Rule)
}

func validate(opts Options) error {
	for _, module := range opts.EventModule {
		if !vocab.Contains(vocab.EventSimulators, module) {
			return fmt.Errorf("eventModule: unknown event module %q", module)
		}
	}
	return nil
}

func create(ctx *engine.Context, opts Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()
	checker := promise.NewChecker(src)
	wrappers := promise.NewWrappers(src)
	marker := promise.NewAsyncMarker()

	fireEventEnabled := vocab.Contains(opts.EventModule, vocab.FireEventName)
	userEventEnabled := vocab.Contains(opts.EventModule, vocab.UserEventName)

	isEventMethod := func(n *sitter.Node) bool {
		return (fireEventEnabled && h.IsFireEventMethod(n)) || (userEventEnabled && h.IsUserEventMethod(n))
	}

	onEventMethod := func(n *sitter.Node) {
		if ctx.Text(n) == vocab.UserEventSetupName {
			return
		}
		wrappers.Detect(n)

		call := nodes.FindClosestCallExpression(n, true)
		if call == nil || call.Parent() == nil {
			return
		}
		data := map[string]string{"name": ctx.Text(n)}
		res := checker.Check(ctx, n)
		if res.Handled {
			return
		}
		if !res.Stored {
			ctx.Report(engine.Descriptor{
				Node:      nodes.Callee(call),
				MessageID: MessageAwaitAsyncEvent,
				Data:      data,
				Fix: func(f *engine.Fixer) []domain.TextEdit {
					member := n.Parent()
					if !nodes.IsMemberExpression(member) {
						return nil
					}
					return promise.AwaitFix(f, member, marker)
				},
			})
			return
		}
		for _, ref := range res.Unhandled {
			ctx.Report(engine.Descriptor{
				Node:      ref,
				MessageID: MessageAwaitAsyncEvent,
				Data:      data,
				Fix: func(f *engine.Fixer) []domain.TextEdit {
					return []domain.TextEdit{f.InsertBefore(ref, "await ")}
				},
			})
		}
	}

	onWrapper := func(n *sitter.Node) {
		call := nodes.FindClosestCallExpression(n, true)
		if call == nil || checker.IsHandled(n) {
			return
		}
		ctx.Report(engine.Descriptor{
			Node:      nodes.Callee(call),
			MessageID: MessageAwaitAsyncEventWrapper,
			Data:      map[string]string{"name": ctx.Text(n)},
			Fix: func(f *engine.Fixer) []domain.TextEdit {
				return promise.AwaitFix(f, promise.AwaitTarget(n), marker)
			},
		})
	}

	return engine.Handlers{
		"call_expression identifier, call_expression property_identifier": func(n *sitter.Node) {
			switch {
			case isEventMethod(n):
				onEventMethod(n)
			case wrappers.Has(ctx.Text(n)):
				onWrapper(n)
			}
		},
	}
}
