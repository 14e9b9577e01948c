// Package norenderinlifecycle reports render calls inside beforeEach and
// beforeAll hooks.
package norenderinlifecycle

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
	Name = "no-render-in-lifecycle"

	MessageNoRenderInSetup = "noRenderInSetup"
)

type Options struct {
	// AllowTestingFrameworkSetupHook exempts one setup hook.
	AllowTestingFrameworkSetupHook string `yaml:"allowTestingFrameworkSetupHook"`
}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow the use of `render` in testing frameworks setup functions",
		Recommended: rules.AllButDOM(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageNoRenderInSetup: "Forbidden usage of `render` within testing framework `{{name}}` setup",
	},
	Validate: validate,
	Create:   create,
})

func init() {
	rules.Register(Rule)
}

func validate(opts Options) error {
	hook := opts.AllowTestingFrameworkSetupHook
	if hook != "" && !vocab.Contains(vocab.TestingFrameworkSetupHooks, hook) {
		return fmt.Errorf("allowTestingFrameworkSetupHook: unknown hook %q", hook)
	}
	return nil
}

// closestHook returns the callee of the closest enclosing call to one of
// hooks, or nil.
func closestHook(n *sitter.Node, src []byte, hooks []string) *sitter.Node {
	for depth := 0; n != nil && depth < nodes.MaxAncestorDepth; depth++ {
		if callee := nodes.Callee(n); nodes.IsCallExpression(n) && nodes.HasName(callee, src, hooks...) && nodes.IsIdentifier(callee) {
			return callee
		}
		n = n.Parent()
	}
	return nil
}

func create(ctx *engine.Context, opts Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()
	var hooks []string
	for _, hook := range vocab.TestingFrameworkSetupHooks {
		if hook != opts.AllowTestingFrameworkSetupHook {
			hooks = append(hooks, hook)
		}
	}
	renderWrappers := make(map[string]bool)

	return engine.Handlers{
		"call_expression": func(n *sitter.Node) {
			id := nodes.GetDeepestIdentifier(n)
			if id == nil {
				return
			}
			isRender := h.IsRenderUtil(id)
			if isRender {
				if fn := promise.InnermostReturningFunction(id, src); fn != nil {
					if name := nodes.FunctionName(fn, src); name != "" {
						renderWrappers[name] = true
					}
				}
			}
			if !isRender && !renderWrappers[ctx.Text(id)] {
				return
			}
			hook := closestHook(n, src, hooks)
			if hook == nil {
				return
			}
			ctx.Report(engine.Descriptor{
				Node:      id,
				MessageID: MessageNoRenderInSetup,
				Data:      map[string]string{"name": ctx.Text(hook)},
			})
		},
	}
}
