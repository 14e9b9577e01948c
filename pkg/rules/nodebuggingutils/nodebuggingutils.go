// Package nodebuggingutils reports debug helpers such as debug and
// prettyDOM left in tests.
package nodebuggingutils

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
	Name = "no-debugging-utils"

	MessageNoDebug = "noDebug"
)

const consoleName = "console"

// Options toggles single utils. Utils left out keep being checked.
type Options struct {
	UtilsToCheckFor map[string]bool `yaml:"utilsToCheckFor"`
}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow the use of debugging utilities like `debug`",
		Recommended: rules.AllButDOM(domain.SeverityWarn),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageNoDebug: "Unexpected debug statement",
	},
	Validate: validate,
	Create:   create,
})

func init() {
	rules.Register(Rule)
}

func validate(opts Options) error {
	for name := range opts.UtilsToCheckFor {
		if !vocab.Contains(vocab.DebugUtils, name) {
			return fmt.Errorf("utilsToCheckFor: unknown util %q", name)
		}
	}
	return nil
}

// utilsToReport lists the debug utils still enabled after opts.
func utilsToReport(opts Options) []string {
	var out []string
	for _, name := range vocab.DebugUtils {
		if enabled, ok := opts.UtilsToCheckFor[name]; !ok || enabled {
			out = append(out, name)
		}
	}
	return out
}

func create(ctx *engine.Context, opts Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()
	utils := utilsToReport(opts)

	suspicious := make(map[string]bool)
	renderWrappers := make(map[string]bool)
	consoleBindings := make(map[string]bool)

	return engine.Handlers{
		"variable_declarator": func(n *sitter.Node) {
			init := nodes.GetDeepestIdentifier(n.ChildByFieldName("value"))
			if init == nil {
				return
			}
			target := n.ChildByFieldName("name")
			if ctx.Text(init) == consoleName {
				for _, local := range nodes.DestructuredNames(target, src) {
					consoleBindings[local] = true
				}
				if nodes.IsIdentifier(target) {
					consoleBindings[ctx.Text(target)] = true
				}
				return
			}
			if !h.IsRenderUtil(init) && !renderWrappers[ctx.Text(init)] {
				return
			}
			for key, local := range nodes.DestructuredNames(target, src) {
				if vocab.Contains(utils, key) {
					suspicious[local] = true
				}
			}
			if nodes.IsIdentifier(target) {
				suspicious[ctx.Text(target)] = true
			}
		},
		"call_expression": func(n *sitter.Node) {
			id := nodes.GetDeepestIdentifier(n)
			if id == nil {
				return
			}
			if h.IsRenderUtil(id) {
				if fn := promise.InnermostReturningFunction(id, src); fn != nil {
					if name := nodes.FunctionName(fn, src); name != "" {
						renderWrappers[name] = true
					}
				}
			}

			root := nodes.GetPropertyIdentifier(nodes.GetReferenceNode(n))
			if root == nil {
				return
			}
			name := ctx.Text(id)
			isChained := suspicious[ctx.Text(root)] && !nodes.Same(root, id) && vocab.Contains(utils, name)
			isReported := h.IsDebugUtil(id, utils...) || suspicious[name] || isChained
			if !isReported || (consoleBindings[name] && nodes.Same(nodes.Callee(n), id)) {
				return
			}
			ctx.Report(engine.Descriptor{Node: id, MessageID: MessageNoDebug})
		},
	}
}
