// Package preferusereventsetup reports user-event methods called on the
// default export instead of a userEvent.setup() instance.
package preferusereventsetup

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "prefer-user-event-setup"

	MessagePreferUserEventSetup = "preferUserEventSetup"
)

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Suggest using userEvent with setup() instead of direct methods",
		Type:        engine.RuleTypeSuggestion,
	},
	Messages: map[string]string{
		MessagePreferUserEventSetup: "Prefer using userEvent with setup() instead of direct {{method}}() call. Use: const user = userEvent.setup(); await user.{{method}}(...)",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()

	return engine.Handlers{
		"call_expression": func(call *sitter.Node) {
			if h.GetUserEventImportNode() == nil {
				return
			}
			callee := nodes.Callee(call)
			object := nodes.MemberObject(callee)
			method := nodes.PropertyName(callee, src)
			if !nodes.IsIdentifier(object) || method == "" || method == vocab.UserEventSetupName {
				return
			}
			if !h.IsUserEventUtil(object) {
				return
			}
			ctx.Report(engine.Descriptor{
				Node:      callee,
				MessageID: MessagePreferUserEventSetup,
				Data:      map[string]string{"method": method},
			})
		},
	}
}
