// Package preferpresencequeries enforces getBy* queries for presence
// assertions and queryBy* queries for absence assertions.
package preferpresencequeries

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
	Name = "prefer-presence-queries"

	MessageWrongPresenceQuery = "wrongPresenceQuery"
	MessageWrongAbsenceQuery  = "wrongAbsenceQuery"
)

// Options toggles the two checks.
type Options struct {
	Absence  bool `yaml:"absence"`
	Presence bool `yaml:"presence"`
}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Ensure appropriate `get*`/`query*` queries are used with their respective matchers",
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageWrongPresenceQuery: "Use `getBy*` queries rather than `queryBy*` for checking element is present",
		MessageWrongAbsenceQuery:  "Use `queryBy*` queries rather than `getBy*` for checking element is NOT present",
	},
	DefaultOptions: Options{Absence: true, Presence: true},
	Create:         create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, opts Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()

	return engine.Handlers{
		"call_expression identifier, call_expression property_identifier": func(n *sitter.Node) {
			expectCall := nodes.FindClosestCallNode(n, src, vocab.ExpectName)
			if expectCall == nil || !nodes.IsMemberExpression(expectCall.Parent()) {
				return
			}
			if !h.IsSyncQuery(n) {
				return
			}

			assertion := expectCall.Parent()
			isPresenceAssert := h.IsPresenceAssert(assertion)
			isAbsenceAssert := h.IsAbsenceAssert(assertion)
			if !isPresenceAssert && !isAbsenceAssert {
				return
			}

			inWithin := nodes.FindClosestCallNode(n, src, vocab.WithinName) != nil
			isPresenceQuery := h.IsGetQueryVariant(n)
			switch {
			case opts.Presence && (inWithin || isPresenceAssert) && !isPresenceQuery:
				ctx.Report(engine.Descriptor{Node: n, MessageID: MessageWrongPresenceQuery})
			case opts.Absence && !inWithin && isAbsenceAssert && isPresenceQuery:
				ctx.Report(engine.Descriptor{Node: n, MessageID: MessageWrongAbsenceQuery})
			}
		},
	}
}
