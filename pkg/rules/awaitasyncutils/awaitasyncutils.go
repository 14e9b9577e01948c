// Package awaitasyncutils reports waitFor-style utilities, and functions
// wrapping them, whose promise is left unhandled.
package awaitasyncutils

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/analysis/promise"
	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/rules"
)

const (
	Name = "await-async-utils"

	MessageAwaitAsyncUtil   = "awaitAsyncUtil"
	MessageAsyncUtilWrapper = "asyncUtilWrapper"
)

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Enforce promises from async utils to be awaited properly",
		Fixable:     true,
		Recommended: rules.AllFrameworks(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageAwaitAsyncUtil:   "Promise returned from `{{name}}` must be handled",
		MessageAsyncUtilWrapper: "Promise returned from `{{name}}` wrapper over async util must be handled",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()
	checker := promise.NewChecker(src)
	wrappers := promise.NewWrappers(src)
	marker := promise.NewAsyncMarker()

	check := func(n *sitter.Node) {
		name := ctx.Text(n)
		isUtil := h.IsAsyncUtil(n)
		if !isUtil && !wrappers.Has(name) {
			return
		}
		if isUtil {
			wrappers.Detect(n)
		}

		messageID := MessageAsyncUtilWrapper
		if isUtil {
			messageID = MessageAwaitAsyncUtil
		}
		data := map[string]string{"name": name}

		res := checker.Check(ctx, n)
		switch {
		case res.Handled:
		case res.Stored:
			ref := res.Reference
			ctx.Report(engine.Descriptor{
				Node:      n,
				MessageID: messageID,
				Data:      data,
				Fix: func(f *engine.Fixer) []domain.TextEdit {
					return []domain.TextEdit{f.InsertBefore(ref, "await ")}
				},
			})
		default:
			ctx.Report(engine.Descriptor{
				Node:      n,
				MessageID: messageID,
				Data:      data,
				Fix: func(f *engine.Fixer) []domain.TextEdit {
					return promise.AwaitFix(f, promise.AwaitTarget(n), marker)
				},
			})
		}
	}

	return engine.Handlers{
		"variable_declarator": wrappers.TrackDeclarator,
		"call_expression identifier, call_expression property_identifier": check,
	}
}
