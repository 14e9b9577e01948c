// Package nomanualcleanup reports cleanup imported from bindings whose
// test runner integration already cleans up after each test.
package nomanualcleanup

import (
	"regexp"

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
	Name = "no-manual-cleanup"

	MessageNoManualCleanup = "noManualCleanup"
)

var cleanupLibrary = regexp.MustCompile(`(@testing-library/(preact|react|svelte|vue))|@marko/testing-library`)

type Options struct{}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow the use of `cleanup`",
		Recommended: rules.Frameworks(domain.SeverityError,
			domain.FrameworkReact, domain.FrameworkVue, domain.FrameworkSvelte, domain.FrameworkMarko),
		Type: engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageNoManualCleanup: "`cleanup` is performed automatically by your test runner, you don't need manual cleanups.",
	},
	Create: create,
})

func init() {
	rules.Register(Rule)
}

func create(ctx *engine.Context, _ Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()

	report := func(n *sitter.Node) {
		ctx.Report(engine.Descriptor{Node: n, MessageID: MessageNoManualCleanup})
	}

	// reportMemberUsages reports local.cleanup for a default or namespace binding.
	reportMemberUsages := func(local string) {
		parser.WalkTree(ctx.Root(), func(n *sitter.Node) bool {
			if nodes.IsMemberExpression(n) && nodes.HasName(nodes.MemberObject(n), src, local) &&
				nodes.PropertyName(n, src) == vocab.CleanupName {
				report(nodes.MemberProperty(n))
			}
			return true
		})
	}

	check := func(module *sitter.Node) {
		bindings := nodes.ImportBindings(module, src)
		if !nodes.IsImportStatement(module) {
			bindings = nodes.RequireBindings(module, src)
		}
		for _, b := range bindings {
			switch b.Kind {
			case nodes.BindingNamed:
				if b.Imported == vocab.CleanupName {
					report(b.Node)
				}
			case nodes.BindingDefault, nodes.BindingNamespace:
				reportMemberUsages(b.Local)
			}
		}
	}

	return engine.Handlers{
		"program:exit": func(*sitter.Node) {
			if cleanupLibrary.MatchString(h.GetTestingLibraryImportName()) {
				for _, n := range h.GetAllTestingLibraryImportNodes() {
					check(n)
				}
			}
			if n := h.GetCustomModuleImportNode(); n != nil {
				check(n)
			}
		},
	}
}
