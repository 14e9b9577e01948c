// Package nodomimport reports imports of DOM Testing Library in projects
// that use a framework binding.
package nodomimport

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"gopkg.in/yaml.v3"

	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "no-dom-import"

	MessageNoDomImport          = "noDomImport"
	MessageNoDomImportFramework = "noDomImportFramework"
)

var domModules = []string{vocab.LegacyDOMModule, vocab.DOMModule}

// frameworkModules are the bindings not named after their framework.
var frameworkModules = map[string]string{
	string(domain.FrameworkAngular): "@testing-library/angular",
	string(domain.FrameworkMarko):   "@marko/testing-library",
}

var knownFrameworks = []string{
	string(domain.FrameworkAngular),
	string(domain.FrameworkReact),
	string(domain.FrameworkVue),
	string(domain.FrameworkSvelte),
	string(domain.FrameworkMarko),
	"preact",
}

// Options names the framework whose binding replaces the DOM import.
// It is configured as a bare string.
type Options struct {
	Framework string
}

// UnmarshalYAML accepts "react" as well as {framework: react}.
func (o *Options) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&o.Framework)
	}
	var raw struct {
		Framework string `yaml:"framework"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	o.Framework = raw.Framework
	return nil
}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Disallow importing from DOM Testing Library",
		Fixable:     true,
		Recommended: rules.AllButDOM(domain.SeverityError),
		Type:        engine.RuleTypeProblem,
	},
	Messages: map[string]string{
		MessageNoDomImport:          "import from DOM Testing Library is restricted, import from corresponding Testing Library framework instead",
		MessageNoDomImportFramework: "import from DOM Testing Library is restricted, import from {{module}} instead",
	},
	Validate: validate,
	Create:   create,
})

func init() {
	rules.Register(Rule)
}

func validate(opts Options) error {
	if opts.Framework != "" && !vocab.Contains(knownFrameworks, opts.Framework) {
		return fmt.Errorf("unknown framework %q", opts.Framework)
	}
	return nil
}

// CorrectModule returns the module of framework replacing the DOM module.
func CorrectModule(module, framework string) string {
	if m, ok := frameworkModules[framework]; ok {
		return m
	}
	return strings.Replace(module, string(domain.FrameworkDOM), framework, 1)
}

func create(ctx *engine.Context, opts Options, h *detection.Helpers) engine.Handlers {
	src := ctx.Source()

	report := func(n, source *sitter.Node, module string) {
		if opts.Framework == "" {
			ctx.Report(engine.Descriptor{Node: n, MessageID: MessageNoDomImport})
			return
		}
		correct := CorrectModule(module, opts.Framework)
		ctx.Report(engine.Descriptor{
			Node:      n,
			MessageID: MessageNoDomImportFramework,
			Data:      map[string]string{"module": correct},
			Fix: func(f *engine.Fixer) []domain.TextEdit {
				return []domain.TextEdit{f.Replace(source, strings.Replace(ctx.Text(source), module, correct, 1))}
			},
		})
	}

	return engine.Handlers{
		"program:exit": func(*sitter.Node) {
			for _, n := range h.GetAllTestingLibraryImportNodes() {
				var source *sitter.Node
				if nodes.IsImportStatement(n) {
					source = n.ChildByFieldName("source")
				} else {
					source = nodes.FirstArgument(n)
				}
				module, ok := nodes.StringValue(source, src)
				if !ok || !vocab.Contains(domModules, module) {
					continue
				}
				report(n, source, module)
			}
		},
	}
}
