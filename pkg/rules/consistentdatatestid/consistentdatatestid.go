// Package consistentdatatestid checks test id attribute values against a
// configured pattern.
package consistentdatatestid

import (
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/detection"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/parser"
	"github.com/specvital/testinglint/pkg/parser/nodes"
	"github.com/specvital/testinglint/pkg/rules"
	"github.com/specvital/testinglint/pkg/vocab"
)

const (
	Name = "consistent-data-testid"

	MessageConsistentDataTestID              = "consistentDataTestId"
	MessageConsistentDataTestIDCustomMessage = "consistentDataTestIdCustomMessage"
)

// FileNamePlaceholder in the pattern is replaced by the linted file's name.
const FileNamePlaceholder = "{fileName}"

const indexFile = "index"

type Options struct {
	CustomMessage   string                 `yaml:"customMessage"`
	TestIDAttribute detection.StringOrList `yaml:"testIdAttribute"`
	TestIDPattern   string                 `yaml:"testIdPattern"`
}

var Rule = detection.CreateRule(detection.Definition[Options]{
	Name: Name,
	Meta: engine.Meta{
		Description: "Ensures consistent usage of `data-testid`",
		Type:        engine.RuleTypeSuggestion,
	},
	Messages: map[string]string{
		MessageConsistentDataTestID:              "`{{attr}}` \"{{value}}\" should match `{{regex}}`",
		MessageConsistentDataTestIDCustomMessage: "`{{message}}`",
	},
	DefaultOptions: Options{TestIDAttribute: detection.StringOrList{"data-testid"}},
	Detection:      detection.Options{SkipRuleReportingCheck: true},
	Create:         create,
})

func init() {
	rules.Register(Rule)
}

// FileName returns the name substituted for {fileName}: the base name up to
// its first dot, the parent directory for index files, and "" for dynamic
// route files such as [id].tsx.
func FileName(path string) string {
	dir, base := filepath.Split(filepath.ToSlash(path))
	if strings.ContainsAny(base, "[]") {
		return ""
	}
	name, _, _ := strings.Cut(base, ".")
	if name == indexFile {
		return filepath.Base(strings.TrimSuffix(dir, "/"))
	}
	return name
}

func create(ctx *engine.Context, opts Options, _ *detection.Helpers) engine.Handlers {
	if opts.TestIDPattern == "" {
		return nil
	}
	pattern := strings.ReplaceAll(opts.TestIDPattern, FileNamePlaceholder, FileName(ctx.Filename()))
	validator, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	src := ctx.Source()

	return engine.Handlers{
		"jsx_attribute": func(n *sitter.Node) {
			children := parser.NamedChildren(n)
			if len(children) < 2 || !nodes.IsString(children[1]) {
				return
			}
			attr := ctx.Text(children[0])
			if !vocab.Contains(opts.TestIDAttribute, attr) {
				return
			}
			value, ok := nodes.StringValue(children[1], src)
			if !ok || value == "" || validator.MatchString(value) {
				return
			}

			d := engine.Descriptor{
				Node:      children[0],
				MessageID: MessageConsistentDataTestID,
				Data: map[string]string{
					"attr":  attr,
					"regex": "/" + pattern + "/",
					"value": value,
				},
			}
			if opts.CustomMessage != "" {
				d.MessageID = MessageConsistentDataTestIDCustomMessage
				d.Data["message"] = opts.CustomMessage
			}
			ctx.Report(d)
		},
	}
}
