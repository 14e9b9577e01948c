package engine

import (
	"regexp"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/parser"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Descriptor is one report of a rule.
type Descriptor struct {
	// Data fills {{placeholders}} in the message.
	Data      map[string]string
	Fix       FixFunc
	MessageID string
	Node      *sitter.Node
}

// Context is handed to a rule for one file.
type Context struct {
	file     *parser.File
	findings []domain.Finding
	options  any
	rule     *Rule
	scope    *scopeIndex
	settings Settings
	severity domain.Severity
}

func newContext(file *parser.File, cfg RuleConfig, settings Settings, scope *scopeIndex) *Context {
	options := cfg.Options
	if options == nil {
		options = cfg.Rule.DefaultOptions
	}
	return &Context{
		file:     file,
		options:  options,
		rule:     cfg.Rule,
		scope:    scope,
		settings: settings,
		severity: cfg.Severity,
	}
}

// NewContext creates a standalone context, for callers that drive
// handlers themselves.
func NewContext(file *parser.File, cfg RuleConfig, settings Settings) *Context {
	return newContext(file, cfg, settings, newScopeIndex(file))
}

func (c *Context) Filename() string           { return c.file.Path }
func (c *Context) Language() domain.Language  { return c.file.Language }
func (c *Context) Source() []byte             { return c.file.Source }
func (c *Context) Root() *sitter.Node         { return c.file.Root() }
func (c *Context) Settings() Settings         { return c.settings }
func (c *Context) RuleName() string           { return c.rule.Name }
func (c *Context) Findings() []domain.Finding { return c.findings }

// Options returns the raw option value configured for the rule.
func (c *Context) Options() any {
	return c.options
}

// Text returns the source text of n.
func (c *Context) Text(n *sitter.Node) string {
	return parser.GetNodeText(n, c.file.Source)
}

// References returns the identifiers reading the variable declared by
// declarator. The declaration itself is never included.
func (c *Context) References(declarator *sitter.Node) []*sitter.Node {
	return c.scope.references(declarator)
}

// Report records a finding for the rule.
func (c *Context) Report(d Descriptor) {
	if d.Node == nil {
		return
	}

	finding := domain.Finding{
		Location:  parser.GetLocation(d.Node, c.file.Path),
		Message:   formatMessage(c.rule.Messages[d.MessageID], d.MessageID, d.Data),
		MessageID: d.MessageID,
		Rule:      c.rule.Name,
		Severity:  c.severity,
	}

	if d.Fix != nil && c.rule.Meta.Fixable {
		edits := d.Fix(NewFixer(c.file.Source))
		if len(edits) > 0 {
			sort.SliceStable(edits, func(i, j int) bool { return edits[i].Start < edits[j].Start })
			finding.Fix = &domain.Fix{Edits: edits}
		}
	}

	c.findings = append(c.findings, finding)
}

func formatMessage(template, id string, data map[string]string) string {
	if template == "" {
		return id
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		key := placeholderPattern.FindStringSubmatch(m)[1]
		if v, ok := data[key]; ok {
			return v
		}
		return m
	})
}
