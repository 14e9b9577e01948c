// Package engine walks a parsed file and dispatches its nodes to rule
// handlers registered by selector, collecting the findings they report.
//
// A rule instance is created per file: Rule.Create receives a fresh
// Context and returns the handler table used for that file only.
package engine

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/domain"
)

// Handler is called for every node matching its selector.
type Handler func(n *sitter.Node)

// Handlers maps selectors to handlers.
//
// Selector grammar:
//
//	call_expression                      node type
//	program:exit                         called after the node's children
//	call_expression identifier           descendant combinator
//	call_expression > arguments > string child combinator
//	arrow_function, function_expression  alternatives
//	*                                    any named node
type Handlers map[string]Handler

// RuleType classifies a rule the way the rules listing groups them.
type RuleType string

const (
	RuleTypeProblem    RuleType = "problem"
	RuleTypeSuggestion RuleType = "suggestion"
)

// Meta describes a rule.
type Meta struct {
	Description string
	// Fixable rules may attach edits to their findings. Fixes from rules
	// that are not fixable are dropped.
	Fixable bool
	// Recommended holds the severity of the rule in each framework preset.
	// A missing framework means the rule is off in that preset.
	Recommended map[domain.Framework]domain.Severity
	Type        RuleType
}

// Rule is a lint rule definition.
type Rule struct {
	// Create builds the handler table for one file.
	Create func(ctx *Context) Handlers
	// DefaultOptions is the option value used when none is configured.
	DefaultOptions any
	Messages       map[string]string
	Meta           Meta
	Name           string
	// ValidateOptions reports whether a raw configured option value is
	// usable. Nil accepts anything.
	ValidateOptions func(raw any) error
}

// RuleConfig enables a rule for one run.
type RuleConfig struct {
	// Options is the raw decoded option value from configuration, or nil.
	Options  any
	Rule     *Rule
	Severity domain.Severity
}
