// Package detection wraps rule definitions with the import tracking and
// aggressive reporting logic every Testing Library rule relies on, and
// exposes the semantic predicates rules are written against.
package detection

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"gopkg.in/yaml.v3"

	"github.com/specvital/testinglint/pkg/engine"
)

// Options tunes the detection wrapper for one rule.
type Options struct {
	// SkipRuleReportingCheck runs rule handlers even when the file does
	// not import the library under a configured utils module.
	SkipRuleReportingCheck bool
}

// CreateFunc builds the handlers of a rule for one file.
type CreateFunc[O any] func(ctx *engine.Context, opts O, h *Helpers) engine.Handlers

// Definition describes a rule with options of type O.
type Definition[O any] struct {
	Create         CreateFunc[O]
	DefaultOptions O
	Detection      Options
	Messages       map[string]string
	Meta           engine.Meta
	Name           string
	// Validate checks decoded options. Optional.
	Validate func(O) error
}

// Core selectors. Rule handlers with the same selector run after these.
const (
	importSelector     = "import_statement"
	callSelector       = "call_expression"
	declaratorSelector = "variable_declarator"
)

// CreateRule turns a definition into an engine rule whose handlers run
// after the detection bookkeeping for the same node.
func CreateRule[O any](def Definition[O]) *engine.Rule {
	rule := &engine.Rule{
		DefaultOptions: def.DefaultOptions,
		Messages:       def.Messages,
		Meta:           def.Meta,
		Name:           def.Name,
	}
	rule.ValidateOptions = func(raw any) error {
		return ValidateOptions(def, raw)
	}
	rule.Create = func(ctx *engine.Context) engine.Handlers {
		opts, err := DecodeOptions(ctx.Options(), def.DefaultOptions)
		if err == nil && def.Validate != nil {
			err = def.Validate(opts)
		}
		if err != nil {
			// Bad options degrade to defaults rather than aborting the file.
			opts = def.DefaultOptions
		}

		state := newState(ctx)
		helpers := &Helpers{state: state}
		return wrap(def.Create(ctx, opts, helpers), state, helpers, def.Detection)
	}
	return rule
}

// ValidateOptions decodes raw the way CreateRule does and reports option
// errors, for configuration loading.
func ValidateOptions[O any](def Definition[O], raw any) error {
	opts, err := DecodeOptions(raw, def.DefaultOptions)
	if err != nil {
		return fmt.Errorf("rule %s: %w", def.Name, err)
	}
	if def.Validate != nil {
		if err := def.Validate(opts); err != nil {
			return fmt.Errorf("rule %s: %w", def.Name, err)
		}
	}
	return nil
}

func wrap(ruleHandlers engine.Handlers, state *State, h *Helpers, opts Options) engine.Handlers {
	core := engine.Handlers{
		importSelector:     state.onImport,
		callSelector:       state.onCall,
		declaratorSelector: func(n *sitter.Node) { state.onDeclarator(n, h) },
	}

	merged := make(engine.Handlers, len(core)+len(ruleHandlers))
	for key, handler := range core {
		merged[key] = handler
	}
	for key, handler := range ruleHandlers {
		ruleHandler := handler
		gated := func(n *sitter.Node) {
			if opts.SkipRuleReportingCheck || h.CanReportErrors() {
				ruleHandler(n)
			}
		}
		coreHandler, ok := core[key]
		if !ok {
			merged[key] = gated
			continue
		}
		merged[key] = func(n *sitter.Node) {
			coreHandler(n)
			gated(n)
		}
	}
	return merged
}

// DecodeOptions decodes raw rule options into a copy of defaults. raw may
// be the option object itself or an options array whose first element is
// the object.
func DecodeOptions[O any](raw any, defaults O) (O, error) {
	opts := defaults
	if list, ok := raw.([]any); ok {
		if len(list) == 0 {
			return opts, nil
		}
		raw = list[0]
	}
	if raw == nil {
		return opts, nil
	}
	if typed, ok := raw.(O); ok {
		return typed, nil
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return defaults, fmt.Errorf("encode options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return defaults, fmt.Errorf("decode options: %w", err)
	}
	return opts, nil
}

// StringOrList decodes a YAML scalar or sequence of strings.
type StringOrList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringOrList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = StringOrList{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*l = list
		return nil
	default:
		return fmt.Errorf("expected string or list of strings, got %s", value.Tag)
	}
}
