// Package rules holds the registry of lint rules. Each rule lives in its
// own subpackage and registers itself from init; blank-import
// github.com/specvital/testinglint/pkg/rules/all to load every rule.
package rules

import (
	"sort"
	"strings"
	"sync"

	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
)

// Prefix is the plugin namespace accepted in front of rule names in
// configuration and directives.
const Prefix = "testing-library/"

var defaultRegistry = NewRegistry()

// Registry manages registered rules.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]*engine.Rule
}

// NewRegistry creates a new empty rule registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]*engine.Rule)}
}

// DefaultRegistry returns the global default registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a rule to the default registry.
func Register(rule *engine.Rule) {
	defaultRegistry.Register(rule)
}

// All returns the rules of the default registry sorted by name.
func All() []*engine.Rule {
	return defaultRegistry.All()
}

// FindByName returns the rule with the given name from the default registry.
func FindByName(name string) *engine.Rule {
	return defaultRegistry.FindByName(name)
}

// Register adds a rule, replacing any rule with the same name.
func (r *Registry) Register(rule *engine.Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.Name] = rule
}

// All returns the registered rules sorted by name.
func (r *Registry) All() []*engine.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*engine.Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		result = append(result, rule)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// FindByName returns the rule with the given name, with or without the
// plugin prefix, or nil.
func (r *Registry) FindByName(name string) *engine.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rule, ok := r.rules[name]; ok {
		return rule
	}
	if trimmed, ok := strings.CutPrefix(name, Prefix); ok && trimmed != "" {
		return r.rules[trimmed]
	}
	return nil
}

// Recommended returns the rules recommended for framework with their
// preset severities, sorted by rule name.
func (r *Registry) Recommended(framework domain.Framework) []engine.RuleConfig {
	var out []engine.RuleConfig
	for _, rule := range r.All() {
		sev, ok := rule.Meta.Recommended[framework]
		if !ok || sev == domain.SeverityOff {
			continue
		}
		out = append(out, engine.RuleConfig{Rule: rule, Severity: sev})
	}
	return out
}

// Clear removes all registered rules.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = make(map[string]*engine.Rule)
}
