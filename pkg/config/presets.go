package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/rules"
)

const (
	// PresetRecommended resolves to the recommended set of the config's
	// framework.
	PresetRecommended = "recommended"
	// PresetAll enables every registered rule at error.
	PresetAll = "all"
)

// Preset returns the rule configs of a preset: "recommended",
// "recommended/<framework>", a bare framework name or "all". The plugin
// prefix is accepted in front of any of them.
func Preset(reg *rules.Registry, name string, framework domain.Framework) ([]engine.RuleConfig, error) {
	name = strings.TrimPrefix(name, "plugin:")
	name = strings.TrimPrefix(name, rules.Prefix)

	switch name {
	case PresetAll:
		all := reg.All()
		out := make([]engine.RuleConfig, 0, len(all))
		for _, rule := range all {
			out = append(out, engine.RuleConfig{Rule: rule, Severity: domain.SeverityError})
		}
		return out, nil
	case PresetRecommended:
		if framework == "" {
			framework = domain.FrameworkDOM
		}
		return reg.Recommended(framework), nil
	}

	fwName, _ := strings.CutPrefix(name, PresetRecommended+"/")
	fw, err := ParseFramework(fwName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return reg.Recommended(fw), nil
}

// RuleConfigs resolves extends and rules against reg. Later presets
// override earlier ones; explicit rules override presets, keeping the
// preset options when only a severity is given.
func (c *Config) RuleConfigs(reg *rules.Registry) ([]engine.RuleConfig, error) {
	enabled := make(map[string]engine.RuleConfig)
	for _, preset := range c.Extends {
		cfgs, err := Preset(reg, preset, c.Framework)
		if err != nil {
			return nil, err
		}
		for _, rc := range cfgs {
			enabled[rc.Rule.Name] = rc
		}
	}

	for _, name := range c.RuleNames() {
		setting := c.Rules[name]
		rule := reg.FindByName(name)
		if rule == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRule, name)
		}
		if setting.Severity == domain.SeverityOff {
			delete(enabled, rule.Name)
			continue
		}
		rc := enabled[rule.Name]
		rc.Rule = rule
		rc.Severity = setting.Severity
		if setting.Options != nil {
			rc.Options = setting.Options
		}
		enabled[rule.Name] = rc
	}

	out := make([]engine.RuleConfig, 0, len(enabled))
	for _, rc := range enabled {
		out = append(out, rc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rule.Name < out[j].Rule.Name })
	return out, nil
}

// ValidateOptions checks the options of every configured rule. Invalid
// options do not stop a run: the rule falls back to its defaults, so the
// errors are meant for warnings.
func (c *Config) ValidateOptions(reg *rules.Registry) []error {
	var errs []error
	for _, name := range c.RuleNames() {
		setting := c.Rules[name]
		rule := reg.FindByName(name)
		if rule == nil || setting.Options == nil || rule.ValidateOptions == nil {
			continue
		}
		if err := rule.ValidateOptions(setting.Options); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
