// Package config loads testinglint configuration files and turns them into
// the rule set and shared settings of a lint run.
//
// YAML, TOML and JSON files decode to a generic map first; one converter
// normalizes the map so every format accepts the same shape:
//
//	framework: react
//	extends: [recommended]
//	settings:
//	  utils-module: test-utils
//	  custom-renders: [renderWithRedux]
//	  custom-queries: off
//	rules:
//	  await-async-queries: error
//	  prefer-explicit-assert: [warn, {assertion: toBeInTheDocument}]
//	include: ["src/**/*.test.tsx"]
//	exclude: ["**/legacy/**"]
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
)

var (
	ErrUnknownRule        = errors.New("config: unknown rule")
	ErrInvalidSeverity    = errors.New("config: invalid severity")
	ErrUnknownPreset      = errors.New("config: unknown preset")
	ErrUnknownFramework   = errors.New("config: unknown framework")
	ErrUnsupportedFormat  = errors.New("config: unsupported format")
	ErrInvalidPattern     = errors.New("config: invalid glob pattern")
	ErrInvalidConfigShape = errors.New("config: invalid shape")
)

// FileNames are the config file names looked up in every directory, in
// priority order.
var FileNames = []string{
	".testinglintrc.yaml",
	".testinglintrc.yml",
	".testinglintrc.toml",
	".testinglintrc.json",
}

// Format is a config file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// RuleSetting is the configured state of one rule.
type RuleSetting struct {
	// Options is the raw option value, nil when only a severity was given.
	Options  any
	Severity domain.Severity
}

// Config is one decoded configuration file.
type Config struct {
	Exclude []string
	Extends []string
	// Framework selects the preset behind "recommended". Defaults to dom.
	Framework domain.Framework
	Include   []string
	// Path is the file the config was loaded from, empty for Default.
	Path     string
	Rules    map[string]RuleSetting
	Settings engine.Settings
}

// Default is used when no config file applies.
func Default() *Config {
	return &Config{
		Extends:   []string{PresetRecommended},
		Framework: domain.FrameworkDOM,
		Rules:     map[string]RuleSetting{},
	}
}

// Load reads and decodes the config file at path.
func Load(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*Config, error) {
	raw, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	return fromMap(raw)
}

func decode(data []byte, format Format) (map[string]any, error) {
	raw := map[string]any{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return raw, nil
}

func fromMap(raw map[string]any) (*Config, error) {
	cfg := Default()
	cfg.Extends = nil

	if v, ok := raw["framework"]; ok {
		name, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: framework must be a string", ErrInvalidConfigShape)
		}
		fw, err := ParseFramework(name)
		if err != nil {
			return nil, err
		}
		cfg.Framework = fw
	}

	var err error
	if cfg.Extends, err = stringList(raw["extends"], "extends"); err != nil {
		return nil, err
	}
	if cfg.Include, err = patternList(raw["include"], "include"); err != nil {
		return nil, err
	}
	if cfg.Exclude, err = patternList(raw["exclude"], "exclude"); err != nil {
		return nil, err
	}

	if v, ok := raw["settings"]; ok {
		settings, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: settings must be a table", ErrInvalidConfigShape)
		}
		if cfg.Settings, err = parseSettings(settings); err != nil {
			return nil, err
		}
	}

	if v, ok := raw["rules"]; ok {
		ruleMap, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: rules must be a table", ErrInvalidConfigShape)
		}
		for name, value := range ruleMap {
			setting, err := parseRuleSetting(value)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", name, err)
			}
			cfg.Rules[name] = setting
		}
	}
	return cfg, nil
}

// ParseFramework validates a framework name.
func ParseFramework(name string) (domain.Framework, error) {
	for _, fw := range domain.Frameworks {
		if string(fw) == name {
			return fw, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFramework, name)
}

func parseSettings(raw map[string]any) (engine.Settings, error) {
	var s engine.Settings
	for key, value := range raw {
		var err error
		switch strings.TrimPrefix(key, "testing-library/") {
		case "utils-module":
			text, ok := value.(string)
			if !ok {
				return s, fmt.Errorf("%w: utils-module must be a string", ErrInvalidConfigShape)
			}
			s.UtilsModule = text
		case "custom-renders":
			s.CustomRenders, err = settingList(value, key)
		case "custom-queries":
			s.CustomQueries, err = settingList(value, key)
		default:
			return s, fmt.Errorf("%w: unknown setting %q", ErrInvalidConfigShape, key)
		}
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

func settingList(value any, key string) (engine.StringList, error) {
	if text, ok := value.(string); ok && text == engine.Off {
		return engine.StringList{Off: true}, nil
	}
	values, err := stringList(value, key)
	if err != nil {
		return engine.StringList{}, err
	}
	return engine.StringList{Values: values}, nil
}

// parseRuleSetting accepts a severity or a [severity, options] list.
func parseRuleSetting(value any) (RuleSetting, error) {
	list, ok := value.([]any)
	if !ok {
		sev, err := parseSeverity(value)
		return RuleSetting{Severity: sev}, err
	}
	if len(list) == 0 {
		return RuleSetting{}, fmt.Errorf("%w: empty rule entry", ErrInvalidSeverity)
	}
	sev, err := parseSeverity(list[0])
	if err != nil {
		return RuleSetting{}, err
	}
	setting := RuleSetting{Severity: sev}
	if len(list) > 1 {
		setting.Options = list[1]
	}
	return setting, nil
}

// parseSeverity handles the number types of the three decoders: int from
// YAML, int64 from TOML and float64 from JSON.
func parseSeverity(value any) (domain.Severity, error) {
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case int:
		text = fmt.Sprint(v)
	case int64:
		text = fmt.Sprint(v)
	case float64:
		if v != float64(int(v)) {
			return domain.SeverityOff, fmt.Errorf("%w: %v", ErrInvalidSeverity, v)
		}
		text = fmt.Sprint(int(v))
	default:
		return domain.SeverityOff, fmt.Errorf("%w: %v", ErrInvalidSeverity, value)
	}
	sev, err := domain.ParseSeverity(text)
	if err != nil {
		return domain.SeverityOff, fmt.Errorf("%w: %q", ErrInvalidSeverity, text)
	}
	return sev, nil
}

// stringList accepts a single string or a list of strings.
func stringList(value any, key string) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			text, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must hold strings", ErrInvalidConfigShape, key)
			}
			out = append(out, text)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a string or a list", ErrInvalidConfigShape, key)
	}
}

func patternList(value any, key string) ([]string, error) {
	patterns, err := stringList(value, key)
	if err != nil {
		return nil, err
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidPattern, key, p)
		}
	}
	return patterns, nil
}

// Matches applies include and exclude to a slash-separated path relative
// to the config's directory. isCandidate decides files when include is
// empty.
func (c *Config) Matches(relPath string, isCandidate func(string) bool) bool {
	relPath = filepath.ToSlash(relPath)
	if len(c.Include) > 0 {
		if !matchAny(c.Include, relPath) {
			return false
		}
	} else if isCandidate != nil && !isCandidate(relPath) {
		return false
	}
	return !matchAny(c.Exclude, relPath)
}

// Dir is the directory include and exclude patterns are relative to.
// Empty for Default.
func (c *Config) Dir() string {
	if c.Path == "" {
		return ""
	}
	return filepath.Dir(c.Path)
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}

// RuleNames returns the configured rule names sorted.
func (c *Config) RuleNames() []string {
	names := make([]string, 0, len(c.Rules))
	for name := range c.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
