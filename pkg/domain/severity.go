package domain

import (
	"fmt"
	"strings"
)

// Severity is the reporting level of a rule.
type Severity int

const (
	// SeverityOff disables a rule.
	SeverityOff Severity = iota
	// SeverityWarn reports findings without failing the run.
	SeverityWarn
	// SeverityError reports findings and fails the run.
	SeverityError
)

// String returns the config spelling of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "off"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts "off", "warn", "warning", "error" or "0".."2".
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses a severity name or number.
func ParseSeverity(value string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "off", "0":
		return SeverityOff, nil
	case "warn", "warning", "1":
		return SeverityWarn, nil
	case "error", "2":
		return SeverityError, nil
	default:
		return SeverityOff, fmt.Errorf("invalid severity %q", value)
	}
}
