package rules

import (
	"github.com/specvital/testinglint/pkg/domain"
)

// AllFrameworks recommends a rule at sev in every framework preset.
func AllFrameworks(sev domain.Severity) map[domain.Framework]domain.Severity {
	return Frameworks(sev, domain.Frameworks...)
}

// AllButDOM recommends a rule at sev in every preset except the plain
// DOM one, for rules about rendering components.
func AllButDOM(sev domain.Severity) map[domain.Framework]domain.Severity {
	out := make(map[domain.Framework]domain.Severity, len(domain.Frameworks))
	for _, fw := range domain.Frameworks {
		if fw != domain.FrameworkDOM {
			out[fw] = sev
		}
	}
	return out
}

// Frameworks recommends a rule at sev in the given presets only.
func Frameworks(sev domain.Severity, frameworks ...domain.Framework) map[domain.Framework]domain.Severity {
	out := make(map[domain.Framework]domain.Severity, len(frameworks))
	for _, fw := range frameworks {
		out[fw] = sev
	}
	return out
}
