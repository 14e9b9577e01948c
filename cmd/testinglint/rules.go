package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/specvital/testinglint/pkg/config"
	"github.com/specvital/testinglint/pkg/domain"
	"github.com/specvital/testinglint/pkg/engine"
	"github.com/specvital/testinglint/pkg/rules"
)

func newRulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the available rules and their recommended severities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var framework domain.Framework
			if name := a.v.GetString("framework"); name != "" {
				fw, err := config.ParseFramework(name)
				if err != nil {
					return failure(err)
				}
				framework = fw
			}
			_, err := fmt.Fprintln(a.stdout, renderRules(rules.All(), framework))
			return err
		},
	}
	cmd.Flags().String("framework", "", "show only the recommended severity for this framework")
	return cmd
}

// renderRules builds the rules table: one severity column per framework,
// or a single one when framework is set.
func renderRules(all []*engine.Rule, framework domain.Framework) string {
	frameworks := domain.Frameworks
	if framework != "" {
		frameworks = []domain.Framework{framework}
	}

	t := table.NewWriter()
	header := table.Row{"rule", "type", "fixable"}
	for _, fw := range frameworks {
		header = append(header, string(fw))
	}
	header = append(header, "description")
	t.AppendHeader(header)

	for _, rule := range all {
		row := table.Row{rule.Name, string(rule.Meta.Type), fixableMark(rule.Meta.Fixable)}
		for _, fw := range frameworks {
			sev, ok := rule.Meta.Recommended[fw]
			if !ok {
				sev = domain.SeverityOff
			}
			row = append(row, severityMark(sev))
		}
		row = append(row, rule.Meta.Description)
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d rules", len(all))})
	t.SetStyle(table.StyleLight)
	return t.Render()
}

func fixableMark(fixable bool) string {
	if fixable {
		return "yes"
	}
	return ""
}

func severityMark(sev domain.Severity) string {
	if sev == domain.SeverityOff {
		return "-"
	}
	return sev.String()
}
