package formatter

import (
	"encoding/json"
	"io"

	"github.com/specvital/testinglint/pkg/domain"
)

// jsonFormatter writes one entry per file, numbering severities 1 (warn)
// and 2 (error) and columns from 1, the shape editor integrations expect.
type jsonFormatter struct{}

type jsonFile struct {
	ErrorCount          int           `json:"errorCount"`
	FilePath            string        `json:"filePath"`
	FixableErrorCount   int           `json:"fixableErrorCount"`
	FixableWarningCount int           `json:"fixableWarningCount"`
	Messages            []jsonMessage `json:"messages"`
	// Output is the fixed source, present only when fixes were applied.
	Output       string `json:"output,omitempty"`
	WarningCount int    `json:"warningCount"`
}

type jsonMessage struct {
	Column    int         `json:"column"`
	EndColumn int         `json:"endColumn"`
	EndLine   int         `json:"endLine"`
	Fix       *domain.Fix `json:"fix,omitempty"`
	Line      int         `json:"line"`
	Message   string      `json:"message"`
	MessageID string      `json:"messageId"`
	RuleID    string      `json:"ruleId"`
	Severity  int         `json:"severity"`
}

func (jsonFormatter) Format(w io.Writer, report domain.Report) error {
	files := make([]jsonFile, 0, len(report.Files))
	for _, file := range report.Files {
		out := jsonFile{FilePath: file.Path, Messages: make([]jsonMessage, 0, len(file.Findings))}
		if file.Fixed != nil {
			out.Output = string(file.Fixed)
		}
		for _, f := range file.Findings {
			out.Messages = append(out.Messages, jsonMessage{
				Column:    f.Location.StartCol + 1,
				EndColumn: f.Location.EndCol + 1,
				EndLine:   f.Location.EndLine,
				Fix:       f.Fix,
				Line:      f.Location.StartLine,
				Message:   f.Message,
				MessageID: f.MessageID,
				RuleID:    f.Rule,
				Severity:  int(f.Severity),
			})
			switch f.Severity {
			case domain.SeverityError:
				out.ErrorCount++
				if f.Fix != nil {
					out.FixableErrorCount++
				}
			case domain.SeverityWarn:
				out.WarningCount++
				if f.Fix != nil {
					out.FixableWarningCount++
				}
			}
		}
		files = append(files, out)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(files)
}
