package render

import (
	"bytes"
	"fmt"
	"text/template"

	"corpagent/internal/schema"
)

type markdownRenderer struct{}

const mdTemplateText = `# Compliance Report

**Process:** {{ if .Checklist.ProcessID }}{{ .Checklist.ProcessID }}{{ else }}unresolved{{ end }}
**Score:** {{ printf "%.1f" .Score }}/100 ({{ .Rating }})
**Risk Level:** {{ .RiskLevel }}
{{ if .Partial }}> Note: partial results; the run was cancelled before all documents completed.
{{ end }}
## Documents
{{ range .Documents }}
- {{ .DocID }}: {{ .TypeID }} ({{ pct .Confidence }} confidence)
{{- end }}

## Checklist

Completion: {{ pct .Checklist.CompletionPct }} ({{ len .Checklist.PresentTypes }} present, {{ .Checklist.RequiredCount }} required)
{{ if .Checklist.MissingTypes }}Missing:
{{ range .Checklist.MissingTypes }}- {{ . }}
{{ end }}{{ else }}All required documents are present.
{{ end }}{{ if .Checklist.RedundantTypes }}Duplicated types (informational):
{{ range .Checklist.RedundantTypes }}- {{ . }}
{{ end }}{{ end }}{{ if .Issues }}
## Issues
{{ range .Issues }}
### {{ .Severity }} · {{ .Category }} · {{ .DocID }} ({{ .Section }})
{{ .Message }}

**Suggestion:** {{ .Suggestion }}
{{ range .Citations }}> {{ . }}
{{ end }}{{ end }}{{ end }}{{ if .Recommendations }}
## Recommendations
{{ range .Recommendations }}
- {{ . }}
{{- end }}
{{ end }}
## Executive Summary

{{ .ExecutiveSummary }}

---
*{{ .Metadata.Tool }} {{ .Metadata.Version }} | run {{ .Metadata.RunID }} | {{ .Metadata.DocumentCount }} document(s)*
`

var mdTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
}).Parse(mdTemplateText))

func (r *markdownRenderer) Render(report *schema.ComplianceReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, report); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}
