// Package report composes the final compliance report: recommendations,
// executive summary, and the annotation instructions consumed by the
// external document-annotation collaborator.
package report

import (
	"fmt"
	"sort"
	"strings"

	"corpagent/internal/kb"
	"corpagent/internal/schema"
)

// maxIssueRecommendations caps how many issue-derived recommendations the
// report carries; missing-document recommendations are always included.
const maxIssueRecommendations = 5

// recommendationTemplates holds the fixed per-category recommendation text.
var recommendationTemplates = map[string]string{
	kb.CategoryJurisdiction:       "Replace all non-ADGM jurisdiction references with the ADGM Courts exclusive jurisdiction clause",
	kb.CategoryTemplateCompliance: "Align the affected clauses with the official ADGM templates",
	kb.CategoryEmployment:         "Rework employment terms to reference the ADGM Employment Regulations 2019",
	kb.CategoryCompleteness:       "Complete all placeholder and unfinished clauses before submission",
	kb.CategoryExecution:          "Complete every signature and execution block with signatory, capacity, and date",
	kb.CategoryDrafting:           "Replace discretionary or ambiguous wording with definitive, binding language",
	kb.CategoryClassification:     "Confirm the document types that could not be classified automatically",
	kb.CategoryProcess:            "Confirm the intended business process so the correct checklist applies",
}

// Assembler builds compliance reports. Stateless and safe for concurrent use.
type Assembler struct {
	kb *kb.KnowledgeBase
}

// New returns an Assembler over the given knowledge base.
func New(base *kb.KnowledgeBase) *Assembler {
	return &Assembler{kb: base}
}

// Assemble composes the report body from the pipeline outputs. Metadata is
// left zero for the caller to fill. Every field is deterministic given the
// inputs.
func (a *Assembler) Assemble(classified []schema.ClassifiedDocument, issues []schema.Issue, checklist schema.ChecklistResult, sr schema.ScoreResult, partial bool) *schema.ComplianceReport {
	if classified == nil {
		classified = []schema.ClassifiedDocument{}
	}
	if issues == nil {
		issues = []schema.Issue{}
	}

	return &schema.ComplianceReport{
		Documents:        classified,
		Issues:           issues,
		Checklist:        checklist,
		Score:            sr.Score,
		Rating:           sr.Rating,
		RiskLevel:        sr.RiskLevel,
		Recommendations:  a.recommendations(issues, checklist),
		ExecutiveSummary: a.executiveSummary(classified, issues, checklist, sr, partial),
		Partial:          partial,
	}
}

// recommendations derives fixed-template recommendations from the top issues
// ordered by severity then confidence (one per category), followed by one
// per missing required document type.
func (a *Assembler) recommendations(issues []schema.Issue, checklist schema.ChecklistResult) []string {
	ranked := make([]schema.Issue, len(issues))
	copy(ranked, issues)
	sort.SliceStable(ranked, func(i, j int) bool {
		si := schema.SeverityOrdinal(ranked[i].Severity)
		sj := schema.SeverityOrdinal(ranked[j].Severity)
		if si != sj {
			return si > sj
		}
		return ranked[i].Confidence > ranked[j].Confidence
	})

	recs := make([]string, 0, maxIssueRecommendations+len(checklist.MissingTypes))
	seen := make(map[string]bool)
	for _, issue := range ranked {
		if len(recs) == maxIssueRecommendations {
			break
		}
		if seen[issue.Category] {
			continue
		}
		seen[issue.Category] = true
		tmpl, ok := recommendationTemplates[issue.Category]
		if !ok {
			tmpl = fmt.Sprintf("Review and resolve the %s findings", issue.Category)
		}
		recs = append(recs, tmpl)
	}

	for _, missing := range checklist.MissingTypes {
		recs = append(recs, fmt.Sprintf("Prepare and include the missing required document: %s", a.typeName(missing)))
	}

	return recs
}

// executiveSummary produces the templated summary sentence. It is always
// non-empty, even for an empty batch; an external text generator may replace
// it downstream but is never required.
func (a *Assembler) executiveSummary(classified []schema.ClassifiedDocument, issues []schema.Issue, checklist schema.ChecklistResult, sr schema.ScoreResult, partial bool) string {
	highPriority := 0
	for _, issue := range issues {
		if schema.SeverityOrdinal(issue.Severity) >= schema.SeverityOrdinal(schema.SeverityHigh) {
			highPriority++
		}
	}

	processName := "unresolved process"
	if p, ok := a.kb.ProcessByID(checklist.ProcessID); ok {
		processName = p.Name
	}

	summary := fmt.Sprintf(
		"Compliance analysis for %s: score %.1f/100 (%s, %s risk). %d issue(s) identified across %d document(s), %d high priority or above; %d of %d required document(s) missing.",
		processName, sr.Score, sr.Rating, sr.RiskLevel,
		len(issues), len(classified), highPriority,
		len(checklist.MissingTypes), checklist.RequiredCount,
	)
	if partial {
		summary += " Results are partial: the run was cancelled before all documents completed."
	}
	return summary
}

func (a *Assembler) typeName(typeID string) string {
	if t, ok := a.kb.TypeByID(typeID); ok && t.Name != "" {
		return t.Name
	}
	return typeID
}

// Annotations derives the ordered annotation instruction list, one per
// issue, joining message, suggestion, and citations into the comment text.
func Annotations(issues []schema.Issue) []schema.Annotation {
	out := make([]schema.Annotation, 0, len(issues))
	for _, issue := range issues {
		var b strings.Builder
		b.WriteString(issue.Message)
		if issue.Suggestion != "" {
			b.WriteString(" Suggestion: ")
			b.WriteString(issue.Suggestion)
			if !strings.HasSuffix(issue.Suggestion, ".") {
				b.WriteString(".")
			}
		}
		if len(issue.Citations) > 0 {
			b.WriteString(" See: ")
			b.WriteString(strings.Join(issue.Citations, "; "))
			b.WriteString(".")
		}
		out = append(out, schema.Annotation{
			DocID:   issue.DocID,
			Section: issue.Section,
			Comment: b.String(),
		})
	}
	return out
}
