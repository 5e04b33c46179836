// Package redflag evaluates the knowledge base's red-flag rule sets against
// document text, yielding compliance issues.
package redflag

import (
	"fmt"
	"strings"

	"corpagent/internal/kb"
	"corpagent/internal/schema"
)

// Engine runs rule evaluation. Stateless and safe for concurrent use.
type Engine struct {
	kb *kb.KnowledgeBase
}

// New returns an Engine over the given knowledge base.
func New(base *kb.KnowledgeBase) *Engine {
	return &Engine{kb: base}
}

// Detect evaluates every rule against doc. Output order is rule registration
// order, then section order within the document. At most one issue is
// emitted per (rule, section) pair; distinct rules matching the same section
// each emit independently. A match found only in the raw text (not in any
// paragraph) is reported against the document-level section locator.
// Issue confidence is the fraction of the rule's patterns that matched in
// that section. Pure function of the document and the knowledge base.
func (e *Engine) Detect(doc schema.Document) []schema.Issue {
	rules := e.kb.Rules()
	issues := make([]schema.Issue, 0)

	for i := range rules {
		r := &rules[i]
		seen := make(map[string]bool, len(doc.Paragraphs))
		ruleHit := false

		for _, p := range doc.Paragraphs {
			if seen[p.Section] {
				continue
			}
			matched, excerpt := r.Match(p.Text)
			if matched == 0 {
				continue
			}
			seen[p.Section] = true
			ruleHit = true
			issues = append(issues, e.newIssue(r, doc.DocID, p.Section, matched, excerpt))
		}

		if !ruleHit {
			if matched, excerpt := r.Match(doc.RawText); matched > 0 {
				issues = append(issues, e.newIssue(r, doc.DocID, schema.SectionDocument, matched, excerpt))
			}
		}
	}

	return issues
}

func (e *Engine) newIssue(r *kb.RedFlagRule, docID, section string, matched int, excerpt string) schema.Issue {
	return schema.Issue{
		DocID:        docID,
		Section:      section,
		Category:     r.Category,
		Severity:     r.Severity,
		Message:      r.Message,
		Suggestion:   renderSuggestion(r.Suggestion, excerpt),
		MatchedText:  excerpt,
		Citations:    []string{},
		Confidence:   float64(matched) / float64(r.PatternCount()),
		CitationHint: r.CitationHint,
		Replacement:  r.Replacement,
	}
}

// renderSuggestion fills the matched excerpt into the rule's suggestion
// template when it carries a verb for it.
func renderSuggestion(tmpl, excerpt string) string {
	if strings.Contains(tmpl, "%q") || strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, excerpt)
	}
	return tmpl
}
