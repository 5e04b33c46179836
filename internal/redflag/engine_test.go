package redflag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpagent/internal/kb"
	"corpagent/internal/schema"
)

func buildEngine(t *testing.T, rules ...kb.RedFlagRule) *Engine {
	t.Helper()
	k, err := kb.New(nil, rules, nil, nil)
	require.NoError(t, err)
	return New(k)
}

func jurisdictionRule() kb.RedFlagRule {
	return kb.RedFlagRule{
		ID:         "jurisdiction-check",
		Category:   "jurisdiction",
		Patterns:   []string{`courts of (?!ADGM)`},
		Severity:   schema.SeverityHigh,
		Message:    "Document references a non-ADGM jurisdiction",
		Suggestion: "Replace %q with the ADGM Courts clause",
	}
}

func TestDetect_CourtsOfDubai_ExactlyOneHighIssue(t *testing.T) {
	e := buildEngine(t, jurisdictionRule())

	doc := schema.Document{
		DocID:   "aoa-1",
		RawText: "Disputes shall be settled in the courts of Dubai.",
		Paragraphs: []schema.Paragraph{
			{Section: "jurisdiction", Text: "Disputes shall be settled in the courts of Dubai."},
		},
	}

	issues := e.Detect(doc)
	require.Len(t, issues, 1)
	assert.Equal(t, "aoa-1", issues[0].DocID)
	assert.Equal(t, "jurisdiction", issues[0].Section)
	assert.Equal(t, "jurisdiction", issues[0].Category)
	assert.Equal(t, schema.SeverityHigh, issues[0].Severity)
	assert.InDelta(t, 1.0, issues[0].Confidence, 1e-9)
}

func TestDetect_CourtsOfADGM_NoIssue(t *testing.T) {
	e := buildEngine(t, jurisdictionRule())

	doc := schema.Document{
		DocID:   "aoa-1",
		RawText: "Disputes shall be settled in the courts of ADGM.",
		Paragraphs: []schema.Paragraph{
			{Section: "jurisdiction", Text: "Disputes shall be settled in the courts of ADGM."},
		},
	}

	assert.Empty(t, e.Detect(doc))
}

func TestDetect_DedupesSameRuleSameSection(t *testing.T) {
	e := buildEngine(t, jurisdictionRule())

	doc := schema.Document{
		DocID: "d1",
		Paragraphs: []schema.Paragraph{
			{Section: "s1", Text: "courts of Dubai"},
			{Section: "s1", Text: "courts of Sharjah"},
			{Section: "s2", Text: "courts of Dubai"},
		},
	}

	issues := e.Detect(doc)
	require.Len(t, issues, 2)
	assert.Equal(t, "s1", issues[0].Section)
	assert.Equal(t, "s2", issues[1].Section)
}

func TestDetect_DistinctRulesSameSectionEmitIndependently(t *testing.T) {
	placeholder := kb.RedFlagRule{
		ID:       "placeholder-check",
		Category: "completeness",
		Patterns: []string{`TBD`},
		Severity: schema.SeverityMedium,
		Message:  "Placeholder text found",
	}
	e := buildEngine(t, jurisdictionRule(), placeholder)

	doc := schema.Document{
		DocID: "d1",
		Paragraphs: []schema.Paragraph{
			{Section: "s1", Text: "Jurisdiction: courts of Dubai, venue TBD"},
		},
	}

	issues := e.Detect(doc)
	require.Len(t, issues, 2)
	// Rule registration order is preserved.
	assert.Equal(t, "jurisdiction", issues[0].Category)
	assert.Equal(t, "completeness", issues[1].Category)
}

func TestDetect_ConfidenceIsPatternFraction(t *testing.T) {
	multi := kb.RedFlagRule{
		ID:       "multi-pattern",
		Category: "employment",
		Patterns: []string{`UAE Labour Law`, `Labour Court`, `Ministry of Human Resources`},
		Severity: schema.SeverityHigh,
		Message:  "non-ADGM employment law",
	}
	e := buildEngine(t, multi)

	doc := schema.Document{
		DocID: "d1",
		Paragraphs: []schema.Paragraph{
			{Section: "s1", Text: "Governed by UAE Labour Law; disputes go to the Labour Court."},
		},
	}

	issues := e.Detect(doc)
	require.Len(t, issues, 1)
	assert.InDelta(t, 2.0/3.0, issues[0].Confidence, 1e-9)
}

func TestDetect_RawTextOnlyMatchUsesDocumentLocator(t *testing.T) {
	e := buildEngine(t, jurisdictionRule())

	doc := schema.Document{
		DocID:   "d1",
		RawText: "header text ... courts of Dubai ... footer text",
		Paragraphs: []schema.Paragraph{
			{Section: "s1", Text: "nothing objectionable here"},
		},
	}

	issues := e.Detect(doc)
	require.Len(t, issues, 1)
	assert.Equal(t, schema.SectionDocument, issues[0].Section)
}

func TestDetect_SuggestionTemplateFilledWithExcerpt(t *testing.T) {
	e := buildEngine(t, jurisdictionRule())

	doc := schema.Document{
		DocID: "d1",
		Paragraphs: []schema.Paragraph{
			{Section: "s1", Text: "courts of Dubai"},
		},
	}

	issues := e.Detect(doc)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Suggestion, `"courts of "`)
	assert.Equal(t, "courts of ", issues[0].MatchedText)
}

func TestDetect_EmptyCitationsNotNil(t *testing.T) {
	e := buildEngine(t, jurisdictionRule())
	issues := e.Detect(schema.Document{
		DocID:      "d1",
		Paragraphs: []schema.Paragraph{{Section: "s1", Text: "courts of Dubai"}},
	})
	require.Len(t, issues, 1)
	assert.NotNil(t, issues[0].Citations)
	assert.Empty(t, issues[0].Citations)
}

func TestDetect_Deterministic(t *testing.T) {
	e := buildEngine(t, jurisdictionRule())
	doc := schema.Document{
		DocID: "d1",
		Paragraphs: []schema.Paragraph{
			{Section: "s1", Text: "courts of Dubai"},
			{Section: "s2", Text: "courts of Sharjah"},
		},
	}

	first := e.Detect(doc)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Detect(doc))
	}
}
