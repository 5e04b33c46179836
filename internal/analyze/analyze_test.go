package analyze

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpagent/internal/config"
	"corpagent/internal/kb"
	"corpagent/internal/schema"
)

func defaultAnalyzer() *Analyzer {
	return New(kb.Default(), config.Default(), nil, "test", nil)
}

func aoaDoc() schema.Document {
	return schema.Document{
		DocID: "aoa-1",
		RawText: "These Articles of Association set out the company constitution and share capital of the company. " +
			"Under Article 9, any dispute shall be referred to the courts of Dubai.",
		Paragraphs: []schema.Paragraph{
			{Section: "preamble", Text: "These Articles of Association set out the company constitution and share capital of the company."},
			{Section: "article 9", Text: "Under Article 9, any dispute shall be referred to the courts of Dubai."},
		},
	}
}

func TestRun_FullPipeline_JurisdictionFinding(t *testing.T) {
	a := defaultAnalyzer()

	rep := a.Run(context.Background(), []schema.Document{aoaDoc()}, "")
	require.NotNil(t, rep)
	assert.False(t, rep.Partial)

	require.Len(t, rep.Documents, 1)
	assert.Equal(t, kb.TypeArticlesOfAssociation, rep.Documents[0].TypeID)
	assert.GreaterOrEqual(t, rep.Documents[0].Confidence, 0.2)

	require.Len(t, rep.Issues, 1)
	issue := rep.Issues[0]
	assert.Equal(t, "aoa-1", issue.DocID)
	assert.Equal(t, "article 9", issue.Section)
	assert.Equal(t, kb.CategoryJurisdiction, issue.Category)
	assert.Equal(t, schema.SeverityCritical, issue.Severity)
	assert.Contains(t, issue.Citations, "ADGM Companies Regulations 2020, Article 6")
	assert.LessOrEqual(t, len(issue.Citations), config.Default().CitationTopK)

	// A lone AoA resolves to the amendment process (fewest missing).
	assert.Equal(t, kb.ProcessArticlesAmendment, rep.Checklist.ProcessID)
	assert.Equal(t, []string{kb.TypeShareholderResolution}, rep.Checklist.MissingTypes)
	assert.Equal(t, 0.5, rep.Checklist.CompletionPct)

	// 100 - 25 (critical issue) - 25 (one of two required docs missing).
	assert.Equal(t, 50.0, rep.Score)
	assert.Equal(t, "Poor", rep.Rating)
	assert.Equal(t, "High", rep.RiskLevel)

	assert.Contains(t, rep.Recommendations, "Prepare and include the missing required document: Shareholder Resolution")
	assert.NotEmpty(t, rep.ExecutiveSummary)

	assert.Equal(t, Tool, rep.Metadata.Tool)
	assert.Equal(t, "test", rep.Metadata.Version)
	assert.Equal(t, 1, rep.Metadata.DocumentCount)
	assert.NotEmpty(t, rep.Metadata.RunID)
	assert.Contains(t, rep.Metadata.BatchHash, "sha256:")
}

func TestRun_Idempotent(t *testing.T) {
	a := defaultAnalyzer()
	docs := []schema.Document{aoaDoc(), {
		DocID:      "emp-1",
		RawText:    "Employment contract: salary and termination per UAE Labour Law.",
		Paragraphs: []schema.Paragraph{{Section: "terms", Text: "Employment contract: salary and termination per UAE Labour Law."}},
	}}

	first := a.Run(context.Background(), docs, "")
	second := a.Run(context.Background(), docs, "")

	// GeneratedAt is the only field allowed to differ between runs.
	first.Metadata.GeneratedAt = time.Time{}
	second.Metadata.GeneratedAt = time.Time{}

	fb, err := json.Marshal(first)
	require.NoError(t, err)
	sb, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(fb), string(sb))

	assert.Equal(t, first.Metadata.RunID, second.Metadata.RunID)
	assert.Equal(t, first.Metadata.BatchHash, second.Metadata.BatchHash)
}

func TestRun_EmptyBatch(t *testing.T) {
	rep := defaultAnalyzer().Run(context.Background(), nil, "")

	assert.Equal(t, 0.0, rep.Score)
	assert.Equal(t, "Poor", rep.Rating)
	assert.Equal(t, "High", rep.RiskLevel)
	assert.False(t, rep.Partial)
	assert.Empty(t, rep.Documents)
	assert.Empty(t, rep.Issues)
	assert.Empty(t, rep.Checklist.PresentTypes)
	assert.Equal(t, 0.0, rep.Checklist.CompletionPct)
	assert.Equal(t, 0, rep.Metadata.DocumentCount)
	assert.NotEmpty(t, rep.Metadata.RunID)
}

func TestRun_CitationsDisabledWithTopKZero(t *testing.T) {
	opts := config.Default()
	opts.CitationTopK = 0
	a := New(kb.Default(), opts, nil, "test", nil)

	rep := a.Run(context.Background(), []schema.Document{aoaDoc()}, "")
	require.NotEmpty(t, rep.Issues)
	for _, issue := range rep.Issues {
		assert.NotNil(t, issue.Citations)
		assert.Empty(t, issue.Citations)
	}
}

func TestRun_CancelledContextYieldsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := defaultAnalyzer().Run(ctx, []schema.Document{aoaDoc(), aoaDoc()}, "")
	require.NotNil(t, rep)
	assert.True(t, rep.Partial)
	assert.Contains(t, rep.ExecutiveSummary, "partial")
}

func TestRun_AmbiguousClassificationDowngrades(t *testing.T) {
	doc := schema.Document{
		DocID:      "mystery-1",
		RawText:    "Completely unrelated prose about sailing and weather patterns.",
		Paragraphs: []schema.Paragraph{{Section: "p1", Text: "Completely unrelated prose about sailing and weather patterns."}},
	}

	rep := defaultAnalyzer().Run(context.Background(), []schema.Document{doc}, "")
	require.Len(t, rep.Documents, 1)
	assert.Equal(t, schema.TypeUnknown, rep.Documents[0].TypeID)

	var found *schema.Issue
	for i := range rep.Issues {
		if rep.Issues[i].Category == kb.CategoryClassification {
			found = &rep.Issues[i]
			break
		}
	}
	require.NotNil(t, found, "expected a classification downgrade issue")
	assert.Equal(t, "mystery-1", found.DocID)
	assert.Equal(t, schema.SeverityLow, found.Severity)
	assert.Equal(t, schema.SectionDocument, found.Section)
}

func TestRun_UnknownProcessDowngrades(t *testing.T) {
	rep := defaultAnalyzer().Run(context.Background(), []schema.Document{aoaDoc()}, "nonexistent_process")

	var found *schema.Issue
	for i := range rep.Issues {
		if rep.Issues[i].Category == kb.CategoryProcess {
			found = &rep.Issues[i]
			break
		}
	}
	require.NotNil(t, found, "expected an unknown-process issue")
	assert.Equal(t, schema.SeverityMedium, found.Severity)
	assert.Equal(t, "aoa-1", found.DocID)
	assert.Contains(t, found.Message, "nonexistent_process")

	// The checklist still carries a best-guess process.
	assert.NotEmpty(t, rep.Checklist.ProcessID)
}

func TestRun_IssueDocIDsAlwaysInBatch(t *testing.T) {
	docs := []schema.Document{aoaDoc(), {
		DocID:      "blank-1",
		RawText:    "Signature: \nDate: \n",
		Paragraphs: []schema.Paragraph{{Section: "execution", Text: "Signature: \nDate: \n"}},
	}}

	rep := defaultAnalyzer().Run(context.Background(), docs, "nonexistent_process")

	ids := map[string]bool{"aoa-1": true, "blank-1": true}
	for _, issue := range rep.Issues {
		assert.True(t, ids[issue.DocID], "issue references unknown doc %q", issue.DocID)
	}
}

func TestBatchHash_ContentSensitive(t *testing.T) {
	a := []schema.Document{{DocID: "d1", RawText: "alpha"}}
	b := []schema.Document{{DocID: "d1", RawText: "beta"}}
	c := []schema.Document{{DocID: "d2", RawText: "alpha"}}

	ha, hb, hc := BatchHash(a), BatchHash(b), BatchHash(c)
	assert.NotEqual(t, ha, hb)
	assert.NotEqual(t, ha, hc)
	assert.Equal(t, ha, BatchHash(a))
}

func TestBatchHash_OrderSensitive(t *testing.T) {
	d1 := schema.Document{DocID: "d1", RawText: "alpha"}
	d2 := schema.Document{DocID: "d2", RawText: "beta"}
	assert.NotEqual(t, BatchHash([]schema.Document{d1, d2}), BatchHash([]schema.Document{d2, d1}))
}

func TestSeedHint(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, seedHint([]string{"a", "b"}, "", 3))
	assert.Equal(t, []string{"a", "b"}, seedHint([]string{"a", "b"}, "a", 3))
	assert.Equal(t, []string{"h", "a", "b"}, seedHint([]string{"a", "b"}, "h", 3))
	assert.Equal(t, []string{"h", "a"}, seedHint([]string{"a", "b"}, "h", 2))
}
