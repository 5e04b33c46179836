package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"corpagent/internal/schema"
)

func makeIssues(severities ...schema.Severity) []schema.Issue {
	issues := make([]schema.Issue, len(severities))
	for i, s := range severities {
		issues[i] = schema.Issue{Severity: s}
	}
	return issues
}

func fullChecklist(required int) schema.ChecklistResult {
	return schema.ChecklistResult{RequiredCount: required, CompletionPct: 1}
}

func missingChecklist(required int, missing ...string) schema.ChecklistResult {
	return schema.ChecklistResult{RequiredCount: required, MissingTypes: missing}
}

func TestScore_NoIssuesAllPresentIs100(t *testing.T) {
	got := New(nil, nil).Score(nil, fullChecklist(3))
	assert.Equal(t, 100.0, got.Score)
	assert.Equal(t, "Excellent", got.Rating)
	assert.Equal(t, "Low", got.RiskLevel)
}

func TestScore_DefaultSeverityWeights(t *testing.T) {
	s := New(nil, nil)

	// 25 + 15 + 8 + 3 = 51 → 49.
	issues := makeIssues(schema.SeverityCritical, schema.SeverityHigh, schema.SeverityMedium, schema.SeverityLow)
	got := s.Score(issues, fullChecklist(1))
	assert.Equal(t, 49.0, got.Score)
	assert.Equal(t, "Poor", got.Rating)
	assert.Equal(t, "High", got.RiskLevel)
}

func TestScore_ClampsAtZero(t *testing.T) {
	s := New(nil, nil)
	issues := makeIssues(
		schema.SeverityCritical, schema.SeverityCritical, schema.SeverityCritical,
		schema.SeverityCritical, schema.SeverityCritical,
	)
	got := s.Score(issues, fullChecklist(1))
	assert.Equal(t, 0.0, got.Score)
}

func TestScore_MissingDocumentPenalty(t *testing.T) {
	s := New(nil, nil)

	// One missing of three required: 1 * (100/3) * 0.5 = 16.667.
	got := s.Score(nil, missingChecklist(3, "board_resolution"))
	assert.Equal(t, 83.333, got.Score)
	assert.Equal(t, "Good", got.Rating)
	assert.Equal(t, "Low", got.RiskLevel)
}

func TestScore_MissingPenaltyWithZeroRequired(t *testing.T) {
	// Degenerate input: missing entries with required count 0 divide by
	// max(required, 1).
	got := New(nil, nil).Score(nil, missingChecklist(0, "x"))
	assert.Equal(t, 50.0, got.Score)
}

func TestScore_Monotonic_AddingIssueNeverIncreases(t *testing.T) {
	s := New(nil, nil)
	chk := fullChecklist(2)

	issues := makeIssues(schema.SeverityMedium)
	before := s.Score(issues, chk).Score

	for _, sev := range []schema.Severity{schema.SeverityMedium, schema.SeverityHigh, schema.SeverityCritical} {
		after := s.Score(append(makeIssues(sev), issues...), chk).Score
		assert.LessOrEqual(t, after, before, "adding %s issue increased score", sev)
	}
}

func TestScore_CustomWeights(t *testing.T) {
	weights := Weights{
		schema.SeverityCritical: 50,
		schema.SeverityHigh:     10,
		schema.SeverityMedium:   5,
		schema.SeverityLow:      1,
	}
	got := New(weights, nil).Score(makeIssues(schema.SeverityCritical, schema.SeverityLow), fullChecklist(1))
	assert.Equal(t, 49.0, got.Score)
}

func TestBand_BoundaryValues(t *testing.T) {
	s := New(nil, nil)

	tests := []struct {
		score  float64
		rating string
		risk   string
	}{
		{100, "Excellent", "Low"},
		{90, "Excellent", "Low"},
		{89.999, "Good", "Low"},
		{80, "Good", "Low"},
		{79.999, "Moderate", "Medium"},
		{60, "Moderate", "Medium"},
		{59.999, "Poor", "High"},
		{0, "Poor", "High"},
	}
	for _, tt := range tests {
		rating, risk := s.Band(tt.score)
		assert.Equal(t, tt.rating, rating, "score %g", tt.score)
		assert.Equal(t, tt.risk, risk, "score %g", tt.score)
	}
}

func TestBand_CustomThresholdsUnsortedInput(t *testing.T) {
	thresholds := []Threshold{
		{MinScore: 0, Rating: "Fail", Risk: "High"},
		{MinScore: 50, Rating: "Pass", Risk: "Low"},
	}
	s := New(nil, thresholds)

	rating, risk := s.Band(50)
	assert.Equal(t, "Pass", rating)
	assert.Equal(t, "Low", risk)

	rating, risk = s.Band(49.9)
	assert.Equal(t, "Fail", rating)
	assert.Equal(t, "High", risk)
}
