// Package score reduces issues and a checklist result to a compliance score
// and risk band. The score is a pure function of its inputs and the
// configured tables; there is no hidden state.
package score

import (
	"math"
	"sort"

	"corpagent/internal/schema"
)

// Weights maps issue severity to its score penalty.
type Weights map[schema.Severity]float64

// DefaultWeights is the canonical penalty table.
func DefaultWeights() Weights {
	return Weights{
		schema.SeverityCritical: 25,
		schema.SeverityHigh:     15,
		schema.SeverityMedium:   8,
		schema.SeverityLow:      3,
	}
}

// Threshold maps a minimum score to its rating and risk labels. Thresholds
// form an ordered table; the highest MinScore at or below the score wins.
type Threshold struct {
	MinScore float64 `yaml:"min_score"`
	Rating   string  `yaml:"rating"`
	Risk     string  `yaml:"risk"`
}

// DefaultThresholds is the canonical risk band table. Boundary values are
// part of the contract: a score of exactly 80 is Good/Low.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{MinScore: 90, Rating: "Excellent", Risk: "Low"},
		{MinScore: 80, Rating: "Good", Risk: "Low"},
		{MinScore: 60, Rating: "Moderate", Risk: "Medium"},
		{MinScore: 0, Rating: "Poor", Risk: "High"},
	}
}

// Scorer computes compliance scores with a fixed configuration.
type Scorer struct {
	weights    Weights
	thresholds []Threshold
}

// New returns a Scorer. Nil weights or empty thresholds select the defaults.
// Thresholds are sorted descending by MinScore so lookup is a single scan.
func New(weights Weights, thresholds []Threshold) *Scorer {
	if weights == nil {
		weights = DefaultWeights()
	}
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds()
	}
	sorted := make([]Threshold, len(thresholds))
	copy(sorted, thresholds)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinScore > sorted[j].MinScore
	})
	return &Scorer{weights: weights, thresholds: sorted}
}

// Score applies the penalty model: start at 100, subtract the severity
// weight of every issue, subtract half the proportional checklist share for
// every missing required document, and clamp to [0,100].
func (s *Scorer) Score(issues []schema.Issue, checklist schema.ChecklistResult) schema.ScoreResult {
	penalty := 0.0
	for _, issue := range issues {
		penalty += s.weights[issue.Severity]
	}

	required := checklist.RequiredCount
	if required < 1 {
		required = 1
	}
	missingPenalty := float64(len(checklist.MissingTypes)) * (100 / float64(required)) * 0.5

	score := 100 - penalty - missingPenalty
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	score = math.Round(score*1000) / 1000

	rating, risk := s.Band(score)
	return schema.ScoreResult{Score: score, Rating: rating, RiskLevel: risk}
}

// Band returns the rating and risk labels for a score.
func (s *Scorer) Band(score float64) (rating, risk string) {
	for _, t := range s.thresholds {
		if score >= t.MinScore {
			return t.Rating, t.Risk
		}
	}
	last := s.thresholds[len(s.thresholds)-1]
	return last.Rating, last.Risk
}
