// Package citation attaches supporting regulatory citations to issues by
// ranking the knowledge base's regulation corpus against section text. The
// similarity function is a pluggable capability so a term-overlap baseline
// and an embedding-backed scorer are interchangeable.
package citation

import (
	"context"
	"sort"
	"strings"
)

// Scorer computes a relevance score in [0,1] between two texts. A remote
// implementation may fail or time out; the retriever degrades instead of
// propagating the error.
type Scorer interface {
	Score(ctx context.Context, a, b string) (float64, error)
}

// TermOverlap is the deterministic baseline Scorer: the Jaccard ratio over
// distinct lowercase terms longer than two characters.
type TermOverlap struct{}

// Score implements Scorer. It never fails and ignores ctx.
func (TermOverlap) Score(_ context.Context, a, b string) (float64, error) {
	ta := terms(a)
	tb := terms(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0, nil
	}

	intersection := 0
	for t := range ta {
		if tb[t] {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union), nil
}

func terms(s string) map[string]bool {
	out := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ".,;:()[]\"'")
		if len(f) > 2 {
			out[f] = true
		}
	}
	return out
}

// Retriever ranks regulation entries for an issue category. Safe for
// concurrent use.
type Retriever struct {
	entries      []Entry
	scorer       Scorer
	minRelevance float64
}

// Entry is one rankable regulation corpus item.
type Entry struct {
	Excerpt        string
	Categories     []string
	SourceCitation string
}

// DefaultMinRelevance drops entries with effectively no term overlap.
const DefaultMinRelevance = 0.05

// New returns a Retriever over the given corpus entries. A nil scorer
// selects TermOverlap. minRelevance ≤ 0 selects DefaultMinRelevance.
func New(entries []Entry, scorer Scorer, minRelevance float64) *Retriever {
	if scorer == nil {
		scorer = TermOverlap{}
	}
	if minRelevance <= 0 {
		minRelevance = DefaultMinRelevance
	}
	return &Retriever{entries: entries, scorer: scorer, minRelevance: minRelevance}
}

// Retrieve returns up to k source citations applicable to category, ranked
// by relevance to sectionText, ties broken by corpus registration order.
// It never returns an error: entries whose scoring fails are skipped, and an
// empty result is a valid, reportable outcome. k ≤ 0 disables retrieval.
func (r *Retriever) Retrieve(ctx context.Context, category, sectionText string, k int) []string {
	if k <= 0 {
		return []string{}
	}

	type ranked struct {
		order int
		score float64
		cite  string
	}

	candidates := make([]ranked, 0, len(r.entries))
	for i, e := range r.entries {
		if !appliesTo(e, category) {
			continue
		}
		score, err := r.scorer.Score(ctx, sectionText, e.Excerpt)
		if err != nil {
			// Degraded retrieval: skip the entry rather than fail the issue.
			continue
		}
		if score < r.minRelevance {
			continue
		}
		candidates = append(candidates, ranked{order: i, score: score, cite: e.SourceCitation})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.cite)
	}
	return out
}

func appliesTo(e Entry, category string) bool {
	for _, c := range e.Categories {
		if c == category {
			return true
		}
	}
	return false
}
