// Package classify assigns a document type and confidence to each input
// document using the knowledge base's weighted keyword and section-pattern
// definitions.
package classify

import (
	"strings"

	"corpagent/internal/kb"
	"corpagent/internal/schema"
)

// sectionBonus is the score added per distinct section pattern that matches
// at least one paragraph.
const sectionBonus = 2.0

// Classifier scores documents against the knowledge base's type registry.
// It is stateless and safe for concurrent use.
type Classifier struct {
	kb *kb.KnowledgeBase
	// minConfidenceOverride replaces a type's own threshold when present.
	minConfidenceOverride map[string]float64
}

// New returns a Classifier over the given knowledge base. overrides may be
// nil.
func New(base *kb.KnowledgeBase, overrides map[string]float64) *Classifier {
	return &Classifier{kb: base, minConfidenceOverride: overrides}
}

// candidate is one scored document type.
type candidate struct {
	spec           *kb.DocumentTypeSpec
	score          float64
	sectionMatches int
	normalized     float64
}

// Classify computes the winning type for doc. The winner is the highest raw
// score; ties break on more matched section patterns, then on earlier
// registration order. A winner whose normalized score is below the type's
// confidence threshold is reported as unknown, carrying the normalized score
// as confidence. Pure function of the document and the knowledge base.
func (c *Classifier) Classify(doc schema.Document) schema.ClassifiedDocument {
	types := c.kb.DocumentTypes()
	if len(types) == 0 {
		return schema.ClassifiedDocument{DocID: doc.DocID, TypeID: schema.TypeUnknown}
	}

	lower := strings.ToLower(doc.RawText)

	var best candidate
	for i := range types {
		t := &types[i]
		cand := candidate{spec: t}

		for _, kw := range t.Keywords {
			n := strings.Count(lower, strings.ToLower(kw.Term))
			if n == 0 {
				continue
			}
			if kw.Repeatable {
				cand.score += kw.Weight * float64(n)
			} else {
				cand.score += kw.Weight
			}
		}

		cand.sectionMatches = t.CountSectionMatches(doc.Paragraphs)
		cand.score += sectionBonus * float64(cand.sectionMatches)
		cand.normalized = normalize(cand.score, t)

		if best.spec == nil || cand.score > best.score ||
			(cand.score == best.score && cand.sectionMatches > best.sectionMatches) {
			best = cand
		}
	}

	threshold := best.spec.MinConfidence
	if v, ok := c.minConfidenceOverride[best.spec.ID]; ok {
		threshold = v
	}

	if best.score <= 0 || best.normalized < threshold {
		return schema.ClassifiedDocument{
			DocID:      doc.DocID,
			TypeID:     schema.TypeUnknown,
			Confidence: best.normalized,
		}
	}

	return schema.ClassifiedDocument{
		DocID:      doc.DocID,
		TypeID:     best.spec.ID,
		Confidence: best.normalized,
	}
}

// normalize divides the raw score by the type's theoretical maximum
// (every keyword counted once plus every section pattern matched) and clamps
// to [0,1]. Repeatable keywords can push the raw score past the maximum,
// which the clamp absorbs.
func normalize(score float64, t *kb.DocumentTypeSpec) float64 {
	max := sectionBonus * float64(len(t.SectionPatterns))
	for _, kw := range t.Keywords {
		max += kw.Weight
	}
	if max <= 0 {
		return 0
	}
	n := score / max
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}
