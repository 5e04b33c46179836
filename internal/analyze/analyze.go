// Package analyze orchestrates one compliance analysis run: concurrent
// per-document classification and red-flag detection, a synchronization
// barrier, checklist verification, concurrent citation retrieval, scoring,
// and report assembly.
//
// A run never fails for a syntactically valid batch. Degraded paths
// (ambiguous classification, unresolvable process, unavailable citation
// lookup, cancellation) downgrade to informational issues or a partial
// report instead of errors.
package analyze

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"corpagent/internal/checklist"
	"corpagent/internal/citation"
	"corpagent/internal/classify"
	"corpagent/internal/config"
	"corpagent/internal/kb"
	"corpagent/internal/redflag"
	"corpagent/internal/report"
	"corpagent/internal/schema"
	"corpagent/internal/score"
)

// Tool is the tool name recorded in report metadata.
const Tool = "corpagent"

// Analyzer runs the full pipeline against one knowledge base. Safe for
// concurrent use; the knowledge base is read-only for the analyzer's
// lifetime.
type Analyzer struct {
	kb      *kb.KnowledgeBase
	opts    config.Options
	version string

	classifier *classify.Classifier
	engine     *redflag.Engine
	verifier   *checklist.Verifier
	retriever  *citation.Retriever
	scorer     *score.Scorer
	assembler  *report.Assembler
	log        *slog.Logger
}

// New builds an Analyzer. scorer selects the citation similarity capability;
// nil selects the deterministic term-overlap baseline. log may be nil.
func New(base *kb.KnowledgeBase, opts config.Options, scorer citation.Scorer, version string, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	regs := base.Regulations()
	entries := make([]citation.Entry, 0, len(regs))
	for _, r := range regs {
		entries = append(entries, citation.Entry{
			Excerpt:        r.Excerpt,
			Categories:     r.Categories,
			SourceCitation: r.SourceCitation,
		})
	}

	return &Analyzer{
		kb:         base,
		opts:       opts,
		version:    version,
		classifier: classify.New(base, opts.MinConfidenceOverride),
		engine:     redflag.New(base),
		verifier:   checklist.New(base),
		retriever:  citation.New(entries, scorer, opts.CitationMinRelevance),
		scorer:     score.New(opts.SeverityWeights, opts.RiskLevelThresholds),
		assembler:  report.New(base),
		log:        log,
	}
}

// docResult holds the per-document pipeline output. done is false when the
// run was cancelled before the document was processed.
type docResult struct {
	classified schema.ClassifiedDocument
	issues     []schema.Issue
	done       bool
}

// Run analyzes a document batch. processID names the process checklist to
// verify against; empty means resolve it from the classified batch. The
// returned report is always valid; cancellation of ctx yields a report built
// from whatever completed, flagged Partial. An empty batch yields a minimal
// report with score 0.
func (a *Analyzer) Run(ctx context.Context, docs []schema.Document, processID string) *schema.ComplianceReport {
	start := time.Now()
	hash := BatchHash(docs)

	if len(docs) == 0 {
		rating, risk := a.scorer.Band(0)
		rep := a.assembler.Assemble(nil, nil, emptyChecklist(), schema.ScoreResult{Score: 0, Rating: rating, RiskLevel: risk}, false)
		a.finalize(rep, hash, 0)
		return rep
	}

	// Stage 1: classification and red-flag detection fan out per document.
	// The group wait is the barrier before any whole-batch computation.
	results := make([]docResult, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.MaxConcurrency)
	for i := range docs {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			doc := docs[i]
			results[i] = docResult{
				classified: a.classifier.Classify(doc),
				issues:     a.engine.Detect(doc),
				done:       true,
			}
			a.log.Debug("document analyzed",
				"doc_id", doc.DocID,
				"type", results[i].classified.TypeID,
				"confidence", results[i].classified.Confidence,
				"issues", len(results[i].issues))
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	partial := false
	classified := make([]schema.ClassifiedDocument, 0, len(docs))
	issues := make([]schema.Issue, 0)
	for i := range results {
		if !results[i].done {
			partial = true
			continue
		}
		classified = append(classified, results[i].classified)
		issues = append(issues, results[i].issues...)
		if results[i].classified.TypeID == schema.TypeUnknown {
			issues = append(issues, ambiguousClassificationIssue(results[i].classified))
		}
	}

	// Stage 2: whole-batch checklist verification.
	chk, err := a.verifier.Verify(classified, processID)
	if errors.Is(err, checklist.ErrUnknownProcess) && len(classified) > 0 {
		issues = append(issues, unknownProcessIssue(classified[0].DocID, processID))
	}

	// Stage 3: citation retrieval fans out per issue.
	if a.opts.CitationTopK > 0 {
		a.attachCitations(ctx, docs, issues)
	}

	if ctx.Err() != nil {
		partial = true
	}

	sr := a.scorer.Score(issues, chk)
	rep := a.assembler.Assemble(classified, issues, chk, sr, partial)
	a.finalize(rep, hash, len(docs))

	a.log.Info("analysis complete",
		"documents", len(docs),
		"issues", len(issues),
		"score", sr.Score,
		"risk", sr.RiskLevel,
		"partial", partial,
		"elapsed", time.Since(start))
	return rep
}

// attachCitations enriches every issue with up to CitationTopK citations,
// concurrently and independently. A failed or cancelled lookup leaves the
// issue's citation list empty rather than failing the run.
func (a *Analyzer) attachCitations(ctx context.Context, docs []schema.Document, issues []schema.Issue) {
	sections := sectionIndex(docs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.MaxConcurrency)
	for i := range issues {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			issue := &issues[i]
			text := sections[issue.DocID][issue.Section]
			cites := a.retriever.Retrieve(gctx, issue.Category, text, a.opts.CitationTopK)
			issue.Citations = seedHint(cites, issue.CitationHint, a.opts.CitationTopK)
			return nil
		})
	}
	_ = g.Wait()
}

// seedHint prepends the rule's citation hint when retrieval did not already
// surface it, keeping the list within k.
func seedHint(cites []string, hint string, k int) []string {
	if hint == "" {
		return cites
	}
	for _, c := range cites {
		if c == hint {
			return cites
		}
	}
	out := append([]string{hint}, cites...)
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// sectionIndex maps doc id → section locator → text, with the raw text under
// the document-level locator.
func sectionIndex(docs []schema.Document) map[string]map[string]string {
	out := make(map[string]map[string]string, len(docs))
	for _, d := range docs {
		m := make(map[string]string, len(d.Paragraphs)+1)
		m[schema.SectionDocument] = d.RawText
		for _, p := range d.Paragraphs {
			if _, ok := m[p.Section]; !ok {
				m[p.Section] = p.Text
			}
		}
		out[d.DocID] = m
	}
	return out
}

func ambiguousClassificationIssue(cd schema.ClassifiedDocument) schema.Issue {
	return schema.Issue{
		DocID:      cd.DocID,
		Section:    schema.SectionDocument,
		Category:   kb.CategoryClassification,
		Severity:   schema.SeverityLow,
		Message:    "Document type could not be determined with sufficient confidence",
		Suggestion: "Confirm the document type manually or supply a clearer document title and headings",
		Citations:  []string{},
		Confidence: cd.Confidence,
	}
}

func unknownProcessIssue(docID, requested string) schema.Issue {
	msg := "No matching business process could be resolved for the uploaded batch"
	if requested != "" {
		msg = fmt.Sprintf("Requested process %q is not registered; checklist fell back to the best-guess process", requested)
	}
	return schema.Issue{
		DocID:      docID,
		Section:    schema.SectionDocument,
		Category:   kb.CategoryProcess,
		Severity:   schema.SeverityMedium,
		Message:    msg,
		Suggestion: "Name the intended process explicitly so the correct checklist applies",
		Citations:  []string{},
		Confidence: 1,
	}
}

func emptyChecklist() schema.ChecklistResult {
	return schema.ChecklistResult{
		PresentTypes:   []string{},
		MissingTypes:   []string{},
		RedundantTypes: []string{},
		CompletionPct:  0,
	}
}

// finalize stamps run metadata. The run id is a UUIDv5 of the batch hash so
// identical batches produce identical reports; GeneratedAt is the only
// non-deterministic field.
func (a *Analyzer) finalize(rep *schema.ComplianceReport, batchHash string, docCount int) {
	rep.Metadata = schema.Metadata{
		Tool:          Tool,
		Version:       a.version,
		RunID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(batchHash)).String(),
		BatchHash:     batchHash,
		DocumentCount: docCount,
		GeneratedAt:   time.Now().UTC(),
	}
}

// BatchHash computes a canonical SHA-256 over the batch content, independent
// of input file formatting.
func BatchHash(docs []schema.Document) string {
	h := sha256.New()
	for _, d := range docs {
		fmt.Fprintf(h, "%d:%s%d:%s", len(d.DocID), d.DocID, len(d.RawText), d.RawText)
		for _, p := range d.Paragraphs {
			fmt.Fprintf(h, "%d:%s%d:%s", len(p.Section), p.Section, len(p.Text), p.Text)
		}
	}
	return fmt.Sprintf("sha256:%x", h.Sum(nil))
}
