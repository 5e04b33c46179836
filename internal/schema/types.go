package schema

import "time"

// Severity grades a compliance issue. Critical issues indicate defects that
// block submission; Low issues are drafting-quality suggestions.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// SeverityOrdinal returns the numeric ordering for a severity, used for
// sorting and threshold comparison. Low(0) < Medium(1) < High(2) < Critical(3).
// Returns -1 for an unrecognised severity.
func SeverityOrdinal(s Severity) int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// IsValidSeverity reports whether s is one of the four defined severities.
func IsValidSeverity(s Severity) bool {
	return SeverityOrdinal(s) >= 0
}

// TypeUnknown is the classification assigned when no document type clears
// its confidence threshold.
const TypeUnknown = "unknown"

// SectionDocument is the section locator used for findings that apply to the
// document as a whole rather than to a specific paragraph.
const SectionDocument = "document"

// Paragraph is one pre-extracted unit of document text with its section
// locator (paragraph index or heading path, assigned by the extraction
// collaborator).
type Paragraph struct {
	Section string `json:"section"`
	Text    string `json:"text"`
}

// Document is one pre-extracted input document. The engine never mutates it.
type Document struct {
	DocID      string      `json:"doc_id"`
	RawText    string      `json:"raw_text"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// ClassifiedDocument is the classification outcome for one input document.
// TypeID is TypeUnknown when no type cleared its confidence threshold; in
// that case Confidence carries the normalized score of the best candidate.
type ClassifiedDocument struct {
	DocID      string  `json:"doc_id"`
	TypeID     string  `json:"type_id"`
	Confidence float64 `json:"confidence"`
}

// Issue is a single detected compliance defect, created by red-flag
// detection (or by pipeline degradation paths) and enriched with citations.
type Issue struct {
	DocID       string   `json:"doc_id"`
	Section     string   `json:"section"`
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Suggestion  string   `json:"suggestion"`
	MatchedText string   `json:"matched_text,omitempty"`
	Citations   []string `json:"citations"`
	Confidence  float64  `json:"confidence"`
	// CitationHint and Replacement carry the originating rule's citation
	// seed and canonical replacement clause for the pipeline; neither is
	// serialized.
	CitationHint string `json:"-"`
	Replacement  string `json:"-"`
}

// ChecklistResult compares the classified batch against a process's
// required-document checklist.
type ChecklistResult struct {
	ProcessID      string   `json:"process_id"`
	PresentTypes   []string `json:"present_types"`
	MissingTypes   []string `json:"missing_types"`
	RedundantTypes []string `json:"redundant_types"`
	RequiredCount  int      `json:"required_count"`
	CompletionPct  float64  `json:"completion_pct"`
}

// ScoreResult is the quantitative outcome of compliance scoring.
type ScoreResult struct {
	Score     float64 `json:"score"`
	Rating    string  `json:"rating"`
	RiskLevel string  `json:"risk_level"`
}

// Metadata holds run identification. GeneratedAt is the only field excluded
// from the report's determinism guarantee.
type Metadata struct {
	Tool          string    `json:"tool"`
	Version       string    `json:"version"`
	RunID         string    `json:"run_id"`
	BatchHash     string    `json:"batch_hash"`
	DocumentCount int       `json:"document_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// ComplianceReport is the terminal artifact of one analysis run.
type ComplianceReport struct {
	Documents        []ClassifiedDocument `json:"documents"`
	Issues           []Issue              `json:"issues"`
	Checklist        ChecklistResult      `json:"checklist"`
	Score            float64              `json:"score"`
	Rating           string               `json:"rating"`
	RiskLevel        string               `json:"risk_level"`
	Recommendations  []string             `json:"recommendations"`
	ExecutiveSummary string               `json:"executive_summary"`
	Partial          bool                 `json:"partial"`
	Metadata         Metadata             `json:"metadata"`
}

// Annotation is one inline-comment instruction for the external annotation
// collaborator, derived 1:1 from an Issue.
type Annotation struct {
	DocID   string `json:"doc_id"`
	Section string `json:"section"`
	Comment string `json:"comment_text"`
}
