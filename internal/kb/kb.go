// Package kb holds the immutable knowledge base the analysis pipeline runs
// against: document type definitions, red-flag rule sets, process checklists,
// and the regulation corpus. All entries are validated and compiled once at
// construction; a KnowledgeBase is never mutated afterwards and is safe to
// share across concurrent analysis runs. Changing the rule set means building
// a new KnowledgeBase, not patching a live one.
package kb

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"corpagent/internal/schema"
)

// KeywordWeight is one weighted classification keyword. Keywords are an
// ordered list rather than a map so scoring stays deterministic. A
// Repeatable keyword scores once per occurrence; others score once per
// document.
type KeywordWeight struct {
	Term       string  `yaml:"term"`
	Weight     float64 `yaml:"weight"`
	Repeatable bool    `yaml:"repeatable,omitempty"`
}

// DocumentTypeSpec defines one recognizable document type.
type DocumentTypeSpec struct {
	ID              string          `yaml:"id"`
	Name            string          `yaml:"name"`
	Keywords        []KeywordWeight `yaml:"keywords"`
	SectionPatterns []string        `yaml:"section_patterns"`
	// MinConfidence is the normalized-score threshold in [0,1] below which
	// a winning candidate is still reported as unknown.
	MinConfidence float64 `yaml:"min_confidence"`

	sectionRes []*regexp.Regexp
}

// CountSectionMatches returns how many of the type's section patterns match
// at least one paragraph. Each pattern counts at most once.
func (t *DocumentTypeSpec) CountSectionMatches(paragraphs []schema.Paragraph) int {
	matched := 0
	for _, re := range t.sectionRes {
		for _, p := range paragraphs {
			if re.MatchString(strings.ToLower(p.Text)) {
				matched++
				break
			}
		}
	}
	return matched
}

// RedFlagRule defines one red-flag detection rule. Patterns may use
// lookaround assertions (e.g. to accept "courts of ADGM" while flagging
// "courts of Dubai").
type RedFlagRule struct {
	ID       string          `yaml:"id"`
	Category string          `yaml:"category"`
	Patterns []string        `yaml:"patterns"`
	Severity schema.Severity `yaml:"severity"`
	Message  string          `yaml:"message"`
	// Suggestion may contain a %q or %s verb, filled with the matched excerpt.
	Suggestion string `yaml:"suggestion"`
	// Replacement, when set, is the canonical clause used to build a
	// suggested patch for the matched text.
	Replacement  string `yaml:"replacement,omitempty"`
	CitationHint string `yaml:"citation_hint,omitempty"`

	compiled []*regexp2.Regexp
}

// Match evaluates the rule's patterns against text. It returns the number of
// patterns that matched and the excerpt matched by the first matching
// pattern. A pattern that errors at match time (regexp2 can time out on
// pathological input) counts as unmatched.
func (r *RedFlagRule) Match(text string) (matched int, excerpt string) {
	for _, re := range r.compiled {
		m, err := re.FindStringMatch(text)
		if err != nil || m == nil {
			continue
		}
		matched++
		if excerpt == "" {
			excerpt = m.String()
		}
	}
	return matched, excerpt
}

// PatternCount returns the number of patterns the rule carries.
func (r *RedFlagRule) PatternCount() int { return len(r.Patterns) }

// ProcessSpec defines a business process and its document checklist.
type ProcessSpec struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	RequiredDocTypes []string `yaml:"required_doc_types"`
	OptionalDocTypes []string `yaml:"optional_doc_types,omitempty"`
}

// RegulationEntry is one item of the regulation corpus used for citation
// retrieval.
type RegulationEntry struct {
	ID             string   `yaml:"id"`
	Excerpt        string   `yaml:"excerpt"`
	Categories     []string `yaml:"categories"`
	SourceCitation string   `yaml:"source_citation"`
}

// AppliesTo reports whether the entry is applicable to the given issue
// category.
func (e *RegulationEntry) AppliesTo(category string) bool {
	for _, c := range e.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// KnowledgeBase is the read-only registry consumed by every pipeline stage.
// Slices preserve registration order, which all tie-breaking rules depend on.
type KnowledgeBase struct {
	types       []DocumentTypeSpec
	rules       []RedFlagRule
	processes   []ProcessSpec
	regulations []RegulationEntry

	typeIndex map[string]int
	procIndex map[string]int
}

// New validates every entry, compiles all patterns, and builds the registry.
// Validation failure here is the only fatal error in the system; a
// constructed KnowledgeBase never fails during analysis.
func New(types []DocumentTypeSpec, rules []RedFlagRule, processes []ProcessSpec, regulations []RegulationEntry) (*KnowledgeBase, error) {
	k := &KnowledgeBase{
		types:       make([]DocumentTypeSpec, len(types)),
		rules:       make([]RedFlagRule, len(rules)),
		processes:   make([]ProcessSpec, len(processes)),
		regulations: make([]RegulationEntry, len(regulations)),
		typeIndex:   make(map[string]int, len(types)),
		procIndex:   make(map[string]int, len(processes)),
	}
	copy(k.types, types)
	copy(k.rules, rules)
	copy(k.processes, processes)
	copy(k.regulations, regulations)

	for i := range k.types {
		t := &k.types[i]
		if err := validateType(t); err != nil {
			return nil, fmt.Errorf("document type %q: %w", t.ID, err)
		}
		if _, dup := k.typeIndex[t.ID]; dup {
			return nil, fmt.Errorf("document type %q: duplicate id", t.ID)
		}
		k.typeIndex[t.ID] = i

		t.sectionRes = make([]*regexp.Regexp, 0, len(t.SectionPatterns))
		for _, p := range t.SectionPatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("document type %q: section pattern %q: %w", t.ID, p, err)
			}
			t.sectionRes = append(t.sectionRes, re)
		}
	}

	seenRules := make(map[string]bool, len(rules))
	for i := range k.rules {
		r := &k.rules[i]
		if err := validateRule(r); err != nil {
			return nil, fmt.Errorf("red-flag rule %q: %w", r.ID, err)
		}
		if seenRules[r.ID] {
			return nil, fmt.Errorf("red-flag rule %q: duplicate id", r.ID)
		}
		seenRules[r.ID] = true

		r.compiled = make([]*regexp2.Regexp, 0, len(r.Patterns))
		for _, p := range r.Patterns {
			re, err := regexp2.Compile(p, regexp2.IgnoreCase)
			if err != nil {
				return nil, fmt.Errorf("red-flag rule %q: pattern %q: %w", r.ID, p, err)
			}
			r.compiled = append(r.compiled, re)
		}
	}

	for i := range k.processes {
		p := &k.processes[i]
		if p.ID == "" {
			return nil, fmt.Errorf("process at index %d: id is required", i)
		}
		if _, dup := k.procIndex[p.ID]; dup {
			return nil, fmt.Errorf("process %q: duplicate id", p.ID)
		}
		for _, tid := range p.RequiredDocTypes {
			if _, ok := k.typeIndex[tid]; !ok {
				return nil, fmt.Errorf("process %q: required doc type %q is not registered", p.ID, tid)
			}
		}
		for _, tid := range p.OptionalDocTypes {
			if _, ok := k.typeIndex[tid]; !ok {
				return nil, fmt.Errorf("process %q: optional doc type %q is not registered", p.ID, tid)
			}
		}
		k.procIndex[p.ID] = i
	}

	seenRegs := make(map[string]bool, len(regulations))
	for i := range k.regulations {
		e := &k.regulations[i]
		if e.ID == "" {
			return nil, fmt.Errorf("regulation at index %d: id is required", i)
		}
		if seenRegs[e.ID] {
			return nil, fmt.Errorf("regulation %q: duplicate id", e.ID)
		}
		seenRegs[e.ID] = true
		if e.Excerpt == "" {
			return nil, fmt.Errorf("regulation %q: excerpt is required", e.ID)
		}
		if e.SourceCitation == "" {
			return nil, fmt.Errorf("regulation %q: source citation is required", e.ID)
		}
		if len(e.Categories) == 0 {
			return nil, fmt.Errorf("regulation %q: at least one applicable category is required", e.ID)
		}
	}

	return k, nil
}

func validateType(t *DocumentTypeSpec) error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if len(t.Keywords) == 0 {
		return fmt.Errorf("at least one keyword is required")
	}
	for _, kw := range t.Keywords {
		if kw.Term == "" {
			return fmt.Errorf("keyword term must be non-empty")
		}
		if kw.Weight <= 0 {
			return fmt.Errorf("keyword %q: weight must be positive, got %g", kw.Term, kw.Weight)
		}
	}
	if t.MinConfidence < 0 || t.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0,1], got %g", t.MinConfidence)
	}
	return nil
}

func validateRule(r *RedFlagRule) error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.Category == "" {
		return fmt.Errorf("category is required")
	}
	if len(r.Patterns) == 0 {
		return fmt.Errorf("at least one pattern is required")
	}
	if !schema.IsValidSeverity(r.Severity) {
		return fmt.Errorf("invalid severity %q (must be Critical, High, Medium, or Low)", r.Severity)
	}
	if r.Message == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}

// DocumentTypes returns the type registry in registration order.
func (k *KnowledgeBase) DocumentTypes() []DocumentTypeSpec { return k.types }

// Rules returns the red-flag rule registry in registration order.
func (k *KnowledgeBase) Rules() []RedFlagRule { return k.rules }

// Processes returns the process registry in registration order.
func (k *KnowledgeBase) Processes() []ProcessSpec { return k.processes }

// Regulations returns the regulation corpus in registration order.
func (k *KnowledgeBase) Regulations() []RegulationEntry { return k.regulations }

// TypeByID looks up a document type spec.
func (k *KnowledgeBase) TypeByID(id string) (*DocumentTypeSpec, bool) {
	i, ok := k.typeIndex[id]
	if !ok {
		return nil, false
	}
	return &k.types[i], true
}

// ProcessByID looks up a process spec.
func (k *KnowledgeBase) ProcessByID(id string) (*ProcessSpec, bool) {
	i, ok := k.procIndex[id]
	if !ok {
		return nil, false
	}
	return &k.processes[i], true
}
