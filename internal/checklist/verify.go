// Package checklist compares a classified document batch against a process's
// required-document checklist, resolving the process from the batch when the
// caller does not name one.
package checklist

import (
	"errors"
	"math"
	"sort"

	"corpagent/internal/kb"
	"corpagent/internal/schema"
)

// ErrUnknownProcess reports that no process spec could be resolved for the
// batch. It is advisory: the accompanying ChecklistResult is still valid
// (best-guess or empty) and the analysis run continues.
var ErrUnknownProcess = errors.New("no process resolvable for batch")

// Verifier computes checklist results. Stateless and safe for concurrent use.
type Verifier struct {
	kb *kb.KnowledgeBase
}

// New returns a Verifier over the given knowledge base.
func New(base *kb.KnowledgeBase) *Verifier {
	return &Verifier{kb: base}
}

// Verify compares classified against the process named by processID. An
// empty processID triggers resolution: the process whose required types have
// the largest intersection with the present types wins, ties broken by
// fewest missing types, then lexicographic process id. A named but
// unregistered processID also falls back to resolution.
//
// The returned error is nil or ErrUnknownProcess; in both cases the result
// is valid. An empty batch yields completion 0 with all required types
// missing.
func (v *Verifier) Verify(classified []schema.ClassifiedDocument, processID string) (schema.ChecklistResult, error) {
	present, redundant := collectPresent(classified)

	var proc *kb.ProcessSpec
	var resolveErr error
	if processID != "" {
		if p, ok := v.kb.ProcessByID(processID); ok {
			proc = p
		} else {
			resolveErr = ErrUnknownProcess
		}
	}
	if proc == nil {
		if p := v.resolve(present); p != nil {
			proc = p
		} else {
			resolveErr = ErrUnknownProcess
		}
	}

	if proc == nil {
		// No process at all: nothing is required, but nothing is verified
		// either, so completion stays 0 rather than vacuously complete.
		return schema.ChecklistResult{
			PresentTypes:   present,
			MissingTypes:   []string{},
			RedundantTypes: redundant,
			CompletionPct:  0,
		}, resolveErr
	}

	presentSet := make(map[string]bool, len(present))
	for _, t := range present {
		presentSet[t] = true
	}

	missing := make([]string, 0)
	matched := 0
	for _, req := range proc.RequiredDocTypes {
		if presentSet[req] {
			matched++
		} else {
			missing = append(missing, req)
		}
	}

	return schema.ChecklistResult{
		ProcessID:      proc.ID,
		PresentTypes:   present,
		MissingTypes:   missing,
		RedundantTypes: redundant,
		RequiredCount:  len(proc.RequiredDocTypes),
		CompletionPct:  completionPct(matched, len(proc.RequiredDocTypes)),
	}, resolveErr
}

// resolve picks the best-matching process for the present types. Returns nil
// only when the registry holds no processes.
func (v *Verifier) resolve(present []string) *kb.ProcessSpec {
	procs := v.kb.Processes()
	if len(procs) == 0 {
		return nil
	}

	presentSet := make(map[string]bool, len(present))
	for _, t := range present {
		presentSet[t] = true
	}

	type scored struct {
		proc         *kb.ProcessSpec
		intersection int
		missing      int
	}

	ranked := make([]scored, 0, len(procs))
	for i := range procs {
		p := &procs[i]
		s := scored{proc: p}
		for _, req := range p.RequiredDocTypes {
			if presentSet[req] {
				s.intersection++
			} else {
				s.missing++
			}
		}
		ranked = append(ranked, s)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].intersection != ranked[j].intersection {
			return ranked[i].intersection > ranked[j].intersection
		}
		if ranked[i].missing != ranked[j].missing {
			return ranked[i].missing < ranked[j].missing
		}
		return ranked[i].proc.ID < ranked[j].proc.ID
	})

	return ranked[0].proc
}

// collectPresent returns the distinct non-unknown type ids in first-seen
// order, plus the ids classified more than once (informational redundancy).
func collectPresent(classified []schema.ClassifiedDocument) (present, redundant []string) {
	present = make([]string, 0, len(classified))
	redundant = make([]string, 0)
	counts := make(map[string]int, len(classified))

	for _, cd := range classified {
		if cd.TypeID == "" || cd.TypeID == schema.TypeUnknown {
			continue
		}
		counts[cd.TypeID]++
		switch counts[cd.TypeID] {
		case 1:
			present = append(present, cd.TypeID)
		case 2:
			redundant = append(redundant, cd.TypeID)
		}
	}
	return present, redundant
}

// completionPct is |present ∩ required| / |required| clamped to [0,1] and
// rounded to three decimals. Zero required types means vacuously complete.
func completionPct(matched, required int) float64 {
	if required == 0 {
		return 1
	}
	pct := float64(matched) / float64(required)
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	return math.Round(pct*1000) / 1000
}
