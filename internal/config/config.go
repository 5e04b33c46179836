// Package config defines the option surface the analysis engine recognizes
// and loads it from an optional YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"corpagent/internal/schema"
	"corpagent/internal/score"
)

// Options is the full configuration surface of one analysis run.
type Options struct {
	// SeverityWeights overrides the score penalty per severity.
	SeverityWeights map[schema.Severity]float64 `yaml:"severity_weights,omitempty"`
	// CitationTopK caps citations attached per issue; 0 disables retrieval.
	CitationTopK int `yaml:"citation_top_k"`
	// MinConfidenceOverride replaces per-type classification thresholds.
	MinConfidenceOverride map[string]float64 `yaml:"classification_min_confidence_override,omitempty"`
	// RiskLevelThresholds overrides the rating/risk band table.
	RiskLevelThresholds []score.Threshold `yaml:"risk_level_thresholds,omitempty"`
	// CitationMinRelevance drops regulation entries scoring below it;
	// 0 selects the retriever default.
	CitationMinRelevance float64 `yaml:"citation_min_relevance,omitempty"`
	// MaxConcurrency bounds the per-document and per-issue worker fan-out.
	MaxConcurrency int `yaml:"max_concurrency"`
}

// Default returns the canonical option values.
func Default() Options {
	return Options{
		CitationTopK:   3,
		MaxConcurrency: 4,
	}
}

// LoadFile reads options from a YAML file, overlaying them on the defaults
// so absent keys keep their default values.
func LoadFile(path string) (Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parsing config file: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("config file %s: %w", path, err)
	}
	return opts, nil
}

// Validate rejects option values the engine cannot honor.
func (o Options) Validate() error {
	if o.CitationTopK < 0 {
		return fmt.Errorf("citation_top_k must be ≥ 0, got %d", o.CitationTopK)
	}
	if o.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be ≥ 1, got %d", o.MaxConcurrency)
	}
	for sev, w := range o.SeverityWeights {
		if !schema.IsValidSeverity(sev) {
			return fmt.Errorf("severity_weights: unknown severity %q", sev)
		}
		if w < 0 {
			return fmt.Errorf("severity_weights[%s] must be ≥ 0, got %g", sev, w)
		}
	}
	for id, v := range o.MinConfidenceOverride {
		if v < 0 || v > 1 {
			return fmt.Errorf("classification_min_confidence_override[%s] must be in [0,1], got %g", id, v)
		}
	}
	for i, t := range o.RiskLevelThresholds {
		if t.Rating == "" || t.Risk == "" {
			return fmt.Errorf("risk_level_thresholds[%d]: rating and risk labels are required", i)
		}
	}
	return nil
}
