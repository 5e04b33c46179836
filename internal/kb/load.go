package kb

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML document layout for an external knowledge base.
type File struct {
	DocumentTypes []DocumentTypeSpec `yaml:"document_types"`
	RedFlagRules  []RedFlagRule      `yaml:"red_flag_rules"`
	Processes     []ProcessSpec      `yaml:"processes"`
	Regulations   []RegulationEntry  `yaml:"regulations"`
}

// LoadFile reads a knowledge base definition from a YAML file and constructs
// it. Validation errors surface here, before any document is analyzed.
func LoadFile(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge base file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing knowledge base file: %w", err)
	}

	k, err := New(f.DocumentTypes, f.RedFlagRules, f.Processes, f.Regulations)
	if err != nil {
		return nil, fmt.Errorf("building knowledge base from %s: %w", path, err)
	}
	return k, nil
}
