// Package kbfile loads knowledge base files and keeps the active snapshot
// fresh. Files are YAML or JSON; validation failures are reported before any
// snapshot swap so a broken edit never reaches the scoring path.
package kbfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/symcheck/internal/domain"
	"github.com/kailas-cloud/symcheck/internal/domain/kb"
)

// kbDoc mirrors the on-disk knowledge base shape.
type kbDoc struct {
	Synonyms        map[string]string `yaml:"synonyms" json:"synonyms"`
	RedFlagKeywords []string          `yaml:"red_flag_keywords" json:"red_flag_keywords"`
	Conditions      []conditionDoc    `yaml:"conditions" json:"conditions"`
}

type conditionDoc struct {
	Name               string   `yaml:"name" json:"name"`
	RequiredSymptoms   []string `yaml:"required_symptoms" json:"required_symptoms"`
	SupportingSymptoms []string `yaml:"supporting_symptoms" json:"supporting_symptoms"`
	RedFlags           []string `yaml:"red_flags" json:"red_flags"`
	RecommendedTests   []string `yaml:"recommended_tests" json:"recommended_tests"`
	Urgency            string   `yaml:"urgency" json:"urgency"`
}

// Load reads, parses, and validates a knowledge base file. The format is
// chosen by extension: .yaml/.yml or .json.
func Load(path string) (*kb.KnowledgeBase, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read kb %s: %w", path, err)
	}

	var doc kbDoc
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse kb %s: %w: %w", path, domain.ErrInvalidKB, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse kb %s: %w: %w", path, domain.ErrInvalidKB, err)
		}
	default:
		return nil, fmt.Errorf("kb %s: %w", path, domain.ErrUnsupportedFormat)
	}

	return buildKB(path, doc)
}

func buildKB(path string, doc kbDoc) (*kb.KnowledgeBase, error) {
	// A nil slice means the key was absent from the document; an explicit
	// empty list is legal and yields an empty knowledge base.
	if doc.Conditions == nil {
		return nil, fmt.Errorf("kb %s: %w: missing conditions list", path, domain.ErrInvalidKB)
	}

	conditions := make([]kb.Condition, 0, len(doc.Conditions))
	for i, c := range doc.Conditions {
		cond, err := kb.NewCondition(
			c.Name, c.RequiredSymptoms, c.SupportingSymptoms,
			c.RedFlags, c.RecommendedTests, c.Urgency,
		)
		if err != nil {
			return nil, fmt.Errorf("kb %s: condition %d: %w: %w", path, i, domain.ErrInvalidKB, err)
		}
		conditions = append(conditions, cond)
	}

	built, err := kb.New(doc.Synonyms, doc.RedFlagKeywords, conditions)
	if err != nil {
		return nil, fmt.Errorf("kb %s: %w: %w", path, domain.ErrInvalidKB, err)
	}
	return built, nil
}
