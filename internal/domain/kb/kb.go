// Package kb holds the symptom knowledge base: conditions, synonym mappings,
// and red-flag terms. A KnowledgeBase is built once, validated, and treated
// as immutable for its lifetime; hot reload swaps whole snapshots rather than
// mutating one in place.
package kb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/symcheck/internal/domain/urgency"
)

// Synonym maps a surface phrase to its canonical keyword.
type Synonym struct {
	Surface   string
	Canonical string
}

// Condition is one scorable entry of the knowledge base.
// All symptom phrases are lowercased at construction; Name and
// RecommendedTests pass through unchanged (display data).
type Condition struct {
	name       string
	required   []string
	supporting []string
	redFlags   []string
	tests      []string
	urgency    urgency.Level
}

// NewCondition validates and creates a Condition.
// rawUrgency may be empty (defaults to see_gp) but must otherwise be one of
// the three urgency tiers.
func NewCondition(
	name string,
	required, supporting, redFlags, tests []string,
	rawUrgency string,
) (Condition, error) {
	if strings.TrimSpace(name) == "" {
		return Condition{}, fmt.Errorf("condition name is required")
	}

	urg, err := urgency.Parse(rawUrgency)
	if err != nil {
		return Condition{}, fmt.Errorf("condition %q: %w", name, err)
	}

	return Condition{
		name:       name,
		required:   normalizePhrases(required),
		supporting: normalizePhrases(supporting),
		redFlags:   normalizePhrases(redFlags),
		tests:      append([]string(nil), tests...),
		urgency:    urg,
	}, nil
}

// Name returns the display identifier.
func (c Condition) Name() string { return c.name }

// Required returns the strongly indicating symptom phrases.
func (c Condition) Required() []string { return c.required }

// Supporting returns the weakly indicating symptom phrases.
func (c Condition) Supporting() []string { return c.supporting }

// RedFlags returns the phrases that escalate urgency when matched.
func (c Condition) RedFlags() []string { return c.redFlags }

// RecommendedTests returns the advisory test strings, unchanged.
func (c Condition) RecommendedTests() []string { return c.tests }

// Urgency returns the declared baseline urgency.
func (c Condition) Urgency() urgency.Level { return c.urgency }

// KnowledgeBase is the immutable triage dataset shared by every request.
type KnowledgeBase struct {
	synonyms        []Synonym // longest surface first
	redFlagKeywords []string
	conditions      []Condition

	// Derived tables for extraction.
	phrases     []string // union of condition phrases, longest first
	phraseWords map[string]struct{}
}

// New validates and assembles a KnowledgeBase.
// Synonym surfaces and values, red-flag keywords, and all condition phrases
// are lowercased; duplicates collapse. Condition names must be unique.
func New(synonyms map[string]string, redFlagKeywords []string, conditions []Condition) (*KnowledgeBase, error) {
	seen := make(map[string]bool, len(conditions))
	for _, c := range conditions {
		if seen[c.name] {
			return nil, fmt.Errorf("duplicate condition name %q", c.name)
		}
		seen[c.name] = true
	}

	k := &KnowledgeBase{
		redFlagKeywords: normalizePhrases(redFlagKeywords),
		conditions:      append([]Condition(nil), conditions...),
	}

	k.synonyms = make([]Synonym, 0, len(synonyms))
	for surface, canonical := range synonyms {
		surface = strings.ToLower(strings.TrimSpace(surface))
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		if surface == "" || canonical == "" {
			return nil, fmt.Errorf("synonym entries must be non-empty, got %q -> %q", surface, canonical)
		}
		k.synonyms = append(k.synonyms, Synonym{Surface: surface, Canonical: canonical})
	}
	sortLongestFirst(k.synonyms, func(s Synonym) string { return s.Surface })

	k.buildPhraseTables()
	return k, nil
}

// buildPhraseTables collects the union of every condition phrase plus the
// single words those phrases contain.
func (k *KnowledgeBase) buildPhraseTables() {
	set := make(map[string]struct{})
	for _, c := range k.conditions {
		for _, list := range [][]string{c.required, c.supporting, c.redFlags} {
			for _, p := range list {
				set[p] = struct{}{}
			}
		}
	}

	k.phrases = make([]string, 0, len(set))
	k.phraseWords = make(map[string]struct{})
	for p := range set {
		k.phrases = append(k.phrases, p)
		for _, w := range strings.Fields(p) {
			k.phraseWords[w] = struct{}{}
		}
	}
	sortLongestFirst(k.phrases, func(s string) string { return s })
}

// OrderedSynonyms returns synonym mappings, longest surface phrase first.
func (k *KnowledgeBase) OrderedSynonyms() []Synonym { return k.synonyms }

// RedFlagKeywords returns the standalone red-flag phrases.
func (k *KnowledgeBase) RedFlagKeywords() []string { return k.redFlagKeywords }

// Conditions returns all conditions in declaration order.
func (k *KnowledgeBase) Conditions() []Condition { return k.conditions }

// ConditionCount returns the number of conditions.
func (k *KnowledgeBase) ConditionCount() int { return len(k.conditions) }

// PhrasesByLength returns the union of condition phrases, longest first.
func (k *KnowledgeBase) PhrasesByLength() []string { return k.phrases }

// HasPhraseWord reports whether the word occurs inside any condition phrase.
func (k *KnowledgeBase) HasPhraseWord(w string) bool {
	_, ok := k.phraseWords[w]
	return ok
}

// CommonSymptoms returns the sorted union of required and supporting phrases
// across all conditions, for intake checklists.
func (k *KnowledgeBase) CommonSymptoms() []string {
	set := make(map[string]struct{})
	for _, c := range k.conditions {
		for _, p := range c.required {
			set[p] = struct{}{}
		}
		for _, p := range c.supporting {
			set[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// normalizePhrases lowercases and trims each phrase, dropping empties and
// duplicates while preserving declaration order.
func normalizePhrases(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, p := range in {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// sortLongestFirst orders items by descending key length; equal lengths fall
// back to lexicographic order so traversal is deterministic.
func sortLongestFirst[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := key(items[i]), key(items[j])
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
}
