package symcheck

import (
	"fmt"

	"github.com/kailas-cloud/symcheck/internal/domain"
	"github.com/kailas-cloud/symcheck/internal/domain/kb"
)

// KB is a validated, immutable knowledge base ready for a Client.
type KB struct {
	snap *kb.KnowledgeBase
}

// ConditionOption configures one condition added via KBBuilder.Condition.
type ConditionOption func(*conditionConfig)

type conditionConfig struct {
	required   []string
	supporting []string
	redFlags   []string
	tests      []string
	urgency    Urgency
}

// Required adds strongly indicating symptom phrases.
func Required(phrases ...string) ConditionOption {
	return func(c *conditionConfig) {
		c.required = append(c.required, phrases...)
	}
}

// Supporting adds weakly indicating symptom phrases.
func Supporting(phrases ...string) ConditionOption {
	return func(c *conditionConfig) {
		c.supporting = append(c.supporting, phrases...)
	}
}

// RedFlags adds phrases that escalate the verdict to urgent when matched.
func RedFlags(phrases ...string) ConditionOption {
	return func(c *conditionConfig) {
		c.redFlags = append(c.redFlags, phrases...)
	}
}

// Tests adds advisory diagnostic test names, passed through unchanged.
func Tests(names ...string) ConditionOption {
	return func(c *conditionConfig) {
		c.tests = append(c.tests, names...)
	}
}

// WithUrgency sets the condition's declared baseline urgency.
// Defaults to SeeGP when omitted.
func WithUrgency(u Urgency) ConditionOption {
	return func(c *conditionConfig) {
		c.urgency = u
	}
}

// KBBuilder assembles a knowledge base in code. Zero value is not usable;
// start with NewKB.
type KBBuilder struct {
	synonyms   map[string]string
	redFlags   []string
	conditions []conditionSpec
}

type conditionSpec struct {
	name string
	cfg  conditionConfig
}

// NewKB starts a fluent knowledge base builder.
func NewKB() *KBBuilder {
	return &KBBuilder{synonyms: make(map[string]string)}
}

// Synonym maps a surface phrase to its canonical keyword. Matching is
// case-insensitive; longer surfaces win when phrases overlap.
func (b *KBBuilder) Synonym(surface, canonical string) *KBBuilder {
	b.synonyms[surface] = canonical
	return b
}

// RedFlag adds standalone red-flag phrases, matched against the raw
// complaint text independently of any condition.
func (b *KBBuilder) RedFlag(phrases ...string) *KBBuilder {
	b.redFlags = append(b.redFlags, phrases...)
	return b
}

// Condition adds a scorable condition. Declaration order is the tie-break
// order in rankings.
func (b *KBBuilder) Condition(name string, opts ...ConditionOption) *KBBuilder {
	var cfg conditionConfig
	for _, o := range opts {
		o(&cfg)
	}
	b.conditions = append(b.conditions, conditionSpec{name: name, cfg: cfg})
	return b
}

// Build validates the assembled knowledge base.
// Failures satisfy errors.Is(err, ErrInvalidKB).
func (b *KBBuilder) Build() (*KB, error) {
	conditions := make([]kb.Condition, 0, len(b.conditions))
	for i, spec := range b.conditions {
		cond, err := kb.NewCondition(
			spec.name, spec.cfg.required, spec.cfg.supporting,
			spec.cfg.redFlags, spec.cfg.tests, string(spec.cfg.urgency),
		)
		if err != nil {
			return nil, fmt.Errorf("symcheck: condition %d: %w: %w", i, domain.ErrInvalidKB, err)
		}
		conditions = append(conditions, cond)
	}

	snap, err := kb.New(b.synonyms, b.redFlags, conditions)
	if err != nil {
		return nil, fmt.Errorf("symcheck: %w: %w", domain.ErrInvalidKB, err)
	}
	return &KB{snap: snap}, nil
}

// Conditions returns the number of conditions in the knowledge base.
func (k *KB) Conditions() int {
	return k.snap.ConditionCount()
}

// Symptoms returns the sorted union of required and supporting symptom
// phrases, for intake checklists.
func (k *KB) Symptoms() []string {
	return k.snap.CommonSymptoms()
}
