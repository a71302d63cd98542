// Package assessment holds the per-submission triage output: scored
// conditions, the ranked list, and the final urgency verdict, together with
// an echo of what the user submitted. Assessments are self-contained and
// serializable so any session store can hold them without calling back into
// the triage core.
package assessment

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/symcheck/internal/domain/urgency"
)

// Matches lists the phrases that matched one condition, per category, in
// the condition's declaration order.
type Matches struct {
	Required   []string
	Supporting []string
	RedFlags   []string
}

// IsEmpty reports whether nothing matched in any category.
func (m Matches) IsEmpty() bool {
	return len(m.Required) == 0 && len(m.Supporting) == 0 && len(m.RedFlags) == 0
}

// ScoredCondition is one condition's scoring outcome for a single request.
type ScoredCondition struct {
	name     string
	raw      float64
	score    float64
	matches  Matches
	tests    []string
	declared urgency.Level
}

// NewScored creates a scored condition.
// raw keeps full precision; score is the normalized value rounded for
// presentation, and is what ranking and urgency thresholds read.
func NewScored(
	name string, raw, score float64,
	matches Matches, tests []string, declared urgency.Level,
) ScoredCondition {
	return ScoredCondition{
		name:     name,
		raw:      raw,
		score:    score,
		matches:  matches,
		tests:    tests,
		declared: declared,
	}
}

// Name returns the condition's display identifier.
func (s ScoredCondition) Name() string { return s.name }

// Raw returns the unnormalized weighted sum, full precision.
func (s ScoredCondition) Raw() float64 { return s.raw }

// Score returns the normalized score in [0,1], rounded to 3 decimals.
func (s ScoredCondition) Score() float64 { return s.score }

// Matches returns the matched phrases per category.
func (s ScoredCondition) Matches() Matches { return s.matches }

// RecommendedTests returns the condition's advisory test strings.
func (s ScoredCondition) RecommendedTests() []string { return s.tests }

// DeclaredUrgency returns the condition's baseline urgency.
func (s ScoredCondition) DeclaredUrgency() urgency.Level { return s.declared }

// HasRedFlagMatch reports whether any red-flag phrase matched.
func (s ScoredCondition) HasRedFlagMatch() bool { return len(s.matches.RedFlags) > 0 }

// Input echoes a submission. Age stays a string: it is display data passed
// through unchanged, never arithmetic input.
type Input struct {
	Text       string
	Selections []string
	Duration   string
	Severity   string
	Age        string
	Sex        string
	Image      string
}

// Assessment is the full result of one triage submission.
type Assessment struct {
	id        string
	createdAt time.Time
	input     Input
	keywords  []string
	top       []ScoredCondition
	ranked    []ScoredCondition
	verdict   urgency.Level
}

// New validates and creates an Assessment.
func New(
	id string, createdAt time.Time, input Input, keywords []string,
	top, ranked []ScoredCondition, verdict urgency.Level,
) (Assessment, error) {
	if id == "" {
		return Assessment{}, fmt.Errorf("assessment id is required")
	}
	if !verdict.IsValid() {
		return Assessment{}, fmt.Errorf("invalid urgency verdict %q", verdict)
	}
	return Reconstruct(id, createdAt, input, keywords, top, ranked, verdict), nil
}

// Reconstruct creates an Assessment without validation (storage hydration).
func Reconstruct(
	id string, createdAt time.Time, input Input, keywords []string,
	top, ranked []ScoredCondition, verdict urgency.Level,
) Assessment {
	return Assessment{
		id:        id,
		createdAt: createdAt,
		input:     input,
		keywords:  keywords,
		top:       top,
		ranked:    ranked,
		verdict:   verdict,
	}
}

// ID returns the session identifier.
func (a Assessment) ID() string { return a.id }

// CreatedAt returns the submission timestamp (UTC).
func (a Assessment) CreatedAt() time.Time { return a.createdAt }

// Input returns the submission echo.
func (a Assessment) Input() Input { return a.input }

// Keywords returns the extracted canonical keywords, sorted.
func (a Assessment) Keywords() []string { return a.keywords }

// Top returns the leading conditions by rank (at most the configured top-N).
func (a Assessment) Top() []ScoredCondition { return a.top }

// Ranked returns every condition ordered by score, for audit and export.
func (a Assessment) Ranked() []ScoredCondition { return a.ranked }

// Urgency returns the final triage verdict.
func (a Assessment) Urgency() urgency.Level { return a.verdict }
