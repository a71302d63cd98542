// Package triage implements the rule engine: weighted scoring of every
// knowledge base condition against an extracted keyword set, min-max score
// normalization, ranking, and the three-tier urgency decision.
package triage

import (
	"math"
	"sort"

	"github.com/kailas-cloud/symcheck/internal/domain/assessment"
	"github.com/kailas-cloud/symcheck/internal/domain/kb"
	"github.com/kailas-cloud/symcheck/internal/domain/keyword"
	"github.com/kailas-cloud/symcheck/internal/domain/urgency"
)

// Weights set the per-category contribution to a condition's raw score.
type Weights struct {
	Base       float64
	Required   float64
	Supporting float64
	RedFlag    float64
}

// DefaultWeights returns the tuned scoring constants.
func DefaultWeights() Weights {
	return Weights{Base: 0.5, Required: 1.5, Supporting: 0.8, RedFlag: 2.5}
}

// Thresholds gate urgency escalation on the top-ranked condition's
// normalized score.
type Thresholds struct {
	Urgent float64
	SeeGP  float64
}

// DefaultThresholds returns the tuned escalation thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Urgent: 0.35, SeeGP: 0.25}
}

// DefaultTopN is the number of leading conditions reported per assessment.
const DefaultTopN = 3

// Result is the outcome of scoring one keyword set.
type Result struct {
	Top     []assessment.ScoredCondition
	Ranked  []assessment.ScoredCondition
	Urgency urgency.Level
}

// Engine scores conditions. It is stateless and safe for concurrent use.
type Engine struct {
	weights    Weights
	thresholds Thresholds
	topN       int
}

// New creates an Engine. A non-positive topN falls back to DefaultTopN.
func New(w Weights, th Thresholds, topN int) *Engine {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Engine{weights: w, thresholds: th, topN: topN}
}

// Score ranks every condition in the snapshot against keywords and derives
// the final urgency. An empty snapshot yields an empty ranking and
// self_care; scoring never fails.
func (e *Engine) Score(keywords keyword.Set, snap *kb.KnowledgeBase) Result {
	if snap == nil || snap.ConditionCount() == 0 {
		return Result{Urgency: urgency.SelfCare}
	}

	ranked := e.rawScores(keywords, snap)
	normalize(ranked)

	// Rounded scores drive both ranking and thresholds. The sort is
	// stable, so ties keep knowledge base declaration order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})

	verdict := e.decideUrgency(ranked)

	topN := e.topN
	if topN > len(ranked) {
		topN = len(ranked)
	}
	top := make([]assessment.ScoredCondition, topN)
	copy(top, ranked[:topN])

	return Result{Top: top, Ranked: ranked, Urgency: verdict}
}

// rawScores computes the weighted raw score and match detail per condition,
// in knowledge base order. Match lists keep condition declaration order.
func (e *Engine) rawScores(keywords keyword.Set, snap *kb.KnowledgeBase) []assessment.ScoredCondition {
	scored := make([]assessment.ScoredCondition, 0, snap.ConditionCount())
	for _, cond := range snap.Conditions() {
		raw := e.weights.Base
		var m assessment.Matches

		for _, phrase := range cond.Required() {
			if keywords.Has(phrase) {
				raw += e.weights.Required
				m.Required = append(m.Required, phrase)
			}
		}
		for _, phrase := range cond.Supporting() {
			if keywords.Has(phrase) {
				raw += e.weights.Supporting
				m.Supporting = append(m.Supporting, phrase)
			}
		}
		for _, phrase := range cond.RedFlags() {
			if keywords.Has(phrase) {
				raw += e.weights.RedFlag
				m.RedFlags = append(m.RedFlags, phrase)
			}
		}

		scored = append(scored, assessment.NewScored(
			cond.Name(), raw, 0, m, cond.RecommendedTests(), cond.Urgency(),
		))
	}
	return scored
}

// normalize rescales raw scores to [0,1] via min-max and rounds to three
// decimals. When every raw score is equal the span falls back to 1.0, so
// all conditions normalize to 0.0.
func normalize(scored []assessment.ScoredCondition) {
	minRaw, maxRaw := scored[0].Raw(), scored[0].Raw()
	for _, s := range scored[1:] {
		if s.Raw() < minRaw {
			minRaw = s.Raw()
		}
		if s.Raw() > maxRaw {
			maxRaw = s.Raw()
		}
	}

	span := maxRaw - minRaw
	if span == 0 {
		span = 1.0
	}

	for i, s := range scored {
		norm := round3((s.Raw() - minRaw) / span)
		scored[i] = assessment.NewScored(
			s.Name(), s.Raw(), norm, s.Matches(), s.RecommendedTests(), s.DeclaredUrgency(),
		)
	}
}

// decideUrgency applies the three-tier policy: the top-ranked condition's
// declared urgency gated by thresholds, escalated to urgent when any ranked
// condition matched a red flag.
func (e *Engine) decideUrgency(ranked []assessment.ScoredCondition) urgency.Level {
	verdict := urgency.SelfCare
	top := ranked[0]
	switch {
	case top.DeclaredUrgency() == urgency.Urgent && top.Score() >= e.thresholds.Urgent:
		verdict = urgency.Urgent
	case top.DeclaredUrgency() == urgency.SeeGP && top.Score() >= e.thresholds.SeeGP:
		verdict = urgency.SeeGP
	}

	// Red flags escalate but never downgrade.
	for _, s := range ranked {
		if s.HasRedFlagMatch() && urgency.Urgent.Rank() > verdict.Rank() {
			return urgency.Urgent
		}
	}
	return verdict
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
