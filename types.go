package symcheck

import (
	"time"

	"github.com/kailas-cloud/symcheck/internal/domain/assessment"
	"github.com/kailas-cloud/symcheck/internal/usecase/triage"
)

// Urgency is the triage verdict tier.
type Urgency string

// Urgency tiers, from least to most pressing.
const (
	SelfCare Urgency = "self_care"
	SeeGP    Urgency = "see_gp"
	Urgent   Urgency = "urgent"
)

// Input is one symptom submission. All fields are optional; an empty Input
// yields an empty keyword set and a self_care verdict. Image is an echoed
// attachment filename: the HTTP service sets it on upload, the embedded
// client just carries it through.
type Input struct {
	Text       string   `json:"text"`
	Selections []string `json:"checked"`
	Duration   string   `json:"duration"`
	Severity   string   `json:"severity"`
	Age        string   `json:"age"`
	Sex        string   `json:"sex"`
	Image      string   `json:"image,omitempty"`
}

// Matches lists the phrases that matched one condition, per category.
type Matches struct {
	Required   []string `json:"required"`
	Supporting []string `json:"supporting"`
	RedFlags   []string `json:"red_flags"`
}

// ConditionScore is one condition's scoring outcome.
type ConditionScore struct {
	Condition        string   `json:"condition"`
	RawScore         float64  `json:"raw_score"`
	Score            float64  `json:"score"`
	Matches          Matches  `json:"matches"`
	RecommendedTests []string `json:"recommended_tests"`
	DeclaredUrgency  Urgency  `json:"declared_urgency"`
}

// ScoreResult is the outcome of scoring one keyword set.
type ScoreResult struct {
	Top     []ConditionScore
	Ranked  []ConditionScore
	Urgency Urgency
}

// Report is a stored assessment. Its JSON form matches the symcheck HTTP
// API, so exported reports are interchangeable with service responses.
type Report struct {
	SessionID      string           `json:"session_id"`
	CreatedAt      time.Time        `json:"timestamp"`
	Input          Input            `json:"input"`
	ParsedSymptoms []string         `json:"parsed_symptoms"`
	TopConditions  []ConditionScore `json:"top_conditions"`
	RankedAll      []ConditionScore `json:"ranked_all"`
	Urgency        Urgency          `json:"final_urgency"`
}

func toDomainInput(in Input) assessment.Input {
	return assessment.Input{
		Text:       in.Text,
		Selections: in.Selections,
		Duration:   in.Duration,
		Severity:   in.Severity,
		Age:        in.Age,
		Sex:        in.Sex,
		Image:      in.Image,
	}
}

func fromAssessment(a assessment.Assessment) Report {
	in := a.Input()
	return Report{
		SessionID: a.ID(),
		CreatedAt: a.CreatedAt(),
		Input: Input{
			Text:       in.Text,
			Selections: emptyIfNil(in.Selections),
			Duration:   in.Duration,
			Severity:   in.Severity,
			Age:        in.Age,
			Sex:        in.Sex,
			Image:      in.Image,
		},
		ParsedSymptoms: emptyIfNil(a.Keywords()),
		TopConditions:  fromScored(a.Top()),
		RankedAll:      fromScored(a.Ranked()),
		Urgency:        Urgency(a.Urgency()),
	}
}

func fromScoreResult(res triage.Result) ScoreResult {
	return ScoreResult{
		Top:     fromScored(res.Top),
		Ranked:  fromScored(res.Ranked),
		Urgency: Urgency(res.Urgency),
	}
}

func fromScored(conds []assessment.ScoredCondition) []ConditionScore {
	out := make([]ConditionScore, 0, len(conds))
	for _, c := range conds {
		m := c.Matches()
		out = append(out, ConditionScore{
			Condition: c.Name(),
			RawScore:  c.Raw(),
			Score:     c.Score(),
			Matches: Matches{
				Required:   emptyIfNil(m.Required),
				Supporting: emptyIfNil(m.Supporting),
				RedFlags:   emptyIfNil(m.RedFlags),
			},
			RecommendedTests: emptyIfNil(c.RecommendedTests()),
			DeclaredUrgency:  Urgency(c.DeclaredUrgency()),
		})
	}
	return out
}

// emptyIfNil keeps list fields as [] rather than null in JSON.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
