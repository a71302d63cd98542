package session

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/symcheck/internal/domain/assessment"
	"github.com/kailas-cloud/symcheck/internal/domain/urgency"
)

// sessionDoc is the stored JSON shape. Field names are the report format
// clients already consume, so they are part of the contract.
type sessionDoc struct {
	SessionID      string         `json:"session_id"`
	Timestamp      time.Time      `json:"timestamp"`
	Input          inputDoc       `json:"input"`
	ParsedSymptoms []string       `json:"parsed_symptoms"`
	TopConditions  []conditionDoc `json:"top_conditions"`
	RankedAll      []conditionDoc `json:"ranked_all"`
	FinalUrgency   string         `json:"final_urgency"`
}

type inputDoc struct {
	Text     string   `json:"text"`
	Checked  []string `json:"checked"`
	Duration string   `json:"duration"`
	Severity string   `json:"severity"`
	Age      string   `json:"age"`
	Sex      string   `json:"sex"`
	Image    string   `json:"image,omitempty"`
}

type conditionDoc struct {
	Condition        string     `json:"condition"`
	RawScore         float64    `json:"raw_score"`
	Score            float64    `json:"score"`
	Matches          matchesDoc `json:"matches"`
	RecommendedTests []string   `json:"recommended_tests"`
	DeclaredUrgency  string     `json:"declared_urgency"`
}

type matchesDoc struct {
	Required   []string `json:"required"`
	Supporting []string `json:"supporting"`
	RedFlags   []string `json:"red_flags"`
}

// buildSessionDoc converts a domain Assessment into its stored shape.
func buildSessionDoc(a assessment.Assessment) sessionDoc {
	in := a.Input()
	return sessionDoc{
		SessionID: a.ID(),
		Timestamp: a.CreatedAt(),
		Input: inputDoc{
			Text:     in.Text,
			Checked:  in.Selections,
			Duration: in.Duration,
			Severity: in.Severity,
			Age:      in.Age,
			Sex:      in.Sex,
			Image:    in.Image,
		},
		ParsedSymptoms: a.Keywords(),
		TopConditions:  buildConditionDocs(a.Top()),
		RankedAll:      buildConditionDocs(a.Ranked()),
		FinalUrgency:   string(a.Urgency()),
	}
}

func buildConditionDocs(conds []assessment.ScoredCondition) []conditionDoc {
	docs := make([]conditionDoc, 0, len(conds))
	for _, c := range conds {
		m := c.Matches()
		docs = append(docs, conditionDoc{
			Condition: c.Name(),
			RawScore:  c.Raw(),
			Score:     c.Score(),
			Matches: matchesDoc{
				Required:   emptyIfNil(m.Required),
				Supporting: emptyIfNil(m.Supporting),
				RedFlags:   emptyIfNil(m.RedFlags),
			},
			RecommendedTests: emptyIfNil(c.RecommendedTests()),
			DeclaredUrgency:  string(c.DeclaredUrgency()),
		})
	}
	return docs
}

// toDomain converts a stored doc back into a domain Assessment.
func (d sessionDoc) toDomain() (assessment.Assessment, error) {
	verdict, err := urgency.Parse(d.FinalUrgency)
	if err != nil {
		return assessment.Assessment{}, fmt.Errorf("parse final urgency: %w", err)
	}

	top, err := parseConditionDocs(d.TopConditions)
	if err != nil {
		return assessment.Assessment{}, err
	}
	ranked, err := parseConditionDocs(d.RankedAll)
	if err != nil {
		return assessment.Assessment{}, err
	}

	input := assessment.Input{
		Text:       d.Input.Text,
		Selections: d.Input.Checked,
		Duration:   d.Input.Duration,
		Severity:   d.Input.Severity,
		Age:        d.Input.Age,
		Sex:        d.Input.Sex,
		Image:      d.Input.Image,
	}

	return assessment.Reconstruct(
		d.SessionID, d.Timestamp, input, d.ParsedSymptoms, top, ranked, verdict,
	), nil
}

func parseConditionDocs(docs []conditionDoc) ([]assessment.ScoredCondition, error) {
	conds := make([]assessment.ScoredCondition, 0, len(docs))
	for _, d := range docs {
		declared, err := urgency.Parse(d.DeclaredUrgency)
		if err != nil {
			return nil, fmt.Errorf("condition %q: %w", d.Condition, err)
		}
		conds = append(conds, assessment.NewScored(
			d.Condition, d.RawScore, d.Score,
			assessment.Matches{
				Required:   d.Matches.Required,
				Supporting: d.Matches.Supporting,
				RedFlags:   d.Matches.RedFlags,
			},
			d.RecommendedTests, declared,
		))
	}
	return conds, nil
}

// emptyIfNil keeps list fields as [] rather than null in stored JSON.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
