package chi

import (
	"time"

	"github.com/kailas-cloud/symcheck/internal/domain/assessment"
)

// ErrorCode is a machine-readable API error code.
type ErrorCode string

const (
	CodeBadRequest      ErrorCode = "bad_request"
	CodeSessionNotFound ErrorCode = "session_not_found"
	CodeUploadTooLarge  ErrorCode = "upload_too_large"
	CodeInternalError   ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AssessRequest is the JSON submission body. Field names match the
// multipart form fields, so both entry points share one vocabulary.
type AssessRequest struct {
	SymptomsText  string   `json:"symptoms_text"`
	SymptomsCheck []string `json:"symptoms_check"`
	Duration      string   `json:"duration"`
	Severity      string   `json:"severity"`
	Age           string   `json:"age"`
	Sex           string   `json:"sex"`
}

// InputEcho mirrors the submitted input back in responses.
type InputEcho struct {
	Text     string   `json:"text"`
	Checked  []string `json:"checked"`
	Duration string   `json:"duration"`
	Severity string   `json:"severity"`
	Age      string   `json:"age"`
	Sex      string   `json:"sex"`
	Image    string   `json:"image,omitempty"`
}

// MatchDetail lists the matched phrases per category.
type MatchDetail struct {
	Required   []string `json:"required"`
	Supporting []string `json:"supporting"`
	RedFlags   []string `json:"red_flags"`
}

// ConditionResult is one scored condition in a ranking.
type ConditionResult struct {
	Condition        string      `json:"condition"`
	RawScore         float64     `json:"raw_score"`
	Score            float64     `json:"score"`
	Matches          MatchDetail `json:"matches"`
	RecommendedTests []string    `json:"recommended_tests"`
	DeclaredUrgency  string      `json:"declared_urgency"`
}

// AssessmentResponse is the full assessment document. The same shape is
// returned by create/get and written by export. Warnings only appear on
// create, for non-fatal intake problems such as a rejected image type.
type AssessmentResponse struct {
	SessionID      string            `json:"session_id"`
	Timestamp      time.Time         `json:"timestamp"`
	Input          InputEcho         `json:"input"`
	ParsedSymptoms []string          `json:"parsed_symptoms"`
	TopConditions  []ConditionResult `json:"top_conditions"`
	RankedAll      []ConditionResult `json:"ranked_all"`
	FinalUrgency   string            `json:"final_urgency"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// SymptomsResponse lists selectable symptoms for intake checklists.
type SymptomsResponse struct {
	Symptoms []string `json:"symptoms"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func assessmentToResponse(a assessment.Assessment, warnings []string) AssessmentResponse {
	in := a.Input()
	return AssessmentResponse{
		SessionID: a.ID(),
		Timestamp: a.CreatedAt(),
		Input: InputEcho{
			Text:     in.Text,
			Checked:  emptyIfNil(in.Selections),
			Duration: in.Duration,
			Severity: in.Severity,
			Age:      in.Age,
			Sex:      in.Sex,
			Image:    in.Image,
		},
		ParsedSymptoms: emptyIfNil(a.Keywords()),
		TopConditions:  conditionsToResponse(a.Top()),
		RankedAll:      conditionsToResponse(a.Ranked()),
		FinalUrgency:   string(a.Urgency()),
		Warnings:       warnings,
	}
}

func conditionsToResponse(conds []assessment.ScoredCondition) []ConditionResult {
	out := make([]ConditionResult, 0, len(conds))
	for _, c := range conds {
		m := c.Matches()
		out = append(out, ConditionResult{
			Condition: c.Name(),
			RawScore:  c.Raw(),
			Score:     c.Score(),
			Matches: MatchDetail{
				Required:   emptyIfNil(m.Required),
				Supporting: emptyIfNil(m.Supporting),
				RedFlags:   emptyIfNil(m.RedFlags),
			},
			RecommendedTests: emptyIfNil(c.RecommendedTests()),
			DeclaredUrgency:  string(c.DeclaredUrgency()),
		})
	}
	return out
}

// emptyIfNil keeps list fields as [] rather than null on the wire.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
