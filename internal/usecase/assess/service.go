// Package assess orchestrates a full triage round: keyword extraction,
// rule engine scoring, and persistence of the resulting assessment.
package assess

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/symcheck/internal/domain/assessment"
	"github.com/kailas-cloud/symcheck/internal/metrics"
)

// Service handles the assessment lifecycle.
type Service struct {
	extractor Extractor
	engine    Scorer
	kb        KBProvider
	sessions  Repository
	log       *zap.Logger
}

// New creates an assessment service. log can be nil.
func New(extractor Extractor, engine Scorer, kbp KBProvider, sessions Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		extractor: extractor,
		engine:    engine,
		kb:        kbp,
		sessions:  sessions,
		log:       log,
	}
}

// Assess extracts keywords from the input, scores every condition, decides
// the urgency verdict, and persists the result under a fresh session id.
// Empty or unrecognized input is not an error: it degrades to an empty
// keyword set and a self_care verdict.
func (s *Service) Assess(ctx context.Context, input assessment.Input) (assessment.Assessment, error) {
	snap := s.kb.Current()

	keywords := s.extractor.Extract(input.Text, input.Selections, snap)
	res := s.engine.Score(keywords, snap)

	a, err := assessment.New(
		newSessionID(), time.Now().UTC(), input,
		keywords.Values(), res.Top, res.Ranked, res.Urgency,
	)
	if err != nil {
		return assessment.Assessment{}, fmt.Errorf("build assessment: %w", err)
	}

	if err := s.sessions.Save(ctx, a); err != nil {
		return assessment.Assessment{}, fmt.Errorf("save assessment: %w", err)
	}

	metrics.AssessmentsTotal.WithLabelValues(string(res.Urgency)).Inc()
	metrics.ExtractionKeywords.Observe(float64(keywords.Len()))

	s.log.Info("assessment completed",
		zap.String("assessment_id", a.ID()),
		zap.String("urgency", string(res.Urgency)),
		zap.Int("keywords", keywords.Len()),
		zap.Int("conditions", len(res.Ranked)),
	)

	return a, nil
}

// Get retrieves a stored assessment by session id.
func (s *Service) Get(ctx context.Context, id string) (assessment.Assessment, error) {
	a, err := s.sessions.Get(ctx, id)
	if err != nil {
		return assessment.Assessment{}, fmt.Errorf("get assessment: %w", err)
	}
	return a, nil
}

// Delete removes a stored assessment.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	return nil
}

// Symptoms lists the distinct required and supporting symptoms across the
// current knowledge base, sorted. Used to populate selection checklists.
func (s *Service) Symptoms() []string {
	snap := s.kb.Current()
	if snap == nil {
		return nil
	}
	return snap.CommonSymptoms()
}

// newSessionID returns a compact 32-character hex identifier.
func newSessionID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
