package assess

import (
	"context"

	"github.com/kailas-cloud/symcheck/internal/domain/assessment"
	"github.com/kailas-cloud/symcheck/internal/domain/kb"
	"github.com/kailas-cloud/symcheck/internal/domain/keyword"
	"github.com/kailas-cloud/symcheck/internal/usecase/triage"
)

// Repository defines the storage contract for completed assessments.
type Repository interface {
	Save(ctx context.Context, a assessment.Assessment) error
	Get(ctx context.Context, id string) (assessment.Assessment, error)
	Delete(ctx context.Context, id string) error
}

// KBProvider yields the current knowledge base snapshot. The snapshot may
// be swapped between calls; callers hold one snapshot per request.
type KBProvider interface {
	Current() *kb.KnowledgeBase
}

// Extractor turns free text and explicit selections into canonical keywords.
type Extractor interface {
	Extract(text string, selections []string, snap *kb.KnowledgeBase) keyword.Set
}

// Scorer runs the rule engine over an extracted keyword set.
type Scorer interface {
	Score(keywords keyword.Set, snap *kb.KnowledgeBase) triage.Result
}
