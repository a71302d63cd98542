package health

import (
	"context"

	"github.com/kailas-cloud/symcheck/internal/domain/kb"
)

// StorePinger checks session storage availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// KBProvider exposes the active knowledge base snapshot.
type KBProvider interface {
	Current() *kb.KnowledgeBase
}
