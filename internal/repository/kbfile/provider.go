package kbfile

import (
	"sync/atomic"

	"github.com/kailas-cloud/symcheck/internal/domain/kb"
)

// Provider hands out the active knowledge base snapshot. Swaps are atomic;
// in-flight requests keep the snapshot they started with.
type Provider struct {
	current atomic.Pointer[kb.KnowledgeBase]
}

// NewProvider creates a provider with an initial snapshot.
func NewProvider(initial *kb.KnowledgeBase) *Provider {
	p := &Provider{}
	p.current.Store(initial)
	return p
}

// Current returns the active snapshot.
func (p *Provider) Current() *kb.KnowledgeBase {
	return p.current.Load()
}

// Swap replaces the active snapshot.
func (p *Provider) Swap(next *kb.KnowledgeBase) {
	p.current.Store(next)
}
