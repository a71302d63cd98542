// Package session persists completed assessments in the configured store so
// results can be fetched and exported after submission.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/symcheck/internal/db"
	"github.com/kailas-cloud/symcheck/internal/domain"
	"github.com/kailas-cloud/symcheck/internal/domain/assessment"
)

// store is the consumer interface for sessions (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo implements usecase/assess.Repository.
type Repo struct {
	store     store
	keyPrefix string
	ttl       time.Duration
}

// New creates a session repository. A non-positive ttl keeps sessions for
// the lifetime of the store.
func New(s store, keyPrefix string, ttl time.Duration) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, ttl: ttl}
}

// Save stores an assessment under its session id.
func (r *Repo) Save(ctx context.Context, a assessment.Assessment) error {
	doc := buildSessionDoc(a)
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	key := r.sessionKey(a.ID())
	if err := r.store.SetWithTTL(ctx, key, data, r.ttl); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Get returns an assessment by session id.
func (r *Repo) Get(ctx context.Context, id string) (assessment.Assessment, error) {
	key := r.sessionKey(id)
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return assessment.Assessment{}, domain.ErrSessionNotFound
		}
		return assessment.Assessment{}, fmt.Errorf("get %s: %w", key, err)
	}

	var doc sessionDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return assessment.Assessment{}, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return doc.toDomain()
}

// Delete removes a stored assessment.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.sessionKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrSessionNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *Repo) sessionKey(id string) string {
	return fmt.Sprintf("%ssession:%s", r.keyPrefix, id)
}
