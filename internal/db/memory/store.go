// Package memory provides an in-process db.Store. It is the default driver:
// assessments are session-scoped and the product makes no persistence
// promises beyond process lifetime.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kailas-cloud/symcheck/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const sweepInterval = 30 * time.Second

// ErrClosed is returned for operations on a closed store.
var ErrClosed = errors.New("memory: store closed")

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Store implements db.Store over a mutex-guarded map with an expiry sweeper.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry // nil once closed

	done      chan struct{}
	closeOnce sync.Once
}

// NewStore creates a memory store and starts its expiry sweeper.
func NewStore() *Store {
	s := &Store{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
		return nil
	}
}

// Close stops the sweeper and releases all entries.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.entries = nil
		s.mu.Unlock()
	})
}

// WaitForReady is immediate for an in-process store.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Get retrieves a value by key. Expired entries count as missing even
// before the sweeper collects them.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		return nil, db.ErrKeyNotFound
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// SetWithTTL stores a value. A non-positive ttl stores it without expiry.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	// Close nils the map while holding mu, so the closed check must share
	// the critical section with the write.
	s.mu.Lock()
	if s.entries == nil {
		s.mu.Unlock()
		return &db.Error{Op: db.OpSet, Err: ErrClosed}
	}
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

// Del deletes a key. Deleting a missing key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	if s.entries == nil {
		s.mu.Unlock()
		return &db.Error{Op: db.OpDel, Err: ErrClosed}
	}
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Exists checks whether a live entry is stored under key.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	return ok && !e.expired(time.Now()), nil
}

// sweep drops expired entries until Close.
func (s *Store) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, e := range s.entries {
				if e.expired(now) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
