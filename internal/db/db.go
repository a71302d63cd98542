// Package db defines the storage facade the session layer runs on.
// Drivers live in subpackages (memory, redis) and are selected by
// configuration; consumers depend on the narrow interfaces they need.
package db

import (
	"context"
	"time"
)

// Store is the storage facade combining all sub-interfaces.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides key-value operations with expiry.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// SetWithTTL stores a value with an expiration. A non-positive ttl
	// stores the value without expiry.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
