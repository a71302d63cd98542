package session

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/symcheck/internal/domain/assessment"
	"github.com/kailas-cloud/symcheck/internal/domain/urgency"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn        func(ctx context.Context, key string) ([]byte, error)
	setWithTTLFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delFn        func(ctx context.Context, key string) error
	existsFn     func(ctx context.Context, key string) (bool, error)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setWithTTLFn != nil {
		return m.setWithTTLFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "symcheck:", time.Hour)
	return repo, ms
}

func testAssessment(t *testing.T) assessment.Assessment {
	t.Helper()

	flu := assessment.NewScored(
		"Flu", 3.6, 1.0,
		assessment.Matches{
			Required:   []string{"fever", "cough"},
			Supporting: []string{"fatigue"},
		},
		[]string{"Rapid influenza test"},
		urgency.SeeGP,
	)
	cold := assessment.NewScored(
		"Common cold", 1.3, 0.0,
		assessment.Matches{Supporting: []string{"cough"}},
		nil,
		urgency.SelfCare,
	)

	a, err := assessment.New(
		"a3f1b2c4",
		time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		assessment.Input{
			Text:       "fever and cough for two days",
			Selections: []string{"fatigue"},
			Duration:   "2 days",
			Severity:   "moderate",
			Age:        "34",
			Sex:        "female",
		},
		[]string{"cough", "fatigue", "fever"},
		[]assessment.ScoredCondition{flu, cold},
		[]assessment.ScoredCondition{flu, cold},
		urgency.SeeGP,
	)
	if err != nil {
		t.Fatalf("build test assessment: %v", err)
	}
	return a
}
