package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/symcheck/internal/db"
	"github.com/kailas-cloud/symcheck/internal/domain"
)

func TestSave_WritesUnderSessionKey(t *testing.T) {
	repo, ms := newTestRepo(t)
	a := testAssessment(t)

	var gotKey string
	var gotTTL time.Duration
	var gotData []byte
	ms.setWithTTLFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		gotKey = key
		gotData = value
		gotTTL = ttl
		return nil
	}

	if err := repo.Save(context.Background(), a); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if gotKey != "symcheck:session:a3f1b2c4" {
		t.Errorf("key = %q, want %q", gotKey, "symcheck:session:a3f1b2c4")
	}
	if gotTTL != time.Hour {
		t.Errorf("ttl = %v, want %v", gotTTL, time.Hour)
	}

	var doc map[string]any
	if err := json.Unmarshal(gotData, &doc); err != nil {
		t.Fatalf("stored payload is not JSON: %v", err)
	}
	for _, field := range []string{
		"session_id", "timestamp", "input", "parsed_symptoms",
		"top_conditions", "ranked_all", "final_urgency",
	} {
		if _, ok := doc[field]; !ok {
			t.Errorf("stored payload missing field %q", field)
		}
	}
	if doc["final_urgency"] != "see_gp" {
		t.Errorf("final_urgency = %v, want see_gp", doc["final_urgency"])
	}

	// Match lists serialize as arrays, never null.
	if strings.Contains(string(gotData), `"red_flags":null`) {
		t.Error("red_flags serialized as null, want []")
	}
}

func TestSave_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.setWithTTLFn = func(context.Context, string, []byte, time.Duration) error {
		return errors.New("connection refused")
	}

	if err := repo.Save(context.Background(), testAssessment(t)); err == nil {
		t.Fatal("Save() should propagate store errors")
	}
}

func TestGet_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)
	a := testAssessment(t)

	data, err := json.Marshal(buildSessionDoc(a))
	if err != nil {
		t.Fatalf("marshal test doc: %v", err)
	}
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		if key != "symcheck:session:a3f1b2c4" {
			t.Errorf("unexpected key %q", key)
		}
		return data, nil
	}

	got, err := repo.Get(context.Background(), "a3f1b2c4")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.ID() != a.ID() {
		t.Errorf("ID() = %q, want %q", got.ID(), a.ID())
	}
	if !got.CreatedAt().Equal(a.CreatedAt()) {
		t.Errorf("CreatedAt() = %v, want %v", got.CreatedAt(), a.CreatedAt())
	}
	if got.Urgency() != a.Urgency() {
		t.Errorf("Urgency() = %q, want %q", got.Urgency(), a.Urgency())
	}
	if len(got.Top()) != 2 || got.Top()[0].Name() != "Flu" {
		t.Errorf("Top() = %+v", got.Top())
	}
	if got.Top()[0].Raw() != 3.6 || got.Top()[0].Score() != 1.0 {
		t.Errorf("Top()[0] scores = %v/%v, want 3.6/1.0", got.Top()[0].Raw(), got.Top()[0].Score())
	}
	if req := got.Top()[0].Matches().Required; len(req) != 2 || req[0] != "fever" {
		t.Errorf("Top()[0] required matches = %v", req)
	}
	if got.Input().Sex != "female" || got.Input().Age != "34" {
		t.Errorf("Input() = %+v", got.Input())
	}
	if kw := got.Keywords(); len(kw) != 3 || kw[0] != "cough" {
		t.Errorf("Keywords() = %v", kw)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.getFn = func(context.Context, string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("Get() error = %v, want ErrSessionNotFound", err)
	}
}

func TestGet_CorruptPayload(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.getFn = func(context.Context, string) ([]byte, error) {
		return []byte("{not json"), nil
	}

	if _, err := repo.Get(context.Background(), "a3f1"); err == nil {
		t.Fatal("Get() should fail on corrupt payload")
	}
}

func TestGet_UnknownUrgency(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.getFn = func(context.Context, string) ([]byte, error) {
		return []byte(`{"session_id":"a3f1","final_urgency":"panic"}`), nil
	}

	if _, err := repo.Get(context.Background(), "a3f1"); err == nil {
		t.Fatal("Get() should reject unknown urgency values")
	}
}

func TestDelete_Removes(t *testing.T) {
	repo, ms := newTestRepo(t)

	var deleted string
	ms.existsFn = func(context.Context, string) (bool, error) { return true, nil }
	ms.delFn = func(_ context.Context, key string) error {
		deleted = key
		return nil
	}

	if err := repo.Delete(context.Background(), "a3f1b2c4"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted != "symcheck:session:a3f1b2c4" {
		t.Errorf("deleted key = %q", deleted)
	}
}

func TestDelete_Missing(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.existsFn = func(context.Context, string) (bool, error) { return false, nil }

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("Delete() error = %v, want ErrSessionNotFound", err)
	}
}

func TestNoTTLKeepsSessionsForever(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "symcheck:", 0)

	var gotTTL time.Duration = -1
	ms.setWithTTLFn = func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
		gotTTL = ttl
		return nil
	}

	if err := repo.Save(context.Background(), testAssessment(t)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if gotTTL != 0 {
		t.Errorf("ttl = %v, want 0 (no expiry)", gotTTL)
	}
}
