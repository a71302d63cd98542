package symcheck

import (
	"errors"
	"testing"
)

func TestKBBuilder_Build(t *testing.T) {
	k, err := NewKB().
		Synonym("high temperature", "fever").
		RedFlag("difficulty breathing").
		Condition("Flu",
			Required("fever", "cough"),
			Supporting("fatigue"),
			Tests("Rapid influenza test"),
			WithUrgency(SeeGP),
		).
		Condition("Common cold", Supporting("cough", "runny nose")).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if k.Conditions() != 2 {
		t.Errorf("conditions = %d, want 2", k.Conditions())
	}
	want := []string{"cough", "fatigue", "fever", "runny nose"}
	got := k.Symptoms()
	if len(got) != len(want) {
		t.Fatalf("symptoms = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symptoms[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestKBBuilder_PhrasesLowercased(t *testing.T) {
	k, err := NewKB().
		Condition("Flu", Required("  FEVER ", "Cough")).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	got := k.Symptoms()
	if len(got) != 2 || got[0] != "cough" || got[1] != "fever" {
		t.Errorf("symptoms = %v, want [cough fever]", got)
	}
}

func TestKBBuilder_DefaultUrgency(t *testing.T) {
	k, err := NewKB().
		Condition("Flu", Required("fever")).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	conds := k.snap.Conditions()
	if got := string(conds[0].Urgency()); got != "see_gp" {
		t.Errorf("default urgency = %q, want see_gp", got)
	}
}

func TestKBBuilder_EmptyName(t *testing.T) {
	_, err := NewKB().Condition("", Required("fever")).Build()
	if !errors.Is(err, ErrInvalidKB) {
		t.Fatalf("expected ErrInvalidKB, got %v", err)
	}
}

func TestKBBuilder_InvalidUrgency(t *testing.T) {
	_, err := NewKB().
		Condition("Flu", WithUrgency(Urgency("panic"))).
		Build()
	if !errors.Is(err, ErrInvalidKB) {
		t.Fatalf("expected ErrInvalidKB, got %v", err)
	}
}

func TestKBBuilder_DuplicateCondition(t *testing.T) {
	_, err := NewKB().
		Condition("Flu", Required("fever")).
		Condition("Flu", Required("cough")).
		Build()
	if !errors.Is(err, ErrInvalidKB) {
		t.Fatalf("expected ErrInvalidKB, got %v", err)
	}
}

func TestKBBuilder_EmptySynonym(t *testing.T) {
	_, err := NewKB().
		Synonym("", "fever").
		Condition("Flu", Required("fever")).
		Build()
	if !errors.Is(err, ErrInvalidKB) {
		t.Fatalf("expected ErrInvalidKB, got %v", err)
	}
}

func TestKBBuilder_Empty(t *testing.T) {
	// An empty knowledge base is valid; scoring it degrades to self_care.
	k, err := NewKB().Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if k.Conditions() != 0 {
		t.Errorf("conditions = %d, want 0", k.Conditions())
	}
}
