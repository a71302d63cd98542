package triage

import (
	"math"
	"reflect"
	"testing"

	"github.com/kailas-cloud/symcheck/internal/domain/kb"
	"github.com/kailas-cloud/symcheck/internal/domain/keyword"
	"github.com/kailas-cloud/symcheck/internal/domain/urgency"
)

func defaultEngine() *Engine {
	return New(DefaultWeights(), DefaultThresholds(), DefaultTopN)
}

func mustKB(t *testing.T, conds ...kb.Condition) *kb.KnowledgeBase {
	t.Helper()
	snap, err := kb.New(nil, nil, conds)
	if err != nil {
		t.Fatalf("build kb: %v", err)
	}
	return snap
}

func mustCondition(t *testing.T, name, urg string, required, supporting, redFlags, tests []string) kb.Condition {
	t.Helper()
	c, err := kb.NewCondition(name, required, supporting, redFlags, tests, urg)
	if err != nil {
		t.Fatalf("build condition: %v", err)
	}
	return c
}

func TestScore_FluScenario(t *testing.T) {
	snap := mustKB(t, mustCondition(t, "Flu", "see_gp",
		[]string{"fever", "cough"},
		[]string{"fatigue"},
		[]string{"difficulty breathing"},
		[]string{"Rapid influenza test"},
	))

	res := defaultEngine().Score(keyword.NewSet("fever", "cough", "fatigue"), snap)

	if len(res.Ranked) != 1 {
		t.Fatalf("Ranked len = %d, want 1", len(res.Ranked))
	}
	flu := res.Ranked[0]

	// 0.5 base + 1.5 + 1.5 required + 0.8 supporting.
	if math.Abs(flu.Raw()-4.3) > 1e-9 {
		t.Errorf("Raw() = %v, want 4.3", flu.Raw())
	}
	// Single condition: span fallback normalizes to 0.0.
	if flu.Score() != 0.0 {
		t.Errorf("Score() = %v, want 0.0", flu.Score())
	}
	// 0.0 < 0.25 threshold, so the declared see_gp does not escalate.
	if res.Urgency != urgency.SelfCare {
		t.Errorf("Urgency = %q, want self_care", res.Urgency)
	}
	if got := flu.Matches().Required; !reflect.DeepEqual(got, []string{"fever", "cough"}) {
		t.Errorf("Required matches = %v (want declaration order)", got)
	}
	if got := flu.Matches().Supporting; !reflect.DeepEqual(got, []string{"fatigue"}) {
		t.Errorf("Supporting matches = %v", got)
	}
	if flu.HasRedFlagMatch() {
		t.Error("no red flag was in the keyword set")
	}
	if got := flu.RecommendedTests(); len(got) != 1 || got[0] != "Rapid influenza test" {
		t.Errorf("RecommendedTests() = %v", got)
	}
}

func TestScore_RedFlagEscalatesRegardlessOfScore(t *testing.T) {
	snap := mustKB(t, mustCondition(t, "Flu", "see_gp",
		[]string{"fever", "cough"}, []string{"fatigue"},
		[]string{"difficulty breathing"}, nil,
	))

	res := defaultEngine().Score(keyword.NewSet("difficulty breathing"), snap)

	if res.Urgency != urgency.Urgent {
		t.Errorf("Urgency = %q, want urgent", res.Urgency)
	}
	if got := res.Ranked[0].Matches().RedFlags; !reflect.DeepEqual(got, []string{"difficulty breathing"}) {
		t.Errorf("RedFlags matches = %v", got)
	}
}

func TestScore_RedFlagWithUrgentTopStaysUrgent(t *testing.T) {
	snap := mustKB(t,
		mustCondition(t, "Meningitis", "urgent",
			[]string{"fever", "stiff neck"}, nil,
			[]string{"stiff neck"}, nil),
		mustCondition(t, "Common cold", "self_care",
			nil, []string{"cough"}, nil, nil),
	)

	res := defaultEngine().Score(keyword.NewSet("fever", "stiff neck"), snap)

	top := res.Ranked[0]
	if top.Name() != "Meningitis" || top.Score() != 1.0 {
		t.Fatalf("top = %s at %v, want Meningitis at 1.0", top.Name(), top.Score())
	}
	if !top.HasRedFlagMatch() {
		t.Fatal("stiff neck should match the red flag list")
	}
	if res.Urgency != urgency.Urgent {
		t.Errorf("Urgency = %q, want urgent", res.Urgency)
	}
}

func TestScore_GlobalRedFlagFromLowerRankedCondition(t *testing.T) {
	snap := mustKB(t,
		mustCondition(t, "Flu", "see_gp",
			[]string{"fever", "cough"}, nil, nil, nil),
		mustCondition(t, "Meningitis", "urgent",
			nil, nil, []string{"stiff neck"}, nil),
	)

	res := defaultEngine().Score(keyword.NewSet("fever", "cough", "stiff neck"), snap)

	// Flu raw 3.5 outranks Meningitis raw 3.0, yet the red flag anywhere
	// in the ranking forces urgent.
	if res.Ranked[0].Name() != "Flu" {
		t.Fatalf("top condition = %q, want Flu", res.Ranked[0].Name())
	}
	if res.Urgency != urgency.Urgent {
		t.Errorf("Urgency = %q, want urgent", res.Urgency)
	}
}

func TestScore_RankingAndNormalization(t *testing.T) {
	snap := mustKB(t,
		mustCondition(t, "Common cold", "self_care",
			nil, []string{"cough", "runny nose"}, nil, nil),
		mustCondition(t, "Flu", "see_gp",
			[]string{"fever", "cough"}, []string{"fatigue"}, nil, nil),
		mustCondition(t, "Migraine", "see_gp",
			[]string{"headache"}, nil, nil, nil),
	)

	res := defaultEngine().Score(keyword.NewSet("fever", "cough", "fatigue"), snap)

	// Raw: Flu 4.3, cold 1.3, migraine 0.5. Span 3.8.
	wantOrder := []string{"Flu", "Common cold", "Migraine"}
	for i, name := range wantOrder {
		if res.Ranked[i].Name() != name {
			t.Fatalf("Ranked[%d] = %q, want %q", i, res.Ranked[i].Name(), name)
		}
	}

	if res.Ranked[0].Score() != 1.0 {
		t.Errorf("top Score() = %v, want 1.0", res.Ranked[0].Score())
	}
	if res.Ranked[1].Score() != 0.211 { // 0.8/3.8 rounded
		t.Errorf("middle Score() = %v, want 0.211", res.Ranked[1].Score())
	}
	if res.Ranked[2].Score() != 0.0 {
		t.Errorf("bottom Score() = %v, want 0.0", res.Ranked[2].Score())
	}
	for _, s := range res.Ranked {
		if s.Score() < 0 || s.Score() > 1 {
			t.Errorf("Score() %v outside [0,1]", s.Score())
		}
	}

	// Top is declared see_gp with score 1.0 >= 0.25.
	if res.Urgency != urgency.SeeGP {
		t.Errorf("Urgency = %q, want see_gp", res.Urgency)
	}
}

func TestScore_AllTieNormalizeToZero(t *testing.T) {
	snap := mustKB(t,
		mustCondition(t, "A", "see_gp", []string{"fever"}, nil, nil, nil),
		mustCondition(t, "B", "urgent", []string{"rash"}, nil, nil, nil),
	)

	res := defaultEngine().Score(keyword.NewSet(), snap)

	for i, s := range res.Ranked {
		if s.Score() != 0.0 {
			t.Errorf("Ranked[%d].Score() = %v, want 0.0", i, s.Score())
		}
	}
	// Stable sort keeps declaration order on ties.
	if res.Ranked[0].Name() != "A" || res.Ranked[1].Name() != "B" {
		t.Errorf("tie order = %q, %q; want A, B", res.Ranked[0].Name(), res.Ranked[1].Name())
	}
	if res.Urgency != urgency.SelfCare {
		t.Errorf("Urgency = %q, want self_care", res.Urgency)
	}
}

func TestScore_UrgentDeclaredTopEscalates(t *testing.T) {
	snap := mustKB(t,
		mustCondition(t, "Appendicitis", "urgent",
			[]string{"abdominal pain"}, nil, nil, nil),
		mustCondition(t, "Indigestion", "self_care",
			nil, []string{"bloating"}, nil, nil),
	)

	res := defaultEngine().Score(keyword.NewSet("abdominal pain"), snap)

	if res.Ranked[0].Name() != "Appendicitis" {
		t.Fatalf("top = %q", res.Ranked[0].Name())
	}
	if res.Urgency != urgency.Urgent {
		t.Errorf("Urgency = %q, want urgent", res.Urgency)
	}
}

func TestScore_UrgentDeclaredBelowThresholdFallsToSelfCare(t *testing.T) {
	// With one condition the span fallback pins the score at 0.0, below
	// both thresholds; the policy skips straight to self_care rather
	// than degrading urgent to see_gp.
	snap := mustKB(t, mustCondition(t, "Appendicitis", "urgent",
		[]string{"abdominal pain"}, nil, nil, nil))

	res := defaultEngine().Score(keyword.NewSet("abdominal pain"), snap)

	if res.Urgency != urgency.SelfCare {
		t.Errorf("Urgency = %q, want self_care", res.Urgency)
	}
}

func TestScore_SelfCareDeclaredTopNeverEscalates(t *testing.T) {
	snap := mustKB(t,
		mustCondition(t, "Common cold", "self_care",
			nil, []string{"runny nose"}, nil, nil),
		mustCondition(t, "Flu", "see_gp",
			[]string{"fever"}, nil, nil, nil),
	)

	res := defaultEngine().Score(keyword.NewSet("runny nose"), snap)

	if res.Ranked[0].Name() != "Common cold" {
		t.Fatalf("top = %q", res.Ranked[0].Name())
	}
	if res.Urgency != urgency.SelfCare {
		t.Errorf("Urgency = %q, want self_care", res.Urgency)
	}
}

func TestScore_EmptyKB(t *testing.T) {
	res := defaultEngine().Score(keyword.NewSet("fever"), mustKB(t))

	if len(res.Ranked) != 0 || len(res.Top) != 0 {
		t.Errorf("expected empty ranking, got %d/%d", len(res.Top), len(res.Ranked))
	}
	if res.Urgency != urgency.SelfCare {
		t.Errorf("Urgency = %q, want self_care", res.Urgency)
	}

	res = defaultEngine().Score(keyword.NewSet("fever"), nil)
	if res.Urgency != urgency.SelfCare {
		t.Errorf("nil KB Urgency = %q, want self_care", res.Urgency)
	}
}

func TestScore_TopNClamped(t *testing.T) {
	snap := mustKB(t,
		mustCondition(t, "A", "self_care", []string{"fever"}, nil, nil, nil),
		mustCondition(t, "B", "self_care", []string{"rash"}, nil, nil, nil),
	)

	res := defaultEngine().Score(keyword.NewSet("fever"), snap)

	if len(res.Top) != 2 {
		t.Errorf("Top len = %d, want 2 (KB smaller than top-N)", len(res.Top))
	}
	if len(res.Ranked) != 2 {
		t.Errorf("Ranked len = %d, want 2", len(res.Ranked))
	}
}

func TestScore_CustomTopN(t *testing.T) {
	snap := mustKB(t,
		mustCondition(t, "A", "self_care", []string{"fever"}, nil, nil, nil),
		mustCondition(t, "B", "self_care", []string{"rash"}, nil, nil, nil),
		mustCondition(t, "C", "self_care", []string{"cough"}, nil, nil, nil),
	)

	res := New(DefaultWeights(), DefaultThresholds(), 1).Score(keyword.NewSet("fever"), snap)

	if len(res.Top) != 1 {
		t.Fatalf("Top len = %d, want 1", len(res.Top))
	}
	if res.Top[0].Name() != "A" {
		t.Errorf("Top[0] = %q, want A", res.Top[0].Name())
	}
	if len(res.Ranked) != 3 {
		t.Errorf("Ranked len = %d, want all 3", len(res.Ranked))
	}
}

func TestScore_CustomWeights(t *testing.T) {
	snap := mustKB(t, mustCondition(t, "Flu", "see_gp",
		[]string{"fever"}, []string{"fatigue"}, nil, nil))

	w := Weights{Base: 1.0, Required: 2.0, Supporting: 0.5, RedFlag: 10.0}
	res := New(w, DefaultThresholds(), DefaultTopN).Score(keyword.NewSet("fever", "fatigue"), snap)

	if math.Abs(res.Ranked[0].Raw()-3.5) > 1e-9 {
		t.Errorf("Raw() = %v, want 3.5 with custom weights", res.Ranked[0].Raw())
	}
}

func TestScore_Idempotent(t *testing.T) {
	snap := mustKB(t,
		mustCondition(t, "Flu", "see_gp",
			[]string{"fever", "cough"}, []string{"fatigue"}, nil, nil),
		mustCondition(t, "Common cold", "self_care",
			nil, []string{"cough"}, nil, nil),
	)
	keywords := keyword.NewSet("fever", "cough")

	first := defaultEngine().Score(keywords, snap)
	second := defaultEngine().Score(keywords, snap)

	if !reflect.DeepEqual(first, second) {
		t.Error("scoring is not deterministic for identical inputs")
	}
}

func TestRound3(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.0, 0.0},
		{1.0, 1.0},
		{0.2105263, 0.211},
		{0.9994, 0.999},
		{0.99951, 1.0},
	}
	for _, tc := range tests {
		if got := round3(tc.in); got != tc.want {
			t.Errorf("round3(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
