// Package urgency defines the escalation tiers a triage run can produce.
package urgency

import "fmt"

// Level is an urgency tier, ordered by escalation severity.
type Level string

const (
	// SelfCare means the complaint can be managed at home.
	SelfCare Level = "self_care"
	// SeeGP means a routine general-practitioner visit is advised.
	SeeGP Level = "see_gp"
	// Urgent means immediate medical attention is advised.
	Urgent Level = "urgent"
)

// IsValid checks if the level is one of the three tiers.
func (l Level) IsValid() bool {
	return l == SelfCare || l == SeeGP || l == Urgent
}

// Rank returns the escalation order: SelfCare < SeeGP < Urgent.
func (l Level) Rank() int {
	switch l {
	case SeeGP:
		return 1
	case Urgent:
		return 2
	default:
		return 0
	}
}

// Parse validates a raw urgency string. Empty input defaults to SeeGP,
// matching the knowledge-base convention for conditions that omit the field.
func Parse(s string) (Level, error) {
	if s == "" {
		return SeeGP, nil
	}
	l := Level(s)
	if !l.IsValid() {
		return "", fmt.Errorf("unknown urgency %q", s)
	}
	return l, nil
}
