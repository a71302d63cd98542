// Package keyword provides the normalized symptom-keyword set produced by
// extraction and consumed by scoring.
package keyword

import (
	"sort"
	"strings"
)

// Set is a deduplicated, case-normalized collection of canonical symptom
// keywords. The zero value is not usable; construct with NewSet.
type Set struct {
	members map[string]struct{}
}

// NewSet creates a Set seeded with the given keywords. Each entry is
// lowercased and trimmed; empty entries are dropped.
func NewSet(keywords ...string) Set {
	s := Set{members: make(map[string]struct{}, len(keywords))}
	for _, k := range keywords {
		s.Add(k)
	}
	return s
}

// Add inserts a keyword, lowercased and trimmed. Empty strings are ignored.
func (s Set) Add(k string) {
	k = strings.ToLower(strings.TrimSpace(k))
	if k == "" {
		return
	}
	s.members[k] = struct{}{}
}

// Has reports membership of an already-normalized keyword.
func (s Set) Has(k string) bool {
	_, ok := s.members[k]
	return ok
}

// Len returns the number of distinct keywords.
func (s Set) Len() int { return len(s.members) }

// Values returns the keywords sorted ascending, so downstream output is
// deterministic for identical inputs.
func (s Set) Values() []string {
	out := make([]string, 0, len(s.members))
	for k := range s.members {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
