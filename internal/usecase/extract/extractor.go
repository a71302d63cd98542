// Package extract turns raw symptom text and explicit selections into the
// canonical keyword set the rule engine scores against.
//
// Matching is exact phrase equality at word boundaries: no stemming, no
// fuzzy matching. Within the synonym pass and the condition-phrase pass,
// phrases are tried longest first and a matched span is consumed, so a
// shorter phrase can never re-match inside a longer one ("short phrase"
// shadows "short"). The red-flag pass and the single-token fallback scan
// the untouched text: consuming a span for a synonym must not hide the
// same words from red-flag detection.
package extract

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/symcheck/internal/domain/kb"
	"github.com/kailas-cloud/symcheck/internal/domain/keyword"
)

// Extractor produces canonical keyword sets from raw submissions.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the canonical keywords found in text plus the explicit
// selections. Selections are authoritative: they are added verbatim
// (lowercased, trimmed) and bypass phrase matching entirely. Malformed or
// empty input yields an empty or partial set, never a failure.
func (e *Extractor) Extract(text string, selections []string, snap *kb.KnowledgeBase) keyword.Set {
	found := keyword.NewSet()
	for _, sel := range selections {
		found.Add(sel)
	}
	if snap == nil {
		return found
	}

	normText := normalizeText(text)

	// Synonym surfaces, longest first, consuming matched spans. The
	// canonical keyword is added, not the surface phrase.
	synBuf := []byte(normText)
	for _, syn := range snap.OrderedSynonyms() {
		if consumeMatches(synBuf, syn.Surface) {
			found.Add(syn.Canonical)
		}
	}

	// Standalone red flags are self-canonical and scan the pristine text
	// in declaration order.
	pristine := []byte(normText)
	for _, rf := range snap.RedFlagKeywords() {
		if containsPhrase(pristine, rf) {
			found.Add(rf)
		}
	}

	// Condition phrases, longest first, consuming matched spans.
	phraseBuf := []byte(normText)
	for _, phrase := range snap.PhrasesByLength() {
		if consumeMatches(phraseBuf, phrase) {
			found.Add(phrase)
		}
	}

	// Fallback: single tokens that appear inside any condition phrase.
	for _, token := range strings.Fields(normText) {
		if snap.HasPhraseWord(token) {
			found.Add(token)
		}
	}

	return found
}

// normalizeText lowercases text and strips punctuation noise while keeping
// word characters, whitespace, hyphens, and apostrophes, then collapses
// whitespace runs. Input passes through NFKC first so fullwidth and
// compatibility forms compare equal, and curly apostrophes fold to ASCII
// so "can't" matches however it was typed.
func normalizeText(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '’':
			b.WriteRune('\'')
		case isWordRune(r) || unicode.IsSpace(r) || r == '-' || r == '\'':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// isWordRune mirrors regex \w: letters, digits, underscore.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// consumeMatches blanks every word-boundary occurrence of phrase in buf and
// reports whether at least one occurred.
func consumeMatches(buf []byte, phrase string) bool {
	if phrase == "" {
		return false
	}

	patt := []byte(phrase)
	matched := false
	for start := 0; ; {
		idx := bytes.Index(buf[start:], patt)
		if idx < 0 {
			break
		}
		b := start + idx
		e := b + len(patt)
		if boundaryOK(buf, b, e) {
			matched = true
			for i := b; i < e; i++ {
				buf[i] = ' '
			}
			start = e
		} else {
			start = b + 1
		}
	}
	return matched
}

// containsPhrase reports a word-boundary occurrence of phrase in buf
// without consuming anything.
func containsPhrase(buf []byte, phrase string) bool {
	if phrase == "" {
		return false
	}

	patt := []byte(phrase)
	for start := 0; ; {
		idx := bytes.Index(buf[start:], patt)
		if idx < 0 {
			return false
		}
		b := start + idx
		if boundaryOK(buf, b, b+len(patt)) {
			return true
		}
		start = b + 1
	}
}

// boundaryOK checks that the bytes adjacent to [start,end) are not word
// runes, so "ear" cannot match inside "early".
func boundaryOK(buf []byte, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRune(buf[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(buf) {
		r, _ := utf8.DecodeRune(buf[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}
