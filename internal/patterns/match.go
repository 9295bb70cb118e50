package patterns

import (
	"sort"
	"strings"
	"unicode"
)

// Confidence weights. The constants are kept as-is for compatibility with
// existing catalogs tuned against them.
const (
	keywordWeight = 0.2
	symptomWeight = 0.3
	maxConfidence = 0.95
	minConfidence = 0.3 // results at or below are dropped
)

// Matcher scores catalog patterns against free-text symptoms. It is
// read-only after construction and safe for concurrent use.
type Matcher struct {
	patterns []Pattern
}

// NewMatcher builds a matcher over the built-in catalog followed by custom.
func NewMatcher(custom ...Pattern) *Matcher {
	ps := Builtin()
	for _, p := range custom {
		ps = append(ps, clonePattern(p))
	}
	return &Matcher{patterns: ps}
}

// NewMatcherFrom builds a matcher over exactly the given patterns.
func NewMatcherFrom(ps []Pattern) *Matcher {
	out := make([]Pattern, len(ps))
	for i, p := range ps {
		out[i] = clonePattern(p)
	}
	return &Matcher{patterns: out}
}

// Patterns returns a copy of the catalog in priority order.
func (m *Matcher) Patterns() []Pattern {
	out := make([]Pattern, len(m.patterns))
	for i, p := range m.patterns {
		out[i] = clonePattern(p)
	}
	return out
}

// Match returns patterns scoring above the confidence floor, most confident
// first. Equal scores keep catalog order.
func (m *Matcher) Match(symptom string) []MatchResult {
	lower := strings.ToLower(symptom)
	words := wordSet(lower)

	var results []MatchResult
	for _, p := range m.patterns {
		if len(p.Causes) == 0 {
			continue
		}
		conf := Confidence(keywordMatches(lower, p.Keywords), symptomMatches(lower, words, p.SymptomPhrases))
		if conf <= minConfidence {
			continue
		}
		results = append(results, MatchResult{
			Pattern:       clonePattern(p),
			SelectedCause: p.Causes[0],
			Confidence:    conf,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	return results
}

// Confidence combines keyword and symptom hit counts, capped at 0.95.
func Confidence(keywordHits, symptomHits int) float64 {
	c := float64(keywordHits)*keywordWeight + float64(symptomHits)*symptomWeight
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}

func keywordMatches(lower string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			n++
		}
	}
	return n
}

// symptomMatches counts phrases that appear verbatim or share a whole word
// with the input.
func symptomMatches(lower string, words map[string]bool, phrases []string) int {
	n := 0
	for _, ph := range phrases {
		ph = strings.ToLower(ph)
		if ph == "" {
			continue
		}
		if strings.Contains(lower, ph) || sharesWord(words, ph) {
			n++
		}
	}
	return n
}

func sharesWord(words map[string]bool, phrase string) bool {
	for _, w := range splitWords(phrase) {
		if words[w] {
			return true
		}
	}
	return false
}

func wordSet(lower string) map[string]bool {
	ws := splitWords(lower)
	set := make(map[string]bool, len(ws))
	for _, w := range ws {
		set[w] = true
	}
	return set
}

// splitWords returns maximal runs of letters, digits and apostrophes.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
