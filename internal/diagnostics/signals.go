package diagnostics

import (
	"regexp"

	"github.com/suykerbuyk/physics-lens/internal/physics"
)

// handlerPatterns capture the identifier an action verb is bound to.
var handlerPatterns = []*regexp.Regexp{
	// handleWithdraw, handleDeleteClick
	regexp.MustCompile(`\bhandle([A-Z][A-Za-z0-9]*)`),
	// onClick={withdraw}, onPress: () => deleteItem(id)
	regexp.MustCompile(`\bon(?:Click|Press|Submit|Confirm|Tap)\s*[=:]\s*\{?\s*(?:\(\s*\)\s*=>\s*)?([A-Za-z_$][A-Za-z0-9_$]*)`),
	// useTransferMutation
	regexp.MustCompile(`\buse([A-Z][A-Za-z0-9]*)Mutation\b`),
}

// typeAnnotation matches `amount: Balance` and `fee?: FeeSchedule`. Group 1
// is the annotated name, group 2 the type.
var typeAnnotation = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*\??\s*:\s*([A-Z][A-Za-z0-9]*)\b`)

// typeArguments matches type arguments bound directly to an identifier, as
// in useState<Balance> or Record<string, Fee>. JSX elements never match:
// their `<` follows whitespace, `(`, `=` or `>`, and their bodies hold `/`
// or attributes.
var typeArguments = regexp.MustCompile(`([A-Za-z_$][\w$]*)<([\w$\s,.|\[\]]+)>`)

var typeName = regexp.MustCompile(`\b[A-Z][A-Za-z0-9]*\b`)

// componentSignals splits the component identifier into signal words.
func componentSignals(component string) []string {
	return physics.SplitIdentifier(component)
}

// sourceSignals returns words from identifiers bound to action handlers.
func sourceSignals(src string) []string {
	var words []string
	for _, re := range handlerPatterns {
		for _, m := range re.FindAllStringSubmatch(src, -1) {
			words = append(words, physics.SplitIdentifier(m[1])...)
		}
	}
	return dedupe(words)
}

// declaredTypes returns capitalized type names used in annotations and type
// arguments. The false branch of a ternary (`ok ? a : PriceLabel`) is not an
// annotation and is skipped.
func declaredTypes(src string) []string {
	var types []string
	for _, m := range typeAnnotation.FindAllStringSubmatchIndex(src, -1) {
		if prev := prevNonSpace(src, m[2]); prev == '?' || prev == '.' {
			continue
		}
		types = append(types, src[m[4]:m[5]])
	}
	for _, m := range typeArguments.FindAllStringSubmatch(src, -1) {
		if m[1] == "return" {
			continue
		}
		types = append(types, typeName.FindAllString(m[2], -1)...)
	}
	return dedupe(types)
}

// prevNonSpace returns the last non-whitespace byte before i, or 0.
func prevNonSpace(s string, i int) byte {
	for i--; i >= 0; i-- {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return s[i]
	}
	return 0
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
