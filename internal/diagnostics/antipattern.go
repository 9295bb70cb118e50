package diagnostics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/suykerbuyk/physics-lens/internal/compliance"
)

// confirmWindow is how far, in bytes, a confirmation token may sit from a
// delete call and still count as guarding it.
const confirmWindow = 200

var (
	optimisticTokens = []string{
		"optimistic", "onmutate", "setquerydata", "useoptimistic", "optimisticresponse",
	}
	financialVerbs = []string{
		"withdraw", "deposit", "transfer", "payment", "purchase", "checkout",
		"swap", "stake", "refund", "sendtransaction", "mint", "claim", "buy", "sell",
	}
	confirmTokens = []string{
		"confirm", "dialog", "modal", "are you sure", "alert(", "prompt(",
	}
	freshnessTokens = []string{
		"isfetching", "isrefetching", "dataupdatedat", "updatedat", "lastupdated", "fetchedat",
	}
	stalenessGuards = []string{"stale", "maxage"}

	deleteCall = regexp.MustCompile(`(?i)\b(?:delete|remove|destroy|erase|purge)[A-Za-z0-9_]*\s*\(`)

	// DOM cleanup calls are not user-facing deletes.
	deleteCallIgnored = []string{"removeeventlistener", "removechild", "removeattribute", "removeitem"}
)

// detectAntiPatterns scans comment-stripped source and returns one issue per
// heuristic that fires.
func detectAntiPatterns(src string) []compliance.Issue {
	if src == "" {
		return nil
	}
	lower := strings.ToLower(src)

	var issues []compliance.Issue

	if at := indexAny(lower, optimisticTokens); at >= 0 && indexAny(lower, financialVerbs) >= 0 {
		issues = append(issues, compliance.Issue{
			Severity:   compliance.SeverityError,
			Code:       "optimistic-financial",
			Message:    "Optimistic update used on a financial action",
			Suggestion: "Financial actions must wait for server confirmation (pessimistic sync)",
			Location:   lineOf(lower, at),
		})
	}

	if at := unconfirmedDelete(lower); at >= 0 {
		issues = append(issues, compliance.Issue{
			Severity:   compliance.SeverityWarning,
			Code:       "unconfirmed-delete",
			Message:    "Delete action without a nearby confirmation step",
			Suggestion: "Add a confirmation dialog, or make the action a soft delete with undo",
			Location:   lineOf(lower, at),
		})
	}

	if at := indexAny(lower, freshnessTokens); at >= 0 && indexAny(lower, stalenessGuards) < 0 {
		issues = append(issues, compliance.Issue{
			Severity:   compliance.SeverityWarning,
			Code:       "unguarded-freshness",
			Message:    "Data freshness is checked without a staleness guard",
			Suggestion: "Set staleTime or check isStale before trusting cached values",
			Location:   lineOf(lower, at),
		})
	}

	return issues
}

// unconfirmedDelete returns the offset of the first delete call with no
// confirmation token within confirmWindow bytes, or -1.
func unconfirmedDelete(lower string) int {
	for _, loc := range deleteCall.FindAllStringIndex(lower, -1) {
		call := lower[loc[0]:loc[1]]
		if hasAnyPrefix(call, deleteCallIgnored) {
			continue
		}
		lo := max(0, loc[0]-confirmWindow)
		hi := min(len(lower), loc[1]+confirmWindow)
		if indexAny(lower[lo:hi], confirmTokens) < 0 {
			return loc[0]
		}
	}
	return -1
}

// indexAny returns the smallest offset at which any token occurs, or -1.
func indexAny(s string, tokens []string) int {
	best := -1
	for _, t := range tokens {
		if i := strings.Index(s, t); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func lineOf(src string, offset int) string {
	return fmt.Sprintf("line %d", strings.Count(src[:offset], "\n")+1)
}
