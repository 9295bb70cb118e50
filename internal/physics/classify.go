package physics

import "strings"

// family is one keyword vocabulary. Families are tested in slice order and
// the first match wins, regardless of how many terms another family hits.
// A leading or trailing space in a term anchors it to a word boundary; the
// text is padded with spaces before matching.
type family struct {
	effect Effect
	terms  []string
}

var families = [...]family{
	{Financial, []string{
		"withdraw", "deposit", "transfer", "payment", "pay ", "purchase",
		"checkout", "refund", "invoice", "billing", "transaction", "balance",
		"wallet", "price", "charge", "donate", "fund", "loan", "borrow",
		"repay", "trade", "sell", "buy", "swap", " stake", "unstake", "mint", "claim",
		"currency", "amount", "tip jar", "send money", "bridge", "cash out",
	}},
	{Destructive, []string{
		"delete", "remove", "destroy", "erase", "purge", "wipe", "revoke",
		"terminate", "deactivate", "uninstall", "discard", "truncate",
		"overwrite", "unpublish", "burn", "close account", "clear all",
		"clear data", " reset", "permanent", "irreversible", "drop table",
		" kill", "nuke",
	}},
	{SoftDelete, []string{
		"archive", "trash", "soft delete", "soft-delete", "hide", "dismiss",
		" mute", "snooze", "recycle", "restore", "undo", "unfollow",
		"unsubscribe", "move to", "put away", "stash", "deprioritize",
		"mark as read", "collapse thread", "unpin",
	}},
	{Local, []string{
		"toggle", "theme", "dark mode", "light mode", "preference", "setting",
		"collapse", "expand", "sort", "filter", "zoom", "checkbox", "switch",
		"draft", "layout", "view mode", "density", "font", "volume",
		"sidebar", "panel", "accordion", "select", "highlight", "drag",
		"resize", "copy to clipboard",
	}},
	{Navigation, []string{
		"navigate", "navigation", " link", "route", "router", "redirect",
		"go back", "back button", "next page", "previous page", "goto",
		"go to", "open", "menu", "breadcrumb", "href", "scroll", "jump",
		"home", "tab bar", "pagination", "step", "wizard",
	}},
	{Query, []string{
		"search", "fetch", "query", "lookup", "look up", "find", "refresh",
		"reload", "retrieve", "browse", "preview", "autocomplete", "suggest",
		"list", "inspect", "poll", "load more", "view",
		"detail", "history", "status",
	}},
}

// reversibleHints downgrade a destructive match to soft-delete.
var reversibleHints = []string{"with undo", "reversible", "recycle bin", "can undo"}

// isFinancialWord reports whether one word of a declared value-type name
// forces Financial.
func isFinancialWord(w string) bool {
	switch w {
	case "currency", "money", "amount", "balance",
		"fee", "fees", "token", "price", "cost",
		"wei", "gwei", "lamports", "satoshi",
		"cents", "bignumber", "decimal", "wallet",
		"payment", "invoice":
		return true
	}
	return false
}

// Classify maps signal words and declared value-type names to one effect.
// It never fails; inputs that match nothing yield Standard.
func Classify(signals []string, types []string) Effect {
	if hasFinancialType(types) {
		return Financial
	}

	joined := strings.TrimSpace(strings.Join(signals, " "))
	if joined == "" {
		return Standard
	}
	text := " " + strings.ToLower(joined) + " "

	// families[1] is the destructive vocabulary.
	if containsAny(text, families[1].terms) && isReversible(text) {
		return SoftDelete
	}

	for _, f := range families {
		if containsAny(text, f.terms) {
			return f.effect
		}
	}

	return Standard
}

// ClassifyText classifies a single free-text phrase.
func ClassifyText(text string) Effect {
	return Classify([]string{text}, nil)
}

// Terms returns a copy of the keyword vocabulary for e, or nil for Standard.
func Terms(e Effect) []string {
	for _, f := range families {
		if f.effect == e {
			return append([]string(nil), f.terms...)
		}
	}
	return nil
}

// IsFinancialType reports whether a declared type name carries financial
// evidence.
func IsFinancialType(name string) bool {
	for _, w := range SplitIdentifier(name) {
		if isFinancialWord(w) {
			return true
		}
	}
	return false
}

func hasFinancialType(types []string) bool {
	for _, t := range types {
		if IsFinancialType(t) {
			return true
		}
	}
	return false
}

// isReversible checks for a reversibility phrase. "irreversible" is removed
// first so it never reads as "reversible".
func isReversible(lower string) bool {
	lower = strings.ReplaceAll(lower, "irreversible", "")
	return containsAny(lower, reversibleHints)
}

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
