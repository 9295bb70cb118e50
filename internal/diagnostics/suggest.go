package diagnostics

import (
	"fmt"

	"github.com/suykerbuyk/physics-lens/internal/physics"
)

// baseSuggestions returns a fresh advisory list for effect.
func baseSuggestions(effect physics.Effect) []string {
	switch effect {
	case physics.Financial:
		return []string{
			"Use pessimistic sync: wait for server confirmation before showing the new balance",
			"Require explicit confirmation that shows the amount and destination",
			"Disable the trigger while the transaction is pending",
			"Use deliberate ~800ms timing with ease-out motion on an elevated surface",
		}
	case physics.Destructive:
		return []string{
			"Require confirmation before the action commits",
			"Prefer soft delete with undo where the data model allows it",
			"Use pessimistic sync and show progress until the server confirms",
		}
	case physics.SoftDelete:
		return []string{
			"Update optimistically and offer undo in a toast",
			"Defer the permanent commit until the undo window expires",
		}
	case physics.Standard:
		return []string{
			"Optimistic updates with rollback on error are appropriate",
			"Keep feedback under 200ms with spring motion",
		}
	case physics.Local:
		return []string{
			"Apply the change immediately without a server round-trip",
			"Persist the preference locally so it survives reloads",
		}
	case physics.Navigation:
		return []string{
			"Navigate immediately and prefetch the destination where possible",
			"Keep transitions short (~150ms)",
		}
	case physics.Query:
		return []string{
			"Show cached data immediately and revalidate in the background",
			"Set an explicit staleTime so freshness is a decision, not a default",
		}
	}
	return nil
}

// suggestionsFor returns the advisory list for effect, plus one extra entry
// when the compliance result is not full.
func suggestionsFor(effect physics.Effect, compliant bool) []string {
	out := baseSuggestions(effect)
	if !compliant {
		out = append(out, fmt.Sprintf("Align runtime physics with the %s profile", effect))
	}
	return out
}
