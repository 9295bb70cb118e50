package patterns

import "github.com/suykerbuyk/physics-lens/internal/compliance"

// builtin is ordered by curation priority; ties in confidence keep this order.
var builtin = []Pattern{
	{
		ID:       "double-submit",
		Name:     "Double submission",
		Category: "behavioral",
		Severity: compliance.SeverityError,
		SymptomPhrases: []string{
			"charged twice", "duplicate transaction", "submitted twice",
			"button clicked twice",
		},
		Keywords: []string{"double", "twice", "duplicate", "submit", "charged"},
		Causes: []Cause{
			{
				Name:      "No pending state on the trigger",
				Signature: "onClick handler without disabled={isPending}",
				Example:   "<button onClick={withdraw}>Withdraw</button>",
				Solution:  "Disable the trigger while the mutation is pending and ignore repeat clicks",
			},
			{
				Name:      "Optimistic update on a financial action",
				Signature: "onMutate/setQueryData before the server confirms",
				Solution:  "Switch financial actions to pessimistic sync",
			},
		},
	},
	{
		ID:       "optimistic-rollback",
		Name:     "Optimistic rollback flash",
		Category: "behavioral",
		Severity: compliance.SeverityError,
		SymptomPhrases: []string{
			"balance jumps back", "value flickers", "ui reverts", "number changes back",
		},
		Keywords: []string{"flicker", "revert", "rollback", "jumps", "optimistic"},
		Causes: []Cause{
			{
				Name:      "Optimistic cache write rolled back on server error",
				Signature: "onMutate writes cache, onError restores snapshot",
				Example:   "queryClient.setQueryData(['balance'], b => b - amount)",
				Solution:  "Use pessimistic sync and show a pending state until the server confirms",
			},
			{
				Name:      "Refetch overwrites local state",
				Signature: "invalidateQueries racing a local setState",
				Solution:  "Derive the displayed value from the query cache only",
			},
		},
	},
	{
		ID:       "missing-confirmation",
		Name:     "Missing confirmation",
		Category: "behavioral",
		Severity: compliance.SeverityError,
		SymptomPhrases: []string{
			"deleted without asking", "no confirmation", "lost data by accident",
			"one click deleted",
		},
		Keywords: []string{"confirm", "accident", "deleted", "dialog", "asking"},
		Causes: []Cause{
			{
				Name:      "Destructive handler fires directly",
				Signature: "onClick={handleDelete} with no confirm step",
				Example:   "<button onClick={() => deleteProject(id)}>Delete</button>",
				Solution:  "Gate destructive actions behind a confirmation dialog, or make them soft-delete with undo",
			},
		},
	},
	{
		ID:       "sluggish-feedback",
		Name:     "Sluggish feedback",
		Category: "animation",
		Severity: compliance.SeverityWarning,
		SymptomPhrases: []string{
			"feels slow", "takes forever", "delay before", "laggy response",
		},
		Keywords: []string{"slow", "lag", "delay", "sluggish", "wait"},
		Causes: []Cause{
			{
				Name:      "Animation duration longer than the effect profile",
				Signature: "transition duration well above the expected timing",
				Example:   "transition: all 1200ms ease",
				Solution:  "Bring the duration within 100ms of the expected timing for the effect",
			},
			{
				Name:      "Pessimistic sync on a local action",
				Signature: "await server before toggling local UI state",
				Solution:  "Local state changes should be immediate",
			},
		},
	},
	{
		ID:       "animation-jank",
		Name:     "Animation jank",
		Category: "animation",
		Severity: compliance.SeverityWarning,
		SymptomPhrases: []string{
			"animation stutters", "choppy animation", "frames drop", "jumpy motion",
		},
		Keywords: []string{"jank", "stutter", "choppy", "frame", "jitter"},
		Causes: []Cause{
			{
				Name:      "Layout properties animated",
				Signature: "animating width/height/top instead of transform",
				Example:   "animate={{ height: open ? 'auto' : 0 }}",
				Solution:  "Animate transform and opacity only",
			},
			{
				Name:      "Spring parameters too stiff",
				Signature: "spring with very high stiffness and low damping",
				Solution:  "Use the spring family parameters from the effect profile",
			},
		},
	},
	{
		ID:       "stale-data",
		Name:     "Stale data",
		Category: "data",
		Severity: compliance.SeverityWarning,
		SymptomPhrases: []string{
			"shows old data", "not updated", "outdated balance", "refresh needed",
		},
		Keywords: []string{"stale", "outdated", "cache", "refresh", "old"},
		Causes: []Cause{
			{
				Name:      "Freshness check without a staleness guard",
				Signature: "isFetching/updatedAt read without staleTime or maxAge",
				Example:   "if (data.updatedAt) render(data)",
				Solution:  "Set a staleTime and re-validate before acting on cached values",
			},
			{
				Name:      "Mutation does not invalidate dependent queries",
				Signature: "mutation success without invalidateQueries",
				Solution:  "Invalidate or refetch every query the mutation affects",
			},
		},
	},
	{
		ID:       "surface-mismatch",
		Name:     "Surface mismatch",
		Category: "material",
		Severity: compliance.SeverityInfo,
		SymptomPhrases: []string{
			"looks flat", "wrong shadow", "inconsistent surface", "does not stand out",
		},
		Keywords: []string{"shadow", "surface", "elevation", "flat", "border"},
		Causes: []Cause{
			{
				Name:      "High-risk action rendered on a flat surface",
				Signature: "financial or destructive action without elevation",
				Solution:  "Render high-risk actions on an elevated surface with the profile shadow",
			},
		},
	},
	{
		ID:       "lost-undo",
		Name:     "Lost undo",
		Category: "behavioral",
		Severity: compliance.SeverityWarning,
		SymptomPhrases: []string{
			"cannot undo", "undo disappeared", "archived item gone", "toast vanished",
		},
		Keywords: []string{"undo", "restore", "archive", "toast", "gone"},
		Causes: []Cause{
			{
				Name:      "Soft delete committed before the undo window closes",
				Signature: "server delete fired immediately instead of after the toast timeout",
				Example:   "archive(id); toast('Archived', { action: undo })",
				Solution:  "Defer the commit until the undo window expires and keep the item restorable",
			},
		},
	},
}

// Builtin returns a copy of the curated catalog.
func Builtin() []Pattern {
	out := make([]Pattern, len(builtin))
	for i, p := range builtin {
		out[i] = clonePattern(p)
	}
	return out
}

func clonePattern(p Pattern) Pattern {
	p.SymptomPhrases = append([]string(nil), p.SymptomPhrases...)
	p.Keywords = append([]string(nil), p.Keywords...)
	p.Causes = append([]Cause(nil), p.Causes...)
	return p
}
