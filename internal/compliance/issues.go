package compliance

// ToIssues emits one issue per non-compliant layer that carries a reason.
// Severity falls with user-facing risk: behavioral, animation, material.
func ToIssues(r Result) []Issue {
	var issues []Issue

	if !r.Behavioral.Compliant && r.Behavioral.Reason != "" {
		issues = append(issues, Issue{
			Severity:   SeverityError,
			Code:       "behavioral-mismatch",
			Message:    "Behavioral physics mismatch: " + r.Behavioral.Reason,
			Suggestion: "Match the sync strategy, timing and confirmation of the effect profile",
		})
	}
	if !r.Animation.Compliant && r.Animation.Reason != "" {
		issues = append(issues, Issue{
			Severity:   SeverityWarning,
			Code:       "animation-mismatch",
			Message:    "Animation physics mismatch: " + r.Animation.Reason,
			Suggestion: "Use the easing family and duration of the effect profile",
		})
	}
	if !r.Material.Compliant && r.Material.Reason != "" {
		issues = append(issues, Issue{
			Severity:   SeverityInfo,
			Code:       "material-mismatch",
			Message:    "Material physics mismatch: " + r.Material.Reason,
			Suggestion: "Render the action on the surface and shadow of the effect profile",
		})
	}

	return issues
}

// IsFullyCompliant is the AND of the three layer flags.
func IsFullyCompliant(r Result) bool {
	return r.Behavioral.Compliant && r.Animation.Compliant && r.Material.Compliant
}
