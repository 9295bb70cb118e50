package patterns

import (
	"fmt"
	"strings"
)

// NoMatchMessage is returned by Diagnose when nothing clears the threshold.
const NoMatchMessage = "No known pattern matches these symptoms.\n" +
	"Describe what the user sees, e.g. \"balance jumps back after withdraw\" or \"deleted without asking\".\n"

// Diagnose explains the most likely pattern for symptom.
func (m *Matcher) Diagnose(symptom string) string {
	results := m.Match(symptom)
	if len(results) == 0 {
		return NoMatchMessage
	}
	return Format(results[0])
}

// Format renders one match for terminal output.
func Format(r MatchResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Diagnosis: %s (%s)\n", r.Pattern.Name, r.Pattern.ID))
	b.WriteString(strings.Repeat("=", 40) + "\n\n")
	b.WriteString(fmt.Sprintf("  Confidence     %.0f%%\n", r.Confidence*100))
	b.WriteString(fmt.Sprintf("  Category       %s\n", r.Pattern.Category))
	b.WriteString(fmt.Sprintf("  Severity       %s\n\n", r.Pattern.Severity))

	c := r.SelectedCause
	b.WriteString("Most likely cause\n")
	b.WriteString(fmt.Sprintf("  %s\n", c.Name))
	if c.Signature != "" {
		b.WriteString(fmt.Sprintf("  Looks like: %s\n", c.Signature))
	}
	if c.Example != "" {
		b.WriteString("\nExample\n")
		b.WriteString(fmt.Sprintf("  %s\n", c.Example))
	}
	b.WriteString("\nSolution\n")
	b.WriteString(fmt.Sprintf("  %s\n", c.Solution))

	return b.String()
}
