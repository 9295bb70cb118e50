package patterns

import "github.com/suykerbuyk/physics-lens/internal/compliance"

// Cause is one ranked explanation for a pattern.
type Cause struct {
	Name      string `json:"name" yaml:"name"`
	Signature string `json:"signature" yaml:"signature"` // what the cause looks like in code
	Example   string `json:"example,omitempty" yaml:"example,omitempty"`
	Solution  string `json:"solution" yaml:"solution"`
}

// Pattern is a catalogued known issue. Causes are ordered most likely first.
type Pattern struct {
	ID             string              `json:"id" yaml:"id"`
	Name           string              `json:"name" yaml:"name"`
	Category       string              `json:"category" yaml:"category"`
	Severity       compliance.Severity `json:"severity" yaml:"severity"`
	SymptomPhrases []string            `json:"symptom_phrases" yaml:"symptoms"`
	Keywords       []string            `json:"keywords" yaml:"keywords"`
	Causes         []Cause             `json:"causes" yaml:"causes"`
}

// MatchResult scores one pattern against symptom text.
type MatchResult struct {
	Pattern       Pattern `json:"pattern"`
	SelectedCause Cause   `json:"selected_cause"`
	Confidence    float64 `json:"confidence"`
}
