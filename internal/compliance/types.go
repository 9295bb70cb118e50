package compliance

import "github.com/suykerbuyk/physics-lens/internal/physics"

// Severity ranks an issue by user-facing risk.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single diagnostic finding.
type Issue struct {
	Severity   Severity `json:"severity"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	Location   string   `json:"location,omitempty"`
}

// ObservedBehavioral holds measured behavioral values. Nil fields were not
// measured and are never treated as violations.
type ObservedBehavioral struct {
	Sync         *physics.Sync `json:"sync,omitempty"`
	TimingMs     *int          `json:"timing_ms,omitempty"`
	Confirmation *bool         `json:"confirmation,omitempty"`
}

// ObservedAnimation holds measured animation values.
type ObservedAnimation struct {
	Easing     *string `json:"easing,omitempty"`
	DurationMs *int    `json:"duration_ms,omitempty"`
}

// ObservedMaterial holds measured material values. Radius is informational.
type ObservedMaterial struct {
	Surface *string `json:"surface,omitempty"`
	Shadow  *string `json:"shadow,omitempty"`
	Radius  *string `json:"radius,omitempty"`
}

// Observed is a partial physics measurement across all layers.
type Observed struct {
	Behavioral ObservedBehavioral `json:"behavioral"`
	Animation  ObservedAnimation  `json:"animation"`
	Material   ObservedMaterial   `json:"material"`
}

// LayerResult is the outcome of checking one physics layer.
type LayerResult[T any] struct {
	Observed  *T     `json:"observed,omitempty"`
	Compliant bool   `json:"compliant"`
	Reason    string `json:"reason,omitempty"`
}

// Result holds the three independent layer outcomes.
type Result struct {
	Behavioral LayerResult[ObservedBehavioral] `json:"behavioral"`
	Animation  LayerResult[ObservedAnimation]  `json:"animation"`
	Material   LayerResult[ObservedMaterial]   `json:"material"`
}

// Ptr returns a pointer to v, for building Observed literals.
func Ptr[T any](v T) *T {
	return &v
}
