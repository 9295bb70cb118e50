package compliance

import (
	"fmt"
	"strings"

	"github.com/suykerbuyk/physics-lens/internal/physics"
)

// TimingToleranceMs is the allowed deviation, inclusive, for timing and
// duration values.
const TimingToleranceMs = 100

// CheckBehavioral compares observed behavioral values against the profile for
// effect.
func CheckBehavioral(effect physics.Effect, obs ObservedBehavioral) LayerResult[ObservedBehavioral] {
	want := physics.Expected(effect).Behavioral
	var reasons []string

	if obs.Sync != nil && *obs.Sync != want.Sync {
		reasons = append(reasons, fmt.Sprintf("sync should be %s, got %s", want.Sync, *obs.Sync))
	}
	if obs.TimingMs != nil && !withinTolerance(*obs.TimingMs, want.TimingMs) {
		reasons = append(reasons, fmt.Sprintf("timing should be %dms, got %dms", want.TimingMs, *obs.TimingMs))
	}
	if obs.Confirmation != nil && *obs.Confirmation != want.ConfirmationRequired {
		reasons = append(reasons, fmt.Sprintf("confirmation should be %s, got %s",
			requiredLabel(want.ConfirmationRequired), requiredLabel(*obs.Confirmation)))
	}

	return layer(obs, reasons)
}

// CheckAnimation compares observed animation values against the profile for
// effect. Easing is compared by family.
func CheckAnimation(effect physics.Effect, obs ObservedAnimation) LayerResult[ObservedAnimation] {
	want := physics.Expected(effect).Animation
	var reasons []string

	if obs.Easing != nil && !EasingCompatible(*obs.Easing, want.Easing) {
		reasons = append(reasons, fmt.Sprintf("easing should be %s, got %s", want.Easing, *obs.Easing))
	}
	if obs.DurationMs != nil && !withinTolerance(*obs.DurationMs, want.DurationMs) {
		reasons = append(reasons, fmt.Sprintf("duration should be %dms, got %dms", want.DurationMs, *obs.DurationMs))
	}

	return layer(obs, reasons)
}

// CheckMaterial compares observed surface and shadow exactly. Radius never
// affects the outcome.
func CheckMaterial(effect physics.Effect, obs ObservedMaterial) LayerResult[ObservedMaterial] {
	want := physics.Expected(effect).Material
	var reasons []string

	if obs.Surface != nil && *obs.Surface != want.Surface {
		reasons = append(reasons, fmt.Sprintf("surface should be %s, got %s", want.Surface, *obs.Surface))
	}
	if obs.Shadow != nil && *obs.Shadow != want.Shadow {
		reasons = append(reasons, fmt.Sprintf("shadow should be %s, got %s", want.Shadow, *obs.Shadow))
	}

	return layer(obs, reasons)
}

// Check runs all three layers.
func Check(effect physics.Effect, obs Observed) Result {
	return Result{
		Behavioral: CheckBehavioral(effect, obs.Behavioral),
		Animation:  CheckAnimation(effect, obs.Animation),
		Material:   CheckMaterial(effect, obs.Material),
	}
}

// Baseline is the fully compliant result used when nothing was measured.
func Baseline(physics.Effect) Result {
	return Result{
		Behavioral: LayerResult[ObservedBehavioral]{Compliant: true},
		Animation:  LayerResult[ObservedAnimation]{Compliant: true},
		Material:   LayerResult[ObservedMaterial]{Compliant: true},
	}
}

// EasingCompatible reports whether two easing identifiers belong to the same
// family: identical, both springs, or both ease curves.
func EasingCompatible(a, b string) bool {
	if a == b {
		return true
	}
	a, b = strings.ToLower(a), strings.ToLower(b)
	if strings.Contains(a, "spring") && strings.Contains(b, "spring") {
		return true
	}
	return strings.Contains(a, "ease") && strings.Contains(b, "ease")
}

func withinTolerance(got, want int) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	return d <= TimingToleranceMs
}

func requiredLabel(b bool) string {
	if b {
		return "required"
	}
	return "not required"
}

func layer[T any](obs T, reasons []string) LayerResult[T] {
	return LayerResult[T]{
		Observed:  &obs,
		Compliant: len(reasons) == 0,
		Reason:    strings.Join(reasons, "; "),
	}
}
