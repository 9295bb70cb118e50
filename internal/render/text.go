package render

import (
	"fmt"
	"strings"

	"github.com/suykerbuyk/physics-lens/internal/diagnostics"
	"github.com/suykerbuyk/physics-lens/internal/physics"
)

// Text renders one result for a terminal.
func Text(r *diagnostics.Result) string {
	var b strings.Builder
	p := physics.Expected(r.Effect)

	fmt.Fprintf(&b, "%s: %s\n", r.Component, r.Effect)
	fmt.Fprintf(&b, "  behavioral  %s\n", describeBehavioral(p.Behavioral))
	fmt.Fprintf(&b, "  animation   %s %dms\n", p.Animation.Easing, p.Animation.DurationMs)
	fmt.Fprintf(&b, "  material    %s/%s\n", p.Material.Surface, p.Material.Shadow)
	fmt.Fprintf(&b, "  compliant   %s\n", yesNo(r.Compliant()))

	for _, reason := range layerReasons(r.Compliance) {
		fmt.Fprintf(&b, "  mismatch    %s\n", reason)
	}

	if len(r.Issues) > 0 {
		b.WriteString("  issues\n")
		for _, is := range r.Issues {
			loc := ""
			if is.Location != "" {
				loc = " [" + is.Location + "]"
			}
			fmt.Fprintf(&b, "    %-7s %s%s: %s\n", is.Severity, is.Code, loc, is.Message)
		}
	}

	if len(r.Suggestions) > 0 {
		b.WriteString("  suggestions\n")
		for _, s := range r.Suggestions {
			fmt.Fprintf(&b, "    - %s\n", s)
		}
	}

	return b.String()
}
