package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/suykerbuyk/physics-lens/internal/compliance"
	"github.com/suykerbuyk/physics-lens/internal/diagnostics"
	"github.com/suykerbuyk/physics-lens/internal/physics"
)

// ReportData holds everything needed to render a physics report.
type ReportData struct {
	Date    time.Time
	Source  string // file the components were read from, if any
	Results []*diagnostics.Result
}

// Report renders a markdown physics report with YAML frontmatter.
func Report(d ReportData) string {
	var b strings.Builder

	compliant := 0
	for _, r := range d.Results {
		if r.Compliant() && len(r.Issues) == 0 {
			compliant++
		}
	}

	// Frontmatter
	b.WriteString("---\n")
	b.WriteString(fmt.Sprintf("date: %s\n", d.Date.Format("2006-01-02")))
	b.WriteString("type: physics-report\n")
	if d.Source != "" {
		b.WriteString(fmt.Sprintf("source: \"%s\"\n", escapeYAML(d.Source)))
	}
	b.WriteString(fmt.Sprintf("components: %d\n", len(d.Results)))
	b.WriteString(fmt.Sprintf("clean: %d\n", compliant))
	b.WriteString("tags: [physics-lens]\n")
	b.WriteString("---\n\n")

	b.WriteString("# Physics report\n\n")

	if len(d.Results) == 0 {
		b.WriteString("_No components analyzed._\n")
		return b.String()
	}

	b.WriteString("| Component | Effect | Sync | Timing | Confirm | Issues |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range d.Results {
		p := physics.Expected(r.Effect)
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %dms | %s | %d |\n",
			escapeTable(r.Component), r.Effect, p.Behavioral.Sync, p.Behavioral.TimingMs,
			yesNo(p.Behavioral.ConfirmationRequired), len(r.Issues)))
	}

	for _, r := range d.Results {
		b.WriteString("\n")
		b.WriteString(Component(r))
	}

	return b.String()
}

// Component renders one result as a markdown section.
func Component(r *diagnostics.Result) string {
	var b strings.Builder
	p := physics.Expected(r.Effect)

	b.WriteString(fmt.Sprintf("## %s\n\n", r.Component))
	b.WriteString(fmt.Sprintf("- **Effect**: %s\n", r.Effect))
	b.WriteString(fmt.Sprintf("- **Behavioral**: %s\n", describeBehavioral(p.Behavioral)))
	b.WriteString(fmt.Sprintf("- **Animation**: %s %dms\n", p.Animation.Easing, p.Animation.DurationMs))
	b.WriteString(fmt.Sprintf("- **Material**: %s surface, %s shadow\n", p.Material.Surface, p.Material.Shadow))
	b.WriteString(fmt.Sprintf("- **Compliant**: %s\n", yesNo(r.Compliant())))

	if reasons := layerReasons(r.Compliance); len(reasons) > 0 {
		b.WriteString("\n### Mismatches\n\n")
		for _, reason := range reasons {
			b.WriteString(fmt.Sprintf("- %s\n", reason))
		}
	}

	if len(r.Issues) > 0 {
		b.WriteString("\n### Issues\n\n")
		for _, is := range r.Issues {
			b.WriteString(fmt.Sprintf("- **%s** `%s`", is.Severity, is.Code))
			if is.Location != "" {
				b.WriteString(fmt.Sprintf(" (%s)", is.Location))
			}
			b.WriteString(fmt.Sprintf(": %s\n", is.Message))
			if is.Suggestion != "" {
				b.WriteString(fmt.Sprintf("  - %s\n", is.Suggestion))
			}
		}
	}

	if len(r.Suggestions) > 0 {
		b.WriteString("\n### Suggestions\n\n")
		for _, s := range r.Suggestions {
			b.WriteString(fmt.Sprintf("- %s\n", s))
		}
	}

	return b.String()
}

func describeBehavioral(bh physics.Behavioral) string {
	s := fmt.Sprintf("%s, %dms", bh.Sync, bh.TimingMs)
	if bh.ConfirmationRequired {
		s += ", confirmation required"
	}
	return s
}

func layerReasons(res compliance.Result) []string {
	var out []string
	if res.Behavioral.Reason != "" {
		out = append(out, "behavioral: "+res.Behavioral.Reason)
	}
	if res.Animation.Reason != "" {
		out = append(out, "animation: "+res.Animation.Reason)
	}
	if res.Material.Reason != "" {
		out = append(out, "material: "+res.Material.Reason)
	}
	return out
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func escapeYAML(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}

func escapeTable(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
