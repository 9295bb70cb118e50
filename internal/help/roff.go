package help

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Meta is the man page header information shared by every page.
type Meta struct {
	Version string
	Date    string // YYYY-MM-DD; today when empty
}

// ManName returns the man page name: "lens" for the root, "lens-validate-lens"
// for nested commands.
func ManName(cmd *cobra.Command) string {
	return strings.ReplaceAll(cmd.CommandPath(), " ", "-")
}

// Pages returns root and every documented descendant, depth first.
// Hidden commands and cobra's help and completion commands are skipped.
func Pages(root *cobra.Command) []*cobra.Command {
	out := []*cobra.Command{root}
	for _, c := range root.Commands() {
		if !documented(c) {
			continue
		}
		out = append(out, Pages(c)...)
	}
	return out
}

// FormatRoff renders one command as a roff-formatted man page (.1).
func FormatRoff(cmd *cobra.Command, m Meta) string {
	if m.Date == "" {
		m.Date = time.Now().Format("2006-01-02")
	}
	root := cmd.Root()

	var b strings.Builder

	// .TH header
	fmt.Fprintf(&b, ".TH %s 1 %q %q %q\n",
		strings.ToUpper(ManName(cmd)), m.Date, root.Name()+" "+m.Version, "physics-lens Manual")

	b.WriteString(".SH NAME\n")
	fmt.Fprintf(&b, "%s \\- %s\n", ManName(cmd), escapeRoff(cmd.Short))

	b.WriteString(".SH SYNOPSIS\n")
	b.WriteString(".B " + escapeRoff(cmd.UseLine()) + "\n")

	if cmd.Long != "" {
		b.WriteString(".SH DESCRIPTION\n")
		writeRoffParagraphs(&b, cmd.Long)
	}

	var subs []*cobra.Command
	for _, c := range cmd.Commands() {
		if documented(c) {
			subs = append(subs, c)
		}
	}
	if len(subs) > 0 {
		b.WriteString(".SH COMMANDS\n")
		for _, s := range subs {
			fmt.Fprintf(&b, ".TP\n.B \"%s\"\n%s\n", escapeRoff(s.Name()), escapeRoff(s.Short))
		}
	}

	if flags := cmd.NonInheritedFlags(); flags.HasAvailableFlags() {
		b.WriteString(".SH OPTIONS\n")
		writeRoffFlags(&b, flags)
	}
	if flags := cmd.InheritedFlags(); flags.HasAvailableFlags() {
		b.WriteString(".SH GLOBAL OPTIONS\n")
		writeRoffFlags(&b, flags)
	}

	if cmd.Example != "" {
		b.WriteString(".SH EXAMPLES\n")
		b.WriteString(".nf\n")
		for _, line := range strings.Split(cmd.Example, "\n") {
			b.WriteString(escapeRoff(strings.TrimSpace(line)) + "\n")
		}
		b.WriteString(".fi\n")
	}

	if cmd == root {
		b.WriteString(".SH CONFIGURATION\n")
		b.WriteString("Configuration file: ~/.config/physics\\-lens/config.toml\n")
	}

	var refs []string
	if cmd.HasParent() {
		refs = append(refs, formatManRef(ManName(cmd.Parent())+"(1)"))
	}
	for _, s := range subs {
		refs = append(refs, formatManRef(ManName(s)+"(1)"))
	}
	if len(refs) > 0 {
		b.WriteString(".SH SEE ALSO\n")
		b.WriteString(strings.Join(refs, ",\n") + "\n")
	}

	return b.String()
}

// WriteAll renders every page under root into dir and returns the written
// paths.
func WriteAll(dir string, root *cobra.Command, m Meta) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create man dir: %w", err)
	}

	var paths []string
	for _, cmd := range Pages(root) {
		path := filepath.Join(dir, ManName(cmd)+".1")
		if err := os.WriteFile(path, []byte(FormatRoff(cmd, m)), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func documented(c *cobra.Command) bool {
	if c.Hidden || c.Deprecated != "" {
		return false
	}
	switch c.Name() {
	case "help", "completion":
		return false
	}
	return true
}

func writeRoffFlags(b *strings.Builder, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := "\\-\\-" + escapeRoff(f.Name)
		if f.Shorthand != "" {
			name = "\\-" + escapeRoff(f.Shorthand) + ", " + name
		}
		varname, usage := pflag.UnquoteUsage(f)
		if varname != "" {
			name += " " + escapeRoff(varname)
		}
		fmt.Fprintf(b, ".TP\n.B %s\n%s\n", name, escapeRoff(usage))
	})
}

// escapeRoff escapes characters that have special meaning in roff:
//   - backslashes → \\
//   - leading dots → \&.
//   - bare hyphens → \-  (for proper rendering of dashes)
func escapeRoff(s string) string {
	// Escape backslashes first
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "\n.", "\n\\&.")
	if strings.HasPrefix(s, ".") {
		s = "\\&" + s
	}
	s = strings.ReplaceAll(s, "-", "\\-")
	return s
}

// writeRoffParagraphs writes multi-line description text as roff paragraphs.
// Blank lines in the input become .PP paragraph breaks.
func writeRoffParagraphs(b *strings.Builder, text string) {
	lines := strings.Split(text, "\n")
	prevBlank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if !prevBlank {
				b.WriteString(".PP\n")
			}
			prevBlank = true
			continue
		}
		prevBlank = false
		b.WriteString(escapeRoff(line) + "\n")
	}
}

// formatManRef formats a "name(section)" reference with bold name.
func formatManRef(ref string) string {
	// "lens-analyze(1)" → ".BR lens\-analyze (1)"
	if i := strings.Index(ref, "("); i >= 0 {
		return fmt.Sprintf(".BR %s %s", escapeRoff(ref[:i]), ref[i:])
	}
	return ".B " + escapeRoff(ref)
}
