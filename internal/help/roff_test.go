package help

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "lens", Short: "classify UI actions", Long: "First paragraph.\n\n.dotted line"}
	root.PersistentFlags().BoolP("verbose", "v", false, "debug logging")

	validate := &cobra.Command{Use: "validate", Short: "ask a validator"}
	lens := &cobra.Command{
		Use:     "lens",
		Short:   "validate a lens context",
		Example: "  lens validate lens --context ctx.json",
		RunE:    func(*cobra.Command, []string) error { return nil },
	}
	lens.Flags().String("context", "", "JSON `file` holding the context")
	validate.AddCommand(lens)

	hidden := &cobra.Command{Use: "man", Hidden: true, Run: func(*cobra.Command, []string) {}}
	help := &cobra.Command{Use: "help", Run: func(*cobra.Command, []string) {}}

	root.AddCommand(validate, hidden, help)
	return root
}

func find(t *testing.T, root *cobra.Command, args ...string) *cobra.Command {
	t.Helper()
	c, _, err := root.Find(args)
	if err != nil {
		t.Fatalf("find %v: %v", args, err)
	}
	return c
}

func TestManName(t *testing.T) {
	root := testTree()
	tests := []struct {
		args []string
		want string
	}{
		{nil, "lens"},
		{[]string{"validate"}, "lens-validate"},
		{[]string{"validate", "lens"}, "lens-validate-lens"},
	}
	for _, tt := range tests {
		if got := ManName(find(t, root, tt.args...)); got != tt.want {
			t.Errorf("ManName(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestPages_SkipsHiddenAndHelp(t *testing.T) {
	var names []string
	for _, c := range Pages(testTree()) {
		names = append(names, ManName(c))
	}
	got := strings.Join(names, ",")
	if got != "lens,lens-validate,lens-validate-lens" {
		t.Errorf("pages = %s", got)
	}
}

func TestEscapeRoff(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`a\b`, `a\\b`},
		{".start", `\&.start`},
		{"one\n.two", "one\n\\&.two"},
		{"--flag", `\-\-flag`},
	}
	for _, tt := range tests {
		if got := escapeRoff(tt.in); got != tt.want {
			t.Errorf("escapeRoff(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRoff_Leaf(t *testing.T) {
	root := testTree()
	got := FormatRoff(find(t, root, "validate", "lens"), Meta{Version: "v1", Date: "2026-01-02"})

	for _, want := range []string{
		`.TH LENS-VALIDATE-LENS 1 "2026-01-02" "lens v1" "physics-lens Manual"`,
		".SH NAME\nlens-validate-lens \\- validate a lens context\n",
		".SH OPTIONS\n",
		".B \\-\\-context file\nJSON file holding the context\n",
		".SH GLOBAL OPTIONS\n",
		".B \\-v, \\-\\-verbose\n",
		".SH EXAMPLES\n.nf\nlens validate lens \\-\\-context ctx.json\n.fi\n",
		".SH SEE ALSO\n.BR lens\\-validate (1)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, ".SH COMMANDS") {
		t.Error("leaf page should not list commands")
	}
}

func TestFormatRoff_Root(t *testing.T) {
	got := FormatRoff(testTree(), Meta{Version: "v1", Date: "2026-01-02"})

	for _, want := range []string{
		".SH DESCRIPTION\nFirst paragraph.\n.PP\n\\&.dotted line\n",
		".SH COMMANDS\n.TP\n.B \"validate\"\nask a validator\n",
		".SH CONFIGURATION\n",
		".SH SEE ALSO\n.BR lens\\-validate (1)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, `"man"`) {
		t.Error("hidden command listed")
	}
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "man")
	paths, err := WriteAll(dir, testTree(), Meta{Version: "v1"})
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("wrote %d pages, want 3", len(paths))
	}
	data, err := os.ReadFile(filepath.Join(dir, "lens-validate-lens.1"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), ".TH LENS-VALIDATE-LENS 1 ") {
		t.Errorf("unexpected header: %.40s", data)
	}
}
