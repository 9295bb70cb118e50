package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suykerbuyk/physics-lens/internal/compliance"
	"github.com/suykerbuyk/physics-lens/internal/diagnostics"
	"github.com/suykerbuyk/physics-lens/internal/patterns"
	"github.com/suykerbuyk/physics-lens/internal/physics"
	"github.com/suykerbuyk/physics-lens/internal/render"
)

// service builds a diagnostics service with any configured custom patterns.
func (a *app) service() (*diagnostics.Service, error) {
	if a.cfg.Patterns.File == "" {
		return diagnostics.New(), nil
	}
	custom, err := patterns.LoadFile(a.cfg.Patterns.File)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("loaded custom patterns", zap.String("file", a.cfg.Patterns.File), zap.Int("count", len(custom)))
	return diagnostics.New(diagnostics.WithPatterns(custom...)), nil
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		sourcePath   string
		observedPath string
		types        []string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "analyze [component...]",
		Short: "Classify components and report expected physics and issues",
		Example: `  lens analyze WithdrawButton DeleteProject
  lens analyze --source src/WithdrawForm.tsx --format markdown
  lens analyze ArchiveRow --type TokenAmount --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" && format != "markdown" {
				return fmt.Errorf("unknown format %q (want text, json or markdown)", format)
			}

			var source string
			if sourcePath != "" {
				data, err := os.ReadFile(sourcePath)
				if err != nil {
					return fmt.Errorf("read source: %w", err)
				}
				source = string(data)
				if len(args) == 0 {
					args = []string{componentName(sourcePath)}
				}
			}
			if len(args) == 0 {
				return fmt.Errorf("give at least one component name or --source")
			}

			var observed *compliance.Observed
			if observedPath != "" {
				observed = &compliance.Observed{}
				if err := readJSON(observedPath, observed); err != nil {
					return fmt.Errorf("read observed physics: %w", err)
				}
			}

			svc, err := a.service()
			if err != nil {
				return err
			}

			reqs := make([]diagnostics.Request, len(args))
			for i, name := range args {
				reqs[i] = diagnostics.Request{Component: name, Source: source, Types: types, Observed: observed}
			}

			results, err := svc.AnalyzeAll(cmd.Context(), reqs, runtime.NumCPU())
			if err != nil {
				return err
			}
			a.logger.Debug("analyzed components", zap.Int("count", len(results)))

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return writeJSON(out, results)
			case "markdown":
				_, err := io.WriteString(out, render.Report(render.ReportData{
					Date:    time.Now(),
					Source:  sourcePath,
					Results: results,
				}))
				return err
			default:
				for i, r := range results {
					if i > 0 {
						fmt.Fprintln(out)
					}
					io.WriteString(out, render.Text(r))
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "component source file to scan")
	cmd.Flags().StringVar(&observedPath, "observed", "", "JSON file of measured physics to check")
	cmd.Flags().StringArrayVar(&types, "type", nil, "declared type name (repeatable)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or markdown")
	return cmd
}

func newClassifyCmd(a *app) *cobra.Command {
	var (
		types  []string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "classify [signal...]",
		Short: "Classify raw signals and print the expected physics",
		Example: `  lens classify withdraw button
  lens classify save --type Balance`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(types) == 0 {
				return fmt.Errorf("give at least one signal or --type")
			}

			effect := physics.Classify(args, types)
			p := physics.Expected(effect)
			out := cmd.OutOrStdout()

			if asJSON {
				return writeJSON(out, struct {
					Effect  physics.Effect  `json:"effect"`
					Physics physics.Physics `json:"physics"`
				}{effect, p})
			}

			fmt.Fprintf(out, "%s\n", effect)
			fmt.Fprintf(out, "  sync          %s\n", p.Behavioral.Sync)
			fmt.Fprintf(out, "  timing        %dms\n", p.Behavioral.TimingMs)
			fmt.Fprintf(out, "  confirmation  %t\n", p.Behavioral.ConfirmationRequired)
			fmt.Fprintf(out, "  easing        %s %dms\n", p.Animation.Easing, p.Animation.DurationMs)
			fmt.Fprintf(out, "  material      %s/%s\n", p.Material.Surface, p.Material.Shadow)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&types, "type", nil, "declared type name (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newDiagnoseCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "diagnose <symptom words>",
		Short:   "Match a symptom description against known failure patterns",
		Example: `  lens diagnose "users click pay twice and get charged twice"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			symptom := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if asJSON {
				matches := svc.Match(symptom)
				if matches == nil {
					matches = []patterns.MatchResult{}
				}
				return writeJSON(out, matches)
			}

			_, err = io.WriteString(out, svc.Diagnose(symptom)+"\n")
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print every match as JSON")
	return cmd
}

// componentName turns src/components/WithdrawForm.tsx into WithdrawForm.
func componentName(path string) string {
	base := filepath.Base(path)
	for ext := filepath.Ext(base); ext != ""; ext = filepath.Ext(base) {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
