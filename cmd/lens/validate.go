package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suykerbuyk/physics-lens/internal/ipc"
	"github.com/suykerbuyk/physics-lens/internal/sanitize"
)

var errNotValid = errors.New("validation failed")

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Ask an external validator over the IPC channel",
	}
	cmd.AddCommand(newValidateLensCmd(a), newValidateAnchorCmd(a))
	return cmd
}

func newValidateLensCmd(a *app) *cobra.Command {
	var (
		contextPath string
		zone        string
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:     "lens",
		Short:   "Validate a lens context with the lens responder",
		Example: `  lens validate lens --context ctx.json --zone critical`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var lensCtx any
			if err := readJSON(contextPath, &lensCtx); err != nil {
				return fmt.Errorf("read context: %w", err)
			}

			reg := prometheus.NewRegistry()
			ch, closeFn, err := a.channel(reg)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := ch.ValidateLens(cmd.Context(), ipc.LensRequest{
				Context: redactValue(lensCtx),
				Zone:    zone,
			})
			if showMetrics {
				defer writeMetrics(cmd.ErrOrStderr(), reg)
			}
			if err != nil {
				return explain(a, err)
			}

			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Valid {
				return errNotValid
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contextPath, "context", "", "JSON file holding the lens context")
	cmd.Flags().StringVar(&zone, "zone", "", "zone to validate against")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print request metrics to stderr")
	cmd.MarkFlagRequired("context")
	return cmd
}

func newValidateAnchorCmd(a *app) *cobra.Command {
	var (
		statement   string
		contextPath string
		zone        string
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "anchor",
		Short: "Ground a statement or lens context with the anchor responder",
		Example: `  lens validate anchor --statement "withdraw uses pessimistic sync" --zone critical
  lens validate anchor --context ctx.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.AnchorRequest{
				Statement: sanitize.Redact(statement),
				Zone:      zone,
			}
			if contextPath != "" {
				var lensCtx any
				if err := readJSON(contextPath, &lensCtx); err != nil {
					return fmt.Errorf("read context: %w", err)
				}
				req.LensContext = redactValue(lensCtx)
			}

			reg := prometheus.NewRegistry()
			ch, closeFn, err := a.channel(reg)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := ch.ValidateAnchor(cmd.Context(), req)
			if showMetrics {
				defer writeMetrics(cmd.ErrOrStderr(), reg)
			}
			if err != nil {
				return explain(a, err)
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&statement, "statement", "", "statement to ground")
	cmd.Flags().StringVar(&contextPath, "context", "", "JSON file holding a lens context")
	cmd.Flags().StringVar(&zone, "zone", "", "zone the statement cites")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print request metrics to stderr")
	return cmd
}

// explain adds a hint for the errors a user can act on.
func explain(a *app, err error) error {
	var remote *ipc.RemoteError
	switch {
	case errors.Is(err, ipc.ErrTimeout):
		a.logger.Warn("no responder answered", zap.Duration("timeout", a.cfg.Timeout()))
		return fmt.Errorf("%w (is a validator watching %s?)", err, a.cfg.IPC.Transport)
	case errors.As(err, &remote):
		return fmt.Errorf("validator rejected the request: %s", remote.Message)
	default:
		return err
	}
}

// redactValue masks secrets in every string of a decoded JSON value.
func redactValue(v any) any {
	switch x := v.(type) {
	case string:
		return sanitize.Redact(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = redactValue(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = redactValue(val)
		}
		return out
	default:
		return x
	}
}

// writeMetrics prints the gathered families in the Prometheus text format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		fmt.Fprintf(w, "gather metrics: %v\n", err)
		return
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			fmt.Fprintf(w, "write metrics: %v\n", err)
			return
		}
	}
}
