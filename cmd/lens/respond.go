package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suykerbuyk/physics-lens/internal/ipc"
)

// responder is implemented by ipc.FileResponder and ipc.StoreResponder.
type responder interface {
	Handle(reqType string, h ipc.Handler)
	Run(ctx context.Context) error
}

func newRespondCmd(a *app) *cobra.Command {
	var (
		tag     string
		types   []string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "respond [flags] -- <validator> [args...]",
		Short: "Serve IPC requests by running a validator command for each one",
		Long: `respond watches the configured transport for requests addressed to a
responder tag and runs the validator command once per request.

The request payload is written to the command's stdin. LENS_REQUEST_ID,
LENS_REQUEST_TYPE and LENS_RESPONDER_TAG are set in its environment. A zero
exit with JSON on stdout becomes a success response; a non-zero exit becomes
an error response carrying the last line of stderr.`,
		Example: `  lens respond --tag lens -- ./lens-validator --strict
  lens respond --tag anchor --timeout 10s -- python3 anchor.py`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(types) == 0 {
				t, ok := defaultTypeForTag(tag)
				if !ok {
					return fmt.Errorf("no default request type for tag %q (use --type)", tag)
				}
				types = []string{t}
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			t, closeFn, err := openTransport(a.cfg)
			if err != nil {
				return fmt.Errorf("open %s transport: %w", a.cfg.IPC.Transport, err)
			}
			defer closeFn()

			r, err := newResponder(t, tag,
				ipc.WithRescanInterval(a.cfg.PollInterval()),
				ipc.WithResponderLogger(a.logger.Named("respond")),
			)
			if err != nil {
				return err
			}

			h := execHandler(args, tag, timeout)
			for _, typ := range types {
				r.Handle(typ, h)
			}

			a.logger.Info("serving requests",
				zap.String("transport", a.cfg.IPC.Transport),
				zap.String("tag", tag),
				zap.Strings("types", types),
				zap.String("validator", args[0]),
			)
			return r.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&tag, "tag", ipc.TagLens, "responder tag to answer as (lens or anchor)")
	cmd.Flags().StringArrayVar(&types, "type", nil, "request type to serve (repeatable; default from --tag)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request limit for the validator command")
	return cmd
}

func defaultTypeForTag(tag string) (string, bool) {
	switch tag {
	case ipc.TagLens:
		return ipc.TypeLensValidate, true
	case ipc.TagAnchor:
		return ipc.TypeAnchorValidate, true
	}
	return "", false
}

func newResponder(t ipc.Transport, tag string, opts ...ipc.ResponderOption) (responder, error) {
	switch t := t.(type) {
	case *ipc.FileTransport:
		return ipc.NewFileResponder(t, tag, opts...), nil
	case ipc.RequestStore:
		return ipc.NewStoreResponder(t, tag, opts...), nil
	default:
		return nil, fmt.Errorf("transport %T cannot serve requests", t)
	}
}

// execHandler runs argv once per request with the payload on stdin.
func execHandler(argv []string, tag string, timeout time.Duration) ipc.Handler {
	return func(ctx context.Context, req ipc.Request) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		c := exec.CommandContext(ctx, argv[0], argv[1:]...)
		c.Env = append(os.Environ(),
			"LENS_REQUEST_ID="+req.ID,
			"LENS_REQUEST_TYPE="+req.Type,
			"LENS_RESPONDER_TAG="+tag,
		)
		c.WaitDelay = time.Second
		c.Stdin = bytes.NewReader(req.Payload)
		var stdout, stderr bytes.Buffer
		c.Stdout = &stdout
		c.Stderr = &stderr

		if err := c.Run(); err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("validator timed out after %s", timeout)
			}
			if msg := lastLine(stderr.String()); msg != "" {
				return nil, errors.New(msg)
			}
			return nil, fmt.Errorf("run validator: %w", err)
		}

		out := bytes.TrimSpace(stdout.Bytes())
		if !json.Valid(out) {
			return nil, fmt.Errorf("validator output is not JSON: %.80q", out)
		}
		return json.RawMessage(out), nil
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
