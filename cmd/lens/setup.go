package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suykerbuyk/physics-lens/internal/check"
	"github.com/suykerbuyk/physics-lens/internal/config"
	"github.com/suykerbuyk/physics-lens/internal/help"
	"github.com/suykerbuyk/physics-lens/internal/ipc"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report on config, transport and pattern health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := check.Run(cmd.Context(), a.cfg)
			io.WriteString(cmd.OutOrStdout(), report.Format())
			if report.HasFailures() {
				return fmt.Errorf("check found failures")
			}
			return nil
		},
	}
}

func newInitCmd(a *app) *cobra.Command {
	var ipcDir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config and create the IPC directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, action, err := config.WriteDefault(ipcDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config %s: %s\n", action, config.CompressHome(path))

			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			if cfg.IPC.Transport != config.TransportFile {
				return nil
			}
			t, err := ipc.NewFileTransport(cfg.IPC.Dir, ipc.WithResponderTags(cfg.IPC.ResponderTags...))
			if err != nil {
				return err
			}
			a.logger.Debug("ipc directory ready", zap.String("dir", t.Dir()))
			fmt.Fprintf(out, "ipc dir: %s\n", config.CompressHome(t.Dir()))
			return nil
		},
	}

	cmd.Flags().StringVar(&ipcDir, "ipc-dir", "", "file transport directory (default ~/.local/state/physics-lens/ipc)")
	return cmd
}

func newManCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:    "man [dir]",
		Short:  "Generate roff man pages for every command",
		Hidden: true,
		Args:   cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "man"
			if len(args) > 0 {
				dir = args[0]
			}
			paths, err := help.WriteAll(dir, cmd.Root(), help.Meta{Version: "v" + version, Date: date})
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "page date YYYY-MM-DD for reproducible output (default today)")
	return cmd
}
