package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/suykerbuyk/physics-lens/internal/config"
)

const version = "0.1.0"

// app carries state shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	cfgPath string
	verbose bool

	cfg    config.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "lens: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "lens",
		Short: "physics-lens: classify UI actions and check their interaction physics",
		Long: `physics-lens classifies UI components by the effect of their action
(financial, destructive, soft-delete, standard, local, navigation, query),
checks observed behavior against the expected physics for that effect,
diagnoses symptom descriptions against known failure patterns, and talks to
external lens and anchor validators over a file, SQLite or Redis channel,
on either side of it (validate to ask, respond to answer).

Configuration: ~/.config/physics-lens/config.toml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default: XDG config path)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newAnalyzeCmd(a),
		newClassifyCmd(a),
		newDiagnoseCmd(a),
		newValidateCmd(a),
		newRespondCmd(a),
		newCheckCmd(a),
		newInitCmd(a),
		newVersionCmd(),
		newManCmd(),
	)
	return root
}

func (a *app) setup() error {
	var err error
	if a.cfgPath != "" {
		a.cfg, err = config.LoadFile(a.cfgPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := buildLogger(a.cfg.Log, a.verbose)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

// buildLogger writes to stderr so command output on stdout stays clean.
func buildLogger(lc config.LogConfig, verbose bool) (*zap.Logger, error) {
	var zc zap.Config
	if lc.JSON {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	}
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	level := zapcore.InfoLevel
	if lc.Level != "" {
		parsed, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lens v%s (physics-lens)\n", version)
		},
	}
}
