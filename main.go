package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dhabedank/brdgen/cmd"
	"github.com/dhabedank/brdgen/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var appVersion = "0.1.0"

func main() {
	var (
		verbose bool
		logger  *zap.Logger
		notice  chan *version.Notice
	)

	rootCmd := &cobra.Command{
		Use:   "brdgen",
		Short: "Generate Business and Functional Requirements Documents from project briefs",
		Long: `brdgen classifies a project brief into a business domain, groups its
requirements into EPICs, and renders a Business Requirements Document.
A BRD converts into a Functional Requirements Document with user stories,
functional requirements and validation criteria.`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			cfg.Encoding = "console"
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			cfg.OutputPaths = []string{"stderr"}
			var err error
			if logger, err = cfg.Build(); err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			cmd.SetLogger(logger)

			// Long-running and protocol commands must keep stdout clean.
			switch c.Name() {
			case "mcp", "serve", "watch":
				return nil
			}
			if version.IsFirstRun() {
				version.PrintFirstRunNotice(os.Stderr)
			}
			notice = make(chan *version.Notice, 1)
			go func() {
				notice <- version.NewChecker().Check(c.Context(), appVersion)
			}()
			return nil
		},
		PersistentPostRun: func(c *cobra.Command, args []string) {
			if notice != nil {
				version.PrintNotice(os.Stderr, <-notice)
			}
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cmd.ConfigFile, "config", "", "Config file (default: .brdgen.yaml, then ~/.brdgen.yaml)")

	rootCmd.AddCommand(
		cmd.GenerateCmd,
		cmd.FRDCmd,
		cmd.ClassifyCmd,
		cmd.ValidationCmd,
		cmd.RulesCmd,
		cmd.ServeCmd,
		cmd.MCPCmd,
		cmd.WatchCmd,
		cmd.HistoryCmd,
		cmd.SetupCmd,
	)

	cmd.Version = appVersion
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
