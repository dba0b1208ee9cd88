// Package cli provides the pythinfer command-line interface.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/robertmuil/pythinfer/internal/cli/commands"
	"github.com/robertmuil/pythinfer/internal/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var cfgFile string

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pythinfer",
		Short: "pythinfer - RDF merge and inference pipeline",
		Long: `pythinfer merges a project's RDF files into a provenance-preserving
quad store, drives OWL-RL and user-specified inference to a fixed point, and
exports the original assertions plus the non-banal entailments.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			ctx := commands.WithConfig(cmd.Context(), cfg)
			ctx = commands.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"project config file (default: discovered pythinfer.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("no-create", false,
		"Do not auto-create a project config when none is found")
	rootCmd.PersistentFlags().Int("iteration-bound", 0,
		"Override the fixed-point iteration bound")

	rootCmd.AddCommand(commands.NewCreateCommand())
	rootCmd.AddCommand(commands.NewMergeCommand())
	rootCmd.AddCommand(commands.NewInferCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())

	return rootCmd
}

// Execute runs the root command and maps errors to exit codes.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		code := commands.ExitCode(err)
		if msg := err.Error(); msg != "" {
			rootCmd.PrintErrln("Error:", msg)
		}
		os.Exit(code)
	}
}
