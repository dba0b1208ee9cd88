package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robertmuil/pythinfer/internal/config"
	"github.com/robertmuil/pythinfer/internal/export"
	"github.com/robertmuil/pythinfer/internal/pipeline"
	"github.com/robertmuil/pythinfer/internal/rdffilter"
	"github.com/robertmuil/pythinfer/internal/watch"
	"github.com/robertmuil/pythinfer/pkg/rdf/rdfio"
)

// NewInferCommand creates the infer command.
func NewInferCommand() *cobra.Command {
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Run the full inference pipeline and export all artifacts",
		Long: `Merge the project's inputs, run OWL-RL inference and heuristics to a
fixed point, filter the result, and export the merged, combined_full,
combined_internal and combined_wanted artifacts.

Exits with code 3 when the iteration bound was exceeded; the partial closure
is still exported.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ensureProject(cmd)
			if err != nil {
				return err
			}
			if watchMode {
				inputs := append(append([]string{}, cfg.Data.Reference...), cfg.Data.Local...)
				return watch.Run(cmd.Context(), inputs, getLogger(cmd), func() error {
					err := runInfer(cmd, cfg)
					if ExitCode(err) == ExitBoundExceeded {
						return nil
					}
					return err
				})
			}
			return runInfer(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&watchMode, "watch", false,
		"Re-run the pipeline whenever an input file changes")
	return cmd
}

func runInfer(cmd *cobra.Command, cfg *config.Config) error {
	logger := getLogger(cmd)
	result, err := pipeline.Run(cmd.Context(), pipelineOptions(cfg, logger))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return withCode(ExitFailure, fmt.Errorf("cancelled, nothing exported"))
		}
		return withCode(ExitFailure, err)
	}

	if err := exportAll(cmd, cfg, result); err != nil {
		return withCode(ExitFailure, err)
	}

	if result.BoundExceeded {
		return withCode(ExitBoundExceeded, fmt.Errorf(
			"did not converge within %d rounds (last delta %d triples)",
			result.Rounds, result.FinalDelta))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Converged in %d rounds\n", result.Rounds)
	return nil
}

func exportAll(cmd *cobra.Command, cfg *config.Config, result *pipeline.Result) error {
	logger := getLogger(cmd)
	formats, err := extraFormats(cfg)
	if err != nil {
		return err
	}
	exp := export.New(cfg.Output.Folder, formats, logger)
	chain := rdffilter.NewChain(logger)

	for _, artifact := range pipeline.Artifacts() {
		quads, err := result.Quads(artifact, chain)
		if err != nil {
			return err
		}
		if _, err := exp.Export(cmd.Context(), string(artifact), quads); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-18s %6d triples\n", artifact, len(quads))
	}
	return nil
}

func extraFormats(cfg *config.Config) ([]rdfio.Format, error) {
	var out []rdfio.Format
	for _, name := range cfg.Output.ExtraFormats {
		f, err := rdfio.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
