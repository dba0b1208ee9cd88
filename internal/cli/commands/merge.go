package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robertmuil/pythinfer/internal/export"
	"github.com/robertmuil/pythinfer/internal/pipeline"
	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// NewMergeCommand creates the merge command.
func NewMergeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge the project's RDF files and export the merged artifact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ensureProject(cmd)
			if err != nil {
				return err
			}
			logger := getLogger(cmd)

			st, merged, err := pipeline.MergeOnly(pipelineOptions(cfg, logger))
			if err != nil {
				return withCode(ExitFailure, err)
			}

			for _, cat := range []store.Category{store.CategoryReference, store.CategoryLocal} {
				total := 0
				for _, g := range merged.GraphNames(cat) {
					total += st.GraphLen(g)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %5d triples in %d graphs\n",
					cat, total, len(merged.GraphNames(cat)))
			}

			v := store.NewReadOnlyView(st, merged.AllGraphNames())
			quads, err := v.Quads(rdf.QuadPattern{})
			if err != nil {
				return withCode(ExitFailure, err)
			}

			formats, err := extraFormats(cfg)
			if err != nil {
				return withCode(ExitFailure, err)
			}
			exp := export.New(cfg.Output.Folder, formats, logger)
			paths, err := exp.Export(cmd.Context(), string(pipeline.ArtifactMerged), quads)
			if err != nil {
				return withCode(ExitFailure, err)
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	return cmd
}
