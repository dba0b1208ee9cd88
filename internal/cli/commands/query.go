package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robertmuil/pythinfer/internal/config"
	"github.com/robertmuil/pythinfer/internal/pipeline"
	"github.com/robertmuil/pythinfer/internal/rdffilter"
	"github.com/robertmuil/pythinfer/internal/sparql"
	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "query [sparql]",
		Short: "Run a SPARQL query against the inferred, filtered result",
		Long: `Execute a SPARQL SELECT, CONSTRUCT or ASK query against the
combined_wanted artifact. Inference results are reloaded from the TriG cache
when it is fresh; otherwise the pipeline runs first.

With no query argument, an interactive REPL is started.`,
		Example: `  pythinfer query 'SELECT ?s WHERE { ?s a <http://xmlns.com/foaf/0.1/Person> }'
  pythinfer query`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ensureProject(cmd)
			if err != nil {
				return err
			}
			src, err := wantedSource(cmd, cfg)
			if err != nil {
				return withCode(ExitFailure, err)
			}
			if len(args) == 0 {
				return runQueryREPL(cmd, cfg, src, format)
			}
			return withCode(ExitFailure, executeQuery(cmd, src, args[0], format))
		},
	}

	cmd.Flags().StringVar(&format, "format", "table",
		"SELECT output format: table, csv or json")
	return cmd
}

// wantedSource produces the query target: the filtered combined result,
// from cache when fresh, from a full pipeline run otherwise.
func wantedSource(cmd *cobra.Command, cfg *config.Config) (store.Source, error) {
	logger := getLogger(cmd)
	chain := rdffilter.NewChain(logger)
	inputs := append(append([]string{}, cfg.Data.Reference...), cfg.Data.Local...)
	inputs = append(inputs, cfg.Heuristics.SPARQL...)
	inputs = append(inputs, cfg.Heuristics.Starlark...)

	cachePath := filepath.Join(cfg.Output.Folder, string(pipeline.ArtifactCombinedFull)+".trig")
	if cached, ok := pipeline.LoadCache(cachePath, cfg.Path, inputs, logger); ok {
		quads, err := cached.Quads(rdf.QuadPattern{})
		if err != nil {
			return nil, err
		}
		wanted, _ := chain.Apply(quads)
		st := store.New()
		if _, err := st.BulkAdd(wanted); err != nil {
			return nil, err
		}
		return st, nil
	}

	result, err := pipeline.Run(cmd.Context(), pipelineOptions(cfg, logger))
	if err != nil {
		return nil, err
	}
	// Export so the next query hits the cache.
	if err := exportAll(cmd, cfg, result); err != nil {
		return nil, err
	}
	return result.WantedSource(chain)
}

// executeQuery parses and runs one query, rendering by kind.
func executeQuery(cmd *cobra.Command, src store.Source, queryText, format string) error {
	q, err := sparql.Parse(queryText, "query")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch q.Kind {
	case sparql.KindSelect:
		res, err := sparql.Select(q, src)
		if err != nil {
			return err
		}
		return renderSelect(out, res, format)
	case sparql.KindAsk:
		ok, err := sparql.Ask(q, src)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ok)
		return nil
	case sparql.KindConstruct:
		triples, err := sparql.Construct(q, src, nil)
		if err != nil {
			return err
		}
		return renderConstruct(out, triples)
	default:
		return fmt.Errorf("unsupported query kind %s", q.Kind)
	}
}
