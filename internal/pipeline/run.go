package pipeline

import (
	"context"
	"log/slog"

	"github.com/robertmuil/pythinfer/internal/heuristic"
	"github.com/robertmuil/pythinfer/internal/merge"
	"github.com/robertmuil/pythinfer/internal/reason"
	"github.com/robertmuil/pythinfer/internal/store"
)

// Options assembles one pipeline run from resolved configuration. Each run
// owns its store; there is no process-wide state.
type Options struct {
	ReferenceFiles []string
	LocalFiles     []string

	SPARQLHeuristics   []string
	StarlarkHeuristics []string
	// ProceduralHeuristics are identifiers resolved against Registry.
	ProceduralHeuristics []string
	Registry             *heuristic.Registry

	Backend        string
	BackendCommand []string
	BackendRetries int

	Bound  int
	Logger *slog.Logger
}

// MergeOnly parses the inputs into a fresh store without inferring.
func MergeOnly(opts Options) (*store.Store, *merge.Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	st := store.New()
	merged, err := merge.New(logger).Merge(st, opts.ReferenceFiles, opts.LocalFiles)
	if err != nil {
		return nil, nil, err
	}
	return st, merged, nil
}

// Run merges the inputs and drives inference to a fixed point.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	st, merged, err := MergeOnly(opts)
	if err != nil {
		return nil, err
	}

	reasoner, err := reason.New(reason.Config{
		Backend: opts.Backend,
		Command: opts.BackendCommand,
		Retries: opts.BackendRetries,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	heuristics, err := heuristic.Load(opts.SPARQLHeuristics, opts.StarlarkHeuristics,
		opts.ProceduralHeuristics, opts.Registry, logger)
	if err != nil {
		return nil, err
	}

	driver := &Driver{
		Store:      st,
		Reasoner:   reasoner,
		Heuristics: heuristics,
		Bound:      opts.Bound,
		Logger:     logger,
	}
	return driver.Run(ctx, merged)
}
