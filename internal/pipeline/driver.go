// Package pipeline drives merged project data through OWL-RL inference and
// heuristics to a fixed point, then assembles the exportable artifacts.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/robertmuil/pythinfer/internal/heuristic"
	"github.com/robertmuil/pythinfer/internal/merge"
	"github.com/robertmuil/pythinfer/internal/reason"
	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// Graph names for derived artifacts. Input graphs keep their file:// IRIs;
// everything the pipeline creates uses a stable synthetic IRI.
const (
	GraphExternalOWL rdf.IRI = "urn:pythinfer:derived:inferences_external_owl"
	GraphFullOWL     rdf.IRI = "urn:pythinfer:derived:inferences_full_owl"
	GraphHeuristic   rdf.IRI = "urn:pythinfer:derived:inferences_heuristic"
)

// DefaultBound is the default iteration bound N.
const DefaultBound = 16

// roundState tracks the driver's per-round state machine, for diagnostics.
type roundState string

const (
	stateReady         roundState = "READY"
	stateReasoning     roundState = "REASONING"
	stateHeuristics    roundState = "HEURISTICS"
	stateCheck         roundState = "CHECK"
	stateDone          roundState = "DONE"
	stateBoundExceeded roundState = "BOUND_EXCEEDED"
)

// Driver alternates the reasoner and the heuristics until no new triples
// appear or the bound is hit.
type Driver struct {
	Store      *store.Store
	Reasoner   reason.Reasoner
	Heuristics *heuristic.Set
	// Bound caps the number of rounds; zero means DefaultBound.
	Bound  int
	Logger *slog.Logger
}

// Result is the driver's outcome. BoundExceeded is non-fatal: the partial
// closure is still well-defined and proceeds to filtering and export.
type Result struct {
	Store         *store.Store
	Merged        *merge.Result
	Rounds        int
	Converged     bool
	BoundExceeded bool
	// FinalDelta is the number of triples added in the last completed round.
	FinalDelta int
}

// Run executes the pipeline over a merged store. Cancellation is cooperative,
// checked between rounds and between heuristics; a cancelled run returns
// context.Canceled and nothing may be exported from it.
func (d *Driver) Run(ctx context.Context, merged *merge.Result) (*Result, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("run", uuid.NewString()[:8])
	bound := d.Bound
	if bound <= 0 {
		bound = DefaultBound
	}

	for _, g := range []rdf.IRI{GraphExternalOWL, GraphFullOWL, GraphHeuristic} {
		if err := d.Store.CreateGraph(g, store.CategoryDerived); err != nil {
			return nil, err
		}
	}

	// Reference-only pass: the noise floor of entailments that come from
	// the reference vocabularies alone. These stay in their own excluded
	// graph, which is what keeps them out of the combined outputs.
	refGraphs := merged.GraphNames(store.CategoryReference)
	vRef := store.NewView(d.Store, append(append([]rdf.Term{}, refGraphs...), GraphExternalOWL))
	n, err := d.Reasoner.Reason(ctx, vRef, GraphExternalOWL)
	if err != nil {
		return nil, err
	}
	logger.Info("reference inference complete", "triples", n)

	fullGraphs := append(append([]rdf.Term{}, merged.AllGraphNames()...),
		GraphExternalOWL, GraphFullOWL, GraphHeuristic)
	vFull := store.NewView(d.Store, fullGraphs)

	result := &Result{Store: d.Store, Merged: merged}
	state := stateReady
	for round := 1; round <= bound; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := d.Store.Len()

		state = stateReasoning
		addedOWL, err := d.Reasoner.Reason(ctx, vFull, GraphFullOWL)
		if err != nil {
			return nil, err
		}

		state = stateHeuristics
		addedHeur, err := d.runHeuristics(ctx, vFull)
		if err != nil {
			return nil, err
		}

		state = stateCheck
		result.Rounds = round
		result.FinalDelta = d.Store.Len() - before
		logger.Info("round complete", "round", round, "state", string(state),
			"owl", addedOWL, "heuristic", addedHeur, "total", d.Store.Len())

		if result.FinalDelta == 0 {
			state = stateDone
			result.Converged = true
			logger.Info("converged", "rounds", round)
			return result, nil
		}
		state = stateReady
	}

	state = stateBoundExceeded
	result.BoundExceeded = true
	logger.Warn("iteration bound exceeded, proceeding with partial closure",
		"state", string(state), "rounds", result.Rounds, "final_delta", result.FinalDelta)
	return result, nil
}

// runHeuristics applies the heuristics in configured order. Each delta lands
// in the heuristic graph before the next heuristic runs, so later rules see
// earlier rules' output.
func (d *Driver) runHeuristics(ctx context.Context, vFull *store.View) (int, error) {
	if d.Heuristics == nil {
		return 0, nil
	}
	readView := store.NewReadOnlyView(d.Store, vFull.Whitelist())
	total := 0
	for _, h := range d.Heuristics.Heuristics {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		delta, err := h.Apply(ctx, readView, d.Store.NewBlankNode)
		if err != nil {
			return total, err
		}
		added := 0
		for _, t := range delta {
			if !t.Valid() {
				continue
			}
			present, err := vFull.Contains(t)
			if err != nil {
				return total, err
			}
			if present {
				continue
			}
			if err := vFull.Add(rdf.Quad{Triple: t, Graph: GraphHeuristic}); err != nil {
				return total, err
			}
			added++
		}
		d.Heuristics.Logger.Debug("heuristic applied", "id", h.ID(), "new", added)
		total += added
	}
	return total, nil
}
