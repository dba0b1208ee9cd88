// Package heuristic applies user-supplied inference rules that are awkward to
// express in OWL-RL: SPARQL CONSTRUCT queries, Starlark rule scripts, and
// Go-registered procedural rules.
//
// A heuristic is a pure function of the view it reads. It returns its delta
// as triples; the fixed-point driver deposits them into the heuristic-output
// graph, so a rule can never write to an unspecified graph.
package heuristic

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// Heuristic produces an inference delta from a read-only view.
type Heuristic interface {
	// ID names the heuristic for diagnostics and ordering.
	ID() string
	// Apply reads the view and returns new triples. The view is read-only;
	// minting blank nodes goes through mint.
	Apply(ctx context.Context, v *store.View, mint func() rdf.BlankNode) ([]rdf.Triple, error)
}

// Registry holds Go-registered procedural rules, keyed by the identifier the
// project config uses. Registries are built at run start; there is no global
// mutable registry.
type Registry struct {
	rules map[string]Heuristic
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Heuristic)}
}

// Register adds a rule; a duplicate identifier is a programming error.
func (r *Registry) Register(h Heuristic) error {
	if _, dup := r.rules[h.ID()]; dup {
		return fmt.Errorf("duplicate heuristic %q", h.ID())
	}
	r.rules[h.ID()] = h
	return nil
}

// Lookup resolves a configured identifier.
func (r *Registry) Lookup(id string) (Heuristic, bool) {
	h, ok := r.rules[id]
	return h, ok
}

// Func adapts a plain function into a procedural Heuristic.
type Func struct {
	Name string
	Run  func(ctx context.Context, v *store.View, mint func() rdf.BlankNode) ([]rdf.Triple, error)
}

// ID implements Heuristic.
func (f Func) ID() string { return f.Name }

// Apply implements Heuristic.
func (f Func) Apply(ctx context.Context, v *store.View, mint func() rdf.BlankNode) ([]rdf.Triple, error) {
	return f.Run(ctx, v, mint)
}

// Set is the ordered heuristic list for one pipeline run.
type Set struct {
	Heuristics []Heuristic
	Logger     *slog.Logger
}

// Load assembles the run's heuristics in configuration order: SPARQL files
// first, then Starlark files, then registered procedural identifiers — each
// list in its configured order.
func Load(sparqlFiles, starlarkFiles, procedural []string, reg *Registry,
	logger *slog.Logger) (*Set, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	set := &Set{Logger: logger}
	for _, path := range sparqlFiles {
		h, err := LoadSPARQLFile(path)
		if err != nil {
			return nil, err
		}
		set.Heuristics = append(set.Heuristics, h)
	}
	for _, path := range starlarkFiles {
		h, err := LoadStarlarkFile(path)
		if err != nil {
			return nil, err
		}
		set.Heuristics = append(set.Heuristics, h)
	}
	for _, id := range procedural {
		if reg == nil {
			return nil, fmt.Errorf("procedural heuristic %q configured but no registry provided", id)
		}
		h, ok := reg.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("unknown procedural heuristic %q", id)
		}
		set.Heuristics = append(set.Heuristics, h)
	}
	logger.Debug("heuristics loaded", "count", len(set.Heuristics))
	return set, nil
}
