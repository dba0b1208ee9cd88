package store

import (
	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// View is a restricted window onto a Store. It exposes the same capability
// set but checks every graph access against a whitelist fixed at construction.
// The data is not copied: writes through the view land in the underlying
// store, and store mutations are visible through the view.
//
// Iteration and un-contexted triple queries return the deduplicated union of
// the whitelisted graphs, never a default-graph union.
type View struct {
	store    *Store
	allowed  map[rdf.Term]struct{}
	names    []rdf.Term
	readOnly bool
}

// NewView returns a read-write view over the given graphs. The whitelist
// cannot be edited afterwards. Graphs need not exist yet: adding a triple to
// a whitelisted absent graph is the act of creating it.
func NewView(s *Store, graphs []rdf.Term) *View {
	allowed := make(map[rdf.Term]struct{}, len(graphs))
	names := make([]rdf.Term, 0, len(graphs))
	for _, g := range graphs {
		if _, dup := allowed[g]; dup {
			continue
		}
		allowed[g] = struct{}{}
		names = append(names, g)
	}
	sortTerms(names)
	return &View{store: s, allowed: allowed, names: names}
}

// NewReadOnlyView returns a view that rejects all mutating operations.
func NewReadOnlyView(s *Store, graphs []rdf.Term) *View {
	v := NewView(s, graphs)
	v.readOnly = true
	return v
}

// ReadOnly reports whether the view rejects writes.
func (v *View) ReadOnly() bool { return v.readOnly }

// Whitelist returns the whitelisted graph names, sorted.
func (v *View) Whitelist() []rdf.Term {
	out := make([]rdf.Term, len(v.names))
	copy(out, v.names)
	return out
}

func (v *View) check(g rdf.Term, op string) error {
	if _, ok := v.allowed[g]; !ok {
		return &PermissionError{Graph: g, Op: op}
	}
	return nil
}

// GraphNames returns the whitelisted graph names that currently exist in the
// underlying store.
func (v *View) GraphNames() []rdf.Term {
	var out []rdf.Term
	for _, name := range v.names {
		if _, ok := v.store.graphs[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Len returns the total number of triples across whitelisted graphs.
func (v *View) Len() int {
	total := 0
	for _, name := range v.names {
		total += v.store.GraphLen(name)
	}
	return total
}

// Triples returns deduplicated triples matching the pattern from the
// whitelisted graphs.
func (v *View) Triples(p rdf.Pattern) ([]rdf.Triple, error) {
	return v.store.triplesOver(p, v.names)
}

// TriplesIn returns triples from one graph, which must be whitelisted.
func (v *View) TriplesIn(p rdf.Pattern, graph rdf.Term) ([]rdf.Triple, error) {
	if err := v.check(graph, "triples"); err != nil {
		return nil, err
	}
	return v.store.TriplesIn(p, graph)
}

// Quads returns quads matching the pattern from whitelisted graphs. A
// pattern naming a graph outside the whitelist fails rather than silently
// returning nothing.
func (v *View) Quads(p rdf.QuadPattern) ([]rdf.Quad, error) {
	if p.Graph != nil {
		if err := v.check(p.Graph, "quads"); err != nil {
			return nil, err
		}
	}
	tp := rdf.Pattern{Subject: p.Subject, Predicate: p.Predicate, Object: p.Object}
	var out []rdf.Quad
	for _, name := range v.names {
		if p.Graph != nil && p.Graph != name {
			continue
		}
		ts, err := v.store.TriplesIn(tp, name)
		if err != nil {
			return nil, err
		}
		for _, t := range ts {
			out = append(out, rdf.Quad{Triple: t, Graph: name})
		}
	}
	return out, nil
}

// Contains reports whether any whitelisted graph holds the triple.
func (v *View) Contains(t rdf.Triple) (bool, error) {
	for _, name := range v.names {
		if _, ok := v.store.graphs[name][t]; ok {
			return true, nil
		}
	}
	return false, nil
}

// ContainsQuad reports whether the named graph holds the triple. The graph
// must be whitelisted.
func (v *View) ContainsQuad(q rdf.Quad) (bool, error) {
	if err := v.check(q.Graph, "contains"); err != nil {
		return false, err
	}
	return v.store.ContainsQuad(q)
}

// Add inserts a quad into a whitelisted graph. Adding to a whitelisted graph
// that does not exist yet creates it in the underlying store.
func (v *View) Add(q rdf.Quad) error {
	if v.readOnly {
		return &ReadOnlyError{Op: "add"}
	}
	if err := v.check(q.Graph, "add"); err != nil {
		return err
	}
	return v.store.Add(q)
}

// Remove deletes a quad from a whitelisted graph.
func (v *View) Remove(q rdf.Quad) error {
	if v.readOnly {
		return &ReadOnlyError{Op: "remove"}
	}
	if err := v.check(q.Graph, "remove"); err != nil {
		return err
	}
	return v.store.Remove(q)
}

// BulkAdd inserts quads in one batch and returns how many were new. The
// batch fails on the first non-whitelisted graph, leaving earlier inserts in
// place; a PermissionError is an internal bug, not a recoverable state.
func (v *View) BulkAdd(quads []rdf.Quad) (int, error) {
	if v.readOnly {
		return 0, &ReadOnlyError{Op: "bulk_add"}
	}
	added := 0
	for _, q := range quads {
		if err := v.check(q.Graph, "bulk_add"); err != nil {
			return added, err
		}
		before := v.store.GraphLen(q.Graph)
		if err := v.store.Add(q); err != nil {
			return added, err
		}
		added += v.store.GraphLen(q.Graph) - before
	}
	return added, nil
}

// RemoveGraph removes a whitelisted graph from the store. The name stays in
// the whitelist so the graph may be re-created.
func (v *View) RemoveGraph(name rdf.Term) error {
	if v.readOnly {
		return &ReadOnlyError{Op: "remove_graph"}
	}
	if err := v.check(name, "remove_graph"); err != nil {
		return err
	}
	return v.store.RemoveGraph(name)
}
