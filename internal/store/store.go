// Package store provides the in-memory quad store at the heart of the
// inference pipeline, and the restricted views that stages use to read and
// write exactly the graphs they should.
//
// Every triple belongs to exactly one named graph; there is no default-union
// graph. Graphs carry a write-once Category recording whether they came from
// reference inputs, local inputs, or were derived during inference.
package store

import (
	"fmt"
	"sort"

	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// Category classifies a named graph at creation time.
type Category string

const (
	// CategoryReference marks ephemeral graphs used only to drive inference.
	CategoryReference Category = "reference"
	// CategoryLocal marks user-maintained graphs retained in output.
	CategoryLocal Category = "local"
	// CategoryDerived marks graphs created by inference or filtering.
	CategoryDerived Category = "derived"
)

// Source is the read capability over a set of named graphs. Both Store and
// View implement it; collaborators that only read accept a Source.
type Source interface {
	// Triples returns triples matching the pattern from the caller's context:
	// all graphs for a Store, the whitelisted union for a View. Results are
	// deduplicated by triple.
	Triples(p rdf.Pattern) ([]rdf.Triple, error)
	// TriplesIn returns triples matching the pattern within one named graph.
	TriplesIn(p rdf.Pattern, graph rdf.Term) ([]rdf.Triple, error)
	// Quads returns quads matching the pattern.
	Quads(p rdf.QuadPattern) ([]rdf.Quad, error)
	// Contains reports whether any visible graph holds the triple.
	Contains(t rdf.Triple) (bool, error)
	// ContainsQuad reports whether the named graph holds the triple.
	ContainsQuad(q rdf.Quad) (bool, error)
	// GraphNames returns the visible graph names, sorted.
	GraphNames() []rdf.Term
	// Len returns the total number of visible triples.
	Len() int
}

// Graph is the read-write capability. Reasoners and heuristic runners write
// through this; no other polymorphism over graph-like things exists.
type Graph interface {
	Source
	Add(q rdf.Quad) error
	Remove(q rdf.Quad) error
	BulkAdd(quads []rdf.Quad) (int, error)
	RemoveGraph(name rdf.Term) error
}

// Store holds all quads for one pipeline run.
type Store struct {
	graphs     map[rdf.Term]map[rdf.Triple]struct{}
	categories map[rdf.Term]Category
	size       int
	blankSeq   int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		graphs:     make(map[rdf.Term]map[rdf.Triple]struct{}),
		categories: make(map[rdf.Term]Category),
	}
}

// NewBlankNode mints a blank node unique within this store.
func (s *Store) NewBlankNode() rdf.BlankNode {
	s.blankSeq++
	return rdf.BlankNode(fmt.Sprintf("b%d", s.blankSeq))
}

// CreateGraph creates a named graph with an explicit category. Creating an
// existing graph with the same category is a no-op; with a different category
// it fails, since categories are write-once.
func (s *Store) CreateGraph(name rdf.Term, cat Category) error {
	if existing, ok := s.categories[name]; ok {
		if existing != cat {
			return &CategoryError{Graph: name, Existing: existing, Wanted: cat}
		}
		return nil
	}
	s.graphs[name] = make(map[rdf.Triple]struct{})
	s.categories[name] = cat
	return nil
}

// ensureGraph auto-creates a graph as derived on insert into an absent
// graph name.
func (s *Store) ensureGraph(name rdf.Term) map[rdf.Triple]struct{} {
	g, ok := s.graphs[name]
	if !ok {
		g = make(map[rdf.Triple]struct{})
		s.graphs[name] = g
		s.categories[name] = CategoryDerived
	}
	return g
}

// Category returns the category of a graph, if it exists.
func (s *Store) Category(name rdf.Term) (Category, bool) {
	c, ok := s.categories[name]
	return c, ok
}

// GraphsOf returns the names of all graphs with the given category, sorted.
func (s *Store) GraphsOf(cat Category) []rdf.Term {
	var names []rdf.Term
	for name, c := range s.categories {
		if c == cat {
			names = append(names, name)
		}
	}
	sortTerms(names)
	return names
}

// Add inserts a quad; duplicates are a no-op.
func (s *Store) Add(q rdf.Quad) error {
	g := s.ensureGraph(q.Graph)
	if _, dup := g[q.Triple]; !dup {
		g[q.Triple] = struct{}{}
		s.size++
	}
	return nil
}

// Remove deletes a quad; absent quads are a no-op.
func (s *Store) Remove(q rdf.Quad) error {
	g, ok := s.graphs[q.Graph]
	if !ok {
		return nil
	}
	if _, present := g[q.Triple]; present {
		delete(g, q.Triple)
		s.size--
	}
	return nil
}

// BulkAdd inserts quads in one batch and returns how many were new.
func (s *Store) BulkAdd(quads []rdf.Quad) (int, error) {
	before := s.size
	for _, q := range quads {
		if err := s.Add(q); err != nil {
			return s.size - before, err
		}
	}
	return s.size - before, nil
}

// RemoveGraph deletes a named graph and its triples. The category entry is
// removed with it.
func (s *Store) RemoveGraph(name rdf.Term) error {
	if g, ok := s.graphs[name]; ok {
		s.size -= len(g)
		delete(s.graphs, name)
		delete(s.categories, name)
	}
	return nil
}

// GraphLen returns the number of triples in one graph.
func (s *Store) GraphLen(name rdf.Term) int {
	return len(s.graphs[name])
}

// Len returns the total number of triples across all graphs.
func (s *Store) Len() int { return s.size }

// GraphNames returns all graph names, sorted for deterministic iteration.
func (s *Store) GraphNames() []rdf.Term {
	names := make([]rdf.Term, 0, len(s.graphs))
	for name := range s.graphs {
		names = append(names, name)
	}
	sortTerms(names)
	return names
}

// Triples returns deduplicated triples matching the pattern from all graphs.
func (s *Store) Triples(p rdf.Pattern) ([]rdf.Triple, error) {
	return s.triplesOver(p, s.GraphNames())
}

// TriplesIn returns triples matching the pattern within one graph.
func (s *Store) TriplesIn(p rdf.Pattern, graph rdf.Term) ([]rdf.Triple, error) {
	var out []rdf.Triple
	for t := range s.graphs[graph] {
		if p.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) triplesOver(p rdf.Pattern, graphs []rdf.Term) ([]rdf.Triple, error) {
	seen := make(map[rdf.Triple]struct{})
	var out []rdf.Triple
	for _, name := range graphs {
		for t := range s.graphs[name] {
			if !p.Matches(t) {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out, nil
}

// Quads returns quads matching the pattern.
func (s *Store) Quads(p rdf.QuadPattern) ([]rdf.Quad, error) {
	var out []rdf.Quad
	for _, name := range s.GraphNames() {
		if p.Graph != nil && p.Graph != name {
			continue
		}
		tp := rdf.Pattern{Subject: p.Subject, Predicate: p.Predicate, Object: p.Object}
		for t := range s.graphs[name] {
			if tp.Matches(t) {
				out = append(out, rdf.Quad{Triple: t, Graph: name})
			}
		}
	}
	return out, nil
}

// Contains reports whether any graph holds the triple.
func (s *Store) Contains(t rdf.Triple) (bool, error) {
	for _, g := range s.graphs {
		if _, ok := g[t]; ok {
			return true, nil
		}
	}
	return false, nil
}

// ContainsQuad reports whether the named graph holds the triple.
func (s *Store) ContainsQuad(q rdf.Quad) (bool, error) {
	_, ok := s.graphs[q.Graph][q.Triple]
	return ok, nil
}

// Difference returns all quads whose triple is in graph a but not in graph b,
// regardless of b's graph name. The returned quads keep a's graph name.
func (s *Store) Difference(a, b rdf.Term) []rdf.Quad {
	bg := s.graphs[b]
	var out []rdf.Quad
	for t := range s.graphs[a] {
		if _, dup := bg[t]; !dup {
			out = append(out, rdf.Quad{Triple: t, Graph: a})
		}
	}
	return out
}

func sortTerms(names []rdf.Term) {
	sort.Slice(names, func(i, j int) bool {
		return names[i].String() < names[j].String()
	})
}
