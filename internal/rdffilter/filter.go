// Package rdffilter strips invalid and unwanted triples from an exportable
// graph set. Filtering is a pure function over quads: provenance (graph
// names) passes through untouched, and the same input always produces the
// same output.
package rdffilter

import (
	"log/slog"

	"github.com/robertmuil/pythinfer/pkg/rdf"
	"github.com/robertmuil/pythinfer/pkg/rdf/vocab"
)

// TripleFilter identifies triples to drop, looking at one triple at a time.
type TripleFilter struct {
	Name string
	Drop func(t rdf.Triple) bool
}

// Invalid lists the filters for syntactically invalid RDF that reasoner
// backends can emit.
func Invalid() []TripleFilter {
	return []TripleFilter{
		{Name: "subject_is_literal", Drop: func(t rdf.Triple) bool {
			return t.Subject.Kind() == rdf.KindLiteral
		}},
	}
}

// reflexivePredicates are predicates whose reflexive use carries no
// information.
var reflexivePredicates = map[rdf.Term]struct{}{
	vocab.OWLSameAs:             {},
	vocab.OWLEquivalentClass:    {},
	vocab.OWLEquivalentProperty: {},
	vocab.RDFSSubClassOf:        {},
	vocab.RDFSSubPropertyOf:     {},
}

// thingPredicates are predicates for which owl:Thing as object is banal.
var thingPredicates = map[rdf.Term]struct{}{
	vocab.RDFType:        {},
	vocab.RDFSSubClassOf: {},
	vocab.RDFSDomain:     {},
	vocab.RDFSRange:      {},
}

// Unwanted lists the filters for banal but valid triples.
func Unwanted() []TripleFilter {
	return []TripleFilter{
		{Name: "object_is_empty_string", Drop: func(t rdf.Triple) bool {
			lit, ok := t.Object.(rdf.Literal)
			return ok && lit.Lexical == ""
		}},
		{Name: "redundant_reflexives", Drop: func(t rdf.Triple) bool {
			if t.Subject != t.Object {
				return false
			}
			_, ok := reflexivePredicates[t.Predicate]
			return ok
		}},
		{Name: "redundant_thing_declarations", Drop: func(t rdf.Triple) bool {
			if t.Object != rdf.Term(vocab.OWLThing) {
				return false
			}
			_, ok := thingPredicates[t.Predicate]
			return ok
		}},
		// owl:Nothing as a subclass of anything says nothing. The opposite
		// direction, X subClassOf owl:Nothing, marks a contradiction and
		// must survive.
		{Name: "redundant_nothing_subclass", Drop: func(t rdf.Triple) bool {
			return t.Subject == rdf.Term(vocab.OWLNothing) &&
				t.Predicate == rdf.Term(vocab.RDFSSubClassOf) &&
				t.Object != rdf.Term(vocab.OWLNothing)
		}},
	}
}

// Stats reports what the chain removed.
type Stats struct {
	Removed  int
	ByFilter map[string]int
}

// Chain is the ordered filter chain: a per-triple pass, then the whole-graph
// undeclared-blank-node pass iterated to its own fixed point.
type Chain struct {
	Filters []TripleFilter
	Logger  *slog.Logger
}

// NewChain returns the standard chain: invalid filters then unwanted filters.
func NewChain(logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Chain{
		Filters: append(Invalid(), Unwanted()...),
		Logger:  logger,
	}
}

// Apply filters the quads and returns the survivors. Applying the result
// again removes nothing.
func (c *Chain) Apply(quads []rdf.Quad) ([]rdf.Quad, Stats) {
	stats := Stats{ByFilter: make(map[string]int)}

	kept := make([]rdf.Quad, 0, len(quads))
	for _, q := range quads {
		dropped := false
		for _, f := range c.Filters {
			if f.Drop(q.Triple) {
				stats.ByFilter[f.Name]++
				dropped = true
				break
			}
		}
		if dropped {
			stats.Removed++
			continue
		}
		kept = append(kept, q)
	}

	kept, blanksDropped := dropUndeclaredBlankNodes(kept)
	if blanksDropped > 0 {
		stats.ByFilter["undeclared_blank_nodes"] = blanksDropped
		stats.Removed += blanksDropped
	}

	for name, n := range stats.ByFilter {
		c.Logger.Info("filter removed triples", "filter", name, "count", n)
	}
	return kept, stats
}

// dropUndeclaredBlankNodes removes triples referencing blank nodes that are
// never the subject of a surviving triple. Each removal can undeclare
// further blank nodes, so the pass repeats until stable.
func dropUndeclaredBlankNodes(quads []rdf.Quad) ([]rdf.Quad, int) {
	dropped := 0
	for {
		declared := make(map[rdf.Term]struct{})
		for _, q := range quads {
			if q.Subject.Kind() == rdf.KindBlank {
				declared[q.Subject] = struct{}{}
			}
		}
		undeclared := func(t rdf.Term) bool {
			if t.Kind() != rdf.KindBlank {
				return false
			}
			_, ok := declared[t]
			return !ok
		}
		kept := quads[:0:0]
		for _, q := range quads {
			if undeclared(q.Subject) || undeclared(q.Object) {
				dropped++
				continue
			}
			kept = append(kept, q)
		}
		if len(kept) == len(quads) {
			return kept, dropped
		}
		quads = kept
	}
}
