package rdf

import "fmt"

// Triple is a single RDF statement. A well-formed triple has an IRI or blank
// node subject, an IRI predicate, and any term as object. Triples coming out
// of a reasoner backend may violate this; Valid distinguishes them.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// T is shorthand for constructing a Triple.
func T(s, p, o Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// Valid reports whether the triple is syntactically valid RDF: no literal in
// subject position and an IRI in predicate position.
func (t Triple) Valid() bool {
	if t.Subject == nil || t.Predicate == nil || t.Object == nil {
		return false
	}
	if t.Subject.Kind() == KindLiteral {
		return false
	}
	return t.Predicate.Kind() == KindIRI
}

func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

// Quad is a Triple tagged with the name of the graph holding it. Graph names
// are IRIs or blank nodes.
type Quad struct {
	Triple
	Graph Term
}

// Q is shorthand for constructing a Quad.
func Q(s, p, o, g Term) Quad {
	return Quad{Triple: Triple{Subject: s, Predicate: p, Object: o}, Graph: g}
}

func (q Quad) String() string {
	return fmt.Sprintf("%s %s %s %s .", q.Subject, q.Predicate, q.Object, q.Graph)
}

// Pattern is a triple pattern for matching: nil fields are wildcards.
type Pattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Matches reports whether the triple matches the pattern.
func (p Pattern) Matches(t Triple) bool {
	if p.Subject != nil && p.Subject != t.Subject {
		return false
	}
	if p.Predicate != nil && p.Predicate != t.Predicate {
		return false
	}
	if p.Object != nil && p.Object != t.Object {
		return false
	}
	return true
}

// QuadPattern is a quad pattern for matching: nil fields are wildcards.
type QuadPattern struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

// Matches reports whether the quad matches the pattern.
func (p QuadPattern) Matches(q Quad) bool {
	if p.Graph != nil && p.Graph != q.Graph {
		return false
	}
	return Pattern{p.Subject, p.Predicate, p.Object}.Matches(q.Triple)
}
