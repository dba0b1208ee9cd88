package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertmuil/pythinfer/pkg/rdf"
)

var (
	graphA = rdf.IRI("urn:a")
	graphB = rdf.IRI("urn:b")

	alice = rdf.IRI("http://example.org/Alice")
	bob   = rdf.IRI("http://example.org/Bob")
	knows = rdf.IRI("http://xmlns.com/foaf/0.1/knows")
	age   = rdf.IRI("http://xmlns.com/foaf/0.1/age")
)

func TestStore_AddIsIdempotent(t *testing.T) {
	s := New()
	q := rdf.Q(alice, knows, bob, graphA)

	require.NoError(t, s.Add(q))
	require.NoError(t, s.Add(q))

	assert.Equal(t, 1, s.Len())
	ok, err := s.ContainsQuad(q)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	s := New()
	require.NoError(t, s.Remove(rdf.Q(alice, knows, bob, graphA)))
	assert.Equal(t, 0, s.Len())
}

func TestStore_AutoCreatesDerivedGraph(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(rdf.Q(alice, knows, bob, graphA)))

	cat, ok := s.Category(graphA)
	require.True(t, ok)
	assert.Equal(t, CategoryDerived, cat)
}

func TestStore_CategoryIsWriteOnce(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateGraph(graphA, CategoryLocal))
	// Same category again is fine.
	require.NoError(t, s.CreateGraph(graphA, CategoryLocal))

	err := s.CreateGraph(graphA, CategoryReference)
	require.Error(t, err)
	var catErr *CategoryError
	assert.ErrorAs(t, err, &catErr)
}

func TestStore_Difference_IgnoresGraphName(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(rdf.Q(alice, knows, bob, graphA)))
	require.NoError(t, s.Add(rdf.Q(alice, age, rdf.NewInteger(30), graphA)))
	// Same triple as the first, but held in graph B.
	require.NoError(t, s.Add(rdf.Q(alice, knows, bob, graphB)))

	diff := s.Difference(graphA, graphB)
	require.Len(t, diff, 1)
	assert.Equal(t, rdf.T(alice, age, rdf.NewInteger(30)), diff[0].Triple)
	assert.Equal(t, rdf.Term(graphA), diff[0].Graph)
}

func TestStore_BulkAddCountsNewOnly(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(rdf.Q(alice, knows, bob, graphA)))

	n, err := s.BulkAdd([]rdf.Quad{
		rdf.Q(alice, knows, bob, graphA),
		rdf.Q(bob, knows, alice, graphA),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, s.Len())
}

func TestStore_RemoveGraph(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(rdf.Q(alice, knows, bob, graphA)))
	require.NoError(t, s.Add(rdf.Q(bob, knows, alice, graphB)))

	require.NoError(t, s.RemoveGraph(graphA))
	assert.Equal(t, 1, s.Len())
	_, exists := s.Category(graphA)
	assert.False(t, exists)
}

func TestStore_BlankNodesAreUnique(t *testing.T) {
	s := New()
	b1 := s.NewBlankNode()
	b2 := s.NewBlankNode()
	assert.NotEqual(t, b1, b2)
}

func TestStore_TriplesPattern(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(rdf.Q(alice, knows, bob, graphA)))
	require.NoError(t, s.Add(rdf.Q(alice, age, rdf.NewInteger(30), graphA)))
	require.NoError(t, s.Add(rdf.Q(bob, knows, alice, graphB)))

	got, err := s.Triples(rdf.Pattern{Subject: alice})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Triples(rdf.Pattern{Predicate: knows})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.TriplesIn(rdf.Pattern{Predicate: knows}, graphB)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rdf.Term(bob), got[0].Subject)
}
