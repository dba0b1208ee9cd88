package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertmuil/pythinfer/pkg/rdf"
)

func TestView_ReadOutsideWhitelistFails(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(rdf.Q(alice, knows, bob, graphB)))

	v := NewView(s, []rdf.Term{graphA})

	_, err := v.TriplesIn(rdf.Pattern{}, graphB)
	var permErr *PermissionError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, rdf.Term(graphB), permErr.Graph)

	_, err = v.Quads(rdf.QuadPattern{Graph: graphB})
	assert.ErrorAs(t, err, &permErr)

	// No state was mutated by the failed accesses.
	assert.Equal(t, 1, s.Len())
}

func TestView_WriteOutsideWhitelistFails(t *testing.T) {
	s := New()
	v := NewView(s, []rdf.Term{graphA})

	var permErr *PermissionError
	err := v.Add(rdf.Q(alice, knows, bob, graphB))
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, 0, s.Len())

	err = v.RemoveGraph(graphB)
	assert.ErrorAs(t, err, &permErr)
}

func TestView_IterationIsWhitelistUnion(t *testing.T) {
	s := New()
	shared := rdf.T(alice, knows, bob)
	require.NoError(t, s.Add(rdf.Quad{Triple: shared, Graph: graphA}))
	require.NoError(t, s.Add(rdf.Quad{Triple: shared, Graph: graphB}))
	require.NoError(t, s.Add(rdf.Q(bob, knows, alice, graphB)))
	require.NoError(t, s.Add(rdf.Q(alice, age, rdf.NewInteger(30), rdf.IRI("urn:outside"))))

	v := NewView(s, []rdf.Term{graphA, graphB})

	// Union over whitelisted graphs, deduplicated by triple, never the
	// outside graph.
	got, err := v.Triples(rdf.Pattern{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 3, v.Len()) // Len counts per graph, not deduplicated.

	quads, err := v.Quads(rdf.QuadPattern{})
	require.NoError(t, err)
	assert.Len(t, quads, 3)
	for _, q := range quads {
		assert.NotEqual(t, rdf.Term(rdf.IRI("urn:outside")), q.Graph)
	}
}

func TestView_ReadOnlyRejectsWrites(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(rdf.Q(alice, knows, bob, graphA)))
	v := NewReadOnlyView(s, []rdf.Term{graphA})

	var roErr *ReadOnlyError
	assert.ErrorAs(t, v.Add(rdf.Q(bob, knows, alice, graphA)), &roErr)
	assert.ErrorAs(t, v.Remove(rdf.Q(alice, knows, bob, graphA)), &roErr)
	assert.ErrorAs(t, v.RemoveGraph(graphA), &roErr)
	_, err := v.BulkAdd(nil)
	assert.ErrorAs(t, err, &roErr)

	// Reads still work.
	got, err := v.Triples(rdf.Pattern{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestView_AddCreatesWhitelistedGraph(t *testing.T) {
	s := New()
	v := NewView(s, []rdf.Term{graphA})

	require.NoError(t, v.Add(rdf.Q(alice, knows, bob, graphA)))
	cat, ok := s.Category(graphA)
	require.True(t, ok)
	assert.Equal(t, CategoryDerived, cat)
}

func TestView_RemoveGraphKeepsWhitelistEntry(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(rdf.Q(alice, knows, bob, graphA)))
	v := NewView(s, []rdf.Term{graphA})

	require.NoError(t, v.RemoveGraph(graphA))
	assert.Equal(t, 0, v.Len())

	// The name stays whitelisted, so the graph may be re-created.
	require.NoError(t, v.Add(rdf.Q(bob, knows, alice, graphA)))
	assert.Equal(t, 1, v.Len())
}

func TestView_WhitelistIsFixed(t *testing.T) {
	s := New()
	v := NewView(s, []rdf.Term{graphA})
	wl := v.Whitelist()
	wl[0] = graphB // mutating the copy must not affect the view

	var permErr *PermissionError
	assert.ErrorAs(t, v.Add(rdf.Q(alice, knows, bob, graphB)), &permErr)
}
