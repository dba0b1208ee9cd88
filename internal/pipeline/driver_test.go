package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertmuil/pythinfer/internal/rdffilter"
	"github.com/robertmuil/pythinfer/internal/reason"
	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/internal/testutil"
	"github.com/robertmuil/pythinfer/pkg/rdf"
	"github.com/robertmuil/pythinfer/pkg/rdf/vocab"
)

var (
	alice = rdf.IRI("http://example.org/Alice")
	bob   = rdf.IRI("http://example.org/Bob")
	jam   = rdf.IRI("http://example.org/Jamiroquai")
	x     = rdf.IRI("http://example.org/x")
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const whoKnowsWhom = `
@prefix foaf: <http://xmlns.com/foaf/0.1/> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix : <http://example.org/> .

foaf:knows a owl:SymmetricProperty .
:Alice a foaf:Person ; foaf:age 30 .
:Bob a foaf:Person ; foaf:knows :Alice .
`

func runPipeline(t *testing.T, opts Options) *Result {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testutil.NewTestLogger(t)
	}
	result, err := Run(context.Background(), opts)
	require.NoError(t, err)
	return result
}

func wantedTriples(t *testing.T, result *Result) map[rdf.Triple]bool {
	t.Helper()
	quads, err := result.Quads(ArtifactCombinedWanted, rdffilter.NewChain(nil))
	require.NoError(t, err)
	out := make(map[rdf.Triple]bool, len(quads))
	for _, q := range quads {
		out[q.Triple] = true
	}
	return out
}

func TestPipeline_SymmetricEntailment(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.ttl", whoKnowsWhom)

	result := runPipeline(t, Options{LocalFiles: []string{data}})
	require.True(t, result.Converged)

	wanted := wantedTriples(t, result)
	assert.True(t, wanted[rdf.T(bob, vocab.FOAFKnows, alice)])
	assert.True(t, wanted[rdf.T(alice, vocab.FOAFKnows, bob)], "symmetric entailment missing")
	assert.False(t, wanted[rdf.T(alice, vocab.OWLSameAs, alice)], "reflexive sameAs not filtered")
	assert.False(t, wanted[rdf.T(alice, vocab.RDFType, vocab.OWLThing)], "owl:Thing typing not filtered")
}

func TestPipeline_CelebrityHeuristic(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.ttl", whoKnowsWhom)
	rule := writeFile(t, dir, "celebrity.rq", `
PREFIX foaf: <http://xmlns.com/foaf/0.1/>
PREFIX : <http://example.org/>
CONSTRUCT { ?x foaf:knows :Jamiroquai . }
WHERE {
  ?x foaf:age ?age .
  ?x foaf:knows :Bob .
  FILTER (?age > 29)
}
`)

	result := runPipeline(t, Options{
		LocalFiles:       []string{data},
		SPARQLHeuristics: []string{rule},
	})
	require.True(t, result.Converged)
	// Symmetric entailment enables the heuristic, whose output feeds a
	// second symmetric pass; three rounds at most.
	assert.LessOrEqual(t, result.Rounds, 3)

	wanted := wantedTriples(t, result)
	assert.True(t, wanted[rdf.T(alice, vocab.FOAFKnows, jam)])
	assert.True(t, wanted[rdf.T(jam, vocab.FOAFKnows, alice)],
		"second symmetric pass over heuristic output missing")
}

const miniSKOS = `
@prefix skos: <http://www.w3.org/2004/02/skos/core#> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .

skos:broader a rdf:Property .
skos:broader rdfs:subPropertyOf skos:semanticRelation .
skos:narrower owl:inverseOf skos:broader .
skos:Concept a owl:Class .
`

func TestPipeline_ReferenceNoiseSuppression(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "skos.ttl", miniSKOS)
	local := writeFile(t, dir, "data.ttl", `
@prefix skos: <http://www.w3.org/2004/02/skos/core#> .
@prefix : <http://example.org/> .
:x a skos:Concept .
`)

	result := runPipeline(t, Options{
		ReferenceFiles: []string{ref},
		LocalFiles:     []string{local},
	})
	wanted := wantedTriples(t, result)

	assert.True(t, wanted[rdf.T(x, vocab.RDFType, vocab.SKOSConcept)],
		"the user's assertion must survive")

	// Nothing that lives only in the reference graph or its closure may
	// appear: neither the vocabulary statements nor their entailments.
	assert.False(t, wanted[rdf.T(vocab.SKOSBroader, vocab.RDFType, vocab.RDFProperty)])
	for tr := range wanted {
		assert.NotEqual(t, rdf.Term(vocab.SKOSBroader), tr.Subject,
			"reference vocabulary leaked: %s", tr)
	}
}

func TestPipeline_ReferenceIsolationInternal(t *testing.T) {
	dir := t.TempDir()
	ref := writeFile(t, dir, "skos.ttl", miniSKOS)
	local := writeFile(t, dir, "data.ttl", `
@prefix skos: <http://www.w3.org/2004/02/skos/core#> .
@prefix : <http://example.org/> .
:x a skos:Concept .
`)
	result := runPipeline(t, Options{
		ReferenceFiles: []string{ref},
		LocalFiles:     []string{local},
	})

	// combined_internal excludes reference graphs and the reference-only
	// entailment graph entirely.
	quads, err := result.Quads(ArtifactCombinedInternal, nil)
	require.NoError(t, err)
	refName := result.Merged.GraphNames(store.CategoryReference)[0]
	for _, q := range quads {
		assert.NotEqual(t, refName, q.Graph)
		assert.NotEqual(t, rdf.Term(GraphExternalOWL), q.Graph)
	}
}

func TestPipeline_UndeclaredBlankNodePruned(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.ttl", `
@prefix : <http://example.org/> .
:x :p _:b .
:x :q :y .
`)
	result := runPipeline(t, Options{LocalFiles: []string{data}})
	wanted := wantedTriples(t, result)

	for tr := range wanted {
		assert.NotEqual(t, rdf.KindBlank, tr.Object.Kind(),
			"undeclared blank node survived: %s", tr)
	}
	assert.True(t, wanted[rdf.T(x, rdf.IRI("http://example.org/q"), rdf.IRI("http://example.org/y"))])
}

func TestPipeline_ContradictionPreserved(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.ttl", `
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix : <http://example.org/> .
:X rdfs:subClassOf owl:Nothing .
owl:Nothing rdfs:subClassOf :X .
`)
	result := runPipeline(t, Options{LocalFiles: []string{data}})
	wanted := wantedTriples(t, result)

	xCls := rdf.IRI("http://example.org/X")
	assert.True(t, wanted[rdf.T(xCls, vocab.RDFSSubClassOf, vocab.OWLNothing)],
		"contradiction marker must survive filtering")
	assert.False(t, wanted[rdf.T(vocab.OWLNothing, vocab.RDFSSubClassOf, xCls)],
		"banal direction must be dropped")
}

func TestPipeline_MonotonicAndFixedPoint(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.ttl", whoKnowsWhom)

	st, merged, err := MergeOnly(Options{LocalFiles: []string{data}})
	require.NoError(t, err)

	reasoner, err := reason.New(reason.Config{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	driver := &Driver{Store: st, Reasoner: reasoner, Logger: testutil.NewTestLogger(t)}
	result, err := driver.Run(context.Background(), merged)
	require.NoError(t, err)
	require.True(t, result.Converged)

	// One extra round after convergence adds nothing.
	before := st.Len()
	again, err := driver.Run(context.Background(), merged)
	require.NoError(t, err)
	assert.True(t, again.Converged)
	assert.Equal(t, 1, again.Rounds)
	assert.Equal(t, before, st.Len())
}

func TestPipeline_BoundExceeded(t *testing.T) {
	dir := t.TempDir()
	// Force the bound with bound=1: round 1 still adds triples (symmetric
	// entailment plus the heuristic's foaf:knows :Jamiroquai), so the loop
	// stops before it can observe an unchanged count.
	data := writeFile(t, dir, "data.ttl", whoKnowsWhom)
	rule := writeFile(t, dir, "grow.rq", `
PREFIX foaf: <http://xmlns.com/foaf/0.1/>
PREFIX : <http://example.org/>
CONSTRUCT { ?x foaf:knows :Jamiroquai . }
WHERE { ?x foaf:age ?age . FILTER (?age > 29) }
`)

	result, err := Run(context.Background(), Options{
		LocalFiles:       []string{data},
		SPARQLHeuristics: []string{rule},
		Bound:            1,
		Logger:           testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	assert.True(t, result.BoundExceeded)
	assert.False(t, result.Converged)
	assert.Equal(t, 1, result.Rounds)

	// The partial closure still produces well-defined artifacts.
	quads, err := result.Quads(ArtifactCombinedWanted, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, quads)
}

func TestPipeline_Cancellation(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.ttl", whoKnowsWhom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Options{
		LocalFiles: []string{data},
		Logger:     testutil.NewTestLogger(t),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_MergedArtifactKeepsProvenance(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.ttl", whoKnowsWhom)

	result := runPipeline(t, Options{LocalFiles: []string{data}})
	quads, err := result.Quads(ArtifactMerged, nil)
	require.NoError(t, err)
	require.NotEmpty(t, quads)
	for _, q := range quads {
		assert.Contains(t, q.Graph.String(), "file://")
	}
}
