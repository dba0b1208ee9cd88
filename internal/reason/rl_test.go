package reason

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/internal/testutil"
	"github.com/robertmuil/pythinfer/pkg/rdf"
	"github.com/robertmuil/pythinfer/pkg/rdf/vocab"
)

var (
	data   = rdf.IRI("urn:data")
	target = rdf.IRI("urn:inferred")

	alice = rdf.IRI("http://example.org/Alice")
	bob   = rdf.IRI("http://example.org/Bob")
	carol = rdf.IRI("http://example.org/Carol")
)

func runReasoner(t *testing.T, input []rdf.Quad) (*store.Store, *store.View) {
	t.Helper()
	s := store.New()
	_, err := s.BulkAdd(input)
	require.NoError(t, err)

	v := store.NewView(s, []rdf.Term{data, target})
	r, err := New(Config{Backend: BackendRLInProcess, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	_, err = r.Reason(context.Background(), v, target)
	require.NoError(t, err)
	return s, v
}

func inTarget(t *testing.T, s *store.Store, tr rdf.Triple) bool {
	t.Helper()
	ok, err := s.ContainsQuad(rdf.Quad{Triple: tr, Graph: target})
	require.NoError(t, err)
	return ok
}

func TestReason_SymmetricProperty(t *testing.T) {
	s, _ := runReasoner(t, []rdf.Quad{
		rdf.Q(vocab.FOAFKnows, vocab.RDFType, vocab.OWLSymmetricProperty, data),
		rdf.Q(bob, vocab.FOAFKnows, alice, data),
	})
	assert.True(t, inTarget(t, s, rdf.T(alice, vocab.FOAFKnows, bob)))
}

func TestReason_SubClassInheritance(t *testing.T) {
	animal := rdf.IRI("http://example.org/Animal")
	mammal := rdf.IRI("http://example.org/Mammal")
	dog := rdf.IRI("http://example.org/Dog")
	rex := rdf.IRI("http://example.org/Rex")

	s, _ := runReasoner(t, []rdf.Quad{
		rdf.Q(dog, vocab.RDFSSubClassOf, mammal, data),
		rdf.Q(mammal, vocab.RDFSSubClassOf, animal, data),
		rdf.Q(rex, vocab.RDFType, dog, data),
	})
	assert.True(t, inTarget(t, s, rdf.T(rex, vocab.RDFType, mammal)))
	assert.True(t, inTarget(t, s, rdf.T(rex, vocab.RDFType, animal)))
	assert.True(t, inTarget(t, s, rdf.T(dog, vocab.RDFSSubClassOf, animal)))
}

func TestReason_DomainAndRange(t *testing.T) {
	s, _ := runReasoner(t, []rdf.Quad{
		rdf.Q(vocab.FOAFKnows, vocab.RDFSDomain, vocab.FOAFPerson, data),
		rdf.Q(vocab.FOAFKnows, vocab.RDFSRange, vocab.FOAFPerson, data),
		rdf.Q(alice, vocab.FOAFKnows, bob, data),
	})
	assert.True(t, inTarget(t, s, rdf.T(alice, vocab.RDFType, vocab.FOAFPerson)))
	assert.True(t, inTarget(t, s, rdf.T(bob, vocab.RDFType, vocab.FOAFPerson)))
}

func TestReason_TransitiveProperty(t *testing.T) {
	part := rdf.IRI("http://example.org/partOf")
	s, _ := runReasoner(t, []rdf.Quad{
		rdf.Q(part, vocab.RDFType, vocab.OWLTransitiveProperty, data),
		rdf.Q(alice, part, bob, data),
		rdf.Q(bob, part, carol, data),
	})
	assert.True(t, inTarget(t, s, rdf.T(alice, part, carol)))
}

func TestReason_InverseOf(t *testing.T) {
	parent := rdf.IRI("http://example.org/parentOf")
	child := rdf.IRI("http://example.org/childOf")
	s, _ := runReasoner(t, []rdf.Quad{
		rdf.Q(parent, vocab.OWLInverseOf, child, data),
		rdf.Q(alice, parent, bob, data),
	})
	assert.True(t, inTarget(t, s, rdf.T(bob, child, alice)))
}

func TestReason_SameAsPropagation(t *testing.T) {
	s, _ := runReasoner(t, []rdf.Quad{
		rdf.Q(alice, vocab.OWLSameAs, bob, data),
		rdf.Q(alice, vocab.FOAFKnows, carol, data),
	})
	assert.True(t, inTarget(t, s, rdf.T(bob, vocab.OWLSameAs, alice)))
	assert.True(t, inTarget(t, s, rdf.T(bob, vocab.FOAFKnows, carol)))
}

func TestReason_FunctionalPropertyYieldsSameAs(t *testing.T) {
	mother := rdf.IRI("http://example.org/hasMother")
	s, _ := runReasoner(t, []rdf.Quad{
		rdf.Q(mother, vocab.RDFType, vocab.OWLFunctionalProperty, data),
		rdf.Q(alice, mother, bob, data),
		rdf.Q(alice, mother, carol, data),
	})
	assert.True(t, inTarget(t, s, rdf.T(bob, vocab.OWLSameAs, carol)))
}

func TestReason_DeltaExcludesTriplesAlreadyVisible(t *testing.T) {
	// The symmetric entailment already asserted in the data must not be
	// re-deposited into the target graph.
	s := store.New()
	_, err := s.BulkAdd([]rdf.Quad{
		rdf.Q(vocab.FOAFKnows, vocab.RDFType, vocab.OWLSymmetricProperty, data),
		rdf.Q(bob, vocab.FOAFKnows, alice, data),
		rdf.Q(alice, vocab.FOAFKnows, bob, data),
	})
	require.NoError(t, err)

	v := store.NewView(s, []rdf.Term{data, target})
	r, err := New(Config{})
	require.NoError(t, err)
	_, err = r.Reason(context.Background(), v, target)
	require.NoError(t, err)

	assert.False(t, inTarget(t, s, rdf.T(alice, vocab.FOAFKnows, bob)))
	assert.False(t, inTarget(t, s, rdf.T(bob, vocab.FOAFKnows, alice)))
}

func TestReason_InvalidTriplesAreDropped(t *testing.T) {
	// A functional datatype property on literal objects entails
	// literal-sameAs-literal, which is invalid RDF and must not reach the
	// store.
	name := rdf.IRI("http://example.org/name")
	s, _ := runReasoner(t, []rdf.Quad{
		rdf.Q(name, vocab.RDFType, vocab.OWLFunctionalProperty, data),
		rdf.Q(alice, name, rdf.NewLiteral("Alice"), data),
		rdf.Q(alice, name, rdf.NewLiteral("Alicia"), data),
	})
	quads, err := s.Quads(rdf.QuadPattern{Graph: target})
	require.NoError(t, err)
	for _, q := range quads {
		assert.NotEqual(t, rdf.KindLiteral, q.Subject.Kind(),
			"literal subject leaked: %s", q)
	}
}

func TestReason_DoesNotTouchOtherGraphs(t *testing.T) {
	s, _ := runReasoner(t, []rdf.Quad{
		rdf.Q(vocab.FOAFKnows, vocab.RDFType, vocab.OWLSymmetricProperty, data),
		rdf.Q(bob, vocab.FOAFKnows, alice, data),
	})
	assert.Equal(t, 2, s.GraphLen(data))
}

func TestReason_EmitsKnownBanalities(t *testing.T) {
	// The backend mirrors reference OWL-RL engines: reflexive sameAs and
	// universal Thing typing appear in the delta, to be stripped later by
	// the filter chain.
	s, _ := runReasoner(t, []rdf.Quad{
		rdf.Q(alice, vocab.RDFType, vocab.FOAFPerson, data),
	})
	assert.True(t, inTarget(t, s, rdf.T(alice, vocab.OWLSameAs, alice)))
	assert.True(t, inTarget(t, s, rdf.T(alice, vocab.RDFType, vocab.OWLThing)))
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "quantum"})
	assert.Error(t, err)
}

func TestNew_ExternalCLIRequiresCommand(t *testing.T) {
	_, err := New(Config{Backend: BackendExternalCLI})
	var be *BackendError
	assert.ErrorAs(t, err, &be)
}
