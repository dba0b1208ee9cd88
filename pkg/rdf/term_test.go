package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermRendering(t *testing.T) {
	cases := []struct {
		term Term
		want string
	}{
		{IRI("http://example.org/x"), "<http://example.org/x>"},
		{BlankNode("b1"), "_:b1"},
		{NewLiteral("hi"), `"hi"`},
		{NewLangLiteral("hi", "EN"), `"hi"@en`},
		{NewInteger(42), `"42"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{NewBoolean(false), `"false"^^<http://www.w3.org/2001/XMLSchema#boolean>`},
		{NewLiteral("with \"quotes\""), `"with \"quotes\""`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.term.String())
	}
}

func TestLiteralNumeric(t *testing.T) {
	n, ok := NewInteger(30).Numeric()
	assert.True(t, ok)
	assert.Equal(t, 30.0, n)

	n, ok = NewTypedLiteral("1.5", XSDDecimal).Numeric()
	assert.True(t, ok)
	assert.Equal(t, 1.5, n)

	_, ok = NewLiteral("thirty").Numeric()
	assert.False(t, ok)
}

func TestTripleValid(t *testing.T) {
	x := IRI("urn:x")
	p := IRI("urn:p")
	assert.True(t, T(x, p, NewLiteral("v")).Valid())
	assert.True(t, T(BlankNode("b"), p, x).Valid())
	assert.False(t, T(NewLiteral("v"), p, x).Valid(), "literal subject")
	assert.False(t, T(x, BlankNode("b"), x).Valid(), "blank predicate")
	assert.False(t, Triple{}.Valid())
}

func TestTermsAreMapKeys(t *testing.T) {
	m := map[Triple]bool{
		T(IRI("urn:x"), IRI("urn:p"), NewInteger(1)): true,
	}
	assert.True(t, m[T(IRI("urn:x"), IRI("urn:p"), NewInteger(1))])
}

func TestPatternMatching(t *testing.T) {
	tr := T(IRI("urn:s"), IRI("urn:p"), IRI("urn:o"))
	assert.True(t, Pattern{}.Matches(tr))
	assert.True(t, Pattern{Subject: IRI("urn:s")}.Matches(tr))
	assert.False(t, Pattern{Subject: IRI("urn:other")}.Matches(tr))
	assert.True(t, QuadPattern{Graph: IRI("urn:g")}.Matches(
		Q(IRI("urn:s"), IRI("urn:p"), IRI("urn:o"), IRI("urn:g"))))
	assert.False(t, QuadPattern{Graph: IRI("urn:h")}.Matches(
		Q(IRI("urn:s"), IRI("urn:p"), IRI("urn:o"), IRI("urn:g"))))
}
