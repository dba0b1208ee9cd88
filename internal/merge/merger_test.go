package merge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/internal/testutil"
	"github.com/robertmuil/pythinfer/pkg/rdf"
	"github.com/robertmuil/pythinfer/pkg/rdf/vocab"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMerge_OneGraphPerFile(t *testing.T) {
	dir := t.TempDir()
	local := writeFile(t, dir, "data.ttl", `
@prefix : <http://example.org/> .
@prefix foaf: <http://xmlns.com/foaf/0.1/> .
:Alice a foaf:Person .
:Alice foaf:knows :Bob .
`)
	ref := writeFile(t, dir, "vocab.ttl", `
@prefix foaf: <http://xmlns.com/foaf/0.1/> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
foaf:knows a owl:SymmetricProperty .
`)

	st := store.New()
	result, err := New(testutil.NewTestLogger(t)).Merge(st, []string{ref}, []string{local})
	require.NoError(t, err)

	// One named graph per input file, named by the file's absolute path.
	localName, err := GraphName(local)
	require.NoError(t, err)
	refName, err := GraphName(ref)
	require.NoError(t, err)
	assert.Equal(t, []rdf.Term{rdf.Term(localName)}, result.GraphNames(store.CategoryLocal))
	assert.Equal(t, []rdf.Term{rdf.Term(refName)}, result.GraphNames(store.CategoryReference))

	assert.Equal(t, 2, st.GraphLen(localName))
	assert.Equal(t, 1, st.GraphLen(refName))

	cat, ok := st.Category(localName)
	require.True(t, ok)
	assert.Equal(t, store.CategoryLocal, cat)
	cat, ok = st.Category(refName)
	require.True(t, ok)
	assert.Equal(t, store.CategoryReference, cat)

	// The graph's triples equal the parse of the file.
	ok, err = st.ContainsQuad(rdf.Q(rdf.IRI("http://example.org/Alice"),
		vocab.RDFType, vocab.FOAFPerson, localName))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMerge_ParseErrorAbortsBatch(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.ttl", `
@prefix : <http://example.org/> .
:a :p :b .
`)
	bad := writeFile(t, dir, "bad.ttl", `this is not turtle at all ???`)

	st := store.New()
	_, err := New(nil).Merge(st, nil, []string{good, bad})
	require.Error(t, err)
	// Partial results are discarded: the good file is not in the store.
	assert.Equal(t, 0, st.Len())
}

func TestMerge_BlankNodesNotMergedAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	content := `
@prefix : <http://example.org/> .
_:shared :p :o .
`
	f1 := writeFile(t, dir, "one.ttl", content)
	f2 := writeFile(t, dir, "two.ttl", content)

	st := store.New()
	result, err := New(nil).Merge(st, nil, []string{f1, f2})
	require.NoError(t, err)

	var subjects []rdf.Term
	for _, g := range result.GraphNames(store.CategoryLocal) {
		ts, err := st.TriplesIn(rdf.Pattern{}, g)
		require.NoError(t, err)
		require.Len(t, ts, 1)
		subjects = append(subjects, ts[0].Subject)
	}
	require.Len(t, subjects, 2)
	assert.NotEqual(t, subjects[0], subjects[1],
		"the label _:shared must mint distinct nodes per file")
}

func TestMerge_UnknownExtensionFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.rdfxml", "<rdf/>")

	st := store.New()
	_, err := New(nil).Merge(st, nil, []string{path})
	require.Error(t, err)
}
