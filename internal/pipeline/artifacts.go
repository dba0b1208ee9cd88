package pipeline

import (
	"fmt"

	"github.com/robertmuil/pythinfer/internal/rdffilter"
	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// Artifact names the logical graph-sets the pipeline exports.
type Artifact string

const (
	// ArtifactMerged is the merged inputs: reference plus local graphs.
	ArtifactMerged Artifact = "merged"
	// ArtifactCombinedFull is local inputs plus all combined inference
	// deltas, unfiltered. Reference graphs and the reference-only
	// entailments are excluded. This is also the cache artifact.
	ArtifactCombinedFull Artifact = "combined_full"
	// ArtifactCombinedInternal is the same graph-set as combined_full,
	// kept as a distinct artifact name for consumers that diff the two.
	ArtifactCombinedInternal Artifact = "combined_internal"
	// ArtifactCombinedWanted is combined_internal after the filter chain.
	ArtifactCombinedWanted Artifact = "combined_wanted"
)

// Artifacts lists every artifact in export order.
func Artifacts() []Artifact {
	return []Artifact{
		ArtifactMerged,
		ArtifactCombinedFull,
		ArtifactCombinedInternal,
		ArtifactCombinedWanted,
	}
}

// Quads assembles the quads of one artifact. combined_wanted runs the filter
// chain; all artifacts are pure reads, leaving the store untouched.
func (r *Result) Quads(a Artifact, chain *rdffilter.Chain) ([]rdf.Quad, error) {
	switch a {
	case ArtifactMerged:
		return r.graphQuads(r.Merged.AllGraphNames())
	case ArtifactCombinedFull, ArtifactCombinedInternal:
		return r.combinedQuads()
	case ArtifactCombinedWanted:
		combined, err := r.combinedQuads()
		if err != nil {
			return nil, err
		}
		if chain == nil {
			chain = rdffilter.NewChain(nil)
		}
		wanted, _ := chain.Apply(combined)
		return wanted, nil
	default:
		return nil, fmt.Errorf("unknown artifact %q", a)
	}
}

func (r *Result) combinedQuads() ([]rdf.Quad, error) {
	names := append(append([]rdf.Term{},
		r.Merged.GraphNames(store.CategoryLocal)...),
		GraphFullOWL, GraphHeuristic)
	return r.graphQuads(names)
}

func (r *Result) graphQuads(names []rdf.Term) ([]rdf.Quad, error) {
	v := store.NewReadOnlyView(r.Store, names)
	return v.Quads(rdf.QuadPattern{})
}

// WantedSource loads combined_wanted into a fresh store so queries can run
// against exactly the filtered result.
func (r *Result) WantedSource(chain *rdffilter.Chain) (store.Source, error) {
	quads, err := r.Quads(ArtifactCombinedWanted, chain)
	if err != nil {
		return nil, err
	}
	st := store.New()
	if _, err := st.BulkAdd(quads); err != nil {
		return nil, err
	}
	return st, nil
}
