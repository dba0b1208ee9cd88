package heuristic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robertmuil/pythinfer/internal/sparql"
	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// SPARQLRule is a CONSTRUCT query applied as a heuristic. The query is
// parsed once at load time; evaluation happens per round.
type SPARQLRule struct {
	name  string
	query *sparql.Query
}

// LoadSPARQLFile loads one .rq CONSTRUCT file. The rule's id is the file
// stem.
func LoadSPARQLFile(path string) (*SPARQLRule, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading heuristic %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	q, err := sparql.Parse(string(content), path)
	if err != nil {
		return nil, err
	}
	if q.Kind != sparql.KindConstruct {
		return nil, fmt.Errorf("heuristic %s: expected CONSTRUCT, got %s", path, q.Kind)
	}
	return &SPARQLRule{name: name, query: q}, nil
}

// ID implements Heuristic.
func (r *SPARQLRule) ID() string { return r.name }

// Apply implements Heuristic.
func (r *SPARQLRule) Apply(ctx context.Context, v *store.View, mint func() rdf.BlankNode) ([]rdf.Triple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sparql.Construct(r.query, v, mint)
}
