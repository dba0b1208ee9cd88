package sparql

import (
	"fmt"

	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// Solve evaluates the query's basic graph pattern against a source and
// returns the solutions surviving the filters. Pattern order is the join
// order; a nested-loop join is plenty at project-data scale.
func Solve(q *Query, src store.Source) ([]Binding, error) {
	var solutions []Binding
	err := solveBGP(q.Where, 0, Binding{}, src, func(b Binding) error {
		for _, f := range q.Filters {
			v, err := f.Eval(b)
			if err != nil {
				// Type errors and unbound variables reject the solution.
				return nil
			}
			ok, err := ebv(v)
			if err != nil || !ok {
				return nil
			}
		}
		solutions = append(solutions, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return solutions, nil
}

func solveBGP(patterns []TriplePattern, idx int, b Binding, src store.Source,
	yield func(Binding) error) error {
	if idx == len(patterns) {
		return yield(b)
	}
	pat := patterns[idx]
	query := rdf.Pattern{
		Subject:   b.resolve(pat.S),
		Predicate: b.resolve(pat.P),
		Object:    b.resolve(pat.O),
	}
	triples, err := src.Triples(query)
	if err != nil {
		return err
	}
	for _, t := range triples {
		next := extend(b, pat, t)
		if next == nil {
			continue
		}
		if err := solveBGP(patterns, idx+1, next, src, yield); err != nil {
			return err
		}
	}
	return nil
}

// extend unifies a pattern with a concrete triple, returning nil when the
// triple is inconsistent with the current binding.
func extend(b Binding, pat TriplePattern, t rdf.Triple) Binding {
	out := b.clone()
	for _, pair := range []struct {
		node Node
		term rdf.Term
	}{
		{pat.S, t.Subject}, {pat.P, t.Predicate}, {pat.O, t.Object},
	} {
		if !pair.node.IsVar() {
			continue
		}
		if bound, ok := out[pair.node.Var]; ok {
			if bound != pair.term {
				return nil
			}
			continue
		}
		out[pair.node.Var] = pair.term
	}
	return out
}

// SelectResult is a solved SELECT: column order plus rows.
type SelectResult struct {
	Vars []string
	Rows []Binding
}

// Select evaluates a SELECT query.
func Select(q *Query, src store.Source) (*SelectResult, error) {
	if q.Kind != KindSelect {
		return nil, fmt.Errorf("not a SELECT query")
	}
	solutions, err := Solve(q, src)
	if err != nil {
		return nil, err
	}
	vars := q.Vars
	if len(vars) == 0 {
		vars = collectVars(q.Where)
	}
	rows := solutions
	if q.Distinct {
		rows = dedupeRows(rows, vars)
	}
	if q.Limit >= 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return &SelectResult{Vars: vars, Rows: rows}, nil
}

// Ask evaluates an ASK query.
func Ask(q *Query, src store.Source) (bool, error) {
	if q.Kind != KindAsk {
		return false, fmt.Errorf("not an ASK query")
	}
	solutions, err := Solve(q, src)
	if err != nil {
		return false, err
	}
	return len(solutions) > 0, nil
}

// Construct evaluates a CONSTRUCT query, instantiating the template once per
// solution. Template blank nodes are re-minted per solution via mint.
// Instantiations that would be invalid RDF (unbound variable, literal
// subject) are skipped, not errors.
func Construct(q *Query, src store.Source, mint func() rdf.BlankNode) ([]rdf.Triple, error) {
	if q.Kind != KindConstruct {
		return nil, fmt.Errorf("not a CONSTRUCT query")
	}
	solutions, err := Solve(q, src)
	if err != nil {
		return nil, err
	}
	seen := make(map[rdf.Triple]struct{})
	var out []rdf.Triple
	for _, b := range solutions {
		blanks := make(map[rdf.BlankNode]rdf.BlankNode)
		for _, pat := range q.Template {
			t := rdf.Triple{
				Subject:   instantiate(pat.S, b, blanks, mint),
				Predicate: instantiate(pat.P, b, blanks, mint),
				Object:    instantiate(pat.O, b, blanks, mint),
			}
			if !t.Valid() {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out, nil
}

func instantiate(n Node, b Binding, blanks map[rdf.BlankNode]rdf.BlankNode,
	mint func() rdf.BlankNode) rdf.Term {
	if n.IsVar() {
		return b[n.Var]
	}
	if bn, ok := n.Term.(rdf.BlankNode); ok && mint != nil {
		fresh, ok2 := blanks[bn]
		if !ok2 {
			fresh = mint()
			blanks[bn] = fresh
		}
		return fresh
	}
	return n.Term
}

func collectVars(patterns []TriplePattern) []string {
	seen := make(map[string]bool)
	var out []string
	for _, pat := range patterns {
		for _, n := range []Node{pat.S, pat.P, pat.O} {
			if n.IsVar() && !seen[n.Var] {
				seen[n.Var] = true
				out = append(out, n.Var)
			}
		}
	}
	return out
}

func dedupeRows(rows []Binding, vars []string) []Binding {
	seen := make(map[string]bool)
	out := rows[:0:0]
	for _, row := range rows {
		key := ""
		for _, v := range vars {
			if t := row[v]; t != nil {
				key += t.String()
			}
			key += "\x00"
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}
