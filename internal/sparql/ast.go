// Package sparql implements the SPARQL subset pythinfer needs: CONSTRUCT for
// declarative heuristics, and SELECT / ASK / CONSTRUCT for the query verb.
// Basic graph patterns with FILTER expressions, DISTINCT and LIMIT; no
// OPTIONAL, UNION, property paths or aggregation.
package sparql

import (
	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// QueryKind discriminates the query forms.
type QueryKind int

const (
	KindSelect QueryKind = iota
	KindConstruct
	KindAsk
)

func (k QueryKind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindConstruct:
		return "CONSTRUCT"
	case KindAsk:
		return "ASK"
	default:
		return "?"
	}
}

// Node is a pattern position: either a concrete term or a variable. A blank
// node in a CONSTRUCT template is carried as a term and re-minted per
// solution at instantiation time.
type Node struct {
	Term rdf.Term
	Var  string
}

// IsVar reports whether the node is a variable.
func (n Node) IsVar() bool { return n.Var != "" }

// TriplePattern is one pattern of a basic graph pattern or template.
type TriplePattern struct {
	S, P, O Node
}

// Query is a parsed query.
type Query struct {
	Kind     QueryKind
	Prefixes map[string]string

	// Vars is the SELECT projection; empty means "*".
	Vars     []string
	Distinct bool

	// Template is the CONSTRUCT template.
	Template []TriplePattern

	Where   []TriplePattern
	Filters []Expr

	// Limit caps SELECT solutions; <0 means unlimited.
	Limit int
}

// Binding maps variable names to terms.
type Binding map[string]rdf.Term

// clone copies the binding for extension down a search branch.
func (b Binding) clone() Binding {
	out := make(Binding, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	return out
}

// resolve returns the concrete term for a node under the binding, or nil for
// an unbound variable.
func (b Binding) resolve(n Node) rdf.Term {
	if n.IsVar() {
		return b[n.Var]
	}
	return n.Term
}
