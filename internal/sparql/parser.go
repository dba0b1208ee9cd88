package sparql

import (
	"fmt"
	"strings"

	"github.com/robertmuil/pythinfer/pkg/rdf"
	"github.com/robertmuil/pythinfer/pkg/rdf/vocab"
)

// Parse parses one SELECT, CONSTRUCT or ASK query. The source name is
// attached to errors for diagnostics.
func Parse(query, source string) (*Query, error) {
	p := &qparser{
		lex:    newSparqlLexer(query),
		source: source,
		q: &Query{
			Prefixes: make(map[string]string),
			Limit:    -1,
		},
	}
	if err := p.advance(); err != nil {
		return nil, p.wrap(err)
	}
	if err := p.parseQuery(); err != nil {
		return nil, p.wrap(err)
	}
	return p.q, nil
}

type qparser struct {
	lex    *sparqlLexer
	source string
	tok    tok
	q      *Query
}

func (p *qparser) wrap(err error) error {
	if err == nil {
		return nil
	}
	if qe, ok := err.(*Error); ok {
		qe.Source = p.source
		return qe
	}
	return &Error{Source: p.source, Line: p.tok.line, Col: p.tok.col, Msg: err.Error()}
}

func (p *qparser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *qparser) errorf(format string, args ...any) error {
	return &Error{Line: p.tok.line, Col: p.tok.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *qparser) expectKeyword(kw string) error {
	if p.tok.kind != tKeyword || p.tok.val != kw {
		return p.errorf("expected %s", kw)
	}
	return p.advance()
}

func (p *qparser) parseQuery() error {
	// Prologue.
	for p.tok.kind == tKeyword && (p.tok.val == "PREFIX" || p.tok.val == "BASE") {
		if p.tok.val == "BASE" {
			if err := p.advance(); err != nil {
				return err
			}
			if p.tok.kind != tIRIRef {
				return p.errorf("expected IRI after BASE")
			}
			if err := p.advance(); err != nil {
				return err
			}
			continue
		}
		if err := p.parsePrefix(); err != nil {
			return err
		}
	}

	if p.tok.kind != tKeyword {
		return p.errorf("expected SELECT, CONSTRUCT or ASK")
	}
	switch p.tok.val {
	case "SELECT":
		return p.parseSelect()
	case "CONSTRUCT":
		return p.parseConstruct()
	case "ASK":
		return p.parseAsk()
	default:
		return p.errorf("unsupported query form %s", p.tok.val)
	}
}

func (p *qparser) parsePrefix() error {
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok.kind != tPName || !strings.HasSuffix(p.tok.val, ":") {
		return p.errorf("expected prefix name ending in ':'")
	}
	name := strings.TrimSuffix(p.tok.val, ":")
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok.kind != tIRIRef {
		return p.errorf("expected namespace IRI")
	}
	p.q.Prefixes[name] = p.tok.val
	return p.advance()
}

func (p *qparser) parseSelect() error {
	p.q.Kind = KindSelect
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok.kind == tKeyword && p.tok.val == "DISTINCT" {
		p.q.Distinct = true
		if err := p.advance(); err != nil {
			return err
		}
	}
	switch {
	case p.tok.kind == tStar:
		if err := p.advance(); err != nil {
			return err
		}
	case p.tok.kind == tVar:
		for p.tok.kind == tVar {
			p.q.Vars = append(p.q.Vars, p.tok.val)
			if err := p.advance(); err != nil {
				return err
			}
		}
	default:
		return p.errorf("expected projection variables or '*'")
	}
	if err := p.parseWhere(); err != nil {
		return err
	}
	return p.parseModifiers()
}

func (p *qparser) parseConstruct() error {
	p.q.Kind = KindConstruct
	if err := p.advance(); err != nil {
		return err
	}
	tmpl, err := p.parsePatternBlock()
	if err != nil {
		return err
	}
	p.q.Template = tmpl
	if err := p.parseWhere(); err != nil {
		return err
	}
	return p.parseModifiers()
}

func (p *qparser) parseAsk() error {
	p.q.Kind = KindAsk
	if err := p.advance(); err != nil {
		return err
	}
	return p.parseWhere()
}

func (p *qparser) parseWhere() error {
	// WHERE keyword is optional before the group.
	if p.tok.kind == tKeyword && p.tok.val == "WHERE" {
		if err := p.advance(); err != nil {
			return err
		}
	}
	patterns, filters, err := p.parseGroup()
	if err != nil {
		return err
	}
	p.q.Where = patterns
	p.q.Filters = filters
	return nil
}

func (p *qparser) parseModifiers() error {
	for p.tok.kind == tKeyword && p.tok.val == "LIMIT" {
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.kind != tInteger {
			return p.errorf("expected integer after LIMIT")
		}
		var n int
		if _, err := fmt.Sscanf(p.tok.val, "%d", &n); err != nil {
			return p.errorf("bad LIMIT %q", p.tok.val)
		}
		p.q.Limit = n
		if err := p.advance(); err != nil {
			return err
		}
	}
	if p.tok.kind != tEOF {
		return p.errorf("unexpected trailing %v", p.tok.val)
	}
	return nil
}

// parsePatternBlock parses a braced template with no filters (CONSTRUCT).
func (p *qparser) parsePatternBlock() ([]TriplePattern, error) {
	patterns, filters, err := p.parseGroup()
	if err != nil {
		return nil, err
	}
	if len(filters) > 0 {
		return nil, p.errorf("FILTER not allowed in CONSTRUCT template")
	}
	return patterns, nil
}

// parseGroup parses "{ triples and filters }".
func (p *qparser) parseGroup() ([]TriplePattern, []Expr, error) {
	if p.tok.kind != tLBrace {
		return nil, nil, p.errorf("expected '{'")
	}
	if err := p.advance(); err != nil {
		return nil, nil, err
	}
	var patterns []TriplePattern
	var filters []Expr
	for p.tok.kind != tRBrace {
		if p.tok.kind == tEOF {
			return nil, nil, p.errorf("unterminated group")
		}
		if p.tok.kind == tKeyword && p.tok.val == "FILTER" {
			if err := p.advance(); err != nil {
				return nil, nil, err
			}
			e, err := p.parseBracketedExpr()
			if err != nil {
				return nil, nil, err
			}
			filters = append(filters, e)
			if p.tok.kind == tDot {
				if err := p.advance(); err != nil {
					return nil, nil, err
				}
			}
			continue
		}
		ps, err := p.parseTriplesSameSubject()
		if err != nil {
			return nil, nil, err
		}
		patterns = append(patterns, ps...)
		if p.tok.kind == tDot {
			if err := p.advance(); err != nil {
				return nil, nil, err
			}
		}
	}
	return patterns, filters, p.advance()
}

func (p *qparser) parseTriplesSameSubject() ([]TriplePattern, error) {
	subj, err := p.parseNode(false)
	if err != nil {
		return nil, err
	}
	var out []TriplePattern
	for {
		pred, err := p.parseVerbNode()
		if err != nil {
			return nil, err
		}
		for {
			obj, err := p.parseNode(true)
			if err != nil {
				return nil, err
			}
			out = append(out, TriplePattern{S: subj, P: pred, O: obj})
			if p.tok.kind != tComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if p.tok.kind != tSemicolon {
			return out, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind == tDot || p.tok.kind == tRBrace {
			return out, nil
		}
	}
}

func (p *qparser) parseVerbNode() (Node, error) {
	if p.tok.kind == tA {
		return Node{Term: vocab.RDFType}, p.advance()
	}
	return p.parseNode(false)
}

// parseNode parses a variable, IRI, blank node or (when literalOK) literal.
func (p *qparser) parseNode(literalOK bool) (Node, error) {
	switch p.tok.kind {
	case tVar:
		n := Node{Var: p.tok.val}
		return n, p.advance()
	case tIRIRef:
		n := Node{Term: rdf.IRI(p.tok.val)}
		return n, p.advance()
	case tPName:
		iri, err := p.expandPName(p.tok.val)
		if err != nil {
			return Node{}, err
		}
		return Node{Term: iri}, p.advance()
	case tBlank:
		n := Node{Term: rdf.BlankNode(p.tok.val)}
		return n, p.advance()
	case tString, tInteger, tDecimal, tDouble:
		if !literalOK {
			return Node{}, p.errorf("literal not allowed here")
		}
		return p.parseLiteralNode()
	case tKeyword:
		if literalOK && (p.tok.val == "TRUE" || p.tok.val == "FALSE") {
			n := Node{Term: rdf.NewBoolean(p.tok.val == "TRUE")}
			return n, p.advance()
		}
		return Node{}, p.errorf("unexpected keyword %s", p.tok.val)
	default:
		return Node{}, p.errorf("expected term or variable")
	}
}

func (p *qparser) parseLiteralNode() (Node, error) {
	switch p.tok.kind {
	case tInteger:
		n := Node{Term: rdf.NewTypedLiteral(p.tok.val, rdf.XSDInteger)}
		return n, p.advance()
	case tDecimal:
		n := Node{Term: rdf.NewTypedLiteral(p.tok.val, rdf.XSDDecimal)}
		return n, p.advance()
	case tDouble:
		n := Node{Term: rdf.NewTypedLiteral(p.tok.val, rdf.XSDDouble)}
		return n, p.advance()
	}
	lex := p.tok.val
	if err := p.advance(); err != nil {
		return Node{}, err
	}
	switch p.tok.kind {
	case tLangTag:
		n := Node{Term: rdf.NewLangLiteral(lex, p.tok.val)}
		return n, p.advance()
	case tDoubleCaret:
		if err := p.advance(); err != nil {
			return Node{}, err
		}
		var dt rdf.IRI
		switch p.tok.kind {
		case tIRIRef:
			dt = rdf.IRI(p.tok.val)
		case tPName:
			iri, err := p.expandPName(p.tok.val)
			if err != nil {
				return Node{}, err
			}
			dt = iri
		default:
			return Node{}, p.errorf("expected datatype IRI")
		}
		return Node{Term: rdf.NewTypedLiteral(lex, dt)}, p.advance()
	default:
		return Node{Term: rdf.NewLiteral(lex)}, nil
	}
}

func (p *qparser) expandPName(pname string) (rdf.IRI, error) {
	idx := strings.Index(pname, ":")
	prefix, local := pname[:idx], pname[idx+1:]
	ns, ok := p.q.Prefixes[prefix]
	if !ok {
		return "", p.errorf("unknown prefix %q", prefix)
	}
	return rdf.IRI(ns + local), nil
}

// Expression parsing: precedence || < && < comparison < unary.

func (p *qparser) parseBracketedExpr() (Expr, error) {
	if p.tok.kind != tLParen {
		// FILTER may also be a bare function call like FILTER BOUND(?x).
		return p.parseUnary()
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tRParen {
		return nil, p.errorf("expected ')'")
	}
	return e, p.advance()
}

func (p *qparser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tOp && p.tok.val == "||" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = boolExpr{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *qparser) parseAnd() (Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tOp && p.tok.val == "&&" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = boolExpr{op: "&&", left: left, right: right}
	}
	return left, nil
}

func (p *qparser) parseComparison() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tOp {
		switch p.tok.val {
		case "=", "!=", "<", "<=", ">", ">=":
			op := p.tok.val
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return cmpExpr{op: op, left: left, right: right}, nil
		}
	}
	return left, nil
}

func (p *qparser) parseUnary() (Expr, error) {
	if p.tok.kind == tOp && p.tok.val == "!" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notExpr{inner: inner}, nil
	}
	if p.tok.kind == tLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tRParen {
			return nil, p.errorf("expected ')'")
		}
		return e, p.advance()
	}
	if p.tok.kind == tKeyword {
		name := p.tok.val
		switch name {
		case "BOUND", "REGEX", "STR", "ISIRI", "ISURI", "ISBLANK", "ISLITERAL":
			return p.parseCall(name)
		case "TRUE":
			return nodeExpr{node: Node{Term: rdf.NewBoolean(true)}}, p.advance()
		case "FALSE":
			return nodeExpr{node: Node{Term: rdf.NewBoolean(false)}}, p.advance()
		}
		return nil, p.errorf("unexpected keyword %s in expression", name)
	}
	n, err := p.parseNode(true)
	if err != nil {
		return nil, err
	}
	return nodeExpr{node: n}, nil
}

func (p *qparser) parseCall(name string) (Expr, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind != tLParen {
		return nil, p.errorf("expected '(' after %s", name)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args []Expr
	for p.tok.kind != tRParen {
		a, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.tok.kind == tComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if len(args) == 0 {
		return nil, p.errorf("%s requires arguments", name)
	}
	return callExpr{name: name, args: args}, p.advance()
}
