package sparql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// Expr is a FILTER expression node. Evaluation follows SPARQL's effective
// boolean value rules loosely: type errors make the enclosing filter reject
// the solution rather than failing the query.
type Expr interface {
	Eval(b Binding) (rdf.Term, error)
}

// errUnbound marks evaluation over an unbound variable; filters treat it as
// a rejected solution, BOUND() turns it into false.
var errUnbound = fmt.Errorf("unbound variable")

// nodeExpr is a term or variable operand.
type nodeExpr struct {
	node Node
}

func (e nodeExpr) Eval(b Binding) (rdf.Term, error) {
	t := b.resolve(e.node)
	if t == nil {
		return nil, errUnbound
	}
	return t, nil
}

// notExpr is logical negation.
type notExpr struct {
	inner Expr
}

func (e notExpr) Eval(b Binding) (rdf.Term, error) {
	v, err := e.inner.Eval(b)
	if err != nil {
		return nil, err
	}
	bv, err := ebv(v)
	if err != nil {
		return nil, err
	}
	return rdf.NewBoolean(!bv), nil
}

// boolExpr is && or ||.
type boolExpr struct {
	op          string
	left, right Expr
}

func (e boolExpr) Eval(b Binding) (rdf.Term, error) {
	lv, err := e.left.Eval(b)
	if err != nil {
		return nil, err
	}
	lb, err := ebv(lv)
	if err != nil {
		return nil, err
	}
	if e.op == "&&" && !lb {
		return rdf.NewBoolean(false), nil
	}
	if e.op == "||" && lb {
		return rdf.NewBoolean(true), nil
	}
	rv, err := e.right.Eval(b)
	if err != nil {
		return nil, err
	}
	rb, err := ebv(rv)
	if err != nil {
		return nil, err
	}
	return rdf.NewBoolean(rb), nil
}

// cmpExpr is a comparison.
type cmpExpr struct {
	op          string
	left, right Expr
}

func (e cmpExpr) Eval(b Binding) (rdf.Term, error) {
	lv, err := e.left.Eval(b)
	if err != nil {
		return nil, err
	}
	rv, err := e.right.Eval(b)
	if err != nil {
		return nil, err
	}
	res, err := compare(lv, rv, e.op)
	if err != nil {
		return nil, err
	}
	return rdf.NewBoolean(res), nil
}

// callExpr is a builtin function call.
type callExpr struct {
	name string
	args []Expr
}

func (e callExpr) Eval(b Binding) (rdf.Term, error) {
	switch e.name {
	case "BOUND":
		_, err := e.args[0].Eval(b)
		if err == errUnbound {
			return rdf.NewBoolean(false), nil
		}
		if err != nil {
			return nil, err
		}
		return rdf.NewBoolean(true), nil
	case "ISIRI", "ISURI":
		return e.kindCheck(b, rdf.KindIRI)
	case "ISBLANK":
		return e.kindCheck(b, rdf.KindBlank)
	case "ISLITERAL":
		return e.kindCheck(b, rdf.KindLiteral)
	case "STR":
		v, err := e.args[0].Eval(b)
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteral(lexicalForm(v)), nil
	case "REGEX":
		v, err := e.args[0].Eval(b)
		if err != nil {
			return nil, err
		}
		pat, err := e.args[1].Eval(b)
		if err != nil {
			return nil, err
		}
		flags := ""
		if len(e.args) > 2 {
			fv, err := e.args[2].Eval(b)
			if err != nil {
				return nil, err
			}
			flags = lexicalForm(fv)
		}
		expr := lexicalForm(pat)
		if strings.Contains(flags, "i") {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("bad REGEX pattern: %w", err)
		}
		return rdf.NewBoolean(re.MatchString(lexicalForm(v))), nil
	default:
		return nil, fmt.Errorf("unknown function %s", e.name)
	}
}

func (e callExpr) kindCheck(b Binding, kind rdf.TermKind) (rdf.Term, error) {
	v, err := e.args[0].Eval(b)
	if err != nil {
		return nil, err
	}
	return rdf.NewBoolean(v.Kind() == kind), nil
}

// ebv computes the effective boolean value.
func ebv(t rdf.Term) (bool, error) {
	lit, ok := t.(rdf.Literal)
	if !ok {
		return false, fmt.Errorf("no boolean value for %s", t)
	}
	if lit.Datatype == rdf.XSDBoolean {
		return lit.Lexical == "true" || lit.Lexical == "1", nil
	}
	if n, ok := lit.Numeric(); ok {
		return n != 0, nil
	}
	return lit.Lexical != "", nil
}

func lexicalForm(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.IRI:
		return string(v)
	case rdf.Literal:
		return v.Lexical
	case rdf.BlankNode:
		return string(v)
	default:
		return t.String()
	}
}

// compare implements =, !=, <, <=, >, >= with numeric coercion where both
// operands are numeric literals, falling back to string comparison of
// lexical forms for order operators and term equality for (in)equality.
func compare(a, c rdf.Term, op string) (bool, error) {
	if op == "=" || op == "!=" {
		eq := termEqual(a, c)
		if op == "=" {
			return eq, nil
		}
		return !eq, nil
	}

	la, aok := a.(rdf.Literal)
	lc, cok := c.(rdf.Literal)
	if aok && cok {
		if na, ok1 := la.Numeric(); ok1 {
			if nc, ok2 := lc.Numeric(); ok2 {
				return ordered(na, nc, op)
			}
		}
		switch op {
		case "<":
			return la.Lexical < lc.Lexical, nil
		case "<=":
			return la.Lexical <= lc.Lexical, nil
		case ">":
			return la.Lexical > lc.Lexical, nil
		case ">=":
			return la.Lexical >= lc.Lexical, nil
		}
	}
	return false, fmt.Errorf("cannot order %s and %s", a, c)
}

func ordered(a, c float64, op string) (bool, error) {
	switch op {
	case "<":
		return a < c, nil
	case "<=":
		return a <= c, nil
	case ">":
		return a > c, nil
	case ">=":
		return a >= c, nil
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}

// termEqual treats numerically equal literals as equal, otherwise falls back
// to structural equality.
func termEqual(a, c rdf.Term) bool {
	if a == c {
		return true
	}
	la, aok := a.(rdf.Literal)
	lc, cok := c.(rdf.Literal)
	if aok && cok {
		if na, ok1 := la.Numeric(); ok1 {
			if nc, ok2 := lc.Numeric(); ok2 {
				return na == nc
			}
		}
	}
	return false
}
