package heuristic

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.starlark.net/starlark"

	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// StarlarkRule is a procedural heuristic scripted in Starlark. The file is
// executed once at load time and must export a function
//
//	def infer(view): ...
//
// which is called per round with a read-only view object and returns a list
// of (subject, predicate, object) tuples. Term constructors iri(), literal()
// and typed_literal() are predeclared; fresh blank nodes come from
// view.new_bnode().
type StarlarkRule struct {
	name  string
	infer starlark.Callable
}

// LoadStarlarkFile loads and executes one .star rule file.
func LoadStarlarkFile(path string) (*StarlarkRule, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	thread := &starlark.Thread{
		Name:  "load:" + name,
		Print: func(_ *starlark.Thread, _ string) {},
	}
	globals, err := starlark.ExecFile(thread, path, nil, predeclared())
	if err != nil {
		return nil, fmt.Errorf("loading heuristic %s: %w", path, err)
	}
	fn, ok := globals["infer"]
	if !ok {
		return nil, fmt.Errorf("heuristic %s does not define infer(view)", path)
	}
	callable, ok := fn.(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("heuristic %s: infer is not callable", path)
	}
	return &StarlarkRule{name: name, infer: callable}, nil
}

// ID implements Heuristic.
func (r *StarlarkRule) ID() string { return r.name }

// Apply implements Heuristic.
func (r *StarlarkRule) Apply(ctx context.Context, v *store.View, mint func() rdf.BlankNode) ([]rdf.Triple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	thread := &starlark.Thread{
		Name:  "apply:" + r.name,
		Print: func(_ *starlark.Thread, _ string) {},
	}
	result, err := starlark.Call(thread, r.infer, starlark.Tuple{&viewValue{view: v, mint: mint}}, nil)
	if err != nil {
		return nil, fmt.Errorf("heuristic %s: %w", r.name, err)
	}
	return triplesFromStarlark(r.name, result)
}

func predeclared() starlark.StringDict {
	return starlark.StringDict{
		"iri": starlark.NewBuiltin("iri", func(_ *starlark.Thread, _ *starlark.Builtin,
			args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var s string
			if err := starlark.UnpackPositionalArgs("iri", args, kwargs, 1, &s); err != nil {
				return nil, err
			}
			return &termValue{term: rdf.IRI(s)}, nil
		}),
		"literal": starlark.NewBuiltin("literal", func(_ *starlark.Thread, _ *starlark.Builtin,
			args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var s string
			if err := starlark.UnpackPositionalArgs("literal", args, kwargs, 1, &s); err != nil {
				return nil, err
			}
			return &termValue{term: rdf.NewLiteral(s)}, nil
		}),
		"typed_literal": starlark.NewBuiltin("typed_literal", func(_ *starlark.Thread, _ *starlark.Builtin,
			args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var s, dt string
			if err := starlark.UnpackPositionalArgs("typed_literal", args, kwargs, 2, &s, &dt); err != nil {
				return nil, err
			}
			return &termValue{term: rdf.NewTypedLiteral(s, rdf.IRI(dt))}, nil
		}),
	}
}

// termValue wraps an rdf.Term as a Starlark value.
type termValue struct {
	term rdf.Term
}

func (t *termValue) String() string        { return t.term.String() }
func (t *termValue) Type() string          { return "rdf_term" }
func (t *termValue) Freeze()               {}
func (t *termValue) Truth() starlark.Bool  { return starlark.True }
func (t *termValue) Hash() (uint32, error) { return starlark.String(t.term.String()).Hash() }

// viewValue wraps a read-only store view for rule scripts.
type viewValue struct {
	view *store.View
	mint func() rdf.BlankNode
}

func (v *viewValue) String() string        { return "rdf_view" }
func (v *viewValue) Type() string          { return "rdf_view" }
func (v *viewValue) Freeze()               {}
func (v *viewValue) Truth() starlark.Bool  { return starlark.True }
func (v *viewValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: rdf_view") }

// AttrNames implements starlark.HasAttrs.
func (v *viewValue) AttrNames() []string {
	names := []string{"triples", "new_bnode"}
	sort.Strings(names)
	return names
}

// Attr implements starlark.HasAttrs.
func (v *viewValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "triples":
		return starlark.NewBuiltin("triples", v.triplesBuiltin), nil
	case "new_bnode":
		return starlark.NewBuiltin("new_bnode", func(_ *starlark.Thread, _ *starlark.Builtin,
			args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs("new_bnode", args, kwargs, 0); err != nil {
				return nil, err
			}
			return &termValue{term: v.mint()}, nil
		}), nil
	default:
		return nil, nil
	}
}

// triplesBuiltin is view.triples(s=None, p=None, o=None).
func (v *viewValue) triplesBuiltin(_ *starlark.Thread, _ *starlark.Builtin,
	args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s, p, o starlark.Value
	if err := starlark.UnpackArgs("triples", args, kwargs,
		"s?", &s, "p?", &p, "o?", &o); err != nil {
		return nil, err
	}
	pattern := rdf.Pattern{}
	var err error
	if pattern.Subject, err = patternTerm(s); err != nil {
		return nil, err
	}
	if pattern.Predicate, err = patternTerm(p); err != nil {
		return nil, err
	}
	if pattern.Object, err = patternTerm(o); err != nil {
		return nil, err
	}
	triples, err := v.view.Triples(pattern)
	if err != nil {
		return nil, err
	}
	out := make([]starlark.Value, len(triples))
	for i, t := range triples {
		out[i] = starlark.Tuple{
			&termValue{term: t.Subject},
			&termValue{term: t.Predicate},
			&termValue{term: t.Object},
		}
	}
	return starlark.NewList(out), nil
}

func patternTerm(v starlark.Value) (rdf.Term, error) {
	switch val := v.(type) {
	case nil, starlark.NoneType:
		return nil, nil
	case *termValue:
		return val.term, nil
	case starlark.String:
		return rdf.IRI(val), nil
	default:
		return nil, fmt.Errorf("expected rdf_term, string or None, got %s", v.Type())
	}
}

// triplesFromStarlark converts a rule's return value to triples.
func triplesFromStarlark(name string, v starlark.Value) ([]rdf.Triple, error) {
	iterable, ok := v.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("heuristic %s: infer must return a list of triples, got %s",
			name, v.Type())
	}
	iter := iterable.Iterate()
	defer iter.Done()
	var out []rdf.Triple
	var item starlark.Value
	for iter.Next(&item) {
		tuple, ok := item.(starlark.Tuple)
		if !ok || tuple.Len() != 3 {
			return nil, fmt.Errorf("heuristic %s: each result must be a 3-tuple", name)
		}
		var terms [3]rdf.Term
		for i := 0; i < 3; i++ {
			t, err := patternTerm(tuple.Index(i))
			if err != nil || t == nil {
				return nil, fmt.Errorf("heuristic %s: bad term in result: %v", name, err)
			}
			terms[i] = t
		}
		out = append(out, rdf.Triple{Subject: terms[0], Predicate: terms[1], Object: terms[2]})
	}
	return out, nil
}
