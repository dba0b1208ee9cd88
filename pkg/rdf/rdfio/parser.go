// Package rdfio parses and serializes the RDF formats pythinfer exchanges:
// Turtle, TriG, N-Triples and N-Quads, both on the way in and on the way
// out. The parsers are hand-written recursive descent over a shared
// lexer; inputs are whole project files, read into memory.
package rdfio

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/robertmuil/pythinfer/pkg/rdf"
	"github.com/robertmuil/pythinfer/pkg/rdf/vocab"
)

// Format identifies an RDF serialization.
type Format string

const (
	FormatTurtle   Format = "ttl"
	FormatTriG     Format = "trig"
	FormatNTriples Format = "nt"
	FormatNQuads   Format = "nq"
)

// QuadCapable reports whether the format preserves graph names.
func (f Format) QuadCapable() bool {
	return f == FormatTriG || f == FormatNQuads
}

// DetectFormat infers the serialization from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl", ".turtle":
		return FormatTurtle, nil
	case ".trig":
		return FormatTriG, nil
	case ".nt", ".ntriples":
		return FormatNTriples, nil
	case ".nq", ".nquads":
		return FormatNQuads, nil
	default:
		return "", fmt.Errorf("cannot infer RDF format from %q", path)
	}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "ttl", "turtle":
		return FormatTurtle, nil
	case "trig":
		return FormatTriG, nil
	case "nt", "ntriples":
		return FormatNTriples, nil
	case "nq", "nquads":
		return FormatNQuads, nil
	default:
		return "", fmt.Errorf("unknown RDF format %q", name)
	}
}

// ParseError is a fatal per-file parse failure, citing path, format and
// position.
type ParseError struct {
	Path   string
	Format Format
	Line   int
	Col    int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s (%s) %d:%d: %s", e.Path, e.Format, e.Line, e.Col, e.Msg)
}

// Options control parsing.
type Options struct {
	// MintBlank maps a document-local blank node label to a node, called once
	// per distinct label. This is how the store keeps blank nodes from
	// different files apart. Defaults to using the label as-is.
	MintBlank func(label string) rdf.BlankNode
	// Base is the base IRI for resolving relative references.
	Base string
	// Path is attached to errors for diagnostics.
	Path string
}

// Parse reads quads from r in the given format. Turtle and N-Triples
// statements come back with a nil Graph; the caller assigns the named graph.
func Parse(r io.Reader, format Format, opts Options) ([]rdf.Quad, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", opts.Path, err)
	}
	p := &parser{
		lex:      newLexer(string(data)),
		format:   format,
		opts:     opts,
		prefixes: make(map[string]string),
		blanks:   make(map[string]rdf.BlankNode),
		base:     opts.Base,
	}
	if err := p.advance(); err != nil {
		return nil, p.wrap(err)
	}
	if err := p.parseDocument(); err != nil {
		return nil, p.wrap(err)
	}
	return p.quads, nil
}

// ParseFile parses one file, inferring the format from its extension.
func ParseFile(path string, opts Options) ([]rdf.Quad, Format, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, format, err
	}
	defer f.Close()
	if opts.Path == "" {
		opts.Path = path
	}
	quads, err := Parse(f, format, opts)
	return quads, format, err
}

type parser struct {
	lex      *lexer
	format   Format
	opts     Options
	tok      token
	prefixes map[string]string
	blanks   map[string]rdf.BlankNode
	base     string
	genSeq   int
	graph    rdf.Term // current TriG graph; nil outside a graph block
	quads    []rdf.Quad
}

func (p *parser) wrap(err error) error {
	if err == nil {
		return nil
	}
	var pe *ParseError
	if ok := asParseError(err, &pe); ok {
		pe.Path = p.opts.Path
		pe.Format = p.format
		return pe
	}
	return &ParseError{Path: p.opts.Path, Format: p.format,
		Line: p.tok.line, Col: p.tok.col, Msg: err.Error()}
}

func asParseError(err error, target **ParseError) bool {
	pe, ok := err.(*ParseError)
	if ok {
		*target = pe
	}
	return ok
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.tok.line, Col: p.tok.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(typ tokenType) (token, error) {
	if p.tok.typ != typ {
		return token{}, p.errorf("expected %s, found %s", typ, p.tok.typ)
	}
	tok := p.tok
	return tok, p.advance()
}

func (p *parser) emit(s, pred, o rdf.Term) {
	p.quads = append(p.quads, rdf.Quad{
		Triple: rdf.Triple{Subject: s, Predicate: pred, Object: o},
		Graph:  p.graph,
	})
}

func (p *parser) parseDocument() error {
	lineBased := p.format == FormatNTriples || p.format == FormatNQuads
	for p.tok.typ != tokEOF {
		switch {
		case lineBased:
			if err := p.parseSimpleStatement(); err != nil {
				return err
			}
		case p.tok.typ == tokPrefixDir:
			if err := p.parsePrefixDirective(); err != nil {
				return err
			}
		case p.tok.typ == tokBaseDir:
			if err := p.parseBaseDirective(); err != nil {
				return err
			}
		case p.format == FormatTriG && (p.tok.typ == tokGraphDir || p.tok.typ == tokLBrace):
			if err := p.parseGraphBlock(); err != nil {
				return err
			}
		default:
			if p.format == FormatTriG &&
				(p.tok.typ == tokIRIRef || p.tok.typ == tokPName || p.tok.typ == tokBlank) {
				// "<name> { ... }" labels a graph without the GRAPH keyword.
				if _, err := p.tryLabeledGraphBlock(); err != nil {
					return err
				}
				continue
			}
			if err := p.parseTriplesStatement(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *parser) parsePrefixDirective() error {
	if err := p.advance(); err != nil {
		return err
	}
	name, err := p.expect(tokPName)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(name.val, ":") {
		return p.errorf("prefix declaration %q must end with ':'", name.val)
	}
	iri, err := p.expect(tokIRIRef)
	if err != nil {
		return err
	}
	p.prefixes[strings.TrimSuffix(name.val, ":")] = p.resolveIRI(iri.val)
	if p.tok.typ == tokDot {
		return p.advance()
	}
	return nil
}

func (p *parser) parseBaseDirective() error {
	if err := p.advance(); err != nil {
		return err
	}
	iri, err := p.expect(tokIRIRef)
	if err != nil {
		return err
	}
	p.base = p.resolveIRI(iri.val)
	if p.tok.typ == tokDot {
		return p.advance()
	}
	return nil
}

// parseGraphBlock parses "GRAPH <g> { ... }" or a bare "{ ... }" default
// block in TriG.
func (p *parser) parseGraphBlock() error {
	if p.tok.typ == tokGraphDir {
		if err := p.advance(); err != nil {
			return err
		}
		name, err := p.parseGraphName()
		if err != nil {
			return err
		}
		return p.parseBraceBlock(name)
	}
	return p.parseBraceBlock(nil)
}

// tryLabeledGraphBlock handles "<name> { ... }". When the term is not
// followed by '{' it was an ordinary subject, and the statement is parsed as
// such. Returns done=true when it consumed a statement either way.
func (p *parser) tryLabeledGraphBlock() (bool, error) {
	name, err := p.parseGraphName()
	if err != nil {
		return true, err
	}
	if p.tok.typ == tokLBrace {
		return true, p.parseBraceBlock(name)
	}
	// Ordinary triples statement whose subject we already consumed.
	if err := p.parsePredicateObjectList(name); err != nil {
		return true, err
	}
	_, err = p.expect(tokDot)
	return true, err
}

func (p *parser) parseGraphName() (rdf.Term, error) {
	switch p.tok.typ {
	case tokIRIRef:
		iri := rdf.IRI(p.resolveIRI(p.tok.val))
		return iri, p.advance()
	case tokPName:
		iri, err := p.expandPName(p.tok.val)
		if err != nil {
			return nil, err
		}
		return iri, p.advance()
	case tokBlank:
		b := p.mintBlank(p.tok.val)
		return b, p.advance()
	default:
		return nil, p.errorf("expected graph name, found %s", p.tok.typ)
	}
}

func (p *parser) parseBraceBlock(graph rdf.Term) error {
	if _, err := p.expect(tokLBrace); err != nil {
		return err
	}
	prev := p.graph
	p.graph = graph
	defer func() { p.graph = prev }()
	for p.tok.typ != tokRBrace {
		if p.tok.typ == tokEOF {
			return p.errorf("unterminated graph block")
		}
		if err := p.parseTriplesStatement(); err != nil {
			return err
		}
	}
	_, err := p.expect(tokRBrace)
	return err
}

func (p *parser) parseTriplesStatement() error {
	if p.tok.typ == tokLBracket {
		// Blank node property list as subject.
		subj, err := p.parseBlankNodePropertyList()
		if err != nil {
			return err
		}
		if p.tok.typ != tokDot {
			if err := p.parsePredicateObjectList(subj); err != nil {
				return err
			}
		}
		_, err = p.expect(tokDot)
		return err
	}
	subj, err := p.parseSubject()
	if err != nil {
		return err
	}
	if err := p.parsePredicateObjectList(subj); err != nil {
		return err
	}
	_, err = p.expect(tokDot)
	return err
}

func (p *parser) parsePredicateObjectList(subj rdf.Term) error {
	for {
		pred, err := p.parseVerb()
		if err != nil {
			return err
		}
		if err := p.parseObjectList(subj, pred); err != nil {
			return err
		}
		if p.tok.typ != tokSemicolon {
			return nil
		}
		for p.tok.typ == tokSemicolon {
			if err := p.advance(); err != nil {
				return err
			}
		}
		// Trailing semicolon before '.' or '}'.
		if p.tok.typ == tokDot || p.tok.typ == tokRBrace {
			return nil
		}
	}
}

func (p *parser) parseObjectList(subj, pred rdf.Term) error {
	for {
		obj, err := p.parseObject()
		if err != nil {
			return err
		}
		p.emit(subj, pred, obj)
		if p.tok.typ != tokComma {
			return nil
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
}

func (p *parser) parseVerb() (rdf.Term, error) {
	if p.tok.typ == tokKeywordA {
		return vocab.RDFType, p.advance()
	}
	t, err := p.parseIRITerm()
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (p *parser) parseSubject() (rdf.Term, error) {
	switch p.tok.typ {
	case tokIRIRef, tokPName:
		return p.parseIRITerm()
	case tokBlank:
		b := p.mintBlank(p.tok.val)
		return b, p.advance()
	case tokLParen:
		return p.parseCollection()
	default:
		return nil, p.errorf("expected subject, found %s", p.tok.typ)
	}
}

func (p *parser) parseObject() (rdf.Term, error) {
	switch p.tok.typ {
	case tokIRIRef, tokPName:
		return p.parseIRITerm()
	case tokBlank:
		b := p.mintBlank(p.tok.val)
		return b, p.advance()
	case tokLBracket:
		return p.parseBlankNodePropertyList()
	case tokLParen:
		return p.parseCollection()
	case tokString, tokInteger, tokDecimal, tokDouble, tokKeywordTrue, tokKeywordFalse:
		return p.parseLiteral()
	default:
		return nil, p.errorf("expected object, found %s", p.tok.typ)
	}
}

func (p *parser) parseIRITerm() (rdf.Term, error) {
	switch p.tok.typ {
	case tokIRIRef:
		iri := rdf.IRI(p.resolveIRI(p.tok.val))
		return iri, p.advance()
	case tokPName:
		iri, err := p.expandPName(p.tok.val)
		if err != nil {
			return nil, err
		}
		return iri, p.advance()
	default:
		return nil, p.errorf("expected IRI, found %s", p.tok.typ)
	}
}

func (p *parser) parseLiteral() (rdf.Term, error) {
	switch p.tok.typ {
	case tokInteger:
		lit := rdf.NewTypedLiteral(p.tok.val, rdf.XSDInteger)
		return lit, p.advance()
	case tokDecimal:
		lit := rdf.NewTypedLiteral(p.tok.val, rdf.XSDDecimal)
		return lit, p.advance()
	case tokDouble:
		lit := rdf.NewTypedLiteral(p.tok.val, rdf.XSDDouble)
		return lit, p.advance()
	case tokKeywordTrue:
		return rdf.NewBoolean(true), p.advance()
	case tokKeywordFalse:
		return rdf.NewBoolean(false), p.advance()
	}
	str, err := p.expect(tokString)
	if err != nil {
		return nil, err
	}
	switch p.tok.typ {
	case tokLangTag:
		lit := rdf.NewLangLiteral(str.val, p.tok.val)
		return lit, p.advance()
	case tokDoubleCaret:
		if err := p.advance(); err != nil {
			return nil, err
		}
		dt, err := p.parseIRITerm()
		if err != nil {
			return nil, err
		}
		return rdf.NewTypedLiteral(str.val, dt.(rdf.IRI)), nil
	default:
		return rdf.NewLiteral(str.val), nil
	}
}

func (p *parser) parseBlankNodePropertyList() (rdf.Term, error) {
	if _, err := p.expect(tokLBracket); err != nil {
		return nil, err
	}
	node := p.mintGenerated()
	if p.tok.typ == tokRBracket {
		return node, p.advance()
	}
	if err := p.parsePredicateObjectList(node); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRBracket); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *parser) parseCollection() (rdf.Term, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	if p.tok.typ == tokRParen {
		return vocab.RDFNil, p.advance()
	}
	head := p.mintGenerated()
	current := head
	for {
		obj, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		p.emit(current, vocab.RDFFirst, obj)
		if p.tok.typ == tokRParen {
			p.emit(current, vocab.RDFRest, vocab.RDFNil)
			return head, p.advance()
		}
		next := p.mintGenerated()
		p.emit(current, vocab.RDFRest, next)
		current = next
	}
}

// parseSimpleStatement parses one N-Triples / N-Quads statement.
func (p *parser) parseSimpleStatement() error {
	subj, err := p.parseSubject()
	if err != nil {
		return err
	}
	pred, err := p.parseIRITerm()
	if err != nil {
		return err
	}
	obj, err := p.parseObject()
	if err != nil {
		return err
	}
	var graph rdf.Term
	if p.format == FormatNQuads && p.tok.typ != tokDot {
		graph, err = p.parseGraphName()
		if err != nil {
			return err
		}
	}
	if _, err := p.expect(tokDot); err != nil {
		return err
	}
	p.quads = append(p.quads, rdf.Quad{
		Triple: rdf.Triple{Subject: subj, Predicate: pred, Object: obj},
		Graph:  graph,
	})
	return nil
}

func (p *parser) mintBlank(label string) rdf.BlankNode {
	if b, ok := p.blanks[label]; ok {
		return b
	}
	var b rdf.BlankNode
	if p.opts.MintBlank != nil {
		b = p.opts.MintBlank(label)
	} else {
		b = rdf.BlankNode(label)
	}
	p.blanks[label] = b
	return b
}

func (p *parser) mintGenerated() rdf.BlankNode {
	p.genSeq++
	return p.mintBlank(fmt.Sprintf("genid%d", p.genSeq))
}

func (p *parser) expandPName(pname string) (rdf.IRI, error) {
	idx := strings.Index(pname, ":")
	if idx < 0 {
		return "", p.errorf("malformed prefixed name %q", pname)
	}
	prefix, local := pname[:idx], pname[idx+1:]
	ns, ok := p.prefixes[prefix]
	if !ok {
		return "", p.errorf("unknown prefix %q in %q", prefix, pname)
	}
	return rdf.IRI(ns + local), nil
}

// resolveIRI resolves a possibly-relative reference against the current base.
func (p *parser) resolveIRI(ref string) string {
	if p.base == "" {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil || refURL.IsAbs() {
		return ref
	}
	baseURL, err := url.Parse(p.base)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
