package rdfio

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// WriterOptions control serialization.
type WriterOptions struct {
	// Prefixes maps prefix names to namespaces for compaction in Turtle and
	// TriG output. Only namespaces actually used are emitted.
	Prefixes map[string]string
}

// Write serializes quads in the given format. Output is deterministic: quads
// are ordered by graph, subject, predicate, object. Flat formats (Turtle,
// N-Triples) discard graph names and deduplicate by triple.
func Write(w io.Writer, quads []rdf.Quad, format Format, opts WriterOptions) error {
	sorted := make([]rdf.Quad, len(quads))
	copy(sorted, quads)
	sortQuads(sorted)

	bw := bufio.NewWriter(w)
	var err error
	switch format {
	case FormatTriG:
		err = writeTriG(bw, sorted, opts)
	case FormatTurtle:
		err = writeTurtle(bw, sorted, opts)
	case FormatNQuads:
		err = writeNQuads(bw, sorted)
	case FormatNTriples:
		err = writeNTriples(bw, sorted)
	default:
		err = fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

func sortQuads(quads []rdf.Quad) {
	key := func(q rdf.Quad) string {
		g := ""
		if q.Graph != nil {
			g = q.Graph.String()
		}
		return g + "\x00" + q.Subject.String() + "\x00" + q.Predicate.String() + "\x00" + q.Object.String()
	}
	sort.Slice(quads, func(i, j int) bool { return key(quads[i]) < key(quads[j]) })
}

// compactor renders terms with prefix compaction where possible.
type compactor struct {
	prefixes map[string]string // namespace -> prefix name
	used     map[string]bool   // prefix names emitted
}

func newCompactor(prefixes map[string]string) *compactor {
	inv := make(map[string]string, len(prefixes))
	for name, ns := range prefixes {
		inv[ns] = name
	}
	return &compactor{prefixes: inv, used: make(map[string]bool)}
}

func (c *compactor) term(t rdf.Term) string {
	iri, ok := t.(rdf.IRI)
	if !ok {
		return t.String()
	}
	for ns, name := range c.prefixes {
		if local, found := strings.CutPrefix(string(iri), ns); found && isSimpleLocal(local) {
			c.used[name] = true
			return name + ":" + local
		}
	}
	return t.String()
}

// isSimpleLocal reports whether a local name can be written unescaped.
func isSimpleLocal(local string) bool {
	if local == "" {
		return false
	}
	for _, r := range local {
		if !isNameChar(r) || r == ':' || r == '%' {
			return false
		}
	}
	return true
}

// renderStatements renders quads as statements, compacting IRIs and
// recording which prefixes were used so the header can list only those.
func renderStatements(quads []rdf.Quad, c *compactor, indent string) []string {
	lines := make([]string, 0, len(quads))
	for _, q := range quads {
		lines = append(lines, fmt.Sprintf("%s%s %s %s .",
			indent, c.term(q.Subject), c.term(q.Predicate), c.term(q.Object)))
	}
	return lines
}

func writePrefixHeader(w io.Writer, opts WriterOptions, c *compactor) error {
	names := make([]string, 0, len(c.used))
	for name := range c.used {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "@prefix %s: <%s> .\n", name, opts.Prefixes[name]); err != nil {
			return err
		}
	}
	if len(names) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func writeTriG(w io.Writer, quads []rdf.Quad, opts WriterOptions) error {
	c := newCompactor(opts.Prefixes)
	type block struct {
		name  rdf.Term
		lines []string
	}
	var blocks []block
	i := 0
	for i < len(quads) {
		j := i
		for j < len(quads) && quads[j].Graph == quads[i].Graph {
			j++
		}
		blocks = append(blocks, block{
			name:  quads[i].Graph,
			lines: renderStatements(quads[i:j], c, "    "),
		})
		i = j
	}
	if err := writePrefixHeader(w, opts, c); err != nil {
		return err
	}
	for _, b := range blocks {
		name := ""
		if b.name != nil {
			name = c.term(b.name) + " "
		}
		if _, err := fmt.Fprintf(w, "%s{\n%s\n}\n\n", name, strings.Join(b.lines, "\n")); err != nil {
			return err
		}
	}
	return nil
}

func writeTurtle(w io.Writer, quads []rdf.Quad, opts WriterOptions) error {
	c := newCompactor(opts.Prefixes)
	lines := renderStatements(dedupeTriples(quads), c, "")
	if err := writePrefixHeader(w, opts, c); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeNQuads(w io.Writer, quads []rdf.Quad) error {
	for _, q := range quads {
		var err error
		if q.Graph != nil {
			_, err = fmt.Fprintf(w, "%s %s %s %s .\n", q.Subject, q.Predicate, q.Object, q.Graph)
		} else {
			_, err = fmt.Fprintf(w, "%s %s %s .\n", q.Subject, q.Predicate, q.Object)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeNTriples(w io.Writer, quads []rdf.Quad) error {
	for _, q := range dedupeTriples(quads) {
		if _, err := fmt.Fprintf(w, "%s %s %s .\n", q.Subject, q.Predicate, q.Object); err != nil {
			return err
		}
	}
	return nil
}

// dedupeTriples flattens sorted quads to unique triples, preserving order.
func dedupeTriples(quads []rdf.Quad) []rdf.Quad {
	seen := make(map[rdf.Triple]struct{}, len(quads))
	out := make([]rdf.Quad, 0, len(quads))
	for _, q := range quads {
		if _, dup := seen[q.Triple]; dup {
			continue
		}
		seen[q.Triple] = struct{}{}
		out = append(out, rdf.Quad{Triple: q.Triple})
	}
	// Flattening can break the sort where identical triples lived in
	// different graphs; re-sort by triple.
	sortQuads(out)
	return out
}
