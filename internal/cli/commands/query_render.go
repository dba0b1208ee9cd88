package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/robertmuil/pythinfer/internal/sparql"
	"github.com/robertmuil/pythinfer/pkg/rdf"
	"github.com/robertmuil/pythinfer/pkg/rdf/rdfio"
	"github.com/robertmuil/pythinfer/pkg/rdf/vocab"
)

func renderSelect(w io.Writer, res *sparql.SelectResult, format string) error {
	switch format {
	case "csv":
		return renderCSV(w, res)
	case "json":
		return renderJSON(w, res)
	default:
		return renderTable(w, res)
	}
}

func renderTable(w io.Writer, res *sparql.SelectResult) error {
	if len(res.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(res.Vars))
	for i, v := range res.Vars {
		header[i] = "?" + v
	}
	t.AppendHeader(header)

	for _, binding := range res.Rows {
		row := make(table.Row, len(res.Vars))
		for i, v := range res.Vars {
			row[i] = renderTerm(binding[v])
		}
		t.AppendRow(row)
	}
	t.Render()
	_, err := fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	return err
}

func renderCSV(w io.Writer, res *sparql.SelectResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(res.Vars); err != nil {
		return err
	}
	for _, binding := range res.Rows {
		record := make([]string, len(res.Vars))
		for i, v := range res.Vars {
			record[i] = renderTerm(binding[v])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderJSON(w io.Writer, res *sparql.SelectResult) error {
	rows := make([]map[string]string, 0, len(res.Rows))
	for _, binding := range res.Rows {
		row := make(map[string]string, len(res.Vars))
		for _, v := range res.Vars {
			row[v] = renderTerm(binding[v])
		}
		rows = append(rows, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func renderConstruct(w io.Writer, triples []rdf.Triple) error {
	quads := make([]rdf.Quad, len(triples))
	for i, t := range triples {
		quads[i] = rdf.Quad{Triple: t}
	}
	return rdfio.Write(w, quads, rdfio.FormatTurtle,
		rdfio.WriterOptions{Prefixes: vocab.CommonPrefixes})
}

func renderTerm(t rdf.Term) string {
	if t == nil {
		return ""
	}
	return t.String()
}
