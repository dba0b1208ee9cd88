// Package export materializes pipeline artifacts to files, one file per
// artifact and format.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/robertmuil/pythinfer/pkg/rdf"
	"github.com/robertmuil/pythinfer/pkg/rdf/rdfio"
	"github.com/robertmuil/pythinfer/pkg/rdf/vocab"
)

// Exporter writes artifacts into an output folder. The quad-preserving TriG
// format is always written, because it doubles as the cache format; extra
// flat formats may discard graph names.
type Exporter struct {
	OutDir string
	// Extra lists formats beyond the mandatory TriG.
	Extra  []rdfio.Format
	Logger *slog.Logger
}

// New returns an exporter. A nil logger discards output.
func New(outDir string, extra []rdfio.Format, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{OutDir: outDir, Extra: extra, Logger: logger}
}

// Formats returns TriG plus the configured extras, deduplicated.
func (e *Exporter) Formats() []rdfio.Format {
	out := []rdfio.Format{rdfio.FormatTriG}
	seen := map[rdfio.Format]bool{rdfio.FormatTriG: true}
	for _, f := range e.Extra {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// Path returns the output file for an artifact and format.
func (e *Exporter) Path(artifact string, format rdfio.Format) string {
	return filepath.Join(e.OutDir, fmt.Sprintf("%s.%s", artifact, format))
}

// Export writes one artifact in every configured format. The per-format
// writes are independent, so they fan out concurrently.
func (e *Exporter) Export(ctx context.Context, artifact string, quads []rdf.Quad) ([]string, error) {
	if err := os.MkdirAll(e.OutDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output folder: %w", err)
	}

	formats := e.Formats()
	paths := make([]string, len(formats))
	g, _ := errgroup.WithContext(ctx)
	for i, format := range formats {
		path := e.Path(artifact, format)
		paths[i] = path
		g.Go(func() error {
			return e.writeOne(path, format, quads)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.Logger.Info("exported artifact",
		"artifact", artifact, "triples", len(quads), "formats", len(formats))
	return paths, nil
}

func (e *Exporter) writeOne(path string, format rdfio.Format, quads []rdf.Quad) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	opts := rdfio.WriterOptions{Prefixes: vocab.CommonPrefixes}
	if err := rdfio.Write(f, quads, format, opts); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
