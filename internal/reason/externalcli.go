package reason

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/pkg/rdf"
	"github.com/robertmuil/pythinfer/pkg/rdf/rdfio"
)

// cliReasoner shells out to an external reasoner (riot-style). The view's
// triples are written to a temporary N-Triples file, the command is run with
// the file substituted for the "{input}" placeholder, and the command's
// stdout is parsed back as N-Triples. This backend is optional plumbing; the
// in-process engine is the one the pipeline mandates.
type cliReasoner struct {
	command []string
	retries int
	logger  *slog.Logger
}

func (r *cliReasoner) Name() string { return BackendExternalCLI }

func (r *cliReasoner) Reason(ctx context.Context, v *store.View, target rdf.Term) (int, error) {
	input, err := v.Triples(rdf.Pattern{})
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp("", "pythinfer-reason-*.nt")
	if err != nil {
		return 0, &BackendError{Backend: r.Name(), Err: err}
	}
	defer os.Remove(tmp.Name())

	quads := make([]rdf.Quad, len(input))
	for i, t := range input {
		quads[i] = rdf.Quad{Triple: t}
	}
	if err := rdfio.Write(tmp, quads, rdfio.FormatNTriples, rdfio.WriterOptions{}); err != nil {
		tmp.Close()
		return 0, &BackendError{Backend: r.Name(), Err: err}
	}
	if err := tmp.Close(); err != nil {
		return 0, &BackendError{Backend: r.Name(), Err: err}
	}

	// External commands get retries when configured; the in-process
	// backend never retries.
	attempts := 1 + r.retries
	var out []byte
	for attempt := 1; ; attempt++ {
		out, err = r.run(ctx, tmp.Name())
		if err == nil {
			break
		}
		if attempt >= attempts || ctx.Err() != nil {
			return 0, &BackendError{Backend: r.Name(), Err: err}
		}
		r.logger.Warn("external reasoner failed, retrying", "attempt", attempt, "error", err)
	}

	closure, err := rdfio.Parse(bytes.NewReader(out), rdfio.FormatNTriples, rdfio.Options{
		Path: strings.Join(r.command, " "),
	})
	if err != nil {
		return 0, &BackendError{Backend: r.Name(), Err: fmt.Errorf("malformed output: %w", err)}
	}

	triples := make([]rdf.Triple, len(closure))
	for i, q := range closure {
		triples[i] = q.Triple
	}
	return depositDelta(v, target, triples)
}

func (r *cliReasoner) run(ctx context.Context, inputPath string) ([]byte, error) {
	args := make([]string, 0, len(r.command)-1)
	for _, a := range r.command[1:] {
		args = append(args, strings.ReplaceAll(a, "{input}", inputPath))
	}
	cmd := exec.CommandContext(ctx, r.command[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w (%s)", r.command[0], err,
			strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
