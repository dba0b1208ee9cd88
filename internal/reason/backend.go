// Package reason wraps OWL-RL entailment behind a backend interface. The
// in-process rule engine is the first-class backend; an external-CLI adapter
// satisfies the same contract for tools like riot.
//
// A backend computes the triples entailed by its profile that are not already
// visible in the view it was given, and deposits them into a single target
// graph. It never mutates any other graph, and it drops syntactically invalid
// triples (a literal in subject position, a non-IRI predicate) from its own
// output rather than failing.
package reason

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/pkg/rdf"
)

// Backend tags recognized by New.
const (
	BackendRLInProcess = "rl-inprocess"
	BackendExternalCLI = "external-cli"
)

// Reasoner computes an entailment delta over a view.
type Reasoner interface {
	Name() string
	// Reason reads the view, entails, and adds the new triples to the target
	// graph, which must be in the view's whitelist. Returns the number of
	// triples added.
	Reason(ctx context.Context, v *store.View, target rdf.Term) (int, error)
}

// BackendError wraps a backend crash or malformed backend output.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("reasoner backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Config selects and parameterizes a backend.
type Config struct {
	// Backend is the backend tag; defaults to rl-inprocess.
	Backend string
	// Command is the external-cli command template; ignored otherwise.
	Command []string
	// Retries is the number of extra attempts for external-cli backends.
	// In-process backends are never retried.
	Retries int
	Logger  *slog.Logger
}

// New returns the reasoner for a backend tag.
func New(cfg Config) (Reasoner, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch cfg.Backend {
	case "", BackendRLInProcess:
		return &rlReasoner{logger: logger}, nil
	case BackendExternalCLI:
		if len(cfg.Command) == 0 {
			return nil, &BackendError{Backend: BackendExternalCLI,
				Err: fmt.Errorf("no command configured")}
		}
		return &cliReasoner{command: cfg.Command, retries: cfg.Retries, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown reasoner backend %q", cfg.Backend)
	}
}

// depositDelta adds closure triples absent from the view into the target
// graph, dropping invalid ones. Shared by all backends.
func depositDelta(v *store.View, target rdf.Term, closure []rdf.Triple) (int, error) {
	added := 0
	for _, t := range closure {
		if !t.Valid() {
			continue
		}
		present, err := v.Contains(t)
		if err != nil {
			return added, err
		}
		if present {
			continue
		}
		if err := v.Add(rdf.Quad{Triple: t, Graph: target}); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
