// Package commands implements the pythinfer CLI verbs.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robertmuil/pythinfer/internal/config"
	"github.com/robertmuil/pythinfer/internal/heuristic"
	"github.com/robertmuil/pythinfer/internal/pipeline"
)

// Exit codes offered to the shell. Bound-exceeded is non-fatal but visible.
const (
	ExitOK            = 0
	ExitFailure       = 2
	ExitBoundExceeded = 3
)

type configKey struct{}
type loggerKey struct{}

// WithConfig stores the loaded config in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithLogger stores the run logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func getConfig(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}

func getLogger(cmd *cobra.Command) *slog.Logger {
	if logger, ok := cmd.Context().Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}

// codedError carries a CLI exit code with the underlying failure.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *codedError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}
	return ExitFailure
}

// ensureProject guarantees a usable project config, auto-creating one in the
// current directory when discovery failed and --no-create is unset.
func ensureProject(cmd *cobra.Command) (*config.Config, error) {
	cfg := getConfig(cmd)
	if cfg.Path != "" {
		return cfg, nil
	}
	noCreate, _ := cmd.Root().PersistentFlags().GetBool("no-create")
	if noCreate {
		return nil, fmt.Errorf("no %s found (auto-create disabled)", config.FileName)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	logger := getLogger(cmd)
	logger.Info("no project config found, creating one", "dir", cwd)
	path, err := createProject(cwd, false)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)

	return config.Load(path, cmd.Root().PersistentFlags())
}

// createProject discovers RDF files under dir and writes a config file.
func createProject(dir string, force bool) (string, error) {
	files, err := config.DiscoverRDFFiles(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", withCode(ExitFailure, fmt.Errorf("no RDF files found under %s", dir))
	}
	path := filepath.Join(dir, config.FileName)
	if err := config.WriteScaffold(path, filepath.Base(dir), files, force); err != nil {
		return "", err
	}
	return path, nil
}

// pipelineOptions maps the resolved config to pipeline options. The
// procedural registry is built fresh per run.
func pipelineOptions(cfg *config.Config, logger *slog.Logger) pipeline.Options {
	return pipeline.Options{
		ReferenceFiles:       cfg.Data.Reference,
		LocalFiles:           cfg.Data.Local,
		SPARQLHeuristics:     cfg.Heuristics.SPARQL,
		StarlarkHeuristics:   cfg.Heuristics.Starlark,
		ProceduralHeuristics: cfg.Heuristics.Procedural,
		Registry:             heuristic.NewRegistry(),
		Backend:              cfg.Backend.Kind,
		BackendCommand:       cfg.Backend.Command,
		BackendRetries:       cfg.Backend.Retries,
		Bound:                cfg.Iteration.Bound,
		Logger:               logger.With("project", cfg.Name),
	}
}
