// Package config loads, discovers and validates pythinfer project
// configuration. Precedence: flags > PYTHINFER_ environment variables >
// config file > defaults.
package config

import (
	"fmt"
)

// FileName is the project config file searched for by discovery.
const FileName = "pythinfer.yaml"

// altFileName is accepted when FileName is absent.
const altFileName = "pythinfer.yml"

// Config is the project configuration handed to the pipeline.
type Config struct {
	// Name is an informational tag attached to diagnostics.
	Name string `koanf:"name"`
	// BaseFolder is the root for relative-path resolution. Defaults to the
	// directory of the config file.
	BaseFolder string `koanf:"base_folder"`

	Data       DataConfig       `koanf:"data"`
	Heuristics HeuristicsConfig `koanf:"heuristics"`
	Output     OutputConfig     `koanf:"output"`
	Iteration  IterationConfig  `koanf:"iteration"`
	Backend    BackendConfig    `koanf:"backend"`

	Verbose bool `koanf:"verbose"`

	// Path is where the config file was found; empty when no file was used.
	Path string `koanf:"-"`
}

// DataConfig lists the categorized inputs as paths or glob patterns.
type DataConfig struct {
	Local     []string `koanf:"local"`
	Reference []string `koanf:"reference"`
}

// HeuristicsConfig lists inference rules in application order.
type HeuristicsConfig struct {
	// SPARQL is an ordered list of .rq CONSTRUCT files.
	SPARQL []string `koanf:"sparql"`
	// Starlark is an ordered list of .star rule scripts.
	Starlark []string `koanf:"starlark"`
	// Procedural is an ordered list of registered rule identifiers.
	Procedural []string `koanf:"procedural"`
}

// OutputConfig controls export.
type OutputConfig struct {
	// Folder defaults to <base_folder>/derived.
	Folder string `koanf:"folder"`
	// ExtraFormats are serializations beyond the mandatory quad format.
	ExtraFormats []string `koanf:"extra_formats"`
}

// IterationConfig bounds the fixed-point driver.
type IterationConfig struct {
	Bound int `koanf:"bound"`
}

// BackendConfig selects the reasoner backend.
type BackendConfig struct {
	// Kind is the backend tag, default rl-inprocess.
	Kind string `koanf:"kind"`
	// Command is the external-cli command template.
	Command []string `koanf:"command"`
	// Retries applies to external-cli backends only; default 1.
	Retries int `koanf:"retries"`
}

// ValidationError reports malformed or unresolvable configuration.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Msg)
}
