package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/robertmuil/pythinfer/internal/pipeline"
	"github.com/robertmuil/pythinfer/internal/reason"
)

// Load reads configuration for one run. cfgFile may be empty, in which case
// discovery searches upward from the current directory; a missing config
// file is not an error here (the CLI decides whether to auto-create), but
// discovery failure leaves Path empty.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"backend.kind":    reason.BackendRLInProcess,
		"backend.retries": 1,
		"iteration.bound": pipeline.DefaultBound,
		"verbose":         false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Config file, explicit or discovered.
	if cfgFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfgFile, _ = Discover(cwd)
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment variables: PYTHINFER_OUTPUT__FOLDER -> output.folder.
	if err := k.Load(env.Provider("PYTHINFER_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "PYTHINFER_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	// 4. Flags, highest priority; only flags the user actually set.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k,
			func(f *pflag.Flag) (string, interface{}) {
				if !f.Changed {
					return "", nil
				}
				return strings.ReplaceAll(f.Name, "-", "."), posflag.FlagVal(flags, f)
			}), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook:       scalarToSliceHook(),
		},
	}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Path = cfgFile

	if err := resolve(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// scalarToSliceHook lets single-entry list fields be written as scalars in
// the YAML ("data.local: facts.ttl").
func scalarToSliceHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to.Kind() == reflect.Slice && from.Kind() == reflect.String {
			return []string{data.(string)}, nil
		}
		return data, nil
	}
}

// resolve fills derived defaults and normalizes paths: base folder, output
// folder, glob expansion for the data lists, and resolution of heuristic
// paths against the base folder.
func resolve(cfg *Config) error {
	if cfg.BaseFolder == "" {
		if cfg.Path != "" {
			cfg.BaseFolder = filepath.Dir(cfg.Path)
		} else {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg.BaseFolder = cwd
		}
	}
	abs, err := filepath.Abs(cfg.BaseFolder)
	if err != nil {
		return &ValidationError{Field: "base_folder", Msg: err.Error()}
	}
	cfg.BaseFolder = abs

	if cfg.Name == "" {
		if cfg.Path != "" {
			base := filepath.Base(cfg.Path)
			cfg.Name = strings.TrimSuffix(base, filepath.Ext(base))
		} else {
			cfg.Name = filepath.Base(cfg.BaseFolder)
		}
	}
	if cfg.Output.Folder == "" {
		cfg.Output.Folder = filepath.Join(cfg.BaseFolder, "derived")
	} else {
		cfg.Output.Folder = resolveAgainst(cfg.Output.Folder, cfg.BaseFolder)
	}
	if cfg.Iteration.Bound <= 0 {
		cfg.Iteration.Bound = pipeline.DefaultBound
	}

	if cfg.Data.Local, err = expandPatterns(cfg.Data.Local, cfg.BaseFolder, "data.local"); err != nil {
		return err
	}
	if cfg.Data.Reference, err = expandPatterns(cfg.Data.Reference, cfg.BaseFolder, "data.reference"); err != nil {
		return err
	}
	cfg.Heuristics.SPARQL = resolveAll(cfg.Heuristics.SPARQL, cfg.BaseFolder)
	cfg.Heuristics.Starlark = resolveAll(cfg.Heuristics.Starlark, cfg.BaseFolder)
	return nil
}

func resolveAgainst(path, base string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func resolveAll(paths []string, base string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolveAgainst(p, base)
	}
	return out
}

// expandPatterns resolves each entry against the base folder and expands
// glob patterns. A literal path must exist; a pattern may match nothing.
func expandPatterns(patterns []string, base, field string) ([]string, error) {
	var out []string
	for _, pat := range patterns {
		resolved := resolveAgainst(pat, base)
		if !strings.ContainsAny(pat, "*?[") {
			if _, err := os.Stat(resolved); err != nil {
				return nil, &ValidationError{Field: field,
					Msg: fmt.Sprintf("input %s not found", resolved)}
			}
			out = append(out, resolved)
			continue
		}
		matches, err := filepath.Glob(resolved)
		if err != nil {
			return nil, &ValidationError{Field: field,
				Msg: fmt.Sprintf("bad pattern %q: %v", pat, err)}
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}
