package pipeline

import (
	"log/slog"
	"os"

	"github.com/robertmuil/pythinfer/internal/store"
	"github.com/robertmuil/pythinfer/pkg/rdf"
	"github.com/robertmuil/pythinfer/pkg/rdf/rdfio"
)

// LoadCache reloads a previously exported combined_full TriG file into a
// fresh store, if it exists and is newer than the config file and every
// input. Staleness or absence returns (nil, false) and the caller re-runs
// the pipeline; the core never assumes cache freshness.
func LoadCache(cachePath, configPath string, inputs []string, logger *slog.Logger) (*store.Store, bool) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	info, err := os.Stat(cachePath)
	if err != nil {
		return nil, false
	}
	cacheTime := info.ModTime()
	for _, path := range append([]string{configPath}, inputs...) {
		if path == "" {
			continue
		}
		in, err := os.Stat(path)
		if err != nil || in.ModTime().After(cacheTime) {
			logger.Info("cache stale", "cache", cachePath, "changed", path)
			return nil, false
		}
	}

	st := store.New()
	quads, _, err := rdfio.ParseFile(cachePath, rdfio.Options{
		MintBlank: func(string) rdf.BlankNode { return st.NewBlankNode() },
	})
	if err != nil {
		logger.Warn("cache unreadable, ignoring", "cache", cachePath, "error", err)
		return nil, false
	}
	if _, err := st.BulkAdd(quads); err != nil {
		return nil, false
	}
	logger.Info("loaded cached dataset", "cache", cachePath, "triples", st.Len())
	return st, true
}
