package pipeline

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robertmuil/pythinfer/internal/export"
	"github.com/robertmuil/pythinfer/internal/testutil"
)

func TestLoadCache(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.ttl", whoKnowsWhom)
	cfgPath := writeFile(t, dir, "pythinfer.yaml", "name: t\n")

	result := runPipeline(t, Options{LocalFiles: []string{data}})
	quads, err := result.Quads(ArtifactCombinedFull, nil)
	require.NoError(t, err)

	exp := export.New(dir, nil, nil)
	paths, err := exp.Export(context.Background(), string(ArtifactCombinedFull), quads)
	require.NoError(t, err)
	cachePath := paths[0]

	// Fresh cache loads.
	st, ok := LoadCache(cachePath, cfgPath, []string{data}, testutil.NewTestLogger(t))
	require.True(t, ok)
	assert.Equal(t, len(quads), st.Len())

	// Touching an input invalidates it.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(data, future, future))
	_, ok = LoadCache(cachePath, cfgPath, []string{data}, nil)
	assert.False(t, ok)

	// A missing cache file is simply absent.
	_, ok = LoadCache(cachePath+".nope", cfgPath, []string{data}, nil)
	assert.False(t, ok)
}
