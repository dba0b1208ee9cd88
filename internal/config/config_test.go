package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "facts.ttl", "")
	writeFile(t, dir, "skos.ttl", "")
	cfgPath := writeFile(t, dir, FileName, `
name: demo
data:
  local:
    - facts.ttl
  reference:
    - skos.ttl
heuristics:
  sparql:
    - rules/celebrity.rq
output:
  extra_formats:
    - ttl
`)

	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, dir, cfg.BaseFolder)
	assert.Equal(t, []string{filepath.Join(dir, "facts.ttl")}, cfg.Data.Local)
	assert.Equal(t, []string{filepath.Join(dir, "skos.ttl")}, cfg.Data.Reference)
	assert.Equal(t, []string{filepath.Join(dir, "rules/celebrity.rq")}, cfg.Heuristics.SPARQL)
	assert.Equal(t, filepath.Join(dir, "derived"), cfg.Output.Folder)
	assert.Equal(t, []string{"ttl"}, cfg.Output.ExtraFormats)
	assert.Equal(t, 16, cfg.Iteration.Bound)
	assert.Equal(t, "rl-inprocess", cfg.Backend.Kind)
}

func TestLoad_ScalarListField(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "facts.ttl", "")
	cfgPath := writeFile(t, dir, FileName, `
data:
  local: facts.ttl
`)
	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "facts.ttl")}, cfg.Data.Local)
}

func TestLoad_GlobExpansionIsSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.ttl", "")
	writeFile(t, dir, "a.ttl", "")
	cfgPath := writeFile(t, dir, FileName, `
data:
  local:
    - "*.ttl"
`)
	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.ttl"),
		filepath.Join(dir, "b.ttl"),
	}, cfg.Data.Local)
}

func TestLoad_MissingLiteralInputFails(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, FileName, `
data:
  local:
    - nope.ttl
`)
	_, err := Load(cfgPath, nil)
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, FileName, `
iteration:
  bound: 4
`)
	t.Setenv("PYTHINFER_ITERATION__BOUND", "7")
	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Iteration.Bound)
}

func TestDiscover_FindsInParent(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, FileName, "name: up\n")
	child := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(child, 0o750))

	found, err := Discover(child)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, found)
}

func TestDiscover_DepthLimit(t *testing.T) {
	dir := t.TempDir()
	deep := dir
	for i := 0; i < maxDiscoveryDepth+2; i++ {
		deep = filepath.Join(deep, "d")
	}
	require.NoError(t, os.MkdirAll(deep, 0o750))
	writeFile(t, dir, FileName, "name: far\n")

	_, err := Discover(deep)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscoverRDFFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.ttl", "")
	writeFile(t, dir, "notes.txt", "")
	sub := filepath.Join(dir, "vocab")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	writeFile(t, sub, "b.trig", "")
	derived := filepath.Join(dir, "derived")
	require.NoError(t, os.MkdirAll(derived, 0o750))
	writeFile(t, derived, "old.ttl", "")

	files, err := DiscoverRDFFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ttl", filepath.Join("vocab", "b.trig")}, files)
}

func TestWriteScaffold_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.ttl", "")
	path := filepath.Join(dir, FileName)

	require.NoError(t, WriteScaffold(path, "proj", []string{"a.ttl"}, false))
	assert.Error(t, WriteScaffold(path, "proj", []string{"a.ttl"}, false),
		"must refuse to overwrite")
	require.NoError(t, WriteScaffold(path, "proj", []string{"a.ttl"}, true))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "proj", cfg.Name)
	assert.Equal(t, []string{filepath.Join(dir, "a.ttl")}, cfg.Data.Local)
	assert.Equal(t, filepath.Join(dir, "derived"), cfg.Output.Folder)
}
