package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/plugin"
)

func newTestRegistry(parseCalls *int) *plugin.Registry {
	r := plugin.NewRegistry()
	r.RegisterLanguage(&plugin.LanguagePlugin{
		Name:       "stub",
		Extensions: []string{".stub"},
		ParseFile: func(content []byte, path string) (plugin.ParseOutput, error) {
			if parseCalls != nil {
				*parseCalls++
			}
			return plugin.ParseOutput{
				Nodes: []plugin.ParsedNode{{LocalID: "1", Name: "thing", Kind: graph.KindMethod}},
			}, nil
		},
	})
	r.RegisterBuildTool(&plugin.BuildToolPlugin{
		Name:      "stubbuild",
		Recognize: func(name string) bool { return name == "build.stub" },
	})
	return r
}

func TestScannerParsesNewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.stub"), []byte("hello"), 0o644))

	var calls int
	s := NewScanner(newTestRegistry(&calls))
	results, err := s.Scan(context.Background(), dir, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "a.stub", r.Path)
	assert.Equal(t, New, r.Decision)
	require.NotNil(t, r.Source)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "thing", r.Source.Output.Nodes[0].Name)
}

func TestScannerSkipsUnchangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.stub")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	info, err := os.Stat(path)
	require.NoError(t, err)

	prev := map[string]PrevState{
		"a.stub": {Mtime: info.ModTime().Unix(), Hash: ContentHash([]byte("hello"))},
	}

	var calls int
	s := NewScanner(newTestRegistry(&calls))
	results, err := s.Scan(context.Background(), dir, nil, prev)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, Unchanged, r.Decision)
	assert.Nil(t, r.Source)
	assert.Equal(t, 0, calls)
}

func TestScannerDispatchesBuildFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.stub"), []byte("module x"), 0o644))

	s := NewScanner(newTestRegistry(nil))
	results, err := s.Scan(context.Background(), dir, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	require.NotNil(t, r.BuildFile)
	assert.Nil(t, r.Source)
	assert.Equal(t, "build.stub", r.BuildFile.Path)
}

func TestScannerIgnoresUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.unknown"), []byte("??"), 0o644))

	s := NewScanner(newTestRegistry(nil))
	results, err := s.Scan(context.Background(), dir, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, Unchanged, results[0].Decision)
	assert.Nil(t, results[0].Source)
	assert.Nil(t, results[0].BuildFile)
}
