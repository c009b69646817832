package asset

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/naviscope/pkg/plugin"
)

func TestScannerDiscoversAndIndexes(t *testing.T) {
	registry := NewRegistry('.')
	scanner := NewScanner(registry)

	scanner.AddDiscoverer(plugin.AssetDiscoverer{
		Name: "test",
		Discover: func(root string, out chan<- plugin.AssetEntry) error {
			out <- plugin.AssetEntry{Path: "/libs/foo.jar", Source: plugin.SourceTag{Kind: plugin.SourcePlatformLib}}
			return nil
		},
	})
	scanner.AddIndexer(plugin.AssetIndexer{
		Name:     "test",
		CanIndex: func(path string) bool { return path == "/libs/foo.jar" },
		Index: func(entry plugin.AssetEntry) ([]string, error) {
			return []string{"com.foo"}, nil
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, scanner.Scan(ctx, "/workspace"))

	got := registry.Lookup("com.foo.Bar", nil)
	require.Len(t, got, 1)
	assert.Equal(t, "/libs/foo.jar", got[0].Path)
}

func TestScannerSkipsUnindexableEntries(t *testing.T) {
	registry := NewRegistry('.')
	scanner := NewScanner(registry)

	scanner.AddDiscoverer(plugin.AssetDiscoverer{
		Name: "test",
		Discover: func(root string, out chan<- plugin.AssetEntry) error {
			out <- plugin.AssetEntry{Path: "/libs/unknown.bin"}
			return nil
		},
	})
	scanner.AddIndexer(plugin.AssetIndexer{
		Name:     "test",
		CanIndex: func(path string) bool { return false },
		Index:    func(entry plugin.AssetEntry) ([]string, error) { return nil, nil },
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, scanner.Scan(ctx, "/workspace"))

	assert.Empty(t, registry.Lookup("anything", nil))
}
