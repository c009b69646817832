package asset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/plugin"
)

func TestStubServiceGeneratesAndCaches(t *testing.T) {
	results := make(chan []graph.GraphOp, 4)
	svc := NewStubService(results, nil)

	var generateCalls int
	svc.AddGenerator(plugin.StubGenerator{
		Name:        "test",
		CanGenerate: func(plugin.AssetEntry) bool { return true },
		Generate: func(fqn string, entry plugin.AssetEntry) ([]graph.AddNodePayload, error) {
			generateCalls++
			return []graph.AddNodePayload{{Name: fqn, Kind: graph.KindClass, Origin: graph.OriginExternal, Status: graph.StatusStubbed}}, nil
		},
	})
	svc.Start()

	entry := plugin.AssetEntry{Path: "/libs/foo.jar"}
	fps := map[string]fingerprint{"/libs/foo.jar": Fingerprint("/libs/foo.jar", 100, 1)}

	svc.Submit(StubRequest{FQN: "foo.Bar", Entries: []plugin.AssetEntry{entry}, Fingerprints: fps})

	select {
	case ops := <-results:
		require.Len(t, ops, 1)
		require.Equal(t, graph.OpAddNode, ops[0].Kind)
		assert.Equal(t, "foo.Bar", ops[0].AddNode.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stub result")
	}

	svc.Stop()
	assert.Equal(t, 1, generateCalls)

	// A repeat lookup for the same (fingerprint, fqn) is served from the
	// cache without invoking the generator again.
	cached, err := svc.resolve(StubRequest{FQN: "foo.Bar", Entries: []plugin.AssetEntry{entry}, Fingerprints: fps})
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, 1, generateCalls)
}

func TestStubServiceDedupesWithinSession(t *testing.T) {
	results := make(chan []graph.GraphOp, 4)
	svc := NewStubService(results, nil)

	var generateCalls int
	svc.AddGenerator(plugin.StubGenerator{
		Name:        "test",
		CanGenerate: func(plugin.AssetEntry) bool { return true },
		Generate: func(fqn string, entry plugin.AssetEntry) ([]graph.AddNodePayload, error) {
			generateCalls++
			return []graph.AddNodePayload{{Name: fqn}}, nil
		},
	})
	svc.Start()

	entry := plugin.AssetEntry{Path: "/libs/foo.jar"}
	fps := map[string]fingerprint{"/libs/foo.jar": Fingerprint("/libs/foo.jar", 100, 1)}
	req := StubRequest{FQN: "foo.Bar", Entries: []plugin.AssetEntry{entry}, Fingerprints: fps}

	svc.Submit(req)
	svc.Submit(req)
	<-results

	svc.Stop()
	assert.Equal(t, 1, generateCalls, "second submit for the same FQN must be dropped")
}

// TestStubServicePrefersExternalResolver covers the ExternalResolver path:
// when a language plugin claims the FQN with a richer ResolvedUnit, its
// ops are used verbatim and no per-entry StubGenerator is even consulted.
func TestStubServicePrefersExternalResolver(t *testing.T) {
	results := make(chan []graph.GraphOp, 4)
	svc := NewStubService(results, nil)

	var generateCalls, externalCalls int
	svc.AddGenerator(plugin.StubGenerator{
		Name:        "test",
		CanGenerate: func(plugin.AssetEntry) bool { return true },
		Generate: func(fqn string, entry plugin.AssetEntry) ([]graph.AddNodePayload, error) {
			generateCalls++
			return []graph.AddNodePayload{{Name: fqn}}, nil
		},
	})
	svc.AddExternalResolver(func(fqn string, candidates []plugin.AssetEntry) (plugin.ResolvedUnit, bool, error) {
		externalCalls++
		return plugin.ResolvedUnit{Ops: []graph.GraphOp{
			graph.AddNode(graph.AddNodePayload{Name: fqn, Kind: graph.KindClass}),
			graph.AddNode(graph.AddNodePayload{Name: fqn + ".Field", Kind: graph.KindField}),
		}}, true, nil
	})
	svc.Start()

	entry := plugin.AssetEntry{Path: "/libs/foo"}
	svc.Submit(StubRequest{FQN: "foo.Bar", Entries: []plugin.AssetEntry{entry}})

	select {
	case ops := <-results:
		require.Len(t, ops, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stub result")
	}

	svc.Stop()
	assert.Equal(t, 1, externalCalls)
	assert.Equal(t, 0, generateCalls, "generator should not run once an ExternalResolver claims the FQN")
}
