package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/naviscope/pkg/symbol"
)

func buildSampleGraph(t *testing.T) *Graph {
	t.Helper()
	b := newTestBuilder()
	b.AddNode(AddNodePayload{
		Parent:   pkgPath("com.example"),
		Name:     "MyClass",
		Kind:     KindClass,
		Language: "go",
		Origin:   OriginProject,
		Status:   StatusResolved,
		Location: &LocationRef{Path: "com/example/MyClass.go", Range: Range{EndLine: 30}},
		Metadata: []byte(`{"modifiers":["public"]}`),
	})
	b.UpdateFile("com/example/MyClass.go", SourceFileInfo{ContentHash: 42, LastModified: 1000})
	b.UpdateIdentifiers("com/example/MyClass.go", []string{"MyClass"})
	return b.Build()
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	g := buildSampleGraph(t)
	data, err := Serialize(g)
	require.NoError(t, err)

	g2, err := Deserialize(data, symbol.NewPool(), symbol.NewPathPool())
	require.NoError(t, err)

	assert.Equal(t, g.NodeCount(), g2.NodeCount())
	assert.Equal(t, g.EdgeCount(), g2.EdgeCount())

	key := FQNKey{Parent: NoIndex, Name: g2.Strings().Intern("com.example"), Kind: KindPackage}
	pkgIdx, ok := g2.FindNode(key)
	require.True(t, ok)
	classIdx, ok := g2.FindNode(FQNKey{Parent: pkgIdx, Name: g2.Strings().Intern("MyClass"), Kind: KindClass})
	require.True(t, ok)

	n, ok := g2.GetNode(classIdx)
	require.True(t, ok)
	assert.Equal(t, StatusResolved, n.Status)
	assert.Equal(t, []byte(`{"modifiers":["public"]}`), n.Metadata)

	fe, ok := g2.FileEntry(g2.Paths().Intern("com/example/MyClass.go"))
	require.True(t, ok)
	assert.Equal(t, uint64(42), fe.Metadata.ContentHash)
}

func TestDeserializeSchemaMismatch(t *testing.T) {
	g := buildSampleGraph(t)
	data, err := Serialize(g)
	require.NoError(t, err)

	// Corrupt the embedded version by re-serializing a snapshot with a
	// bumped version number, simulating an on-disk blob from a different
	// (newer) schema generation.
	g.snap.version = CurrentSchemaVersion + 1
	bumped, err := Serialize(g)
	require.NoError(t, err)
	_ = data

	_, err = Deserialize(bumped, symbol.NewPool(), symbol.NewPathPool())
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}
