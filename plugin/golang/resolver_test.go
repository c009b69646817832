// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package golang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/plugin"
	"github.com/kraklabs/naviscope/pkg/symbol"
)

func resolveSample(t *testing.T, ctx *plugin.ProjectContext) ([]graph.GraphOp, *graph.Graph) {
	t.Helper()
	out, err := ParseFile([]byte(sampleSource), "widgets/button.go")
	require.NoError(t, err)

	unit, err := LangResolver(plugin.ParsedFile{Path: "widgets/button.go", Content: []byte(sampleSource), Output: out}, ctx)
	require.NoError(t, err)

	strings := symbol.NewPool()
	paths := symbol.NewPathPool()
	g := graph.Empty(strings, paths)
	b := graph.FromGraph(g)
	require.NoError(t, b.ApplyOps(unit.Ops))
	return unit.Ops, b.Build()
}

func TestLangResolverAnchorsUnderModule(t *testing.T) {
	ctx := &plugin.ProjectContext{
		ModuleName:   "widgets",
		PathToModule: map[string]graph.FQNPath{"widgets": {{Name: "widgets", Kind: graph.KindPackage}}},
	}
	_, snap := resolveSample(t, ctx)

	pkgIdx, ok := snap.FindNode(graph.FQNKey{Parent: graph.NoIndex, Name: snap.Strings().Intern("widgets"), Kind: graph.KindPackage})
	require.True(t, ok, "expected a root widgets package node")

	children := snap.Neighbors(pkgIdx, graph.Outgoing, graph.EdgeContains)
	var names []string
	for _, c := range children {
		n, ok := snap.GetNode(c)
		require.True(t, ok)
		names = append(names, n.Name)
	}
	assert.Contains(t, names, "Button")
	assert.Contains(t, names, "Renderer")
	assert.Contains(t, names, "NewButton")
}

func TestLangResolverMethodAnchoredUnderReceiver(t *testing.T) {
	ctx := &plugin.ProjectContext{
		ModuleName:   "widgets",
		PathToModule: map[string]graph.FQNPath{"widgets": {{Name: "widgets", Kind: graph.KindPackage}}},
	}
	_, snap := resolveSample(t, ctx)

	buttonIdx, ok := snap.FindNode(graph.FQNKey{
		Parent: mustNodeIndex(t, snap, "widgets", graph.KindPackage, graph.NoIndex),
		Name:   snap.Strings().Intern("Button"), Kind: graph.KindClass,
	})
	require.True(t, ok, "expected Button class node")

	members := snap.Neighbors(buttonIdx, graph.Outgoing, graph.EdgeContains)
	var sawRender, sawLabelField bool
	for _, m := range members {
		n, ok := snap.GetNode(m)
		require.True(t, ok)
		if n.Name == "Render" && n.Kind == graph.KindMethod {
			sawRender = true
		}
		if n.Name == "Label" && n.Kind == graph.KindField {
			sawLabelField = true
		}
	}
	assert.True(t, sawRender, "expected Render method anchored under Button")
	assert.True(t, sawLabelField, "expected Label field anchored under Button")
}

func TestLangResolverFallsBackToParsedPackageName(t *testing.T) {
	_, snap := resolveSample(t, nil)
	_, ok := snap.FindNode(graph.FQNKey{Parent: graph.NoIndex, Name: snap.Strings().Intern("widgets"), Kind: graph.KindPackage})
	assert.True(t, ok, "expected a root-level widgets package even with no ProjectContext")
}

// TestLangResolverRootPrefixMatchesAnyFile covers the realistic shape a
// go.mod-derived ProjectContext actually produces: a single root-level
// PathToModule entry (a module manifest names one module path, not one
// per subpackage), which must still give a file living in a subdirectory
// a module-relative package name rather than falling back to a package
// named only after its package clause.
func TestLangResolverRootPrefixMatchesAnyFile(t *testing.T) {
	ctx := &plugin.ProjectContext{
		ModuleName:   "example.com/widgets",
		PathToModule: map[string]graph.FQNPath{"": {{Name: "example.com/widgets", Kind: graph.KindModule}}},
	}
	ops, _ := resolveSample(t, ctx)

	// The module node itself comes from the build-tool phase, not from
	// LangResolver, so it is seeded here the way BuildResolver would add it.
	b := graph.FromGraph(graph.Empty(symbol.NewPool(), symbol.NewPathPool()))
	require.NoError(t, b.ApplyOps(append([]graph.GraphOp{graph.AddNode(graph.AddNodePayload{
		Name: "example.com/widgets", Kind: graph.KindModule,
		Language: "go", Origin: graph.OriginProject, Status: graph.StatusResolved,
	})}, ops...)))
	snap := b.Build()

	rootIdx, ok := snap.FindNode(graph.FQNKey{Parent: graph.NoIndex, Name: snap.Strings().Intern("example.com/widgets"), Kind: graph.KindModule})
	require.True(t, ok, "expected the module root node")

	subIdx, ok := snap.FindNode(graph.FQNKey{
		Parent: graph.NoIndex,
		Name:   snap.Strings().Intern("example.com/widgets/widgets"),
		Kind:   graph.KindPackage,
	})
	require.True(t, ok, "expected the subpackage to be anchored under the derived module-relative path")

	children := snap.Neighbors(subIdx, graph.Outgoing, graph.EdgeContains)
	var names []string
	for _, c := range children {
		n, ok := snap.GetNode(c)
		require.True(t, ok)
		names = append(names, n.Name)
	}
	assert.Contains(t, names, "Button")
	assert.NotEqual(t, rootIdx, subIdx)
}

func TestResolveTypedAsTargetQualified(t *testing.T) {
	imports := map[string]string{"fmt": "fmt"}
	target, ok := resolveTypedAsTarget("fmt.Stringer", nil, nil, imports)
	require.True(t, ok)
	require.Len(t, target, 2)
	assert.Equal(t, "fmt", target[0].Name)
	assert.Equal(t, graph.KindDependency, target[0].Kind)
	assert.Equal(t, "Stringer", target[1].Name)
}

// TestResolveTypedAsTargetQualifiedAnchoredUnderModule covers the actual
// shape plugin/gomod's BuildResolver registers dependency nodes under: a
// project/module-prefixed FQNPath, not a bare root-level one. The target
// path must match exactly, since graph.Builder.AddEdge does no
// auto-vivification and silently drops an edge whose endpoint doesn't
// already exist under that exact path.
func TestResolveTypedAsTargetQualifiedAnchoredUnderModule(t *testing.T) {
	modulePath := graph.FQNPath{
		{Name: "workspace", Kind: graph.KindProject},
		{Name: "example.com/widgets", Kind: graph.KindModule},
	}
	imports := map[string]string{"fmt": "fmt"}
	target, ok := resolveTypedAsTarget("fmt.Stringer", nil, modulePath, imports)
	require.True(t, ok)
	require.Len(t, target, 4)
	assert.Equal(t, modulePath, graph.FQNPath(target[:2]))
	assert.Equal(t, "fmt", target[2].Name)
	assert.Equal(t, graph.KindDependency, target[2].Kind)
	assert.Equal(t, "Stringer", target[3].Name)
	assert.Equal(t, graph.KindClass, target[3].Kind)
}

func TestResolveTypedAsTargetUnqualified(t *testing.T) {
	pkgPath := graph.FQNPath{{Name: "widgets", Kind: graph.KindPackage}}
	target, ok := resolveTypedAsTarget("Button", pkgPath, nil, nil)
	require.True(t, ok)
	require.Len(t, target, 2)
	assert.Equal(t, "widgets", target[0].Name)
	assert.Equal(t, "Button", target[1].Name)
	assert.Equal(t, graph.KindClass, target[1].Kind)
}

func TestResolveTypedAsTargetUnknownImportAlias(t *testing.T) {
	_, ok := resolveTypedAsTarget("unknown.Thing", nil, nil, map[string]string{})
	assert.False(t, ok, "an alias with no matching import should not resolve")
}

// mustNodeIndex locates a single root-level node by name/kind for use as
// a parent lookup key in FQNKey-based assertions.
func mustNodeIndex(t *testing.T, snap *graph.Graph, name string, kind graph.NodeKind, parent graph.NodeIndex) graph.NodeIndex {
	t.Helper()
	idx, ok := snap.FindNode(graph.FQNKey{Parent: parent, Name: snap.Strings().Intern(name), Kind: kind})
	require.True(t, ok)
	return idx
}
