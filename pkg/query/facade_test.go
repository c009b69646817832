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

package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/plugin"
	"github.com/kraklabs/naviscope/pkg/symbol"
)

// buildTestGraph constructs:
//
//	widgets (module)
//	  widgets.Button (class)
//	    widgets.Button.Render (method)
//	  widgets.Label (class)
func buildTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	strings := symbol.NewPool()
	paths := symbol.NewPathPool()
	g := graph.Empty(strings, paths)
	b := graph.FromGraph(g)

	ops := []graph.GraphOp{
		graph.AddNode(graph.AddNodePayload{
			Parent: nil, Name: "widgets", Kind: graph.KindModule,
			Language: "go", Origin: graph.OriginProject, Status: graph.StatusResolved,
		}),
		graph.AddNode(graph.AddNodePayload{
			Parent: graph.FQNPath{{Name: "widgets", Kind: graph.KindModule}},
			Name:   "Button", Kind: graph.KindClass,
			Language: "go", Origin: graph.OriginProject, Status: graph.StatusResolved,
			Location: &graph.LocationRef{Path: "widgets/button.go", Range: graph.Range{StartLine: 1, EndLine: 10}},
		}),
		graph.AddNode(graph.AddNodePayload{
			Parent: graph.FQNPath{
				{Name: "widgets", Kind: graph.KindModule},
				{Name: "Button", Kind: graph.KindClass},
			},
			Name: "Render", Kind: graph.KindMethod,
			Language: "go", Origin: graph.OriginProject, Status: graph.StatusResolved,
			Location: &graph.LocationRef{Path: "widgets/button.go", Range: graph.Range{StartLine: 3, EndLine: 5}},
		}),
		graph.AddNode(graph.AddNodePayload{
			Parent: graph.FQNPath{{Name: "widgets", Kind: graph.KindModule}},
			Name:   "Label", Kind: graph.KindClass,
			Language: "go", Origin: graph.OriginExternal, Status: graph.StatusStubbed,
		}),
	}
	require.NoError(t, b.ApplyOps(ops))
	return b.Build()
}

func testRegistryForFacade() *plugin.Registry {
	reg := plugin.NewRegistry()
	reg.RegisterLanguage(&plugin.LanguagePlugin{
		Name:       "go",
		Extensions: []string{".go"},
		NamingConvention: func(parentKind, childKind graph.NodeKind) string {
			if parentKind == graph.KindClass {
				return "#"
			}
			return "."
		},
	})
	return reg
}

func TestLsRootsWhenNoFQN(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	views, err := f.Ls("", Filter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "widgets", views[0].Name)
}

func TestLsChildrenOfFQN(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	views, err := f.Ls("widgets", Filter{})
	require.NoError(t, err)
	names := map[string]bool{}
	for _, v := range views {
		names[v.Name] = true
	}
	assert.True(t, names["Button"])
	assert.True(t, names["Label"])
}

func TestLsFiltersByOrigin(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	views, err := f.Ls("widgets", Filter{Origin: graph.OriginExternal})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Label", views[0].Name)
}

func TestFindMatchesNameAndFQN(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	views, err := f.Find("render", Filter{}, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "widgets.Button#Render", views[0].FQN)
}

func TestFindRejectsEmptyPattern(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	_, err := f.Find("", Filter{}, 0)
	assert.Error(t, err)
}

func TestCatReturnsSingleNode(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	view, ok := f.Cat("widgets.Button")
	require.True(t, ok)
	assert.Equal(t, graph.KindClass, view.Kind)
}

func TestCatMissingReturnsFalse(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	_, ok := f.Cat("widgets.Nonexistent")
	assert.False(t, ok)
}

func TestDepsWalksContainsEdges(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	views, err := f.Deps("widgets", false, graph.EdgeContains)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestResolvePathRoot(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	res := f.ResolvePath("/", "")
	require.Equal(t, PathFound, res.Status)
	assert.Equal(t, "widgets", res.Node.Name)
}

func TestResolvePathParent(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	res := f.ResolvePath("..", "widgets.Button")
	require.Equal(t, PathFound, res.Status)
	assert.Equal(t, "widgets", res.Node.Name)
}

func TestResolvePathFuzzyChildScan(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	res := f.ResolvePath("Button", "widgets")
	require.Equal(t, PathFound, res.Status)
	assert.Equal(t, "widgets.Button", res.Node.FQN)
}

func TestResolvePathNotFound(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	res := f.ResolvePath("Nope", "widgets")
	assert.Equal(t, PathNotFound, res.Status)
}

func TestCompletionCandidatesPrefixAndSorted(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	candidates := f.CompletionCandidates("widgets.B")
	require.Len(t, candidates, 2)
	assert.Equal(t, "widgets.Button", candidates[0])
	assert.Equal(t, "widgets.Button#Render", candidates[1])
}

func TestFindReferencesNotFoundFQN(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	_, err := f.FindReferences(context.Background(), "widgets.DoesNotExist", false)
	assert.Error(t, err)
}

func TestCallHierarchyCalleesNotFoundFQN(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	_, err := f.CallHierarchy(context.Background(), "widgets.DoesNotExist", true)
	assert.Error(t, err)
}

func TestCallHierarchyCalleesNoSemanticService(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	// Button has no Semantic service wired on the test plugin, so the
	// callees scan finds no resolvable occurrences and returns empty
	// rather than erroring.
	out, err := f.CallHierarchy(context.Background(), "widgets.Button", true)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCallHierarchyCallersRequiresSemanticService(t *testing.T) {
	g := buildTestGraph(t)
	f := New(g, testRegistryForFacade(), "", nil)

	// No Semantic.FindOccurrences is wired on the test plugin, so asking
	// for callers (which delegates to FindReferences) surfaces that gap.
	_, err := f.CallHierarchy(context.Background(), "widgets.Button#Render", false)
	assert.Error(t, err)
}
