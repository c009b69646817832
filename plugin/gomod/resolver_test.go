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

package gomod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/plugin"
	"github.com/kraklabs/naviscope/pkg/symbol"
)

const sampleGoMod = `module github.com/acme/widgets

go 1.22

require (
	github.com/stretchr/testify v1.9.0
	github.com/foo/bar v0.1.0 // indirect
)
`

func TestRecognize(t *testing.T) {
	assert.True(t, Recognize("go.mod"))
	assert.False(t, Recognize("go.sum"))
	assert.False(t, Recognize("package.json"))
}

func TestBuildResolverEmitsModuleAndDependencies(t *testing.T) {
	unit, ctx, err := BuildResolver([]plugin.BuildFile{
		{Path: "go.mod", Content: []byte(sampleGoMod)},
	})
	require.NoError(t, err)
	require.NotNil(t, ctx)
	assert.Equal(t, "github.com/acme/widgets", ctx.ModuleName)

	modPath, ok := ctx.PathToModule["."]
	require.True(t, ok, "expected the root go.mod directory to map to the module path")
	require.Len(t, modPath, 2)
	assert.Equal(t, graph.KindProject, modPath[0].Kind)
	assert.Equal(t, graph.KindModule, modPath[1].Kind)
	assert.Equal(t, "github.com/acme/widgets", modPath[1].Name)

	strings := symbol.NewPool()
	paths := symbol.NewPathPool()
	g := graph.Empty(strings, paths)
	b := graph.FromGraph(g)
	require.NoError(t, b.ApplyOps(unit.Ops))
	snap := b.Build()

	projIdx, ok := snap.FindNode(graph.FQNKey{Parent: graph.NoIndex, Name: snap.Strings().Intern(projectName), Kind: graph.KindProject})
	require.True(t, ok)

	modIdx, ok := snap.FindNode(graph.FQNKey{Parent: projIdx, Name: snap.Strings().Intern("github.com/acme/widgets"), Kind: graph.KindModule})
	require.True(t, ok)

	deps := snap.Neighbors(modIdx, graph.Outgoing, graph.EdgeContains)
	var names []string
	for _, d := range deps {
		n, ok := snap.GetNode(d)
		require.True(t, ok)
		names = append(names, n.Name)
		assert.Equal(t, graph.KindDependency, n.Kind)
	}
	assert.Contains(t, names, "github.com/stretchr/testify")
	assert.Contains(t, names, "github.com/foo/bar")

	usesDeps := snap.Neighbors(modIdx, graph.Outgoing, graph.EdgeUsesDependency)
	assert.Len(t, usesDeps, 2)
}

func TestBuildResolverInvalidGoMod(t *testing.T) {
	_, _, err := BuildResolver([]plugin.BuildFile{{Path: "go.mod", Content: []byte("go 1.22\n")}})
	assert.Error(t, err)
}
