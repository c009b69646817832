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
	"fmt"
	"path"
	"sort"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/plugin"
)

// projectName is the synthetic root every go.mod-declared module is
// anchored under. A Go workspace can hold more than one module (each
// with its own go.mod); this single root node is what lets ResolvePath's
// "/" have something to land on even in that multi-module case.
const projectName = "workspace"

// Recognize reports whether fileName is a go.mod file — the only build
// manifest this plugin understands.
func Recognize(fileName string) bool {
	return fileName == "go.mod"
}

// BuildResolver implements plugin.BuildToolPlugin.BuildResolver: it
// parses every go.mod handed to it, emits a project/module/dependency
// node tree, and returns a ProjectContext anchoring each module's
// directory (and, transitively via plugin/golang's own longest-prefix
// fallback, every subpackage beneath it) at the module's own FQNPath.
func BuildResolver(files []plugin.BuildFile) (plugin.ResolvedUnit, *plugin.ProjectContext, error) {
	var ops []graph.GraphOp
	pathToModule := make(map[string]graph.FQNPath, len(files))

	// Deterministic ordering: file order is not an ingestion-epoch
	// guarantee, but stable ops make re-runs of this phase diffable.
	sorted := append([]plugin.BuildFile{}, files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var primaryModule string
	ops = append(ops, graph.AddNode(graph.AddNodePayload{
		Name: projectName, Kind: graph.KindProject,
		Language: "go", Origin: graph.OriginProject, Status: graph.StatusResolved,
	}))
	projectPath := graph.FQNPath{{Name: projectName, Kind: graph.KindProject}}

	for _, bf := range sorted {
		mod, err := Parse(bf.Content)
		if err != nil {
			return plugin.ResolvedUnit{}, nil, fmt.Errorf("gomod: %s: %w", bf.Path, err)
		}
		if primaryModule == "" {
			primaryModule = mod.ModulePath
		}

		modulePath := append(append(graph.FQNPath{}, projectPath...), graph.FQNSegment{
			Name: mod.ModulePath, Kind: graph.KindModule,
		})
		ops = append(ops, graph.AddNode(graph.AddNodePayload{
			Parent: projectPath, Name: mod.ModulePath, Kind: graph.KindModule,
			Language: "go", Origin: graph.OriginProject, Status: graph.StatusResolved,
			Location: &graph.LocationRef{Path: bf.Path},
		}))

		for _, req := range mod.Requires {
			ops = append(ops, graph.AddNode(graph.AddNodePayload{
				Parent: modulePath, Name: req.Path, Kind: graph.KindDependency,
				Language: "go", Origin: graph.OriginExternal, Status: graph.StatusStubbed,
			}))
			ops = append(ops, graph.AddEdgeOp(graph.AddEdgePayload{
				From: modulePath,
				To:   append(append(graph.FQNPath{}, modulePath...), graph.FQNSegment{Name: req.Path, Kind: graph.KindDependency}),
				Type: graph.EdgeUsesDependency,
			}))
		}

		dir := path.Dir(bf.Path)
		pathToModule[dir] = modulePath
	}

	return plugin.ResolvedUnit{Ops: ops}, &plugin.ProjectContext{
		PathToModule: pathToModule,
		ModuleName:   primaryModule,
	}, nil
}
