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

import "github.com/kraklabs/naviscope/pkg/graph"

// PathStatus is the outcome of ResolvePath.
type PathStatus int

const (
	PathFound PathStatus = iota
	PathAmbiguous
	PathNotFound
)

// PathResolution is ResolvePath's result: exactly one node on PathFound,
// zero or more candidates on PathAmbiguous, neither on PathNotFound.
type PathResolution struct {
	Status     PathStatus
	Node       NodeView
	Candidates []NodeView
}

// ResolvePath interprets a user-typed path the way a shell interprets a
// directory path, relative to currentContext (the FQN of the "current
// directory", or "" for the workspace root):
//   - "/" or "root"       -> the project root node
//   - ".."                -> the parent of currentContext under "contains"
//   - an exact FQN match  -> that node
//   - otherwise           -> target joined onto currentContext, else a
//     fuzzy scan of currentContext's (or the roots') children by simple
//     name.
func (f *Facade) ResolvePath(target, currentContext string) PathResolution {
	defer f.observe("resolve_path")()

	switch target {
	case "/", "root":
		return f.resolveRoot()
	case "..":
		return f.resolveParent(currentContext)
	}

	if idx, ok := f.findByFQN(target); ok {
		return f.found(idx)
	}

	if currentContext != "" {
		joined := currentContext + defaultSeparator + target
		if idx, ok := f.findByFQN(joined); ok {
			return f.found(idx)
		}
	}

	return f.fuzzyChildScan(target, currentContext)
}

func (f *Facade) resolveRoot() PathResolution {
	roots := f.snap.RootNodes()
	if len(roots) == 0 {
		return PathResolution{Status: PathNotFound}
	}
	// Prefer a module root over any other root kind (e.g. a bare project
	// node), matching "preferring modules when present".
	for _, idx := range roots {
		if node, ok := f.snap.GetNode(idx); ok && node.Kind == graph.KindModule {
			return f.found(idx)
		}
	}
	return f.found(roots[0])
}

func (f *Facade) resolveParent(currentContext string) PathResolution {
	if currentContext == "" {
		return PathResolution{Status: PathNotFound}
	}
	idx, ok := f.findByFQN(currentContext)
	if !ok {
		return PathResolution{Status: PathNotFound}
	}
	parent, ok := f.snap.Parent(idx)
	if !ok {
		return PathResolution{Status: PathNotFound}
	}
	return f.found(parent)
}

func (f *Facade) fuzzyChildScan(target, currentContext string) PathResolution {
	var children []graph.NodeIndex
	if currentContext != "" {
		if idx, ok := f.findByFQN(currentContext); ok {
			children = f.snap.Neighbors(idx, graph.Outgoing, graph.EdgeContains)
		}
	} else {
		children = f.snap.RootNodes()
	}

	var matches []graph.NodeIndex
	for _, c := range children {
		node, ok := f.snap.GetNode(c)
		if !ok {
			continue
		}
		if f.snap.Strings().Resolve(node.Name) == target {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return PathResolution{Status: PathNotFound}
	case 1:
		return f.found(matches[0])
	default:
		views := make([]NodeView, 0, len(matches))
		for _, m := range matches {
			if v, ok := f.view(m); ok {
				views = append(views, v)
			}
		}
		return PathResolution{Status: PathAmbiguous, Candidates: views}
	}
}

func (f *Facade) found(idx graph.NodeIndex) PathResolution {
	view, ok := f.view(idx)
	if !ok {
		return PathResolution{Status: PathNotFound}
	}
	return PathResolution{Status: PathFound, Node: view}
}
