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

// Filter narrows a set of nodes by kind, origin, and decoded metadata.
// A zero-valued field means "no constraint on this dimension", matching
// the reference tool surface's optional query arguments (search.go's
// SearchTextArgs / ListFilesArgs).
type Filter struct {
	Kind     graph.NodeKind
	Origin   graph.SourceOrigin
	Modifier func(metadata any) bool
}

func (f Filter) matches(fac *Facade, node graph.Node) bool {
	if f.Kind != "" && node.Kind != f.Kind {
		return false
	}
	if f.Origin != "" && node.Origin != f.Origin {
		return false
	}
	if f.Modifier != nil {
		meta, ok := fac.decodeMetadata(node)
		if !ok || !f.Modifier(meta) {
			return false
		}
	}
	return true
}

// decodeMetadata decodes a node's opaque metadata via its owning
// language's MetadataDecode, if both are present.
func (f *Facade) decodeMetadata(node graph.Node) (any, bool) {
	if node.Metadata == nil || f.registry == nil {
		return nil, false
	}
	lang, ok := f.snap.Strings().Lookup(node.Language)
	if !ok {
		return nil, false
	}
	for _, lp := range f.registry.Languages() {
		if lp.Name != lang || lp.MetadataDecode == nil {
			continue
		}
		v, err := lp.MetadataDecode(node.Metadata)
		if err != nil {
			return nil, false
		}
		return v, true
	}
	return nil, false
}

// Ls lists the children of fqn (its outgoing "contains" neighbors), or,
// when fqn is empty, the roots of the containment forest. Results are
// filtered by filter before being rendered.
func (f *Facade) Ls(fqn string, filter Filter) ([]NodeView, error) {
	defer f.observe("ls")()

	var indices []graph.NodeIndex
	if fqn == "" {
		indices = f.snap.RootNodes()
	} else {
		idx, ok := f.findByFQN(fqn)
		if !ok {
			return nil, notFoundErr(fqn)
		}
		indices = f.snap.Neighbors(idx, graph.Outgoing, graph.EdgeContains)
	}

	out := make([]NodeView, 0, len(indices))
	for _, idx := range indices {
		node, ok := f.snap.GetNode(idx)
		if !ok || !filter.matches(f, node) {
			continue
		}
		view, ok := f.view(idx)
		if ok {
			out = append(out, view)
		}
	}
	return out, nil
}
