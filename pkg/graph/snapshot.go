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

package graph

import "github.com/kraklabs/naviscope/pkg/symbol"

// CurrentSchemaVersion is bumped whenever the data model or a plugin
// metadata codec changes in a non-backward-compatible way (§6). A stored
// blob whose version differs is discarded and the index rebuilt.
const CurrentSchemaVersion uint32 = 1

type nodeSlot struct {
	valid bool
	node  Node
}

// snapshot is the immutable backing store. It is never mutated after
// Builder.Build() constructs it; every "clone" is a pointer copy of the
// owning Graph.
type snapshot struct {
	version uint32

	nodes []nodeSlot
	edges []Edge

	// adjacency, built once at Build() time for O(1) neighbor queries.
	outAdj [][]int // node index -> edge indices where From == idx
	inAdj  [][]int // node index -> edge indices where To == idx

	fqnIndex       map[FQNKey]NodeIndex
	nameIndex      map[symbol.Atom][]NodeIndex
	fileIndex      map[symbol.PathAtom]*FileEntry
	referenceIndex map[symbol.Atom][]symbol.PathAtom

	strings *symbol.Pool
	paths   *symbol.PathPool
}

// Graph is a cheap, shareable handle to an immutable snapshot. Copying a
// Graph value copies only the pointer, matching the original engine's
// Arc<CodeGraphInner> clone semantics (I5).
type Graph struct {
	snap *snapshot
}

// Empty returns a Graph with no nodes, edges, or indices — the starting
// point for a brand-new project and the result of an empty workspace scan.
func Empty(strings *symbol.Pool, paths *symbol.PathPool) *Graph {
	return &Graph{snap: &snapshot{
		version:        CurrentSchemaVersion,
		fqnIndex:       make(map[FQNKey]NodeIndex),
		nameIndex:      make(map[symbol.Atom][]NodeIndex),
		fileIndex:      make(map[symbol.PathAtom]*FileEntry),
		referenceIndex: make(map[symbol.Atom][]symbol.PathAtom),
		strings:        strings,
		paths:          paths,
	}}
}

// Version returns the snapshot's schema version.
func (g *Graph) Version() uint32 { return g.snap.version }

// Strings returns the symbol pool backing this snapshot's name atoms.
func (g *Graph) Strings() *symbol.Pool { return g.snap.strings }

// Paths returns the path pool backing this snapshot's path atoms.
func (g *Graph) Paths() *symbol.PathPool { return g.snap.paths }

// NodeCount returns the number of live (non-removed) nodes.
func (g *Graph) NodeCount() int {
	n := 0
	for _, s := range g.snap.nodes {
		if s.valid {
			n++
		}
	}
	return n
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.snap.edges) }

// GetNode returns the node at idx, or ok=false if idx is out of range or
// has been removed.
func (g *Graph) GetNode(idx NodeIndex) (Node, bool) {
	if idx < 0 || int(idx) >= len(g.snap.nodes) {
		return Node{}, false
	}
	slot := g.snap.nodes[idx]
	if !slot.valid {
		return Node{}, false
	}
	return slot.node, true
}

// FindNode looks up a node by its exact FQN identity.
func (g *Graph) FindNode(key FQNKey) (NodeIndex, bool) {
	idx, ok := g.snap.fqnIndex[key]
	return idx, ok
}

// FindByName returns every live node whose display name atom equals name.
func (g *Graph) FindByName(name symbol.Atom) []NodeIndex {
	idxs := g.snap.nameIndex[name]
	out := make([]NodeIndex, 0, len(idxs))
	for _, idx := range idxs {
		if _, ok := g.GetNode(idx); ok {
			out = append(out, idx)
		}
	}
	return out
}

// FileEntry returns the file index entry for path, if any.
func (g *Graph) FileEntry(path symbol.PathAtom) (*FileEntry, bool) {
	fe, ok := g.snap.fileIndex[path]
	return fe, ok
}

// AllFiles returns every indexed file path atom.
func (g *Graph) AllFiles() []symbol.PathAtom {
	out := make([]symbol.PathAtom, 0, len(g.snap.fileIndex))
	for p := range g.snap.fileIndex {
		out = append(out, p)
	}
	return out
}

// ReferenceIndexLookup returns the file paths whose text contains the
// given identifier token, used only to scout candidate files during
// reference discovery (never as a source of truth for resolution).
func (g *Graph) ReferenceIndexLookup(token symbol.Atom) []symbol.PathAtom {
	return g.snap.referenceIndex[token]
}

// Neighbors returns the node indices connected to idx via edges of the
// given type (or any type if edgeType is ""), in the given direction.
func (g *Graph) Neighbors(idx NodeIndex, dir Direction, edgeType EdgeType) []NodeIndex {
	if idx < 0 || int(idx) >= len(g.snap.nodes) {
		return nil
	}
	var edgeIdxs []int
	if dir == Outgoing {
		edgeIdxs = g.snap.outAdj[idx]
	} else {
		edgeIdxs = g.snap.inAdj[idx]
	}
	out := make([]NodeIndex, 0, len(edgeIdxs))
	for _, ei := range edgeIdxs {
		e := g.snap.edges[ei]
		if edgeType != "" && e.Type != edgeType {
			continue
		}
		if dir == Outgoing {
			out = append(out, e.To)
		} else {
			out = append(out, e.From)
		}
	}
	return out
}

// FindNodeAt returns the innermost node whose selection range contains
// (line, col) within the file at path, or NoIndex/false if none matches.
func (g *Graph) FindNodeAt(path symbol.PathAtom, line, col int) (NodeIndex, bool) {
	fe, ok := g.FileEntry(path)
	if !ok {
		return NoIndex, false
	}
	best := NoIndex
	bestSize := -1
	for _, idx := range fe.Nodes {
		n, ok := g.GetNode(idx)
		if !ok || n.Location == nil {
			continue
		}
		r := n.Location.NameRange()
		if !r.Contains(line, col) {
			continue
		}
		size := rangeSize(r)
		if best == NoIndex || size < bestSize {
			best, bestSize = idx, size
		}
	}
	if best == NoIndex {
		return NoIndex, false
	}
	return best, true
}

func rangeSize(r Range) int {
	lines := r.EndLine - r.StartLine
	return lines*100000 + (r.EndCol - r.StartCol)
}

// AllNodeIndices returns the index of every live node, in index order.
// Used by full-scan query operations (Find, Cat) that have no index to
// consult.
func (g *Graph) AllNodeIndices() []NodeIndex {
	out := make([]NodeIndex, 0, len(g.snap.nodes))
	for i, slot := range g.snap.nodes {
		if slot.valid {
			out = append(out, NodeIndex(i))
		}
	}
	return out
}

// RootNodes returns every node with no incoming "contains" edge — the
// roots of the containment forest (I6). Used by Ls when no FQN is given.
func (g *Graph) RootNodes() []NodeIndex {
	var out []NodeIndex
	for i, slot := range g.snap.nodes {
		if !slot.valid {
			continue
		}
		idx := NodeIndex(i)
		if len(g.Neighbors(idx, Incoming, EdgeContains)) == 0 {
			out = append(out, idx)
		}
	}
	return out
}

// Parent returns the node's parent index and whether one exists.
func (g *Graph) Parent(idx NodeIndex) (NodeIndex, bool) {
	n, ok := g.GetNode(idx)
	if !ok || n.Parent == NoIndex {
		return NoIndex, false
	}
	return n.Parent, true
}
