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

import (
	"fmt"
	"sort"

	"github.com/kraklabs/naviscope/pkg/symbol"
)

type edgeKey struct {
	From NodeIndex
	To   NodeIndex
	Type EdgeType
}

// Builder is the single-owner mutable working copy described in §4.3. It
// is not safe for concurrent mutation; callers own exactly one Builder at
// a time and call Build() to produce a fresh immutable Graph.
type Builder struct {
	nodes    map[NodeIndex]*Node
	nextIdx  NodeIndex
	edges    map[edgeKey]struct{}
	fqnIndex map[FQNKey]NodeIndex
	// nameIndex/referenceIndex are derived at Build() time from nodes,
	// except referenceIndex tokens which are builder-local since they
	// don't derive from node attributes.
	fileIndex      map[symbol.PathAtom]*FileEntry
	referenceIndex map[symbol.Atom]map[symbol.PathAtom]struct{}

	strings *symbol.Pool
	paths   *symbol.PathPool
}

// NewBuilder creates an empty builder backed by the given pools. Pools
// are shared with the Graph this builder will eventually produce, and
// with any sibling builders operating on the same engine instance.
func NewBuilder(strings *symbol.Pool, paths *symbol.PathPool) *Builder {
	return &Builder{
		nodes:          make(map[NodeIndex]*Node),
		edges:          make(map[edgeKey]struct{}),
		fqnIndex:       make(map[FQNKey]NodeIndex),
		fileIndex:      make(map[symbol.PathAtom]*FileEntry),
		referenceIndex: make(map[symbol.Atom]map[symbol.PathAtom]struct{}),
		strings:        strings,
		paths:          paths,
	}
}

// FromGraph creates a builder as a deep structural copy of g — never
// shared with g's own snapshot, so mutating the builder cannot affect any
// reader still holding g.
func FromGraph(g *Graph) *Builder {
	b := NewBuilder(g.snap.strings, g.snap.paths)
	b.nextIdx = NodeIndex(len(g.snap.nodes))
	for i, slot := range g.snap.nodes {
		if !slot.valid {
			continue
		}
		idx := NodeIndex(i)
		n := slot.node
		b.nodes[idx] = &n
		b.fqnIndex[FQNKey{Parent: n.Parent, Name: n.Name, Kind: n.Kind}] = idx
	}
	for _, e := range g.snap.edges {
		b.edges[edgeKey{From: e.From, To: e.To, Type: e.Type}] = struct{}{}
	}
	for path, fe := range g.snap.fileIndex {
		cp := FileEntry{Metadata: fe.Metadata, Nodes: append([]NodeIndex(nil), fe.Nodes...)}
		b.fileIndex[path] = &cp
	}
	for tok, paths := range g.snap.referenceIndex {
		set := make(map[symbol.PathAtom]struct{}, len(paths))
		for _, p := range paths {
			set[p] = struct{}{}
		}
		b.referenceIndex[tok] = set
	}
	return b
}

// resolvePath walks an FQNPath under an existing node topology, creating
// any missing ancestor segment along the way via the same
// idempotent-on-identity rule AddNode uses. Returns NoIndex for an empty
// path (the graph root).
func (b *Builder) resolvePath(path FQNPath) NodeIndex {
	parent := NoIndex
	for _, seg := range path {
		nameAtom := b.strings.Intern(seg.Name)
		key := FQNKey{Parent: parent, Name: nameAtom, Kind: seg.Kind}
		if idx, ok := b.fqnIndex[key]; ok {
			parent = idx
			continue
		}
		idx := b.nextIdx
		b.nextIdx++
		b.nodes[idx] = &Node{
			Parent: parent,
			Name:   nameAtom,
			Kind:   seg.Kind,
			Status: StatusUnresolved,
		}
		b.fqnIndex[key] = idx
		if parent != NoIndex {
			b.addEdge(parent, idx, EdgeContains)
		}
		parent = idx
	}
	return parent
}

func (b *Builder) addEdge(from, to NodeIndex, t EdgeType) {
	b.edges[edgeKey{From: from, To: to, Type: t}] = struct{}{}
}

// AddNode is idempotent on identity (parent,name,kind): a second add with
// the same identity updates the existing node's attributes rather than
// creating a duplicate (only when the new status is not a regression —
// I4). Returns the node's index.
func (b *Builder) AddNode(p AddNodePayload) NodeIndex {
	parent := b.resolvePath(p.Parent)
	nameAtom := b.strings.Intern(p.Name)
	key := FQNKey{Parent: parent, Name: nameAtom, Kind: p.Kind}

	var loc *Location
	if p.Location != nil {
		pathAtom := b.paths.Intern(p.Location.Path)
		loc = &Location{Path: pathAtom, Range: p.Location.Range, SelectionRange: p.Location.SelectionRange}
	}

	if idx, ok := b.fqnIndex[key]; ok {
		existing := b.nodes[idx]
		if existing.Status.Improves(p.Status) {
			existing.Language = b.strings.Intern(p.Language)
			existing.Origin = p.Origin
			existing.Status = p.Status
			if loc != nil {
				existing.Location = loc
			}
			if p.Metadata != nil {
				existing.Metadata = p.Metadata
			}
		}
		if loc != nil {
			b.attachFileNode(loc.Path, idx)
		}
		return idx
	}

	idx := b.nextIdx
	b.nextIdx++
	n := &Node{
		Parent:   parent,
		Name:     nameAtom,
		Kind:     p.Kind,
		Language: b.strings.Intern(p.Language),
		Origin:   p.Origin,
		Status:   p.Status,
		Location: loc,
		Metadata: p.Metadata,
	}
	b.nodes[idx] = n
	b.fqnIndex[key] = idx
	if parent != NoIndex {
		b.addEdge(parent, idx, EdgeContains)
	}
	if loc != nil {
		b.attachFileNode(loc.Path, idx)
	}
	return idx
}

func (b *Builder) attachFileNode(path symbol.PathAtom, idx NodeIndex) {
	fe, ok := b.fileIndex[path]
	if !ok {
		fe = &FileEntry{Metadata: SourceFile{Path: path}}
		b.fileIndex[path] = fe
	}
	for _, existing := range fe.Nodes {
		if existing == idx {
			return
		}
	}
	fe.Nodes = append(fe.Nodes, idx)
}

// AddEdge adds an edge between the nodes identified by the two FQNPaths.
// Silently no-ops if either endpoint cannot be resolved, or if an edge of
// the same type already connects them in the same direction.
func (b *Builder) AddEdge(p AddEdgePayload) {
	from := b.lookupPath(p.From)
	to := b.lookupPath(p.To)
	if from == NoIndex || to == NoIndex {
		return
	}
	b.addEdge(from, to, p.Type)
}

func (b *Builder) lookupPath(path FQNPath) NodeIndex {
	parent := NoIndex
	for _, seg := range path {
		nameAtom := b.strings.Intern(seg.Name)
		key := FQNKey{Parent: parent, Name: nameAtom, Kind: seg.Kind}
		idx, ok := b.fqnIndex[key]
		if !ok {
			return NoIndex
		}
		parent = idx
	}
	return parent
}

// RemoveNode removes a node and cleans every secondary index that
// referenced it, along with any edge incident on it.
func (b *Builder) RemoveNode(idx NodeIndex) {
	n, ok := b.nodes[idx]
	if !ok {
		return
	}
	key := FQNKey{Parent: n.Parent, Name: n.Name, Kind: n.Kind}
	delete(b.fqnIndex, key)
	delete(b.nodes, idx)

	for ek := range b.edges {
		if ek.From == idx || ek.To == idx {
			delete(b.edges, ek)
		}
	}
	if n.Location != nil {
		if fe, ok := b.fileIndex[n.Location.Path]; ok {
			fe.Nodes = removeIndex(fe.Nodes, idx)
		}
	}
}

func removeIndex(s []NodeIndex, idx NodeIndex) []NodeIndex {
	out := s[:0]
	for _, v := range s {
		if v != idx {
			out = append(out, v)
		}
	}
	return out
}

// RemovePath removes every node located in path, cascading edges, and
// drops path's file-index entry and any reference-index entries pointing
// at it.
func (b *Builder) RemovePath(rawPath string) {
	pathAtom := b.paths.Intern(rawPath)
	fe, ok := b.fileIndex[pathAtom]
	if ok {
		for _, idx := range append([]NodeIndex(nil), fe.Nodes...) {
			b.RemoveNode(idx)
		}
	}
	delete(b.fileIndex, pathAtom)
	for tok, set := range b.referenceIndex {
		delete(set, pathAtom)
		if len(set) == 0 {
			delete(b.referenceIndex, tok)
		}
	}
}

// UpdateFile creates or updates the SourceFile metadata for a path's
// FileEntry, leaving its node list untouched.
func (b *Builder) UpdateFile(rawPath string, info SourceFileInfo) {
	pathAtom := b.paths.Intern(rawPath)
	fe, ok := b.fileIndex[pathAtom]
	if !ok {
		fe = &FileEntry{}
		b.fileIndex[pathAtom] = fe
	}
	fe.Metadata = SourceFile{Path: pathAtom, ContentHash: info.ContentHash, LastModified: info.LastModified}
}

// UpdateIdentifiers appends tokens to the reference index, each pointing
// at rawPath.
func (b *Builder) UpdateIdentifiers(rawPath string, tokens []string) {
	pathAtom := b.paths.Intern(rawPath)
	for _, tok := range tokens {
		atom := b.strings.Intern(tok)
		set, ok := b.referenceIndex[atom]
		if !ok {
			set = make(map[symbol.PathAtom]struct{})
			b.referenceIndex[atom] = set
		}
		set[pathAtom] = struct{}{}
	}
}

// ApplyOp applies a single GraphOp.
func (b *Builder) ApplyOp(op GraphOp) error {
	switch op.Kind {
	case OpAddNode:
		if op.AddNode == nil {
			return fmt.Errorf("graph: OpAddNode op missing payload")
		}
		b.AddNode(*op.AddNode)
	case OpAddEdge:
		if op.AddEdge == nil {
			return fmt.Errorf("graph: OpAddEdge op missing payload")
		}
		b.AddEdge(*op.AddEdge)
	case OpRemovePath:
		b.RemovePath(op.Path)
	case OpUpdateFile:
		if op.File == nil {
			return fmt.Errorf("graph: OpUpdateFile op missing payload")
		}
		b.UpdateFile(op.Path, *op.File)
	case OpUpdateIdentifiers:
		b.UpdateIdentifiers(op.Path, op.Tokens)
	default:
		return fmt.Errorf("graph: unknown op kind %d", op.Kind)
	}
	return nil
}

// ApplyOps applies every op in sequence, in order. The builder never
// reorders ops; callers are responsible for the remove-then-add ordering
// required when re-indexing a file.
func (b *Builder) ApplyOps(ops []GraphOp) error {
	for i, op := range ops {
		if err := b.ApplyOp(op); err != nil {
			return fmt.Errorf("graph: applying op %d: %w", i, err)
		}
	}
	return nil
}

// Build consumes the builder's state into a fresh immutable Graph,
// computing adjacency lists and the name index along the way.
func (b *Builder) Build() *Graph {
	n := int(b.nextIdx)
	nodes := make([]nodeSlot, n)
	for idx, node := range b.nodes {
		nodes[idx] = nodeSlot{valid: true, node: *node}
	}

	edgeList := make([]Edge, 0, len(b.edges))
	for ek := range b.edges {
		edgeList = append(edgeList, Edge{From: ek.From, To: ek.To, Type: ek.Type})
	}
	sort.Slice(edgeList, func(i, j int) bool {
		if edgeList[i].From != edgeList[j].From {
			return edgeList[i].From < edgeList[j].From
		}
		if edgeList[i].To != edgeList[j].To {
			return edgeList[i].To < edgeList[j].To
		}
		return edgeList[i].Type < edgeList[j].Type
	})

	outAdj := make([][]int, n)
	inAdj := make([][]int, n)
	for i, e := range edgeList {
		outAdj[e.From] = append(outAdj[e.From], i)
		inAdj[e.To] = append(inAdj[e.To], i)
	}

	nameIndex := make(map[symbol.Atom][]NodeIndex)
	for idx, slot := range nodes {
		if !slot.valid {
			continue
		}
		nameIndex[slot.node.Name] = append(nameIndex[slot.node.Name], NodeIndex(idx))
	}

	fileIndex := make(map[symbol.PathAtom]*FileEntry, len(b.fileIndex))
	for path, fe := range b.fileIndex {
		cp := FileEntry{Metadata: fe.Metadata, Nodes: append([]NodeIndex(nil), fe.Nodes...)}
		fileIndex[path] = &cp
	}

	referenceIndex := make(map[symbol.Atom][]symbol.PathAtom, len(b.referenceIndex))
	for tok, set := range b.referenceIndex {
		paths := make([]symbol.PathAtom, 0, len(set))
		for p := range set {
			paths = append(paths, p)
		}
		referenceIndex[tok] = paths
	}

	fqnIndex := make(map[FQNKey]NodeIndex, len(b.fqnIndex))
	for k, v := range b.fqnIndex {
		fqnIndex[k] = v
	}

	return &Graph{snap: &snapshot{
		version:        CurrentSchemaVersion,
		nodes:          nodes,
		edges:          edgeList,
		outAdj:         outAdj,
		inAdj:          inAdj,
		fqnIndex:       fqnIndex,
		nameIndex:      nameIndex,
		fileIndex:      fileIndex,
		referenceIndex: referenceIndex,
		strings:        b.strings,
		paths:          b.paths,
	}}
}
