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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/kraklabs/naviscope/pkg/symbol"
)

// ErrSchemaMismatch is returned by Deserialize when the blob's schema
// version does not match CurrentSchemaVersion. Callers (pkg/storage) treat
// this as a signal to delete the blob and rebuild from scratch (§7).
var ErrSchemaMismatch = errors.New("graph: schema version mismatch")

type wireRange struct {
	StartLine int `msgpack:"sl"`
	StartCol  int `msgpack:"sc"`
	EndLine   int `msgpack:"el"`
	EndCol    int `msgpack:"ec"`
}

type wireLocation struct {
	Path           int32      `msgpack:"p"`
	Range          wireRange  `msgpack:"r"`
	SelectionRange *wireRange `msgpack:"s,omitempty"`
}

type wireNode struct {
	Valid    bool          `msgpack:"v"`
	Parent   int32         `msgpack:"pa"`
	Name     int32         `msgpack:"n"`
	Kind     string        `msgpack:"k"`
	Language int32         `msgpack:"l"`
	Origin   string        `msgpack:"o"`
	Status   string        `msgpack:"st"`
	Location *wireLocation `msgpack:"loc,omitempty"`
	Metadata []byte        `msgpack:"m,omitempty"`
}

type wireEdge struct {
	From int32  `msgpack:"f"`
	To   int32  `msgpack:"t"`
	Type string `msgpack:"ty"`
}

type wireFileEntry struct {
	Path         int32   `msgpack:"p"`
	ContentHash  uint64  `msgpack:"h"`
	LastModified int64   `msgpack:"m"`
	Nodes        []int32 `msgpack:"n"`
}

type wireRefEntry struct {
	Token int32   `msgpack:"tok"`
	Paths []int32 `msgpack:"paths"`
}

type wireBlob struct {
	Version    uint32          `msgpack:"version"`
	Strings    []string        `msgpack:"strings"`
	Paths      []string        `msgpack:"paths"`
	Nodes      []wireNode      `msgpack:"nodes"`
	Edges      []wireEdge      `msgpack:"edges"`
	Files      []wireFileEntry `msgpack:"files"`
	References []wireRefEntry  `msgpack:"refs"`
}

func toWireRange(r *Range) *wireRange {
	if r == nil {
		return nil
	}
	return &wireRange{StartLine: r.StartLine, StartCol: r.StartCol, EndLine: r.EndLine, EndCol: r.EndCol}
}

func fromWireRange(r *wireRange) *Range {
	if r == nil {
		return nil
	}
	return &Range{StartLine: r.StartLine, StartCol: r.StartCol, EndLine: r.EndLine, EndCol: r.EndCol}
}

// toWireBlob converts the live graph into its wire representation. It
// does not mutate g.
func toWireBlob(g *Graph) wireBlob {
	s := g.snap
	blob := wireBlob{
		Version: s.version,
		Strings: s.strings.Strings(),
		Paths:   s.paths.Strings(),
		Nodes:   make([]wireNode, len(s.nodes)),
		Edges:   make([]wireEdge, len(s.edges)),
	}
	for i, slot := range s.nodes {
		if !slot.valid {
			blob.Nodes[i] = wireNode{Valid: false}
			continue
		}
		n := slot.node
		wn := wireNode{
			Valid:    true,
			Parent:   int32(n.Parent),
			Name:     int32(n.Name),
			Kind:     string(n.Kind),
			Language: int32(n.Language),
			Origin:   string(n.Origin),
			Status:   string(n.Status),
			Metadata: n.Metadata,
		}
		if n.Location != nil {
			wn.Location = &wireLocation{
				Path:           int32(n.Location.Path),
				Range:          *toWireRange(&n.Location.Range),
				SelectionRange: toWireRange(n.Location.SelectionRange),
			}
		}
		blob.Nodes[i] = wn
	}
	for i, e := range s.edges {
		blob.Edges[i] = wireEdge{From: int32(e.From), To: int32(e.To), Type: string(e.Type)}
	}
	for path, fe := range s.fileIndex {
		wfe := wireFileEntry{
			Path:         int32(path),
			ContentHash:  fe.Metadata.ContentHash,
			LastModified: fe.Metadata.LastModified,
			Nodes:        make([]int32, len(fe.Nodes)),
		}
		for i, idx := range fe.Nodes {
			wfe.Nodes[i] = int32(idx)
		}
		blob.Files = append(blob.Files, wfe)
	}
	for tok, paths := range s.referenceIndex {
		wre := wireRefEntry{Token: int32(tok), Paths: make([]int32, len(paths))}
		for i, p := range paths {
			wre.Paths[i] = int32(p)
		}
		blob.References = append(blob.References, wre)
	}
	return blob
}

func fromWireBlob(blob wireBlob, strings *symbol.Pool, paths *symbol.PathPool) *Graph {
	strings.LoadStrings(blob.Strings)
	paths.LoadStrings(blob.Paths)

	nodes := make([]nodeSlot, len(blob.Nodes))
	for i, wn := range blob.Nodes {
		if !wn.Valid {
			continue
		}
		n := Node{
			Parent:   NodeIndex(wn.Parent),
			Name:     symbol.Atom(wn.Name),
			Kind:     NodeKind(wn.Kind),
			Language: symbol.Atom(wn.Language),
			Origin:   SourceOrigin(wn.Origin),
			Status:   ResolutionStatus(wn.Status),
			Metadata: wn.Metadata,
		}
		if wn.Location != nil {
			n.Location = &Location{
				Path:           symbol.PathAtom(wn.Location.Path),
				Range:          *fromWireRange(&wn.Location.Range),
				SelectionRange: fromWireRange(wn.Location.SelectionRange),
			}
		}
		nodes[i] = nodeSlot{valid: true, node: n}
	}

	edges := make([]Edge, len(blob.Edges))
	for i, we := range blob.Edges {
		edges[i] = Edge{From: NodeIndex(we.From), To: NodeIndex(we.To), Type: EdgeType(we.Type)}
	}

	outAdj := make([][]int, len(nodes))
	inAdj := make([][]int, len(nodes))
	for i, e := range edges {
		outAdj[e.From] = append(outAdj[e.From], i)
		inAdj[e.To] = append(inAdj[e.To], i)
	}

	fqnIndex := make(map[FQNKey]NodeIndex)
	nameIndex := make(map[symbol.Atom][]NodeIndex)
	for i, slot := range nodes {
		if !slot.valid {
			continue
		}
		idx := NodeIndex(i)
		n := slot.node
		fqnIndex[FQNKey{Parent: n.Parent, Name: n.Name, Kind: n.Kind}] = idx
		nameIndex[n.Name] = append(nameIndex[n.Name], idx)
	}

	fileIndex := make(map[symbol.PathAtom]*FileEntry, len(blob.Files))
	for _, wfe := range blob.Files {
		nodeIdxs := make([]NodeIndex, len(wfe.Nodes))
		for i, n := range wfe.Nodes {
			nodeIdxs[i] = NodeIndex(n)
		}
		fileIndex[symbol.PathAtom(wfe.Path)] = &FileEntry{
			Metadata: SourceFile{
				Path:         symbol.PathAtom(wfe.Path),
				ContentHash:  wfe.ContentHash,
				LastModified: wfe.LastModified,
			},
			Nodes: nodeIdxs,
		}
	}

	referenceIndex := make(map[symbol.Atom][]symbol.PathAtom, len(blob.References))
	for _, wre := range blob.References {
		paths := make([]symbol.PathAtom, len(wre.Paths))
		for i, p := range wre.Paths {
			paths[i] = symbol.PathAtom(p)
		}
		referenceIndex[symbol.Atom(wre.Token)] = paths
	}

	return &Graph{snap: &snapshot{
		version:        blob.Version,
		nodes:          nodes,
		edges:          edges,
		outAdj:         outAdj,
		inAdj:          inAdj,
		fqnIndex:       fqnIndex,
		nameIndex:      nameIndex,
		fileIndex:      fileIndex,
		referenceIndex: referenceIndex,
		strings:        strings,
		paths:          paths,
	}}
}

// Serialize encodes g as a self-contained MessagePack document compressed
// with zstd (§6). The caller (pkg/storage) is responsible for the
// length-prefixed, versioned on-disk framing around this payload.
func Serialize(g *Graph) ([]byte, error) {
	blob := toWireBlob(g)
	packed, err := msgpack.Marshal(&blob)
	if err != nil {
		return nil, fmt.Errorf("graph: marshal msgpack: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("graph: create zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(packed, nil), nil
}

// Deserialize reverses Serialize, populating strings and paths (which must
// be empty pools) and reconstructing the snapshot's derived indices. It
// returns ErrSchemaMismatch without touching the pools if the embedded
// version does not match CurrentSchemaVersion.
func Deserialize(data []byte, strings *symbol.Pool, paths *symbol.PathPool) (*Graph, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("graph: create zstd reader: %w", err)
	}
	defer dec.Close()
	packed, err := io.ReadAll(dec.IOReadCloser())
	if err != nil {
		return nil, fmt.Errorf("graph: decompress: %w", err)
	}

	var blob wireBlob
	if err := msgpack.Unmarshal(packed, &blob); err != nil {
		return nil, fmt.Errorf("graph: unmarshal msgpack: %w", err)
	}
	if blob.Version != CurrentSchemaVersion {
		return nil, ErrSchemaMismatch
	}
	return fromWireBlob(blob, strings, paths), nil
}

// EncodeSchemaVersion writes a big-endian uint32 header, used by
// pkg/storage to peek the version before paying for decompression.
func EncodeSchemaVersion(w io.Writer, version uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], version)
	_, err := w.Write(buf[:])
	return err
}

// DecodeSchemaVersion reads a big-endian uint32 header.
func DecodeSchemaVersion(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}
