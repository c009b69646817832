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

// Package query implements the query/semantic facade (C9): navigation,
// search, containment, and reference discovery operating on a single
// graph snapshot. Every query is a pure read — it never blocks writers
// and is never itself cancellable, since it operates on an immutable
// structure already in hand.
package query

import (
	"time"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/metrics"
	"github.com/kraklabs/naviscope/pkg/plugin"
	"github.com/kraklabs/naviscope/pkg/symbol"
)

// Facade wires a snapshot together with the plugin registry needed for
// reference discovery (parsing candidate files, invoking FindOccurrences)
// and the project root those candidate paths are relative to.
type Facade struct {
	snap     *graph.Graph
	registry *plugin.Registry
	root     string
	metrics  *metrics.Metrics
}

// New creates a facade over one immutable snapshot. root is the project
// root that every indexed path is relative to, consulted only by
// reference discovery (it re-reads candidate source files from disk). m
// may be nil, in which case per-operation latency is not recorded.
func New(snap *graph.Graph, registry *plugin.Registry, root string, m *metrics.Metrics) *Facade {
	return &Facade{snap: snap, registry: registry, root: root, metrics: m}
}

// observe returns a func to defer at the top of each public query
// method, recording its wall-clock duration under kind.
func (f *Facade) observe(kind string) func() {
	start := time.Now()
	return func() { f.metrics.ObserveQuery(kind, time.Since(start).Seconds()) }
}

// NodeView is the caller-facing rendering of one graph node: the
// resolved strings rather than raw atoms/indices, since callers outside
// this package never see interned identifiers.
type NodeView struct {
	Index    graph.NodeIndex
	FQN      string
	Name     string
	Kind     graph.NodeKind
	Language string
	Origin   graph.SourceOrigin
	Status   graph.ResolutionStatus
	Location *graph.Location
}

func (f *Facade) view(idx graph.NodeIndex) (NodeView, bool) {
	node, ok := f.snap.GetNode(idx)
	if !ok {
		return NodeView{}, false
	}
	return NodeView{
		Index:    idx,
		FQN:      f.fqn(idx),
		Name:     f.snap.Strings().Resolve(node.Name),
		Kind:     node.Kind,
		Language: resolveOrEmpty(f.snap, node.Language),
		Origin:   node.Origin,
		Status:   node.Status,
		Location: node.Location,
	}, true
}

func resolveOrEmpty(snap *graph.Graph, a symbol.Atom) string {
	s, ok := snap.Strings().Lookup(a)
	if !ok {
		return ""
	}
	return s
}
