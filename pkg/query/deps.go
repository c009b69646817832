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

// Deps returns fqn's outgoing neighbors (or incoming, if reverse) of the
// given edge type. An empty edgeType matches every edge type. Grounded
// on the reference tools' trace.go call-graph traversal, generalized
// from the "calls" edge to any EdgeType the graph model defines.
func (f *Facade) Deps(fqn string, reverse bool, edgeType graph.EdgeType) ([]NodeView, error) {
	defer f.observe("deps")()

	idx, ok := f.findByFQN(fqn)
	if !ok {
		return nil, notFoundErr(fqn)
	}

	dir := graph.Outgoing
	if reverse {
		dir = graph.Incoming
	}

	neighbors := f.snap.Neighbors(idx, dir, edgeType)
	out := make([]NodeView, 0, len(neighbors))
	for _, n := range neighbors {
		view, ok := f.view(n)
		if ok {
			out = append(out, view)
		}
	}
	return out, nil
}
