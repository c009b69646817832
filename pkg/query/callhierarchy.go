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

	"github.com/kraklabs/naviscope/pkg/graph"
)

// CallHierarchy groups reference occurrences of fqn by their innermost
// containing definition, producing either a callee->callers tree
// (reverse=false: who calls fqn, bucketed by caller FQN) or a
// caller->callees tree (reverse=true: what fqn itself calls). The graph
// model has no materialized "calls" edge (§4.2's edge types are purely
// structural), so both directions are derived from reference discovery
// rather than a single edge traversal, per the original's "group
// occurrences by innermost containing definition" remark.
//
// The reverse direction is scoped to candidates declared in fqn's own
// file: finding every possible callee graph-wide would mean running
// FindReferences once per candidate symbol in the whole workspace, which
// does not scale. Same-file callees cover the common case (a method
// calling its own type's other methods) without that cost.
func (f *Facade) CallHierarchy(ctx context.Context, fqn string, reverse bool) (map[string][]Reference, error) {
	defer f.observe("call_hierarchy")()

	if !reverse {
		refs, err := f.FindReferences(ctx, fqn, true)
		if err != nil {
			return nil, err
		}
		out := make(map[string][]Reference)
		for _, r := range refs {
			key := fqn
			if r.Container != nil {
				key = r.Container.FQN
			}
			out[key] = append(out[key], r)
		}
		return out, nil
	}

	idx, ok := f.findByFQN(fqn)
	if !ok {
		return nil, notFoundErr(fqn)
	}
	node, ok := f.snap.GetNode(idx)
	if !ok || node.Location == nil {
		return map[string][]Reference{}, nil
	}
	fe, ok := f.snap.FileEntry(node.Location.Path)
	if !ok {
		return map[string][]Reference{}, nil
	}

	out := make(map[string][]Reference)
	for _, cand := range fe.Nodes {
		if cand == idx {
			continue
		}
		cn, ok := f.snap.GetNode(cand)
		if !ok || (cn.Kind != graph.KindMethod && cn.Kind != graph.KindConstructor) {
			continue
		}
		candFQN := f.fqn(cand)
		refs, err := f.FindReferences(ctx, candFQN, true)
		if err != nil {
			continue
		}
		for _, r := range refs {
			if r.Container != nil && r.Container.Index == idx {
				out[candFQN] = append(out[candFQN], r)
			}
		}
	}
	return out, nil
}
