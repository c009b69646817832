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

package testing

import (
	"testing"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/symbol"
)

// BuildGraph applies ops to a fresh, empty graph and returns the
// resulting snapshot, failing the test immediately on any invalid op.
// Centralizes the Empty+Builder+ApplyOps+Build boilerplate most
// package-level fixtures (pkg/query's buildTestGraph, plugin/golang's
// buildSemanticGraph) otherwise repeat verbatim.
func BuildGraph(t *testing.T, ops []graph.GraphOp) *graph.Graph {
	t.Helper()
	b := graph.FromGraph(graph.Empty(symbol.NewPool(), symbol.NewPathPool()))
	if err := b.ApplyOps(ops); err != nil {
		t.Fatalf("testing: applying ops: %v", err)
	}
	return b.Build()
}
