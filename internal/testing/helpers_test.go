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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/naviscope/pkg/graph"
)

func TestBuildGraphAppliesOps(t *testing.T) {
	ops := []graph.GraphOp{
		graph.AddNode(graph.AddNodePayload{
			Name: "widgets", Kind: graph.KindPackage,
			Language: "go", Origin: graph.OriginProject, Status: graph.StatusResolved,
		}),
	}

	snap := BuildGraph(t, ops)
	require.NotNil(t, snap)

	idx, ok := snap.FindNode(graph.FQNKey{
		Parent: graph.NoIndex,
		Name:   snap.Strings().Intern("widgets"),
		Kind:   graph.KindPackage,
	})
	require.True(t, ok)

	node, ok := snap.GetNode(idx)
	require.True(t, ok)
	assert.Equal(t, "widgets", node.Name)
}
