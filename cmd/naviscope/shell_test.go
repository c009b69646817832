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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/naviscope/pkg/query"
)

func TestApplyResolutionFound(t *testing.T) {
	res := query.PathResolution{
		Status: query.PathFound,
		Node:   query.NodeView{FQN: "widgets.Button"},
	}
	assert.Equal(t, "widgets.Button", applyResolution(res, "widgets"))
}

func TestApplyResolutionAmbiguousKeepsCurrent(t *testing.T) {
	res := query.PathResolution{
		Status:     query.PathAmbiguous,
		Candidates: []query.NodeView{{FQN: "widgets.Button"}, {FQN: "widgets.Label"}},
	}
	assert.Equal(t, "widgets", applyResolution(res, "widgets"))
}

func TestApplyResolutionNotFoundKeepsCurrent(t *testing.T) {
	res := query.PathResolution{Status: query.PathNotFound}
	assert.Equal(t, "widgets", applyResolution(res, "widgets"))
}
