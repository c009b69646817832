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

package gomod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWiresBuildResolver(t *testing.T) {
	bp := New()
	assert.Equal(t, "go-mod", bp.Name)
	require.NotNil(t, bp.Recognize)
	require.NotNil(t, bp.BuildResolver)
	assert.True(t, bp.Recognize("go.mod"))
	assert.Nil(t, bp.AssetDiscoverer, "module cache discovery belongs to plugin/golang, not the build-tool plugin")
}
