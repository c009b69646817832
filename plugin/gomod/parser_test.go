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

func TestParseModuleAndGoVersion(t *testing.T) {
	content := []byte(`module github.com/acme/widgets

go 1.22
`)
	f, err := Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "github.com/acme/widgets", f.ModulePath)
	assert.Equal(t, "1.22", f.GoVersion)
}

func TestParseSingleLineRequire(t *testing.T) {
	content := []byte(`module github.com/acme/widgets

go 1.22

require github.com/stretchr/testify v1.9.0
require github.com/foo/bar v0.1.0 // indirect
`)
	f, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, f.Requires, 2)
	assert.Equal(t, "github.com/stretchr/testify", f.Requires[0].Path)
	assert.Equal(t, "v1.9.0", f.Requires[0].Version)
	assert.False(t, f.Requires[0].Indirect)
	assert.Equal(t, "github.com/foo/bar", f.Requires[1].Path)
	assert.True(t, f.Requires[1].Indirect)
}

func TestParseRequireBlock(t *testing.T) {
	content := []byte(`module github.com/acme/widgets

go 1.22

require (
	github.com/stretchr/testify v1.9.0
	github.com/foo/bar v0.1.0 // indirect
	gopkg.in/yaml.v3 v3.0.1
)
`)
	f, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, f.Requires, 3)
	assert.Equal(t, "gopkg.in/yaml.v3", f.Requires[2].Path)
	assert.False(t, f.Requires[2].Indirect)
}

func TestParseSkipsReplaceBlock(t *testing.T) {
	content := []byte(`module github.com/acme/widgets

go 1.22

require github.com/foo/bar v0.1.0

replace (
	github.com/foo/bar => ../bar
)
`)
	f, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, f.Requires, 1)
	assert.Equal(t, "github.com/foo/bar", f.Requires[0].Path)
}

func TestParseMissingModuleDirectiveErrors(t *testing.T) {
	_, err := Parse([]byte("go 1.22\n"))
	assert.Error(t, err)
}
