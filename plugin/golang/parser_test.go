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

package golang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/naviscope/pkg/graph"
)

const sampleSource = `package widgets

import (
	"fmt"
	alias "io"
)

type Button struct {
	Label string
	child *Button
}

func (b *Button) Render() string {
	return fmt.Sprintf("[%s]", b.Label)
}

type Renderer interface {
	Render() string
}

func NewButton(label string) *Button {
	return &Button{Label: label}
}

var _ = alias.EOF
`

func TestParseFilePackageName(t *testing.T) {
	out, err := ParseFile([]byte(sampleSource), "widgets/button.go")
	require.NoError(t, err)
	require.NotEmpty(t, out.Nodes)

	var pkgName string
	for _, n := range out.Nodes {
		if n.LocalID == "pkg" {
			pkgName = n.Name
		}
	}
	assert.Equal(t, "widgets", pkgName)
}

func TestParseFileExtractsDeclarations(t *testing.T) {
	out, err := ParseFile([]byte(sampleSource), "widgets/button.go")
	require.NoError(t, err)

	var sawButton, sawRender, sawRenderer, sawNewButton bool
	for _, n := range out.Nodes {
		switch {
		case n.Name == "Button" && n.Kind == graph.KindClass:
			sawButton = true
		case n.Name == "Render":
			sawRender = true
		case n.Name == "Renderer":
			sawRenderer = true
		case n.Name == "NewButton":
			sawNewButton = true
		}
	}
	assert.True(t, sawButton, "expected Button struct node")
	assert.True(t, sawRender, "expected Render method node")
	assert.True(t, sawRenderer, "expected Renderer interface node")
	assert.True(t, sawNewButton, "expected NewButton function node")
}

func TestParseFileEmitsImportSidecars(t *testing.T) {
	out, err := ParseFile([]byte(sampleSource), "widgets/button.go")
	require.NoError(t, err)

	var sawFmt, sawAlias bool
	for _, n := range out.Nodes {
		if n.Kind != importSidecarKind {
			continue
		}
		switch n.Name {
		case "fmt":
			sawFmt = true
		case "io":
			sawAlias = true
		}
	}
	assert.True(t, sawFmt, "expected a sidecar for the fmt import")
	assert.True(t, sawAlias, "expected a sidecar for the aliased io import")
}

func TestParseFileTree(t *testing.T) {
	out, err := ParseFile([]byte(sampleSource), "widgets/button.go")
	require.NoError(t, err)
	assert.NotNil(t, out.Tree, "ParseOutput.Tree should carry the parsed tree for later semantic calls")
}

func TestDefaultImportAlias(t *testing.T) {
	assert.Equal(t, "io", defaultImportAlias("io"))
	assert.Equal(t, "bar", defaultImportAlias("github.com/foo/bar"))
	assert.Equal(t, "yaml", defaultImportAlias("gopkg.in/yaml.v3"))
}
