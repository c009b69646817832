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
)

func TestNewWiresEveryCapability(t *testing.T) {
	lp := New()

	assert.Equal(t, "go", lp.Name)
	assert.Equal(t, []string{".go"}, lp.Extensions)

	require.NotNil(t, lp.ParseFile)
	require.NotNil(t, lp.LangResolver)
	require.NotNil(t, lp.NamingConvention)
	require.NotNil(t, lp.MetadataEncode)
	require.NotNil(t, lp.MetadataDecode)
	require.NotNil(t, lp.Semantic)
	require.NotNil(t, lp.ExternalResolver)
	require.NotNil(t, lp.AssetIndexer)
	require.NotNil(t, lp.AssetDiscoverer)
	require.NotNil(t, lp.StubGenerator)

	assert.Equal(t, ".", lp.NamingConvention("", ""))
}

func TestNewSemanticServiceCoversInferenceContract(t *testing.T) {
	lp := New()
	s := lp.Semantic

	assert.NotNil(t, s.ResolveAt)
	assert.NotNil(t, s.FindOccurrences)
	assert.NotNil(t, s.FindDefinitions)
	assert.NotNil(t, s.ResolveTypeOf)
	assert.NotNil(t, s.FindImplementations)
	assert.NotNil(t, s.ResolveTypeName)
	assert.NotNil(t, s.Superclass)
	assert.NotNil(t, s.Interfaces)
	assert.NotNil(t, s.WalkAncestors)
	assert.NotNil(t, s.WalkDescendants)
	assert.NotNil(t, s.GetMembers)
	assert.NotNil(t, s.GetAllMembers)
	assert.NotNil(t, s.IsSubtype)
	assert.NotNil(t, s.SelectOverload)
}

func TestMetadataRoundTrip(t *testing.T) {
	data, err := MetadataEncode(GoMetadata{Receiver: "Button", Exported: true})
	require.NoError(t, err)

	decoded, err := MetadataDecode(data)
	require.NoError(t, err)

	meta, ok := decoded.(GoMetadata)
	require.True(t, ok)
	assert.Equal(t, "Button", meta.Receiver)
	assert.True(t, meta.Exported)
}
