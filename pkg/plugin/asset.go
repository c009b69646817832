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

package plugin

import "github.com/kraklabs/naviscope/pkg/graph"

// SourceTag classifies the origin of a discovered asset (§4.8).
type SourceTag struct {
	Kind    SourceTagKind
	Version string // set for PlatformLib
	Coord   string // set for BuildCache
}

// SourceTagKind enumerates the structured asset-origin tags.
type SourceTagKind string

const (
	SourcePlatformLib  SourceTagKind = "platform-lib"
	SourceBuildCache   SourceTagKind = "build-cache"
	SourceProjectLocal SourceTagKind = "project-local"
	SourceUnknown      SourceTagKind = "unknown"
)

// AssetEntry is one discovered external artifact.
type AssetEntry struct {
	Path   string
	Source SourceTag
}

// AssetDiscoverer streams AssetEntry values found under root. Discover
// must tolerate being asked to stream tens of thousands of entries and
// should not buffer them all before the first send on out.
type AssetDiscoverer struct {
	Name      string
	Discover  func(root string, out chan<- AssetEntry) error
}

// AssetIndexer inspects one discovered asset and extracts the FQN
// prefixes it contributes, for registration in the route registry.
type AssetIndexer struct {
	Name     string
	CanIndex func(path string) bool
	Index    func(entry AssetEntry) ([]string, error)
}

// StubGenerator materializes placeholder nodes for an FQN believed to
// live in a given asset.
type StubGenerator struct {
	Name        string
	CanGenerate func(entry AssetEntry) bool
	Generate    func(fqn string, entry AssetEntry) ([]graph.AddNodePayload, error)
}
