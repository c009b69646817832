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

// Package golang is the reference language plugin (C4): it parses Go
// source with tree-sitter, resolves declarations into graph operations
// anchored under the owning module/package, and serves the semantic
// inference contract (C5/C7) plus Go module cache asset participation
// (C8).
package golang

import "github.com/kraklabs/naviscope/pkg/plugin"

// New builds the Go capability bundle for registration with
// plugin.Registry.RegisterLanguage.
func New() *plugin.LanguagePlugin {
	return &plugin.LanguagePlugin{
		Name:       "go",
		Extensions: []string{".go"},

		ParseFile:    ParseFile,
		LangResolver: LangResolver,

		NamingConvention: NamingConvention,

		MetadataEncode: MetadataEncode,
		MetadataDecode: MetadataDecode,

		Semantic: Semantic,

		ExternalResolver: ExternalResolve,
		AssetIndexer:     &ModuleCacheIndexer,
		AssetDiscoverer:  &ModuleCacheDiscoverer,
		StubGenerator:    &ModuleCacheStubGenerator,
	}
}
