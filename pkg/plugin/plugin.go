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

// Package plugin defines the capability-bundle contract (C4) that
// language and build-tool plugins implement. A plugin is a plain struct
// of function-valued fields populated by its constructor — there is no
// inheritance tree or interface-based dynamic dispatch, per the redesign
// note on heterogeneous plugin dispatch.
package plugin

import (
	"github.com/kraklabs/naviscope/pkg/graph"
)

// ParseOutput is what a language plugin's ParseFile produces for one
// source file.
type ParseOutput struct {
	Nodes       []ParsedNode
	Relations   []Relation
	Identifiers []string

	// Tree is the opaque, plugin-owned parse tree (e.g. a tree-sitter
	// *sitter.Tree) this parse produced, threaded through unchanged to
	// SemanticService.ResolveAt/FindOccurrences so reference discovery
	// never re-parses a file it already has a tree for.
	Tree any
}

// ParsedNode is a node contributed by a parse, anchored at a structured
// FQN parent before Phase 1's ProjectContext has necessarily resolved it
// to a graph op — the lang_resolver is responsible for turning these into
// graph.GraphOp values once the owning module/package is known.
type ParsedNode struct {
	LocalID  string // stable within this file only, used to target Relations
	Name     string
	Kind     graph.NodeKind
	Status   graph.ResolutionStatus
	Location *graph.LocationRef
	Metadata []byte
}

// Relation is an edge a parse discovered, with its target identified
// either by a LocalID (another node in ParseOutput.Nodes) or by a raw
// name to be resolved later against the file's imports.
type Relation struct {
	SourceLocalID string
	TargetLocalID string // set if the target is another node from this same parse
	TargetName    string // set if the target must be resolved against imports
	Type          graph.EdgeType
	Range         *graph.Range
}

// ProjectContext is Phase 1's output: a map from directory prefix to the
// FQN path of its owning module/package, plus import/alias information
// source resolvers consult when resolving Relations whose target is a
// raw name.
type ProjectContext struct {
	// PathToModule maps a directory prefix (forward-slash, relative to
	// the project root) to the FQNPath of the module/package that owns
	// it. Longest-prefix-match semantics, same as the asset route
	// registry.
	PathToModule map[string]graph.FQNPath
	// ModuleName is the root project's display name, used by Ls/root
	// navigation.
	ModuleName string
}

// ResolvedUnit is the graph operations one source file contributes to the
// index, produced by a LanguagePlugin's LangResolver.
type ResolvedUnit struct {
	Ops []graph.GraphOp
}

// LanguagePlugin is the capability bundle a language implementation
// registers. Every field except ParseFile, LangResolver, and
// NamingConvention is required only if the plugin claims to support the
// corresponding feature (navigation, asset participation); a nil field
// means "unsupported", not a bug.
type LanguagePlugin struct {
	// Name is the plugin's own identifier (e.g. "go", "java").
	Name string
	// Extensions lists file extensions this plugin claims, including the
	// leading dot (e.g. ".go").
	Extensions []string

	ParseFile func(source []byte, path string) (ParseOutput, error)
	LangResolver func(file ParsedFile, ctx *ProjectContext) (ResolvedUnit, error)

	// NamingConvention returns the separator character used when
	// rendering an FQN edge from parentKind to childKind (e.g. "." for
	// package-to-class, "#" for class-to-member).
	NamingConvention func(parentKind, childKind graph.NodeKind) string

	// MetadataEncode/MetadataDecode round-trip a node's opaque metadata
	// payload for storage.
	MetadataEncode func(v any) ([]byte, error)
	MetadataDecode func(data []byte) (any, error)

	Semantic *SemanticService

	// Optional asset participation (C8).
	ExternalResolver func(fqn string, candidates []AssetEntry) (ResolvedUnit, bool, error)
	AssetIndexer     *AssetIndexer
	AssetDiscoverer  *AssetDiscoverer
	StubGenerator    *StubGenerator
}

// ParsedFile pairs a file's raw parse output with its SourceFile
// descriptor, the unit LangResolver consumes.
type ParsedFile struct {
	Path    string
	Content []byte
	Output  ParseOutput
}

// BuildToolPlugin is the capability bundle a build-tool implementation
// registers (Phase 1 of C6).
type BuildToolPlugin struct {
	Name string

	// Recognize reports whether fileName (base name only) is a build
	// file this plugin understands (e.g. "go.mod").
	Recognize func(fileName string) bool

	// BuildResolver parses the given build files (already read) and
	// returns the ops they contribute plus the ProjectContext they
	// establish for Phase 2.
	BuildResolver func(files []BuildFile) (ResolvedUnit, *ProjectContext, error)

	AssetDiscoverer *AssetDiscoverer
}

// BuildFile is one recognized build file handed to a BuildToolPlugin.
type BuildFile struct {
	Path    string
	Content []byte
}
