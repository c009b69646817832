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

// ResolutionKind tags the variant of a Resolution result (§4.7).
type ResolutionKind int

const (
	ResolutionLocal ResolutionKind = iota
	ResolutionPrecise
	ResolutionGlobal
)

// Intent narrows what kind of binding a Precise resolution refers to.
type Intent string

const (
	IntentType     Intent = "type"
	IntentMethod   Intent = "method"
	IntentField    Intent = "field"
	IntentVariable Intent = "variable"
	IntentUnknown  Intent = "unknown"
)

// Resolution is the result of resolving a source position to a binding.
type Resolution struct {
	Kind ResolutionKind

	// Local
	DeclRange *graph.Range
	TypeName  string // optional, Local only

	// Precise
	FQN    string
	Intent Intent

	// Global
	GlobalFQN string
}

// Occurrence is one range in a file that references the same binding as
// a target Resolution.
type Occurrence struct {
	Range graph.Range
}

// SemanticService is the per-language capability bundle implementing
// §4.7's three orthogonal services plus the inference contract's minimum
// surface (§4.7 "Inference contract").
type SemanticService struct {
	// ResolveAt resolves the binding at (line, col) in source, given tree
	// (an opaque, plugin-owned parse tree previously produced by
	// ParseFile) and the current snapshot for precise/global lookups.
	ResolveAt func(tree any, source []byte, line, col int, snap *graph.Graph) (Resolution, error)

	// FindOccurrences returns every range in source (whose tree is tree)
	// that references the same binding as target.
	FindOccurrences func(tree any, source []byte, target Resolution) ([]Occurrence, error)

	FindDefinitions     func(snap *graph.Graph, r Resolution) ([]graph.NodeIndex, error)
	ResolveTypeOf       func(snap *graph.Graph, r Resolution) (graph.NodeIndex, bool, error)
	FindImplementations func(snap *graph.Graph, typeFQN string) ([]graph.NodeIndex, error)

	// Inference contract (minimum surface, §4.7).
	ResolveTypeName func(simpleName string, ctx *ProjectContext) (string, bool)
	Superclass      func(snap *graph.Graph, typeFQN string) (string, bool)
	Interfaces      func(snap *graph.Graph, typeFQN string) []string
	WalkAncestors   func(snap *graph.Graph, typeFQN string) []string
	WalkDescendants func(snap *graph.Graph, typeFQN string) []string
	GetMembers      func(snap *graph.Graph, typeFQN, name string) []graph.NodeIndex
	GetAllMembers   func(snap *graph.Graph, typeFQN string) []graph.NodeIndex

	IsSubtype      func(snap *graph.Graph, sub, super string) bool
	SelectOverload func(candidates []OverloadCandidate, argTypes []string) (int, bool)
}

// OverloadCandidate is one method-resolution candidate under
// consideration by SelectOverload.
type OverloadCandidate struct {
	FQN        string
	ParamTypes []string
}
