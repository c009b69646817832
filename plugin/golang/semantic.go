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
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/plugin"
)

// Semantic is the Go plugin's SemanticService: §4.7's three orthogonal
// services (resolve-at, find-occurrences, symbol query) plus every field
// of the inference contract's minimum surface.
var Semantic = &plugin.SemanticService{
	ResolveAt:       resolveAt,
	FindOccurrences: findOccurrences,

	FindDefinitions:     findDefinitions,
	ResolveTypeOf:       resolveTypeOf,
	FindImplementations: findImplementations,

	ResolveTypeName: resolveTypeName,
	Superclass:      superclass,
	Interfaces:      interfaces,
	WalkAncestors:   walkAncestors,
	WalkDescendants: walkDescendants,
	GetMembers:      getMembers,
	GetAllMembers:   getAllMembers,

	IsSubtype:      isSubtype,
	SelectOverload: selectOverload,
}

func asTree(tree any) *sitter.Tree {
	t, _ := tree.(*sitter.Tree)
	return t
}

// resolveAt resolves the identifier at (line, col). A selector's field
// name or a qualified type's package-qualifier resolves as Global (its
// binding depends on an import we don't re-walk here); anything else
// resolves against the snapshot by exact name, falling back to a Local
// resolution when no unambiguous graph match exists.
func resolveAt(tree any, source []byte, line, col int, snap *graph.Graph) (plugin.Resolution, error) {
	t := asTree(tree)
	if t == nil {
		return plugin.Resolution{}, fmt.Errorf("go: resolveAt: no parse tree")
	}
	point := sitter.Point{Row: uint32(line), Column: uint32(col)}
	node := t.RootNode().NamedDescendantForPointRange(point, point)
	if node == nil {
		return plugin.Resolution{}, fmt.Errorf("go: resolveAt: no node at %d:%d", line, col)
	}
	if !isIdentifierNode(node.Type()) {
		return plugin.Resolution{}, fmt.Errorf("go: resolveAt: not an identifier (%s)", node.Type())
	}
	name := string(source[node.StartByte():node.EndByte()])

	if parent := node.Parent(); parent != nil {
		switch parent.Type() {
		case "selector_expression":
			if field := parent.ChildByFieldName("field"); field != nil && field.StartByte() == node.StartByte() {
				if operand := parent.ChildByFieldName("operand"); operand != nil {
					base := string(source[operand.StartByte():operand.EndByte()])
					return plugin.Resolution{Kind: plugin.ResolutionGlobal, GlobalFQN: base + "." + name}, nil
				}
			}
		case "qualified_type":
			if pkgNode := parent.ChildByFieldName("package"); pkgNode != nil && pkgNode.StartByte() == node.StartByte() {
				return plugin.Resolution{Kind: plugin.ResolutionGlobal, GlobalFQN: name}, nil
			}
		}
	}

	candidates := snap.FindByName(snap.Strings().Intern(name))
	if len(candidates) == 1 {
		return plugin.Resolution{
			Kind:   plugin.ResolutionPrecise,
			FQN:    renderFQN(snap, candidates[0]),
			Intent: intentFor(snap, candidates[0]),
		}, nil
	}
	// No unambiguous graph definition (zero matches, or more than one
	// candidate sharing this name): report the bare identifier rather than
	// guessing which definition binds here.
	return plugin.Resolution{Kind: plugin.ResolutionLocal, TypeName: name}, nil
}

// findOccurrences walks every identifier-like token in tree and keeps the
// ones textually matching target's simple name. Renamed-but-identically-
// spelled unrelated symbols are filtered out later by the caller's
// ResolveAt re-verification (§4.9 step 3), not here.
func findOccurrences(tree any, source []byte, target plugin.Resolution) ([]plugin.Occurrence, error) {
	t := asTree(tree)
	if t == nil {
		return nil, fmt.Errorf("go: findOccurrences: no parse tree")
	}
	name := targetSimpleName(target)
	if name == "" {
		return nil, nil
	}

	var out []plugin.Occurrence
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if isIdentifierNode(n.Type()) && string(source[n.StartByte():n.EndByte()]) == name {
			out = append(out, plugin.Occurrence{Range: graph.Range{
				StartLine: int(n.StartPoint().Row), StartCol: int(n.StartPoint().Column),
				EndLine: int(n.EndPoint().Row), EndCol: int(n.EndPoint().Column),
			}})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(t.RootNode())
	return out, nil
}

func isIdentifierNode(nodeType string) bool {
	switch nodeType {
	case "identifier", "field_identifier", "type_identifier", "package_identifier":
		return true
	default:
		return false
	}
}

func targetSimpleName(target plugin.Resolution) string {
	switch target.Kind {
	case plugin.ResolutionPrecise:
		return lastSegment(target.FQN)
	case plugin.ResolutionGlobal:
		return lastSegment(target.GlobalFQN)
	default:
		return target.TypeName
	}
}

func lastSegment(fqn string) string {
	if i := strings.LastIndex(fqn, "."); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}

func findDefinitions(snap *graph.Graph, r plugin.Resolution) ([]graph.NodeIndex, error) {
	name := targetSimpleName(r)
	if name == "" {
		return nil, nil
	}
	return snap.FindByName(snap.Strings().Intern(name)), nil
}

func resolveTypeOf(snap *graph.Graph, r plugin.Resolution) (graph.NodeIndex, bool, error) {
	defs, err := findDefinitions(snap, r)
	if err != nil || len(defs) == 0 {
		return graph.NoIndex, false, err
	}
	typed := snap.Neighbors(defs[0], graph.Outgoing, graph.EdgeTypedAs)
	if len(typed) == 0 {
		return graph.NoIndex, false, nil
	}
	return typed[0], true, nil
}

func findImplementations(snap *graph.Graph, typeFQN string) ([]graph.NodeIndex, error) {
	idx, ok := findByFQN(snap, typeFQN)
	if !ok {
		return nil, nil
	}
	return snap.Neighbors(idx, graph.Incoming, graph.EdgeImplements), nil
}

// resolveTypeName is given a bare simple name with no import context of
// its own (the inference contract's minimum surface gives it only the
// ProjectContext); the best it can do without re-parsing the referencing
// file is assume the name lives in the project's own root module.
func resolveTypeName(simpleName string, ctx *plugin.ProjectContext) (string, bool) {
	if isBuiltinType(simpleName) {
		return "", false
	}
	if ctx == nil || ctx.ModuleName == "" {
		return "", false
	}
	return ctx.ModuleName + "." + simpleName, true
}

// superclass always reports none: Go has no single-inheritance class
// hierarchy, but the inference contract still requires the field to
// exist and be callable uniformly across plugins.
func superclass(snap *graph.Graph, typeFQN string) (string, bool) {
	return "", false
}

func interfaces(snap *graph.Graph, typeFQN string) []string {
	idx, ok := findByFQN(snap, typeFQN)
	if !ok {
		return nil
	}
	var out []string
	for _, n := range snap.Neighbors(idx, graph.Outgoing, graph.EdgeImplements) {
		out = append(out, renderFQN(snap, n))
	}
	return out
}

// walkAncestors approximates Go's composition-based promotion: a struct's
// embedded fields (any field typed-as another struct) stand in for class
// ancestry, since Go has no inheritance proper.
func walkAncestors(snap *graph.Graph, typeFQN string) []string {
	idx, ok := findByFQN(snap, typeFQN)
	if !ok {
		return nil
	}
	var out []string
	for _, field := range snap.Neighbors(idx, graph.Outgoing, graph.EdgeContains) {
		if node, ok := snap.GetNode(field); !ok || node.Kind != graph.KindField {
			continue
		}
		for _, typed := range snap.Neighbors(field, graph.Outgoing, graph.EdgeTypedAs) {
			out = append(out, renderFQN(snap, typed))
		}
	}
	return out
}

func walkDescendants(snap *graph.Graph, typeFQN string) []string {
	idx, ok := findByFQN(snap, typeFQN)
	if !ok {
		return nil
	}
	var out []string
	for _, n := range snap.Neighbors(idx, graph.Incoming, graph.EdgeImplements) {
		out = append(out, renderFQN(snap, n))
	}
	return out
}

func getMembers(snap *graph.Graph, typeFQN, name string) []graph.NodeIndex {
	idx, ok := findByFQN(snap, typeFQN)
	if !ok {
		return nil
	}
	nameAtom := snap.Strings().Intern(name)
	var out []graph.NodeIndex
	for _, child := range snap.Neighbors(idx, graph.Outgoing, graph.EdgeContains) {
		if node, ok := snap.GetNode(child); ok && node.Name == nameAtom {
			out = append(out, child)
		}
	}
	return out
}

func getAllMembers(snap *graph.Graph, typeFQN string) []graph.NodeIndex {
	idx, ok := findByFQN(snap, typeFQN)
	if !ok {
		return nil
	}
	return snap.Neighbors(idx, graph.Outgoing, graph.EdgeContains)
}

func isSubtype(snap *graph.Graph, sub, super string) bool {
	for _, iface := range interfaces(snap, sub) {
		if iface == super {
			return true
		}
	}
	return false
}

// selectOverload: Go has no method overloading, so the sole candidate (if
// any) is always the answer regardless of argTypes. A plugin with real
// overload sets would rank candidates by argTypes here.
func selectOverload(candidates []plugin.OverloadCandidate, argTypes []string) (int, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	return 0, true
}

// findByFQN resolves a rendered FQN string back to a node by matching its
// final segment's name index, then confirming the full rendered path —
// the Go plugin has no structured-FQNPath parser of its own, since every
// caller into this package already works in rendered-string terms.
func findByFQN(snap *graph.Graph, fqn string) (graph.NodeIndex, bool) {
	if fqn == "" {
		return graph.NoIndex, false
	}
	simple := lastSegment(fqn)
	for _, idx := range snap.FindByName(snap.Strings().Intern(simple)) {
		if renderFQN(snap, idx) == fqn {
			return idx, true
		}
	}
	return graph.NoIndex, false
}

func renderFQN(snap *graph.Graph, idx graph.NodeIndex) string {
	var segments []string
	cur := idx
	for {
		node, ok := snap.GetNode(cur)
		if !ok {
			break
		}
		segments = append(segments, snap.Strings().Resolve(node.Name))
		parent, ok := snap.Parent(cur)
		if !ok {
			break
		}
		cur = parent
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, ".")
}

func intentFor(snap *graph.Graph, idx graph.NodeIndex) plugin.Intent {
	node, ok := snap.GetNode(idx)
	if !ok {
		return plugin.IntentUnknown
	}
	switch node.Kind {
	case graph.KindClass, graph.KindInterface, graph.KindEnum:
		return plugin.IntentType
	case graph.KindMethod, graph.KindConstructor:
		return plugin.IntentMethod
	case graph.KindField:
		return plugin.IntentField
	case graph.KindVariable:
		return plugin.IntentVariable
	default:
		return plugin.IntentUnknown
	}
}
