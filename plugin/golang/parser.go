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

// Package golang is the reference language plugin (C5): a tree-sitter
// based parser, resolver, and semantic service for Go source.
package golang

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/plugin"
)

// walker accumulates one file's ParsedNodes/Relations while walking its
// tree-sitter AST.
type walker struct {
	content []byte
	path    string

	packageName string
	imports     []importSpec

	nodes       []plugin.ParsedNode
	relations   []plugin.Relation
	identifiers []string

	anonCounter int
}

type importSpec struct {
	Path  string
	Alias string // "", ".", "_", or an explicit alias
}

// importSidecarKind tags the ParsedNodes this parser uses to carry the
// file's alias->import-path table through to LangResolver without adding
// them to the graph: plugin.ParsedNode has no field for "side information
// that isn't a node", so a plugin-private custom NodeKind (permitted per
// NodeKind's doc) is the cheapest way to thread it through the same
// Nodes slice LangResolver already consumes.
const importSidecarKind graph.NodeKind = "go-import"

// ParseFile implements plugin.LanguagePlugin.ParseFile for Go source.
func ParseFile(source []byte, path string) (plugin.ParseOutput, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return plugin.ParseOutput{}, fmt.Errorf("go: parse %s: %w", path, err)
	}

	root := tree.RootNode()
	w := &walker{content: source, path: path}
	w.packageName = extractPackageName(root, source)
	w.imports = extractImports(root, source)

	w.emitPackageNode()
	w.emitImportSidecars()
	w.walkTop(root)

	return plugin.ParseOutput{
		Nodes:       w.nodes,
		Relations:   w.relations,
		Identifiers: w.identifiers,
		Tree:        tree,
	}, nil
}

func (w *walker) text(n *sitter.Node) string {
	return string(w.content[n.StartByte():n.EndByte()])
}

func (w *walker) location(n *sitter.Node) *graph.LocationRef {
	return &graph.LocationRef{
		Path: w.path,
		Range: graph.Range{
			StartLine: int(n.StartPoint().Row),
			StartCol:  int(n.StartPoint().Column),
			EndLine:   int(n.EndPoint().Row),
			EndCol:    int(n.EndPoint().Column),
		},
	}
}

func (w *walker) emitPackageNode() {
	w.nodes = append(w.nodes, plugin.ParsedNode{
		LocalID: "pkg",
		Name:    w.packageName,
		Kind:    graph.KindPackage,
		Status:  graph.StatusResolved,
	})
}

// emitImportSidecars carries this file's alias->import-path table to
// LangResolver, which strips these back out before building graph ops.
func (w *walker) emitImportSidecars() {
	for _, imp := range w.imports {
		if imp.Alias == "_" {
			continue // side-effect only import, never a type qualifier
		}
		alias := imp.Alias
		if alias == "" {
			alias = defaultImportAlias(imp.Path)
		}
		w.nodes = append(w.nodes, plugin.ParsedNode{
			LocalID: "import:" + alias,
			Name:    imp.Path,
			Kind:    importSidecarKind,
		})
	}
}

// defaultImportAlias approximates the package identifier an import
// without an explicit alias is referenced by: the last path segment,
// skipping a trailing semantic-import-versioning segment like "v2".
func defaultImportAlias(importPath string) string {
	segments := strings.Split(importPath, "/")
	last := segments[len(segments)-1]
	if len(segments) > 1 && isMajorVersionSegment(last) {
		return segments[len(segments)-2]
	}
	return last
}

func isMajorVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// walkTop processes the file's top-level declarations. Go has no nested
// declarations worth descending into beyond functions/methods/types, so
// this only inspects source_file's direct children plus their immediate
// bodies (struct/interface members).
func (w *walker) walkTop(root *sitter.Node) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "function_declaration":
			w.emitFunction(child)
		case "method_declaration":
			w.emitMethod(child)
		case "type_declaration":
			w.emitTypeDeclaration(child)
		}
	}
}

func (w *walker) emitFunction(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	w.identifiers = append(w.identifiers, name)

	localID := "func:" + name
	w.nodes = append(w.nodes, plugin.ParsedNode{
		LocalID:  localID,
		Name:     name,
		Kind:     graph.KindMethod,
		Status:   graph.StatusResolved,
		Location: w.location(node),
		Metadata: encodeGoMetadata(GoMetadata{Exported: isExported(name)}),
	})
	w.relations = append(w.relations, plugin.Relation{
		SourceLocalID: "pkg",
		TargetLocalID: localID,
		Type:          graph.EdgeContains,
	})

	w.emitParamRelations(localID, node)
}

func (w *walker) emitMethod(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	w.identifiers = append(w.identifiers, name)

	receiverNode := node.ChildByFieldName("receiver")
	receiverType := extractReceiverType(receiverNode, w.content)

	localID := "method:" + receiverType + "." + name
	w.nodes = append(w.nodes, plugin.ParsedNode{
		LocalID:  localID,
		Name:     name,
		Kind:     graph.KindMethod,
		Status:   graph.StatusResolved,
		Location: w.location(node),
		Metadata: encodeGoMetadata(GoMetadata{Receiver: receiverType, Exported: isExported(name)}),
	})

	containerID := "pkg"
	if receiverType != "" {
		containerID = "type:" + receiverType
	}
	w.relations = append(w.relations, plugin.Relation{
		SourceLocalID: containerID,
		TargetLocalID: localID,
		Type:          graph.EdgeContains,
	})

	w.emitParamRelations(localID, node)
}

// emitParamRelations extracts typed-as relations for a function/method's
// parameter and result types, resolved against the file's imports at
// LangResolver time (§4.7 Go plugin, typed-as).
func (w *walker) emitParamRelations(ownerLocalID string, node *sitter.Node) {
	for _, fieldName := range []string{"parameters", "result"} {
		list := node.ChildByFieldName(fieldName)
		if list == nil {
			continue
		}
		for _, typeNode := range collectParameterTypes(list) {
			base, qualifier := extractBaseTypeName(typeNode, w.content)
			if base == "" || isBuiltinType(base) {
				continue
			}
			w.relations = append(w.relations, plugin.Relation{
				SourceLocalID: ownerLocalID,
				TargetName:    qualifiedName(qualifier, base),
				Type:          graph.EdgeTypedAs,
			})
		}
	}
}

// collectParameterTypes walks a parameter_list/result node and returns
// every parameter_declaration's type node (result can be a single bare
// type rather than a parenthesized list).
func collectParameterTypes(node *sitter.Node) []*sitter.Node {
	if node.Type() != "parameter_list" {
		return []*sitter.Node{node}
	}
	var out []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "parameter_declaration" {
			continue
		}
		if t := child.ChildByFieldName("type"); t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (w *walker) emitTypeDeclaration(node *sitter.Node) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type_spec":
			w.emitTypeSpec(child)
		case "type_spec_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				if spec := child.Child(j); spec.Type() == "type_spec" {
					w.emitTypeSpec(spec)
				}
			}
		}
	}
}

func (w *walker) emitTypeSpec(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	w.identifiers = append(w.identifiers, name)

	typeNode := node.ChildByFieldName("type")
	switch {
	case typeNode != nil && typeNode.Type() == "struct_type":
		w.emitStruct(name, node, typeNode)
	case typeNode != nil && typeNode.Type() == "interface_type":
		w.emitInterface(name, node, typeNode)
	default:
		w.emitTypeAlias(name, node)
	}
}

func (w *walker) emitStruct(name string, specNode, structNode *sitter.Node) {
	localID := "type:" + name
	w.nodes = append(w.nodes, plugin.ParsedNode{
		LocalID:  localID,
		Name:     name,
		Kind:     graph.KindClass,
		Status:   graph.StatusResolved,
		Location: w.location(specNode),
		Metadata: encodeGoMetadata(GoMetadata{Exported: isExported(name)}),
	})
	w.relations = append(w.relations, plugin.Relation{
		SourceLocalID: "pkg",
		TargetLocalID: localID,
		Type:          graph.EdgeContains,
	})

	fieldList := structNode.ChildByFieldName("body")
	if fieldList == nil {
		return
	}
	for i := 0; i < int(fieldList.ChildCount()); i++ {
		decl := fieldList.Child(i)
		if decl.Type() != "field_declaration" {
			continue
		}
		w.emitField(localID, name, decl)
	}
}

func (w *walker) emitField(ownerLocalID, ownerName string, decl *sitter.Node) {
	typeNode := decl.ChildByFieldName("type")
	var base, qualifier string
	if typeNode != nil {
		base, qualifier = extractBaseTypeName(typeNode, w.content)
	}

	names := fieldNames(decl, w.content)
	if len(names) == 0 && typeNode != nil {
		// Embedded field: the type itself is the field's name.
		names = []string{base}
	}

	for _, fname := range names {
		fieldLocalID := "field:" + ownerName + "." + fname
		w.nodes = append(w.nodes, plugin.ParsedNode{
			LocalID:  fieldLocalID,
			Name:     fname,
			Kind:     graph.KindField,
			Status:   graph.StatusResolved,
			Location: w.location(decl),
		})
		w.relations = append(w.relations, plugin.Relation{
			SourceLocalID: ownerLocalID,
			TargetLocalID: fieldLocalID,
			Type:          graph.EdgeContains,
		})
		if base != "" && !isBuiltinType(base) {
			w.relations = append(w.relations, plugin.Relation{
				SourceLocalID: fieldLocalID,
				TargetName:    qualifiedName(qualifier, base),
				Type:          graph.EdgeTypedAs,
			})
		}
	}
}

func fieldNames(decl *sitter.Node, content []byte) []string {
	var out []string
	for i := 0; i < int(decl.ChildCount()); i++ {
		child := decl.Child(i)
		if child.Type() == "field_identifier" {
			out = append(out, string(content[child.StartByte():child.EndByte()]))
		}
	}
	return out
}

func (w *walker) emitInterface(name string, specNode, ifaceNode *sitter.Node) {
	localID := "type:" + name
	w.nodes = append(w.nodes, plugin.ParsedNode{
		LocalID:  localID,
		Name:     name,
		Kind:     graph.KindInterface,
		Status:   graph.StatusResolved,
		Location: w.location(specNode),
		Metadata: encodeGoMetadata(GoMetadata{Exported: isExported(name)}),
	})
	w.relations = append(w.relations, plugin.Relation{
		SourceLocalID: "pkg",
		TargetLocalID: localID,
		Type:          graph.EdgeContains,
	})

	for i := 0; i < int(ifaceNode.ChildCount()); i++ {
		member := ifaceNode.Child(i)
		if member.Type() != "method_spec" {
			continue
		}
		nameNode := member.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		mname := w.text(nameNode)
		mLocalID := "ifacemethod:" + name + "." + mname
		w.nodes = append(w.nodes, plugin.ParsedNode{
			LocalID:  mLocalID,
			Name:     mname,
			Kind:     graph.KindMethod,
			Status:   graph.StatusResolved,
			Location: w.location(member),
		})
		w.relations = append(w.relations, plugin.Relation{
			SourceLocalID: localID,
			TargetLocalID: mLocalID,
			Type:          graph.EdgeContains,
		})
	}
}

func (w *walker) emitTypeAlias(name string, specNode *sitter.Node) {
	localID := "type:" + name
	w.nodes = append(w.nodes, plugin.ParsedNode{
		LocalID:  localID,
		Name:     name,
		Kind:     graph.KindClass,
		Status:   graph.StatusResolved,
		Location: w.location(specNode),
		Metadata: encodeGoMetadata(GoMetadata{Exported: isExported(name), Alias: true}),
	})
	w.relations = append(w.relations, plugin.Relation{
		SourceLocalID: "pkg",
		TargetLocalID: localID,
		Type:          graph.EdgeContains,
	})
}

func extractPackageName(root *sitter.Node, content []byte) string {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != "package_clause" {
			continue
		}
		if id := child.ChildByFieldName("name"); id != nil {
			return string(content[id.StartByte():id.EndByte()])
		}
	}
	return ""
}

func extractImports(root *sitter.Node, content []byte) []importSpec {
	var out []importSpec
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != "import_declaration" {
			continue
		}
		out = append(out, extractImportDeclaration(child, content)...)
	}
	return out
}

func extractImportDeclaration(node *sitter.Node, content []byte) []importSpec {
	var out []importSpec
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import_spec":
			if spec, ok := extractImportSpec(child, content); ok {
				out = append(out, spec)
			}
		case "import_spec_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				if spec := child.Child(j); spec.Type() == "import_spec" {
					if s, ok := extractImportSpec(spec, content); ok {
						out = append(out, s)
					}
				}
			}
		}
	}
	return out
}

func extractImportSpec(node *sitter.Node, content []byte) (importSpec, bool) {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		return importSpec{}, false
	}
	path := strings.Trim(string(content[pathNode.StartByte():pathNode.EndByte()]), `"`)

	alias := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		alias = string(content[nameNode.StartByte():nameNode.EndByte()])
	}
	return importSpec{Path: path, Alias: alias}, true
}

// extractBaseTypeName strips pointer/slice/array/generic wrappers down to
// the named base type, returning (name, packageQualifier). packageQualifier
// is set only for a qualified_type (pkg.Type).
func extractBaseTypeName(typeNode *sitter.Node, content []byte) (name, qualifier string) {
	if typeNode == nil {
		return "", ""
	}
	switch typeNode.Type() {
	case "pointer_type":
		for i := 0; i < int(typeNode.ChildCount()); i++ {
			if child := typeNode.Child(i); child.Type() != "*" {
				return extractBaseTypeName(child, content)
			}
		}
	case "slice_type", "array_type":
		if elem := typeNode.ChildByFieldName("element"); elem != nil {
			return extractBaseTypeName(elem, content)
		}
	case "generic_type":
		if base := typeNode.ChildByFieldName("type"); base != nil {
			return extractBaseTypeName(base, content)
		}
	case "qualified_type":
		pkgNode := typeNode.ChildByFieldName("package")
		nameNode := typeNode.ChildByFieldName("name")
		if pkgNode != nil && nameNode != nil {
			return string(content[nameNode.StartByte():nameNode.EndByte()]),
				string(content[pkgNode.StartByte():pkgNode.EndByte()])
		}
	case "type_identifier":
		return string(content[typeNode.StartByte():typeNode.EndByte()]), ""
	}
	return "", ""
}

func qualifiedName(qualifier, base string) string {
	if qualifier == "" {
		return base
	}
	return qualifier + "." + base
}

func isExported(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

var goBuiltinTypes = map[string]bool{
	"string": true, "bool": true, "error": true, "byte": true, "rune": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
	"any": true,
}

func isBuiltinType(name string) bool {
	return goBuiltinTypes[name]
}
