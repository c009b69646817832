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
	"path"
	"strings"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/plugin"
)

// LangResolver implements plugin.LanguagePlugin.LangResolver: it anchors
// one file's declarations under the owning package's FQNPath (resolved
// from ctx.PathToModule by longest directory-prefix match) and resolves
// typed-as relations against the file's own import table, which travels
// alongside the parse's declaration nodes as go-import sidecar entries.
func LangResolver(file plugin.ParsedFile, ctx *plugin.ProjectContext) (plugin.ResolvedUnit, error) {
	pkgPath, modulePath, pkgName := packageIdentity(file, ctx)

	byLocalID := make(map[string]plugin.ParsedNode, len(file.Output.Nodes))
	imports := make(map[string]string, 4)
	for _, n := range file.Output.Nodes {
		if n.Kind == importSidecarKind {
			imports[strings.TrimPrefix(n.LocalID, "import:")] = n.Name
			continue
		}
		if n.LocalID == "pkg" {
			continue
		}
		byLocalID[n.LocalID] = n
	}

	containerOf := make(map[string]string, len(file.Output.Relations))
	var typedAs []plugin.Relation
	for _, rel := range file.Output.Relations {
		switch rel.Type {
		case graph.EdgeContains:
			containerOf[rel.TargetLocalID] = rel.SourceLocalID
		case graph.EdgeTypedAs:
			typedAs = append(typedAs, rel)
		}
	}

	fqnCache := map[string]graph.FQNPath{"pkg": pkgPath}
	var fqnFor func(localID string) graph.FQNPath
	fqnFor = func(localID string) graph.FQNPath {
		if p, ok := fqnCache[localID]; ok {
			return p
		}
		node, ok := byLocalID[localID]
		if !ok {
			return pkgPath
		}
		container := containerOf[localID]
		if container == "" {
			container = "pkg"
		}
		parent := fqnFor(container)
		p := append(append(graph.FQNPath{}, parent...), graph.FQNSegment{Name: node.Name, Kind: node.Kind})
		fqnCache[localID] = p
		return p
	}

	ops := []graph.GraphOp{packageNodeOp(pkgPath, pkgName)}

	for localID, node := range byLocalID {
		container := containerOf[localID]
		if container == "" {
			container = "pkg"
		}
		ops = append(ops, graph.AddNode(graph.AddNodePayload{
			Parent:   fqnFor(container),
			Name:     node.Name,
			Kind:     node.Kind,
			Language: "go",
			Origin:   graph.OriginProject,
			Status:   node.Status,
			Location: node.Location,
			Metadata: node.Metadata,
		}))
	}

	for _, rel := range typedAs {
		target, ok := resolveTypedAsTarget(rel.TargetName, pkgPath, modulePath, imports)
		if !ok {
			continue
		}
		ops = append(ops, graph.AddEdgeOp(graph.AddEdgePayload{
			From: fqnFor(rel.SourceLocalID),
			To:   target,
			Type: graph.EdgeTypedAs,
		}))
	}

	return plugin.ResolvedUnit{Ops: ops}, nil
}

// packageIdentity resolves this file's owning package FQNPath from the
// build tool's ProjectContext, falling back to a root-level package named
// after the parsed package clause when no project context entry covers
// the file's directory (e.g. a lone file parsed outside a recognized
// module, or ad hoc single-file analysis). It also returns the owning
// module's own FQNPath exactly as the build-tool plugin registered it —
// the anchor resolveTypedAsTarget needs to place dependency-node edges
// where the build-tool plugin actually created the dependency nodes,
// rather than guessing a separate identity of its own.
//
// ProjectContext.PathToModule usually carries only the module's root
// directory entry (a go.mod declares one module path, not one per
// subpackage); a file living deeper than the matched prefix gets its own
// package identity by appending its directory's remaining path segments
// onto the matched entry's import path.
func packageIdentity(file plugin.ParsedFile, ctx *plugin.ProjectContext) (pkgPath, modulePath graph.FQNPath, pkgName string) {
	parsedName := ""
	for _, n := range file.Output.Nodes {
		if n.LocalID == "pkg" {
			parsedName = n.Name
			break
		}
	}

	fallback := graph.FQNPath{{Name: parsedName, Kind: graph.KindPackage}}
	if ctx == nil || ctx.PathToModule == nil {
		return fallback, nil, parsedName
	}
	dir := path.Dir(file.Path)
	best := ""
	bestMatched := false
	var bestPath graph.FQNPath
	for prefix, p := range ctx.PathToModule {
		if !dirUnderPrefix(dir, prefix) {
			continue
		}
		if !bestMatched || len(prefix) >= len(best) {
			best, bestPath, bestMatched = prefix, p, true
		}
	}
	if !bestMatched {
		return fallback, nil, parsedName
	}

	rel := relativeDir(dir, best)
	if rel == "" {
		return bestPath, bestPath, bestPath[len(bestPath)-1].Name
	}
	// A derived subpackage is always a plain package node, even when the
	// matched entry's own Kind is graph.KindModule (the module root
	// registered by the build-tool plugin) — only the module's own root
	// directory keeps the module's Kind. modulePath itself stays bestPath,
	// unmodified, since that's the identity the dependency nodes below it
	// are actually anchored under.
	last := bestPath[len(bestPath)-1]
	derived := append(append(graph.FQNPath{}, bestPath[:len(bestPath)-1]...), graph.FQNSegment{
		Name: last.Name + "/" + rel,
		Kind: graph.KindPackage,
	})
	return derived, bestPath, last.Name + "/" + rel
}

// dirUnderPrefix reports whether dir is prefix or a subdirectory of it.
// A root prefix ("" or ".", the only shape a go.mod-derived ProjectContext
// can populate since a module manifest names one module path, not one per
// subpackage) matches every directory, so single-module projects still
// anchor every file under the module's import path.
func dirUnderPrefix(dir, prefix string) bool {
	if prefix == "" || prefix == "." {
		return true
	}
	return dir == prefix || strings.HasPrefix(dir, prefix+"/")
}

// relativeDir returns dir's path segments below prefix, treating a root
// prefix ("" or ".") as contributing zero segments of its own.
func relativeDir(dir, prefix string) string {
	if prefix == "" || prefix == "." {
		if dir == "." {
			return ""
		}
		return dir
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(dir, prefix), "/")
	if rel == "." {
		return ""
	}
	return rel
}

func packageNodeOp(pkgPath graph.FQNPath, pkgName string) graph.GraphOp {
	if len(pkgPath) == 0 {
		return graph.AddNode(graph.AddNodePayload{
			Name: pkgName, Kind: graph.KindPackage,
			Language: "go", Origin: graph.OriginProject, Status: graph.StatusResolved,
		})
	}
	last := pkgPath[len(pkgPath)-1]
	return graph.AddNode(graph.AddNodePayload{
		Parent:   pkgPath[:len(pkgPath)-1],
		Name:     last.Name,
		Kind:     last.Kind,
		Language: "go",
		Origin:   graph.OriginProject,
		Status:   graph.StatusResolved,
	})
}

// resolveTypedAsTarget maps a typed-as relation's raw type name to a
// target FQNPath: an import-qualified name resolves against imports to a
// dependency-anchored path, anchored under modulePath — the same FQNPath
// plugin/gomod's BuildResolver used as the Parent when it created the
// dependency node (graph.Builder.AddEdge requires an exact segment-by-
// segment match with no auto-vivification, so any other anchor silently
// drops the edge); an unqualified name is assumed to live in this file's
// own package.
//
// Known limitation: an unqualified name is always anchored as
// graph.KindClass. If the name actually names an interface, this creates
// a second, separate stub identity rather than linking the edge to the
// already-resolved interface node, since LangResolver has no access to
// the live graph to check an existing kind. Resolving this would need
// either a second pass over the already-built snapshot or widening FQN
// identity to be kind-agnostic for lookup purposes — both out of scope
// here.
func resolveTypedAsTarget(targetName string, pkgPath, modulePath graph.FQNPath, imports map[string]string) (graph.FQNPath, bool) {
	if targetName == "" {
		return nil, false
	}
	if idx := strings.Index(targetName, "."); idx >= 0 {
		alias, name := targetName[:idx], targetName[idx+1:]
		importPath, ok := imports[alias]
		if !ok {
			return nil, false
		}
		dep := append(append(graph.FQNPath{}, modulePath...), graph.FQNSegment{Name: importPath, Kind: graph.KindDependency})
		return append(dep, graph.FQNSegment{Name: name, Kind: graph.KindClass}), true
	}
	return append(append(graph.FQNPath{}, pkgPath...), graph.FQNSegment{Name: targetName, Kind: graph.KindClass}), true
}
