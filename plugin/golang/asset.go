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
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/plugin"
)

// ModuleCacheDiscoverer walks a Go module cache root (GOMODCACHE,
// typically $GOPATH/pkg/mod) and streams one AssetEntry per
// "<module>@<version>" directory found at any depth — the unit of
// indexing for Go dependencies, since the module cache names an entire
// module, not a single package, by its final path segment.
var ModuleCacheDiscoverer = plugin.AssetDiscoverer{
	Name:     "go-mod-cache",
	Discover: discoverModuleCache,
}

func discoverModuleCache(root string, out chan<- plugin.AssetEntry) error {
	return walkModCache(root, out)
}

func walkModCache(dir string, out chan<- plugin.AssetEntry) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		if idx := strings.LastIndex(e.Name(), "@"); idx >= 0 {
			out <- plugin.AssetEntry{
				Path:   sub,
				Source: plugin.SourceTag{Kind: plugin.SourcePlatformLib, Version: e.Name()[idx+1:]},
			}
			continue
		}
		if err := walkModCache(sub, out); err != nil {
			return err
		}
	}
	return nil
}

// ModuleCacheIndexer maps a discovered module-cache directory to the
// import path it contributes, by reversing the cache's own encoding
// (every directory from the GOMODCACHE root down to the "<name>@version"
// leaf is one import-path segment).
var ModuleCacheIndexer = plugin.AssetIndexer{
	Name:     "go-mod-cache",
	CanIndex: func(path string) bool { return modCacheImportPath(path) != "" },
	Index:    indexModuleCache,
}

func indexModuleCache(entry plugin.AssetEntry) ([]string, error) {
	importPath := modCacheImportPath(entry.Path)
	if importPath == "" {
		return nil, fmt.Errorf("go: not a module cache path: %s", entry.Path)
	}
	return []string{importPath}, nil
}

// modCacheImportPath reverses the module-cache directory encoding: the
// "<name>@<version>" leaf contributes "name" as the import path's final
// segment, every directory between the "pkg/mod" cache root and that
// leaf contributes one segment each, and the "pkg/mod" prefix itself
// (plus anything above it) is dropped.
func modCacheImportPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i, p := range parts {
		idx := strings.LastIndex(p, "@")
		if idx < 0 {
			continue
		}
		segs := append(append([]string{}, parts[:i]...), p[:idx])
		return strings.Join(trimModCacheRoot(segs), "/")
	}
	return ""
}

func trimModCacheRoot(segs []string) []string {
	for i := 1; i < len(segs); i++ {
		if segs[i] == "mod" && segs[i-1] == "pkg" {
			return segs[i+1:]
		}
	}
	return segs
}

// ModuleCacheStubGenerator materializes a placeholder node for an FQN
// believed to live in a cached module. Unlike a binary archive, a Go
// module's cache entry is plain source, so the "stub" is built by
// actually parsing the matching declaration rather than guessing its
// shape — the resulting node still carries graph.StatusStubbed since it
// was never passed through LangResolver's full relation resolution.
var ModuleCacheStubGenerator = plugin.StubGenerator{
	Name:        "go-mod-cache",
	CanGenerate: func(entry plugin.AssetEntry) bool { return modCacheImportPath(entry.Path) != "" },
	Generate:    generateModuleStub,
}

func generateModuleStub(fqn string, entry plugin.AssetEntry) ([]graph.AddNodePayload, error) {
	importPath := modCacheImportPath(entry.Path)
	if importPath == "" {
		return nil, fmt.Errorf("go: not a module cache path: %s", entry.Path)
	}
	if fqn == importPath {
		return []graph.AddNodePayload{{
			Name:     importPath,
			Kind:     graph.KindDependency,
			Language: "go",
			Origin:   graph.OriginExternal,
			Status:   graph.StatusStubbed,
		}}, nil
	}
	name := strings.TrimPrefix(fqn, importPath+".")
	if name == "" || name == fqn {
		// fqn doesn't share the importPath prefix; fall back to its last
		// dotted segment rather than failing outright.
		name = lastSegment(fqn)
	}

	files, err := filepath.Glob(filepath.Join(entry.Path, "*.go"))
	if err != nil {
		return nil, err
	}
	depParent := graph.FQNPath{{Name: importPath, Kind: graph.KindDependency}}
	for _, f := range files {
		if strings.HasSuffix(f, "_test.go") {
			continue
		}
		source, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		out, err := ParseFile(source, f)
		if err != nil {
			continue
		}
		for _, n := range out.Nodes {
			if n.Kind == importSidecarKind || n.LocalID == "pkg" || n.Name != name {
				continue
			}
			return []graph.AddNodePayload{{
				Parent:   depParent,
				Name:     n.Name,
				Kind:     n.Kind,
				Language: "go",
				Origin:   graph.OriginExternal,
				Status:   graph.StatusStubbed,
				Location: n.Location,
				Metadata: n.Metadata,
			}}, nil
		}
	}
	return nil, fmt.Errorf("go: %s not found under %s", fqn, entry.Path)
}

// ExternalResolve implements plugin.LanguagePlugin.ExternalResolver: it
// fully parses and resolves every source file in the winning candidate's
// package directory, giving the caller a real ResolvedUnit instead of a
// single placeholder node when richer context (the package's other
// members, its own typed-as edges) is worth the extra parse cost.
func ExternalResolve(fqn string, candidates []plugin.AssetEntry) (plugin.ResolvedUnit, bool, error) {
	for _, entry := range candidates {
		importPath := modCacheImportPath(entry.Path)
		if importPath == "" {
			continue
		}
		files, err := filepath.Glob(filepath.Join(entry.Path, "*.go"))
		if err != nil || len(files) == 0 {
			continue
		}
		ctx := &plugin.ProjectContext{PathToModule: map[string]graph.FQNPath{
			entry.Path: {{Name: importPath, Kind: graph.KindDependency}},
		}}
		var ops []graph.GraphOp
		for _, f := range files {
			if strings.HasSuffix(f, "_test.go") {
				continue
			}
			source, err := os.ReadFile(f)
			if err != nil {
				continue
			}
			out, err := ParseFile(source, f)
			if err != nil {
				continue
			}
			unit, err := LangResolver(plugin.ParsedFile{Path: f, Content: source, Output: out}, ctx)
			if err != nil {
				continue
			}
			ops = append(ops, unit.Ops...)
		}
		if len(ops) > 0 {
			return plugin.ResolvedUnit{Ops: ops}, true, nil
		}
	}
	return plugin.ResolvedUnit{}, false, nil
}
