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

// Package resolver implements the two-phase ingest pipeline (C6): a
// sequential build-file resolution phase that produces a ProjectContext,
// followed by a parallel per-file source resolution phase staged as
// collect -> analyze -> lower across three chained channels.
package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/plugin"
	"github.com/kraklabs/naviscope/pkg/scanner"
)

// StubRequest names an unresolved external FQN together with the asset
// archives that might define it, discovered during lowering by a
// longest-prefix match against the asset route table.
type StubRequest struct {
	FQN            string
	CandidatePaths []string
}

// RouteLookup resolves an FQN's longest matching route, returning the
// candidate archive paths for it (nil if no route matches). Injected by
// the caller so this package never imports pkg/asset directly; the
// engine wires asset.Registry.Lookup in as this function.
type RouteLookup func(fqn string) []string

// Options configures one Resolve invocation.
type Options struct {
	Workers     int // per-stage worker count, default runtime.NumCPU()
	RouteLookup RouteLookup

	// Snapshot is the graph as committed before this epoch, consulted by
	// stub planning to decide whether an add_edge's target FQN is
	// already locally defined (§4.6 "stub planning"). A nil Snapshot is
	// treated as an empty graph: every add_edge target looks unresolved.
	Snapshot *graph.Graph
}

// Result is everything phase 1 + phase 2 produced for one ingest epoch.
type Result struct {
	Context *plugin.ProjectContext
	Ops     []graph.GraphOp
	Stubs   []StubRequest
	Errors  []FileError
}

// FileError records a non-fatal per-file lowering failure; the file
// contributes no ops for this epoch but does not abort the others.
type FileError struct {
	Path string
	Err  error
}

// Resolve runs phase 1 (sequential) then phase 2 (parallel) and returns
// the combined ops for one commit epoch.
func Resolve(ctx context.Context, buildTool *plugin.BuildToolPlugin, buildFiles []plugin.BuildFile, sources []scanner.Result, registry *plugin.Registry, opts Options) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	result := &Result{}

	// Phase 1: sequential build resolution.
	var pctx *plugin.ProjectContext
	if buildTool != nil && len(buildFiles) > 0 {
		ru, ctxOut, err := buildTool.BuildResolver(buildFiles)
		if err != nil {
			return nil, fmt.Errorf("resolver: phase 1 build resolution: %w", err)
		}
		pctx = ctxOut
		result.Ops = append(result.Ops, ru.Ops...)
	}
	if pctx == nil {
		pctx = &plugin.ProjectContext{PathToModule: map[string]graph.FQNPath{}}
	}
	result.Context = pctx

	// Phase 2: parallel per-file source resolution, staged across three
	// chained channels (collect -> analyze -> lower).
	type collected struct {
		file scanner.Result
		lp   *plugin.LanguagePlugin
	}
	type analyzed = collected
	type lowered struct {
		path string
		ops  []graph.GraphOp
		err  error
	}

	collectCh := make(chan collected, workers)
	analyzeCh := make(chan analyzed, workers)
	lowerCh := make(chan lowered, workers)

	go func() {
		defer close(collectCh)
		for _, s := range sources {
			if s.Source == nil {
				continue
			}
			ext := filepath.Ext(s.Path)
			lp := registry.LanguageForExtension(ext)
			if lp == nil || lp.LangResolver == nil {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case collectCh <- collected{file: s, lp: lp}:
			}
		}
	}()

	var analyzeWG sync.WaitGroup
	for i := 0; i < workers; i++ {
		analyzeWG.Add(1)
		go func() {
			defer analyzeWG.Done()
			for c := range collectCh {
				// source-analyze: attaching import/relation context is
				// folded into the per-language LangResolver call itself
				// (§4.6's lang_resolver already receives the full
				// ProjectContext); this stage exists to preserve the
				// three-stage topology and is where cross-file
				// intra-epoch bookkeeping would be added.
				select {
				case <-ctx.Done():
					return
				case analyzeCh <- c:
				}
			}
		}()
	}
	go func() {
		analyzeWG.Wait()
		close(analyzeCh)
	}()

	var lowerWG sync.WaitGroup
	for i := 0; i < workers; i++ {
		lowerWG.Add(1)
		go func() {
			defer lowerWG.Done()
			for a := range analyzeCh {
				ops, err := lowerFile(a.lp, a.file, pctx)
				select {
				case <-ctx.Done():
					return
				case lowerCh <- lowered{path: a.file.Path, ops: ops, err: err}:
				}
			}
		}()
	}
	go func() {
		lowerWG.Wait()
		close(lowerCh)
	}()

	seen := make(map[string]struct{})
	for l := range lowerCh {
		if l.err != nil {
			result.Errors = append(result.Errors, FileError{Path: l.path, Err: l.err})
			continue
		}
		result.Ops = append(result.Ops, l.ops...)
		if opts.RouteLookup != nil {
			planStubs(l.ops, opts.Snapshot, opts.RouteLookup, seen, &result.Stubs)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// lowerFile implements source-collect + source-lower for one file: it
// assigns the file's parsed nodes a placeholder FQN anchored at the
// module the ProjectContext maps it under (done inside the plugin's
// LangResolver, which receives the file and context directly), then
// prefixes the resulting ops with remove_path + update_file so
// re-indexing a file is idempotent regardless of op-application order
// (§8's round-trip idempotence law).
func lowerFile(lp *plugin.LanguagePlugin, s scanner.Result, pctx *plugin.ProjectContext) ([]graph.GraphOp, error) {
	ru, err := lp.LangResolver(*s.Source, pctx)
	if err != nil {
		return nil, fmt.Errorf("resolver: lowering %s: %w", s.Path, err)
	}

	ops := make([]graph.GraphOp, 0, len(ru.Ops)+3)
	ops = append(ops, graph.RemovePath(s.Path))
	ops = append(ops, graph.UpdateFile(s.Path, scanner.ToGraphSourceFileInfo(s)))
	if len(s.Source.Output.Identifiers) > 0 {
		ops = append(ops, graph.UpdateIdentifiers(s.Path, s.Source.Output.Identifiers))
	}
	ops = append(ops, ru.Ops...)
	return ops, nil
}

// planStubs inspects the ops from one file's lowering for externally
// sourced nodes, and for edges whose target is not already defined in
// the pre-epoch snapshot, enqueuing a StubRequest for each FQN that
// matches an asset route, deduplicated within this epoch (§4.6 "stub
// planning", §4.8 "deduplication").
func planStubs(ops []graph.GraphOp, snap *graph.Graph, lookup RouteLookup, seen map[string]struct{}, stubs *[]StubRequest) {
	for _, op := range ops {
		switch op.Kind {
		case graph.OpAddNode:
			if op.AddNode == nil || op.AddNode.Origin != graph.OriginExternal {
				continue
			}
			planStub(fqnString(op.AddNode.Parent, op.AddNode.Name), lookup, seen, stubs)
		case graph.OpAddEdge:
			if op.AddEdge == nil || len(op.AddEdge.To) == 0 {
				continue
			}
			if _, ok := resolveFQNPath(snap, op.AddEdge.To); ok {
				continue
			}
			planStub(fqnStringFromPath(op.AddEdge.To), lookup, seen, stubs)
		}
	}
}

// planStub enqueues a single StubRequest for fqn if it is not already
// seen this epoch and matches a route.
func planStub(fqn string, lookup RouteLookup, seen map[string]struct{}, stubs *[]StubRequest) {
	if _, ok := seen[fqn]; ok {
		return
	}
	candidates := lookup(fqn)
	if len(candidates) == 0 {
		return
	}
	seen[fqn] = struct{}{}
	*stubs = append(*stubs, StubRequest{FQN: fqn, CandidatePaths: candidates})
}

// resolveFQNPath walks path segment by segment against snap's exact FQN
// index, mirroring graph.Builder.lookupPath but over a read-only
// snapshot rather than an in-progress builder. A nil snap (no prior
// epoch) never resolves anything.
func resolveFQNPath(snap *graph.Graph, path graph.FQNPath) (graph.NodeIndex, bool) {
	if snap == nil {
		return graph.NoIndex, false
	}
	parent := graph.NoIndex
	for _, seg := range path {
		nameAtom := snap.Strings().Intern(seg.Name)
		idx, ok := snap.FindNode(graph.FQNKey{Parent: parent, Name: nameAtom, Kind: seg.Kind})
		if !ok {
			return graph.NoIndex, false
		}
		parent = idx
	}
	return parent, true
}

// fqnString renders a structured FQNPath plus a trailing name into the
// dotted textual form used for asset route matching.
func fqnString(parent graph.FQNPath, name string) string {
	var b strings.Builder
	for _, seg := range parent {
		b.WriteString(seg.Name)
		b.WriteByte('.')
	}
	b.WriteString(name)
	return b.String()
}

// fqnStringFromPath renders a full FQNPath (including the node itself,
// as AddEdgePayload.From/To carry it) into the same dotted textual form.
func fqnStringFromPath(path graph.FQNPath) string {
	parts := make([]string, len(path))
	for i, seg := range path {
		parts[i] = seg.Name
	}
	return strings.Join(parts, ".")
}
