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

// Package engine implements the orchestrator (C7): it owns the current
// snapshot, drives load/save/refresh/update/rebuild, and hosts the stub
// worker that lazily materializes external references discovered during
// resolution.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kraklabs/naviscope/pkg/asset"
	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/metrics"
	"github.com/kraklabs/naviscope/pkg/plugin"
	"github.com/kraklabs/naviscope/pkg/resolver"
	"github.com/kraklabs/naviscope/pkg/scanner"
	"github.com/kraklabs/naviscope/pkg/storage"
	"github.com/kraklabs/naviscope/pkg/symbol"
)

// Orchestrator owns the current graph snapshot and coordinates every
// mutation of it. The write lock is held only for the pointer swap after
// a builder finishes building, never during scanning or resolution.
type Orchestrator struct {
	mu      sync.RWMutex
	current *graph.Graph

	projectRoot string
	indexPath   string

	registry   *plugin.Registry
	assetReg   *asset.Registry
	assetScan  *asset.Scanner
	stubs      *asset.StubService
	stubResult chan []graph.GraphOp

	log     *slog.Logger
	metrics *metrics.Metrics
}

// Config configures a new Orchestrator.
type Config struct {
	ProjectRoot string
	Registry    *plugin.Registry
	Log         *slog.Logger

	// Metrics, when set, is registered against a caller-owned Prometheus
	// registerer (e.g. prometheus.DefaultRegisterer to expose collectors
	// on a shared /metrics endpoint). Left nil, New creates an isolated
	// instance backed by its own unexposed registry, so scan/commit
	// timing is still collected even when nothing scrapes it.
	Metrics *metrics.Metrics
}

// New creates an orchestrator with an empty graph; call Load to restore
// a prior index from disk.
func New(cfg Config) (*Orchestrator, error) {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("engine: resolving project root: %w", err)
	}
	indexPath, err := storage.IndexPath(root)
	if err != nil {
		return nil, fmt.Errorf("engine: resolving index path: %w", err)
	}

	strings := symbol.NewPool()
	paths := symbol.NewPathPool()

	m := cfg.Metrics
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}

	o := &Orchestrator{
		current:     graph.Empty(strings, paths),
		projectRoot: root,
		indexPath:   indexPath,
		registry:    cfg.Registry,
		assetReg:    asset.NewRegistry('.'),
		log:         log,
		metrics:     m,
	}
	o.assetScan = asset.NewScanner(o.assetReg)
	o.stubResult = make(chan []graph.GraphOp, 64)
	o.stubs = asset.NewStubService(o.stubResult, m)

	for _, lp := range cfg.Registry.Languages() {
		if lp.AssetDiscoverer != nil {
			o.assetScan.AddDiscoverer(*lp.AssetDiscoverer)
		}
		if lp.AssetIndexer != nil {
			o.assetScan.AddIndexer(*lp.AssetIndexer)
		}
		if lp.StubGenerator != nil {
			o.stubs.AddGenerator(*lp.StubGenerator)
		}
		if lp.ExternalResolver != nil {
			o.stubs.AddExternalResolver(asset.ExternalResolverFunc(lp.ExternalResolver))
		}
	}

	o.stubs.Start()
	go o.drainStubResults()

	return o, nil
}

// Snapshot returns the current graph. Cloning is an O(1) pointer copy;
// the returned value is safe to read concurrently with any number of
// writers, since writers never mutate an already-published snapshot.
func (o *Orchestrator) Snapshot() *graph.Graph {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current
}

func (o *Orchestrator) swap(g *graph.Graph) {
	o.mu.Lock()
	o.current = g
	o.mu.Unlock()
}

// Load restores a previously saved index from disk, returning false if
// no index file exists yet.
func (o *Orchestrator) Load(ctx context.Context) (bool, error) {
	g, ok, err := storage.Load(o.indexPath, o.Snapshot().Strings(), o.Snapshot().Paths())
	if err != nil {
		return false, fmt.Errorf("engine: load: %w", err)
	}
	if !ok {
		return false, nil
	}
	o.swap(g)
	return true, nil
}

// Save persists the current snapshot to disk atomically.
func (o *Orchestrator) Save() error {
	if err := storage.Save(o.indexPath, o.Snapshot()); err != nil {
		return fmt.Errorf("engine: save: %w", err)
	}
	return nil
}

// Rebuild performs a full from-scratch index of the project root: a
// fresh asset scan, a full workspace walk, phase 1 + phase 2 resolution
// against an empty base graph, an atomic swap, then a save.
func (o *Orchestrator) Rebuild(ctx context.Context, ignore []string) error {
	if err := o.assetScan.Scan(ctx, o.projectRoot); err != nil {
		o.log.Warn("asset scan failed, continuing without fresh routes", "error", err)
	}

	sc := scanner.NewScanner(o.registry)
	results, err := sc.Scan(ctx, o.projectRoot, ignore, nil)
	if err != nil {
		return fmt.Errorf("engine: rebuild scan: %w", err)
	}

	return o.resolveAndCommit(ctx, results, graph.Empty(o.Snapshot().Strings(), o.Snapshot().Paths()))
}

// Refresh detects changes across the whole workspace relative to the
// current snapshot's file index and updates incrementally.
func (o *Orchestrator) Refresh(ctx context.Context, ignore []string) error {
	base := o.Snapshot()
	prev := previousState(base)

	sc := scanner.NewScanner(o.registry)
	results, err := sc.Scan(ctx, o.projectRoot, ignore, prev)
	if err != nil {
		return fmt.Errorf("engine: refresh scan: %w", err)
	}
	return o.resolveAndCommit(ctx, results, base)
}

// UpdateFiles incrementally re-indexes exactly the given paths (absolute
// or relative to the project root), handling deletions as remove_path
// ops ahead of the usual build/source resolution.
func (o *Orchestrator) UpdateFiles(ctx context.Context, files []string) error {
	base := o.Snapshot()
	prev := previousState(base)

	var manualOps []graph.GraphOp
	var toScan []string
	for _, f := range files {
		rel, err := filepath.Rel(o.projectRoot, f)
		if err != nil {
			rel = f
		}
		rel = filepath.ToSlash(rel)
		if _, err := os.Stat(f); err != nil {
			manualOps = append(manualOps, graph.RemovePath(rel))
			continue
		}
		toScan = append(toScan, f)
	}

	var results []scanner.Result
	if len(toScan) > 0 {
		sc := scanner.NewScanner(o.registry)
		for _, f := range toScan {
			rel, err := filepath.Rel(o.projectRoot, f)
			if err != nil {
				rel = f
			}
			scanned, err := sc.Scan(ctx, o.projectRoot, nil, prev)
			if err != nil {
				return fmt.Errorf("engine: update_files scan: %w", err)
			}
			for _, r := range scanned {
				if r.Path == filepath.ToSlash(rel) {
					results = append(results, r)
				}
			}
		}
	}

	return o.resolveAndCommitWithPrefix(ctx, results, base, manualOps)
}

func (o *Orchestrator) resolveAndCommit(ctx context.Context, results []scanner.Result, base *graph.Graph) error {
	return o.resolveAndCommitWithPrefix(ctx, results, base, nil)
}

func (o *Orchestrator) resolveAndCommitWithPrefix(ctx context.Context, results []scanner.Result, base *graph.Graph, prefixOps []graph.GraphOp) error {
	scanStart := time.Now()

	var buildFiles []plugin.BuildFile
	var buildTool *plugin.BuildToolPlugin
	var sources []scanner.Result
	for _, r := range results {
		if r.BuildFile != nil {
			buildFiles = append(buildFiles, *r.BuildFile)
			if buildTool == nil {
				buildTool = o.registry.BuildToolFor(filepath.Base(r.Path))
			}
			continue
		}
		if r.Source != nil {
			sources = append(sources, r)
		}
	}

	result, err := resolver.Resolve(ctx, buildTool, buildFiles, sources, o.registry, resolver.Options{
		RouteLookup: o.assetReg.RouteLookup,
		Snapshot:    base,
	})
	if err != nil {
		return fmt.Errorf("engine: resolve: %w", err)
	}
	for _, fe := range result.Errors {
		o.log.Warn("file failed to lower, keeping prior nodes", "path", fe.Path, "error", fe.Err)
	}
	o.metrics.ObserveScan(time.Since(scanStart).Seconds(), len(sources))

	commitStart := time.Now()
	b := graph.FromGraph(base)
	allOps := append(append([]graph.GraphOp{}, prefixOps...), result.Ops...)
	if err := b.ApplyOps(allOps); err != nil {
		return fmt.Errorf("engine: apply ops: %w", err)
	}
	newGraph := b.Build()
	o.swap(newGraph)
	o.metrics.ObserveEpochCommit(time.Since(commitStart).Seconds())

	for _, stub := range result.Stubs {
		entries := make([]plugin.AssetEntry, 0, len(stub.CandidatePaths))
		for _, p := range stub.CandidatePaths {
			entry, ok := o.assetReg.EntryByPath(p)
			if !ok {
				entry = plugin.AssetEntry{Path: p}
			}
			entries = append(entries, entry)
		}
		o.stubs.Submit(asset.StubRequest{FQN: stub.FQN, Entries: entries})
	}

	return o.Save()
}

func (o *Orchestrator) drainStubResults() {
	for ops := range o.stubResult {
		b := graph.FromGraph(o.Snapshot())
		if err := b.ApplyOps(ops); err != nil {
			o.log.Warn("stub ops failed to apply, discarding", "error", err)
			continue
		}
		o.swap(b.Build())
	}
}

// Close stops the stub worker, draining any in-flight requests first.
func (o *Orchestrator) Close() {
	o.stubs.Stop()
	close(o.stubResult)
}

// Metrics returns the orchestrator's metrics collectors, for wiring into
// a component that also needs to record query-latency observations
// (pkg/query.Facade).
func (o *Orchestrator) Metrics() *metrics.Metrics {
	return o.metrics
}

// AssetRoutes exposes the asset route table for diagnostic inspection
// (the `naviscope cache` subcommands): every registered FQN prefix and
// the archive entries that may define it.
func (o *Orchestrator) AssetRoutes() map[string][]plugin.AssetEntry {
	return o.assetReg.Routes()
}

func previousState(g *graph.Graph) map[string]scanner.PrevState {
	prev := make(map[string]scanner.PrevState)
	for _, pathAtom := range g.AllFiles() {
		entry, ok := g.FileEntry(pathAtom)
		if !ok {
			continue
		}
		path := g.Paths().Resolve(pathAtom)
		prev[path] = scanner.PrevState{Mtime: entry.Metadata.LastModified, Hash: entry.Metadata.ContentHash}
	}
	return prev
}
