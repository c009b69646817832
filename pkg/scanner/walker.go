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

// Package scanner implements the workspace walker and change detector
// (C5): a parallel, cancellable, ignore-aware directory walk that
// classifies each candidate file as a build file or a source file and
// dispatches source files to their matching language plugin's parser.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnore matches directories that are never walked regardless of
// project-specific ignore patterns.
var defaultIgnore = []string{
	".git/**", "**/.git/**",
	"node_modules/**", "**/node_modules/**",
	"vendor/**", "**/vendor/**",
}

// WalkOptions configures one workspace walk.
type WalkOptions struct {
	Root     string
	Ignore   []string // additional doublestar glob patterns, relative to Root
	Workers  int      // default: runtime.NumCPU()*2
	MaxFiles int      // 0 = unbounded
}

// candidate is one file discovered by the walk, not yet hashed or
// classified.
type candidate struct {
	path string
	info os.FileInfo
	err  error
}

// walker performs the parallel directory traversal. It mirrors the
// worker-pool/channel architecture used elsewhere in this codebase's
// lineage for I/O-bound fan-out: one goroutine walks directories and
// feeds a buffered paths channel, a fixed pool of workers stat each path,
// and a closer goroutine waits on the pool before closing results.
type walker struct {
	workers    int
	bufferSize int
}

func newWalker(workers int) *walker {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	return &walker{workers: workers, bufferSize: 1024}
}

func (w *walker) walk(ctx context.Context, opts WalkOptions) (<-chan candidate, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "scan", Path: opts.Root, Err: os.ErrInvalid}
	}

	paths := make(chan string, w.bufferSize)
	results := make(chan candidate, w.bufferSize)

	workers := w.workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case p, ok := <-paths:
					if !ok {
						return
					}
					info, err := os.Stat(p)
					select {
					case <-ctx.Done():
						return
					case results <- candidate{path: p, info: info, err: err}:
					}
				}
			}
		}()
	}

	go func() {
		defer close(paths)
		processed := 0
		visited := make(map[string]struct{})
		scanDir(ctx, opts.Root, opts, paths, &processed, visited)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

func scanDir(ctx context.Context, dir string, opts WalkOptions, paths chan<- string, processed *int, visited map[string]struct{}) {
	select {
	case <-ctx.Done():
		return
	default:
	}
	if opts.MaxFiles > 0 && *processed >= opts.MaxFiles {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}
		full := filepath.Join(dir, e.Name())
		rel, err := filepath.Rel(opts.Root, full)
		if err != nil {
			rel = full
		}
		rel = filepath.ToSlash(rel)

		if isIgnored(rel, opts.Ignore) {
			continue
		}

		if e.IsDir() {
			if _, seen := visited[full]; seen {
				continue
			}
			visited[full] = struct{}{}
			scanDir(ctx, full, opts, paths, processed, visited)
			continue
		}

		if opts.MaxFiles > 0 && *processed >= opts.MaxFiles {
			return
		}
		select {
		case <-ctx.Done():
			return
		case paths <- full:
			*processed++
		}
	}
}

func isIgnored(relPath string, extra []string) bool {
	for _, pat := range defaultIgnore {
		if ok, _ := doublestar.Match(pat, relPath); ok {
			return true
		}
	}
	for _, pat := range extra {
		if ok, _ := doublestar.Match(pat, relPath); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, filepath.Base(relPath)); ok {
			return true
		}
	}
	return false
}
