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

package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/plugin"
)

// PrevState is the previously stored SourceFile descriptor for one path,
// as kept in the current graph's file index.
type PrevState struct {
	Mtime int64
	Hash  uint64
}

// Result is one classified, possibly-parsed candidate file.
type Result struct {
	Path     string
	Decision ChangeDecision
	Hash     uint64
	Mtime    int64

	// Exactly one of BuildFile / Source is set, only when Decision ==
	// Changed || Decision == New; build files are handed to Phase 1
	// unparsed, source files are parsed eagerly here since parsing is
	// embarrassingly parallel per file.
	BuildFile *plugin.BuildFile
	Source    *plugin.ParsedFile

	Err error
}

// Scanner walks a workspace and classifies/parses changed files.
type Scanner struct {
	registry *plugin.Registry
	workers  int
}

// NewScanner creates a Scanner dispatching to the given plugin registry.
func NewScanner(registry *plugin.Registry) *Scanner {
	return &Scanner{registry: registry}
}

// WithWorkers overrides the default worker-pool sizes: runtime.NumCPU()*2
// for the directory walk's stat workers and 8 for the hash/parse workers.
func (s *Scanner) WithWorkers(n int) *Scanner {
	s.workers = n
	return s
}

// Scan walks root, classifying and parsing every candidate file, using
// previous to skip unchanged files. It returns one Result per candidate
// file found (including unchanged ones, so callers can refresh stored
// mtimes without re-parsing).
func (s *Scanner) Scan(ctx context.Context, root string, ignore []string, previous map[string]PrevState) ([]Result, error) {
	w := newWalker(s.workers)
	candidates, err := w.walk(ctx, WalkOptions{Root: root, Ignore: ignore})
	if err != nil {
		return nil, fmt.Errorf("scanner: walk %s: %w", root, err)
	}

	var (
		mu      sync.Mutex
		results []Result
		wg      sync.WaitGroup
	)
	workers := s.workers
	if workers <= 0 {
		workers = 8
	}
	sem := make(chan struct{}, workers)

	for c := range candidates {
		if c.err != nil {
			mu.Lock()
			results = append(results, Result{Path: c.path, Err: c.err})
			mu.Unlock()
			continue
		}
		c := c
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			r := s.process(ctx, root, c, previous)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results, nil
}

func (s *Scanner) process(ctx context.Context, root string, c candidate, previous map[string]PrevState) Result {
	relPath, err := filepath.Rel(root, c.path)
	if err != nil {
		relPath = c.path
	}
	relPath = filepath.ToSlash(relPath)

	curMtime := c.info.ModTime().Unix()
	prev, hadPrev := previous[relPath]

	if hadPrev && prev.Mtime == curMtime {
		return Result{Path: relPath, Decision: Unchanged, Hash: prev.Hash, Mtime: curMtime}
	}

	content, err := os.ReadFile(c.path)
	if err != nil {
		return Result{Path: relPath, Err: err}
	}

	decision, hash := DetectChange(prev.Mtime, prev.Hash, hadPrev, curMtime, content)
	result := Result{Path: relPath, Decision: decision, Hash: hash, Mtime: curMtime}
	if decision == TouchedOnly || decision == Unchanged {
		return result
	}

	base := filepath.Base(relPath)
	if bt := s.registry.BuildToolFor(base); bt != nil {
		bf := plugin.BuildFile{Path: relPath, Content: content}
		result.BuildFile = &bf
		return result
	}

	ext := filepath.Ext(relPath)
	lp := s.registry.LanguageForExtension(ext)
	if lp == nil {
		// No plugin claims this extension: not an error, just ignored
		// (§4.4 dispatch rule).
		result.Decision = Unchanged
		return result
	}

	select {
	case <-ctx.Done():
		result.Err = ctx.Err()
		return result
	default:
	}

	output, err := lp.ParseFile(content, relPath)
	if err != nil {
		// Parsing errors are non-fatal (§7 Parsing): the file
		// contributes no ops this cycle, prior nodes are retained.
		result.Err = err
		return result
	}
	result.Source = &plugin.ParsedFile{Path: relPath, Content: content, Output: output}
	return result
}

// ToGraphSourceFileInfo converts a scan Result's hash/mtime into the raw
// form consumed by graph.UpdateFile.
func ToGraphSourceFileInfo(r Result) graph.SourceFileInfo {
	return graph.SourceFileInfo{ContentHash: r.Hash, LastModified: r.Mtime}
}
