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

// Package asset implements the asset & stub subsystem (C8): discovery of
// external archives (build caches, platform libraries), a route registry
// mapping FQN prefixes to the archives that define them, and a
// channel-driven stub worker that materializes placeholder graph nodes
// for unresolved external references on demand.
package asset

import (
	"strings"
	"sync"

	"github.com/kraklabs/naviscope/pkg/plugin"
)

// Registry is a thread-safe, longest-prefix route table from FQN prefix
// to the asset entries that define it. A lookup matches only at a
// package-separator boundary: "com.foo" matches a route "com" but not a
// route "com.fo".
type Registry struct {
	mu        sync.RWMutex
	routes    map[string][]plugin.AssetEntry
	separator byte
}

// NewRegistry creates an empty route registry using sep as the FQN
// package-separator character (default '.' when sep is zero).
func NewRegistry(sep byte) *Registry {
	if sep == 0 {
		sep = '.'
	}
	return &Registry{routes: make(map[string][]plugin.AssetEntry), separator: sep}
}

// Register adds entry as a candidate definer of every FQN under prefix.
func (r *Registry) Register(prefix string, entry plugin.AssetEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[prefix] = append(r.routes[prefix], entry)
}

// Lookup returns the entries registered for the longest prefix of fqn
// that either equals fqn or is immediately followed by the separator.
// Filter, if non-nil, further restricts by source tag.
func (r *Registry) Lookup(fqn string, filter func(plugin.SourceTag) bool) []plugin.AssetEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best := ""
	matched := false
	for prefix := range r.routes {
		if !prefixMatches(fqn, prefix, r.separator) {
			continue
		}
		if !matched || len(prefix) > len(best) {
			best = prefix
			matched = true
		}
	}
	if !matched {
		return nil
	}
	entries := r.routes[best]
	if filter == nil {
		out := make([]plugin.AssetEntry, len(entries))
		copy(out, entries)
		return out
	}
	var out []plugin.AssetEntry
	for _, e := range entries {
		if filter(e.Source) {
			out = append(out, e)
		}
	}
	return out
}

func prefixMatches(fqn, prefix string, sep byte) bool {
	if prefix == "" {
		return false
	}
	if !strings.HasPrefix(fqn, prefix) {
		return false
	}
	if len(fqn) == len(prefix) {
		return true
	}
	return fqn[len(prefix)] == sep
}

// Routes returns a snapshot copy of every registered prefix and its
// candidate entries, for CLI/diagnostic inspection (the `naviscope cache`
// subcommands) — Lookup alone cannot answer "what's registered" without
// already knowing an FQN to query.
func (r *Registry) Routes() map[string][]plugin.AssetEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]plugin.AssetEntry, len(r.routes))
	for prefix, entries := range r.routes {
		cp := make([]plugin.AssetEntry, len(entries))
		copy(cp, entries)
		out[prefix] = cp
	}
	return out
}

// RouteLookup adapts Registry.Lookup into the resolver.RouteLookup shape
// (no source-tag filtering), returning just the candidate paths.
func (r *Registry) RouteLookup(fqn string) []string {
	entries := r.Lookup(fqn, nil)
	if len(entries) == 0 {
		return nil
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}

// EntryByPath resolves an AssetEntry back from a path, for the stub
// worker which receives candidate paths rather than full entries from
// resolver.StubRequest (the resolver package does not import asset): a
// path alone loses the SourceTag recorded at discovery time, which a
// StubGenerator may need to tell a platform library apart from a build
// cache entry.
func (r *Registry) EntryByPath(path string) (plugin.AssetEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entries := range r.routes {
		for _, e := range entries {
			if e.Path == path {
				return e, true
			}
		}
	}
	return plugin.AssetEntry{}, false
}
