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

// Package symbol implements the engine-wide interner (C1 in the design
// docs): a thread-safe pool that converts strings and filesystem paths to
// compact integer atoms and back. Atoms are stable for the lifetime of a
// single Pool; a Pool is normally created once per engine instance and
// threaded explicitly through the builder, storage context, and query
// helpers rather than reached through a package-level global.
package symbol

import "sync"

// Atom is a compact identifier for an interned string or path. The zero
// value is never a valid atom; interning always returns a value >= 1.
type Atom int32

// Pool interns strings into Atoms. Reads (Resolve) only need a read lock
// to snapshot the backing slice header; writes (Intern of a previously
// unseen string) take the write lock to append and publish.
type Pool struct {
	mu      sync.RWMutex
	index   map[string]Atom
	strings []string // strings[a-1] == the string for atom a
}

// NewPool creates an empty interner.
func NewPool() *Pool {
	return &Pool{
		index: make(map[string]Atom),
	}
}

// Intern returns the atom for s, allocating one if s has not been seen
// before. Never fails except by panicking on allocation failure (OOM),
// which is the documented fatal case for the symbol pool.
func (p *Pool) Intern(s string) Atom {
	p.mu.RLock()
	if a, ok := p.index[s]; ok {
		p.mu.RUnlock()
		return a
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if a, ok := p.index[s]; ok {
		return a
	}
	p.strings = append(p.strings, s)
	a := Atom(len(p.strings))
	p.index[s] = a
	return a
}

// Resolve returns the string for a previously interned atom. It panics if
// the atom was never produced by this pool — that is an internal
// invariant violation (a stale or foreign atom), not a recoverable
// not-found condition.
func (p *Pool) Resolve(a Atom) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if a < 1 || int(a) > len(p.strings) {
		panic("symbol: resolve of unknown atom")
	}
	return p.strings[a-1]
}

// Lookup is like Resolve but reports whether the atom is known instead of
// panicking, for callers that tolerate a missing atom (e.g. diagnostics).
func (p *Pool) Lookup(a Atom) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if a < 1 || int(a) > len(p.strings) {
		return "", false
	}
	return p.strings[a-1], true
}

// Len returns the number of distinct strings interned so far.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.strings)
}

// Strings returns a snapshot copy of every interned string, ordered by
// atom (index 0 holds the string for Atom(1)). Used by the storage layer
// to serialize pool contents alongside a graph snapshot.
func (p *Pool) Strings() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.strings))
	copy(out, p.strings)
	return out
}

// LoadStrings rebuilds the pool's contents from a previously serialized
// string list, assigning atoms in list order (list[0] becomes Atom(1)).
// Used when deserializing a storage blob. The pool must be empty.
func (p *Pool) LoadStrings(strs []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.strings = make([]string, 0, len(strs))
	p.index = make(map[string]Atom, len(strs))
	for _, s := range strs {
		p.strings = append(p.strings, s)
		p.index[s] = Atom(len(p.strings))
	}
}

// PathPool interns filesystem paths. It is mechanically identical to
// Pool; the distinct type exists only so callers cannot accidentally mix
// a string atom with a path atom at the type level.
type PathPool struct {
	inner Pool
}

// NewPathPool creates an empty path interner.
func NewPathPool() *PathPool { return &PathPool{inner: Pool{index: make(map[string]Atom)}} }

// Intern interns a path, returning a PathAtom.
func (p *PathPool) Intern(path string) PathAtom { return PathAtom(p.inner.Intern(path)) }

// Resolve returns the path for a previously interned PathAtom.
func (p *PathPool) Resolve(a PathAtom) string { return p.inner.Resolve(Atom(a)) }

// Lookup is the non-panicking form of Resolve.
func (p *PathPool) Lookup(a PathAtom) (string, bool) { return p.inner.Lookup(Atom(a)) }

// Strings returns every interned path, ordered by atom.
func (p *PathPool) Strings() []string { return p.inner.Strings() }

// LoadStrings rebuilds the path pool from a serialized path list.
func (p *PathPool) LoadStrings(paths []string) { p.inner.LoadStrings(paths) }

// PathAtom is a compact identifier for an interned filesystem path.
type PathAtom int32

// StorageContext is the intern/resolve surface exposed to plugins during
// serialization and deserialization, so plugin metadata codecs can encode
// references to strings/paths as atoms instead of inline text.
type StorageContext struct {
	Strings *Pool
	Paths   *PathPool
}

// NewStorageContext wraps a pair of pools for plugin consumption.
func NewStorageContext(strings *Pool, paths *PathPool) *StorageContext {
	return &StorageContext{Strings: strings, Paths: paths}
}
