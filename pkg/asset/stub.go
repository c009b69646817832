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

package asset

import (
	"fmt"
	"sync"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/metrics"
	"github.com/kraklabs/naviscope/pkg/plugin"
)

// fingerprint identifies one version of an asset archive, combining
// path, size, and modification time so a content change addresses a
// distinct cache key (§4.8 "cache invalidation").
type fingerprint struct {
	path  string
	size  int64
	mtime int64
}

// cacheKey identifies one cached stub result. external distinguishes a
// whole-FQN ExternalResolver hit (keyed on fqn alone, fp left zero) from
// a per-entry StubGenerator hit (keyed on fqn+fp), so the two caching
// paths can't collide on entries that happen to share a zero
// fingerprint (e.g. Fingerprints missing an entry's path).
type cacheKey struct {
	fp       fingerprint
	fqn      string
	external bool
}

// ExternalResolverFunc is a language plugin's richer alternative to a
// StubGenerator: given every candidate AssetEntry at once, it may return
// a fully-lowered ResolvedUnit (declarations plus their relations)
// instead of a single placeholder node.
type ExternalResolverFunc func(fqn string, candidates []plugin.AssetEntry) (plugin.ResolvedUnit, bool, error)

// StubRequest names one unresolved FQN together with the asset entries
// that might define it, in priority order.
type StubRequest struct {
	FQN       string
	Entries   []plugin.AssetEntry
	Fingerprints map[string]fingerprint // path -> fingerprint, supplied by caller
}

// StubService hosts the buffered stub-request channel and the single
// worker goroutine that drains it, generating and caching stub ops.
type StubService struct {
	generators        []plugin.StubGenerator
	externalResolvers []ExternalResolverFunc

	requests chan StubRequest
	results  chan<- []graph.GraphOp

	mu       sync.Mutex
	cache    map[cacheKey][]graph.GraphOp
	seen     map[string]struct{}
	wg       sync.WaitGroup

	metrics *metrics.Metrics
}

// NewStubService creates a stub service that emits generated ops onto
// results. results should be read by the orchestrator's commit path. m
// may be nil, in which case cache hit/miss observations are simply
// dropped.
func NewStubService(results chan<- []graph.GraphOp, m *metrics.Metrics) *StubService {
	return &StubService{
		requests: make(chan StubRequest, 256),
		results:  results,
		cache:    make(map[cacheKey][]graph.GraphOp),
		seen:     make(map[string]struct{}),
		metrics:  m,
	}
}

// AddGenerator registers a stub generator contributed by a plugin.
func (s *StubService) AddGenerator(g plugin.StubGenerator) {
	s.generators = append(s.generators, g)
}

// AddExternalResolver registers a language plugin's ExternalResolver,
// tried ahead of every per-entry StubGenerator for a richer result.
func (s *StubService) AddExternalResolver(fn ExternalResolverFunc) {
	if fn == nil {
		return
	}
	s.externalResolvers = append(s.externalResolvers, fn)
}

// Start launches the single stub-worker goroutine.
func (s *StubService) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop closes the request channel and waits for the worker to drain it.
func (s *StubService) Stop() {
	close(s.requests)
	s.wg.Wait()
}

// Submit enqueues a stub request, applying per-session FQN
// deduplication: a request for an FQN already requested this session is
// dropped even if a different stage re-emits it (§4.8 "deduplication").
func (s *StubService) Submit(req StubRequest) {
	s.mu.Lock()
	if _, ok := s.seen[req.FQN]; ok {
		s.mu.Unlock()
		return
	}
	s.seen[req.FQN] = struct{}{}
	s.mu.Unlock()
	s.requests <- req
}

func (s *StubService) run() {
	defer s.wg.Done()
	for req := range s.requests {
		ops, err := s.resolve(req)
		if err != nil || len(ops) == 0 {
			continue
		}
		s.results <- ops
	}
}

// resolve tries every registered ExternalResolver against the whole
// candidate set first, since a richer ResolvedUnit (a full package's
// declarations and relations) is strictly more useful than a single
// placeholder node; only when no ExternalResolver claims the FQN does it
// fall back to the per-entry StubGenerator path.
func (s *StubService) resolve(req StubRequest) ([]graph.GraphOp, error) {
	externalKey := cacheKey{fqn: req.FQN, external: true}
	s.mu.Lock()
	if cached, ok := s.cache[externalKey]; ok {
		s.mu.Unlock()
		s.metrics.StubCacheHit()
		return cached, nil
	}
	s.mu.Unlock()

	for _, er := range s.externalResolvers {
		unit, ok, err := er(req.FQN, req.Entries)
		if err != nil || !ok || len(unit.Ops) == 0 {
			continue
		}
		s.metrics.StubCacheMiss()
		s.mu.Lock()
		s.cache[externalKey] = unit.Ops
		s.mu.Unlock()
		return unit.Ops, nil
	}

	for _, entry := range req.Entries {
		fp := req.Fingerprints[entry.Path]
		key := cacheKey{fp: fp, fqn: req.FQN}

		s.mu.Lock()
		if cached, ok := s.cache[key]; ok {
			s.mu.Unlock()
			s.metrics.StubCacheHit()
			return cached, nil
		}
		s.mu.Unlock()
		s.metrics.StubCacheMiss()

		for _, gen := range s.generators {
			if !gen.CanGenerate(entry) {
				continue
			}
			payloads, err := gen.Generate(req.FQN, entry)
			if err != nil {
				continue
			}
			if len(payloads) == 0 {
				continue
			}
			ops := make([]graph.GraphOp, len(payloads))
			for i, p := range payloads {
				ops[i] = graph.AddNode(p)
			}
			s.mu.Lock()
			s.cache[key] = ops
			s.mu.Unlock()
			return ops, nil
		}
	}
	return nil, fmt.Errorf("asset: no stub generator produced a node for %s", req.FQN)
}

// Fingerprint computes the cache-invalidation key for one asset path.
func Fingerprint(path string, size, mtime int64) fingerprint {
	return fingerprint{path: path, size: size, mtime: mtime}
}
