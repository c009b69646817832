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
	"context"
	"fmt"
	"sync"

	"github.com/kraklabs/naviscope/pkg/plugin"
)

// Scanner composes a set of discoverers and indexers contributed by
// language plugins into one background asset-discovery pass over a
// workspace root.
type Scanner struct {
	discoverers []plugin.AssetDiscoverer
	indexers    []plugin.AssetIndexer
	registry    *Registry
}

// NewScanner creates an asset scanner writing discovered routes into
// registry.
func NewScanner(registry *Registry) *Scanner {
	return &Scanner{registry: registry}
}

// AddDiscoverer registers a discoverer contributed by a plugin.
func (s *Scanner) AddDiscoverer(d plugin.AssetDiscoverer) {
	s.discoverers = append(s.discoverers, d)
}

// AddIndexer registers an indexer contributed by a plugin.
func (s *Scanner) AddIndexer(i plugin.AssetIndexer) {
	s.indexers = append(s.indexers, i)
}

// Scan runs every discoverer concurrently against root, indexing each
// discovered entry with the first registered indexer whose CanIndex
// returns true and registering the resulting FQN prefixes in the route
// registry. Discoverers are expected to tolerate and stream tens of
// thousands of entries (§4.8); entries are consumed as they arrive
// rather than buffered.
func (s *Scanner) Scan(ctx context.Context, root string) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(s.discoverers))

	for _, d := range s.discoverers {
		d := d
		out := make(chan plugin.AssetEntry, 256)
		wg.Add(2)
		go func() {
			defer wg.Done()
			defer close(out)
			if err := d.Discover(root, out); err != nil {
				errCh <- fmt.Errorf("asset: discoverer %s: %w", d.Name, err)
			}
		}()
		go func() {
			defer wg.Done()
			for entry := range out {
				select {
				case <-ctx.Done():
					return
				default:
				}
				s.index(entry)
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) index(entry plugin.AssetEntry) {
	for _, ix := range s.indexers {
		if !ix.CanIndex(entry.Path) {
			continue
		}
		prefixes, err := ix.Index(entry)
		if err != nil {
			return
		}
		for _, prefix := range prefixes {
			s.registry.Register(prefix, entry)
		}
		return
	}
}
