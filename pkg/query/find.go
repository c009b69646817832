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

package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/naviserr"
)

const defaultFindLimit = 20

// Find returns every node whose name or FQN matches pattern
// (case-insensitive regex), constrained by filter, capped at limit
// (default 20). Grounded on the reference tool surface's SearchText,
// adapted from a Datalog regex_matches() predicate to an in-memory scan.
func (f *Facade) Find(pattern string, filter Filter, limit int) ([]NodeView, error) {
	defer f.observe("find")()

	if pattern == "" {
		return nil, naviserr.New(naviserr.KindParsing, "find: pattern is required", "", "pass a non-empty pattern", nil)
	}
	if limit <= 0 {
		limit = defaultFindLimit
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, naviserr.Parsing(pattern, err)
	}

	var out []NodeView
	for _, idx := range f.snap.AllNodeIndices() {
		if len(out) >= limit {
			break
		}
		node, ok := f.snap.GetNode(idx)
		if !ok || !filter.matches(f, node) {
			continue
		}
		view, ok := f.view(idx)
		if !ok {
			continue
		}
		if re.MatchString(view.Name) || re.MatchString(view.FQN) {
			out = append(out, view)
		}
	}
	return out, nil
}

// Cat returns the single node with the given FQN, or not-found.
func (f *Facade) Cat(fqn string) (NodeView, bool) {
	defer f.observe("cat")()

	idx, ok := f.findByFQN(fqn)
	if !ok {
		return NodeView{}, false
	}
	return f.view(idx)
}

// findByFQN resolves a dotted FQN string to a node index via full scan.
// There is no reverse string->node index (FQNKey lookup requires an
// already-resolved parent index and atom, not a free-form path), so this
// mirrors the reference tools' own full-table query pattern.
func (f *Facade) findByFQN(fqn string) (graph.NodeIndex, bool) {
	for _, idx := range f.snap.AllNodeIndices() {
		if f.fqn(idx) == fqn {
			return idx, true
		}
	}
	return graph.NoIndex, false
}

// CompletionCandidates returns up to 50 FQNs starting with prefix,
// sorted for stable shell-completion output.
func (f *Facade) CompletionCandidates(prefix string) []string {
	defer f.observe("completion")()

	const maxCandidates = 50
	var out []string
	for _, idx := range f.snap.AllNodeIndices() {
		name := f.fqn(idx)
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

func notFoundErr(fqn string) error {
	return naviserr.NotFound(fqn)
}
