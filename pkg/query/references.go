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
	"context"
	"os"
	"path/filepath"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/naviserr"
	"github.com/kraklabs/naviscope/pkg/plugin"
	"github.com/kraklabs/naviscope/pkg/symbol"
)

// maxContextIntersection caps the size of the context-token candidate
// set that's worth intersecting with the primary-token set; above it,
// the intersection pass costs more than the files it prunes saves (§4.9
// step 2).
const maxContextIntersection = 1000

// Reference is one occurrence of a binding found during whole-workspace
// reference discovery.
type Reference struct {
	Path      string
	Range     graph.Range
	Container *NodeView // innermost containing definition, if grouped
}

// FindReferences locates every occurrence of the binding at targetFQN
// across the whole workspace. Grounded on the reference tools' grep.go
// scouting pass, replacing its literal text grep with the reference
// index plus a semantic-identity verification step so renamed-but-
// unrelated identically-spelled symbols are excluded (§4.9 References).
func (f *Facade) FindReferences(ctx context.Context, targetFQN string, group bool) ([]Reference, error) {
	defer f.observe("find_references")()

	targetIdx, ok := f.findByFQN(targetFQN)
	if !ok {
		return nil, notFoundErr(targetFQN)
	}
	targetNode, ok := f.snap.GetNode(targetIdx)
	if !ok {
		return nil, notFoundErr(targetFQN)
	}

	lang := f.languageFor(targetNode)
	if lang == nil || lang.Semantic == nil || lang.Semantic.FindOccurrences == nil {
		return nil, naviserr.Internal("language plugin does not support reference discovery", nil)
	}

	primary := f.snap.Strings().Resolve(targetNode.Name)
	var contextToken string
	if parentIdx, ok := f.snap.Parent(targetIdx); ok {
		if parent, ok := f.snap.GetNode(parentIdx); ok {
			switch parent.Kind {
			case graph.KindClass, graph.KindInterface, graph.KindEnum:
				contextToken = f.snap.Strings().Resolve(parent.Name)
			}
		}
	}

	candidates := f.candidateFiles(primary, contextToken)
	target := plugin.Resolution{Kind: plugin.ResolutionPrecise, FQN: targetFQN}

	var out []Reference
	for _, path := range candidates {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		refs, err := f.scanFileForReferences(path, lang, target)
		if err != nil {
			continue // best-effort: an unreadable/unparsable candidate is skipped, not fatal
		}
		out = append(out, refs...)
	}

	if group {
		f.groupByContainer(out)
	}
	return out, nil
}

func (f *Facade) languageFor(node graph.Node) *plugin.LanguagePlugin {
	if f.registry == nil {
		return nil
	}
	name, ok := f.snap.Strings().Lookup(node.Language)
	if !ok {
		return nil
	}
	for _, lp := range f.registry.Languages() {
		if lp.Name == name {
			return lp
		}
	}
	return nil
}

// candidateFiles implements §4.9 References steps 1-2: consult the
// reference index for the primary token, then narrow using the context
// token's own file set when it's modest enough to be worth the
// intersection.
func (f *Facade) candidateFiles(primary, contextToken string) []string {
	primaryAtom := f.snap.Strings().Intern(primary)
	primaryFiles := f.snap.ReferenceIndexLookup(primaryAtom)

	if contextToken == "" {
		return resolvePaths(f.snap, primaryFiles)
	}

	contextAtom := f.snap.Strings().Intern(contextToken)
	contextFiles := f.snap.ReferenceIndexLookup(contextAtom)
	if len(contextFiles) == 0 || len(contextFiles) >= maxContextIntersection {
		return resolvePaths(f.snap, primaryFiles)
	}

	contextSet := make(map[string]struct{}, len(contextFiles))
	for _, p := range contextFiles {
		contextSet[string(p)] = struct{}{}
	}
	var narrowed []string
	for _, p := range resolvePaths(f.snap, primaryFiles) {
		if _, ok := contextSet[p]; ok {
			narrowed = append(narrowed, p)
		}
	}
	if len(narrowed) > 0 {
		return narrowed
	}
	return resolvePaths(f.snap, primaryFiles)
}

func resolvePaths(snap *graph.Graph, atoms []symbol.PathAtom) []string {
	out := make([]string, 0, len(atoms))
	for _, a := range atoms {
		if p, ok := snap.Paths().Lookup(a); ok {
			out = append(out, p)
		}
	}
	return out
}

// scanFileForReferences implements §4.9 References steps 3: parse path,
// invoke FindOccurrences, and verify each syntactic hit by re-resolving
// at that position and comparing semantic identity against target.
func (f *Facade) scanFileForReferences(path string, lang *plugin.LanguagePlugin, target plugin.Resolution) ([]Reference, error) {
	abs := filepath.Join(f.root, path)
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	output, err := lang.ParseFile(content, path)
	if err != nil {
		return nil, err
	}

	occurrences, err := lang.Semantic.FindOccurrences(output.Tree, content, target)
	if err != nil {
		return nil, err
	}

	var verified []Reference
	for _, occ := range occurrences {
		if lang.Semantic.ResolveAt == nil {
			// No verification surface: trust the syntactic hit.
			verified = append(verified, Reference{Path: path, Range: occ.Range})
			continue
		}
		res, err := lang.Semantic.ResolveAt(output.Tree, content, occ.Range.StartLine, occ.Range.StartCol, f.snap)
		if err != nil {
			continue
		}
		if sameBinding(res, target) {
			verified = append(verified, Reference{Path: path, Range: occ.Range})
		}
	}
	return verified, nil
}

func sameBinding(a, b plugin.Resolution) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case plugin.ResolutionPrecise:
		return a.FQN == b.FQN
	case plugin.ResolutionGlobal:
		return a.GlobalFQN == b.GlobalFQN
	default:
		return a.TypeName == b.TypeName
	}
}

// groupByContainer attaches, to each reference, the innermost node that
// contains its location (§4.9 step 4's call-hierarchy grouping).
func (f *Facade) groupByContainer(refs []Reference) {
	for i := range refs {
		pathAtom := f.snap.Paths().Intern(refs[i].Path)
		idx, ok := f.snap.FindNodeAt(pathAtom, refs[i].Range.StartLine, refs[i].Range.StartCol)
		if !ok {
			continue
		}
		if view, ok := f.view(idx); ok {
			refs[i].Container = &view
		}
	}
}
