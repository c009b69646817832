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
	"strings"

	"github.com/kraklabs/naviscope/pkg/graph"
)

const defaultSeparator = "."

// fqn renders idx's human-readable fully-qualified name by walking its
// contains-ancestry and joining names with each step's naming
// convention, per the owning language plugin — the plugin named by idx's
// own Language (falling back to "." when the plugin declares none or the
// node predates any plugin association).
func (f *Facade) fqn(idx graph.NodeIndex) string {
	var segments []string
	var kinds []graph.NodeKind

	lang := ""
	if leaf, ok := f.snap.GetNode(idx); ok {
		lang = resolveOrEmpty(f.snap, leaf.Language)
	}

	cur := idx
	for {
		node, ok := f.snap.GetNode(cur)
		if !ok {
			break
		}
		segments = append(segments, f.snap.Strings().Resolve(node.Name))
		kinds = append(kinds, node.Kind)

		parent, hasParent := f.snap.Parent(cur)
		if !hasParent {
			break
		}
		cur = parent
	}

	// segments/kinds were collected root-to-leaf in reverse; reverse
	// them back so joining proceeds parent-first.
	reverse(segments)
	reverse(kinds)

	if len(segments) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(segments[0])
	for i := 1; i < len(segments); i++ {
		b.WriteString(f.separator(lang, kinds[i-1], kinds[i]))
		b.WriteString(segments[i])
	}
	return b.String()
}

func (f *Facade) separator(lang string, parentKind, childKind graph.NodeKind) string {
	if f.registry == nil {
		return defaultSeparator
	}
	for _, lp := range f.registry.Languages() {
		if lp.Name != lang || lp.NamingConvention == nil {
			continue
		}
		if sep := lp.NamingConvention(parentKind, childKind); sep != "" {
			return sep
		}
	}
	return defaultSeparator
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
