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

package plugin

import "strings"

// Registry holds every registered language and build-tool plugin, keyed
// for dispatch by file extension / build-file name. Registration order is
// dispatch order: when two plugins claim the same extension, the first
// one registered wins (§9 Open Question 2).
type Registry struct {
	languages  []*LanguagePlugin
	byExt      map[string]*LanguagePlugin
	buildTools []*BuildToolPlugin
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]*LanguagePlugin)}
}

// RegisterLanguage adds a language plugin, indexing it by every
// extension it claims that is not already claimed by an earlier
// registration.
func (r *Registry) RegisterLanguage(p *LanguagePlugin) {
	r.languages = append(r.languages, p)
	for _, ext := range p.Extensions {
		ext = strings.ToLower(ext)
		if _, claimed := r.byExt[ext]; claimed {
			continue
		}
		r.byExt[ext] = p
	}
}

// RegisterBuildTool adds a build-tool plugin.
func (r *Registry) RegisterBuildTool(p *BuildToolPlugin) {
	r.buildTools = append(r.buildTools, p)
}

// LanguageForExtension returns the plugin registered for ext (case
// insensitive, including the leading dot), or nil if none matches — the
// scanner ignores files with no matching plugin.
func (r *Registry) LanguageForExtension(ext string) *LanguagePlugin {
	return r.byExt[strings.ToLower(ext)]
}

// BuildToolFor returns the first registered build-tool plugin whose
// Recognize returns true for fileName, or nil.
func (r *Registry) BuildToolFor(fileName string) *BuildToolPlugin {
	for _, bt := range r.buildTools {
		if bt.Recognize(fileName) {
			return bt
		}
	}
	return nil
}

// Languages returns every registered language plugin, in registration
// order.
func (r *Registry) Languages() []*LanguagePlugin {
	out := make([]*LanguagePlugin, len(r.languages))
	copy(out, r.languages)
	return out
}

// BuildTools returns every registered build-tool plugin, in registration
// order.
func (r *Registry) BuildTools() []*BuildToolPlugin {
	out := make([]*BuildToolPlugin, len(r.buildTools))
	copy(out, r.buildTools)
	return out
}
