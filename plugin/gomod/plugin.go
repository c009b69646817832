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

package gomod

import "github.com/kraklabs/naviscope/pkg/plugin"

// New returns the go.mod build-tool plugin. It carries no AssetDiscoverer
// of its own — plugin/golang's ModuleCacheDiscoverer already owns
// GOMODCACHE discovery, since the module cache is keyed by import path
// regardless of which project's go.mod required it.
func New() *plugin.BuildToolPlugin {
	return &plugin.BuildToolPlugin{
		Name:          "go-mod",
		Recognize:     Recognize,
		BuildResolver: BuildResolver,
	}
}
