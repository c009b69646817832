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

// Package config loads a project's .naviscope/project.yaml, an opt-in
// override of ignore patterns. The file also carries asset-discovery
// roots and a schema version pin; both are parsed but not read by the
// engine. Its absence is not an error: Default() is used instead, since
// the core reads no other configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project is one project's configuration.
type Project struct {
	// Ignore holds additional doublestar glob patterns to exclude from
	// scanning, layered on top of the built-in default ignore set.
	Ignore []string `yaml:"ignore"`

	// AssetRoots lists additional filesystem roots for asset discovery
	// (e.g. a non-standard module cache location). It is parsed but not
	// read by the engine: asset discovery uses only the locations each
	// plugin's discoverer chooses.
	AssetRoots []string `yaml:"asset_roots"`

	// SchemaVersionPin records a schema version for the on-disk index. It
	// is parsed but not read by the engine: storage.Load compares the
	// on-disk version only against graph.CurrentSchemaVersion.
	SchemaVersionPin uint32 `yaml:"schema_version_pin"`
}

// Default returns the zero-value configuration used when no
// project.yaml is present.
func Default() *Project {
	return &Project{}
}

// Path returns the conventional project.yaml location under root.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, ".naviscope", "project.yaml")
}

// Load reads and parses the project.yaml at its conventional location
// under root. A missing file is not an error: Default() is returned.
func Load(projectRoot string) (*Project, error) {
	path := Path(projectRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
