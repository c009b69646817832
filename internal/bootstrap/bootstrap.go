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

package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kraklabs/naviscope/pkg/engine"
	"github.com/kraklabs/naviscope/pkg/naviserr"
	"github.com/kraklabs/naviscope/pkg/plugin"
	"github.com/kraklabs/naviscope/plugin/golang"
	"github.com/kraklabs/naviscope/plugin/gomod"
)

// NewRegistry builds the plugin.Registry wired with every concrete
// language and build-tool plugin this repository ships. A future
// out-of-tree plugin would register here too; there is exactly one
// registry construction site so registration order (and therefore
// extension-conflict resolution, §9 Open Question 2) stays centralized.
func NewRegistry() *plugin.Registry {
	r := plugin.NewRegistry()
	r.RegisterLanguage(golang.New())
	r.RegisterBuildTool(gomod.New())
	return r
}

// OpenProject opens the orchestrator for projectRoot: it loads the
// on-disk index if one exists and matches the current schema, or
// performs a full Rebuild on a cold start (no index, a stale one
// storage.Load already discarded, or one that could not be read, which
// is logged at Warn). The caller owns the returned orchestrator's
// lifetime and must Close it.
func OpenProject(ctx context.Context, projectRoot string, ignore []string, logger *slog.Logger) (*engine.Orchestrator, error) {
	orch, err := engine.New(engine.Config{
		ProjectRoot: projectRoot,
		Registry:    NewRegistry(),
		Log:         logger,
	})
	if err != nil {
		return nil, naviserr.Internal("bootstrap: creating orchestrator", err)
	}

	loaded, err := orch.Load(ctx)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("index load failed, rebuilding from scratch", "error", err)
		loaded = false
	}
	if !loaded {
		if err := orch.Rebuild(ctx, ignore); err != nil {
			orch.Close()
			return nil, fmt.Errorf("bootstrap: rebuilding index: %w", err)
		}
	}
	return orch, nil
}
