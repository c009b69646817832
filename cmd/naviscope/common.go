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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/kraklabs/naviscope/internal/bootstrap"
	"github.com/kraklabs/naviscope/pkg/config"
	"github.com/kraklabs/naviscope/pkg/engine"
	"github.com/kraklabs/naviscope/pkg/naviserr"
	"github.com/kraklabs/naviscope/pkg/query"
)

// resolveRoot defaults an empty root to the current working directory.
func resolveRoot(root string) string {
	if root != "" {
		return root
	}
	wd, err := os.Getwd()
	if err != nil {
		naviserr.FatalError(naviserr.Internal("resolving working directory", err), false)
	}
	return wd
}

// projectIgnore loads .naviscope/project.yaml's Ignore patterns, if any,
// for merging onto a subcommand's own --ignore flags.
func projectIgnore(root string) []string {
	cfg, err := config.Load(root)
	if err != nil {
		naviserr.FatalError(naviserr.Internal("loading project config", err), false)
	}
	return cfg.Ignore
}

// openOrchestrator resolves the project root (defaulting to the current
// working directory) and cold-starts or loads its index. Every subcommand
// but "index" treats a missing index as a cold start too, matching
// bootstrap.OpenProject's load-else-rebuild sequence.
func openOrchestrator(root string) *engine.Orchestrator {
	root = resolveRoot(root)

	orch, err := bootstrap.OpenProject(context.Background(), root, projectIgnore(root), slog.Default())
	if err != nil {
		naviserr.FatalError(err, false)
	}
	return orch
}

// facadeFor builds a query.Facade over the orchestrator's current
// snapshot, wired with the same registry bootstrap.NewRegistry produces.
func facadeFor(orch *engine.Orchestrator, root string) *query.Facade {
	return query.New(orch.Snapshot(), bootstrap.NewRegistry(), root, orch.Metrics())
}

// printViews renders a slice of query.NodeView as a tab-separated table.
func printViews(views []query.NodeView) {
	if len(views) == 0 {
		fmt.Println("No results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FQN\tKIND\tLANGUAGE\tORIGIN\tSTATUS")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.FQN, v.Kind, v.Language, v.Origin, v.Status)
	}
	w.Flush()
	fmt.Printf("\n(%d results)\n", len(views))
}

// fatalOnJSON reports err via naviserr.FatalError, honoring jsonOutput's
// rendering choice (the CLI-oriented exit-code taxonomy §10 describes).
func fatalOnJSON(err error, jsonOutput bool) {
	naviserr.FatalError(err, jsonOutput)
}
