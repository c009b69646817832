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
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/naviscope/internal/bootstrap"
	"github.com/kraklabs/naviscope/internal/ui"
	"github.com/kraklabs/naviscope/pkg/engine"
	"github.com/kraklabs/naviscope/pkg/naviserr"
)

func runIndex(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	root := fs.String("root", "", "Project root (default: current directory)")
	full := fs.Bool("full", false, "Force a full rebuild instead of an incremental refresh")
	ignore := fs.StringArray("ignore", nil, "Additional doublestar glob pattern to exclude (repeatable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: naviscope index [options]\n\nIndexes (or refreshes) the current repository.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	projectRoot := resolveRoot(*root)
	ignorePatterns := append(append([]string{}, projectIgnore(projectRoot)...), *ignore...)

	orch, err := engine.New(engine.Config{
		ProjectRoot: projectRoot,
		Registry:    bootstrap.NewRegistry(),
		Log:         slog.Default(),
	})
	if err != nil {
		naviserr.FatalError(naviserr.Internal("creating orchestrator", err), false)
	}
	defer orch.Close()

	start := time.Now()
	ctx := context.Background()
	if *full {
		if err := orch.Rebuild(ctx, ignorePatterns); err != nil {
			naviserr.FatalError(err, false)
		}
	} else {
		if _, err := orch.Load(ctx); err != nil {
			slog.Default().Warn("index load failed, rebuilding from scratch", "error", err)
			if err := orch.Rebuild(ctx, ignorePatterns); err != nil {
				naviserr.FatalError(err, false)
			}
		} else if err := orch.Refresh(ctx, ignorePatterns); err != nil {
			naviserr.FatalError(err, false)
		}
	}

	if err := orch.Save(); err != nil {
		naviserr.FatalError(naviserr.Storage("saving index", err), false)
	}

	snap := orch.Snapshot()
	ui.Successf("indexed %d nodes / %d edges in %s", snap.NodeCount(), snap.EdgeCount(), time.Since(start).Round(time.Millisecond))
}
