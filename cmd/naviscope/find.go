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
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/naviscope/internal/output"
	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/query"
)

func runFind(args []string) {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	root := fs.String("root", "", "Project root (default: current directory)")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	kind := fs.String("kind", "", "Restrict to one node kind")
	limit := fs.Int("limit", 20, "Maximum number of results")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: naviscope find <pattern> [options]\n\nSearches node names/FQNs by case-insensitive regex.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: pattern argument required")
		fs.Usage()
		os.Exit(1)
	}
	pattern := fs.Arg(0)

	orch := openOrchestrator(*root)
	defer orch.Close()

	f := facadeFor(orch, *root)
	views, err := f.Find(pattern, query.Filter{Kind: graph.NodeKind(*kind)}, *limit)
	if err != nil {
		fatalOnJSON(err, *jsonOutput)
	}

	if *jsonOutput {
		if err := output.JSON(views); err != nil {
			fatalOnJSON(err, true)
		}
		return
	}
	printViews(views)
}
