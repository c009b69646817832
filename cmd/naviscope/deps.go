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
)

func runDeps(args []string) {
	fs := flag.NewFlagSet("deps", flag.ExitOnError)
	root := fs.String("root", "", "Project root (default: current directory)")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	reverse := fs.Bool("reverse", false, "Walk incoming edges instead of outgoing")
	edge := fs.String("edge", "", "Restrict to one edge type (contains, inherits-from, implements, typed-as, decorated-by, uses-dependency)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: naviscope deps <fqn> [options]\n\nShows a node's graph-edge neighbors.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: fqn argument required")
		fs.Usage()
		os.Exit(1)
	}
	fqn := fs.Arg(0)

	orch := openOrchestrator(*root)
	defer orch.Close()

	f := facadeFor(orch, *root)
	views, err := f.Deps(fqn, *reverse, graph.EdgeType(*edge))
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
