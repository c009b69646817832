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
	"github.com/kraklabs/naviscope/internal/ui"
	"github.com/kraklabs/naviscope/pkg/naviserr"
)

func runCat(args []string) {
	fs := flag.NewFlagSet("cat", flag.ExitOnError)
	root := fs.String("root", "", "Project root (default: current directory)")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: naviscope cat <fqn> [options]\n\nShows one node's detail.\n\nOptions:\n")
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
	view, ok := f.Cat(fqn)
	if !ok {
		fatalOnJSON(naviserr.NotFound(fqn), *jsonOutput)
	}

	if *jsonOutput {
		if err := output.JSON(view); err != nil {
			fatalOnJSON(err, true)
		}
		return
	}

	fmt.Printf("%s %s\n", ui.Label("FQN:"), view.FQN)
	fmt.Printf("%s %s\n", ui.Label("Name:"), view.Name)
	fmt.Printf("%s %s\n", ui.Label("Kind:"), view.Kind)
	fmt.Printf("%s %s\n", ui.Label("Language:"), view.Language)
	fmt.Printf("%s %s\n", ui.Label("Origin:"), view.Origin)
	fmt.Printf("%s %s\n", ui.Label("Status:"), view.Status)
	if view.Location != nil {
		path := orch.Snapshot().Paths().Resolve(view.Location.Path)
		fmt.Printf("%s %s:%d\n", ui.Label("Location:"), path, view.Location.Range.StartLine)
	}
}
