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
	"github.com/kraklabs/naviscope/pkg/storage"
)

// statusResult is the JSON rendering of "naviscope status".
type statusResult struct {
	ProjectRoot string         `json:"project_root"`
	IndexPath   string         `json:"index_path"`
	Nodes       int            `json:"nodes"`
	Edges       int            `json:"edges"`
	SchemaVer   uint32         `json:"schema_version"`
	Kinds       map[string]int `json:"kinds_by_count"`
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	root := fs.String("root", "", "Project root (default: current directory)")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: naviscope status [options]\n\nShows the current index's summary.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	projectRoot := resolveRoot(*root)

	indexPath, err := storage.IndexPath(projectRoot)
	if err != nil {
		naviserr.FatalError(naviserr.Internal("resolving index path", err), *jsonOutput)
	}

	orch := openOrchestrator(projectRoot)
	defer orch.Close()

	snap := orch.Snapshot()
	kinds := make(map[string]int)
	for _, idx := range snap.AllNodeIndices() {
		node, ok := snap.GetNode(idx)
		if !ok {
			continue
		}
		kinds[string(node.Kind)]++
	}

	result := statusResult{
		ProjectRoot: projectRoot,
		IndexPath:   indexPath,
		Nodes:       snap.NodeCount(),
		Edges:       snap.EdgeCount(),
		SchemaVer:   snap.Version(),
		Kinds:       kinds,
	}

	if *jsonOutput {
		if err := output.JSON(result); err != nil {
			fatalOnJSON(err, true)
		}
		return
	}

	ui.Header("naviscope status")
	fmt.Printf("%s %s\n", ui.Label("Project root:"), result.ProjectRoot)
	fmt.Printf("%s %s\n", ui.Label("Index path:"), result.IndexPath)
	fmt.Printf("%s %d\n", ui.Label("Schema version:"), result.SchemaVer)
	fmt.Printf("%s %d\n", ui.Label("Nodes:"), result.Nodes)
	fmt.Printf("%s %d\n", ui.Label("Edges:"), result.Edges)
	ui.SubHeader("\nNodes by kind:")
	for kind, count := range result.Kinds {
		fmt.Printf("  %-16s %s\n", kind, ui.CountText(count))
	}
}
