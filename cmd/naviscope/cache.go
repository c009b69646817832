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
	"sort"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/naviscope/internal/output"
	"github.com/kraklabs/naviscope/internal/ui"
	"github.com/kraklabs/naviscope/pkg/naviserr"
	"github.com/kraklabs/naviscope/pkg/storage"
)

func runCache(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: naviscope cache <stats|list|inspect|clear> [options]")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("cache", flag.ExitOnError)
	root := fs.String("root", "", "Project root (default: current directory)")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	sub := args[0]
	subArgs := args[1:]
	if err := fs.Parse(subArgs); err != nil {
		os.Exit(1)
	}

	switch sub {
	case "stats":
		runCacheStats(*root, *jsonOutput, fs)
	case "list":
		runCacheList(*root, *jsonOutput, fs)
	case "inspect":
		runCacheInspect(*root, *jsonOutput, fs)
	case "clear":
		runCacheClear(*root, fs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown cache subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func routesFor(root string) map[string][]stringEntry {
	orch := openOrchestrator(root)
	defer orch.Close()

	out := make(map[string][]stringEntry)
	for prefix, entries := range orch.AssetRoutes() {
		for _, e := range entries {
			out[prefix] = append(out[prefix], stringEntry{Path: e.Path, Source: string(e.Source.Kind)})
		}
	}
	return out
}

type stringEntry struct {
	Path   string `json:"path"`
	Source string `json:"source"`
}

func runCacheStats(root string, jsonOutput bool, fs *flag.FlagSet) {
	routes := routesFor(root)

	bySource := make(map[string]int)
	total := 0
	for _, entries := range routes {
		for _, e := range entries {
			bySource[e.Source]++
			total++
		}
	}

	if jsonOutput {
		if err := output.JSON(map[string]any{
			"routes":    len(routes),
			"entries":   total,
			"by_source": bySource,
		}); err != nil {
			fatalOnJSON(err, true)
		}
		return
	}

	ui.Header("naviscope cache stats")
	fmt.Printf("%s %d\n", ui.Label("Routes:"), len(routes))
	fmt.Printf("%s %d\n", ui.Label("Entries:"), total)
	for source, count := range bySource {
		fmt.Printf("  %-16s %s\n", source, ui.CountText(count))
	}
}

func runCacheList(root string, jsonOutput bool, fs *flag.FlagSet) {
	routes := routesFor(root)

	prefixes := make([]string, 0, len(routes))
	for p := range routes {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	if jsonOutput {
		if err := output.JSON(routes); err != nil {
			fatalOnJSON(err, true)
		}
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PREFIX\tPATH\tSOURCE")
	for _, prefix := range prefixes {
		for _, e := range routes[prefix] {
			fmt.Fprintf(w, "%s\t%s\t%s\n", prefix, e.Path, e.Source)
		}
	}
	w.Flush()
}

func runCacheInspect(root string, jsonOutput bool, fs *flag.FlagSet) {
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: naviscope cache inspect <prefix>")
		os.Exit(1)
	}
	prefix := fs.Arg(0)
	routes := routesFor(root)

	entries, ok := routes[prefix]
	if !ok {
		fatalOnJSON(naviserr.NotFound(prefix), jsonOutput)
	}

	if jsonOutput {
		if err := output.JSON(entries); err != nil {
			fatalOnJSON(err, true)
		}
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  (%s)\n", e.Path, e.Source)
	}
}

func runCacheClear(root string, fs *flag.FlagSet) {
	projectRoot := resolveRoot(root)
	if err := storage.ClearProjectIndex(projectRoot); err != nil {
		naviserr.FatalError(naviserr.Storage("clearing index", err), false)
	}
	ui.Success("cleared the persisted index; the asset route table will be rebuilt on the next index/status run")
}
