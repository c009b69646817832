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

// Package main implements the naviscope CLI: a thin collaborator over the
// engine, query facade, and storage layer for indexing a repository and
// navigating its code graph.
//
// Usage:
//
//	naviscope index                 Index (or refresh) the current repository
//	naviscope status [--json]       Show the current index's summary
//	naviscope ls [fqn] [--json]     List the children of fqn, or the roots
//	naviscope cat <fqn> [--json]    Show one node's detail
//	naviscope find <pattern>        Search nodes by name/FQN regex
//	naviscope deps <fqn>            Show a node's graph-edge neighbors
//	naviscope cache <stats|list|inspect|clear>   Inspect the asset route table
//	naviscope shell                 Interactive ls/cat/find/deps/cd/pwd session
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `naviscope - code intelligence engine CLI

Usage:
  naviscope <command> [options]

Commands:
  index    Index or refresh the current repository
  status   Show the current index's summary
  ls       List the children of an FQN, or the roots
  cat      Show one node's detail
  find     Search nodes by name/FQN regex
  deps     Show a node's graph-edge neighbors
  cache    Inspect the asset route table (stats|list|inspect|clear)
  shell    Interactive ls/cat/find/deps/cd/pwd session

Global Options:
  --version   Show version and exit

Data Storage:
  Index blobs are stored under %s (see --root).

Environment Variables:
  NAVISCOPE_INDEX_DIR   overrides the index base directory
  NO_COLOR              disables colorized error output

`, defaultIndexDirHint())
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("naviscope version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "index":
		runIndex(cmdArgs)
	case "status":
		runStatus(cmdArgs)
	case "ls":
		runLs(cmdArgs)
	case "cat":
		runCat(cmdArgs)
	case "find":
		runFind(cmdArgs)
	case "deps":
		runDeps(cmdArgs)
	case "cache":
		runCache(cmdArgs)
	case "shell":
		runShell(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func defaultIndexDirHint() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "$HOME/.naviscope/data"
	}
	return home + "/.naviscope/data"
}
