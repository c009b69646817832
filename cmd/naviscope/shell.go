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
	"bufio"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/naviscope/internal/ui"
	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/query"
)

// runShell drives an interactive session over one loaded project's
// snapshot: cd/pwd track a "current directory" FQN resolved through
// query.Facade.ResolvePath the way a POSIX shell resolves relative
// paths, and ls/cat/find/deps reuse the same facade calls the one-shot
// subcommands use.
func runShell(args []string) {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	root := fs.String("root", "", "Project root (default: current directory)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: naviscope shell [options]\n\nStarts an interactive ls/cat/find/deps/cd/pwd session.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	orch := openOrchestrator(*root)
	defer orch.Close()
	f := facadeFor(orch, *root)

	var currentFQN string
	reader := bufio.NewScanner(os.Stdin)

	fmt.Println("naviscope interactive shell — type 'help' for commands, 'exit' to quit")
	for {
		fmt.Printf("%s> ", currentFQN)
		if !reader.Scan() {
			break
		}
		line := strings.TrimSpace(reader.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, rest := fields[0], fields[1:]

		switch cmd {
		case "exit", "quit":
			return
		case "help":
			printShellHelp()
		case "clear":
			fmt.Print("\033[H\033[2J")
		case "pwd":
			if currentFQN == "" {
				fmt.Println("/")
			} else {
				fmt.Println(currentFQN)
			}
		case "cd":
			target := "/"
			if len(rest) > 0 {
				target = rest[0]
			}
			res := f.ResolvePath(target, currentFQN)
			currentFQN = applyResolution(res, currentFQN)
		case "ls":
			target := currentFQN
			if len(rest) > 0 {
				res := f.ResolvePath(rest[0], currentFQN)
				if res.Status != query.PathFound {
					reportResolution(res)
					continue
				}
				target = res.Node.FQN
			}
			views, err := f.Ls(target, query.Filter{})
			if err != nil {
				ui.Errorf("%v", err)
				continue
			}
			printViews(views)
		case "cat":
			if len(rest) == 0 {
				ui.Error("cat requires an argument")
				continue
			}
			res := f.ResolvePath(rest[0], currentFQN)
			if res.Status != query.PathFound {
				reportResolution(res)
				continue
			}
			printShellNode(res.Node)
		case "find":
			if len(rest) == 0 {
				ui.Error("find requires a pattern")
				continue
			}
			views, err := f.Find(strings.Join(rest, " "), query.Filter{}, 20)
			if err != nil {
				ui.Errorf("%v", err)
				continue
			}
			printViews(views)
		case "deps":
			if len(rest) == 0 {
				ui.Error("deps requires an FQN")
				continue
			}
			res := f.ResolvePath(rest[0], currentFQN)
			if res.Status != query.PathFound {
				reportResolution(res)
				continue
			}
			views, err := f.Deps(res.Node.FQN, false, graph.EdgeType(""))
			if err != nil {
				ui.Errorf("%v", err)
				continue
			}
			printViews(views)
		default:
			fmt.Printf("unknown command: %s (try 'help')\n", cmd)
		}
	}
}

func applyResolution(res query.PathResolution, current string) string {
	switch res.Status {
	case query.PathFound:
		return res.Node.FQN
	case query.PathAmbiguous:
		reportResolution(res)
		return current
	default:
		ui.Error("no such path")
		return current
	}
}

func reportResolution(res query.PathResolution) {
	if res.Status == query.PathAmbiguous {
		fmt.Println("ambiguous path, candidates:")
		for _, c := range res.Candidates {
			fmt.Println("  " + c.FQN)
		}
		return
	}
	ui.Error("not found")
}

func printShellNode(v query.NodeView) {
	fmt.Printf("%s %s\n", ui.Label("FQN:"), v.FQN)
	fmt.Printf("%s %s\n", ui.Label("Kind:"), v.Kind)
	fmt.Printf("%s %s\n", ui.Label("Status:"), v.Status)
}

func printShellHelp() {
	fmt.Println("commands: ls [path], cat <path>, find <pattern>, deps <path>, cd <path>, pwd, clear, exit")
}
