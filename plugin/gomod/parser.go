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

// Package gomod implements the reference build-tool plugin for Go's own
// module system: it recognizes go.mod, parses its module declaration and
// require directives, and establishes the ProjectContext that anchors
// every plugin/golang package under the module's import path.
package gomod

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Require is one require directive: an import path and its pinned
// version, with the "// indirect" comment go.mod tooling attaches to
// requirements pulled in transitively rather than named in source.
type Require struct {
	Path     string
	Version  string
	Indirect bool
}

// File is the result of parsing one go.mod file: the module's own
// declared import path, its language version pin, and every module it
// requires (from both single-line and parenthesized require blocks).
type File struct {
	ModulePath string
	GoVersion  string
	Requires   []Require
}

// Parse reads go.mod's line-oriented grammar: "module <path>", "go
// <version>", and require directives either as a single "require <path>
// <version>" line or a "require (" ... ")" block of one directive per
// line. replace/exclude directives are recognized (skipped) so they
// don't get misparsed as requires, but this repository does not need
// their content — nothing queries module replacement today.
func Parse(content []byte) (File, error) {
	var f File
	scanner := bufio.NewScanner(bytes.NewReader(content))
	inBlock := ""

	for scanner.Scan() {
		line := stripComment(scanner.Text())
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if inBlock != "" {
			if trimmed == ")" {
				inBlock = ""
				continue
			}
			if inBlock == "require" {
				if req, ok := parseRequireFields(trimmed, hasIndirectComment(scanner.Text())); ok {
					f.Requires = append(f.Requires, req)
				}
			}
			continue
		}

		fields := strings.Fields(trimmed)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "module":
			if len(fields) >= 2 {
				f.ModulePath = fields[1]
			}
		case "go":
			if len(fields) >= 2 {
				f.GoVersion = fields[1]
			}
		case "require":
			if len(fields) >= 2 && fields[1] == "(" {
				inBlock = "require"
				continue
			}
			if req, ok := parseRequireFields(strings.Join(fields[1:], " "), hasIndirectComment(scanner.Text())); ok {
				f.Requires = append(f.Requires, req)
			}
		case "replace", "exclude":
			if len(fields) >= 2 && fields[1] == "(" {
				inBlock = fields[0]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return File{}, fmt.Errorf("gomod: scan: %w", err)
	}
	if f.ModulePath == "" {
		return File{}, fmt.Errorf("gomod: no module directive found")
	}
	return f, nil
}

// parseRequireFields parses "<path> <version>" (the trailing "//
// indirect" comment, if any, is reported separately since stripComment
// already removed it from fields).
func parseRequireFields(fields string, indirect bool) (Require, bool) {
	parts := strings.Fields(fields)
	if len(parts) < 2 {
		return Require{}, false
	}
	return Require{Path: parts[0], Version: parts[1], Indirect: indirect}, true
}

// stripComment removes a trailing "//" line comment, go.mod's only
// comment form.
func stripComment(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		return line[:idx]
	}
	return line
}

func hasIndirectComment(rawLine string) bool {
	idx := strings.Index(rawLine, "//")
	if idx < 0 {
		return false
	}
	return strings.Contains(rawLine[idx:], "indirect")
}
