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

// Package naviserr provides structured error handling for the engine.
//
// It defines UserError, a type carrying structured context — what went
// wrong, why, and how to fix it — tagged with one of the seven error
// kinds the core surfaces (§7): Parsing, NotFound, Ambiguous, Storage,
// SchemaMismatch, Internal, IngestStage. Each kind carries its own CLI
// exit code for consistent command-line behavior.
package naviserr

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Kind tags the category of error the core surfaces, per §7's error
// taxonomy.
type Kind int

const (
	// KindParsing: a file could not be tokenized into a usable tree. The
	// file contributes no ops this cycle; prior nodes are retained.
	KindParsing Kind = iota
	// KindNotFound: a requested FQN is absent from the current snapshot.
	KindNotFound
	// KindAmbiguous: navigation resolved to multiple candidates.
	KindAmbiguous
	// KindStorage: load/save/rename of the index file failed.
	KindStorage
	// KindSchemaMismatch: the on-disk index blob is incompatible.
	KindSchemaMismatch
	// KindInternal: an invariant violation (poisoned lock, missing atom).
	KindInternal
	// KindIngestStage: a single resolver-pipeline message failed.
	KindIngestStage
)

// ExitCode returns the process exit code conventionally associated with
// a Kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindParsing:
		return 4
	case KindNotFound:
		return 6
	case KindAmbiguous:
		return 6
	case KindStorage:
		return 2
	case KindSchemaMismatch:
		return 2
	case KindIngestStage:
		return 4
	case KindInternal:
		return 10
	default:
		return 10
	}
}

func (k Kind) String() string {
	switch k {
	case KindParsing:
		return "parsing"
	case KindNotFound:
		return "not-found"
	case KindAmbiguous:
		return "ambiguous"
	case KindStorage:
		return "storage"
	case KindSchemaMismatch:
		return "schema-mismatch"
	case KindIngestStage:
		return "ingest-stage"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// UserError represents an error with structured context for end users:
// what went wrong (Message), why (Cause), and how to fix it (Fix),
// tagged by Kind. Ambiguous errors additionally carry the candidate FQNs
// the caller must disambiguate between.
type UserError struct {
	Kind       Kind
	Message    string
	Cause      string
	Fix        string
	Candidates []string
	Err        error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap enables errors.Is/errors.As over the wrapped cause.
func (e *UserError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for this error's Kind.
func (e *UserError) ExitCode() int {
	return e.Kind.ExitCode()
}

// New creates a UserError of the given kind.
func New(kind Kind, msg, cause, fix string, err error) *UserError {
	return &UserError{Kind: kind, Message: msg, Cause: cause, Fix: fix, Err: err}
}

// Parsing creates a KindParsing error — never fatal; the caller should
// retain prior nodes for the affected file.
func Parsing(path string, err error) *UserError {
	return New(KindParsing, fmt.Sprintf("failed to parse %s", path), "", "the file's previously indexed nodes are retained", err)
}

// NotFound creates a KindNotFound error for a missing FQN.
func NotFound(fqn string) *UserError {
	return New(KindNotFound, fmt.Sprintf("%s not found in the index", fqn), "", "run a refresh if the symbol was added recently", nil)
}

// Ambiguous creates a KindAmbiguous error carrying the candidate FQNs.
func Ambiguous(query string, candidates []string) *UserError {
	return &UserError{
		Kind:       KindAmbiguous,
		Message:    fmt.Sprintf("%q matches multiple symbols", query),
		Fix:        "qualify the name further",
		Candidates: candidates,
	}
}

// Storage creates a KindStorage error for a failed load/save/rename.
func Storage(msg string, err error) *UserError {
	return New(KindStorage, msg, "", "the engine will fall back to rebuilding the index", err)
}

// SchemaMismatch creates a KindSchemaMismatch error.
func SchemaMismatch(path string) *UserError {
	return New(KindSchemaMismatch, fmt.Sprintf("index at %s uses an incompatible schema version", path), "", "the stale index has been removed and will be rebuilt", nil)
}

// Internal creates a KindInternal error for an invariant violation.
func Internal(msg string, err error) *UserError {
	return New(KindInternal, msg, "this indicates a bug in the engine", "please report it", err)
}

// IngestStage creates a KindIngestStage error for one failed pipeline
// message; the epoch continues without it.
func IngestStage(path string, err error) *UserError {
	return New(KindIngestStage, fmt.Sprintf("ingest stage failed for %s", path), "", "", err)
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display, with
// colored Error/Cause/Fix sections. Color is suppressed when noColor is
// true or NO_COLOR is set.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}
	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}
	if len(e.Candidates) > 0 {
		out.WriteString("Candidates:\n")
		for _, c := range e.Candidates {
			out.WriteString("  - ")
			out.WriteString(c)
			out.WriteString("\n")
		}
	}
	return out.String()
}

// JSON represents error information in JSON form for --json CLI output.
type JSON struct {
	Kind       string   `json:"kind"`
	Error      string   `json:"error"`
	Cause      string   `json:"cause,omitempty"`
	Fix        string   `json:"fix,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
	ExitCode   int      `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() JSON {
	return JSON{
		Kind:       e.Kind.String(),
		Error:      e.Message,
		Cause:      e.Cause,
		Fix:        e.Fix,
		Candidates: e.Candidates,
		ExitCode:   e.ExitCode(),
	}
}

// FatalError prints err and exits with its exit code. Never returns.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}
	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode())
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(KindInternal.ExitCode())
}
