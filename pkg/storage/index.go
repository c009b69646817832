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

// Package storage persists a graph snapshot to disk under a per-project
// index file: a 4-byte schema-version header, a 4-byte payload length,
// and a zstd-compressed MessagePack payload (§6 "Index blob format").
// Writes are atomic (temp file + rename); a version mismatch on load
// deletes the stale file and reports "no index" rather than erroring, so
// callers fall back to a full rebuild.
package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/kraklabs/naviscope/pkg/graph"
	"github.com/kraklabs/naviscope/pkg/symbol"
)

const defaultIndexDirName = ".naviscope/data"

// BaseDir resolves the directory indices are stored under: the
// NAVISCOPE_INDEX_DIR environment variable if set, else
// $HOME/.naviscope/data.
func BaseDir() (string, error) {
	if dir := os.Getenv("NAVISCOPE_INDEX_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: resolving home directory: %w", err)
	}
	return filepath.Join(home, defaultIndexDirName), nil
}

// IndexPath returns the index file path for a project root, named by a
// lowercase hex encoding of a 64-bit hash of the canonicalized root.
func IndexPath(projectRoot string) (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	canonical, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", fmt.Errorf("storage: canonicalizing project root: %w", err)
	}
	name := fmt.Sprintf("%016x", xxhash.Sum64String(canonical))
	return filepath.Join(base, name+".naviscope"), nil
}

// Save writes g to path atomically: encode, write to a sibling temp
// file, then rename over the destination.
func Save(path string, g *graph.Graph) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: creating index directory: %w", err)
	}

	payload, err := graph.Serialize(g)
	if err != nil {
		return fmt.Errorf("storage: serializing graph: %w", err)
	}

	var buf bytes.Buffer
	if err := graph.EncodeSchemaVersion(&buf, graph.CurrentSchemaVersion); err != nil {
		return fmt.Errorf("storage: writing schema header: %w", err)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	buf.Write(lenBuf[:])
	buf.Write(payload)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("storage: writing temp index file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("storage: renaming index file into place: %w", err)
	}
	return nil
}

// Load reads the index file at path. It returns (nil, false, nil) if no
// file exists, or if the file's schema version no longer matches
// graph.CurrentSchemaVersion — in which case the stale file is deleted
// so the caller can silently rebuild (§6 "mismatched blobs are deleted
// and rebuilt silently").
func Load(path string, strings *symbol.Pool, paths *symbol.PathPool) (*graph.Graph, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("storage: opening index file: %w", err)
	}
	defer f.Close()

	version, err := graph.DecodeSchemaVersion(f)
	if err != nil {
		return nil, false, fmt.Errorf("storage: reading schema header: %w", err)
	}
	if version != graph.CurrentSchemaVersion {
		_ = os.Remove(path)
		return nil, false, nil
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(f, lenBuf[:]); err != nil {
		return nil, false, fmt.Errorf("storage: reading payload length: %w", err)
	}
	length := binary.BigEndian.Uint32(lenBuf[:])

	payload := make([]byte, length)
	if _, err := io.ReadFull(f, payload); err != nil {
		return nil, false, fmt.Errorf("storage: reading payload: %w", err)
	}

	g, err := graph.Deserialize(payload, strings, paths)
	if err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return g, true, nil
}

// ClearProjectIndex removes the on-disk index file for one project, if
// present.
func ClearProjectIndex(projectRoot string) error {
	path, err := IndexPath(projectRoot)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: removing index file: %w", err)
	}
	return nil
}

// ClearAllIndices removes the entire base index directory.
func ClearAllIndices() error {
	base, err := BaseDir()
	if err != nil {
		return err
	}
	if err := os.RemoveAll(base); err != nil {
		return fmt.Errorf("storage: removing index directory: %w", err)
	}
	return nil
}
