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

package scanner

import "github.com/cespare/xxhash/v2"

// ContentHash computes the 64-bit non-cryptographic content hash used by
// the SourceFile descriptor (§3), matching the original engine's
// xxhash_rust::xxh3 choice.
func ContentHash(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// ChangeDecision is the outcome of comparing a candidate file against its
// previously stored SourceFile descriptor.
type ChangeDecision int

const (
	// Unchanged: mtime matched, file was not re-read.
	Unchanged ChangeDecision = iota
	// TouchedOnly: mtime differed but the content hash did not; only the
	// stored mtime needs updating.
	TouchedOnly
	// Changed: content hash differs; the file must be re-parsed.
	Changed
	// New: no prior SourceFile existed for this path.
	New
)

// DetectChange implements §4.5's two-step change detection: compare
// modification time first (skip if equal), else rehash and compare
// (skip re-parsing if the hash is unchanged, but still refresh mtime).
func DetectChange(prevMtime int64, prevHash uint64, hadPrev bool, curMtime int64, content []byte) (ChangeDecision, uint64) {
	if hadPrev && prevMtime == curMtime {
		return Unchanged, prevHash
	}
	newHash := ContentHash(content)
	if hadPrev && newHash == prevHash {
		return TouchedOnly, newHash
	}
	if !hadPrev {
		return New, newHash
	}
	return Changed, newHash
}
