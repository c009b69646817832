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

package golang

import "github.com/vmihailenco/msgpack/v5"

// GoMetadata is the opaque per-node payload this plugin attaches to
// methods, types, and fields, round-tripped through graph.Node.Metadata.
type GoMetadata struct {
	Receiver string `msgpack:"receiver,omitempty"` // set for methods; the receiver's base type name
	Exported bool   `msgpack:"exported,omitempty"`
	Alias    bool   `msgpack:"alias,omitempty"` // set for "type Foo Bar"-style named types
}

// MetadataEncode implements plugin.LanguagePlugin.MetadataEncode.
func MetadataEncode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// MetadataDecode implements plugin.LanguagePlugin.MetadataDecode.
func MetadataDecode(data []byte) (any, error) {
	var m GoMetadata
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeGoMetadata(m GoMetadata) []byte {
	data, err := msgpack.Marshal(m)
	if err != nil {
		return nil
	}
	return data
}
