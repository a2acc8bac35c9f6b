// Copyright 2026 Civica Labs
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


package storage

import (
	"github.com/civica/policyrag/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalRegistryEntry serializes a RegistryEntry to bytes.
func MarshalRegistryEntry(entry core.RegistryEntry) []byte {
	buf := make([]byte, core.RegistryEntryMUS.Size(entry))
	core.RegistryEntryMUS.Marshal(entry, buf)
	return buf
}

// UnmarshalRegistryEntry deserializes a RegistryEntry from bytes.
func UnmarshalRegistryEntry(data []byte) (core.RegistryEntry, error) {
	entry, _, err := core.RegistryEntryMUS.Unmarshal(data)
	return entry, err
}

// MarshalBoostRuleSet serializes a BoostRuleSet to bytes.
func MarshalBoostRuleSet(rules *core.BoostRuleSet) []byte {
	buf := make([]byte, core.BoostRuleSetMUS.Size(*rules))
	core.BoostRuleSetMUS.Marshal(*rules, buf)
	return buf
}

// UnmarshalBoostRuleSet deserializes a BoostRuleSet from bytes.
func UnmarshalBoostRuleSet(data []byte) (*core.BoostRuleSet, error) {
	rules, _, err := core.BoostRuleSetMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &rules, nil
}
