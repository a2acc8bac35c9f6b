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


// Package storage defines the persistence interfaces for the retrieval
// engine and the serialization helpers shared by their implementations.
//
// Three repositories are persisted:
//   - chunks, the parsed passages with their embedding vectors
//   - the document registry, which drives incremental index synchronization
//   - the boost rule set, administrator-defined ranking adjustments
//
// The badger subpackage provides the production implementation on BadgerDB.
package storage
