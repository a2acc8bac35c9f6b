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

// Package syncer keeps the persisted chunk store and the in-memory
// indexes consistent with the source documents on disk.
//
// A sync cycle compares each document's mtime and content hash against
// the registry. New documents are chunked, embedded, and added
// incrementally; a modified document triggers a full rebuild so stale
// chunks of the old revision never linger in the index. Registry rows
// for documents later deleted from disk are preserved.
package syncer
