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

// Package index provides the in-memory recall structures used by the
// retrieval engine: a brute-force cosine vector index and an inverted
// lexical index with BM25-style scoring.
//
// Both indexes are rebuilt from the chunk repository and swapped in
// atomically, so readers never observe a partially built index.
package index
