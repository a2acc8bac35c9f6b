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

package retrieval

import "errors"

var (
	// ErrNotInitialized indicates the indexes were never built, so "no
	// results" cannot be distinguished from "not ready".
	ErrNotInitialized = errors.New("index is not initialized")

	// ErrEmbedderRequired indicates an Engine constructed without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrIndexRequired indicates an Engine constructed without both indexes.
	ErrIndexRequired = errors.New("vector and lexical indexes are required")

	// ErrRerankerRequired indicates an Engine constructed without a reranker.
	ErrRerankerRequired = errors.New("reranker is required")
)
