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


// Package ai defines the pluggable model capabilities consumed by the
// retrieval engine: text embedding and pairwise relevance scoring.
//
// Concrete implementations live in subpackages (openai for
// OpenAI-compatible services, mock for deterministic test doubles).
// Capability selection happens once at startup; a provider without a
// scoring model simply returns a nil PairScorer and the engine runs with
// the heuristic reranker instead.
package ai
