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

// Package rerank reorders fused retrieval candidates by query relevance.
//
// Two implementations are provided: ModelReranker delegates pair scoring
// to an ai.PairScorer, and HeuristicReranker computes a deterministic
// term-overlap score with no model dependency. Which one runs is decided
// at service construction time from configuration.
package rerank
