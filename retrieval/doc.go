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

// Package retrieval is the public query entry point. The Engine fans
// the vector and lexical signals out over a worker pool under a
// wall-clock timeout, fuses and thresholds the candidates, then runs
// reranking, boosting, and location adjustment synchronously.
//
// A query where one signal fails proceeds degraded on the other; a
// query that retrieves nothing returns an empty result with a reason
// code, not an error.
package retrieval
