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

package rerank

import "errors"

var (
	// ErrScorerRequired indicates a ModelReranker was constructed without
	// a pair scorer.
	ErrScorerRequired = errors.New("pair scorer is required")

	// ErrScoreCountMismatch indicates the scorer returned a different
	// number of scores than passages submitted.
	ErrScoreCountMismatch = errors.New("scorer returned wrong number of scores")
)
