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

package index

import "errors"

var (
	// ErrDimensionMismatch indicates a query vector whose dimension does
	// not match the indexed vectors.
	ErrDimensionMismatch = errors.New("query vector dimension does not match index")

	// ErrEmptyVector indicates an empty or zero-length query vector.
	ErrEmptyVector = errors.New("query vector is empty")
)
