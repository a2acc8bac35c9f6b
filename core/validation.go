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


package core

import (
	"fmt"
	"strings"
)

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Source must not be empty
//
// NOT validated (populated by the synchronizer):
//   - Vector (can be empty until the document is embedded)
//   - ID (filled from content when the chunk is stored)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if strings.TrimSpace(chunk.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySource)
	}

	return nil
}

// ValidateQuery rejects empty or whitespace-only query text.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// ValidateTopK rejects a non-positive result count.
func ValidateTopK(topK int) error {
	if topK <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}
	return nil
}

// ValidateBoostTarget validates that a BoostTarget has a known value.
func ValidateBoostTarget(target BoostTarget) error {
	if target != BoostTargetSource && target != BoostTargetCategory {
		return fmt.Errorf("%w: got %q", ErrInvalidBoostTarget, string(target))
	}
	return nil
}

// ValidateBoostWeight validates that a boost weight is non-negative.
func ValidateBoostWeight(weight float64) error {
	if weight < 0 {
		return fmt.Errorf("%w: got %v", ErrNegativeBoostWeight, weight)
	}
	return nil
}
