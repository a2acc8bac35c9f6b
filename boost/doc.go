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

// Package boost manages administrator-defined score adjustments.
//
// Boost rules are keyed by source document or by inferred category and
// persist across restarts. At query time the engine subtracts the summed
// matching weights from each candidate's distance, clamped at zero, so a
// boosted chunk ranks as if it were closer to the query.
package boost
