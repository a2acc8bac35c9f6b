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

// Package location matches policy passages to administrative regions and
// reorders results toward the caller's locality.
//
// A Matcher is built from a Gazetteer (province -> city -> districts) and
// scores each passage by the most specific place name it mentions. The
// reranker blends that score with each result's prior score under a
// configurable weight; callers without a city are left untouched.
package location
