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

// Package cache stores recent search results keyed by normalized query
// and search context.
//
// Two stores are provided: a bounded in-process LRU and a redis-backed
// store holding JSON payloads. The Tiered store prefers redis and falls
// back to the local store per operation, so a redis outage degrades
// cache locality but never fails a search.
package cache
