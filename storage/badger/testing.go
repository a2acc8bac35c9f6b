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


package badger

import "github.com/civica/policyrag/storage"

// NewMemoryStores creates in-memory chunk, registry and boost repositories
// for testing. Returns chunkRepo, registryRepo, boostRepo, backend, and error.
// Caller must close the repos and backend when done.
func NewMemoryStores() (storage.ChunkRepository, storage.RegistryRepository, storage.BoostRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	chunkRepo, err := NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	registryRepo, err := NewRegistryRepository(backend)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	boostRepo := NewBoostRepository(backend)

	return chunkRepo, registryRepo, boostRepo, backend, nil
}
