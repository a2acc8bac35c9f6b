package badger

import (
	"fmt"

	"github.com/civica/policyrag/core"
)

// Key prefixes for different data types
const (
	chunkPrefix       = "chkrec"
	chunkSourcePrefix = "chksrc"
	registryPrefix    = "regdoc"
	boostRulesKey     = "boosts"
)

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkSourceKey generates a composite key for the source index.
// Format: prefix:source:id
func makeChunkSourceKey(source string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", chunkSourcePrefix, source, id))
}

// makeRegistryKey generates a key for a registry entry by source.
func makeRegistryKey(source string) []byte {
	return []byte(registryPrefix + ":" + source)
}

// makeBoostRulesKey generates the key for the single boost-rule record.
func makeBoostRulesKey() []byte {
	return []byte(boostRulesKey)
}
