package cache

import (
	"context"
	"time"

	"github.com/civica/policyrag/core"
)

// DefaultTTL is how long a cached result set stays valid unless
// configured otherwise.
const DefaultTTL = time.Hour

// Store is a result cache. Get misses on expired entries; neither Get
// nor Set surfaces backend errors, since the cache is an optimization
// layer and a search must survive losing it.
type Store interface {
	Get(ctx context.Context, key string) ([]core.RankedResult, bool)
	Set(ctx context.Context, key string, results []core.RankedResult)

	// Clear drops every entry.
	Clear(ctx context.Context) error

	// Stats reports hit and miss counters since startup.
	Stats() Stats

	Close() error
}

// Stats are cache effectiveness counters.
type Stats struct {
	Backend string
	Hits    uint64
	Misses  uint64
	Entries int
}
