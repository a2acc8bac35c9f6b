package cache

import (
	"context"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/civica/policyrag/core"
)

// localCapacity bounds the in-process cache.
const localCapacity = 1000

type localEntry struct {
	results   []core.RankedResult
	expiresAt time.Time
}

// Local is a bounded in-process LRU with per-entry expiry. Entries carry
// their own deadline because the whole cache shares one LRU but searches
// may be cached with different TTLs.
type Local struct {
	entries *lru.Cache[string, localEntry]
	ttl     time.Duration
	now     func() time.Time

	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ Store = (*Local)(nil)

// LocalOption configures a Local store.
type LocalOption func(*Local)

// WithLocalTTL sets the entry lifetime. Default is DefaultTTL.
func WithLocalTTL(ttl time.Duration) LocalOption {
	return func(l *Local) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// NewLocal creates an in-process result cache.
func NewLocal(opts ...LocalOption) (*Local, error) {
	entries, err := lru.New[string, localEntry](localCapacity)
	if err != nil {
		return nil, err
	}

	l := &Local{
		entries: entries,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Get returns the cached results for key, treating expired entries as
// misses and dropping them.
func (l *Local) Get(_ context.Context, key string) ([]core.RankedResult, bool) {
	entry, ok := l.entries.Get(key)
	if !ok {
		l.misses.Add(1)
		return nil, false
	}
	if !entry.expiresAt.After(l.now()) {
		l.entries.Remove(key)
		l.misses.Add(1)
		return nil, false
	}
	l.hits.Add(1)
	return entry.results, true
}

// Set stores results under key with the configured TTL.
func (l *Local) Set(_ context.Context, key string, results []core.RankedResult) {
	l.entries.Add(key, localEntry{
		results:   results,
		expiresAt: l.now().Add(l.ttl),
	})
}

// Clear drops every entry.
func (l *Local) Clear(_ context.Context) error {
	l.entries.Purge()
	return nil
}

// Stats reports counters since startup.
func (l *Local) Stats() Stats {
	return Stats{
		Backend: "local",
		Hits:    l.hits.Load(),
		Misses:  l.misses.Load(),
		Entries: l.entries.Len(),
	}
}

// Close releases nothing; the store is purely in-process.
func (l *Local) Close() error {
	return nil
}
