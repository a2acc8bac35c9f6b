package cache

import (
	"context"
	"log/slog"

	"github.com/civica/policyrag/core"
)

// Tiered prefers a remote store and falls back to a local one per
// operation. The remote store's own operations never fail a search, so
// falling back here means "remote said miss or was absent"; writes go to
// both stores so a remote outage still leaves warm local entries.
type Tiered struct {
	remote Store // may be nil when redis was unreachable at startup
	local  Store
	logger *slog.Logger
}

var _ Store = (*Tiered)(nil)

// NewTiered combines a remote and a local store. remote may be nil.
func NewTiered(remote, local Store, logger *slog.Logger) *Tiered {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tiered{
		remote: remote,
		local:  local,
		logger: logger,
	}
}

// Get checks the remote store first, then the local one.
func (t *Tiered) Get(ctx context.Context, key string) ([]core.RankedResult, bool) {
	if t.remote != nil {
		if results, ok := t.remote.Get(ctx, key); ok {
			return results, true
		}
	}
	return t.local.Get(ctx, key)
}

// Set writes to both stores.
func (t *Tiered) Set(ctx context.Context, key string, results []core.RankedResult) {
	if t.remote != nil {
		t.remote.Set(ctx, key, results)
	}
	t.local.Set(ctx, key, results)
}

// Clear drops entries from both stores.
func (t *Tiered) Clear(ctx context.Context) error {
	var firstErr error
	if t.remote != nil {
		if err := t.remote.Clear(ctx); err != nil {
			t.logger.Warn("failed to clear remote cache", "err", err)
			firstErr = err
		}
	}
	if err := t.local.Clear(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Stats reports the remote store's counters when one is configured,
// otherwise the local store's.
func (t *Tiered) Stats() Stats {
	if t.remote != nil {
		return t.remote.Stats()
	}
	return t.local.Stats()
}

// Close closes both stores.
func (t *Tiered) Close() error {
	var firstErr error
	if t.remote != nil {
		if err := t.remote.Close(); err != nil {
			firstErr = err
		}
	}
	if err := t.local.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
