package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/civica/policyrag/core"
	"github.com/civica/policyrag/storage"
)

// BoostRepository implements storage.BoostRepository for BadgerDB.
// The whole rule set lives in one record so Save replaces it atomically;
// the boost engine serializes concurrent load-modify-save cycles.
type BoostRepository struct {
	backend *Backend
}

var _ storage.BoostRepository = (*BoostRepository)(nil)

// NewBoostRepository creates a new BoostRepository.
func NewBoostRepository(backend *Backend) *BoostRepository {
	return &BoostRepository{
		backend: backend,
	}
}

// Close releases resources. BoostRepository has no resources to release.
func (r *BoostRepository) Close() error {
	return nil
}

// Load retrieves the committed rule set.
// Returns an empty set when none was ever saved.
func (r *BoostRepository) Load(ctx context.Context) (*core.BoostRuleSet, error) {
	rules := core.NewBoostRuleSet()
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeBoostRulesKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			loaded, unmarshalErr := storage.UnmarshalBoostRuleSet(val)
			if unmarshalErr != nil {
				return unmarshalErr
			}
			rules = loaded
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}
	if rules.Source == nil {
		rules.Source = make(map[string]float64)
	}
	if rules.Category == nil {
		rules.Category = make(map[string]float64)
	}
	return rules, nil
}

// Save atomically replaces the committed rule set.
func (r *BoostRepository) Save(ctx context.Context, rules *core.BoostRuleSet) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeBoostRulesKey(), storage.MarshalBoostRuleSet(rules)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
