package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/civica/policyrag/core"
	"github.com/civica/policyrag/storage"
)

// RegistryRepository implements storage.RegistryRepository for BadgerDB.
type RegistryRepository struct {
	backend *Backend
}

var _ storage.RegistryRepository = (*RegistryRepository)(nil)

// NewRegistryRepository creates a new RegistryRepository.
func NewRegistryRepository(backend *Backend) (*RegistryRepository, error) {
	return &RegistryRepository{
		backend: backend,
	}, nil
}

// Close releases resources. RegistryRepository has no resources to release.
func (r *RegistryRepository) Close() error {
	return nil
}

// Load retrieves all registry entries keyed by source.
func (r *RegistryRepository) Load(ctx context.Context) (map[string]core.RegistryEntry, error) {
	entries := make(map[string]core.RegistryEntry)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(registryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			err := item.Value(func(val []byte) error {
				entry, err := storage.UnmarshalRegistryEntry(val)
				if err != nil {
					return err
				}
				entries[entry.Source] = entry
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Put creates or updates a single registry entry.
func (r *RegistryRepository) Put(ctx context.Context, entry core.RegistryEntry) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRegistryKey(entry.Source)
		if err := tx.Set(key, storage.MarshalRegistryEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ReplaceAll rewrites the registry wholesale.
func (r *RegistryRepository) ReplaceAll(ctx context.Context, entries map[string]core.RegistryEntry) error {
	if err := r.backend.DropPrefix([]byte(registryPrefix + ":")); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			key := makeRegistryKey(entry.Source)
			if err := tx.Set(key, storage.MarshalRegistryEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}
