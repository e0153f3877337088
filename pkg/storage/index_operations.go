package storage

import (
	"github.com/jfletcher/docstore/pkg/domain"
)

// CreateIndex registers an index on a field path and builds it from the
// collection's current documents. Building is all-or-nothing: a unique
// violation in existing data fails the registration and retains nothing.
func (se *StorageEngine) CreateIndex(collName, fieldPath string, unique bool) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	collection, err := se.getCollectionInternal(collName)
	if err != nil {
		return err
	}

	if err := se.indexManagerInternal(collName).CreateIndex(fieldPath, unique, collection.Documents); err != nil {
		return err
	}
	se.markDirty()
	return nil
}

// DropIndex removes an index from a collection
func (se *StorageEngine) DropIndex(collName, fieldPath string) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	if _, err := se.getCollectionInternal(collName); err != nil {
		return err
	}
	if err := se.indexManagerInternal(collName).DropIndex(fieldPath); err != nil {
		return err
	}
	se.markDirty()
	return nil
}

// IndexStats returns per-index statistics for a collection, keyed by field
// path.
func (se *StorageEngine) IndexStats(collName string) (map[string]domain.IndexStats, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()

	if _, err := se.getCollectionInternal(collName); err != nil {
		return nil, err
	}
	return se.indexManagerInternal(collName).Stats(), nil
}
