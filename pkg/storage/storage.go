package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/jfletcher/docstore/pkg/domain"
	"github.com/jfletcher/docstore/pkg/indexing"
)

// StorageEngine holds every collection in memory together with its index
// manager. Collections and indexes mutate together under the engine lock,
// so callers observe them transition atomically.
type StorageEngine struct {
	mu          sync.RWMutex
	collections map[string]*domain.Collection
	indexes     map[string]*indexing.Manager // collection name -> its indexes
	dirty       bool

	// Configuration
	dataFile       string
	backgroundSave bool
	saveInterval   time.Duration

	// Background workers
	backgroundWg sync.WaitGroup
	stopChan     chan struct{}
}

// NewStorageEngine creates a new storage engine
func NewStorageEngine(options ...StorageOption) *StorageEngine {
	engine := &StorageEngine{
		collections:  make(map[string]*domain.Collection),
		indexes:      make(map[string]*indexing.Manager),
		saveInterval: 5 * time.Minute,
		stopChan:     make(chan struct{}),
	}

	for _, option := range options {
		option(engine)
	}

	return engine
}

// CreateCollection creates a new, empty collection
func (se *StorageEngine) CreateCollection(collName string) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	if collName == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if _, exists := se.collections[collName]; exists {
		return fmt.Errorf("collection %s already exists", collName)
	}

	se.collections[collName] = domain.NewCollection(collName)
	se.indexes[collName] = indexing.NewManager()
	se.dirty = true
	return nil
}

// GetCollection returns a collection by name
func (se *StorageEngine) GetCollection(collName string) (*domain.Collection, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return se.getCollectionInternal(collName)
}

// getCollectionInternal contains the lookup logic without locking
func (se *StorageEngine) getCollectionInternal(collName string) (*domain.Collection, error) {
	collection, exists := se.collections[collName]
	if !exists {
		return nil, fmt.Errorf("collection %s does not exist", collName)
	}
	return collection, nil
}

// getOrCreateCollectionInternal auto-creates a collection on first insert
func (se *StorageEngine) getOrCreateCollectionInternal(collName string) *domain.Collection {
	collection, exists := se.collections[collName]
	if !exists {
		collection = domain.NewCollection(collName)
		se.collections[collName] = collection
		se.indexes[collName] = indexing.NewManager()
	}
	return collection
}

// indexManagerInternal returns the index manager for a collection,
// creating an empty one for collections loaded before indexes existed.
func (se *StorageEngine) indexManagerInternal(collName string) *indexing.Manager {
	manager, exists := se.indexes[collName]
	if !exists {
		manager = indexing.NewManager()
		se.indexes[collName] = manager
	}
	return manager
}

// markDirty flags unsaved changes for the background save worker.
func (se *StorageEngine) markDirty() {
	se.dirty = true
}
