package storage

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jfletcher/docstore/pkg/domain"
)

// Insert inserts a document into a collection, creating the collection on
// first use. Returns the document's ID. If any unique index would be
// violated, nothing is stored.
func (se *StorageEngine) Insert(collName string, doc domain.Document) (string, error) {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.insertInternal(collName, doc)
}

func (se *StorageEngine) insertInternal(collName string, doc domain.Document) (string, error) {
	collection := se.getOrCreateCollectionInternal(collName)

	id := doc.ID()
	if id == "" {
		id = uuid.NewString()
	} else if _, exists := collection.Documents[id]; exists {
		return "", fmt.Errorf("document with id %s already exists in collection %s", id, collName)
	}
	doc["_id"] = id

	// Indexes validate before anything mutates.
	if err := se.indexManagerInternal(collName).OnInsert(id, doc); err != nil {
		return "", err
	}

	collection.Documents[id] = doc
	se.markDirty()
	return id, nil
}

// GetById retrieves a specific document by its ID
func (se *StorageEngine) GetById(collName, docId string) (domain.Document, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()

	collection, err := se.getCollectionInternal(collName)
	if err != nil {
		return nil, err
	}

	doc, exists := collection.Documents[docId]
	if !exists {
		return nil, fmt.Errorf("document with id %s not found in collection %s", docId, collName)
	}
	return doc, nil
}

// UpdateById merges updates into a document. The _id field is protected.
// A unique-index violation leaves the document and all indexes untouched.
func (se *StorageEngine) UpdateById(collName, docId string, updates domain.Document) error {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.updateByIdInternal(collName, docId, updates)
}

func (se *StorageEngine) updateByIdInternal(collName, docId string, updates domain.Document) error {
	collection, err := se.getCollectionInternal(collName)
	if err != nil {
		return err
	}

	doc, exists := collection.Documents[docId]
	if !exists {
		return fmt.Errorf("document with id %s not found in collection %s", docId, collName)
	}

	// Apply updates to a copy so a rejected write leaves the stored
	// document untouched.
	newDoc := doc.Copy()
	for key, value := range updates {
		if key != "_id" {
			newDoc[key] = value
		}
	}

	if err := se.indexManagerInternal(collName).OnUpdate(docId, newDoc); err != nil {
		return err
	}

	collection.Documents[docId] = newDoc
	se.markDirty()
	return nil
}

// ReplaceById replaces a document wholesale, keeping its ID.
func (se *StorageEngine) ReplaceById(collName, docId string, doc domain.Document) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	collection, err := se.getCollectionInternal(collName)
	if err != nil {
		return err
	}

	if _, exists := collection.Documents[docId]; !exists {
		return fmt.Errorf("document with id %s not found in collection %s", docId, collName)
	}

	newDoc := doc.Copy()
	newDoc["_id"] = docId

	if err := se.indexManagerInternal(collName).OnUpdate(docId, newDoc); err != nil {
		return err
	}

	collection.Documents[docId] = newDoc
	se.markDirty()
	return nil
}

// DeleteById removes a specific document by its ID
func (se *StorageEngine) DeleteById(collName, docId string) error {
	se.mu.Lock()
	defer se.mu.Unlock()
	return se.deleteByIdInternal(collName, docId)
}

func (se *StorageEngine) deleteByIdInternal(collName, docId string) error {
	collection, err := se.getCollectionInternal(collName)
	if err != nil {
		return err
	}

	if _, exists := collection.Documents[docId]; !exists {
		return fmt.Errorf("document with id %s not found in collection %s", docId, collName)
	}

	se.indexManagerInternal(collName).OnDelete(docId)
	delete(collection.Documents, docId)
	se.markDirty()
	return nil
}

// DeleteAll removes every document from a collection, clearing its indexes.
func (se *StorageEngine) DeleteAll(collName string) (int, error) {
	se.mu.Lock()
	defer se.mu.Unlock()

	collection, err := se.getCollectionInternal(collName)
	if err != nil {
		return 0, err
	}

	count := len(collection.Documents)
	manager := se.indexManagerInternal(collName)
	for id := range collection.Documents {
		manager.OnDelete(id)
	}
	collection.Documents = make(map[string]domain.Document)
	se.markDirty()
	return count, nil
}
