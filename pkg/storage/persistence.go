package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jfletcher/docstore/pkg/domain"
	"github.com/jfletcher/docstore/pkg/indexing"
)

// SaveToFile writes every collection and index definition to a single
// file: header, then an lz4 block of the msgpack-encoded StorageData.
func (se *StorageEngine) SaveToFile(filename string) error {
	se.mu.RLock()
	storageData := NewStorageData()
	for collName, collection := range se.collections {
		docs := make(map[string]domain.Document, len(collection.Documents))
		for docID, doc := range collection.Documents {
			docs[docID] = doc
		}
		storageData.Collections[collName] = docs

		if manager, exists := se.indexes[collName]; exists {
			if defs := manager.Definitions(); len(defs) > 0 {
				storageData.Indexes[collName] = defs
			}
		}
	}
	se.mu.RUnlock()

	msgpackData, err := msgpack.Marshal(storageData)
	if err != nil {
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	compressedData := make([]byte, lz4.CompressBlockBound(len(msgpackData)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(msgpackData, compressedData, hashTable[:])
	if err != nil {
		return fmt.Errorf("failed to compress data: %w", err)
	}

	// CompressBlock reports n == 0 for incompressible input; store it raw.
	var flags uint8
	payload := compressedData[:n]
	if n == 0 {
		flags = FlagUncompressed
		payload = msgpackData
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteHeader(file, flags, len(msgpackData)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := file.Write(payload); err != nil {
		return fmt.Errorf("failed to write compressed data: %w", err)
	}

	se.mu.Lock()
	se.dirty = false
	se.mu.Unlock()
	return nil
}

// LoadFromFile replaces the engine's state with the contents of a data
// file. Indexes are re-registered from their persisted definitions and
// rebuilt from the loaded documents. A missing file is not an error: the
// engine simply starts empty.
func (se *StorageEngine) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	header, err := ReadHeader(file)
	if err != nil {
		return fmt.Errorf("invalid file header: %w", err)
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read compressed data: %w", err)
	}

	decompressedData := payload
	if header.Flags&FlagUncompressed == 0 {
		decompressedData = make([]byte, header.RawSize)
		n, err := lz4.UncompressBlock(payload, decompressedData)
		if err != nil {
			return fmt.Errorf("failed to decompress data: %w", err)
		}
		decompressedData = decompressedData[:n]
	}

	var storageData StorageData
	if err := msgpack.Unmarshal(decompressedData, &storageData); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}

	se.mu.Lock()
	defer se.mu.Unlock()

	collections := make(map[string]*domain.Collection, len(storageData.Collections))
	indexes := make(map[string]*indexing.Manager, len(storageData.Collections))

	for collName, docs := range storageData.Collections {
		collection := domain.NewCollection(collName)
		for docID, doc := range docs {
			collection.Documents[docID] = doc
		}
		collections[collName] = collection

		manager := indexing.NewManager()
		for _, def := range storageData.Indexes[collName] {
			if err := manager.CreateIndex(def.Path, def.Unique, collection.Documents); err != nil {
				return fmt.Errorf("failed to rebuild index on %s.%s: %w", collName, def.Path, err)
			}
		}
		indexes[collName] = manager
	}

	se.collections = collections
	se.indexes = indexes
	se.dirty = false
	return nil
}
