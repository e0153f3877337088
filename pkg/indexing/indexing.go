package indexing

import (
	"fmt"
	"sort"

	"github.com/jfletcher/docstore/pkg/domain"
)

// Manager owns every index of one collection and keeps them synchronized
// with collection mutations. It enforces the central correctness
// obligation of the indexing system: a rejected mutation leaves every
// index exactly as it was, and a committed one is reflected in all of
// them.
//
// The manager performs no locking of its own; the storage engine
// serializes access.
type Manager struct {
	indexes map[string]*Index // field path -> index
}

// Definition describes an index for persistence; indexes themselves are
// rebuilt from documents on load.
type Definition struct {
	Path   string `msgpack:"path" json:"path"`
	Unique bool   `msgpack:"unique" json:"unique"`
}

// NewManager creates an index manager with no indexes.
func NewManager() *Manager {
	return &Manager{indexes: make(map[string]*Index)}
}

// CreateIndex registers a new index on a field path and builds it from the
// existing documents. The build is all-or-nothing: if a unique constraint
// is violated by current data, no index is retained.
func (m *Manager) CreateIndex(path string, unique bool, docs map[string]domain.Document) error {
	if path == "" {
		return fmt.Errorf("index field path cannot be empty")
	}
	if _, exists := m.indexes[path]; exists {
		return fmt.Errorf("index on field %q already exists", path)
	}

	idx := NewIndex(path, unique)
	for id, doc := range docs {
		if value, dup := idx.conflict(id, doc); dup {
			return &domain.DuplicateKeyError{Path: path, Value: value}
		}
		idx.add(id, doc)
	}

	m.indexes[path] = idx
	return nil
}

// DropIndex removes the index on a field path.
func (m *Manager) DropIndex(path string) error {
	if _, exists := m.indexes[path]; !exists {
		return &domain.IndexNotFoundError{Path: path}
	}
	delete(m.indexes, path)
	return nil
}

// OnInsert records a new document in every index. Unique constraints are
// validated across all indexes before any of them is touched.
func (m *Manager) OnInsert(id string, doc domain.Document) error {
	for _, idx := range m.indexes {
		if value, dup := idx.conflict("", doc); dup {
			return &domain.DuplicateKeyError{Path: idx.Path, Value: value}
		}
	}
	for _, idx := range m.indexes {
		idx.add(id, doc)
	}
	return nil
}

// OnUpdate replaces a document's entries in every index, even when the
// update does not touch the indexed path. Validation runs first so a
// rejected update changes nothing.
func (m *Manager) OnUpdate(id string, newDoc domain.Document) error {
	for _, idx := range m.indexes {
		if value, dup := idx.conflict(id, newDoc); dup {
			return &domain.DuplicateKeyError{Path: idx.Path, Value: value}
		}
	}
	for _, idx := range m.indexes {
		idx.remove(id)
		idx.add(id, newDoc)
	}
	return nil
}

// OnDelete removes a document from every index.
func (m *Manager) OnDelete(id string) {
	for _, idx := range m.indexes {
		idx.remove(id)
	}
}

// LookupEquals returns the candidate ID set for an exact-match lookup. The
// second return value is false when the path has no index or the value is
// not indexable, signaling the caller to fall back to a full scan.
func (m *Manager) LookupEquals(path string, value interface{}) ([]string, bool) {
	idx, exists := m.indexes[path]
	if !exists {
		return nil, false
	}
	canon, ok := CanonicalKey(value)
	if !ok {
		return nil, false
	}
	return idx.lookup(canon), true
}

// HasIndex reports whether a field path is indexed.
func (m *Manager) HasIndex(path string) bool {
	_, exists := m.indexes[path]
	return exists
}

// Paths returns the indexed field paths in sorted order.
func (m *Manager) Paths() []string {
	paths := make([]string, 0, len(m.indexes))
	for path := range m.indexes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Stats returns per-index statistics keyed by field path.
func (m *Manager) Stats() map[string]domain.IndexStats {
	stats := make(map[string]domain.IndexStats, len(m.indexes))
	for path, idx := range m.indexes {
		stats[path] = idx.stats()
	}
	return stats
}

// Definitions returns the registered indexes as persistable definitions.
func (m *Manager) Definitions() []Definition {
	defs := make([]Definition, 0, len(m.indexes))
	for _, path := range m.Paths() {
		defs = append(defs, Definition{Path: path, Unique: m.indexes[path].Unique})
	}
	return defs
}

// Rebuild clears every index and re-adds the given documents. Used after
// loading a collection from disk.
func (m *Manager) Rebuild(docs map[string]domain.Document) error {
	rebuilt := make(map[string]*Index, len(m.indexes))
	for path, old := range m.indexes {
		idx := NewIndex(path, old.Unique)
		for id, doc := range docs {
			if value, dup := idx.conflict(id, doc); dup {
				return &domain.DuplicateKeyError{Path: path, Value: value}
			}
			idx.add(id, doc)
		}
		rebuilt[path] = idx
	}
	m.indexes = rebuilt
	return nil
}
