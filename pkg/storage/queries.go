package storage

import (
	"sort"

	"github.com/jfletcher/docstore/pkg/domain"
	"github.com/jfletcher/docstore/pkg/indexing"
	"github.com/jfletcher/docstore/pkg/query"
)

// Find returns the documents matching a query specification, paginated.
// An empty or nil query matches every document. Exact-match clauses on
// indexed fields are served from the index; everything else scans.
func (se *StorageEngine) Find(collName string, querySpec map[string]interface{}, options *domain.PaginationOptions) (*domain.PaginationResult, error) {
	if options == nil {
		options = domain.DefaultPaginationOptions()
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}

	se.mu.RLock()
	docs, err := se.findMatchingInternal(collName, querySpec)
	se.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	return applyPagination(docs, options), nil
}

// FindOne returns the first matching document in ID order, or nil when
// nothing matches.
func (se *StorageEngine) FindOne(collName string, querySpec map[string]interface{}) (domain.Document, error) {
	se.mu.RLock()
	docs, err := se.findMatchingInternal(collName, querySpec)
	se.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// Count returns the number of documents matching a query.
func (se *StorageEngine) Count(collName string, querySpec map[string]interface{}) (int, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()
	docs, err := se.findMatchingInternal(collName, querySpec)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// UpdateMany merges updates into every document matching the query and
// returns how many were updated. Each document updates atomically against
// unique indexes; a violation stops the loop, leaves that document
// unchanged, and reports the count applied so far.
func (se *StorageEngine) UpdateMany(collName string, querySpec map[string]interface{}, updates domain.Document) (int, error) {
	se.mu.Lock()
	defer se.mu.Unlock()

	docs, err := se.findMatchingInternal(collName, querySpec)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, doc := range docs {
		if err := se.updateByIdInternal(collName, doc.ID(), updates); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// DeleteMany removes every document matching the query and returns how
// many were deleted.
func (se *StorageEngine) DeleteMany(collName string, querySpec map[string]interface{}) (int, error) {
	se.mu.Lock()
	defer se.mu.Unlock()

	docs, err := se.findMatchingInternal(collName, querySpec)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, doc := range docs {
		if err := se.deleteByIdInternal(collName, doc.ID()); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// Upsert updates the first document matching the query, or inserts the
// given document when nothing matches. At most one document is ever
// touched. Returns the affected document's ID.
func (se *StorageEngine) Upsert(collName string, querySpec map[string]interface{}, doc domain.Document) (string, error) {
	se.mu.Lock()
	defer se.mu.Unlock()

	docs, err := se.findMatchingInternal(collName, querySpec)
	if err != nil {
		return "", err
	}

	if len(docs) > 0 {
		id := docs[0].ID()
		if err := se.updateByIdInternal(collName, id, doc); err != nil {
			return "", err
		}
		return id, nil
	}

	return se.insertInternal(collName, doc)
}

// Distinct returns the unique scalar values held at a field path across
// the documents matching the query (all documents when the query is nil).
// A sequence value contributes each of its elements.
func (se *StorageEngine) Distinct(collName, fieldPath string, querySpec map[string]interface{}) ([]interface{}, error) {
	se.mu.RLock()
	defer se.mu.RUnlock()

	docs, err := se.findMatchingInternal(collName, querySpec)
	if err != nil {
		return nil, err
	}

	values := []interface{}{}
	seen := make(map[string]struct{})
	for _, doc := range docs {
		resolved, found := query.Resolve(doc, fieldPath)
		if !found {
			continue
		}
		elems, isSeq := resolved.([]interface{})
		if !isSeq {
			elems = []interface{}{resolved}
		}
		for _, elem := range elems {
			canon, ok := indexing.CanonicalKey(elem)
			if !ok {
				continue
			}
			if _, dup := seen[canon]; dup {
				continue
			}
			seen[canon] = struct{}{}
			values = append(values, elem)
		}
	}
	return values, nil
}

// findMatchingInternal plans and runs a query, returning matches sorted by
// ID for deterministic ordering. Callers hold the engine lock.
func (se *StorageEngine) findMatchingInternal(collName string, querySpec map[string]interface{}) ([]domain.Document, error) {
	collection, err := se.getCollectionInternal(collName)
	if err != nil {
		return nil, err
	}

	if querySpec == nil {
		querySpec = map[string]interface{}{}
	}
	compiled, err := query.Compile(querySpec)
	if err != nil {
		return nil, err
	}

	ids := query.Plan(compiled, collection, se.indexManagerInternal(collName))

	docs := make([]domain.Document, 0, len(ids))
	for id := range ids {
		docs = append(docs, collection.Documents[id])
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ID() < docs[j].ID()
	})
	return docs, nil
}

// applyPagination slices a sorted result set by offset and limit.
func applyPagination(docs []domain.Document, options *domain.PaginationOptions) *domain.PaginationResult {
	result := &domain.PaginationResult{
		Documents: []domain.Document{},
		Total:     int64(len(docs)),
	}

	limit := options.Limit
	if limit <= 0 {
		limit = 50
	}
	if options.MaxLimit > 0 && limit > options.MaxLimit {
		limit = options.MaxLimit
	}

	start := options.Offset
	if start >= len(docs) {
		result.HasPrev = start > 0 && len(docs) > 0
		return result
	}

	end := start + limit
	if end > len(docs) {
		end = len(docs)
	} else if end < len(docs) {
		result.HasNext = true
	}
	result.HasPrev = start > 0
	result.Documents = docs[start:end]
	return result
}
