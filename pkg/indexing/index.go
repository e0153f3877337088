package indexing

import (
	"strconv"

	"github.com/jfletcher/docstore/pkg/domain"
	"github.com/jfletcher/docstore/pkg/query"
)

// Index maps canonicalized field values to the set of document IDs holding
// that value at the indexed path. A sequence value is indexed once per
// scalar element (multikey), so index lookups agree with the
// array-containment semantics of equality matching.
type Index struct {
	Path   string
	Unique bool

	values map[string]map[string]struct{} // canonical key -> doc IDs
	byDoc  map[string][]string            // doc ID -> canonical keys it holds
}

// NewIndex creates an empty index on a field path.
func NewIndex(path string, unique bool) *Index {
	return &Index{
		Path:   path,
		Unique: unique,
		values: make(map[string]map[string]struct{}),
		byDoc:  make(map[string][]string),
	}
}

// fieldKey pairs a canonical key with the raw value it came from, so
// constraint errors can report the offending value.
type fieldKey struct {
	canon string
	value interface{}
}

// CanonicalKey renders a scalar value as a typed string key so values that
// compare equal share an index entry. Documents decoded from JSON or
// msgpack hold ints and floats interchangeably, hence the float64 funnel.
// Sequences and mappings are not indexable and return false.
func CanonicalKey(value interface{}) (string, bool) {
	if value == nil {
		return "z", true
	}
	if f, ok := query.ToFloat64(value); ok {
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64), true
	}
	switch v := value.(type) {
	case string:
		return "s:" + v, true
	case bool:
		return "b:" + strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// keysFor resolves the indexed path in a document and returns the
// canonical keys the document occupies in this index. A missing path
// yields no keys (sparse), a scalar yields one, and a sequence yields one
// per distinct indexable element.
func (idx *Index) keysFor(doc domain.Document) []fieldKey {
	resolved, found := query.Resolve(doc, idx.Path)
	if !found {
		return nil
	}

	seq, isSeq := resolved.([]interface{})
	if !isSeq {
		if canon, ok := CanonicalKey(resolved); ok {
			return []fieldKey{{canon: canon, value: resolved}}
		}
		return nil
	}

	var keys []fieldKey
	seen := make(map[string]struct{}, len(seq))
	for _, elem := range seq {
		canon, ok := CanonicalKey(elem)
		if !ok {
			continue
		}
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		keys = append(keys, fieldKey{canon: canon, value: elem})
	}
	return keys
}

// conflict returns the first value the document would duplicate under a
// unique constraint, ignoring entries held by selfID.
func (idx *Index) conflict(selfID string, doc domain.Document) (interface{}, bool) {
	if !idx.Unique {
		return nil, false
	}
	for _, key := range idx.keysFor(doc) {
		for id := range idx.values[key.canon] {
			if id != selfID {
				return key.value, true
			}
		}
	}
	return nil, false
}

// add records a document's keys. Callers must have run conflict checks
// first; add itself never fails.
func (idx *Index) add(id string, doc domain.Document) {
	keys := idx.keysFor(doc)
	if len(keys) == 0 {
		return
	}
	canons := make([]string, 0, len(keys))
	for _, key := range keys {
		ids, exists := idx.values[key.canon]
		if !exists {
			ids = make(map[string]struct{})
			idx.values[key.canon] = ids
		}
		ids[id] = struct{}{}
		canons = append(canons, key.canon)
	}
	idx.byDoc[id] = canons
}

// remove erases a document from the index using the recorded back-map, so
// removal is exact even if the caller no longer has the old document.
func (idx *Index) remove(id string) {
	for _, canon := range idx.byDoc[id] {
		ids := idx.values[canon]
		delete(ids, id)
		if len(ids) == 0 {
			delete(idx.values, canon)
		}
	}
	delete(idx.byDoc, id)
}

// lookup returns the IDs currently holding the canonical key.
func (idx *Index) lookup(canon string) []string {
	ids, exists := idx.values[canon]
	if !exists {
		return []string{}
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	return out
}

// stats summarizes the index for observability.
func (idx *Index) stats() domain.IndexStats {
	return domain.IndexStats{
		EntryCount:    len(idx.values),
		DocumentCount: len(idx.byDoc),
		Unique:        idx.Unique,
	}
}
