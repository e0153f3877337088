package query

import (
	"github.com/jfletcher/docstore/pkg/domain"
)

// IndexLookup serves equality candidate sets from registered indexes.
// The second return value is false when no index covers the path or the
// value, which forces a full scan.
type IndexLookup interface {
	LookupEquals(path string, value interface{}) ([]string, bool)
}

// Plan produces the identifiers of every document matching the compiled
// query. If the query's top-level conjunction carries an equality clause on
// an indexed path, the smallest candidate set is fetched and the full
// predicate is re-applied to just those documents; the re-check keeps the
// result correct no matter which clause produced the candidates. Otherwise
// every document is scanned. Index usage never changes the result set,
// only the access path.
func Plan(compiled *Compiled, coll *domain.Collection, indexes IndexLookup) map[string]struct{} {
	result := make(map[string]struct{})
	if coll == nil {
		return result
	}

	candidates, useIndex := bestCandidates(compiled, indexes)
	if useIndex {
		for _, id := range candidates {
			doc, exists := coll.Documents[id]
			if exists && compiled.Matches(doc) {
				result[id] = struct{}{}
			}
		}
		return result
	}

	for id, doc := range coll.Documents {
		if compiled.Matches(doc) {
			result[id] = struct{}{}
		}
	}
	return result
}

// bestCandidates picks the smallest candidate set offered by any index
// across the query's top-level equality clauses.
func bestCandidates(compiled *Compiled, indexes IndexLookup) ([]string, bool) {
	if indexes == nil {
		return nil, false
	}
	var best []string
	found := false
	for _, eq := range compiled.EqualityClauses() {
		ids, ok := indexes.LookupEquals(eq.Path, eq.Value)
		if !ok {
			continue
		}
		if !found || len(ids) < len(best) {
			best = ids
			found = true
		}
	}
	return best, found
}
