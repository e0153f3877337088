package query_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfletcher/docstore/pkg/domain"
	"github.com/jfletcher/docstore/pkg/query"
)

// fakeIndexes serves canned candidate sets and records which lookups the
// planner asked for.
type fakeIndexes struct {
	candidates map[string][]string
	lookups    []string
}

func (f *fakeIndexes) LookupEquals(path string, value interface{}) ([]string, bool) {
	key := fmt.Sprintf("%s=%v", path, value)
	f.lookups = append(f.lookups, key)
	ids, ok := f.candidates[key]
	return ids, ok
}

func cityCollection() *domain.Collection {
	coll := domain.NewCollection("users")
	coll.Documents["1"] = domain.Document{"_id": "1", "city": "NYC", "age": int64(25)}
	coll.Documents["2"] = domain.Document{"_id": "2", "city": "SF", "age": int64(31)}
	coll.Documents["3"] = domain.Document{"_id": "3", "city": "NYC", "age": int64(40)}
	return coll
}

func planIDs(t *testing.T, spec map[string]interface{}, coll *domain.Collection, indexes query.IndexLookup) map[string]struct{} {
	t.Helper()
	compiled, err := query.Compile(spec)
	require.NoError(t, err)
	return query.Plan(compiled, coll, indexes)
}

func TestPlanUsesIndexAndRechecks(t *testing.T) {
	coll := cityCollection()
	indexes := &fakeIndexes{candidates: map[string][]string{
		"city=NYC": {"1", "3"},
	}}

	got := planIDs(t, map[string]interface{}{
		"city": "NYC",
		"age":  map[string]interface{}{"$gte": 30},
	}, coll, indexes)

	assert.Equal(t, map[string]struct{}{"3": {}}, got)
	assert.Contains(t, indexes.lookups, "city=NYC")
}

func TestPlanFallsBackToFullScan(t *testing.T) {
	coll := cityCollection()

	t.Run("no index on path", func(t *testing.T) {
		indexes := &fakeIndexes{candidates: map[string][]string{}}
		got := planIDs(t, map[string]interface{}{"city": "NYC"}, coll, indexes)
		assert.Equal(t, map[string]struct{}{"1": {}, "3": {}}, got)
	})

	t.Run("nil index lookup", func(t *testing.T) {
		got := planIDs(t, map[string]interface{}{"city": "SF"}, coll, nil)
		assert.Equal(t, map[string]struct{}{"2": {}}, got)
	})

	t.Run("no equality clause", func(t *testing.T) {
		indexes := &fakeIndexes{candidates: map[string][]string{}}
		got := planIDs(t, map[string]interface{}{
			"age": map[string]interface{}{"$gt": 30},
		}, coll, indexes)
		assert.Equal(t, map[string]struct{}{"2": {}, "3": {}}, got)
		assert.Empty(t, indexes.lookups)
	})
}

func TestPlanRootOrAndNotSkipIndexes(t *testing.T) {
	coll := cityCollection()
	indexes := &fakeIndexes{candidates: map[string][]string{
		"city=NYC": {"1", "3"},
	}}

	t.Run("$or at root", func(t *testing.T) {
		got := planIDs(t, map[string]interface{}{
			"$or": []interface{}{
				map[string]interface{}{"city": "NYC"},
				map[string]interface{}{"city": "SF"},
			},
		}, coll, indexes)
		assert.Len(t, got, 3)
		assert.Empty(t, indexes.lookups)
	})

	t.Run("$not at root", func(t *testing.T) {
		got := planIDs(t, map[string]interface{}{
			"$not": map[string]interface{}{"city": "NYC"},
		}, coll, indexes)
		assert.Equal(t, map[string]struct{}{"2": {}}, got)
		assert.Empty(t, indexes.lookups)
	})
}

func TestPlanPicksSmallestCandidateSet(t *testing.T) {
	coll := cityCollection()
	coll.Documents["4"] = domain.Document{"_id": "4", "city": "NYC", "age": int64(40), "vip": true}

	indexes := &fakeIndexes{candidates: map[string][]string{
		"city=NYC": {"1", "3", "4"},
		"vip=true": {"4"},
	}}

	compiled, err := query.Compile(map[string]interface{}{
		"city": "NYC",
		"vip":  true,
	})
	require.NoError(t, err)

	got := query.Plan(compiled, coll, indexes)
	assert.Equal(t, map[string]struct{}{"4": {}}, got)
	// Both clauses were probed; the smaller set won.
	assert.Len(t, indexes.lookups, 2)
}

func TestPlanStaleCandidatesAreRechecked(t *testing.T) {
	coll := cityCollection()
	indexes := &fakeIndexes{candidates: map[string][]string{
		// "2" is a false positive and "99" no longer exists.
		"city=NYC": {"1", "2", "3", "99"},
	}}

	got := planIDs(t, map[string]interface{}{"city": "NYC"}, coll, indexes)
	assert.Equal(t, map[string]struct{}{"1": {}, "3": {}}, got)
}

func TestPlanMatchesFullScanForAnyIndexConfiguration(t *testing.T) {
	coll := cityCollection()
	specs := []map[string]interface{}{
		{"city": "NYC"},
		{"city": "NYC", "age": map[string]interface{}{"$gte": 30}},
		{"age": map[string]interface{}{"$lt": 30}},
		{"$and": []interface{}{
			map[string]interface{}{"city": "NYC"},
			map[string]interface{}{"age": map[string]interface{}{"$gte": 30}},
		}},
	}

	withIndex := &fakeIndexes{candidates: map[string][]string{
		"city=NYC": {"1", "3"},
	}}

	for _, spec := range specs {
		indexed := planIDs(t, spec, coll, withIndex)
		scanned := planIDs(t, spec, coll, nil)
		assert.Equal(t, scanned, indexed, "spec %v", spec)
	}
}

func TestPlanNilCollection(t *testing.T) {
	got := planIDs(t, map[string]interface{}{"city": "NYC"}, nil, nil)
	assert.Empty(t, got)
}
