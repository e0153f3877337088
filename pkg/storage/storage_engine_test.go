package storage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfletcher/docstore/pkg/domain"
	"github.com/jfletcher/docstore/pkg/storage"
)

func seedCities(t *testing.T, engine *storage.StorageEngine) {
	t.Helper()
	docs := []domain.Document{
		{"_id": "1", "city": "NYC", "age": int64(25)},
		{"_id": "2", "city": "SF", "age": int64(31)},
		{"_id": "3", "city": "NYC", "age": int64(40)},
	}
	for _, doc := range docs {
		_, err := engine.Insert("users", doc)
		require.NoError(t, err)
	}
}

func TestInsertAndGetById(t *testing.T) {
	engine := storage.NewStorageEngine()

	t.Run("generates an id when absent", func(t *testing.T) {
		id, err := engine.Insert("users", domain.Document{"name": "Alice"})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		doc, err := engine.GetById("users", id)
		require.NoError(t, err)
		assert.Equal(t, "Alice", doc["name"])
		assert.Equal(t, id, doc["_id"])
	})

	t.Run("honors a provided id", func(t *testing.T) {
		id, err := engine.Insert("users", domain.Document{"_id": "alice-1", "name": "Alice"})
		require.NoError(t, err)
		assert.Equal(t, "alice-1", id)
	})

	t.Run("rejects a duplicate id", func(t *testing.T) {
		_, err := engine.Insert("users", domain.Document{"_id": "alice-1"})
		assert.Error(t, err)
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := engine.GetById("users", "nope")
		assert.Error(t, err)
	})

	t.Run("missing collection", func(t *testing.T) {
		_, err := engine.GetById("ghosts", "1")
		assert.Error(t, err)
	})
}

func TestCreateCollection(t *testing.T) {
	engine := storage.NewStorageEngine()

	require.NoError(t, engine.CreateCollection("users"))
	assert.Error(t, engine.CreateCollection("users"), "duplicate collection")
	assert.Error(t, engine.CreateCollection(""), "empty name")

	coll, err := engine.GetCollection("users")
	require.NoError(t, err)
	assert.Empty(t, coll.Documents)
}

func TestIndexedFindScenario(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)
	require.NoError(t, engine.CreateIndex("users", "city", false))

	result, err := engine.Find("users", map[string]interface{}{
		"city": "NYC",
		"age":  map[string]interface{}{"$gte": 30},
	}, nil)
	require.NoError(t, err)

	require.Len(t, result.Documents, 1)
	assert.Equal(t, "3", result.Documents[0].ID())
}

func TestFindMatchesScanWithAndWithoutIndex(t *testing.T) {
	specs := []map[string]interface{}{
		nil,
		{},
		{"city": "NYC"},
		{"city": "NYC", "age": map[string]interface{}{"$gte": 30}},
		{"$or": []interface{}{
			map[string]interface{}{"city": "SF"},
			map[string]interface{}{"age": map[string]interface{}{"$gt": 35}},
		}},
	}

	scanEngine := storage.NewStorageEngine()
	seedCities(t, scanEngine)

	indexEngine := storage.NewStorageEngine()
	seedCities(t, indexEngine)
	require.NoError(t, indexEngine.CreateIndex("users", "city", false))

	for _, spec := range specs {
		scanned, err := scanEngine.Find("users", spec, nil)
		require.NoError(t, err)
		indexed, err := indexEngine.Find("users", spec, nil)
		require.NoError(t, err)
		assert.Equal(t, scanned.Documents, indexed.Documents, "spec %v", spec)
	}
}

func TestFindInvalidQuery(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)

	_, err := engine.Find("users", map[string]interface{}{
		"age": map[string]interface{}{"$near": 30},
	}, nil)
	require.Error(t, err)
	var invalid *domain.InvalidQueryError
	assert.True(t, errors.As(err, &invalid))
}

func TestFindPagination(t *testing.T) {
	engine := storage.NewStorageEngine()
	for i := 0; i < 5; i++ {
		_, err := engine.Insert("items", domain.Document{"_id": string(rune('a' + i)), "kind": "x"})
		require.NoError(t, err)
	}

	options := domain.DefaultPaginationOptions()
	options.Limit = 2
	options.Offset = 2

	result, err := engine.Find("items", nil, options)
	require.NoError(t, err)

	assert.Equal(t, int64(5), result.Total)
	require.Len(t, result.Documents, 2)
	assert.Equal(t, "c", result.Documents[0].ID())
	assert.Equal(t, "d", result.Documents[1].ID())
	assert.True(t, result.HasNext)
	assert.True(t, result.HasPrev)
}

func TestFindOne(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)

	doc, err := engine.FindOne("users", map[string]interface{}{"city": "NYC"})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "1", doc.ID(), "first match in id order")

	doc, err = engine.FindOne("users", map[string]interface{}{"city": "Austin"})
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestCount(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)

	n, err := engine.Count("users", map[string]interface{}{"city": "NYC"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = engine.Count("users", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestUpdateById(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)

	require.NoError(t, engine.UpdateById("users", "1", domain.Document{"age": int64(26), "vip": true}))

	doc, err := engine.GetById("users", "1")
	require.NoError(t, err)
	assert.Equal(t, int64(26), doc["age"])
	assert.Equal(t, true, doc["vip"])
	assert.Equal(t, "NYC", doc["city"], "untouched fields survive a merge")

	t.Run("_id is protected", func(t *testing.T) {
		require.NoError(t, engine.UpdateById("users", "1", domain.Document{"_id": "hijack"}))
		doc, err := engine.GetById("users", "1")
		require.NoError(t, err)
		assert.Equal(t, "1", doc["_id"])
	})
}

func TestReplaceById(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)

	require.NoError(t, engine.ReplaceById("users", "1", domain.Document{"name": "fresh"}))

	doc, err := engine.GetById("users", "1")
	require.NoError(t, err)
	assert.Equal(t, "fresh", doc["name"])
	assert.Equal(t, "1", doc["_id"], "id survives replacement")
	assert.NotContains(t, doc, "city", "old fields do not survive replacement")
}

func TestDeleteById(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)

	require.NoError(t, engine.DeleteById("users", "2"))
	_, err := engine.GetById("users", "2")
	assert.Error(t, err)
	assert.Error(t, engine.DeleteById("users", "2"), "double delete")
}

func TestUpdateMany(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)

	n, err := engine.UpdateMany("users", map[string]interface{}{"city": "NYC"}, domain.Document{"coast": "east"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = engine.Count("users", map[string]interface{}{"coast": "east"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDeleteMany(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)

	n, err := engine.DeleteMany("users", map[string]interface{}{"city": "NYC"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := engine.Count("users", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestDeleteAll(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)
	require.NoError(t, engine.CreateIndex("users", "city", false))

	n, err := engine.DeleteAll("users")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	total, err := engine.Count("users", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	stats, err := engine.IndexStats("users")
	require.NoError(t, err)
	assert.Equal(t, 0, stats["city"].DocumentCount, "indexes cleared with the documents")
}

func TestUpsert(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)

	t.Run("updates the first match only", func(t *testing.T) {
		id, err := engine.Upsert("users", map[string]interface{}{"city": "NYC"}, domain.Document{"seen": true})
		require.NoError(t, err)
		assert.Equal(t, "1", id)

		n, err := engine.Count("users", map[string]interface{}{"seen": true})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("inserts when nothing matches", func(t *testing.T) {
		id, err := engine.Upsert("users", map[string]interface{}{"city": "Austin"}, domain.Document{"city": "Austin"})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		doc, err := engine.GetById("users", id)
		require.NoError(t, err)
		assert.Equal(t, "Austin", doc["city"])
	})
}

func TestDistinct(t *testing.T) {
	engine := storage.NewStorageEngine()
	docs := []domain.Document{
		{"_id": "1", "city": "NYC", "tags": []interface{}{"a", "b"}},
		{"_id": "2", "city": "SF", "tags": []interface{}{"b", "c"}},
		{"_id": "3", "city": "NYC"},
	}
	for _, doc := range docs {
		_, err := engine.Insert("users", doc)
		require.NoError(t, err)
	}

	values, err := engine.Distinct("users", "city", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []interface{}{"NYC", "SF"}, values)

	values, err = engine.Distinct("users", "tags", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []interface{}{"a", "b", "c"}, values, "sequence values flatten")

	values, err = engine.Distinct("users", "city", map[string]interface{}{"tags": "a"})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"NYC"}, values)
}

func TestUniqueIndexGuardsMutations(t *testing.T) {
	engine := storage.NewStorageEngine()
	require.NoError(t, engine.CreateCollection("users"))
	require.NoError(t, engine.CreateIndex("users", "email", true))

	_, err := engine.Insert("users", domain.Document{"_id": "1", "email": "a@x.com"})
	require.NoError(t, err)

	t.Run("violating insert stores nothing", func(t *testing.T) {
		_, err := engine.Insert("users", domain.Document{"_id": "2", "email": "a@x.com"})
		var dup *domain.DuplicateKeyError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "email", dup.Path)

		_, err = engine.GetById("users", "2")
		assert.Error(t, err)
	})

	t.Run("violating update leaves the document unchanged", func(t *testing.T) {
		_, err := engine.Insert("users", domain.Document{"_id": "3", "email": "b@x.com"})
		require.NoError(t, err)

		err = engine.UpdateById("users", "3", domain.Document{"email": "a@x.com"})
		var dup *domain.DuplicateKeyError
		require.True(t, errors.As(err, &dup))

		doc, err := engine.GetById("users", "3")
		require.NoError(t, err)
		assert.Equal(t, "b@x.com", doc["email"], "rejected update did not stick")

		// The index still serves the old value.
		result, err := engine.Find("users", map[string]interface{}{"email": "b@x.com"}, nil)
		require.NoError(t, err)
		require.Len(t, result.Documents, 1)
		assert.Equal(t, "3", result.Documents[0].ID())
	})

	t.Run("deleting frees the value", func(t *testing.T) {
		require.NoError(t, engine.DeleteById("users", "1"))
		_, err := engine.Insert("users", domain.Document{"_id": "4", "email": "a@x.com"})
		assert.NoError(t, err)
	})
}

func TestCreateIndexOnPopulatedDataWithDuplicates(t *testing.T) {
	engine := storage.NewStorageEngine()
	_, err := engine.Insert("users", domain.Document{"_id": "1", "email": "a@x.com"})
	require.NoError(t, err)
	_, err = engine.Insert("users", domain.Document{"_id": "2", "email": "a@x.com"})
	require.NoError(t, err)

	err = engine.CreateIndex("users", "email", true)
	var dup *domain.DuplicateKeyError
	require.True(t, errors.As(err, &dup))

	// Nothing was registered, so the field remains unindexed.
	stats, statsErr := engine.IndexStats("users")
	require.NoError(t, statsErr)
	assert.NotContains(t, stats, "email")
}

func TestIndexLifecycle(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)

	require.NoError(t, engine.CreateIndex("users", "city", false))

	stats, err := engine.IndexStats("users")
	require.NoError(t, err)
	require.Contains(t, stats, "city")
	assert.Equal(t, 2, stats["city"].EntryCount, "NYC and SF")
	assert.Equal(t, 3, stats["city"].DocumentCount)

	require.NoError(t, engine.DropIndex("users", "city"))

	err = engine.DropIndex("users", "city")
	var notFound *domain.IndexNotFoundError
	assert.True(t, errors.As(err, &notFound))

	t.Run("index operations need an existing collection", func(t *testing.T) {
		assert.Error(t, engine.CreateIndex("ghosts", "city", false))
		assert.Error(t, engine.DropIndex("ghosts", "city"))
		_, err := engine.IndexStats("ghosts")
		assert.Error(t, err)
	})
}

func TestGetMemoryStats(t *testing.T) {
	engine := storage.NewStorageEngine()
	seedCities(t, engine)

	stats := engine.GetMemoryStats()
	assert.Equal(t, 1, stats["collections"])
	assert.Equal(t, 3, stats["documents"])
	assert.Contains(t, stats, "alloc_mb")
}
