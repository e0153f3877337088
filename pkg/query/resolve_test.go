package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfletcher/docstore/pkg/query"
)

func TestResolve(t *testing.T) {
	doc := map[string]interface{}{
		"name": "Alice",
		"age":  30,
		"nick": nil,
		"address": map[string]interface{}{
			"city": "New York",
			"geo": map[string]interface{}{
				"lat": 40.7,
			},
		},
		"tags": []interface{}{"admin", "staff"},
		"orders": []interface{}{
			map[string]interface{}{"total": 10},
			map[string]interface{}{"total": 25},
			map[string]interface{}{"note": "gift"},
		},
	}

	tests := []struct {
		name      string
		path      string
		wantValue interface{}
		wantFound bool
	}{
		{"top level field", "name", "Alice", true},
		{"nested field", "address.city", "New York", true},
		{"deeply nested field", "address.geo.lat", 40.7, true},
		{"missing top level", "email", nil, false},
		{"missing nested", "address.zip", nil, false},
		{"null value exists", "nick", nil, true},
		{"whole sequence", "tags", []interface{}{"admin", "staff"}, true},
		{"numeric index", "tags.1", "staff", true},
		{"numeric index out of range", "tags.5", nil, false},
		{"broadcast over sequence", "orders.total", []interface{}{10, 25}, true},
		{"broadcast with no hits", "orders.missing", nil, false},
		{"key into scalar", "name.first", nil, false},
		{"index into mapping is a key", "address.0", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, found := query.Resolve(doc, tt.path)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.wantValue, value)
			}
		})
	}
}

func TestResolveNumericSegmentIntoNestedMapping(t *testing.T) {
	doc := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"sku": "a-1"},
			map[string]interface{}{"sku": "b-2"},
		},
	}

	value, found := query.Resolve(doc, "items.0.sku")
	require.True(t, found)
	assert.Equal(t, "a-1", value)
}
