package query

import (
	"strconv"
	"strings"
)

// Resolve walks a dot-separated field path through nested maps and slices
// and returns the value found there. The second return value reports
// whether the path resolved at all: a field holding an explicit nil yields
// (nil, true), while a missing field yields (nil, false). That distinction
// drives $exists.
//
// A numeric segment indexes into a slice. A non-numeric segment applied to
// a slice is broadcast across its elements, so "items.name" against a slice
// of objects resolves to the slice of every element's "name".
func Resolve(doc map[string]interface{}, path string) (interface{}, bool) {
	return resolve(doc, strings.Split(path, "."))
}

func resolve(current interface{}, segments []string) (interface{}, bool) {
	if len(segments) == 0 {
		return current, true
	}

	switch v := current.(type) {
	case map[string]interface{}:
		next, ok := v[segments[0]]
		if !ok {
			return nil, false
		}
		return resolve(next, segments[1:])

	case []interface{}:
		if idx, err := strconv.Atoi(segments[0]); err == nil {
			if idx < 0 || idx >= len(v) {
				return nil, false
			}
			return resolve(v[idx], segments[1:])
		}
		// Non-numeric segment against a slice: broadcast the remaining
		// path across elements, collecting whatever resolves.
		var matches []interface{}
		for _, elem := range v {
			if val, ok := resolve(elem, segments); ok {
				matches = append(matches, val)
			}
		}
		if len(matches) == 0 {
			return nil, false
		}
		return matches, true

	default:
		// Keying into a scalar dead-ends.
		return nil, false
	}
}
