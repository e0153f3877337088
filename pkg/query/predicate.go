package query

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/jfletcher/docstore/pkg/domain"
)

// Predicate is a compiled query that can be evaluated against documents.
// Evaluation is deterministic and side-effect-free; a predicate may be
// reused across any number of documents.
type Predicate interface {
	Matches(doc domain.Document) bool
}

// node is the internal predicate tree. Compilation turns the operator-keyed
// query map into a closed set of typed nodes once; evaluation is then a
// structural walk with no string dispatch per document.
type node interface {
	matches(doc map[string]interface{}) bool
}

type andNode struct {
	children []node
}

// An empty conjunction matches vacuously.
func (n *andNode) matches(doc map[string]interface{}) bool {
	for _, child := range n.children {
		if !child.matches(doc) {
			return false
		}
	}
	return true
}

type orNode struct {
	children []node
}

// An empty disjunction matches nothing.
func (n *orNode) matches(doc map[string]interface{}) bool {
	for _, child := range n.children {
		if child.matches(doc) {
			return true
		}
	}
	return false
}

type notNode struct {
	child node
}

func (n *notNode) matches(doc map[string]interface{}) bool {
	return !n.child.matches(doc)
}

type equalsNode struct {
	path  string
	value interface{}
}

func (n *equalsNode) matches(doc map[string]interface{}) bool {
	resolved, found := Resolve(doc, n.path)
	if !found {
		return false
	}
	return anyElementMatches(resolved, func(v interface{}) bool {
		return valuesEqual(v, n.value)
	})
}

type notEqualsNode struct {
	path  string
	value interface{}
}

// $ne matches an absent field: a document without the path trivially does
// not hold the value.
func (n *notEqualsNode) matches(doc map[string]interface{}) bool {
	eq := equalsNode{path: n.path, value: n.value}
	return !eq.matches(doc)
}

type compareOp int

const (
	opGt compareOp = iota
	opGte
	opLt
	opLte
)

type compareNode struct {
	path  string
	op    compareOp
	value interface{}
}

func (n *compareNode) matches(doc map[string]interface{}) bool {
	resolved, found := Resolve(doc, n.path)
	if !found {
		return false
	}
	return anyElementMatches(resolved, func(v interface{}) bool {
		cmp, ok := compareValues(v, n.value)
		if !ok {
			return false
		}
		switch n.op {
		case opGt:
			return cmp > 0
		case opGte:
			return cmp >= 0
		case opLt:
			return cmp < 0
		default:
			return cmp <= 0
		}
	})
}

type inNode struct {
	path   string
	values []interface{}
	negate bool // $nin
}

func (n *inNode) matches(doc map[string]interface{}) bool {
	resolved, found := Resolve(doc, n.path)
	if !found {
		return false
	}
	member := anyElementMatches(resolved, func(v interface{}) bool {
		for _, candidate := range n.values {
			if valuesEqual(v, candidate) {
				return true
			}
		}
		return false
	})
	if n.negate {
		return !member
	}
	return member
}

type existsNode struct {
	path string
	want bool
}

// $exists cares only about path resolution, not the resolved value: a field
// explicitly set to null still exists.
func (n *existsNode) matches(doc map[string]interface{}) bool {
	_, found := Resolve(doc, n.path)
	return found == n.want
}

type regexNode struct {
	path    string
	pattern *regexp.Regexp
}

func (n *regexNode) matches(doc map[string]interface{}) bool {
	resolved, found := Resolve(doc, n.path)
	if !found {
		return false
	}
	return anyElementMatches(resolved, func(v interface{}) bool {
		s, ok := v.(string)
		return ok && n.pattern.MatchString(s)
	})
}

type allNode struct {
	path   string
	values []interface{}
}

func (n *allNode) matches(doc map[string]interface{}) bool {
	resolved, found := Resolve(doc, n.path)
	if !found {
		return false
	}
	seq, ok := resolved.([]interface{})
	if !ok {
		return false
	}
	for _, want := range n.values {
		held := false
		for _, elem := range seq {
			if valuesEqual(elem, want) {
				held = true
				break
			}
		}
		if !held {
			return false
		}
	}
	return true
}

type sizeNode struct {
	path string
	size int
}

// $size on a non-sequence value is a non-match, not an error.
func (n *sizeNode) matches(doc map[string]interface{}) bool {
	resolved, found := Resolve(doc, n.path)
	if !found {
		return false
	}
	seq, ok := resolved.([]interface{})
	return ok && len(seq) == n.size
}

// anyElementMatches applies fn to the resolved value directly, or to each
// element when the value is a sequence. This is the array-containment rule:
// {"tags": "music"} matches tags == ["music", "news"].
func anyElementMatches(resolved interface{}, fn func(interface{}) bool) bool {
	if seq, ok := resolved.([]interface{}); ok {
		for _, elem := range seq {
			if fn(elem) {
				return true
			}
		}
		return false
	}
	return fn(resolved)
}

// valuesEqual compares two document values structurally. All numeric kinds
// compare through float64 so msgpack integers and JSON floats holding the
// same number are equal.
func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, ok := ToFloat64(a); ok {
		bf, ok := ToFloat64(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, exists := bv[k]
			if !exists || !valuesEqual(v, other) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two values of the same comparable kind. Numbers
// order numerically, strings lexicographically; everything else (and any
// cross-kind pair) is incomparable and fails closed.
func compareValues(a, b interface{}) (int, bool) {
	if af, ok := ToFloat64(a); ok {
		bf, ok := ToFloat64(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	return 0, false
}

// ToFloat64 converts various numeric types to float64 for comparison
func ToFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
