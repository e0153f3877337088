package query

import (
	"regexp"
	"strings"

	"github.com/jfletcher/docstore/pkg/domain"
)

// Equality is a top-level exact-match clause extracted at compile time so
// the planner can try an index lookup for it.
type Equality struct {
	Path  string
	Value interface{}
}

// Compiled is a query specification parsed into a predicate tree. The
// specification itself is consumed once and never re-read.
type Compiled struct {
	root       node
	equalities []Equality
	indexable  bool
}

// Matches evaluates the predicate against a single document.
func (c *Compiled) Matches(doc domain.Document) bool {
	return c.root.matches(doc)
}

// EqualityClauses returns the exact-match clauses of the query's top-level
// conjunction. It returns nil when the root contains $or or $not, which
// rules out index usage for the whole query.
func (c *Compiled) EqualityClauses() []Equality {
	if !c.indexable {
		return nil
	}
	return c.equalities
}

// Compile parses a query specification into a reusable predicate.
// Malformed specifications fail here with InvalidQueryError; evaluation
// never errors.
func Compile(spec map[string]interface{}) (*Compiled, error) {
	root, err := compileSpec(spec)
	if err != nil {
		return nil, err
	}
	c := &Compiled{root: root, indexable: true}
	c.collectEqualities(spec)
	return c, nil
}

// Match compiles a specification and evaluates it against one document.
// Used for update/delete target checks that bypass the planner.
func Match(spec map[string]interface{}, doc domain.Document) (bool, error) {
	compiled, err := Compile(spec)
	if err != nil {
		return false, err
	}
	return compiled.Matches(doc), nil
}

// compileSpec turns one specification level into an implicit conjunction
// over its keys.
func compileSpec(spec map[string]interface{}) (node, error) {
	children := make([]node, 0, len(spec))
	for key, value := range spec {
		switch {
		case key == "$and" || key == "$or":
			subSpecs, ok := asSpecList(value)
			if !ok {
				return nil, domain.NewInvalidQueryError("%s requires a list of sub-queries", key)
			}
			subNodes := make([]node, 0, len(subSpecs))
			for _, sub := range subSpecs {
				compiled, err := compileSpec(sub)
				if err != nil {
					return nil, err
				}
				subNodes = append(subNodes, compiled)
			}
			if key == "$and" {
				children = append(children, &andNode{children: subNodes})
			} else {
				children = append(children, &orNode{children: subNodes})
			}

		case key == "$not":
			sub, ok := value.(map[string]interface{})
			if !ok {
				return nil, domain.NewInvalidQueryError("$not requires a sub-query")
			}
			compiled, err := compileSpec(sub)
			if err != nil {
				return nil, err
			}
			children = append(children, &notNode{child: compiled})

		case strings.HasPrefix(key, "$"):
			return nil, domain.NewInvalidQueryError("unknown logical operator %q", key)

		default:
			fieldNode, err := compileField(key, value)
			if err != nil {
				return nil, err
			}
			children = append(children, fieldNode)
		}
	}
	return &andNode{children: children}, nil
}

// compileField compiles a single field clause: either a bare literal
// (equality) or an operator mapping.
func compileField(path string, value interface{}) (node, error) {
	opMap, ok := value.(map[string]interface{})
	if !ok || !isOperatorMapping(opMap) {
		return &equalsNode{path: path, value: value}, nil
	}

	ops := make([]node, 0, len(opMap))
	for op, operand := range opMap {
		compiled, err := compileOperator(path, op, operand)
		if err != nil {
			return nil, err
		}
		ops = append(ops, compiled)
	}
	return &andNode{children: ops}, nil
}

func compileOperator(path, op string, operand interface{}) (node, error) {
	switch op {
	case "$eq":
		return &equalsNode{path: path, value: operand}, nil
	case "$ne":
		return &notEqualsNode{path: path, value: operand}, nil
	case "$gt":
		return &compareNode{path: path, op: opGt, value: operand}, nil
	case "$gte":
		return &compareNode{path: path, op: opGte, value: operand}, nil
	case "$lt":
		return &compareNode{path: path, op: opLt, value: operand}, nil
	case "$lte":
		return &compareNode{path: path, op: opLte, value: operand}, nil
	case "$in", "$nin":
		values, ok := operand.([]interface{})
		if !ok {
			return nil, domain.NewInvalidQueryError("%s requires a list of values", op)
		}
		return &inNode{path: path, values: values, negate: op == "$nin"}, nil
	case "$exists":
		want, ok := operand.(bool)
		if !ok {
			return nil, domain.NewInvalidQueryError("$exists requires a boolean")
		}
		return &existsNode{path: path, want: want}, nil
	case "$regex":
		pattern, ok := operand.(string)
		if !ok {
			return nil, domain.NewInvalidQueryError("$regex requires a string pattern")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, domain.NewInvalidQueryError("invalid $regex pattern %q: %v", pattern, err)
		}
		return &regexNode{path: path, pattern: re}, nil
	case "$all":
		values, ok := operand.([]interface{})
		if !ok {
			return nil, domain.NewInvalidQueryError("$all requires a list of values")
		}
		return &allNode{path: path, values: values}, nil
	case "$size":
		size, ok := asExactInt(operand)
		if !ok || size < 0 {
			return nil, domain.NewInvalidQueryError("$size requires a non-negative integer")
		}
		return &sizeNode{path: path, size: size}, nil
	default:
		return nil, domain.NewInvalidQueryError("unknown operator %q for field %q", op, path)
	}
}

// collectEqualities records the exact-match clauses of the root
// conjunction. $and children are conjunction members too, so their field
// clauses are flattened in; $or or $not anywhere at the root marks the
// whole query non-indexable.
func (c *Compiled) collectEqualities(spec map[string]interface{}) {
	for key, value := range spec {
		switch {
		case key == "$or" || key == "$not":
			c.indexable = false
			c.equalities = nil
			return
		case key == "$and":
			subSpecs, ok := asSpecList(value)
			if !ok {
				continue
			}
			for _, sub := range subSpecs {
				c.collectEqualities(sub)
				if !c.indexable {
					return
				}
			}
		case strings.HasPrefix(key, "$"):
			// Unknown operators already rejected during compilation.
		default:
			if opMap, ok := value.(map[string]interface{}); ok {
				if isOperatorMapping(opMap) {
					if eq, exists := opMap["$eq"]; exists {
						c.equalities = append(c.equalities, Equality{Path: key, Value: eq})
					}
					continue
				}
			}
			c.equalities = append(c.equalities, Equality{Path: key, Value: value})
		}
	}
}

// isOperatorMapping reports whether a map value is an operator mapping
// rather than a literal mapping to match. Any $-prefixed key makes it one.
func isOperatorMapping(m map[string]interface{}) bool {
	for key := range m {
		if strings.HasPrefix(key, "$") {
			return true
		}
	}
	return false
}

// asSpecList normalizes the operand of $and/$or into sub-specifications.
func asSpecList(value interface{}) ([]map[string]interface{}, bool) {
	switch v := value.(type) {
	case []map[string]interface{}:
		return v, true
	case []interface{}:
		specs := make([]map[string]interface{}, 0, len(v))
		for _, elem := range v {
			spec, ok := elem.(map[string]interface{})
			if !ok {
				return nil, false
			}
			specs = append(specs, spec)
		}
		return specs, true
	default:
		return nil, false
	}
}

// asExactInt accepts the numeric types JSON and msgpack decoding produce,
// requiring an integral value.
func asExactInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
		return 0, false
	case float32:
		if float64(v) == float64(int(v)) {
			return int(v), true
		}
		return 0, false
	default:
		return 0, false
	}
}
