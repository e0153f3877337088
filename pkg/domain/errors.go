package domain

import "fmt"

// InvalidQueryError reports a query specification that could not be
// compiled: an unknown operator, or an operator applied to a value of the
// wrong shape. It is raised at compile time, never during evaluation.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

// NewInvalidQueryError builds an InvalidQueryError with a formatted reason.
func NewInvalidQueryError(format string, args ...interface{}) *InvalidQueryError {
	return &InvalidQueryError{Reason: fmt.Sprintf(format, args...)}
}

// DuplicateKeyError reports a unique-index violation. The mutation that
// triggered it has not been applied: neither the collection nor any index
// changed.
type DuplicateKeyError struct {
	Path  string
	Value interface{}
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key for unique index on %q: %v", e.Path, e.Value)
}

// IndexNotFoundError reports a lookup or stats request against a field path
// that has no registered index.
type IndexNotFoundError struct {
	Path string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("no index on field %q", e.Path)
}
