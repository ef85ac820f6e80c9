package filter

import "github.com/pkg/errors"

var (
	// ErrMalformedFilter is returned when a filter or clause is not a conjunction of
	// single-dimension constraints, or when two clauses share a dimension.
	ErrMalformedFilter = errors.New("malformed filter")

	// ErrInvalidClauseKind is returned when an operation expecting a value set finds a range, or vice versa.
	ErrInvalidClauseKind = errors.New("invalid clause kind")

	// ErrIndexOutOfRange is returned by positional edits given an index outside [0, Len()].
	ErrIndexOutOfRange = errors.New("clause index out of range")
)
