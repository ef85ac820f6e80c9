package filter

import (
	"github.com/pkg/errors"

	"github.com/theplant/pivot/expression"
)

// Kind is the kind of constraint a clause holds.
type Kind int

const (
	KindValues Kind = iota + 1
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindValues:
		return "values"
	case KindRange:
		return "range"
	default:
		return "unknown"
	}
}

// Clause binds a dimension reference to either a value set or a range.
// Clauses are immutable values.
type Clause struct {
	ref       expression.Ref
	selection expression.Value // expression.Set or expression.Range
}

// NewValuesClause returns a clause constraining ref to the given values.
func NewValuesClause(ref expression.Ref, values ...any) Clause {
	return NewSetClause(ref, expression.NewSet(values...))
}

// NewSetClause returns a clause constraining ref to set.
func NewSetClause(ref expression.Ref, set expression.Set) Clause {
	return Clause{ref: ref, selection: set}
}

// NewRangeClause returns a clause constraining ref to the half-open range r.
func NewRangeClause(ref expression.Ref, r expression.Range) Clause {
	c := Clause{ref: ref}
	if r != nil {
		c.selection = r
	}
	return c
}

// ClauseFromExpression converts "ref in literal" into a clause.
func ClauseFromExpression(e expression.Expression) (Clause, error) {
	in, ok := e.(expression.In)
	if !ok {
		return Clause{}, errors.Wrapf(ErrMalformedFilter, "clause must be a chain, got %s", describe(e))
	}
	ref, ok := in.Operand.(expression.Ref)
	if !ok {
		return Clause{}, errors.Wrapf(ErrMalformedFilter, "clause must reference a single dimension, got %s", describe(in.Operand))
	}

	var c Clause
	switch v := in.Values.Value.(type) {
	case expression.Set:
		c = NewSetClause(ref, v)
	case expression.Range:
		c = NewRangeClause(ref, v)
	default:
		return Clause{}, errors.Wrapf(ErrMalformedFilter, "clause %s must constrain to a set or a range", in)
	}
	if err := c.validate(); err != nil {
		return Clause{}, err
	}
	return c, nil
}

func describe(e expression.Expression) string {
	if e == nil {
		return "nothing"
	}
	return string(e.Op()) + " " + e.String()
}

// constrained reports whether c holds a range or a non-empty set.
func (c Clause) constrained() bool {
	switch s := c.selection.(type) {
	case expression.Set:
		return !s.Empty()
	case expression.Range:
		return true
	default:
		return false
	}
}

func (c Clause) validate() error {
	if c.ref.IsZero() {
		return errors.Wrap(ErrMalformedFilter, "clause has no dimension")
	}
	switch s := c.selection.(type) {
	case expression.Set:
		if s.Empty() {
			return errors.Wrapf(ErrMalformedFilter, "clause on %s has an empty set", c.ref)
		}
		if err := s.Validate(); err != nil {
			return errors.Wrapf(ErrMalformedFilter, "clause on %s: %v", c.ref, err)
		}
	case expression.Range:
	default:
		return errors.Wrapf(ErrMalformedFilter, "clause on %s has no constraint", c.ref)
	}
	return nil
}

// Ref returns the dimension the clause is bound to.
func (c Clause) Ref() expression.Ref {
	return c.ref
}

// Literal returns the constraint value, an expression.Set or an expression.Range.
func (c Clause) Literal() expression.Value {
	return c.selection
}

func (c Clause) Kind() Kind {
	switch c.selection.(type) {
	case expression.Set:
		return KindValues
	case expression.Range:
		return KindRange
	default:
		return 0
	}
}

func (c Clause) IsValues() bool { return c.Kind() == KindValues }

func (c Clause) IsRange() bool { return c.Kind() == KindRange }

// WithRef returns the same constraint bound to another dimension.
func (c Clause) WithRef(ref expression.Ref) Clause {
	return Clause{ref: ref, selection: c.selection}
}

func (c Clause) Equals(other Clause) bool {
	if c.ref != other.ref {
		return false
	}
	if c.selection == nil || other.selection == nil {
		return c.selection == nil && other.selection == nil
	}
	return c.selection.Equals(other.selection)
}

// ToExpression returns the clause as "ref in literal".
func (c Clause) ToExpression() expression.Expression {
	return expression.In{Operand: c.ref, Values: expression.Literal{Value: c.selection}}
}

func (c Clause) String() string {
	return c.ToExpression().String()
}

func (c Clause) set() (expression.Set, error) {
	switch s := c.selection.(type) {
	case expression.Set:
		return s, nil
	case expression.Range:
		return expression.Set{}, errors.Wrapf(ErrInvalidClauseKind, "clause on %s is a range, not a value set", c.ref)
	default:
		return expression.Set{}, errors.Wrapf(ErrMalformedFilter, "clause on %s has no constraint", c.ref)
	}
}

func (c Clause) rangeValue() (expression.Range, error) {
	switch r := c.selection.(type) {
	case expression.Range:
		return r, nil
	case expression.Set:
		return nil, errors.Wrapf(ErrInvalidClauseKind, "clause on %s is a value set, not a range", c.ref)
	default:
		return nil, errors.Wrapf(ErrMalformedFilter, "clause on %s has no constraint", c.ref)
	}
}
