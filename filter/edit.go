package filter

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/pivot/dimension"
	"github.com/theplant/pivot/expression"
)

// DimensionCatalog resolves clause references to the dimensions that are currently valid.
// dimension.Dimensions implements it.
type DimensionCatalog interface {
	FindDimensionForExpression(ref expression.Ref) *dimension.Dimension
}

// ReplaceClauseAtIndex puts c at index. An index equal to Len() appends c.
// Other clauses structurally equal to the replaced one are rewritten to c, and any other
// clause left on c's dimension is withheld, so a filter never holds two clauses on a dimension.
func (f *Filter) ReplaceClauseAtIndex(index int, c Clause) (*Filter, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if index < 0 || index > len(f.clauses) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "replace at %d of %d", index, len(f.clauses))
	}
	if index == len(f.clauses) {
		return f.InsertClauseAtIndex(index, c)
	}

	stale := f.clauses[index]
	clauses := replaceClause(f.clauses, index, c)
	clauses = swapClause(clauses, stale, c, index)
	clauses = withholdClause(clauses, c, index)
	return newFilter(clauses), nil
}

// InsertClauseAtIndex splices c in at index, shifting later clauses right.
// Any other clause equal to c or bound to its dimension is withheld.
func (f *Filter) InsertClauseAtIndex(index int, c Clause) (*Filter, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if index < 0 || index > len(f.clauses) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "insert at %d of %d", index, len(f.clauses))
	}

	clauses := make([]Clause, 0, len(f.clauses)+1)
	clauses = append(clauses, f.clauses[:index]...)
	clauses = append(clauses, c)
	clauses = append(clauses, f.clauses[index:]...)
	return newFilter(withholdClause(clauses, c, index)), nil
}

// SetClause replaces the clause on c's dimension in place, or appends c if there is none.
// A clause without a constraint, or with an empty set, removes the dimension instead.
// It fails with ErrMalformedFilter if c has no dimension or holds a set of mixed or non-scalar values.
func (f *Filter) SetClause(c Clause) (*Filter, error) {
	if !c.ref.IsZero() && !c.constrained() {
		return f.Remove(c.ref), nil
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return f.setClause(c), nil
}

func (f *Filter) setClause(c Clause) *Filter {
	if c.validate() != nil {
		return f.Remove(c.ref)
	}
	i := f.IndexOf(c.ref)
	if i < 0 {
		return newFilter(appendClause(f.clauses, c))
	}
	return newFilter(replaceClause(f.clauses, i, c))
}

// ApplyDelta sets every clause of delta onto the filter, in delta's order.
// Dimensions delta does not mention are left untouched.
func (f *Filter) ApplyDelta(delta *Filter) *Filter {
	if delta == nil {
		return f
	}
	result := f
	for _, c := range delta.clauses {
		result = result.setClause(c)
	}
	return result
}

// ConstrainToDimensions drops clauses whose dimension catalog does not know.
// A dropped clause bound to previousTimeRef is rebound to timeRef instead, unless
// a clause on timeRef survives. Pass zero refs to disable the rebinding.
// The receiver is returned if no clause was dropped or rebound.
func (f *Filter) ConstrainToDimensions(catalog DimensionCatalog, timeRef, previousTimeRef expression.Ref) *Filter {
	keepsTimeRef := lo.ContainsBy(f.clauses, func(c Clause) bool {
		return c.ref == timeRef && catalog.FindDimensionForExpression(c.ref) != nil
	})

	changed := false
	clauses := make([]Clause, 0, len(f.clauses))
	for _, c := range f.clauses {
		if catalog.FindDimensionForExpression(c.ref) != nil {
			clauses = append(clauses, c)
			continue
		}
		changed = true
		if !timeRef.IsZero() && !previousTimeRef.IsZero() && c.ref == previousTimeRef && !keepsTimeRef {
			clauses = append(clauses, c.WithRef(timeRef))
		}
	}
	if !changed {
		return f
	}
	return newFilter(clauses)
}

func appendClause(clauses []Clause, c Clause) []Clause {
	result := make([]Clause, len(clauses), len(clauses)+1)
	copy(result, clauses)
	return append(result, c)
}

func replaceClause(clauses []Clause, index int, c Clause) []Clause {
	result := append([]Clause(nil), clauses...)
	result[index] = c
	return result
}

func deleteClause(clauses []Clause, index int) []Clause {
	result := make([]Clause, 0, len(clauses)-1)
	result = append(result, clauses[:index]...)
	return append(result, clauses[index+1:]...)
}

// swapClause rewrites every clause equal to stale into fresh, except the one at allowIndex.
func swapClause(clauses []Clause, stale, fresh Clause, allowIndex int) []Clause {
	return lo.Map(clauses, func(c Clause, i int) Clause {
		if i == allowIndex || !c.Equals(stale) {
			return c
		}
		return fresh
	})
}

// withholdClause drops every clause bound to keep's dimension, structural copies of keep included,
// except the one at allowIndex.
func withholdClause(clauses []Clause, keep Clause, allowIndex int) []Clause {
	return lo.Filter(clauses, func(c Clause, i int) bool {
		return i == allowIndex || c.ref != keep.ref
	})
}
