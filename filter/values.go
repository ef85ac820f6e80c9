package filter

import (
	"github.com/theplant/pivot/expression"
)

// IsFilteredOnValue reports whether the value set bound to ref contains value.
// It fails with ErrInvalidClauseKind if the clause on ref is a range.
func (f *Filter) IsFilteredOnValue(ref expression.Ref, value any) (bool, error) {
	i := f.IndexOf(ref)
	if i < 0 {
		return false, nil
	}
	set, err := f.clauses[i].set()
	if err != nil {
		return false, err
	}
	return set.Contains(value), nil
}

// AddValue adds value to the set bound to ref, keeping the clause in place.
// Without a clause on ref, a new clause holding only value is appended.
func (f *Filter) AddValue(ref expression.Ref, value any) (*Filter, error) {
	i := f.IndexOf(ref)
	if i < 0 {
		c := NewValuesClause(ref, value)
		if err := c.validate(); err != nil {
			return nil, err
		}
		return newFilter(appendClause(f.clauses, c)), nil
	}
	set, err := f.clauses[i].set()
	if err != nil {
		return nil, err
	}
	c := NewSetClause(ref, set.Add(value))
	if err := c.validate(); err != nil {
		return nil, err
	}
	return newFilter(replaceClause(f.clauses, i, c)), nil
}

// RemoveValue removes value from the set bound to ref, dropping the clause once its set is empty.
// The receiver is returned if there is nothing to remove.
func (f *Filter) RemoveValue(ref expression.Ref, value any) (*Filter, error) {
	i := f.IndexOf(ref)
	if i < 0 {
		return f, nil
	}
	set, err := f.clauses[i].set()
	if err != nil {
		return nil, err
	}
	if !set.Contains(value) {
		return f, nil
	}
	remaining := set.Remove(value)
	if remaining.Empty() {
		return newFilter(deleteClause(f.clauses, i)), nil
	}
	return newFilter(replaceClause(f.clauses, i, NewSetClause(ref, remaining))), nil
}

// ToggleValue removes value from the set bound to ref if present, and adds it otherwise.
func (f *Filter) ToggleValue(ref expression.Ref, value any) (*Filter, error) {
	on, err := f.IsFilteredOnValue(ref, value)
	if err != nil {
		return nil, err
	}
	if on {
		return f.RemoveValue(ref, value)
	}
	return f.AddValue(ref, value)
}

// SetValues binds ref to exactly values, replacing any previous clause on ref in place.
// With no values the clause on ref is removed.
// It fails with ErrMalformedFilter if values mix kinds or are not scalars.
func (f *Filter) SetValues(ref expression.Ref, values ...any) (*Filter, error) {
	return f.SetClause(NewSetClause(ref, expression.NewSet(values...)))
}

// Values returns the set bound to ref.
// It fails with ErrInvalidClauseKind if the clause on ref is a range.
func (f *Filter) Values(ref expression.Ref) (expression.Set, bool, error) {
	i := f.IndexOf(ref)
	if i < 0 {
		return expression.Set{}, false, nil
	}
	set, err := f.clauses[i].set()
	if err != nil {
		return expression.Set{}, false, err
	}
	return set, true, nil
}

// Remove drops the clause bound to ref. The receiver is returned if there is none.
func (f *Filter) Remove(ref expression.Ref) *Filter {
	i := f.IndexOf(ref)
	if i < 0 {
		return f
	}
	return newFilter(deleteClause(f.clauses, i))
}
