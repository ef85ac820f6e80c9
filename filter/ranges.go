package filter

import (
	"github.com/pkg/errors"

	"github.com/theplant/pivot/chrono"
	"github.com/theplant/pivot/expression"
)

// SetRange binds ref to the half-open range r, replacing any previous clause on ref in place.
func (f *Filter) SetRange(ref expression.Ref, r expression.Range) *Filter {
	return f.setClause(NewRangeClause(ref, r))
}

// Range returns the range bound to ref.
// It fails with ErrInvalidClauseKind if the clause on ref is a value set.
func (f *Filter) Range(ref expression.Ref) (expression.Range, bool, error) {
	i := f.IndexOf(ref)
	if i < 0 {
		return nil, false, nil
	}
	r, err := f.clauses[i].rangeValue()
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// SingleValue returns the constraint of the only clause, if the filter has exactly one.
func (f *Filter) SingleValue() (expression.Value, bool) {
	if len(f.clauses) != 1 {
		return nil, false
	}
	return f.clauses[0].Literal(), true
}

// OverQuery widens the time range bound to timeRef by one duration on each side,
// moving the bounds in tz. Other clauses are kept as they are.
// The receiver is returned if timeRef is zero or not filtered on.
func (f *Filter) OverQuery(duration chrono.Duration, tz chrono.Timezone, timeRef expression.Ref) (*Filter, error) {
	if timeRef.IsZero() {
		return f, nil
	}
	i := f.IndexOf(timeRef)
	if i < 0 {
		return f, nil
	}
	timeRange, ok := f.clauses[i].selection.(expression.TimeRange)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidClauseKind, "clause on %s is not a time range", timeRef)
	}
	widened := expression.TimeRange{
		Start: duration.Move(timeRange.Start, tz, -1),
		End:   duration.Move(timeRange.End, tz, 1),
	}
	return newFilter(replaceClause(f.clauses, i, NewRangeClause(timeRef, widened))), nil
}
