package filter

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/pivot/expression"
)

// Filter is an immutable, ordered conjunction of clauses with at most one clause per dimension.
// Every operation returns a new Filter and leaves the receiver untouched, so filters can be
// shared freely between goroutines. Order is significant for Equals but not for the logical meaning.
type Filter struct {
	clauses []Clause
}

// Empty is the filter without clauses. It matches everything.
var Empty = &Filter{}

// New returns a filter with the given clauses in order.
// It fails with ErrMalformedFilter if a clause is invalid or two clauses share a dimension.
func New(clauses ...Clause) (*Filter, error) {
	seen := make(map[expression.Ref]struct{}, len(clauses))
	for _, c := range clauses {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[c.ref]; ok {
			return nil, errors.Wrapf(ErrMalformedFilter, "more than one clause on %s", c.ref)
		}
		seen[c.ref] = struct{}{}
	}
	return newFilter(append([]Clause(nil), clauses...)), nil
}

// MustNew is like New but panics on error.
func MustNew(clauses ...Clause) *Filter {
	f, err := New(clauses...)
	if err != nil {
		panic(err)
	}
	return f
}

// FromClause returns a filter holding the single clause c. It panics if c is invalid.
func FromClause(c Clause) *Filter {
	return MustNew(c)
}

// FromExpression decomposes a conjunction of single-dimension constraints into a filter.
// The literal true yields Empty.
func FromExpression(e expression.Expression) (*Filter, error) {
	return fromConjuncts(expression.Conjuncts(e))
}

// fromConjuncts reports every malformed conjunct, not only the first.
func fromConjuncts(conjuncts []expression.Expression) (*Filter, error) {
	clauses := make([]Clause, 0, len(conjuncts))
	var errs *multierror.Error
	for i, conjunct := range conjuncts {
		c, err := ClauseFromExpression(conjunct)
		if err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "clause %d", i))
			continue
		}
		clauses = append(clauses, c)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return New(clauses...)
}

// newFilter takes ownership of clauses.
func newFilter(clauses []Clause) *Filter {
	if len(clauses) == 0 {
		return Empty
	}
	return &Filter{clauses: clauses}
}

func (f *Filter) IsEmpty() bool {
	return len(f.clauses) == 0
}

func (f *Filter) IsSingle() bool {
	return len(f.clauses) == 1
}

// Len returns the number of clauses.
func (f *Filter) Len() int {
	return len(f.clauses)
}

// Clauses returns a copy of the clauses in order.
func (f *Filter) Clauses() []Clause {
	return append([]Clause(nil), f.clauses...)
}

// ClauseAt returns the clause at index i. It panics if i is out of range.
func (f *Filter) ClauseAt(i int) Clause {
	return f.clauses[i]
}

// IndexOf returns the index of the clause bound to ref, or -1.
func (f *Filter) IndexOf(ref expression.Ref) int {
	_, index, _ := lo.FindIndexOf(f.clauses, func(c Clause) bool {
		return c.ref == ref
	})
	return index
}

// ClauseFor returns the clause bound to ref.
func (f *Filter) ClauseFor(ref expression.Ref) (Clause, bool) {
	i := f.IndexOf(ref)
	if i < 0 {
		return Clause{}, false
	}
	return f.clauses[i], true
}

// IsFilteredOn reports whether a clause is bound to ref.
func (f *Filter) IsFilteredOn(ref expression.Ref) bool {
	return f.IndexOf(ref) >= 0
}

// Equals reports whether both filters have structurally equal clauses in the same order.
func (f *Filter) Equals(other *Filter) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil || len(f.clauses) != len(other.clauses) {
		return false
	}
	for i, c := range f.clauses {
		if !c.Equals(other.clauses[i]) {
			return false
		}
	}
	return true
}

// ToExpression returns true for an empty filter, the clause itself for a single clause,
// and the conjunction of all clauses in order otherwise.
func (f *Filter) ToExpression() expression.Expression {
	switch len(f.clauses) {
	case 0:
		return expression.True
	case 1:
		return f.clauses[0].ToExpression()
	default:
		return expression.And{Operands: lo.Map(f.clauses, func(c Clause, _ int) expression.Expression {
			return c.ToExpression()
		})}
	}
}

// ToJS returns the interchange tree of ToExpression.
func (f *Filter) ToJS() map[string]any {
	return f.ToExpression().ToJS()
}

func (f *Filter) String() string {
	return strings.Join(lo.Map(f.clauses, func(c Clause, _ int) string {
		return c.String()
	}), " and ")
}
