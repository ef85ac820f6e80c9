package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theplant/pivot/expression"
)

func TestSwapClause(t *testing.T) {
	a := NewValuesClause(expression.NewRef("a"), 1)
	b := NewValuesClause(expression.NewRef("b"), 2)
	c := NewValuesClause(expression.NewRef("c"), 3)

	swapped := swapClause([]Clause{a, b, a}, a, c, 0)
	require.Len(t, swapped, 3)
	assert.True(t, swapped[0].Equals(a))
	assert.True(t, swapped[1].Equals(b))
	assert.True(t, swapped[2].Equals(c))
}

func TestWithholdClause(t *testing.T) {
	a := NewValuesClause(expression.NewRef("a"), 1)
	a2 := NewValuesClause(expression.NewRef("a"), 2)
	b := NewValuesClause(expression.NewRef("b"), 2)

	kept := withholdClause([]Clause{a, b, a2, a}, a2, 2)
	require.Len(t, kept, 2)
	assert.True(t, kept[0].Equals(b))
	assert.True(t, kept[1].Equals(a2))
}

func TestReplaceClauseAtIndexRewritesStaleCopies(t *testing.T) {
	country := expression.NewRef("country")
	city := expression.NewRef("city")
	stale := NewValuesClause(country, "UK")

	// Not reachable through the public constructors, which reject the duplicate.
	f := &Filter{clauses: []Clause{stale, NewValuesClause(city, "London"), stale}}

	replaced, err := f.ReplaceClauseAtIndex(0, NewValuesClause(country, "US"))
	require.NoError(t, err)
	assert.True(t, MustNew(
		NewValuesClause(country, "US"),
		NewValuesClause(city, "London"),
	).Equals(replaced), "got %s", replaced)
	assert.Len(t, f.clauses, 3)
}
