package dimension_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theplant/pivot/dimension"
	"github.com/theplant/pivot/expression"
)

type Company struct {
	Name string
}

type Event struct {
	Country string
	Age     int
	Price   *float64
	VIP     bool
	Time    time.Time
	Company *Company
	Tags    []string
}

func TestFind(t *testing.T) {
	ds := dimension.Dimensions{
		dimension.New("country", dimension.KindString),
		dimension.New("createdAt", dimension.KindTime),
	}

	d := ds.FindDimensionForExpression(expression.NewRef("country"))
	require.NotNil(t, d)
	assert.Equal(t, "Country", d.Title)

	assert.Nil(t, ds.FindDimensionForExpression(expression.NewRef("age")))
	assert.Equal(t, "Created At", ds.FindByName("createdAt").Title)
	assert.Equal(t, "createdAt", ds.TimeDimension().Name)
	assert.Nil(t, dimension.Dimensions{}.TimeDimension())
}

func TestInfer(t *testing.T) {
	ds, err := dimension.Infer(&Event{Company: &Company{}}, "Country", "Age", "Price", "VIP", "Time", "Company.Name")
	require.NoError(t, err)

	kinds := map[string]dimension.Kind{}
	for _, d := range ds {
		kinds[d.Name] = d.Kind
	}
	assert.Equal(t, map[string]dimension.Kind{
		"Country":      dimension.KindString,
		"Age":          dimension.KindNumber,
		"Price":        dimension.KindNumber,
		"VIP":          dimension.KindBoolean,
		"Time":         dimension.KindTime,
		"Company.Name": dimension.KindString,
	}, kinds)

	_, err = dimension.Infer(&Event{}, "Missing")
	require.Error(t, err)

	_, err = dimension.Infer(&Event{}, "Tags")
	require.ErrorContains(t, err, "unsupported dimension type")

	_, err = dimension.Infer(nil, "Country")
	require.Error(t, err)
}
