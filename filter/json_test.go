package filter_test

import (
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theplant/pivot/expression"
	"github.com/theplant/pivot/filter"
)

type countryCode string

func TestRoundTrip(t *testing.T) {
	filters := []*filter.Filter{
		filter.Empty,
		filter.MustNew(filter.NewValuesClause(country, "UK")),
		filter.MustNew(
			filter.NewValuesClause(country, "UK", "US", nil),
			filter.NewValuesClause(age, 18, 21.5),
			filter.NewRangeClause(when, expression.TimeRange{Start: day(2020, 1, 1), End: day(2020, 2, 1)}),
			filter.NewRangeClause(expression.NewRef("price"), expression.NumberRange{Start: 0, End: 9.99}),
			filter.NewValuesClause(expression.NewRef("vip"), true),
			filter.NewValuesClause(expression.NewRef("seen"), day(2021, 5, 5)),
		),
		filter.MustNew(filter.NewValuesClause(country, countryCode("UK"), countryCode("FR"))),
		filter.MustNew(filter.NewValuesClause(expression.NewRef("id"), int64(1<<53), int64(1<<53+1), uint64(1<<64-1))),
	}

	for _, f := range filters {
		t.Run(f.String(), func(t *testing.T) {
			parsed, err := filter.Parse(f.ToJS())
			require.NoError(t, err)
			assert.True(t, f.Equals(parsed), "got %s", parsed)

			data, err := json.Marshal(f)
			require.NoError(t, err)
			fromJSON, err := filter.ParseJSON(data)
			require.NoError(t, err)
			assert.True(t, f.Equals(fromJSON), "got %s from %s", fromJSON, data)
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(filter.Empty)
	require.NoError(t, err)
	assert.Equal(t, `{"op":"literal","value":true}`, string(data))

	data, err = json.Marshal(filter.MustNew(filter.NewValuesClause(country, "UK")))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"op": "chain",
		"expression": {"op": "ref", "name": "country"},
		"actions": [{
			"action": "in",
			"expression": {"op": "literal", "type": "SET", "value": {"setType": "STRING", "elements": ["UK"]}}
		}]
	}`, string(data))

	type view struct {
		Name   string         `json:"name"`
		Filter *filter.Filter `json:"filter"`
	}
	v := view{Name: "uk", Filter: filter.MustNew(filter.NewValuesClause(country, "UK"))}
	data, err = json.Marshal(v)
	require.NoError(t, err)

	var decoded view
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, v.Filter.Equals(decoded.Filter))

	assert.Error(t, filter.Empty.UnmarshalJSON(data))

	fresh := new(filter.Filter)
	require.NoError(t, json.Unmarshal([]byte(`{"op":"literal","value":true}`), fresh))
	assert.True(t, fresh.IsEmpty())
	assert.True(t, filter.Empty.Equals(fresh))
}

func TestParse(t *testing.T) {
	ref := func(name string) map[string]any {
		return map[string]any{"op": "ref", "name": name}
	}
	in := func(operand any, elements ...any) map[string]any {
		return map[string]any{
			"op":         "chain",
			"expression": operand,
			"actions": []any{map[string]any{
				"action": "in",
				"expression": map[string]any{
					"op": "literal", "type": "SET",
					"value": map[string]any{"setType": "STRING", "elements": elements},
				},
			}},
		}
	}

	t.Run("true", func(t *testing.T) {
		f, err := filter.Parse(true)
		require.NoError(t, err)
		assert.Same(t, filter.Empty, f)

		f, err = filter.Parse(expression.True.ToJS())
		require.NoError(t, err)
		assert.Same(t, filter.Empty, f)
	})

	t.Run("legacy clause list", func(t *testing.T) {
		f, err := filter.Parse([]any{in(ref("country"), "UK"), in(ref("city"), "Paris")})
		require.NoError(t, err)
		assert.True(t, filter.MustNew(
			filter.NewValuesClause(country, "UK"),
			filter.NewValuesClause(city, "Paris"),
		).Equals(f))
	})

	t.Run("legacy JSON array", func(t *testing.T) {
		f, err := filter.ParseJSON([]byte(` [
			{"op":"chain","expression":{"op":"ref","name":"country"},"actions":[{"action":"in","expression":{"op":"literal","type":"SET","value":{"setType":"STRING","elements":["UK"]}}}]},
			{"op":"chain","expression":{"op":"ref","name":"age"},"actions":[{"action":"in","expression":{"op":"literal","type":"NUMBER_RANGE","value":{"start":18,"end":30}}}]}
		]`))
		require.NoError(t, err)
		assert.True(t, filter.MustNew(
			filter.NewValuesClause(country, "UK"),
			filter.NewRangeClause(age, expression.NumberRange{Start: 18, End: 30}),
		).Equals(f), "got %s", f)

		f, err = filter.ParseJSON([]byte(`[]`))
		require.NoError(t, err)
		assert.True(t, f.IsEmpty())
	})

	malformed := []struct {
		name string
		js   any
	}{
		{name: "nil", js: nil},
		{name: "false", js: false},
		{name: "bare ref", js: ref("country")},
		{name: "literal set", js: map[string]any{"op": "literal", "type": "SET", "value": map[string]any{"elements": []any{"UK"}}}},
		{name: "multi dimension", js: in(map[string]any{"op": "and", "operands": []any{ref("a"), ref("b")}}, "x")},
		{name: "nested chain operand", js: in(in(ref("a"), "x"), "y")},
		{name: "empty set", js: in(ref("country"))},
		{name: "duplicate dimension", js: map[string]any{"op": "and", "operands": []any{in(ref("a"), "x"), in(ref("a"), "y")}}},
		{name: "unknown op", js: map[string]any{"op": "overlap"}},
		{name: "legacy list with a ref", js: []any{ref("country")}},
		{name: "true conjunct", js: map[string]any{"op": "and", "operands": []any{expression.True.ToJS(), in(ref("country"), "UK")}}},
		{name: "legacy list with true", js: []any{expression.True.ToJS()}},
		{name: "mixed set", js: in(ref("country"), "UK", 1.0)},
		{name: "number set with text", js: map[string]any{
			"op":         "chain",
			"expression": ref("id"),
			"actions": []any{map[string]any{
				"action": "in",
				"expression": map[string]any{
					"op": "literal", "type": "SET",
					"value": map[string]any{"setType": "NUMBER", "elements": []any{"one"}},
				},
			}},
		}},
	}
	for _, tc := range malformed {
		t.Run(tc.name, func(t *testing.T) {
			_, err := filter.Parse(tc.js)
			require.Error(t, err)
			assert.True(t, errors.Is(err, filter.ErrMalformedFilter), err.Error())
		})
	}

	t.Run("every malformed clause is reported", func(t *testing.T) {
		_, err := filter.Parse(map[string]any{"op": "and", "operands": []any{
			in(ref("country"), "UK"),
			ref("city"),
			in(ref("os")),
		}})
		require.Error(t, err)

		var merr *multierror.Error
		require.True(t, errors.As(err, &merr))
		require.Len(t, merr.Errors, 2)
		assert.Contains(t, merr.Errors[0].Error(), "clause 1")
		assert.Contains(t, merr.Errors[1].Error(), "clause 2")
	})

	t.Run("legacy JSON array with true", func(t *testing.T) {
		_, err := filter.ParseJSON([]byte(`[{"op":"literal","value":true}]`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, filter.ErrMalformedFilter), err.Error())
	})

	t.Run("large ids", func(t *testing.T) {
		f, err := filter.ParseJSON([]byte(`{"op":"chain","expression":{"op":"ref","name":"id"},"actions":[{"action":"in",
			"expression":{"op":"literal","type":"SET","value":{"setType":"NUMBER","elements":[9007199254740992,9007199254740993]}}}]}`))
		require.NoError(t, err)
		id := expression.NewRef("id")
		values, _, err := f.Values(id)
		require.NoError(t, err)
		assert.Equal(t, 2, values.Size())

		on, err := f.IsFilteredOnValue(id, int64(1<<53+1))
		require.NoError(t, err)
		assert.True(t, on)
		on, err = f.IsFilteredOnValue(id, int64(1<<53+2))
		require.NoError(t, err)
		assert.False(t, on)
	})

	_, err := filter.ParseJSON([]byte(`{"op":`))
	assert.True(t, errors.Is(err, filter.ErrMalformedFilter))
}
